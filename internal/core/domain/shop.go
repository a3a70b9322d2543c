package domain

// GuestIDPrefix marks locally minted anonymous shopper identifiers.
const GuestIDPrefix = "guest_"

// Product is a shop listing, fetched per view and never cached.
type Product struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	PricePoints int      `json:"pricePoints"`
	Category    string   `json:"category,omitempty"`
	ImageURLs   []string `json:"imageUrls,omitempty"`
	InStock     bool     `json:"inStock"`
}

// CartItem is one line in a cart snapshot.
type CartItem struct {
	ID        string `json:"id"`
	ProductID string `json:"productId"`
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
	Points    int    `json:"points"`
}

// Cart is the backend's cart snapshot for either an authenticated user or a
// guest identifier. The gateway never merges or reconciles carts itself.
type Cart struct {
	ID          string     `json:"id"`
	Items       []CartItem `json:"items"`
	TotalPoints int        `json:"totalPoints"`
	ItemCount   int        `json:"itemCount"`
}

// ShippingInfo is the delivery block of an order request.
type ShippingInfo struct {
	Name       string `json:"name"`
	Phone      string `json:"phone"`
	Address    string `json:"address"`
	City       string `json:"city"`
	PostalCode string `json:"postalCode,omitempty"`
}

// OrderRequest is what the checkout page submits.
type OrderRequest struct {
	Shipping      ShippingInfo `json:"shipping"`
	PaymentMethod string       `json:"paymentMethod"`
	CouponCode    string       `json:"couponCode,omitempty"`
	Notes         string       `json:"notes,omitempty"`
}

// Order is a created order as reported by the backend.
type Order struct {
	ID          string     `json:"id"`
	Items       []CartItem `json:"items"`
	TotalPoints int        `json:"totalPoints"`
	Status      string     `json:"status"`
	CreatedAt   string     `json:"createdAt,omitempty"`
}

// CouponValidation is the backend's answer to a coupon check.
type CouponValidation struct {
	Valid    bool   `json:"valid"`
	Discount int    `json:"discount,omitempty"`
	Message  string `json:"message,omitempty"`
}
