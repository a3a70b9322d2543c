package ports

import (
	"context"

	"github.com/pointplay/rewards-gateway/internal/core/domain"
)

// LoginResult is the upstream login payload: the opaque credential plus the
// user snapshot it belongs to.
type LoginResult struct {
	Token string
	User  domain.UserSnapshot
}

// RegisterData is the registration payload relayed to the backend.
type RegisterData struct {
	Name         string
	Email        string
	Password     string
	ReferralCode string
}

// ListPage carries the common pagination query parameters.
type ListPage struct {
	Page   int
	Limit  int
	Search string
}

// CartRef identifies whose cart an operation targets: an authenticated
// credential or, when Credential is empty, a guest identifier. Exactly one
// of the two is forwarded upstream, never both.
type CartRef struct {
	Credential string
	GuestID    string
}

// Backend is the gateway's only window onto the rewards platform. Every
// method is a single HTTP round-trip; no method retries or caches.
type Backend interface {
	// Auth
	Login(ctx context.Context, email, password string) (*LoginResult, error)
	Register(ctx context.Context, data RegisterData) (*domain.UserSnapshot, error)
	VerifyEmail(ctx context.Context, token string) (string, error)

	// User
	GetProfile(ctx context.Context, credential string) (*domain.UserSnapshot, error)
	ChangePassword(ctx context.Context, credential, currentPassword, newPassword string) (string, error)
	GetTransactions(ctx context.Context, credential string) ([]domain.PointTransaction, error)

	// Predictions
	ListPredictions(ctx context.Context, credential string) ([]domain.Prediction, error)
	GetPrediction(ctx context.Context, credential, id string) (*domain.Prediction, []domain.UserPrediction, error)
	SubmitPrediction(ctx context.Context, credential, id, guess string) (*domain.PredictionResult, error)

	// Voting
	ListCampaigns(ctx context.Context, page ListPage) ([]domain.VotingCampaign, *domain.Pagination, error)
	GetCampaign(ctx context.Context, credential, id string) (*domain.VotingCampaign, []domain.VotingEntry, error)
	Vote(ctx context.Context, credential, campaignID, entryID string) (*domain.VoteResult, error)
	RemoveVote(ctx context.Context, credential, campaignID, entryID string) error
	MyVotes(ctx context.Context, credential string, page ListPage) ([]domain.VotingEntry, *domain.Pagination, error)

	// Check-in
	CheckInStatus(ctx context.Context, credential string) (*domain.CheckInStatus, error)
	CheckInQuestion(ctx context.Context, credential string) (*domain.Question, error)
	SubmitCheckIn(ctx context.Context, credential, questionID, answer string) (*domain.CheckInResult, error)

	// Surveys
	ListSurveys(ctx context.Context, credential string) ([]domain.Survey, error)
	GetSurvey(ctx context.Context, credential, id string) (*domain.Survey, error)
	SubmitSurvey(ctx context.Context, credential, id string, answers []domain.SurveyAnswer) (*domain.SurveyResult, error)

	// Feedback
	SubmitFeedback(ctx context.Context, credential, text string) (*domain.Feedback, error)
	MyFeedback(ctx context.Context, credential string) ([]domain.Feedback, error)

	// Shop
	ListProducts(ctx context.Context, page ListPage) ([]domain.Product, *domain.Pagination, error)
	GetProduct(ctx context.Context, id string) (*domain.Product, error)
	ValidateCoupon(ctx context.Context, code string, orderAmount int) (*domain.CouponValidation, error)

	// Cart
	GetCart(ctx context.Context, ref CartRef) (*domain.Cart, error)
	AddToCart(ctx context.Context, ref CartRef, productID string, quantity int) (*domain.Cart, error)
	UpdateCartItem(ctx context.Context, ref CartRef, itemID string, quantity int) (*domain.Cart, error)
	RemoveCartItem(ctx context.Context, ref CartRef, itemID string) (*domain.Cart, error)
	ClearCart(ctx context.Context, ref CartRef) error

	// Orders
	CreateOrder(ctx context.Context, credential string, req domain.OrderRequest) (*domain.Order, error)
	ListOrders(ctx context.Context, credential string) ([]domain.Order, error)
	GetOrder(ctx context.Context, credential, id string) (*domain.Order, error)

	// Staff / admin
	StaffDashboardStats(ctx context.Context, credential string) (*domain.DashboardStats, error)
	AdminDashboardStats(ctx context.Context, credential string) (*domain.DashboardStats, error)
	GrantPoints(ctx context.Context, credential string, grant domain.GrantPoints) (string, error)

	// Chat
	ChatMessagesSince(ctx context.Context, credential, conversationID, sinceID string) ([]domain.ChatMessage, error)
	SendChatMessage(ctx context.Context, credential, conversationID, body string) (*domain.ChatMessage, error)
}
