package domain

import "time"

const (
	RoleUser  = "user"
	RoleStaff = "staff"
	RoleAdmin = "admin"
)

// ValidRole reports whether role is one of the roles the backend issues.
func ValidRole(role string) bool {
	return role == RoleUser || role == RoleStaff || role == RoleAdmin
}

// UserSnapshot is the authoritative server-held view of a user, cached by the
// gateway. It is only ever replaced whole after a server round-trip; the
// gateway never mutates individual fields (in particular Points) locally.
type UserSnapshot struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Email           string `json:"email"`
	Role            string `json:"role"`
	Points          int    `json:"points"`
	IsEmailVerified bool   `json:"isEmailVerified"`
	IsAutoCreated   bool   `json:"isAutoCreated"`
	AvatarURL       string `json:"avatarUrl,omitempty"`
	ReferralCode    string `json:"referralCode,omitempty"`
	CreatedAt       string `json:"createdAt,omitempty"`
}

// Session pairs the opaque upstream credential with the cached user snapshot.
// The persisted copy (store) and the in-memory copy are written together on
// every mutation.
type Session struct {
	ID         string       `json:"id"`
	Credential string       `json:"credential"`
	User       UserSnapshot `json:"user"`
	CreatedAt  time.Time    `json:"created_at"`
	RefreshedAt time.Time   `json:"refreshed_at"`
}

// SessionState is what the route guard sees: whether bootstrap has finished
// and, if a session is active, the user it belongs to.
type SessionState struct {
	Ready bool
	User  *UserSnapshot
}

// Active reports whether an authenticated session is present.
func (s SessionState) Active() bool {
	return s.User != nil
}
