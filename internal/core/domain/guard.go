package domain

// Default navigation targets used by guard decisions.
const (
	LoginRoute          = "/login"
	LandingRoute        = "/dashboard"
	ChangePasswordRoute = "/change-password"
)

// RouteMeta describes the access rules of a single SPA route. It is pure
// metadata: the gateway does not render these routes, it only decides.
type RouteMeta struct {
	Path string `json:"path"`
	// RequiresAuth gates the route behind an active session.
	RequiresAuth bool `json:"requiresAuth"`
	// PublicOnly marks routes like /login that an authenticated user is
	// bounced away from.
	PublicOnly bool `json:"publicOnly"`
	// Roles, when non-empty, restricts the route to members of the set.
	// Implies RequiresAuth.
	Roles []string `json:"roles,omitempty"`
}

// GuardAction is the outcome kind of a guard evaluation.
type GuardAction string

const (
	GuardRender   GuardAction = "render"
	GuardRedirect GuardAction = "redirect"
	// GuardLoading means bootstrap has not finished; no navigation decision
	// may be taken yet.
	GuardLoading GuardAction = "loading"
)

// GuardDecision is the result of evaluating a navigation request against the
// current session state.
type GuardDecision struct {
	Action GuardAction `json:"action"`
	// Target is the redirect destination; empty unless Action is redirect.
	Target string `json:"target,omitempty"`
}
