package service

import (
	"github.com/pointplay/rewards-gateway/internal/core/domain"
)

// Guard decides, for a requested route, whether the shell should render it,
// redirect, or keep showing a loading indicator. It is a stateless decision
// table re-evaluated on every navigation; the predicates run in a fixed
// order so the precedence is explicit rather than an artifact of component
// nesting:
//
//  1. session not ready        → loading
//  2. auto-created account     → redirect to the password-change route
//  3. public-only + active     → redirect to the landing route
//  4. requires auth + inactive → redirect to the login route
//  5. role not in allowed set  → redirect to the landing route
//  6. otherwise                → render
type Guard struct{}

func NewGuard() *Guard {
	return &Guard{}
}

// Decide evaluates a navigation request against the current session state.
func (g *Guard) Decide(state domain.SessionState, route domain.RouteMeta) domain.GuardDecision {
	if !state.Ready {
		return domain.GuardDecision{Action: domain.GuardLoading}
	}

	// Auto-created accounts must set a real password before anything else.
	// Checked ahead of role and auth rules on purpose.
	if state.Active() && state.User.IsAutoCreated && route.Path != domain.ChangePasswordRoute {
		return redirect(domain.ChangePasswordRoute)
	}

	if route.PublicOnly && state.Active() {
		return redirect(domain.LandingRoute)
	}

	requiresAuth := route.RequiresAuth || len(route.Roles) > 0
	if requiresAuth && !state.Active() {
		return redirect(domain.LoginRoute)
	}

	if len(route.Roles) > 0 && !roleAllowed(state.User.Role, route.Roles) {
		return redirect(domain.LandingRoute)
	}

	return domain.GuardDecision{Action: domain.GuardRender}
}

func redirect(target string) domain.GuardDecision {
	return domain.GuardDecision{Action: domain.GuardRedirect, Target: target}
}

func roleAllowed(role string, allowed []string) bool {
	for _, r := range allowed {
		if r == role {
			return true
		}
	}
	return false
}
