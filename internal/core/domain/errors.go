package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidCredentials covers bad email/password pairs and malformed
	// auth payloads. Recovered locally; session state is left untouched.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrEmailNotVerified is returned by login when the backend accepts the
	// credentials but the account has not completed email verification.
	// No session is established.
	ErrEmailNotVerified = errors.New("email not verified")

	// ErrNotAuthenticated means no active session exists for the request.
	ErrNotAuthenticated = errors.New("not authenticated")

	// ErrCredentialRejected means the upstream explicitly refused the stored
	// credential. Fatal to the session: the persisted copy is destroyed.
	ErrCredentialRejected = errors.New("credential rejected by backend")

	// ErrForbidden means the active user's role does not permit the operation.
	ErrForbidden = errors.New("access forbidden")

	// ErrNotFound maps an upstream 404 (missing prediction, order, campaign).
	ErrNotFound = errors.New("resource not found")

	// ErrUpstreamUnavailable covers transport failures and 5xx responses.
	// Distinct from ErrCredentialRejected: it is not proof the stored
	// credential is bad, so bootstrap does not clear the persisted session.
	ErrUpstreamUnavailable = errors.New("backend unavailable")

	// ErrRejected is the backend refusing a request for a business reason
	// (insufficient points, vote limit reached, invalid coupon). Surfaced
	// with the server-provided message when available.
	ErrRejected = errors.New("request rejected")

	// ErrActionInFlight is returned when the same session already has the
	// same point-affecting action running. Equivalent of the original UI
	// disabling the submit control while a request is pending.
	ErrActionInFlight = errors.New("action already in flight")

	ErrSessionNotFound = errors.New("session not found")
)

// UpstreamError carries a user-displayable message extracted from the
// backend's error envelope, so call sites can surface the server's wording
// while still matching on the sentinel via errors.Is.
type UpstreamError struct {
	Sentinel error
	Message  string
}

func (e *UpstreamError) Error() string {
	if e.Message == "" {
		return e.Sentinel.Error()
	}
	return fmt.Sprintf("%s: %s", e.Sentinel.Error(), e.Message)
}

func (e *UpstreamError) Unwrap() error { return e.Sentinel }

// UpstreamMessage extracts the backend-provided message from err, or returns
// fallback when none was carried.
func UpstreamMessage(err error, fallback string) string {
	var ue *UpstreamError
	if errors.As(err, &ue) && ue.Message != "" {
		return ue.Message
	}
	return fallback
}
