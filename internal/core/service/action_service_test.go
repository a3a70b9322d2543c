package service

import (
	"context"
	"errors"
	"testing"

	"github.com/pointplay/rewards-gateway/internal/core/domain"
)

// recordingRefresher records refresh calls in the shared backend call log so
// ordering against the mutating call can be asserted.
type recordingRefresher struct {
	backend *stubBackend
	user    *domain.UserSnapshot
	err     error
	calls   int
}

func (r *recordingRefresher) Refresh(_ context.Context, _ string) (*domain.UserSnapshot, error) {
	r.backend.record("Refresh")
	r.calls++
	if r.err != nil {
		return nil, r.err
	}
	if r.user != nil {
		return r.user, nil
	}
	return &domain.UserSnapshot{}, nil
}

func actionSession() *domain.Session {
	return &domain.Session{ID: "s1", Credential: "cred-abc", User: domain.UserSnapshot{ID: "u1", Points: 100}}
}

func TestActionService_SubmitPrediction_RefreshFollowsSuccess(t *testing.T) {
	backend := &stubBackend{}
	refresher := &recordingRefresher{backend: backend, user: &domain.UserSnapshot{Points: 90}}
	svc := NewActionService(backend, refresher, newStubLocker(), discardLogger)

	backend.submitPredictionFn = func(_, _, guess string) (*domain.PredictionResult, error) {
		return &domain.PredictionResult{IsCorrect: true, BonusPoints: 10}, nil
	}

	result, outcome, err := svc.SubmitPrediction(context.Background(), actionSession(), "p1", "blue")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.IsCorrect {
		t.Error("expected correct result relayed")
	}
	if outcome.User == nil || outcome.User.Points != 90 {
		t.Fatalf("expected refreshed snapshot with 90 points, got %+v", outcome.User)
	}

	// The refresh must come strictly after the mutating call.
	order := backend.callOrder()
	if len(order) != 2 || order[0] != "SubmitPrediction" || order[1] != "Refresh" {
		t.Errorf("wrong call order: %v", order)
	}
}

func TestActionService_FailedAction_SkipsRefresh(t *testing.T) {
	backend := &stubBackend{}
	refresher := &recordingRefresher{backend: backend}
	svc := NewActionService(backend, refresher, newStubLocker(), discardLogger)

	backend.voteFn = func(_, _, _ string) (*domain.VoteResult, error) {
		return nil, domain.ErrRejected
	}

	_, _, err := svc.Vote(context.Background(), actionSession(), "c1", "e1")
	if !errors.Is(err, domain.ErrRejected) {
		t.Fatalf("expected ErrRejected, got %v", err)
	}
	if refresher.calls != 0 {
		t.Errorf("refresh must not run after a failed action, ran %d times", refresher.calls)
	}
}

func TestActionService_RefreshFailure_ActionStillSucceeds(t *testing.T) {
	backend := &stubBackend{}
	refresher := &recordingRefresher{backend: backend, err: domain.ErrUpstreamUnavailable}
	svc := NewActionService(backend, refresher, newStubLocker(), discardLogger)

	result, outcome, err := svc.SubmitCheckIn(context.Background(), actionSession(), "q1", "b")
	if err != nil {
		t.Fatalf("the action succeeded upstream; a refresh failure must not surface: %v", err)
	}
	if result == nil {
		t.Fatal("expected the check-in result relayed")
	}
	if outcome.User != nil {
		t.Error("expected nil snapshot when the refresh failed")
	}
}

func TestActionService_DuplicateSubmission_Rejected(t *testing.T) {
	backend := &stubBackend{}
	refresher := &recordingRefresher{backend: backend}
	locker := newStubLocker()
	svc := NewActionService(backend, refresher, locker, discardLogger)
	sess := actionSession()

	// Simulate a pending submission holding the lock.
	if acquired, _ := locker.Acquire(context.Background(), sess.ID, ActionVote); !acquired {
		t.Fatal("setup: could not acquire lock")
	}

	_, _, err := svc.Vote(context.Background(), sess, "c1", "e1")
	if !errors.Is(err, domain.ErrActionInFlight) {
		t.Fatalf("expected ErrActionInFlight, got %v", err)
	}
	if refresher.calls != 0 {
		t.Error("a rejected duplicate must not touch the backend or refresh")
	}
}

func TestActionService_DifferentActions_DoNotBlockEachOther(t *testing.T) {
	backend := &stubBackend{}
	refresher := &recordingRefresher{backend: backend}
	locker := newStubLocker()
	svc := NewActionService(backend, refresher, locker, discardLogger)
	sess := actionSession()

	if acquired, _ := locker.Acquire(context.Background(), sess.ID, ActionVote); !acquired {
		t.Fatal("setup: could not acquire lock")
	}

	// A vote is pending, but a check-in is a different action.
	if _, _, err := svc.SubmitCheckIn(context.Background(), sess, "q1", "a"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestActionService_LockReleased_AfterFailure(t *testing.T) {
	backend := &stubBackend{}
	refresher := &recordingRefresher{backend: backend}
	locker := newStubLocker()
	svc := NewActionService(backend, refresher, locker, discardLogger)
	sess := actionSession()

	backend.voteFn = func(_, _, _ string) (*domain.VoteResult, error) {
		return nil, domain.ErrRejected
	}
	_, _, _ = svc.Vote(context.Background(), sess, "c1", "e1")

	// The failed attempt must not wedge the session: a retry goes through.
	backend.voteFn = nil
	if _, _, err := svc.Vote(context.Background(), sess, "c1", "e1"); err != nil {
		t.Fatalf("retry after failure blocked: %v", err)
	}
}

func TestActionService_PlaceOrder_RelaysOrder(t *testing.T) {
	backend := &stubBackend{}
	refresher := &recordingRefresher{backend: backend, user: &domain.UserSnapshot{Points: 40}}
	svc := NewActionService(backend, refresher, newStubLocker(), discardLogger)

	backend.createOrderFn = func(_ string, _ domain.OrderRequest) (*domain.Order, error) {
		return &domain.Order{ID: "o1", TotalPoints: 60, Status: "pending"}, nil
	}

	order, outcome, err := svc.PlaceOrder(context.Background(), actionSession(), domain.OrderRequest{PaymentMethod: "points"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if order.ID != "o1" {
		t.Errorf("expected order o1, got %q", order.ID)
	}
	if outcome.User == nil || outcome.User.Points != 40 {
		t.Errorf("expected post-order snapshot with 40 points, got %+v", outcome.User)
	}
}
