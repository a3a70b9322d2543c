package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/pointplay/rewards-gateway/internal/core/domain"
	"github.com/pointplay/rewards-gateway/internal/core/ports"
)

// Action names used for in-flight locking and metrics labels.
const (
	ActionSubmitPrediction = "submit_prediction"
	ActionVote             = "vote"
	ActionRemoveVote       = "remove_vote"
	ActionCheckIn          = "check_in"
	ActionSubmitSurvey     = "submit_survey"
	ActionPlaceOrder       = "place_order"
)

// Refresher is the slice of the session service the orchestrator needs: the
// authoritative snapshot re-fetch issued after every successful mutation.
type Refresher interface {
	Refresh(ctx context.Context, sessionID string) (*domain.UserSnapshot, error)
}

// ActionService runs the two-step protocol every point-affecting operation
// follows: (1) issue the mutating backend call and await its result; (2) only
// on success, refresh the user snapshot so the displayed balance is
// authoritative, never locally guessed. Step 2 is never issued before or
// concurrently with step 1, and is skipped entirely when step 1 fails.
//
// A per-(session, action) in-flight lock rejects duplicate submissions while
// a request is pending, the gateway's equivalent of disabling the submit
// control. The backend remains the sole authority on idempotency and point
// deduction; no retry is automatic.
type ActionService struct {
	backend  ports.Backend
	sessions Refresher
	locker   ports.InflightLocker
	logger   zerolog.Logger
}

func NewActionService(backend ports.Backend, sessions Refresher, locker ports.InflightLocker, logger zerolog.Logger) *ActionService {
	return &ActionService{backend: backend, sessions: sessions, locker: locker, logger: logger}
}

// ActionOutcome pairs an action's backend result with the snapshot fetched
// afterwards. User is nil when the post-action refresh itself failed; the
// action result still stands (the backend already applied it) and the stale
// snapshot remains until the next refresh.
type ActionOutcome struct {
	User *domain.UserSnapshot
}

func (s *ActionService) SubmitPrediction(ctx context.Context, sess *domain.Session, predictionID, guess string) (*domain.PredictionResult, *ActionOutcome, error) {
	var result *domain.PredictionResult
	outcome, err := s.run(ctx, sess, ActionSubmitPrediction, func(ctx context.Context) error {
		var err error
		result, err = s.backend.SubmitPrediction(ctx, sess.Credential, predictionID, guess)
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	return result, outcome, nil
}

func (s *ActionService) Vote(ctx context.Context, sess *domain.Session, campaignID, entryID string) (*domain.VoteResult, *ActionOutcome, error) {
	var result *domain.VoteResult
	outcome, err := s.run(ctx, sess, ActionVote, func(ctx context.Context) error {
		var err error
		result, err = s.backend.Vote(ctx, sess.Credential, campaignID, entryID)
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	return result, outcome, nil
}

func (s *ActionService) RemoveVote(ctx context.Context, sess *domain.Session, campaignID, entryID string) (*ActionOutcome, error) {
	return s.run(ctx, sess, ActionRemoveVote, func(ctx context.Context) error {
		return s.backend.RemoveVote(ctx, sess.Credential, campaignID, entryID)
	})
}

func (s *ActionService) SubmitCheckIn(ctx context.Context, sess *domain.Session, questionID, answer string) (*domain.CheckInResult, *ActionOutcome, error) {
	var result *domain.CheckInResult
	outcome, err := s.run(ctx, sess, ActionCheckIn, func(ctx context.Context) error {
		var err error
		result, err = s.backend.SubmitCheckIn(ctx, sess.Credential, questionID, answer)
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	return result, outcome, nil
}

func (s *ActionService) SubmitSurvey(ctx context.Context, sess *domain.Session, surveyID string, answers []domain.SurveyAnswer) (*domain.SurveyResult, *ActionOutcome, error) {
	var result *domain.SurveyResult
	outcome, err := s.run(ctx, sess, ActionSubmitSurvey, func(ctx context.Context) error {
		var err error
		result, err = s.backend.SubmitSurvey(ctx, sess.Credential, surveyID, answers)
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	return result, outcome, nil
}

func (s *ActionService) PlaceOrder(ctx context.Context, sess *domain.Session, req domain.OrderRequest) (*domain.Order, *ActionOutcome, error) {
	var order *domain.Order
	outcome, err := s.run(ctx, sess, ActionPlaceOrder, func(ctx context.Context) error {
		var err error
		order, err = s.backend.CreateOrder(ctx, sess.Credential, req)
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	return order, outcome, nil
}

// run executes the protocol around a single mutating call. The lock release
// runs on every path so a failed action never wedges the session.
func (s *ActionService) run(ctx context.Context, sess *domain.Session, action string, call func(ctx context.Context) error) (*ActionOutcome, error) {
	acquired, err := s.locker.Acquire(ctx, sess.ID, action)
	if err != nil {
		return nil, err
	}
	if !acquired {
		return nil, domain.ErrActionInFlight
	}
	defer func() {
		if err := s.locker.Release(ctx, sess.ID, action); err != nil {
			s.logger.Error().Err(err).Str("session_id", sess.ID).Str("action", action).Msg("in-flight lock release failed")
		}
	}()

	if err := call(ctx); err != nil {
		return nil, err
	}

	user, err := s.sessions.Refresh(ctx, sess.ID)
	if err != nil {
		// The mutation already happened; surfacing an error here would read
		// as a failed action. Log it and let the snapshot go stale.
		s.logger.Warn().Err(err).Str("session_id", sess.ID).Str("action", action).Msg("post-action refresh failed")
		return &ActionOutcome{}, nil
	}

	s.logger.Info().Str("session_id", sess.ID).Str("action", action).Int("points", user.Points).Msg("action completed")
	return &ActionOutcome{User: user}, nil
}
