package service

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/pointplay/rewards-gateway/internal/core/domain"
	"github.com/pointplay/rewards-gateway/internal/core/ports"
)

var discardLogger = zerolog.Nop()

// ---------------------------------------------------------------------------
// Stub backend
//
// Function fields override the methods a test cares about; everything else
// returns zero values. calls records the method names in invocation order so
// tests can assert protocol ordering.
// ---------------------------------------------------------------------------

type stubBackend struct {
	mu           sync.Mutex
	calls        []string
	lastCartRef  ports.CartRef
	lastQuantity int

	loginFn             func(email, password string) (*ports.LoginResult, error)
	registerFn          func(data ports.RegisterData) (*domain.UserSnapshot, error)
	getProfileFn        func(credential string) (*domain.UserSnapshot, error)
	changePasswordFn    func(credential, current, next string) (string, error)
	submitPredictionFn  func(credential, id, guess string) (*domain.PredictionResult, error)
	voteFn              func(credential, campaignID, entryID string) (*domain.VoteResult, error)
	createOrderFn       func(credential string, req domain.OrderRequest) (*domain.Order, error)
	chatMessagesFn      func(credential, conversationID, sinceID string) ([]domain.ChatMessage, error)
	sendChatMessageFn   func(credential, conversationID, body string) (*domain.ChatMessage, error)
}

func (b *stubBackend) record(name string) {
	b.mu.Lock()
	b.calls = append(b.calls, name)
	b.mu.Unlock()
}

func (b *stubBackend) callOrder() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]string, len(b.calls))
	copy(out, b.calls)
	return out
}

func (b *stubBackend) Login(_ context.Context, email, password string) (*ports.LoginResult, error) {
	b.record("Login")
	if b.loginFn != nil {
		return b.loginFn(email, password)
	}
	return &ports.LoginResult{}, nil
}

func (b *stubBackend) Register(_ context.Context, data ports.RegisterData) (*domain.UserSnapshot, error) {
	b.record("Register")
	if b.registerFn != nil {
		return b.registerFn(data)
	}
	return &domain.UserSnapshot{}, nil
}

func (b *stubBackend) VerifyEmail(_ context.Context, _ string) (string, error) {
	b.record("VerifyEmail")
	return "verified", nil
}

func (b *stubBackend) GetProfile(_ context.Context, credential string) (*domain.UserSnapshot, error) {
	b.record("GetProfile")
	if b.getProfileFn != nil {
		return b.getProfileFn(credential)
	}
	return &domain.UserSnapshot{}, nil
}

func (b *stubBackend) ChangePassword(_ context.Context, credential, current, next string) (string, error) {
	b.record("ChangePassword")
	if b.changePasswordFn != nil {
		return b.changePasswordFn(credential, current, next)
	}
	return "password updated", nil
}

func (b *stubBackend) GetTransactions(_ context.Context, _ string) ([]domain.PointTransaction, error) {
	return nil, nil
}

func (b *stubBackend) ListPredictions(_ context.Context, _ string) ([]domain.Prediction, error) {
	return nil, nil
}

func (b *stubBackend) GetPrediction(_ context.Context, _, _ string) (*domain.Prediction, []domain.UserPrediction, error) {
	return &domain.Prediction{}, nil, nil
}

func (b *stubBackend) SubmitPrediction(_ context.Context, credential, id, guess string) (*domain.PredictionResult, error) {
	b.record("SubmitPrediction")
	if b.submitPredictionFn != nil {
		return b.submitPredictionFn(credential, id, guess)
	}
	return &domain.PredictionResult{}, nil
}

func (b *stubBackend) ListCampaigns(_ context.Context, _ ports.ListPage) ([]domain.VotingCampaign, *domain.Pagination, error) {
	return nil, nil, nil
}

func (b *stubBackend) GetCampaign(_ context.Context, _, _ string) (*domain.VotingCampaign, []domain.VotingEntry, error) {
	return &domain.VotingCampaign{}, nil, nil
}

func (b *stubBackend) Vote(_ context.Context, credential, campaignID, entryID string) (*domain.VoteResult, error) {
	b.record("Vote")
	if b.voteFn != nil {
		return b.voteFn(credential, campaignID, entryID)
	}
	return &domain.VoteResult{}, nil
}

func (b *stubBackend) RemoveVote(_ context.Context, _, _, _ string) error {
	b.record("RemoveVote")
	return nil
}

func (b *stubBackend) MyVotes(_ context.Context, _ string, _ ports.ListPage) ([]domain.VotingEntry, *domain.Pagination, error) {
	return nil, nil, nil
}

func (b *stubBackend) CheckInStatus(_ context.Context, _ string) (*domain.CheckInStatus, error) {
	return &domain.CheckInStatus{}, nil
}

func (b *stubBackend) CheckInQuestion(_ context.Context, _ string) (*domain.Question, error) {
	return &domain.Question{}, nil
}

func (b *stubBackend) SubmitCheckIn(_ context.Context, _, _, _ string) (*domain.CheckInResult, error) {
	b.record("SubmitCheckIn")
	return &domain.CheckInResult{}, nil
}

func (b *stubBackend) ListSurveys(_ context.Context, _ string) ([]domain.Survey, error) {
	return nil, nil
}

func (b *stubBackend) GetSurvey(_ context.Context, _, _ string) (*domain.Survey, error) {
	return &domain.Survey{}, nil
}

func (b *stubBackend) SubmitSurvey(_ context.Context, _, _ string, _ []domain.SurveyAnswer) (*domain.SurveyResult, error) {
	b.record("SubmitSurvey")
	return &domain.SurveyResult{}, nil
}

func (b *stubBackend) SubmitFeedback(_ context.Context, _, _ string) (*domain.Feedback, error) {
	return &domain.Feedback{}, nil
}

func (b *stubBackend) MyFeedback(_ context.Context, _ string) ([]domain.Feedback, error) {
	return nil, nil
}

func (b *stubBackend) ListProducts(_ context.Context, _ ports.ListPage) ([]domain.Product, *domain.Pagination, error) {
	return nil, nil, nil
}

func (b *stubBackend) GetProduct(_ context.Context, _ string) (*domain.Product, error) {
	return &domain.Product{}, nil
}

func (b *stubBackend) ValidateCoupon(_ context.Context, _ string, _ int) (*domain.CouponValidation, error) {
	return &domain.CouponValidation{}, nil
}

func (b *stubBackend) GetCart(_ context.Context, ref ports.CartRef) (*domain.Cart, error) {
	b.mu.Lock()
	b.lastCartRef = ref
	b.mu.Unlock()
	return &domain.Cart{}, nil
}

func (b *stubBackend) AddToCart(_ context.Context, ref ports.CartRef, _ string, quantity int) (*domain.Cart, error) {
	b.mu.Lock()
	b.lastCartRef = ref
	b.lastQuantity = quantity
	b.mu.Unlock()
	return &domain.Cart{}, nil
}

func (b *stubBackend) UpdateCartItem(_ context.Context, ref ports.CartRef, _ string, _ int) (*domain.Cart, error) {
	b.mu.Lock()
	b.lastCartRef = ref
	b.mu.Unlock()
	return &domain.Cart{}, nil
}

func (b *stubBackend) RemoveCartItem(_ context.Context, ref ports.CartRef, _ string) (*domain.Cart, error) {
	b.mu.Lock()
	b.lastCartRef = ref
	b.mu.Unlock()
	return &domain.Cart{}, nil
}

func (b *stubBackend) ClearCart(_ context.Context, ref ports.CartRef) error {
	b.mu.Lock()
	b.lastCartRef = ref
	b.mu.Unlock()
	return nil
}

func (b *stubBackend) CreateOrder(_ context.Context, credential string, req domain.OrderRequest) (*domain.Order, error) {
	b.record("CreateOrder")
	if b.createOrderFn != nil {
		return b.createOrderFn(credential, req)
	}
	return &domain.Order{}, nil
}

func (b *stubBackend) ListOrders(_ context.Context, _ string) ([]domain.Order, error) {
	return nil, nil
}

func (b *stubBackend) GetOrder(_ context.Context, _, _ string) (*domain.Order, error) {
	return &domain.Order{}, nil
}

func (b *stubBackend) StaffDashboardStats(_ context.Context, _ string) (*domain.DashboardStats, error) {
	return &domain.DashboardStats{}, nil
}

func (b *stubBackend) AdminDashboardStats(_ context.Context, _ string) (*domain.DashboardStats, error) {
	return &domain.DashboardStats{}, nil
}

func (b *stubBackend) GrantPoints(_ context.Context, _ string, _ domain.GrantPoints) (string, error) {
	return "granted", nil
}

func (b *stubBackend) ChatMessagesSince(_ context.Context, credential, conversationID, sinceID string) ([]domain.ChatMessage, error) {
	b.record("ChatMessagesSince")
	if b.chatMessagesFn != nil {
		return b.chatMessagesFn(credential, conversationID, sinceID)
	}
	return nil, nil
}

func (b *stubBackend) SendChatMessage(_ context.Context, credential, conversationID, body string) (*domain.ChatMessage, error) {
	b.record("SendChatMessage")
	if b.sendChatMessageFn != nil {
		return b.sendChatMessageFn(credential, conversationID, body)
	}
	return &domain.ChatMessage{}, nil
}

// ---------------------------------------------------------------------------
// Stub session store
// ---------------------------------------------------------------------------

type stubSessionStore struct {
	mu       sync.Mutex
	sessions map[string]*domain.Session
	saveErr  error
	saves    int
	deletes  int
}

func newStubSessionStore() *stubSessionStore {
	return &stubSessionStore{sessions: make(map[string]*domain.Session)}
}

func (s *stubSessionStore) Save(_ context.Context, sess *domain.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return s.saveErr
	}
	clone := *sess
	s.sessions[sess.ID] = &clone
	s.saves++
	return nil
}

func (s *stubSessionStore) Find(_ context.Context, id string) (*domain.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	clone := *sess
	return &clone, nil
}

func (s *stubSessionStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	s.deletes++
	return nil
}

// ---------------------------------------------------------------------------
// Stub in-flight locker
// ---------------------------------------------------------------------------

type stubLocker struct {
	mu       sync.Mutex
	held     map[string]bool
	acquires int
	releases int
}

func newStubLocker() *stubLocker {
	return &stubLocker{held: make(map[string]bool)}
}

func (l *stubLocker) Acquire(_ context.Context, sessionID, action string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	key := sessionID + ":" + action
	if l.held[key] {
		return false, nil
	}
	l.held[key] = true
	l.acquires++
	return true, nil
}

func (l *stubLocker) Release(_ context.Context, sessionID, action string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.held, sessionID+":"+action)
	l.releases++
	return nil
}

// ---------------------------------------------------------------------------
// Stub chat repository
// ---------------------------------------------------------------------------

type stubChatRepo struct {
	mu       sync.Mutex
	messages map[string][]domain.ChatMessage
}

func newStubChatRepo() *stubChatRepo {
	return &stubChatRepo{messages: make(map[string][]domain.ChatMessage)}
}

func (r *stubChatRepo) Upsert(_ context.Context, msgs []domain.ChatMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range msgs {
		existing := r.messages[m.ConversationID]
		replaced := false
		for i := range existing {
			if existing[i].ID == m.ID {
				existing[i] = m
				replaced = true
				break
			}
		}
		if !replaced {
			existing = append(existing, m)
		}
		r.messages[m.ConversationID] = existing
	}
	return nil
}

func (r *stubChatRepo) Messages(_ context.Context, conversationID string, limit int) ([]domain.ChatMessage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	msgs := r.messages[conversationID]
	if limit > 0 && len(msgs) > limit {
		msgs = msgs[len(msgs)-limit:]
	}
	out := make([]domain.ChatMessage, len(msgs))
	copy(out, msgs)
	return out, nil
}

func (r *stubChatRepo) LastMessageID(_ context.Context, conversationID string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	msgs := r.messages[conversationID]
	if len(msgs) == 0 {
		return "", nil
	}
	return msgs[len(msgs)-1].ID, nil
}
