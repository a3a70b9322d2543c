package service

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/pointplay/rewards-gateway/internal/core/domain"
	"github.com/pointplay/rewards-gateway/internal/core/ports"
)

const defaultPollInterval = 5 * time.Second

// ChatService maintains one polling goroutine per open conversation, the
// only recurring background network activity in the gateway. Each poller
// fetches messages newer than the last cached one on a fixed interval and
// stops when the conversation is closed or the service shuts down. Reads are
// served from the cache, so any number of clients watching the same
// conversation cost the upstream one request per interval.
//
// A poller's context is cancelled on close; a fetch resolving after
// cancellation is discarded, never applied to the cache.
type ChatService struct {
	backend  ports.Backend
	repo     ports.ChatRepository
	interval time.Duration
	logger   zerolog.Logger

	mu      sync.Mutex
	baseCtx context.Context
	cancel  context.CancelFunc
	pollers map[string]*convPoller
}

type convPoller struct {
	cancel     context.CancelFunc
	credential string
	watchers   int
}

func NewChatService(backend ports.Backend, repo ports.ChatRepository, interval time.Duration, logger zerolog.Logger) *ChatService {
	if interval <= 0 {
		interval = defaultPollInterval
	}
	baseCtx, cancel := context.WithCancel(context.Background())
	return &ChatService{
		backend:  backend,
		repo:     repo,
		interval: interval,
		logger:   logger,
		baseCtx:  baseCtx,
		cancel:   cancel,
		pollers:  make(map[string]*convPoller),
	}
}

// Open registers a watcher on a conversation, starting its poller if it is
// the first. The credential of the most recent watcher is used for upstream
// fetches.
func (s *ChatService) Open(conversationID, credential string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p, ok := s.pollers[conversationID]; ok {
		p.watchers++
		p.credential = credential
		return
	}

	ctx, cancel := context.WithCancel(s.baseCtx)
	p := &convPoller{cancel: cancel, credential: credential, watchers: 1}
	s.pollers[conversationID] = p
	go s.pollLoop(ctx, conversationID)
	s.logger.Debug().Str("conversation_id", conversationID).Msg("chat poller started")
}

// Close removes a watcher; the poller stops when the last watcher leaves.
func (s *ChatService) Close(conversationID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.pollers[conversationID]
	if !ok {
		return
	}
	p.watchers--
	if p.watchers <= 0 {
		p.cancel()
		delete(s.pollers, conversationID)
		s.logger.Debug().Str("conversation_id", conversationID).Msg("chat poller stopped")
	}
}

// Stop cancels every poller. Called on shutdown.
func (s *ChatService) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancel()
	s.pollers = make(map[string]*convPoller)
}

// Messages serves a conversation from the cache.
func (s *ChatService) Messages(ctx context.Context, conversationID string, limit int) ([]domain.ChatMessage, error) {
	return s.repo.Messages(ctx, conversationID, limit)
}

// Send relays a message upstream and caches it immediately so the sender
// sees it without waiting for the next poll.
func (s *ChatService) Send(ctx context.Context, credential, conversationID, body string) (*domain.ChatMessage, error) {
	msg, err := s.backend.SendChatMessage(ctx, credential, conversationID, body)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Upsert(ctx, []domain.ChatMessage{*msg}); err != nil {
		s.logger.Warn().Err(err).Str("conversation_id", conversationID).Msg("failed to cache sent message")
	}
	return msg, nil
}

func (s *ChatService) pollLoop(ctx context.Context, conversationID string) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	// Fetch once immediately so an opened panel is not blank for a full
	// interval.
	s.pollOnce(ctx, conversationID)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.pollOnce(ctx, conversationID)
		}
	}
}

func (s *ChatService) pollOnce(ctx context.Context, conversationID string) {
	s.mu.Lock()
	p, ok := s.pollers[conversationID]
	if !ok {
		s.mu.Unlock()
		return
	}
	credential := p.credential
	s.mu.Unlock()

	sinceID, err := s.repo.LastMessageID(ctx, conversationID)
	if err != nil {
		s.logger.Warn().Err(err).Str("conversation_id", conversationID).Msg("chat cache read failed")
		return
	}

	msgs, err := s.backend.ChatMessagesSince(ctx, credential, conversationID, sinceID)
	if err != nil {
		if ctx.Err() == nil {
			s.logger.Warn().Err(err).Str("conversation_id", conversationID).Msg("chat poll failed")
		}
		return
	}

	// The conversation may have been closed while the fetch was in flight;
	// a cancelled poller must not write a stale response.
	if ctx.Err() != nil || len(msgs) == 0 {
		return
	}

	if err := s.repo.Upsert(ctx, msgs); err != nil {
		s.logger.Warn().Err(err).Str("conversation_id", conversationID).Msg("chat cache write failed")
	}
}
