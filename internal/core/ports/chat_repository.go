package ports

import (
	"context"

	"github.com/pointplay/rewards-gateway/internal/core/domain"
)

// ChatRepository caches polled conversation messages so reads are served
// locally between polls.
type ChatRepository interface {
	Upsert(ctx context.Context, messages []domain.ChatMessage) error
	// Messages returns the cached messages of a conversation in sent order.
	Messages(ctx context.Context, conversationID string, limit int) ([]domain.ChatMessage, error)
	// LastMessageID returns the newest cached message id, or "" when the
	// conversation has no cached messages yet.
	LastMessageID(ctx context.Context, conversationID string) (string, error)
}
