package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/pointplay/rewards-gateway/internal/core/domain"
	"github.com/pointplay/rewards-gateway/internal/core/ports"
)

const messagesCollection = "chat_messages"

// ChatRepository implements ports.ChatRepository using MongoDB. Polled
// messages are keyed by their upstream id, so re-polling an overlapping
// window is harmless.
type ChatRepository struct {
	db *mongo.Database
}

// NewChatRepository creates a new ChatRepository.
func NewChatRepository(db *mongo.Database) ports.ChatRepository {
	return &ChatRepository{db: db}
}

// Upsert writes a batch of messages, replacing any already cached.
func (r *ChatRepository) Upsert(ctx context.Context, messages []domain.ChatMessage) error {
	if len(messages) == 0 {
		return nil
	}

	models := make([]mongo.WriteModel, 0, len(messages))
	for _, m := range messages {
		models = append(models, mongo.NewReplaceOneModel().
			SetFilter(bson.M{"_id": m.ID}).
			SetReplacement(m).
			SetUpsert(true))
	}

	_, err := r.db.Collection(messagesCollection).BulkWrite(ctx, models, options.BulkWrite().SetOrdered(false))
	return err
}

// Messages returns the newest messages of a conversation in sent order.
func (r *ChatRepository) Messages(ctx context.Context, conversationID string, limit int) ([]domain.ChatMessage, error) {
	if limit <= 0 {
		limit = 50
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "sent_at", Value: -1}}).
		SetLimit(int64(limit))

	cursor, err := r.db.Collection(messagesCollection).Find(ctx, bson.M{"conversation_id": conversationID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var msgs []domain.ChatMessage
	if err := cursor.All(ctx, &msgs); err != nil {
		return nil, err
	}

	// Cursor is newest-first for the limit; callers want chronological.
	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}
	return msgs, nil
}

// LastMessageID returns the id of the newest cached message, or "" when the
// conversation is empty.
func (r *ChatRepository) LastMessageID(ctx context.Context, conversationID string) (string, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "sent_at", Value: -1}})

	var msg domain.ChatMessage
	err := r.db.Collection(messagesCollection).FindOne(ctx, bson.M{"conversation_id": conversationID}, opts).Decode(&msg)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return msg.ID, nil
}
