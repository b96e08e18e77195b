// Package chat holds the message-processing pipeline and the services the API
// layer is built on. Persistence is abstracted behind the two store interfaces
// below, implemented by the mongo and memory stores in internal/db.
package chat

import (
	"context"
	"time"

	"github.com/minichat/chat-server/internal/models"
)

// RuleStore is the persistence contract for keyword rules. List must return
// rules ordered by priority descending with a stable tie-break (creation order)
// so that matching is deterministic.
type RuleStore interface {
	List(ctx context.Context, activeOnly bool) ([]models.KeywordRule, error)
	Get(ctx context.Context, id string) (*models.KeywordRule, error)
	Insert(ctx context.Context, rule *models.KeywordRule) error
	Update(ctx context.Context, id string, upd models.KeywordRuleUpdate) (*models.KeywordRule, error)
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int64, error)
}

// ConversationStore is the persistence contract for conversations and their
// messages. Lookups on a missing conversation return models.ErrConversationNotFound;
// ListMessages on an unknown id returns an empty slice instead.
type ConversationStore interface {
	Insert(ctx context.Context, conv *models.Conversation) error
	Get(ctx context.Context, id string) (*models.Conversation, error)
	List(ctx context.Context) ([]models.Conversation, error)
	Touch(ctx context.Context, id string, at time.Time) error
	Delete(ctx context.Context, id string) error

	InsertMessage(ctx context.Context, msg *models.Message) error
	ListMessages(ctx context.Context, conversationID string) ([]models.Message, error)
	CountMessages(ctx context.Context, conversationID string) (int64, error)
	LastMessage(ctx context.Context, conversationID string) (*models.Message, error)
	DeleteMessages(ctx context.Context, conversationID string) error
}
