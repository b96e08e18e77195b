package chat

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/minichat/chat-server/internal/models"
)

// ConversationService is the read/maintenance side: summaries, full detail,
// explicit creation, and cascading deletion.
type ConversationService struct {
	store ConversationStore
}

func NewConversationService(store ConversationStore) *ConversationService {
	return &ConversationService{store: store}
}

// List returns all conversations ordered by last update descending, each
// decorated with its message count and most recent message.
func (s *ConversationService) List(ctx context.Context) ([]models.ConversationSummary, error) {
	conversations, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}

	summaries := make([]models.ConversationSummary, 0, len(conversations))
	for _, conv := range conversations {
		summary, err := s.summarize(ctx, conv)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, summary)
	}

	return summaries, nil
}

func (s *ConversationService) summarize(ctx context.Context, conv models.Conversation) (models.ConversationSummary, error) {
	count, err := s.store.CountMessages(ctx, conv.ID)
	if err != nil {
		return models.ConversationSummary{}, fmt.Errorf("count messages for %s: %w", conv.ID, err)
	}

	last, err := s.store.LastMessage(ctx, conv.ID)
	if err != nil {
		return models.ConversationSummary{}, fmt.Errorf("last message for %s: %w", conv.ID, err)
	}

	return models.ConversationSummary{
		ID:           conv.ID,
		CreatedAt:    conv.CreatedAt,
		UpdatedAt:    conv.UpdatedAt,
		MessageCount: count,
		LastMessage:  last,
	}, nil
}

// Get returns a conversation with its full ascending message list, or
// models.ErrConversationNotFound.
func (s *ConversationService) Get(ctx context.Context, id string) (*models.ConversationDetail, error) {
	conv, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	messages, err := s.store.ListMessages(ctx, id)
	if err != nil {
		return nil, err
	}

	detail := &models.ConversationDetail{
		ID:           conv.ID,
		CreatedAt:    conv.CreatedAt,
		UpdatedAt:    conv.UpdatedAt,
		Messages:     messages,
		MessageCount: int64(len(messages)),
	}
	if len(messages) > 0 {
		last := messages[len(messages)-1]
		detail.LastMessage = &last
	}

	return detail, nil
}

// Create persists an empty conversation and returns its summary.
func (s *ConversationService) Create(ctx context.Context) (*models.ConversationSummary, error) {
	now := time.Now().UTC()
	conv := models.Conversation{
		ID:        uuid.NewString(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.Insert(ctx, &conv); err != nil {
		return nil, err
	}

	return &models.ConversationSummary{
		ID:           conv.ID,
		CreatedAt:    conv.CreatedAt,
		UpdatedAt:    conv.UpdatedAt,
		MessageCount: 0,
	}, nil
}

// Delete removes a conversation and all of its messages. Messages go first so
// no orphans survive a partial failure.
func (s *ConversationService) Delete(ctx context.Context, id string) error {
	if _, err := s.store.Get(ctx, id); err != nil {
		return err
	}

	if err := s.store.DeleteMessages(ctx, id); err != nil {
		return err
	}

	return s.store.Delete(ctx, id)
}

// Messages returns a conversation's messages ascending by timestamp. Unknown
// ids yield an empty list.
func (s *ConversationService) Messages(ctx context.Context, id string) ([]models.Message, error) {
	return s.store.ListMessages(ctx, id)
}
