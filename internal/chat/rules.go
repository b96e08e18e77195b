package chat

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/minichat/chat-server/internal/models"
)

var (
	ErrKeywordsRequired = errors.New("at least one keyword is required")
	ErrResponseRequired = errors.New("response text is required")
)

// RuleService exposes CRUD plus toggle-active over the keyword rule table.
type RuleService struct {
	store RuleStore
}

func NewRuleService(store RuleStore) *RuleService {
	return &RuleService{store: store}
}

// CreateRuleInput carries the fields accepted when creating a rule. Priority
// defaults to zero when unset.
type CreateRuleInput struct {
	Keywords []string
	Response string
	Priority int
}

func (s *RuleService) List(ctx context.Context, activeOnly bool) ([]models.KeywordRule, error) {
	return s.store.List(ctx, activeOnly)
}

func (s *RuleService) Get(ctx context.Context, id string) (*models.KeywordRule, error) {
	return s.store.Get(ctx, id)
}

func (s *RuleService) Create(ctx context.Context, input CreateRuleInput) (*models.KeywordRule, error) {
	keywords := make([]string, 0, len(input.Keywords))
	for _, keyword := range input.Keywords {
		if strings.TrimSpace(keyword) != "" {
			keywords = append(keywords, keyword)
		}
	}
	if len(keywords) == 0 {
		return nil, ErrKeywordsRequired
	}
	if strings.TrimSpace(input.Response) == "" {
		return nil, ErrResponseRequired
	}

	now := time.Now().UTC()
	rule := models.KeywordRule{
		ID:        uuid.NewString(),
		Keywords:  keywords,
		Response:  input.Response,
		Priority:  input.Priority,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.Insert(ctx, &rule); err != nil {
		return nil, err
	}

	return &rule, nil
}

func (s *RuleService) Update(ctx context.Context, id string, upd models.KeywordRuleUpdate) (*models.KeywordRule, error) {
	if upd.Keywords != nil && len(*upd.Keywords) == 0 {
		return nil, ErrKeywordsRequired
	}
	if upd.Response != nil && strings.TrimSpace(*upd.Response) == "" {
		return nil, ErrResponseRequired
	}

	return s.store.Update(ctx, id, upd)
}

func (s *RuleService) Delete(ctx context.Context, id string) error {
	return s.store.Delete(ctx, id)
}

// ToggleActive flips a rule's active flag. Inactive rules stay readable through
// Get and List; they are only excluded from matching.
func (s *RuleService) ToggleActive(ctx context.Context, id string) (*models.KeywordRule, error) {
	current, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	next := !current.IsActive
	return s.store.Update(ctx, id, models.KeywordRuleUpdate{IsActive: &next})
}
