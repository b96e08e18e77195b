package db

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/minichat/chat-server/internal/models"
)

// Memory is a mutex-guarded in-memory store implementing the same contract as
// the Mongo-backed stores. It backs the memory store driver and the unit tests.
type Memory struct {
	mu            sync.RWMutex
	conversations map[string]models.Conversation
	messages      map[string][]models.Message
	rules         map[string]models.KeywordRule
	ruleSeq       map[string]int
	nextSeq       int
}

func NewMemory() *Memory {
	return &Memory{
		conversations: make(map[string]models.Conversation),
		messages:      make(map[string][]models.Message),
		rules:         make(map[string]models.KeywordRule),
		ruleSeq:       make(map[string]int),
	}
}

// RuleStore returns the keyword-rule view of the store.
func (m *Memory) RuleStore() *MemoryRuleStore { return &MemoryRuleStore{mem: m} }

// ConversationStore returns the conversation view of the store.
func (m *Memory) ConversationStore() *MemoryConversationStore {
	return &MemoryConversationStore{mem: m}
}

type MemoryRuleStore struct {
	mem *Memory
}

func (s *MemoryRuleStore) List(_ context.Context, activeOnly bool) ([]models.KeywordRule, error) {
	s.mem.mu.RLock()
	defer s.mem.mu.RUnlock()

	rules := make([]models.KeywordRule, 0, len(s.mem.rules))
	for _, rule := range s.mem.rules {
		if activeOnly && !rule.IsActive {
			continue
		}
		rules = append(rules, rule)
	}

	// Same ordering contract as Mongo: priority desc, insertion order for ties.
	sort.SliceStable(rules, func(i, j int) bool {
		if rules[i].Priority != rules[j].Priority {
			return rules[i].Priority > rules[j].Priority
		}
		return s.mem.ruleSeq[rules[i].ID] < s.mem.ruleSeq[rules[j].ID]
	})

	return rules, nil
}

func (s *MemoryRuleStore) Get(_ context.Context, id string) (*models.KeywordRule, error) {
	s.mem.mu.RLock()
	defer s.mem.mu.RUnlock()

	rule, ok := s.mem.rules[id]
	if !ok {
		return nil, models.ErrRuleNotFound
	}
	return &rule, nil
}

func (s *MemoryRuleStore) Insert(_ context.Context, rule *models.KeywordRule) error {
	s.mem.mu.Lock()
	defer s.mem.mu.Unlock()

	s.mem.rules[rule.ID] = *rule
	s.mem.ruleSeq[rule.ID] = s.mem.nextSeq
	s.mem.nextSeq++
	return nil
}

func (s *MemoryRuleStore) Update(_ context.Context, id string, upd models.KeywordRuleUpdate) (*models.KeywordRule, error) {
	s.mem.mu.Lock()
	defer s.mem.mu.Unlock()

	rule, ok := s.mem.rules[id]
	if !ok {
		return nil, models.ErrRuleNotFound
	}

	if upd.Keywords != nil {
		rule.Keywords = append([]string(nil), (*upd.Keywords)...)
	}
	if upd.Response != nil {
		rule.Response = *upd.Response
	}
	if upd.Priority != nil {
		rule.Priority = *upd.Priority
	}
	if upd.IsActive != nil {
		rule.IsActive = *upd.IsActive
	}
	rule.UpdatedAt = time.Now().UTC()

	s.mem.rules[id] = rule
	return &rule, nil
}

func (s *MemoryRuleStore) Delete(_ context.Context, id string) error {
	s.mem.mu.Lock()
	defer s.mem.mu.Unlock()

	if _, ok := s.mem.rules[id]; !ok {
		return models.ErrRuleNotFound
	}
	delete(s.mem.rules, id)
	delete(s.mem.ruleSeq, id)
	return nil
}

func (s *MemoryRuleStore) Count(_ context.Context) (int64, error) {
	s.mem.mu.RLock()
	defer s.mem.mu.RUnlock()

	return int64(len(s.mem.rules)), nil
}

type MemoryConversationStore struct {
	mem *Memory
}

func (s *MemoryConversationStore) Insert(_ context.Context, conv *models.Conversation) error {
	s.mem.mu.Lock()
	defer s.mem.mu.Unlock()

	s.mem.conversations[conv.ID] = *conv
	return nil
}

func (s *MemoryConversationStore) Get(_ context.Context, id string) (*models.Conversation, error) {
	s.mem.mu.RLock()
	defer s.mem.mu.RUnlock()

	conv, ok := s.mem.conversations[id]
	if !ok {
		return nil, models.ErrConversationNotFound
	}
	return &conv, nil
}

func (s *MemoryConversationStore) List(_ context.Context) ([]models.Conversation, error) {
	s.mem.mu.RLock()
	defer s.mem.mu.RUnlock()

	conversations := make([]models.Conversation, 0, len(s.mem.conversations))
	for _, conv := range s.mem.conversations {
		conversations = append(conversations, conv)
	}

	sort.SliceStable(conversations, func(i, j int) bool {
		return conversations[i].UpdatedAt.After(conversations[j].UpdatedAt)
	})

	return conversations, nil
}

func (s *MemoryConversationStore) Touch(_ context.Context, id string, at time.Time) error {
	s.mem.mu.Lock()
	defer s.mem.mu.Unlock()

	conv, ok := s.mem.conversations[id]
	if !ok {
		return models.ErrConversationNotFound
	}
	conv.UpdatedAt = at
	s.mem.conversations[id] = conv
	return nil
}

func (s *MemoryConversationStore) Delete(_ context.Context, id string) error {
	s.mem.mu.Lock()
	defer s.mem.mu.Unlock()

	if _, ok := s.mem.conversations[id]; !ok {
		return models.ErrConversationNotFound
	}
	delete(s.mem.conversations, id)
	return nil
}

func (s *MemoryConversationStore) InsertMessage(_ context.Context, msg *models.Message) error {
	s.mem.mu.Lock()
	defer s.mem.mu.Unlock()

	s.mem.messages[msg.ConversationID] = append(s.mem.messages[msg.ConversationID], *msg)
	return nil
}

func (s *MemoryConversationStore) ListMessages(_ context.Context, conversationID string) ([]models.Message, error) {
	s.mem.mu.RLock()
	defer s.mem.mu.RUnlock()

	messages := append([]models.Message(nil), s.mem.messages[conversationID]...)
	sort.SliceStable(messages, func(i, j int) bool {
		return messages[i].Timestamp.Before(messages[j].Timestamp)
	})

	return messages, nil
}

func (s *MemoryConversationStore) CountMessages(_ context.Context, conversationID string) (int64, error) {
	s.mem.mu.RLock()
	defer s.mem.mu.RUnlock()

	return int64(len(s.mem.messages[conversationID])), nil
}

func (s *MemoryConversationStore) LastMessage(ctx context.Context, conversationID string) (*models.Message, error) {
	messages, err := s.ListMessages(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if len(messages) == 0 {
		return nil, nil
	}
	last := messages[len(messages)-1]
	return &last, nil
}

func (s *MemoryConversationStore) DeleteMessages(_ context.Context, conversationID string) error {
	s.mem.mu.Lock()
	defer s.mem.mu.Unlock()

	delete(s.mem.messages, conversationID)
	return nil
}
