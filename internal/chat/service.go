package chat

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/minichat/chat-server/internal/models"
)

// fallbackResponse is returned when no active rule matches the input.
const fallbackResponse = "I'm sorry, I didn't understand your request. Could you please rephrase or ask about pricing, features, or support?"

// Service runs the message pipeline: resolve the conversation, persist the user
// message, generate a reply from the keyword rules, persist the bot message,
// then touch the conversation's update timestamp.
type Service struct {
	rules  RuleStore
	convs  ConversationStore
	logger *zap.Logger
}

func NewService(rules RuleStore, convs ConversationStore, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{rules: rules, convs: convs, logger: logger}
}

// ProcessMessage handles one user turn. conversationID may be empty, in which
// case a fresh conversation is created. Content is stored exactly as supplied,
// whitespace included.
//
// The two message writes are not wrapped in a transaction; a crash between them
// can leave a user message without its bot reply.
func (s *Service) ProcessMessage(ctx context.Context, content, conversationID string) (*models.MessageResponse, error) {
	conv, err := s.resolveConversation(ctx, conversationID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	userMessage := models.Message{
		ID:             uuid.NewString(),
		Content:        content,
		Sender:         models.SenderUser,
		Timestamp:      now,
		ConversationID: conv.ID,
	}
	if err := s.convs.InsertMessage(ctx, &userMessage); err != nil {
		return nil, fmt.Errorf("persist user message: %w", err)
	}

	reply, err := s.generateReply(ctx, content)
	if err != nil {
		return nil, err
	}

	botMessage := models.Message{
		ID:             uuid.NewString(),
		Content:        reply,
		Sender:         models.SenderBot,
		Timestamp:      time.Now().UTC(),
		ConversationID: conv.ID,
	}
	if err := s.convs.InsertMessage(ctx, &botMessage); err != nil {
		return nil, fmt.Errorf("persist bot message: %w", err)
	}

	if err := s.convs.Touch(ctx, conv.ID, time.Now().UTC()); err != nil {
		return nil, fmt.Errorf("touch conversation: %w", err)
	}

	s.logger.Debug("message processed",
		zap.String("conversation_id", conv.ID),
		zap.String("user_message_id", userMessage.ID),
		zap.String("bot_message_id", botMessage.ID),
	)

	return &models.MessageResponse{Message: userMessage, BotResponse: botMessage}, nil
}

func (s *Service) resolveConversation(ctx context.Context, conversationID string) (*models.Conversation, error) {
	if conversationID != "" {
		return s.convs.Get(ctx, conversationID)
	}

	now := time.Now().UTC()
	conv := models.Conversation{
		ID:        uuid.NewString(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.convs.Insert(ctx, &conv); err != nil {
		return nil, fmt.Errorf("create conversation: %w", err)
	}

	return &conv, nil
}

// generateReply scans active rules in priority order and returns the response
// of the first rule with a keyword appearing in the input, case-insensitively.
func (s *Service) generateReply(ctx context.Context, content string) (string, error) {
	normalized := strings.ToLower(content)

	rules, err := s.rules.List(ctx, true)
	if err != nil {
		return "", fmt.Errorf("load keyword rules: %w", err)
	}

	for _, rule := range rules {
		for _, keyword := range rule.Keywords {
			if strings.Contains(normalized, strings.ToLower(keyword)) {
				return rule.Response, nil
			}
		}
	}

	return fallbackResponse, nil
}

var defaultRules = []models.KeywordRule{
	{
		Keywords: []string{"hello", "hi", "hey", "greetings"},
		Response: "Hello! How can I assist you today?",
		Priority: 10,
	},
	{
		Keywords: []string{"price", "cost", "pricing", "how much"},
		Response: "Our pricing starts at $9.99/month. We offer flexible plans to suit your needs!",
		Priority: 9,
	},
	{
		Keywords: []string{"help", "support", "assist", "need help"},
		Response: "I'm here to help! You can ask me about pricing, features, or any other questions you might have.",
		Priority: 8,
	},
	{
		Keywords: []string{"features", "services", "what do you offer", "capabilities"},
		Response: "We offer various features including cloud storage, real-time sync, 24/7 support, and advanced analytics.",
		Priority: 8,
	},
	{
		Keywords: []string{"bye", "goodbye", "see you", "farewell"},
		Response: "Goodbye! Feel free to come back if you have more questions. Have a great day!",
		Priority: 7,
	},
	{
		Keywords: []string{"thanks", "thank you", "appreciate"},
		Response: "You're welcome! Is there anything else I can help you with?",
		Priority: 7,
	},
}

// SeedDefaultRules inserts the canned rule set when the rule store is empty.
// Called once at startup; a failure is the caller's to log, not fatal.
func (s *Service) SeedDefaultRules(ctx context.Context) error {
	count, err := s.rules.Count(ctx)
	if err != nil {
		return fmt.Errorf("count keyword rules: %w", err)
	}
	if count > 0 {
		return nil
	}

	now := time.Now().UTC()
	for _, seed := range defaultRules {
		rule := seed
		rule.ID = uuid.NewString()
		rule.IsActive = true
		rule.CreatedAt = now
		rule.UpdatedAt = now
		if err := s.rules.Insert(ctx, &rule); err != nil {
			return fmt.Errorf("seed keyword rule: %w", err)
		}
	}

	s.logger.Info("default keyword rules seeded", zap.Int("count", len(defaultRules)))
	return nil
}
