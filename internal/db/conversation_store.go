package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/minichat/chat-server/internal/models"
)

// MongoConversationStore persists conversations and their messages in two
// collections linked by conversation_id.
type MongoConversationStore struct {
	conversations *mongo.Collection
	messages      *mongo.Collection
}

func NewMongoConversationStore(m *Mongo) *MongoConversationStore {
	return &MongoConversationStore{
		conversations: m.Conversations,
		messages:      m.Messages,
	}
}

func (s *MongoConversationStore) Insert(ctx context.Context, conv *models.Conversation) error {
	if _, err := s.conversations.InsertOne(ctx, conv); err != nil {
		return fmt.Errorf("mongo: insert conversation: %w", err)
	}
	return nil
}

func (s *MongoConversationStore) Get(ctx context.Context, id string) (*models.Conversation, error) {
	var conv models.Conversation
	if err := s.conversations.FindOne(ctx, bson.M{"_id": id}).Decode(&conv); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, models.ErrConversationNotFound
		}
		return nil, fmt.Errorf("mongo: get conversation: %w", err)
	}
	return &conv, nil
}

// List returns conversations ordered by last update, newest first.
func (s *MongoConversationStore) List(ctx context.Context) ([]models.Conversation, error) {
	opts := options.Find().SetSort(bson.D{{Key: "updated_at", Value: -1}})
	cursor, err := s.conversations.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("mongo: list conversations: %w", err)
	}
	defer cursor.Close(ctx)

	conversations := make([]models.Conversation, 0)
	if err := cursor.All(ctx, &conversations); err != nil {
		return nil, fmt.Errorf("mongo: decode conversations: %w", err)
	}

	return conversations, nil
}

func (s *MongoConversationStore) Touch(ctx context.Context, id string, at time.Time) error {
	update := bson.M{"$set": bson.M{"updated_at": at}}
	result, err := s.conversations.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return fmt.Errorf("mongo: touch conversation: %w", err)
	}
	if result.MatchedCount == 0 {
		return models.ErrConversationNotFound
	}
	return nil
}

func (s *MongoConversationStore) Delete(ctx context.Context, id string) error {
	result, err := s.conversations.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("mongo: delete conversation: %w", err)
	}
	if result.DeletedCount == 0 {
		return models.ErrConversationNotFound
	}
	return nil
}

func (s *MongoConversationStore) InsertMessage(ctx context.Context, msg *models.Message) error {
	if _, err := s.messages.InsertOne(ctx, msg); err != nil {
		return fmt.Errorf("mongo: insert message: %w", err)
	}
	return nil
}

// ListMessages returns a conversation's messages in ascending timestamp order.
// An unknown conversation id yields an empty slice, not an error.
func (s *MongoConversationStore) ListMessages(ctx context.Context, conversationID string) ([]models.Message, error) {
	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: 1}})
	cursor, err := s.messages.Find(ctx, bson.M{"conversation_id": conversationID}, opts)
	if err != nil {
		return nil, fmt.Errorf("mongo: list messages: %w", err)
	}
	defer cursor.Close(ctx)

	messages := make([]models.Message, 0)
	if err := cursor.All(ctx, &messages); err != nil {
		return nil, fmt.Errorf("mongo: decode messages: %w", err)
	}

	return messages, nil
}

func (s *MongoConversationStore) CountMessages(ctx context.Context, conversationID string) (int64, error) {
	count, err := s.messages.CountDocuments(ctx, bson.M{"conversation_id": conversationID})
	if err != nil {
		return 0, fmt.Errorf("mongo: count messages: %w", err)
	}
	return count, nil
}

// LastMessage returns the newest message of a conversation, or nil when the
// conversation has no messages.
func (s *MongoConversationStore) LastMessage(ctx context.Context, conversationID string) (*models.Message, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "timestamp", Value: -1}})
	var msg models.Message
	err := s.messages.FindOne(ctx, bson.M{"conversation_id": conversationID}, opts).Decode(&msg)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("mongo: last message: %w", err)
	}
	return &msg, nil
}

func (s *MongoConversationStore) DeleteMessages(ctx context.Context, conversationID string) error {
	if _, err := s.messages.DeleteMany(ctx, bson.M{"conversation_id": conversationID}); err != nil {
		return fmt.Errorf("mongo: delete messages: %w", err)
	}
	return nil
}
