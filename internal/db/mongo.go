package db

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/minichat/chat-server/internal/utils"
)

type Mongo struct {
	Client        *mongo.Client
	Database      *mongo.Database
	Conversations *mongo.Collection
	Messages      *mongo.Collection
	KeywordRules  *mongo.Collection
}

func NewMongo(ctx context.Context, cfg utils.MongoConfig) (*Mongo, error) {
	if cfg.URI == "" {
		return nil, fmt.Errorf("mongo: uri is required")
	}

	clientOpts := options.Client().ApplyURI(cfg.URI)
	if cfg.ConnectTimeout > 0 {
		clientOpts.SetServerSelectionTimeout(cfg.ConnectTimeout)
	}

	connectCtx, cancel := context.WithTimeout(ctx, timeoutOrDefault(cfg.ConnectTimeout))
	defer cancel()

	client, err := mongo.Connect(connectCtx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("mongo: connect: %w", err)
	}

	pingCtx, pingCancel := context.WithTimeout(ctx, timeoutOrDefault(cfg.ConnectTimeout))
	defer pingCancel()

	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(pingCtx)
		return nil, fmt.Errorf("mongo: ping: %w", err)
	}

	database := client.Database(cfg.Database)
	store := &Mongo{
		Client:        client,
		Database:      database,
		Conversations: database.Collection("conversations"),
		Messages:      database.Collection("messages"),
		KeywordRules:  database.Collection("keyword_rules"),
	}

	return store, nil
}

func (m *Mongo) Close(ctx context.Context) error {
	if m == nil || m.Client == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	return m.Client.Disconnect(ctx)
}

// EnsureCollections creates the indexes the read paths depend on.
func (m *Mongo) EnsureCollections(ctx context.Context) error {
	if m == nil || m.Database == nil {
		return fmt.Errorf("mongo: database not initialised")
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	_, err := m.Messages.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "conversation_id", Value: 1}, {Key: "timestamp", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("mongo: ensure message index: %w", err)
	}

	_, err = m.KeywordRules.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "is_active", Value: 1}, {Key: "priority", Value: -1}},
	})
	if err != nil {
		return fmt.Errorf("mongo: ensure keyword rule index: %w", err)
	}

	_, err = m.Conversations.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "updated_at", Value: -1}},
	})
	if err != nil {
		return fmt.Errorf("mongo: ensure conversation index: %w", err)
	}

	return nil
}

func timeoutOrDefault(value time.Duration) time.Duration {
	if value > 0 {
		return value
	}
	return 10 * time.Second
}
