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

// MongoRuleStore persists keyword rules in the keyword_rules collection.
type MongoRuleStore struct {
	rules *mongo.Collection
}

func NewMongoRuleStore(m *Mongo) *MongoRuleStore {
	return &MongoRuleStore{rules: m.KeywordRules}
}

// List returns rules ordered by priority descending; rules with equal priority
// come back in creation order so matching stays deterministic.
func (s *MongoRuleStore) List(ctx context.Context, activeOnly bool) ([]models.KeywordRule, error) {
	filter := bson.M{}
	if activeOnly {
		filter["is_active"] = true
	}

	opts := options.Find().SetSort(bson.D{{Key: "priority", Value: -1}, {Key: "created_at", Value: 1}})
	cursor, err := s.rules.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("mongo: list keyword rules: %w", err)
	}
	defer cursor.Close(ctx)

	rules := make([]models.KeywordRule, 0)
	if err := cursor.All(ctx, &rules); err != nil {
		return nil, fmt.Errorf("mongo: decode keyword rules: %w", err)
	}

	return rules, nil
}

func (s *MongoRuleStore) Get(ctx context.Context, id string) (*models.KeywordRule, error) {
	var rule models.KeywordRule
	if err := s.rules.FindOne(ctx, bson.M{"_id": id}).Decode(&rule); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, models.ErrRuleNotFound
		}
		return nil, fmt.Errorf("mongo: get keyword rule: %w", err)
	}
	return &rule, nil
}

func (s *MongoRuleStore) Insert(ctx context.Context, rule *models.KeywordRule) error {
	if _, err := s.rules.InsertOne(ctx, rule); err != nil {
		return fmt.Errorf("mongo: insert keyword rule: %w", err)
	}
	return nil
}

func (s *MongoRuleStore) Update(ctx context.Context, id string, upd models.KeywordRuleUpdate) (*models.KeywordRule, error) {
	set := bson.M{"updated_at": time.Now().UTC()}
	if upd.Keywords != nil {
		set["keywords"] = *upd.Keywords
	}
	if upd.Response != nil {
		set["response"] = *upd.Response
	}
	if upd.Priority != nil {
		set["priority"] = *upd.Priority
	}
	if upd.IsActive != nil {
		set["is_active"] = *upd.IsActive
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var rule models.KeywordRule
	err := s.rules.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&rule)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, models.ErrRuleNotFound
		}
		return nil, fmt.Errorf("mongo: update keyword rule: %w", err)
	}

	return &rule, nil
}

func (s *MongoRuleStore) Delete(ctx context.Context, id string) error {
	result, err := s.rules.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("mongo: delete keyword rule: %w", err)
	}
	if result.DeletedCount == 0 {
		return models.ErrRuleNotFound
	}
	return nil
}

func (s *MongoRuleStore) Count(ctx context.Context) (int64, error) {
	count, err := s.rules.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("mongo: count keyword rules: %w", err)
	}
	return count, nil
}
