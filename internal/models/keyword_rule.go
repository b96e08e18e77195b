package models

import "time"

// KeywordRule maps a set of keywords to a canned response. Matching considers
// only active rules; among matching rules the highest priority wins. Keyword
// sets are not unique across rules.
type KeywordRule struct {
	ID        string    `json:"id" bson:"_id"`
	Keywords  []string  `json:"keywords" bson:"keywords"`
	Response  string    `json:"response" bson:"response"`
	Priority  int       `json:"priority" bson:"priority"`
	IsActive  bool      `json:"isActive" bson:"is_active"`
	CreatedAt time.Time `json:"createdAt" bson:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updated_at"`
}

// KeywordRuleUpdate describes a partial update. Nil fields are left unchanged.
type KeywordRuleUpdate struct {
	Keywords *[]string
	Response *string
	Priority *int
	IsActive *bool
}
