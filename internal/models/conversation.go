package models

import "time"

// Conversation groups an ordered list of messages. Message order is derived from
// timestamps, not insertion sequence.
type Conversation struct {
	ID        string    `json:"id" bson:"_id"`
	CreatedAt time.Time `json:"createdAt" bson:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updated_at"`
}

// ConversationSummary is the list-view shape: the conversation plus its message
// count and most recent message, without the full message history.
type ConversationSummary struct {
	ID           string    `json:"id"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
	MessageCount int64     `json:"messageCount"`
	LastMessage  *Message  `json:"lastMessage,omitempty"`
}

// ConversationDetail is the single-conversation shape with the full message list
// in ascending timestamp order.
type ConversationDetail struct {
	ID           string    `json:"id"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
	Messages     []Message `json:"messages"`
	MessageCount int64     `json:"messageCount"`
	LastMessage  *Message  `json:"lastMessage,omitempty"`
}
