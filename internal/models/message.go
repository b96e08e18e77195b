package models

import "time"

// Sender tags carried by every message.
const (
	SenderUser = "user"
	SenderBot  = "bot"
)

// Message is one turn in a conversation. Messages are immutable once created.
type Message struct {
	ID             string    `json:"id" bson:"_id"`
	Content        string    `json:"content" bson:"content"`
	Sender         string    `json:"sender" bson:"sender"`
	Timestamp      time.Time `json:"timestamp" bson:"timestamp"`
	ConversationID string    `json:"conversationId" bson:"conversation_id"`
}

// MessageResponse pairs the persisted user message with the generated bot reply.
type MessageResponse struct {
	Message     Message `json:"message"`
	BotResponse Message `json:"botResponse"`
}
