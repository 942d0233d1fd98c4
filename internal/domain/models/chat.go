package models

import "time"

type ChatRole string

const (
	ChatRoleUser      ChatRole = "user"
	ChatRoleAssistant ChatRole = "assistant"
)

const (
	ChatGreeting    = "Hello! I am Pulse. I can help you with forecasts, staffing recommendations, and supply chain alerts. Try asking \"What is the outlook for next week?\""
	ChatUnavailable = "I'm having trouble connecting to the server. Please try again."
)

type ChatMessage struct {
	ID        string    `json:"id"`
	Role      ChatRole  `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

type ChatRequest struct {
	ConversationID string `json:"conversation_id"`
	Message        string `json:"message" validate:"required,max=4000"`
}

type ChatReply struct {
	ConversationID string      `json:"conversation_id"`
	Message        ChatMessage `json:"message"`
	DataSource     DataSource  `json:"data_source"`
}

type Conversation struct {
	ID       string        `json:"id"`
	Messages []ChatMessage `json:"messages"`
}
