package httpdto

import (
	"time"
)

// MessageUpdateRequest is the body of PUT /api/message. Exactly which
// action runs depends on which optional section is present: a message
// to append, a read-receipt update, or both.
type MessageUpdateRequest struct {
	ConversationID string             `json:"conversationId" binding:"required"`
	Message        *OutgoingMessage   `json:"message,omitempty"`
	UpdateRead     *ReadReceiptUpdate `json:"updateRead,omitempty"`
}

type OutgoingMessage struct {
	Sender string `json:"sender" binding:"required"`
	Body   string `json:"body" binding:"required"`
}

type ReadReceiptUpdate struct {
	Reader string `json:"reader" binding:"required"`
}

type TypingRequest struct {
	ConversationID string `json:"conversationId" binding:"required"`
	User           string `json:"user" binding:"required"`
	Typing         *bool  `json:"typing" binding:"required"`
}

type MessageDTO struct {
	Sender    string          `json:"sender"`
	Body      string          `json:"body"`
	Timestamp time.Time       `json:"timestamp"`
	ReadBy    map[string]bool `json:"readBy"`
}

type ConversationDTO struct {
	ConversationID string          `json:"conversationId"`
	Participants   map[string]bool `json:"participants"`
	Messages       []MessageDTO    `json:"messages"`
	Typing         map[string]bool `json:"typing"`
	CreatedAt      time.Time       `json:"createdAt"`
}

type ConversationsResponse struct {
	Conversations []ConversationDTO `json:"conversations"`
}
