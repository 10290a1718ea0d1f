package services

import (
	"context"
	"time"

	"pairchat/internal/domain/conversation"
	"pairchat/internal/repository"
	pairchat_errors "pairchat/pkg/errors"
)

type MessageService struct {
	convRepo repository.ConversationRepository
}

func NewMessageService(convRepo repository.ConversationRepository) *MessageService {
	return &MessageService{convRepo: convRepo}
}

// Send appends a message to the conversation. The timestamp is stamped
// here on the server; identical timestamps under concurrent sends are
// possible and accepted.
func (s *MessageService) Send(ctx context.Context, conversationID, sender, body string) (conversation.Message, error) {
	if conversationID == "" || body == "" {
		return conversation.Message{}, pairchat_errors.ErrInvalidInput
	}

	conv, err := s.convRepo.GetByID(ctx, conversationID)
	if err != nil {
		return conversation.Message{}, err
	}
	if !conv.IsParticipant(sender) {
		return conversation.Message{}, pairchat_errors.ErrUnauthorized
	}

	m := conversation.Message{
		Sender:    sender,
		Body:      body,
		Timestamp: time.Now(),
		ReadBy:    map[string]bool{sender: true},
	}
	if err := s.convRepo.AppendMessage(ctx, conversationID, m); err != nil {
		return conversation.Message{}, err
	}
	return m, nil
}

// MarkRead flags every message in the conversation as read by reader,
// the reader's own messages included. Calling it again is a no-op.
func (s *MessageService) MarkRead(ctx context.Context, conversationID, reader string) error {
	if conversationID == "" {
		return pairchat_errors.ErrInvalidInput
	}

	conv, err := s.convRepo.GetByID(ctx, conversationID)
	if err != nil {
		return err
	}
	if !conv.IsParticipant(reader) {
		return pairchat_errors.ErrUnauthorized
	}

	return s.convRepo.MarkAllRead(ctx, conversationID, reader)
}

// SetTyping records the typing flag, last writer wins. There is no
// expiry: a client that crashes mid-type leaves a stale true until it
// writes false again. Known gap, kept as such.
func (s *MessageService) SetTyping(ctx context.Context, conversationID, username string, typing bool) error {
	if conversationID == "" {
		return pairchat_errors.ErrInvalidInput
	}

	conv, err := s.convRepo.GetByID(ctx, conversationID)
	if err != nil {
		return err
	}
	if !conv.IsParticipant(username) {
		return pairchat_errors.ErrUnauthorized
	}

	return s.convRepo.SetTyping(ctx, conversationID, username, typing)
}

// Get returns the full conversation for a participant.
func (s *MessageService) Get(ctx context.Context, conversationID, caller string) (conversation.Conversation, error) {
	conv, err := s.convRepo.GetByID(ctx, conversationID)
	if err != nil {
		return conversation.Conversation{}, err
	}
	if !conv.IsParticipant(caller) {
		return conversation.Conversation{}, pairchat_errors.ErrForbidden
	}
	return conv, nil
}

func (s *MessageService) ListForUser(ctx context.Context, username string) ([]conversation.Conversation, error) {
	return s.convRepo.ListForUser(ctx, username)
}
