package repository

import (
	"context"

	"pairchat/internal/domain/conversation"
	"pairchat/internal/domain/user"
)

// UserRepository is the credential store over the users collection.
// Mutations are single atomic document updates ($addToSet/$pull), so
// the set invariants on contacts and request lists hold structurally;
// the request/accept sequences still span two documents and are not
// transactional across them.
type UserRepository interface {
	Create(ctx context.Context, u *user.User) error
	Get(ctx context.Context, username string) (user.User, error)
	Exists(ctx context.Context, username string) (bool, error)

	// AddContactRequest appends requester to target's incoming request
	// set. Fails ErrNotFound if target does not exist and ErrConflict
	// if the request is already pending.
	AddContactRequest(ctx context.Context, target, requester string) error

	// AddSentRequest appends target to requester's outgoing request set.
	AddSentRequest(ctx context.Context, requester, target string) error

	// GrantContact adds contact to username's contact set and clears any
	// pending request entries for contact in either direction. Upserts an
	// empty profile when the user document is missing entirely.
	GrantContact(ctx context.Context, username, contact string) error

	RemoveContactRequest(ctx context.Context, username, from string) error
	RemoveSentRequest(ctx context.Context, username, to string) error
}

// ConversationRepository is the store over the conversations collection.
type ConversationRepository interface {
	// Create inserts a new conversation. Fails ErrAlreadyExists when a
	// conversation for the same participant pair already exists.
	Create(ctx context.Context, c *conversation.Conversation) error
	GetByID(ctx context.Context, id string) (conversation.Conversation, error)
	FindByParticipants(ctx context.Context, a, b string) (conversation.Conversation, error)
	ListForUser(ctx context.Context, username string) ([]conversation.Conversation, error)

	// AppendMessage pushes m onto the message array. The filter requires
	// the sender to be a participant, so a concurrent check cannot be
	// raced around.
	AppendMessage(ctx context.Context, id string, m conversation.Message) error

	// MarkAllRead sets readBy[reader]=true on every message, including
	// the reader's own. Idempotent.
	MarkAllRead(ctx context.Context, id, reader string) error

	// SetTyping records the typing flag for username. Last writer wins;
	// there is no expiry, so a crashed client leaves a stale true.
	SetTyping(ctx context.Context, id, username string, typing bool) error
}
