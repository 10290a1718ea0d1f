package services

import (
	"context"
	"errors"
	"testing"

	"pairchat/internal/domain/user"
	"pairchat/internal/repository/memory"
	pairchat_errors "pairchat/pkg/errors"
)

func newTestContactService() (*ContactService, *memory.UserStore, *memory.ConversationStore) {
	users := memory.NewUserStore()
	conversations := memory.NewConversationStore()
	return NewContactService(users, conversations, nil), users, conversations
}

func registerUser(t *testing.T, users *memory.UserStore, username string) {
	t.Helper()
	if err := users.Create(context.Background(), &user.User{Username: username, HashedPassword: "hash"}); err != nil {
		t.Fatalf("creating %s failed: %v", username, err)
	}
}

func TestSendRequestSelf(t *testing.T) {
	svc, users, _ := newTestContactService()
	registerUser(t, users, "alice")

	err := svc.SendRequest(context.Background(), "alice", "alice")
	if !errors.Is(err, pairchat_errors.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestSendRequestMissingTarget(t *testing.T) {
	svc, users, _ := newTestContactService()
	registerUser(t, users, "alice")

	err := svc.SendRequest(context.Background(), "alice", "ghost")
	if !errors.Is(err, pairchat_errors.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSendRequestSetsBothSides(t *testing.T) {
	svc, users, _ := newTestContactService()
	ctx := context.Background()
	registerUser(t, users, "alice")
	registerUser(t, users, "bob")

	if err := svc.SendRequest(ctx, "alice", "bob"); err != nil {
		t.Fatalf("SendRequest failed: %v", err)
	}

	bob, err := users.Get(ctx, "bob")
	if err != nil {
		t.Fatalf("Get bob failed: %v", err)
	}
	if !bob.HasPendingRequestFrom("alice") {
		t.Fatal("bob.contactRequests should contain alice")
	}

	alice, err := users.Get(ctx, "alice")
	if err != nil {
		t.Fatalf("Get alice failed: %v", err)
	}
	if !alice.HasSentRequestTo("bob") {
		t.Fatal("alice.sentRequests should contain bob")
	}

	// a second identical request is a conflict
	if err := svc.SendRequest(ctx, "alice", "bob"); !errors.Is(err, pairchat_errors.ErrConflict) {
		t.Fatalf("expected ErrConflict on duplicate request, got %v", err)
	}
}

func TestAcceptCreatesMutualContactsAndConversation(t *testing.T) {
	svc, users, _ := newTestContactService()
	ctx := context.Background()
	registerUser(t, users, "alice")
	registerUser(t, users, "bob")

	if err := svc.SendRequest(ctx, "alice", "bob"); err != nil {
		t.Fatalf("SendRequest failed: %v", err)
	}

	res, err := svc.Accept(ctx, "bob", "alice")
	if err != nil {
		t.Fatalf("Accept failed: %v", err)
	}
	if !res.Created {
		t.Fatal("first accept should create the conversation")
	}
	if !res.Conversation.IsParticipant("alice") || !res.Conversation.IsParticipant("bob") {
		t.Fatalf("conversation participants wrong: %v", res.Conversation.Participants)
	}
	if len(res.Conversation.Messages) != 0 {
		t.Fatalf("new conversation should have zero messages, has %d", len(res.Conversation.Messages))
	}

	bob, _ := users.Get(ctx, "bob")
	alice, _ := users.Get(ctx, "alice")
	if !bob.HasContact("alice") || !alice.HasContact("bob") {
		t.Fatal("contacts should be mutual after accept")
	}
	if bob.HasPendingRequestFrom("alice") {
		t.Fatal("bob.contactRequests should be cleared after accept")
	}
	if alice.HasSentRequestTo("bob") {
		t.Fatal("alice.sentRequests should be cleared after accept")
	}

	// retried accept resolves to the same conversation
	again, err := svc.Accept(ctx, "bob", "alice")
	if err != nil {
		t.Fatalf("retried Accept failed: %v", err)
	}
	if again.Created {
		t.Fatal("retried accept should not create a second conversation")
	}
	if again.Conversation.ID != res.Conversation.ID {
		t.Fatalf("retried accept resolved to a different conversation: %s vs %s", again.Conversation.ID, res.Conversation.ID)
	}
}

func TestAcceptUpsertsMissingRecords(t *testing.T) {
	svc, users, _ := newTestContactService()
	ctx := context.Background()

	// neither user document exists; accept treats them as empty profiles
	res, err := svc.Accept(ctx, "carol", "dave")
	if err != nil {
		t.Fatalf("Accept failed: %v", err)
	}
	if !res.Created {
		t.Fatal("accept should create a conversation for upserted users")
	}

	carol, err := users.Get(ctx, "carol")
	if err != nil {
		t.Fatalf("carol should exist after accept: %v", err)
	}
	if !carol.HasContact("dave") {
		t.Fatal("carol.contacts should contain dave")
	}
}

func TestAcceptSelf(t *testing.T) {
	svc, _, _ := newTestContactService()

	if _, err := svc.Accept(context.Background(), "alice", "alice"); !errors.Is(err, pairchat_errors.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestDeclineRemovesPendingOnly(t *testing.T) {
	svc, users, conversations := newTestContactService()
	ctx := context.Background()
	registerUser(t, users, "alice")
	registerUser(t, users, "bob")

	if err := svc.SendRequest(ctx, "alice", "bob"); err != nil {
		t.Fatalf("SendRequest failed: %v", err)
	}
	if err := svc.Decline(ctx, "bob", "alice"); err != nil {
		t.Fatalf("Decline failed: %v", err)
	}

	bob, _ := users.Get(ctx, "bob")
	alice, _ := users.Get(ctx, "alice")
	if bob.HasPendingRequestFrom("alice") {
		t.Fatal("pending request should be cleared after decline")
	}
	if alice.HasSentRequestTo("bob") {
		t.Fatal("sent request should be cleared after decline")
	}
	if bob.HasContact("alice") || alice.HasContact("bob") {
		t.Fatal("decline must not create contacts")
	}

	if _, err := conversations.FindByParticipants(ctx, "alice", "bob"); !errors.Is(err, pairchat_errors.ErrNotFound) {
		t.Fatalf("decline must not create a conversation, got %v", err)
	}

	// the pair is back to none: a new request goes through again
	if err := svc.SendRequest(ctx, "alice", "bob"); err != nil {
		t.Fatalf("SendRequest after decline failed: %v", err)
	}
}

func TestContactListings(t *testing.T) {
	svc, users, _ := newTestContactService()
	ctx := context.Background()
	registerUser(t, users, "alice")
	registerUser(t, users, "bob")

	if err := svc.SendRequest(ctx, "alice", "bob"); err != nil {
		t.Fatalf("SendRequest failed: %v", err)
	}

	pending, err := svc.PendingRequests(ctx, "bob")
	if err != nil {
		t.Fatalf("PendingRequests failed: %v", err)
	}
	if len(pending) != 1 || pending[0] != "alice" {
		t.Fatalf("bob pending = %v, want [alice]", pending)
	}

	sent, err := svc.SentRequests(ctx, "alice")
	if err != nil {
		t.Fatalf("SentRequests failed: %v", err)
	}
	if len(sent) != 1 || sent[0] != "bob" {
		t.Fatalf("alice sent = %v, want [bob]", sent)
	}

	contacts, err := svc.Contacts(ctx, "alice")
	if err != nil {
		t.Fatalf("Contacts failed: %v", err)
	}
	if len(contacts) != 0 {
		t.Fatalf("alice contacts should be empty before accept, got %v", contacts)
	}

	if _, err := svc.Contacts(ctx, "ghost"); !errors.Is(err, pairchat_errors.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown user, got %v", err)
	}
}
