package repository

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"pairchat/internal/domain/user"
	"pairchat/pkg/database"
	pairchat_errors "pairchat/pkg/errors"
)

func setupDB(t *testing.T) *database.Mongo {
	uri := os.Getenv("MONGODB_URI")
	if uri == "" {
		t.Skip("MONGODB_URI not set; skipping integration test")
	}

	ctx := context.Background()
	db, err := database.Connect(ctx, uri, fmt.Sprintf("pairchat_test_%d", time.Now().UnixNano()))
	if err != nil {
		t.Fatalf("database.Connect failed: %v", err)
	}

	if err := db.EnsureIndexes(ctx); err != nil {
		t.Fatalf("EnsureIndexes failed: %v", err)
	}

	t.Cleanup(func() {
		_ = db.Users().Drop(context.Background())
		_ = db.Conversations().Drop(context.Background())
		_ = db.Close(context.Background())
	})
	return db
}

func TestUserRepositoryCreateAndGet(t *testing.T) {
	db := setupDB(t)
	users := NewUserRepository(db.Users(), DefaultStoreTimeout)
	ctx := context.Background()

	if err := users.Create(ctx, &user.User{Username: "alice", HashedPassword: "hash"}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	got, err := users.Get(ctx, "alice")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Username != "alice" || got.HashedPassword != "hash" {
		t.Fatalf("unexpected user: %+v", got)
	}
	if got.Contacts == nil || got.ContactRequests == nil || got.SentRequests == nil {
		t.Fatal("set fields should be initialized to empty arrays")
	}

	// duplicate username
	err = users.Create(ctx, &user.User{Username: "alice", HashedPassword: "other"})
	if !errors.Is(err, pairchat_errors.ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}

	// missing user
	if _, err := users.Get(ctx, "ghost"); !errors.Is(err, pairchat_errors.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUserRepositoryContactRequests(t *testing.T) {
	db := setupDB(t)
	users := NewUserRepository(db.Users(), DefaultStoreTimeout)
	ctx := context.Background()

	for _, name := range []string{"alice", "bob"} {
		if err := users.Create(ctx, &user.User{Username: name, HashedPassword: "hash"}); err != nil {
			t.Fatalf("Create %s failed: %v", name, err)
		}
	}

	if err := users.AddContactRequest(ctx, "bob", "alice"); err != nil {
		t.Fatalf("AddContactRequest failed: %v", err)
	}
	if err := users.AddSentRequest(ctx, "alice", "bob"); err != nil {
		t.Fatalf("AddSentRequest failed: %v", err)
	}

	// duplicate is a conflict, atomically detected by the filter
	if err := users.AddContactRequest(ctx, "bob", "alice"); !errors.Is(err, pairchat_errors.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}

	// missing target
	if err := users.AddContactRequest(ctx, "ghost", "alice"); !errors.Is(err, pairchat_errors.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	bob, err := users.Get(ctx, "bob")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !bob.HasPendingRequestFrom("alice") {
		t.Fatalf("bob.contactRequests = %v", bob.ContactRequests)
	}
}

func TestUserRepositoryGrantContactUpserts(t *testing.T) {
	db := setupDB(t)
	users := NewUserRepository(db.Users(), DefaultStoreTimeout)
	ctx := context.Background()

	// carol does not exist; grant upserts an empty profile
	if err := users.GrantContact(ctx, "carol", "dave"); err != nil {
		t.Fatalf("GrantContact failed: %v", err)
	}

	carol, err := users.Get(ctx, "carol")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !carol.HasContact("dave") {
		t.Fatalf("carol.contacts = %v", carol.Contacts)
	}
	if carol.HashedPassword != "" {
		t.Fatalf("upserted profile should have no password hash")
	}

	// granting again must not duplicate the set member
	if err := users.GrantContact(ctx, "carol", "dave"); err != nil {
		t.Fatalf("second GrantContact failed: %v", err)
	}
	carol, _ = users.Get(ctx, "carol")
	if len(carol.Contacts) != 1 {
		t.Fatalf("contacts must stay a set, got %v", carol.Contacts)
	}
}

func TestUserRepositoryRemoveRequests(t *testing.T) {
	db := setupDB(t)
	users := NewUserRepository(db.Users(), DefaultStoreTimeout)
	ctx := context.Background()

	for _, name := range []string{"alice", "bob"} {
		if err := users.Create(ctx, &user.User{Username: name, HashedPassword: "hash"}); err != nil {
			t.Fatalf("Create %s failed: %v", name, err)
		}
	}
	if err := users.AddContactRequest(ctx, "bob", "alice"); err != nil {
		t.Fatalf("AddContactRequest failed: %v", err)
	}
	if err := users.AddSentRequest(ctx, "alice", "bob"); err != nil {
		t.Fatalf("AddSentRequest failed: %v", err)
	}

	if err := users.RemoveContactRequest(ctx, "bob", "alice"); err != nil {
		t.Fatalf("RemoveContactRequest failed: %v", err)
	}
	if err := users.RemoveSentRequest(ctx, "alice", "bob"); err != nil {
		t.Fatalf("RemoveSentRequest failed: %v", err)
	}

	bob, _ := users.Get(ctx, "bob")
	alice, _ := users.Get(ctx, "alice")
	if bob.HasPendingRequestFrom("alice") || alice.HasSentRequestTo("bob") {
		t.Fatal("request entries should be cleared")
	}

	// removing again is a no-op, not an error
	if err := users.RemoveContactRequest(ctx, "bob", "alice"); err != nil {
		t.Fatalf("repeat RemoveContactRequest failed: %v", err)
	}
}
