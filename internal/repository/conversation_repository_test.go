package repository

import (
	"context"
	"errors"
	"testing"

	"pairchat/internal/domain/conversation"
	pairchat_errors "pairchat/pkg/errors"
)

func TestConversationRepositoryCreateAndFind(t *testing.T) {
	db := setupDB(t)
	conversations := NewConversationRepository(db.Conversations(), DefaultStoreTimeout)
	ctx := context.Background()

	conv := conversation.New("conv-1", "alice", "bob")
	if err := conversations.Create(ctx, conv); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	found, err := conversations.FindByParticipants(ctx, "bob", "alice")
	if err != nil {
		t.Fatalf("FindByParticipants failed: %v", err)
	}
	if found.ID != "conv-1" {
		t.Fatalf("found wrong conversation: %s", found.ID)
	}

	// the unique pairKey index rejects a second conversation for the pair
	err = conversations.Create(ctx, conversation.New("conv-2", "bob", "alice"))
	if !errors.Is(err, pairchat_errors.ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}

	if _, err := conversations.GetByID(ctx, "missing"); !errors.Is(err, pairchat_errors.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestConversationRepositoryAppendAndRead(t *testing.T) {
	db := setupDB(t)
	conversations := NewConversationRepository(db.Conversations(), DefaultStoreTimeout)
	ctx := context.Background()

	conv := conversation.New("conv-1", "alice", "bob")
	if err := conversations.Create(ctx, conv); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	msg := conversation.Message{Sender: "alice", Body: "hello", ReadBy: map[string]bool{"alice": true}}
	if err := conversations.AppendMessage(ctx, "conv-1", msg); err != nil {
		t.Fatalf("AppendMessage failed: %v", err)
	}

	// non-participant sender does not match the filter
	bad := conversation.Message{Sender: "mallory", Body: "intrusion", ReadBy: map[string]bool{}}
	if err := conversations.AppendMessage(ctx, "conv-1", bad); !errors.Is(err, pairchat_errors.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for non-participant sender, got %v", err)
	}

	if err := conversations.MarkAllRead(ctx, "conv-1", "bob"); err != nil {
		t.Fatalf("MarkAllRead failed: %v", err)
	}
	got, err := conversations.GetByID(ctx, "conv-1")
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if len(got.Messages) != 1 {
		t.Fatalf("expected 1 message, got %d", len(got.Messages))
	}
	if !got.Messages[0].ReadBy["bob"] || !got.Messages[0].ReadBy["alice"] {
		t.Fatalf("readBy wrong: %v", got.Messages[0].ReadBy)
	}

	// mark-read on an empty conversation is fine too
	empty := conversation.New("conv-empty", "carol", "dave")
	if err := conversations.Create(ctx, empty); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if err := conversations.MarkAllRead(ctx, "conv-empty", "carol"); err != nil {
		t.Fatalf("MarkAllRead on empty conversation failed: %v", err)
	}
}

func TestConversationRepositoryTypingAndList(t *testing.T) {
	db := setupDB(t)
	conversations := NewConversationRepository(db.Conversations(), DefaultStoreTimeout)
	ctx := context.Background()

	if err := conversations.Create(ctx, conversation.New("conv-1", "alice", "bob")); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if err := conversations.Create(ctx, conversation.New("conv-2", "alice", "carol")); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if err := conversations.SetTyping(ctx, "conv-1", "alice", true); err != nil {
		t.Fatalf("SetTyping failed: %v", err)
	}
	got, _ := conversations.GetByID(ctx, "conv-1")
	if !got.Typing["alice"] {
		t.Fatalf("typing wrong: %v", got.Typing)
	}

	if err := conversations.SetTyping(ctx, "missing", "alice", true); !errors.Is(err, pairchat_errors.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	aliceConvs, err := conversations.ListForUser(ctx, "alice")
	if err != nil {
		t.Fatalf("ListForUser failed: %v", err)
	}
	if len(aliceConvs) != 2 {
		t.Fatalf("alice should have 2 conversations, got %d", len(aliceConvs))
	}

	bobConvs, err := conversations.ListForUser(ctx, "bob")
	if err != nil {
		t.Fatalf("ListForUser failed: %v", err)
	}
	if len(bobConvs) != 1 {
		t.Fatalf("bob should have 1 conversation, got %d", len(bobConvs))
	}
}
