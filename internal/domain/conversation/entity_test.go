package conversation

import (
	"testing"
)

func TestPairKeyIsOrderIndependent(t *testing.T) {
	if PairKey("alice", "bob") != PairKey("bob", "alice") {
		t.Fatal("pair key must not depend on argument order")
	}
	if PairKey("alice", "bob") != "alice|bob" {
		t.Fatalf("unexpected pair key: %s", PairKey("alice", "bob"))
	}
}

func TestNewConversation(t *testing.T) {
	c := New("id-1", "bob", "alice")

	if c.PairKey != "alice|bob" {
		t.Fatalf("unexpected pair key: %s", c.PairKey)
	}
	if !c.IsParticipant("alice") || !c.IsParticipant("bob") {
		t.Fatalf("participants wrong: %v", c.Participants)
	}
	if c.IsParticipant("mallory") {
		t.Fatal("mallory is not a participant")
	}
	if len(c.Messages) != 0 {
		t.Fatal("new conversation must start with zero messages")
	}
}
