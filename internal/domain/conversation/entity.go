package conversation

import (
	"sort"
	"strings"
	"time"
)

// Conversation is a document in the conversations collection. It holds
// exactly two participants; the map form keeps participant lookups a
// single field query (participants.<name>: true).
//
// PairKey is the sorted participant pair joined with "|". A unique
// index on it guarantees at most one conversation per pair even when
// two accepts race.
type Conversation struct {
	ID           string          `bson:"_id" json:"conversationId"`
	PairKey      string          `bson:"pairKey" json:"-"`
	Participants map[string]bool `bson:"participants" json:"participants"`
	Messages     []Message       `bson:"messages" json:"messages"`
	Typing       map[string]bool `bson:"typing" json:"typing"`
	CreatedAt    time.Time       `bson:"createdAt" json:"createdAt"`
}

// Message is an element of Conversation.Messages. Sender and Timestamp
// never change after the append; ReadBy only ever gains entries.
type Message struct {
	Sender    string          `bson:"sender" json:"sender"`
	Body      string          `bson:"body" json:"body"`
	Timestamp time.Time       `bson:"timestamp" json:"timestamp"`
	ReadBy    map[string]bool `bson:"readBy" json:"readBy"`
}

// PairKey builds the canonical key for an unordered username pair.
func PairKey(a, b string) string {
	pair := []string{a, b}
	sort.Strings(pair)
	return strings.Join(pair, "|")
}

// New returns an empty conversation between a and b.
func New(id, a, b string) *Conversation {
	return &Conversation{
		ID:           id,
		PairKey:      PairKey(a, b),
		Participants: map[string]bool{a: true, b: true},
		Messages:     []Message{},
		Typing:       map[string]bool{},
		CreatedAt:    time.Now(),
	}
}

// IsParticipant reports whether username belongs to the conversation.
func (c *Conversation) IsParticipant(username string) bool {
	return c.Participants[username]
}
