// Package memory holds in-memory implementations of the store
// interfaces. They mirror the document-store update semantics
// (set-valued fields, conditional matches, unique pair key) and back
// the unit tests.
package memory

import (
	"context"
	"sync"
	"time"

	"pairchat/internal/domain/conversation"
	"pairchat/internal/domain/user"
	pairchat_errors "pairchat/pkg/errors"
)

type UserStore struct {
	mu    sync.Mutex
	users map[string]*user.User
}

func NewUserStore() *UserStore {
	return &UserStore{users: make(map[string]*user.User)}
}

func (s *UserStore) Create(_ context.Context, u *user.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[u.Username]; ok {
		return pairchat_errors.ErrAlreadyExists
	}
	now := time.Now()
	stored := *u
	stored.CreatedAt = now
	stored.UpdatedAt = now
	if stored.Contacts == nil {
		stored.Contacts = []string{}
	}
	if stored.ContactRequests == nil {
		stored.ContactRequests = []string{}
	}
	if stored.SentRequests == nil {
		stored.SentRequests = []string{}
	}
	s.users[u.Username] = &stored
	return nil
}

func (s *UserStore) Get(_ context.Context, username string) (user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[username]
	if !ok {
		return user.User{}, pairchat_errors.ErrNotFound
	}
	return copyUser(u), nil
}

func (s *UserStore) Exists(_ context.Context, username string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.users[username]
	return ok, nil
}

func (s *UserStore) AddContactRequest(_ context.Context, target, requester string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[target]
	if !ok {
		return pairchat_errors.ErrNotFound
	}
	if containsMember(u.ContactRequests, requester) {
		return pairchat_errors.ErrConflict
	}
	u.ContactRequests = append(u.ContactRequests, requester)
	u.UpdatedAt = time.Now()
	return nil
}

func (s *UserStore) AddSentRequest(_ context.Context, requester, target string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[requester]
	if !ok {
		return pairchat_errors.ErrNotFound
	}
	u.SentRequests = addToSet(u.SentRequests, target)
	u.UpdatedAt = time.Now()
	return nil
}

func (s *UserStore) GrantContact(_ context.Context, username, contact string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[username]
	if !ok {
		u = &user.User{
			Username:        username,
			Contacts:        []string{},
			ContactRequests: []string{},
			SentRequests:    []string{},
			CreatedAt:       time.Now(),
		}
		s.users[username] = u
	}
	u.Contacts = addToSet(u.Contacts, contact)
	u.ContactRequests = pull(u.ContactRequests, contact)
	u.SentRequests = pull(u.SentRequests, contact)
	u.UpdatedAt = time.Now()
	return nil
}

func (s *UserStore) RemoveContactRequest(_ context.Context, username, from string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[username]
	if !ok {
		return pairchat_errors.ErrNotFound
	}
	u.ContactRequests = pull(u.ContactRequests, from)
	u.UpdatedAt = time.Now()
	return nil
}

func (s *UserStore) RemoveSentRequest(_ context.Context, username, to string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[username]
	if !ok {
		return pairchat_errors.ErrNotFound
	}
	u.SentRequests = pull(u.SentRequests, to)
	u.UpdatedAt = time.Now()
	return nil
}

type ConversationStore struct {
	mu            sync.Mutex
	conversations map[string]*conversation.Conversation
}

func NewConversationStore() *ConversationStore {
	return &ConversationStore{conversations: make(map[string]*conversation.Conversation)}
}

func (s *ConversationStore) Create(_ context.Context, c *conversation.Conversation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.conversations {
		if existing.PairKey == c.PairKey {
			return pairchat_errors.ErrAlreadyExists
		}
	}
	stored := copyConversation(c)
	s.conversations[c.ID] = &stored
	return nil
}

func (s *ConversationStore) GetByID(_ context.Context, id string) (conversation.Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.conversations[id]
	if !ok {
		return conversation.Conversation{}, pairchat_errors.ErrNotFound
	}
	return copyConversation(c), nil
}

func (s *ConversationStore) FindByParticipants(_ context.Context, a, b string) (conversation.Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := conversation.PairKey(a, b)
	for _, c := range s.conversations {
		if c.PairKey == key {
			return copyConversation(c), nil
		}
	}
	return conversation.Conversation{}, pairchat_errors.ErrNotFound
}

func (s *ConversationStore) ListForUser(_ context.Context, username string) ([]conversation.Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := []conversation.Conversation{}
	for _, c := range s.conversations {
		if c.Participants[username] {
			out = append(out, copyConversation(c))
		}
	}
	return out, nil
}

func (s *ConversationStore) AppendMessage(_ context.Context, id string, m conversation.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.conversations[id]
	if !ok || !c.Participants[m.Sender] {
		return pairchat_errors.ErrNotFound
	}
	c.Messages = append(c.Messages, m)
	return nil
}

func (s *ConversationStore) MarkAllRead(_ context.Context, id, reader string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.conversations[id]
	if !ok {
		return pairchat_errors.ErrNotFound
	}
	for i := range c.Messages {
		if c.Messages[i].ReadBy == nil {
			c.Messages[i].ReadBy = map[string]bool{}
		}
		c.Messages[i].ReadBy[reader] = true
	}
	return nil
}

func (s *ConversationStore) SetTyping(_ context.Context, id, username string, typing bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.conversations[id]
	if !ok {
		return pairchat_errors.ErrNotFound
	}
	if c.Typing == nil {
		c.Typing = map[string]bool{}
	}
	c.Typing[username] = typing
	return nil
}

func copyUser(u *user.User) user.User {
	out := *u
	out.Contacts = append([]string{}, u.Contacts...)
	out.ContactRequests = append([]string{}, u.ContactRequests...)
	out.SentRequests = append([]string{}, u.SentRequests...)
	return out
}

func copyConversation(c *conversation.Conversation) conversation.Conversation {
	out := *c
	out.Participants = copyBoolMap(c.Participants)
	out.Typing = copyBoolMap(c.Typing)
	out.Messages = make([]conversation.Message, len(c.Messages))
	for i, m := range c.Messages {
		copied := m
		copied.ReadBy = copyBoolMap(m.ReadBy)
		out.Messages[i] = copied
	}
	return out
}

func copyBoolMap(in map[string]bool) map[string]bool {
	out := make(map[string]bool, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func containsMember(set []string, member string) bool {
	for _, s := range set {
		if s == member {
			return true
		}
	}
	return false
}

func addToSet(set []string, member string) []string {
	if containsMember(set, member) {
		return set
	}
	return append(set, member)
}

func pull(set []string, member string) []string {
	out := set[:0]
	for _, s := range set {
		if s != member {
			out = append(out, s)
		}
	}
	return out
}
