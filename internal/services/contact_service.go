package services

import (
	"context"
	"errors"

	"pairchat/internal/domain/conversation"
	"pairchat/internal/repository"
	pairchat_errors "pairchat/pkg/errors"
	"pairchat/pkg/logger"

	"github.com/google/uuid"
)

// ContactService drives the contact handshake: request, accept or
// decline, and the conversation that acceptance brings into existence.
type ContactService struct {
	userRepo repository.UserRepository
	convRepo repository.ConversationRepository
	log      *logger.Logger
}

func NewContactService(userRepo repository.UserRepository, convRepo repository.ConversationRepository, l *logger.Logger) *ContactService {
	return &ContactService{userRepo: userRepo, convRepo: convRepo, log: l}
}

// SendRequest moves the (requester, target) pair from none to requested.
// The two appends touch two different user documents and are not
// transactional: if the second write fails the requester will not see
// the request under sent-requests, while the target still can accept
// it. Accept and decline both tolerate that skew because their removals
// are $pull no-ops on absent members.
func (s *ContactService) SendRequest(ctx context.Context, requester, target string) error {
	if requester == target {
		return pairchat_errors.ErrInvalidInput
	}

	if err := s.userRepo.AddContactRequest(ctx, target, requester); err != nil {
		return err
	}

	if err := s.userRepo.AddSentRequest(ctx, requester, target); err != nil {
		if s.log != nil {
			s.log.Errorf("sent-requests update failed for %s -> %s: %s", requester, target, err)
		}
		return err
	}

	return nil
}

// AcceptResult reports the conversation the acceptance resolved to and
// whether this call created it.
type AcceptResult struct {
	Conversation conversation.Conversation
	Created      bool
}

// Accept makes user and contact mutual contacts, clears the pending
// request in both directions, and ensures their conversation exists.
// A missing user document is upserted as an empty profile; this
// endpoint is deliberately lenient about absent records.
func (s *ContactService) Accept(ctx context.Context, username, contact string) (AcceptResult, error) {
	if username == contact {
		return AcceptResult{}, pairchat_errors.ErrInvalidInput
	}

	if err := s.userRepo.GrantContact(ctx, username, contact); err != nil {
		return AcceptResult{}, err
	}
	if err := s.userRepo.GrantContact(ctx, contact, username); err != nil {
		return AcceptResult{}, err
	}

	return s.ensureConversation(ctx, username, contact)
}

// ensureConversation is lookup-then-create. The unique pairKey index
// turns the lost race into a duplicate key error, which resolves to the
// winner's document, so duplicate accepts still end with exactly one
// conversation per pair.
func (s *ContactService) ensureConversation(ctx context.Context, a, b string) (AcceptResult, error) {
	existing, err := s.convRepo.FindByParticipants(ctx, a, b)
	if err == nil {
		return AcceptResult{Conversation: existing, Created: false}, nil
	}
	if !errors.Is(err, pairchat_errors.ErrNotFound) {
		return AcceptResult{}, err
	}

	created := conversation.New(uuid.NewString(), a, b)
	if err := s.convRepo.Create(ctx, created); err != nil {
		if errors.Is(err, pairchat_errors.ErrAlreadyExists) {
			winner, findErr := s.convRepo.FindByParticipants(ctx, a, b)
			if findErr != nil {
				return AcceptResult{}, findErr
			}
			return AcceptResult{Conversation: winner, Created: false}, nil
		}
		return AcceptResult{}, err
	}

	return AcceptResult{Conversation: *created, Created: true}, nil
}

// Decline clears the pending request without creating contacts or a
// conversation. The requester's sent-requests cleanup is best effort;
// a missing requester record is not an error here.
func (s *ContactService) Decline(ctx context.Context, username, contact string) error {
	if err := s.userRepo.RemoveContactRequest(ctx, username, contact); err != nil {
		return err
	}

	if err := s.userRepo.RemoveSentRequest(ctx, contact, username); err != nil && !errors.Is(err, pairchat_errors.ErrNotFound) {
		return err
	}

	return nil
}

func (s *ContactService) Contacts(ctx context.Context, username string) ([]string, error) {
	u, err := s.userRepo.Get(ctx, username)
	if err != nil {
		return nil, err
	}
	return emptyIfNil(u.Contacts), nil
}

func (s *ContactService) PendingRequests(ctx context.Context, username string) ([]string, error) {
	u, err := s.userRepo.Get(ctx, username)
	if err != nil {
		return nil, err
	}
	return emptyIfNil(u.ContactRequests), nil
}

func (s *ContactService) SentRequests(ctx context.Context, username string) ([]string, error) {
	u, err := s.userRepo.Get(ctx, username)
	if err != nil {
		return nil, err
	}
	return emptyIfNil(u.SentRequests), nil
}

func emptyIfNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
