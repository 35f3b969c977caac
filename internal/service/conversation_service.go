package service

import (
	"context"
	"fmt"

	"concord/internal/domain"
)

// ConversationService manages direct-message conversations between two
// members of the same server.
type ConversationService struct {
	conversations domain.ConversationRepository
	members       domain.MemberRepository
}

func NewConversationService(conversations domain.ConversationRepository, members domain.MemberRepository) *ConversationService {
	return &ConversationService{conversations: conversations, members: members}
}

// GetOrCreate opens the conversation between the caller's member and another
// member of the same server, creating it lazily on first interaction. The
// member pair is normalized so the unordered pair maps to one conversation.
func (s *ConversationService) GetOrCreate(ctx context.Context, caller *domain.Member, otherMemberID string) (*domain.Conversation, error) {
	if otherMemberID == "" {
		return nil, domain.ErrInvalidInput
	}
	if otherMemberID == caller.ID {
		return nil, domain.ErrInvalidInput
	}

	other, err := s.members.GetByID(ctx, otherMemberID)
	if err != nil {
		return nil, err
	}
	if other.ServerID != caller.ServerID {
		return nil, domain.ErrNotFound
	}

	one, two := caller.ID, other.ID
	if two < one {
		one, two = two, one
	}
	conv, err := s.conversations.GetOrCreate(ctx, one, two)
	if err != nil {
		return nil, fmt.Errorf("get or create conversation: %w", err)
	}
	return conv, nil
}

// ResolveCaller returns the conversation member whose profile matches the
// given identity. A profile outside the conversation gets not-found, so the
// conversation's existence is not leaked.
func (s *ConversationService) ResolveCaller(ctx context.Context, conv *domain.Conversation, profileID string) (*domain.Member, error) {
	for _, memberID := range []string{conv.MemberOneID, conv.MemberTwoID} {
		m, err := s.members.GetByID(ctx, memberID)
		if err != nil {
			return nil, err
		}
		if m.ProfileID == profileID {
			return m, nil
		}
	}
	return nil, domain.ErrNotFound
}

// GetByID returns the conversation, or not-found.
func (s *ConversationService) GetByID(ctx context.Context, id string) (*domain.Conversation, error) {
	return s.conversations.GetByID(ctx, id)
}
