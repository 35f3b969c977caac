package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"concord/internal/domain"
)

// ChannelService manages channels within a server. The "general" channel is
// protected: it cannot be created, renamed, or deleted through this service.
type ChannelService struct {
	channels domain.ChannelRepository
}

func NewChannelService(channels domain.ChannelRepository) *ChannelService {
	return &ChannelService{channels: channels}
}

func canManageChannels(caller *domain.Member) bool {
	return caller.Role == domain.RoleAdmin || caller.Role == domain.RoleModerator
}

// Create adds a channel to the caller's server. The name "general" is
// reserved and names must be unique within the server.
func (s *ChannelService) Create(ctx context.Context, caller *domain.Member, name string, chType domain.ChannelType) (*domain.Channel, error) {
	if !canManageChannels(caller) {
		return nil, domain.ErrUnauthorized
	}
	if name == "" || !chType.Valid() {
		return nil, domain.ErrInvalidInput
	}
	if name == domain.DefaultChannelName {
		return nil, domain.ErrInvalidInput
	}
	if _, err := s.channels.GetByName(ctx, caller.ServerID, name); err == nil {
		return nil, domain.ErrConflict
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	ch := &domain.Channel{
		ID:       uuid.NewString(),
		ServerID: caller.ServerID,
		Name:     name,
		Type:     chType,
	}
	if err := s.channels.Create(ctx, ch); err != nil {
		return nil, fmt.Errorf("create channel: %w", err)
	}
	return ch, nil
}

// Rename changes a channel's name, keeping the uniqueness and general-name
// rules intact.
func (s *ChannelService) Rename(ctx context.Context, caller *domain.Member, channelID, name string) (*domain.Channel, error) {
	if !canManageChannels(caller) {
		return nil, domain.ErrUnauthorized
	}
	if name == "" || name == domain.DefaultChannelName {
		return nil, domain.ErrInvalidInput
	}

	ch, err := s.loadManaged(ctx, caller, channelID)
	if err != nil {
		return nil, err
	}
	if existing, err := s.channels.GetByName(ctx, caller.ServerID, name); err == nil {
		if existing.ID != ch.ID {
			return nil, domain.ErrConflict
		}
		return ch, nil
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	if err := s.channels.Rename(ctx, ch.ID, name); err != nil {
		return nil, fmt.Errorf("rename channel: %w", err)
	}
	ch.Name = name
	return ch, nil
}

// Delete removes a channel from the caller's server.
func (s *ChannelService) Delete(ctx context.Context, caller *domain.Member, channelID string) error {
	if !canManageChannels(caller) {
		return domain.ErrUnauthorized
	}
	ch, err := s.loadManaged(ctx, caller, channelID)
	if err != nil {
		return err
	}
	return s.channels.Delete(ctx, ch.ID)
}

// loadManaged fetches a channel scoped to the caller's server and rejects
// operations on the protected general channel.
func (s *ChannelService) loadManaged(ctx context.Context, caller *domain.Member, channelID string) (*domain.Channel, error) {
	ch, err := s.channels.GetByID(ctx, channelID)
	if err != nil {
		return nil, err
	}
	if ch.ServerID != caller.ServerID {
		return nil, domain.ErrNotFound
	}
	if ch.Name == domain.DefaultChannelName {
		return nil, domain.ErrInvalidInput
	}
	return ch, nil
}
