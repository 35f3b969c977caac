package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"concord/internal/domain"
)

// ServerService manages servers and their memberships.
type ServerService struct {
	servers  domain.ServerRepository
	channels domain.ChannelRepository
	members  domain.MemberRepository
}

func NewServerService(
	servers domain.ServerRepository,
	channels domain.ChannelRepository,
	members domain.MemberRepository,
) *ServerService {
	return &ServerService{servers: servers, channels: channels, members: members}
}

type ServerCreateInput struct {
	Name     string
	ImageURL string
}

// Create creates a server owned by the given profile, together with its
// "general" text channel and an admin membership for the creator. Every
// server carries exactly one general channel for its whole lifetime.
func (s *ServerService) Create(ctx context.Context, profile *domain.Profile, in ServerCreateInput) (*domain.Server, error) {
	if in.Name == "" {
		return nil, domain.ErrInvalidInput
	}

	srv := &domain.Server{
		ID:             uuid.NewString(),
		Name:           in.Name,
		ImageURL:       in.ImageURL,
		InviteCode:     uuid.NewString(),
		OwnerProfileID: profile.ID,
	}
	if err := s.servers.Create(ctx, srv); err != nil {
		return nil, fmt.Errorf("create server: %w", err)
	}

	general := &domain.Channel{
		ID:       uuid.NewString(),
		ServerID: srv.ID,
		Name:     domain.DefaultChannelName,
		Type:     domain.ChannelText,
	}
	if err := s.channels.Create(ctx, general); err != nil {
		return nil, fmt.Errorf("create general channel: %w", err)
	}

	owner := &domain.Member{
		ID:        uuid.NewString(),
		ServerID:  srv.ID,
		ProfileID: profile.ID,
		Role:      domain.RoleAdmin,
	}
	if err := s.members.Create(ctx, owner); err != nil {
		return nil, fmt.Errorf("create owner member: %w", err)
	}

	return srv, nil
}

// Join adds the profile to the server behind the invite code as a guest.
// Joining a server the profile already belongs to just returns the server.
func (s *ServerService) Join(ctx context.Context, profile *domain.Profile, inviteCode string) (*domain.Server, error) {
	if inviteCode == "" {
		return nil, domain.ErrInvalidInput
	}
	srv, err := s.servers.GetByInviteCode(ctx, inviteCode)
	if err != nil {
		return nil, err
	}

	if _, err := s.members.GetByServerAndProfile(ctx, srv.ID, profile.ID); err == nil {
		return srv, nil
	}

	m := &domain.Member{
		ID:        uuid.NewString(),
		ServerID:  srv.ID,
		ProfileID: profile.ID,
		Role:      domain.RoleGuest,
	}
	if err := s.members.Create(ctx, m); err != nil {
		return nil, fmt.Errorf("create member: %w", err)
	}
	return srv, nil
}

// Leave removes the profile's membership. The owner cannot leave their own
// server; they have to delete it instead.
func (s *ServerService) Leave(ctx context.Context, profile *domain.Profile, serverID string) error {
	srv, err := s.servers.GetByID(ctx, serverID)
	if err != nil {
		return err
	}
	if srv.OwnerProfileID == profile.ID {
		return domain.ErrInvalidInput
	}
	m, err := s.members.GetByServerAndProfile(ctx, serverID, profile.ID)
	if err != nil {
		return err
	}
	return s.members.Delete(ctx, m.ID)
}

// Delete removes a server and, through the store's cascades, its channels,
// members, conversations, and messages. Only the owner may delete.
func (s *ServerService) Delete(ctx context.Context, profile *domain.Profile, serverID string) error {
	srv, err := s.servers.GetByID(ctx, serverID)
	if err != nil {
		return err
	}
	if srv.OwnerProfileID != profile.ID {
		return domain.ErrUnauthorized
	}
	return s.servers.Delete(ctx, serverID)
}

// UpdateMemberRole changes another member's role. Only admins may do this,
// only within their own server, and never on themselves.
func (s *ServerService) UpdateMemberRole(ctx context.Context, caller *domain.Member, memberID string, role domain.MemberRole) (*domain.Member, error) {
	if !role.Valid() {
		return nil, domain.ErrInvalidInput
	}
	if caller.Role != domain.RoleAdmin {
		return nil, domain.ErrUnauthorized
	}
	if memberID == caller.ID {
		return nil, domain.ErrInvalidInput
	}

	target, err := s.members.GetByID(ctx, memberID)
	if err != nil {
		return nil, err
	}
	if target.ServerID != caller.ServerID {
		return nil, domain.ErrNotFound
	}

	if err := s.members.UpdateRole(ctx, target.ID, role); err != nil {
		return nil, fmt.Errorf("update role: %w", err)
	}
	target.Role = role
	return target, nil
}
