package domain

import (
	"context"
)

// Reads that miss return (nil, ErrNotFound), never a fabricated record.

// ProfileRepository defines persistence operations for identity references.
type ProfileRepository interface {
	Upsert(ctx context.Context, p *Profile) error
	GetByID(ctx context.Context, id string) (*Profile, error)
}

// ServerRepository defines persistence operations for servers.
type ServerRepository interface {
	Create(ctx context.Context, s *Server) error
	GetByID(ctx context.Context, id string) (*Server, error)
	GetByInviteCode(ctx context.Context, code string) (*Server, error)
	Delete(ctx context.Context, id string) error
}

// ChannelRepository defines persistence operations for channels.
type ChannelRepository interface {
	Create(ctx context.Context, c *Channel) error
	GetByID(ctx context.Context, id string) (*Channel, error)
	GetByName(ctx context.Context, serverID, name string) (*Channel, error)
	ListForServer(ctx context.Context, serverID string) ([]*Channel, error)
	Rename(ctx context.Context, id, name string) error
	Delete(ctx context.Context, id string) error
}

// MemberRepository defines persistence operations for server members.
type MemberRepository interface {
	Create(ctx context.Context, m *Member) error
	GetByID(ctx context.Context, id string) (*Member, error)
	GetByServerAndProfile(ctx context.Context, serverID, profileID string) (*Member, error)
	UpdateRole(ctx context.Context, id string, role MemberRole) error
	Delete(ctx context.Context, id string) error
}

// ConversationRepository defines persistence operations for direct-message
// conversations. GetOrCreate expects a normalized pair (memberOneID <
// memberTwoID) and creates the conversation lazily on first interaction.
type ConversationRepository interface {
	GetOrCreate(ctx context.Context, memberOneID, memberTwoID string) (*Conversation, error)
	GetByID(ctx context.Context, id string) (*Conversation, error)
}

// MessageRepository defines persistence operations for messages. All reads
// return the author member and profile joined in, so callers never issue
// follow-up lookups to render a message.
type MessageRepository interface {
	Create(ctx context.Context, m *Message) error
	GetByID(ctx context.Context, id string) (*Message, error)
	// Update persists a content edit. It is not used for deletion.
	Update(ctx context.Context, m *Message) error
	// SoftDelete tombstones the message in a single atomic update: content
	// becomes TombstoneContent, the file reference is cleared, and the
	// deleted flag is set.
	SoftDelete(ctx context.Context, id string) error
	// ListPage returns up to limit messages of the container in reverse
	// chronological order. A non-empty cursor is the id of the last message
	// of the previous page; the batch starts strictly after it (the cursor
	// record itself is skipped). An unknown cursor yields an empty page.
	ListPage(ctx context.Context, container Container, cursor string, limit int) ([]*Message, error)
}
