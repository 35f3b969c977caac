package domain

import (
	"fmt"
	"time"
)

// MemberRole determines which message operations a member may perform on
// messages authored by others.
type MemberRole string

const (
	RoleAdmin     MemberRole = "ADMIN"
	RoleModerator MemberRole = "MODERATOR"
	RoleGuest     MemberRole = "GUEST"
)

// Valid reports whether the role is one of the known roles.
func (r MemberRole) Valid() bool {
	switch r {
	case RoleAdmin, RoleModerator, RoleGuest:
		return true
	}
	return false
}

// ChannelType distinguishes text channels from audio/video rooms.
type ChannelType string

const (
	ChannelText  ChannelType = "TEXT"
	ChannelAudio ChannelType = "AUDIO"
	ChannelVideo ChannelType = "VIDEO"
)

// Valid reports whether the channel type is one of the known types.
func (t ChannelType) Valid() bool {
	switch t {
	case ChannelText, ChannelAudio, ChannelVideo:
		return true
	}
	return false
}

// DefaultChannelName is the channel every server is created with. It cannot
// be renamed, deleted, or shadowed by another channel.
const DefaultChannelName = "general"

// TombstoneContent replaces a message's content when it is soft-deleted.
const TombstoneContent = "[deleted]"

// Profile is the local reference to an externally managed identity. The
// identity provider owns the canonical record; we only mirror the fields
// needed to render message authors.
type Profile struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	AvatarURL string    `db:"avatar_url" json:"avatar_url"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Server is a named collection of channels and members.
type Server struct {
	ID             string    `db:"id" json:"id"`
	Name           string    `db:"name" json:"name"`
	ImageURL       string    `db:"image_url" json:"image_url"`
	InviteCode     string    `db:"invite_code" json:"invite_code"`
	OwnerProfileID string    `db:"owner_profile_id" json:"owner_profile_id"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}

// Channel belongs to exactly one server. Channel names are unique within a
// server by exact string equality.
type Channel struct {
	ID        string      `db:"id" json:"id"`
	ServerID  string      `db:"server_id" json:"server_id"`
	Name      string      `db:"name" json:"name"`
	Type      ChannelType `db:"type" json:"type"`
	CreatedAt time.Time   `db:"created_at" json:"created_at"`
}

// Member binds a profile to a server with a role. One member exists per
// (server, profile) pair.
type Member struct {
	ID        string     `db:"id" json:"id"`
	ServerID  string     `db:"server_id" json:"server_id"`
	ProfileID string     `db:"profile_id" json:"profile_id"`
	Role      MemberRole `db:"role" json:"role"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`

	// Joined relation, populated by reads that need author rendering.
	Profile *Profile `db:"-" json:"profile,omitempty"`
}

// Conversation is a direct-message thread between two distinct members.
// The pair is normalized so that MemberOneID < MemberTwoID, which makes the
// unordered pair unique.
type Conversation struct {
	ID          string    `db:"id" json:"id"`
	MemberOneID string    `db:"member_one_id" json:"member_one_id"`
	MemberTwoID string    `db:"member_two_id" json:"member_two_id"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// Includes reports whether the given member is part of the conversation.
func (c *Conversation) Includes(memberID string) bool {
	return c.MemberOneID == memberID || c.MemberTwoID == memberID
}

// Message belongs to exactly one channel or one conversation, never both.
// Once Deleted is set the content is fixed to TombstoneContent, FileURL is
// cleared, and the record is immutable.
type Message struct {
	ID             string    `db:"id" json:"id"`
	ChannelID      *string   `db:"channel_id" json:"channel_id,omitempty"`
	ConversationID *string   `db:"conversation_id" json:"conversation_id,omitempty"`
	MemberID       string    `db:"member_id" json:"member_id"`
	Content        string    `db:"content" json:"content"`
	FileURL        *string   `db:"file_url" json:"file_url"`
	Deleted        bool      `db:"deleted" json:"deleted"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`

	// Joined relation, populated by reads.
	Member *Member `db:"-" json:"member,omitempty"`
}

// In reports whether the message belongs to the given container.
func (m *Message) In(c Container) bool {
	switch c.Kind {
	case ContainerChannel:
		return m.ChannelID != nil && *m.ChannelID == c.ID
	case ContainerConversation:
		return m.ConversationID != nil && *m.ConversationID == c.ID
	}
	return false
}

// ContainerKind identifies the owner type of a set of messages.
type ContainerKind string

const (
	ContainerChannel      ContainerKind = "channel"
	ContainerConversation ContainerKind = "conversation"
)

// Container is the scope that owns a set of messages: a channel or a
// conversation. It is also the unit of fan-out topic derivation.
type Container struct {
	Kind ContainerKind
	ID   string
}

// Topic returns the fan-out routing key for the given event kind
// ("create" or "update"), e.g. "channel:42:message:update".
func (c Container) Topic(event string) string {
	return fmt.Sprintf("%s:%s:message:%s", c.Kind, c.ID, event)
}
