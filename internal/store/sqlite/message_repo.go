package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"concord/internal/domain"
)

type MessageRepo struct {
	db *sql.DB
}

func NewMessageRepo(db *sql.DB) *MessageRepo {
	return &MessageRepo{db: db}
}

var _ domain.MessageRepository = (*MessageRepo)(nil)

// messageColumns selects the message plus its author member and profile, so
// every read returns a fully renderable record.
const messageColumns = `
	m.id, m.channel_id, m.conversation_id, m.member_id, m.content, m.file_url,
	m.deleted, m.created_at, m.updated_at,
	mem.server_id, mem.role, mem.created_at,
	p.id, p.name, p.avatar_url, p.created_at
`

const messageJoins = `
	FROM messages m
	JOIN members mem ON mem.id = m.member_id
	JOIN profiles p ON p.id = mem.profile_id
`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMessage(row rowScanner) (*domain.Message, error) {
	m := &domain.Message{Member: &domain.Member{Profile: &domain.Profile{}}}
	err := row.Scan(
		&m.ID, &m.ChannelID, &m.ConversationID, &m.MemberID, &m.Content, &m.FileURL,
		&m.Deleted, &m.CreatedAt, &m.UpdatedAt,
		&m.Member.ServerID, &m.Member.Role, &m.Member.CreatedAt,
		&m.Member.Profile.ID, &m.Member.Profile.Name, &m.Member.Profile.AvatarURL, &m.Member.Profile.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	m.Member.ID = m.MemberID
	m.Member.ProfileID = m.Member.Profile.ID
	return m, nil
}

func (r *MessageRepo) Create(ctx context.Context, m *domain.Message) error {
	now := time.Now().UTC()
	if m.CreatedAt.IsZero() {
		m.CreatedAt = now
	}
	if m.UpdatedAt.IsZero() {
		m.UpdatedAt = m.CreatedAt
	}
	query := `
		INSERT INTO messages (id, channel_id, conversation_id, member_id, content, file_url, deleted, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	if _, err := r.db.ExecContext(ctx, query,
		m.ID, m.ChannelID, m.ConversationID, m.MemberID, m.Content, m.FileURL,
		m.Deleted, m.CreatedAt, m.UpdatedAt,
	); err != nil {
		return fmt.Errorf("insert message: %w", err)
	}
	return nil
}

func (r *MessageRepo) GetByID(ctx context.Context, id string) (*domain.Message, error) {
	query := `SELECT ` + messageColumns + messageJoins + `WHERE m.id = ?`
	m, err := scanMessage(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get message: %w", err)
	}
	return m, nil
}

func (r *MessageRepo) Update(ctx context.Context, m *domain.Message) error {
	query := `
		UPDATE messages
		SET content = ?, updated_at = ?
		WHERE id = ? AND deleted = 0
	`
	m.UpdatedAt = time.Now().UTC()
	res, err := r.db.ExecContext(ctx, query, m.Content, m.UpdatedAt, m.ID)
	if err != nil {
		return fmt.Errorf("update message: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *MessageRepo) SoftDelete(ctx context.Context, id string) error {
	// Single atomic update: tombstone content, clear the file reference,
	// mark deleted. The deleted guard makes the transition one-way.
	query := `
		UPDATE messages
		SET content = ?, file_url = NULL, deleted = 1, updated_at = ?
		WHERE id = ? AND deleted = 0
	`
	res, err := r.db.ExecContext(ctx, query, domain.TombstoneContent, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("soft delete message: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *MessageRepo) ListPage(ctx context.Context, container domain.Container, cursor string, limit int) ([]*domain.Message, error) {
	var column string
	switch container.Kind {
	case domain.ContainerChannel:
		column = "m.channel_id"
	case domain.ContainerConversation:
		column = "m.conversation_id"
	default:
		return nil, domain.ErrInvalidInput
	}

	var (
		query string
		args  []any
	)
	if cursor == "" {
		query = `SELECT ` + messageColumns + messageJoins + `
			WHERE ` + column + ` = ?
			ORDER BY m.created_at DESC, m.id DESC
			LIMIT ?
		`
		args = []any{container.ID, limit}
	} else {
		// Resume strictly after the cursor record in (created_at, id)
		// descending order; the cursor record itself is skipped.
		query = `SELECT ` + messageColumns + messageJoins + `
			WHERE ` + column + ` = ?
			  AND (m.created_at, m.id) < (SELECT created_at, id FROM messages WHERE id = ?)
			ORDER BY m.created_at DESC, m.id DESC
			LIMIT ?
		`
		args = []any{container.ID, cursor, limit}
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()

	var res []*domain.Message
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		res = append(res, m)
	}
	return res, rows.Err()
}
