package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"concord/internal/domain"
)

type ConversationRepo struct {
	db *sql.DB
}

func NewConversationRepo(db *sql.DB) *ConversationRepo {
	return &ConversationRepo{db: db}
}

var _ domain.ConversationRepository = (*ConversationRepo)(nil)

// GetOrCreate returns the conversation for the normalized member pair,
// creating it on first interaction. The insert races safely against
// concurrent callers via the unique pair constraint.
func (r *ConversationRepo) GetOrCreate(ctx context.Context, memberOneID, memberTwoID string) (*domain.Conversation, error) {
	insert := `
		INSERT INTO conversations (id, member_one_id, member_two_id, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (member_one_id, member_two_id) DO NOTHING
	`
	if _, err := r.db.ExecContext(ctx, insert,
		uuid.NewString(), memberOneID, memberTwoID, time.Now().UTC(),
	); err != nil {
		return nil, fmt.Errorf("insert conversation: %w", err)
	}

	query := `
		SELECT id, member_one_id, member_two_id, created_at
		FROM conversations
		WHERE member_one_id = $1 AND member_two_id = $2
	`
	c := &domain.Conversation{}
	err := r.db.QueryRowContext(ctx, query, memberOneID, memberTwoID).Scan(
		&c.ID, &c.MemberOneID, &c.MemberTwoID, &c.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get conversation: %w", err)
	}
	return c, nil
}

func (r *ConversationRepo) GetByID(ctx context.Context, id string) (*domain.Conversation, error) {
	query := `
		SELECT id, member_one_id, member_two_id, created_at
		FROM conversations
		WHERE id = $1
	`
	c := &domain.Conversation{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&c.ID, &c.MemberOneID, &c.MemberTwoID, &c.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get conversation: %w", err)
	}
	return c, nil
}
