package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"concord/internal/domain"
)

type MemberRepo struct {
	db *sql.DB
}

func NewMemberRepo(db *sql.DB) *MemberRepo {
	return &MemberRepo{db: db}
}

var _ domain.MemberRepository = (*MemberRepo)(nil)

func (r *MemberRepo) Create(ctx context.Context, m *domain.Member) error {
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}
	query := `
		INSERT INTO members (id, server_id, profile_id, role, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	if _, err := r.db.ExecContext(ctx, query, m.ID, m.ServerID, m.ProfileID, m.Role, m.CreatedAt); err != nil {
		return fmt.Errorf("insert member: %w", err)
	}
	return nil
}

func (r *MemberRepo) GetByID(ctx context.Context, id string) (*domain.Member, error) {
	return r.getOne(ctx, `WHERE m.id = $1`, id)
}

func (r *MemberRepo) GetByServerAndProfile(ctx context.Context, serverID, profileID string) (*domain.Member, error) {
	return r.getOne(ctx, `WHERE m.server_id = $1 AND m.profile_id = $2`, serverID, profileID)
}

func (r *MemberRepo) getOne(ctx context.Context, where string, args ...any) (*domain.Member, error) {
	query := `
		SELECT m.id, m.server_id, m.profile_id, m.role, m.created_at,
		       p.name, p.avatar_url, p.created_at
		FROM members m
		JOIN profiles p ON p.id = m.profile_id
	` + where
	m := &domain.Member{Profile: &domain.Profile{}}
	err := r.db.QueryRowContext(ctx, query, args...).Scan(
		&m.ID, &m.ServerID, &m.ProfileID, &m.Role, &m.CreatedAt,
		&m.Profile.Name, &m.Profile.AvatarURL, &m.Profile.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get member: %w", err)
	}
	m.Profile.ID = m.ProfileID
	return m, nil
}

func (r *MemberRepo) UpdateRole(ctx context.Context, id string, role domain.MemberRole) error {
	res, err := r.db.ExecContext(ctx, `UPDATE members SET role = $1 WHERE id = $2`, role, id)
	if err != nil {
		return fmt.Errorf("update member role: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *MemberRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM members WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete member: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}
