package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"concord/internal/domain"
)

type ServerRepo struct {
	db *sql.DB
}

func NewServerRepo(db *sql.DB) *ServerRepo {
	return &ServerRepo{db: db}
}

var _ domain.ServerRepository = (*ServerRepo)(nil)

func (r *ServerRepo) Create(ctx context.Context, s *domain.Server) error {
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now().UTC()
	}
	query := `
		INSERT INTO servers (id, name, image_url, invite_code, owner_profile_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	if _, err := r.db.ExecContext(ctx, query,
		s.ID, s.Name, s.ImageURL, s.InviteCode, s.OwnerProfileID, s.CreatedAt,
	); err != nil {
		return fmt.Errorf("insert server: %w", err)
	}
	return nil
}

func (r *ServerRepo) GetByID(ctx context.Context, id string) (*domain.Server, error) {
	return r.getOne(ctx, `WHERE id = $1`, id)
}

func (r *ServerRepo) GetByInviteCode(ctx context.Context, code string) (*domain.Server, error) {
	return r.getOne(ctx, `WHERE invite_code = $1`, code)
}

func (r *ServerRepo) getOne(ctx context.Context, where string, arg any) (*domain.Server, error) {
	query := `
		SELECT id, name, image_url, invite_code, owner_profile_id, created_at
		FROM servers
	` + where
	s := &domain.Server{}
	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&s.ID, &s.Name, &s.ImageURL, &s.InviteCode, &s.OwnerProfileID, &s.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get server: %w", err)
	}
	return s, nil
}

func (r *ServerRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM servers WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete server: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}
