package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"concord/internal/domain"
)

type ChannelRepo struct {
	db *sql.DB
}

func NewChannelRepo(db *sql.DB) *ChannelRepo {
	return &ChannelRepo{db: db}
}

var _ domain.ChannelRepository = (*ChannelRepo)(nil)

func (r *ChannelRepo) Create(ctx context.Context, c *domain.Channel) error {
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	query := `
		INSERT INTO channels (id, server_id, name, type, created_at)
		VALUES (?, ?, ?, ?, ?)
	`
	if _, err := r.db.ExecContext(ctx, query, c.ID, c.ServerID, c.Name, c.Type, c.CreatedAt); err != nil {
		return fmt.Errorf("insert channel: %w", err)
	}
	return nil
}

func (r *ChannelRepo) GetByID(ctx context.Context, id string) (*domain.Channel, error) {
	return r.getOne(ctx, `WHERE id = ?`, id)
}

func (r *ChannelRepo) GetByName(ctx context.Context, serverID, name string) (*domain.Channel, error) {
	return r.getOne(ctx, `WHERE server_id = ? AND name = ?`, serverID, name)
}

func (r *ChannelRepo) getOne(ctx context.Context, where string, args ...any) (*domain.Channel, error) {
	query := `
		SELECT id, server_id, name, type, created_at
		FROM channels
	` + where
	c := &domain.Channel{}
	err := r.db.QueryRowContext(ctx, query, args...).Scan(
		&c.ID, &c.ServerID, &c.Name, &c.Type, &c.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get channel: %w", err)
	}
	return c, nil
}

func (r *ChannelRepo) ListForServer(ctx context.Context, serverID string) ([]*domain.Channel, error) {
	query := `
		SELECT id, server_id, name, type, created_at
		FROM channels
		WHERE server_id = ?
		ORDER BY created_at ASC
	`
	rows, err := r.db.QueryContext(ctx, query, serverID)
	if err != nil {
		return nil, fmt.Errorf("list channels: %w", err)
	}
	defer rows.Close()

	var res []*domain.Channel
	for rows.Next() {
		c := &domain.Channel{}
		if err := rows.Scan(&c.ID, &c.ServerID, &c.Name, &c.Type, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan channel: %w", err)
		}
		res = append(res, c)
	}
	return res, rows.Err()
}

func (r *ChannelRepo) Rename(ctx context.Context, id, name string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE channels SET name = ? WHERE id = ?`, name, id)
	if err != nil {
		return fmt.Errorf("rename channel: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *ChannelRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM channels WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete channel: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}
