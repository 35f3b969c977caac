package postgres

import (
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// Open opens a PostgreSQL database using the pgx stdlib driver.
func Open(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}

// Migrate runs idempotent DDL migrations for the concord schema on PostgreSQL.
func Migrate(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS profiles (
			id         TEXT PRIMARY KEY,
			name       TEXT NOT NULL,
			avatar_url TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS servers (
			id               TEXT PRIMARY KEY,
			name             TEXT NOT NULL,
			image_url        TEXT NOT NULL DEFAULT '',
			invite_code      TEXT UNIQUE NOT NULL,
			owner_profile_id TEXT NOT NULL REFERENCES profiles(id),
			created_at       TIMESTAMPTZ NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS channels (
			id         TEXT PRIMARY KEY,
			server_id  TEXT NOT NULL REFERENCES servers(id) ON DELETE CASCADE,
			name       TEXT NOT NULL,
			type       TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL,
			UNIQUE (server_id, name)
		);`,
		`CREATE TABLE IF NOT EXISTS members (
			id         TEXT PRIMARY KEY,
			server_id  TEXT NOT NULL REFERENCES servers(id) ON DELETE CASCADE,
			profile_id TEXT NOT NULL REFERENCES profiles(id),
			role       TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL,
			UNIQUE (server_id, profile_id)
		);`,
		`CREATE TABLE IF NOT EXISTS conversations (
			id            TEXT PRIMARY KEY,
			member_one_id TEXT NOT NULL REFERENCES members(id) ON DELETE CASCADE,
			member_two_id TEXT NOT NULL REFERENCES members(id) ON DELETE CASCADE,
			created_at    TIMESTAMPTZ NOT NULL,
			UNIQUE (member_one_id, member_two_id),
			CHECK (member_one_id < member_two_id)
		);`,
		`CREATE TABLE IF NOT EXISTS messages (
			id              TEXT PRIMARY KEY,
			channel_id      TEXT REFERENCES channels(id) ON DELETE CASCADE,
			conversation_id TEXT REFERENCES conversations(id) ON DELETE CASCADE,
			member_id       TEXT NOT NULL REFERENCES members(id) ON DELETE CASCADE,
			content         TEXT NOT NULL,
			file_url        TEXT,
			deleted         BOOLEAN NOT NULL DEFAULT FALSE,
			created_at      TIMESTAMPTZ NOT NULL,
			updated_at      TIMESTAMPTZ NOT NULL,
			CHECK ((channel_id IS NULL) <> (conversation_id IS NULL))
		);`,
		`CREATE INDEX IF NOT EXISTS idx_channels_server ON channels(server_id);`,
		`CREATE INDEX IF NOT EXISTS idx_members_server ON members(server_id);`,
		`CREATE INDEX IF NOT EXISTS idx_members_profile ON members(profile_id);`,
		`CREATE INDEX IF NOT EXISTS idx_messages_member ON messages(member_id);`,
		`CREATE INDEX IF NOT EXISTS idx_messages_channel_created ON messages(channel_id, created_at DESC, id DESC);`,
		`CREATE INDEX IF NOT EXISTS idx_messages_conversation_created ON messages(conversation_id, created_at DESC, id DESC);`,
	}

	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}

	return nil
}
