// Package sqlite implements database.Store on SQLite through go-sqlite3.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"vidshare-api/internal/database"

	"github.com/google/uuid"
	"github.com/mattn/go-sqlite3"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		username TEXT NOT NULL UNIQUE,
		email TEXT NOT NULL UNIQUE,
		full_name TEXT NOT NULL DEFAULT '',
		avatar TEXT NOT NULL DEFAULT '',
		cover_image TEXT NOT NULL DEFAULT '',
		password TEXT NOT NULL,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS videos (
		id TEXT PRIMARY KEY,
		video_file TEXT NOT NULL,
		video_file_id TEXT NOT NULL,
		thumbnail TEXT NOT NULL,
		thumbnail_id TEXT NOT NULL,
		title TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		duration REAL NOT NULL DEFAULT 0,
		views INTEGER NOT NULL DEFAULT 0,
		is_published BOOLEAN NOT NULL DEFAULT TRUE,
		owner_id TEXT NOT NULL,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL,
		FOREIGN KEY (owner_id) REFERENCES users(id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_videos_owner ON videos(owner_id)`,
	`CREATE INDEX IF NOT EXISTS idx_videos_published_created ON videos(is_published, created_at)`,
	`CREATE TABLE IF NOT EXISTS playlists (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		description TEXT NOT NULL,
		owner_id TEXT NOT NULL,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL,
		FOREIGN KEY (owner_id) REFERENCES users(id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_playlists_owner ON playlists(owner_id)`,
	`CREATE TABLE IF NOT EXISTS playlist_videos (
		playlist_id TEXT NOT NULL,
		video_id TEXT NOT NULL,
		added_at DATETIME NOT NULL,
		PRIMARY KEY (playlist_id, video_id),
		FOREIGN KEY (playlist_id) REFERENCES playlists(id) ON DELETE CASCADE,
		FOREIGN KEY (video_id) REFERENCES videos(id) ON DELETE CASCADE
	)`,
	`CREATE TABLE IF NOT EXISTS subscriptions (
		id TEXT PRIMARY KEY,
		subscriber_id TEXT NOT NULL,
		channel_id TEXT NOT NULL,
		created_at DATETIME NOT NULL,
		UNIQUE (subscriber_id, channel_id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_subscriptions_channel ON subscriptions(channel_id)`,
	`CREATE TABLE IF NOT EXISTS media_intents (
		id TEXT PRIMARY KEY,
		kind TEXT NOT NULL,
		video_id TEXT NOT NULL,
		objects TEXT NOT NULL DEFAULT '[]',
		created_at DATETIME NOT NULL
	)`,
}

// Store is a database.Store backed by a single SQLite file.
type Store struct {
	db *sql.DB

	users         *userRepo
	videos        *videoRepo
	playlists     *playlistRepo
	subscriptions *subscriptionRepo
	intents       *intentRepo
}

var _ database.Store = (*Store)(nil)

// Open connects to the SQLite database at path. The path can be ":memory:"
// for a private in-memory database.
func Open(path string) (*Store, error) {
	dsn := path + "?_foreign_keys=on&_busy_timeout=5000"
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Every connection to :memory: is its own database.
	if path == ":memory:" || strings.Contains(path, "mode=memory") {
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return New(db), nil
}

// New wraps an open connection.
func New(db *sql.DB) *Store {
	return &Store{
		db:            db,
		users:         &userRepo{db: db},
		videos:        &videoRepo{db: db},
		playlists:     &playlistRepo{db: db},
		subscriptions: &subscriptionRepo{db: db},
		intents:       &intentRepo{db: db},
	}
}

func (s *Store) Users() database.UserRepository                 { return s.users }
func (s *Store) Videos() database.VideoRepository               { return s.videos }
func (s *Store) Playlists() database.PlaylistRepository         { return s.playlists }
func (s *Store) Subscriptions() database.SubscriptionRepository { return s.subscriptions }
func (s *Store) Intents() database.IntentRepository             { return s.intents }

func (s *Store) ValidID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil && len(id) == 36
}

func (s *Store) NewID() string { return uuid.New().String() }

// Migrate creates missing tables and indexes.
func (s *Store) Migrate(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }

func (s *Store) Close(context.Context) error { return s.db.Close() }

func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
		sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
}

func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return database.ErrNotFound
	}
	return err
}

func now() time.Time { return time.Now().UTC() }

func checkAffected(result sql.Result) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return database.ErrNotFound
	}
	return nil
}
