package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"vidshare-api/internal/models"

	"github.com/google/uuid"
)

type playlistRepo struct {
	db *sql.DB
}

type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (r *playlistRepo) Create(ctx context.Context, playlist *models.Playlist) error {
	if playlist.ID == "" {
		playlist.ID = uuid.New().String()
	}
	ts := now()
	playlist.CreatedAt, playlist.UpdatedAt = ts, ts
	if playlist.Videos == nil {
		playlist.Videos = []string{}
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO playlists (id, name, description, owner_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		playlist.ID, playlist.Name, playlist.Description, playlist.Owner,
		playlist.CreatedAt, playlist.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert playlist: %w", err)
	}
	return nil
}

func (r *playlistRepo) GetByID(ctx context.Context, id string) (*models.Playlist, error) {
	return getPlaylist(ctx, r.db, id)
}

func getPlaylist(ctx context.Context, q querier, id string) (*models.Playlist, error) {
	var p models.Playlist
	err := q.QueryRowContext(ctx, `
		SELECT id, name, description, owner_id, created_at, updated_at
		FROM playlists WHERE id = ?`, id,
	).Scan(&p.ID, &p.Name, &p.Description, &p.Owner, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, notFound(err)
	}

	members, err := memberIDs(ctx, q, id)
	if err != nil {
		return nil, err
	}
	p.Videos = members
	return &p, nil
}

func memberIDs(ctx context.Context, q querier, playlistID string) ([]string, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT video_id FROM playlist_videos WHERE playlist_id = ? ORDER BY rowid`, playlistID)
	if err != nil {
		return nil, fmt.Errorf("failed to query playlist members: %w", err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan playlist member: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *playlistRepo) ListByOwner(ctx context.Context, ownerID string) ([]models.Playlist, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id FROM playlists WHERE owner_id = ? ORDER BY created_at DESC, rowid DESC`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query playlists: %w", err)
	}

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan playlist: %w", err)
		}
		ids = append(ids, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	playlists := make([]models.Playlist, 0, len(ids))
	for _, id := range ids {
		p, err := getPlaylist(ctx, r.db, id)
		if err != nil {
			return nil, err
		}
		playlists = append(playlists, *p)
	}
	return playlists, nil
}

func (r *playlistRepo) Videos(ctx context.Context, playlistID string) ([]models.Video, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+videoColumns+`
		FROM playlist_videos pv JOIN videos v ON v.id = pv.video_id
		WHERE pv.playlist_id = ?
		ORDER BY pv.rowid`, playlistID)
	if err != nil {
		return nil, fmt.Errorf("failed to query playlist videos: %w", err)
	}
	defer rows.Close()

	videos := []models.Video{}
	for rows.Next() {
		v, err := scanVideo(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan video: %w", err)
		}
		videos = append(videos, *v)
	}
	return videos, rows.Err()
}

// AddVideo inserts the membership row with INSERT OR IGNORE, so a second add
// of the same video leaves the set unchanged.
func (r *playlistRepo) AddVideo(ctx context.Context, playlistID, videoID string) (*models.Playlist, error) {
	return r.mutate(ctx, playlistID, func(tx *sql.Tx, ts time.Time) error {
		_, err := tx.ExecContext(ctx, `
			INSERT OR IGNORE INTO playlist_videos (playlist_id, video_id, added_at)
			VALUES (?, ?, ?)`, playlistID, videoID, ts)
		return err
	})
}

func (r *playlistRepo) RemoveVideo(ctx context.Context, playlistID, videoID string) (*models.Playlist, error) {
	return r.mutate(ctx, playlistID, func(tx *sql.Tx, _ time.Time) error {
		_, err := tx.ExecContext(ctx,
			`DELETE FROM playlist_videos WHERE playlist_id = ? AND video_id = ?`, playlistID, videoID)
		return err
	})
}

func (r *playlistRepo) Update(ctx context.Context, id, name, description string) (*models.Playlist, error) {
	return r.mutate(ctx, id, func(tx *sql.Tx, ts time.Time) error {
		_, err := tx.ExecContext(ctx,
			`UPDATE playlists SET name = ?, description = ?, updated_at = ? WHERE id = ?`,
			name, description, ts, id)
		return err
	})
}

// mutate touches the playlist row, applies fn and returns the playlist as it
// stands after the change, all in one transaction.
func (r *playlistRepo) mutate(ctx context.Context, id string, fn func(tx *sql.Tx, ts time.Time) error) (*models.Playlist, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	ts := now()
	result, err := tx.ExecContext(ctx, `UPDATE playlists SET updated_at = ? WHERE id = ?`, ts, id)
	if err != nil {
		return nil, fmt.Errorf("failed to touch playlist: %w", err)
	}
	if err := checkAffected(result); err != nil {
		return nil, err
	}

	if err := fn(tx, ts); err != nil {
		return nil, fmt.Errorf("failed to update playlist: %w", err)
	}

	p, err := getPlaylist(ctx, tx, id)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit playlist update: %w", err)
	}
	return p, nil
}

func (r *playlistRepo) Delete(ctx context.Context, id string) (*models.Playlist, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	p, err := getPlaylist(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM playlists WHERE id = ?`, id); err != nil {
		return nil, fmt.Errorf("failed to delete playlist: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit playlist delete: %w", err)
	}
	return p, nil
}
