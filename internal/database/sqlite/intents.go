package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"vidshare-api/internal/models"

	"github.com/google/uuid"
)

type intentRepo struct {
	db *sql.DB
}

func (r *intentRepo) Create(ctx context.Context, intent *models.MediaIntent) error {
	if intent.ID == "" {
		intent.ID = uuid.New().String()
	}
	if intent.CreatedAt.IsZero() {
		intent.CreatedAt = now()
	}
	intent.CreatedAt = intent.CreatedAt.UTC()
	objects, err := json.Marshal(nonNil(intent.Objects))
	if err != nil {
		return fmt.Errorf("failed to encode intent objects: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO media_intents (id, kind, video_id, objects, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		intent.ID, intent.Kind, intent.VideoID, string(objects), intent.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert media intent: %w", err)
	}
	return nil
}

func (r *intentRepo) SetObjects(ctx context.Context, id string, objects []string) error {
	encoded, err := json.Marshal(nonNil(objects))
	if err != nil {
		return fmt.Errorf("failed to encode intent objects: %w", err)
	}
	result, err := r.db.ExecContext(ctx,
		`UPDATE media_intents SET objects = ? WHERE id = ?`, string(encoded), id)
	if err != nil {
		return fmt.Errorf("failed to update media intent: %w", err)
	}
	return checkAffected(result)
}

func (r *intentRepo) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM media_intents WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete media intent: %w", err)
	}
	return checkAffected(result)
}

func (r *intentRepo) ListStale(ctx context.Context, cutoff time.Time) ([]models.MediaIntent, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, kind, video_id, objects, created_at
		FROM media_intents WHERE created_at < ?
		ORDER BY created_at ASC`, cutoff.UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to query media intents: %w", err)
	}
	defer rows.Close()

	var intents []models.MediaIntent
	for rows.Next() {
		var (
			intent  models.MediaIntent
			objects string
		)
		if err := rows.Scan(&intent.ID, &intent.Kind, &intent.VideoID, &objects, &intent.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan media intent: %w", err)
		}
		if err := json.Unmarshal([]byte(objects), &intent.Objects); err != nil {
			return nil, fmt.Errorf("failed to decode intent objects: %w", err)
		}
		intents = append(intents, intent)
	}
	return intents, rows.Err()
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
