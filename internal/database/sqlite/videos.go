package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"vidshare-api/internal/database"
	"vidshare-api/internal/models"

	"github.com/google/uuid"
)

type videoRepo struct {
	db *sql.DB
}

const videoColumns = `v.id, v.video_file, v.video_file_id, v.thumbnail, v.thumbnail_id, v.title,
	v.description, v.duration, v.views, v.is_published, v.owner_id, v.created_at, v.updated_at`

var sortColumns = map[string]string{
	"createdAt": "v.created_at",
	"updatedAt": "v.updated_at",
	"views":     "v.views",
	"duration":  "v.duration",
	"title":     "v.title",
}

type scanner interface {
	Scan(dest ...any) error
}

func scanVideo(row scanner, extra ...any) (*models.Video, error) {
	var v models.Video
	dest := []any{
		&v.ID, &v.VideoFile, &v.VideoFileID, &v.Thumbnail, &v.ThumbnailID, &v.Title,
		&v.Description, &v.Duration, &v.Views, &v.IsPublished, &v.Owner, &v.CreatedAt, &v.UpdatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *videoRepo) Create(ctx context.Context, video *models.Video) error {
	if video.ID == "" {
		video.ID = uuid.New().String()
	}
	ts := now()
	video.CreatedAt, video.UpdatedAt = ts, ts

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO videos (
			id, video_file, video_file_id, thumbnail, thumbnail_id, title,
			description, duration, views, is_published, owner_id, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		video.ID, video.VideoFile, video.VideoFileID, video.Thumbnail, video.ThumbnailID, video.Title,
		video.Description, video.Duration, video.Views, video.IsPublished, video.Owner,
		video.CreatedAt, video.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return database.ErrDuplicate
	}
	if err != nil {
		return fmt.Errorf("failed to insert video: %w", err)
	}
	return nil
}

func (r *videoRepo) GetByID(ctx context.Context, id string) (*models.Video, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+videoColumns+` FROM videos v WHERE v.id = ?`, id)
	v, err := scanVideo(row)
	if err != nil {
		return nil, notFound(err)
	}
	return v, nil
}

// escapeLike escapes LIKE wildcards so the search term matches literally.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func (r *videoRepo) List(ctx context.Context, q models.VideoQuery) (*models.VideoPage, error) {
	where := []string{"v.is_published = 1"}
	args := []any{}

	if q.Search != "" {
		pattern := "%" + escapeLike(q.Search) + "%"
		where = append(where, `(v.title LIKE ? ESCAPE '\' OR v.description LIKE ? ESCAPE '\')`)
		args = append(args, pattern, pattern)
	}
	if q.OwnerID != "" {
		where = append(where, "v.owner_id = ?")
		args = append(args, q.OwnerID)
	}

	from := ` FROM videos v JOIN users u ON u.id = v.owner_id WHERE ` + strings.Join(where, " AND ")

	var total int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*)`+from, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("failed to count videos: %w", err)
	}

	field, asc := database.NormalizeSort(q)
	dir := "DESC"
	if asc {
		dir = "ASC"
	}
	order := fmt.Sprintf(" ORDER BY %s %s, v.rowid %s LIMIT ? OFFSET ?", sortColumns[field], dir, dir)

	rows, err := r.db.QueryContext(ctx,
		`SELECT `+videoColumns+`, u.id, u.username, u.full_name, u.avatar`+from+order,
		append(args, q.Limit, (q.Page-1)*q.Limit)...,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query videos: %w", err)
	}
	defer rows.Close()

	page := &models.VideoPage{
		Videos:      []models.VideoWithOwner{},
		TotalVideos: total,
		TotalPages:  models.TotalPages(total, q.Limit),
		CurrentPage: q.Page,
		Limit:       q.Limit,
	}
	for rows.Next() {
		var owner models.Owner
		v, err := scanVideo(rows, &owner.ID, &owner.Username, &owner.FullName, &owner.Avatar)
		if err != nil {
			return nil, fmt.Errorf("failed to scan video: %w", err)
		}
		page.Videos = append(page.Videos, models.VideoWithOwner{Video: *v, Owner: owner})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return page, nil
}

func (r *videoRepo) Update(ctx context.Context, video *models.Video) error {
	video.UpdatedAt = now()
	result, err := r.db.ExecContext(ctx, `
		UPDATE videos
		SET title = ?, description = ?, thumbnail = ?, thumbnail_id = ?, duration = ?, updated_at = ?
		WHERE id = ?`,
		video.Title, video.Description, video.Thumbnail, video.ThumbnailID, video.Duration,
		video.UpdatedAt, video.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update video: %w", err)
	}
	return checkAffected(result)
}

func (r *videoRepo) TogglePublished(ctx context.Context, id string) (bool, error) {
	var published bool
	err := r.db.QueryRowContext(ctx, `
		UPDATE videos SET is_published = NOT is_published, updated_at = ?
		WHERE id = ?
		RETURNING is_published`,
		now(), id,
	).Scan(&published)
	if err != nil {
		return false, notFound(err)
	}
	return published, nil
}

// Delete removes the video; playlist memberships go with it through the
// cascading foreign key.
func (r *videoRepo) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM videos WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete video: %w", err)
	}
	return checkAffected(result)
}
