package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"vidshare-api/internal/database"
	"vidshare-api/internal/models"

	"github.com/google/uuid"
)

type subscriptionRepo struct {
	db *sql.DB
}

// Create relies on the UNIQUE (subscriber_id, channel_id) constraint; a
// concurrent insert for the same pair surfaces as database.ErrDuplicate.
func (r *subscriptionRepo) Create(ctx context.Context, sub *models.Subscription) error {
	if sub.ID == "" {
		sub.ID = uuid.New().String()
	}
	sub.CreatedAt = now()

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO subscriptions (id, subscriber_id, channel_id, created_at)
		VALUES (?, ?, ?, ?)`,
		sub.ID, sub.Subscriber, sub.Channel, sub.CreatedAt,
	)
	if isUniqueViolation(err) {
		return database.ErrDuplicate
	}
	if err != nil {
		return fmt.Errorf("failed to insert subscription: %w", err)
	}
	return nil
}

func (r *subscriptionRepo) DeletePair(ctx context.Context, subscriberID, channelID string) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM subscriptions WHERE subscriber_id = ? AND channel_id = ?`, subscriberID, channelID)
	if err != nil {
		return false, fmt.Errorf("failed to delete subscription: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get affected rows: %w", err)
	}
	return rows > 0, nil
}

func (r *subscriptionRepo) Exists(ctx context.Context, subscriberID, channelID string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM subscriptions WHERE subscriber_id = ? AND channel_id = ?)`,
		subscriberID, channelID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check subscription: %w", err)
	}
	return exists, nil
}

func (r *subscriptionRepo) ListByChannel(ctx context.Context, channelID string) ([]models.SubscriberEntry, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT s.id, s.channel_id, s.created_at, u.id, u.username, u.email
		FROM subscriptions s JOIN users u ON u.id = s.subscriber_id
		WHERE s.channel_id = ?
		ORDER BY s.created_at DESC, s.rowid DESC`, channelID)
	if err != nil {
		return nil, fmt.Errorf("failed to query subscribers: %w", err)
	}
	defer rows.Close()

	entries := []models.SubscriberEntry{}
	for rows.Next() {
		var e models.SubscriberEntry
		if err := rows.Scan(&e.ID, &e.Channel, &e.CreatedAt,
			&e.Subscriber.ID, &e.Subscriber.Username, &e.Subscriber.Email); err != nil {
			return nil, fmt.Errorf("failed to scan subscriber: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (r *subscriptionRepo) ListBySubscriber(ctx context.Context, subscriberID string) ([]models.SubscribedChannel, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT s.id, s.subscriber_id, s.created_at, u.id, u.username, u.full_name
		FROM subscriptions s JOIN users u ON u.id = s.channel_id
		WHERE s.subscriber_id = ?
		ORDER BY s.created_at DESC, s.rowid DESC`, subscriberID)
	if err != nil {
		return nil, fmt.Errorf("failed to query subscriptions: %w", err)
	}
	defer rows.Close()

	entries := []models.SubscribedChannel{}
	for rows.Next() {
		var e models.SubscribedChannel
		if err := rows.Scan(&e.ID, &e.Subscriber, &e.CreatedAt,
			&e.Channel.ID, &e.Channel.Username, &e.Channel.FullName); err != nil {
			return nil, fmt.Errorf("failed to scan subscription: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (r *subscriptionRepo) CountByChannel(ctx context.Context, channelID string) (int64, error) {
	return r.count(ctx, "channel_id", channelID)
}

func (r *subscriptionRepo) CountBySubscriber(ctx context.Context, subscriberID string) (int64, error) {
	return r.count(ctx, "subscriber_id", subscriberID)
}

func (r *subscriptionRepo) count(ctx context.Context, column, id string) (int64, error) {
	var n int64
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM subscriptions WHERE `+column+` = ?`, id).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count subscriptions: %w", err)
	}
	return n, nil
}
