// Package database declares the persistence contract shared by the SQLite and
// MongoDB stores.
//
// Repositories return ErrNotFound when a referenced document is absent and
// ErrDuplicate when a unique index rejects a write. Every mutation is a
// single atomic statement against the store; callers never read-then-write
// to enforce an invariant.
package database

import (
	"context"
	"errors"
	"time"

	"vidshare-api/internal/models"
)

var (
	ErrNotFound  = errors.New("document not found")
	ErrDuplicate = errors.New("duplicate key")
)

const (
	DriverSQLite = "sqlite"
	DriverMongo  = "mongo"
)

// Store bundles the repositories of one backend.
type Store interface {
	Users() UserRepository
	Videos() VideoRepository
	Playlists() PlaylistRepository
	Subscriptions() SubscriptionRepository
	Intents() IntentRepository

	// ValidID reports whether id is well formed for this backend.
	ValidID(id string) bool
	// NewID reserves a fresh backend-native identifier.
	NewID() string

	Migrate(ctx context.Context) error
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
}

type VideoRepository interface {
	// Create inserts video. A non-empty video.ID is kept as the primary key.
	Create(ctx context.Context, video *models.Video) error
	GetByID(ctx context.Context, id string) (*models.Video, error)
	List(ctx context.Context, query models.VideoQuery) (*models.VideoPage, error)
	// Update overwrites the mutable metadata of video.
	Update(ctx context.Context, video *models.Video) error
	// TogglePublished flips the publish flag and returns the new value.
	TogglePublished(ctx context.Context, id string) (bool, error)
	Delete(ctx context.Context, id string) error
}

type PlaylistRepository interface {
	Create(ctx context.Context, playlist *models.Playlist) error
	GetByID(ctx context.Context, id string) (*models.Playlist, error)
	ListByOwner(ctx context.Context, ownerID string) ([]models.Playlist, error)
	// Videos resolves the membership of a playlist in insertion order.
	Videos(ctx context.Context, playlistID string) ([]models.Video, error)
	// AddVideo inserts videoID into the membership set; a present member is left alone.
	AddVideo(ctx context.Context, playlistID, videoID string) (*models.Playlist, error)
	// RemoveVideo removes videoID from the membership set; an absent member is left alone.
	RemoveVideo(ctx context.Context, playlistID, videoID string) (*models.Playlist, error)
	Update(ctx context.Context, id, name, description string) (*models.Playlist, error)
	Delete(ctx context.Context, id string) (*models.Playlist, error)
}

type SubscriptionRepository interface {
	// Create inserts an edge. ErrDuplicate means the pair already exists.
	Create(ctx context.Context, sub *models.Subscription) error
	// DeletePair removes the edge for the pair and reports whether one existed.
	DeletePair(ctx context.Context, subscriberID, channelID string) (bool, error)
	Exists(ctx context.Context, subscriberID, channelID string) (bool, error)
	ListByChannel(ctx context.Context, channelID string) ([]models.SubscriberEntry, error)
	ListBySubscriber(ctx context.Context, subscriberID string) ([]models.SubscribedChannel, error)
	CountByChannel(ctx context.Context, channelID string) (int64, error)
	CountBySubscriber(ctx context.Context, subscriberID string) (int64, error)
}

type IntentRepository interface {
	Create(ctx context.Context, intent *models.MediaIntent) error
	// SetObjects replaces the recorded media objects of an intent.
	SetObjects(ctx context.Context, id string, objects []string) error
	Delete(ctx context.Context, id string) error
	// ListStale returns intents created before cutoff, oldest first.
	ListStale(ctx context.Context, cutoff time.Time) ([]models.MediaIntent, error)
}

// VideoSortFields maps accepted sortBy values to the canonical field name.
var VideoSortFields = map[string]string{
	"createdAt": "createdAt",
	"updatedAt": "updatedAt",
	"views":     "views",
	"duration":  "duration",
	"title":     "title",
}

// NormalizeSort resolves the sort field and direction of q, falling back to
// newest first.
func NormalizeSort(q models.VideoQuery) (field string, ascending bool) {
	field, ok := VideoSortFields[q.SortBy]
	if !ok {
		field = "createdAt"
	}
	return field, q.SortType == models.SortAsc
}
