// Package services holds the resource operations behind the HTTP handlers.
//
// Services validate identifiers before touching the store and translate
// store and media failures into apperror kinds.
package services

import (
	"errors"

	"vidshare-api/internal/apperror"
	"vidshare-api/internal/auth"
	"vidshare-api/internal/database"
	"vidshare-api/internal/media"
	"vidshare-api/internal/utils"

	"github.com/charmbracelet/log"
)

// Pagination bounds video listings.
type Pagination struct {
	DefaultLimit int
	MaxLimit     int
}

// Normalize resolves page and limit. Non-positive values take the defaults
// and limit is capped at MaxLimit.
func (p Pagination) Normalize(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = p.DefaultLimit
	}
	if p.MaxLimit > 0 && limit > p.MaxLimit {
		limit = p.MaxLimit
	}
	return page, limit
}

// Services bundles every service over one store and media backend.
type Services struct {
	Videos        *VideoService
	Playlists     *PlaylistService
	Subscriptions *SubscriptionService
	Users         *UserService
	Reconciler    *Reconciler
}

func New(store database.Store, mediaStore media.Store, tokens *auth.TokenManager, pagination Pagination, logger *log.Logger) *Services {
	return &Services{
		Videos:        NewVideoService(store, mediaStore, pagination, utils.WithComponent(logger, "videos")),
		Playlists:     NewPlaylistService(store),
		Subscriptions: NewSubscriptionService(store),
		Users:         NewUserService(store, tokens),
		Reconciler:    NewReconciler(store, mediaStore, utils.WithComponent(logger, "reconciler")),
	}
}

// storeError maps a repository error onto the taxonomy.
func storeError(err error, notFound string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, database.ErrNotFound):
		return apperror.NotFound(notFound)
	default:
		return apperror.Internal("Something went wrong", err)
	}
}
