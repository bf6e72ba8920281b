package services

import (
	"context"
	"errors"
	"strings"

	"vidshare-api/internal/apperror"
	"vidshare-api/internal/database"
	"vidshare-api/internal/models"
)

type PlaylistService struct {
	store database.Store
}

func NewPlaylistService(store database.Store) *PlaylistService {
	return &PlaylistService{store: store}
}

func (s *PlaylistService) Create(ctx context.Context, name, description, ownerID string) (*models.Playlist, error) {
	name, description = strings.TrimSpace(name), strings.TrimSpace(description)
	if name == "" || description == "" {
		return nil, apperror.Validation("Name and description are required.")
	}
	if ownerID == "" || !s.store.ValidID(ownerID) {
		return nil, apperror.Auth("Unauthorized: Invalid user.")
	}
	if _, err := s.store.Users().GetByID(ctx, ownerID); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, apperror.Auth("Unauthorized: Invalid user.")
		}
		return nil, apperror.Internal("Something went wrong", err)
	}

	playlist := &models.Playlist{Name: name, Description: description, Owner: ownerID, Videos: []string{}}
	if err := s.store.Playlists().Create(ctx, playlist); err != nil {
		return nil, apperror.Internal("Something went wrong", err)
	}
	return playlist, nil
}

func (s *PlaylistService) ListByOwner(ctx context.Context, ownerID string) ([]models.Playlist, error) {
	if !s.store.ValidID(ownerID) {
		return nil, apperror.Validation("Invalid User ID.")
	}
	playlists, err := s.store.Playlists().ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, apperror.Internal("Something went wrong", err)
	}
	return playlists, nil
}

func (s *PlaylistService) Get(ctx context.Context, id string) (*models.PlaylistWithVideos, error) {
	if !s.store.ValidID(id) {
		return nil, apperror.Validation("Invalid Playlist ID.")
	}
	playlist, err := s.store.Playlists().GetByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "Playlist not found.")
	}
	return s.resolve(ctx, playlist)
}

// resolve replaces the membership IDs of playlist with the videos themselves.
func (s *PlaylistService) resolve(ctx context.Context, playlist *models.Playlist) (*models.PlaylistWithVideos, error) {
	videos, err := s.store.Playlists().Videos(ctx, playlist.ID)
	if err != nil {
		return nil, storeError(err, "Playlist not found.")
	}
	return &models.PlaylistWithVideos{Playlist: *playlist, Videos: videos}, nil
}

func (s *PlaylistService) checkPair(playlistID, videoID string) error {
	if !s.store.ValidID(playlistID) || !s.store.ValidID(videoID) {
		return apperror.Validation("Invalid Playlist ID or Video ID.")
	}
	return nil
}

// AddVideo inserts the video into the playlist's membership set. Adding a
// member twice leaves the set unchanged.
func (s *PlaylistService) AddVideo(ctx context.Context, playlistID, videoID string) (*models.PlaylistWithVideos, error) {
	if err := s.checkPair(playlistID, videoID); err != nil {
		return nil, err
	}
	if _, err := s.store.Videos().GetByID(ctx, videoID); err != nil {
		return nil, storeError(err, "Video not found.")
	}
	playlist, err := s.store.Playlists().AddVideo(ctx, playlistID, videoID)
	if err != nil {
		return nil, storeError(err, "Playlist not found.")
	}
	return s.resolve(ctx, playlist)
}

// RemoveVideo removes the video from the membership set. Removing a video
// that is not a member is a no-op.
func (s *PlaylistService) RemoveVideo(ctx context.Context, playlistID, videoID string) (*models.PlaylistWithVideos, error) {
	if err := s.checkPair(playlistID, videoID); err != nil {
		return nil, err
	}
	playlist, err := s.store.Playlists().RemoveVideo(ctx, playlistID, videoID)
	if err != nil {
		return nil, storeError(err, "Playlist not found.")
	}
	return s.resolve(ctx, playlist)
}

// Update replaces name and description; both are required.
func (s *PlaylistService) Update(ctx context.Context, id, name, description string) (*models.Playlist, error) {
	if !s.store.ValidID(id) {
		return nil, apperror.Validation("Invalid Playlist ID.")
	}
	name, description = strings.TrimSpace(name), strings.TrimSpace(description)
	if name == "" || description == "" {
		return nil, apperror.Validation("Name and Description are required.")
	}
	playlist, err := s.store.Playlists().Update(ctx, id, name, description)
	if err != nil {
		return nil, storeError(err, "Playlist not found.")
	}
	return playlist, nil
}

func (s *PlaylistService) Delete(ctx context.Context, id string) (*models.Playlist, error) {
	if !s.store.ValidID(id) {
		return nil, apperror.Validation("Invalid Playlist ID.")
	}
	playlist, err := s.store.Playlists().Delete(ctx, id)
	if err != nil {
		return nil, storeError(err, "Playlist not found.")
	}
	return playlist, nil
}
