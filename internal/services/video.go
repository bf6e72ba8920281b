package services

import (
	"context"
	"errors"
	"strings"

	"vidshare-api/internal/apperror"
	"vidshare-api/internal/database"
	"vidshare-api/internal/media"
	"vidshare-api/internal/models"

	"github.com/charmbracelet/log"
)

type VideoService struct {
	store      database.Store
	media      media.Store
	pagination Pagination
	logger     *log.Logger
}

func NewVideoService(store database.Store, mediaStore media.Store, pagination Pagination, logger *log.Logger) *VideoService {
	return &VideoService{store: store, media: mediaStore, pagination: pagination, logger: logger}
}

type ListVideosInput struct {
	Query    string
	UserID   string
	SortBy   string
	SortType string
	Page     int
	Limit    int
}

func (s *VideoService) List(ctx context.Context, in ListVideosInput) (*models.VideoPage, error) {
	if in.UserID != "" && !s.store.ValidID(in.UserID) {
		return nil, apperror.Validation("Invalid user ID.")
	}
	page, limit := s.pagination.Normalize(in.Page, in.Limit)
	sortType := strings.ToLower(in.SortType)
	if sortType != models.SortAsc {
		sortType = models.SortDesc
	}

	result, err := s.store.Videos().List(ctx, models.VideoQuery{
		Search:   strings.TrimSpace(in.Query),
		OwnerID:  in.UserID,
		SortBy:   in.SortBy,
		SortType: sortType,
		Page:     page,
		Limit:    limit,
	})
	if err != nil {
		return nil, apperror.Internal("Something went wrong", err)
	}
	return result, nil
}

type CreateVideoInput struct {
	Title         string
	Description   string
	Duration      float64
	OwnerUsername string
	// OwnerID is used when no OwnerUsername is given.
	OwnerID   string
	Video     *media.File
	Thumbnail *media.File
}

// Create uploads the media and thumbnail and persists the video. An upload
// intent covers the window between the first upload and the insert; on
// failure the uploaded objects are deleted and the intent dropped, and if
// that cleanup fails the intent is left for the reconciler.
func (s *VideoService) Create(ctx context.Context, in CreateVideoInput) (*models.Video, error) {
	if in.Video == nil {
		return nil, apperror.Validation("Video file is required.")
	}
	if in.Thumbnail == nil {
		return nil, apperror.Validation("Thumbnail file is required.")
	}
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, apperror.Validation("Title is required.")
	}
	if in.Duration < 0 {
		return nil, apperror.Validation("Duration must not be negative.")
	}
	if err := media.CheckExtension(media.FolderVideos, in.Video.Name); err != nil {
		return nil, apperror.Validation("Invalid video file.", err.Error())
	}
	if err := media.CheckExtension(media.FolderThumbnails, in.Thumbnail.Name); err != nil {
		return nil, apperror.Validation("Invalid thumbnail file.", err.Error())
	}

	owner, err := s.resolveOwner(ctx, in.OwnerUsername, in.OwnerID)
	if err != nil {
		return nil, err
	}

	intent := &models.MediaIntent{Kind: models.IntentUpload, VideoID: s.store.NewID()}
	if err := s.store.Intents().Create(ctx, intent); err != nil {
		return nil, apperror.Internal("Failed to record media intent", err)
	}

	var uploaded []string
	videoObj, err := s.media.Upload(ctx, media.FolderVideos, *in.Video)
	if err != nil {
		s.compensate(ctx, intent, uploaded)
		return nil, apperror.Dependency("Video upload failed.", err)
	}
	uploaded = append(uploaded, videoObj.PublicID)
	if err := s.store.Intents().SetObjects(ctx, intent.ID, uploaded); err != nil {
		s.compensate(ctx, intent, uploaded)
		return nil, apperror.Internal("Failed to record media intent", err)
	}

	thumbObj, err := s.media.Upload(ctx, media.FolderThumbnails, *in.Thumbnail)
	if err != nil {
		s.compensate(ctx, intent, uploaded)
		return nil, apperror.Dependency("Thumbnail upload failed.", err)
	}
	uploaded = append(uploaded, thumbObj.PublicID)
	if err := s.store.Intents().SetObjects(ctx, intent.ID, uploaded); err != nil {
		s.compensate(ctx, intent, uploaded)
		return nil, apperror.Internal("Failed to record media intent", err)
	}

	video := models.NewVideo(owner.ID, title, strings.TrimSpace(in.Description))
	video.ID = intent.VideoID
	video.Duration = in.Duration
	video.VideoFile, video.VideoFileID = videoObj.URL, videoObj.PublicID
	video.Thumbnail, video.ThumbnailID = thumbObj.URL, thumbObj.PublicID

	if err := s.store.Videos().Create(ctx, video); err != nil {
		s.compensate(ctx, intent, uploaded)
		return nil, apperror.Internal("Something went wrong while uploading the video.", err)
	}

	if err := s.store.Intents().Delete(ctx, intent.ID); err != nil {
		// The row exists, so the reconciler will just drop the intent.
		s.logger.Warn("failed to clear upload intent", "intent", intent.ID, "video", video.ID, "err", err)
	}
	return video, nil
}

func (s *VideoService) resolveOwner(ctx context.Context, username, id string) (*models.User, error) {
	var (
		owner *models.User
		err   error
	)
	switch {
	case strings.TrimSpace(username) != "":
		owner, err = s.store.Users().GetByUsername(ctx, strings.ToLower(strings.TrimSpace(username)))
	case id != "" && s.store.ValidID(id):
		owner, err = s.store.Users().GetByID(ctx, id)
	default:
		err = database.ErrNotFound
	}
	if err != nil {
		return nil, storeError(err, "User not found.")
	}
	return owner, nil
}

// compensate deletes uploaded objects and drops the intent. The intent stays
// pending when any deletion fails.
func (s *VideoService) compensate(ctx context.Context, intent *models.MediaIntent, objects []string) {
	ctx = context.WithoutCancel(ctx)
	var errs []error
	for _, id := range objects {
		if err := s.media.Delete(ctx, id); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		s.logger.Warn("failed to delete uploaded media, leaving intent pending", "intent", intent.ID, "objects", objects, "err", err)
		return
	}
	if err := s.store.Intents().Delete(ctx, intent.ID); err != nil {
		s.logger.Warn("failed to clear upload intent", "intent", intent.ID, "err", err)
	}
}

func (s *VideoService) get(ctx context.Context, id string) (*models.Video, error) {
	if !s.store.ValidID(id) {
		return nil, apperror.Validation("Invalid video ID.")
	}
	video, err := s.store.Videos().GetByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "Video not found.")
	}
	return video, nil
}

func (s *VideoService) Get(ctx context.Context, id string) (*models.VideoDetails, error) {
	video, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	details := video.Details()
	return &details, nil
}

type UpdateVideoInput struct {
	Title       *string
	Description *string
	Thumbnail   *media.File
}

// Update applies the supplied fields. A new thumbnail is uploaded before the
// record is saved; the old one is deleted afterwards on a best-effort basis.
func (s *VideoService) Update(ctx context.Context, id string, in UpdateVideoInput) (*models.Video, error) {
	video, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" {
			return nil, apperror.Validation("Title must not be empty.")
		}
		video.Title = title
	}
	if in.Description != nil {
		video.Description = strings.TrimSpace(*in.Description)
	}

	var oldThumbnail, newThumbnail string
	if in.Thumbnail != nil {
		if err := media.CheckExtension(media.FolderThumbnails, in.Thumbnail.Name); err != nil {
			return nil, apperror.Validation("Invalid thumbnail file.", err.Error())
		}
		obj, err := s.media.Upload(ctx, media.FolderThumbnails, *in.Thumbnail)
		if err != nil {
			return nil, apperror.Dependency("Error uploading thumbnail.", err)
		}
		oldThumbnail, newThumbnail = video.ThumbnailID, obj.PublicID
		video.Thumbnail, video.ThumbnailID = obj.URL, obj.PublicID
	}

	if err := s.store.Videos().Update(ctx, video); err != nil {
		if newThumbnail != "" {
			s.deleteBestEffort(ctx, newThumbnail, "discard unsaved thumbnail")
		}
		return nil, storeError(err, "Video not found.")
	}

	if oldThumbnail != "" {
		s.deleteBestEffort(ctx, oldThumbnail, "delete replaced thumbnail")
	}
	return video, nil
}

func (s *VideoService) deleteBestEffort(ctx context.Context, publicID, what string) {
	if err := s.media.Delete(context.WithoutCancel(ctx), publicID); err != nil {
		s.logger.Warn("failed to "+what, "object", publicID, "err", err)
	}
}

// Delete removes both media objects and then the record. The record is kept
// when either media deletion fails.
func (s *VideoService) Delete(ctx context.Context, id string) error {
	video, err := s.get(ctx, id)
	if err != nil {
		return err
	}

	objects := video.MediaObjects()
	intent := &models.MediaIntent{Kind: models.IntentDelete, VideoID: video.ID, Objects: objects}
	if err := s.store.Intents().Create(ctx, intent); err != nil {
		return apperror.Internal("Failed to record media intent", err)
	}

	var errs []error
	for _, obj := range objects {
		if err := s.media.Delete(ctx, obj); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		if derr := s.store.Intents().Delete(context.WithoutCancel(ctx), intent.ID); derr != nil {
			s.logger.Warn("failed to clear delete intent", "intent", intent.ID, "err", derr)
		}
		return apperror.Dependency("Failed to delete video from media store.", err)
	}

	if err := s.store.Videos().Delete(ctx, video.ID); err != nil && !errors.Is(err, database.ErrNotFound) {
		// Media is gone; the pending intent lets the reconciler finish the row.
		return apperror.Internal("Failed to delete video from database.", err)
	}

	if err := s.store.Intents().Delete(ctx, intent.ID); err != nil {
		s.logger.Warn("failed to clear delete intent", "intent", intent.ID, "err", err)
	}
	return nil
}

// TogglePublish flips the publish flag and returns the new value.
func (s *VideoService) TogglePublish(ctx context.Context, id string) (bool, error) {
	if !s.store.ValidID(id) {
		return false, apperror.Validation("Invalid video ID.")
	}
	published, err := s.store.Videos().TogglePublished(ctx, id)
	if err != nil {
		return false, storeError(err, "Video not found.")
	}
	return published, nil
}
