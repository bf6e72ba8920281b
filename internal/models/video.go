package models

import "time"

type Video struct {
	ID          string    `json:"_id"`
	VideoFile   string    `json:"videoFile"`
	VideoFileID string    `json:"-"`
	Thumbnail   string    `json:"thumbnail"`
	ThumbnailID string    `json:"-"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Duration    float64   `json:"duration"`
	Views       int64     `json:"views"`
	IsPublished bool      `json:"isPublished"`
	Owner       string    `json:"owner"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// NewVideo returns a published video with zeroed counters.
func NewVideo(owner, title, description string) *Video {
	return &Video{
		Title:       title,
		Description: description,
		Owner:       owner,
		IsPublished: true,
	}
}

// VideoWithOwner is a list entry with the owner's profile joined in place of
// the bare owner ID.
type VideoWithOwner struct {
	Video
	Owner Owner `json:"owner"`
}

// VideoDetails is the public projection returned for a single video.
type VideoDetails struct {
	ID          string    `json:"_id"`
	VideoFile   string    `json:"videoFile"`
	Thumbnail   string    `json:"thumbnail"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Duration    float64   `json:"duration"`
	Views       int64     `json:"views"`
	Owner       string    `json:"owner"`
	CreatedAt   time.Time `json:"createdAt"`
}

func (v *Video) Details() VideoDetails {
	return VideoDetails{
		ID:          v.ID,
		VideoFile:   v.VideoFile,
		Thumbnail:   v.Thumbnail,
		Title:       v.Title,
		Description: v.Description,
		Duration:    v.Duration,
		Views:       v.Views,
		Owner:       v.Owner,
		CreatedAt:   v.CreatedAt,
	}
}

const (
	SortAsc  = "asc"
	SortDesc = "desc"
)

// VideoQuery selects a page of published videos.
type VideoQuery struct {
	Search   string
	OwnerID  string
	SortBy   string
	SortType string
	Page     int
	Limit    int
}

// VideoPage is one page of a video listing.
type VideoPage struct {
	Videos      []VideoWithOwner `json:"videos"`
	TotalVideos int64            `json:"totalVideos"`
	TotalPages  int64            `json:"totalPages"`
	CurrentPage int              `json:"currentPage"`
	Limit       int              `json:"limit"`
}

// TotalPages returns the number of pages needed for total items at limit per page.
func TotalPages(total int64, limit int) int64 {
	if limit <= 0 || total <= 0 {
		return 0
	}
	return (total + int64(limit) - 1) / int64(limit)
}

// MediaObjects lists the media public IDs held by v.
func (v *Video) MediaObjects() []string {
	objects := make([]string, 0, 2)
	for _, id := range []string{v.VideoFileID, v.ThumbnailID} {
		if id != "" {
			objects = append(objects, id)
		}
	}
	return objects
}
