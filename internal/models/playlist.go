package models

import "time"

type Playlist struct {
	ID          string    `json:"_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Owner       string    `json:"owner"`
	Videos      []string  `json:"videos"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// PlaylistWithVideos is a playlist whose membership is resolved to full videos.
type PlaylistWithVideos struct {
	Playlist
	Videos []Video `json:"videos"`
}
