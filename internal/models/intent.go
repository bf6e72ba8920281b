package models

import "time"

const (
	IntentUpload = "upload"
	IntentDelete = "delete"
)

// MediaIntent marks a media mutation that spans the media store and the
// database. It exists only while the mutation is in flight; one that
// outlives its request is picked up by the reconciler.
type MediaIntent struct {
	ID        string    `json:"_id"`
	Kind      string    `json:"kind"`
	VideoID   string    `json:"videoId"`
	Objects   []string  `json:"objects"`
	CreatedAt time.Time `json:"createdAt"`
}
