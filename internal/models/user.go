package models

import "time"

type User struct {
	ID           string    `json:"_id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	FullName     string    `json:"fullName"`
	Avatar       string    `json:"avatar"`
	CoverImage   string    `json:"coverImage,omitempty"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Owner is the public profile joined onto videos.
type Owner struct {
	ID       string `json:"_id"`
	Username string `json:"username"`
	FullName string `json:"fullName"`
	Avatar   string `json:"avatar"`
}

// Channel is a user's public profile with subscription counters.
type Channel struct {
	Owner
	CoverImage         string `json:"coverImage,omitempty"`
	SubscribersCount   int64  `json:"subscribersCount"`
	SubscribedToCount  int64  `json:"channelsSubscribedToCount"`
	IsSubscribedByUser bool   `json:"isSubscribed"`
}

// PublicProfile returns the fields of u that are safe to join onto other documents.
func (u *User) PublicProfile() Owner {
	return Owner{
		ID:       u.ID,
		Username: u.Username,
		FullName: u.FullName,
		Avatar:   u.Avatar,
	}
}
