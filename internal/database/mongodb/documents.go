package mongodb

import (
	"time"

	"vidshare-api/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type userDoc struct {
	ID         primitive.ObjectID `bson:"_id"`
	Username   string             `bson:"username"`
	Email      string             `bson:"email"`
	FullName   string             `bson:"fullName"`
	Avatar     string             `bson:"avatar"`
	CoverImage string             `bson:"coverImage,omitempty"`
	Password   string             `bson:"password"`
	CreatedAt  time.Time          `bson:"createdAt"`
	UpdatedAt  time.Time          `bson:"updatedAt"`
}

func (d *userDoc) model() *models.User {
	return &models.User{
		ID:           d.ID.Hex(),
		Username:     d.Username,
		Email:        d.Email,
		FullName:     d.FullName,
		Avatar:       d.Avatar,
		CoverImage:   d.CoverImage,
		PasswordHash: d.Password,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
}

type videoDoc struct {
	ID          primitive.ObjectID `bson:"_id"`
	VideoFile   string             `bson:"videoFile"`
	VideoFileID string             `bson:"videoFileId"`
	Thumbnail   string             `bson:"thumbnail"`
	ThumbnailID string             `bson:"thumbnailId"`
	Title       string             `bson:"title"`
	Description string             `bson:"description"`
	Duration    float64            `bson:"duration"`
	Views       int64              `bson:"views"`
	IsPublished bool               `bson:"isPublished"`
	Owner       primitive.ObjectID `bson:"owner"`
	CreatedAt   time.Time          `bson:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt"`
}

func (d *videoDoc) model() *models.Video {
	return &models.Video{
		ID:          d.ID.Hex(),
		VideoFile:   d.VideoFile,
		VideoFileID: d.VideoFileID,
		Thumbnail:   d.Thumbnail,
		ThumbnailID: d.ThumbnailID,
		Title:       d.Title,
		Description: d.Description,
		Duration:    d.Duration,
		Views:       d.Views,
		IsPublished: d.IsPublished,
		Owner:       d.Owner.Hex(),
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

// ownerDoc is the projection of users joined by $lookup.
type ownerDoc struct {
	ID       primitive.ObjectID `bson:"_id"`
	Username string             `bson:"username"`
	FullName string             `bson:"fullName"`
	Avatar   string             `bson:"avatar"`
	Email    string             `bson:"email"`
}

type videoWithOwnerDoc struct {
	videoDoc     `bson:",inline"`
	OwnerProfile ownerDoc `bson:"ownerProfile"`
}

type playlistDoc struct {
	ID          primitive.ObjectID   `bson:"_id"`
	Name        string               `bson:"name"`
	Description string               `bson:"description"`
	Owner       primitive.ObjectID   `bson:"owner"`
	Videos      []primitive.ObjectID `bson:"videos"`
	CreatedAt   time.Time            `bson:"createdAt"`
	UpdatedAt   time.Time            `bson:"updatedAt"`
}

func (d *playlistDoc) model() *models.Playlist {
	return &models.Playlist{
		ID:          d.ID.Hex(),
		Name:        d.Name,
		Description: d.Description,
		Owner:       d.Owner.Hex(),
		Videos:      hexes(d.Videos),
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

type subscriptionDoc struct {
	ID         primitive.ObjectID `bson:"_id"`
	Subscriber primitive.ObjectID `bson:"subscriber"`
	Channel    primitive.ObjectID `bson:"channel"`
	CreatedAt  time.Time          `bson:"createdAt"`
	UpdatedAt  time.Time          `bson:"updatedAt"`
}

type intentDoc struct {
	ID        primitive.ObjectID `bson:"_id"`
	Kind      string             `bson:"kind"`
	VideoID   primitive.ObjectID `bson:"videoId"`
	Objects   []string           `bson:"objects"`
	CreatedAt time.Time          `bson:"createdAt"`
}

func (d *intentDoc) model() models.MediaIntent {
	return models.MediaIntent{
		ID:        d.ID.Hex(),
		Kind:      d.Kind,
		VideoID:   d.VideoID.Hex(),
		Objects:   d.Objects,
		CreatedAt: d.CreatedAt,
	}
}
