package mongodb

import (
	"context"
	"fmt"

	"vidshare-api/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type userRepo struct {
	col *mongo.Collection
}

func (r *userRepo) Create(ctx context.Context, user *models.User) error {
	id, err := newObjectID(user.ID)
	if err != nil {
		return fmt.Errorf("invalid user id: %w", err)
	}
	ts := now()
	doc := userDoc{
		ID:         id,
		Username:   user.Username,
		Email:      user.Email,
		FullName:   user.FullName,
		Avatar:     user.Avatar,
		CoverImage: user.CoverImage,
		Password:   user.PasswordHash,
		CreatedAt:  ts,
		UpdatedAt:  ts,
	}
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		return translate(err)
	}
	user.ID, user.CreatedAt, user.UpdatedAt = id.Hex(), ts, ts
	return nil
}

func (r *userRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

func (r *userRepo) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"username": username})
}

func (r *userRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *userRepo) findOne(ctx context.Context, filter bson.M) (*models.User, error) {
	var doc userDoc
	if err := r.col.FindOne(ctx, filter).Decode(&doc); err != nil {
		return nil, translate(err)
	}
	return doc.model(), nil
}
