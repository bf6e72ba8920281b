package mongodb

import (
	"context"
	"fmt"
	"time"

	"vidshare-api/internal/database"
	"vidshare-api/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type intentRepo struct {
	col *mongo.Collection
}

func (r *intentRepo) Create(ctx context.Context, intent *models.MediaIntent) error {
	id, err := newObjectID(intent.ID)
	if err != nil {
		return fmt.Errorf("invalid intent id: %w", err)
	}
	video, err := objectID(intent.VideoID)
	if err != nil {
		return fmt.Errorf("invalid video id: %w", err)
	}
	if intent.CreatedAt.IsZero() {
		intent.CreatedAt = now()
	}
	objects := intent.Objects
	if objects == nil {
		objects = []string{}
	}
	doc := intentDoc{
		ID:        id,
		Kind:      intent.Kind,
		VideoID:   video,
		Objects:   objects,
		CreatedAt: intent.CreatedAt.UTC(),
	}
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("failed to insert media intent: %w", translate(err))
	}
	intent.ID = id.Hex()
	return nil
}

func (r *intentRepo) SetObjects(ctx context.Context, id string, objects []string) error {
	oid, err := objectID(id)
	if err != nil {
		return err
	}
	if objects == nil {
		objects = []string{}
	}
	res, err := r.col.UpdateByID(ctx, oid, bson.M{"$set": bson.M{"objects": objects}})
	if err != nil {
		return fmt.Errorf("failed to update media intent: %w", err)
	}
	if res.MatchedCount == 0 {
		return database.ErrNotFound
	}
	return nil
}

func (r *intentRepo) Delete(ctx context.Context, id string) error {
	oid, err := objectID(id)
	if err != nil {
		return err
	}
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("failed to delete media intent: %w", err)
	}
	if res.DeletedCount == 0 {
		return database.ErrNotFound
	}
	return nil
}

func (r *intentRepo) ListStale(ctx context.Context, cutoff time.Time) ([]models.MediaIntent, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}})
	cursor, err := r.col.Find(ctx, bson.M{"createdAt": bson.M{"$lt": cutoff.UTC()}}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query media intents: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []intentDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode media intents: %w", err)
	}
	intents := make([]models.MediaIntent, 0, len(docs))
	for i := range docs {
		intents = append(intents, docs[i].model())
	}
	return intents, nil
}
