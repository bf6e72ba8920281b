package mongodb

import (
	"context"
	"fmt"
	"regexp"

	"vidshare-api/internal/database"
	"vidshare-api/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type videoRepo struct {
	col       *mongo.Collection
	playlists *mongo.Collection
}

func (r *videoRepo) Create(ctx context.Context, video *models.Video) error {
	id, err := newObjectID(video.ID)
	if err != nil {
		return fmt.Errorf("invalid video id: %w", err)
	}
	owner, err := objectID(video.Owner)
	if err != nil {
		return fmt.Errorf("invalid owner id: %w", err)
	}
	ts := now()
	doc := videoDoc{
		ID:          id,
		VideoFile:   video.VideoFile,
		VideoFileID: video.VideoFileID,
		Thumbnail:   video.Thumbnail,
		ThumbnailID: video.ThumbnailID,
		Title:       video.Title,
		Description: video.Description,
		Duration:    video.Duration,
		Views:       video.Views,
		IsPublished: video.IsPublished,
		Owner:       owner,
		CreatedAt:   ts,
		UpdatedAt:   ts,
	}
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		return translate(err)
	}
	video.ID, video.CreatedAt, video.UpdatedAt = id.Hex(), ts, ts
	return nil
}

func (r *videoRepo) GetByID(ctx context.Context, id string) (*models.Video, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	var doc videoDoc
	if err := r.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		return nil, translate(err)
	}
	return doc.model(), nil
}

// matchStage builds the predicate over published videos: a case-insensitive
// substring match on title OR description, AND-ed with the owner filter.
func matchStage(q models.VideoQuery) (bson.D, error) {
	filter := bson.D{{Key: "isPublished", Value: true}}
	if q.Search != "" {
		pattern := bson.M{"$regex": regexp.QuoteMeta(q.Search), "$options": "i"}
		filter = append(filter, bson.E{Key: "$or", Value: bson.A{
			bson.M{"title": pattern},
			bson.M{"description": pattern},
		}})
	}
	if q.OwnerID != "" {
		owner, err := objectID(q.OwnerID)
		if err != nil {
			return nil, err
		}
		filter = append(filter, bson.E{Key: "owner", Value: owner})
	}
	return bson.D{{Key: "$match", Value: filter}}, nil
}

func listPipeline(q models.VideoQuery) (mongo.Pipeline, error) {
	match, err := matchStage(q)
	if err != nil {
		return nil, err
	}

	field, asc := database.NormalizeSort(q)
	dir := -1
	if asc {
		dir = 1
	}

	return mongo.Pipeline{
		match,
		{{Key: "$lookup", Value: bson.M{
			"from":         colUsers,
			"localField":   "owner",
			"foreignField": "_id",
			"as":           "ownerProfile",
		}}},
		{{Key: "$unwind", Value: "$ownerProfile"}},
		{{Key: "$project", Value: bson.M{
			"ownerProfile.password":   0,
			"ownerProfile.email":      0,
			"ownerProfile.coverImage": 0,
			"ownerProfile.createdAt":  0,
			"ownerProfile.updatedAt":  0,
		}}},
		{{Key: "$sort", Value: bson.D{{Key: field, Value: dir}, {Key: "_id", Value: dir}}}},
		{{Key: "$facet", Value: bson.M{
			"metadata": bson.A{bson.M{"$count": "total"}},
			"docs": bson.A{
				bson.M{"$skip": int64((q.Page - 1) * q.Limit)},
				bson.M{"$limit": int64(q.Limit)},
			},
		}}},
	}, nil
}

func (r *videoRepo) List(ctx context.Context, q models.VideoQuery) (*models.VideoPage, error) {
	pipeline, err := listPipeline(q)
	if err != nil {
		return nil, err
	}

	cursor, err := r.col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate videos: %w", err)
	}
	defer cursor.Close(ctx)

	var result []struct {
		Metadata []struct {
			Total int64 `bson:"total"`
		} `bson:"metadata"`
		Docs []videoWithOwnerDoc `bson:"docs"`
	}
	if err := cursor.All(ctx, &result); err != nil {
		return nil, fmt.Errorf("failed to decode videos: %w", err)
	}

	page := &models.VideoPage{
		Videos:      []models.VideoWithOwner{},
		CurrentPage: q.Page,
		Limit:       q.Limit,
	}
	if len(result) == 0 {
		return page, nil
	}
	if len(result[0].Metadata) > 0 {
		page.TotalVideos = result[0].Metadata[0].Total
	}
	page.TotalPages = models.TotalPages(page.TotalVideos, q.Limit)
	for i := range result[0].Docs {
		d := &result[0].Docs[i]
		page.Videos = append(page.Videos, models.VideoWithOwner{
			Video: *d.videoDoc.model(),
			Owner: models.Owner{
				ID:       d.OwnerProfile.ID.Hex(),
				Username: d.OwnerProfile.Username,
				FullName: d.OwnerProfile.FullName,
				Avatar:   d.OwnerProfile.Avatar,
			},
		})
	}
	return page, nil
}

func (r *videoRepo) Update(ctx context.Context, video *models.Video) error {
	oid, err := objectID(video.ID)
	if err != nil {
		return err
	}
	video.UpdatedAt = now()
	res, err := r.col.UpdateByID(ctx, oid, bson.M{"$set": bson.M{
		"title":       video.Title,
		"description": video.Description,
		"thumbnail":   video.Thumbnail,
		"thumbnailId": video.ThumbnailID,
		"duration":    video.Duration,
		"updatedAt":   video.UpdatedAt,
	}})
	if err != nil {
		return fmt.Errorf("failed to update video: %w", err)
	}
	if res.MatchedCount == 0 {
		return database.ErrNotFound
	}
	return nil
}

// TogglePublished flips the flag with an aggregation-pipeline update so the
// read and the write are one atomic document operation.
func (r *videoRepo) TogglePublished(ctx context.Context, id string) (bool, error) {
	oid, err := objectID(id)
	if err != nil {
		return false, err
	}
	update := mongo.Pipeline{
		{{Key: "$set", Value: bson.M{
			"isPublished": bson.M{"$not": bson.A{"$isPublished"}},
			"updatedAt":   now(),
		}}},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc videoDoc
	if err := r.col.FindOneAndUpdate(ctx, bson.M{"_id": oid}, update, opts).Decode(&doc); err != nil {
		return false, translate(err)
	}
	return doc.IsPublished, nil
}

// Delete removes the video and pulls it from every playlist that references it.
func (r *videoRepo) Delete(ctx context.Context, id string) error {
	oid, err := objectID(id)
	if err != nil {
		return err
	}
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("failed to delete video: %w", err)
	}
	if res.DeletedCount == 0 {
		return database.ErrNotFound
	}
	if _, err := r.playlists.UpdateMany(ctx,
		bson.M{"videos": oid},
		bson.M{"$pull": bson.M{"videos": oid}},
	); err != nil {
		return fmt.Errorf("failed to detach video from playlists: %w", err)
	}
	return nil
}
