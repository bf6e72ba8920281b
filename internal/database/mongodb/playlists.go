package mongodb

import (
	"context"
	"fmt"

	"vidshare-api/internal/database"
	"vidshare-api/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type playlistRepo struct {
	col    *mongo.Collection
	videos *mongo.Collection
}

func (r *playlistRepo) Create(ctx context.Context, playlist *models.Playlist) error {
	id, err := newObjectID(playlist.ID)
	if err != nil {
		return fmt.Errorf("invalid playlist id: %w", err)
	}
	owner, err := objectID(playlist.Owner)
	if err != nil {
		return fmt.Errorf("invalid owner id: %w", err)
	}
	members, err := objectIDs(playlist.Videos)
	if err != nil {
		return fmt.Errorf("invalid playlist member: %w", err)
	}
	ts := now()
	doc := playlistDoc{
		ID:          id,
		Name:        playlist.Name,
		Description: playlist.Description,
		Owner:       owner,
		Videos:      members,
		CreatedAt:   ts,
		UpdatedAt:   ts,
	}
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		return translate(err)
	}
	playlist.ID, playlist.CreatedAt, playlist.UpdatedAt = id.Hex(), ts, ts
	playlist.Videos = hexes(members)
	return nil
}

func (r *playlistRepo) GetByID(ctx context.Context, id string) (*models.Playlist, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	var doc playlistDoc
	if err := r.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		return nil, translate(err)
	}
	return doc.model(), nil
}

func (r *playlistRepo) ListByOwner(ctx context.Context, ownerID string) ([]models.Playlist, error) {
	owner, err := objectID(ownerID)
	if err != nil {
		return []models.Playlist{}, nil
	}
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}})
	cursor, err := r.col.Find(ctx, bson.M{"owner": owner}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query playlists: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []playlistDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode playlists: %w", err)
	}
	playlists := make([]models.Playlist, 0, len(docs))
	for i := range docs {
		playlists = append(playlists, *docs[i].model())
	}
	return playlists, nil
}

// Videos resolves the membership array with an $in query. The query does not
// keep the order of the array, so the result is re-ordered in memory.
func (r *playlistRepo) Videos(ctx context.Context, playlistID string) ([]models.Video, error) {
	p, err := r.GetByID(ctx, playlistID)
	if err != nil {
		return nil, err
	}
	members, err := objectIDs(p.Videos)
	if err != nil {
		return nil, err
	}
	videos := []models.Video{}
	if len(members) == 0 {
		return videos, nil
	}

	cursor, err := r.videos.Find(ctx, bson.M{"_id": bson.M{"$in": members}})
	if err != nil {
		return nil, fmt.Errorf("failed to query playlist videos: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []videoDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode playlist videos: %w", err)
	}
	byID := make(map[string]*models.Video, len(docs))
	for i := range docs {
		byID[docs[i].ID.Hex()] = docs[i].model()
	}
	for _, id := range p.Videos {
		if v, ok := byID[id]; ok {
			videos = append(videos, *v)
		}
	}
	return videos, nil
}

func (r *playlistRepo) AddVideo(ctx context.Context, playlistID, videoID string) (*models.Playlist, error) {
	vid, err := objectID(videoID)
	if err != nil {
		return nil, err
	}
	return r.update(ctx, playlistID, bson.M{"$addToSet": bson.M{"videos": vid}})
}

func (r *playlistRepo) RemoveVideo(ctx context.Context, playlistID, videoID string) (*models.Playlist, error) {
	vid, err := objectID(videoID)
	if err != nil {
		return nil, err
	}
	return r.update(ctx, playlistID, bson.M{"$pull": bson.M{"videos": vid}})
}

func (r *playlistRepo) Update(ctx context.Context, id, name, description string) (*models.Playlist, error) {
	return r.update(ctx, id, bson.M{"$set": bson.M{"name": name, "description": description}})
}

// update applies change together with an updatedAt bump and returns the
// document as it stands afterwards.
func (r *playlistRepo) update(ctx context.Context, id string, change bson.M) (*models.Playlist, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	set, _ := change["$set"].(bson.M)
	if set == nil {
		set = bson.M{}
	}
	set["updatedAt"] = now()
	change["$set"] = set

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var doc playlistDoc
	if err := r.col.FindOneAndUpdate(ctx, bson.M{"_id": oid}, change, opts).Decode(&doc); err != nil {
		return nil, translate(err)
	}
	return doc.model(), nil
}

func (r *playlistRepo) Delete(ctx context.Context, id string) (*models.Playlist, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	var doc playlistDoc
	if err := r.col.FindOneAndDelete(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		return nil, translate(err)
	}
	return doc.model(), nil
}

var _ database.PlaylistRepository = (*playlistRepo)(nil)
