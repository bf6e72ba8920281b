// Package mongodb implements database.Store on MongoDB.
//
// Documents keep ObjectID references between collections; conversion to the
// string IDs of the models package happens at the repository boundary.
package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"vidshare-api/internal/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const (
	colUsers         = "users"
	colVideos        = "videos"
	colPlaylists     = "playlists"
	colSubscriptions = "subscriptions"
	colIntents       = "mediaintents"
)

// Store is a database.Store backed by one MongoDB database.
type Store struct {
	client *mongo.Client
	db     *mongo.Database

	users         *userRepo
	videos        *videoRepo
	playlists     *playlistRepo
	subscriptions *subscriptionRepo
	intents       *intentRepo
}

var _ database.Store = (*Store)(nil)

// Open connects to uri and selects the named database.
func Open(ctx context.Context, uri, dbName string) (*Store, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	db := client.Database(dbName)
	return &Store{
		client:        client,
		db:            db,
		users:         &userRepo{col: db.Collection(colUsers)},
		videos:        &videoRepo{col: db.Collection(colVideos), playlists: db.Collection(colPlaylists)},
		playlists:     &playlistRepo{col: db.Collection(colPlaylists), videos: db.Collection(colVideos)},
		subscriptions: &subscriptionRepo{col: db.Collection(colSubscriptions)},
		intents:       &intentRepo{col: db.Collection(colIntents)},
	}, nil
}

func (s *Store) Users() database.UserRepository                 { return s.users }
func (s *Store) Videos() database.VideoRepository               { return s.videos }
func (s *Store) Playlists() database.PlaylistRepository         { return s.playlists }
func (s *Store) Subscriptions() database.SubscriptionRepository { return s.subscriptions }
func (s *Store) Intents() database.IntentRepository             { return s.intents }

func (s *Store) ValidID(id string) bool { return primitive.IsValidObjectID(id) }

func (s *Store) NewID() string { return primitive.NewObjectID().Hex() }

// Migrate creates the indexes the repositories rely on, including the unique
// (subscriber, channel) index that makes subscription toggles race free.
func (s *Store) Migrate(ctx context.Context) error {
	indexes := map[string][]mongo.IndexModel{
		colUsers: {
			{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		colVideos: {
			{Keys: bson.D{{Key: "isPublished", Value: 1}, {Key: "createdAt", Value: -1}}},
			{Keys: bson.D{{Key: "owner", Value: 1}}},
		},
		colPlaylists: {
			{Keys: bson.D{{Key: "owner", Value: 1}}},
		},
		colSubscriptions: {
			{
				Keys:    bson.D{{Key: "subscriber", Value: 1}, {Key: "channel", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
			{Keys: bson.D{{Key: "channel", Value: 1}}},
		},
		colIntents: {
			{Keys: bson.D{{Key: "createdAt", Value: 1}}},
		},
	}

	for name, idx := range indexes {
		if _, err := s.db.Collection(name).Indexes().CreateMany(ctx, idx); err != nil {
			return fmt.Errorf("failed to create indexes on %s: %w", name, err)
		}
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error { return s.client.Ping(ctx, readpref.Primary()) }

func (s *Store) Close(ctx context.Context) error { return s.client.Disconnect(ctx) }

func objectID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, database.ErrNotFound
	}
	return oid, nil
}

func newObjectID(id string) (primitive.ObjectID, error) {
	if id == "" {
		return primitive.NewObjectID(), nil
	}
	return primitive.ObjectIDFromHex(id)
}

func objectIDs(ids []string) ([]primitive.ObjectID, error) {
	out := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		oid, err := primitive.ObjectIDFromHex(id)
		if err != nil {
			return nil, err
		}
		out = append(out, oid)
	}
	return out, nil
}

func hexes(ids []primitive.ObjectID) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, id.Hex())
	}
	return out
}

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return database.ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return database.ErrDuplicate
	default:
		return err
	}
}

func now() time.Time { return time.Now().UTC() }
