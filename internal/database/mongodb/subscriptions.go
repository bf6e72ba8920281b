package mongodb

import (
	"context"
	"fmt"
	"time"

	"vidshare-api/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type subscriptionRepo struct {
	col *mongo.Collection
}

// Create relies on the unique (subscriber, channel) index created by Migrate.
func (r *subscriptionRepo) Create(ctx context.Context, sub *models.Subscription) error {
	id, err := newObjectID(sub.ID)
	if err != nil {
		return fmt.Errorf("invalid subscription id: %w", err)
	}
	subscriber, err := objectID(sub.Subscriber)
	if err != nil {
		return fmt.Errorf("invalid subscriber id: %w", err)
	}
	channel, err := objectID(sub.Channel)
	if err != nil {
		return fmt.Errorf("invalid channel id: %w", err)
	}
	ts := now()
	doc := subscriptionDoc{ID: id, Subscriber: subscriber, Channel: channel, CreatedAt: ts, UpdatedAt: ts}
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		return translate(err)
	}
	sub.ID, sub.CreatedAt = id.Hex(), ts
	return nil
}

func pairFilter(subscriberID, channelID string) (bson.M, bool) {
	subscriber, err := objectID(subscriberID)
	if err != nil {
		return nil, false
	}
	channel, err := objectID(channelID)
	if err != nil {
		return nil, false
	}
	return bson.M{"subscriber": subscriber, "channel": channel}, true
}

func (r *subscriptionRepo) DeletePair(ctx context.Context, subscriberID, channelID string) (bool, error) {
	filter, ok := pairFilter(subscriberID, channelID)
	if !ok {
		return false, nil
	}
	res, err := r.col.DeleteOne(ctx, filter)
	if err != nil {
		return false, fmt.Errorf("failed to delete subscription: %w", err)
	}
	return res.DeletedCount > 0, nil
}

func (r *subscriptionRepo) Exists(ctx context.Context, subscriberID, channelID string) (bool, error) {
	filter, ok := pairFilter(subscriberID, channelID)
	if !ok {
		return false, nil
	}
	n, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return false, fmt.Errorf("failed to check subscription: %w", err)
	}
	return n > 0, nil
}

// edgeDoc is a subscription with the far end of the edge joined as "user".
type edgeDoc struct {
	ID         primitive.ObjectID `bson:"_id"`
	Subscriber primitive.ObjectID `bson:"subscriber"`
	Channel    primitive.ObjectID `bson:"channel"`
	CreatedAt  time.Time          `bson:"createdAt"`
	User       ownerDoc           `bson:"user"`
}

func (r *subscriptionRepo) edges(ctx context.Context, matchField, joinField string, id primitive.ObjectID) ([]edgeDoc, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{matchField: id}}},
		{{Key: "$lookup", Value: bson.M{
			"from":         colUsers,
			"localField":   joinField,
			"foreignField": "_id",
			"as":           "user",
		}}},
		{{Key: "$unwind", Value: "$user"}},
		{{Key: "$sort", Value: bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}}},
	}
	cursor, err := r.col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate subscriptions: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []edgeDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode subscriptions: %w", err)
	}
	return docs, nil
}

func (r *subscriptionRepo) ListByChannel(ctx context.Context, channelID string) ([]models.SubscriberEntry, error) {
	entries := []models.SubscriberEntry{}
	channel, err := objectID(channelID)
	if err != nil {
		return entries, nil
	}
	docs, err := r.edges(ctx, "channel", "subscriber", channel)
	if err != nil {
		return nil, err
	}
	for _, d := range docs {
		entries = append(entries, models.SubscriberEntry{
			ID:        d.ID.Hex(),
			Channel:   d.Channel.Hex(),
			CreatedAt: d.CreatedAt,
			Subscriber: models.UserRef{
				ID:       d.User.ID.Hex(),
				Username: d.User.Username,
				Email:    d.User.Email,
			},
		})
	}
	return entries, nil
}

func (r *subscriptionRepo) ListBySubscriber(ctx context.Context, subscriberID string) ([]models.SubscribedChannel, error) {
	entries := []models.SubscribedChannel{}
	subscriber, err := objectID(subscriberID)
	if err != nil {
		return entries, nil
	}
	docs, err := r.edges(ctx, "subscriber", "channel", subscriber)
	if err != nil {
		return nil, err
	}
	for _, d := range docs {
		entries = append(entries, models.SubscribedChannel{
			ID:         d.ID.Hex(),
			Subscriber: d.Subscriber.Hex(),
			CreatedAt:  d.CreatedAt,
			Channel: models.UserRef{
				ID:       d.User.ID.Hex(),
				Username: d.User.Username,
				FullName: d.User.FullName,
			},
		})
	}
	return entries, nil
}

func (r *subscriptionRepo) CountByChannel(ctx context.Context, channelID string) (int64, error) {
	return r.count(ctx, "channel", channelID)
}

func (r *subscriptionRepo) CountBySubscriber(ctx context.Context, subscriberID string) (int64, error) {
	return r.count(ctx, "subscriber", subscriberID)
}

func (r *subscriptionRepo) count(ctx context.Context, field, id string) (int64, error) {
	oid, err := objectID(id)
	if err != nil {
		return 0, nil
	}
	n, err := r.col.CountDocuments(ctx, bson.M{field: oid})
	if err != nil {
		return 0, fmt.Errorf("failed to count subscriptions: %w", err)
	}
	return n, nil
}
