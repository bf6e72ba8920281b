package services

import (
	"context"
	"errors"

	"vidshare-api/internal/apperror"
	"vidshare-api/internal/database"
	"vidshare-api/internal/models"
)

type SubscriptionService struct {
	store database.Store
}

func NewSubscriptionService(store database.Store) *SubscriptionService {
	return &SubscriptionService{store: store}
}

// Toggle flips the (subscriber, channel) edge without reading it first: a
// conditional delete either removes the edge or, when there was none, the
// insert creates it. A unique-index rejection on the insert means a
// concurrent toggle created the edge, which leaves the pair subscribed.
func (s *SubscriptionService) Toggle(ctx context.Context, subscriberID, channelID string) (*models.ToggleResult, error) {
	if !s.store.ValidID(channelID) {
		return nil, apperror.Validation("Invalid channel ID")
	}
	if !s.store.ValidID(subscriberID) {
		return nil, apperror.Validation("Invalid user ID")
	}
	if _, err := s.store.Users().GetByID(ctx, channelID); err != nil {
		return nil, storeError(err, "Channel not found")
	}

	subs := s.store.Subscriptions()
	deleted, err := subs.DeletePair(ctx, subscriberID, channelID)
	if err != nil {
		return nil, apperror.Internal("Something went wrong", err)
	}
	if deleted {
		return &models.ToggleResult{Subscribed: false}, nil
	}

	sub := &models.Subscription{Subscriber: subscriberID, Channel: channelID}
	switch err := subs.Create(ctx, sub); {
	case err == nil:
		return &models.ToggleResult{Subscribed: true, Subscription: sub}, nil
	case errors.Is(err, database.ErrDuplicate):
		return &models.ToggleResult{Subscribed: true}, nil
	default:
		return nil, apperror.Internal("Something went wrong", err)
	}
}

func (s *SubscriptionService) ListSubscribers(ctx context.Context, channelID string) ([]models.SubscriberEntry, error) {
	if !s.store.ValidID(channelID) {
		return nil, apperror.Validation("Invalid channel ID")
	}
	entries, err := s.store.Subscriptions().ListByChannel(ctx, channelID)
	if err != nil {
		return nil, apperror.Internal("Something went wrong", err)
	}
	return entries, nil
}

func (s *SubscriptionService) ListSubscriptions(ctx context.Context, subscriberID string) ([]models.SubscribedChannel, error) {
	if !s.store.ValidID(subscriberID) {
		return nil, apperror.Validation("Invalid subscriber ID")
	}
	entries, err := s.store.Subscriptions().ListBySubscriber(ctx, subscriberID)
	if err != nil {
		return nil, apperror.Internal("Something went wrong", err)
	}
	return entries, nil
}
