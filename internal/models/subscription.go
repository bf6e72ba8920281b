package models

import "time"

type Subscription struct {
	ID         string    `json:"_id"`
	Subscriber string    `json:"subscriber"`
	Channel    string    `json:"channel"`
	CreatedAt  time.Time `json:"createdAt"`
}

// UserRef is a partially resolved user reference.
type UserRef struct {
	ID       string `json:"_id"`
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
	FullName string `json:"fullName,omitempty"`
}

// SubscriberEntry is an edge targeting a channel with the subscriber resolved.
type SubscriberEntry struct {
	ID         string    `json:"_id"`
	Subscriber UserRef   `json:"subscriber"`
	Channel    string    `json:"channel"`
	CreatedAt  time.Time `json:"createdAt"`
}

// SubscribedChannel is an edge from a subscriber with the channel resolved.
type SubscribedChannel struct {
	ID         string    `json:"_id"`
	Subscriber string    `json:"subscriber"`
	Channel    UserRef   `json:"channel"`
	CreatedAt  time.Time `json:"createdAt"`
}

// ToggleResult reports the state of a (subscriber, channel) pair after a toggle.
type ToggleResult struct {
	Subscribed   bool          `json:"subscribed"`
	Subscription *Subscription `json:"subscription,omitempty"`
}
