// Package events delivers client-scoped notifications, such as a failed
// background token refresh, from the transport layer to the session
// controllers that subscribed to them.
package events

import (
	"context"
	"errors"
	"time"
)

// NameRefreshFailed is published when a background credential refresh has
// definitively failed for a client.
const NameRefreshFailed = "refresh_failed"

var ErrBusClosed = errors.New("event bus is closed")

// Event is a notification addressed to a single client.
type Event struct {
	Name     string    `json:"name"`
	ClientID string    `json:"client_id"`
	At       time.Time `json:"at"`
}

// Handler receives events. Handlers must not block.
type Handler func(Event)

// Bus is an observer registry keyed by event name and client id.
type Bus interface {
	Publish(ctx context.Context, event Event) error

	// Subscribe registers h for events with the given name addressed to
	// clientID. The returned function removes the registration and is safe to
	// call more than once.
	Subscribe(name, clientID string, h Handler) (unsubscribe func(), err error)

	Close() error
}

func subscriptionKey(name, clientID string) string {
	return name + ":" + clientID
}
