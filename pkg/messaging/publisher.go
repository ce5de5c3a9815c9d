// Package messaging defines the event publishing abstraction.
package messaging

import (
	"context"
)

// SalesCreatedSubject is the subject sale-creation events are published on.
const SalesCreatedSubject = "sales.created"

type Event interface {
	Subject() string
	Payload() ([]byte, error)
}

type Publisher interface {
	Publish(ctx context.Context, event Event) error
}
