// Package messaging defines the events the storefront emits and the publishers that carry them.
package messaging

import (
	"context"
	"errors"
)

const (
	// StreamName is the JetStream stream holding every storefront subject.
	StreamName = "STOREFRONT"
	// SubjectWildcard matches every storefront subject.
	SubjectWildcard = "storefront.>"

	CartSubjectPrefix   = "storefront.cart."
	OrdersPlacedSubject = "storefront.orders.placed"
)

type Event interface {
	Subject() string
	Payload() ([]byte, error)
}

type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// Noop drops every event. Used when no broker is configured.
type Noop struct{}

func (Noop) Publish(context.Context, Event) error { return nil }

// Fanout publishes each event to every publisher and joins their errors.
type Fanout []Publisher

func (f Fanout) Publish(ctx context.Context, event Event) error {
	var errs []error
	for _, p := range f {
		if err := p.Publish(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
