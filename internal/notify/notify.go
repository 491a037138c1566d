// Package notify carries cart and order notifications to whoever presents them.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/abgdnv/gostorefront/internal/platform/messaging"
	"github.com/abgdnv/gostorefront/internal/platform/messaging/events"
)

type Kind string

const (
	KindAdded        Kind = "added"
	KindUpdated      Kind = "updated"
	KindRemoved      Kind = "removed"
	KindCleared      Kind = "cleared"
	KindStockLimited Kind = "stock_limited"
	KindOrderPlaced  Kind = "order_placed"
)

// Event is a semantic notification. Presentation is left to the sink.
type Event struct {
	Kind        Kind      `json:"kind"`
	SessionID   string    `json:"sessionId"`
	ProductID   string    `json:"productId,omitempty"`
	ProductName string    `json:"productName,omitempty"`
	Quantity    int       `json:"quantity,omitempty"`
	Stock       int       `json:"stock,omitempty"`
	OrderID     string    `json:"orderId,omitempty"`
	At          time.Time `json:"at"`
}

// Title is the short headline of the notification.
func (e Event) Title() string {
	switch e.Kind {
	case KindAdded:
		return "Added to cart"
	case KindUpdated:
		return "Cart updated"
	case KindRemoved:
		return "Removed from cart"
	case KindCleared:
		return "Cart cleared"
	case KindStockLimited:
		return "Maximum stock reached"
	case KindOrderPlaced:
		return "Order placed"
	default:
		return string(e.Kind)
	}
}

// Message is the human-readable body of the notification.
func (e Event) Message() string {
	switch e.Kind {
	case KindAdded:
		return fmt.Sprintf("%s added to your cart.", e.ProductName)
	case KindUpdated:
		return fmt.Sprintf("%s quantity updated in your cart.", e.ProductName)
	case KindRemoved:
		return fmt.Sprintf("%s removed from your cart.", e.ProductName)
	case KindCleared:
		return "All items have been removed from your cart."
	case KindStockLimited:
		return fmt.Sprintf("Sorry, only %d items available.", e.Stock)
	case KindOrderPlaced:
		return fmt.Sprintf("Order %s has been placed.", e.OrderID)
	default:
		return ""
	}
}

// Sink receives notifications. Implementations must not block for long: they run inside cart mutations.
type Sink interface {
	Notify(ctx context.Context, e Event)
}

type SinkFunc func(ctx context.Context, e Event)

func (f SinkFunc) Notify(ctx context.Context, e Event) { f(ctx, e) }

// Discard ignores every notification.
var Discard Sink = SinkFunc(func(context.Context, Event) {})

// Multi delivers each notification to every sink in order.
type Multi []Sink

func (m Multi) Notify(ctx context.Context, e Event) {
	for _, s := range m {
		s.Notify(ctx, e)
	}
}

// LogSink writes notifications to a structured logger.
type LogSink struct {
	logger *slog.Logger
}

func NewLogSink(logger *slog.Logger) *LogSink {
	return &LogSink{logger: logger.With("component", "notify")}
}

func (s *LogSink) Notify(ctx context.Context, e Event) {
	level := slog.LevelInfo
	if e.Kind == KindStockLimited {
		level = slog.LevelWarn
	}
	s.logger.Log(ctx, level, e.Title(),
		"kind", e.Kind,
		"session_id", e.SessionID,
		"product_id", e.ProductID,
		"message", e.Message(),
	)
}

// PublisherSink forwards cart notifications to the message broker. Order notifications are skipped
// because checkout publishes a richer event of its own.
type PublisherSink struct {
	publisher messaging.Publisher
	logger    *slog.Logger
}

func NewPublisherSink(publisher messaging.Publisher, logger *slog.Logger) *PublisherSink {
	return &PublisherSink{publisher: publisher, logger: logger.With("component", "notify")}
}

func (s *PublisherSink) Notify(ctx context.Context, e Event) {
	if e.Kind == KindOrderPlaced {
		return
	}
	event := events.CartEvent{
		Kind:        string(e.Kind),
		SessionID:   e.SessionID,
		ProductID:   e.ProductID,
		ProductName: e.ProductName,
		Quantity:    e.Quantity,
		Stock:       e.Stock,
		OccurredAt:  e.At,
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "Failed to publish cart event", "subject", event.Subject(), "error", err)
	}
}

// Recorder keeps every notification in memory. Safe for concurrent use.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *Recorder) Notify(_ context.Context, e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

// Events returns a copy of the recorded notifications.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

// Kinds returns the kinds of the recorded notifications in order.
func (r *Recorder) Kinds() []Kind {
	r.mu.Lock()
	defer r.mu.Unlock()
	kinds := make([]Kind, 0, len(r.events))
	for _, e := range r.events {
		kinds = append(kinds, e.Kind)
	}
	return kinds
}

type recorderKey struct{}

// WithRecorder returns a context whose notifications are also kept in r by a Scoped sink.
func WithRecorder(ctx context.Context, r *Recorder) context.Context {
	return context.WithValue(ctx, recorderKey{}, r)
}

// RecorderFromContext returns the Recorder set by WithRecorder.
func RecorderFromContext(ctx context.Context) (*Recorder, bool) {
	r, ok := ctx.Value(recorderKey{}).(*Recorder)
	return r, ok
}

// Scoped forwards notifications to the Recorder carried by the context. Without one it does nothing.
type Scoped struct{}

func (Scoped) Notify(ctx context.Context, e Event) {
	if r, ok := RecorderFromContext(ctx); ok {
		r.Notify(ctx, e)
	}
}

// Reset drops the recorded notifications.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
}
