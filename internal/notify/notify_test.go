package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/abgdnv/gostorefront/internal/platform/messaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Event_Text(t *testing.T) {
	testCases := []struct {
		name    string
		event   Event
		title   string
		message string
	}{
		{
			name:    "Added",
			event:   Event{Kind: KindAdded, ProductName: "Robot Companion Pet"},
			title:   "Added to cart",
			message: "Robot Companion Pet added to your cart.",
		},
		{
			name:    "Updated",
			event:   Event{Kind: KindUpdated, ProductName: "Hover Racer X2000"},
			title:   "Cart updated",
			message: "Hover Racer X2000 quantity updated in your cart.",
		},
		{
			name:    "Removed",
			event:   Event{Kind: KindRemoved, ProductName: "Dual Plasma Blasters"},
			title:   "Removed from cart",
			message: "Dual Plasma Blasters removed from your cart.",
		},
		{
			name:    "Cleared",
			event:   Event{Kind: KindCleared},
			title:   "Cart cleared",
			message: "All items have been removed from your cart.",
		},
		{
			name:    "Stock limited",
			event:   Event{Kind: KindStockLimited, Stock: 5},
			title:   "Maximum stock reached",
			message: "Sorry, only 5 items available.",
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.title, tc.event.Title())
			assert.Equal(t, tc.message, tc.event.Message())
		})
	}
}

func Test_Multi_Notify(t *testing.T) {
	// given
	first, second := &Recorder{}, &Recorder{}
	sink := Multi{first, second, Discard}
	// when
	sink.Notify(context.Background(), Event{Kind: KindCleared})
	// then
	assert.Equal(t, []Kind{KindCleared}, first.Kinds())
	assert.Equal(t, []Kind{KindCleared}, second.Kinds())
}

func Test_LogSink_Notify(t *testing.T) {
	// given
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	sink := NewLogSink(logger)
	// when
	sink.Notify(context.Background(), Event{Kind: KindStockLimited, SessionID: "s1", ProductID: "prod_2", Stock: 3})
	// then
	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "WARN", record["level"])
	assert.Equal(t, "Maximum stock reached", record["msg"])
	assert.Equal(t, "Sorry, only 3 items available.", record["message"])
	assert.Equal(t, "notify", record["component"])
}

type capturePublisher struct {
	events []messaging.Event
	err    error
}

func (c *capturePublisher) Publish(_ context.Context, event messaging.Event) error {
	c.events = append(c.events, event)
	return c.err
}

func Test_PublisherSink_Notify(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))

	t.Run("Cart events are published", func(t *testing.T) {
		// given
		publisher := &capturePublisher{}
		sink := NewPublisherSink(publisher, logger)
		// when
		sink.Notify(context.Background(), Event{Kind: KindAdded, ProductID: "prod_1", Quantity: 2})
		// then
		require.Len(t, publisher.events, 1)
		assert.Equal(t, "storefront.cart.added", publisher.events[0].Subject())
	})
	t.Run("Order events are skipped", func(t *testing.T) {
		publisher := &capturePublisher{}
		NewPublisherSink(publisher, logger).Notify(context.Background(), Event{Kind: KindOrderPlaced})
		assert.Empty(t, publisher.events)
	})
	t.Run("Publish failures are swallowed", func(t *testing.T) {
		publisher := &capturePublisher{err: errors.New("broker down")}
		assert.NotPanics(t, func() {
			NewPublisherSink(publisher, logger).Notify(context.Background(), Event{Kind: KindRemoved})
		})
	})
}

func Test_Recorder_Reset(t *testing.T) {
	r := &Recorder{}
	r.Notify(context.Background(), Event{Kind: KindAdded})
	require.Len(t, r.Events(), 1)
	r.Reset()
	assert.Empty(t, r.Events())
}
