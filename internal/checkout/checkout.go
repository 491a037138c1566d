// Package checkout prices carts and places orders.
package checkout

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/abgdnv/gostorefront/internal/auth"
	"github.com/abgdnv/gostorefront/internal/cart"
	storefronterrors "github.com/abgdnv/gostorefront/internal/errors"
	"github.com/abgdnv/gostorefront/internal/notify"
	"github.com/abgdnv/gostorefront/internal/platform/messaging"
	"github.com/abgdnv/gostorefront/internal/platform/messaging/events"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// DefaultTaxPercent is applied when no tax rate is configured.
const DefaultTaxPercent = 5

type PaymentMethod string

const (
	PaymentCreditCard   PaymentMethod = "credit-card"
	PaymentBankTransfer PaymentMethod = "bank-transfer"
)

func (m PaymentMethod) Valid() bool {
	return m == PaymentCreditCard || m == PaymentBankTransfer
}

// Delivery is where the purchased items are delivered. All fields are optional.
type Delivery struct {
	FirstName      string `json:"firstName,omitempty"      validate:"max=100"`
	LastName       string `json:"lastName,omitempty"       validate:"max=100"`
	Email          string `json:"email,omitempty"          validate:"omitempty,email"`
	RobloxUsername string `json:"robloxUsername,omitempty" validate:"max=50"`
}

// Request is what the buyer submits to place an order.
type Request struct {
	PaymentMethod PaymentMethod `json:"paymentMethod" validate:"required,oneof=credit-card bank-transfer"`
	Delivery      Delivery      `json:"delivery"`
}

// Summary is the priced content of a cart.
type Summary struct {
	Lines     []cart.Line `json:"items"`
	ItemCount int         `json:"itemCount"`
	Subtotal  int64       `json:"subtotal"`
	Shipping  int64       `json:"shipping"`
	Tax       int64       `json:"tax"`
	Total     int64       `json:"total"`
}

type Order struct {
	ID            uuid.UUID     `json:"id"`
	SessionID     string        `json:"sessionId"`
	UserID        string        `json:"userId,omitempty"`
	Summary       Summary       `json:"summary"`
	PaymentMethod PaymentMethod `json:"paymentMethod"`
	Delivery      Delivery      `json:"delivery"`
	PlacedAt      time.Time     `json:"placedAt"`
}

type Service struct {
	taxPercent decimal.Decimal
	publisher  messaging.Publisher
	sink       notify.Sink
	logger     *slog.Logger
	now        func() time.Time
	placed     metric.Int64Counter
}

// NewService creates a checkout service. A non-positive tax percent selects DefaultTaxPercent.
func NewService(taxPercent float64, publisher messaging.Publisher, sink notify.Sink, logger *slog.Logger) *Service {
	if taxPercent <= 0 {
		taxPercent = DefaultTaxPercent
	}
	if publisher == nil {
		publisher = messaging.Noop{}
	}
	if sink == nil {
		sink = notify.Discard
	}
	s := &Service{
		taxPercent: decimal.NewFromFloat(taxPercent),
		publisher:  publisher,
		sink:       sink,
		logger:     logger.With("component", "checkout"),
		now:        time.Now,
	}
	placed, err := otel.Meter("github.com/abgdnv/gostorefront/internal/checkout").Int64Counter(
		"storefront.orders.placed",
		metric.WithDescription("Number of orders placed"),
	)
	if err != nil {
		s.logger.Warn("Failed to create orders counter", "error", err)
	} else {
		s.placed = placed
	}
	return s
}

// Summarize adds shipping, tax and total to a cart snapshot. Digital goods ship for free.
func (s *Service) Summarize(snap cart.Snapshot) Summary {
	tax := decimal.NewFromInt(snap.Subtotal).
		Mul(s.taxPercent).
		Div(decimal.NewFromInt(100)).
		Round(0).
		IntPart()
	var shipping int64
	return Summary{
		Lines:     snap.Lines,
		ItemCount: snap.ItemCount,
		Subtotal:  snap.Subtotal,
		Shipping:  shipping,
		Tax:       tax,
		Total:     snap.Subtotal + shipping + tax,
	}
}

// PlaceOrder turns the cart into an order and clears it in one step; items added afterwards
// stay in the cart. user may be nil for guest checkout. Publishing the order event is best-effort.
func (s *Service) PlaceOrder(ctx context.Context, c *cart.Cart, user *auth.User, req Request) (*Order, error) {
	if !req.PaymentMethod.Valid() {
		return nil, fmt.Errorf("unsupported payment method %q", req.PaymentMethod)
	}
	snap := c.Checkout(ctx)
	if len(snap.Lines) == 0 {
		return nil, storefronterrors.ErrEmptyCart
	}

	order := &Order{
		ID:            uuid.New(),
		SessionID:     c.SessionID(),
		Summary:       s.Summarize(snap),
		PaymentMethod: req.PaymentMethod,
		Delivery:      req.Delivery,
		PlacedAt:      s.now().UTC(),
	}
	if user != nil {
		order.UserID = user.ID
	}

	if err := s.publisher.Publish(ctx, orderPlaced(order)); err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish order event", "order_id", order.ID, "error", err)
	}
	s.sink.Notify(ctx, notify.Event{
		Kind:      notify.KindOrderPlaced,
		SessionID: order.SessionID,
		Quantity:  order.Summary.ItemCount,
		OrderID:   order.ID.String(),
		At:        order.PlacedAt,
	})

	if s.placed != nil {
		s.placed.Add(ctx, 1, metric.WithAttributes(attribute.String("payment_method", string(order.PaymentMethod))))
	}
	s.logger.InfoContext(ctx, "Order placed", "order_id", order.ID, "total", order.Summary.Total)
	return order, nil
}

func orderPlaced(o *Order) events.OrderPlacedEvent {
	lines := make([]events.OrderLine, 0, len(o.Summary.Lines))
	for _, l := range o.Summary.Lines {
		lines = append(lines, events.OrderLine{
			ProductID: l.ProductID,
			Name:      l.Name,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
		})
	}
	return events.OrderPlacedEvent{
		OrderID:       o.ID,
		SessionID:     o.SessionID,
		UserID:        o.UserID,
		Lines:         lines,
		Subtotal:      o.Summary.Subtotal,
		Shipping:      o.Summary.Shipping,
		Tax:           o.Summary.Tax,
		Total:         o.Summary.Total,
		PaymentMethod: string(o.PaymentMethod),
		PlacedAt:      o.PlacedAt,
	}
}
