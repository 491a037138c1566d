package events

import (
	"encoding/json"
	"time"

	"github.com/abgdnv/gostorefront/internal/platform/messaging"
	"github.com/google/uuid"
)

type OrderLine struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
	UnitPrice int64  `json:"unit_price"`
}

type OrderPlacedEvent struct {
	OrderID       uuid.UUID   `json:"order_id"`
	SessionID     string      `json:"session_id"`
	UserID        string      `json:"user_id,omitempty"`
	Lines         []OrderLine `json:"lines"`
	Subtotal      int64       `json:"subtotal"`
	Shipping      int64       `json:"shipping"`
	Tax           int64       `json:"tax"`
	Total         int64       `json:"total"`
	PaymentMethod string      `json:"payment_method"`
	PlacedAt      time.Time   `json:"placed_at"`
}

func (o OrderPlacedEvent) Subject() string {
	return messaging.OrdersPlacedSubject
}

func (o OrderPlacedEvent) Payload() ([]byte, error) {
	return json.Marshal(o)
}
