package events

import (
	"encoding/json"
	"time"

	"github.com/abgdnv/gostorefront/internal/platform/messaging"
)

// CartEvent reports a cart change. Kind is the notification kind, e.g. "added" or "stock_limited".
type CartEvent struct {
	Kind        string    `json:"kind"`
	SessionID   string    `json:"session_id"`
	ProductID   string    `json:"product_id,omitempty"`
	ProductName string    `json:"product_name,omitempty"`
	Quantity    int       `json:"quantity,omitempty"`
	Stock       int       `json:"stock,omitempty"`
	OccurredAt  time.Time `json:"occurred_at"`
}

func (c CartEvent) Subject() string {
	return messaging.CartSubjectPrefix + c.Kind
}

func (c CartEvent) Payload() ([]byte, error) {
	return json.Marshal(c)
}
