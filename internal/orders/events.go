package orders

import (
	"encoding/json"
	"time"

	"github.com/angelmondragon/orderform-backend/pkg/enums"
)

// OrderEvent is published after an order is created or rewritten.
type OrderEvent struct {
	EventType  enums.OrderEventType  `json:"event_type"`
	OrderID    string                `json:"order_id"`
	SLN        int64                 `json:"sln,omitempty"`
	Mode       enums.OrderUpdateMode `json:"mode,omitempty"`
	Status     string                `json:"status"`
	Actor      string                `json:"actor,omitempty"`
	OccurredAt time.Time             `json:"occurred_at"`
}

func (e OrderEvent) encode() ([]byte, map[string]string, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return nil, nil, err
	}
	attrs := map[string]string{
		"event_type": e.EventType.String(),
		"order_id":   e.OrderID,
	}
	return data, attrs, nil
}
