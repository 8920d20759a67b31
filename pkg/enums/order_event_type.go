package enums

import "fmt"

// OrderEventType names the events published when orders change.
type OrderEventType string

const (
	OrderEventCreated OrderEventType = "order.created"
	OrderEventUpdated OrderEventType = "order.updated"
)

var validOrderEventTypes = []OrderEventType{
	OrderEventCreated,
	OrderEventUpdated,
}

// String implements fmt.Stringer.
func (o OrderEventType) String() string {
	return string(o)
}

// IsValid reports whether the value is a known OrderEventType.
func (o OrderEventType) IsValid() bool {
	for _, candidate := range validOrderEventTypes {
		if candidate == o {
			return true
		}
	}
	return false
}

// ParseOrderEventType converts raw input into an OrderEventType.
func ParseOrderEventType(value string) (OrderEventType, error) {
	for _, candidate := range validOrderEventTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid order event type %q", value)
}
