// Package notify publishes order status changes to pharmacies and tracks which alerts an
// operator session has dismissed.
package notify

import (
	"time"

	"pharma-ops/internal/model"

	"github.com/google/uuid"
)

// EventTypeStatusChanged is the event_type attribute of status-change messages.
const EventTypeStatusChanged = "order.status_changed"

// OrderKind distinguishes regular from periodic orders in events.
type OrderKind string

const (
	KindOrder    OrderKind = "order"
	KindPeriodic OrderKind = "periodic"
)

// StatusChanged is sent to the fulfilling pharmacy after a successful transition.
type StatusChanged struct {
	ID         string            `json:"id"`
	OrderID    string            `json:"orderId"`
	OrderKind  OrderKind         `json:"orderKind"`
	PharmacyID string            `json:"pharmacyId"`
	UserID     string            `json:"userId,omitempty"`
	Status     model.OrderStatus `json:"status"`
	Message    string            `json:"message"`
	Timestamp  time.Time         `json:"timestamp"`
}

// NewStatusChanged builds the event for the latest timeline entry of o.
func NewStatusChanged(o *model.Order, kind OrderKind) StatusChanged {
	e := StatusChanged{
		ID:         uuid.NewString(),
		OrderID:    o.ID,
		OrderKind:  kind,
		PharmacyID: o.PharmacyRef,
		UserID:     o.UserRef,
		Status:     o.Status,
		Timestamp:  o.UpdatedAt,
	}
	if n := len(o.StatusTimeline); n > 0 {
		last := o.StatusTimeline[n-1]
		e.Message = last.Message
		e.Timestamp = last.Timestamp
	}
	return e
}
