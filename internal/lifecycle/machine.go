// Package lifecycle validates and applies order status transitions.
package lifecycle

import (
	"strings"
	"time"

	"pharma-ops/internal/model"
)

// Machine applies status transitions and appends timeline entries. It never mutates its
// input: every successful transition returns a fresh copy for the caller to persist.
type Machine struct {
	policy Policy
	now    func() time.Time
}

// Option configures a Machine.
type Option func(*Machine)

// WithPolicy sets the transition policy. The default is Permissive.
func WithPolicy(p Policy) Option {
	return func(m *Machine) {
		m.policy = p
	}
}

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(m *Machine) {
		m.now = now
	}
}

// New creates a state machine.
func New(opts ...Option) *Machine {
	m := &Machine{
		policy: Permissive(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Policy returns the active transition policy.
func (m *Machine) Policy() Policy {
	return m.policy
}

// ParseRequest checks the shape of a transition request without looking at the order:
// both fields are required and the status must be one of the five known values.
func ParseRequest(newStatus, message string) (model.OrderStatus, string, error) {
	if strings.TrimSpace(newStatus) == "" {
		return "", "", model.ValidationError("status is required")
	}
	msg := strings.TrimSpace(message)
	if msg == "" {
		return "", "", model.ValidationError("message is required")
	}

	next, ok := model.ParseOrderStatus(newStatus)
	if !ok {
		return "", "", model.ValidationError("unknown order status %q", newStatus)
	}
	return next, msg, nil
}

// Prepare validates a requested transition away from current and builds the timeline
// entry that records it.
func (m *Machine) Prepare(current model.OrderStatus, newStatus, message string) (model.TimelineEntry, error) {
	next, msg, err := ParseRequest(newStatus, message)
	if err != nil {
		return model.TimelineEntry{}, err
	}

	if !m.policy.Allows(current, next) {
		return model.TimelineEntry{}, model.InvalidTransitionError(current, next)
	}

	return model.TimelineEntry{
		Status:    next,
		Message:   msg,
		Timestamp: m.now(),
	}, nil
}

// Transition validates the request and returns an updated copy of order with the new
// status and one appended timeline entry.
func (m *Machine) Transition(order *model.Order, newStatus, message string) (*model.Order, error) {
	if order == nil {
		return nil, model.ValidationError("order is required")
	}

	entry, err := m.Prepare(order.Status, newStatus, message)
	if err != nil {
		return nil, err
	}

	updated := order.Clone()
	apply(updated, entry)
	return updated, nil
}

// TransitionPeriodic is Transition for periodic orders.
func (m *Machine) TransitionPeriodic(order *model.PeriodicOrder, newStatus, message string) (*model.PeriodicOrder, error) {
	if order == nil {
		return nil, model.ValidationError("periodic order is required")
	}

	entry, err := m.Prepare(order.Status, newStatus, message)
	if err != nil {
		return nil, err
	}

	updated := order.Clone()
	apply(&updated.Order, entry)
	return updated, nil
}

func apply(o *model.Order, entry model.TimelineEntry) {
	o.StatusTimeline = append(o.StatusTimeline, entry)
	o.Status = entry.Status
	o.UpdatedAt = entry.Timestamp
}

// Update converts an entry into the store payload.
func Update(entry model.TimelineEntry) model.StatusUpdate {
	return model.StatusUpdate{
		Status:    entry.Status,
		Message:   entry.Message,
		Timestamp: entry.Timestamp,
	}
}
