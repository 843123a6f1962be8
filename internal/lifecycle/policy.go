package lifecycle

import (
	"fmt"

	"pharma-ops/internal/model"
)

// Policy decides which status changes are allowed.
type Policy struct {
	name  string
	table map[model.OrderStatus][]model.OrderStatus
}

const (
	PolicyPermissive = "permissive"
	PolicyStrict     = "strict"
)

// Permissive allows any status to be set from any status, including backward moves out
// of Delivered or Cancelled. Operators rely on this to correct mistaken updates.
func Permissive() Policy {
	return Policy{name: PolicyPermissive}
}

// Strict allows only forward lifecycle steps, plus cancellation from any non-terminal
// status. Delivered and Cancelled are final.
func Strict() Policy {
	return Policy{
		name: PolicyStrict,
		table: map[model.OrderStatus][]model.OrderStatus{
			model.OrderStatusPending:   {model.OrderStatusConfirmed, model.OrderStatusCancelled},
			model.OrderStatusConfirmed: {model.OrderStatusShipped, model.OrderStatusCancelled},
			model.OrderStatusShipped:   {model.OrderStatusDelivered, model.OrderStatusCancelled},
			model.OrderStatusDelivered: nil,
			model.OrderStatusCancelled: nil,
		},
	}
}

// ParsePolicy resolves a configured policy name.
func ParsePolicy(name string) (Policy, error) {
	switch name {
	case "", PolicyPermissive:
		return Permissive(), nil
	case PolicyStrict:
		return Strict(), nil
	default:
		return Policy{}, fmt.Errorf("unknown transition policy: %s", name)
	}
}

// Name returns the policy name.
func (p Policy) Name() string {
	if p.name == "" {
		return PolicyPermissive
	}
	return p.name
}

// Allows reports whether moving from one status to another is permitted. An empty
// current status is treated as Pending.
func (p Policy) Allows(from, to model.OrderStatus) bool {
	if p.table == nil {
		return true
	}
	if from == "" {
		from = model.OrderStatusPending
	}
	for _, next := range p.table[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Next lists the statuses reachable from the given status.
func (p Policy) Next(from model.OrderStatus) []model.OrderStatus {
	if p.table == nil {
		return append([]model.OrderStatus(nil), model.OrderStatuses...)
	}
	if from == "" {
		from = model.OrderStatusPending
	}
	return append([]model.OrderStatus(nil), p.table[from]...)
}
