// Package report narrows, lists and paginates order and pharmacy collections. Every list
// view shares these predicates so filtering behaves the same everywhere.
package report

import (
	"sort"
	"strings"
	"time"
)

// Filters is the active filter state of a list view. Empty string dimensions are
// inactive and match every record.
type Filters struct {
	State         string
	Status        string
	PlanType      string
	PaymentStatus string
	Date          DateFilter
	// Location is the calendar used for date matching. Nil means time.Local.
	Location *time.Location
}

// WithDate returns a copy of f with the date filter replaced.
func (f Filters) WithDate(d DateFilter) Filters {
	f.Date = d
	return f
}

// Active reports whether any dimension is set.
func (f Filters) Active() bool {
	return f.State != "" || f.Status != "" || f.PlanType != "" || f.PaymentStatus != "" || f.Date.Active()
}

// Fields exposes the filterable fields of a record type. A nil accessor makes the
// corresponding dimension match nothing when it is active.
type Fields[T any] struct {
	State         func(T) string
	Status        func(T) string
	PlanType      func(T) string
	PaymentStatus func(T) string
	CreatedAt     func(T) time.Time
}

// Apply returns the records matching every active dimension, in their original order.
// The input slice is not modified.
func Apply[T any](records []T, f Filters, fields Fields[T]) []T {
	out := make([]T, 0, len(records))
	for _, r := range records {
		if Match(r, f, fields) {
			out = append(out, r)
		}
	}
	return out
}

// Match reports whether a single record passes f.
func Match[T any](r T, f Filters, fields Fields[T]) bool {
	if !containsFold(fields.State, r, f.State) {
		return false
	}
	if !containsFold(fields.Status, r, f.Status) {
		return false
	}
	if !containsFold(fields.PaymentStatus, r, f.PaymentStatus) {
		return false
	}
	if f.PlanType != "" {
		if fields.PlanType == nil || !strings.EqualFold(strings.TrimSpace(fields.PlanType(r)), strings.TrimSpace(f.PlanType)) {
			return false
		}
	}
	if f.Date.Active() {
		if fields.CreatedAt == nil || !f.Date.Match(fields.CreatedAt(r), f.Location) {
			return false
		}
	}
	return true
}

func containsFold[T any](get func(T) string, r T, want string) bool {
	if want == "" {
		return true
	}
	if get == nil {
		return false
	}
	return strings.Contains(strings.ToLower(get(r)), strings.ToLower(want))
}

// DistinctValues returns the sorted set of distinct non-empty values of field.
func DistinctValues[T any](records []T, field func(T) string) []string {
	seen := make(map[string]struct{})
	out := make([]string, 0)
	for _, r := range records {
		v := strings.TrimSpace(field(r))
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
