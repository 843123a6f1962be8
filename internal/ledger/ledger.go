// Package ledger applies guarded payment-status transitions to a pharmacy's monthly
// revenue and projects the ledger for display.
package ledger

import (
	"strings"
	"time"

	"pharma-ops/internal/model"
	"pharma-ops/internal/money"

	"github.com/shopspring/decimal"
)

// MonthLayout is the layout of revenue month keys.
const MonthLayout = "2006-01"

// Ledger applies payment-status transitions.
type Ledger struct {
	now func() time.Time
}

// New creates a ledger. A nil clock defaults to time.Now.
func New(now func() time.Time) *Ledger {
	if now == nil {
		now = time.Now
	}
	return &Ledger{now: now}
}

// ParseMonth validates a YYYY-MM key.
func ParseMonth(month string) (time.Time, error) {
	t, err := time.Parse(MonthLayout, strings.TrimSpace(month))
	if err != nil {
		return time.Time{}, model.ValidationError("month must be in YYYY-MM format, got %q", month)
	}
	return t, nil
}

// Guard rejects any transition on a month that is already paid. Callers run it before
// issuing a store request.
func Guard(pharmacy *model.Pharmacy, month string) error {
	if pharmacy == nil {
		return nil
	}
	if entry, ok := pharmacy.RevenueByMonth[month]; ok && entry.Status == model.PaymentPaid {
		return model.AlreadySettledError(pharmacy.ID, month)
	}
	return nil
}

// Validate checks the request and returns the normalized payload.
func Validate(month, status string, amount decimal.Decimal) (model.PaymentUpdate, error) {
	if _, err := ParseMonth(month); err != nil {
		return model.PaymentUpdate{}, err
	}
	st, ok := model.ParsePaymentStatus(status)
	if !ok {
		return model.PaymentUpdate{}, model.ValidationError("payment status must be pending, paid or failed, got %q", status)
	}
	amt, err := money.New(amount)
	if err != nil {
		return model.PaymentUpdate{}, model.ValidationError("amount must not be negative")
	}
	return model.PaymentUpdate{
		Month:  strings.TrimSpace(month),
		Status: st,
		Amount: amt,
	}, nil
}

// SetPaymentStatus returns a copy of pharmacy with revenueByMonth[month] set to
// {amount, status}, together with the normalized update to persist. A month already paid
// is rejected with AlreadySettled and nothing is changed. Settling a month also appends a
// payment-history record.
func (l *Ledger) SetPaymentStatus(pharmacy *model.Pharmacy, month, status string, amount decimal.Decimal) (*model.Pharmacy, model.PaymentUpdate, error) {
	if pharmacy == nil {
		return nil, model.PaymentUpdate{}, model.ValidationError("pharmacy is required")
	}

	update, err := Validate(month, status, amount)
	if err != nil {
		return nil, model.PaymentUpdate{}, err
	}

	if err := Guard(pharmacy, update.Month); err != nil {
		return nil, model.PaymentUpdate{}, err
	}

	return l.Apply(pharmacy, update), update, nil
}

// Apply writes an already validated update onto a copy of pharmacy.
func (l *Ledger) Apply(pharmacy *model.Pharmacy, update model.PaymentUpdate) *model.Pharmacy {
	updated := pharmacy.Clone()
	updated.RevenueByMonth[update.Month] = model.RevenueEntry{
		Amount: update.Amount,
		Status: update.Status,
	}
	if update.Status == model.PaymentPaid {
		updated.PaymentHistory = append(updated.PaymentHistory, model.PaymentRecord{
			Month:      update.Month,
			Amount:     update.Amount,
			Status:     update.Status,
			RecordedAt: l.now(),
		})
	}
	return updated
}
