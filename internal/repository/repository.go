package repository

import (
	"context"

	"pharma-ops/internal/model"
)

// OrderStore is the system of record for regular orders.
type OrderStore interface {
	// List returns every order, newest first.
	List(ctx context.Context) ([]*model.Order, error)

	// GetByID returns a NotFound error when the order does not exist.
	GetByID(ctx context.Context, id string) (*model.Order, error)

	// UpdateStatus sets the status and appends the timeline entry. A non-empty userID must
	// match the order owner.
	UpdateStatus(ctx context.Context, orderID, userID string, update model.StatusUpdate) (*model.Order, error)

	// Delete removes the order. Deleting a missing order returns NotFound.
	Delete(ctx context.Context, id string) error
}

// PeriodicOrderStore is the system of record for periodic orders.
type PeriodicOrderStore interface {
	List(ctx context.Context) ([]*model.PeriodicOrder, error)
	GetByID(ctx context.Context, id string) (*model.PeriodicOrder, error)
	UpdateStatus(ctx context.Context, orderID, userID string, update model.StatusUpdate) (*model.PeriodicOrder, error)
	Delete(ctx context.Context, id string) error
}

// PharmacyStore is the system of record for pharmacies and their revenue ledger.
type PharmacyStore interface {
	List(ctx context.Context) ([]*model.Pharmacy, error)
	GetByID(ctx context.Context, id string) (*model.Pharmacy, error)

	// UpdatePayment writes one revenue month. The store rejects a month that is already
	// paid with AlreadySettled, independently of any caller-side check.
	UpdatePayment(ctx context.Context, pharmacyID string, update model.PaymentUpdate) (*model.Pharmacy, error)
}
