package repository

import (
	"context"
	"fmt"
	"time"

	"pharma-ops/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Execer is satisfied by *pgxpool.Pool, *pgx.Conn and pgx.Tx.
type Execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

func orderArgs(o *model.Order) []any {
	created, updated := o.CreatedAt, o.UpdatedAt
	if created.IsZero() {
		created = time.Now().UTC()
	}
	if updated.IsZero() {
		updated = created
	}
	status := o.Status
	if status == "" {
		status = model.OrderStatusPending
	}
	return []any{
		o.ID, o.UserRef, o.UserName, o.UserMobile, o.UserEmail, o.PharmacyRef,
		o.DeliveryAddress, emptyIfNil(o.OrderItems),
		o.TotalAmount, o.DeliveryCharge, o.PlatformCharge, o.DiscountAmount,
		o.CouponCode, o.PaymentMethod, o.PaymentStatus, o.TransactionID,
		string(status), emptyIfNil(o.StatusTimeline), o.AssignedRider,
		emptyIfNil(o.DeliveryProof), emptyIfNil(o.BeforePickupProof),
		o.IsPrescriptionOrder, o.IsReordered, created, updated,
	}
}

func emptyIfNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

func placeholders(n int) string {
	s := ""
	for i := 1; i <= n; i++ {
		if i > 1 {
			s += ", "
		}
		s += fmt.Sprintf("$%d", i)
	}
	return s
}

// InsertOrder writes a complete order. It is used for seeding and tests; the console
// itself never creates orders.
func InsertOrder(ctx context.Context, db Execer, o *model.Order) error {
	args := orderArgs(o)
	query := fmt.Sprintf(`INSERT INTO orders (%s) VALUES (%s)`, orderColumns, placeholders(len(args)))
	if _, err := db.Exec(ctx, query, args...); err != nil {
		return mapError("insert order "+o.ID, err)
	}
	return nil
}

// InsertPeriodicOrder writes a complete periodic order.
func InsertPeriodicOrder(ctx context.Context, db Execer, p *model.PeriodicOrder) error {
	var deliveryDate *time.Time
	if !p.DeliveryDate.IsZero() {
		d := p.DeliveryDate
		deliveryDate = &d
	}
	args := append(orderArgs(&p.Order), p.PlanType, deliveryDate, p.Total)
	query := fmt.Sprintf(`INSERT INTO periodic_orders (%s) VALUES (%s)`, periodicColumns, placeholders(len(args)))
	if _, err := db.Exec(ctx, query, args...); err != nil {
		return mapError("insert periodic order "+p.ID, err)
	}
	return nil
}

// InsertPharmacy writes a complete pharmacy with its ledger.
func InsertPharmacy(ctx context.Context, db Execer, p *model.Pharmacy) error {
	revenue := p.RevenueByMonth
	if revenue == nil {
		revenue = map[string]model.RevenueEntry{}
	}
	created := p.CreatedAt
	if created.IsZero() {
		created = time.Now().UTC()
	}
	status := p.Status
	if status == "" {
		status = model.PharmacyStatusActive
	}

	args := []any{
		p.ID, p.Name, p.VendorName, p.VendorEmail, p.VendorPhone, p.Address, string(status),
		revenue, emptyIfNil(p.PaymentHistory), created,
	}
	query := fmt.Sprintf(`INSERT INTO pharmacies (%s) VALUES (%s)`, pharmacyColumns, placeholders(len(args)))
	if _, err := db.Exec(ctx, query, args...); err != nil {
		return mapError("insert pharmacy "+p.ID, err)
	}
	return nil
}

var _ Execer = (pgx.Tx)(nil)
