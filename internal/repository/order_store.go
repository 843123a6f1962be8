package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"pharma-ops/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

const orderColumns = `
	id, user_ref, user_name, user_mobile, user_email, pharmacy_ref,
	delivery_address, order_items,
	total_amount, delivery_charge, platform_charge, discount_amount,
	coupon_code, payment_method, payment_status, transaction_id,
	status, status_timeline, assigned_rider, delivery_proof, before_pickup_proof,
	is_prescription_order, is_reordered, created_at, updated_at`

const periodicColumns = orderColumns + `,
	plan_type, delivery_date, total`

// orderDest returns scan destinations matching orderColumns.
func orderDest(o *model.Order) []any {
	return []any{
		&o.ID, &o.UserRef, &o.UserName, &o.UserMobile, &o.UserEmail, &o.PharmacyRef,
		&o.DeliveryAddress, &o.OrderItems,
		&o.TotalAmount, &o.DeliveryCharge, &o.PlatformCharge, &o.DiscountAmount,
		&o.CouponCode, &o.PaymentMethod, &o.PaymentStatus, &o.TransactionID,
		&o.Status, &o.StatusTimeline, &o.AssignedRider, &o.DeliveryProof, &o.BeforePickupProof,
		&o.IsPrescriptionOrder, &o.IsReordered, &o.CreatedAt, &o.UpdatedAt,
	}
}

func scanOrder(row pgx.Row) (*model.Order, error) {
	var o model.Order
	if err := row.Scan(orderDest(&o)...); err != nil {
		return nil, err
	}
	return &o, nil
}

func scanPeriodicOrder(row pgx.Row) (*model.PeriodicOrder, error) {
	var (
		p            model.PeriodicOrder
		deliveryDate *time.Time
	)
	dest := append(orderDest(&p.Order), &p.PlanType, &deliveryDate, &p.Total)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	if deliveryDate != nil {
		p.DeliveryDate = *deliveryDate
	}
	return &p, nil
}

// orderTable implements the queries shared by orders and periodic orders.
type orderTable[T any] struct {
	pool    *pgxpool.Pool
	table   string
	columns string
	what    string
	scan    func(pgx.Row) (T, error)
	logger  zerolog.Logger
}

func (t *orderTable[T]) list(ctx context.Context) ([]T, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s ORDER BY created_at DESC, id`, t.columns, t.table)

	rows, err := t.pool.Query(ctx, query)
	if err != nil {
		t.logger.Error().Err(err).Msg("failed to query orders")
		return nil, mapError("list "+t.table, err)
	}
	defer rows.Close()

	out := make([]T, 0)
	for rows.Next() {
		rec, err := t.scan(rows)
		if err != nil {
			t.logger.Error().Err(err).Msg("failed to scan order row")
			return nil, mapError("scan "+t.what, err)
		}
		out = append(out, rec)
	}

	if err := rows.Err(); err != nil {
		t.logger.Error().Err(err).Msg("error iterating order rows")
		return nil, mapError("list "+t.table, err)
	}

	return out, nil
}

func (t *orderTable[T]) get(ctx context.Context, id string) (T, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`, t.columns, t.table)

	rec, err := t.scan(t.pool.QueryRow(ctx, query, id))
	if err != nil {
		var zero T
		if errors.Is(err, pgx.ErrNoRows) {
			t.logger.Debug().Str("order_id", id).Msg("order not found")
			return zero, model.NotFoundError(t.what, id)
		}
		t.logger.Error().Err(err).Str("order_id", id).Msg("failed to query order")
		return zero, mapError("get "+t.what, err)
	}
	return rec, nil
}

// updateStatus appends the entry inside the UPDATE so concurrent writers never lose a
// timeline entry.
func (t *orderTable[T]) updateStatus(ctx context.Context, orderID, userID string, update model.StatusUpdate) (T, error) {
	var zero T

	entry := model.TimelineEntry{
		Status:    update.Status,
		Message:   update.Message,
		Timestamp: update.Timestamp.UTC(),
	}

	query := fmt.Sprintf(`
		UPDATE %s
		SET status = $2,
			status_timeline = status_timeline || jsonb_build_array($3::jsonb),
			updated_at = $4
		WHERE id = $1 AND ($5::text = '' OR user_ref = $5::text)
		RETURNING %s`, t.table, t.columns)

	rec, err := t.scan(t.pool.QueryRow(ctx, query, orderID, string(update.Status), entry, entry.Timestamp, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return zero, model.NotFoundError(t.what, orderID)
		}
		t.logger.Error().
			Err(err).
			Str("order_id", orderID).
			Str("status", string(update.Status)).
			Msg("failed to update order status")
		return zero, mapError("update "+t.what+" status", err)
	}

	t.logger.Debug().
		Str("order_id", orderID).
		Str("status", string(update.Status)).
		Msg("order status updated")

	return rec, nil
}

func (t *orderTable[T]) delete(ctx context.Context, id string) error {
	tag, err := t.pool.Exec(ctx, fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, t.table), id)
	if err != nil {
		t.logger.Error().Err(err).Str("order_id", id).Msg("failed to delete order")
		return mapError("delete "+t.what, err)
	}
	if tag.RowsAffected() == 0 {
		return model.NotFoundError(t.what, id)
	}

	t.logger.Debug().Str("order_id", id).Msg("order deleted")
	return nil
}

// orderStore implements OrderStore using PostgreSQL.
type orderStore struct {
	t *orderTable[*model.Order]
}

// NewOrderStore creates a new PostgreSQL-backed order store.
func NewOrderStore(pool *pgxpool.Pool, logger zerolog.Logger) OrderStore {
	return &orderStore{t: &orderTable[*model.Order]{
		pool:    pool,
		table:   "orders",
		columns: orderColumns,
		what:    "order",
		scan:    scanOrder,
		logger:  logger.With().Str("repository", "order").Logger(),
	}}
}

func (s *orderStore) List(ctx context.Context) ([]*model.Order, error) {
	return s.t.list(ctx)
}

func (s *orderStore) GetByID(ctx context.Context, id string) (*model.Order, error) {
	return s.t.get(ctx, id)
}

func (s *orderStore) UpdateStatus(ctx context.Context, orderID, userID string, update model.StatusUpdate) (*model.Order, error) {
	return s.t.updateStatus(ctx, orderID, userID, update)
}

func (s *orderStore) Delete(ctx context.Context, id string) error {
	return s.t.delete(ctx, id)
}

// periodicOrderStore implements PeriodicOrderStore using PostgreSQL.
type periodicOrderStore struct {
	t *orderTable[*model.PeriodicOrder]
}

// NewPeriodicOrderStore creates a new PostgreSQL-backed periodic order store.
func NewPeriodicOrderStore(pool *pgxpool.Pool, logger zerolog.Logger) PeriodicOrderStore {
	return &periodicOrderStore{t: &orderTable[*model.PeriodicOrder]{
		pool:    pool,
		table:   "periodic_orders",
		columns: periodicColumns,
		what:    "periodic order",
		scan:    scanPeriodicOrder,
		logger:  logger.With().Str("repository", "periodic_order").Logger(),
	}}
}

func (s *periodicOrderStore) List(ctx context.Context) ([]*model.PeriodicOrder, error) {
	return s.t.list(ctx)
}

func (s *periodicOrderStore) GetByID(ctx context.Context, id string) (*model.PeriodicOrder, error) {
	return s.t.get(ctx, id)
}

func (s *periodicOrderStore) UpdateStatus(ctx context.Context, orderID, userID string, update model.StatusUpdate) (*model.PeriodicOrder, error) {
	return s.t.updateStatus(ctx, orderID, userID, update)
}

func (s *periodicOrderStore) Delete(ctx context.Context, id string) error {
	return s.t.delete(ctx, id)
}
