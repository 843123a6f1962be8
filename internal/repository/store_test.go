package repository

import (
	"context"
	"testing"
	"time"

	"pharma-ops/internal/config"
	"pharma-ops/internal/database"
	"pharma-ops/internal/model"
	"pharma-ops/internal/money"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// setupTestDB starts PostgreSQL, applies migrations and returns a pool.
func setupTestDB(t *testing.T) *pgxpool.Pool {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}

	ctx := context.Background()
	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("postgres"),
		postgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err)

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	pool, err := database.NewPoolFromURL(ctx, connStr, config.DatabaseConfig{MaxConnections: 5, MinConnections: 1}, zerolog.Nop())
	require.NoError(t, err)
	require.NoError(t, database.Migrate(ctx, pool, zerolog.Nop()))

	t.Cleanup(func() {
		pool.Close()
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	return pool
}

func sampleOrder(id string, created time.Time) *model.Order {
	return &model.Order{
		ID:              id,
		Customer:        model.Customer{UserRef: "user-1", UserName: "Asha"},
		PharmacyRef:     "ph-1",
		DeliveryAddress: model.Address{City: "Pune", State: "Maharashtra"},
		OrderItems: []model.OrderItem{
			{MedicineRef: "med-1", Name: "Paracetamol", Quantity: 2, UnitPrice: money.MustParse("25.50")},
		},
		TotalAmount:    money.MustParse("1000"),
		DeliveryCharge: money.MustParse("50"),
		PlatformCharge: money.MustParse("20"),
		DiscountAmount: money.MustParse("100"),
		PaymentStatus:  "Paid",
		Status:         model.OrderStatusPending,
		StatusTimeline: []model.TimelineEntry{
			{Status: model.OrderStatusPending, Message: "order placed", Timestamp: created},
		},
		CreatedAt: created,
		UpdatedAt: created,
	}
}

func TestOrderStore_ListAndGet(t *testing.T) {
	pool := setupTestDB(t)
	ctx := context.Background()
	store := NewOrderStore(pool, zerolog.Nop())

	base := time.Date(2025, 3, 5, 10, 0, 0, 0, time.UTC)
	require.NoError(t, InsertOrder(ctx, pool, sampleOrder("ord-1", base)))
	require.NoError(t, InsertOrder(ctx, pool, sampleOrder("ord-2", base.Add(24*time.Hour))))

	orders, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, "ord-2", orders[0].ID, "newest first")

	got, err := store.GetByID(ctx, "ord-1")
	require.NoError(t, err)
	assert.Equal(t, "Asha", got.UserName)
	assert.Equal(t, "Maharashtra", got.DeliveryAddress.State)
	require.Len(t, got.OrderItems, 1)
	assert.True(t, got.OrderItems[0].UnitPrice.Equal(money.MustParse("25.50")))
	assert.True(t, got.TotalAmount.Equal(money.MustParse("1000")))
	assert.Nil(t, got.AssignedRider)
	assert.True(t, got.CreatedAt.Equal(base))

	_, err = store.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestOrderStore_UpdateStatusAppendsTimeline(t *testing.T) {
	pool := setupTestDB(t)
	ctx := context.Background()
	store := NewOrderStore(pool, zerolog.Nop())

	created := time.Date(2025, 3, 5, 10, 0, 0, 0, time.UTC)
	require.NoError(t, InsertOrder(ctx, pool, sampleOrder("ord-1", created)))

	ts := created.Add(time.Hour)
	updated, err := store.UpdateStatus(ctx, "ord-1", "user-1", model.StatusUpdate{
		Status:    model.OrderStatusCancelled,
		Message:   "out of stock",
		Timestamp: ts,
	})
	require.NoError(t, err)

	assert.Equal(t, model.OrderStatusCancelled, updated.Status)
	require.Len(t, updated.StatusTimeline, 2)
	assert.Equal(t, "order placed", updated.StatusTimeline[0].Message)
	assert.Equal(t, "out of stock", updated.StatusTimeline[1].Message)
	assert.True(t, updated.StatusTimeline[1].Timestamp.Equal(ts))
	assert.True(t, updated.UpdatedAt.Equal(ts))

	_, err = store.UpdateStatus(ctx, "ord-1", "someone-else", model.StatusUpdate{
		Status: model.OrderStatusDelivered, Message: "x", Timestamp: ts,
	})
	assert.ErrorIs(t, err, model.ErrNotFound)

	_, err = store.UpdateStatus(ctx, "missing", "", model.StatusUpdate{
		Status: model.OrderStatusDelivered, Message: "x", Timestamp: ts,
	})
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestOrderStore_UpdateStatusRejectedBySchema(t *testing.T) {
	pool := setupTestDB(t)
	ctx := context.Background()
	store := NewOrderStore(pool, zerolog.Nop())

	require.NoError(t, InsertOrder(ctx, pool, sampleOrder("ord-1", time.Now())))

	_, err := store.UpdateStatus(ctx, "ord-1", "", model.StatusUpdate{
		Status: model.OrderStatus("Lost"), Message: "x", Timestamp: time.Now(),
	})
	require.Error(t, err)
	assert.Equal(t, model.KindValidation, model.KindOf(err))
}

func TestOrderStore_Delete(t *testing.T) {
	pool := setupTestDB(t)
	ctx := context.Background()
	store := NewOrderStore(pool, zerolog.Nop())

	require.NoError(t, InsertOrder(ctx, pool, sampleOrder("ord-1", time.Now())))

	require.NoError(t, store.Delete(ctx, "ord-1"))
	assert.ErrorIs(t, store.Delete(ctx, "ord-1"), model.ErrNotFound)
}

func TestPeriodicOrderStore(t *testing.T) {
	pool := setupTestDB(t)
	ctx := context.Background()
	store := NewPeriodicOrderStore(pool, zerolog.Nop())

	created := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)
	p := &model.PeriodicOrder{
		Order:        *sampleOrder("per-1", created),
		PlanType:     "Monthly",
		DeliveryDate: created.AddDate(0, 0, 7),
		Total:        money.MustParse("500"),
	}
	require.NoError(t, InsertPeriodicOrder(ctx, pool, p))
	noDate := &model.PeriodicOrder{Order: *sampleOrder("per-2", created), PlanType: "Weekly"}
	require.NoError(t, InsertPeriodicOrder(ctx, pool, noDate))

	got, err := store.GetByID(ctx, "per-1")
	require.NoError(t, err)
	assert.Equal(t, "Monthly", got.PlanType)
	assert.True(t, got.Total.Equal(money.MustParse("500")))
	assert.True(t, got.DeliveryDate.Equal(p.DeliveryDate))

	got, err = store.GetByID(ctx, "per-2")
	require.NoError(t, err)
	assert.True(t, got.DeliveryDate.IsZero())

	updated, err := store.UpdateStatus(ctx, "per-1", "", model.StatusUpdate{
		Status: model.OrderStatusConfirmed, Message: "confirmed", Timestamp: created.Add(time.Hour),
	})
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusConfirmed, updated.Status)
	assert.Len(t, updated.StatusTimeline, 2)

	all, err := store.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	require.NoError(t, store.Delete(ctx, "per-2"))
	assert.ErrorIs(t, store.Delete(ctx, "per-2"), model.ErrNotFound)
}

func TestPharmacyStore_UpdatePayment(t *testing.T) {
	pool := setupTestDB(t)
	ctx := context.Background()
	store := NewPharmacyStore(pool, zerolog.Nop())

	require.NoError(t, InsertPharmacy(ctx, pool, &model.Pharmacy{
		ID:      "ph-1",
		Name:    "City Pharmacy",
		Address: model.Address{State: "Karnataka"},
		RevenueByMonth: map[string]model.RevenueEntry{
			"2025-02": {Amount: money.MustParse("1200"), Status: model.PaymentPending},
		},
	}))

	// pending -> paid
	p, err := store.UpdatePayment(ctx, "ph-1", model.PaymentUpdate{
		Month: "2025-03", Status: model.PaymentPaid, Amount: money.MustParse("5000"),
	})
	require.NoError(t, err)
	assert.Equal(t, model.PaymentPaid, p.RevenueByMonth["2025-03"].Status)
	assert.True(t, p.RevenueByMonth["2025-03"].Amount.Equal(money.MustParse("5000")))
	assert.Equal(t, model.PaymentPending, p.RevenueByMonth["2025-02"].Status)
	require.Len(t, p.PaymentHistory, 1)
	assert.Equal(t, "2025-03", p.PaymentHistory[0].Month)

	// paid again -> AlreadySettled, entry unchanged
	_, err = store.UpdatePayment(ctx, "ph-1", model.PaymentUpdate{
		Month: "2025-03", Status: model.PaymentPending, Amount: money.MustParse("1"),
	})
	assert.ErrorIs(t, err, model.ErrAlreadySettled)

	p, err = store.GetByID(ctx, "ph-1")
	require.NoError(t, err)
	assert.Equal(t, model.PaymentPaid, p.RevenueByMonth["2025-03"].Status)
	assert.True(t, p.RevenueByMonth["2025-03"].Amount.Equal(money.MustParse("5000")))
	assert.Len(t, p.PaymentHistory, 1)

	// failed is not settled and produces no history record
	p, err = store.UpdatePayment(ctx, "ph-1", model.PaymentUpdate{
		Month: "2025-02", Status: model.PaymentFailed, Amount: money.MustParse("1200"),
	})
	require.NoError(t, err)
	assert.Equal(t, model.PaymentFailed, p.RevenueByMonth["2025-02"].Status)
	assert.Len(t, p.PaymentHistory, 1)

	_, err = store.UpdatePayment(ctx, "missing", model.PaymentUpdate{Month: "2025-03", Status: model.PaymentPaid})
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestPharmacyStore_List(t *testing.T) {
	pool := setupTestDB(t)
	ctx := context.Background()
	store := NewPharmacyStore(pool, zerolog.Nop())

	require.NoError(t, InsertPharmacy(ctx, pool, &model.Pharmacy{ID: "b", Name: "Beta"}))
	require.NoError(t, InsertPharmacy(ctx, pool, &model.Pharmacy{ID: "a", Name: "Alpha", Status: model.PharmacyStatusSuspended}))

	list, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Alpha", list[0].Name)
	assert.Equal(t, model.PharmacyStatusSuspended, list[0].Status)
	assert.Equal(t, model.PharmacyStatusActive, list[1].Status)
	assert.NotNil(t, list[1].RevenueByMonth)
}
