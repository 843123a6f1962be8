package integration

import (
	"context"
	"net/http"
	"testing"
	"time"

	"pharma-ops/internal/config"
	"pharma-ops/internal/database"
	"pharma-ops/internal/export"
	"pharma-ops/internal/handler"
	"pharma-ops/internal/invoice"
	"pharma-ops/internal/lifecycle"
	"pharma-ops/internal/model"
	"pharma-ops/internal/money"
	"pharma-ops/internal/notify"
	"pharma-ops/internal/repository"
	"pharma-ops/internal/router"
	"pharma-ops/internal/service"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

const testAPIKey = "test-api-key"

// TestDB represents a test database instance.
type TestDB struct {
	Container *postgres.PostgresContainer
	Pool      *pgxpool.Pool
	ConnStr   string
}

// SetupTestDB creates a PostgreSQL test container, a connection pool and the schema.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	ctx := context.Background()

	postgresContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}

	connStr, err := postgresContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed to get connection string: %v", err)
	}

	dbConfig := config.DatabaseConfig{
		MaxConnections:  10,
		MinConnections:  2,
		MaxConnLifetime: 300,
	}

	logger := zerolog.Nop()
	pool, err := database.NewPoolFromURL(ctx, connStr, dbConfig, logger)
	if err != nil {
		t.Fatalf("failed to create connection pool: %v", err)
	}

	if err := database.Migrate(ctx, pool, logger); err != nil {
		t.Fatalf("failed to migrate schema: %v", err)
	}

	t.Cleanup(func() {
		pool.Close()
		if err := postgresContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	return &TestDB{
		Container: postgresContainer,
		Pool:      pool,
		ConnStr:   connStr,
	}
}

// CleanupDB cleans all data from test tables.
func CleanupDB(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	_, err := pool.Exec(context.Background(), "TRUNCATE orders, periodic_orders, pharmacies")
	if err != nil {
		t.Logf("failed to clean tables: %v", err)
	}
}

var seedTime = time.Date(2025, 3, 5, 9, 0, 0, 0, time.UTC)

// SeedData inserts two orders, one periodic order and one pharmacy.
func SeedData(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	ctx := context.Background()

	orders := []*model.Order{
		{
			ID:              "ord-0001",
			Customer:        model.Customer{UserRef: "user-1", UserName: "Asha"},
			PharmacyRef:     "ph-1",
			DeliveryAddress: model.Address{City: "Pune", State: "Maharashtra"},
			OrderItems: []model.OrderItem{
				{MedicineRef: "med-1", Name: "Paracetamol", Quantity: 2, UnitPrice: money.MustParse("500")},
			},
			TotalAmount:    money.MustParse("1000"),
			DeliveryCharge: money.MustParse("50"),
			PlatformCharge: money.MustParse("20"),
			DiscountAmount: money.MustParse("100"),
			PaymentStatus:  "paid",
			Status:         model.OrderStatusPending,
			StatusTimeline: []model.TimelineEntry{
				{Status: model.OrderStatusPending, Message: "Order placed", Timestamp: seedTime},
			},
			CreatedAt: seedTime,
		},
		{
			ID:              "ord-0002",
			Customer:        model.Customer{UserRef: "user-2", UserName: "Ravi"},
			DeliveryAddress: model.Address{City: "Kochi", State: "Kerala"},
			TotalAmount:     money.MustParse("500"),
			DeliveryCharge:  money.MustParse("40"),
			PlatformCharge:  money.MustParse("10"),
			DiscountAmount:  money.MustParse("600"),
			Status:          model.OrderStatusDelivered,
			CreatedAt:       seedTime.AddDate(0, 1, 0),
		},
	}
	for _, o := range orders {
		require.NoError(t, repository.InsertOrder(ctx, pool, o))
	}

	require.NoError(t, repository.InsertPeriodicOrder(ctx, pool, &model.PeriodicOrder{
		Order: model.Order{
			ID:              "per-0001",
			Customer:        model.Customer{UserRef: "user-1"},
			DeliveryAddress: model.Address{State: "Maharashtra"},
			Status:          model.OrderStatusPending,
			CreatedAt:       seedTime,
		},
		PlanType: "Monthly",
		Total:    money.MustParse("400"),
	}))

	require.NoError(t, repository.InsertPharmacy(ctx, pool, &model.Pharmacy{
		ID:      "ph-1",
		Name:    "Care Pharmacy",
		Address: model.Address{State: "Maharashtra"},
		Status:  model.PharmacyStatusActive,
		RevenueByMonth: map[string]model.RevenueEntry{
			"2025-03": {Amount: money.MustParse("5000"), Status: model.PaymentPending},
		},
		CreatedAt: seedTime,
	}))
}

// newServer wires the full HTTP stack over the given stores the way cmd/api does.
func newServer(t *testing.T, orders repository.OrderStore, periodic repository.PeriodicOrderStore, pharmacies repository.PharmacyStore) http.Handler {
	t.Helper()

	logger := zerolog.Nop()
	deps := service.Dependencies{
		Machine:   lifecycle.New(),
		Artifacts: export.NewFileStore(t.TempDir(), logger),
		Company:   invoice.Company{Name: "Pharma Ops"},
		Location:  time.UTC,
	}

	v := handler.NewValidator()
	paging := handler.Paging{DefaultPageSize: 20, MaxPageSize: 100}
	return router.New(router.Handlers{
		Orders:         handler.NewOrderHandler(service.NewOrderService(orders, deps, logger), v, paging, logger),
		PeriodicOrders: handler.NewPeriodicOrderHandler(service.NewPeriodicOrderService(periodic, deps, logger), v, paging, logger),
		Pharmacies:     handler.NewPharmacyHandler(service.NewPharmacyService(pharmacies, deps, logger), v, paging, logger),
		Notifications:  handler.NewNotificationHandler(notify.NewReadSet(), v, logger),
	}, testAPIKey, logger)
}
