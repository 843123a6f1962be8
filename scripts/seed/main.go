package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"pharma-ops/internal/config"
	"pharma-ops/internal/database"
	"pharma-ops/internal/model"
	"pharma-ops/internal/money"
	"pharma-ops/internal/repository"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

// seed fills a local database with sample orders, periodic orders and pharmacies so the
// console has something to filter, settle and export.
//
// Orders span three states and two months; pharmacy ph-001 has one paid and one pending
// month, ph-002 has a failed month.
func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx := context.Background()
	logger := zerolog.Nop()

	pool, err := database.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		log.Fatalf("Failed to connect: %v", err)
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool, logger); err != nil {
		log.Fatalf("Failed to migrate: %v", err)
	}

	base := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	states := []string{"Maharashtra", "Karnataka", "Kerala"}
	statuses := []model.OrderStatus{
		model.OrderStatusPending, model.OrderStatusConfirmed, model.OrderStatusShipped,
		model.OrderStatusDelivered, model.OrderStatusCancelled,
	}

	for i := 0; i < 12; i++ {
		created := base.AddDate(0, 0, i*5)
		o := &model.Order{
			ID:              fmt.Sprintf("ord-%04d", i+1),
			Customer:        model.Customer{UserRef: fmt.Sprintf("user-%d", i%4+1), UserName: fmt.Sprintf("Customer %d", i%4+1)},
			PharmacyRef:     fmt.Sprintf("ph-%03d", i%2+1),
			DeliveryAddress: model.Address{City: "City", State: states[i%len(states)]},
			OrderItems: []model.OrderItem{
				{MedicineRef: "med-1", Name: "Paracetamol 500mg", Quantity: i%3 + 1, UnitPrice: money.MustParse("45.50")},
			},
			TotalAmount:    money.FromInt(int64(200 + i*75)),
			DeliveryCharge: money.MustParse("40"),
			PlatformCharge: money.MustParse("10"),
			DiscountAmount: money.FromInt(int64(i * 10)),
			PaymentMethod:  "UPI",
			PaymentStatus:  []string{"paid", "pending"}[i%2],
			Status:         statuses[i%len(statuses)],
			StatusTimeline: []model.TimelineEntry{
				{Status: model.OrderStatusPending, Message: "Order placed", Timestamp: created},
			},
			CreatedAt: created,
		}
		if err := repository.InsertOrder(ctx, pool, o); err != nil {
			log.Fatalf("Failed to insert %s: %v", o.ID, err)
		}
	}
	fmt.Println("Created 12 orders")

	for i, plan := range []string{"Weekly", "Monthly", "Bi-Monthly"} {
		created := base.AddDate(0, 0, i*7)
		p := &model.PeriodicOrder{
			Order: model.Order{
				ID:              fmt.Sprintf("per-%04d", i+1),
				Customer:        model.Customer{UserRef: "user-1", UserName: "Customer 1"},
				PharmacyRef:     "ph-001",
				DeliveryAddress: model.Address{State: states[i]},
				DeliveryCharge:  money.MustParse("30"),
				Status:          model.OrderStatusPending,
				CreatedAt:       created,
			},
			PlanType:     plan,
			DeliveryDate: created.AddDate(0, 0, 3),
			Total:        money.FromInt(int64(300 + i*100)),
		}
		if err := repository.InsertPeriodicOrder(ctx, pool, p); err != nil {
			log.Fatalf("Failed to insert %s: %v", p.ID, err)
		}
	}
	fmt.Println("Created 3 periodic orders")

	pharmacies := []*model.Pharmacy{
		{
			ID:      "ph-001",
			Name:    "Care Pharmacy",
			Status:  model.PharmacyStatusActive,
			Address: model.Address{State: "Maharashtra"},
			RevenueByMonth: map[string]model.RevenueEntry{
				"2025-02": {Amount: money.MustParse("4200"), Status: model.PaymentPaid},
				"2025-03": {Amount: money.MustParse("5000"), Status: model.PaymentPending},
			},
			PaymentHistory: []model.PaymentRecord{
				{Month: "2025-02", Amount: money.MustParse("4200"), Status: model.PaymentPaid, RecordedAt: base},
			},
			CreatedAt: base.AddDate(-1, 0, 0),
		},
		{
			ID:      "ph-002",
			Name:    "Wellness Meds",
			Address: model.Address{State: "Kerala"},
			Status:  model.PharmacyStatusSuspended,
			RevenueByMonth: map[string]model.RevenueEntry{
				"2025-03": {Amount: money.MustParse("1250.75"), Status: model.PaymentFailed},
			},
			CreatedAt: base.AddDate(0, -6, 0),
		},
	}
	for _, p := range pharmacies {
		if err := repository.InsertPharmacy(ctx, pool, p); err != nil {
			log.Fatalf("Failed to insert %s: %v", p.ID, err)
		}
	}
	fmt.Println("Created 2 pharmacies")

	fmt.Println("\nSample data created successfully!")
}
