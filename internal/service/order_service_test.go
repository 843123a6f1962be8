package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"pharma-ops/internal/export"
	"pharma-ops/internal/invoice"
	"pharma-ops/internal/lifecycle"
	"pharma-ops/internal/model"
	"pharma-ops/internal/money"
	"pharma-ops/internal/notify"
	"pharma-ops/internal/report"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2025, 3, 5, 10, 30, 0, 0, time.UTC)

func testDeps(publisher notify.Publisher, metrics notify.Metrics) Dependencies {
	return Dependencies{
		Machine:   lifecycle.New(lifecycle.WithClock(func() time.Time { return fixedNow })),
		Publisher: publisher,
		Metrics:   metrics,
		Company:   invoice.Company{Name: "Pharma Ops"},
		Location:  time.UTC,
		Now:       func() time.Time { return fixedNow },
	}
}

func newTestOrder(id string, status model.OrderStatus) *model.Order {
	return &model.Order{
		ID:              id,
		Customer:        model.Customer{UserRef: "user-1", UserName: "Asha"},
		PharmacyRef:     "pharmacy-1",
		DeliveryAddress: model.Address{City: "Pune", State: "Maharashtra"},
		TotalAmount:     money.MustParse("1000"),
		DeliveryCharge:  money.MustParse("50"),
		PlatformCharge:  money.MustParse("20"),
		DiscountAmount:  money.MustParse("100"),
		PaymentStatus:   "paid",
		Status:          status,
		StatusTimeline: []model.TimelineEntry{
			{Status: model.OrderStatusPending, Message: "Order placed", Timestamp: fixedNow.Add(-time.Hour)},
		},
		CreatedAt: time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC),
	}
}

func TestOrderService_UpdateStatus(t *testing.T) {
	ctx := context.Background()

	t.Run("pending to cancelled publishes to the pharmacy", func(t *testing.T) {
		store := new(MockOrderStore)
		publisher := new(MockPublisher)
		metrics := newRecordingMetrics()
		svc := NewOrderService(store, testDeps(publisher, metrics), zerolog.Nop())

		current := newTestOrder("order-1", model.OrderStatusPending)
		updated := current.Clone()
		updated.Status = model.OrderStatusCancelled
		updated.StatusTimeline = append(updated.StatusTimeline, model.TimelineEntry{
			Status: model.OrderStatusCancelled, Message: "Out of stock", Timestamp: fixedNow,
		})

		expected := model.StatusUpdate{Status: model.OrderStatusCancelled, Message: "Out of stock", Timestamp: fixedNow}

		store.On("GetByID", ctx, "order-1").Return(current, nil).Once()
		store.On("UpdateStatus", ctx, "order-1", "user-1", expected).Return(updated, nil)
		store.On("GetByID", ctx, "order-1").Return(updated, nil).Once()
		publisher.On("PublishStatusChange", ctx, mock.MatchedBy(func(e notify.StatusChanged) bool {
			return e.OrderID == "order-1" &&
				e.PharmacyID == "pharmacy-1" &&
				e.Status == model.OrderStatusCancelled &&
				e.Message == "Out of stock" &&
				e.OrderKind == notify.KindOrder
		})).Return(nil)

		view, err := svc.UpdateStatus(ctx, "order-1", StatusChange{Status: "Cancelled", Message: "Out of stock"})

		require.NoError(t, err)
		assert.Equal(t, model.OrderStatusCancelled, view.Status)
		require.Len(t, view.StatusTimeline, 2)
		assert.Equal(t, "Out of stock", view.StatusTimeline[1].Message)
		assert.Equal(t, "970.00", view.FinalAmount.String())
		assert.Equal(t, 1, metrics.get(notify.MetricStatusTransition))
		assert.Len(t, current.StatusTimeline, 1, "fetched record must not be mutated")
		store.AssertExpectations(t)
		publisher.AssertExpectations(t)
	})

	t.Run("explicit user id is forwarded", func(t *testing.T) {
		store := new(MockOrderStore)
		svc := NewOrderService(store, testDeps(nil, nil), zerolog.Nop())

		current := newTestOrder("order-1", model.OrderStatusPending)
		current.PharmacyRef = ""

		store.On("GetByID", ctx, "order-1").Return(current, nil)
		store.On("UpdateStatus", ctx, "order-1", "user-9", mock.AnythingOfType("model.StatusUpdate")).Return(current, nil)

		_, err := svc.UpdateStatus(ctx, "order-1", StatusChange{UserID: "user-9", Status: "confirmed", Message: "ok"})

		require.NoError(t, err)
		store.AssertExpectations(t)
	})

	t.Run("publish failure does not fail the transition", func(t *testing.T) {
		store := new(MockOrderStore)
		publisher := new(MockPublisher)
		svc := NewOrderService(store, testDeps(publisher, nil), zerolog.Nop())

		current := newTestOrder("order-1", model.OrderStatusConfirmed)

		store.On("GetByID", ctx, "order-1").Return(current, nil)
		store.On("UpdateStatus", ctx, "order-1", "user-1", mock.AnythingOfType("model.StatusUpdate")).Return(current, nil)
		publisher.On("PublishStatusChange", ctx, mock.Anything).Return(errors.New("queue unavailable"))

		_, err := svc.UpdateStatus(ctx, "order-1", StatusChange{Status: "Shipped", Message: "Dispatched"})

		require.NoError(t, err)
		publisher.AssertExpectations(t)
	})

	t.Run("refetch failure falls back to the store response", func(t *testing.T) {
		store := new(MockOrderStore)
		svc := NewOrderService(store, testDeps(nil, nil), zerolog.Nop())

		current := newTestOrder("order-1", model.OrderStatusPending)
		stored := current.Clone()
		stored.Status = model.OrderStatusConfirmed

		store.On("GetByID", ctx, "order-1").Return(current, nil).Once()
		store.On("UpdateStatus", ctx, "order-1", "user-1", mock.AnythingOfType("model.StatusUpdate")).Return(stored, nil)
		store.On("GetByID", ctx, "order-1").Return(nil, errors.New("timeout")).Once()

		view, err := svc.UpdateStatus(ctx, "order-1", StatusChange{Status: "Confirmed", Message: "ok"})

		require.NoError(t, err)
		assert.Equal(t, model.OrderStatusConfirmed, view.Status)
	})

	tests := []struct {
		name    string
		change  StatusChange
		wantErr error
	}{
		{name: "missing status", change: StatusChange{Message: "x"}, wantErr: model.ErrValidation},
		{name: "missing message", change: StatusChange{Status: "Shipped"}, wantErr: model.ErrValidation},
		{name: "blank message", change: StatusChange{Status: "Shipped", Message: "   "}, wantErr: model.ErrValidation},
		{name: "unknown status", change: StatusChange{Status: "Lost", Message: "x"}, wantErr: model.ErrValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name+" is rejected before any store call", func(t *testing.T) {
			store := new(MockOrderStore)
			publisher := new(MockPublisher)
			svc := NewOrderService(store, testDeps(publisher, nil), zerolog.Nop())

			view, err := svc.UpdateStatus(ctx, "order-1", tt.change)

			assert.Nil(t, view)
			assert.ErrorIs(t, err, tt.wantErr)
			store.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
			store.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
			publisher.AssertNotCalled(t, "PublishStatusChange", mock.Anything, mock.Anything)
		})
	}

	t.Run("strict policy rejects skipping steps without a store write", func(t *testing.T) {
		store := new(MockOrderStore)
		deps := testDeps(nil, nil)
		deps.Machine = lifecycle.New(lifecycle.WithPolicy(lifecycle.Strict()))
		svc := NewOrderService(store, deps, zerolog.Nop())

		store.On("GetByID", ctx, "order-1").Return(newTestOrder("order-1", model.OrderStatusPending), nil)

		_, err := svc.UpdateStatus(ctx, "order-1", StatusChange{Status: "Delivered", Message: "done"})

		require.Error(t, err)
		assert.Equal(t, model.KindValidation, model.KindOf(err))
		store.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("store rejection is surfaced", func(t *testing.T) {
		store := new(MockOrderStore)
		svc := NewOrderService(store, testDeps(nil, nil), zerolog.Nop())

		store.On("GetByID", ctx, "order-1").Return(newTestOrder("order-1", model.OrderStatusPending), nil)
		store.On("UpdateStatus", ctx, "order-1", "user-1", mock.AnythingOfType("model.StatusUpdate")).
			Return(nil, model.UpstreamError("backend unavailable", errors.New("502")))

		_, err := svc.UpdateStatus(ctx, "order-1", StatusChange{Status: "Confirmed", Message: "ok"})

		assert.ErrorIs(t, err, model.ErrUpstreamFailure)
	})

	t.Run("missing order", func(t *testing.T) {
		store := new(MockOrderStore)
		svc := NewOrderService(store, testDeps(nil, nil), zerolog.Nop())

		store.On("GetByID", ctx, "missing").Return(nil, model.NotFoundError("order", "missing"))

		_, err := svc.UpdateStatus(ctx, "missing", StatusChange{Status: "Confirmed", Message: "ok"})

		assert.ErrorIs(t, err, model.ErrNotFound)
	})
}

func TestOrderService_List(t *testing.T) {
	ctx := context.Background()

	orders := []*model.Order{
		newTestOrder("a", model.OrderStatusPending),
		newTestOrder("b", model.OrderStatusDelivered),
		newTestOrder("c", model.OrderStatusPending),
		newTestOrder("d", model.OrderStatusPending),
	}
	orders[1].DeliveryAddress.State = "Karnataka"
	orders[3].CreatedAt = time.Date(2024, 12, 31, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		query     ListQuery
		wantIDs   []string
		wantTotal int
		wantPages int
	}{
		{
			name:      "no filters",
			query:     ListQuery{Page: 1, PageSize: 10},
			wantIDs:   []string{"a", "b", "c", "d"},
			wantTotal: 4,
			wantPages: 1,
		},
		{
			name:      "state substring",
			query:     ListQuery{Filters: report.Filters{State: "maha"}, Page: 1, PageSize: 10},
			wantIDs:   []string{"a", "c", "d"},
			wantTotal: 3,
			wantPages: 1,
		},
		{
			name:      "status and year",
			query:     ListQuery{Filters: report.Filters{Status: "pending", Date: report.ByYear(2025)}, Page: 1, PageSize: 10},
			wantIDs:   []string{"a", "c"},
			wantTotal: 2,
			wantPages: 1,
		},
		{
			name:      "second page",
			query:     ListQuery{Page: 2, PageSize: 3},
			wantIDs:   []string{"d"},
			wantTotal: 4,
			wantPages: 2,
		},
		{
			name:      "page past the end",
			query:     ListQuery{Page: 5, PageSize: 3},
			wantIDs:   []string{},
			wantTotal: 4,
			wantPages: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := new(MockOrderStore)
			svc := NewOrderService(store, testDeps(nil, nil), zerolog.Nop())
			store.On("List", ctx).Return(orders, nil)

			page, err := svc.List(ctx, tt.query)

			require.NoError(t, err)
			ids := make([]string, 0, len(page.Items))
			for _, item := range page.Items {
				ids = append(ids, item.ID)
				assert.Equal(t, "970.00", item.FinalAmount.String())
			}
			assert.Equal(t, tt.wantIDs, ids)
			assert.Equal(t, tt.wantTotal, page.TotalItems)
			assert.Equal(t, tt.wantPages, page.TotalPages)
		})
	}

	t.Run("store error", func(t *testing.T) {
		store := new(MockOrderStore)
		svc := NewOrderService(store, testDeps(nil, nil), zerolog.Nop())
		store.On("List", ctx).Return(nil, model.UpstreamError("down", errors.New("eof")))

		page, err := svc.List(ctx, ListQuery{Page: 1, PageSize: 10})

		assert.Nil(t, page)
		assert.ErrorIs(t, err, model.ErrUpstreamFailure)
	})
}

func TestOrderService_FilterOptions(t *testing.T) {
	ctx := context.Background()
	store := new(MockOrderStore)
	svc := NewOrderService(store, testDeps(nil, nil), zerolog.Nop())

	a := newTestOrder("a", model.OrderStatusPending)
	b := newTestOrder("b", model.OrderStatusShipped)
	b.DeliveryAddress.State = "Goa"
	b.PaymentStatus = "pending"
	store.On("List", ctx).Return([]*model.Order{a, b}, nil)

	opts, err := svc.FilterOptions(ctx)

	require.NoError(t, err)
	assert.Equal(t, []string{"Goa", "Maharashtra"}, opts.States)
	assert.Equal(t, []string{"Pending", "Shipped"}, opts.Statuses)
	assert.Equal(t, []string{"paid", "pending"}, opts.PaymentStatuses)
	assert.Empty(t, opts.PlanTypes)
}

func TestOrderService_Delete(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name     string
		storeErr error
		wantErr  bool
	}{
		{name: "deleted", storeErr: nil},
		{name: "already gone", storeErr: model.NotFoundError("order", "order-1")},
		{name: "upstream failure", storeErr: model.UpstreamError("down", errors.New("eof")), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := new(MockOrderStore)
			svc := NewOrderService(store, testDeps(nil, nil), zerolog.Nop())
			store.On("Delete", ctx, "order-1").Return(tt.storeErr)

			err := svc.Delete(ctx, "order-1")

			if tt.wantErr {
				assert.ErrorIs(t, err, model.ErrUpstreamFailure)
			} else {
				assert.NoError(t, err)
			}
			store.AssertExpectations(t)
		})
	}
}

func TestOrderService_Invoice(t *testing.T) {
	ctx := context.Background()
	store := new(MockOrderStore)
	artifacts := new(MockArtifactStore)
	deps := testDeps(nil, nil)
	deps.Artifacts = artifacts
	svc := NewOrderService(store, deps, zerolog.Nop())

	o := newTestOrder("ord_0000abcd1234", model.OrderStatusDelivered)
	o.OrderItems = []model.OrderItem{{Name: "Paracetamol", Quantity: 2, UnitPrice: money.MustParse("500")}}
	store.On("GetByID", ctx, o.ID).Return(o, nil)

	doc, err := svc.Invoice(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, "INV-ABCD1234", doc.InvoiceNumber)
	assert.Equal(t, "Pharma Ops", doc.Company.Name)
	assert.Equal(t, "970.00", doc.Totals.FinalAmount.String())

	artifacts.On("Put", ctx, mock.MatchedBy(func(a *export.Artifact) bool {
		return a.ContentType == export.ContentTypeJSON && len(a.Body) > 0
	})).Return("s3://invoices/inv.json", nil)

	rendered, err := svc.RenderInvoice(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, "INV-ABCD1234", rendered.InvoiceNumber)
	assert.Equal(t, "s3://invoices/inv.json", rendered.Location)
	artifacts.AssertExpectations(t)
}

func TestOrderService_RenderInvoice_StoreFailure(t *testing.T) {
	ctx := context.Background()
	store := new(MockOrderStore)
	artifacts := new(MockArtifactStore)
	deps := testDeps(nil, nil)
	deps.Artifacts = artifacts
	svc := NewOrderService(store, deps, zerolog.Nop())

	store.On("GetByID", ctx, "order-1").Return(newTestOrder("order-1", model.OrderStatusDelivered), nil)
	artifacts.On("Put", ctx, mock.Anything).Return("", errors.New("access denied"))

	rendered, err := svc.RenderInvoice(ctx, "order-1")

	assert.Nil(t, rendered)
	assert.ErrorContains(t, err, "failed to store invoice")
}

func TestOrderService_Export(t *testing.T) {
	ctx := context.Background()
	store := new(MockOrderStore)
	svc := NewOrderService(store, testDeps(nil, nil), zerolog.Nop())

	a := newTestOrder("a", model.OrderStatusPending)
	b := newTestOrder("b", model.OrderStatusDelivered)
	store.On("List", ctx).Return([]*model.Order{a, b}, nil)

	artifact, err := svc.Export(ctx, report.Filters{Status: "delivered"})

	require.NoError(t, err)
	assert.Equal(t, export.ContentTypeCSV, artifact.ContentType)
	assert.Contains(t, artifact.Name, "orders-20250305-")
	body := string(artifact.Body)
	assert.Contains(t, body, "\nb,")
	assert.NotContains(t, body, "\na,")
}
