package report

import (
	"testing"
	"time"

	"pharma-ops/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ist = time.FixedZone("IST", 5*3600+1800)

func order(id, state string, status model.OrderStatus, payment string, created time.Time) *model.Order {
	return &model.Order{
		ID:              id,
		DeliveryAddress: model.Address{State: state},
		Status:          status,
		PaymentStatus:   payment,
		CreatedAt:       created,
	}
}

func fixtureOrders() []*model.Order {
	return []*model.Order{
		order("o1", "Maharashtra", model.OrderStatusPending, "Paid", time.Date(2025, 3, 5, 10, 0, 0, 0, ist)),
		order("o2", "Karnataka", model.OrderStatusDelivered, "Pending", time.Date(2025, 3, 31, 23, 30, 0, 0, ist)),
		order("o3", "maharashtra", model.OrderStatusCancelled, "Failed", time.Date(2025, 4, 1, 0, 15, 0, 0, ist)),
		order("o4", "Tamil Nadu", model.OrderStatusShipped, "", time.Date(2024, 12, 31, 9, 0, 0, 0, ist)),
	}
}

func ids(orders []*model.Order) []string {
	out := make([]string, len(orders))
	for i, o := range orders {
		out[i] = o.ID
	}
	return out
}

func TestApply_MonthFilter(t *testing.T) {
	f := Filters{Location: ist}.WithDate(ByMonth("2025-03"))

	got := Apply(fixtureOrders(), f, OrderFields)

	assert.Equal(t, []string{"o1", "o2"}, ids(got))
}

func TestApply_Dimensions(t *testing.T) {
	tests := []struct {
		name     string
		filters  Filters
		expected []string
	}{
		{name: "No filters", filters: Filters{}, expected: []string{"o1", "o2", "o3", "o4"}},
		{name: "State substring case-insensitive", filters: Filters{State: "MAHA"}, expected: []string{"o1", "o3"}},
		{name: "Status", filters: Filters{Status: "deliv"}, expected: []string{"o2"}},
		{name: "Payment status", filters: Filters{PaymentStatus: "paid"}, expected: []string{"o1"}},
		{name: "AND across dimensions", filters: Filters{State: "maharashtra", Status: "cancelled"}, expected: []string{"o3"}},
		{name: "Year", filters: Filters{Date: ByYear(2024), Location: ist}, expected: []string{"o4"}},
		{name: "Day uses local calendar components", filters: Filters{Date: ByDay(time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC)), Location: ist}, expected: []string{"o2"}},
		{name: "Malformed month matches nothing", filters: Filters{Date: ByMonth("2025-13")}, expected: []string{}},
		{name: "Plan type on orders without plan matches nothing", filters: Filters{PlanType: "Monthly"}, expected: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ids(Apply(fixtureOrders(), tt.filters, OrderFields)))
		})
	}
}

func TestApply_DayIgnoresUTCRange(t *testing.T) {
	// 2025-04-01 00:15 IST is still 2025-03-31 in UTC; local components decide.
	f := Filters{Location: ist, Date: ByDay(time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC))}

	assert.Equal(t, []string{"o3"}, ids(Apply(fixtureOrders(), f, OrderFields)))
}

func TestApply_SubsetOrderPreservingAndIdempotent(t *testing.T) {
	records := fixtureOrders()
	filters := []Filters{
		{},
		{State: "a"},
		{Status: "e", Location: ist, Date: ByMonth("2025-03")},
		{PaymentStatus: "xyz"},
		{Location: ist, Date: ByYear(2025)},
	}

	for _, f := range filters {
		once := Apply(records, f, OrderFields)
		twice := Apply(once, f, OrderFields)

		assert.Equal(t, ids(once), ids(twice))

		// subsequence of the input
		j := 0
		for _, r := range records {
			if j < len(once) && once[j] == r {
				j++
			}
		}
		assert.Equal(t, len(once), j)
	}
}

func TestFilters_WithDateReplacesGranularity(t *testing.T) {
	f := Filters{}.WithDate(ByDay(time.Now())).WithDate(ByYear(2025))

	assert.Equal(t, DateYear, f.Date.Kind())
	assert.Equal(t, "year=2025", f.Date.String())
	assert.True(t, f.Active())

	f = f.WithDate(NoDate())
	assert.False(t, f.Active())
}

func TestApply_PeriodicPlanTypeExact(t *testing.T) {
	records := []*model.PeriodicOrder{
		{Order: model.Order{ID: "p1"}, PlanType: "Monthly"},
		{Order: model.Order{ID: "p2"}, PlanType: "Bi-Monthly"},
		{Order: model.Order{ID: "p3"}, PlanType: "weekly"},
	}

	got := Apply(records, Filters{PlanType: "monthly"}, PeriodicOrderFields)

	require.Len(t, got, 1)
	assert.Equal(t, "p1", got[0].ID)
}

func TestDistinctValues(t *testing.T) {
	got := DistinctValues(fixtureOrders(), OrderFields.PaymentStatus)

	assert.Equal(t, []string{"Failed", "Paid", "Pending"}, got)
	assert.Empty(t, DistinctValues([]*model.Order{}, OrderFields.State))
}

func TestValidMonthKey(t *testing.T) {
	assert.True(t, ValidMonthKey("2025-03"))
	assert.False(t, ValidMonthKey("2025-3-1"))
	assert.False(t, ValidMonthKey("25-03"))
	assert.False(t, ValidMonthKey("2025-00"))
}
