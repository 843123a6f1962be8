package export

import (
	"strconv"
	"time"

	"pharma-ops/internal/invoice"
	"pharma-ops/internal/ledger"
	"pharma-ops/internal/model"
)

const dateLayout = "2006-01-02 15:04"

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(dateLayout)
}

// OrderColumns is the order export layout.
var OrderColumns = []Column[*model.Order]{
	{Label: "Order ID", Key: "id", Value: func(o *model.Order) string { return o.ID }},
	{Label: "Customer", Key: "userName", Value: func(o *model.Order) string { return o.UserName }},
	{Label: "Mobile", Key: "userMobile", Value: func(o *model.Order) string { return o.UserMobile }},
	{Label: "State", Key: "state", Value: func(o *model.Order) string { return o.DeliveryAddress.State }},
	{Label: "City", Key: "city", Value: func(o *model.Order) string { return o.DeliveryAddress.City }},
	{Label: "Items", Key: "items", Value: func(o *model.Order) string { return strconv.Itoa(len(o.OrderItems)) }},
	{Label: "Total", Key: "totalAmount", Value: func(o *model.Order) string { return o.TotalAmount.String() }},
	{Label: "Delivery Charge", Key: "deliveryCharge", Value: func(o *model.Order) string { return o.DeliveryCharge.String() }},
	{Label: "Platform Charge", Key: "platformCharge", Value: func(o *model.Order) string { return o.PlatformCharge.String() }},
	{Label: "Discount", Key: "discountAmount", Value: func(o *model.Order) string { return o.DiscountAmount.String() }},
	{Label: "Final Amount", Key: "finalAmount", Value: func(o *model.Order) string { return invoice.FinalAmount(o).String() }},
	{Label: "Payment Method", Key: "paymentMethod", Value: func(o *model.Order) string { return o.PaymentMethod }},
	{Label: "Payment Status", Key: "paymentStatus", Value: func(o *model.Order) string { return o.PaymentStatus }},
	{Label: "Status", Key: "status", Value: func(o *model.Order) string { return string(o.Status) }},
	{Label: "Created At", Key: "createdAt", Value: func(o *model.Order) string { return formatTime(o.CreatedAt) }},
}

// PeriodicOrderColumns is the periodic order export layout.
var PeriodicOrderColumns = []Column[*model.PeriodicOrder]{
	{Label: "Order ID", Key: "id", Value: func(p *model.PeriodicOrder) string { return p.ID }},
	{Label: "Customer", Key: "userName", Value: func(p *model.PeriodicOrder) string { return p.UserName }},
	{Label: "Plan", Key: "planType", Value: func(p *model.PeriodicOrder) string { return p.PlanType }},
	{Label: "State", Key: "state", Value: func(p *model.PeriodicOrder) string { return p.DeliveryAddress.State }},
	{Label: "Delivery Date", Key: "deliveryDate", Value: func(p *model.PeriodicOrder) string { return formatTime(p.DeliveryDate) }},
	{Label: "Total", Key: "total", Value: func(p *model.PeriodicOrder) string { return p.Total.String() }},
	{Label: "Final Amount", Key: "finalAmount", Value: func(p *model.PeriodicOrder) string { return invoice.PeriodicFinalAmount(p).String() }},
	{Label: "Payment Status", Key: "paymentStatus", Value: func(p *model.PeriodicOrder) string { return p.PaymentStatus }},
	{Label: "Status", Key: "status", Value: func(p *model.PeriodicOrder) string { return string(p.Status) }},
	{Label: "Created At", Key: "createdAt", Value: func(p *model.PeriodicOrder) string { return formatTime(p.CreatedAt) }},
}

// RevenueColumns is the revenue summary export layout. Amounts are display amounts.
var RevenueColumns = []Column[ledger.MonthView]{
	{Label: "Month", Key: "month", Value: func(m ledger.MonthView) string { return m.Month }},
	{Label: "Status", Key: "status", Value: func(m ledger.MonthView) string { return string(m.Status) }},
	{Label: "Amount", Key: "amount", Value: func(m ledger.MonthView) string { return m.DisplayAmount.String() }},
}
