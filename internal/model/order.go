package model

import (
	"strings"
	"time"

	"pharma-ops/internal/money"
)

// OrderStatus is the delivery lifecycle status of an order.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "Pending"
	OrderStatusConfirmed OrderStatus = "Confirmed"
	OrderStatusShipped   OrderStatus = "Shipped"
	OrderStatusDelivered OrderStatus = "Delivered"
	OrderStatusCancelled OrderStatus = "Cancelled"
)

// OrderStatuses lists every status in lifecycle order.
var OrderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusConfirmed,
	OrderStatusShipped,
	OrderStatusDelivered,
	OrderStatusCancelled,
}

// ParseOrderStatus resolves s case-insensitively to one of the five statuses.
func ParseOrderStatus(s string) (OrderStatus, bool) {
	s = strings.TrimSpace(s)
	for _, st := range OrderStatuses {
		if strings.EqualFold(string(st), s) {
			return st, true
		}
	}
	return "", false
}

// IsTerminal reports whether no forward lifecycle step follows s.
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled
}

// Address is a delivery or business address.
type Address struct {
	Line1   string `json:"line1,omitempty"`
	Line2   string `json:"line2,omitempty"`
	City    string `json:"city,omitempty"`
	State   string `json:"state,omitempty"`
	Pincode string `json:"pincode,omitempty"`
}

// OrderItem is a line item with the unit price captured at checkout.
type OrderItem struct {
	MedicineRef string      `json:"medicineRef"`
	Name        string      `json:"name"`
	Quantity    int         `json:"quantity"`
	UnitPrice   money.Money `json:"unitPrice"`
}

// TimelineEntry is one record of the append-only status audit log.
type TimelineEntry struct {
	Status    OrderStatus `json:"status"`
	Message   string      `json:"message"`
	Timestamp time.Time   `json:"timestamp"`
}

// Rider is the delivery partner assigned to an order.
type Rider struct {
	RiderRef string `json:"riderRef"`
	Name     string `json:"name,omitempty"`
	Mobile   string `json:"mobile,omitempty"`
}

// Proof is an uploaded delivery or pickup photo.
type Proof struct {
	ImageURL   string    `json:"imageUrl"`
	UploadedAt time.Time `json:"uploadedAt"`
}

// Customer holds the owning user's reference and denormalized contact fields.
type Customer struct {
	UserRef    string `json:"userRef"`
	UserName   string `json:"userName,omitempty"`
	UserMobile string `json:"userMobile,omitempty"`
	UserEmail  string `json:"userEmail,omitempty"`
}

// Charges are the inputs of the final-amount calculation.
type Charges struct {
	Subtotal       money.Money
	DeliveryCharge money.Money
	PlatformCharge money.Money
	DiscountAmount money.Money
}

// Order represents a customer order.
type Order struct {
	ID string `json:"id"`
	Customer
	PharmacyRef         string          `json:"pharmacyRef,omitempty"`
	DeliveryAddress     Address         `json:"deliveryAddress"`
	OrderItems          []OrderItem     `json:"orderItems"`
	TotalAmount         money.Money     `json:"totalAmount"`
	DeliveryCharge      money.Money     `json:"deliveryCharge"`
	PlatformCharge      money.Money     `json:"platformCharge"`
	DiscountAmount      money.Money     `json:"discountAmount"`
	CouponCode          string          `json:"couponCode,omitempty"`
	PaymentMethod       string          `json:"paymentMethod,omitempty"`
	PaymentStatus       string          `json:"paymentStatus,omitempty"`
	TransactionID       string          `json:"transactionId,omitempty"`
	Status              OrderStatus     `json:"status"`
	StatusTimeline      []TimelineEntry `json:"statusTimeline"`
	AssignedRider       *Rider          `json:"assignedRider,omitempty"`
	DeliveryProof       []Proof         `json:"deliveryProof,omitempty"`
	BeforePickupProof   []Proof         `json:"beforePickupProof,omitempty"`
	IsPrescriptionOrder bool            `json:"isPrescriptionOrder"`
	IsReordered         bool            `json:"isReordered"`
	CreatedAt           time.Time       `json:"createdAt"`
	UpdatedAt           time.Time       `json:"updatedAt"`
}

// Charges returns the amounts the final amount is computed from.
func (o *Order) Charges() Charges {
	return Charges{
		Subtotal:       o.TotalAmount,
		DeliveryCharge: o.DeliveryCharge,
		PlatformCharge: o.PlatformCharge,
		DiscountAmount: o.DiscountAmount,
	}
}

// Clone returns a deep copy so callers never alias a mutated record.
func (o *Order) Clone() *Order {
	c := *o
	c.OrderItems = append([]OrderItem(nil), o.OrderItems...)
	c.StatusTimeline = append([]TimelineEntry(nil), o.StatusTimeline...)
	c.DeliveryProof = append([]Proof(nil), o.DeliveryProof...)
	c.BeforePickupProof = append([]Proof(nil), o.BeforePickupProof...)
	if o.AssignedRider != nil {
		r := *o.AssignedRider
		c.AssignedRider = &r
	}
	return &c
}

// PeriodicOrder is the recurring-subscription variant of an order. Total is precomputed by
// the subscription process and stands in for the itemized subtotal.
type PeriodicOrder struct {
	Order
	PlanType     string      `json:"planType"`
	DeliveryDate time.Time   `json:"deliveryDate"`
	Total        money.Money `json:"total"`
}

// Charges uses the precomputed total as the subtotal.
func (p *PeriodicOrder) Charges() Charges {
	c := p.Order.Charges()
	c.Subtotal = p.Total
	return c
}

// Clone returns a deep copy.
func (p *PeriodicOrder) Clone() *PeriodicOrder {
	c := *p
	c.Order = *p.Order.Clone()
	return &c
}

// StatusUpdate is the payload submitted to the store for a status change.
type StatusUpdate struct {
	Status    OrderStatus `json:"status"`
	Message   string      `json:"message"`
	Timestamp time.Time   `json:"timestamp"`
}
