package model

import (
	"strings"
	"time"

	"pharma-ops/internal/money"
)

// PharmacyStatus is the operating status of a pharmacy.
type PharmacyStatus string

const (
	PharmacyStatusActive    PharmacyStatus = "Active"
	PharmacyStatusInactive  PharmacyStatus = "Inactive"
	PharmacyStatusSuspended PharmacyStatus = "Suspended"
)

// PaymentStatus is the settlement status of one revenue month.
type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentPaid    PaymentStatus = "paid"
	PaymentFailed  PaymentStatus = "failed"
)

// ParsePaymentStatus resolves s case-insensitively.
func ParsePaymentStatus(s string) (PaymentStatus, bool) {
	switch PaymentStatus(strings.ToLower(strings.TrimSpace(s))) {
	case PaymentPending:
		return PaymentPending, true
	case PaymentPaid:
		return PaymentPaid, true
	case PaymentFailed:
		return PaymentFailed, true
	}
	return "", false
}

// RevenueEntry is the amount owed to a pharmacy for one month and its settlement status.
type RevenueEntry struct {
	Amount money.Money   `json:"amount"`
	Status PaymentStatus `json:"status"`
}

// PaymentRecord is an append-only settlement record.
type PaymentRecord struct {
	Month      string        `json:"month"`
	Amount     money.Money   `json:"amount"`
	Status     PaymentStatus `json:"status"`
	RecordedAt time.Time     `json:"recordedAt"`
}

// Pharmacy represents a vendor pharmacy with its monthly revenue ledger.
type Pharmacy struct {
	ID             string                  `json:"id"`
	Name           string                  `json:"name"`
	VendorName     string                  `json:"vendorName,omitempty"`
	VendorEmail    string                  `json:"vendorEmail,omitempty"`
	VendorPhone    string                  `json:"vendorPhone,omitempty"`
	Address        Address                 `json:"address"`
	Status         PharmacyStatus          `json:"status"`
	RevenueByMonth map[string]RevenueEntry `json:"revenueByMonth"`
	PaymentHistory []PaymentRecord         `json:"paymentHistory"`
	CreatedAt      time.Time               `json:"createdAt"`
}

// Clone returns a deep copy.
func (p *Pharmacy) Clone() *Pharmacy {
	c := *p
	c.RevenueByMonth = make(map[string]RevenueEntry, len(p.RevenueByMonth))
	for k, v := range p.RevenueByMonth {
		c.RevenueByMonth[k] = v
	}
	c.PaymentHistory = append([]PaymentRecord(nil), p.PaymentHistory...)
	return &c
}

// PaymentUpdate is the payload submitted to the store for a monthly payment entry.
type PaymentUpdate struct {
	Month  string        `json:"month"`
	Status PaymentStatus `json:"status"`
	Amount money.Money   `json:"amount"`
}
