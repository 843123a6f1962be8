package invoice

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
	"time"

	"pharma-ops/internal/model"
	"pharma-ops/internal/money"

	"github.com/invopop/jsonschema"
)

// Company is the seller header printed on every invoice.
type Company struct {
	Name    string `json:"name" jsonschema:"required"`
	Address string `json:"address,omitempty"`
	GSTIN   string `json:"gstin,omitempty"`
	Email   string `json:"email,omitempty"`
	Phone   string `json:"phone,omitempty"`
}

// CustomerBlock identifies the buyer.
type CustomerBlock struct {
	Name    string        `json:"name"`
	Mobile  string        `json:"mobile,omitempty"`
	Email   string        `json:"email,omitempty"`
	Address model.Address `json:"address"`
}

// Totals is the computed totals block.
type Totals struct {
	Subtotal       money.Money `json:"subtotal"`
	DeliveryCharge money.Money `json:"deliveryCharge"`
	PlatformCharge money.Money `json:"platformCharge"`
	DiscountAmount money.Money `json:"discountAmount"`
	FinalAmount    money.Money `json:"finalAmount"`
}

// Payment is the payment block.
type Payment struct {
	Method        string `json:"method,omitempty"`
	Status        string `json:"status,omitempty"`
	TransactionID string `json:"transactionId,omitempty"`
	CouponCode    string `json:"couponCode,omitempty"`
}

// Document is the structured invoice payload handed to an external document renderer.
type Document struct {
	InvoiceNumber string        `json:"invoiceNumber" jsonschema:"required"`
	OrderID       string        `json:"orderId" jsonschema:"required"`
	IssuedAt      time.Time     `json:"issuedAt"`
	Company       Company       `json:"company"`
	Customer      CustomerBlock `json:"customer"`
	Items         []LineItem    `json:"items"`
	Totals        Totals        `json:"totals"`
	Payment       Payment       `json:"payment"`
	Prescription  bool          `json:"prescription"`
}

// InvoiceNumber derives a stable invoice number from the last eight characters of the
// order id.
func InvoiceNumber(orderID string) string {
	id := strings.ToUpper(orderID)
	if len(id) > 8 {
		id = id[len(id)-8:]
	}
	return "INV-" + id
}

// BuildDocument assembles the invoice payload for an order.
func BuildDocument(o *model.Order, company Company) *Document {
	return build(o, o.Charges(), company)
}

// BuildPeriodicDocument assembles the invoice payload for a periodic order.
func BuildPeriodicDocument(p *model.PeriodicOrder, company Company) *Document {
	return build(&p.Order, p.Charges(), company)
}

func build(o *model.Order, c model.Charges, company Company) *Document {
	return &Document{
		InvoiceNumber: InvoiceNumber(o.ID),
		OrderID:       o.ID,
		IssuedAt:      o.CreatedAt,
		Company:       company,
		Customer: CustomerBlock{
			Name:    o.UserName,
			Mobile:  o.UserMobile,
			Email:   o.UserEmail,
			Address: o.DeliveryAddress,
		},
		Items: LineItems(o.OrderItems),
		Totals: Totals{
			Subtotal:       c.Subtotal,
			DeliveryCharge: c.DeliveryCharge,
			PlatformCharge: c.PlatformCharge,
			DiscountAmount: c.DiscountAmount,
			FinalAmount:    ComputeFinal(c),
		},
		Payment: Payment{
			Method:        o.PaymentMethod,
			Status:        o.PaymentStatus,
			TransactionID: o.TransactionID,
			CouponCode:    o.CouponCode,
		},
		Prescription: o.IsPrescriptionOrder,
	}
}

// Schema returns the JSON Schema of Document for external renderers.
func Schema() *jsonschema.Schema {
	r := &jsonschema.Reflector{
		DoNotReference: true,
		Mapper: func(t reflect.Type) *jsonschema.Schema {
			if t == reflect.TypeOf(money.Money{}) {
				return &jsonschema.Schema{Type: "number", Minimum: json.Number("0")}
			}
			return nil
		},
	}
	return r.Reflect(&Document{})
}

// SchemaJSON renders Schema as indented JSON.
func SchemaJSON() ([]byte, error) {
	b, err := json.MarshalIndent(Schema(), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal invoice schema: %w", err)
	}
	return b, nil
}
