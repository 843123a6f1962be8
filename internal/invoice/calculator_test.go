package invoice

import (
	"encoding/json"
	"testing"
	"time"

	"pharma-ops/internal/model"
	"pharma-ops/internal/money"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func charges(total, delivery, platform, discount string) model.Charges {
	return model.Charges{
		Subtotal:       money.MustParse(total),
		DeliveryCharge: money.MustParse(delivery),
		PlatformCharge: money.MustParse(platform),
		DiscountAmount: money.MustParse(discount),
	}
}

func TestComputeFinal(t *testing.T) {
	tests := []struct {
		name     string
		charges  model.Charges
		expected string
	}{
		{name: "Discount exceeds everything is clamped", charges: charges("500", "40", "10", "600"), expected: "0.00"},
		{name: "Regular order", charges: charges("1000", "50", "20", "100"), expected: "970.00"},
		{name: "No charges", charges: charges("0", "0", "0", "0"), expected: "0.00"},
		{name: "Exact paise", charges: charges("199.99", "0.01", "0.10", "0.05"), expected: "200.05"},
		{name: "Discount equals gross", charges: charges("100", "0", "0", "100"), expected: "0.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ComputeFinal(tt.charges).String())
		})
	}
}

func TestComputeFinal_NeverNegative(t *testing.T) {
	for discount := int64(0); discount <= 2000; discount += 37 {
		c := charges("500", "40", "10", "0")
		c.DiscountAmount = money.FromInt(discount)

		final := ComputeFinal(c)

		assert.GreaterOrEqual(t, final.Cmp(money.Zero), 0, "discount %d", discount)
	}
}

func TestFinalAmount_ZeroItems(t *testing.T) {
	o := &model.Order{
		ID:             "ord-empty",
		DeliveryCharge: money.MustParse("40"),
		PlatformCharge: money.MustParse("10"),
		DiscountAmount: money.MustParse("15"),
	}

	assert.Equal(t, "35.00", FinalAmount(o).String())
	assert.Empty(t, LineItems(o.OrderItems))

	o.DiscountAmount = money.MustParse("80")
	assert.True(t, FinalAmount(o).IsZero())
}

func TestPeriodicFinalAmount_UsesPrecomputedTotal(t *testing.T) {
	p := &model.PeriodicOrder{
		Order: model.Order{
			TotalAmount:    money.MustParse("9999"),
			DeliveryCharge: money.MustParse("30"),
		},
		Total: money.MustParse("450"),
	}

	assert.Equal(t, "480.00", PeriodicFinalAmount(p).String())
}

func TestLineItems(t *testing.T) {
	items := []model.OrderItem{
		{MedicineRef: "med-1", Name: "Paracetamol 500mg", Quantity: 3, UnitPrice: money.MustParse("12.50")},
		{MedicineRef: "med-2", Quantity: 1, UnitPrice: money.MustParse("99")},
	}

	lines := LineItems(items)

	require.Len(t, lines, 2)
	assert.Equal(t, "Paracetamol 500mg", lines[0].Label)
	assert.Equal(t, "37.50", lines[0].TaxableAmount.String())
	assert.True(t, lines[0].CGST.IsZero())
	assert.True(t, lines[0].SGST.IsZero())
	assert.True(t, lines[0].Total.Equal(lines[0].TaxableAmount))
	assert.Equal(t, "med-2", lines[1].Label)
	assert.Equal(t, "136.50", ItemsSubtotal(items).String())
}

func TestBuildDocument(t *testing.T) {
	created := time.Date(2025, 3, 5, 11, 0, 0, 0, time.UTC)
	o := &model.Order{
		ID: "65f1a2b3c4d5e6f7a8b9c0d1",
		Customer: model.Customer{
			UserRef:    "usr-1",
			UserName:   "Asha Verma",
			UserMobile: "9876543210",
		},
		DeliveryAddress: model.Address{City: "Pune", State: "Maharashtra"},
		OrderItems: []model.OrderItem{
			{Name: "Cetirizine", Quantity: 2, UnitPrice: money.MustParse("500")},
		},
		TotalAmount:    money.MustParse("1000"),
		DeliveryCharge: money.MustParse("50"),
		PlatformCharge: money.MustParse("20"),
		DiscountAmount: money.MustParse("100"),
		PaymentMethod:  "UPI",
		PaymentStatus:  "Paid",
		TransactionID:  "txn-42",
		CreatedAt:      created,
	}
	company := Company{Name: "MedRush Health Pvt Ltd", GSTIN: "27ABCDE1234F1Z5"}

	doc := BuildDocument(o, company)

	assert.Equal(t, "INV-A8B9C0D1", doc.InvoiceNumber)
	assert.Equal(t, created, doc.IssuedAt)
	assert.Equal(t, company, doc.Company)
	assert.Equal(t, "Asha Verma", doc.Customer.Name)
	assert.Equal(t, "Maharashtra", doc.Customer.Address.State)
	require.Len(t, doc.Items, 1)
	assert.Equal(t, "970.00", doc.Totals.FinalAmount.String())
	assert.Equal(t, "txn-42", doc.Payment.TransactionID)

	body, err := json.Marshal(doc)
	require.NoError(t, err)
	assert.Contains(t, string(body), `"finalAmount":970`)
}

func TestInvoiceNumber_ShortID(t *testing.T) {
	assert.Equal(t, "INV-AB12", InvoiceNumber("ab12"))
}

func TestSchema(t *testing.T) {
	body, err := SchemaJSON()
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(body, &decoded))
	props, ok := decoded["properties"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, props, "totals")
	assert.Contains(t, props, "invoiceNumber")
	assert.Contains(t, string(body), `"type": "number"`)
}
