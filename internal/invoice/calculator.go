// Package invoice derives final payable amounts and invoice payloads from orders.
package invoice

import (
	"pharma-ops/internal/model"
	"pharma-ops/internal/money"
)

// ComputeFinal returns max(0, subtotal + delivery + platform - discount).
func ComputeFinal(c model.Charges) money.Money {
	gross := money.Sum(c.Subtotal, c.DeliveryCharge, c.PlatformCharge)
	return gross.SubClamped(c.DiscountAmount)
}

// FinalAmount computes the final amount of an order.
func FinalAmount(o *model.Order) money.Money {
	return ComputeFinal(o.Charges())
}

// PeriodicFinalAmount computes the final amount of a periodic order from its precomputed
// total.
func PeriodicFinalAmount(p *model.PeriodicOrder) money.Money {
	return ComputeFinal(p.Charges())
}

// LineItem is one row of the itemized invoice table. No tax rate exists in the data model,
// so CGST and SGST are always zero and Total equals TaxableAmount.
type LineItem struct {
	Label         string      `json:"label"`
	Quantity      int         `json:"quantity"`
	UnitPrice     money.Money `json:"unitPrice"`
	TaxableAmount money.Money `json:"taxableAmount"`
	CGST          money.Money `json:"cgst"`
	SGST          money.Money `json:"sgst"`
	Total         money.Money `json:"total"`
}

// LineItems builds the itemized table in item order.
func LineItems(items []model.OrderItem) []LineItem {
	out := make([]LineItem, 0, len(items))
	for _, it := range items {
		taxable := it.UnitPrice.Mul(it.Quantity)
		label := it.Name
		if label == "" {
			label = it.MedicineRef
		}
		out = append(out, LineItem{
			Label:         label,
			Quantity:      it.Quantity,
			UnitPrice:     it.UnitPrice,
			TaxableAmount: taxable,
			CGST:          money.Zero,
			SGST:          money.Zero,
			Total:         taxable,
		})
	}
	return out
}

// ItemsSubtotal sums unitPrice × quantity across items.
func ItemsSubtotal(items []model.OrderItem) money.Money {
	total := money.Zero
	for _, it := range items {
		total = total.Add(it.UnitPrice.Mul(it.Quantity))
	}
	return total
}
