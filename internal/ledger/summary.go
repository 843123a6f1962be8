package ledger

import (
	"sort"

	"pharma-ops/internal/model"
	"pharma-ops/internal/money"
)

// DisplayAmount is the amount shown to operators for a month: zero once the month is
// paid, the stored amount otherwise. The stored amount itself is never changed.
func DisplayAmount(entry model.RevenueEntry) money.Money {
	if entry.Status == model.PaymentPaid {
		return money.Zero
	}
	return entry.Amount
}

// MonthView is one row of the revenue summary.
type MonthView struct {
	Month         string              `json:"month"`
	Status        model.PaymentStatus `json:"status"`
	DisplayAmount money.Money         `json:"amount"`
}

// Summary is the read-side projection of a pharmacy's revenue ledger.
type Summary struct {
	PharmacyID   string      `json:"pharmacyId"`
	PharmacyName string      `json:"pharmacyName"`
	Months       []MonthView `json:"months"`
	// Outstanding sums the display amounts of unpaid months.
	Outstanding money.Money `json:"outstanding"`
	// Settled sums the stored amounts of paid months.
	Settled money.Money `json:"settled"`
}

// Summarize builds the revenue summary with months in ascending order.
func Summarize(pharmacy *model.Pharmacy) Summary {
	s := Summary{
		PharmacyID:   pharmacy.ID,
		PharmacyName: pharmacy.Name,
		Months:       make([]MonthView, 0, len(pharmacy.RevenueByMonth)),
	}

	keys := make([]string, 0, len(pharmacy.RevenueByMonth))
	for k := range pharmacy.RevenueByMonth {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		entry := pharmacy.RevenueByMonth[k]
		view := MonthView{
			Month:         k,
			Status:        entry.Status,
			DisplayAmount: DisplayAmount(entry),
		}
		s.Months = append(s.Months, view)

		if entry.Status == model.PaymentPaid {
			s.Settled = s.Settled.Add(entry.Amount)
		} else {
			s.Outstanding = s.Outstanding.Add(view.DisplayAmount)
		}
	}

	return s
}
