package report

import (
	"time"

	"pharma-ops/internal/model"
)

// OrderFields filters orders by delivery state, order status, payment status and
// creation time.
var OrderFields = Fields[*model.Order]{
	State:         func(o *model.Order) string { return o.DeliveryAddress.State },
	Status:        func(o *model.Order) string { return string(o.Status) },
	PaymentStatus: func(o *model.Order) string { return o.PaymentStatus },
	CreatedAt:     func(o *model.Order) time.Time { return o.CreatedAt },
}

// PeriodicOrderFields adds the plan type to OrderFields.
var PeriodicOrderFields = Fields[*model.PeriodicOrder]{
	State:         func(p *model.PeriodicOrder) string { return p.DeliveryAddress.State },
	Status:        func(p *model.PeriodicOrder) string { return string(p.Status) },
	PlanType:      func(p *model.PeriodicOrder) string { return p.PlanType },
	PaymentStatus: func(p *model.PeriodicOrder) string { return p.PaymentStatus },
	CreatedAt:     func(p *model.PeriodicOrder) time.Time { return p.CreatedAt },
}

// PharmacyFields filters pharmacies by address state, operating status and onboarding
// time.
var PharmacyFields = Fields[*model.Pharmacy]{
	State:     func(p *model.Pharmacy) string { return p.Address.State },
	Status:    func(p *model.Pharmacy) string { return string(p.Status) },
	CreatedAt: func(p *model.Pharmacy) time.Time { return p.CreatedAt },
}
