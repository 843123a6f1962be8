package service

import (
	"context"
	"time"

	"pharma-ops/internal/export"
	"pharma-ops/internal/invoice"
	"pharma-ops/internal/ledger"
	"pharma-ops/internal/lifecycle"
	"pharma-ops/internal/model"
	"pharma-ops/internal/money"
	"pharma-ops/internal/notify"
	"pharma-ops/internal/report"

	"github.com/shopspring/decimal"
)

// ListQuery is a filtered, paginated list request.
type ListQuery struct {
	Filters  report.Filters
	Page     int
	PageSize int
}

// StatusChange is a requested order status transition.
type StatusChange struct {
	UserID  string
	Status  string
	Message string
}

// FilterOptions lists the distinct values available to each filter dropdown.
type FilterOptions struct {
	States          []string `json:"states"`
	Statuses        []string `json:"statuses"`
	PaymentStatuses []string `json:"paymentStatuses,omitempty"`
	PlanTypes       []string `json:"planTypes,omitempty"`
}

// OrderView is an order with its computed final amount.
type OrderView struct {
	*model.Order
	FinalAmount money.Money `json:"finalAmount"`
}

// PeriodicOrderView is a periodic order with its computed final amount.
type PeriodicOrderView struct {
	*model.PeriodicOrder
	FinalAmount money.Money `json:"finalAmount"`
}

// PharmacyView is a pharmacy with its revenue ledger projected for display.
type PharmacyView struct {
	ID          string               `json:"id"`
	Name        string               `json:"name"`
	VendorName  string               `json:"vendorName,omitempty"`
	VendorEmail string               `json:"vendorEmail,omitempty"`
	VendorPhone string               `json:"vendorPhone,omitempty"`
	Address     model.Address        `json:"address"`
	Status      model.PharmacyStatus `json:"status"`
	CreatedAt   time.Time            `json:"createdAt"`
	Months      []ledger.MonthView   `json:"months"`
	Outstanding money.Money          `json:"outstanding"`
	Settled     money.Money          `json:"settled"`
}

// RenderedInvoice is where a rendered invoice document was stored.
type RenderedInvoice struct {
	InvoiceNumber string `json:"invoiceNumber"`
	Name          string `json:"name"`
	ContentType   string `json:"contentType"`
	Location      string `json:"location"`
}

// OrderService defines operations on regular orders.
type OrderService interface {
	// List returns one page of the orders matching the query.
	List(ctx context.Context, q ListQuery) (*report.Page[OrderView], error)

	// FilterOptions returns the distinct filter values present in the data.
	FilterOptions(ctx context.Context) (*FilterOptions, error)

	GetByID(ctx context.Context, id string) (*OrderView, error)

	// UpdateStatus validates the transition locally, persists it and returns the
	// refetched order.
	UpdateStatus(ctx context.Context, id string, change StatusChange) (*OrderView, error)

	// Delete removes an order. Deleting an order that is already gone is not an error.
	Delete(ctx context.Context, id string) error

	Invoice(ctx context.Context, id string) (*invoice.Document, error)
	RenderInvoice(ctx context.Context, id string) (*RenderedInvoice, error)

	// Export renders the orders matching filters as CSV.
	Export(ctx context.Context, filters report.Filters) (*export.Artifact, error)
}

// PeriodicOrderService defines operations on periodic orders.
type PeriodicOrderService interface {
	List(ctx context.Context, q ListQuery) (*report.Page[PeriodicOrderView], error)
	FilterOptions(ctx context.Context) (*FilterOptions, error)
	GetByID(ctx context.Context, id string) (*PeriodicOrderView, error)
	UpdateStatus(ctx context.Context, id string, change StatusChange) (*PeriodicOrderView, error)
	Delete(ctx context.Context, id string) error
	Invoice(ctx context.Context, id string) (*invoice.Document, error)
	RenderInvoice(ctx context.Context, id string) (*RenderedInvoice, error)
	Export(ctx context.Context, filters report.Filters) (*export.Artifact, error)
}

// PharmacyService defines operations on pharmacies and their revenue ledger.
type PharmacyService interface {
	List(ctx context.Context, q ListQuery) (*report.Page[PharmacyView], error)
	FilterOptions(ctx context.Context) (*FilterOptions, error)

	// Revenue returns the display projection of a pharmacy's ledger.
	Revenue(ctx context.Context, id string) (*ledger.Summary, error)

	// SetPaymentStatus updates one revenue month. A paid month is rejected locally before
	// any store request is made.
	SetPaymentStatus(ctx context.Context, id, month, status string, amount decimal.Decimal) (*ledger.Summary, error)

	ExportRevenue(ctx context.Context, id string) (*export.Artifact, error)
}

// Dependencies are the collaborators shared by every service.
type Dependencies struct {
	Machine   *lifecycle.Machine
	Ledger    *ledger.Ledger
	Publisher notify.Publisher
	Metrics   notify.Metrics
	Renderer  export.DocumentRenderer
	Artifacts export.ArtifactStore
	Company   invoice.Company
	// Location is the calendar for date filters. Nil means time.Local.
	Location *time.Location
	Now      func() time.Time
}

func (d Dependencies) withDefaults() Dependencies {
	if d.Machine == nil {
		d.Machine = lifecycle.New()
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.Ledger == nil {
		d.Ledger = ledger.New(d.Now)
	}
	if d.Publisher == nil {
		d.Publisher = notify.NewNopPublisher()
	}
	if d.Metrics == nil {
		d.Metrics = notify.NewNopMetrics()
	}
	if d.Renderer == nil {
		d.Renderer = export.NewJSONRenderer()
	}
	return d
}

func (d Dependencies) filters(f report.Filters) report.Filters {
	if f.Location == nil {
		f.Location = d.Location
	}
	return f
}
