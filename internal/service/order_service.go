package service

import (
	"context"

	"pharma-ops/internal/export"
	"pharma-ops/internal/invoice"
	"pharma-ops/internal/model"
	"pharma-ops/internal/notify"
	"pharma-ops/internal/report"
	"pharma-ops/internal/repository"

	"github.com/rs/zerolog"
)

// orderService implements OrderService.
type orderService struct {
	flow *orderFlow[*model.Order]
}

// NewOrderService creates a new order service.
func NewOrderService(store repository.OrderStore, deps Dependencies, logger zerolog.Logger) OrderService {
	return &orderService{flow: &orderFlow[*model.Order]{
		store:    store,
		kind:     notify.KindOrder,
		fields:   report.OrderFields,
		columns:  export.OrderColumns,
		base:     func(o *model.Order) *model.Order { return o },
		document: invoice.BuildDocument,
		deps:     deps.withDefaults(),
		logger:   logger.With().Str("service", "order").Logger(),
	}}
}

func orderView(o *model.Order) OrderView {
	return OrderView{Order: o, FinalAmount: invoice.FinalAmount(o)}
}

func (s *orderService) List(ctx context.Context, q ListQuery) (*report.Page[OrderView], error) {
	page, err := s.flow.list(ctx, q)
	if err != nil {
		return nil, err
	}
	return mapPage(page, orderView), nil
}

func (s *orderService) FilterOptions(ctx context.Context) (*FilterOptions, error) {
	return s.flow.options(ctx)
}

func (s *orderService) GetByID(ctx context.Context, id string) (*OrderView, error) {
	o, err := s.flow.get(ctx, id)
	if err != nil {
		return nil, err
	}
	v := orderView(o)
	return &v, nil
}

func (s *orderService) UpdateStatus(ctx context.Context, id string, change StatusChange) (*OrderView, error) {
	o, err := s.flow.updateStatus(ctx, id, change)
	if err != nil {
		return nil, err
	}
	v := orderView(o)
	return &v, nil
}

func (s *orderService) Delete(ctx context.Context, id string) error {
	return s.flow.delete(ctx, id)
}

func (s *orderService) Invoice(ctx context.Context, id string) (*invoice.Document, error) {
	return s.flow.invoice(ctx, id)
}

func (s *orderService) RenderInvoice(ctx context.Context, id string) (*RenderedInvoice, error) {
	return s.flow.renderInvoice(ctx, id)
}

func (s *orderService) Export(ctx context.Context, filters report.Filters) (*export.Artifact, error) {
	return s.flow.export(ctx, filters)
}

// mapPage converts the items of a page, keeping its counters.
func mapPage[T, V any](p report.Page[T], fn func(T) V) *report.Page[V] {
	out := &report.Page[V]{
		Items:      make([]V, len(p.Items)),
		Page:       p.Page,
		PageSize:   p.PageSize,
		TotalItems: p.TotalItems,
		TotalPages: p.TotalPages,
	}
	for i, item := range p.Items {
		out.Items[i] = fn(item)
	}
	return out
}
