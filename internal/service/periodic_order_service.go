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

// periodicOrderService implements PeriodicOrderService.
type periodicOrderService struct {
	flow *orderFlow[*model.PeriodicOrder]
}

// NewPeriodicOrderService creates a new periodic order service.
func NewPeriodicOrderService(store repository.PeriodicOrderStore, deps Dependencies, logger zerolog.Logger) PeriodicOrderService {
	return &periodicOrderService{flow: &orderFlow[*model.PeriodicOrder]{
		store:    store,
		kind:     notify.KindPeriodic,
		fields:   report.PeriodicOrderFields,
		columns:  export.PeriodicOrderColumns,
		base:     func(p *model.PeriodicOrder) *model.Order { return &p.Order },
		document: invoice.BuildPeriodicDocument,
		deps:     deps.withDefaults(),
		logger:   logger.With().Str("service", "periodic_order").Logger(),
	}}
}

func periodicView(p *model.PeriodicOrder) PeriodicOrderView {
	return PeriodicOrderView{PeriodicOrder: p, FinalAmount: invoice.PeriodicFinalAmount(p)}
}

func (s *periodicOrderService) List(ctx context.Context, q ListQuery) (*report.Page[PeriodicOrderView], error) {
	page, err := s.flow.list(ctx, q)
	if err != nil {
		return nil, err
	}
	return mapPage(page, periodicView), nil
}

func (s *periodicOrderService) FilterOptions(ctx context.Context) (*FilterOptions, error) {
	return s.flow.options(ctx)
}

func (s *periodicOrderService) GetByID(ctx context.Context, id string) (*PeriodicOrderView, error) {
	p, err := s.flow.get(ctx, id)
	if err != nil {
		return nil, err
	}
	v := periodicView(p)
	return &v, nil
}

func (s *periodicOrderService) UpdateStatus(ctx context.Context, id string, change StatusChange) (*PeriodicOrderView, error) {
	p, err := s.flow.updateStatus(ctx, id, change)
	if err != nil {
		return nil, err
	}
	v := periodicView(p)
	return &v, nil
}

func (s *periodicOrderService) Delete(ctx context.Context, id string) error {
	return s.flow.delete(ctx, id)
}

func (s *periodicOrderService) Invoice(ctx context.Context, id string) (*invoice.Document, error) {
	return s.flow.invoice(ctx, id)
}

func (s *periodicOrderService) RenderInvoice(ctx context.Context, id string) (*RenderedInvoice, error) {
	return s.flow.renderInvoice(ctx, id)
}

func (s *periodicOrderService) Export(ctx context.Context, filters report.Filters) (*export.Artifact, error) {
	return s.flow.export(ctx, filters)
}
