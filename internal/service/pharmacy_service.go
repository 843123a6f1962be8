package service

import (
	"context"
	"fmt"

	"pharma-ops/internal/export"
	"pharma-ops/internal/ledger"
	"pharma-ops/internal/model"
	"pharma-ops/internal/notify"
	"pharma-ops/internal/report"
	"pharma-ops/internal/repository"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// pharmacyService implements PharmacyService.
type pharmacyService struct {
	store  repository.PharmacyStore
	deps   Dependencies
	logger zerolog.Logger
}

// NewPharmacyService creates a new pharmacy service.
func NewPharmacyService(store repository.PharmacyStore, deps Dependencies, logger zerolog.Logger) PharmacyService {
	return &pharmacyService{
		store:  store,
		deps:   deps.withDefaults(),
		logger: logger.With().Str("service", "pharmacy").Logger(),
	}
}

func pharmacyView(p *model.Pharmacy) PharmacyView {
	s := ledger.Summarize(p)
	return PharmacyView{
		ID:          p.ID,
		Name:        p.Name,
		VendorName:  p.VendorName,
		VendorEmail: p.VendorEmail,
		VendorPhone: p.VendorPhone,
		Address:     p.Address,
		Status:      p.Status,
		CreatedAt:   p.CreatedAt,
		Months:      s.Months,
		Outstanding: s.Outstanding,
		Settled:     s.Settled,
	}
}

func (s *pharmacyService) all(ctx context.Context) ([]*model.Pharmacy, error) {
	pharmacies, err := s.store.List(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list pharmacies")
		return nil, fmt.Errorf("failed to list pharmacies: %w", err)
	}
	return pharmacies, nil
}

func (s *pharmacyService) get(ctx context.Context, id string) (*model.Pharmacy, error) {
	p, err := s.store.GetByID(ctx, id)
	if err != nil {
		if model.KindOf(err) == model.KindNotFound {
			return nil, err
		}
		s.logger.Error().Err(err).Str("pharmacy_id", id).Msg("failed to get pharmacy")
		return nil, fmt.Errorf("failed to get pharmacy: %w", err)
	}
	return p, nil
}

func (s *pharmacyService) List(ctx context.Context, q ListQuery) (*report.Page[PharmacyView], error) {
	pharmacies, err := s.all(ctx)
	if err != nil {
		return nil, err
	}
	filtered := report.Apply(pharmacies, s.deps.filters(q.Filters), report.PharmacyFields)
	return mapPage(report.Paginate(filtered, q.Page, q.PageSize), pharmacyView), nil
}

func (s *pharmacyService) FilterOptions(ctx context.Context) (*FilterOptions, error) {
	pharmacies, err := s.all(ctx)
	if err != nil {
		return nil, err
	}
	return &FilterOptions{
		States:   report.DistinctValues(pharmacies, report.PharmacyFields.State),
		Statuses: report.DistinctValues(pharmacies, report.PharmacyFields.Status),
	}, nil
}

func (s *pharmacyService) Revenue(ctx context.Context, id string) (*ledger.Summary, error) {
	p, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	summary := ledger.Summarize(p)
	return &summary, nil
}

func (s *pharmacyService) SetPaymentStatus(ctx context.Context, id, month, status string, amount decimal.Decimal) (*ledger.Summary, error) {
	p, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}

	local, update, err := s.deps.Ledger.SetPaymentStatus(p, month, status, amount)
	if err != nil {
		s.logger.Warn().
			Err(err).
			Str("pharmacy_id", id).
			Str("month", month).
			Str("status", status).
			Msg("payment status change rejected")
		if model.KindOf(err) == model.KindAlreadySettled {
			s.deps.Metrics.Count(ctx, notify.MetricSettleRejected, map[string]string{"Source": "local"})
		}
		return nil, err
	}

	stored, err := s.store.UpdatePayment(ctx, id, update)
	if err != nil {
		if model.KindOf(err) == model.KindAlreadySettled {
			s.deps.Metrics.Count(ctx, notify.MetricSettleRejected, map[string]string{"Source": "store"})
		}
		s.logger.Error().
			Err(err).
			Str("pharmacy_id", id).
			Str("month", update.Month).
			Msg("store rejected payment update")
		return nil, fmt.Errorf("failed to update payment status: %w", err)
	}

	s.logger.Info().
		Str("pharmacy_id", id).
		Str("month", update.Month).
		Str("status", string(update.Status)).
		Str("amount", update.Amount.String()).
		Msg("payment status updated")

	if update.Status == model.PaymentPaid {
		s.deps.Metrics.Count(ctx, notify.MetricRevenueSettled, map[string]string{"PharmacyId": id})
	}

	fresh, err := s.store.GetByID(ctx, id)
	if err != nil {
		s.logger.Warn().Err(err).Str("pharmacy_id", id).Msg("failed to refetch pharmacy after update, using store response")
		fresh = stored
		if fresh == nil {
			fresh = local
		}
	}
	summary := ledger.Summarize(fresh)
	return &summary, nil
}

func (s *pharmacyService) ExportRevenue(ctx context.Context, id string) (*export.Artifact, error) {
	p, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}

	summary := ledger.Summarize(p)
	artifact, err := export.CSVArtifact(export.ArtifactName("revenue-"+p.ID, "csv", s.deps.Now()), export.RevenueColumns, summary.Months)
	if err != nil {
		s.logger.Error().Err(err).Str("pharmacy_id", id).Msg("failed to export revenue")
		return nil, fmt.Errorf("failed to export revenue: %w", err)
	}
	return artifact, nil
}
