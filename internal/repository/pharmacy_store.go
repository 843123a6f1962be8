package repository

import (
	"context"
	"errors"
	"time"

	"pharma-ops/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

const pharmacyColumns = `
	id, name, vendor_name, vendor_email, vendor_phone, address, status,
	revenue_by_month, payment_history, created_at`

func scanPharmacy(row pgx.Row) (*model.Pharmacy, error) {
	var p model.Pharmacy
	err := row.Scan(
		&p.ID, &p.Name, &p.VendorName, &p.VendorEmail, &p.VendorPhone, &p.Address, &p.Status,
		&p.RevenueByMonth, &p.PaymentHistory, &p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if p.RevenueByMonth == nil {
		p.RevenueByMonth = make(map[string]model.RevenueEntry)
	}
	return &p, nil
}

// pharmacyStore implements PharmacyStore using PostgreSQL.
type pharmacyStore struct {
	pool   *pgxpool.Pool
	now    func() time.Time
	logger zerolog.Logger
}

// NewPharmacyStore creates a new PostgreSQL-backed pharmacy store.
func NewPharmacyStore(pool *pgxpool.Pool, logger zerolog.Logger) PharmacyStore {
	return &pharmacyStore{
		pool:   pool,
		now:    time.Now,
		logger: logger.With().Str("repository", "pharmacy").Logger(),
	}
}

func (s *pharmacyStore) List(ctx context.Context) ([]*model.Pharmacy, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+pharmacyColumns+` FROM pharmacies ORDER BY name, id`)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to query pharmacies")
		return nil, mapError("list pharmacies", err)
	}
	defer rows.Close()

	out := make([]*model.Pharmacy, 0)
	for rows.Next() {
		p, err := scanPharmacy(rows)
		if err != nil {
			s.logger.Error().Err(err).Msg("failed to scan pharmacy row")
			return nil, mapError("scan pharmacy", err)
		}
		out = append(out, p)
	}

	if err := rows.Err(); err != nil {
		s.logger.Error().Err(err).Msg("error iterating pharmacy rows")
		return nil, mapError("list pharmacies", err)
	}

	return out, nil
}

func (s *pharmacyStore) GetByID(ctx context.Context, id string) (*model.Pharmacy, error) {
	p, err := scanPharmacy(s.pool.QueryRow(ctx, `SELECT `+pharmacyColumns+` FROM pharmacies WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			s.logger.Debug().Str("pharmacy_id", id).Msg("pharmacy not found")
			return nil, model.NotFoundError("pharmacy", id)
		}
		s.logger.Error().Err(err).Str("pharmacy_id", id).Msg("failed to query pharmacy")
		return nil, mapError("get pharmacy", err)
	}
	return p, nil
}

// UpdatePayment writes the month only while it is not yet paid. The guard lives in the
// WHERE clause so a caller holding a stale copy cannot overwrite a settled month.
func (s *pharmacyStore) UpdatePayment(ctx context.Context, pharmacyID string, update model.PaymentUpdate) (*model.Pharmacy, error) {
	entry := model.RevenueEntry{Amount: update.Amount, Status: update.Status}
	record := model.PaymentRecord{
		Month:      update.Month,
		Amount:     update.Amount,
		Status:     update.Status,
		RecordedAt: s.now().UTC(),
	}

	query := `
		UPDATE pharmacies
		SET revenue_by_month = jsonb_set(revenue_by_month, ARRAY[$2::text], $3::jsonb, true),
			payment_history = CASE WHEN $4::boolean
				THEN payment_history || jsonb_build_array($5::jsonb)
				ELSE payment_history END
		WHERE id = $1
			AND COALESCE(revenue_by_month -> $2::text ->> 'status', '') <> 'paid'
		RETURNING ` + pharmacyColumns

	p, err := scanPharmacy(s.pool.QueryRow(ctx, query,
		pharmacyID, update.Month, entry, update.Status == model.PaymentPaid, record))
	if err == nil {
		s.logger.Info().
			Str("pharmacy_id", pharmacyID).
			Str("month", update.Month).
			Str("status", string(update.Status)).
			Str("amount", update.Amount.String()).
			Msg("revenue month updated")
		return p, nil
	}

	if !errors.Is(err, pgx.ErrNoRows) {
		s.logger.Error().
			Err(err).
			Str("pharmacy_id", pharmacyID).
			Str("month", update.Month).
			Msg("failed to update revenue month")
		return nil, mapError("update payment", err)
	}

	// Zero rows: either the pharmacy is missing or the month is already paid.
	if _, getErr := s.GetByID(ctx, pharmacyID); getErr != nil {
		return nil, getErr
	}

	s.logger.Warn().
		Str("pharmacy_id", pharmacyID).
		Str("month", update.Month).
		Msg("rejected update of settled revenue month")
	return nil, model.AlreadySettledError(pharmacyID, update.Month)
}
