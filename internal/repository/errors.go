package repository

import (
	"context"
	"errors"
	"fmt"

	"pharma-ops/internal/model"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
)

// mapError converts driver errors into domain errors. Constraint violations are the
// store rejecting a value; everything else is an upstream failure.
func mapError(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("failed to %s: %w", op, err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgerrcode.CheckViolation, pgerrcode.NotNullViolation,
			pgerrcode.InvalidTextRepresentation, pgerrcode.NumericValueOutOfRange:
			return &model.DomainError{
				Kind:    model.KindValidation,
				Code:    model.ErrCodeValidation,
				Message: fmt.Sprintf("store rejected %s: %s", op, pgErr.Message),
				Err:     err,
			}
		case pgerrcode.UniqueViolation:
			return &model.DomainError{
				Kind:    model.KindValidation,
				Code:    model.ErrCodeValidation,
				Message: fmt.Sprintf("store rejected %s: duplicate record", op),
				Err:     err,
			}
		}
	}

	return model.UpstreamError(fmt.Sprintf("failed to %s", op), err)
}
