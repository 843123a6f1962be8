package service

import (
	"context"
	"errors"
	"fmt"

	"pharma-ops/internal/export"
	"pharma-ops/internal/invoice"
	"pharma-ops/internal/lifecycle"
	"pharma-ops/internal/model"
	"pharma-ops/internal/notify"
	"pharma-ops/internal/report"

	"github.com/rs/zerolog"
)

// lifecycleStore is the store surface shared by orders and periodic orders.
type lifecycleStore[T any] interface {
	List(ctx context.Context) ([]T, error)
	GetByID(ctx context.Context, id string) (T, error)
	UpdateStatus(ctx context.Context, orderID, userID string, update model.StatusUpdate) (T, error)
	Delete(ctx context.Context, id string) error
}

// orderFlow implements the list, mutate and export flow for one order type.
type orderFlow[T any] struct {
	store    lifecycleStore[T]
	kind     notify.OrderKind
	fields   report.Fields[T]
	columns  []export.Column[T]
	base     func(T) *model.Order
	document func(T, invoice.Company) *invoice.Document
	deps     Dependencies
	logger   zerolog.Logger
}

func (f *orderFlow[T]) all(ctx context.Context) ([]T, error) {
	records, err := f.store.List(ctx)
	if err != nil {
		f.logger.Error().Err(err).Msg("failed to list orders")
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return records, nil
}

func (f *orderFlow[T]) list(ctx context.Context, q ListQuery) (report.Page[T], error) {
	records, err := f.all(ctx)
	if err != nil {
		return report.Page[T]{}, err
	}

	filtered := report.Apply(records, f.deps.filters(q.Filters), f.fields)

	f.logger.Debug().
		Int("total", len(records)).
		Int("matched", len(filtered)).
		Str("date_filter", q.Filters.Date.String()).
		Msg("orders filtered")

	return report.Paginate(filtered, q.Page, q.PageSize), nil
}

func (f *orderFlow[T]) options(ctx context.Context) (*FilterOptions, error) {
	records, err := f.all(ctx)
	if err != nil {
		return nil, err
	}
	opts := &FilterOptions{
		States:          report.DistinctValues(records, f.fields.State),
		Statuses:        report.DistinctValues(records, f.fields.Status),
		PaymentStatuses: report.DistinctValues(records, f.fields.PaymentStatus),
	}
	if f.fields.PlanType != nil {
		opts.PlanTypes = report.DistinctValues(records, f.fields.PlanType)
	}
	return opts, nil
}

func (f *orderFlow[T]) get(ctx context.Context, id string) (T, error) {
	rec, err := f.store.GetByID(ctx, id)
	if err != nil {
		var zero T
		if model.KindOf(err) == model.KindNotFound {
			f.logger.Debug().Str("order_id", id).Msg("order not found")
			return zero, err
		}
		f.logger.Error().Err(err).Str("order_id", id).Msg("failed to get order")
		return zero, fmt.Errorf("failed to get order: %w", err)
	}
	return rec, nil
}

// updateStatus runs the state machine on the current record, submits the resulting
// timeline entry to the store and refetches the authoritative record.
func (f *orderFlow[T]) updateStatus(ctx context.Context, id string, change StatusChange) (T, error) {
	var zero T

	if _, _, err := lifecycle.ParseRequest(change.Status, change.Message); err != nil {
		f.logger.Debug().Err(err).Str("order_id", id).Msg("invalid status change request")
		return zero, err
	}

	current, err := f.get(ctx, id)
	if err != nil {
		return zero, err
	}
	cur := f.base(current)

	next, err := f.deps.Machine.Transition(cur, change.Status, change.Message)
	if err != nil {
		f.logger.Warn().
			Err(err).
			Str("order_id", id).
			Str("from", string(cur.Status)).
			Str("to", change.Status).
			Msg("status transition rejected")
		return zero, err
	}
	entry := next.StatusTimeline[len(next.StatusTimeline)-1]

	userID := change.UserID
	if userID == "" {
		userID = cur.UserRef
	}

	stored, err := f.store.UpdateStatus(ctx, id, userID, lifecycle.Update(entry))
	if err != nil {
		f.logger.Error().
			Err(err).
			Str("order_id", id).
			Str("status", string(entry.Status)).
			Msg("store rejected status update")
		return zero, fmt.Errorf("failed to update order status: %w", err)
	}

	f.logger.Info().
		Str("order_id", id).
		Str("from", string(cur.Status)).
		Str("to", string(entry.Status)).
		Str("policy", f.deps.Machine.Policy().Name()).
		Msg("order status updated")

	f.deps.Metrics.Count(ctx, notify.MetricStatusTransition, map[string]string{
		"Status":    string(entry.Status),
		"OrderKind": string(f.kind),
	})

	if cur.PharmacyRef != "" {
		f.publish(ctx, next)
	}

	fresh, err := f.store.GetByID(ctx, id)
	if err != nil {
		f.logger.Warn().Err(err).Str("order_id", id).Msg("failed to refetch order after update, using store response")
		return stored, nil
	}
	return fresh, nil
}

// publish notifies the fulfilling pharmacy. Failures never fail the transition.
func (f *orderFlow[T]) publish(ctx context.Context, o *model.Order) {
	event := notify.NewStatusChanged(o, f.kind)
	if err := f.deps.Publisher.PublishStatusChange(ctx, event); err != nil {
		f.logger.Warn().
			Err(err).
			Str("order_id", o.ID).
			Str("pharmacy_id", o.PharmacyRef).
			Msg("failed to publish status change")
	}
}

func (f *orderFlow[T]) delete(ctx context.Context, id string) error {
	err := f.store.Delete(ctx, id)
	if err == nil {
		f.logger.Info().Str("order_id", id).Msg("order deleted")
		return nil
	}
	if errors.Is(err, model.ErrNotFound) {
		f.logger.Warn().Str("order_id", id).Msg("order already deleted")
		return nil
	}
	f.logger.Error().Err(err).Str("order_id", id).Msg("failed to delete order")
	return fmt.Errorf("failed to delete order: %w", err)
}

func (f *orderFlow[T]) invoice(ctx context.Context, id string) (*invoice.Document, error) {
	rec, err := f.get(ctx, id)
	if err != nil {
		return nil, err
	}
	return f.document(rec, f.deps.Company), nil
}

func (f *orderFlow[T]) renderInvoice(ctx context.Context, id string) (*RenderedInvoice, error) {
	doc, err := f.invoice(ctx, id)
	if err != nil {
		return nil, err
	}

	artifact, err := f.deps.Renderer.Render(ctx, doc)
	if err != nil {
		f.logger.Error().Err(err).Str("order_id", id).Msg("failed to render invoice")
		return nil, fmt.Errorf("failed to render invoice: %w", err)
	}

	if f.deps.Artifacts == nil {
		return nil, fmt.Errorf("failed to store invoice: no artifact store configured")
	}
	location, err := f.deps.Artifacts.Put(ctx, artifact)
	if err != nil {
		f.logger.Error().Err(err).Str("order_id", id).Msg("failed to store invoice")
		return nil, fmt.Errorf("failed to store invoice: %w", err)
	}

	f.logger.Info().
		Str("order_id", id).
		Str("invoice_number", doc.InvoiceNumber).
		Str("location", location).
		Msg("invoice rendered")

	return &RenderedInvoice{
		InvoiceNumber: doc.InvoiceNumber,
		Name:          artifact.Name,
		ContentType:   artifact.ContentType,
		Location:      location,
	}, nil
}

func (f *orderFlow[T]) export(ctx context.Context, filters report.Filters) (*export.Artifact, error) {
	records, err := f.all(ctx)
	if err != nil {
		return nil, err
	}

	filtered := report.Apply(records, f.deps.filters(filters), f.fields)

	artifact, err := export.CSVArtifact(export.ArtifactName(string(f.kind)+"s", "csv", f.deps.Now()), f.columns, filtered)
	if err != nil {
		f.logger.Error().Err(err).Msg("failed to export orders")
		return nil, fmt.Errorf("failed to export orders: %w", err)
	}

	f.logger.Info().Int("rows", len(filtered)).Str("file", artifact.Name).Msg("orders exported")
	return artifact, nil
}
