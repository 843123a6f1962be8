package backend

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"pharma-ops/internal/model"
	"pharma-ops/internal/money"
	"pharma-ops/internal/repository"
)

type statusRequest struct {
	UserID    string            `json:"userId,omitempty"`
	Status    model.OrderStatus `json:"status"`
	Message   string            `json:"message"`
	Timestamp time.Time         `json:"timestamp"`
}

type paymentRequest struct {
	Month  string              `json:"month"`
	Status model.PaymentStatus `json:"status"`
	Amount money.Money         `json:"amount"`
}

// errNullRecord is returned when the backend answers with a JSON null where a record was
// expected.
var errNullRecord = errors.New("null record")

// checkRecords rejects lists containing null entries so callers never see a nil record.
func checkRecords[T comparable](path string, records []T) error {
	var zero T
	for i, r := range records {
		if r == zero {
			return model.UpstreamError(fmt.Sprintf("backend returned malformed data for GET %s at index %d", path, i), errNullRecord)
		}
	}
	return nil
}

// checkRecord rejects a null single record.
func checkRecord[T comparable](method, path string, record T) error {
	var zero T
	if record == zero {
		return model.UpstreamError(fmt.Sprintf("backend returned malformed data for %s %s", method, path), errNullRecord)
	}
	return nil
}

// resource implements the order endpoints shared by orders and periodic orders.
type resource[T comparable] struct {
	c    *Client
	path string
}

func (r resource[T]) list(ctx context.Context) ([]T, error) {
	out := make([]T, 0)
	if err := r.c.do(ctx, http.MethodGet, r.path, nil, &out); err != nil {
		return nil, err
	}
	if err := checkRecords(r.path, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r resource[T]) get(ctx context.Context, id string) (T, error) {
	var out T
	path := r.path + "/" + escape(id)
	if err := r.c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return out, err
	}
	return out, checkRecord(http.MethodGet, path, out)
}

func (r resource[T]) updateStatus(ctx context.Context, id, userID string, u model.StatusUpdate) (T, error) {
	var out T
	path := r.path + "/" + escape(id) + "/status"
	err := r.c.do(ctx, http.MethodPut, path, statusRequest{
		UserID:    userID,
		Status:    u.Status,
		Message:   u.Message,
		Timestamp: u.Timestamp,
	}, &out)
	if err != nil {
		return out, err
	}
	return out, checkRecord(http.MethodPut, path, out)
}

func (r resource[T]) delete(ctx context.Context, id string) error {
	return r.c.do(ctx, http.MethodDelete, r.path+"/"+escape(id), nil, nil)
}

type orderStore struct{ r resource[*model.Order] }

// Orders returns the order store backed by this client.
func (c *Client) Orders() repository.OrderStore {
	return &orderStore{r: resource[*model.Order]{c: c, path: "/orders"}}
}

func (s *orderStore) List(ctx context.Context) ([]*model.Order, error) {
	return s.r.list(ctx)
}

func (s *orderStore) GetByID(ctx context.Context, id string) (*model.Order, error) {
	return s.r.get(ctx, id)
}

func (s *orderStore) UpdateStatus(ctx context.Context, orderID, userID string, u model.StatusUpdate) (*model.Order, error) {
	return s.r.updateStatus(ctx, orderID, userID, u)
}

func (s *orderStore) Delete(ctx context.Context, id string) error {
	return s.r.delete(ctx, id)
}

type periodicOrderStore struct{ r resource[*model.PeriodicOrder] }

// PeriodicOrders returns the periodic order store backed by this client.
func (c *Client) PeriodicOrders() repository.PeriodicOrderStore {
	return &periodicOrderStore{r: resource[*model.PeriodicOrder]{c: c, path: "/periodic-orders"}}
}

func (s *periodicOrderStore) List(ctx context.Context) ([]*model.PeriodicOrder, error) {
	return s.r.list(ctx)
}

func (s *periodicOrderStore) GetByID(ctx context.Context, id string) (*model.PeriodicOrder, error) {
	return s.r.get(ctx, id)
}

func (s *periodicOrderStore) UpdateStatus(ctx context.Context, orderID, userID string, u model.StatusUpdate) (*model.PeriodicOrder, error) {
	return s.r.updateStatus(ctx, orderID, userID, u)
}

func (s *periodicOrderStore) Delete(ctx context.Context, id string) error {
	return s.r.delete(ctx, id)
}

type pharmacyStore struct{ c *Client }

// Pharmacies returns the pharmacy store backed by this client.
func (c *Client) Pharmacies() repository.PharmacyStore {
	return &pharmacyStore{c: c}
}

func (s *pharmacyStore) List(ctx context.Context) ([]*model.Pharmacy, error) {
	out := make([]*model.Pharmacy, 0)
	if err := s.c.do(ctx, http.MethodGet, "/pharmacies", nil, &out); err != nil {
		return nil, err
	}
	if err := checkRecords("/pharmacies", out); err != nil {
		return nil, err
	}
	for _, p := range out {
		ensureLedger(p)
	}
	return out, nil
}

func (s *pharmacyStore) GetByID(ctx context.Context, id string) (*model.Pharmacy, error) {
	var out *model.Pharmacy
	path := "/pharmacies/" + escape(id)
	if err := s.c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	if err := checkRecord(http.MethodGet, path, out); err != nil {
		return nil, err
	}
	ensureLedger(out)
	return out, nil
}

func (s *pharmacyStore) UpdatePayment(ctx context.Context, pharmacyID string, u model.PaymentUpdate) (*model.Pharmacy, error) {
	var out *model.Pharmacy
	path := "/pharmacies/" + escape(pharmacyID) + "/revenue"
	err := s.c.do(ctx, http.MethodPut, path, paymentRequest{
		Month:  u.Month,
		Status: u.Status,
		Amount: u.Amount,
	}, &out)
	if err != nil {
		return nil, err
	}
	if err := checkRecord(http.MethodPut, path, out); err != nil {
		return nil, err
	}
	ensureLedger(out)
	return out, nil
}

func ensureLedger(p *model.Pharmacy) {
	if p != nil && p.RevenueByMonth == nil {
		p.RevenueByMonth = make(map[string]model.RevenueEntry)
	}
}
