package service

import (
	"context"
	"sync"

	"pharma-ops/internal/export"
	"pharma-ops/internal/model"
	"pharma-ops/internal/notify"

	"github.com/stretchr/testify/mock"
)

// MockOrderStore is a mock implementation of repository.OrderStore
type MockOrderStore struct {
	mock.Mock
}

func (m *MockOrderStore) List(ctx context.Context) ([]*model.Order, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Order), args.Error(1)
}

func (m *MockOrderStore) GetByID(ctx context.Context, id string) (*model.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

func (m *MockOrderStore) UpdateStatus(ctx context.Context, orderID, userID string, update model.StatusUpdate) (*model.Order, error) {
	args := m.Called(ctx, orderID, userID, update)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

func (m *MockOrderStore) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockPeriodicOrderStore is a mock implementation of repository.PeriodicOrderStore
type MockPeriodicOrderStore struct {
	mock.Mock
}

func (m *MockPeriodicOrderStore) List(ctx context.Context) ([]*model.PeriodicOrder, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.PeriodicOrder), args.Error(1)
}

func (m *MockPeriodicOrderStore) GetByID(ctx context.Context, id string) (*model.PeriodicOrder, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.PeriodicOrder), args.Error(1)
}

func (m *MockPeriodicOrderStore) UpdateStatus(ctx context.Context, orderID, userID string, update model.StatusUpdate) (*model.PeriodicOrder, error) {
	args := m.Called(ctx, orderID, userID, update)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.PeriodicOrder), args.Error(1)
}

func (m *MockPeriodicOrderStore) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockPharmacyStore is a mock implementation of repository.PharmacyStore
type MockPharmacyStore struct {
	mock.Mock
}

func (m *MockPharmacyStore) List(ctx context.Context) ([]*model.Pharmacy, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Pharmacy), args.Error(1)
}

func (m *MockPharmacyStore) GetByID(ctx context.Context, id string) (*model.Pharmacy, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Pharmacy), args.Error(1)
}

func (m *MockPharmacyStore) UpdatePayment(ctx context.Context, pharmacyID string, update model.PaymentUpdate) (*model.Pharmacy, error) {
	args := m.Called(ctx, pharmacyID, update)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Pharmacy), args.Error(1)
}

// MockPublisher is a mock implementation of notify.Publisher
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) PublishStatusChange(ctx context.Context, event notify.StatusChanged) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

// MockArtifactStore is a mock implementation of export.ArtifactStore
type MockArtifactStore struct {
	mock.Mock
}

func (m *MockArtifactStore) Put(ctx context.Context, a *export.Artifact) (string, error) {
	args := m.Called(ctx, a)
	return args.String(0), args.Error(1)
}

// recordingMetrics counts metric names.
type recordingMetrics struct {
	mu     sync.Mutex
	counts map[string]int
}

func newRecordingMetrics() *recordingMetrics {
	return &recordingMetrics{counts: map[string]int{}}
}

func (r *recordingMetrics) Count(_ context.Context, name string, _ map[string]string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.counts[name]++
}

func (r *recordingMetrics) get(name string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.counts[name]
}
