package service

import (
	"context"

	serrors "github.com/dpaiva/storemanager/internal/errors"
	"github.com/dpaiva/storemanager/internal/store"
	"github.com/dpaiva/storemanager/pkg/messaging"
	"github.com/google/uuid"
)

// adjustment records a single AdjustQuantity call.
type adjustment struct {
	productID uuid.UUID
	delta     int32
}

// mockProductStore is a mock implementation of the ProductStore interface
type mockProductStore struct {
	products map[uuid.UUID]store.Product

	created        *store.Product
	createErr      error
	updateModified int64
	updateErr      error
	deleted        *store.Product
	deleteErr      error
	findErr        error

	adjustments []adjustment
	adjustErr   error
}

func (m *mockProductStore) FindByID(_ context.Context, id uuid.UUID) (*store.Product, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	if p, ok := m.products[id]; ok {
		return &p, nil
	}
	return nil, serrors.ErrProductNotFound
}

func (m *mockProductStore) FindByName(_ context.Context, name string) (*store.Product, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	for _, p := range m.products {
		if p.Name == name {
			return &p, nil
		}
	}
	return nil, serrors.ErrProductNotFound
}

func (m *mockProductStore) FindAll(_ context.Context) ([]store.Product, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	all := make([]store.Product, 0, len(m.products))
	for _, p := range m.products {
		all = append(all, p)
	}
	return all, nil
}

func (m *mockProductStore) Create(_ context.Context, _ string, _ int32) (*store.Product, error) {
	if m.createErr != nil {
		return nil, m.createErr
	}
	return m.created, nil
}

func (m *mockProductStore) Update(_ context.Context, _ uuid.UUID, _ string, _ int32) (int64, error) {
	if m.updateErr != nil {
		return 0, m.updateErr
	}
	return m.updateModified, nil
}

func (m *mockProductStore) DeleteByID(_ context.Context, _ uuid.UUID) (*store.Product, error) {
	if m.deleteErr != nil {
		return nil, m.deleteErr
	}
	return m.deleted, nil
}

func (m *mockProductStore) AdjustQuantity(_ context.Context, id uuid.UUID, delta int32) error {
	if m.adjustErr != nil {
		return m.adjustErr
	}
	m.adjustments = append(m.adjustments, adjustment{productID: id, delta: delta})
	return nil
}

// mockSaleStore is a mock implementation of the SaleStore interface
type mockSaleStore struct {
	sale    *store.Sale
	sales   []store.Sale
	findErr error

	created      *store.Sale
	createErr    error
	createCalled bool

	modified   int64
	replaceErr error

	deleted   *store.Sale
	deleteErr error
}

func (m *mockSaleStore) FindByID(_ context.Context, _ uuid.UUID) (*store.Sale, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	return m.sale, nil
}

func (m *mockSaleStore) FindAll(_ context.Context) ([]store.Sale, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	return m.sales, nil
}

func (m *mockSaleStore) Create(_ context.Context, _ []store.SaleItem) (*store.Sale, error) {
	m.createCalled = true
	if m.createErr != nil {
		return nil, m.createErr
	}
	return m.created, nil
}

func (m *mockSaleStore) ReplaceItems(_ context.Context, _ uuid.UUID, _ []store.SaleItem) (int64, error) {
	if m.replaceErr != nil {
		return 0, m.replaceErr
	}
	return m.modified, nil
}

func (m *mockSaleStore) DeleteByID(_ context.Context, _ uuid.UUID) (*store.Sale, error) {
	if m.deleteErr != nil {
		return nil, m.deleteErr
	}
	return m.deleted, nil
}

// mockPublisher records published events.
type mockPublisher struct {
	events []messaging.Event
	err    error
}

func (m *mockPublisher) Publish(_ context.Context, event messaging.Event) error {
	if m.err != nil {
		return m.err
	}
	m.events = append(m.events, event)
	return nil
}

func ptr(v int32) *int32 {
	return &v
}
