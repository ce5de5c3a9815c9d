package rest

import (
	"context"

	"github.com/dpaiva/storemanager/internal/service"
)

// mockProductService is a mock implementation of the ProductService interface
type mockProductService struct {
	product  *service.ProductDto
	products []service.ProductDto
	err      error

	createCalled bool
}

func (m *mockProductService) FindByID(_ context.Context, _ string) (*service.ProductDto, error) {
	return m.product, m.err
}

func (m *mockProductService) FindAll(_ context.Context) ([]service.ProductDto, error) {
	return m.products, m.err
}

func (m *mockProductService) Create(_ context.Context, _ service.ProductUpsertDto) (*service.ProductDto, error) {
	m.createCalled = true
	return m.product, m.err
}

func (m *mockProductService) Update(_ context.Context, _ string, _ service.ProductUpsertDto) (*service.ProductDto, error) {
	return m.product, m.err
}

func (m *mockProductService) DeleteByID(_ context.Context, _ string) (*service.ProductDto, error) {
	return m.product, m.err
}

// mockSaleService is a mock implementation of the SaleService interface
type mockSaleService struct {
	sale  *service.SaleDto
	sales []service.SaleDto
	err   error

	createCalled bool
}

func (m *mockSaleService) FindByID(_ context.Context, _ string) (*service.SaleDto, error) {
	return m.sale, m.err
}

func (m *mockSaleService) FindAll(_ context.Context) ([]service.SaleDto, error) {
	return m.sales, m.err
}

func (m *mockSaleService) Create(_ context.Context, _ []service.SaleItemCreateDto) (*service.SaleDto, error) {
	m.createCalled = true
	return m.sale, m.err
}

func (m *mockSaleService) Update(_ context.Context, _ string, _ []service.SaleItemCreateDto) (*service.SaleDto, error) {
	return m.sale, m.err
}

func (m *mockSaleService) DeleteByID(_ context.Context, _ string) (*service.SaleDto, error) {
	return m.sale, m.err
}
