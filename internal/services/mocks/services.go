// Package mocks holds testify mocks for the service interfaces.
package mocks

import (
	"context"

	"github.com/aaravmahajanofficial/pos-terminal/internal/cart"
	"github.com/aaravmahajanofficial/pos-terminal/internal/models"
	service "github.com/aaravmahajanofficial/pos-terminal/internal/services"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type SessionService struct {
	mock.Mock
}

var _ service.SessionService = (*SessionService)(nil)

func (m *SessionService) Open(ctx context.Context) (*service.Session, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.Session), args.Error(1)
}

func (m *SessionService) Get(id uuid.UUID) (*service.Session, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.Session), args.Error(1)
}

func (m *SessionService) Close(id uuid.UUID) error {
	args := m.Called(id)
	return args.Error(0)
}

func (m *SessionService) Count() int {
	args := m.Called()
	return args.Int(0)
}

type SaleService struct {
	mock.Mock
}

var _ service.SaleService = (*SaleService)(nil)

func (m *SaleService) Submit(ctx context.Context, c *cart.Cart, req *models.CheckoutRequest) (*models.Receipt, error) {
	args := m.Called(ctx, c, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Receipt), args.Error(1)
}

func (m *SaleService) ListReceipts(ctx context.Context, page, size int) ([]*models.Receipt, int, error) {
	args := m.Called(ctx, page, size)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]*models.Receipt), args.Int(1), args.Error(2)
}

type ProductDirectory struct {
	mock.Mock
}

var _ service.ProductDirectory = (*ProductDirectory)(nil)

func (m *ProductDirectory) Refresh(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *ProductDirectory) Get(ctx context.Context, productID string) (*models.Product, error) {
	args := m.Called(ctx, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Product), args.Error(1)
}

func (m *ProductDirectory) Lookup(productID string) (models.Product, bool) {
	args := m.Called(productID)
	return args.Get(0).(models.Product), args.Bool(1)
}

func (m *ProductDirectory) Remember(product models.Product) {
	m.Called(product)
}

func (m *ProductDirectory) Products() []models.Product {
	args := m.Called()
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).([]models.Product)
}
