// Package mocks holds testify mocks for the backend client.
package mocks

import (
	"context"

	"github.com/aaravmahajanofficial/pos-terminal/internal/models"
	"github.com/aaravmahajanofficial/pos-terminal/pkg/backend"
	"github.com/stretchr/testify/mock"
)

type Client struct {
	mock.Mock
}

var _ backend.Client = (*Client)(nil)

func (m *Client) ScanImage(ctx context.Context, image backend.Image) (*models.ScanResult, error) {
	args := m.Called(ctx, image)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ScanResult), args.Error(1)
}

func (m *Client) GetSizeOptions(ctx context.Context, productID string) ([]models.SizeOption, error) {
	args := m.Called(ctx, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.SizeOption), args.Error(1)
}

func (m *Client) SearchProducts(ctx context.Context, query string, limit int) ([]models.Product, error) {
	args := m.Called(ctx, query, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Product), args.Error(1)
}

func (m *Client) GetProduct(ctx context.Context, productID string) (*models.Product, error) {
	args := m.Called(ctx, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Product), args.Error(1)
}

func (m *Client) ListProducts(ctx context.Context) ([]models.Product, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Product), args.Error(1)
}

func (m *Client) CreateSale(ctx context.Context, req *models.CreateSaleRequest) (*models.Sale, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Sale), args.Error(1)
}

func (m *Client) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
