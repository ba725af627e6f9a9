package service_test

import (
	"errors"
	"testing"

	"github.com/aaravmahajanofficial/pos-terminal/internal/cache"
	appErrors "github.com/aaravmahajanofficial/pos-terminal/internal/errors"
	"github.com/aaravmahajanofficial/pos-terminal/internal/models"
	service "github.com/aaravmahajanofficial/pos-terminal/internal/services"
	"github.com/aaravmahajanofficial/pos-terminal/pkg/backend"
	"github.com/aaravmahajanofficial/pos-terminal/pkg/backend/mocks"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var catalog = []models.Product{
	{ID: "p1", Name: "Cola", CurrentStock: 10, SellingPrice: decimal.RequireFromString("1.25")},
	{ID: "p2", Name: "Tee", CurrentStock: 3, SellingPrice: decimal.NewFromInt(15), HasSizes: true},
}

func TestDirectoryRefresh(t *testing.T) {
	t.Run("Success - Loads and caches the catalog", func(t *testing.T) {
		// Arrange
		client := new(mocks.Client)
		memory := newMemCache()
		directory := service.NewProductDirectory(client, memory, testCacheConfig)
		client.On("ListProducts", mock.Anything).Return(catalog, nil).Once()

		// Act
		err := directory.Refresh(t.Context())

		// Assert
		require.NoError(t, err)
		assert.Len(t, directory.Products(), 2)
		p, ok := directory.Lookup("p2")
		assert.True(t, ok)
		assert.Equal(t, "Tee", p.Name)
		assert.True(t, memory.has(cache.Key(cache.CatalogKeyPrefix, "all")))
		client.AssertExpectations(t)
	})

	t.Run("Success - Falls back to the cached catalog", func(t *testing.T) {
		// Arrange
		client := new(mocks.Client)
		memory := newMemCache()
		require.NoError(t, memory.Set(t.Context(), cache.Key(cache.CatalogKeyPrefix, "all"), catalog[:1], 0))
		directory := service.NewProductDirectory(client, memory, testCacheConfig)
		client.On("ListProducts", mock.Anything).Return(nil, errors.New("connection refused")).Once()

		// Act
		err := directory.Refresh(t.Context())

		// Assert
		require.NoError(t, err)
		products := directory.Products()
		require.Len(t, products, 1)
		assert.True(t, decimal.RequireFromString("1.25").Equal(products[0].SellingPrice))
	})

	t.Run("Failure - Backend down and nothing cached", func(t *testing.T) {
		// Arrange
		client := new(mocks.Client)
		directory := service.NewProductDirectory(client, cache.NewNoopCache(), testCacheConfig)
		client.On("ListProducts", mock.Anything).Return(nil, errors.New("connection refused")).Once()

		// Act
		err := directory.Refresh(t.Context())

		// Assert
		require.Error(t, err)
		assert.True(t, appErrors.HasCode(err, appErrors.ErrCodeTransport))
		assert.Empty(t, directory.Products())
	})
}

func TestDirectoryGet(t *testing.T) {
	t.Run("Success - Backend then cache", func(t *testing.T) {
		// Arrange
		client := new(mocks.Client)
		directory := service.NewProductDirectory(client, newMemCache(), testCacheConfig)
		product := &models.Product{ID: "p9", Name: "Mug", CurrentStock: 4, SellingPrice: decimal.NewFromInt(8)}
		client.On("GetProduct", mock.Anything, "p9").Return(product, nil).Once()

		// Act
		first, err := directory.Get(t.Context(), "p9")
		require.NoError(t, err)
		second, err := directory.Get(t.Context(), "p9")

		// Assert
		require.NoError(t, err)
		assert.Equal(t, "Mug", first.Name)
		assert.Equal(t, "Mug", second.Name)
		_, ok := directory.Lookup("p9")
		assert.True(t, ok, "fetched products are remembered")
		client.AssertNumberOfCalls(t, "GetProduct", 1)
	})

	t.Run("Success - Cache hit keeps the fresher snapshot stock", func(t *testing.T) {
		// Arrange
		client := new(mocks.Client)
		memory := newMemCache()
		directory := service.NewProductDirectory(client, memory, testCacheConfig)
		client.On("ListProducts", mock.Anything).Return(catalog, nil).Once()
		require.NoError(t, directory.Refresh(t.Context()))

		stale := catalog[0]
		stale.CurrentStock = 2
		require.NoError(t, memory.Set(t.Context(), cache.Key(cache.ProductKeyPrefix, "p1"), stale, 0))

		// Act
		got, err := directory.Get(t.Context(), "p1")

		// Assert
		require.NoError(t, err)
		assert.Equal(t, "Cola", got.Name)
		p, ok := directory.Lookup("p1")
		require.True(t, ok)
		assert.Equal(t, 10, p.CurrentStock)
		assert.Len(t, directory.Products(), 2)
		client.AssertNotCalled(t, "GetProduct", mock.Anything, mock.Anything)
	})

	t.Run("Success - Cache hit remembers an unknown product", func(t *testing.T) {
		// Arrange
		client := new(mocks.Client)
		memory := newMemCache()
		directory := service.NewProductDirectory(client, memory, testCacheConfig)
		mug := models.Product{ID: "p9", Name: "Mug", CurrentStock: 4, SellingPrice: decimal.NewFromInt(8)}
		require.NoError(t, memory.Set(t.Context(), cache.Key(cache.ProductKeyPrefix, "p9"), mug, 0))

		// Act
		_, err := directory.Get(t.Context(), "p9")

		// Assert
		require.NoError(t, err)
		p, ok := directory.Lookup("p9")
		require.True(t, ok)
		assert.Equal(t, 4, p.CurrentStock)
	})

	t.Run("Success - Cache read failure goes to the backend", func(t *testing.T) {
		// Arrange
		client := new(mocks.Client)
		memory := newMemCache()
		memory.failGet = true
		directory := service.NewProductDirectory(client, memory, testCacheConfig)
		client.On("GetProduct", mock.Anything, "p1").Return(&catalog[0], nil).Once()

		// Act
		product, err := directory.Get(t.Context(), "p1")

		// Assert
		require.NoError(t, err)
		assert.Equal(t, "Cola", product.Name)
	})

	t.Run("Failure - Not found", func(t *testing.T) {
		// Arrange
		client := new(mocks.Client)
		directory := service.NewProductDirectory(client, cache.NewNoopCache(), testCacheConfig)
		client.On("GetProduct", mock.Anything, "ghost").Return(nil, &backend.StatusError{StatusCode: 404, Message: "no such product"}).Once()

		// Act
		product, err := directory.Get(t.Context(), "ghost")

		// Assert
		assert.Nil(t, product)
		assert.True(t, appErrors.HasCode(err, appErrors.ErrCodeNotFound))
	})

	t.Run("Failure - Transport", func(t *testing.T) {
		// Arrange
		client := new(mocks.Client)
		directory := service.NewProductDirectory(client, cache.NewNoopCache(), testCacheConfig)
		client.On("GetProduct", mock.Anything, "p1").Return(nil, errors.New("timeout")).Once()

		// Act
		_, err := directory.Get(t.Context(), "p1")

		// Assert
		assert.True(t, appErrors.HasCode(err, appErrors.ErrCodeTransport))
	})

	t.Run("Failure - Empty id", func(t *testing.T) {
		directory := service.NewProductDirectory(new(mocks.Client), cache.NewNoopCache(), testCacheConfig)

		_, err := directory.Get(t.Context(), "")

		assert.True(t, appErrors.HasCode(err, appErrors.ErrCodeValidation))
	})
}

func TestDirectoryRemember(t *testing.T) {
	directory := service.NewProductDirectory(new(mocks.Client), cache.NewNoopCache(), testCacheConfig)

	directory.Remember(models.Product{ID: "a", Name: "First"})
	directory.Remember(models.Product{ID: "b", Name: "Second"})
	directory.Remember(models.Product{ID: "a", Name: "First v2", CurrentStock: 7})
	directory.Remember(models.Product{})

	products := directory.Products()
	require.Len(t, products, 2)
	assert.Equal(t, "First v2", products[0].Name)
	assert.Equal(t, 7, products[0].CurrentStock)
	assert.Equal(t, "b", products[1].ID)
}
