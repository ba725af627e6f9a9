package backend_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aaravmahajanofficial/pos-terminal/internal/models"
	"github.com/aaravmahajanofficial/pos-terminal/pkg/backend"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testToken = "test-token"

type observed struct {
	operation string
	outcome   string
}

func setupClient(t *testing.T, handler http.HandlerFunc) (backend.Client, *[]observed) {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	var calls []observed
	client := backend.NewClient(server.URL,
		backend.WithHTTPClient(server.Client()),
		backend.WithRetries(2),
		backend.WithObserver(func(op, outcome string, _ time.Duration) {
			calls = append(calls, observed{operation: op, outcome: outcome})
		}),
	)

	return client, &calls
}

func authedContext(t *testing.T) context.Context {
	t.Helper()
	return backend.WithToken(t.Context(), testToken)
}

func writeEnvelope(t *testing.T, w http.ResponseWriter, status int, data any) {
	t.Helper()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	require.NoError(t, json.NewEncoder(w).Encode(map[string]any{"success": status < 400, "data": data}))
}

func TestScanImage(t *testing.T) {
	t.Run("Success - Primary match", func(t *testing.T) {
		// Arrange
		client, calls := setupClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/ai/scan", r.URL.Path)
			assert.Equal(t, "Bearer "+testToken, r.Header.Get("Authorization"))

			file, header, err := r.FormFile("image")
			require.NoError(t, err)
			defer file.Close()
			data, _ := io.ReadAll(file)
			assert.Equal(t, "jpegbytes", string(data))
			assert.Equal(t, "shot.jpg", header.Filename)

			writeEnvelope(t, w, http.StatusOK, map[string]any{
				"success":      true,
				"searchTerms":  []string{"cola", "can"},
				"primaryMatch": map[string]any{"productId": "p1", "confidence": 0.92},
				"alternatives": []map[string]any{{"productId": "p2", "matchScore": 0.4}},
			})
		})

		// Act
		result, err := client.ScanImage(authedContext(t), backend.Image{Filename: "shot.jpg", Data: strings.NewReader("jpegbytes")})

		// Assert
		require.NoError(t, err)
		assert.True(t, result.Success)
		require.NotNil(t, result.PrimaryMatch)
		assert.Equal(t, "p1", result.PrimaryMatch.ProductID)
		assert.InDelta(t, 0.92, result.PrimaryMatch.Confidence, 1e-9)
		require.Len(t, result.Alternatives, 1)
		assert.InDelta(t, 0.4, result.Alternatives[0].MatchScore, 1e-9)
		assert.Equal(t, []string{"cola", "can"}, result.SearchTerms)
		assert.Equal(t, []observed{{"scan_image", "success"}}, *calls)
	})

	t.Run("Failure - Server error is not retried", func(t *testing.T) {
		// Arrange
		var hits atomic.Int32
		client, _ := setupClient(t, func(w http.ResponseWriter, r *http.Request) {
			hits.Add(1)
			writeEnvelope(t, w, http.StatusInternalServerError, nil)
		})

		// Act
		result, err := client.ScanImage(authedContext(t), backend.Image{Data: strings.NewReader("x")})

		// Assert
		require.Error(t, err)
		assert.Nil(t, result)
		var statusErr *backend.StatusError
		assert.ErrorAs(t, err, &statusErr)
		assert.Equal(t, int32(1), hits.Load())
	})

	t.Run("Failure - Missing token", func(t *testing.T) {
		// Arrange
		client, _ := setupClient(t, func(w http.ResponseWriter, r *http.Request) {
			t.Fatal("backend must not be called without a token")
		})

		// Act
		_, err := client.ScanImage(t.Context(), backend.Image{Data: strings.NewReader("x")})

		// Assert
		assert.ErrorIs(t, err, backend.ErrMissingToken)
	})
}

func TestGetSizeOptions(t *testing.T) {
	t.Run("Success - Retries temporary failures", func(t *testing.T) {
		// Arrange
		var hits atomic.Int32
		client, calls := setupClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/ai/products/p%201/sizes", r.URL.EscapedPath())
			if hits.Add(1) == 1 {
				writeEnvelope(t, w, http.StatusServiceUnavailable, nil)
				return
			}
			writeEnvelope(t, w, http.StatusOK, []models.SizeOption{{Value: "s", Label: "Small"}, {Value: "m", Label: "Medium"}})
		})

		// Act
		sizes, err := client.GetSizeOptions(authedContext(t), "p 1")

		// Assert
		require.NoError(t, err)
		assert.Equal(t, []models.SizeOption{{Value: "s", Label: "Small"}, {Value: "m", Label: "Medium"}}, sizes)
		assert.Equal(t, int32(2), hits.Load())
		assert.Equal(t, "success", (*calls)[0].outcome)
	})

	t.Run("Failure - Not found is permanent", func(t *testing.T) {
		// Arrange
		var hits atomic.Int32
		client, calls := setupClient(t, func(w http.ResponseWriter, r *http.Request) {
			hits.Add(1)
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"success":false,"error":{"code":"NOT_FOUND","message":"no such product"}}`))
		})

		// Act
		sizes, err := client.GetSizeOptions(authedContext(t), "missing")

		// Assert
		require.Error(t, err)
		assert.Nil(t, sizes)
		assert.True(t, backend.IsNotFound(err))
		assert.Contains(t, err.Error(), "no such product")
		assert.Equal(t, int32(1), hits.Load())
		assert.Equal(t, "http_404", (*calls)[0].outcome)
	})
}

func TestSearchProducts(t *testing.T) {
	t.Run("Success - Empty result", func(t *testing.T) {
		// Arrange
		client, _ := setupClient(t, func(w http.ResponseWriter, r *http.Request) {
			var req models.SearchRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, "blue mug", req.Query)
			assert.Equal(t, 10, req.Limit)
			writeEnvelope(t, w, http.StatusOK, []models.Product{})
		})

		// Act
		products, err := client.SearchProducts(authedContext(t), "blue mug", 10)

		// Assert
		require.NoError(t, err)
		assert.Empty(t, products)
	})
}

func TestGetProduct(t *testing.T) {
	client, _ := setupClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/products/p1", r.URL.Path)
		writeEnvelope(t, w, http.StatusOK, map[string]any{
			"id": "p1", "name": "Cola", "currentStock": 12, "sellingPrice": "1.25", "hasSizes": false,
		})
	})

	product, err := client.GetProduct(authedContext(t), "p1")

	require.NoError(t, err)
	assert.Equal(t, "Cola", product.Name)
	assert.Equal(t, 12, product.CurrentStock)
	assert.True(t, decimal.RequireFromString("1.25").Equal(product.SellingPrice))
}

func TestCreateSale(t *testing.T) {
	t.Run("Success - Returns sale number", func(t *testing.T) {
		// Arrange
		client, _ := setupClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/sales", r.URL.Path)
			var req models.CreateSaleRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, models.PaymentMethodCash, req.PaymentMethod)
			require.Len(t, req.Items, 1)
			writeEnvelope(t, w, http.StatusCreated, models.Sale{ID: "s1", SaleNumber: "SALE-0001"})
		})

		// Act
		sale, err := client.CreateSale(authedContext(t), &models.CreateSaleRequest{
			Items:         []models.SaleItem{{ProductID: "p1", Quantity: 1, UnitPrice: decimal.NewFromInt(5)}},
			PaymentMethod: models.PaymentMethodCash,
		})

		// Assert
		require.NoError(t, err)
		assert.Equal(t, "SALE-0001", sale.SaleNumber)
	})

	t.Run("Failure - Not retried on server error", func(t *testing.T) {
		// Arrange
		var hits atomic.Int32
		client, _ := setupClient(t, func(w http.ResponseWriter, r *http.Request) {
			hits.Add(1)
			writeEnvelope(t, w, http.StatusBadGateway, nil)
		})

		// Act
		sale, err := client.CreateSale(authedContext(t), &models.CreateSaleRequest{PaymentMethod: models.PaymentMethodCard})

		// Assert
		require.Error(t, err)
		assert.Nil(t, sale)
		assert.Equal(t, int32(1), hits.Load())
	})
}

func TestStatusErrorTemporary(t *testing.T) {
	assert.True(t, (&backend.StatusError{StatusCode: 503}).Temporary())
	assert.True(t, (&backend.StatusError{StatusCode: 429}).Temporary())
	assert.False(t, (&backend.StatusError{StatusCode: 400}).Temporary())
	assert.False(t, (&backend.StatusError{StatusCode: 200}).Temporary())
}
