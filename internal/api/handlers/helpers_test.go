package handlers_test

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/aaravmahajanofficial/pos-terminal/internal/cart"
	"github.com/aaravmahajanofficial/pos-terminal/internal/models"
	"github.com/aaravmahajanofficial/pos-terminal/internal/scanner"
	service "github.com/aaravmahajanofficial/pos-terminal/internal/services"
	"github.com/aaravmahajanofficial/pos-terminal/internal/services/mocks"
	"github.com/aaravmahajanofficial/pos-terminal/internal/utils/response"
	"github.com/aaravmahajanofficial/pos-terminal/pkg/backend"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const testUserID = "user-1"

var (
	cola = &models.Product{ID: "cola", Name: "Cola", CurrentStock: 3, SellingPrice: decimal.RequireFromString("1.50")}
	tee  = &models.Product{
		ID: "tee", Name: "Tee", CurrentStock: 5, SellingPrice: decimal.NewFromInt(15), HasSizes: true,
		SizeOptions: []models.SizeOption{{Value: "s", Label: "Small"}, {Value: "m", Label: "Medium"}},
	}
)

type mockResolver struct {
	mock.Mock
}

func (m *mockResolver) ScanImage(ctx context.Context, image backend.Image) (*models.ScanOutcome, error) {
	args := m.Called(ctx, image)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ScanOutcome), args.Error(1)
}

func (m *mockResolver) FetchSizeOptions(ctx context.Context, productID string) []models.SizeOption {
	args := m.Called(ctx, productID)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).([]models.SizeOption)
}

func (m *mockResolver) SearchByText(ctx context.Context, query string) ([]models.Product, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Product), args.Error(1)
}

type fixture struct {
	sessions  *mocks.SessionService
	directory *mocks.ProductDirectory
	resolver  *mockResolver
	session   *service.Session
}

// newFixture wires a real cart and scanner to mocked collaborators, the way SessionService.Open does.
func newFixture(t *testing.T) *fixture {
	t.Helper()

	directory := new(mocks.ProductDirectory)
	directory.On("Lookup", mock.Anything).Return(models.Product{}, false).Maybe()
	directory.On("Remember", mock.Anything).Return().Maybe()

	resolver := new(mockResolver)
	c := cart.New(directory, cart.DefaultTaxRate)

	session := &service.Session{
		ID:        uuid.New(),
		CreatedAt: time.Now().UTC(),
		Cart:      c,
		Directory: directory,
		Scanner: scanner.New(resolver, directory, func(_ context.Context, item scanner.Resolved) error {
			directory.Remember(item.Product)
			return c.AddItem(item.Product, item.Size)
		}),
	}

	sessions := new(mocks.SessionService)
	sessions.On("Get", session.ID).Return(session, nil).Maybe()

	return &fixture{sessions: sessions, directory: directory, resolver: resolver, session: session}
}

func (f *fixture) params() map[string]string {
	return map[string]string{"id": f.session.ID.String()}
}

// decodeData unwraps the APIResponse envelope into dest.
func decodeData(t *testing.T, rr *httptest.ResponseRecorder, dest any) response.APIResponse {
	t.Helper()

	var resp response.APIResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))

	if dest != nil {
		raw, err := json.Marshal(resp.Data)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(raw, dest))
	}

	return resp
}
