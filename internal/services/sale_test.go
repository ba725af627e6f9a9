package service_test

import (
	"errors"
	"testing"

	"github.com/aaravmahajanofficial/pos-terminal/internal/cart"
	appErrors "github.com/aaravmahajanofficial/pos-terminal/internal/errors"
	"github.com/aaravmahajanofficial/pos-terminal/internal/models"
	service "github.com/aaravmahajanofficial/pos-terminal/internal/services"
	"github.com/aaravmahajanofficial/pos-terminal/pkg/backend"
	"github.com/aaravmahajanofficial/pos-terminal/pkg/backend/mocks"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func filledCart(t *testing.T) *cart.Cart {
	t.Helper()

	c := cart.New(nil, cart.DefaultTaxRate)
	require.NoError(t, c.AddItem(models.Product{ID: "p1", Name: "Cola", CurrentStock: 10, SellingPrice: decimal.NewFromInt(100)}, ""))
	require.NoError(t, c.AddItem(models.Product{
		ID: "p2", Name: "Tee", CurrentStock: 5, SellingPrice: decimal.NewFromInt(20), HasSizes: true,
		SizeOptions: []models.SizeOption{{Value: "m", Label: "M"}},
	}, "m"))
	require.NoError(t, c.SetDiscount(cart.NewLineKey("p1", ""), decimal.NewFromInt(10)))

	return c
}

func TestSubmit(t *testing.T) {
	validate := validator.New()

	t.Run("Success - Sale accepted, cart cleared and receipt journaled", func(t *testing.T) {
		// Arrange
		client := new(mocks.Client)
		journal := new(mockJournal)
		svc := service.NewSaleService(client, journal, validate)
		c := filledCart(t)

		client.On("CreateSale", mock.Anything, mock.MatchedBy(func(req *models.CreateSaleRequest) bool {
			return len(req.Items) == 2 &&
				req.Items[0].ProductID == "p1" && req.Items[0].Discount.Equal(decimal.NewFromInt(10)) &&
				req.Items[1].Size == "m" &&
				req.PaymentMethod == models.PaymentMethodCard &&
				req.CustomerName == "Ada" &&
				req.Discount.IsZero()
		})).Return(&models.Sale{ID: "s1", SaleNumber: "SALE-0042"}, nil).Once()
		journal.On("CreateReceipt", mock.Anything, mock.MatchedBy(func(r *models.Receipt) bool {
			return r.SaleNumber == "SALE-0042"
		})).Return(nil).Once()

		// Act
		receipt, err := svc.Submit(t.Context(), c, &models.CheckoutRequest{
			PaymentMethod: models.PaymentMethodCard,
			CustomerName:  "<b>Ada</b>",
		})

		// Assert
		require.NoError(t, err)
		assert.Equal(t, "SALE-0042", receipt.SaleNumber)
		assert.True(t, decimal.NewFromInt(120).Equal(receipt.Subtotal))
		assert.True(t, decimal.NewFromInt(10).Equal(receipt.TotalDiscount))
		assert.True(t, decimal.RequireFromString("9").Equal(receipt.Tax))
		assert.True(t, decimal.RequireFromString("119").Equal(receipt.GrandTotal))
		assert.Equal(t, 0, c.Len())
		client.AssertExpectations(t)
		journal.AssertExpectations(t)
	})

	t.Run("Success - Order discount and journal failure", func(t *testing.T) {
		// Arrange
		client := new(mocks.Client)
		journal := new(mockJournal)
		svc := service.NewSaleService(client, journal, validate)
		c := filledCart(t)
		discount := decimal.NewFromInt(5)

		client.On("CreateSale", mock.Anything, mock.MatchedBy(func(req *models.CreateSaleRequest) bool {
			return req.Discount.Equal(discount)
		})).Return(&models.Sale{ID: "s2", SaleNumber: "SALE-0043"}, nil).Once()
		journal.On("CreateReceipt", mock.Anything, mock.Anything).Return(errors.New("db down")).Once()

		// Act
		receipt, err := svc.Submit(t.Context(), c, &models.CheckoutRequest{PaymentMethod: models.PaymentMethodCash, Discount: &discount})

		// Assert
		require.NoError(t, err)
		assert.True(t, decimal.NewFromInt(114).Equal(receipt.GrandTotal))
		assert.Equal(t, 0, c.Len())
	})

	t.Run("Success - No journal configured", func(t *testing.T) {
		// Arrange
		client := new(mocks.Client)
		svc := service.NewSaleService(client, nil, validate)
		c := filledCart(t)
		client.On("CreateSale", mock.Anything, mock.Anything).Return(&models.Sale{ID: "s3", SaleNumber: "SALE-0044"}, nil).Once()

		// Act
		receipt, err := svc.Submit(t.Context(), c, &models.CheckoutRequest{PaymentMethod: models.PaymentMethodMobileMoney})

		// Assert
		require.NoError(t, err)
		assert.Equal(t, "SALE-0044", receipt.SaleNumber)
	})

	t.Run("Success - Line added while the sale is sent stays in the cart", func(t *testing.T) {
		// Arrange
		client := new(mocks.Client)
		svc := service.NewSaleService(client, nil, validate)
		c := filledCart(t)
		late := models.Product{ID: "p9", Name: "Gum", CurrentStock: 4, SellingPrice: decimal.NewFromInt(2)}

		client.On("CreateSale", mock.Anything, mock.MatchedBy(func(req *models.CreateSaleRequest) bool {
			return len(req.Items) == 2
		})).Run(func(args mock.Arguments) {
			require.NoError(t, c.AddItem(late, ""))
			require.NoError(t, c.AddItem(models.Product{ID: "p1", Name: "Cola", CurrentStock: 10, SellingPrice: decimal.NewFromInt(100)}, ""))
		}).Return(&models.Sale{ID: "s5", SaleNumber: "SALE-0045"}, nil).Once()

		// Act
		receipt, err := svc.Submit(t.Context(), c, &models.CheckoutRequest{PaymentMethod: models.PaymentMethodCash})

		// Assert
		require.NoError(t, err)
		assert.True(t, decimal.RequireFromString("119").Equal(receipt.GrandTotal))
		assert.Equal(t, 2, c.Len())
		assert.Equal(t, 1, c.Quantity(cart.NewLineKey("p9", "")))
		assert.Equal(t, 1, c.Quantity(cart.NewLineKey("p1", "")))
		assert.Zero(t, c.Quantity(cart.NewLineKey("p2", "m")))
		client.AssertExpectations(t)
	})

	t.Run("Failure - Second checkout while one is in flight", func(t *testing.T) {
		// Arrange
		client := new(mocks.Client)
		svc := service.NewSaleService(client, nil, validate)
		c := filledCart(t)
		var concurrentErr error

		client.On("CreateSale", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
			_, concurrentErr = svc.Submit(t.Context(), c, &models.CheckoutRequest{PaymentMethod: models.PaymentMethodCash})
		}).Return(&models.Sale{ID: "s6", SaleNumber: "SALE-0046"}, nil).Once()

		// Act
		_, err := svc.Submit(t.Context(), c, &models.CheckoutRequest{PaymentMethod: models.PaymentMethodCash})

		// Assert
		require.NoError(t, err)
		assert.True(t, appErrors.HasCode(concurrentErr, appErrors.ErrCodeConflict))
		assert.Equal(t, 0, c.Len())
		client.AssertNumberOfCalls(t, "CreateSale", 1)
	})

	t.Run("Failure - Rejected sale releases the checkout", func(t *testing.T) {
		// Arrange
		client := new(mocks.Client)
		svc := service.NewSaleService(client, nil, validate)
		c := filledCart(t)
		client.On("CreateSale", mock.Anything, mock.Anything).Return(nil, &backend.StatusError{StatusCode: 502}).Once()
		client.On("CreateSale", mock.Anything, mock.Anything).Return(&models.Sale{ID: "s7", SaleNumber: "SALE-0047"}, nil).Once()

		// Act
		_, firstErr := svc.Submit(t.Context(), c, &models.CheckoutRequest{PaymentMethod: models.PaymentMethodCash})
		receipt, err := svc.Submit(t.Context(), c, &models.CheckoutRequest{PaymentMethod: models.PaymentMethodCash})

		// Assert
		assert.True(t, appErrors.HasCode(firstErr, appErrors.ErrCodeSubmissionFailed))
		require.NoError(t, err)
		assert.Equal(t, "SALE-0047", receipt.SaleNumber)
		assert.Equal(t, 0, c.Len())
	})

	t.Run("Failure - Backend rejects, cart untouched", func(t *testing.T) {
		// Arrange
		client := new(mocks.Client)
		journal := new(mockJournal)
		svc := service.NewSaleService(client, journal, validate)
		c := filledCart(t)
		before := c.View()
		client.On("CreateSale", mock.Anything, mock.Anything).Return(nil, &backend.StatusError{StatusCode: 502}).Once()

		// Act
		receipt, err := svc.Submit(t.Context(), c, &models.CheckoutRequest{PaymentMethod: models.PaymentMethodCash})

		// Assert
		assert.Nil(t, receipt)
		assert.True(t, appErrors.HasCode(err, appErrors.ErrCodeSubmissionFailed))
		after := c.View()
		assert.Len(t, after.Items, len(before.Items))
		assert.True(t, before.Totals.GrandTotal.Equal(after.Totals.GrandTotal))
		journal.AssertNotCalled(t, "CreateReceipt", mock.Anything, mock.Anything)
	})

	t.Run("Failure - Empty cart", func(t *testing.T) {
		// Arrange
		client := new(mocks.Client)
		svc := service.NewSaleService(client, nil, validate)

		// Act
		_, err := svc.Submit(t.Context(), cart.New(nil, cart.DefaultTaxRate), &models.CheckoutRequest{PaymentMethod: models.PaymentMethodCash})

		// Assert
		assert.True(t, appErrors.HasCode(err, appErrors.ErrCodeBadRequest))
		client.AssertNotCalled(t, "CreateSale", mock.Anything, mock.Anything)
	})

	t.Run("Failure - Unknown payment method", func(t *testing.T) {
		// Arrange
		client := new(mocks.Client)
		svc := service.NewSaleService(client, nil, validate)

		// Act
		_, err := svc.Submit(t.Context(), filledCart(t), &models.CheckoutRequest{PaymentMethod: "barter"})

		// Assert
		assert.True(t, appErrors.HasCode(err, appErrors.ErrCodeValidation))
		client.AssertNotCalled(t, "CreateSale", mock.Anything, mock.Anything)
	})

	t.Run("Failure - Negative order discount", func(t *testing.T) {
		// Arrange
		client := new(mocks.Client)
		svc := service.NewSaleService(client, nil, validate)
		discount := decimal.NewFromInt(-1)

		// Act
		_, err := svc.Submit(t.Context(), filledCart(t), &models.CheckoutRequest{PaymentMethod: models.PaymentMethodCash, Discount: &discount})

		// Assert
		assert.True(t, appErrors.HasCode(err, appErrors.ErrCodeValidation))
	})
}

func TestListReceipts(t *testing.T) {
	t.Run("Success - From journal", func(t *testing.T) {
		// Arrange
		journal := new(mockJournal)
		svc := service.NewSaleService(new(mocks.Client), journal, validator.New())
		journal.On("ListReceipts", mock.Anything, 1, 10).Return([]*models.Receipt{{SaleNumber: "SALE-1"}}, 1, nil).Once()

		// Act
		receipts, total, err := svc.ListReceipts(t.Context(), 1, 10)

		// Assert
		require.NoError(t, err)
		assert.Equal(t, 1, total)
		assert.Len(t, receipts, 1)
	})

	t.Run("Success - No journal", func(t *testing.T) {
		svc := service.NewSaleService(new(mocks.Client), nil, validator.New())

		receipts, total, err := svc.ListReceipts(t.Context(), 1, 10)

		require.NoError(t, err)
		assert.Zero(t, total)
		assert.Empty(t, receipts)
	})

	t.Run("Failure - Database error", func(t *testing.T) {
		// Arrange
		journal := new(mockJournal)
		svc := service.NewSaleService(new(mocks.Client), journal, validator.New())
		journal.On("ListReceipts", mock.Anything, 1, 10).Return(nil, 0, errors.New("db down")).Once()

		// Act
		_, _, err := svc.ListReceipts(t.Context(), 1, 10)

		// Assert
		assert.True(t, appErrors.HasCode(err, appErrors.ErrCodeDatabaseError))
	})
}
