package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/aaravmahajanofficial/pos-terminal/internal/api/middleware"
	"github.com/aaravmahajanofficial/pos-terminal/internal/cart"
	"github.com/aaravmahajanofficial/pos-terminal/internal/errors"
	"github.com/aaravmahajanofficial/pos-terminal/internal/models"
	repository "github.com/aaravmahajanofficial/pos-terminal/internal/repositories"
	"github.com/aaravmahajanofficial/pos-terminal/internal/utils"
	"github.com/aaravmahajanofficial/pos-terminal/pkg/backend"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"github.com/shopspring/decimal"
)

type SaleService interface {
	Submit(ctx context.Context, c *cart.Cart, req *models.CheckoutRequest) (*models.Receipt, error)
	ListReceipts(ctx context.Context, page, size int) ([]*models.Receipt, int, error)
}

type saleService struct {
	client   backend.Client
	journal  repository.ReceiptRepository
	validate *validator.Validate
	policy   *bluemonday.Policy
}

// NewSaleService builds the checkout path. journal may be nil, in which case receipts are not kept.
func NewSaleService(client backend.Client, journal repository.ReceiptRepository, validate *validator.Validate) SaleService {
	return &saleService{
		client:   client,
		journal:  journal,
		validate: validate,
		policy:   bluemonday.StrictPolicy(),
	}
}

// Submit sends the cart as one sale. The submitted lines leave the cart only
// after the backend accepts it, and a second checkout on the same cart is
// refused while one is in flight.
func (s *saleService) Submit(ctx context.Context, c *cart.Cart, req *models.CheckoutRequest) (*models.Receipt, error) {
	logger := middleware.LoggerFromContext(ctx)

	view, err := c.BeginCheckout()
	if err != nil {
		return nil, err
	}

	sold := false
	defer func() { c.EndCheckout(view.Items, sold) }()

	discount := decimal.Zero
	if req.Discount != nil {
		discount = *req.Discount
	}

	if discount.IsNegative() {
		return nil, errors.AddValidationError("discount", "must not be negative")
	}

	if discount.GreaterThan(view.Totals.GrandTotal) {
		return nil, errors.AddValidationError("discount", "must not exceed the grand total")
	}

	items := make([]models.SaleItem, 0, len(view.Items))
	for _, item := range view.Items {
		items = append(items, models.SaleItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			Discount:  item.Discount,
			Size:      item.Size,
		})
	}

	saleReq := &models.CreateSaleRequest{
		Items:         items,
		PaymentMethod: req.PaymentMethod,
		CustomerName:  s.sanitize(req.CustomerName),
		Notes:         s.sanitize(req.Notes),
		Discount:      discount,
	}

	if err := utils.ValidateStruct(s.validate, saleReq); err != nil {
		return nil, errors.ValidationError("Invalid sale").WithError(err)
	}

	sale, err := s.client.CreateSale(ctx, saleReq)
	if err != nil {
		logger.Error("Sale submission failed",
			slog.Int("lines", len(items)),
			slog.String("error", err.Error()),
		)
		if backend.IsUnauthorized(err) {
			return nil, errors.UnauthorizedError("Backend rejected the session token").WithError(err)
		}
		return nil, errors.SubmissionError("Failed to complete sale").WithError(err)
	}

	sold = true

	receipt := &models.Receipt{
		ID:            uuid.New(),
		SaleID:        sale.ID,
		SaleNumber:    sale.SaleNumber,
		PaymentMethod: saleReq.PaymentMethod,
		CustomerName:  saleReq.CustomerName,
		Subtotal:      view.Totals.Subtotal,
		TotalDiscount: view.Totals.TotalDiscount.Add(discount),
		Tax:           view.Totals.Tax,
		GrandTotal:    view.Totals.GrandTotal.Sub(discount),
		CreatedAt:     time.Now().UTC(),
	}

	logger.Info("Sale completed",
		slog.String("sale_number", receipt.SaleNumber),
		slog.String("grand_total", receipt.GrandTotal.String()),
	)

	if s.journal != nil {
		if err := s.journal.CreateReceipt(ctx, receipt); err != nil {
			logger.Warn("Failed to journal receipt", slog.String("sale_number", receipt.SaleNumber), slog.String("error", err.Error()))
		}
	}

	return receipt, nil
}

func (s *saleService) ListReceipts(ctx context.Context, page, size int) ([]*models.Receipt, int, error) {
	if s.journal == nil {
		return []*models.Receipt{}, 0, nil
	}

	receipts, total, err := s.journal.ListReceipts(ctx, page, size)
	if err != nil {
		return nil, 0, errors.DatabaseError("Failed to list receipts").WithError(err)
	}

	return receipts, total, nil
}

func (s *saleService) sanitize(v string) string {
	return strings.TrimSpace(s.policy.Sanitize(v))
}
