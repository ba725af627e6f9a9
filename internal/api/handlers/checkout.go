package handlers

import (
	"log/slog"
	"net/http"

	"github.com/aaravmahajanofficial/pos-terminal/internal/api/middleware"
	"github.com/aaravmahajanofficial/pos-terminal/internal/models"
	service "github.com/aaravmahajanofficial/pos-terminal/internal/services"
	"github.com/aaravmahajanofficial/pos-terminal/internal/utils"
	"github.com/aaravmahajanofficial/pos-terminal/internal/utils/response"
	"github.com/go-playground/validator/v10"
)

type CheckoutHandler struct {
	sessions  service.SessionService
	sales     service.SaleService
	validator *validator.Validate
}

func NewCheckoutHandler(sessions service.SessionService, sales service.SaleService, validate *validator.Validate) *CheckoutHandler {
	return &CheckoutHandler{sessions: sessions, sales: sales, validator: validate}
}

// Checkout godoc
//	@Summary		Complete the sale
//	@Description	Submits the cart as one sale. Only the submitted lines leave the cart, and only when the backend accepts it.
//	@Tags			Checkout
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string					true	"Session ID"	Format(uuid)
//	@Param			sale	body		models.CheckoutRequest	true	"Payment details"
//	@Success		201		{object}	models.Receipt
//	@Failure		400		{object}	response.ErrorResponse	"Empty cart or invalid payment details"
//	@Failure		409		{object}	response.ErrorResponse	"Another checkout for this cart is in progress"
//	@Failure		502		{object}	response.ErrorResponse	"Backend did not accept the sale; the cart is unchanged"
//	@Security		BearerAuth
//	@Router			/sessions/{id}/checkout [post]
func (h *CheckoutHandler) Checkout() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		session, logger, ok := loadSession(w, r, h.sessions)
		if !ok {
			return
		}

		var req models.CheckoutRequest
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			logger.Warn("Invalid checkout input")
			return
		}

		receipt, err := h.sales.Submit(r.Context(), session.Cart, &req)
		if err != nil {
			logger.Error("Checkout failed", slog.String("error", err.Error()))
			response.Error(w, err)
			return
		}

		logger.Info("Checkout completed", slog.String("saleNumber", receipt.SaleNumber))
		response.Success(w, http.StatusCreated, receipt)
	}
}

// for eg: GET /receipts?page=1&pageSize=10
func (h *CheckoutHandler) ListReceipts() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		page, pageSize := utils.ParsePagination(r)

		receipts, total, err := h.sales.ListReceipts(r.Context(), page, pageSize)
		if err != nil {
			logger.Error("Failed to list receipts", slog.String("error", err.Error()))
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusOK, models.PaginatedResponse{
			Data:     receipts,
			Total:    total,
			Page:     page,
			PageSize: pageSize,
		})
	}
}
