package handlers

import (
	"log/slog"
	"net/http"

	"github.com/aaravmahajanofficial/pos-terminal/internal/cart"
	"github.com/aaravmahajanofficial/pos-terminal/internal/errors"
	"github.com/aaravmahajanofficial/pos-terminal/internal/models"
	service "github.com/aaravmahajanofficial/pos-terminal/internal/services"
	"github.com/aaravmahajanofficial/pos-terminal/internal/utils"
	"github.com/aaravmahajanofficial/pos-terminal/internal/utils/response"
	"github.com/go-playground/validator/v10"
)

type CartHandler struct {
	sessions  service.SessionService
	validator *validator.Validate
}

func NewCartHandler(sessions service.SessionService, validate *validator.Validate) *CartHandler {
	return &CartHandler{sessions: sessions, validator: validate}
}

func (h *CartHandler) GetCart() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		session, _, ok := loadSession(w, r, h.sessions)
		if !ok {
			return
		}

		response.Success(w, http.StatusOK, session.Cart.View())
	}
}

// AddItem godoc
//	@Summary		Add a product to the cart
//	@Description	Adds one unit. The same product in another size is a separate line.
//	@Tags			Cart
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string					true	"Session ID"	Format(uuid)
//	@Param			item	body		models.AddItemRequest	true	"Product and optional size"
//	@Success		200		{object}	models.CartView
//	@Failure		400		{object}	response.ErrorResponse	"Out of stock or unknown size"
//	@Failure		404		{object}	response.ErrorResponse	"Session or product not found"
//	@Security		BearerAuth
//	@Router			/sessions/{id}/cart/items [post]
func (h *CartHandler) AddItem() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		session, logger, ok := loadSession(w, r, h.sessions)
		if !ok {
			return
		}

		var req models.AddItemRequest
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			logger.Warn("Invalid add item input")
			return
		}

		product, err := session.Directory.Get(r.Context(), req.ProductID)
		if err != nil {
			logger.Error("Failed to resolve product", slog.String("productId", req.ProductID), slog.String("error", err.Error()))
			response.Error(w, err)
			return
		}

		if err := session.Cart.AddItem(*product, req.Size); err != nil {
			logger.Warn("Item rejected", slog.String("productId", req.ProductID), slog.String("error", err.Error()))
			response.Error(w, err)
			return
		}

		logger.Info("Item added", slog.String("productId", req.ProductID), slog.String("size", req.Size))
		response.Success(w, http.StatusOK, session.Cart.View())
	}
}

// UpdateItem changes exactly one of quantity, unit price or discount on a line.
func (h *CartHandler) UpdateItem() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		session, logger, ok := loadSession(w, r, h.sessions)
		if !ok {
			return
		}

		var req models.UpdateItemRequest
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			logger.Warn("Invalid update item input")
			return
		}

		set := 0
		for _, present := range []bool{req.Quantity != nil, req.UnitPrice != nil, req.Discount != nil} {
			if present {
				set++
			}
		}
		if set != 1 {
			response.Error(w, errors.ValidationError("Exactly one of quantity, unitPrice or discount is required"))
			return
		}

		key := cart.NewLineKey(req.ProductID, req.Size)

		var err error
		switch {
		case req.Quantity != nil:
			err = session.Cart.SetQuantity(key, *req.Quantity)
		case req.UnitPrice != nil:
			err = session.Cart.SetUnitPrice(key, *req.UnitPrice)
		default:
			err = session.Cart.SetDiscount(key, *req.Discount)
		}

		if err != nil {
			logger.Warn("Line update rejected", slog.String("line", key.String()), slog.String("error", err.Error()))
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusOK, session.Cart.View())
	}
}

func (h *CartHandler) RemoveItem() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		session, logger, ok := loadSession(w, r, h.sessions)
		if !ok {
			return
		}

		var req models.LineRequest
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			logger.Warn("Invalid remove item input")
			return
		}

		session.Cart.RemoveItem(cart.NewLineKey(req.ProductID, req.Size))

		response.Success(w, http.StatusOK, session.Cart.View())
	}
}

func (h *CartHandler) DecrementItem() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		session, logger, ok := loadSession(w, r, h.sessions)
		if !ok {
			return
		}

		var req models.LineRequest
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			logger.Warn("Invalid decrement input")
			return
		}

		if err := session.Cart.Decrement(cart.NewLineKey(req.ProductID, req.Size)); err != nil {
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusOK, session.Cart.View())
	}
}

func (h *CartHandler) ClearCart() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		session, logger, ok := loadSession(w, r, h.sessions)
		if !ok {
			return
		}

		session.Cart.Clear()
		logger.Info("Cart cleared")

		response.Success(w, http.StatusOK, session.Cart.View())
	}
}
