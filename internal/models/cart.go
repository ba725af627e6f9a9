package models

import "github.com/shopspring/decimal"

type CartItem struct {
	ProductID string          `json:"productId"`
	Name      string          `json:"name"`
	Size      string          `json:"size,omitempty"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Discount  decimal.Decimal `json:"discount"`
	LineTotal decimal.Decimal `json:"lineTotal"`
}

type CartTotals struct {
	Subtotal      decimal.Decimal `json:"subtotal"`
	TotalDiscount decimal.Decimal `json:"totalDiscount"`
	Tax           decimal.Decimal `json:"tax"`
	GrandTotal    decimal.Decimal `json:"grandTotal"`
}

type CartView struct {
	Items  []CartItem `json:"items"`
	Totals CartTotals `json:"totals"`
}

type AddItemRequest struct {
	ProductID string `json:"productId" validate:"required"`
	Size      string `json:"size,omitempty"`
}

type LineRequest struct {
	ProductID string `json:"productId" validate:"required"`
	Size      string `json:"size,omitempty"`
}

// UpdateItemRequest carries exactly one of quantity, unitPrice or discount.
type UpdateItemRequest struct {
	ProductID string           `json:"productId" validate:"required"`
	Size      string           `json:"size,omitempty"`
	Quantity  *int             `json:"quantity,omitempty"`
	UnitPrice *decimal.Decimal `json:"unitPrice,omitempty"`
	Discount  *decimal.Decimal `json:"discount,omitempty"`
}
