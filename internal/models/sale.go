package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type PaymentMethod string

const (
	PaymentMethodCash         PaymentMethod = "cash"
	PaymentMethodCard         PaymentMethod = "card"
	PaymentMethodBankTransfer PaymentMethod = "bank_transfer"
	PaymentMethodMobileMoney  PaymentMethod = "mobile_money"
)

type SaleItem struct {
	ProductID string          `json:"productId" validate:"required"`
	Quantity  int             `json:"quantity" validate:"required,min=1"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Discount  decimal.Decimal `json:"discount"`
	Size      string          `json:"size,omitempty"`
}

type CreateSaleRequest struct {
	Items         []SaleItem      `json:"items" validate:"required,min=1,dive"`
	PaymentMethod PaymentMethod   `json:"paymentMethod" validate:"required,oneof=cash card bank_transfer mobile_money"`
	CustomerName  string          `json:"customerName,omitempty" validate:"max=120"`
	Notes         string          `json:"notes,omitempty" validate:"max=500"`
	Discount      decimal.Decimal `json:"discount"`
}

type Sale struct {
	ID         string `json:"id"`
	SaleNumber string `json:"saleNumber"`
}

type CheckoutRequest struct {
	PaymentMethod PaymentMethod    `json:"paymentMethod" validate:"required,oneof=cash card bank_transfer mobile_money"`
	CustomerName  string           `json:"customerName,omitempty" validate:"max=120"`
	Notes         string           `json:"notes,omitempty" validate:"max=500"`
	Discount      *decimal.Decimal `json:"discount,omitempty"`
}

type Receipt struct {
	ID            uuid.UUID       `json:"id"`
	SaleID        string          `json:"saleId"`
	SaleNumber    string          `json:"saleNumber"`
	PaymentMethod PaymentMethod   `json:"paymentMethod"`
	CustomerName  string          `json:"customerName,omitempty"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	TotalDiscount decimal.Decimal `json:"totalDiscount"`
	Tax           decimal.Decimal `json:"tax"`
	GrandTotal    decimal.Decimal `json:"grandTotal"`
	CreatedAt     time.Time       `json:"createdAt"`
}
