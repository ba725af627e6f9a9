package models

import "github.com/shopspring/decimal"

type SizeOption struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

type Product struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	SKU          string          `json:"sku,omitempty"`
	Category     string          `json:"category"`
	Unit         string          `json:"unit"`
	CurrentStock int             `json:"currentStock"`
	SellingPrice decimal.Decimal `json:"sellingPrice"`
	HasSizes     bool            `json:"hasSizes"`
	SizeOptions  []SizeOption    `json:"sizeOptions,omitempty"`
}

func (p *Product) InStock() bool {
	return p.CurrentStock > 0
}

// HasSize reports whether value is one of the product's size options.
func (p *Product) HasSize(value string) bool {
	for _, opt := range p.SizeOptions {
		if opt.Value == value {
			return true
		}
	}

	return false
}

type ProductListResponse struct {
	Products []Product `json:"products"`
	Total    int       `json:"total"`
}
