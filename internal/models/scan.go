package models

import "github.com/shopspring/decimal"

// Match is a partial product record returned by image recognition or search.
type Match struct {
	ProductID    string          `json:"productId"`
	Name         string          `json:"name,omitempty"`
	Category     string          `json:"category,omitempty"`
	SellingPrice decimal.Decimal `json:"sellingPrice"`
	CurrentStock int             `json:"currentStock"`
	HasSizes     bool            `json:"hasSizes"`
	Confidence   float64         `json:"confidence,omitempty"`
	MatchScore   float64         `json:"matchScore,omitempty"`
}

type ScanResult struct {
	Success      bool     `json:"success"`
	SearchTerms  []string `json:"searchTerms,omitempty"`
	PrimaryMatch *Match   `json:"primaryMatch,omitempty"`
	Alternatives []Match  `json:"alternatives,omitempty"`
}

type SearchRequest struct {
	Query string `json:"query" validate:"required,min=1,max=200"`
	Limit int    `json:"limit" validate:"gte=1,lte=100"`
}

type ScanOutcomeKind string

const (
	ScanMatched   ScanOutcomeKind = "matched"
	ScanAmbiguous ScanOutcomeKind = "ambiguous"
	ScanNoMatch   ScanOutcomeKind = "no_match"
)

// ScanOutcome is a classified ScanResult. Transport and processing failures are errors, not outcomes.
type ScanOutcome struct {
	Kind         ScanOutcomeKind `json:"kind"`
	Primary      *Match          `json:"primary,omitempty"`
	Alternatives []Match         `json:"alternatives,omitempty"`
	SearchTerms  []string        `json:"searchTerms,omitempty"`
}
