package models

import (
	"time"

	"github.com/google/uuid"
)

type SessionResponse struct {
	ID        uuid.UUID `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
}

type SearchQueryRequest struct {
	Query string `json:"query" validate:"required,max=200"`
}

type ChooseProductRequest struct {
	ProductID string `json:"productId" validate:"required"`
}

type SelectSizeRequest struct {
	Size string `json:"size" validate:"required"`
}
