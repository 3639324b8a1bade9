package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateIngredientRequest body para POST /api/ingredients.
type CreateIngredientRequest struct {
	Name        string          `json:"name"`
	Category    string          `json:"category"`
	UnitMeasure string          `json:"unit_measure"`
	MinStock    decimal.Decimal `json:"min_stock"`
}

// UpdateIngredientRequest body para PUT /api/ingredients/:id (campos opcionales).
type UpdateIngredientRequest struct {
	Name        *string          `json:"name,omitempty"`
	Category    *string          `json:"category,omitempty"`
	UnitMeasure *string          `json:"unit_measure,omitempty"`
	MinStock    *decimal.Decimal `json:"min_stock,omitempty"`
	Active      *bool            `json:"active,omitempty"`
}

// IngredientResponse representación de un ingrediente.
type IngredientResponse struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Category    string          `json:"category"`
	UnitMeasure string          `json:"unit_measure"`
	MinStock    decimal.Decimal `json:"min_stock"`
	Active      bool            `json:"active"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// IngredientListResponse listado paginado.
type IngredientListResponse struct {
	Items []IngredientResponse `json:"items"`
	Page  PageResponse         `json:"page"`
}
