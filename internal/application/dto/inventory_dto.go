package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateLotRequest body para POST /api/inventory/lots (alta manual de lote).
type CreateLotRequest struct {
	IngredientID string          `json:"ingredient_id"`
	Quantity     decimal.Decimal `json:"quantity"`
	ExpiryDate   time.Time       `json:"expiry_date"`
	Reference    string          `json:"reference,omitempty"`
}

// LotResponse representación de un lote.
type LotResponse struct {
	ID           string          `json:"id"`
	IngredientID string          `json:"ingredient_id"`
	ReceivedQty  decimal.Decimal `json:"received_qty"`
	RemainingQty decimal.Decimal `json:"remaining_qty"`
	ExpiryDate   time.Time       `json:"expiry_date"`
	State        string          `json:"state"`
	CreatedAt    time.Time       `json:"created_at"`
}

// ConsumeRequest body para POST /api/inventory/consume.
type ConsumeRequest struct {
	IngredientID string          `json:"ingredient_id"`
	Quantity     decimal.Decimal `json:"quantity"`
	Reference    string          `json:"reference,omitempty"` // comanda o receta
}

// AdjustmentRequest body para POST /api/inventory/adjustments.
type AdjustmentRequest struct {
	IngredientID string          `json:"ingredient_id"`
	LotID        string          `json:"lot_id,omitempty"`
	Quantity     decimal.Decimal `json:"quantity"` // delta firmado
	Reference    string          `json:"reference,omitempty"`
}

// StockSummaryResponse disponible derivado de lotes + bandera de reposición.
type StockSummaryResponse struct {
	IngredientID    string          `json:"ingredient_id"`
	Name            string          `json:"name"`
	UnitMeasure     string          `json:"unit_measure"`
	Available       decimal.Decimal `json:"available"`
	MinStock        decimal.Decimal `json:"min_stock"`
	RequiresRestock bool            `json:"requires_restock"`
}

// ReorderCandidateDTO ingrediente activo por debajo de su umbral de reorden.
type ReorderCandidateDTO struct {
	IngredientID string          `json:"ingredient_id"`
	Name         string          `json:"name"`
	Category     string          `json:"category"`
	UnitMeasure  string          `json:"unit_measure"`
	Available    decimal.Decimal `json:"available"`
	MinStock     decimal.Decimal `json:"min_stock"`
	Deficit      decimal.Decimal `json:"deficit"`
}

// ExpiringLotDTO lote Disponible próximo a vencer.
type ExpiringLotDTO struct {
	LotID        string          `json:"lot_id"`
	IngredientID string          `json:"ingredient_id"`
	RemainingQty decimal.Decimal `json:"remaining_qty"`
	ExpiryDate   time.Time       `json:"expiry_date"`
	DaysLeft     int             `json:"days_left"`
}

// MovementResponse entrada del libro de movimientos.
type MovementResponse struct {
	ID           string          `json:"id"`
	IngredientID string          `json:"ingredient_id"`
	LotID        string          `json:"lot_id,omitempty"`
	Type         string          `json:"type"`
	Quantity     decimal.Decimal `json:"quantity"`
	Reference    string          `json:"reference,omitempty"`
	Date         time.Time       `json:"date"`
}

// SweepResponse resultado del barrido de vencidos.
type SweepResponse struct {
	AffectedLots []string `json:"affected_lots"`
	Total        int      `json:"total"`
}
