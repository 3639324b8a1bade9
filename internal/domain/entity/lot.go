package entity

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/despensa-api/internal/domain"
)

// Estados de un lote.
const (
	LotStateDisponible = "DISPONIBLE"
	LotStateAgotado    = "AGOTADO"
	LotStateVencido    = "VENCIDO"
	LotStateReservado  = "RESERVADO"
)

// Lot es un lote fechado de un ingrediente: la unidad física de stock.
// Invariantes: RemainingQty >= 0; RemainingQty == 0 implica Agotado (salvo que ya
// esté Vencido); ExpiryDate < now implica Vencido sin importar el remanente.
// Los lotes nunca se borran: quedan como rastro de auditoría.
type Lot struct {
	ID           string
	IngredientID string
	ReceivedQty  decimal.Decimal
	RemainingQty decimal.Decimal
	ExpiryDate   time.Time
	State        string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NewLot crea un lote Disponible. Rechaza cantidades no positivas y vencimientos pasados.
func NewLot(ingredientID string, qty decimal.Decimal, expiry, now time.Time) (*Lot, error) {
	if ingredientID == "" || !qty.GreaterThan(decimal.Zero) {
		return nil, domain.ErrInvalidInput
	}
	if expiry.Before(now) {
		return nil, domain.ErrInvalidInput
	}
	return &Lot{
		IngredientID: ingredientID,
		ReceivedQty:  qty,
		RemainingQty: qty,
		ExpiryDate:   expiry,
		State:        LotStateDisponible,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// IsExpired indica si el lote ya venció respecto a now.
func (l *Lot) IsExpired(now time.Time) bool {
	return l.ExpiryDate.Before(now)
}

// Eligible indica si el Consumption Allocator puede debitar este lote:
// Disponible, no vencido y con remanente.
func (l *Lot) Eligible(now time.Time) bool {
	return l.State == LotStateDisponible && !l.IsExpired(now) && l.RemainingQty.GreaterThan(decimal.Zero)
}

// Debit descuenta amount del remanente. Pasa a Agotado al llegar a cero.
func (l *Lot) Debit(amount decimal.Decimal, now time.Time) error {
	if !amount.GreaterThan(decimal.Zero) {
		return domain.ErrInvalidInput
	}
	if l.State != LotStateDisponible || l.IsExpired(now) {
		return domain.ErrInvalidState
	}
	if amount.GreaterThan(l.RemainingQty) {
		return domain.ErrInsufficientStock
	}
	l.RemainingQty = l.RemainingQty.Sub(amount)
	if l.RemainingQty.IsZero() {
		l.State = LotStateAgotado
	}
	l.UpdatedAt = now
	return nil
}

// Reserve aparta el lote: deja de ser elegible para nuevas asignaciones.
func (l *Lot) Reserve(now time.Time) error {
	if l.State != LotStateDisponible {
		return domain.ErrInvalidState
	}
	l.State = LotStateReservado
	l.UpdatedAt = now
	return nil
}

// Release devuelve un lote Reservado a Disponible.
func (l *Lot) Release(now time.Time) error {
	if l.State != LotStateReservado {
		return domain.ErrInvalidState
	}
	l.State = LotStateDisponible
	l.UpdatedAt = now
	return nil
}

// ReclassifyIfExpired transiciona a Vencido si corresponde. Devuelve true solo
// cuando hubo cambio de estado, lo que hace la operación idempotente.
func (l *Lot) ReclassifyIfExpired(now time.Time) bool {
	if l.State == LotStateVencido || !l.IsExpired(now) {
		return false
	}
	l.State = LotStateVencido
	l.UpdatedAt = now
	return true
}
