package repository

import (
	"time"

	"github.com/jhoicas/despensa-api/internal/domain/entity"
)

// LotRepository define el puerto de persistencia para lotes. Los lotes nunca se
// borran; solo se crean y se actualizan (remanente y estado).
type LotRepository interface {
	Create(lot *entity.Lot) error
	GetByID(id string) (*entity.Lot, error)
	Update(lot *entity.Lot) error
	ListByIngredient(ingredientID string) ([]*entity.Lot, error)
	// ListByIngredientForUpdate bloquea los lotes del ingrediente dentro de la
	// transacción en curso (SELECT FOR UPDATE): serializa a los escritores
	// concurrentes sobre un mismo ingrediente.
	ListByIngredientForUpdate(ingredientID string) ([]*entity.Lot, error)
	// ListExpiringBefore lista lotes Disponibles con vencimiento <= cutoff,
	// ascendente por vencimiento.
	ListExpiringBefore(cutoff time.Time) ([]*entity.Lot, error)
	// ListExpiredCandidates lista lotes vencidos a la fecha que aún no están
	// marcados Vencido: la entrada del barrido de reclasificación.
	ListExpiredCandidates(now time.Time, ingredientID string) ([]*entity.Lot, error)
}
