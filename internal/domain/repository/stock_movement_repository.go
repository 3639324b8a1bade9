package repository

import (
	"time"

	"github.com/jhoicas/despensa-api/internal/domain/entity"
)

// StockMovementRepository define el puerto del libro de movimientos.
// Solo-append: no existe Update ni Delete; las correcciones entran como
// nuevos movimientos AJUSTE.
type StockMovementRepository interface {
	Create(movement *entity.StockMovement) error
	// ListByIngredient lista movimientos de un ingrediente en un rango de
	// fechas opcional, ascendente por fecha.
	ListByIngredient(ingredientID string, from, to *time.Time, limit, offset int) ([]*entity.StockMovement, error)
	ListByLot(lotID string) ([]*entity.StockMovement, error)
}
