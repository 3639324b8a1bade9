package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Ingredient representa un insumo perecedero de cocina (harina, leche, pollo...).
// El stock nunca se guarda aquí: se deriva de los lotes Disponibles del ingrediente.
type Ingredient struct {
	ID          string
	Name        string
	Category    string          // lácteos, carnes, secos, etc.
	UnitMeasure string          // kg, l, und
	MinStock    decimal.Decimal // umbral de reorden
	Active      bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// RequiresRestock indica si el disponible está por debajo del umbral mínimo.
func (i *Ingredient) RequiresRestock(available decimal.Decimal) bool {
	return available.LessThan(i.MinStock)
}
