package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de movimiento de stock.
const (
	MovementTypeEntrada       = "ENTRADA"
	MovementTypeSalida        = "SALIDA"
	MovementTypeAjuste        = "AJUSTE"
	MovementTypeTransferencia = "TRANSFERENCIA"
)

// StockMovement es un registro inmutable del libro de movimientos: todo evento
// que afecta stock queda aquí, solo-append. Las correcciones se modelan como
// nuevos movimientos AJUSTE con delta firmado, nunca mutando el historial.
type StockMovement struct {
	ID           string
	IngredientID string
	LotID        string          // opcional: vacío para ajustes agregados
	Type         string          // ENTRADA, SALIDA, AJUSTE, TRANSFERENCIA
	Quantity     decimal.Decimal // delta firmado: positivo entra, negativo sale
	Reference    string          // correlación: id de orden, de consumo o nota
	Date         time.Time
	CreatedAt    time.Time
}
