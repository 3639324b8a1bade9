package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/despensa-api/internal/domain/entity"
	"github.com/jhoicas/despensa-api/internal/domain/repository"
)

var _ repository.StockMovementRepository = (*StockMovementRepo)(nil)

// StockMovementRepo implementación del libro de movimientos sobre PostgreSQL.
// Solo INSERT y SELECT: el historial jamás se actualiza ni se borra.
type StockMovementRepo struct {
	q Querier
}

// NewStockMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockMovementRepository(q Querier) *StockMovementRepo {
	return &StockMovementRepo{q: q}
}

const movementColumns = `id, ingredient_id, lot_id, type, quantity, reference, date, created_at`

// Create agrega un movimiento al libro.
func (r *StockMovementRepo) Create(movement *entity.StockMovement) error {
	query := `
		INSERT INTO stock_movements (` + movementColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	lotID := (*string)(nil)
	if movement.LotID != "" {
		lotID = &movement.LotID
	}
	_, err := r.q.Exec(context.Background(), query,
		movement.ID, movement.IngredientID, lotID, movement.Type,
		movement.Quantity, movement.Reference, movement.Date, movement.CreatedAt,
	)
	if err != nil {
		return storageErr("create stock movement", err)
	}
	return nil
}

// ListByIngredient lista movimientos de un ingrediente en un rango de fechas
// opcional, ascendente por fecha (orden del rastro de auditoría).
func (r *StockMovementRepo) ListByIngredient(ingredientID string, from, to *time.Time, limit, offset int) ([]*entity.StockMovement, error) {
	query := `
		SELECT ` + movementColumns + ` FROM stock_movements WHERE ingredient_id = $1`
	args := []any{ingredientID}
	pos := 2
	if from != nil {
		query += fmt.Sprintf(" AND date >= $%d", pos)
		args = append(args, *from)
		pos++
	}
	if to != nil {
		query += fmt.Sprintf(" AND date <= $%d", pos)
		args = append(args, *to)
		pos++
	}
	query += fmt.Sprintf(" ORDER BY date, created_at LIMIT $%d OFFSET $%d", pos, pos+1)
	args = append(args, limit, offset)

	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, storageErr("list movements by ingredient", err)
	}
	defer rows.Close()
	return scanMovements(rows)
}

// ListByLot lista los movimientos que tocaron un lote, ascendente por fecha.
func (r *StockMovementRepo) ListByLot(lotID string) ([]*entity.StockMovement, error) {
	query := `
		SELECT ` + movementColumns + ` FROM stock_movements
		WHERE lot_id = $1
		ORDER BY date, created_at`
	rows, err := r.q.Query(context.Background(), query, lotID)
	if err != nil {
		return nil, storageErr("list movements by lot", err)
	}
	defer rows.Close()
	return scanMovements(rows)
}

func scanMovements(rows pgx.Rows) ([]*entity.StockMovement, error) {
	var list []*entity.StockMovement
	for rows.Next() {
		var m entity.StockMovement
		var lotID *string
		if err := rows.Scan(&m.ID, &m.IngredientID, &lotID, &m.Type, &m.Quantity, &m.Reference, &m.Date, &m.CreatedAt); err != nil {
			return nil, storageErr("scan movement", err)
		}
		if lotID != nil {
			m.LotID = *lotID
		}
		list = append(list, &m)
	}
	return list, rows.Err()
}
