package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/despensa-api/internal/domain/entity"
	"github.com/jhoicas/despensa-api/internal/domain/repository"
)

var _ repository.LotRepository = (*LotRepo)(nil)

// LotRepo implementación de LotRepository sobre PostgreSQL (usable con pool o tx).
// Sin Delete: los lotes se retienen como rastro de auditoría.
type LotRepo struct {
	q Querier
}

// NewLotRepository construye el adaptador. Pasar pool o tx (Querier).
func NewLotRepository(q Querier) *LotRepo {
	return &LotRepo{q: q}
}

const lotColumns = `id, ingredient_id, received_qty, remaining_qty, expiry_date, state, created_at, updated_at`

// Create persiste un lote.
func (r *LotRepo) Create(lot *entity.Lot) error {
	query := `
		INSERT INTO lots (` + lotColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.q.Exec(context.Background(), query,
		lot.ID, lot.IngredientID, lot.ReceivedQty, lot.RemainingQty,
		lot.ExpiryDate, lot.State, lot.CreatedAt, lot.UpdatedAt,
	)
	if err != nil {
		return storageErr("create lot", err)
	}
	return nil
}

// GetByID obtiene un lote por ID. Devuelve nil si no existe.
func (r *LotRepo) GetByID(id string) (*entity.Lot, error) {
	query := `SELECT ` + lotColumns + ` FROM lots WHERE id = $1`
	var l entity.Lot
	err := r.q.QueryRow(context.Background(), query, id).Scan(
		&l.ID, &l.IngredientID, &l.ReceivedQty, &l.RemainingQty, &l.ExpiryDate, &l.State, &l.CreatedAt, &l.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, storageErr("get lot", err)
	}
	return &l, nil
}

// Update persiste remanente y estado del lote.
func (r *LotRepo) Update(lot *entity.Lot) error {
	query := `
		UPDATE lots
		SET remaining_qty = $2, state = $3, updated_at = $4
		WHERE id = $1`
	_, err := r.q.Exec(context.Background(), query, lot.ID, lot.RemainingQty, lot.State, lot.UpdatedAt)
	if err != nil {
		return storageErr("update lot", err)
	}
	return nil
}

// ListByIngredient lista los lotes de un ingrediente, vencimiento ascendente.
func (r *LotRepo) ListByIngredient(ingredientID string) ([]*entity.Lot, error) {
	query := `
		SELECT ` + lotColumns + ` FROM lots
		WHERE ingredient_id = $1
		ORDER BY expiry_date, id`
	rows, err := r.q.Query(context.Background(), query, ingredientID)
	if err != nil {
		return nil, storageErr("list lots", err)
	}
	defer rows.Close()
	return scanLots(rows)
}

// ListByIngredientForUpdate bloquea los lotes del ingrediente (SELECT FOR
// UPDATE): un solo escritor por ingrediente mientras dure la transacción.
func (r *LotRepo) ListByIngredientForUpdate(ingredientID string) ([]*entity.Lot, error) {
	query := `
		SELECT ` + lotColumns + ` FROM lots
		WHERE ingredient_id = $1
		ORDER BY expiry_date, id
		FOR UPDATE`
	rows, err := r.q.Query(context.Background(), query, ingredientID)
	if err != nil {
		return nil, storageErr("list lots for update", err)
	}
	defer rows.Close()
	return scanLots(rows)
}

// ListExpiringBefore lista lotes Disponibles con vencimiento <= cutoff.
func (r *LotRepo) ListExpiringBefore(cutoff time.Time) ([]*entity.Lot, error) {
	query := `
		SELECT ` + lotColumns + ` FROM lots
		WHERE state = $1 AND expiry_date <= $2
		ORDER BY expiry_date, id`
	rows, err := r.q.Query(context.Background(), query, entity.LotStateDisponible, cutoff)
	if err != nil {
		return nil, storageErr("list expiring lots", err)
	}
	defer rows.Close()
	return scanLots(rows)
}

// ListExpiredCandidates lista lotes vencidos a la fecha aún no marcados
// Vencido. ingredientID vacío barre todos los ingredientes.
func (r *LotRepo) ListExpiredCandidates(now time.Time, ingredientID string) ([]*entity.Lot, error) {
	query := `
		SELECT ` + lotColumns + ` FROM lots
		WHERE expiry_date < $1 AND state <> $2`
	args := []any{now, entity.LotStateVencido}
	if ingredientID != "" {
		query += ` AND ingredient_id = $3`
		args = append(args, ingredientID)
	}
	query += ` ORDER BY expiry_date, id FOR UPDATE`
	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, storageErr("list expired candidates", err)
	}
	defer rows.Close()
	return scanLots(rows)
}

func scanLots(rows pgx.Rows) ([]*entity.Lot, error) {
	var list []*entity.Lot
	for rows.Next() {
		var l entity.Lot
		if err := rows.Scan(&l.ID, &l.IngredientID, &l.ReceivedQty, &l.RemainingQty, &l.ExpiryDate, &l.State, &l.CreatedAt, &l.UpdatedAt); err != nil {
			return nil, storageErr("scan lot", err)
		}
		list = append(list, &l)
	}
	return list, rows.Err()
}
