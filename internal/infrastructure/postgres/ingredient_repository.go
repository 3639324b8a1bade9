package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/despensa-api/internal/domain"
	"github.com/jhoicas/despensa-api/internal/domain/entity"
	"github.com/jhoicas/despensa-api/internal/domain/repository"
)

var _ repository.IngredientRepository = (*IngredientRepo)(nil)

// IngredientRepo implementación de IngredientRepository sobre PostgreSQL
// (usable con pool o tx).
type IngredientRepo struct {
	q Querier
}

// NewIngredientRepository construye el adaptador. Pasar pool o tx (Querier).
func NewIngredientRepository(q Querier) *IngredientRepo {
	return &IngredientRepo{q: q}
}

const ingredientColumns = `id, name, category, unit_measure, min_stock, active, created_at, updated_at`

// Create persiste un ingrediente.
func (r *IngredientRepo) Create(ingredient *entity.Ingredient) error {
	query := `
		INSERT INTO ingredients (` + ingredientColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.q.Exec(context.Background(), query,
		ingredient.ID, ingredient.Name, ingredient.Category, ingredient.UnitMeasure,
		ingredient.MinStock, ingredient.Active, ingredient.CreatedAt, ingredient.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return storageErr("create ingredient", err)
	}
	return nil
}

// GetByID obtiene un ingrediente por ID. Devuelve nil si no existe.
func (r *IngredientRepo) GetByID(id string) (*entity.Ingredient, error) {
	query := `SELECT ` + ingredientColumns + ` FROM ingredients WHERE id = $1`
	var i entity.Ingredient
	err := r.q.QueryRow(context.Background(), query, id).Scan(
		&i.ID, &i.Name, &i.Category, &i.UnitMeasure, &i.MinStock, &i.Active, &i.CreatedAt, &i.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, storageErr("get ingredient", err)
	}
	return &i, nil
}

// Update actualiza los campos editables del ingrediente.
func (r *IngredientRepo) Update(ingredient *entity.Ingredient) error {
	query := `
		UPDATE ingredients
		SET name = $2, category = $3, unit_measure = $4, min_stock = $5, active = $6, updated_at = $7
		WHERE id = $1`
	_, err := r.q.Exec(context.Background(), query,
		ingredient.ID, ingredient.Name, ingredient.Category, ingredient.UnitMeasure,
		ingredient.MinStock, ingredient.Active, ingredient.UpdatedAt,
	)
	if err != nil {
		return storageErr("update ingredient", err)
	}
	return nil
}

// List lista ingredientes paginados, ordenados por nombre.
func (r *IngredientRepo) List(limit, offset int) ([]*entity.Ingredient, error) {
	query := `SELECT ` + ingredientColumns + ` FROM ingredients ORDER BY name LIMIT $1 OFFSET $2`
	rows, err := r.q.Query(context.Background(), query, limit, offset)
	if err != nil {
		return nil, storageErr("list ingredients", err)
	}
	defer rows.Close()
	return scanIngredients(rows)
}

// ListActive lista los ingredientes activos (entrada de los candidatos a reorden).
func (r *IngredientRepo) ListActive() ([]*entity.Ingredient, error) {
	query := `SELECT ` + ingredientColumns + ` FROM ingredients WHERE active = true ORDER BY id`
	rows, err := r.q.Query(context.Background(), query)
	if err != nil {
		return nil, storageErr("list active ingredients", err)
	}
	defer rows.Close()
	return scanIngredients(rows)
}

func scanIngredients(rows pgx.Rows) ([]*entity.Ingredient, error) {
	var list []*entity.Ingredient
	for rows.Next() {
		var i entity.Ingredient
		if err := rows.Scan(&i.ID, &i.Name, &i.Category, &i.UnitMeasure, &i.MinStock, &i.Active, &i.CreatedAt, &i.UpdatedAt); err != nil {
			return nil, storageErr("scan ingredient", err)
		}
		list = append(list, &i)
	}
	return list, rows.Err()
}
