package repository

import "github.com/jhoicas/despensa-api/internal/domain/entity"

// IngredientRepository define el puerto de persistencia para Ingredient (DIP).
type IngredientRepository interface {
	Create(ingredient *entity.Ingredient) error
	GetByID(id string) (*entity.Ingredient, error)
	Update(ingredient *entity.Ingredient) error
	List(limit, offset int) ([]*entity.Ingredient, error)
	ListActive() ([]*entity.Ingredient, error)
}
