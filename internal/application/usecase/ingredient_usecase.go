package usecase

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/despensa-api/internal/application/dto"
	"github.com/jhoicas/despensa-api/internal/domain"
	"github.com/jhoicas/despensa-api/internal/domain/entity"
	"github.com/jhoicas/despensa-api/internal/domain/repository"
)

// IngredientUseCase casos de uso CRUD para ingredientes. El stock nunca se
// edita aquí: se deriva de lotes y se mueve vía consumo, recepciones y ajustes.
type IngredientUseCase struct {
	repo repository.IngredientRepository
}

// NewIngredientUseCase construye el caso de uso.
func NewIngredientUseCase(repo repository.IngredientRepository) *IngredientUseCase {
	return &IngredientUseCase{repo: repo}
}

// Create crea un ingrediente activo.
func (uc *IngredientUseCase) Create(in dto.CreateIngredientRequest) (*dto.IngredientResponse, error) {
	if in.Name == "" || in.UnitMeasure == "" {
		return nil, domain.ErrInvalidInput
	}
	if in.MinStock.LessThan(decimal.Zero) {
		return nil, domain.ErrInvalidInput
	}
	now := time.Now()
	ingredient := &entity.Ingredient{
		ID:          uuid.New().String(),
		Name:        in.Name,
		Category:    in.Category,
		UnitMeasure: in.UnitMeasure,
		MinStock:    in.MinStock,
		Active:      true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := uc.repo.Create(ingredient); err != nil {
		return nil, err
	}
	return toIngredientResponse(ingredient), nil
}

// GetByID obtiene un ingrediente por ID. Devuelve nil si no existe.
func (uc *IngredientUseCase) GetByID(id string) (*dto.IngredientResponse, error) {
	ingredient, err := uc.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if ingredient == nil {
		return nil, nil
	}
	return toIngredientResponse(ingredient), nil
}

// Update actualiza campos editables (nombre, categoría, unidad, umbral, activo).
func (uc *IngredientUseCase) Update(id string, in dto.UpdateIngredientRequest) (*dto.IngredientResponse, error) {
	ingredient, err := uc.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if ingredient == nil {
		return nil, nil
	}
	if in.Name != nil {
		ingredient.Name = *in.Name
	}
	if in.Category != nil {
		ingredient.Category = *in.Category
	}
	if in.UnitMeasure != nil {
		ingredient.UnitMeasure = *in.UnitMeasure
	}
	if in.MinStock != nil {
		if in.MinStock.LessThan(decimal.Zero) {
			return nil, domain.ErrInvalidInput
		}
		ingredient.MinStock = *in.MinStock
	}
	if in.Active != nil {
		ingredient.Active = *in.Active
	}
	ingredient.UpdatedAt = time.Now()
	if err := uc.repo.Update(ingredient); err != nil {
		return nil, err
	}
	return toIngredientResponse(ingredient), nil
}

// List lista ingredientes con paginación.
func (uc *IngredientUseCase) List(limit, offset int) (*dto.IngredientListResponse, error) {
	list, err := uc.repo.List(limit, offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.IngredientResponse, 0, len(list))
	for _, ing := range list {
		items = append(items, *toIngredientResponse(ing))
	}
	return &dto.IngredientListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: limit, Offset: offset},
	}, nil
}

func toIngredientResponse(i *entity.Ingredient) *dto.IngredientResponse {
	if i == nil {
		return nil
	}
	return &dto.IngredientResponse{
		ID:          i.ID,
		Name:        i.Name,
		Category:    i.Category,
		UnitMeasure: i.UnitMeasure,
		MinStock:    i.MinStock,
		Active:      i.Active,
		CreatedAt:   i.CreatedAt,
		UpdatedAt:   i.UpdatedAt,
	}
}
