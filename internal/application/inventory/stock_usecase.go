package inventory

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/despensa-api/internal/application/dto"
	"github.com/jhoicas/despensa-api/internal/domain"
	domInventory "github.com/jhoicas/despensa-api/internal/domain/inventory"
	"github.com/jhoicas/despensa-api/internal/domain/repository"
)

// StockQueryUseCase deriva las cantidades agregadas de un ingrediente desde sus
// lotes y señala necesidad de reposición. Solo lecturas: ningún método muta.
type StockQueryUseCase struct {
	ingredientRepo repository.IngredientRepository
	lotRepo        repository.LotRepository
	clock          Clock
}

// NewStockQueryUseCase construye el caso de uso.
func NewStockQueryUseCase(
	ingredientRepo repository.IngredientRepository,
	lotRepo repository.LotRepository,
	clock Clock,
) *StockQueryUseCase {
	return &StockQueryUseCase{
		ingredientRepo: ingredientRepo,
		lotRepo:        lotRepo,
		clock:          clock,
	}
}

// GetAvailableQuantity suma el remanente de los lotes Disponibles no vencidos
// del ingrediente. O(lotes): los conteos por ingrediente son pequeños, acotados
// por la rotación de vida útil.
func (uc *StockQueryUseCase) GetAvailableQuantity(ctx context.Context, ingredientID string) (decimal.Decimal, error) {
	ingredient, err := uc.ingredientRepo.GetByID(ingredientID)
	if err != nil {
		return decimal.Zero, err
	}
	if ingredient == nil {
		return decimal.Zero, domain.ErrNotFound
	}
	lots, err := uc.lotRepo.ListByIngredient(ingredientID)
	if err != nil {
		return decimal.Zero, err
	}
	return domInventory.AvailableQuantity(lots, uc.clock.Now()), nil
}

// GetStockSummary devuelve disponible, umbral y bandera de reposición.
func (uc *StockQueryUseCase) GetStockSummary(ctx context.Context, ingredientID string) (*dto.StockSummaryResponse, error) {
	ingredient, err := uc.ingredientRepo.GetByID(ingredientID)
	if err != nil {
		return nil, err
	}
	if ingredient == nil {
		return nil, domain.ErrNotFound
	}
	lots, err := uc.lotRepo.ListByIngredient(ingredientID)
	if err != nil {
		return nil, err
	}
	available := domInventory.AvailableQuantity(lots, uc.clock.Now())
	return &dto.StockSummaryResponse{
		IngredientID:    ingredient.ID,
		Name:            ingredient.Name,
		UnitMeasure:     ingredient.UnitMeasure,
		Available:       available,
		MinStock:        ingredient.MinStock,
		RequiresRestock: ingredient.RequiresRestock(available),
	}, nil
}

// GetReorderCandidates lista los ingredientes activos cuyo disponible está por
// debajo del umbral mínimo, ordenados por ID para que el resultado sea
// determinista.
func (uc *StockQueryUseCase) GetReorderCandidates(ctx context.Context) ([]dto.ReorderCandidateDTO, error) {
	ingredients, err := uc.ingredientRepo.ListActive()
	if err != nil {
		return nil, err
	}
	now := uc.clock.Now()

	candidates := make([]dto.ReorderCandidateDTO, 0)
	for _, ing := range ingredients {
		lots, err := uc.lotRepo.ListByIngredient(ing.ID)
		if err != nil {
			return nil, err
		}
		available := domInventory.AvailableQuantity(lots, now)
		if !ing.RequiresRestock(available) {
			continue
		}
		candidates = append(candidates, dto.ReorderCandidateDTO{
			IngredientID: ing.ID,
			Name:         ing.Name,
			Category:     ing.Category,
			UnitMeasure:  ing.UnitMeasure,
			Available:    available,
			MinStock:     ing.MinStock,
			Deficit:      ing.MinStock.Sub(available),
		})
	}
	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].IngredientID < candidates[j].IngredientID
	})
	return candidates, nil
}

// GetLotsExpiringWithin lista lotes Disponibles que vencen dentro de days días,
// ascendente por vencimiento (el más próximo primero): la misma ordenación que
// usa el asignador FEFO como desempate.
func (uc *StockQueryUseCase) GetLotsExpiringWithin(ctx context.Context, days int) ([]dto.ExpiringLotDTO, error) {
	if days < 0 {
		return nil, domain.ErrInvalidInput
	}
	now := uc.clock.Now()
	cutoff := now.Add(time.Duration(days) * 24 * time.Hour)
	lots, err := uc.lotRepo.ListExpiringBefore(cutoff)
	if err != nil {
		return nil, err
	}
	domInventory.SortByExpiry(lots)

	result := make([]dto.ExpiringLotDTO, 0, len(lots))
	for _, l := range lots {
		result = append(result, dto.ExpiringLotDTO{
			LotID:        l.ID,
			IngredientID: l.IngredientID,
			RemainingQty: l.RemainingQty,
			ExpiryDate:   l.ExpiryDate,
			DaysLeft:     int(l.ExpiryDate.Sub(now).Hours() / 24),
		})
	}
	return result, nil
}
