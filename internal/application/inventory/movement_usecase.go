package inventory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/despensa-api/internal/domain"
	"github.com/jhoicas/despensa-api/internal/domain/entity"
	"github.com/jhoicas/despensa-api/internal/domain/repository"
)

// MovementUseCase expone el libro de movimientos: consulta de historial y
// registro de ajustes manuales.
type MovementUseCase struct {
	txRunner       TxRunner
	movRepo        repository.StockMovementRepository
	ingredientRepo repository.IngredientRepository
	clock          Clock
}

// NewMovementUseCase construye el caso de uso.
func NewMovementUseCase(
	txRunner TxRunner,
	movRepo repository.StockMovementRepository,
	ingredientRepo repository.IngredientRepository,
	clock Clock,
) *MovementUseCase {
	return &MovementUseCase{
		txRunner:       txRunner,
		movRepo:        movRepo,
		ingredientRepo: ingredientRepo,
		clock:          clock,
	}
}

// ListByIngredient lista el historial de un ingrediente, ascendente por fecha.
func (uc *MovementUseCase) ListByIngredient(ctx context.Context, ingredientID string, from, to *time.Time, limit, offset int) ([]*entity.StockMovement, error) {
	ingredient, err := uc.ingredientRepo.GetByID(ingredientID)
	if err != nil {
		return nil, err
	}
	if ingredient == nil {
		return nil, domain.ErrNotFound
	}
	return uc.movRepo.ListByIngredient(ingredientID, from, to, limit, offset)
}

// AdjustmentInput entrada para un ajuste manual (merma descubierta en conteo,
// corrección de digitación). LotID es opcional.
type AdjustmentInput struct {
	IngredientID string
	LotID        string
	Quantity     decimal.Decimal // delta firmado
	Reference    string
}

// RegisterAdjustment agrega un movimiento AJUSTE al libro. Entrada pura de
// auditoría: no cambia estado ni remanente de ningún lote; el historial jamás
// se corrige mutando, solo agregando.
func (uc *MovementUseCase) RegisterAdjustment(ctx context.Context, in AdjustmentInput) (*entity.StockMovement, error) {
	if in.Quantity.IsZero() {
		return nil, domain.ErrInvalidInput
	}
	ingredient, err := uc.ingredientRepo.GetByID(in.IngredientID)
	if err != nil {
		return nil, err
	}
	if ingredient == nil {
		return nil, domain.ErrNotFound
	}

	now := uc.clock.Now()
	mov := &entity.StockMovement{
		ID:           uuid.New().String(),
		IngredientID: in.IngredientID,
		LotID:        in.LotID,
		Type:         entity.MovementTypeAjuste,
		Quantity:     in.Quantity,
		Reference:    in.Reference,
		Date:         now,
		CreatedAt:    now,
	}
	err = uc.txRunner.Run(ctx, func(
		_ repository.LotRepository,
		movRepo repository.StockMovementRepository,
	) error {
		return movRepo.Create(mov)
	})
	if err != nil {
		return nil, err
	}
	return mov, nil
}
