package inventory

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/despensa-api/internal/domain"
	"github.com/jhoicas/despensa-api/internal/domain/entity"
	domInventory "github.com/jhoicas/despensa-api/internal/domain/inventory"
	"github.com/jhoicas/despensa-api/internal/domain/repository"
)

// ConsumeUseCase traduce "consumir N unidades del ingrediente I" en débitos
// concretos sobre lotes, en orden FEFO. Todo-o-nada: el plan se calcula sobre
// los lotes bloqueados antes de debitar ninguno, así un faltante agregado se
// rechaza sin tocar stock.
type ConsumeUseCase struct {
	txRunner       TxRunner
	ingredientRepo repository.IngredientRepository
	clock          Clock
}

// NewConsumeUseCase construye el caso de uso.
func NewConsumeUseCase(
	txRunner TxRunner,
	ingredientRepo repository.IngredientRepository,
	clock Clock,
) *ConsumeUseCase {
	return &ConsumeUseCase{
		txRunner:       txRunner,
		ingredientRepo: ingredientRepo,
		clock:          clock,
	}
}

// Consume debita qty del ingrediente repartido entre sus lotes por vencimiento
// ascendente. Devuelve un movimiento SALIDA por lote tocado; reference correla
// los movimientos de una misma solicitud (comanda, receta).
func (uc *ConsumeUseCase) Consume(ctx context.Context, ingredientID string, qty decimal.Decimal, reference string) ([]*entity.StockMovement, error) {
	if !qty.GreaterThan(decimal.Zero) {
		return nil, domain.ErrInvalidInput
	}
	ingredient, err := uc.ingredientRepo.GetByID(ingredientID)
	if err != nil {
		return nil, err
	}
	if ingredient == nil {
		return nil, domain.ErrNotFound
	}

	now := uc.clock.Now()
	if reference == "" {
		reference = uuid.New().String()
	}

	var movements []*entity.StockMovement
	err = uc.txRunner.Run(ctx, func(
		lotRepo repository.LotRepository,
		movRepo repository.StockMovementRepository,
	) error {
		// Bloquea los lotes del ingrediente: serializa escritores concurrentes
		// sobre el mismo agregado.
		lots, err := lotRepo.ListByIngredientForUpdate(ingredientID)
		if err != nil {
			return err
		}
		plan, err := domInventory.PlanConsumption(lots, qty, now)
		if err != nil {
			return err
		}

		byID := make(map[string]*entity.Lot, len(lots))
		for _, l := range lots {
			byID[l.ID] = l
		}
		for _, alloc := range plan {
			lot := byID[alloc.LotID]
			if err := lot.Debit(alloc.Quantity, now); err != nil {
				return err
			}
			if err := lotRepo.Update(lot); err != nil {
				return err
			}
			mov := &entity.StockMovement{
				ID:           uuid.New().String(),
				IngredientID: ingredientID,
				LotID:        lot.ID,
				Type:         entity.MovementTypeSalida,
				Quantity:     alloc.Quantity.Neg(),
				Reference:    reference,
				Date:         now,
				CreatedAt:    now,
			}
			if err := movRepo.Create(mov); err != nil {
				return err
			}
			movements = append(movements, mov)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return movements, nil
}
