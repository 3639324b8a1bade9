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

// LotUseCase implementa el libro de lotes: alta manual, reserva/liberación y el
// barrido periódico de vencidos. La creación de lotes por recepción de órdenes
// vive en el caso de uso de fulfillment, que reutiliza entity.NewLot.
type LotUseCase struct {
	txRunner       TxRunner
	lotRepo        repository.LotRepository
	ingredientRepo repository.IngredientRepository
	clock          Clock
}

// NewLotUseCase construye el caso de uso.
func NewLotUseCase(
	txRunner TxRunner,
	lotRepo repository.LotRepository,
	ingredientRepo repository.IngredientRepository,
	clock Clock,
) *LotUseCase {
	return &LotUseCase{
		txRunner:       txRunner,
		lotRepo:        lotRepo,
		ingredientRepo: ingredientRepo,
		clock:          clock,
	}
}

// CreateLotInput entrada para el alta manual de un lote (inventario inicial,
// compra directa sin orden).
type CreateLotInput struct {
	IngredientID string
	Quantity     decimal.Decimal
	ExpiryDate   time.Time
	Reference    string
}

// CreateLot crea un lote Disponible y registra su movimiento ENTRADA en la
// misma transacción.
func (uc *LotUseCase) CreateLot(ctx context.Context, in CreateLotInput) (*entity.Lot, error) {
	ingredient, err := uc.ingredientRepo.GetByID(in.IngredientID)
	if err != nil {
		return nil, err
	}
	if ingredient == nil {
		return nil, domain.ErrNotFound
	}

	now := uc.clock.Now()
	lot, err := entity.NewLot(in.IngredientID, in.Quantity, in.ExpiryDate, now)
	if err != nil {
		return nil, err
	}
	lot.ID = uuid.New().String()

	err = uc.txRunner.Run(ctx, func(
		lotRepo repository.LotRepository,
		movRepo repository.StockMovementRepository,
	) error {
		if err := lotRepo.Create(lot); err != nil {
			return err
		}
		return movRepo.Create(&entity.StockMovement{
			ID:           uuid.New().String(),
			IngredientID: lot.IngredientID,
			LotID:        lot.ID,
			Type:         entity.MovementTypeEntrada,
			Quantity:     lot.ReceivedQty,
			Reference:    in.Reference,
			Date:         now,
			CreatedAt:    now,
		})
	})
	if err != nil {
		return nil, err
	}
	return lot, nil
}

// Reserve aparta un lote para que el asignador de consumo no lo seleccione.
func (uc *LotUseCase) Reserve(ctx context.Context, lotID string) (*entity.Lot, error) {
	return uc.toggle(ctx, lotID, func(l *entity.Lot, now time.Time) error {
		return l.Reserve(now)
	})
}

// Release devuelve un lote Reservado a Disponible.
func (uc *LotUseCase) Release(ctx context.Context, lotID string) (*entity.Lot, error) {
	return uc.toggle(ctx, lotID, func(l *entity.Lot, now time.Time) error {
		return l.Release(now)
	})
}

func (uc *LotUseCase) toggle(ctx context.Context, lotID string, fn func(*entity.Lot, time.Time) error) (*entity.Lot, error) {
	var lot *entity.Lot
	err := uc.txRunner.Run(ctx, func(
		lotRepo repository.LotRepository,
		_ repository.StockMovementRepository,
	) error {
		var err error
		lot, err = lotRepo.GetByID(lotID)
		if err != nil {
			return err
		}
		if lot == nil {
			return domain.ErrNotFound
		}
		if err := fn(lot, uc.clock.Now()); err != nil {
			return err
		}
		return lotRepo.Update(lot)
	})
	if err != nil {
		return nil, err
	}
	return lot, nil
}

// ReclassifyExpired ejecuta el barrido de vencidos: todo lote con vencimiento
// anterior a now que no esté Vencido transiciona a Vencido. ingredientID vacío
// barre globalmente. Idempotente: una segunda pasada con el mismo now no
// produce cambios. No emite movimientos: vencer reclasifica estado, no cambia
// cantidades; el lote retenido es el rastro de auditoría.
func (uc *LotUseCase) ReclassifyExpired(ctx context.Context, ingredientID string) ([]string, error) {
	now := uc.clock.Now()
	var affected []string
	err := uc.txRunner.Run(ctx, func(
		lotRepo repository.LotRepository,
		_ repository.StockMovementRepository,
	) error {
		candidates, err := lotRepo.ListExpiredCandidates(now, ingredientID)
		if err != nil {
			return err
		}
		for _, lot := range candidates {
			if !lot.ReclassifyIfExpired(now) {
				continue
			}
			if err := lotRepo.Update(lot); err != nil {
				return err
			}
			affected = append(affected, lot.ID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return affected, nil
}
