package orders

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/despensa-api/internal/application/inventory"
	"github.com/jhoicas/despensa-api/internal/domain"
	"github.com/jhoicas/despensa-api/internal/domain/entity"
	"github.com/jhoicas/despensa-api/internal/domain/repository"
)

// FulfillmentUseCase conduce una orden de compra desde su creación hasta la
// recepción total: Pendiente → Aprobada → EnTransito → (Parcialmente)Recibida,
// con Cancelada alcanzable mientras no haya recepciones. Cada entrega crea
// lotes Disponibles y movimientos ENTRADA en la misma transacción.
type FulfillmentUseCase struct {
	txRunner       TxRunner
	orderRepo      repository.PurchaseOrderRepository
	supplierRepo   repository.SupplierRepository
	ingredientRepo repository.IngredientRepository
	clock          inventory.Clock
}

// NewFulfillmentUseCase construye el caso de uso.
func NewFulfillmentUseCase(
	txRunner TxRunner,
	orderRepo repository.PurchaseOrderRepository,
	supplierRepo repository.SupplierRepository,
	ingredientRepo repository.IngredientRepository,
	clock inventory.Clock,
) *FulfillmentUseCase {
	return &FulfillmentUseCase{
		txRunner:       txRunner,
		orderRepo:      orderRepo,
		supplierRepo:   supplierRepo,
		ingredientRepo: ingredientRepo,
		clock:          clock,
	}
}

// OrderLineInput línea de pedido al crear una orden.
type OrderLineInput struct {
	IngredientID string
	Quantity     decimal.Decimal
	UnitCost     decimal.Decimal
}

// CreateOrder crea una orden Pendiente con sus líneas.
func (uc *FulfillmentUseCase) CreateOrder(ctx context.Context, supplierID string, lines []OrderLineInput) (*entity.PurchaseOrder, error) {
	if supplierID == "" || len(lines) == 0 {
		return nil, domain.ErrInvalidInput
	}
	supplier, err := uc.supplierRepo.GetByID(supplierID)
	if err != nil {
		return nil, err
	}
	if supplier == nil || !supplier.Active {
		return nil, domain.ErrNotFound
	}

	now := uc.clock.Now()
	order := &entity.PurchaseOrder{
		ID:         uuid.New().String(),
		SupplierID: supplierID,
		State:      entity.OrderStatePendiente,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	for _, in := range lines {
		if !in.Quantity.GreaterThan(decimal.Zero) || in.UnitCost.LessThan(decimal.Zero) {
			return nil, domain.ErrInvalidInput
		}
		ingredient, err := uc.ingredientRepo.GetByID(in.IngredientID)
		if err != nil {
			return nil, err
		}
		if ingredient == nil {
			return nil, domain.ErrNotFound
		}
		order.Lines = append(order.Lines, entity.OrderLine{
			ID:           uuid.New().String(),
			IngredientID: in.IngredientID,
			OrderedQty:   in.Quantity,
			ReceivedQty:  decimal.Zero,
			UnitCost:     in.UnitCost,
		})
	}
	if err := uc.orderRepo.Create(order); err != nil {
		return nil, err
	}
	return order, nil
}

// GetByID obtiene una orden con líneas y recepciones.
func (uc *FulfillmentUseCase) GetByID(ctx context.Context, orderID string) (*entity.PurchaseOrder, error) {
	order, err := uc.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, domain.ErrNotFound
	}
	return order, nil
}

// List lista órdenes filtrando por estado y/o proveedor.
func (uc *FulfillmentUseCase) List(ctx context.Context, state, supplierID string, limit, offset int) ([]*entity.PurchaseOrder, error) {
	return uc.orderRepo.List(state, supplierID, limit, offset)
}

// Approve: Pendiente → Aprobada.
func (uc *FulfillmentUseCase) Approve(ctx context.Context, orderID string) (*entity.PurchaseOrder, error) {
	return uc.transition(ctx, orderID, func(o *entity.PurchaseOrder, now time.Time) error {
		return o.Approve(now)
	})
}

// Dispatch: Aprobada → EnTransito.
func (uc *FulfillmentUseCase) Dispatch(ctx context.Context, orderID string) (*entity.PurchaseOrder, error) {
	return uc.transition(ctx, orderID, func(o *entity.PurchaseOrder, now time.Time) error {
		return o.Dispatch(now)
	})
}

// Cancel: cualquier estado no terminal → Cancelada, prohibido con recepciones.
func (uc *FulfillmentUseCase) Cancel(ctx context.Context, orderID string) (*entity.PurchaseOrder, error) {
	return uc.transition(ctx, orderID, func(o *entity.PurchaseOrder, now time.Time) error {
		return o.Cancel(now)
	})
}

func (uc *FulfillmentUseCase) transition(ctx context.Context, orderID string, fn func(*entity.PurchaseOrder, time.Time) error) (*entity.PurchaseOrder, error) {
	var order *entity.PurchaseOrder
	err := uc.txRunner.RunOrders(ctx, func(
		orderRepo repository.PurchaseOrderRepository,
		_ repository.LotRepository,
		_ repository.StockMovementRepository,
	) error {
		var err error
		order, err = orderRepo.GetByIDForUpdate(orderID)
		if err != nil {
			return err
		}
		if order == nil {
			return domain.ErrNotFound
		}
		if err := fn(order, uc.clock.Now()); err != nil {
			return err
		}
		return orderRepo.Update(order)
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

// ReceiptLineInput línea de entrega: contra qué línea de la orden, cuánto llegó
// y con qué vencimiento entra el lote.
type ReceiptLineInput struct {
	LineID     string
	Quantity   decimal.Decimal
	ExpiryDate time.Time
}

// ReceiveDelivery registra una entrega contra la orden. Atómico: la transición
// de estado, los lotes nuevos y los movimientos ENTRADA confirman juntos o se
// revierten juntos. Una línea que exceda su pendiente rechaza la entrega
// completa con ErrOverReceipt; un vencimiento pasado la rechaza con
// ErrInvalidInput (nunca nace un lote Vencido).
func (uc *FulfillmentUseCase) ReceiveDelivery(ctx context.Context, orderID string, lines []ReceiptLineInput) (*entity.PurchaseOrder, error) {
	if len(lines) == 0 {
		return nil, domain.ErrInvalidInput
	}
	now := uc.clock.Now()

	var order *entity.PurchaseOrder
	err := uc.txRunner.RunOrders(ctx, func(
		orderRepo repository.PurchaseOrderRepository,
		lotRepo repository.LotRepository,
		movRepo repository.StockMovementRepository,
	) error {
		var err error
		order, err = orderRepo.GetByIDForUpdate(orderID)
		if err != nil {
			return err
		}
		if order == nil {
			return domain.ErrNotFound
		}

		receipt := entity.Receipt{
			ID:         uuid.New().String(),
			ReceivedAt: now,
		}
		for _, in := range lines {
			receipt.Lines = append(receipt.Lines, entity.ReceiptLine{
				LineID:     in.LineID,
				Quantity:   in.Quantity,
				ExpiryDate: in.ExpiryDate,
			})
		}
		if err := order.ApplyReceipt(receipt, now); err != nil {
			return err
		}

		for _, rl := range receipt.Lines {
			line := order.Line(rl.LineID)
			lot, err := entity.NewLot(line.IngredientID, rl.Quantity, rl.ExpiryDate, now)
			if err != nil {
				return err
			}
			lot.ID = uuid.New().String()
			if err := lotRepo.Create(lot); err != nil {
				return err
			}
			if err := movRepo.Create(&entity.StockMovement{
				ID:           uuid.New().String(),
				IngredientID: line.IngredientID,
				LotID:        lot.ID,
				Type:         entity.MovementTypeEntrada,
				Quantity:     rl.Quantity,
				Reference:    order.ID,
				Date:         now,
				CreatedAt:    now,
			}); err != nil {
				return err
			}
		}
		return orderRepo.Update(order)
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}
