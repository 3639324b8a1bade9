package orders

import (
	"context"

	"github.com/jhoicas/despensa-api/internal/domain/entity"
	"github.com/jhoicas/despensa-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción con los repositorios
// que toca una recepción de orden: la orden, los lotes que crea y sus
// movimientos ENTRADA confirman o se revierten juntos.
type TxRunner interface {
	RunOrders(ctx context.Context, fn func(
		orderRepo repository.PurchaseOrderRepository,
		lotRepo repository.LotRepository,
		movRepo repository.StockMovementRepository,
	) error) error
}

// OrderPDFGenerator genera el documento de orden de compra que se envía al
// proveedor.
type OrderPDFGenerator interface {
	GenerateOrderPDF(
		ctx context.Context,
		order *entity.PurchaseOrder,
		supplier *entity.Supplier,
		ingredientNames map[string]string,
	) ([]byte, error)
}
