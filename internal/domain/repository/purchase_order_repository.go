package repository

import "github.com/jhoicas/despensa-api/internal/domain/entity"

// PurchaseOrderRepository define el puerto de persistencia para órdenes de
// compra con sus líneas y recepciones.
type PurchaseOrderRepository interface {
	Create(order *entity.PurchaseOrder) error
	GetByID(id string) (*entity.PurchaseOrder, error)
	// GetByIDForUpdate bloquea la fila de la orden (SELECT FOR UPDATE) para
	// serializar transiciones concurrentes sobre la misma orden.
	GetByIDForUpdate(id string) (*entity.PurchaseOrder, error)
	Update(order *entity.PurchaseOrder) error
	List(state, supplierID string, limit, offset int) ([]*entity.PurchaseOrder, error)
}
