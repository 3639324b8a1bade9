package orders

import (
	"context"

	"github.com/jhoicas/despensa-api/internal/domain"
	"github.com/jhoicas/despensa-api/internal/domain/repository"
)

// PDFUseCase genera el documento PDF de una orden de compra para enviarlo al
// proveedor.
type PDFUseCase struct {
	orderRepo      repository.PurchaseOrderRepository
	supplierRepo   repository.SupplierRepository
	ingredientRepo repository.IngredientRepository
	generator      OrderPDFGenerator
}

// NewPDFUseCase construye el caso de uso.
func NewPDFUseCase(
	orderRepo repository.PurchaseOrderRepository,
	supplierRepo repository.SupplierRepository,
	ingredientRepo repository.IngredientRepository,
	generator OrderPDFGenerator,
) *PDFUseCase {
	return &PDFUseCase{
		orderRepo:      orderRepo,
		supplierRepo:   supplierRepo,
		ingredientRepo: ingredientRepo,
		generator:      generator,
	}
}

// GenerateOrderPDF arma los datos de la orden y delega en el generador.
func (uc *PDFUseCase) GenerateOrderPDF(ctx context.Context, orderID string) ([]byte, error) {
	order, err := uc.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, domain.ErrNotFound
	}
	supplier, err := uc.supplierRepo.GetByID(order.SupplierID)
	if err != nil {
		return nil, err
	}
	if supplier == nil {
		return nil, domain.ErrNotFound
	}

	names := make(map[string]string, len(order.Lines))
	for _, line := range order.Lines {
		if _, ok := names[line.IngredientID]; ok {
			continue
		}
		ingredient, err := uc.ingredientRepo.GetByID(line.IngredientID)
		if err != nil {
			return nil, err
		}
		if ingredient != nil {
			names[line.IngredientID] = ingredient.Name
		}
	}
	return uc.generator.GenerateOrderPDF(ctx, order, supplier, names)
}
