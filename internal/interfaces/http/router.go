package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/despensa-api/internal/application/inventory"
	"github.com/jhoicas/despensa-api/internal/application/orders"
	"github.com/jhoicas/despensa-api/internal/application/usecase"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	IngredientUC *usecase.IngredientUseCase
	SupplierUC   *usecase.SupplierUseCase
	LotUC        *inventory.LotUseCase
	ConsumeUC    *inventory.ConsumeUseCase
	StockUC      *inventory.StockQueryUseCase
	MovementUC   *inventory.MovementUseCase
	Fulfillment  *orders.FulfillmentUseCase
	OrderPDF     *orders.PDFUseCase
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Ingredients
	ingredients := api.Group("/ingredients")
	ingredientHandler := NewIngredientHandler(deps.IngredientUC)
	ingredients.Post("/", ingredientHandler.Create)
	ingredients.Get("/", ingredientHandler.List)
	ingredients.Get("/:id", ingredientHandler.GetByID)
	ingredients.Put("/:id", ingredientHandler.Update)

	// Inventory: lotes, consumo FEFO, ajustes, barrido y movimientos
	invGroup := api.Group("/inventory")
	inventoryHandler := NewInventoryHandler(deps.LotUC, deps.ConsumeUC, deps.StockUC, deps.MovementUC)
	ingredients.Get("/:id/stock", inventoryHandler.GetStock)
	invGroup.Post("/lots", inventoryHandler.CreateLot)
	invGroup.Post("/lots/:id/reserve", inventoryHandler.ReserveLot)
	invGroup.Post("/lots/:id/release", inventoryHandler.ReleaseLot)
	invGroup.Post("/consume", inventoryHandler.Consume)
	invGroup.Post("/adjustments", inventoryHandler.RegisterAdjustment)
	invGroup.Post("/expiry-sweep", inventoryHandler.ExpirySweep)
	invGroup.Get("/reorder-candidates", inventoryHandler.GetReorderCandidates)
	invGroup.Get("/expiring-lots", inventoryHandler.GetExpiringLots)
	invGroup.Get("/movements", inventoryHandler.ListMovements)

	// Suppliers
	suppliers := api.Group("/suppliers")
	supplierHandler := NewSupplierHandler(deps.SupplierUC)
	suppliers.Post("/", supplierHandler.Create)
	suppliers.Get("/", supplierHandler.List)
	suppliers.Get("/:id", supplierHandler.GetByID)
	suppliers.Put("/:id", supplierHandler.Update)

	// Purchase orders
	ordersGroup := api.Group("/orders")
	orderHandler := NewOrderHandler(deps.Fulfillment, deps.OrderPDF)
	ordersGroup.Post("/", orderHandler.Create)
	ordersGroup.Get("/", orderHandler.List)
	ordersGroup.Get("/:id", orderHandler.GetByID)
	ordersGroup.Post("/:id/approve", orderHandler.Approve)
	ordersGroup.Post("/:id/dispatch", orderHandler.Dispatch)
	ordersGroup.Post("/:id/cancel", orderHandler.Cancel)
	ordersGroup.Post("/:id/receipts", orderHandler.ReceiveDelivery)
	ordersGroup.Get("/:id/pdf", orderHandler.GetPDF)
}
