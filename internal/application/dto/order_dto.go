package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderLineRequest línea de pedido al crear una orden de compra.
type OrderLineRequest struct {
	IngredientID string          `json:"ingredient_id"`
	Quantity     decimal.Decimal `json:"quantity"`
	UnitCost     decimal.Decimal `json:"unit_cost"`
}

// CreateOrderRequest body para POST /api/orders.
type CreateOrderRequest struct {
	SupplierID string             `json:"supplier_id"`
	Lines      []OrderLineRequest `json:"lines"`
}

// ReceiptLineRequest línea de entrega contra una línea de la orden.
type ReceiptLineRequest struct {
	LineID     string          `json:"line_id"`
	Quantity   decimal.Decimal `json:"quantity"`
	ExpiryDate time.Time       `json:"expiry_date"`
}

// ReceiveDeliveryRequest body para POST /api/orders/:id/receipts.
type ReceiveDeliveryRequest struct {
	Lines []ReceiptLineRequest `json:"lines"`
}

// OrderLineResponse línea de la orden con su acumulado recibido.
type OrderLineResponse struct {
	ID           string          `json:"id"`
	IngredientID string          `json:"ingredient_id"`
	OrderedQty   decimal.Decimal `json:"ordered_qty"`
	ReceivedQty  decimal.Decimal `json:"received_qty"`
	UnitCost     decimal.Decimal `json:"unit_cost"`
}

// ReceiptResponse evento de entrega registrado.
type ReceiptResponse struct {
	ID         string               `json:"id"`
	ReceivedAt time.Time            `json:"received_at"`
	Lines      []ReceiptLineRequest `json:"lines"`
}

// OrderResponse representación de una orden de compra.
type OrderResponse struct {
	ID         string              `json:"id"`
	SupplierID string              `json:"supplier_id"`
	State      string              `json:"state"`
	Lines      []OrderLineResponse `json:"lines"`
	Receipts   []ReceiptResponse   `json:"receipts,omitempty"`
	CreatedAt  time.Time           `json:"created_at"`
	UpdatedAt  time.Time           `json:"updated_at"`
}

// OrderListResponse listado paginado.
type OrderListResponse struct {
	Items []OrderResponse `json:"items"`
	Page  PageResponse    `json:"page"`
}
