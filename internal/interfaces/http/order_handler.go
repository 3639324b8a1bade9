package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/despensa-api/internal/application/dto"
	"github.com/jhoicas/despensa-api/internal/application/orders"
	"github.com/jhoicas/despensa-api/internal/domain/entity"
)

// OrderHandler maneja las peticiones HTTP de órdenes de compra.
type OrderHandler struct {
	fulfillment *orders.FulfillmentUseCase
	pdf         *orders.PDFUseCase
}

// NewOrderHandler construye el handler.
func NewOrderHandler(fulfillment *orders.FulfillmentUseCase, pdf *orders.PDFUseCase) *OrderHandler {
	return &OrderHandler{fulfillment: fulfillment, pdf: pdf}
}

// Create godoc
// @Summary      Crear orden de compra
// @Description  La orden nace Pendiente con sus líneas de pedido.
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateOrderRequest  true  "supplier_id y líneas"
// @Success      201   {object}  dto.OrderResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/orders [post]
func (h *OrderHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateOrderRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	lines := make([]orders.OrderLineInput, 0, len(in.Lines))
	for _, l := range in.Lines {
		lines = append(lines, orders.OrderLineInput{
			IngredientID: l.IngredientID,
			Quantity:     l.Quantity,
			UnitCost:     l.UnitCost,
		})
	}
	order, err := h.fulfillment.CreateOrder(c.Context(), in.SupplierID, lines)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toOrderResponse(order))
}

// GetByID godoc
// @Summary      Obtener orden por ID
// @Tags         orders
// @Produce      json
// @Param        id   path  string  true  "ID de la orden"
// @Success      200  {object}  dto.OrderResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/orders/{id} [get]
func (h *OrderHandler) GetByID(c *fiber.Ctx) error {
	order, err := h.fulfillment.GetByID(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(toOrderResponse(order))
}

// List godoc
// @Summary      Listar órdenes de compra
// @Tags         orders
// @Produce      json
// @Param        state        query  string  false  "Filtrar por estado"
// @Param        supplier_id  query  string  false  "Filtrar por proveedor"
// @Param        limit        query  int     false  "Límite"   default(20)
// @Param        offset       query  int     false  "Offset"   default(0)
// @Success      200  {object}  dto.OrderListResponse
// @Router       /api/orders [get]
func (h *OrderHandler) List(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 20)
	offset := c.QueryInt("offset", 0)
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	list, err := h.fulfillment.List(c.Context(), c.Query("state"), c.Query("supplier_id"), limit, offset)
	if err != nil {
		return respondError(c, err)
	}
	items := make([]dto.OrderResponse, 0, len(list))
	for _, o := range list {
		items = append(items, toOrderResponse(o))
	}
	return c.JSON(dto.OrderListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: limit, Offset: offset, Total: len(items)},
	})
}

// Approve godoc
// @Summary      Aprobar orden
// @Description  Pendiente -> Aprobada.
// @Tags         orders
// @Produce      json
// @Param        id  path  string  true  "ID de la orden"
// @Success      200  {object}  dto.OrderResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/orders/{id}/approve [post]
func (h *OrderHandler) Approve(c *fiber.Ctx) error {
	order, err := h.fulfillment.Approve(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(toOrderResponse(order))
}

// Dispatch godoc
// @Summary      Marcar orden en tránsito
// @Description  Aprobada -> EnTransito.
// @Tags         orders
// @Produce      json
// @Param        id  path  string  true  "ID de la orden"
// @Success      200  {object}  dto.OrderResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/orders/{id}/dispatch [post]
func (h *OrderHandler) Dispatch(c *fiber.Ctx) error {
	order, err := h.fulfillment.Dispatch(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(toOrderResponse(order))
}

// Cancel godoc
// @Summary      Cancelar orden
// @Description  Solo antes de la primera recepción.
// @Tags         orders
// @Produce      json
// @Param        id  path  string  true  "ID de la orden"
// @Success      200  {object}  dto.OrderResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/orders/{id}/cancel [post]
func (h *OrderHandler) Cancel(c *fiber.Ctx) error {
	order, err := h.fulfillment.Cancel(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(toOrderResponse(order))
}

// ReceiveDelivery godoc
// @Summary      Registrar entrega contra la orden
// @Description  Valida todas las líneas contra lo pendiente y, si pasan, crea
//	lotes y movimientos ENTRADA en la misma transacción. Parcial o total según
//	queden líneas incompletas.
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID de la orden"
// @Param        body  body  dto.ReceiveDeliveryRequest  true  "Líneas recibidas con vencimiento"
// @Success      200   {object}  dto.OrderResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/orders/{id}/receipts [post]
func (h *OrderHandler) ReceiveDelivery(c *fiber.Ctx) error {
	var in dto.ReceiveDeliveryRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	lines := make([]orders.ReceiptLineInput, 0, len(in.Lines))
	for _, l := range in.Lines {
		lines = append(lines, orders.ReceiptLineInput{
			LineID:     l.LineID,
			Quantity:   l.Quantity,
			ExpiryDate: l.ExpiryDate,
		})
	}
	order, err := h.fulfillment.ReceiveDelivery(c.Context(), c.Params("id"), lines)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(toOrderResponse(order))
}

// GetPDF godoc
// @Summary      Documento PDF de la orden
// @Tags         orders
// @Produce      application/pdf
// @Param        id  path  string  true  "ID de la orden"
// @Success      200  {file}    file
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/orders/{id}/pdf [get]
func (h *OrderHandler) GetPDF(c *fiber.Ctx) error {
	id := c.Params("id")
	doc, err := h.pdf.GenerateOrderPDF(c.Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="orden-`+id+`.pdf"`)
	return c.Send(doc)
}

// ── mappers ──────────────────────────────────────────────────────────────────

func toOrderResponse(o *entity.PurchaseOrder) dto.OrderResponse {
	lines := make([]dto.OrderLineResponse, 0, len(o.Lines))
	for _, l := range o.Lines {
		lines = append(lines, dto.OrderLineResponse{
			ID:           l.ID,
			IngredientID: l.IngredientID,
			OrderedQty:   l.OrderedQty,
			ReceivedQty:  l.ReceivedQty,
			UnitCost:     l.UnitCost,
		})
	}
	receipts := make([]dto.ReceiptResponse, 0, len(o.Receipts))
	for _, r := range o.Receipts {
		rl := make([]dto.ReceiptLineRequest, 0, len(r.Lines))
		for _, l := range r.Lines {
			rl = append(rl, dto.ReceiptLineRequest{
				LineID:     l.LineID,
				Quantity:   l.Quantity,
				ExpiryDate: l.ExpiryDate,
			})
		}
		receipts = append(receipts, dto.ReceiptResponse{
			ID:         r.ID,
			ReceivedAt: r.ReceivedAt,
			Lines:      rl,
		})
	}
	return dto.OrderResponse{
		ID:         o.ID,
		SupplierID: o.SupplierID,
		State:      o.State,
		Lines:      lines,
		Receipts:   receipts,
		CreatedAt:  o.CreatedAt,
		UpdatedAt:  o.UpdatedAt,
	}
}
