package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/despensa-api/internal/application/dto"
	"github.com/jhoicas/despensa-api/internal/application/inventory"
	"github.com/jhoicas/despensa-api/internal/domain/entity"
)

// InventoryHandler maneja las peticiones HTTP de lotes, consumo FEFO,
// ajustes, barrido de vencidos y libro de movimientos.
type InventoryHandler struct {
	lots      *inventory.LotUseCase
	consume   *inventory.ConsumeUseCase
	stock     *inventory.StockQueryUseCase
	movements *inventory.MovementUseCase
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(
	lots *inventory.LotUseCase,
	consume *inventory.ConsumeUseCase,
	stock *inventory.StockQueryUseCase,
	movements *inventory.MovementUseCase,
) *InventoryHandler {
	return &InventoryHandler{lots: lots, consume: consume, stock: stock, movements: movements}
}

// CreateLot godoc
// @Summary      Alta manual de lote
// @Description  Crea un lote Disponible y registra su movimiento ENTRADA.
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateLotRequest  true  "ingredient_id, quantity, expiry_date"
// @Success      201   {object}  dto.LotResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/inventory/lots [post]
func (h *InventoryHandler) CreateLot(c *fiber.Ctx) error {
	var in dto.CreateLotRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	lot, err := h.lots.CreateLot(c.Context(), inventory.CreateLotInput{
		IngredientID: in.IngredientID,
		Quantity:     in.Quantity,
		ExpiryDate:   in.ExpiryDate,
		Reference:    in.Reference,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toLotResponse(lot))
}

// ReserveLot godoc
// @Summary      Reservar lote
// @Description  Disponible -> Reservado; el lote deja de ser elegible para FEFO.
// @Tags         inventory
// @Produce      json
// @Param        id  path  string  true  "ID del lote"
// @Success      200  {object}  dto.LotResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/inventory/lots/{id}/reserve [post]
func (h *InventoryHandler) ReserveLot(c *fiber.Ctx) error {
	lot, err := h.lots.Reserve(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(toLotResponse(lot))
}

// ReleaseLot godoc
// @Summary      Liberar lote reservado
// @Tags         inventory
// @Produce      json
// @Param        id  path  string  true  "ID del lote"
// @Success      200  {object}  dto.LotResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/inventory/lots/{id}/release [post]
func (h *InventoryHandler) ReleaseLot(c *fiber.Ctx) error {
	lot, err := h.lots.Release(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(toLotResponse(lot))
}

// Consume godoc
// @Summary      Consumir stock FEFO
// @Description  Descuenta la cantidad pedida de los lotes elegibles en orden de
//	vencimiento. Todo-o-nada: si el disponible no alcanza no se toca ningún lote.
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ConsumeRequest  true  "ingredient_id, quantity, reference"
// @Success      201   {array}   dto.MovementResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/inventory/consume [post]
func (h *InventoryHandler) Consume(c *fiber.Ctx) error {
	var in dto.ConsumeRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	movs, err := h.consume.Consume(c.Context(), in.IngredientID, in.Quantity, in.Reference)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toMovementResponses(movs))
}

// RegisterAdjustment godoc
// @Summary      Registrar ajuste de inventario
// @Description  Asiento AJUSTE en el libro de movimientos; no modifica lotes.
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Param        body  body  dto.AdjustmentRequest  true  "ingredient_id, quantity (delta firmado), lot_id opcional"
// @Success      201   {object}  dto.MovementResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/inventory/adjustments [post]
func (h *InventoryHandler) RegisterAdjustment(c *fiber.Ctx) error {
	var in dto.AdjustmentRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	mov, err := h.movements.RegisterAdjustment(c.Context(), inventory.AdjustmentInput{
		IngredientID: in.IngredientID,
		LotID:        in.LotID,
		Quantity:     in.Quantity,
		Reference:    in.Reference,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toMovementResponse(mov))
}

// ExpirySweep godoc
// @Summary      Barrido de lotes vencidos
// @Description  Reclasifica a Vencido todo lote con fecha ya pasada. Idempotente.
// @Tags         inventory
// @Produce      json
// @Param        ingredient_id  query  string  false  "Limitar el barrido a un ingrediente"
// @Success      200  {object}  dto.SweepResponse
// @Router       /api/inventory/expiry-sweep [post]
func (h *InventoryHandler) ExpirySweep(c *fiber.Ctx) error {
	affected, err := h.lots.ReclassifyExpired(c.Context(), c.Query("ingredient_id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.SweepResponse{AffectedLots: affected, Total: len(affected)})
}

// GetStock godoc
// @Summary      Stock disponible de un ingrediente
// @Description  Suma de remanentes de lotes elegibles + bandera de reposición.
// @Tags         ingredients
// @Produce      json
// @Param        id  path  string  true  "ID del ingrediente"
// @Success      200  {object}  dto.StockSummaryResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/ingredients/{id}/stock [get]
func (h *InventoryHandler) GetStock(c *fiber.Ctx) error {
	out, err := h.stock.GetStockSummary(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// GetReorderCandidates godoc
// @Summary      Ingredientes bajo su umbral de reorden
// @Tags         inventory
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Router       /api/inventory/reorder-candidates [get]
func (h *InventoryHandler) GetReorderCandidates(c *fiber.Ctx) error {
	list, err := h.stock.GetReorderCandidates(c.Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"total":      len(list),
		"candidates": list,
	})
}

// GetExpiringLots godoc
// @Summary      Lotes Disponibles próximos a vencer
// @Tags         inventory
// @Produce      json
// @Param        days  query  int  false  "Horizonte en días"  default(7)
// @Success      200   {object}  map[string]interface{}
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/inventory/expiring-lots [get]
func (h *InventoryHandler) GetExpiringLots(c *fiber.Ctx) error {
	days := c.QueryInt("days", 7)
	list, err := h.stock.GetLotsExpiringWithin(c.Context(), days)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"total": len(list),
		"lots":  list,
	})
}

// ListMovements godoc
// @Summary      Historial de movimientos de un ingrediente
// @Description  Orden ascendente por fecha; filtros opcionales from/to (RFC 3339).
// @Tags         inventory
// @Produce      json
// @Param        ingredient_id  query  string  true   "ID del ingrediente"
// @Param        from           query  string  false  "Fecha inicial"
// @Param        to             query  string  false  "Fecha final"
// @Param        limit          query  int     false  "Límite"   default(50)
// @Param        offset         query  int     false  "Offset"   default(0)
// @Success      200  {array}   dto.MovementResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/inventory/movements [get]
func (h *InventoryHandler) ListMovements(c *fiber.Ctx) error {
	ingredientID := c.Query("ingredient_id")
	if ingredientID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "ingredient_id es requerido"})
	}
	from, err := parseTimeQuery(c.Query("from"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "from inválido, se espera RFC 3339"})
	}
	to, err := parseTimeQuery(c.Query("to"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "to inválido, se espera RFC 3339"})
	}
	limit := c.QueryInt("limit", 50)
	offset := c.QueryInt("offset", 0)
	if limit <= 0 {
		limit = 50
	}
	if limit > 200 {
		limit = 200
	}
	if offset < 0 {
		offset = 0
	}
	movs, err := h.movements.ListByIngredient(c.Context(), ingredientID, from, to, limit, offset)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(toMovementResponses(movs))
}

func parseTimeQuery(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// ── mappers ──────────────────────────────────────────────────────────────────

func toLotResponse(l *entity.Lot) dto.LotResponse {
	return dto.LotResponse{
		ID:           l.ID,
		IngredientID: l.IngredientID,
		ReceivedQty:  l.ReceivedQty,
		RemainingQty: l.RemainingQty,
		ExpiryDate:   l.ExpiryDate,
		State:        l.State,
		CreatedAt:    l.CreatedAt,
	}
}

func toMovementResponse(m *entity.StockMovement) dto.MovementResponse {
	return dto.MovementResponse{
		ID:           m.ID,
		IngredientID: m.IngredientID,
		LotID:        m.LotID,
		Type:         m.Type,
		Quantity:     m.Quantity,
		Reference:    m.Reference,
		Date:         m.Date,
	}
}

func toMovementResponses(movs []*entity.StockMovement) []dto.MovementResponse {
	result := make([]dto.MovementResponse, 0, len(movs))
	for _, m := range movs {
		result = append(result, toMovementResponse(m))
	}
	return result
}
