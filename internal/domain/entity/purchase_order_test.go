package entity_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/despensa-api/internal/domain"
	"github.com/jhoicas/despensa-api/internal/domain/entity"
)

func newTestOrder(ordered float64) *entity.PurchaseOrder {
	return &entity.PurchaseOrder{
		ID:         "po-1",
		SupplierID: "sup-1",
		State:      entity.OrderStatePendiente,
		Lines: []entity.OrderLine{
			{
				ID:           "line-1",
				IngredientID: "ing-harina",
				OrderedQty:   decimal.NewFromFloat(ordered),
				UnitCost:     decimal.NewFromInt(2500),
			},
		},
		CreatedAt: testNow,
		UpdatedAt: testNow,
	}
}

func receipt(id string, at time.Time, lineID string, qty float64) entity.Receipt {
	return entity.Receipt{
		ID:         id,
		ReceivedAt: at,
		Lines: []entity.ReceiptLine{
			{LineID: lineID, Quantity: decimal.NewFromFloat(qty), ExpiryDate: at.AddDate(0, 1, 0)},
		},
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Transiciones
// ──────────────────────────────────────────────────────────────────────────────

func TestOrder_FlujoFelizDeTransiciones(t *testing.T) {
	o := newTestOrder(100)

	require.NoError(t, o.Approve(testNow))
	assert.Equal(t, entity.OrderStateAprobada, o.State)

	require.NoError(t, o.Dispatch(testNow))
	assert.Equal(t, entity.OrderStateEnTransito, o.State)
}

func TestOrder_ApproveSoloDesdePendiente(t *testing.T) {
	o := newTestOrder(100)
	require.NoError(t, o.Approve(testNow))

	assert.ErrorIs(t, o.Approve(testNow), domain.ErrInvalidState)
}

func TestOrder_DispatchSoloDesdeAprobada(t *testing.T) {
	o := newTestOrder(100)
	assert.ErrorIs(t, o.Dispatch(testNow), domain.ErrInvalidState)
}

func TestOrder_CancelDesdePendiente(t *testing.T) {
	o := newTestOrder(100)
	require.NoError(t, o.Cancel(testNow))
	assert.Equal(t, entity.OrderStateCancelada, o.State)
	assert.True(t, o.IsTerminal())
}

func TestOrder_CancelRechazadaConRecepciones(t *testing.T) {
	o := newTestOrder(100)
	require.NoError(t, o.Approve(testNow))
	require.NoError(t, o.Dispatch(testNow))
	require.NoError(t, o.ApplyReceipt(receipt("r1", testNow, "line-1", 60), testNow))

	assert.ErrorIs(t, o.Cancel(testNow), domain.ErrInvalidState,
		"una orden con entregas registradas no se puede cancelar")
}

func TestOrder_EstadoTerminalNoAdmiteTransiciones(t *testing.T) {
	o := newTestOrder(100)
	require.NoError(t, o.Cancel(testNow))

	assert.ErrorIs(t, o.Approve(testNow), domain.ErrInvalidState)
	assert.ErrorIs(t, o.Cancel(testNow), domain.ErrInvalidState)

	err := o.ApplyReceipt(receipt("r1", testNow, "line-1", 10), testNow)
	assert.ErrorIs(t, err, domain.ErrInvalidState,
		"una orden cancelada nunca recibe entregas")
}

// ──────────────────────────────────────────────────────────────────────────────
// ApplyReceipt
// ──────────────────────────────────────────────────────────────────────────────

func dispatched(t *testing.T, ordered float64) *entity.PurchaseOrder {
	t.Helper()
	o := newTestOrder(ordered)
	require.NoError(t, o.Approve(testNow))
	require.NoError(t, o.Dispatch(testNow))
	return o
}

func TestApplyReceipt_ParcialLuegoCompleta(t *testing.T) {
	o := dispatched(t, 100)

	// Primera entrega: 60 de 100.
	require.NoError(t, o.ApplyReceipt(receipt("r1", testNow, "line-1", 60), testNow))
	assert.Equal(t, entity.OrderStateParcialmenteRecibida, o.State)
	assert.True(t, o.Lines[0].Outstanding().Equal(decimal.NewFromInt(40)))

	// Segunda entrega: los 40 restantes.
	require.NoError(t, o.ApplyReceipt(receipt("r2", testNow, "line-1", 40), testNow))
	assert.Equal(t, entity.OrderStateRecibida, o.State)
	assert.True(t, o.Lines[0].Outstanding().IsZero())
	assert.Len(t, o.Receipts, 2)
}

func TestApplyReceipt_SobreRecepcionRechazadaSinEfectos(t *testing.T) {
	o := dispatched(t, 100)
	require.NoError(t, o.ApplyReceipt(receipt("r1", testNow, "line-1", 60), testNow))

	// 41 > los 40 pendientes: debe rechazarse sin tocar el acumulado.
	err := o.ApplyReceipt(receipt("r2", testNow, "line-1", 41), testNow)
	assert.ErrorIs(t, err, domain.ErrOverReceipt)
	assert.True(t, o.Lines[0].ReceivedQty.Equal(decimal.NewFromInt(60)),
		"un rechazo no debe dejar aplicación parcial")
	assert.Len(t, o.Receipts, 1)
	assert.Equal(t, entity.OrderStateParcialmenteRecibida, o.State)
}

func TestApplyReceipt_UnaLineaInvalidaAnulaTodaLaEntrega(t *testing.T) {
	o := dispatched(t, 100)
	o.Lines = append(o.Lines, entity.OrderLine{
		ID:           "line-2",
		IngredientID: "ing-azucar",
		OrderedQty:   decimal.NewFromInt(20),
		UnitCost:     decimal.NewFromInt(1800),
	})

	bad := entity.Receipt{
		ID:         "r1",
		ReceivedAt: testNow,
		Lines: []entity.ReceiptLine{
			{LineID: "line-1", Quantity: decimal.NewFromInt(50), ExpiryDate: testNow.AddDate(0, 1, 0)},
			{LineID: "line-2", Quantity: decimal.NewFromInt(25), ExpiryDate: testNow.AddDate(0, 1, 0)}, // excede
		},
	}
	err := o.ApplyReceipt(bad, testNow)
	assert.ErrorIs(t, err, domain.ErrOverReceipt)
	assert.True(t, o.Lines[0].ReceivedQty.IsZero(),
		"la línea válida tampoco debe aplicarse si otra excede")
	assert.True(t, o.Lines[1].ReceivedQty.IsZero())
}

func TestApplyReceipt_RechazaLineaDesconocida(t *testing.T) {
	o := dispatched(t, 100)

	err := o.ApplyReceipt(receipt("r1", testNow, "line-inexistente", 10), testNow)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestApplyReceipt_RechazaEntregaVacia(t *testing.T) {
	o := dispatched(t, 100)

	err := o.ApplyReceipt(entity.Receipt{ID: "r1", ReceivedAt: testNow}, testNow)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestApplyReceipt_RechazaEnEstadosNoRecibibles(t *testing.T) {
	o := newTestOrder(100) // Pendiente

	err := o.ApplyReceipt(receipt("r1", testNow, "line-1", 10), testNow)
	assert.ErrorIs(t, err, domain.ErrInvalidState)
}

func TestApplyReceipt_EntregaExactaCompletaLaOrden(t *testing.T) {
	o := dispatched(t, 100)

	require.NoError(t, o.ApplyReceipt(receipt("r1", testNow, "line-1", 100), testNow))
	assert.Equal(t, entity.OrderStateRecibida, o.State)
	assert.True(t, o.IsTerminal())
}

func TestApplyReceipt_OrdenRecibidaRechazaComoSobreRecepcion(t *testing.T) {
	o := dispatched(t, 100)
	require.NoError(t, o.ApplyReceipt(receipt("r1", testNow, "line-1", 60), testNow))
	require.NoError(t, o.ApplyReceipt(receipt("r2", testNow, "line-1", 40), testNow))
	require.Equal(t, entity.OrderStateRecibida, o.State)

	err := o.ApplyReceipt(receipt("r3", testNow, "line-1", 1), testNow)
	assert.ErrorIs(t, err, domain.ErrOverReceipt,
		"el pendiente es cero: cualquier cantidad es sobre-recepción")
	assert.Equal(t, entity.OrderStateRecibida, o.State)
	assert.Len(t, o.Receipts, 2)
}
