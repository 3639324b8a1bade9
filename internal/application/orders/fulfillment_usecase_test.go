package orders_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apporders "github.com/jhoicas/despensa-api/internal/application/orders"
	"github.com/jhoicas/despensa-api/internal/domain"
	"github.com/jhoicas/despensa-api/internal/domain/entity"
	"github.com/jhoicas/despensa-api/internal/infrastructure/memory"
)

var testNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

type stubClock struct{ t time.Time }

func (c *stubClock) Now() time.Time { return c.t }

type fixture struct {
	store       *memory.Store
	clock       *stubClock
	fulfillment *apporders.FulfillmentUseCase
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	clock := &stubClock{t: testNow}

	require.NoError(t, store.Suppliers().Create(&entity.Supplier{
		ID:        "sup-lacteos",
		Name:      "Lácteos del Valle",
		TaxID:     "900111222",
		Active:    true,
		CreatedAt: testNow,
	}))
	require.NoError(t, store.Ingredients().Create(&entity.Ingredient{
		ID:          "ing-harina",
		Name:        "Harina de trigo",
		Category:    "secos",
		UnitMeasure: "kg",
		MinStock:    decimal.NewFromInt(10),
		Active:      true,
		CreatedAt:   testNow,
		UpdatedAt:   testNow,
	}))

	return &fixture{
		store:       store,
		clock:       clock,
		fulfillment: apporders.NewFulfillmentUseCase(store, store.Orders(), store.Suppliers(), store.Ingredients(), clock),
	}
}

// createOrder arma una orden de 100 kg de harina y la lleva a EnTransito.
func (f *fixture) dispatchedOrder(t *testing.T) *entity.PurchaseOrder {
	t.Helper()
	ctx := context.Background()
	order, err := f.fulfillment.CreateOrder(ctx, "sup-lacteos", []apporders.OrderLineInput{
		{IngredientID: "ing-harina", Quantity: decimal.NewFromInt(100), UnitCost: decimal.NewFromInt(2500)},
	})
	require.NoError(t, err)
	_, err = f.fulfillment.Approve(ctx, order.ID)
	require.NoError(t, err)
	order, err = f.fulfillment.Dispatch(ctx, order.ID)
	require.NoError(t, err)
	return order
}

// ──────────────────────────────────────────────────────────────────────────────
// CreateOrder
// ──────────────────────────────────────────────────────────────────────────────

func TestCreateOrder_NacePendiente(t *testing.T) {
	f := newFixture(t)
	order, err := f.fulfillment.CreateOrder(context.Background(), "sup-lacteos", []apporders.OrderLineInput{
		{IngredientID: "ing-harina", Quantity: decimal.NewFromInt(100), UnitCost: decimal.NewFromInt(2500)},
	})
	require.NoError(t, err)
	assert.Equal(t, entity.OrderStatePendiente, order.State)
	require.Len(t, order.Lines, 1)
	assert.True(t, order.Lines[0].ReceivedQty.IsZero())
}

func TestCreateOrder_RechazaProveedorInactivo(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.store.Suppliers().Create(&entity.Supplier{
		ID: "sup-cerrado", Name: "Cerrado SAS", Active: false, CreatedAt: testNow,
	}))

	_, err := f.fulfillment.CreateOrder(context.Background(), "sup-cerrado", []apporders.OrderLineInput{
		{IngredientID: "ing-harina", Quantity: decimal.NewFromInt(1), UnitCost: decimal.NewFromInt(100)},
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCreateOrder_RechazaLineasInvalidas(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.fulfillment.CreateOrder(ctx, "sup-lacteos", nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.fulfillment.CreateOrder(ctx, "sup-lacteos", []apporders.OrderLineInput{
		{IngredientID: "ing-harina", Quantity: decimal.Zero, UnitCost: decimal.NewFromInt(100)},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.fulfillment.CreateOrder(ctx, "sup-lacteos", []apporders.OrderLineInput{
		{IngredientID: "ing-fantasma", Quantity: decimal.NewFromInt(1), UnitCost: decimal.NewFromInt(100)},
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ──────────────────────────────────────────────────────────────────────────────
// Transiciones vía caso de uso
// ──────────────────────────────────────────────────────────────────────────────

func TestTransiciones_FlujoCompleto(t *testing.T) {
	f := newFixture(t)
	order := f.dispatchedOrder(t)
	assert.Equal(t, entity.OrderStateEnTransito, order.State)

	// La transición quedó persistida, no solo en la copia devuelta.
	got, err := f.store.Orders().GetByID(order.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.OrderStateEnTransito, got.State)
}

func TestTransiciones_OrdenInexistente(t *testing.T) {
	f := newFixture(t)
	_, err := f.fulfillment.Approve(context.Background(), "po-fantasma")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCancel_RechazadaTrasPrimeraRecepcion(t *testing.T) {
	f := newFixture(t)
	order := f.dispatchedOrder(t)
	ctx := context.Background()

	_, err := f.fulfillment.ReceiveDelivery(ctx, order.ID, []apporders.ReceiptLineInput{
		{LineID: order.Lines[0].ID, Quantity: decimal.NewFromInt(10), ExpiryDate: testNow.AddDate(0, 1, 0)},
	})
	require.NoError(t, err)

	_, err = f.fulfillment.Cancel(ctx, order.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidState)
}

// ──────────────────────────────────────────────────────────────────────────────
// ReceiveDelivery
// ──────────────────────────────────────────────────────────────────────────────

func TestReceiveDelivery_ParcialLuegoCompleta(t *testing.T) {
	f := newFixture(t)
	order := f.dispatchedOrder(t)
	ctx := context.Background()
	lineID := order.Lines[0].ID

	// 60 de 100: parcial.
	order, err := f.fulfillment.ReceiveDelivery(ctx, order.ID, []apporders.ReceiptLineInput{
		{LineID: lineID, Quantity: decimal.NewFromInt(60), ExpiryDate: testNow.AddDate(0, 1, 0)},
	})
	require.NoError(t, err)
	assert.Equal(t, entity.OrderStateParcialmenteRecibida, order.State)

	// Los 40 restantes: completa.
	order, err = f.fulfillment.ReceiveDelivery(ctx, order.ID, []apporders.ReceiptLineInput{
		{LineID: lineID, Quantity: decimal.NewFromInt(40), ExpiryDate: testNow.AddDate(0, 2, 0)},
	})
	require.NoError(t, err)
	assert.Equal(t, entity.OrderStateRecibida, order.State)
	assert.Len(t, order.Receipts, 2)

	// Cada entrega creó su lote con su propio vencimiento.
	lots, err := f.store.Lots().ListByIngredient("ing-harina")
	require.NoError(t, err)
	require.Len(t, lots, 2)
	assert.True(t, lots[0].ReceivedQty.Equal(decimal.NewFromInt(60)))
	assert.True(t, lots[1].ReceivedQty.Equal(decimal.NewFromInt(40)))
}

func TestReceiveDelivery_EmiteEntradasReferenciandoLaOrden(t *testing.T) {
	f := newFixture(t)
	order := f.dispatchedOrder(t)

	_, err := f.fulfillment.ReceiveDelivery(context.Background(), order.ID, []apporders.ReceiptLineInput{
		{LineID: order.Lines[0].ID, Quantity: decimal.NewFromInt(25), ExpiryDate: testNow.AddDate(0, 1, 0)},
	})
	require.NoError(t, err)

	movs, err := f.store.Movements().ListByIngredient("ing-harina", nil, nil, 50, 0)
	require.NoError(t, err)
	require.Len(t, movs, 1)
	assert.Equal(t, entity.MovementTypeEntrada, movs[0].Type)
	assert.True(t, movs[0].Quantity.Equal(decimal.NewFromInt(25)))
	assert.Equal(t, order.ID, movs[0].Reference,
		"la ENTRADA de una recepción referencia la orden que la originó")
}

func TestReceiveDelivery_SobreRecepcionNoDejaRastro(t *testing.T) {
	f := newFixture(t)
	order := f.dispatchedOrder(t)
	ctx := context.Background()
	lineID := order.Lines[0].ID

	_, err := f.fulfillment.ReceiveDelivery(ctx, order.ID, []apporders.ReceiptLineInput{
		{LineID: lineID, Quantity: decimal.NewFromInt(60), ExpiryDate: testNow.AddDate(0, 1, 0)},
	})
	require.NoError(t, err)

	// 41 > 40 pendientes: la entrega completa se rechaza.
	_, err = f.fulfillment.ReceiveDelivery(ctx, order.ID, []apporders.ReceiptLineInput{
		{LineID: lineID, Quantity: decimal.NewFromInt(41), ExpiryDate: testNow.AddDate(0, 1, 0)},
	})
	assert.ErrorIs(t, err, domain.ErrOverReceipt)

	// Ni lote ni movimiento nuevos, y la orden sigue en 60 recibidos.
	lots, lerr := f.store.Lots().ListByIngredient("ing-harina")
	require.NoError(t, lerr)
	assert.Len(t, lots, 1)

	got, gerr := f.store.Orders().GetByID(order.ID)
	require.NoError(t, gerr)
	assert.True(t, got.Lines[0].ReceivedQty.Equal(decimal.NewFromInt(60)))
	assert.Equal(t, entity.OrderStateParcialmenteRecibida, got.State)
	assert.Len(t, got.Receipts, 1)
}

func TestReceiveDelivery_OrdenCompletaRechazaComoSobreRecepcion(t *testing.T) {
	f := newFixture(t)
	order := f.dispatchedOrder(t)
	ctx := context.Background()
	lineID := order.Lines[0].ID

	_, err := f.fulfillment.ReceiveDelivery(ctx, order.ID, []apporders.ReceiptLineInput{
		{LineID: lineID, Quantity: decimal.NewFromInt(60), ExpiryDate: testNow.AddDate(0, 1, 0)},
	})
	require.NoError(t, err)
	order, err = f.fulfillment.ReceiveDelivery(ctx, order.ID, []apporders.ReceiptLineInput{
		{LineID: lineID, Quantity: decimal.NewFromInt(40), ExpiryDate: testNow.AddDate(0, 2, 0)},
	})
	require.NoError(t, err)
	require.Equal(t, entity.OrderStateRecibida, order.State)

	// Tercera entrega contra una orden completa: el pendiente es cero y
	// cualquier cantidad es sobre-recepción.
	_, err = f.fulfillment.ReceiveDelivery(ctx, order.ID, []apporders.ReceiptLineInput{
		{LineID: lineID, Quantity: decimal.NewFromInt(1), ExpiryDate: testNow.AddDate(0, 1, 0)},
	})
	assert.ErrorIs(t, err, domain.ErrOverReceipt)

	got, gerr := f.store.Orders().GetByID(order.ID)
	require.NoError(t, gerr)
	assert.Equal(t, entity.OrderStateRecibida, got.State)
	assert.Len(t, got.Receipts, 2)
}

func TestReceiveDelivery_VencimientoPasadoRechazaTodaLaEntrega(t *testing.T) {
	f := newFixture(t)
	order := f.dispatchedOrder(t)

	_, err := f.fulfillment.ReceiveDelivery(context.Background(), order.ID, []apporders.ReceiptLineInput{
		{LineID: order.Lines[0].ID, Quantity: decimal.NewFromInt(10), ExpiryDate: testNow.AddDate(0, 0, -1)},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput,
		"nunca nace un lote ya vencido")

	// La aplicación de la recepción también se revirtió.
	got, gerr := f.store.Orders().GetByID(order.ID)
	require.NoError(t, gerr)
	assert.True(t, got.Lines[0].ReceivedQty.IsZero())
	assert.Empty(t, got.Receipts)
	assert.Equal(t, entity.OrderStateEnTransito, got.State)
}

func TestReceiveDelivery_RechazaEstadosNoRecibibles(t *testing.T) {
	f := newFixture(t)
	order, err := f.fulfillment.CreateOrder(context.Background(), "sup-lacteos", []apporders.OrderLineInput{
		{IngredientID: "ing-harina", Quantity: decimal.NewFromInt(10), UnitCost: decimal.NewFromInt(100)},
	})
	require.NoError(t, err)

	_, err = f.fulfillment.ReceiveDelivery(context.Background(), order.ID, []apporders.ReceiptLineInput{
		{LineID: order.Lines[0].ID, Quantity: decimal.NewFromInt(5), ExpiryDate: testNow.AddDate(0, 1, 0)},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidState)
}
