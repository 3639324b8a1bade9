package inventory_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appinventory "github.com/jhoicas/despensa-api/internal/application/inventory"
	"github.com/jhoicas/despensa-api/internal/domain"
	"github.com/jhoicas/despensa-api/internal/domain/entity"
	"github.com/jhoicas/despensa-api/internal/infrastructure/memory"
)

var testNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

// stubClock reloj controlado por el test.
type stubClock struct{ t time.Time }

func (c *stubClock) Now() time.Time { return c.t }

// fixture arma el store en memoria con un ingrediente activo y los casos de
// uso cableados contra él.
type fixture struct {
	store   *memory.Store
	clock   *stubClock
	lots    *appinventory.LotUseCase
	consume *appinventory.ConsumeUseCase
	stock   *appinventory.StockQueryUseCase
	movs    *appinventory.MovementUseCase
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	clock := &stubClock{t: testNow}

	require.NoError(t, store.Ingredients().Create(&entity.Ingredient{
		ID:          "ing-leche",
		Name:        "Leche entera",
		Category:    "lacteos",
		UnitMeasure: "litro",
		MinStock:    decimal.NewFromInt(5),
		Active:      true,
		CreatedAt:   testNow,
		UpdatedAt:   testNow,
	}))

	return &fixture{
		store:   store,
		clock:   clock,
		lots:    appinventory.NewLotUseCase(store, store.Lots(), store.Ingredients(), clock),
		consume: appinventory.NewConsumeUseCase(store, store.Ingredients(), clock),
		stock:   appinventory.NewStockQueryUseCase(store.Ingredients(), store.Lots(), clock),
		movs:    appinventory.NewMovementUseCase(store, store.Movements(), store.Ingredients(), clock),
	}
}

func (f *fixture) addLot(t *testing.T, qty float64, daysToExpiry int) *entity.Lot {
	t.Helper()
	lot, err := f.lots.CreateLot(context.Background(), appinventory.CreateLotInput{
		IngredientID: "ing-leche",
		Quantity:     decimal.NewFromFloat(qty),
		ExpiryDate:   testNow.AddDate(0, 0, daysToExpiry),
	})
	require.NoError(t, err)
	return lot
}

// ──────────────────────────────────────────────────────────────────────────────
// CreateLot
// ──────────────────────────────────────────────────────────────────────────────

func TestCreateLot_RegistraEntradaEnElLibro(t *testing.T) {
	f := newFixture(t)
	lot := f.addLot(t, 10, 5)

	movs, err := f.store.Movements().ListByLot(lot.ID)
	require.NoError(t, err)
	require.Len(t, movs, 1)
	assert.Equal(t, entity.MovementTypeEntrada, movs[0].Type)
	assert.True(t, movs[0].Quantity.Equal(decimal.NewFromInt(10)),
		"la ENTRADA registra la cantidad recibida en positivo")
}

func TestCreateLot_IngredienteInexistente(t *testing.T) {
	f := newFixture(t)
	_, err := f.lots.CreateLot(context.Background(), appinventory.CreateLotInput{
		IngredientID: "ing-fantasma",
		Quantity:     decimal.NewFromInt(1),
		ExpiryDate:   testNow.AddDate(0, 0, 5),
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ──────────────────────────────────────────────────────────────────────────────
// Consume
// ──────────────────────────────────────────────────────────────────────────────

func TestConsume_RepartePorVencimientoEntreLotes(t *testing.T) {
	f := newFixture(t)
	cercano := f.addLot(t, 3, 2)
	lejano := f.addLot(t, 10, 9)

	movs, err := f.consume.Consume(context.Background(), "ing-leche", decimal.NewFromInt(5), "comanda-42")
	require.NoError(t, err)
	require.Len(t, movs, 2, "consumir 5 sobre lotes de 3 y 10 toca ambos")

	// El lote que vence primero se agota por completo.
	assert.Equal(t, cercano.ID, movs[0].LotID)
	assert.True(t, movs[0].Quantity.Equal(decimal.NewFromInt(-3)),
		"los movimientos SALIDA llevan cantidad negativa")
	assert.Equal(t, lejano.ID, movs[1].LotID)
	assert.True(t, movs[1].Quantity.Equal(decimal.NewFromInt(-2)))

	// Misma referencia en todos los movimientos de la solicitud.
	assert.Equal(t, "comanda-42", movs[0].Reference)
	assert.Equal(t, "comanda-42", movs[1].Reference)

	// Estados resultantes de los lotes.
	got, err := f.store.Lots().GetByID(cercano.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.LotStateAgotado, got.State)
	got, err = f.store.Lots().GetByID(lejano.ID)
	require.NoError(t, err)
	assert.True(t, got.RemainingQty.Equal(decimal.NewFromInt(8)))
}

func TestConsume_TodoONada(t *testing.T) {
	f := newFixture(t)
	f.addLot(t, 3, 2)
	f.addLot(t, 1, 9)

	_, err := f.consume.Consume(context.Background(), "ing-leche", decimal.NewFromInt(5), "")
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	// Ningún lote debe haberse tocado.
	avail, err := f.stock.GetAvailableQuantity(context.Background(), "ing-leche")
	require.NoError(t, err)
	assert.True(t, avail.Equal(decimal.NewFromInt(4)),
		"un consumo rechazado no debita ningún lote")
}

func TestConsume_VueltaCompletaDejaAgotado(t *testing.T) {
	f := newFixture(t)
	lot := f.addLot(t, 10, 5)

	_, err := f.consume.Consume(context.Background(), "ing-leche", decimal.NewFromInt(10), "")
	require.NoError(t, err)

	got, err := f.store.Lots().GetByID(lot.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.LotStateAgotado, got.State)
	assert.True(t, got.RemainingQty.IsZero())

	avail, err := f.stock.GetAvailableQuantity(context.Background(), "ing-leche")
	require.NoError(t, err)
	assert.True(t, avail.IsZero())
}

func TestConsume_GeneraReferenciaSiFalta(t *testing.T) {
	f := newFixture(t)
	f.addLot(t, 2, 2)
	f.addLot(t, 2, 4)

	movs, err := f.consume.Consume(context.Background(), "ing-leche", decimal.NewFromInt(4), "")
	require.NoError(t, err)
	require.Len(t, movs, 2)
	assert.NotEmpty(t, movs[0].Reference)
	assert.Equal(t, movs[0].Reference, movs[1].Reference,
		"la referencia generada correlaciona los movimientos de la solicitud")
}

func TestConsume_IgnoraLotesVencidosYReservados(t *testing.T) {
	f := newFixture(t)
	vencido := f.addLot(t, 50, 1)
	f.addLot(t, 4, 9)
	reservado := f.addLot(t, 6, 9)
	_, err := f.lots.Reserve(context.Background(), reservado.ID)
	require.NoError(t, err)

	// Avanza el reloj: el primer lote queda vencido sin reclasificar.
	f.clock.t = testNow.AddDate(0, 0, 2)

	_, err = f.consume.Consume(context.Background(), "ing-leche", decimal.NewFromInt(5), "")
	assert.ErrorIs(t, err, domain.ErrInsufficientStock,
		"solo los 4 del lote vigente cuentan")

	got, err := f.store.Lots().GetByID(vencido.ID)
	require.NoError(t, err)
	assert.True(t, got.RemainingQty.Equal(decimal.NewFromInt(50)))
}

func TestConsume_ValidaEntrada(t *testing.T) {
	f := newFixture(t)

	_, err := f.consume.Consume(context.Background(), "ing-leche", decimal.Zero, "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.consume.Consume(context.Background(), "ing-fantasma", decimal.NewFromInt(1), "")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ──────────────────────────────────────────────────────────────────────────────
// ReclassifyExpired
// ──────────────────────────────────────────────────────────────────────────────

func TestReclassifyExpired_BarridoIdempotente(t *testing.T) {
	f := newFixture(t)
	porVencer := f.addLot(t, 5, 1)
	f.addLot(t, 5, 30)

	f.clock.t = testNow.AddDate(0, 0, 2)

	affected, err := f.lots.ReclassifyExpired(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, []string{porVencer.ID}, affected)

	got, err := f.store.Lots().GetByID(porVencer.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.LotStateVencido, got.State)

	// Segunda pasada: nada que reclasificar.
	affected, err = f.lots.ReclassifyExpired(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, affected)
}

func TestReclassifyExpired_NoEmiteMovimientos(t *testing.T) {
	f := newFixture(t)
	lot := f.addLot(t, 5, 1)
	f.clock.t = testNow.AddDate(0, 0, 2)

	_, err := f.lots.ReclassifyExpired(context.Background(), "")
	require.NoError(t, err)

	movs, err := f.store.Movements().ListByLot(lot.ID)
	require.NoError(t, err)
	assert.Len(t, movs, 1, "solo la ENTRADA original: vencer no mueve cantidades")
}

// ──────────────────────────────────────────────────────────────────────────────
// RegisterAdjustment
// ──────────────────────────────────────────────────────────────────────────────

func TestRegisterAdjustment_AsientoPuroSinTocarLotes(t *testing.T) {
	f := newFixture(t)
	lot := f.addLot(t, 10, 5)

	mov, err := f.movs.RegisterAdjustment(context.Background(), appinventory.AdjustmentInput{
		IngredientID: "ing-leche",
		LotID:        lot.ID,
		Quantity:     decimal.NewFromInt(-2),
		Reference:    "conteo-semanal",
	})
	require.NoError(t, err)
	assert.Equal(t, entity.MovementTypeAjuste, mov.Type)
	assert.True(t, mov.Quantity.Equal(decimal.NewFromInt(-2)))

	got, err := f.store.Lots().GetByID(lot.ID)
	require.NoError(t, err)
	assert.True(t, got.RemainingQty.Equal(decimal.NewFromInt(10)),
		"el ajuste es un asiento del libro, no un débito del lote")
	assert.Equal(t, entity.LotStateDisponible, got.State)
}

func TestRegisterAdjustment_RechazaDeltaCero(t *testing.T) {
	f := newFixture(t)
	_, err := f.movs.RegisterAdjustment(context.Background(), appinventory.AdjustmentInput{
		IngredientID: "ing-leche",
		Quantity:     decimal.Zero,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// ──────────────────────────────────────────────────────────────────────────────
// Historial
// ──────────────────────────────────────────────────────────────────────────────

func TestListByIngredient_OrdenAscendentePorFecha(t *testing.T) {
	f := newFixture(t)
	f.addLot(t, 3, 5)

	f.clock.t = testNow.Add(time.Hour)
	_, err := f.consume.Consume(context.Background(), "ing-leche", decimal.NewFromInt(1), "c1")
	require.NoError(t, err)

	movs, err := f.movs.ListByIngredient(context.Background(), "ing-leche", nil, nil, 50, 0)
	require.NoError(t, err)
	require.Len(t, movs, 2)
	assert.Equal(t, entity.MovementTypeEntrada, movs[0].Type)
	assert.Equal(t, entity.MovementTypeSalida, movs[1].Type)
	assert.True(t, movs[0].Date.Before(movs[1].Date))
}
