package inventory_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/despensa-api/internal/domain"
	"github.com/jhoicas/despensa-api/internal/domain/entity"
	"github.com/jhoicas/despensa-api/internal/domain/inventory"
)

var testNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func lot(id string, remaining float64, daysToExpiry int) *entity.Lot {
	return &entity.Lot{
		ID:           id,
		IngredientID: "ing-leche",
		ReceivedQty:  decimal.NewFromFloat(remaining),
		RemainingQty: decimal.NewFromFloat(remaining),
		ExpiryDate:   testNow.AddDate(0, 0, daysToExpiry),
		State:        entity.LotStateDisponible,
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// AvailableQuantity
// ──────────────────────────────────────────────────────────────────────────────

func TestAvailableQuantity_SumaSoloLotesElegibles(t *testing.T) {
	expired := lot("lot-vencido", 8, -1)
	reserved := lot("lot-reservado", 4, 5)
	reserved.State = entity.LotStateReservado
	drained := lot("lot-agotado", 0, 5)
	drained.State = entity.LotStateAgotado

	lots := []*entity.Lot{lot("a", 3, 2), lot("b", 10, 9), expired, reserved, drained}

	total := inventory.AvailableQuantity(lots, testNow)
	assert.True(t, total.Equal(decimal.NewFromInt(13)),
		"vencidos, reservados y agotados no cuentan como disponibles")
}

func TestAvailableQuantity_SinLotesEsCero(t *testing.T) {
	assert.True(t, inventory.AvailableQuantity(nil, testNow).IsZero())
}

// ──────────────────────────────────────────────────────────────────────────────
// SortByExpiry
// ──────────────────────────────────────────────────────────────────────────────

func TestSortByExpiry_OrdenaPorVencimientoYDesempataPorID(t *testing.T) {
	lots := []*entity.Lot{lot("z", 1, 5), lot("a", 1, 5), lot("m", 1, 2)}

	inventory.SortByExpiry(lots)

	ids := []string{lots[0].ID, lots[1].ID, lots[2].ID}
	assert.Equal(t, []string{"m", "a", "z"}, ids,
		"a igual vencimiento el desempate es por ID ascendente")
}

// ──────────────────────────────────────────────────────────────────────────────
// PlanConsumption
// ──────────────────────────────────────────────────────────────────────────────

func TestPlanConsumption_RepartePorVencimiento(t *testing.T) {
	// 3 kg que vencen primero + 10 kg más lejanos; pedir 5 debe agotar el
	// primero y tomar 2 del segundo.
	lots := []*entity.Lot{lot("lot-lejano", 10, 9), lot("lot-proximo", 3, 2)}

	plan, err := inventory.PlanConsumption(lots, decimal.NewFromInt(5), testNow)
	require.NoError(t, err)
	require.Len(t, plan, 2)

	assert.Equal(t, "lot-proximo", plan[0].LotID)
	assert.True(t, plan[0].Quantity.Equal(decimal.NewFromInt(3)))
	assert.Equal(t, "lot-lejano", plan[1].LotID)
	assert.True(t, plan[1].Quantity.Equal(decimal.NewFromInt(2)))
}

func TestPlanConsumption_UnSoloLoteSiAlcanza(t *testing.T) {
	lots := []*entity.Lot{lot("lot-proximo", 3, 2), lot("lot-lejano", 10, 9)}

	plan, err := inventory.PlanConsumption(lots, decimal.NewFromInt(2), testNow)
	require.NoError(t, err)
	require.Len(t, plan, 1)
	assert.Equal(t, "lot-proximo", plan[0].LotID)
}

func TestPlanConsumption_InsuficienteNoDevuelvePlan(t *testing.T) {
	lots := []*entity.Lot{lot("a", 3, 2), lot("b", 1, 9)}

	plan, err := inventory.PlanConsumption(lots, decimal.NewFromInt(5), testNow)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Nil(t, plan, "todo-o-nada: sin stock suficiente no hay plan parcial")
}

func TestPlanConsumption_IgnoraLotesVencidos(t *testing.T) {
	// El vencido tiene remanente de sobra pero no debe entrar al plan.
	lots := []*entity.Lot{lot("lot-vencido", 50, -1), lot("lot-vigente", 4, 3)}

	plan, err := inventory.PlanConsumption(lots, decimal.NewFromInt(4), testNow)
	require.NoError(t, err)
	require.Len(t, plan, 1)
	assert.Equal(t, "lot-vigente", plan[0].LotID)

	_, err = inventory.PlanConsumption(lots, decimal.NewFromInt(5), testNow)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
}

func TestPlanConsumption_RechazaCantidadNoPositiva(t *testing.T) {
	lots := []*entity.Lot{lot("a", 3, 2)}

	_, err := inventory.PlanConsumption(lots, decimal.Zero, testNow)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = inventory.PlanConsumption(lots, decimal.NewFromInt(-1), testNow)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestPlanConsumption_CoberturaExactaAgotaTodo(t *testing.T) {
	lots := []*entity.Lot{lot("a", 3, 2), lot("b", 7, 5)}

	plan, err := inventory.PlanConsumption(lots, decimal.NewFromInt(10), testNow)
	require.NoError(t, err)
	require.Len(t, plan, 2)

	total := decimal.Zero
	for _, a := range plan {
		total = total.Add(a.Quantity)
	}
	assert.True(t, total.Equal(decimal.NewFromInt(10)))
}
