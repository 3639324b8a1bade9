package memory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/despensa-api/internal/domain/entity"
	"github.com/jhoicas/despensa-api/internal/domain/repository"
	"github.com/jhoicas/despensa-api/internal/infrastructure/memory"
)

var testNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func testLot(id string) *entity.Lot {
	return &entity.Lot{
		ID:           id,
		IngredientID: "ing-1",
		ReceivedQty:  decimal.NewFromInt(10),
		RemainingQty: decimal.NewFromInt(10),
		ExpiryDate:   testNow.AddDate(0, 1, 0),
		State:        entity.LotStateDisponible,
		CreatedAt:    testNow,
		UpdatedAt:    testNow,
	}
}

func TestRun_RestauraElEstadoSiFnFalla(t *testing.T) {
	store := memory.NewStore()
	require.NoError(t, store.Lots().Create(testLot("lot-1")))

	errBoom := errors.New("boom")
	err := store.Run(context.Background(), func(
		lotRepo repository.LotRepository,
		movRepo repository.StockMovementRepository,
	) error {
		lot, gerr := lotRepo.GetByID("lot-1")
		require.NoError(t, gerr)
		lot.RemainingQty = decimal.Zero
		lot.State = entity.LotStateAgotado
		require.NoError(t, lotRepo.Update(lot))
		require.NoError(t, movRepo.Create(&entity.StockMovement{
			ID: "mov-1", IngredientID: "ing-1", LotID: "lot-1",
			Type: entity.MovementTypeSalida, Quantity: decimal.NewFromInt(-10),
			Date: testNow, CreatedAt: testNow,
		}))
		return errBoom
	})
	require.ErrorIs(t, err, errBoom)

	// Ni el débito ni el movimiento sobreviven al rollback.
	lot, gerr := store.Lots().GetByID("lot-1")
	require.NoError(t, gerr)
	assert.True(t, lot.RemainingQty.Equal(decimal.NewFromInt(10)))
	assert.Equal(t, entity.LotStateDisponible, lot.State)

	movs, merr := store.Movements().ListByLot("lot-1")
	require.NoError(t, merr)
	assert.Empty(t, movs)
}

func TestRun_AltaConcurrenteSobreviveAlRollback(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()

	inTx := make(chan struct{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = store.Run(ctx, func(
			lotRepo repository.LotRepository,
			movRepo repository.StockMovementRepository,
		) error {
			close(inTx)
			_ = lotRepo.Create(testLot("lot-tx"))
			time.Sleep(10 * time.Millisecond)
			return errors.New("boom")
		})
	}()

	// El alta llega con la tx en vuelo: debe esperar al rollback, nunca
	// quedar revertida junto con él.
	<-inTx
	require.NoError(t, store.Ingredients().Create(&entity.Ingredient{
		ID: "ing-sal", Name: "Sal", UnitMeasure: "kg", Active: true,
		CreatedAt: testNow, UpdatedAt: testNow,
	}))
	<-done

	ing, err := store.Ingredients().GetByID("ing-sal")
	require.NoError(t, err)
	require.NotNil(t, ing)
	assert.Equal(t, "Sal", ing.Name)

	lot, err := store.Lots().GetByID("lot-tx")
	require.NoError(t, err)
	assert.Nil(t, lot, "la tx fallida sí se revirtió")
}
