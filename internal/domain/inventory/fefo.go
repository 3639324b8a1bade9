// Package inventory contiene los servicios de dominio puros del motor de stock:
// el plan de consumo FEFO y la derivación de disponibilidad desde lotes.
package inventory

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/despensa-api/internal/domain"
	"github.com/jhoicas/despensa-api/internal/domain/entity"
)

// Allocation es el débito planificado sobre un lote concreto.
type Allocation struct {
	LotID    string
	Quantity decimal.Decimal
}

// AvailableQuantity suma el remanente de los lotes Disponibles no vencidos.
func AvailableQuantity(lots []*entity.Lot, now time.Time) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lots {
		if l.Eligible(now) {
			total = total.Add(l.RemainingQty)
		}
	}
	return total
}

// SortByExpiry ordena lotes por vencimiento ascendente y, a igual vencimiento,
// por ID ascendente: el desempate determinista que usan el plan FEFO y las
// consultas de lotes por vencer.
func SortByExpiry(lots []*entity.Lot) {
	sort.SliceStable(lots, func(i, j int) bool {
		if !lots[i].ExpiryDate.Equal(lots[j].ExpiryDate) {
			return lots[i].ExpiryDate.Before(lots[j].ExpiryDate)
		}
		return lots[i].ID < lots[j].ID
	})
}

// PlanConsumption arma el plan FEFO (first-expired-first-out) para consumir qty:
// recorre los lotes elegibles en orden de vencimiento debitando
// min(remanente, pendiente) de cada uno. Es todo-o-nada: si el disponible
// agregado no alcanza devuelve ErrInsufficientStock sin plan, de modo que el
// ejecutor nunca aplica débitos parciales.
func PlanConsumption(lots []*entity.Lot, qty decimal.Decimal, now time.Time) ([]Allocation, error) {
	if !qty.GreaterThan(decimal.Zero) {
		return nil, domain.ErrInvalidInput
	}

	eligible := make([]*entity.Lot, 0, len(lots))
	for _, l := range lots {
		if l.Eligible(now) {
			eligible = append(eligible, l)
		}
	}
	SortByExpiry(eligible)

	if AvailableQuantity(eligible, now).LessThan(qty) {
		return nil, domain.ErrInsufficientStock
	}

	plan := make([]Allocation, 0, len(eligible))
	outstanding := qty
	for _, l := range eligible {
		if !outstanding.GreaterThan(decimal.Zero) {
			break
		}
		take := decimal.Min(l.RemainingQty, outstanding)
		plan = append(plan, Allocation{LotID: l.ID, Quantity: take})
		outstanding = outstanding.Sub(take)
	}
	return plan, nil
}
