// Package memory implementa todos los puertos de persistencia sobre mapas en
// memoria. Se usa en modo desarrollo (sin DATABASE_URL) y en los tests de los
// casos de uso; las transacciones se simulan con snapshot + restore, así el
// todo-o-nada del núcleo se comporta igual que con PostgreSQL.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/jhoicas/despensa-api/internal/application/inventory"
	"github.com/jhoicas/despensa-api/internal/application/orders"
	"github.com/jhoicas/despensa-api/internal/domain/entity"
	"github.com/jhoicas/despensa-api/internal/domain/repository"
)

var _ inventory.TxRunner = (*Store)(nil)
var _ orders.TxRunner = (*Store)(nil)

// Store contiene el estado completo en memoria.
type Store struct {
	mu          sync.RWMutex
	txMu        sync.Mutex
	ingredients map[string]entity.Ingredient
	lots        map[string]entity.Lot
	suppliers   map[string]entity.Supplier
	orders      map[string]entity.PurchaseOrder
	movements   []entity.StockMovement
}

// NewStore crea un store vacío.
func NewStore() *Store {
	return &Store{
		ingredients: map[string]entity.Ingredient{},
		lots:        map[string]entity.Lot{},
		suppliers:   map[string]entity.Supplier{},
		orders:      map[string]entity.PurchaseOrder{},
	}
}

// Ingredients devuelve el adaptador IngredientRepository.
func (s *Store) Ingredients() repository.IngredientRepository { return &ingredientRepo{s: s} }

// Lots devuelve el adaptador LotRepository.
func (s *Store) Lots() repository.LotRepository { return &lotRepo{s: s} }

// Suppliers devuelve el adaptador SupplierRepository.
func (s *Store) Suppliers() repository.SupplierRepository { return &supplierRepo{s: s} }

// Orders devuelve el adaptador PurchaseOrderRepository.
func (s *Store) Orders() repository.PurchaseOrderRepository { return &orderRepo{s: s} }

// Movements devuelve el adaptador StockMovementRepository.
func (s *Store) Movements() repository.StockMovementRepository { return &movementRepo{s: s} }

// Run ejecuta fn como transacción de inventario: toma snapshot del estado y lo
// restaura si fn falla, emulando el Rollback de una tx SQL. txMu serializa las
// transacciones, el equivalente del bloqueo por agregado; los escritores fuera
// de transacción también lo toman, así un alta no se cuela entre el snapshot y
// el restore de una tx en vuelo y queda revertida en silencio.
func (s *Store) Run(ctx context.Context, fn func(
	lotRepo repository.LotRepository,
	movRepo repository.StockMovementRepository,
) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()
	snap := s.snapshot()
	if err := fn(&lotRepo{s: s, inTx: true}, &movementRepo{s: s, inTx: true}); err != nil {
		s.restore(snap)
		return err
	}
	return nil
}

// RunOrders ejecuta fn como transacción de fulfillment.
func (s *Store) RunOrders(ctx context.Context, fn func(
	orderRepo repository.PurchaseOrderRepository,
	lotRepo repository.LotRepository,
	movRepo repository.StockMovementRepository,
) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()
	snap := s.snapshot()
	err := fn(&orderRepo{s: s, inTx: true}, &lotRepo{s: s, inTx: true}, &movementRepo{s: s, inTx: true})
	if err != nil {
		s.restore(snap)
		return err
	}
	return nil
}

type state struct {
	ingredients map[string]entity.Ingredient
	lots        map[string]entity.Lot
	suppliers   map[string]entity.Supplier
	orders      map[string]entity.PurchaseOrder
	movements   []entity.StockMovement
}

func (s *Store) snapshot() state {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap := state{
		ingredients: make(map[string]entity.Ingredient, len(s.ingredients)),
		lots:        make(map[string]entity.Lot, len(s.lots)),
		suppliers:   make(map[string]entity.Supplier, len(s.suppliers)),
		orders:      make(map[string]entity.PurchaseOrder, len(s.orders)),
		movements:   append([]entity.StockMovement(nil), s.movements...),
	}
	for k, v := range s.ingredients {
		snap.ingredients[k] = v
	}
	for k, v := range s.lots {
		snap.lots[k] = v
	}
	for k, v := range s.suppliers {
		snap.suppliers[k] = v
	}
	for k, v := range s.orders {
		snap.orders[k] = cloneOrder(v)
	}
	return snap
}

func (s *Store) restore(snap state) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ingredients = snap.ingredients
	s.lots = snap.lots
	s.suppliers = snap.suppliers
	s.orders = snap.orders
	s.movements = snap.movements
}

// lockWrite toma txMu para escrituras fuera de transacción; dentro de una tx
// el lock ya lo tiene Run/RunOrders. Devuelve la función de liberación.
func (s *Store) lockWrite(inTx bool) func() {
	if inTx {
		return func() {}
	}
	s.txMu.Lock()
	return s.txMu.Unlock
}

// cloneOrder copia el agregado completo: líneas y recepciones son slices y no
// pueden compartirse entre el store y los llamadores.
func cloneOrder(o entity.PurchaseOrder) entity.PurchaseOrder {
	c := o
	c.Lines = append([]entity.OrderLine(nil), o.Lines...)
	c.Receipts = make([]entity.Receipt, 0, len(o.Receipts))
	for _, r := range o.Receipts {
		rc := r
		rc.Lines = append([]entity.ReceiptLine(nil), r.Lines...)
		c.Receipts = append(c.Receipts, rc)
	}
	return c
}

// ── IngredientRepository ─────────────────────────────────────────────────────

type ingredientRepo struct {
	s    *Store
	inTx bool
}

func (r *ingredientRepo) Create(ingredient *entity.Ingredient) error {
	defer r.s.lockWrite(r.inTx)()
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.ingredients[ingredient.ID] = *ingredient
	return nil
}

func (r *ingredientRepo) GetByID(id string) (*entity.Ingredient, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if i, ok := r.s.ingredients[id]; ok {
		return &i, nil
	}
	return nil, nil
}

func (r *ingredientRepo) Update(ingredient *entity.Ingredient) error {
	return r.Create(ingredient)
}

func (r *ingredientRepo) List(limit, offset int) ([]*entity.Ingredient, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	all := make([]*entity.Ingredient, 0, len(r.s.ingredients))
	for _, i := range r.s.ingredients {
		c := i
		all = append(all, &c)
	}
	sort.Slice(all, func(a, b int) bool { return all[a].Name < all[b].Name })
	return paginate(all, limit, offset), nil
}

func (r *ingredientRepo) ListActive() ([]*entity.Ingredient, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var active []*entity.Ingredient
	for _, i := range r.s.ingredients {
		if i.Active {
			c := i
			active = append(active, &c)
		}
	}
	sort.Slice(active, func(a, b int) bool { return active[a].ID < active[b].ID })
	return active, nil
}

// ── LotRepository ────────────────────────────────────────────────────────────

type lotRepo struct {
	s    *Store
	inTx bool
}

func (r *lotRepo) Create(lot *entity.Lot) error {
	defer r.s.lockWrite(r.inTx)()
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.lots[lot.ID] = *lot
	return nil
}

func (r *lotRepo) GetByID(id string) (*entity.Lot, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if l, ok := r.s.lots[id]; ok {
		return &l, nil
	}
	return nil, nil
}

func (r *lotRepo) Update(lot *entity.Lot) error {
	return r.Create(lot)
}

func (r *lotRepo) ListByIngredient(ingredientID string) ([]*entity.Lot, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return r.collect(func(l entity.Lot) bool { return l.IngredientID == ingredientID }), nil
}

func (r *lotRepo) ListByIngredientForUpdate(ingredientID string) ([]*entity.Lot, error) {
	// txMu ya serializa a los escritores; equivale al FOR UPDATE.
	return r.ListByIngredient(ingredientID)
}

func (r *lotRepo) ListExpiringBefore(cutoff time.Time) ([]*entity.Lot, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return r.collect(func(l entity.Lot) bool {
		return l.State == entity.LotStateDisponible && !l.ExpiryDate.After(cutoff)
	}), nil
}

func (r *lotRepo) ListExpiredCandidates(now time.Time, ingredientID string) ([]*entity.Lot, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return r.collect(func(l entity.Lot) bool {
		if ingredientID != "" && l.IngredientID != ingredientID {
			return false
		}
		return l.ExpiryDate.Before(now) && l.State != entity.LotStateVencido
	}), nil
}

// collect asume el lock tomado. Ordena por vencimiento y ID, como el adaptador SQL.
func (r *lotRepo) collect(match func(entity.Lot) bool) []*entity.Lot {
	var lots []*entity.Lot
	for _, l := range r.s.lots {
		if match(l) {
			c := l
			lots = append(lots, &c)
		}
	}
	sort.Slice(lots, func(a, b int) bool {
		if !lots[a].ExpiryDate.Equal(lots[b].ExpiryDate) {
			return lots[a].ExpiryDate.Before(lots[b].ExpiryDate)
		}
		return lots[a].ID < lots[b].ID
	})
	return lots
}

// ── SupplierRepository ───────────────────────────────────────────────────────

type supplierRepo struct {
	s    *Store
	inTx bool
}

func (r *supplierRepo) Create(supplier *entity.Supplier) error {
	defer r.s.lockWrite(r.inTx)()
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.suppliers[supplier.ID] = *supplier
	return nil
}

func (r *supplierRepo) GetByID(id string) (*entity.Supplier, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if s, ok := r.s.suppliers[id]; ok {
		return &s, nil
	}
	return nil, nil
}

func (r *supplierRepo) Update(supplier *entity.Supplier) error {
	return r.Create(supplier)
}

func (r *supplierRepo) List(limit, offset int) ([]*entity.Supplier, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	all := make([]*entity.Supplier, 0, len(r.s.suppliers))
	for _, s := range r.s.suppliers {
		c := s
		all = append(all, &c)
	}
	sort.Slice(all, func(a, b int) bool { return all[a].Name < all[b].Name })
	return paginate(all, limit, offset), nil
}

// ── PurchaseOrderRepository ──────────────────────────────────────────────────

type orderRepo struct {
	s    *Store
	inTx bool
}

func (r *orderRepo) Create(order *entity.PurchaseOrder) error {
	defer r.s.lockWrite(r.inTx)()
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.orders[order.ID] = cloneOrder(*order)
	return nil
}

func (r *orderRepo) GetByID(id string) (*entity.PurchaseOrder, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if o, ok := r.s.orders[id]; ok {
		c := cloneOrder(o)
		return &c, nil
	}
	return nil, nil
}

func (r *orderRepo) GetByIDForUpdate(id string) (*entity.PurchaseOrder, error) {
	// txMu ya serializa a los escritores; equivale al FOR UPDATE.
	return r.GetByID(id)
}

func (r *orderRepo) Update(order *entity.PurchaseOrder) error {
	return r.Create(order)
}

func (r *orderRepo) List(state, supplierID string, limit, offset int) ([]*entity.PurchaseOrder, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var list []*entity.PurchaseOrder
	for _, o := range r.s.orders {
		if state != "" && o.State != state {
			continue
		}
		if supplierID != "" && o.SupplierID != supplierID {
			continue
		}
		c := cloneOrder(o)
		list = append(list, &c)
	}
	sort.Slice(list, func(a, b int) bool {
		if !list[a].CreatedAt.Equal(list[b].CreatedAt) {
			return list[a].CreatedAt.After(list[b].CreatedAt)
		}
		return list[a].ID < list[b].ID
	})
	return paginate(list, limit, offset), nil
}

// ── StockMovementRepository ──────────────────────────────────────────────────

type movementRepo struct {
	s    *Store
	inTx bool
}

func (r *movementRepo) Create(movement *entity.StockMovement) error {
	defer r.s.lockWrite(r.inTx)()
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.movements = append(r.s.movements, *movement)
	return nil
}

func (r *movementRepo) ListByIngredient(ingredientID string, from, to *time.Time, limit, offset int) ([]*entity.StockMovement, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var list []*entity.StockMovement
	for i := range r.s.movements {
		m := r.s.movements[i]
		if m.IngredientID != ingredientID {
			continue
		}
		if from != nil && m.Date.Before(*from) {
			continue
		}
		if to != nil && m.Date.After(*to) {
			continue
		}
		list = append(list, &m)
	}
	sort.SliceStable(list, func(a, b int) bool { return list[a].Date.Before(list[b].Date) })
	return paginate(list, limit, offset), nil
}

func (r *movementRepo) ListByLot(lotID string) ([]*entity.StockMovement, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var list []*entity.StockMovement
	for i := range r.s.movements {
		m := r.s.movements[i]
		if m.LotID == lotID {
			list = append(list, &m)
		}
	}
	sort.SliceStable(list, func(a, b int) bool { return list[a].Date.Before(list[b].Date) })
	return list, nil
}

func paginate[T any](list []T, limit, offset int) []T {
	if offset >= len(list) {
		return nil
	}
	list = list[offset:]
	if limit > 0 && limit < len(list) {
		list = list[:limit]
	}
	return list
}
