package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/despensa-api/internal/domain/entity"
	"github.com/jhoicas/despensa-api/internal/domain/repository"
)

var _ repository.PurchaseOrderRepository = (*PurchaseOrderRepo)(nil)

// PurchaseOrderRepo implementación de PurchaseOrderRepository sobre PostgreSQL.
// El agregado vive en tres tablas: purchase_orders, purchase_order_lines y
// order_receipts (con order_receipt_lines); Get* lo rearma completo.
type PurchaseOrderRepo struct {
	q Querier
}

// NewPurchaseOrderRepository construye el adaptador. Pasar pool o tx (Querier).
func NewPurchaseOrderRepository(q Querier) *PurchaseOrderRepo {
	return &PurchaseOrderRepo{q: q}
}

// Create persiste la orden con sus líneas.
func (r *PurchaseOrderRepo) Create(order *entity.PurchaseOrder) error {
	ctx := context.Background()
	query := `
		INSERT INTO purchase_orders (id, supplier_id, state, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)`
	if _, err := r.q.Exec(ctx, query, order.ID, order.SupplierID, order.State, order.CreatedAt, order.UpdatedAt); err != nil {
		return storageErr("create purchase order", err)
	}
	for i := range order.Lines {
		line := &order.Lines[i]
		lineQuery := `
			INSERT INTO purchase_order_lines (id, order_id, ingredient_id, ordered_qty, received_qty, unit_cost)
			VALUES ($1, $2, $3, $4, $5, $6)`
		if _, err := r.q.Exec(ctx, lineQuery, line.ID, order.ID, line.IngredientID, line.OrderedQty, line.ReceivedQty, line.UnitCost); err != nil {
			return storageErr("create order line", err)
		}
	}
	return nil
}

// GetByID obtiene la orden completa. Devuelve nil si no existe.
func (r *PurchaseOrderRepo) GetByID(id string) (*entity.PurchaseOrder, error) {
	return r.get(id, false)
}

// GetByIDForUpdate obtiene la orden bloqueando su fila (SELECT FOR UPDATE):
// serializa transiciones concurrentes sobre la misma orden.
func (r *PurchaseOrderRepo) GetByIDForUpdate(id string) (*entity.PurchaseOrder, error) {
	return r.get(id, true)
}

func (r *PurchaseOrderRepo) get(id string, forUpdate bool) (*entity.PurchaseOrder, error) {
	ctx := context.Background()
	query := `SELECT id, supplier_id, state, created_at, updated_at FROM purchase_orders WHERE id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}
	var o entity.PurchaseOrder
	err := r.q.QueryRow(ctx, query, id).Scan(&o.ID, &o.SupplierID, &o.State, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, storageErr("get purchase order", err)
	}
	if err := r.loadLines(ctx, &o); err != nil {
		return nil, err
	}
	if err := r.loadReceipts(ctx, &o); err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *PurchaseOrderRepo) loadLines(ctx context.Context, o *entity.PurchaseOrder) error {
	query := `
		SELECT id, ingredient_id, ordered_qty, received_qty, unit_cost
		FROM purchase_order_lines WHERE order_id = $1 ORDER BY id`
	rows, err := r.q.Query(ctx, query, o.ID)
	if err != nil {
		return storageErr("load order lines", err)
	}
	defer rows.Close()
	for rows.Next() {
		var l entity.OrderLine
		if err := rows.Scan(&l.ID, &l.IngredientID, &l.OrderedQty, &l.ReceivedQty, &l.UnitCost); err != nil {
			return storageErr("scan order line", err)
		}
		o.Lines = append(o.Lines, l)
	}
	return rows.Err()
}

func (r *PurchaseOrderRepo) loadReceipts(ctx context.Context, o *entity.PurchaseOrder) error {
	query := `
		SELECT r.id, r.received_at, l.line_id, l.quantity, l.expiry_date
		FROM order_receipts r
		JOIN order_receipt_lines l ON l.receipt_id = r.id
		WHERE r.order_id = $1
		ORDER BY r.received_at, r.id`
	rows, err := r.q.Query(ctx, query, o.ID)
	if err != nil {
		return storageErr("load order receipts", err)
	}
	defer rows.Close()

	index := make(map[string]int)
	for rows.Next() {
		var receipt entity.Receipt
		var line entity.ReceiptLine
		if err := rows.Scan(&receipt.ID, &receipt.ReceivedAt, &line.LineID, &line.Quantity, &line.ExpiryDate); err != nil {
			return storageErr("scan order receipt", err)
		}
		pos, ok := index[receipt.ID]
		if !ok {
			pos = len(o.Receipts)
			index[receipt.ID] = pos
			o.Receipts = append(o.Receipts, receipt)
		}
		o.Receipts[pos].Lines = append(o.Receipts[pos].Lines, line)
	}
	return rows.Err()
}

// Update persiste estado, acumulados por línea y recepciones nuevas.
func (r *PurchaseOrderRepo) Update(order *entity.PurchaseOrder) error {
	ctx := context.Background()
	query := `UPDATE purchase_orders SET state = $2, updated_at = $3 WHERE id = $1`
	if _, err := r.q.Exec(ctx, query, order.ID, order.State, order.UpdatedAt); err != nil {
		return storageErr("update purchase order", err)
	}
	for i := range order.Lines {
		line := &order.Lines[i]
		lineQuery := `UPDATE purchase_order_lines SET received_qty = $2 WHERE id = $1`
		if _, err := r.q.Exec(ctx, lineQuery, line.ID, line.ReceivedQty); err != nil {
			return storageErr("update order line", err)
		}
	}
	for _, receipt := range order.Receipts {
		receiptQuery := `
			INSERT INTO order_receipts (id, order_id, received_at)
			VALUES ($1, $2, $3)
			ON CONFLICT (id) DO NOTHING`
		tag, err := r.q.Exec(ctx, receiptQuery, receipt.ID, order.ID, receipt.ReceivedAt)
		if err != nil {
			return storageErr("insert order receipt", err)
		}
		if tag.RowsAffected() == 0 {
			continue // recepción ya persistida
		}
		for _, line := range receipt.Lines {
			lineQuery := `
				INSERT INTO order_receipt_lines (receipt_id, line_id, quantity, expiry_date)
				VALUES ($1, $2, $3, $4)`
			if _, err := r.q.Exec(ctx, lineQuery, receipt.ID, line.LineID, line.Quantity, line.ExpiryDate); err != nil {
				return storageErr("insert receipt line", err)
			}
		}
	}
	return nil
}

// List lista órdenes filtrando por estado y/o proveedor, más recientes primero.
func (r *PurchaseOrderRepo) List(state, supplierID string, limit, offset int) ([]*entity.PurchaseOrder, error) {
	ctx := context.Background()
	query := `SELECT id FROM purchase_orders WHERE 1=1`
	args := []any{}
	pos := 1
	if state != "" {
		query += fmt.Sprintf(" AND state = $%d", pos)
		args = append(args, state)
		pos++
	}
	if supplierID != "" {
		query += fmt.Sprintf(" AND supplier_id = $%d", pos)
		args = append(args, supplierID)
		pos++
	}
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", pos, pos+1)
	args = append(args, limit, offset)

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, storageErr("list purchase orders", err)
	}
	defer rows.Close()
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, storageErr("scan order id", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	list := make([]*entity.PurchaseOrder, 0, len(ids))
	for _, id := range ids {
		order, err := r.get(id, false)
		if err != nil {
			return nil, err
		}
		if order != nil {
			list = append(list, order)
		}
	}
	return list, nil
}
