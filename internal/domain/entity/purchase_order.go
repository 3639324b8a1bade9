package entity

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/despensa-api/internal/domain"
)

// Estados de una orden de compra. Recibida y Cancelada son terminales.
const (
	OrderStatePendiente            = "PENDIENTE"
	OrderStateAprobada             = "APROBADA"
	OrderStateEnTransito           = "EN_TRANSITO"
	OrderStateParcialmenteRecibida = "PARCIALMENTE_RECIBIDA"
	OrderStateRecibida             = "RECIBIDA"
	OrderStateCancelada            = "CANCELADA"
)

// OrderLine es una línea de pedido: ingrediente, cantidad ordenada, costo unitario
// y acumulado recibido. Invariante: ReceivedQty nunca supera OrderedQty.
type OrderLine struct {
	ID           string
	IngredientID string
	OrderedQty   decimal.Decimal
	ReceivedQty  decimal.Decimal
	UnitCost     decimal.Decimal
}

// Outstanding devuelve lo que falta por recibir de la línea.
func (l *OrderLine) Outstanding() decimal.Decimal {
	return l.OrderedQty.Sub(l.ReceivedQty)
}

// ReceiptLine es una línea de entrega contra una OrderLine: cantidad recibida
// y vencimiento del lote que se creará con ella.
type ReceiptLine struct {
	LineID     string
	Quantity   decimal.Decimal
	ExpiryDate time.Time
}

// Receipt es un evento de entrega registrado sobre la orden.
type Receipt struct {
	ID         string
	ReceivedAt time.Time
	Lines      []ReceiptLine
}

// PurchaseOrder es una orden de compra a un proveedor. El estado es siempre
// función del vector de cantidades recibidas por línea: parcial en alguna línea
// implica ParcialmenteRecibida; todas completas, Recibida.
type PurchaseOrder struct {
	ID         string
	SupplierID string
	State      string
	Lines      []OrderLine
	Receipts   []Receipt
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// IsTerminal indica si la orden ya no acepta transiciones.
func (o *PurchaseOrder) IsTerminal() bool {
	return o.State == OrderStateRecibida || o.State == OrderStateCancelada
}

// HasReceipts indica si alguna línea ya registró cantidad recibida.
func (o *PurchaseOrder) HasReceipts() bool {
	for i := range o.Lines {
		if o.Lines[i].ReceivedQty.GreaterThan(decimal.Zero) {
			return true
		}
	}
	return false
}

// Line busca una línea por ID. Devuelve nil si no existe.
func (o *PurchaseOrder) Line(lineID string) *OrderLine {
	for i := range o.Lines {
		if o.Lines[i].ID == lineID {
			return &o.Lines[i]
		}
	}
	return nil
}

// Approve: Pendiente → Aprobada.
func (o *PurchaseOrder) Approve(now time.Time) error {
	if o.State != OrderStatePendiente {
		return domain.ErrInvalidState
	}
	o.State = OrderStateAprobada
	o.UpdatedAt = now
	return nil
}

// Dispatch: Aprobada → EnTransito.
func (o *PurchaseOrder) Dispatch(now time.Time) error {
	if o.State != OrderStateAprobada {
		return domain.ErrInvalidState
	}
	o.State = OrderStateEnTransito
	o.UpdatedAt = now
	return nil
}

// Cancel: alcanzable desde cualquier estado no terminal, salvo que ya exista
// cantidad recibida (una orden parcialmente entregada no se cancela: dejaría
// recepciones huérfanas).
func (o *PurchaseOrder) Cancel(now time.Time) error {
	if o.IsTerminal() {
		return domain.ErrInvalidState
	}
	if o.HasReceipts() {
		return domain.ErrInvalidState
	}
	o.State = OrderStateCancelada
	o.UpdatedAt = now
	return nil
}

// CanReceive indica si la orden admite registrar entregas.
func (o *PurchaseOrder) CanReceive() bool {
	return o.State == OrderStateEnTransito || o.State == OrderStateParcialmenteRecibida
}

// ApplyReceipt valida y aplica una entrega (parcial o total). Primero verifica
// todas las líneas contra su pendiente; solo si ninguna excede se mutan los
// acumulados, así un rechazo no deja aplicación parcial. El estado resultante es
// Recibida si toda línea quedó completa, ParcialmenteRecibida en caso contrario.
//
// Una orden ya Recibida no corta aquí: su pendiente es cero en toda línea, así
// que cualquier cantidad cae en la verificación por línea y se rechaza como
// sobre-recepción. Cancelada sí es transición inválida.
func (o *PurchaseOrder) ApplyReceipt(receipt Receipt, now time.Time) error {
	if !o.CanReceive() && o.State != OrderStateRecibida {
		return domain.ErrInvalidState
	}
	if len(receipt.Lines) == 0 {
		return domain.ErrInvalidInput
	}
	pending := make(map[string]decimal.Decimal, len(o.Lines))
	for i := range o.Lines {
		pending[o.Lines[i].ID] = o.Lines[i].Outstanding()
	}
	for _, rl := range receipt.Lines {
		if !rl.Quantity.GreaterThan(decimal.Zero) {
			return domain.ErrInvalidInput
		}
		outstanding, ok := pending[rl.LineID]
		if !ok {
			return domain.ErrInvalidInput
		}
		if rl.Quantity.GreaterThan(outstanding) {
			return domain.ErrOverReceipt
		}
		pending[rl.LineID] = outstanding.Sub(rl.Quantity)
	}

	for _, rl := range receipt.Lines {
		line := o.Line(rl.LineID)
		line.ReceivedQty = line.ReceivedQty.Add(rl.Quantity)
	}
	o.Receipts = append(o.Receipts, receipt)

	o.State = OrderStateRecibida
	for i := range o.Lines {
		if o.Lines[i].Outstanding().GreaterThan(decimal.Zero) {
			o.State = OrderStateParcialmenteRecibida
			break
		}
	}
	o.UpdatedAt = now
	return nil
}
