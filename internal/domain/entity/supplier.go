package entity

import "time"

// Supplier representa un proveedor al que se emiten órdenes de compra.
// Pasivo en el núcleo: solo se referencia desde PurchaseOrder.
type Supplier struct {
	ID        string
	Name      string
	TaxID     string
	Email     string
	Phone     string
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
