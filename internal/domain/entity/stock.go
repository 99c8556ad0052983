package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// SparePart repuesto del catálogo (dato maestro, solo se referencia).
type SparePart struct {
	ID          string
	PartNumber  string
	Name        string
	DefaultCost decimal.Decimal
}

// InventoryItem cantidad actual de un repuesto en una sucursal.
// Quantity es la suma de los movimientos (IN suma, OUT resta) y nunca es negativa.
type InventoryItem struct {
	BranchID  string
	PartID    string
	Quantity  int
	UpdatedAt time.Time
}
