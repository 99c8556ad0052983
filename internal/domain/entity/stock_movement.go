package entity

import "time"

// Tipos de movimiento de stock.
const (
	MovementTypeIN  = "IN"  // entrada
	MovementTypeOUT = "OUT" // salida (consumo en reparación)
)

// StockMovement registro append-only de un cambio de stock. Quantity siempre positiva;
// el signo lo da Type.
type StockMovement struct {
	ID            string
	BranchID      string
	PartID        string
	Type          string
	Quantity      int
	Reason        string
	RequestID     string // solicitud de mantenimiento que originó la salida (opcional)
	MachineSerial string
	CreatedBy     string
	CreatedAt     time.Time
}

// Delta devuelve la variación con signo que aporta el movimiento.
func (m StockMovement) Delta() int {
	if m.Type == MovementTypeOUT {
		return -m.Quantity
	}
	return m.Quantity
}
