package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de la solicitud de mantenimiento visible al cliente.
const (
	RequestOpen            = "Open"
	RequestInProgress      = "In Progress"
	RequestPendingTransfer = "PENDING_TRANSFER"
	RequestClosed          = "Closed"
)

// MaintenanceRequest solicitud de mantenimiento de una máquina. Solo una activa a la vez.
type MaintenanceRequest struct {
	ID           string
	MachineID    string
	SerialNumber string
	BranchID     string // sucursal del cliente (origen)
	CustomerID   string
	Status       string
	Resolution   *Resolution
	TotalCost    decimal.Decimal
	CreatedAt    time.Time
	ClosedAt     *time.Time
}

// IsActive estados reutilizables por find-or-create.
func (r *MaintenanceRequest) IsActive() bool {
	switch r.Status {
	case RequestOpen, RequestInProgress, RequestPendingTransfer:
		return true
	}
	return false
}

// Clone copia profunda.
func (r MaintenanceRequest) Clone() MaintenanceRequest {
	out := r
	if r.Resolution != nil {
		v := *r.Resolution
		out.Resolution = &v
	}
	out.ClosedAt = cloneTime(r.ClosedAt)
	return out
}
