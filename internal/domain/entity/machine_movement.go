package entity

import "time"

// Acciones del log de custodia.
const (
	MovementIntake            = "INTAKE"
	MovementTransferOut       = "TRANSFER_OUT"
	MovementTransferIn        = "TRANSFER_IN"
	MovementTransferCancelled = "TRANSFER_CANCELLED"
	MovementStatusChange      = "STATUS_CHANGE"
)

// MachineMovement entrada append-only del historial de custodia/estado de una máquina.
type MachineMovement struct {
	ID           string
	MachineID    string
	SerialNumber string
	FromBranchID string
	ToBranchID   string
	Action       string
	FromStatus   MachineStatus
	ToStatus     MachineStatus
	OrderID      string
	PerformedBy  string
	CreatedAt    time.Time
}
