package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de una asignación de servicio.
const (
	AssignmentAssigned         = "ASSIGNED"
	AssignmentUnderMaintenance = "UNDER_MAINTENANCE"
	AssignmentPendingApproval  = "PENDING_APPROVAL"
	AssignmentApproved         = "APPROVED"
	AssignmentRejected         = "REJECTED"
	AssignmentCompleted        = "COMPLETED"
	AssignmentCancelled        = "CANCELLED"
)

// ServiceAssignment un técnico trabajando una máquina en un centro.
// Una máquina tiene como máximo una asignación abierta.
type ServiceAssignment struct {
	ID             string
	MachineID      string
	SerialNumber   string
	TechnicianID   string
	CenterBranchID string
	OriginBranchID string
	RequestID      string
	Status         string
	UsedParts      PartLines
	TotalCost      decimal.Decimal
	Notes          string
	AssignedAt     time.Time
	StartedAt      *time.Time
	CompletedAt    *time.Time
}

// IsOpen true mientras no esté completada ni cancelada.
func (a *ServiceAssignment) IsOpen() bool {
	return a.Status != AssignmentCompleted && a.Status != AssignmentCancelled
}

// Clone copia profunda.
func (a ServiceAssignment) Clone() ServiceAssignment {
	out := a
	out.UsedParts = a.UsedParts.Clone()
	out.StartedAt = cloneTime(a.StartedAt)
	out.CompletedAt = cloneTime(a.CompletedAt)
	return out
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
