package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de una solicitud de aprobación.
const (
	ApprovalPending  = "PENDING"
	ApprovalApproved = "APPROVED"
	ApprovalRejected = "REJECTED"
)

// MaintenanceApprovalRequest cotización que el centro envía a la sucursal pagadora.
// RespondedAt se fija si y solo si Status != PENDING.
type MaintenanceApprovalRequest struct {
	ID              string
	MachineID       string
	SerialNumber    string
	RequestID       string
	AssignmentID    string
	OriginBranchID  string // pagador
	CenterBranchID  string // solicitante
	ProposedTotal   decimal.Decimal
	Parts           PartLines
	Status          string
	RejectionReason string
	Notes           string
	RequestedBy     string
	RespondedBy     string
	CreatedAt       time.Time
	RespondedAt     *time.Time
}

// Clone copia profunda.
func (a MaintenanceApprovalRequest) Clone() MaintenanceApprovalRequest {
	out := a
	out.Parts = a.Parts.Clone()
	out.RespondedAt = cloneTime(a.RespondedAt)
	return out
}
