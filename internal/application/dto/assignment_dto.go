package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Mantenimiento-api/internal/domain/entity"
)

// CreateAssignmentRequest asigna un técnico a una máquina en el centro.
type CreateAssignmentRequest struct {
	SerialNumber string `json:"serial_number" validate:"required"`
	TechnicianID string `json:"technician_id" validate:"required"`
	Notes        string `json:"notes" validate:"max=1000"`
}

// RequestApprovalRequest cotización del centro a la sucursal pagadora.
// ProposedTotal vacío = suma de las líneas.
type RequestApprovalRequest struct {
	AssignmentID  string           `json:"assignment_id" validate:"required"`
	Parts         []PartLineDTO    `json:"parts" validate:"required,min=1,dive"`
	ProposedTotal *decimal.Decimal `json:"proposed_total,omitempty"`
	Notes         string           `json:"notes" validate:"max=1000"`
}

// RespondApprovalRequest respuesta de la sucursal pagadora.
type RespondApprovalRequest struct {
	Status          string `json:"status" validate:"required,oneof=APPROVED REJECTED"`
	RejectionReason string `json:"rejection_reason" validate:"required_if=Status REJECTED,max=1000"`
}

// CompleteDirectRequest cierre de reparación sin aprobación previa.
// TotalCost vacío = suma de las líneas.
type CompleteDirectRequest struct {
	AssignmentID string           `json:"assignment_id" validate:"required"`
	Parts        []PartLineDTO    `json:"parts" validate:"omitempty,dive"`
	TotalCost    *decimal.Decimal `json:"total_cost,omitempty"`
	NoCharge     bool             `json:"no_charge"`
	Notes        string           `json:"notes" validate:"max=1000"`
}

// CompleteAfterApprovalRequest cierre usando la cotización aprobada.
type CompleteAfterApprovalRequest struct {
	AssignmentID string `json:"assignment_id" validate:"required"`
	Notes        string `json:"notes" validate:"max=1000"`
}

// AssignmentResponse salida de una asignación.
type AssignmentResponse struct {
	ID             string          `json:"id"`
	MachineID      string          `json:"machine_id"`
	SerialNumber   string          `json:"serial_number"`
	TechnicianID   string          `json:"technician_id"`
	CenterBranchID string          `json:"center_branch_id"`
	OriginBranchID string          `json:"origin_branch_id"`
	RequestID      string          `json:"request_id,omitempty"`
	Status         string          `json:"status"`
	UsedParts      []PartLineDTO   `json:"used_parts"`
	TotalCost      decimal.Decimal `json:"total_cost"`
	Notes          string          `json:"notes,omitempty"`
	AssignedAt     time.Time       `json:"assigned_at"`
	StartedAt      *time.Time      `json:"started_at,omitempty"`
	CompletedAt    *time.Time      `json:"completed_at,omitempty"`
}

// FromAssignment mapea la entidad.
func FromAssignment(a *entity.ServiceAssignment) *AssignmentResponse {
	if a == nil {
		return nil
	}
	return &AssignmentResponse{
		ID:             a.ID,
		MachineID:      a.MachineID,
		SerialNumber:   a.SerialNumber,
		TechnicianID:   a.TechnicianID,
		CenterBranchID: a.CenterBranchID,
		OriginBranchID: a.OriginBranchID,
		RequestID:      a.RequestID,
		Status:         a.Status,
		UsedParts:      FromPartLines(a.UsedParts),
		TotalCost:      a.TotalCost,
		Notes:          a.Notes,
		AssignedAt:     a.AssignedAt,
		StartedAt:      a.StartedAt,
		CompletedAt:    a.CompletedAt,
	}
}

// ApprovalResponse salida de una solicitud de aprobación.
type ApprovalResponse struct {
	ID              string          `json:"id"`
	MachineID       string          `json:"machine_id"`
	SerialNumber    string          `json:"serial_number"`
	RequestID       string          `json:"request_id"`
	AssignmentID    string          `json:"assignment_id,omitempty"`
	OriginBranchID  string          `json:"origin_branch_id"`
	CenterBranchID  string          `json:"center_branch_id"`
	ProposedTotal   decimal.Decimal `json:"proposed_total"`
	Parts           []PartLineDTO   `json:"parts"`
	Status          string          `json:"status"`
	RejectionReason string          `json:"rejection_reason,omitempty"`
	Notes           string          `json:"notes,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	RespondedAt     *time.Time      `json:"responded_at,omitempty"`
}

// FromApproval mapea la entidad.
func FromApproval(a *entity.MaintenanceApprovalRequest) *ApprovalResponse {
	if a == nil {
		return nil
	}
	return &ApprovalResponse{
		ID:              a.ID,
		MachineID:       a.MachineID,
		SerialNumber:    a.SerialNumber,
		RequestID:       a.RequestID,
		AssignmentID:    a.AssignmentID,
		OriginBranchID:  a.OriginBranchID,
		CenterBranchID:  a.CenterBranchID,
		ProposedTotal:   a.ProposedTotal,
		Parts:           FromPartLines(a.Parts),
		Status:          a.Status,
		RejectionReason: a.RejectionReason,
		Notes:           a.Notes,
		CreatedAt:       a.CreatedAt,
		RespondedAt:     a.RespondedAt,
	}
}

// FromApprovals mapea una lista.
func FromApprovals(in []*entity.MaintenanceApprovalRequest) []ApprovalResponse {
	out := make([]ApprovalResponse, 0, len(in))
	for _, a := range in {
		out = append(out, *FromApproval(a))
	}
	return out
}

// RespondApprovalResponse resultado de responder una aprobación.
type RespondApprovalResponse struct {
	Approval   *ApprovalResponse   `json:"approval"`
	Assignment *AssignmentResponse `json:"assignment,omitempty"`
}

// CompletionResponse resultado de cerrar una reparación.
type CompletionResponse struct {
	Assignment *AssignmentResponse `json:"assignment"`
	Machine    *MachineResponse    `json:"machine"`
	Debt       *DebtResponse       `json:"debt,omitempty"`
}
