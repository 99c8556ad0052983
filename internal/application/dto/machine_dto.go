package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Mantenimiento-api/internal/domain/entity"
)

// PartLineDTO línea de repuesto en requests y responses.
type PartLineDTO struct {
	PartID   string          `json:"part_id" validate:"required"`
	Quantity int             `json:"quantity" validate:"gt=0"`
	UnitCost decimal.Decimal `json:"unit_cost"`
}

// ToPartLines convierte a la lista tipada del dominio (fusionando repetidos).
func ToPartLines(in []PartLineDTO) entity.PartLines {
	if len(in) == 0 {
		return nil
	}
	out := make(entity.PartLines, 0, len(in))
	for _, p := range in {
		out = append(out, entity.PartLine{PartID: p.PartID, Quantity: p.Quantity, UnitCost: p.UnitCost})
	}
	return out.Normalize()
}

// FromPartLines convierte la lista del dominio a DTO.
func FromPartLines(in entity.PartLines) []PartLineDTO {
	out := make([]PartLineDTO, 0, len(in))
	for _, p := range in {
		out = append(out, PartLineDTO{PartID: p.PartID, Quantity: p.Quantity, UnitCost: p.UnitCost})
	}
	return out
}

// RegisterIntakeRequest alta de una máquina en bodega.
type RegisterIntakeRequest struct {
	SerialNumber   string `json:"serial_number" validate:"required,max=64"`
	Model          string `json:"model" validate:"max=120"`
	CustomerID     string `json:"customer_id"`
	BranchID       string `json:"branch_id" validate:"required"`
	OriginBranchID string `json:"origin_branch_id"` // vacío = BranchID
}

// TransitionRequest body de POST /api/machines/:serial/transitions.
// Parts/TotalCost: cotización en REQUEST_APPROVAL, consumo real en REPAIR/SCRAP.
type TransitionRequest struct {
	Action    string           `json:"action" validate:"required"`
	Parts     []PartLineDTO    `json:"parts" validate:"omitempty,dive"`
	TotalCost *decimal.Decimal `json:"total_cost,omitempty"`
	NoCharge  bool             `json:"no_charge"`
	Notes     string           `json:"notes" validate:"max=1000"`
}

// SetLocationRequest cambio manual de ubicación.
type SetLocationRequest struct {
	Status string `json:"status" validate:"required"`
}

// MachineListRequest filtros de GET /api/machines.
type MachineListRequest struct {
	PageRequest
	Status   string `query:"status"`
	BranchID string `query:"branch_id"`
}

// MachineResponse salida de una máquina.
type MachineResponse struct {
	ID                string           `json:"id"`
	SerialNumber      string           `json:"serial_number"`
	Model             string           `json:"model"`
	CustomerID        string           `json:"customer_id,omitempty"`
	Status            string           `json:"status"`
	BranchID          string           `json:"branch_id"`
	OriginBranchID    string           `json:"origin_branch_id"`
	Resolution        string           `json:"resolution,omitempty"`
	ProposedParts     []PartLineDTO    `json:"proposed_parts,omitempty"`
	ProposedTotalCost *decimal.Decimal `json:"proposed_total_cost,omitempty"`
	UsedParts         []PartLineDTO    `json:"used_parts"`
	TotalCost         decimal.Decimal  `json:"total_cost"`
	ReadyForPickup    bool             `json:"ready_for_pickup"`
	CreatedAt         time.Time        `json:"created_at"`
	UpdatedAt         time.Time        `json:"updated_at"`
}

// FromMachine mapea la entidad.
func FromMachine(m *entity.WarehouseMachine) *MachineResponse {
	if m == nil {
		return nil
	}
	out := &MachineResponse{
		ID:                m.ID,
		SerialNumber:      m.SerialNumber,
		Model:             m.Model,
		CustomerID:        m.CustomerID,
		Status:            string(m.Status),
		BranchID:          m.BranchID,
		OriginBranchID:    m.OriginBranchID,
		ProposedTotalCost: m.ProposedTotalCost,
		UsedParts:         FromPartLines(m.UsedParts),
		TotalCost:         m.TotalCost,
		ReadyForPickup:    m.ReadyForPickup,
		CreatedAt:         m.CreatedAt,
		UpdatedAt:         m.UpdatedAt,
	}
	if len(m.ProposedParts) > 0 {
		out.ProposedParts = FromPartLines(m.ProposedParts)
	}
	if m.Resolution != nil {
		out.Resolution = string(*m.Resolution)
	}
	return out
}

// MachineMovementResponse entrada del historial.
type MachineMovementResponse struct {
	ID           string    `json:"id"`
	Action       string    `json:"action"`
	FromBranchID string    `json:"from_branch_id,omitempty"`
	ToBranchID   string    `json:"to_branch_id,omitempty"`
	FromStatus   string    `json:"from_status,omitempty"`
	ToStatus     string    `json:"to_status,omitempty"`
	OrderID      string    `json:"order_id,omitempty"`
	PerformedBy  string    `json:"performed_by,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// FromMachineMovements mapea el historial.
func FromMachineMovements(in []*entity.MachineMovement) []MachineMovementResponse {
	out := make([]MachineMovementResponse, 0, len(in))
	for _, mv := range in {
		out = append(out, MachineMovementResponse{
			ID:           mv.ID,
			Action:       mv.Action,
			FromBranchID: mv.FromBranchID,
			ToBranchID:   mv.ToBranchID,
			FromStatus:   string(mv.FromStatus),
			ToStatus:     string(mv.ToStatus),
			OrderID:      mv.OrderID,
			PerformedBy:  mv.PerformedBy,
			CreatedAt:    mv.CreatedAt,
		})
	}
	return out
}

// TransitionResponse resultado de una transición.
type TransitionResponse struct {
	Machine  *MachineResponse  `json:"machine"`
	Approval *ApprovalResponse `json:"approval,omitempty"`
	Debt     *DebtResponse     `json:"debt,omitempty"`
}
