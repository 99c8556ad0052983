package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// MachineStatus estado del ciclo de vida de una máquina.
type MachineStatus string

const (
	MachineIntake           MachineStatus = "INTAKE"
	MachineUnderInspection  MachineStatus = "UNDER_INSPECTION"
	MachineAwaitingApproval MachineStatus = "AWAITING_APPROVAL"
	MachineRepaired         MachineStatus = "REPAIRED"
	MachineScrapped         MachineStatus = "SCRAPPED"
	MachineReadyForReturn   MachineStatus = "READY_FOR_RETURN"
	MachineReturning        MachineStatus = "RETURNING"
	MachineCompleted        MachineStatus = "COMPLETED"

	// Estados de ubicación, ortogonales a la reparación.
	MachineInTransit        MachineStatus = "IN_TRANSIT"
	MachineReceivedAtCenter MachineStatus = "RECEIVED_AT_CENTER"
	MachineAtCenter         MachineStatus = "AT_CENTER"
	MachineClientRepair     MachineStatus = "CLIENT_REPAIR"
	MachineExternalRepair   MachineStatus = "EXTERNAL_REPAIR"
)

// IsTransit estados que solo una orden de traslado puede poner o quitar.
func (s MachineStatus) IsTransit() bool {
	return s == MachineInTransit || s == MachineReturning
}

// IsPreRepair estados desde los que se puede inspeccionar.
func (s MachineStatus) IsPreRepair() bool {
	switch s {
	case MachineIntake, MachineReceivedAtCenter, MachineAtCenter, MachineClientRepair,
		MachineExternalRepair, MachineUnderInspection:
		return true
	}
	return false
}

// Resolution resultado terminal de la reparación.
type Resolution string

const (
	ResolutionRepaired     Resolution = "REPAIRED"
	ResolutionScrapped     Resolution = "SCRAPPED"
	ResolutionReturnedAsIs Resolution = "RETURNED_AS_IS"
)

// WarehouseMachine unidad física (terminal POS) identificada por número de serie.
// BranchID es la custodia actual; OriginBranchID la sucursal dueña del cliente/contrato.
type WarehouseMachine struct {
	ID                string
	SerialNumber      string
	Model             string
	CustomerID        string
	Status            MachineStatus
	BranchID          string
	OriginBranchID    string
	Resolution        *Resolution
	ProposedParts     PartLines
	ProposedTotalCost *decimal.Decimal
	UsedParts         PartLines
	TotalCost         decimal.Decimal
	ReadyForPickup    bool
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// HasQuote indica si hay una cotización pendiente guardada en la máquina.
func (m *WarehouseMachine) HasQuote() bool {
	return m.ProposedTotalCost != nil || len(m.ProposedParts) > 0
}

// ClearQuote borra la cotización pendiente.
func (m *WarehouseMachine) ClearQuote() {
	m.ProposedParts = nil
	m.ProposedTotalCost = nil
}

// Resolve fija el resultado terminal y el costo final, limpiando la cotización.
func (m *WarehouseMachine) Resolve(r Resolution, used PartLines, total decimal.Decimal) {
	res := r
	m.Resolution = &res
	m.UsedParts = used.Clone()
	m.TotalCost = total
	m.ClearQuote()
}

// Clone copia profunda (slices y punteros propios).
func (m WarehouseMachine) Clone() WarehouseMachine {
	out := m
	out.ProposedParts = m.ProposedParts.Clone()
	out.UsedParts = m.UsedParts.Clone()
	if m.Resolution != nil {
		r := *m.Resolution
		out.Resolution = &r
	}
	if m.ProposedTotalCost != nil {
		c := *m.ProposedTotalCost
		out.ProposedTotalCost = &c
	}
	return out
}
