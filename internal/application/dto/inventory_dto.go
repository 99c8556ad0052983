package dto

import (
	"time"

	"github.com/jhoicas/Mantenimiento-api/internal/domain/entity"
)

// ReceiveStockRequest body para POST /api/inventory/stock-in.
type ReceiveStockRequest struct {
	BranchID string `json:"branch_id" validate:"required"`
	PartID   string `json:"part_id" validate:"required"`
	Quantity int    `json:"quantity" validate:"gt=0"`
	Reason   string `json:"reason" validate:"max=500"`
}

// StockItemResponse stock de un repuesto en una sucursal.
type StockItemResponse struct {
	BranchID  string    `json:"branch_id"`
	PartID    string    `json:"part_id"`
	Quantity  int       `json:"quantity"`
	UpdatedAt time.Time `json:"updated_at"`
}

// FromInventoryItems mapea una lista.
func FromInventoryItems(in []*entity.InventoryItem) []StockItemResponse {
	out := make([]StockItemResponse, 0, len(in))
	for _, it := range in {
		out = append(out, StockItemResponse{BranchID: it.BranchID, PartID: it.PartID, Quantity: it.Quantity, UpdatedAt: it.UpdatedAt})
	}
	return out
}

// StockMovementResponse movimiento de stock.
type StockMovementResponse struct {
	ID            string    `json:"id"`
	BranchID      string    `json:"branch_id"`
	PartID        string    `json:"part_id"`
	Type          string    `json:"type"`
	Quantity      int       `json:"quantity"`
	Reason        string    `json:"reason,omitempty"`
	RequestID     string    `json:"request_id,omitempty"`
	MachineSerial string    `json:"machine_serial,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// FromStockMovement mapea la entidad.
func FromStockMovement(m *entity.StockMovement) *StockMovementResponse {
	if m == nil {
		return nil
	}
	return &StockMovementResponse{
		ID:            m.ID,
		BranchID:      m.BranchID,
		PartID:        m.PartID,
		Type:          m.Type,
		Quantity:      m.Quantity,
		Reason:        m.Reason,
		RequestID:     m.RequestID,
		MachineSerial: m.MachineSerial,
		CreatedAt:     m.CreatedAt,
	}
}

// ReconcileResponse comparación entre la cantidad materializada y la suma de movimientos.
type ReconcileResponse struct {
	BranchID    string `json:"branch_id"`
	PartID      string `json:"part_id"`
	Quantity    int    `json:"quantity"`
	MovementSum int    `json:"movement_sum"`
	Consistent  bool   `json:"consistent"`
}
