package dto

import (
	"time"

	"github.com/jhoicas/Mantenimiento-api/internal/domain/entity"
)

// CreateTransferRequest manifiesto de traslado de varias máquinas.
type CreateTransferRequest struct {
	FromBranchID  string   `json:"from_branch_id" validate:"required"`
	ToBranchID    string   `json:"to_branch_id" validate:"required,nefield=FromBranchID"`
	Type          string   `json:"type" validate:"required,oneof=SEND_TO_CENTER RETURN BRANCH_TRANSFER"`
	SerialNumbers []string `json:"serial_numbers" validate:"required,min=1,max=500,dive,required"`
	Notes         string   `json:"notes" validate:"max=1000"`
}

// TransferListRequest filtros de GET /api/transfers.
type TransferListRequest struct {
	PageRequest
	Status string `query:"status"`
	Type   string `query:"type"`
}

// TransferItemResponse ítem del manifiesto.
type TransferItemResponse struct {
	MachineID      string `json:"machine_id"`
	SerialNumber   string `json:"serial_number"`
	PreviousStatus string `json:"previous_status,omitempty"`
}

// TransferOrderResponse salida de una orden de traslado.
type TransferOrderResponse struct {
	ID           string                 `json:"id"`
	OrderNumber  string                 `json:"order_number"`
	FromBranchID string                 `json:"from_branch_id"`
	ToBranchID   string                 `json:"to_branch_id"`
	Type         string                 `json:"type"`
	Status       string                 `json:"status"`
	Items        []TransferItemResponse `json:"items"`
	Notes        string                 `json:"notes,omitempty"`
	CreatedBy    string                 `json:"created_by,omitempty"`
	ReceivedBy   string                 `json:"received_by,omitempty"`
	CreatedAt    time.Time              `json:"created_at"`
	ReceivedAt   *time.Time             `json:"received_at,omitempty"`
}

// FromTransferOrder mapea la entidad.
func FromTransferOrder(o *entity.TransferOrder) *TransferOrderResponse {
	if o == nil {
		return nil
	}
	items := make([]TransferItemResponse, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, TransferItemResponse{
			MachineID:      it.MachineID,
			SerialNumber:   it.SerialNumber,
			PreviousStatus: string(it.PreviousStatus),
		})
	}
	return &TransferOrderResponse{
		ID:           o.ID,
		OrderNumber:  o.OrderNumber,
		FromBranchID: o.FromBranchID,
		ToBranchID:   o.ToBranchID,
		Type:         o.Type,
		Status:       o.Status,
		Items:        items,
		Notes:        o.Notes,
		CreatedBy:    o.CreatedBy,
		ReceivedBy:   o.ReceivedBy,
		CreatedAt:    o.CreatedAt,
		ReceivedAt:   o.ReceivedAt,
	}
}

// FromTransferOrders mapea una lista.
func FromTransferOrders(in []*entity.TransferOrder) []TransferOrderResponse {
	out := make([]TransferOrderResponse, 0, len(in))
	for _, o := range in {
		out = append(out, *FromTransferOrder(o))
	}
	return out
}
