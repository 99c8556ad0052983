package entity

import "time"

// Tipos de orden de traslado.
const (
	TransferSendToCenter   = "SEND_TO_CENTER"
	TransferReturn         = "RETURN"
	TransferBranchTransfer = "BRANCH_TRANSFER"
)

// Estados de orden de traslado. ACCEPTED se trata como terminal igual que RECEIVED.
const (
	TransferPending   = "PENDING"
	TransferAccepted  = "ACCEPTED"
	TransferReceived  = "RECEIVED"
	TransferCancelled = "CANCELLED"
)

// TransferOrder manifiesto que mueve máquinas entre dos sucursales.
type TransferOrder struct {
	ID           string
	OrderNumber  string
	FromBranchID string
	ToBranchID   string
	Type         string
	Status       string
	Items        []TransferOrderItem
	Notes        string
	CreatedBy    string
	ReceivedBy   string
	CreatedAt    time.Time
	ReceivedAt   *time.Time
}

// IsOpen una orden abierta retiene la custodia de sus máquinas.
func (o *TransferOrder) IsOpen() bool {
	return o.Status == TransferPending
}

// Serials números de serie del manifiesto en orden.
func (o *TransferOrder) Serials() []string {
	out := make([]string, 0, len(o.Items))
	for _, it := range o.Items {
		out = append(out, it.SerialNumber)
	}
	return out
}

// Clone copia profunda.
func (o TransferOrder) Clone() TransferOrder {
	out := o
	out.Items = append([]TransferOrderItem(nil), o.Items...)
	out.ReceivedAt = cloneTime(o.ReceivedAt)
	return out
}

// TransferOrderItem una máquina dentro del manifiesto.
type TransferOrderItem struct {
	ID             string
	OrderID        string
	MachineID      string
	SerialNumber   string
	PreviousStatus MachineStatus
}
