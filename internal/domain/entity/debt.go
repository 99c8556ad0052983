package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de una deuda entre sucursales.
const (
	DebtPending        = "PENDING"         // sin pagos
	DebtPendingPayment = "PENDING_PAYMENT" // pago parcial
	DebtPaid           = "PAID"
)

// BranchDebt la sucursal deudora debe a la acreedora por trabajo hecho a su cliente.
// 0 <= RemainingAmount <= OriginalAmount; PAID si y solo si RemainingAmount == 0.
type BranchDebt struct {
	ID               string
	DebtorBranchID   string
	CreditorBranchID string
	OriginalAmount   decimal.Decimal
	RemainingAmount  decimal.Decimal
	Status           string
	RequestID        string
	MachineSerial    string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// DebtStatusFor calcula el estado coherente con los montos.
func DebtStatusFor(original, remaining decimal.Decimal) string {
	switch {
	case remaining.IsZero():
		return DebtPaid
	case remaining.LessThan(original):
		return DebtPendingPayment
	default:
		return DebtPending
	}
}

// DebtPayment abono a una deuda. ReceiptNumber es único en todo el sistema.
type DebtPayment struct {
	ID            string
	DebtID        string
	Amount        decimal.Decimal
	ReceiptNumber string
	Notes         string
	PaidBy        string
	CreatedAt     time.Time
}
