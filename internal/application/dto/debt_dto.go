package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Mantenimiento-api/internal/domain/entity"
)

// RecordPaymentRequest abono a una deuda. DebtID lo pone el handler desde la ruta.
type RecordPaymentRequest struct {
	DebtID        string          `json:"debt_id" validate:"required"`
	Amount        decimal.Decimal `json:"amount"`
	ReceiptNumber string          `json:"receipt_number" validate:"required,max=64"`
	Notes         string          `json:"notes" validate:"max=1000"`
}

// DebtListRequest filtros de GET /api/debts.
type DebtListRequest struct {
	PageRequest
	Status string `query:"status"`
}

// DebtResponse salida de una deuda.
type DebtResponse struct {
	ID               string          `json:"id"`
	DebtorBranchID   string          `json:"debtor_branch_id"`
	CreditorBranchID string          `json:"creditor_branch_id"`
	OriginalAmount   decimal.Decimal `json:"original_amount"`
	RemainingAmount  decimal.Decimal `json:"remaining_amount"`
	Status           string          `json:"status"`
	RequestID        string          `json:"request_id,omitempty"`
	MachineSerial    string          `json:"machine_serial,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// FromDebt mapea la entidad.
func FromDebt(d *entity.BranchDebt) *DebtResponse {
	if d == nil {
		return nil
	}
	return &DebtResponse{
		ID:               d.ID,
		DebtorBranchID:   d.DebtorBranchID,
		CreditorBranchID: d.CreditorBranchID,
		OriginalAmount:   d.OriginalAmount,
		RemainingAmount:  d.RemainingAmount,
		Status:           d.Status,
		RequestID:        d.RequestID,
		MachineSerial:    d.MachineSerial,
		CreatedAt:        d.CreatedAt,
		UpdatedAt:        d.UpdatedAt,
	}
}

// FromDebts mapea una lista.
func FromDebts(in []*entity.BranchDebt) []DebtResponse {
	out := make([]DebtResponse, 0, len(in))
	for _, d := range in {
		out = append(out, *FromDebt(d))
	}
	return out
}

// PaymentResponse salida de un abono.
type PaymentResponse struct {
	ID            string          `json:"id"`
	DebtID        string          `json:"debt_id"`
	Amount        decimal.Decimal `json:"amount"`
	ReceiptNumber string          `json:"receipt_number"`
	PaidBy        string          `json:"paid_by,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

// FromPayment mapea la entidad.
func FromPayment(p *entity.DebtPayment) *PaymentResponse {
	if p == nil {
		return nil
	}
	return &PaymentResponse{
		ID:            p.ID,
		DebtID:        p.DebtID,
		Amount:        p.Amount,
		ReceiptNumber: p.ReceiptNumber,
		PaidBy:        p.PaidBy,
		CreatedAt:     p.CreatedAt,
	}
}

// RecordPaymentResponse deuda actualizada y abono registrado.
type RecordPaymentResponse struct {
	Debt    *DebtResponse    `json:"debt"`
	Payment *PaymentResponse `json:"payment"`
}
