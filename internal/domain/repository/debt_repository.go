package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Mantenimiento-api/internal/domain/access"
	"github.com/jhoicas/Mantenimiento-api/internal/domain/entity"
)

// DebtFilter filtros del listado de deudas.
type DebtFilter struct {
	Status string
	Limit  int
	Offset int
}

// DebtRepository puerto de persistencia de BranchDebt. RemainingAmount solo baja, por deltas acotados.
type DebtRepository interface {
	Create(ctx context.Context, d *entity.BranchDebt) error
	GetByID(ctx context.Context, id string) (*entity.BranchDebt, error)
	GetByIDForUpdate(ctx context.Context, id string) (*entity.BranchDebt, error)
	// FindOpenByRequest deuda no pagada de la misma solicitud y par de sucursales.
	FindOpenByRequest(ctx context.Context, requestID, debtorID, creditorID string) (*entity.BranchDebt, error)
	// ApplyPayment resta amount de remaining; falla si amount > remaining.
	ApplyPayment(ctx context.Context, id string, amount decimal.Decimal) (*entity.BranchDebt, error)
	// List deudas donde el alcance es deudor o acreedor.
	List(ctx context.Context, scope access.Scope, f DebtFilter) ([]*entity.BranchDebt, error)
}

// PaymentRepository abonos. Create devuelve ErrDuplicateReceipt si el recibo ya existe.
type PaymentRepository interface {
	Create(ctx context.Context, p *entity.DebtPayment) error
	ExistsReceipt(ctx context.Context, receiptNumber string) (bool, error)
	ListByDebt(ctx context.Context, debtID string) ([]*entity.DebtPayment, error)
}
