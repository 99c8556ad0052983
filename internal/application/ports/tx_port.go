package ports

import (
	"context"

	"github.com/jhoicas/Mantenimiento-api/internal/domain/repository"
)

// Repos agrupa todos los repositorios atados a una misma unidad de trabajo
// (el pool fuera de transacción o una tx dentro de TxRunner.Run).
type Repos struct {
	Machines       repository.MachineRepository
	History        repository.MachineMovementRepository
	Assignments    repository.AssignmentRepository
	Requests       repository.MaintenanceRequestRepository
	Approvals      repository.ApprovalRepository
	Inventory      repository.InventoryRepository
	StockMovements repository.StockMovementRepository
	Debts          repository.DebtRepository
	Payments       repository.PaymentRepository
	Transfers      repository.TransferOrderRepository
}

// TxRunner ejecuta fn dentro de una transacción de BD con repos atados a esa tx.
// Si fn devuelve error (o entra en pánico) se hace Rollback de todo; si no, Commit.
// Dentro de fn no debe haber llamadas de red ni esperas de usuario.
type TxRunner interface {
	Run(ctx context.Context, fn func(r Repos) error) error
}
