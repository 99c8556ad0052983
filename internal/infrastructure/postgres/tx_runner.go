package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/Mantenimiento-api/internal/application/ports"
	"github.com/jhoicas/Mantenimiento-api/internal/infrastructure/metrics"
)

var _ ports.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool    *pgxpool.Pool
	metrics *metrics.Metrics
}

// NewTxRunner construye el runner con el pool. m puede ser nil.
func NewTxRunner(pool *pgxpool.Pool, m *metrics.Metrics) *TxRunner {
	return &TxRunner{pool: pool, metrics: m}
}

// NewRepos arma todos los repositorios sobre el mismo Querier (pool o tx).
func NewRepos(q Querier) ports.Repos {
	return ports.Repos{
		Machines:       NewMachineRepository(q),
		History:        NewMachineMovementRepository(q),
		Assignments:    NewAssignmentRepository(q),
		Requests:       NewMaintenanceRequestRepository(q),
		Approvals:      NewApprovalRepository(q),
		Inventory:      NewInventoryRepository(q),
		StockMovements: NewStockMovementRepository(q),
		Debts:          NewDebtRepository(q),
		Payments:       NewPaymentRepository(q),
		Transfers:      NewTransferRepository(q),
	}
}

// Run inicia una transacción, ejecuta fn con repos atados a la tx y hace Commit o Rollback.
// Un pánico dentro de fn deja la tx sin commit: el defer hace Rollback y el pánico sigue.
func (r *TxRunner) Run(ctx context.Context, fn func(repos ports.Repos) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	committed := false
	defer func() {
		if committed {
			return
		}
		_ = tx.Rollback(ctx)
		r.metrics.RecordRollback()
	}()

	if err := fn(NewRepos(tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	committed = true
	return nil
}
