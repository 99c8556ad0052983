package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Mantenimiento-api/internal/domain"
	"github.com/jhoicas/Mantenimiento-api/internal/domain/access"
	"github.com/jhoicas/Mantenimiento-api/internal/domain/entity"
	"github.com/jhoicas/Mantenimiento-api/internal/domain/repository"
)

var _ repository.InventoryRepository = (*InventoryRepo)(nil)

// InventoryRepo stock por sucursal+repuesto sobre PostgreSQL (usable con pool o tx).
// La cantidad solo cambia por deltas; el CHECK inventory_quantity_nonneg la mantiene >= 0.
type InventoryRepo struct {
	q Querier
}

// NewInventoryRepository construye el adaptador. Pasar pool o tx (Querier).
func NewInventoryRepository(q Querier) *InventoryRepo {
	return &InventoryRepo{q: q}
}

// GetPart obtiene un repuesto del catálogo.
func (r *InventoryRepo) GetPart(ctx context.Context, partID string) (*entity.SparePart, error) {
	query := `SELECT id, part_number, name, default_cost FROM spare_parts WHERE id = $1`
	var p entity.SparePart
	err := r.q.QueryRow(ctx, query, partID).Scan(&p.ID, &p.PartNumber, &p.Name, &p.DefaultCost)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, mapError("get spare part", err)
	}
	return &p, nil
}

func (r *InventoryRepo) get(ctx context.Context, branchID, partID string, forUpdate bool) (*entity.InventoryItem, error) {
	query := `SELECT branch_id, part_id, quantity, updated_at FROM inventory WHERE branch_id = $1 AND part_id = $2`
	if forUpdate {
		query += ` FOR UPDATE`
	}
	var it entity.InventoryItem
	err := r.q.QueryRow(ctx, query, branchID, partID).Scan(&it.BranchID, &it.PartID, &it.Quantity, &it.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &entity.InventoryItem{BranchID: branchID, PartID: partID}, nil
		}
		return nil, mapError("get inventory", err)
	}
	return &it, nil
}

// Get obtiene la cantidad actual (0 si no hay fila).
func (r *InventoryRepo) Get(ctx context.Context, branchID, partID string) (*entity.InventoryItem, error) {
	return r.get(ctx, branchID, partID, false)
}

// GetForUpdate obtiene la cantidad y bloquea la fila (SELECT FOR UPDATE).
func (r *InventoryRepo) GetForUpdate(ctx context.Context, branchID, partID string) (*entity.InventoryItem, error) {
	return r.get(ctx, branchID, partID, true)
}

// ApplyDelta suma delta en la misma sentencia que valida el resultado; nunca escribe un
// valor absoluto leído antes.
func (r *InventoryRepo) ApplyDelta(ctx context.Context, branchID, partID string, delta int) (int, error) {
	var qty int
	if delta >= 0 {
		query := `
			INSERT INTO inventory (branch_id, part_id, quantity, updated_at)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (branch_id, part_id)
			DO UPDATE SET quantity = inventory.quantity + EXCLUDED.quantity, updated_at = EXCLUDED.updated_at
			RETURNING quantity`
		if err := r.q.QueryRow(ctx, query, branchID, partID, delta, time.Now().UTC()).Scan(&qty); err != nil {
			return 0, mapError("apply stock delta", err)
		}
		return qty, nil
	}

	query := `
		UPDATE inventory SET quantity = quantity + $3, updated_at = $4
		WHERE branch_id = $1 AND part_id = $2 AND quantity + $3 >= 0
		RETURNING quantity`
	err := r.q.QueryRow(ctx, query, branchID, partID, delta, time.Now().UTC()).Scan(&qty)
	if err == nil {
		return qty, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return 0, mapError("apply stock delta", err)
	}
	current, gerr := r.Get(ctx, branchID, partID)
	if gerr != nil {
		return 0, gerr
	}
	return 0, domain.InsufficientStock(branchID, partID, current.Quantity, -delta)
}

// ListByBranch stock de una sucursal ("" = todas las del alcance).
func (r *InventoryRepo) ListByBranch(ctx context.Context, scope access.Scope, branchID string) ([]*entity.InventoryItem, error) {
	query := `SELECT branch_id, part_id, quantity, updated_at FROM inventory WHERE TRUE`
	var args []any
	if branchID != "" {
		args = append(args, branchID)
		query += " AND branch_id = $1"
	}
	clause, args := scopeFilter(scope, args, "branch_id")
	query += clause + " ORDER BY branch_id, part_id"

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, mapError("list inventory", err)
	}
	defer rows.Close()
	var list []*entity.InventoryItem
	for rows.Next() {
		var it entity.InventoryItem
		if err := rows.Scan(&it.BranchID, &it.PartID, &it.Quantity, &it.UpdatedAt); err != nil {
			return nil, mapError("scan inventory", err)
		}
		list = append(list, &it)
	}
	return list, rows.Err()
}

var _ repository.StockMovementRepository = (*StockMovementRepo)(nil)

// StockMovementRepo log append-only de movimientos de stock.
type StockMovementRepo struct {
	q Querier
}

// NewStockMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockMovementRepository(q Querier) *StockMovementRepo {
	return &StockMovementRepo{q: q}
}

// Create persiste un movimiento. La cantidad es siempre positiva; el tipo da el signo.
func (r *StockMovementRepo) Create(ctx context.Context, mv *entity.StockMovement) error {
	query := `
		INSERT INTO stock_movements (id, branch_id, part_id, type, quantity, reason, request_id,
			machine_serial, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.q.Exec(ctx, query, mv.ID, mv.BranchID, mv.PartID, mv.Type, mv.Quantity, mv.Reason,
		mv.RequestID, mv.MachineSerial, mv.CreatedBy, mv.CreatedAt)
	if err != nil {
		return mapError("create stock movement", err)
	}
	return nil
}

// ListByRequest movimientos generados por una solicitud de mantenimiento.
func (r *StockMovementRepo) ListByRequest(ctx context.Context, requestID string) ([]*entity.StockMovement, error) {
	query := `
		SELECT id, branch_id, part_id, type, quantity, reason, request_id, machine_serial, created_by, created_at
		FROM stock_movements WHERE request_id = $1 ORDER BY created_at, id`
	rows, err := r.q.Query(ctx, query, requestID)
	if err != nil {
		return nil, mapError("list stock movements", err)
	}
	defer rows.Close()
	var list []*entity.StockMovement
	for rows.Next() {
		var mv entity.StockMovement
		if err := rows.Scan(&mv.ID, &mv.BranchID, &mv.PartID, &mv.Type, &mv.Quantity, &mv.Reason,
			&mv.RequestID, &mv.MachineSerial, &mv.CreatedBy, &mv.CreatedAt); err != nil {
			return nil, mapError("scan stock movement", err)
		}
		list = append(list, &mv)
	}
	return list, rows.Err()
}

// SumDeltas suma IN - OUT para sucursal+repuesto.
func (r *StockMovementRepo) SumDeltas(ctx context.Context, branchID, partID string) (int, error) {
	query := `
		SELECT COALESCE(SUM(CASE WHEN type = 'IN' THEN quantity ELSE -quantity END), 0)
		FROM stock_movements WHERE branch_id = $1 AND part_id = $2`
	var sum int
	if err := r.q.QueryRow(ctx, query, branchID, partID).Scan(&sum); err != nil {
		return 0, mapError("sum stock movements", err)
	}
	return sum, nil
}
