package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Mantenimiento-api/internal/domain"
	"github.com/jhoicas/Mantenimiento-api/internal/domain/access"
	"github.com/jhoicas/Mantenimiento-api/internal/domain/entity"
	"github.com/jhoicas/Mantenimiento-api/internal/domain/repository"
)

var _ repository.MachineRepository = (*MachineRepo)(nil)

// MachineRepo implementación de MachineRepository sobre PostgreSQL (usable con pool o tx).
type MachineRepo struct {
	q Querier
}

// NewMachineRepository construye el adaptador. Pasar pool o tx (Querier).
func NewMachineRepository(q Querier) *MachineRepo {
	return &MachineRepo{q: q}
}

const machineColumns = `id, serial_number, model, customer_id, status, branch_id, origin_branch_id,
	resolution, proposed_parts, proposed_total_cost, used_parts, total_cost, ready_for_pickup,
	created_at, updated_at`

func scanMachine(row pgx.Row) (*entity.WarehouseMachine, error) {
	var (
		m             entity.WarehouseMachine
		status        string
		resolution    *string
		proposed      []byte
		used          []byte
		proposedTotal decimal.NullDecimal
	)
	if err := row.Scan(
		&m.ID, &m.SerialNumber, &m.Model, &m.CustomerID, &status, &m.BranchID, &m.OriginBranchID,
		&resolution, &proposed, &proposedTotal, &used, &m.TotalCost, &m.ReadyForPickup,
		&m.CreatedAt, &m.UpdatedAt,
	); err != nil {
		return nil, err
	}
	m.Status = entity.MachineStatus(status)
	if resolution != nil {
		res := entity.Resolution(*resolution)
		m.Resolution = &res
	}
	if proposedTotal.Valid {
		t := proposedTotal.Decimal
		m.ProposedTotalCost = &t
	}
	var err error
	if m.ProposedParts, err = entity.DecodePartLines(proposed); err != nil {
		return nil, err
	}
	if m.UsedParts, err = entity.DecodePartLines(used); err != nil {
		return nil, err
	}
	return &m, nil
}

// machineArgs columnas editables en el orden de los placeholders $2..$13.
func machineArgs(m *entity.WarehouseMachine) ([]any, error) {
	proposed, err := m.ProposedParts.Encode()
	if err != nil {
		return nil, err
	}
	used, err := m.UsedParts.Encode()
	if err != nil {
		return nil, err
	}
	return []any{
		m.Model, m.CustomerID, string(m.Status), m.BranchID, m.OriginBranchID,
		resolutionArg(m.Resolution), proposed, m.ProposedTotalCost, used, m.TotalCost, m.ReadyForPickup, m.UpdatedAt,
	}, nil
}

// Create persiste una máquina nueva. El serial es único.
func (r *MachineRepo) Create(ctx context.Context, m *entity.WarehouseMachine) error {
	args, err := machineArgs(m)
	if err != nil {
		return err
	}
	query := `
		INSERT INTO warehouse_machines (id, model, customer_id, status, branch_id, origin_branch_id,
			resolution, proposed_parts, proposed_total_cost, used_parts, total_cost, ready_for_pickup,
			updated_at, serial_number, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`
	args = append([]any{m.ID}, args...)
	args = append(args, m.SerialNumber, m.CreatedAt)
	if _, err := r.q.Exec(ctx, query, args...); err != nil {
		return mapError("create machine", err)
	}
	return nil
}

func (r *MachineRepo) getBySerial(ctx context.Context, serial string, forUpdate bool) (*entity.WarehouseMachine, error) {
	query := `SELECT ` + machineColumns + ` FROM warehouse_machines WHERE serial_number = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}
	m, err := scanMachine(r.q.QueryRow(ctx, query, serial))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, mapError("get machine", err)
	}
	return m, nil
}

// GetBySerial obtiene una máquina por serial normalizado.
func (r *MachineRepo) GetBySerial(ctx context.Context, serial string) (*entity.WarehouseMachine, error) {
	return r.getBySerial(ctx, serial, false)
}

// GetBySerialForUpdate obtiene la máquina y bloquea la fila (SELECT FOR UPDATE).
func (r *MachineRepo) GetBySerialForUpdate(ctx context.Context, serial string) (*entity.WarehouseMachine, error) {
	return r.getBySerial(ctx, serial, true)
}

// Update escribe la máquina solo si su estado sigue siendo expected.
func (r *MachineRepo) Update(ctx context.Context, m *entity.WarehouseMachine, expected entity.MachineStatus) error {
	args, err := machineArgs(m)
	if err != nil {
		return err
	}
	query := `
		UPDATE warehouse_machines SET
			model = $2, customer_id = $3, status = $4, branch_id = $5, origin_branch_id = $6,
			resolution = $7, proposed_parts = $8, proposed_total_cost = $9, used_parts = $10,
			total_cost = $11, ready_for_pickup = $12, updated_at = $13
		WHERE id = $1 AND status = $14`
	args = append([]any{m.ID}, args...)
	args = append(args, string(expected))
	tag, err := r.q.Exec(ctx, query, args...)
	if err != nil {
		return mapError("update machine", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.Conflict("STALE_STATUS", "la máquina cambió de estado o ya no existe")
	}
	return nil
}

// Delete elimina la máquina; su historial, solicitudes, asignaciones y aprobaciones caen en cascada.
func (r *MachineRepo) Delete(ctx context.Context, id string) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM warehouse_machines WHERE id = $1`, id); err != nil {
		return mapError("delete machine", err)
	}
	return nil
}

// List máquinas custodiadas u originadas en el alcance, más recientes primero.
func (r *MachineRepo) List(ctx context.Context, scope access.Scope, f repository.MachineFilter) ([]*entity.WarehouseMachine, error) {
	query := `SELECT ` + machineColumns + ` FROM warehouse_machines WHERE TRUE`
	var args []any
	var clause string
	clause, args = scopeFilter(scope, args, "branch_id", "origin_branch_id")
	query += clause
	if f.Status != "" {
		args = append(args, string(f.Status))
		query += " AND status = $" + itoa(len(args))
	}
	if f.BranchID != "" {
		args = append(args, f.BranchID)
		query += " AND branch_id = $" + itoa(len(args))
	}
	query += " ORDER BY updated_at DESC"
	clause, args = pageClause(f.Limit, f.Offset, args)
	query += clause

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, mapError("list machines", err)
	}
	defer rows.Close()
	var list []*entity.WarehouseMachine
	for rows.Next() {
		m, err := scanMachine(rows)
		if err != nil {
			return nil, mapError("scan machine", err)
		}
		list = append(list, m)
	}
	return list, rows.Err()
}

var _ repository.MachineMovementRepository = (*MachineMovementRepo)(nil)

// MachineMovementRepo log append-only de custodia sobre PostgreSQL.
type MachineMovementRepo struct {
	q Querier
}

// NewMachineMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewMachineMovementRepository(q Querier) *MachineMovementRepo {
	return &MachineMovementRepo{q: q}
}

// Create agrega una entrada al historial.
func (r *MachineMovementRepo) Create(ctx context.Context, mv *entity.MachineMovement) error {
	query := `
		INSERT INTO machine_movements (id, machine_id, serial_number, from_branch_id, to_branch_id,
			action, from_status, to_status, order_id, performed_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.q.Exec(ctx, query,
		mv.ID, mv.MachineID, mv.SerialNumber, mv.FromBranchID, mv.ToBranchID,
		mv.Action, string(mv.FromStatus), string(mv.ToStatus), mv.OrderID, mv.PerformedBy, mv.CreatedAt,
	)
	if err != nil {
		return mapError("create machine movement", err)
	}
	return nil
}

// ListByMachine historial de la máquina en orden cronológico.
func (r *MachineMovementRepo) ListByMachine(ctx context.Context, machineID string) ([]*entity.MachineMovement, error) {
	query := `
		SELECT id, machine_id, serial_number, from_branch_id, to_branch_id, action,
			from_status, to_status, order_id, performed_by, created_at
		FROM machine_movements WHERE machine_id = $1
		ORDER BY seq`
	rows, err := r.q.Query(ctx, query, machineID)
	if err != nil {
		return nil, mapError("list machine movements", err)
	}
	defer rows.Close()
	var list []*entity.MachineMovement
	for rows.Next() {
		var mv entity.MachineMovement
		var from, to string
		if err := rows.Scan(&mv.ID, &mv.MachineID, &mv.SerialNumber, &mv.FromBranchID, &mv.ToBranchID,
			&mv.Action, &from, &to, &mv.OrderID, &mv.PerformedBy, &mv.CreatedAt); err != nil {
			return nil, mapError("scan machine movement", err)
		}
		mv.FromStatus = entity.MachineStatus(from)
		mv.ToStatus = entity.MachineStatus(to)
		list = append(list, &mv)
	}
	return list, rows.Err()
}
