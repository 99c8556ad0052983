package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Mantenimiento-api/internal/domain/access"
	"github.com/jhoicas/Mantenimiento-api/internal/domain/entity"
	"github.com/jhoicas/Mantenimiento-api/internal/domain/repository"
)

var _ repository.AssignmentRepository = (*AssignmentRepo)(nil)

// AssignmentRepo implementación de AssignmentRepository sobre PostgreSQL.
// El índice único parcial service_assignments_one_open garantiza una abierta por máquina.
type AssignmentRepo struct {
	q Querier
}

// NewAssignmentRepository construye el adaptador. Pasar pool o tx (Querier).
func NewAssignmentRepository(q Querier) *AssignmentRepo {
	return &AssignmentRepo{q: q}
}

const assignmentColumns = `id, machine_id, serial_number, technician_id, center_branch_id, origin_branch_id,
	request_id, status, used_parts, total_cost, notes, assigned_at, started_at, completed_at`

func scanAssignment(row pgx.Row) (*entity.ServiceAssignment, error) {
	var a entity.ServiceAssignment
	var used []byte
	if err := row.Scan(&a.ID, &a.MachineID, &a.SerialNumber, &a.TechnicianID, &a.CenterBranchID,
		&a.OriginBranchID, &a.RequestID, &a.Status, &used, &a.TotalCost, &a.Notes,
		&a.AssignedAt, &a.StartedAt, &a.CompletedAt); err != nil {
		return nil, err
	}
	var err error
	if a.UsedParts, err = entity.DecodePartLines(used); err != nil {
		return nil, err
	}
	return &a, nil
}

// Create persiste la asignación; ErrConflict (ASSIGNMENT_OPEN) si la máquina ya tiene una abierta.
func (r *AssignmentRepo) Create(ctx context.Context, a *entity.ServiceAssignment) error {
	used, err := a.UsedParts.Encode()
	if err != nil {
		return err
	}
	query := `
		INSERT INTO service_assignments (id, machine_id, serial_number, technician_id, center_branch_id,
			origin_branch_id, request_id, status, used_parts, total_cost, notes, assigned_at, started_at, completed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`
	_, err = r.q.Exec(ctx, query, a.ID, a.MachineID, a.SerialNumber, a.TechnicianID, a.CenterBranchID,
		a.OriginBranchID, a.RequestID, a.Status, used, a.TotalCost, a.Notes, a.AssignedAt, a.StartedAt, a.CompletedAt)
	if err != nil {
		return mapError("create assignment", err)
	}
	return nil
}

func (r *AssignmentRepo) getOne(ctx context.Context, op, query string, arg any) (*entity.ServiceAssignment, error) {
	a, err := scanAssignment(r.q.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, mapError(op, err)
	}
	return a, nil
}

// GetByID obtiene una asignación por ID.
func (r *AssignmentRepo) GetByID(ctx context.Context, id string) (*entity.ServiceAssignment, error) {
	return r.getOne(ctx, "get assignment",
		`SELECT `+assignmentColumns+` FROM service_assignments WHERE id = $1`, id)
}

// GetByIDForUpdate obtiene la asignación y bloquea la fila.
func (r *AssignmentRepo) GetByIDForUpdate(ctx context.Context, id string) (*entity.ServiceAssignment, error) {
	return r.getOne(ctx, "get assignment for update",
		`SELECT `+assignmentColumns+` FROM service_assignments WHERE id = $1 FOR UPDATE`, id)
}

// GetOpenByMachine la asignación no terminada de la máquina, si hay.
func (r *AssignmentRepo) GetOpenByMachine(ctx context.Context, machineID string) (*entity.ServiceAssignment, error) {
	return r.getOne(ctx, "get open assignment",
		`SELECT `+assignmentColumns+` FROM service_assignments
		WHERE machine_id = $1 AND status NOT IN ('COMPLETED', 'CANCELLED')`, machineID)
}

// Update escribe estado, repuestos, costo, notas y fechas.
func (r *AssignmentRepo) Update(ctx context.Context, a *entity.ServiceAssignment) error {
	used, err := a.UsedParts.Encode()
	if err != nil {
		return err
	}
	query := `
		UPDATE service_assignments SET
			technician_id = $2, status = $3, used_parts = $4, total_cost = $5, notes = $6,
			started_at = $7, completed_at = $8
		WHERE id = $1`
	_, err = r.q.Exec(ctx, query, a.ID, a.TechnicianID, a.Status, used, a.TotalCost, a.Notes, a.StartedAt, a.CompletedAt)
	if err != nil {
		return mapError("update assignment", err)
	}
	return nil
}

// DeleteByMachine borra las asignaciones de la máquina.
func (r *AssignmentRepo) DeleteByMachine(ctx context.Context, machineID string) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM service_assignments WHERE machine_id = $1`, machineID); err != nil {
		return mapError("delete assignments", err)
	}
	return nil
}

// ListOpen asignaciones abiertas de los centros en el alcance, más antiguas primero.
func (r *AssignmentRepo) ListOpen(ctx context.Context, scope access.Scope, limit, offset int) ([]*entity.ServiceAssignment, error) {
	query := `SELECT ` + assignmentColumns + ` FROM service_assignments
		WHERE status NOT IN ('COMPLETED', 'CANCELLED')`
	var args []any
	var clause string
	clause, args = scopeFilter(scope, args, "center_branch_id")
	query += clause + " ORDER BY assigned_at"
	clause, args = pageClause(limit, offset, args)
	query += clause

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, mapError("list open assignments", err)
	}
	defer rows.Close()
	var list []*entity.ServiceAssignment
	for rows.Next() {
		a, err := scanAssignment(rows)
		if err != nil {
			return nil, mapError("scan assignment", err)
		}
		list = append(list, a)
	}
	return list, rows.Err()
}

var _ repository.MaintenanceRequestRepository = (*MaintenanceRequestRepo)(nil)

// MaintenanceRequestRepo solicitudes de mantenimiento sobre PostgreSQL.
type MaintenanceRequestRepo struct {
	q Querier
}

// NewMaintenanceRequestRepository construye el adaptador. Pasar pool o tx (Querier).
func NewMaintenanceRequestRepository(q Querier) *MaintenanceRequestRepo {
	return &MaintenanceRequestRepo{q: q}
}

const requestColumns = `id, machine_id, serial_number, branch_id, customer_id, status, resolution,
	total_cost, created_at, closed_at`

func scanRequest(row pgx.Row) (*entity.MaintenanceRequest, error) {
	var req entity.MaintenanceRequest
	var resolution *string
	if err := row.Scan(&req.ID, &req.MachineID, &req.SerialNumber, &req.BranchID, &req.CustomerID,
		&req.Status, &resolution, &req.TotalCost, &req.CreatedAt, &req.ClosedAt); err != nil {
		return nil, err
	}
	if resolution != nil {
		res := entity.Resolution(*resolution)
		req.Resolution = &res
	}
	return &req, nil
}

func resolutionArg(res *entity.Resolution) *string {
	if res == nil {
		return nil
	}
	s := string(*res)
	return &s
}

// Create abre una solicitud; ErrConflict (REQUEST_ACTIVE) si la máquina ya tiene una activa.
func (r *MaintenanceRequestRepo) Create(ctx context.Context, req *entity.MaintenanceRequest) error {
	query := `
		INSERT INTO maintenance_requests (id, machine_id, serial_number, branch_id, customer_id, status,
			resolution, total_cost, created_at, closed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.q.Exec(ctx, query, req.ID, req.MachineID, req.SerialNumber, req.BranchID, req.CustomerID,
		req.Status, resolutionArg(req.Resolution), req.TotalCost, req.CreatedAt, req.ClosedAt)
	if err != nil {
		return mapError("create maintenance request", err)
	}
	return nil
}

func (r *MaintenanceRequestRepo) getOne(ctx context.Context, op, query string, arg any) (*entity.MaintenanceRequest, error) {
	req, err := scanRequest(r.q.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, mapError(op, err)
	}
	return req, nil
}

// GetByID obtiene una solicitud por ID.
func (r *MaintenanceRequestRepo) GetByID(ctx context.Context, id string) (*entity.MaintenanceRequest, error) {
	return r.getOne(ctx, "get maintenance request",
		`SELECT `+requestColumns+` FROM maintenance_requests WHERE id = $1`, id)
}

// FindActiveByMachine la solicitud Open / In Progress / PENDING_TRANSFER de la máquina.
func (r *MaintenanceRequestRepo) FindActiveByMachine(ctx context.Context, machineID string) (*entity.MaintenanceRequest, error) {
	return r.getOne(ctx, "find active maintenance request",
		`SELECT `+requestColumns+` FROM maintenance_requests
		WHERE machine_id = $1 AND status IN ('Open', 'In Progress', 'PENDING_TRANSFER')`, machineID)
}

// Update escribe estado, resolución, costo y cierre.
func (r *MaintenanceRequestRepo) Update(ctx context.Context, req *entity.MaintenanceRequest) error {
	query := `
		UPDATE maintenance_requests SET status = $2, resolution = $3, total_cost = $4, closed_at = $5
		WHERE id = $1`
	_, err := r.q.Exec(ctx, query, req.ID, req.Status, resolutionArg(req.Resolution), req.TotalCost, req.ClosedAt)
	if err != nil {
		return mapError("update maintenance request", err)
	}
	return nil
}
