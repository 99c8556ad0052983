package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Mantenimiento-api/internal/domain"
	"github.com/jhoicas/Mantenimiento-api/internal/domain/access"
	"github.com/jhoicas/Mantenimiento-api/internal/domain/entity"
	"github.com/jhoicas/Mantenimiento-api/internal/domain/repository"
)

var _ repository.ApprovalRepository = (*ApprovalRepo)(nil)

// ApprovalRepo aprobaciones de cotización sobre PostgreSQL. El índice único parcial
// maintenance_approvals_one_pending impide una segunda PENDING para la misma máquina.
type ApprovalRepo struct {
	q Querier
}

// NewApprovalRepository construye el adaptador. Pasar pool o tx (Querier).
func NewApprovalRepository(q Querier) *ApprovalRepo {
	return &ApprovalRepo{q: q}
}

const approvalColumns = `id, machine_id, serial_number, request_id, assignment_id, origin_branch_id,
	center_branch_id, proposed_total, parts, status, rejection_reason, notes, requested_by,
	responded_by, created_at, responded_at`

func scanApproval(row pgx.Row) (*entity.MaintenanceApprovalRequest, error) {
	var a entity.MaintenanceApprovalRequest
	var parts []byte
	if err := row.Scan(&a.ID, &a.MachineID, &a.SerialNumber, &a.RequestID, &a.AssignmentID,
		&a.OriginBranchID, &a.CenterBranchID, &a.ProposedTotal, &parts, &a.Status,
		&a.RejectionReason, &a.Notes, &a.RequestedBy, &a.RespondedBy, &a.CreatedAt, &a.RespondedAt); err != nil {
		return nil, err
	}
	var err error
	if a.Parts, err = entity.DecodePartLines(parts); err != nil {
		return nil, err
	}
	return &a, nil
}

// Create persiste la aprobación; ErrConflict (APPROVAL_PENDING) si ya hay una PENDING.
func (r *ApprovalRepo) Create(ctx context.Context, a *entity.MaintenanceApprovalRequest) error {
	parts, err := a.Parts.Encode()
	if err != nil {
		return err
	}
	query := `
		INSERT INTO maintenance_approvals (id, machine_id, serial_number, request_id, assignment_id,
			origin_branch_id, center_branch_id, proposed_total, parts, status, rejection_reason, notes,
			requested_by, responded_by, created_at, responded_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`
	_, err = r.q.Exec(ctx, query, a.ID, a.MachineID, a.SerialNumber, a.RequestID, a.AssignmentID,
		a.OriginBranchID, a.CenterBranchID, a.ProposedTotal, parts, a.Status, a.RejectionReason, a.Notes,
		a.RequestedBy, a.RespondedBy, a.CreatedAt, a.RespondedAt)
	if err != nil {
		return mapError("create approval", err)
	}
	return nil
}

func (r *ApprovalRepo) getOne(ctx context.Context, op, query string, arg any) (*entity.MaintenanceApprovalRequest, error) {
	a, err := scanApproval(r.q.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, mapError(op, err)
	}
	return a, nil
}

// GetByID obtiene una aprobación por ID.
func (r *ApprovalRepo) GetByID(ctx context.Context, id string) (*entity.MaintenanceApprovalRequest, error) {
	return r.getOne(ctx, "get approval",
		`SELECT `+approvalColumns+` FROM maintenance_approvals WHERE id = $1`, id)
}

// GetByIDForUpdate obtiene la aprobación y bloquea la fila.
func (r *ApprovalRepo) GetByIDForUpdate(ctx context.Context, id string) (*entity.MaintenanceApprovalRequest, error) {
	return r.getOne(ctx, "get approval for update",
		`SELECT `+approvalColumns+` FROM maintenance_approvals WHERE id = $1 FOR UPDATE`, id)
}

// GetPendingByMachine la aprobación PENDING de la máquina, si hay.
func (r *ApprovalRepo) GetPendingByMachine(ctx context.Context, machineID string) (*entity.MaintenanceApprovalRequest, error) {
	return r.getOne(ctx, "get pending approval",
		`SELECT `+approvalColumns+` FROM maintenance_approvals WHERE machine_id = $1 AND status = 'PENDING'`, machineID)
}

// GetLatestByMachine la última aprobación creada para la máquina, en cualquier estado.
func (r *ApprovalRepo) GetLatestByMachine(ctx context.Context, machineID string) (*entity.MaintenanceApprovalRequest, error) {
	return r.getOne(ctx, "get latest approval",
		`SELECT `+approvalColumns+` FROM maintenance_approvals WHERE machine_id = $1
		ORDER BY seq DESC LIMIT 1`, machineID)
}

// Update escribe la respuesta solo si el estado actual es expected.
func (r *ApprovalRepo) Update(ctx context.Context, a *entity.MaintenanceApprovalRequest, expected string) error {
	query := `
		UPDATE maintenance_approvals SET
			status = $2, rejection_reason = $3, responded_by = $4, responded_at = $5, assignment_id = $6
		WHERE id = $1 AND status = $7`
	tag, err := r.q.Exec(ctx, query, a.ID, a.Status, a.RejectionReason, a.RespondedBy, a.RespondedAt, a.AssignmentID, expected)
	if err != nil {
		return mapError("update approval", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.Conflict("APPROVAL_ALREADY_RESPONDED", "la aprobación ya fue respondida")
	}
	return nil
}

// DeleteByMachine borra las aprobaciones de la máquina.
func (r *ApprovalRepo) DeleteByMachine(ctx context.Context, machineID string) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM maintenance_approvals WHERE machine_id = $1`, machineID); err != nil {
		return mapError("delete approvals", err)
	}
	return nil
}

// ListPending aprobaciones PENDING donde el alcance es origen o centro.
func (r *ApprovalRepo) ListPending(ctx context.Context, scope access.Scope) ([]*entity.MaintenanceApprovalRequest, error) {
	query := `SELECT ` + approvalColumns + ` FROM maintenance_approvals WHERE status = 'PENDING'`
	clause, args := scopeFilter(scope, nil, "origin_branch_id", "center_branch_id")
	query += clause + " ORDER BY seq"

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, mapError("list pending approvals", err)
	}
	defer rows.Close()
	var list []*entity.MaintenanceApprovalRequest
	for rows.Next() {
		a, err := scanApproval(rows)
		if err != nil {
			return nil, mapError("scan approval", err)
		}
		list = append(list, a)
	}
	return list, rows.Err()
}
