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

var _ repository.TransferOrderRepository = (*TransferRepo)(nil)

// TransferRepo órdenes de traslado y sus ítems. Los ítems se escriben una vez y no cambian.
type TransferRepo struct {
	q Querier
}

// NewTransferRepository construye el adaptador. Pasar pool o tx (Querier).
func NewTransferRepository(q Querier) *TransferRepo {
	return &TransferRepo{q: q}
}

const transferColumns = `id, order_number, from_branch_id, to_branch_id, type, status, notes,
	created_by, received_by, created_at, received_at`

func scanTransfer(row pgx.Row) (*entity.TransferOrder, error) {
	var o entity.TransferOrder
	if err := row.Scan(&o.ID, &o.OrderNumber, &o.FromBranchID, &o.ToBranchID, &o.Type, &o.Status, &o.Notes,
		&o.CreatedBy, &o.ReceivedBy, &o.CreatedAt, &o.ReceivedAt); err != nil {
		return nil, err
	}
	return &o, nil
}

// Create persiste la cabecera y los ítems. Debe correr dentro de una transacción.
func (r *TransferRepo) Create(ctx context.Context, o *entity.TransferOrder) error {
	query := `INSERT INTO transfer_orders (` + transferColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.q.Exec(ctx, query, o.ID, o.OrderNumber, o.FromBranchID, o.ToBranchID, o.Type, o.Status, o.Notes,
		o.CreatedBy, o.ReceivedBy, o.CreatedAt, o.ReceivedAt)
	if err != nil {
		return mapError("create transfer order", err)
	}
	itemQuery := `
		INSERT INTO transfer_order_items (id, order_id, machine_id, serial_number, previous_status, position)
		VALUES ($1, $2, $3, $4, $5, $6)`
	for i, it := range o.Items {
		if _, err := r.q.Exec(ctx, itemQuery, it.ID, o.ID, it.MachineID, it.SerialNumber, string(it.PreviousStatus), i); err != nil {
			return mapError("create transfer order item", err)
		}
	}
	return nil
}

func (r *TransferRepo) loadItems(ctx context.Context, o *entity.TransferOrder) error {
	rows, err := r.q.Query(ctx, `
		SELECT id, order_id, machine_id, serial_number, previous_status
		FROM transfer_order_items WHERE order_id = $1 ORDER BY position`, o.ID)
	if err != nil {
		return mapError("list transfer order items", err)
	}
	defer rows.Close()
	o.Items = nil
	for rows.Next() {
		var it entity.TransferOrderItem
		var prev string
		if err := rows.Scan(&it.ID, &it.OrderID, &it.MachineID, &it.SerialNumber, &prev); err != nil {
			return mapError("scan transfer order item", err)
		}
		it.PreviousStatus = entity.MachineStatus(prev)
		o.Items = append(o.Items, it)
	}
	return rows.Err()
}

func (r *TransferRepo) getOne(ctx context.Context, op, query, id string) (*entity.TransferOrder, error) {
	o, err := scanTransfer(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, mapError(op, err)
	}
	if err := r.loadItems(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

// GetByID obtiene la orden con sus ítems.
func (r *TransferRepo) GetByID(ctx context.Context, id string) (*entity.TransferOrder, error) {
	return r.getOne(ctx, "get transfer order", `SELECT `+transferColumns+` FROM transfer_orders WHERE id = $1`, id)
}

// GetByIDForUpdate obtiene la orden y bloquea la cabecera.
func (r *TransferRepo) GetByIDForUpdate(ctx context.Context, id string) (*entity.TransferOrder, error) {
	return r.getOne(ctx, "get transfer order for update",
		`SELECT `+transferColumns+` FROM transfer_orders WHERE id = $1 FOR UPDATE`, id)
}

// HasOpenOrderForMachine true si la máquina figura en una orden PENDING.
func (r *TransferRepo) HasOpenOrderForMachine(ctx context.Context, machineID string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM transfer_order_items i
			JOIN transfer_orders o ON o.id = i.order_id
			WHERE i.machine_id = $1 AND o.status = 'PENDING'
		)`
	var open bool
	if err := r.q.QueryRow(ctx, query, machineID).Scan(&open); err != nil {
		return false, mapError("check open transfer", err)
	}
	return open, nil
}

// UpdateStatus escribe estado y recepción solo si el estado actual es expected.
func (r *TransferRepo) UpdateStatus(ctx context.Context, o *entity.TransferOrder, expected string) error {
	query := `
		UPDATE transfer_orders SET status = $2, received_by = $3, received_at = $4
		WHERE id = $1 AND status = $5`
	tag, err := r.q.Exec(ctx, query, o.ID, o.Status, o.ReceivedBy, o.ReceivedAt, expected)
	if err != nil {
		return mapError("update transfer order", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.Conflict("ORDER_ALREADY_RECEIVED", "la orden ya no está pendiente")
	}
	return nil
}

// List órdenes donde el alcance es origen o destino, más recientes primero.
func (r *TransferRepo) List(ctx context.Context, scope access.Scope, f repository.TransferFilter) ([]*entity.TransferOrder, error) {
	query := `SELECT ` + transferColumns + ` FROM transfer_orders WHERE TRUE`
	var args []any
	if f.Status != "" {
		args = append(args, f.Status)
		query += " AND status = $" + itoa(len(args))
	}
	if f.Type != "" {
		args = append(args, f.Type)
		query += " AND type = $" + itoa(len(args))
	}
	clause, args := scopeFilter(scope, args, "from_branch_id", "to_branch_id")
	query += clause + " ORDER BY created_at DESC"
	page, args := pageClause(f.Limit, f.Offset, args)
	query += page

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, mapError("list transfer orders", err)
	}
	var list []*entity.TransferOrder
	for rows.Next() {
		o, err := scanTransfer(rows)
		if err != nil {
			rows.Close()
			return nil, mapError("scan transfer order", err)
		}
		list = append(list, o)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, mapError("list transfer orders", err)
	}
	// los ítems se cargan después de cerrar rows: una conexión no admite dos consultas abiertas
	for _, o := range list {
		if err := r.loadItems(ctx, o); err != nil {
			return nil, err
		}
	}
	return list, nil
}
