package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Mantenimiento-api/internal/domain"
	"github.com/jhoicas/Mantenimiento-api/internal/domain/access"
	"github.com/jhoicas/Mantenimiento-api/internal/domain/entity"
	"github.com/jhoicas/Mantenimiento-api/internal/domain/repository"
)

var _ repository.DebtRepository = (*DebtRepo)(nil)

// DebtRepo deudas entre sucursales sobre PostgreSQL.
type DebtRepo struct {
	q Querier
}

// NewDebtRepository construye el adaptador. Pasar pool o tx (Querier).
func NewDebtRepository(q Querier) *DebtRepo {
	return &DebtRepo{q: q}
}

const debtColumns = `id, debtor_branch_id, creditor_branch_id, original_amount, remaining_amount,
	status, request_id, machine_serial, created_at, updated_at`

func scanDebt(row pgx.Row) (*entity.BranchDebt, error) {
	var d entity.BranchDebt
	if err := row.Scan(&d.ID, &d.DebtorBranchID, &d.CreditorBranchID, &d.OriginalAmount, &d.RemainingAmount,
		&d.Status, &d.RequestID, &d.MachineSerial, &d.CreatedAt, &d.UpdatedAt); err != nil {
		return nil, err
	}
	return &d, nil
}

// Create persiste una deuda nueva.
func (r *DebtRepo) Create(ctx context.Context, d *entity.BranchDebt) error {
	query := `
		INSERT INTO branch_debts (` + debtColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.q.Exec(ctx, query, d.ID, d.DebtorBranchID, d.CreditorBranchID, d.OriginalAmount, d.RemainingAmount,
		d.Status, d.RequestID, d.MachineSerial, d.CreatedAt, d.UpdatedAt)
	if err != nil {
		return mapError("create debt", err)
	}
	return nil
}

func (r *DebtRepo) getOne(ctx context.Context, op, query string, args ...any) (*entity.BranchDebt, error) {
	d, err := scanDebt(r.q.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, mapError(op, err)
	}
	return d, nil
}

// GetByID obtiene una deuda por ID.
func (r *DebtRepo) GetByID(ctx context.Context, id string) (*entity.BranchDebt, error) {
	return r.getOne(ctx, "get debt", `SELECT `+debtColumns+` FROM branch_debts WHERE id = $1`, id)
}

// GetByIDForUpdate obtiene la deuda y bloquea la fila.
func (r *DebtRepo) GetByIDForUpdate(ctx context.Context, id string) (*entity.BranchDebt, error) {
	return r.getOne(ctx, "get debt for update", `SELECT `+debtColumns+` FROM branch_debts WHERE id = $1 FOR UPDATE`, id)
}

// FindOpenByRequest deuda no pagada de la solicitud para el par deudor/acreedor.
func (r *DebtRepo) FindOpenByRequest(ctx context.Context, requestID, debtorID, creditorID string) (*entity.BranchDebt, error) {
	return r.getOne(ctx, "find open debt", `
		SELECT `+debtColumns+` FROM branch_debts
		WHERE request_id = $1 AND debtor_branch_id = $2 AND creditor_branch_id = $3 AND status <> 'PAID'
		ORDER BY created_at DESC LIMIT 1`, requestID, debtorID, creditorID)
}

// ApplyPayment descuenta amount con un UPDATE condicionado: el saldo se calcula en la base,
// nunca a partir de un valor leído antes.
func (r *DebtRepo) ApplyPayment(ctx context.Context, id string, amount decimal.Decimal) (*entity.BranchDebt, error) {
	if !amount.IsPositive() {
		return nil, domain.Validation("INVALID_AMOUNT", "el monto debe ser mayor que cero")
	}
	query := `
		UPDATE branch_debts SET
			remaining_amount = remaining_amount - $2,
			status = CASE
				WHEN remaining_amount - $2 = 0 THEN 'PAID'
				ELSE 'PENDING_PAYMENT'
			END,
			updated_at = $3
		WHERE id = $1 AND remaining_amount >= $2
		RETURNING ` + debtColumns
	d, err := scanDebt(r.q.QueryRow(ctx, query, id, amount, time.Now().UTC()))
	if err == nil {
		return d, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, mapError("apply debt payment", err)
	}
	cur, gerr := r.GetByID(ctx, id)
	if gerr != nil {
		return nil, gerr
	}
	if cur == nil {
		return nil, domain.NotFound("deuda", id)
	}
	return nil, domain.Validation("PAYMENT_EXCEEDS_BALANCE", "el abono supera el saldo pendiente")
}

// List deudas donde el alcance es deudor o acreedor, más recientes primero.
func (r *DebtRepo) List(ctx context.Context, scope access.Scope, f repository.DebtFilter) ([]*entity.BranchDebt, error) {
	query := `SELECT ` + debtColumns + ` FROM branch_debts WHERE TRUE`
	var args []any
	if f.Status != "" {
		args = append(args, f.Status)
		query += " AND status = $" + itoa(len(args))
	}
	clause, args := scopeFilter(scope, args, "debtor_branch_id", "creditor_branch_id")
	query += clause + " ORDER BY created_at DESC"
	page, args := pageClause(f.Limit, f.Offset, args)
	query += page

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, mapError("list debts", err)
	}
	defer rows.Close()
	var list []*entity.BranchDebt
	for rows.Next() {
		d, err := scanDebt(rows)
		if err != nil {
			return nil, mapError("scan debt", err)
		}
		list = append(list, d)
	}
	return list, rows.Err()
}

var _ repository.PaymentRepository = (*PaymentRepo)(nil)

// PaymentRepo abonos; debt_payments_receipt_number_key hace único el recibo.
type PaymentRepo struct {
	q Querier
}

// NewPaymentRepository construye el adaptador. Pasar pool o tx (Querier).
func NewPaymentRepository(q Querier) *PaymentRepo {
	return &PaymentRepo{q: q}
}

// Create persiste el abono; DuplicateReceipt si el número de recibo ya existe.
func (r *PaymentRepo) Create(ctx context.Context, p *entity.DebtPayment) error {
	query := `
		INSERT INTO debt_payments (id, debt_id, amount, receipt_number, notes, paid_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.q.Exec(ctx, query, p.ID, p.DebtID, p.Amount, p.ReceiptNumber, p.Notes, p.PaidBy, p.CreatedAt)
	if err != nil {
		err = mapError("create debt payment", err)
		if errors.Is(err, domain.ErrDuplicateReceipt) {
			return domain.DuplicateReceipt(p.ReceiptNumber)
		}
		return err
	}
	return nil
}

// ExistsReceipt indica si el número de recibo ya fue usado en cualquier deuda.
func (r *PaymentRepo) ExistsReceipt(ctx context.Context, receiptNumber string) (bool, error) {
	var exists bool
	err := r.q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM debt_payments WHERE receipt_number = $1)`, receiptNumber).Scan(&exists)
	if err != nil {
		return false, mapError("check receipt", err)
	}
	return exists, nil
}

// ListByDebt abonos de la deuda en orden de registro.
func (r *PaymentRepo) ListByDebt(ctx context.Context, debtID string) ([]*entity.DebtPayment, error) {
	query := `
		SELECT id, debt_id, amount, receipt_number, notes, paid_by, created_at
		FROM debt_payments WHERE debt_id = $1 ORDER BY created_at, id`
	rows, err := r.q.Query(ctx, query, debtID)
	if err != nil {
		return nil, mapError("list debt payments", err)
	}
	defer rows.Close()
	var list []*entity.DebtPayment
	for rows.Next() {
		var p entity.DebtPayment
		if err := rows.Scan(&p.ID, &p.DebtID, &p.Amount, &p.ReceiptNumber, &p.Notes, &p.PaidBy, &p.CreatedAt); err != nil {
			return nil, mapError("scan debt payment", err)
		}
		list = append(list, &p)
	}
	return list, rows.Err()
}
