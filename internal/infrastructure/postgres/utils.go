package postgres

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/jhoicas/Mantenimiento-api/internal/domain"
	"github.com/jhoicas/Mantenimiento-api/internal/domain/access"
)

const (
	pgUniqueViolation = "23505"
	pgCheckViolation  = "23514"
)

// mapError traduce violaciones de constraints conocidos a errores de dominio. Cualquier otro
// fallo se envuelve como INFRASTRUCTURE con la operación en el mensaje.
func mapError(op string, err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			switch pgErr.ConstraintName {
			case "warehouse_machines_serial_number_key":
				return domain.Conflict("SERIAL_EXISTS", "ya existe una máquina con ese número de serie")
			case "maintenance_approvals_one_pending":
				return domain.Conflict("APPROVAL_PENDING", "la máquina ya tiene una aprobación pendiente")
			case "service_assignments_one_open":
				return domain.Conflict("ASSIGNMENT_OPEN", "la máquina ya tiene una asignación abierta")
			case "maintenance_requests_one_active":
				return domain.Conflict("REQUEST_ACTIVE", "la máquina ya tiene una solicitud activa")
			case "debt_payments_receipt_number_key":
				return domain.ErrDuplicateReceipt
			}
			return domain.Conflict("CONFLICT", "valor duplicado: "+pgErr.ConstraintName)
		case pgCheckViolation:
			switch pgErr.ConstraintName {
			case "inventory_quantity_nonneg":
				return domain.ErrInsufficientStock
			case "branch_debts_remaining_bounds":
				return domain.Validation("PAYMENT_EXCEEDS_BALANCE", "el abono supera el saldo pendiente")
			}
			return domain.Validation("VALIDATION", "valor fuera de rango: "+pgErr.ConstraintName)
		}
	}
	return domain.Infrastructure(fmt.Errorf("%s: %w", op, err))
}

// scopeFilter agrega " AND (col1 = $n OR col2 = $n)" para un alcance de sucursal; vacío si es global.
func scopeFilter(scope access.Scope, args []any, cols ...string) (string, []any) {
	if scope.IsGlobal() {
		return "", args
	}
	args = append(args, scope.BranchID())
	n := len(args)
	conds := make([]string, len(cols))
	for i, c := range cols {
		conds[i] = fmt.Sprintf("%s = $%d", c, n)
	}
	return " AND (" + strings.Join(conds, " OR ") + ")", args
}

// pageClause agrega LIMIT/OFFSET si limit > 0.
func pageClause(limit, offset int, args []any) (string, []any) {
	if limit <= 0 {
		return "", args
	}
	args = append(args, limit, offset)
	return fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)-1, len(args)), args
}

func itoa(n int) string { return strconv.Itoa(n) }
