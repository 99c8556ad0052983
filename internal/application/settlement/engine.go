// Package settlement aplica los efectos colaterales del cierre de una reparación:
// descuento de repuestos en el centro y registro de la deuda entre sucursales.
package settlement

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Mantenimiento-api/internal/application/inventory"
	"github.com/jhoicas/Mantenimiento-api/internal/application/ports"
	"github.com/jhoicas/Mantenimiento-api/internal/domain"
	"github.com/jhoicas/Mantenimiento-api/internal/domain/entity"
	"github.com/jhoicas/Mantenimiento-api/internal/infrastructure/metrics"
	"github.com/jhoicas/Mantenimiento-api/pkg/logger"
)

// Engine liquida una reparación dentro de la transacción del caller.
type Engine struct {
	ledger  *inventory.Ledger
	log     *logger.Logger
	metrics *metrics.Metrics
}

// NewEngine construye el motor. log y m pueden ser nil.
func NewEngine(ledger *inventory.Ledger, log *logger.Logger, m *metrics.Metrics) *Engine {
	log = log.Component("settlement")
	return &Engine{ledger: ledger, log: log, metrics: m}
}

// Input datos de la liquidación. Parts son los repuestos realmente consumidos en CenterBranchID.
type Input struct {
	MachineSerial  string
	CenterBranchID string
	PayerBranchID  string
	Parts          entity.PartLines
	TotalCost      decimal.Decimal
	Chargeable     bool
	RequestID      string
	UserID         string
	Reason         string
}

// Result movimientos generados y la deuda creada o incrementada (nil si no aplica).
type Result struct {
	Movements []*entity.StockMovement
	Debt      *entity.BranchDebt
}

// Settle descuenta cada repuesto y, si el trabajo es cobrable a otra sucursal, registra la deuda.
// El primer fallo aborta; el caller escribe máquina/asignación/solicitud en la misma transacción
// solo después de que Settle termine sin error.
func (e *Engine) Settle(ctx context.Context, r ports.Repos, in Input) (res *Result, err error) {
	defer func() { e.metrics.RecordSettlement(err) }()

	parts := in.Parts.Normalize()
	if err := parts.Validate(); err != nil {
		return nil, domain.Validation("INVALID_PART_LINE", err.Error())
	}
	if in.TotalCost.IsNegative() {
		return nil, domain.Validation("INVALID_AMOUNT", "el costo total no puede ser negativo")
	}
	if in.CenterBranchID == "" {
		return nil, domain.Validation("VALIDATION", "sucursal del centro requerida")
	}

	res = &Result{}
	for _, p := range parts {
		mov, err := e.ledger.DeductInTx(ctx, r, inventory.DeductInput{
			BranchID:      in.CenterBranchID,
			PartID:        p.PartID,
			Quantity:      p.Quantity,
			Reason:        in.Reason,
			RequestID:     in.RequestID,
			MachineSerial: in.MachineSerial,
			UserID:        in.UserID,
		})
		if err != nil {
			return nil, err
		}
		res.Movements = append(res.Movements, mov)
	}

	if !IsChargeable(in) {
		return res, nil
	}
	debt, err := e.postDebt(ctx, r, in)
	if err != nil {
		return nil, err
	}
	res.Debt = debt
	return res, nil
}

// IsChargeable true si el trabajo genera deuda: cobrable, costo positivo y pagador distinto del centro.
func IsChargeable(in Input) bool {
	return in.Chargeable &&
		in.TotalCost.GreaterThan(decimal.Zero) &&
		in.PayerBranchID != "" &&
		in.PayerBranchID != in.CenterBranchID
}

// postDebt crea la deuda de la liquidación. Los saldos solo bajan (abonos), así que una
// solicitud que ya tiene deuda abierta con el mismo par no se vuelve a liquidar.
func (e *Engine) postDebt(ctx context.Context, r ports.Repos, in Input) (*entity.BranchDebt, error) {
	if in.RequestID != "" {
		open, err := r.Debts.FindOpenByRequest(ctx, in.RequestID, in.PayerBranchID, in.CenterBranchID)
		if err != nil {
			return nil, err
		}
		if open != nil {
			return nil, domain.Conflict("REQUEST_ALREADY_SETTLED", "la solicitud ya tiene una deuda abierta")
		}
	}

	now := time.Now().UTC()
	d := &entity.BranchDebt{
		ID:               uuid.New().String(),
		DebtorBranchID:   in.PayerBranchID,
		CreditorBranchID: in.CenterBranchID,
		OriginalAmount:   in.TotalCost,
		RemainingAmount:  in.TotalCost,
		Status:           entity.DebtPending,
		RequestID:        in.RequestID,
		MachineSerial:    in.MachineSerial,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := r.Debts.Create(ctx, d); err != nil {
		return nil, err
	}
	e.metrics.RecordDebtPosted(in.TotalCost)
	e.log.Info().
		Str("debt_id", d.ID).
		Str("debtor", d.DebtorBranchID).
		Str("creditor", d.CreditorBranchID).
		Str("amount", d.OriginalAmount.String()).
		Str("serial", in.MachineSerial).
		Msg("deuda registrada")
	return d, nil
}
