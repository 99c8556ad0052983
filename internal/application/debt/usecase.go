// Package debt administra las deudas entre sucursales: consulta y registro de abonos.
package debt

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Mantenimiento-api/internal/application/dto"
	"github.com/jhoicas/Mantenimiento-api/internal/application/ports"
	"github.com/jhoicas/Mantenimiento-api/internal/domain"
	"github.com/jhoicas/Mantenimiento-api/internal/domain/access"
	"github.com/jhoicas/Mantenimiento-api/internal/domain/entity"
	"github.com/jhoicas/Mantenimiento-api/internal/domain/repository"
	"github.com/jhoicas/Mantenimiento-api/internal/infrastructure/metrics"
	"github.com/jhoicas/Mantenimiento-api/pkg/logger"
)

// UseCase casos de uso del libro de deudas.
type UseCase struct {
	txRunner ports.TxRunner
	log      *logger.Logger
	metrics  *metrics.Metrics
}

// NewUseCase construye el caso de uso. log y m pueden ser nil.
func NewUseCase(txRunner ports.TxRunner, log *logger.Logger, m *metrics.Metrics) *UseCase {
	log = log.Component("debt")
	return &UseCase{txRunner: txRunner, log: log, metrics: m}
}

// PaymentResult deuda tras el abono y el abono registrado.
type PaymentResult struct {
	Debt    *entity.BranchDebt
	Payment *entity.DebtPayment
}

// RecordPayment abona a una deuda. El recibo es único en todo el sistema y el saldo solo
// baja por un delta acotado sobre la fila bloqueada.
func (uc *UseCase) RecordPayment(ctx context.Context, actor access.Actor, in dto.RecordPaymentRequest) (*PaymentResult, error) {
	in.ReceiptNumber = strings.TrimSpace(in.ReceiptNumber)
	if err := dto.Validate(in); err != nil {
		return nil, err
	}
	if !in.Amount.GreaterThan(decimal.Zero) {
		return nil, domain.Validation("INVALID_AMOUNT", "el monto del abono debe ser positivo")
	}

	var res PaymentResult
	err := uc.txRunner.Run(ctx, func(r ports.Repos) error {
		d, err := r.Debts.GetByIDForUpdate(ctx, in.DebtID)
		if err != nil {
			return err
		}
		if d == nil {
			return domain.NotFound("deuda", in.DebtID)
		}
		if err := actor.Scope().Require(d.DebtorBranchID, d.CreditorBranchID); err != nil {
			return err
		}
		exists, err := r.Payments.ExistsReceipt(ctx, in.ReceiptNumber)
		if err != nil {
			return err
		}
		if exists {
			return domain.DuplicateReceipt(in.ReceiptNumber)
		}
		if in.Amount.GreaterThan(d.RemainingAmount) {
			return domain.Validation("PAYMENT_EXCEEDS_BALANCE",
				"el abono "+in.Amount.String()+" supera el saldo pendiente "+d.RemainingAmount.String())
		}
		updated, err := r.Debts.ApplyPayment(ctx, d.ID, in.Amount)
		if err != nil {
			return err
		}
		p := &entity.DebtPayment{
			ID:            uuid.New().String(),
			DebtID:        d.ID,
			Amount:        in.Amount,
			ReceiptNumber: in.ReceiptNumber,
			Notes:         strings.TrimSpace(in.Notes),
			PaidBy:        actor.UserID,
			CreatedAt:     time.Now().UTC(),
		}
		if err := r.Payments.Create(ctx, p); err != nil {
			return err
		}
		res = PaymentResult{Debt: updated, Payment: p}
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.metrics.RecordPayment()
	uc.log.Info().
		Str("debt_id", res.Debt.ID).
		Str("amount", in.Amount.String()).
		Str("remaining", res.Debt.RemainingAmount.String()).
		Str("status", res.Debt.Status).
		Msg("abono registrado")
	return &res, nil
}

// GetDebt devuelve la deuda si el actor es deudor o acreedor.
func (uc *UseCase) GetDebt(ctx context.Context, actor access.Actor, id string) (*entity.BranchDebt, error) {
	var d *entity.BranchDebt
	err := uc.txRunner.Run(ctx, func(r ports.Repos) error {
		var err error
		d, err = r.Debts.GetByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	if d == nil {
		return nil, domain.NotFound("deuda", id)
	}
	if err := actor.Scope().Require(d.DebtorBranchID, d.CreditorBranchID); err != nil {
		return nil, err
	}
	return d, nil
}

// ListDebts deudas donde el alcance del actor es deudor o acreedor.
func (uc *UseCase) ListDebts(ctx context.Context, actor access.Actor, in dto.DebtListRequest) ([]*entity.BranchDebt, error) {
	in.DefaultPage()
	f := repository.DebtFilter{
		Status: strings.ToUpper(strings.TrimSpace(in.Status)),
		Limit:  in.Limit,
		Offset: in.Offset,
	}
	var out []*entity.BranchDebt
	err := uc.txRunner.Run(ctx, func(r ports.Repos) error {
		var err error
		out, err = r.Debts.List(ctx, actor.Scope(), f)
		return err
	})
	return out, err
}

// ListPayments abonos de una deuda visible para el actor.
func (uc *UseCase) ListPayments(ctx context.Context, actor access.Actor, debtID string) ([]*entity.DebtPayment, error) {
	if _, err := uc.GetDebt(ctx, actor, debtID); err != nil {
		return nil, err
	}
	var out []*entity.DebtPayment
	err := uc.txRunner.Run(ctx, func(r ports.Repos) error {
		var err error
		out, err = r.Payments.ListByDebt(ctx, debtID)
		return err
	})
	return out, err
}
