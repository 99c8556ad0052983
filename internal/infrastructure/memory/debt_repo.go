package memory

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Mantenimiento-api/internal/domain"
	"github.com/jhoicas/Mantenimiento-api/internal/domain/access"
	"github.com/jhoicas/Mantenimiento-api/internal/domain/entity"
	"github.com/jhoicas/Mantenimiento-api/internal/domain/repository"
)

var _ repository.DebtRepository = (*debtRepo)(nil)
var _ repository.PaymentRepository = (*paymentRepo)(nil)

type debtRepo struct{ s *Store }

func (r *debtRepo) Create(_ context.Context, d *entity.BranchDebt) error {
	if d.RemainingAmount.IsNegative() || d.RemainingAmount.GreaterThan(d.OriginalAmount) {
		return domain.Validation("INVALID_AMOUNT", "saldo fuera de rango")
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c := *d
	r.s.data.debts = append(r.s.data.debts, &c)
	return nil
}

func (r *debtRepo) GetByID(_ context.Context, id string) (*entity.BranchDebt, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, d := range r.s.data.debts {
		if d.ID == id {
			c := *d
			return &c, nil
		}
	}
	return nil, nil
}

func (r *debtRepo) GetByIDForUpdate(ctx context.Context, id string) (*entity.BranchDebt, error) {
	return r.GetByID(ctx, id)
}

func (r *debtRepo) FindOpenByRequest(_ context.Context, requestID, debtorID, creditorID string) (*entity.BranchDebt, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, d := range r.s.data.debts {
		if d.RequestID == requestID && d.DebtorBranchID == debtorID &&
			d.CreditorBranchID == creditorID && d.Status != entity.DebtPaid {
			c := *d
			return &c, nil
		}
	}
	return nil, nil
}

func (r *debtRepo) ApplyPayment(_ context.Context, id string, amount decimal.Decimal) (*entity.BranchDebt, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i, d := range r.s.data.debts {
		if d.ID != id {
			continue
		}
		if !amount.IsPositive() || amount.GreaterThan(d.RemainingAmount) {
			return nil, domain.Validation("PAYMENT_EXCEEDS_BALANCE", "el abono supera el saldo pendiente")
		}
		c := *d
		c.RemainingAmount = d.RemainingAmount.Sub(amount)
		c.Status = entity.DebtStatusFor(c.OriginalAmount, c.RemainingAmount)
		c.UpdatedAt = time.Now().UTC()
		r.s.data.debts[i] = &c
		out := c
		return &out, nil
	}
	return nil, domain.NotFound("deuda", id)
}

func (r *debtRepo) List(_ context.Context, scope access.Scope, f repository.DebtFilter) ([]*entity.BranchDebt, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []*entity.BranchDebt
	for _, d := range r.s.data.debts {
		if !scope.Allows(d.DebtorBranchID, d.CreditorBranchID) {
			continue
		}
		if f.Status != "" && d.Status != f.Status {
			continue
		}
		c := *d
		out = append(out, &c)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return page(out, f.Limit, f.Offset), nil
}

type paymentRepo struct{ s *Store }

func (r *paymentRepo) Create(_ context.Context, p *entity.DebtPayment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, x := range r.s.data.payments {
		if x.ReceiptNumber == p.ReceiptNumber {
			return domain.DuplicateReceipt(p.ReceiptNumber)
		}
	}
	c := *p
	r.s.data.payments = append(r.s.data.payments, &c)
	return nil
}

func (r *paymentRepo) ExistsReceipt(_ context.Context, receiptNumber string) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, x := range r.s.data.payments {
		if x.ReceiptNumber == receiptNumber {
			return true, nil
		}
	}
	return false, nil
}

func (r *paymentRepo) ListByDebt(_ context.Context, debtID string) ([]*entity.DebtPayment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []*entity.DebtPayment
	for _, x := range r.s.data.payments {
		if x.DebtID == debtID {
			c := *x
			out = append(out, &c)
		}
	}
	return out, nil
}
