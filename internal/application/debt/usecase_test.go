package debt_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Mantenimiento-api/internal/application/debt"
	"github.com/jhoicas/Mantenimiento-api/internal/application/dto"
	"github.com/jhoicas/Mantenimiento-api/internal/application/ports"
	"github.com/jhoicas/Mantenimiento-api/internal/domain"
	"github.com/jhoicas/Mantenimiento-api/internal/domain/access"
	"github.com/jhoicas/Mantenimiento-api/internal/domain/entity"
	"github.com/jhoicas/Mantenimiento-api/internal/infrastructure/memory"
)

var (
	debtor   = access.Actor{UserID: "contador-o", BranchID: "O", Role: access.RoleAccountant}
	creditor = access.Actor{UserID: "contador-c", BranchID: "C", Role: access.RoleAccountant}
	outsider = access.Actor{UserID: "contador-x", BranchID: "X", Role: access.RoleAccountant}
)

func setup(t *testing.T, amounts ...int64) (*debt.UseCase, []string) {
	t.Helper()
	store := memory.NewStore()
	ids := make([]string, 0, len(amounts))
	err := store.Run(context.Background(), func(r ports.Repos) error {
		for i, a := range amounts {
			d := &entity.BranchDebt{
				ID:               fmt.Sprintf("deuda-%d", i+1),
				DebtorBranchID:   "O",
				CreditorBranchID: "C",
				OriginalAmount:   decimal.NewFromInt(a),
				RemainingAmount:  decimal.NewFromInt(a),
				Status:           entity.DebtPending,
				RequestID:        fmt.Sprintf("sol-%d", i+1),
				MachineSerial:    fmt.Sprintf("SN-%03d", i+1),
				CreatedAt:        time.Now().UTC(),
				UpdatedAt:        time.Now().UTC(),
			}
			if err := r.Debts.Create(context.Background(), d); err != nil {
				return err
			}
			ids = append(ids, d.ID)
		}
		return nil
	})
	require.NoError(t, err)
	return debt.NewUseCase(store, nil, nil), ids
}

func pay(debtID, receipt, amount string) dto.RecordPaymentRequest {
	return dto.RecordPaymentRequest{DebtID: debtID, Amount: decimal.RequireFromString(amount), ReceiptNumber: receipt}
}

func TestEscenarioD_AbonoParcialYTotal(t *testing.T) {
	uc, ids := setup(t, 300)
	ctx := context.Background()

	res, err := uc.RecordPayment(ctx, debtor, pay(ids[0], "R-1", "100"))
	require.NoError(t, err)
	assert.True(t, res.Debt.RemainingAmount.Equal(decimal.NewFromInt(200)))
	assert.Equal(t, entity.DebtPendingPayment, res.Debt.Status)
	assert.Equal(t, "R-1", res.Payment.ReceiptNumber)
	assert.Equal(t, "contador-o", res.Payment.PaidBy)

	res, err = uc.RecordPayment(ctx, creditor, pay(ids[0], "R-2", "200"))
	require.NoError(t, err)
	assert.True(t, res.Debt.RemainingAmount.IsZero())
	assert.Equal(t, entity.DebtPaid, res.Debt.Status)
	assert.True(t, res.Debt.OriginalAmount.Equal(decimal.NewFromInt(300)))

	_, err = uc.RecordPayment(ctx, debtor, pay(ids[0], "R-3", "1"))
	assert.Equal(t, "PAYMENT_EXCEEDS_BALANCE", domain.CodeOf(err))

	payments, err := uc.ListPayments(ctx, debtor, ids[0])
	require.NoError(t, err)
	assert.Len(t, payments, 2)
}

func TestAbono_ReciboDuplicadoEnCualquierDeuda(t *testing.T) {
	uc, ids := setup(t, 300, 500)
	ctx := context.Background()

	_, err := uc.RecordPayment(ctx, debtor, pay(ids[0], "R-1", "50"))
	require.NoError(t, err)

	_, err = uc.RecordPayment(ctx, debtor, pay(ids[1], " R-1 ", "50"))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrDuplicateReceipt)

	d, err := uc.GetDebt(ctx, debtor, ids[1])
	require.NoError(t, err)
	assert.True(t, d.RemainingAmount.Equal(decimal.NewFromInt(500)))
	assert.Equal(t, entity.DebtPending, d.Status)
}

func TestAbono_MontosInvalidos(t *testing.T) {
	uc, ids := setup(t, 300)
	ctx := context.Background()

	_, err := uc.RecordPayment(ctx, debtor, pay(ids[0], "R-1", "0"))
	assert.Equal(t, "INVALID_AMOUNT", domain.CodeOf(err))

	_, err = uc.RecordPayment(ctx, debtor, pay(ids[0], "R-1", "-5"))
	assert.Equal(t, "INVALID_AMOUNT", domain.CodeOf(err))

	_, err = uc.RecordPayment(ctx, debtor, pay(ids[0], "R-1", "300.01"))
	assert.Equal(t, "PAYMENT_EXCEEDS_BALANCE", domain.CodeOf(err))

	_, err = uc.RecordPayment(ctx, debtor, pay(ids[0], "", "10"))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.RecordPayment(ctx, debtor, pay("no-existe", "R-9", "10"))
	assert.ErrorIs(t, err, domain.ErrNotFound)

	d, err := uc.GetDebt(ctx, debtor, ids[0])
	require.NoError(t, err)
	assert.True(t, d.RemainingAmount.Equal(decimal.NewFromInt(300)))
}

func TestAbono_FueraDeAlcance(t *testing.T) {
	uc, ids := setup(t, 300)
	ctx := context.Background()

	_, err := uc.RecordPayment(ctx, outsider, pay(ids[0], "R-1", "10"))
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = uc.GetDebt(ctx, outsider, ids[0])
	assert.ErrorIs(t, err, domain.ErrForbidden)

	list, err := uc.ListDebts(ctx, outsider, dto.DebtListRequest{})
	require.NoError(t, err)
	assert.Empty(t, list)

	list, err = uc.ListDebts(ctx, creditor, dto.DebtListRequest{Status: "pending"})
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestAbono_ConcurrentesNuncaDejanSaldoNegativo(t *testing.T) {
	uc, ids := setup(t, 300)
	ctx := context.Background()

	var (
		wg sync.WaitGroup
		mu sync.Mutex
		ok int
	)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := uc.RecordPayment(ctx, debtor, pay(ids[0], fmt.Sprintf("R-%d", i), "50"))
			if err == nil {
				mu.Lock()
				ok++
				mu.Unlock()
				return
			}
			assert.Equal(t, "PAYMENT_EXCEEDS_BALANCE", domain.CodeOf(err))
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 6, ok)
	d, err := uc.GetDebt(ctx, debtor, ids[0])
	require.NoError(t, err)
	assert.True(t, d.RemainingAmount.IsZero())
	assert.Equal(t, entity.DebtPaid, d.Status)
}
