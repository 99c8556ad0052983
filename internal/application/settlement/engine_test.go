package settlement_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Mantenimiento-api/internal/application/dto"
	"github.com/jhoicas/Mantenimiento-api/internal/application/inventory"
	"github.com/jhoicas/Mantenimiento-api/internal/application/ports"
	"github.com/jhoicas/Mantenimiento-api/internal/application/settlement"
	"github.com/jhoicas/Mantenimiento-api/internal/domain"
	"github.com/jhoicas/Mantenimiento-api/internal/domain/access"
	"github.com/jhoicas/Mantenimiento-api/internal/domain/entity"
	"github.com/jhoicas/Mantenimiento-api/internal/domain/repository"
	"github.com/jhoicas/Mantenimiento-api/internal/infrastructure/memory"
)

func TestIsChargeable(t *testing.T) {
	base := settlement.Input{CenterBranchID: "C", PayerBranchID: "O", TotalCost: decimal.NewFromInt(10), Chargeable: true}
	assert.True(t, settlement.IsChargeable(base))

	same := base
	same.PayerBranchID = "C"
	assert.False(t, settlement.IsChargeable(same))

	free := base
	free.Chargeable = false
	assert.False(t, settlement.IsChargeable(free))

	zero := base
	zero.TotalCost = decimal.Zero
	assert.False(t, settlement.IsChargeable(zero))

	noPayer := base
	noPayer.PayerBranchID = ""
	assert.False(t, settlement.IsChargeable(noPayer))
}

type fixture struct {
	ctx    context.Context
	store  *memory.Store
	engine *settlement.Engine
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	store.SeedPart(entity.SparePart{ID: "P1", PartNumber: "P-1", Name: "Batería"})
	store.SeedPart(entity.SparePart{ID: "P2", PartNumber: "P-2", Name: "Pantalla"})
	ledger := inventory.NewLedger(store, nil, nil)
	admin := access.Actor{UserID: "admin", Role: access.RoleSuperAdmin}
	for _, p := range []string{"P1", "P2"} {
		_, err := ledger.ReceiveStock(context.Background(), admin, dto.ReceiveStockRequest{BranchID: "C", PartID: p, Quantity: 2})
		require.NoError(t, err)
	}
	return &fixture{ctx: context.Background(), store: store, engine: settlement.NewEngine(ledger, nil, nil)}
}

func (f *fixture) settle(in settlement.Input) (*settlement.Result, error) {
	var res *settlement.Result
	err := f.store.Run(f.ctx, func(r ports.Repos) error {
		var err error
		res, err = f.engine.Settle(f.ctx, r, in)
		return err
	})
	return res, err
}

func (f *fixture) qty(t *testing.T, part string) int {
	t.Helper()
	var n int
	require.NoError(t, f.store.Run(f.ctx, func(r ports.Repos) error {
		it, err := r.Inventory.Get(f.ctx, "C", part)
		if err != nil {
			return err
		}
		n = it.Quantity
		return nil
	}))
	return n
}

func (f *fixture) debts(t *testing.T) []*entity.BranchDebt {
	t.Helper()
	var out []*entity.BranchDebt
	require.NoError(t, f.store.Run(f.ctx, func(r ports.Repos) error {
		var err error
		out, err = r.Debts.List(f.ctx, access.GlobalScope(), repository.DebtFilter{})
		return err
	}))
	return out
}

func input(parts entity.PartLines, total int64) settlement.Input {
	return settlement.Input{
		MachineSerial:  "SN-1",
		CenterBranchID: "C",
		PayerBranchID:  "O",
		Parts:          parts,
		TotalCost:      decimal.NewFromInt(total),
		Chargeable:     true,
		RequestID:      "sol-1",
		UserID:         "tec-1",
	}
}

func TestSettle_DescuentaYRegistraDeuda(t *testing.T) {
	f := newFixture(t)
	res, err := f.settle(input(entity.PartLines{{PartID: "P1", Quantity: 1}, {PartID: "P2", Quantity: 2}}, 250))
	require.NoError(t, err)
	require.Len(t, res.Movements, 2)
	require.NotNil(t, res.Debt)
	assert.Equal(t, "O", res.Debt.DebtorBranchID)
	assert.Equal(t, "C", res.Debt.CreditorBranchID)
	assert.True(t, res.Debt.RemainingAmount.Equal(decimal.NewFromInt(250)))
	assert.Equal(t, 1, f.qty(t, "P1"))
	assert.Zero(t, f.qty(t, "P2"))
}

func TestSettle_FalloEnUnRepuestoRevierteTodo(t *testing.T) {
	f := newFixture(t)
	_, err := f.settle(input(entity.PartLines{{PartID: "P1", Quantity: 1}, {PartID: "P2", Quantity: 5}}, 100))
	require.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Equal(t, 2, f.qty(t, "P1"))
	assert.Equal(t, 2, f.qty(t, "P2"))
	assert.Empty(t, f.debts(t))
}

func TestSettle_MismaSucursalNoGeneraDeuda(t *testing.T) {
	f := newFixture(t)
	in := input(entity.PartLines{{PartID: "P1", Quantity: 1}}, 100)
	in.PayerBranchID = "C"
	res, err := f.settle(in)
	require.NoError(t, err)
	assert.Nil(t, res.Debt)
	assert.Len(t, res.Movements, 1)
	assert.Equal(t, 1, f.qty(t, "P1"))
}

func TestSettle_SolicitudYaLiquidada(t *testing.T) {
	f := newFixture(t)
	_, err := f.settle(input(nil, 100))
	require.NoError(t, err)

	_, err = f.settle(input(entity.PartLines{{PartID: "P1", Quantity: 1}}, 50))
	assert.Equal(t, "REQUEST_ALREADY_SETTLED", domain.CodeOf(err))
	assert.Equal(t, 2, f.qty(t, "P1"), "el descuento se revierte con la tx")
	require.Len(t, f.debts(t), 1)
	assert.True(t, f.debts(t)[0].OriginalAmount.Equal(decimal.NewFromInt(100)))
}

func TestSettle_Validaciones(t *testing.T) {
	f := newFixture(t)
	_, err := f.settle(input(entity.PartLines{{PartID: "P1", Quantity: 0}}, 10))
	assert.Equal(t, "INVALID_PART_LINE", domain.CodeOf(err))

	_, err = f.settle(input(nil, -1))
	assert.Equal(t, "INVALID_AMOUNT", domain.CodeOf(err))

	_, err = f.settle(input(entity.PartLines{{PartID: "NOPE", Quantity: 1}}, 10))
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
