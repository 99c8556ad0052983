package memory_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Mantenimiento-api/internal/application/ports"
	"github.com/jhoicas/Mantenimiento-api/internal/domain"
	"github.com/jhoicas/Mantenimiento-api/internal/domain/entity"
	"github.com/jhoicas/Mantenimiento-api/internal/infrastructure/memory"
)

func TestRun_RollbackRestauraEstado(t *testing.T) {
	ctx := context.Background()
	s := memory.NewStore()
	s.SeedPart(entity.SparePart{ID: "P1"})

	require.NoError(t, s.Run(ctx, func(r ports.Repos) error {
		_, err := r.Inventory.ApplyDelta(ctx, "B1", "P1", 5)
		return err
	}))

	boom := errors.New("boom")
	err := s.Run(ctx, func(r ports.Repos) error {
		if _, err := r.Inventory.ApplyDelta(ctx, "B1", "P1", -2); err != nil {
			return err
		}
		if err := r.StockMovements.Create(ctx, &entity.StockMovement{ID: "m1", BranchID: "B1", PartID: "P1", Type: entity.MovementTypeOUT, Quantity: 2}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	item, err := s.Repos().Inventory.Get(ctx, "B1", "P1")
	require.NoError(t, err)
	assert.Equal(t, 5, item.Quantity)
	sum, err := s.Repos().StockMovements.SumDeltas(ctx, "B1", "P1")
	require.NoError(t, err)
	assert.Zero(t, sum)
}

func TestRun_PanicHaceRollbackYSePropaga(t *testing.T) {
	ctx := context.Background()
	s := memory.NewStore()

	assert.Panics(t, func() {
		_ = s.Run(ctx, func(r ports.Repos) error {
			_ = r.Machines.Create(ctx, &entity.WarehouseMachine{ID: "m1", SerialNumber: "SN-1", Status: entity.MachineIntake})
			panic("x")
		})
	})
	m, err := s.Repos().Machines.GetBySerial(ctx, "SN-1")
	require.NoError(t, err)
	assert.Nil(t, m)
}

func TestApplyDelta_NuncaNegativo(t *testing.T) {
	ctx := context.Background()
	s := memory.NewStore()
	r := s.Repos()

	_, err := r.Inventory.ApplyDelta(ctx, "B1", "P1", 3)
	require.NoError(t, err)
	_, err = r.Inventory.ApplyDelta(ctx, "B1", "P1", -10)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	item, _ := r.Inventory.Get(ctx, "B1", "P1")
	assert.Equal(t, 3, item.Quantity)
}

func TestMachineUpdate_PredicadoDeEstado(t *testing.T) {
	ctx := context.Background()
	s := memory.NewStore()
	r := s.Repos()
	require.NoError(t, r.Machines.Create(ctx, &entity.WarehouseMachine{ID: "m1", SerialNumber: "SN-1", Status: entity.MachineIntake}))

	m, _ := r.Machines.GetBySerial(ctx, "SN-1")
	m.Status = entity.MachineUnderInspection
	require.NoError(t, r.Machines.Update(ctx, m, entity.MachineIntake))

	// segundo escritor con el mismo estado previo
	m.Status = entity.MachineScrapped
	err := r.Machines.Update(ctx, m, entity.MachineIntake)
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestEntidadesNoCompartenMemoria(t *testing.T) {
	ctx := context.Background()
	s := memory.NewStore()
	r := s.Repos()
	require.NoError(t, r.Machines.Create(ctx, &entity.WarehouseMachine{
		ID: "m1", SerialNumber: "SN-1", Status: entity.MachineIntake,
		UsedParts: entity.PartLines{{PartID: "P1", Quantity: 1}},
	}))

	m, _ := r.Machines.GetBySerial(ctx, "SN-1")
	m.UsedParts[0].Quantity = 99

	again, _ := r.Machines.GetBySerial(ctx, "SN-1")
	assert.Equal(t, 1, again.UsedParts[0].Quantity)
}

func TestPayments_ReciboUnico(t *testing.T) {
	ctx := context.Background()
	r := memory.NewStore().Repos()
	require.NoError(t, r.Payments.Create(ctx, &entity.DebtPayment{ID: "p1", ReceiptNumber: "R-1"}))
	err := r.Payments.Create(ctx, &entity.DebtPayment{ID: "p2", ReceiptNumber: "R-1"})
	assert.ErrorIs(t, err, domain.ErrDuplicateReceipt)
}
