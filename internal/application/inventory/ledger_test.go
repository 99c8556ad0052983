package inventory_test

import (
	"context"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Mantenimiento-api/internal/application/dto"
	"github.com/jhoicas/Mantenimiento-api/internal/application/inventory"
	"github.com/jhoicas/Mantenimiento-api/internal/application/ports"
	"github.com/jhoicas/Mantenimiento-api/internal/domain"
	"github.com/jhoicas/Mantenimiento-api/internal/domain/access"
	"github.com/jhoicas/Mantenimiento-api/internal/domain/entity"
	"github.com/jhoicas/Mantenimiento-api/internal/infrastructure/memory"
)

var center = access.Actor{UserID: "bodega-c", BranchID: "C", Role: access.RoleCenterManager}

func newLedger() (*memory.Store, *inventory.Ledger) {
	store := memory.NewStore()
	store.SeedPart(entity.SparePart{ID: "P", PartNumber: "P-100", Name: "Lector de banda", DefaultCost: decimal.NewFromInt(150)})
	return store, inventory.NewLedger(store, nil, nil)
}

func deduct(l *inventory.Ledger, store *memory.Store, qty int) error {
	return store.Run(context.Background(), func(r ports.Repos) error {
		_, err := l.DeductInTx(context.Background(), r, inventory.DeductInput{
			BranchID: "C", PartID: "P", Quantity: qty, Reason: "reparación", MachineSerial: "SN-1",
		})
		return err
	})
}

func TestReceiveStock(t *testing.T) {
	_, l := newLedger()
	ctx := context.Background()

	mov, err := l.ReceiveStock(ctx, center, dto.ReceiveStockRequest{BranchID: "C", PartID: "P", Quantity: 5, Reason: "compra"})
	require.NoError(t, err)
	assert.Equal(t, entity.MovementTypeIN, mov.Type)
	assert.Equal(t, 5, mov.Delta())

	_, err = l.ReceiveStock(ctx, center, dto.ReceiveStockRequest{BranchID: "C", PartID: "NOPE", Quantity: 1})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = l.ReceiveStock(ctx, center, dto.ReceiveStockRequest{BranchID: "C", PartID: "P", Quantity: 0})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = l.ReceiveStock(ctx, center, dto.ReceiveStockRequest{BranchID: "O", PartID: "P", Quantity: 1})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	items, err := l.ListStock(ctx, center, "")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 5, items[0].Quantity)
}

func TestDeductInTx_StockInsuficienteNoTocaNada(t *testing.T) {
	store, l := newLedger()
	ctx := context.Background()
	_, err := l.ReceiveStock(ctx, center, dto.ReceiveStockRequest{BranchID: "C", PartID: "P", Quantity: 3})
	require.NoError(t, err)

	err = deduct(l, store, 10)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	rec, err := l.Reconcile(ctx, center, "C", "P")
	require.NoError(t, err)
	assert.Equal(t, 3, rec.Quantity)
	assert.True(t, rec.Consistent)

	require.NoError(t, deduct(l, store, 3))
	rec, err = l.Reconcile(ctx, center, "C", "P")
	require.NoError(t, err)
	assert.Zero(t, rec.Quantity)
	assert.Zero(t, rec.MovementSum)
	assert.True(t, rec.Consistent)

	assert.ErrorIs(t, deduct(l, store, 0), domain.ErrInvalidInput)
}

func TestDeductInTx_ConcurrentesRespetanElStock(t *testing.T) {
	store, l := newLedger()
	ctx := context.Background()
	_, err := l.ReceiveStock(ctx, center, dto.ReceiveStockRequest{BranchID: "C", PartID: "P", Quantity: 7})
	require.NoError(t, err)

	var (
		wg sync.WaitGroup
		mu sync.Mutex
		ok int
	)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := deduct(l, store, 2); err == nil {
				mu.Lock()
				ok++
				mu.Unlock()
			} else {
				assert.ErrorIs(t, err, domain.ErrInsufficientStock)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 3, ok)
	rec, err := l.Reconcile(ctx, center, "C", "P")
	require.NoError(t, err)
	assert.Equal(t, 1, rec.Quantity)
	assert.True(t, rec.Consistent)
}

func TestReconcile_Alcance(t *testing.T) {
	_, l := newLedger()
	_, err := l.Reconcile(context.Background(), center, "O", "P")
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = l.Reconcile(context.Background(), center, "", "P")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
