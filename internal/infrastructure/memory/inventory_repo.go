package memory

import (
	"context"
	"sort"
	"time"

	"github.com/jhoicas/Mantenimiento-api/internal/domain"
	"github.com/jhoicas/Mantenimiento-api/internal/domain/access"
	"github.com/jhoicas/Mantenimiento-api/internal/domain/entity"
	"github.com/jhoicas/Mantenimiento-api/internal/domain/repository"
)

var _ repository.InventoryRepository = (*inventoryRepo)(nil)
var _ repository.StockMovementRepository = (*stockMovementRepo)(nil)

type inventoryRepo struct{ s *Store }

func (r *inventoryRepo) GetPart(_ context.Context, partID string) (*entity.SparePart, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	p, ok := r.s.data.parts[partID]
	if !ok {
		return nil, nil
	}
	c := *p
	return &c, nil
}

func (r *inventoryRepo) Get(_ context.Context, branchID, partID string) (*entity.InventoryItem, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if it, ok := r.s.data.stock[stockKey{branchID, partID}]; ok {
		c := *it
		return &c, nil
	}
	return &entity.InventoryItem{BranchID: branchID, PartID: partID}, nil
}

func (r *inventoryRepo) GetForUpdate(ctx context.Context, branchID, partID string) (*entity.InventoryItem, error) {
	return r.Get(ctx, branchID, partID)
}

func (r *inventoryRepo) ApplyDelta(_ context.Context, branchID, partID string, delta int) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	key := stockKey{branchID, partID}
	it, ok := r.s.data.stock[key]
	if !ok {
		it = &entity.InventoryItem{BranchID: branchID, PartID: partID}
	}
	if it.Quantity+delta < 0 {
		return it.Quantity, domain.InsufficientStock(branchID, partID, it.Quantity, -delta)
	}
	c := *it
	c.Quantity += delta
	c.UpdatedAt = time.Now().UTC()
	r.s.data.stock[key] = &c
	return c.Quantity, nil
}

func (r *inventoryRepo) ListByBranch(_ context.Context, scope access.Scope, branchID string) ([]*entity.InventoryItem, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []*entity.InventoryItem
	for _, it := range r.s.data.stock {
		if (branchID != "" && it.BranchID != branchID) || !scope.Allows(it.BranchID) {
			continue
		}
		c := *it
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].BranchID != out[j].BranchID {
			return out[i].BranchID < out[j].BranchID
		}
		return out[i].PartID < out[j].PartID
	})
	return out, nil
}

type stockMovementRepo struct{ s *Store }

func (r *stockMovementRepo) Create(_ context.Context, mv *entity.StockMovement) error {
	if mv.Quantity <= 0 {
		return domain.Validation("INVALID_QUANTITY", "la cantidad del movimiento debe ser positiva")
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c := *mv
	r.s.data.movements = append(r.s.data.movements, &c)
	return nil
}

func (r *stockMovementRepo) ListByRequest(_ context.Context, requestID string) ([]*entity.StockMovement, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []*entity.StockMovement
	for _, mv := range r.s.data.movements {
		if mv.RequestID == requestID {
			c := *mv
			out = append(out, &c)
		}
	}
	return out, nil
}

func (r *stockMovementRepo) SumDeltas(_ context.Context, branchID, partID string) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	sum := 0
	for _, mv := range r.s.data.movements {
		if mv.BranchID == branchID && mv.PartID == partID {
			sum += mv.Delta()
		}
	}
	return sum, nil
}
