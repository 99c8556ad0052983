package memory

import (
	"context"
	"sort"

	"github.com/jhoicas/Mantenimiento-api/internal/domain"
	"github.com/jhoicas/Mantenimiento-api/internal/domain/access"
	"github.com/jhoicas/Mantenimiento-api/internal/domain/entity"
	"github.com/jhoicas/Mantenimiento-api/internal/domain/repository"
)

var _ repository.TransferOrderRepository = (*transferRepo)(nil)

type transferRepo struct{ s *Store }

func (r *transferRepo) Create(_ context.Context, o *entity.TransferOrder) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c := o.Clone()
	r.s.data.transfers = append(r.s.data.transfers, &c)
	return nil
}

func (r *transferRepo) GetByID(_ context.Context, id string) (*entity.TransferOrder, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, o := range r.s.data.transfers {
		if o.ID == id {
			c := o.Clone()
			return &c, nil
		}
	}
	return nil, nil
}

func (r *transferRepo) GetByIDForUpdate(ctx context.Context, id string) (*entity.TransferOrder, error) {
	return r.GetByID(ctx, id)
}

func (r *transferRepo) HasOpenOrderForMachine(_ context.Context, machineID string) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, o := range r.s.data.transfers {
		if !o.IsOpen() {
			continue
		}
		for _, it := range o.Items {
			if it.MachineID == machineID {
				return true, nil
			}
		}
	}
	return false, nil
}

// UpdateStatus solo escribe estado y datos de recepción; los ítems son inmutables.
func (r *transferRepo) UpdateStatus(_ context.Context, o *entity.TransferOrder, expected string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i, x := range r.s.data.transfers {
		if x.ID != o.ID {
			continue
		}
		if x.Status != expected {
			return domain.Conflict("ORDER_ALREADY_RECEIVED", "la orden ya no está pendiente")
		}
		c := o.Clone()
		c.Items = x.Clone().Items
		r.s.data.transfers[i] = &c
		return nil
	}
	return domain.NotFound("orden de traslado", o.ID)
}

func (r *transferRepo) List(_ context.Context, scope access.Scope, f repository.TransferFilter) ([]*entity.TransferOrder, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []*entity.TransferOrder
	for _, o := range r.s.data.transfers {
		if !scope.Allows(o.FromBranchID, o.ToBranchID) {
			continue
		}
		if f.Status != "" && o.Status != f.Status {
			continue
		}
		if f.Type != "" && o.Type != f.Type {
			continue
		}
		c := o.Clone()
		out = append(out, &c)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return page(out, f.Limit, f.Offset), nil
}
