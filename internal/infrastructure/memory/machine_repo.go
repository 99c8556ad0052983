package memory

import (
	"context"
	"sort"

	"github.com/jhoicas/Mantenimiento-api/internal/domain"
	"github.com/jhoicas/Mantenimiento-api/internal/domain/access"
	"github.com/jhoicas/Mantenimiento-api/internal/domain/entity"
	"github.com/jhoicas/Mantenimiento-api/internal/domain/repository"
)

var _ repository.MachineRepository = (*machineRepo)(nil)
var _ repository.MachineMovementRepository = (*historyRepo)(nil)

type machineRepo struct{ s *Store }

func (r *machineRepo) Create(_ context.Context, m *entity.WarehouseMachine) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, x := range r.s.data.machines {
		if x.SerialNumber == m.SerialNumber || x.ID == m.ID {
			return domain.Conflict("SERIAL_EXISTS", "ya existe una máquina con el serial "+m.SerialNumber)
		}
	}
	c := m.Clone()
	r.s.data.machines = append(r.s.data.machines, &c)
	return nil
}

func (r *machineRepo) GetBySerial(_ context.Context, serial string) (*entity.WarehouseMachine, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, m := range r.s.data.machines {
		if m.SerialNumber == serial {
			c := m.Clone()
			return &c, nil
		}
	}
	return nil, nil
}

// GetBySerialForUpdate igual que GetBySerial: Run ya serializa las transacciones.
func (r *machineRepo) GetBySerialForUpdate(ctx context.Context, serial string) (*entity.WarehouseMachine, error) {
	return r.GetBySerial(ctx, serial)
}

func (r *machineRepo) Update(_ context.Context, m *entity.WarehouseMachine, expected entity.MachineStatus) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i, x := range r.s.data.machines {
		if x.ID != m.ID {
			continue
		}
		if x.Status != expected {
			return domain.Conflict("STALE_STATUS", "la máquina cambió de estado: "+string(x.Status))
		}
		c := m.Clone()
		r.s.data.machines[i] = &c
		return nil
	}
	return domain.NotFound("máquina", m.SerialNumber)
}

func (r *machineRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := r.s.data.machines[:0:0]
	for _, m := range r.s.data.machines {
		if m.ID != id {
			out = append(out, m)
		}
	}
	r.s.data.machines = out
	return nil
}

func (r *machineRepo) List(_ context.Context, scope access.Scope, f repository.MachineFilter) ([]*entity.WarehouseMachine, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []*entity.WarehouseMachine
	for _, m := range r.s.data.machines {
		if !scope.Allows(m.BranchID, m.OriginBranchID) {
			continue
		}
		if f.Status != "" && m.Status != f.Status {
			continue
		}
		if f.BranchID != "" && m.BranchID != f.BranchID {
			continue
		}
		c := m.Clone()
		out = append(out, &c)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return page(out, f.Limit, f.Offset), nil
}

type historyRepo struct{ s *Store }

func (r *historyRepo) Create(_ context.Context, mv *entity.MachineMovement) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c := *mv
	r.s.data.history = append(r.s.data.history, &c)
	return nil
}

func (r *historyRepo) ListByMachine(_ context.Context, machineID string) ([]*entity.MachineMovement, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []*entity.MachineMovement
	for _, mv := range r.s.data.history {
		if mv.MachineID == machineID {
			c := *mv
			out = append(out, &c)
		}
	}
	return out, nil
}

// page aplica limit/offset; limit <= 0 no limita.
func page[T any](in []T, limit, offset int) []T {
	if offset > 0 {
		if offset >= len(in) {
			return nil
		}
		in = in[offset:]
	}
	if limit > 0 && limit < len(in) {
		in = in[:limit]
	}
	return in
}
