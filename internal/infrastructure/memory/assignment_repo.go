package memory

import (
	"context"
	"sort"

	"github.com/jhoicas/Mantenimiento-api/internal/domain"
	"github.com/jhoicas/Mantenimiento-api/internal/domain/access"
	"github.com/jhoicas/Mantenimiento-api/internal/domain/entity"
	"github.com/jhoicas/Mantenimiento-api/internal/domain/repository"
)

var _ repository.AssignmentRepository = (*assignmentRepo)(nil)
var _ repository.MaintenanceRequestRepository = (*requestRepo)(nil)

type assignmentRepo struct{ s *Store }

func (r *assignmentRepo) Create(_ context.Context, a *entity.ServiceAssignment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, x := range r.s.data.assignments {
		if x.MachineID == a.MachineID && x.IsOpen() {
			return domain.Conflict("ASSIGNMENT_OPEN", "la máquina ya tiene una asignación abierta")
		}
	}
	c := a.Clone()
	r.s.data.assignments = append(r.s.data.assignments, &c)
	return nil
}

func (r *assignmentRepo) GetByID(_ context.Context, id string) (*entity.ServiceAssignment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, a := range r.s.data.assignments {
		if a.ID == id {
			c := a.Clone()
			return &c, nil
		}
	}
	return nil, nil
}

func (r *assignmentRepo) GetByIDForUpdate(ctx context.Context, id string) (*entity.ServiceAssignment, error) {
	return r.GetByID(ctx, id)
}

func (r *assignmentRepo) GetOpenByMachine(_ context.Context, machineID string) (*entity.ServiceAssignment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, a := range r.s.data.assignments {
		if a.MachineID == machineID && a.IsOpen() {
			c := a.Clone()
			return &c, nil
		}
	}
	return nil, nil
}

func (r *assignmentRepo) Update(_ context.Context, a *entity.ServiceAssignment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i, x := range r.s.data.assignments {
		if x.ID == a.ID {
			c := a.Clone()
			r.s.data.assignments[i] = &c
			return nil
		}
	}
	return domain.NotFound("asignación", a.ID)
}

func (r *assignmentRepo) DeleteByMachine(_ context.Context, machineID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := r.s.data.assignments[:0:0]
	for _, a := range r.s.data.assignments {
		if a.MachineID != machineID {
			out = append(out, a)
		}
	}
	r.s.data.assignments = out
	return nil
}

func (r *assignmentRepo) ListOpen(_ context.Context, scope access.Scope, limit, offset int) ([]*entity.ServiceAssignment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []*entity.ServiceAssignment
	for _, a := range r.s.data.assignments {
		if a.IsOpen() && scope.Allows(a.CenterBranchID) {
			c := a.Clone()
			out = append(out, &c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].AssignedAt.Before(out[j].AssignedAt) })
	return page(out, limit, offset), nil
}

type requestRepo struct{ s *Store }

func (r *requestRepo) Create(_ context.Context, req *entity.MaintenanceRequest) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, x := range r.s.data.requests {
		if x.MachineID == req.MachineID && x.IsActive() && req.IsActive() {
			return domain.Conflict("REQUEST_ACTIVE", "la máquina ya tiene una solicitud activa")
		}
	}
	c := req.Clone()
	r.s.data.requests = append(r.s.data.requests, &c)
	return nil
}

func (r *requestRepo) GetByID(_ context.Context, id string) (*entity.MaintenanceRequest, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, x := range r.s.data.requests {
		if x.ID == id {
			c := x.Clone()
			return &c, nil
		}
	}
	return nil, nil
}

func (r *requestRepo) FindActiveByMachine(_ context.Context, machineID string) (*entity.MaintenanceRequest, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, x := range r.s.data.requests {
		if x.MachineID == machineID && x.IsActive() {
			c := x.Clone()
			return &c, nil
		}
	}
	return nil, nil
}

func (r *requestRepo) Update(_ context.Context, req *entity.MaintenanceRequest) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i, x := range r.s.data.requests {
		if x.ID == req.ID {
			c := req.Clone()
			r.s.data.requests[i] = &c
			return nil
		}
	}
	return domain.NotFound("solicitud", req.ID)
}
