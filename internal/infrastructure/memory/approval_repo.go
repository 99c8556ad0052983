package memory

import (
	"context"

	"github.com/jhoicas/Mantenimiento-api/internal/domain"
	"github.com/jhoicas/Mantenimiento-api/internal/domain/access"
	"github.com/jhoicas/Mantenimiento-api/internal/domain/entity"
	"github.com/jhoicas/Mantenimiento-api/internal/domain/repository"
)

var _ repository.ApprovalRepository = (*approvalRepo)(nil)

type approvalRepo struct{ s *Store }

func (r *approvalRepo) Create(_ context.Context, a *entity.MaintenanceApprovalRequest) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, x := range r.s.data.approvals {
		if x.MachineID == a.MachineID && x.Status == entity.ApprovalPending {
			return domain.Conflict("APPROVAL_PENDING", "la máquina ya tiene una aprobación pendiente")
		}
	}
	c := a.Clone()
	r.s.data.approvals = append(r.s.data.approvals, &c)
	return nil
}

func (r *approvalRepo) GetByID(_ context.Context, id string) (*entity.MaintenanceApprovalRequest, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, x := range r.s.data.approvals {
		if x.ID == id {
			c := x.Clone()
			return &c, nil
		}
	}
	return nil, nil
}

func (r *approvalRepo) GetByIDForUpdate(ctx context.Context, id string) (*entity.MaintenanceApprovalRequest, error) {
	return r.GetByID(ctx, id)
}

func (r *approvalRepo) GetPendingByMachine(_ context.Context, machineID string) (*entity.MaintenanceApprovalRequest, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, x := range r.s.data.approvals {
		if x.MachineID == machineID && x.Status == entity.ApprovalPending {
			c := x.Clone()
			return &c, nil
		}
	}
	return nil, nil
}

// GetLatestByMachine la última insertada (orden de creación).
func (r *approvalRepo) GetLatestByMachine(_ context.Context, machineID string) (*entity.MaintenanceApprovalRequest, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for i := len(r.s.data.approvals) - 1; i >= 0; i-- {
		if x := r.s.data.approvals[i]; x.MachineID == machineID {
			c := x.Clone()
			return &c, nil
		}
	}
	return nil, nil
}

func (r *approvalRepo) Update(_ context.Context, a *entity.MaintenanceApprovalRequest, expected string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i, x := range r.s.data.approvals {
		if x.ID != a.ID {
			continue
		}
		if x.Status != expected {
			return domain.Conflict("APPROVAL_ALREADY_RESPONDED", "la aprobación ya fue respondida")
		}
		c := a.Clone()
		r.s.data.approvals[i] = &c
		return nil
	}
	return domain.NotFound("aprobación", a.ID)
}

func (r *approvalRepo) DeleteByMachine(_ context.Context, machineID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := r.s.data.approvals[:0:0]
	for _, x := range r.s.data.approvals {
		if x.MachineID != machineID {
			out = append(out, x)
		}
	}
	r.s.data.approvals = out
	return nil
}

func (r *approvalRepo) ListPending(_ context.Context, scope access.Scope) ([]*entity.MaintenanceApprovalRequest, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []*entity.MaintenanceApprovalRequest
	for _, x := range r.s.data.approvals {
		if x.Status == entity.ApprovalPending && scope.Allows(x.OriginBranchID, x.CenterBranchID) {
			c := x.Clone()
			out = append(out, &c)
		}
	}
	return out, nil
}
