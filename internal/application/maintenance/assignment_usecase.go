package maintenance

import (
	"context"
	"strings"

	"github.com/jhoicas/Mantenimiento-api/internal/application/dto"
	"github.com/jhoicas/Mantenimiento-api/internal/application/ports"
	"github.com/jhoicas/Mantenimiento-api/internal/domain"
	"github.com/jhoicas/Mantenimiento-api/internal/domain/access"
	"github.com/jhoicas/Mantenimiento-api/internal/domain/entity"
)

// CreateAssignment asigna un técnico del centro que custodia la máquina.
// Reutiliza o abre la solicitud de mantenimiento y pasa la máquina a UNDER_INSPECTION.
func (s *Service) CreateAssignment(ctx context.Context, actor access.Actor, in dto.CreateAssignmentRequest) (*entity.ServiceAssignment, error) {
	if err := dto.Validate(in); err != nil {
		return nil, err
	}
	var a *entity.ServiceAssignment
	err := s.txRunner.Run(ctx, func(r ports.Repos) error {
		m, err := lockMachine(ctx, r, in.SerialNumber)
		if err != nil {
			return err
		}
		if err := actor.Scope().Require(m.BranchID); err != nil {
			return err
		}
		if !m.Status.IsPreRepair() && m.Status != entity.MachineAwaitingApproval {
			return domain.InvalidTransition(string(m.Status), "ASSIGN")
		}
		open, err := r.Assignments.GetOpenByMachine(ctx, m.ID)
		if err != nil {
			return err
		}
		if open != nil {
			return domain.Conflict("ASSIGNMENT_OPEN", "la máquina ya tiene una asignación abierta")
		}
		req, err := findOrCreateRequest(ctx, r, m, entity.RequestInProgress)
		if err != nil {
			return err
		}

		a = &entity.ServiceAssignment{
			ID:             newID(),
			MachineID:      m.ID,
			SerialNumber:   m.SerialNumber,
			TechnicianID:   strings.TrimSpace(in.TechnicianID),
			CenterBranchID: m.BranchID,
			OriginBranchID: m.OriginBranchID,
			RequestID:      req.ID,
			Status:         entity.AssignmentAssigned,
			Notes:          strings.TrimSpace(in.Notes),
			AssignedAt:     now(),
		}
		if err := r.Assignments.Create(ctx, a); err != nil {
			return err
		}
		if m.Status == entity.MachineAwaitingApproval || m.Status == entity.MachineUnderInspection {
			return nil
		}
		prev := m.Status
		m.Status = entity.MachineUnderInspection
		return writeMachine(ctx, r, m, prev, actor.UserID)
	})
	if err != nil {
		return nil, err
	}
	s.log.Info().
		Str("serial", a.SerialNumber).
		Str("assignment_id", a.ID).
		Str("technician_id", a.TechnicianID).
		Msg("técnico asignado")
	return a, nil
}

// lockAssignment bloquea máquina y asignación en ese orden y verifica el alcance sobre el centro.
func lockAssignment(ctx context.Context, r ports.Repos, actor access.Actor, id string) (*entity.ServiceAssignment, *entity.WarehouseMachine, error) {
	a, err := r.Assignments.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if a == nil {
		return nil, nil, domain.NotFound("asignación", id)
	}
	if err := actor.Scope().Require(a.CenterBranchID); err != nil {
		return nil, nil, err
	}
	m, err := lockMachineBySerial(ctx, r, a.SerialNumber)
	if err != nil {
		return nil, nil, err
	}
	if a, err = r.Assignments.GetByIDForUpdate(ctx, id); err != nil {
		return nil, nil, err
	}
	if a == nil {
		return nil, nil, domain.NotFound("asignación", id)
	}
	return a, m, nil
}

// StartAssignment el técnico empieza a trabajar: ASSIGNED/APPROVED/REJECTED -> UNDER_MAINTENANCE.
func (s *Service) StartAssignment(ctx context.Context, actor access.Actor, id string) (*entity.ServiceAssignment, error) {
	var a *entity.ServiceAssignment
	err := s.txRunner.Run(ctx, func(r ports.Repos) error {
		var err error
		if a, _, err = lockAssignment(ctx, r, actor, id); err != nil {
			return err
		}
		switch a.Status {
		case entity.AssignmentAssigned, entity.AssignmentApproved, entity.AssignmentRejected:
		default:
			return domain.InvalidTransition(a.Status, "START")
		}
		a.Status = entity.AssignmentUnderMaintenance
		if a.StartedAt == nil {
			t := now()
			a.StartedAt = &t
		}
		return r.Assignments.Update(ctx, a)
	})
	if err != nil {
		return nil, err
	}
	return a, nil
}

// CancelAssignment cierra una asignación abierta sin resolver la máquina.
func (s *Service) CancelAssignment(ctx context.Context, actor access.Actor, id string) (*entity.ServiceAssignment, error) {
	var a *entity.ServiceAssignment
	err := s.txRunner.Run(ctx, func(r ports.Repos) error {
		var err error
		if a, _, err = lockAssignment(ctx, r, actor, id); err != nil {
			return err
		}
		if !a.IsOpen() {
			return domain.InvalidTransition(a.Status, "CANCEL")
		}
		if err := refuseWhilePending(ctx, r, a.MachineID); err != nil {
			return err
		}
		a.Status = entity.AssignmentCancelled
		t := now()
		a.CompletedAt = &t
		return r.Assignments.Update(ctx, a)
	})
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("assignment_id", a.ID).Str("user_id", actor.UserID).Msg("asignación cancelada")
	return a, nil
}

// ListOpenAssignments asignaciones abiertas de los centros en el alcance del actor.
func (s *Service) ListOpenAssignments(ctx context.Context, actor access.Actor, page dto.PageRequest) ([]*entity.ServiceAssignment, error) {
	page.DefaultPage()
	var out []*entity.ServiceAssignment
	err := s.txRunner.Run(ctx, func(r ports.Repos) error {
		var err error
		out, err = r.Assignments.ListOpen(ctx, actor.Scope(), page.Limit, page.Offset)
		return err
	})
	return out, err
}
