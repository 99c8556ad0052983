package maintenance

import (
	"context"
	"strings"

	"github.com/jhoicas/Mantenimiento-api/internal/application/dto"
	"github.com/jhoicas/Mantenimiento-api/internal/application/ports"
	"github.com/jhoicas/Mantenimiento-api/internal/domain"
	"github.com/jhoicas/Mantenimiento-api/internal/domain/access"
	"github.com/jhoicas/Mantenimiento-api/internal/domain/entity"
	rules "github.com/jhoicas/Mantenimiento-api/internal/domain/maintenance"
	"github.com/jhoicas/Mantenimiento-api/internal/domain/repository"
)

// RegisterIntake da de alta una máquina en la bodega de una sucursal (estado INTAKE).
func (s *Service) RegisterIntake(ctx context.Context, actor access.Actor, in dto.RegisterIntakeRequest) (*entity.WarehouseMachine, error) {
	if err := dto.Validate(in); err != nil {
		return nil, err
	}
	serial, err := rules.NormalizeSerial(in.SerialNumber)
	if err != nil {
		return nil, err
	}
	if err := actor.Scope().Require(in.BranchID); err != nil {
		return nil, err
	}
	origin := strings.TrimSpace(in.OriginBranchID)
	if origin == "" {
		origin = in.BranchID
	}

	ts := now()
	m := &entity.WarehouseMachine{
		ID:             newID(),
		SerialNumber:   serial,
		Model:          strings.TrimSpace(in.Model),
		CustomerID:     strings.TrimSpace(in.CustomerID),
		Status:         entity.MachineIntake,
		BranchID:       in.BranchID,
		OriginBranchID: origin,
		CreatedAt:      ts,
		UpdatedAt:      ts,
	}
	err = s.txRunner.Run(ctx, func(r ports.Repos) error {
		existing, err := r.Machines.GetBySerial(ctx, serial)
		if err != nil {
			return err
		}
		if existing != nil {
			return domain.Conflict("SERIAL_EXISTS", "ya existe una máquina con el serial "+serial)
		}
		if err := r.Machines.Create(ctx, m); err != nil {
			return err
		}
		return r.History.Create(ctx, &entity.MachineMovement{
			ID:           newID(),
			MachineID:    m.ID,
			SerialNumber: serial,
			ToBranchID:   m.BranchID,
			Action:       entity.MovementIntake,
			ToStatus:     m.Status,
			PerformedBy:  actor.UserID,
			CreatedAt:    ts,
		})
	})
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("serial", serial).Str("branch_id", m.BranchID).Msg("máquina ingresada")
	return m, nil
}

// SetLocationStatus mueve la máquina a un estado de ubicación manual (AT_CENTER, CLIENT_REPAIR, ...).
// Los estados de tránsito solo los asignan las órdenes de traslado.
func (s *Service) SetLocationStatus(ctx context.Context, actor access.Actor, serial string, in dto.SetLocationRequest) (*entity.WarehouseMachine, error) {
	if err := dto.Validate(in); err != nil {
		return nil, err
	}
	target := entity.MachineStatus(strings.ToUpper(strings.TrimSpace(in.Status)))

	var m *entity.WarehouseMachine
	err := s.txRunner.Run(ctx, func(r ports.Repos) error {
		var err error
		if m, err = lockMachine(ctx, r, serial); err != nil {
			return err
		}
		if err := actor.Scope().Require(m.BranchID); err != nil {
			return err
		}
		if err := rules.CanSetLocation(m.Status, target); err != nil {
			return err
		}
		if err := refuseWhilePending(ctx, r, m.ID); err != nil {
			return err
		}
		prev := m.Status
		m.Status = target
		return writeMachine(ctx, r, m, prev, actor.UserID)
	})
	if err != nil {
		return nil, err
	}
	return m, nil
}

// GetMachine devuelve la máquina si el actor es custodio u origen.
func (s *Service) GetMachine(ctx context.Context, actor access.Actor, rawSerial string) (*entity.WarehouseMachine, error) {
	serial, err := rules.NormalizeSerial(rawSerial)
	if err != nil {
		return nil, err
	}
	var m *entity.WarehouseMachine
	err = s.txRunner.Run(ctx, func(r ports.Repos) error {
		var err error
		m, err = r.Machines.GetBySerial(ctx, serial)
		return err
	})
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, domain.NotFound("máquina", serial)
	}
	if err := actor.Scope().Require(m.BranchID, m.OriginBranchID); err != nil {
		return nil, err
	}
	return m, nil
}

// ListMachines lista las máquinas custodiadas u originadas en el alcance del actor.
func (s *Service) ListMachines(ctx context.Context, actor access.Actor, in dto.MachineListRequest) ([]*entity.WarehouseMachine, error) {
	in.DefaultPage()
	f := repository.MachineFilter{
		Status:   entity.MachineStatus(strings.ToUpper(strings.TrimSpace(in.Status))),
		BranchID: strings.TrimSpace(in.BranchID),
		Limit:    in.Limit,
		Offset:   in.Offset,
	}
	var out []*entity.WarehouseMachine
	err := s.txRunner.Run(ctx, func(r ports.Repos) error {
		var err error
		out, err = r.Machines.List(ctx, actor.Scope(), f)
		return err
	})
	return out, err
}

// MachineHistory log de custodia y estados de la máquina.
func (s *Service) MachineHistory(ctx context.Context, actor access.Actor, serial string) ([]*entity.MachineMovement, error) {
	m, err := s.GetMachine(ctx, actor, serial)
	if err != nil {
		return nil, err
	}
	var out []*entity.MachineMovement
	err = s.txRunner.Run(ctx, func(r ports.Repos) error {
		var err error
		out, err = r.History.ListByMachine(ctx, m.ID)
		return err
	})
	return out, err
}

// RemoveMachine elimina una máquina junto con sus asignaciones y aprobaciones.
// Solo en INTAKE o COMPLETED y sin orden de traslado abierta.
func (s *Service) RemoveMachine(ctx context.Context, actor access.Actor, serial string) error {
	err := s.txRunner.Run(ctx, func(r ports.Repos) error {
		m, err := lockMachine(ctx, r, serial)
		if err != nil {
			return err
		}
		if err := actor.Scope().Require(m.BranchID); err != nil {
			return err
		}
		if m.Status != entity.MachineIntake && m.Status != entity.MachineCompleted {
			return domain.InvalidTransition(string(m.Status), "REMOVE")
		}
		open, err := r.Transfers.HasOpenOrderForMachine(ctx, m.ID)
		if err != nil {
			return err
		}
		if open {
			return domain.Conflict("TRANSFER_OPEN", "la máquina está en una orden de traslado abierta")
		}
		if err := r.Approvals.DeleteByMachine(ctx, m.ID); err != nil {
			return err
		}
		if err := r.Assignments.DeleteByMachine(ctx, m.ID); err != nil {
			return err
		}
		return r.Machines.Delete(ctx, m.ID)
	})
	if err != nil {
		return err
	}
	s.log.Info().Str("serial", serial).Str("user_id", actor.UserID).Msg("máquina eliminada")
	return nil
}
