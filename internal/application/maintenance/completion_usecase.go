package maintenance

import (
	"context"

	"github.com/jhoicas/Mantenimiento-api/internal/application/dto"
	"github.com/jhoicas/Mantenimiento-api/internal/application/ports"
	"github.com/jhoicas/Mantenimiento-api/internal/domain"
	"github.com/jhoicas/Mantenimiento-api/internal/domain/access"
	"github.com/jhoicas/Mantenimiento-api/internal/domain/entity"
	rules "github.com/jhoicas/Mantenimiento-api/internal/domain/maintenance"
)

// CompletionResult asignación cerrada, máquina reparada y la deuda generada (si hubo).
type CompletionResult struct {
	Assignment *entity.ServiceAssignment
	Machine    *entity.WarehouseMachine
	Debt       *entity.BranchDebt
}

// CompleteDirect cierra la reparación con los repuestos realmente usados, sin aprobación previa.
// Descuento de stock, deuda y cambio de estado van en la misma transacción.
func (s *Service) CompleteDirect(ctx context.Context, actor access.Actor, in dto.CompleteDirectRequest) (*CompletionResult, error) {
	if err := dto.Validate(in); err != nil {
		return nil, err
	}
	if in.TotalCost != nil && in.TotalCost.IsNegative() {
		return nil, domain.Validation("INVALID_AMOUNT", "el costo total no puede ser negativo")
	}
	return s.complete(ctx, actor, in.AssignmentID, func(r ports.Repos, m *entity.WarehouseMachine) (resolveInput, error) {
		return resolveInput{
			Action:     rules.ActionRepair,
			Parts:      dto.ToPartLines(in.Parts),
			TotalCost:  in.TotalCost,
			Chargeable: !in.NoCharge,
			Notes:      in.Notes,
		}, nil
	})
}

// CompleteAfterApproval cierra la reparación usando los repuestos y el total de la última
// aprobación APPROVED. El stock se descuenta ahora, no al cotizar.
func (s *Service) CompleteAfterApproval(ctx context.Context, actor access.Actor, in dto.CompleteAfterApprovalRequest) (*CompletionResult, error) {
	if err := dto.Validate(in); err != nil {
		return nil, err
	}
	return s.complete(ctx, actor, in.AssignmentID, func(r ports.Repos, m *entity.WarehouseMachine) (resolveInput, error) {
		if err := refuseWhilePending(ctx, r, m.ID); err != nil {
			return resolveInput{}, err
		}
		latest, err := r.Approvals.GetLatestByMachine(ctx, m.ID)
		if err != nil {
			return resolveInput{}, err
		}
		if approvedQuote(m, latest) == nil {
			return resolveInput{}, domain.Validation("APPROVAL_REQUIRED", "no hay una cotización aprobada vigente para la máquina")
		}
		total := latest.ProposedTotal
		return resolveInput{
			Action:     rules.ActionRepair,
			Parts:      latest.Parts.Clone(),
			TotalCost:  &total,
			Chargeable: true,
			Notes:      in.Notes,
		}, nil
	})
}

func (s *Service) complete(
	ctx context.Context,
	actor access.Actor,
	assignmentID string,
	build func(r ports.Repos, m *entity.WarehouseMachine) (resolveInput, error),
) (*CompletionResult, error) {
	var res CompletionResult
	err := s.txRunner.Run(ctx, func(r ports.Repos) error {
		a, m, err := lockAssignment(ctx, r, actor, assignmentID)
		if err != nil {
			return err
		}
		if !a.IsOpen() {
			return domain.InvalidTransition(a.Status, "COMPLETE")
		}
		in, err := build(r, m)
		if err != nil {
			return err
		}
		in.UserID = actor.UserID
		in.Assignment = a
		out, err := s.resolveInTx(ctx, r, m, in)
		if err != nil {
			return err
		}
		res = CompletionResult{Assignment: out.Assignment, Machine: m, Debt: out.Debt}
		return nil
	})
	s.metrics.RecordTransition(string(rules.ActionRepair), err)
	if err != nil {
		return nil, err
	}
	ev := s.log.Info().
		Str("serial", res.Machine.SerialNumber).
		Str("assignment_id", res.Assignment.ID).
		Str("total", res.Machine.TotalCost.String())
	if res.Debt != nil {
		ev = ev.Str("debt_id", res.Debt.ID)
	}
	ev.Msg("reparación completada")
	return &res, nil
}
