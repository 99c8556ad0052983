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

// RequestApproval el centro cotiza la reparación a la sucursal de origen.
// No reserva ni descuenta stock.
func (s *Service) RequestApproval(ctx context.Context, actor access.Actor, in dto.RequestApprovalRequest) (*entity.MaintenanceApprovalRequest, error) {
	if err := dto.Validate(in); err != nil {
		return nil, err
	}
	var approval *entity.MaintenanceApprovalRequest
	err := s.txRunner.Run(ctx, func(r ports.Repos) error {
		a, m, err := lockAssignment(ctx, r, actor, in.AssignmentID)
		if err != nil {
			return err
		}
		if !a.IsOpen() {
			return domain.InvalidTransition(a.Status, "REQUEST_APPROVAL")
		}
		approval, err = s.requestApprovalInTx(ctx, r, actor, m, a, dto.ToPartLines(in.Parts), in.ProposedTotal, in.Notes)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.log.Info().
		Str("serial", approval.SerialNumber).
		Str("approval_id", approval.ID).
		Str("origin", approval.OriginBranchID).
		Str("amount", approval.ProposedTotal.String()).
		Msg("aprobación solicitada")
	return approval, nil
}

// RespondResult aprobación respondida y la asignación afectada (nil si la aprobación no tenía).
type RespondResult struct {
	Approval   *entity.MaintenanceApprovalRequest
	Assignment *entity.ServiceAssignment
}

// RespondApproval la sucursal de origen (pagadora) aprueba o rechaza la cotización.
// El estado de la máquina no cambia: tras un rechazo sigue en AWAITING_APPROVAL hasta que
// alguien recotice, inspeccione o la dé de baja.
func (s *Service) RespondApproval(ctx context.Context, actor access.Actor, approvalID string, in dto.RespondApprovalRequest) (*RespondResult, error) {
	in.Status = strings.ToUpper(strings.TrimSpace(in.Status))
	in.RejectionReason = strings.TrimSpace(in.RejectionReason)
	if err := dto.Validate(in); err != nil {
		return nil, err
	}

	var res RespondResult
	err := s.txRunner.Run(ctx, func(r ports.Repos) error {
		current, err := r.Approvals.GetByID(ctx, approvalID)
		if err != nil {
			return err
		}
		if current == nil {
			return domain.NotFound("aprobación", approvalID)
		}
		if err := actor.Scope().Require(current.OriginBranchID); err != nil {
			return err
		}
		if _, err := lockMachineBySerial(ctx, r, current.SerialNumber); err != nil {
			return err
		}
		ap, err := r.Approvals.GetByIDForUpdate(ctx, approvalID)
		if err != nil {
			return err
		}
		if ap == nil {
			return domain.NotFound("aprobación", approvalID)
		}
		if ap.Status != entity.ApprovalPending {
			return domain.Conflict("APPROVAL_ALREADY_RESPONDED", "la aprobación ya fue respondida")
		}

		t := now()
		ap.Status = in.Status
		ap.RespondedAt = &t
		ap.RespondedBy = actor.UserID
		if in.Status == entity.ApprovalRejected {
			ap.RejectionReason = in.RejectionReason
		}
		if err := r.Approvals.Update(ctx, ap, entity.ApprovalPending); err != nil {
			return err
		}
		res.Approval = ap

		if ap.AssignmentID == "" {
			return nil
		}
		a, err := r.Assignments.GetByIDForUpdate(ctx, ap.AssignmentID)
		if err != nil {
			return err
		}
		if a == nil || !a.IsOpen() {
			return nil
		}
		a.Status = in.Status // APPROVED / REJECTED coinciden con los estados de asignación
		if err := r.Assignments.Update(ctx, a); err != nil {
			return err
		}
		res.Assignment = a
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.metrics.RecordApprovalResponse(in.Status)
	s.log.Info().
		Str("approval_id", approvalID).
		Str("status", in.Status).
		Str("user_id", actor.UserID).
		Msg("aprobación respondida")
	return &res, nil
}

// ListPendingApprovals aprobaciones PENDING donde el actor es origen o centro.
func (s *Service) ListPendingApprovals(ctx context.Context, actor access.Actor) ([]*entity.MaintenanceApprovalRequest, error) {
	var out []*entity.MaintenanceApprovalRequest
	err := s.txRunner.Run(ctx, func(r ports.Repos) error {
		var err error
		out, err = r.Approvals.ListPending(ctx, actor.Scope())
		return err
	})
	return out, err
}
