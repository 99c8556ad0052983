package maintenance

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Mantenimiento-api/internal/application/dto"
	"github.com/jhoicas/Mantenimiento-api/internal/application/ports"
	"github.com/jhoicas/Mantenimiento-api/internal/application/settlement"
	"github.com/jhoicas/Mantenimiento-api/internal/domain"
	"github.com/jhoicas/Mantenimiento-api/internal/domain/access"
	"github.com/jhoicas/Mantenimiento-api/internal/domain/entity"
	rules "github.com/jhoicas/Mantenimiento-api/internal/domain/maintenance"
)

// TransitionResult máquina actualizada más la aprobación o deuda generadas, si hubo.
type TransitionResult struct {
	Machine  *entity.WarehouseMachine
	Approval *entity.MaintenanceApprovalRequest
	Debt     *entity.BranchDebt
}

// TransitionMachine aplica una acción del ciclo de vida sobre la máquina. La acción se valida
// antes de leer nada; la máquina se bloquea y se escribe con su estado previo como predicado.
func (s *Service) TransitionMachine(ctx context.Context, actor access.Actor, serial string, in dto.TransitionRequest) (*TransitionResult, error) {
	action, err := rules.ParseAction(in.Action)
	if err != nil {
		return nil, err
	}
	if err := dto.Validate(in); err != nil {
		return nil, err
	}
	if in.TotalCost != nil && in.TotalCost.IsNegative() {
		return nil, domain.Validation("INVALID_AMOUNT", "el costo total no puede ser negativo")
	}

	var res TransitionResult
	err = s.txRunner.Run(ctx, func(r ports.Repos) error {
		m, err := lockMachine(ctx, r, serial)
		if err != nil {
			return err
		}
		if err := actor.Scope().Require(m.BranchID); err != nil {
			return err
		}

		switch action {
		case rules.ActionInspect, rules.ActionMarkReadyForReturn:
			next, err := rules.NextStatus(m.Status, action)
			if err != nil {
				return err
			}
			if err := refuseWhilePending(ctx, r, m.ID); err != nil {
				return err
			}
			prev := m.Status
			if prev == entity.MachineAwaitingApproval {
				m.ClearQuote()
			}
			m.Status = next
			if err := writeMachine(ctx, r, m, prev, actor.UserID); err != nil {
				return err
			}

		case rules.ActionRequestApproval:
			approval, err := s.requestApprovalInTx(ctx, r, actor, m, nil, dto.ToPartLines(in.Parts), in.TotalCost, in.Notes)
			if err != nil {
				return err
			}
			res.Approval = approval

		default:
			out, err := s.resolveInTx(ctx, r, m, resolveInput{
				Action:     action,
				Parts:      dto.ToPartLines(in.Parts),
				TotalCost:  in.TotalCost,
				Chargeable: !in.NoCharge,
				Notes:      in.Notes,
				UserID:     actor.UserID,
			})
			if err != nil {
				return err
			}
			res.Debt = out.Debt
		}
		res.Machine = m
		return nil
	})
	s.metrics.RecordTransition(string(action), err)
	if err != nil {
		return nil, err
	}
	s.log.Info().
		Str("serial", res.Machine.SerialNumber).
		Str("action", string(action)).
		Str("to", string(res.Machine.Status)).
		Str("user_id", actor.UserID).
		Msg("transición de máquina")
	return &res, nil
}

// requestApprovalInTx guarda la cotización en la máquina y crea la única aprobación PENDING.
// a puede ser nil: se usa la asignación abierta de la máquina si existe.
func (s *Service) requestApprovalInTx(
	ctx context.Context,
	r ports.Repos,
	actor access.Actor,
	m *entity.WarehouseMachine,
	a *entity.ServiceAssignment,
	parts entity.PartLines,
	proposedTotal *decimal.Decimal,
	notes string,
) (*entity.MaintenanceApprovalRequest, error) {
	next, err := rules.NextStatus(m.Status, rules.ActionRequestApproval)
	if err != nil {
		return nil, err
	}
	if err := refuseWhilePending(ctx, r, m.ID); err != nil {
		return nil, err
	}
	parts = parts.Normalize()
	if err := parts.Validate(); err != nil {
		return nil, domain.Validation("INVALID_PART_LINE", err.Error())
	}
	if len(parts) == 0 && proposedTotal == nil {
		return nil, domain.Validation("QUOTE_REQUIRED", "la cotización requiere repuestos o un costo total")
	}
	total := parts.Total()
	if proposedTotal != nil {
		total = *proposedTotal
	}
	if total.IsNegative() {
		return nil, domain.Validation("INVALID_AMOUNT", "el costo total no puede ser negativo")
	}

	if a == nil {
		if a, err = r.Assignments.GetOpenByMachine(ctx, m.ID); err != nil {
			return nil, err
		}
	}
	center := m.BranchID
	if a != nil {
		center = a.CenterBranchID
	}
	req, err := findOrCreateRequest(ctx, r, m, entity.RequestInProgress)
	if err != nil {
		return nil, err
	}

	approval := &entity.MaintenanceApprovalRequest{
		ID:             newID(),
		MachineID:      m.ID,
		SerialNumber:   m.SerialNumber,
		RequestID:      req.ID,
		OriginBranchID: m.OriginBranchID,
		CenterBranchID: center,
		ProposedTotal:  total,
		Parts:          parts,
		Status:         entity.ApprovalPending,
		Notes:          strings.TrimSpace(notes),
		RequestedBy:    actor.UserID,
		CreatedAt:      now(),
	}
	if a != nil {
		approval.AssignmentID = a.ID
	}
	if err := r.Approvals.Create(ctx, approval); err != nil {
		return nil, err
	}

	prev := m.Status
	m.ProposedParts = parts.Clone()
	m.ProposedTotalCost = &total
	m.Status = next
	if err := writeMachine(ctx, r, m, prev, actor.UserID); err != nil {
		return nil, err
	}
	if a != nil {
		a.Status = entity.AssignmentPendingApproval
		if err := r.Assignments.Update(ctx, a); err != nil {
			return nil, err
		}
	}
	return approval, nil
}

type resolveInput struct {
	Action     rules.Action // REPAIR, SCRAP o RETURN_AS_IS
	Parts      entity.PartLines
	TotalCost  *decimal.Decimal
	Chargeable bool
	Notes      string
	UserID     string
	Assignment *entity.ServiceAssignment // bloqueada por el caller; nil = la abierta de la máquina
}

type resolveOutput struct {
	Assignment *entity.ServiceAssignment
	Debt       *entity.BranchDebt
}

// resolveInTx lleva la máquina a su resultado terminal: liquida repuestos y deuda, fija la
// resolución, limpia la cotización y cierra asignación y solicitud, todo en la tx del caller.
func (s *Service) resolveInTx(ctx context.Context, r ports.Repos, m *entity.WarehouseMachine, in resolveInput) (*resolveOutput, error) {
	prev := m.Status
	next, err := rules.NextStatus(prev, in.Action)
	if err != nil {
		return nil, err
	}
	if err := refuseWhilePending(ctx, r, m.ID); err != nil {
		return nil, err
	}
	latest, err := r.Approvals.GetLatestByMachine(ctx, m.ID)
	if err != nil {
		return nil, err
	}
	approved := approvedQuote(m, latest) != nil
	if in.Action == rules.ActionRepair && prev == entity.MachineAwaitingApproval && !approved {
		return nil, domain.Validation("APPROVAL_REQUIRED", "la cotización fue rechazada; recotice, inspeccione o dé de baja la máquina")
	}

	parts := in.Parts.Normalize()
	switch {
	case in.Action == rules.ActionReturnAsIs:
		parts = nil
	case len(parts) == 0 && in.TotalCost == nil && approved && in.Action == rules.ActionRepair:
		parts = latest.Parts.Clone()
		t := latest.ProposedTotal
		in.TotalCost = &t
	}
	total := parts.Total()
	if in.TotalCost != nil && in.Action != rules.ActionReturnAsIs {
		total = *in.TotalCost
	}
	// una baja sin repuestos consumidos no mueve stock ni genera deuda
	if in.Action == rules.ActionScrap && len(parts) == 0 {
		total = decimal.Zero
		in.Chargeable = false
	}

	a := in.Assignment
	if a == nil {
		if a, err = r.Assignments.GetOpenByMachine(ctx, m.ID); err != nil {
			return nil, err
		}
	}
	center := m.BranchID
	if a != nil {
		center = a.CenterBranchID
	}
	payer := m.OriginBranchID

	input := settlement.Input{
		MachineSerial:  m.SerialNumber,
		CenterBranchID: center,
		PayerBranchID:  payer,
		Parts:          parts,
		TotalCost:      total,
		Chargeable:     in.Chargeable,
		UserID:         in.UserID,
		Reason:         "mantenimiento " + m.SerialNumber,
	}
	if in.Action == rules.ActionRepair && settlement.IsChargeable(input) {
		if approved && total.GreaterThan(latest.ProposedTotal) {
			return nil, domain.Validation("APPROVAL_REQUIRED", "el costo supera lo aprobado ("+latest.ProposedTotal.String()+"); recotice la reparación")
		}
		if !approved && s.cfg.ApprovalThreshold.IsPositive() && total.GreaterThan(s.cfg.ApprovalThreshold) {
			return nil, domain.Validation("APPROVAL_REQUIRED", "el costo supera el umbral; se requiere aprobación de la sucursal de origen")
		}
	}

	req, err := findOrCreateRequest(ctx, r, m, entity.RequestInProgress)
	if err != nil {
		return nil, err
	}
	input.RequestID = req.ID

	out := &resolveOutput{Assignment: a}
	if in.Action != rules.ActionReturnAsIs {
		settled, err := s.settler.Settle(ctx, r, input)
		if err != nil {
			return nil, err
		}
		out.Debt = settled.Debt
	}

	resolution := rules.ResolutionFor(in.Action)
	m.Resolve(*resolution, parts, total)
	m.Status = next
	if err := writeMachine(ctx, r, m, prev, in.UserID); err != nil {
		return nil, err
	}

	closedAt := now()
	if a != nil {
		a.Status = entity.AssignmentCompleted
		a.UsedParts = parts.Clone()
		a.TotalCost = total
		a.CompletedAt = &closedAt
		if n := strings.TrimSpace(in.Notes); n != "" {
			a.Notes = joinNotes(a.Notes, n)
		}
		if err := r.Assignments.Update(ctx, a); err != nil {
			return nil, err
		}
	}
	req.Status = entity.RequestClosed
	req.Resolution = resolution
	req.TotalCost = total
	req.ClosedAt = &closedAt
	if err := r.Requests.Update(ctx, req); err != nil {
		return nil, err
	}
	return out, nil
}

// approvedQuote devuelve la aprobación APPROVED que respalda la cotización vigente de la máquina.
// Solo cuenta mientras la máquina sigue en AWAITING_APPROVAL con ese mismo total cotizado;
// INSPECT limpia la cotización y con ella la aprobación.
func approvedQuote(m *entity.WarehouseMachine, latest *entity.MaintenanceApprovalRequest) *entity.MaintenanceApprovalRequest {
	if latest == nil || latest.Status != entity.ApprovalApproved {
		return nil
	}
	if m.Status != entity.MachineAwaitingApproval || m.ProposedTotalCost == nil ||
		!m.ProposedTotalCost.Equal(latest.ProposedTotal) {
		return nil
	}
	return latest
}

func joinNotes(prev, next string) string {
	if prev == "" {
		return next
	}
	return prev + "\n" + next
}
