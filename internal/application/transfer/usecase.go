// Package transfer mueve máquinas entre sucursales mediante órdenes de traslado.
// La recepción de la orden es el único evento que cambia la custodia (branch_id).
package transfer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/Mantenimiento-api/internal/application/dto"
	"github.com/jhoicas/Mantenimiento-api/internal/application/ports"
	"github.com/jhoicas/Mantenimiento-api/internal/domain"
	"github.com/jhoicas/Mantenimiento-api/internal/domain/access"
	"github.com/jhoicas/Mantenimiento-api/internal/domain/entity"
	rules "github.com/jhoicas/Mantenimiento-api/internal/domain/maintenance"
	"github.com/jhoicas/Mantenimiento-api/internal/domain/repository"
	"github.com/jhoicas/Mantenimiento-api/internal/infrastructure/metrics"
	"github.com/jhoicas/Mantenimiento-api/pkg/logger"
)

// UseCase casos de uso de órdenes de traslado.
type UseCase struct {
	txRunner ports.TxRunner
	log      *logger.Logger
	metrics  *metrics.Metrics
}

// NewUseCase construye el caso de uso. log y m pueden ser nil.
func NewUseCase(txRunner ports.TxRunner, log *logger.Logger, m *metrics.Metrics) *UseCase {
	log = log.Component("transfer")
	return &UseCase{txRunner: txRunner, log: log, metrics: m}
}

// receivedStatus estado de la máquina al recibir según el tipo de orden.
func receivedStatus(orderType string) entity.MachineStatus {
	switch orderType {
	case entity.TransferSendToCenter:
		return entity.MachineReceivedAtCenter
	case entity.TransferReturn:
		return entity.MachineCompleted
	default:
		return entity.MachineIntake
	}
}

func newOrderNumber(t time.Time) string {
	return fmt.Sprintf("TO-%s-%s", t.Format("20060102"), strings.ToUpper(uuid.New().String()[:8]))
}

// CreateBulkTransfer agrupa varias máquinas en una orden y las pone en tránsito.
// Todas o ninguna: cualquier máquina inválida aborta la orden completa.
func (uc *UseCase) CreateBulkTransfer(ctx context.Context, actor access.Actor, in dto.CreateTransferRequest) (*entity.TransferOrder, error) {
	in.Type = strings.ToUpper(strings.TrimSpace(in.Type))
	if err := dto.Validate(in); err != nil {
		return nil, err
	}
	serials, err := rules.NormalizeSerials(in.SerialNumbers)
	if err != nil {
		return nil, err
	}
	if err := actor.Scope().Require(in.FromBranchID); err != nil {
		return nil, err
	}

	ts := time.Now().UTC()
	order := &entity.TransferOrder{
		ID:           uuid.New().String(),
		OrderNumber:  newOrderNumber(ts),
		FromBranchID: in.FromBranchID,
		ToBranchID:   in.ToBranchID,
		Type:         in.Type,
		Status:       entity.TransferPending,
		Notes:        strings.TrimSpace(in.Notes),
		CreatedBy:    actor.UserID,
		CreatedAt:    ts,
	}

	err = uc.txRunner.Run(ctx, func(r ports.Repos) error {
		for _, serial := range serials {
			m, err := r.Machines.GetBySerialForUpdate(ctx, serial)
			if err != nil {
				return err
			}
			if m == nil {
				return domain.NotFound("máquina", serial)
			}
			if err := checkShippable(ctx, r, order, m); err != nil {
				return err
			}

			prev := m.Status
			order.Items = append(order.Items, entity.TransferOrderItem{
				ID:             uuid.New().String(),
				OrderID:        order.ID,
				MachineID:      m.ID,
				SerialNumber:   m.SerialNumber,
				PreviousStatus: prev,
			})
			if order.Type == entity.TransferReturn {
				m.Status = entity.MachineReturning
			} else {
				m.Status = entity.MachineInTransit
				if err := setRequestStatus(ctx, r, m.ID, entity.RequestPendingTransfer); err != nil {
					return err
				}
			}
			m.UpdatedAt = ts
			if err := r.Machines.Update(ctx, m, prev); err != nil {
				return err
			}
			if err := r.History.Create(ctx, &entity.MachineMovement{
				ID:           uuid.New().String(),
				MachineID:    m.ID,
				SerialNumber: m.SerialNumber,
				FromBranchID: order.FromBranchID,
				ToBranchID:   order.ToBranchID,
				Action:       entity.MovementTransferOut,
				FromStatus:   prev,
				ToStatus:     m.Status,
				OrderID:      order.ID,
				PerformedBy:  actor.UserID,
				CreatedAt:    ts,
			}); err != nil {
				return err
			}
		}
		return r.Transfers.Create(ctx, order)
	})
	if err != nil {
		return nil, err
	}
	uc.metrics.RecordTransfer(order.Type, "created")
	uc.log.Info().
		Str("order_id", order.ID).
		Str("order_number", order.OrderNumber).
		Str("from", order.FromBranchID).
		Str("to", order.ToBranchID).
		Int("items", len(order.Items)).
		Msg("orden de traslado creada")
	return order, nil
}

// checkShippable valida que la máquina pueda salir en la orden.
func checkShippable(ctx context.Context, r ports.Repos, order *entity.TransferOrder, m *entity.WarehouseMachine) error {
	if m.BranchID != order.FromBranchID {
		return domain.Conflict("CUSTODY_MISMATCH", fmt.Sprintf("la máquina %s no está en la sucursal %s", m.SerialNumber, order.FromBranchID))
	}
	if m.Status.IsTransit() {
		return domain.InvalidTransition(string(m.Status), "TRANSFER")
	}
	open, err := r.Transfers.HasOpenOrderForMachine(ctx, m.ID)
	if err != nil {
		return err
	}
	if open {
		return domain.Conflict("TRANSFER_OPEN", "la máquina "+m.SerialNumber+" ya está en una orden abierta")
	}

	if order.Type == entity.TransferReturn {
		if m.Status != entity.MachineReadyForReturn {
			return domain.InvalidTransition(string(m.Status), "RETURN")
		}
		if order.ToBranchID != m.OriginBranchID {
			return domain.Validation("RETURN_DESTINATION", "la devolución de "+m.SerialNumber+" debe ir a su sucursal de origen")
		}
		return nil
	}

	if !m.Status.IsPreRepair() {
		return domain.InvalidTransition(string(m.Status), "TRANSFER")
	}
	a, err := r.Assignments.GetOpenByMachine(ctx, m.ID)
	if err != nil {
		return err
	}
	if a != nil {
		return domain.Conflict("ASSIGNMENT_OPEN", "la máquina "+m.SerialNumber+" tiene una asignación abierta")
	}
	return nil
}

// setRequestStatus actualiza la solicitud activa de la máquina, si existe.
func setRequestStatus(ctx context.Context, r ports.Repos, machineID, status string) error {
	req, err := r.Requests.FindActiveByMachine(ctx, machineID)
	if err != nil || req == nil || req.Status == status {
		return err
	}
	req.Status = status
	return r.Requests.Update(ctx, req)
}

// ReceiveShipment recibe la orden completa: custodia, estado y log de cada máquina, y la orden
// pasa a RECEIVED con PENDING como predicado. Una segunda recepción devuelve
// CONFLICT/ORDER_ALREADY_RECEIVED sin mover nada.
func (uc *UseCase) ReceiveShipment(ctx context.Context, actor access.Actor, orderID string) (*entity.TransferOrder, error) {
	var order *entity.TransferOrder
	err := uc.txRunner.Run(ctx, func(r ports.Repos) error {
		o, err := r.Transfers.GetByIDForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		if o == nil {
			return domain.NotFound("orden de traslado", orderID)
		}
		if err := actor.Scope().Require(o.ToBranchID); err != nil {
			return err
		}
		if !o.IsOpen() {
			if o.Status == entity.TransferCancelled {
				return domain.Conflict("ORDER_CANCELLED", "la orden fue cancelada")
			}
			return domain.Conflict("ORDER_ALREADY_RECEIVED", "la orden ya fue recibida")
		}

		ts := time.Now().UTC()
		target := receivedStatus(o.Type)
		for _, it := range o.Items {
			m, err := r.Machines.GetBySerialForUpdate(ctx, it.SerialNumber)
			if err != nil {
				return err
			}
			if m == nil {
				return domain.NotFound("máquina", it.SerialNumber)
			}
			if !m.Status.IsTransit() || m.BranchID != o.FromBranchID {
				return domain.Conflict("CUSTODY_MISMATCH", "la máquina "+m.SerialNumber+" ya no está en tránsito por esta orden")
			}
			prev := m.Status
			fromBranch := m.BranchID
			m.BranchID = o.ToBranchID
			m.Status = target
			if o.Type == entity.TransferReturn {
				m.ReadyForPickup = m.Resolution != nil && *m.Resolution == entity.ResolutionRepaired
			} else if err := setRequestStatus(ctx, r, m.ID, entity.RequestInProgress); err != nil {
				return err
			}
			m.UpdatedAt = ts
			if err := r.Machines.Update(ctx, m, prev); err != nil {
				return err
			}
			if err := r.History.Create(ctx, &entity.MachineMovement{
				ID:           uuid.New().String(),
				MachineID:    m.ID,
				SerialNumber: m.SerialNumber,
				FromBranchID: fromBranch,
				ToBranchID:   o.ToBranchID,
				Action:       entity.MovementTransferIn,
				FromStatus:   prev,
				ToStatus:     m.Status,
				OrderID:      o.ID,
				PerformedBy:  actor.UserID,
				CreatedAt:    ts,
			}); err != nil {
				return err
			}
		}

		o.Status = entity.TransferReceived
		o.ReceivedBy = actor.UserID
		o.ReceivedAt = &ts
		if err := r.Transfers.UpdateStatus(ctx, o, entity.TransferPending); err != nil {
			return err
		}
		order = o
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.metrics.RecordTransfer(order.Type, "received")
	uc.log.Info().
		Str("order_id", order.ID).
		Str("to", order.ToBranchID).
		Int("items", len(order.Items)).
		Msg("orden de traslado recibida")
	return order, nil
}

// CancelTransfer anula una orden PENDING y devuelve cada máquina a su estado previo.
func (uc *UseCase) CancelTransfer(ctx context.Context, actor access.Actor, orderID string) (*entity.TransferOrder, error) {
	var order *entity.TransferOrder
	err := uc.txRunner.Run(ctx, func(r ports.Repos) error {
		o, err := r.Transfers.GetByIDForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		if o == nil {
			return domain.NotFound("orden de traslado", orderID)
		}
		if err := actor.Scope().Require(o.FromBranchID); err != nil {
			return err
		}
		if !o.IsOpen() {
			return domain.Conflict("ORDER_NOT_PENDING", "solo se puede cancelar una orden pendiente")
		}

		ts := time.Now().UTC()
		for _, it := range o.Items {
			m, err := r.Machines.GetBySerialForUpdate(ctx, it.SerialNumber)
			if err != nil {
				return err
			}
			if m == nil {
				return domain.NotFound("máquina", it.SerialNumber)
			}
			prev := m.Status
			m.Status = it.PreviousStatus
			m.UpdatedAt = ts
			if err := r.Machines.Update(ctx, m, prev); err != nil {
				return err
			}
			if o.Type != entity.TransferReturn {
				if err := setRequestStatus(ctx, r, m.ID, entity.RequestInProgress); err != nil {
					return err
				}
			}
			if err := r.History.Create(ctx, &entity.MachineMovement{
				ID:           uuid.New().String(),
				MachineID:    m.ID,
				SerialNumber: m.SerialNumber,
				FromBranchID: o.FromBranchID,
				ToBranchID:   o.FromBranchID,
				Action:       entity.MovementTransferCancelled,
				FromStatus:   prev,
				ToStatus:     m.Status,
				OrderID:      o.ID,
				PerformedBy:  actor.UserID,
				CreatedAt:    ts,
			}); err != nil {
				return err
			}
		}
		o.Status = entity.TransferCancelled
		if err := r.Transfers.UpdateStatus(ctx, o, entity.TransferPending); err != nil {
			return err
		}
		order = o
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.metrics.RecordTransfer(order.Type, "cancelled")
	uc.log.Info().Str("order_id", order.ID).Str("user_id", actor.UserID).Msg("orden de traslado cancelada")
	return order, nil
}

// GetTransfer devuelve la orden si el actor es origen o destino.
func (uc *UseCase) GetTransfer(ctx context.Context, actor access.Actor, orderID string) (*entity.TransferOrder, error) {
	var o *entity.TransferOrder
	err := uc.txRunner.Run(ctx, func(r ports.Repos) error {
		var err error
		o, err = r.Transfers.GetByID(ctx, orderID)
		return err
	})
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, domain.NotFound("orden de traslado", orderID)
	}
	if err := actor.Scope().Require(o.FromBranchID, o.ToBranchID); err != nil {
		return nil, err
	}
	return o, nil
}

// ListTransfers órdenes donde el alcance del actor es origen o destino.
func (uc *UseCase) ListTransfers(ctx context.Context, actor access.Actor, in dto.TransferListRequest) ([]*entity.TransferOrder, error) {
	in.DefaultPage()
	f := repository.TransferFilter{
		Status: strings.ToUpper(strings.TrimSpace(in.Status)),
		Type:   strings.ToUpper(strings.TrimSpace(in.Type)),
		Limit:  in.Limit,
		Offset: in.Offset,
	}
	var out []*entity.TransferOrder
	err := uc.txRunner.Run(ctx, func(r ports.Repos) error {
		var err error
		out, err = r.Transfers.List(ctx, actor.Scope(), f)
		return err
	})
	return out, err
}
