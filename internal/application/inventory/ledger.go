// Package inventory es el libro de stock de repuestos: el único componente que cambia
// cantidades. Toda variación se registra como movimiento IN/OUT en la misma transacción.
package inventory

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/Mantenimiento-api/internal/application/dto"
	"github.com/jhoicas/Mantenimiento-api/internal/application/ports"
	"github.com/jhoicas/Mantenimiento-api/internal/domain"
	"github.com/jhoicas/Mantenimiento-api/internal/domain/access"
	"github.com/jhoicas/Mantenimiento-api/internal/domain/entity"
	"github.com/jhoicas/Mantenimiento-api/internal/infrastructure/metrics"
	"github.com/jhoicas/Mantenimiento-api/pkg/logger"
)

// Ledger registra entradas y salidas de stock con bloqueo de fila (SELECT FOR UPDATE).
type Ledger struct {
	txRunner ports.TxRunner
	log      *logger.Logger
	metrics  *metrics.Metrics
}

// NewLedger construye el libro de stock. log y m pueden ser nil.
func NewLedger(txRunner ports.TxRunner, log *logger.Logger, m *metrics.Metrics) *Ledger {
	log = log.Component("inventory")
	return &Ledger{txRunner: txRunner, log: log, metrics: m}
}

// ReceiveStock registra una entrada (IN) y suma la cantidad en una sola transacción.
func (l *Ledger) ReceiveStock(ctx context.Context, actor access.Actor, in dto.ReceiveStockRequest) (*entity.StockMovement, error) {
	if err := dto.Validate(in); err != nil {
		return nil, err
	}
	if err := actor.Scope().Require(in.BranchID); err != nil {
		return nil, err
	}

	var mov *entity.StockMovement
	err := l.txRunner.Run(ctx, func(r ports.Repos) error {
		part, err := r.Inventory.GetPart(ctx, in.PartID)
		if err != nil {
			return err
		}
		if part == nil {
			return domain.NotFound("repuesto", in.PartID)
		}
		if _, err := r.Inventory.ApplyDelta(ctx, in.BranchID, in.PartID, in.Quantity); err != nil {
			return err
		}
		mov = &entity.StockMovement{
			ID:        uuid.New().String(),
			BranchID:  in.BranchID,
			PartID:    in.PartID,
			Type:      entity.MovementTypeIN,
			Quantity:  in.Quantity,
			Reason:    in.Reason,
			CreatedBy: actor.UserID,
			CreatedAt: time.Now().UTC(),
		}
		return r.StockMovements.Create(ctx, mov)
	})
	if err != nil {
		return nil, err
	}
	l.metrics.RecordStockMovement(entity.MovementTypeIN)
	l.log.Info().
		Str("branch_id", in.BranchID).
		Str("part_id", in.PartID).
		Int("quantity", in.Quantity).
		Msg("entrada de stock registrada")
	return mov, nil
}

// DeductInput salida de un repuesto consumido en una reparación.
type DeductInput struct {
	BranchID      string
	PartID        string
	Quantity      int
	Reason        string
	RequestID     string
	MachineSerial string
	UserID        string
}

// DeductInTx ejecuta una salida (OUT) usando los repositorios de la transacción del caller.
// Bloquea la fila, verifica stock suficiente, aplica el delta negativo y guarda el movimiento.
// Si falla, el caller debe abortar toda su transacción.
func (l *Ledger) DeductInTx(ctx context.Context, r ports.Repos, in DeductInput) (*entity.StockMovement, error) {
	if in.BranchID == "" || in.PartID == "" || in.Quantity <= 0 {
		return nil, domain.Validation("INVALID_PART_LINE", "repuesto, sucursal y cantidad positiva son obligatorios")
	}
	part, err := r.Inventory.GetPart(ctx, in.PartID)
	if err != nil {
		return nil, err
	}
	if part == nil {
		return nil, domain.NotFound("repuesto", in.PartID)
	}
	item, err := r.Inventory.GetForUpdate(ctx, in.BranchID, in.PartID)
	if err != nil {
		return nil, err
	}
	if item.Quantity < in.Quantity {
		return nil, domain.InsufficientStock(in.BranchID, in.PartID, item.Quantity, in.Quantity)
	}
	if _, err := r.Inventory.ApplyDelta(ctx, in.BranchID, in.PartID, -in.Quantity); err != nil {
		return nil, err
	}
	mov := &entity.StockMovement{
		ID:            uuid.New().String(),
		BranchID:      in.BranchID,
		PartID:        in.PartID,
		Type:          entity.MovementTypeOUT,
		Quantity:      in.Quantity,
		Reason:        in.Reason,
		RequestID:     in.RequestID,
		MachineSerial: in.MachineSerial,
		CreatedBy:     in.UserID,
		CreatedAt:     time.Now().UTC(),
	}
	if err := r.StockMovements.Create(ctx, mov); err != nil {
		return nil, err
	}
	l.metrics.RecordStockMovement(entity.MovementTypeOUT)
	return mov, nil
}

// Reconcile compara la cantidad materializada con la suma de movimientos.
func (l *Ledger) Reconcile(ctx context.Context, actor access.Actor, branchID, partID string) (*dto.ReconcileResponse, error) {
	if branchID == "" || partID == "" {
		return nil, domain.Validation("VALIDATION", "branch_id y part_id son obligatorios")
	}
	if err := actor.Scope().Require(branchID); err != nil {
		return nil, err
	}
	out := &dto.ReconcileResponse{BranchID: branchID, PartID: partID}
	err := l.txRunner.Run(ctx, func(r ports.Repos) error {
		item, err := r.Inventory.Get(ctx, branchID, partID)
		if err != nil {
			return err
		}
		sum, err := r.StockMovements.SumDeltas(ctx, branchID, partID)
		if err != nil {
			return err
		}
		out.Quantity = item.Quantity
		out.MovementSum = sum
		return nil
	})
	if err != nil {
		return nil, err
	}
	out.Consistent = out.Quantity == out.MovementSum
	if !out.Consistent {
		l.log.Error().
			Str("branch_id", branchID).
			Str("part_id", partID).
			Int("quantity", out.Quantity).
			Int("movement_sum", out.MovementSum).
			Msg("stock descuadrado")
	}
	return out, nil
}

// ListStock lista el stock de una sucursal dentro del alcance del actor.
func (l *Ledger) ListStock(ctx context.Context, actor access.Actor, branchID string) ([]*entity.InventoryItem, error) {
	if branchID == "" {
		branchID = actor.BranchID
	}
	scope := actor.Scope()
	if err := scope.Require(branchID); err != nil {
		return nil, err
	}
	var items []*entity.InventoryItem
	err := l.txRunner.Run(ctx, func(r ports.Repos) error {
		var err error
		items, err = r.Inventory.ListByBranch(ctx, scope, branchID)
		return err
	})
	return items, err
}
