// Package maintenance orquesta el ciclo de vida de una máquina: transiciones de estado,
// asignaciones de técnicos, aprobaciones de cotización y cierre de reparaciones.
// Cada operación corre en una sola transacción vía ports.TxRunner.
package maintenance

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Mantenimiento-api/internal/application/ports"
	"github.com/jhoicas/Mantenimiento-api/internal/application/settlement"
	"github.com/jhoicas/Mantenimiento-api/internal/domain"
	"github.com/jhoicas/Mantenimiento-api/internal/domain/entity"
	rules "github.com/jhoicas/Mantenimiento-api/internal/domain/maintenance"
	"github.com/jhoicas/Mantenimiento-api/internal/infrastructure/metrics"
	"github.com/jhoicas/Mantenimiento-api/pkg/logger"
)

// Config reglas configurables.
type Config struct {
	// ApprovalThreshold costo por encima del cual una reparación cobrable a otra sucursal
	// exige aprobación previa. Cero la desactiva.
	ApprovalThreshold decimal.Decimal
}

// Service casos de uso de mantenimiento.
type Service struct {
	txRunner ports.TxRunner
	settler  *settlement.Engine
	cfg      Config
	log      *logger.Logger
	metrics  *metrics.Metrics
}

// NewService construye el servicio. log y m pueden ser nil.
func NewService(txRunner ports.TxRunner, settler *settlement.Engine, cfg Config, log *logger.Logger, m *metrics.Metrics) *Service {
	log = log.Component("maintenance")
	return &Service{txRunner: txRunner, settler: settler, cfg: cfg, log: log, metrics: m}
}

func now() time.Time { return time.Now().UTC() }

func newID() string { return uuid.New().String() }

// lockMachine normaliza el serial y bloquea la fila de la máquina.
func lockMachine(ctx context.Context, r ports.Repos, rawSerial string) (*entity.WarehouseMachine, error) {
	serial, err := rules.NormalizeSerial(rawSerial)
	if err != nil {
		return nil, err
	}
	m, err := r.Machines.GetBySerialForUpdate(ctx, serial)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, domain.NotFound("máquina", serial)
	}
	return m, nil
}

// lockMachineBySerial bloquea la máquina dueña de una asignación o aprobación (serial ya normalizado).
func lockMachineBySerial(ctx context.Context, r ports.Repos, serial string) (*entity.WarehouseMachine, error) {
	m, err := r.Machines.GetBySerialForUpdate(ctx, serial)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, domain.NotFound("máquina", serial)
	}
	return m, nil
}

// findOrCreateRequest reutiliza la solicitud activa de la máquina o abre una nueva.
func findOrCreateRequest(ctx context.Context, r ports.Repos, m *entity.WarehouseMachine, status string) (*entity.MaintenanceRequest, error) {
	req, err := r.Requests.FindActiveByMachine(ctx, m.ID)
	if err != nil {
		return nil, err
	}
	if req != nil {
		if req.Status != status {
			req.Status = status
			if err := r.Requests.Update(ctx, req); err != nil {
				return nil, err
			}
		}
		return req, nil
	}
	req = &entity.MaintenanceRequest{
		ID:           newID(),
		MachineID:    m.ID,
		SerialNumber: m.SerialNumber,
		BranchID:     m.OriginBranchID,
		CustomerID:   m.CustomerID,
		Status:       status,
		CreatedAt:    now(),
	}
	if err := r.Requests.Create(ctx, req); err != nil {
		return nil, err
	}
	return req, nil
}

// writeMachine persiste la máquina con el estado previo como predicado y registra el cambio.
func writeMachine(ctx context.Context, r ports.Repos, m *entity.WarehouseMachine, prev entity.MachineStatus, userID string) error {
	m.UpdatedAt = now()
	if err := r.Machines.Update(ctx, m, prev); err != nil {
		return err
	}
	if prev == m.Status {
		return nil
	}
	return r.History.Create(ctx, &entity.MachineMovement{
		ID:           newID(),
		MachineID:    m.ID,
		SerialNumber: m.SerialNumber,
		FromBranchID: m.BranchID,
		ToBranchID:   m.BranchID,
		Action:       entity.MovementStatusChange,
		FromStatus:   prev,
		ToStatus:     m.Status,
		PerformedBy:  userID,
		CreatedAt:    m.UpdatedAt,
	})
}

// refuseWhilePending devuelve CONFLICT/APPROVAL_PENDING si la máquina tiene una aprobación sin responder.
func refuseWhilePending(ctx context.Context, r ports.Repos, machineID string) error {
	p, err := r.Approvals.GetPendingByMachine(ctx, machineID)
	if err != nil {
		return err
	}
	if p != nil {
		return domain.Conflict("APPROVAL_PENDING", "la máquina tiene una aprobación pendiente de respuesta")
	}
	return nil
}
