package repository

import (
	"context"

	"github.com/jhoicas/Mantenimiento-api/internal/domain/access"
	"github.com/jhoicas/Mantenimiento-api/internal/domain/entity"
)

// MachineFilter filtros del listado de máquinas.
type MachineFilter struct {
	Status   entity.MachineStatus
	BranchID string
	Limit    int
	Offset   int
}

// MachineRepository puerto de persistencia de WarehouseMachine.
// Los métodos de lectura devuelven (nil, nil) si no existe.
type MachineRepository interface {
	Create(ctx context.Context, m *entity.WarehouseMachine) error
	GetBySerial(ctx context.Context, serial string) (*entity.WarehouseMachine, error)
	// GetBySerialForUpdate bloquea la fila hasta el fin de la transacción (SELECT FOR UPDATE).
	GetBySerialForUpdate(ctx context.Context, serial string) (*entity.WarehouseMachine, error)
	// Update escribe la máquina solo si su estado actual sigue siendo expected;
	// si no, devuelve ErrConflict.
	Update(ctx context.Context, m *entity.WarehouseMachine, expected entity.MachineStatus) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, scope access.Scope, f MachineFilter) ([]*entity.WarehouseMachine, error)
}

// MachineMovementRepository log append-only de custodia.
type MachineMovementRepository interface {
	Create(ctx context.Context, mv *entity.MachineMovement) error
	ListByMachine(ctx context.Context, machineID string) ([]*entity.MachineMovement, error)
}
