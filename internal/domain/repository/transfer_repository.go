package repository

import (
	"context"

	"github.com/jhoicas/Mantenimiento-api/internal/domain/access"
	"github.com/jhoicas/Mantenimiento-api/internal/domain/entity"
)

// TransferFilter filtros del listado de órdenes.
type TransferFilter struct {
	Status string
	Type   string
	Limit  int
	Offset int
}

// TransferOrderRepository puerto de persistencia de órdenes de traslado con sus ítems.
type TransferOrderRepository interface {
	Create(ctx context.Context, o *entity.TransferOrder) error
	GetByID(ctx context.Context, id string) (*entity.TransferOrder, error)
	GetByIDForUpdate(ctx context.Context, id string) (*entity.TransferOrder, error)
	// HasOpenOrderForMachine true si la máquina está en una orden PENDING.
	HasOpenOrderForMachine(ctx context.Context, machineID string) (bool, error)
	// UpdateStatus escribe estado/recepción solo si el estado actual es expected; si no, ErrConflict.
	UpdateStatus(ctx context.Context, o *entity.TransferOrder, expected string) error
	List(ctx context.Context, scope access.Scope, f TransferFilter) ([]*entity.TransferOrder, error)
}
