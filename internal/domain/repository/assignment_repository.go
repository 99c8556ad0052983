package repository

import (
	"context"

	"github.com/jhoicas/Mantenimiento-api/internal/domain/access"
	"github.com/jhoicas/Mantenimiento-api/internal/domain/entity"
)

// AssignmentRepository puerto de persistencia de ServiceAssignment.
type AssignmentRepository interface {
	// Create falla con ErrConflict si la máquina ya tiene una asignación abierta.
	Create(ctx context.Context, a *entity.ServiceAssignment) error
	GetByID(ctx context.Context, id string) (*entity.ServiceAssignment, error)
	GetByIDForUpdate(ctx context.Context, id string) (*entity.ServiceAssignment, error)
	GetOpenByMachine(ctx context.Context, machineID string) (*entity.ServiceAssignment, error)
	Update(ctx context.Context, a *entity.ServiceAssignment) error
	DeleteByMachine(ctx context.Context, machineID string) error
	ListOpen(ctx context.Context, scope access.Scope, limit, offset int) ([]*entity.ServiceAssignment, error)
}

// MaintenanceRequestRepository puerto de persistencia de MaintenanceRequest.
type MaintenanceRequestRepository interface {
	Create(ctx context.Context, r *entity.MaintenanceRequest) error
	GetByID(ctx context.Context, id string) (*entity.MaintenanceRequest, error)
	// FindActiveByMachine devuelve la solicitud Open / In Progress / PENDING_TRANSFER.
	FindActiveByMachine(ctx context.Context, machineID string) (*entity.MaintenanceRequest, error)
	Update(ctx context.Context, r *entity.MaintenanceRequest) error
}
