package repository

import (
	"context"

	"github.com/jhoicas/Mantenimiento-api/internal/domain/access"
	"github.com/jhoicas/Mantenimiento-api/internal/domain/entity"
)

// ApprovalRepository puerto de persistencia de MaintenanceApprovalRequest.
type ApprovalRepository interface {
	// Create falla con ErrConflict (APPROVAL_PENDING) si ya hay una PENDING para la máquina.
	Create(ctx context.Context, a *entity.MaintenanceApprovalRequest) error
	GetByID(ctx context.Context, id string) (*entity.MaintenanceApprovalRequest, error)
	GetByIDForUpdate(ctx context.Context, id string) (*entity.MaintenanceApprovalRequest, error)
	GetPendingByMachine(ctx context.Context, machineID string) (*entity.MaintenanceApprovalRequest, error)
	// GetLatestByMachine la más reciente por created_at, cualquier estado.
	GetLatestByMachine(ctx context.Context, machineID string) (*entity.MaintenanceApprovalRequest, error)
	// Update escribe solo si el estado actual es expected; si no, ErrConflict.
	Update(ctx context.Context, a *entity.MaintenanceApprovalRequest, expected string) error
	DeleteByMachine(ctx context.Context, machineID string) error
	// ListPending aprobaciones PENDING donde el alcance es origen o centro.
	ListPending(ctx context.Context, scope access.Scope) ([]*entity.MaintenanceApprovalRequest, error)
}
