package repository

import (
	"context"

	"github.com/jhoicas/Mantenimiento-api/internal/domain/access"
	"github.com/jhoicas/Mantenimiento-api/internal/domain/entity"
)

// InventoryRepository stock por sucursal+repuesto. Usado dentro de transacciones.
type InventoryRepository interface {
	GetPart(ctx context.Context, partID string) (*entity.SparePart, error)
	// Get devuelve cantidad 0 si no hay fila.
	Get(ctx context.Context, branchID, partID string) (*entity.InventoryItem, error)
	// GetForUpdate bloquea la fila (SELECT FOR UPDATE); cantidad 0 si no existe.
	GetForUpdate(ctx context.Context, branchID, partID string) (*entity.InventoryItem, error)
	// ApplyDelta suma delta a la cantidad y devuelve la nueva. Nunca sobrescribe: si el
	// resultado fuese negativo devuelve ErrInsufficientStock sin cambiar nada.
	ApplyDelta(ctx context.Context, branchID, partID string, delta int) (int, error)
	ListByBranch(ctx context.Context, scope access.Scope, branchID string) ([]*entity.InventoryItem, error)
}

// StockMovementRepository log append-only de movimientos de stock.
type StockMovementRepository interface {
	Create(ctx context.Context, mv *entity.StockMovement) error
	ListByRequest(ctx context.Context, requestID string) ([]*entity.StockMovement, error)
	// SumDeltas suma IN - OUT para sucursal+repuesto.
	SumDeltas(ctx context.Context, branchID, partID string) (int, error)
}
