package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Mantenimiento-api/internal/application/dto"
	"github.com/jhoicas/Mantenimiento-api/internal/application/inventory"
)

// InventoryHandler stock de repuestos por sucursal (protegido).
type InventoryHandler struct {
	ledger *inventory.Ledger
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(ledger *inventory.Ledger) *InventoryHandler {
	return &InventoryHandler{ledger: ledger}
}

// ReceiveStock godoc
// @Summary      Entrada de repuestos
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ReceiveStockRequest  true  "branch_id, part_id, quantity"
// @Success      201   {object}  dto.StockMovementResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/inventory/stock-in [post]
func (h *InventoryHandler) ReceiveStock(c *fiber.Ctx) error {
	actor, ok := GetActor(c)
	if !ok {
		return unauthorized(c)
	}
	var in dto.ReceiveStockRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	mv, err := h.ledger.ReceiveStock(c.Context(), actor, in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.FromStockMovement(mv))
}

// ListStock godoc
// @Summary      Stock por sucursal
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        branch_id  query  string  false  "sucursal (vacío = todas las del alcance)"
// @Success      200  {array}  dto.StockItemResponse
// @Router       /api/inventory/stock [get]
func (h *InventoryHandler) ListStock(c *fiber.Ctx) error {
	actor, ok := GetActor(c)
	if !ok {
		return unauthorized(c)
	}
	items, err := h.ledger.ListStock(c.Context(), actor, c.Query("branch_id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.FromInventoryItems(items))
}

// Reconcile godoc
// @Summary      Comparar cantidad con la suma de movimientos
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        branch_id  query  string  true  "sucursal"
// @Param        part_id    query  string  true  "repuesto"
// @Success      200  {object}  dto.ReconcileResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/inventory/reconcile [get]
func (h *InventoryHandler) Reconcile(c *fiber.Ctx) error {
	actor, ok := GetActor(c)
	if !ok {
		return unauthorized(c)
	}
	rec, err := h.ledger.Reconcile(c.Context(), actor, c.Query("branch_id"), c.Query("part_id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(rec)
}
