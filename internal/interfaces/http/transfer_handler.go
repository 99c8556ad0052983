package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Mantenimiento-api/internal/application/dto"
	"github.com/jhoicas/Mantenimiento-api/internal/application/transfer"
)

// TransferHandler órdenes de traslado (protegido).
type TransferHandler struct {
	uc *transfer.UseCase
}

// NewTransferHandler construye el handler.
func NewTransferHandler(uc *transfer.UseCase) *TransferHandler {
	return &TransferHandler{uc: uc}
}

// Create godoc
// @Summary      Crear orden de traslado masiva
// @Description  Todas las máquinas se validan y mueven juntas o ninguna.
// @Tags         transfers
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateTransferRequest  true  "from_branch_id, to_branch_id, type, serial_numbers"
// @Success      201   {object}  dto.TransferOrderResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/transfers [post]
func (h *TransferHandler) Create(c *fiber.Ctx) error {
	actor, ok := GetActor(c)
	if !ok {
		return unauthorized(c)
	}
	var in dto.CreateTransferRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	o, err := h.uc.CreateBulkTransfer(c.Context(), actor, in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.FromTransferOrder(o))
}

// List godoc
// @Summary      Órdenes donde la sucursal es origen o destino
// @Tags         transfers
// @Security     Bearer
// @Produce      json
// @Param        status  query  string  false  "estado"
// @Param        type    query  string  false  "tipo"
// @Param        limit   query  int     false  "límite (máx 100)"
// @Param        offset  query  int     false  "desplazamiento"
// @Success      200  {array}  dto.TransferOrderResponse
// @Router       /api/transfers [get]
func (h *TransferHandler) List(c *fiber.Ctx) error {
	actor, ok := GetActor(c)
	if !ok {
		return unauthorized(c)
	}
	var in dto.TransferListRequest
	if err := c.QueryParser(&in); err != nil {
		return badQuery(c)
	}
	list, err := h.uc.ListTransfers(c.Context(), actor, in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.FromTransferOrders(list))
}

// Get godoc
// @Summary      Obtener orden de traslado
// @Tags         transfers
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID de la orden"
// @Success      200  {object}  dto.TransferOrderResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/transfers/{id} [get]
func (h *TransferHandler) Get(c *fiber.Ctx) error {
	actor, ok := GetActor(c)
	if !ok {
		return unauthorized(c)
	}
	o, err := h.uc.GetTransfer(c.Context(), actor, c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.FromTransferOrder(o))
}

// Receive godoc
// @Summary      Recibir envío
// @Tags         transfers
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID de la orden"
// @Success      200  {object}  dto.TransferOrderResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/transfers/{id}/receive [post]
func (h *TransferHandler) Receive(c *fiber.Ctx) error {
	actor, ok := GetActor(c)
	if !ok {
		return unauthorized(c)
	}
	o, err := h.uc.ReceiveShipment(c.Context(), actor, c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.FromTransferOrder(o))
}

// Cancel godoc
// @Summary      Cancelar orden pendiente
// @Tags         transfers
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID de la orden"
// @Success      200  {object}  dto.TransferOrderResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/transfers/{id}/cancel [post]
func (h *TransferHandler) Cancel(c *fiber.Ctx) error {
	actor, ok := GetActor(c)
	if !ok {
		return unauthorized(c)
	}
	o, err := h.uc.CancelTransfer(c.Context(), actor, c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.FromTransferOrder(o))
}
