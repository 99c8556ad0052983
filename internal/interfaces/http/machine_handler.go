package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Mantenimiento-api/internal/application/dto"
	"github.com/jhoicas/Mantenimiento-api/internal/application/maintenance"
)

// MachineHandler ciclo de vida de máquinas (protegido).
type MachineHandler struct {
	svc *maintenance.Service
}

// NewMachineHandler construye el handler.
func NewMachineHandler(svc *maintenance.Service) *MachineHandler {
	return &MachineHandler{svc: svc}
}

// RegisterIntake godoc
// @Summary      Registrar ingreso de máquina
// @Tags         machines
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RegisterIntakeRequest  true  "serial_number, branch_id, origin_branch_id"
// @Success      201   {object}  dto.MachineResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/machines [post]
func (h *MachineHandler) RegisterIntake(c *fiber.Ctx) error {
	actor, ok := GetActor(c)
	if !ok {
		return unauthorized(c)
	}
	var in dto.RegisterIntakeRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	m, err := h.svc.RegisterIntake(c.Context(), actor, in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.FromMachine(m))
}

// List godoc
// @Summary      Listar máquinas del alcance
// @Tags         machines
// @Security     Bearer
// @Produce      json
// @Param        status     query  string  false  "estado"
// @Param        branch_id  query  string  false  "sucursal custodia"
// @Param        limit      query  int     false  "límite (máx 100)"
// @Param        offset     query  int     false  "desplazamiento"
// @Success      200  {array}   dto.MachineResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/machines [get]
func (h *MachineHandler) List(c *fiber.Ctx) error {
	actor, ok := GetActor(c)
	if !ok {
		return unauthorized(c)
	}
	var in dto.MachineListRequest
	if err := c.QueryParser(&in); err != nil {
		return badQuery(c)
	}
	list, err := h.svc.ListMachines(c.Context(), actor, in)
	if err != nil {
		return writeError(c, err)
	}
	out := make([]*dto.MachineResponse, 0, len(list))
	for _, m := range list {
		out = append(out, dto.FromMachine(m))
	}
	return c.JSON(out)
}

// Get godoc
// @Summary      Obtener máquina por número de serie
// @Tags         machines
// @Security     Bearer
// @Produce      json
// @Param        serial  path  string  true  "número de serie"
// @Success      200  {object}  dto.MachineResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/machines/{serial} [get]
func (h *MachineHandler) Get(c *fiber.Ctx) error {
	actor, ok := GetActor(c)
	if !ok {
		return unauthorized(c)
	}
	m, err := h.svc.GetMachine(c.Context(), actor, c.Params("serial"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.FromMachine(m))
}

// History godoc
// @Summary      Historial de movimientos de la máquina
// @Tags         machines
// @Security     Bearer
// @Produce      json
// @Param        serial  path  string  true  "número de serie"
// @Success      200  {array}   dto.MachineMovementResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/machines/{serial}/history [get]
func (h *MachineHandler) History(c *fiber.Ctx) error {
	actor, ok := GetActor(c)
	if !ok {
		return unauthorized(c)
	}
	list, err := h.svc.MachineHistory(c.Context(), actor, c.Params("serial"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.FromMachineMovements(list))
}

// Transition godoc
// @Summary      Aplicar una acción del ciclo de vida
// @Description  INSPECT, REQUEST_APPROVAL, REPAIR, SCRAP, RETURN_AS_IS, MARK_READY_FOR_RETURN.
// @Tags         machines
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        serial  path  string                 true  "número de serie"
// @Param        body    body  dto.TransitionRequest  true  "acción y repuestos"
// @Success      200  {object}  dto.TransitionResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/machines/{serial}/transitions [post]
func (h *MachineHandler) Transition(c *fiber.Ctx) error {
	actor, ok := GetActor(c)
	if !ok {
		return unauthorized(c)
	}
	var in dto.TransitionRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	res, err := h.svc.TransitionMachine(c.Context(), actor, c.Params("serial"), in)
	if err != nil {
		return writeError(c, err)
	}
	out := dto.TransitionResponse{Machine: dto.FromMachine(res.Machine)}
	if res.Approval != nil {
		out.Approval = dto.FromApproval(res.Approval)
	}
	if res.Debt != nil {
		out.Debt = dto.FromDebt(res.Debt)
	}
	return c.JSON(out)
}

// SetLocation godoc
// @Summary      Cambio manual de ubicación
// @Tags         machines
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        serial  path  string                  true  "número de serie"
// @Param        body    body  dto.SetLocationRequest  true  "INTAKE, AT_CENTER, CLIENT_REPAIR o EXTERNAL_REPAIR"
// @Success      200  {object}  dto.MachineResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/machines/{serial}/location [put]
func (h *MachineHandler) SetLocation(c *fiber.Ctx) error {
	actor, ok := GetActor(c)
	if !ok {
		return unauthorized(c)
	}
	var in dto.SetLocationRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	m, err := h.svc.SetLocationStatus(c.Context(), actor, c.Params("serial"), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.FromMachine(m))
}

// Remove godoc
// @Summary      Eliminar máquina (solo INTAKE o COMPLETED)
// @Tags         machines
// @Security     Bearer
// @Param        serial  path  string  true  "número de serie"
// @Success      204
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/machines/{serial} [delete]
func (h *MachineHandler) Remove(c *fiber.Ctx) error {
	actor, ok := GetActor(c)
	if !ok {
		return unauthorized(c)
	}
	if err := h.svc.RemoveMachine(c.Context(), actor, c.Params("serial")); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
