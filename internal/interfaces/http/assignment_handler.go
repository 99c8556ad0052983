package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Mantenimiento-api/internal/application/dto"
	"github.com/jhoicas/Mantenimiento-api/internal/application/maintenance"
)

// AssignmentHandler asignaciones de servicio y flujo de aprobación (protegido).
type AssignmentHandler struct {
	svc *maintenance.Service
}

// NewAssignmentHandler construye el handler.
func NewAssignmentHandler(svc *maintenance.Service) *AssignmentHandler {
	return &AssignmentHandler{svc: svc}
}

// Create godoc
// @Summary      Asignar técnico a una máquina
// @Tags         assignments
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateAssignmentRequest  true  "serial_number, technician_id"
// @Success      201   {object}  dto.AssignmentResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/assignments [post]
func (h *AssignmentHandler) Create(c *fiber.Ctx) error {
	actor, ok := GetActor(c)
	if !ok {
		return unauthorized(c)
	}
	var in dto.CreateAssignmentRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	a, err := h.svc.CreateAssignment(c.Context(), actor, in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.FromAssignment(a))
}

// ListOpen godoc
// @Summary      Asignaciones abiertas del centro
// @Tags         assignments
// @Security     Bearer
// @Produce      json
// @Param        limit   query  int  false  "límite (máx 100)"
// @Param        offset  query  int  false  "desplazamiento"
// @Success      200  {array}  dto.AssignmentResponse
// @Router       /api/assignments [get]
func (h *AssignmentHandler) ListOpen(c *fiber.Ctx) error {
	actor, ok := GetActor(c)
	if !ok {
		return unauthorized(c)
	}
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return badQuery(c)
	}
	list, err := h.svc.ListOpenAssignments(c.Context(), actor, page)
	if err != nil {
		return writeError(c, err)
	}
	out := make([]*dto.AssignmentResponse, 0, len(list))
	for _, a := range list {
		out = append(out, dto.FromAssignment(a))
	}
	return c.JSON(out)
}

// Start godoc
// @Summary      Iniciar mantenimiento
// @Tags         assignments
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID de la asignación"
// @Success      200  {object}  dto.AssignmentResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/assignments/{id}/start [post]
func (h *AssignmentHandler) Start(c *fiber.Ctx) error {
	actor, ok := GetActor(c)
	if !ok {
		return unauthorized(c)
	}
	a, err := h.svc.StartAssignment(c.Context(), actor, c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.FromAssignment(a))
}

// Cancel godoc
// @Summary      Cancelar asignación abierta
// @Tags         assignments
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID de la asignación"
// @Success      200  {object}  dto.AssignmentResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/assignments/{id}/cancel [post]
func (h *AssignmentHandler) Cancel(c *fiber.Ctx) error {
	actor, ok := GetActor(c)
	if !ok {
		return unauthorized(c)
	}
	a, err := h.svc.CancelAssignment(c.Context(), actor, c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.FromAssignment(a))
}

func completion(res *maintenance.CompletionResult) dto.CompletionResponse {
	out := dto.CompletionResponse{
		Assignment: dto.FromAssignment(res.Assignment),
		Machine:    dto.FromMachine(res.Machine),
	}
	if res.Debt != nil {
		out.Debt = dto.FromDebt(res.Debt)
	}
	return out
}

// CompleteDirect godoc
// @Summary      Completar reparación sin aprobación previa
// @Description  Descuenta stock del centro y, si la máquina es de otra sucursal, registra la deuda.
// @Tags         assignments
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                     true  "ID de la asignación"
// @Param        body  body  dto.CompleteDirectRequest  true  "repuestos usados"
// @Success      200   {object}  dto.CompletionResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/assignments/{id}/complete-direct [post]
func (h *AssignmentHandler) CompleteDirect(c *fiber.Ctx) error {
	actor, ok := GetActor(c)
	if !ok {
		return unauthorized(c)
	}
	var in dto.CompleteDirectRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	in.AssignmentID = c.Params("id")
	res, err := h.svc.CompleteDirect(c.Context(), actor, in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(completion(res))
}

// CompleteAfterApproval godoc
// @Summary      Completar reparación con la cotización aprobada
// @Tags         assignments
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                            true   "ID de la asignación"
// @Param        body  body  dto.CompleteAfterApprovalRequest  false  "notas"
// @Success      200   {object}  dto.CompletionResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/assignments/{id}/complete-after-approval [post]
func (h *AssignmentHandler) CompleteAfterApproval(c *fiber.Ctx) error {
	actor, ok := GetActor(c)
	if !ok {
		return unauthorized(c)
	}
	var in dto.CompleteAfterApprovalRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&in); err != nil {
			return badBody(c)
		}
	}
	in.AssignmentID = c.Params("id")
	res, err := h.svc.CompleteAfterApproval(c.Context(), actor, in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(completion(res))
}

// RequestApproval godoc
// @Summary      Solicitar aprobación de cotización a la sucursal de origen
// @Tags         approvals
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RequestApprovalRequest  true  "assignment_id, parts, proposed_total"
// @Success      201   {object}  dto.ApprovalResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/approvals [post]
func (h *AssignmentHandler) RequestApproval(c *fiber.Ctx) error {
	actor, ok := GetActor(c)
	if !ok {
		return unauthorized(c)
	}
	var in dto.RequestApprovalRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	a, err := h.svc.RequestApproval(c.Context(), actor, in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.FromApproval(a))
}

// ListPendingApprovals godoc
// @Summary      Aprobaciones pendientes del alcance
// @Tags         approvals
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.ApprovalResponse
// @Router       /api/approvals/pending [get]
func (h *AssignmentHandler) ListPendingApprovals(c *fiber.Ctx) error {
	actor, ok := GetActor(c)
	if !ok {
		return unauthorized(c)
	}
	list, err := h.svc.ListPendingApprovals(c.Context(), actor)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.FromApprovals(list))
}

// RespondApproval godoc
// @Summary      Aprobar o rechazar una cotización
// @Tags         approvals
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                      true  "ID de la aprobación"
// @Param        body  body  dto.RespondApprovalRequest  true  "APPROVED o REJECTED (+ motivo)"
// @Success      200   {object}  dto.RespondApprovalResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/approvals/{id}/respond [post]
func (h *AssignmentHandler) RespondApproval(c *fiber.Ctx) error {
	actor, ok := GetActor(c)
	if !ok {
		return unauthorized(c)
	}
	var in dto.RespondApprovalRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	res, err := h.svc.RespondApproval(c.Context(), actor, c.Params("id"), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.RespondApprovalResponse{
		Approval:   dto.FromApproval(res.Approval),
		Assignment: dto.FromAssignment(res.Assignment),
	})
}
