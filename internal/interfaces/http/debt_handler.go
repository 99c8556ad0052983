package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Mantenimiento-api/internal/application/debt"
	"github.com/jhoicas/Mantenimiento-api/internal/application/dto"
)

// DebtHandler deudas entre sucursales y abonos (protegido).
type DebtHandler struct {
	uc *debt.UseCase
}

// NewDebtHandler construye el handler.
func NewDebtHandler(uc *debt.UseCase) *DebtHandler {
	return &DebtHandler{uc: uc}
}

// List godoc
// @Summary      Deudas donde la sucursal es deudora o acreedora
// @Tags         debts
// @Security     Bearer
// @Produce      json
// @Param        status  query  string  false  "PENDING, PENDING_PAYMENT o PAID"
// @Param        limit   query  int     false  "límite (máx 100)"
// @Param        offset  query  int     false  "desplazamiento"
// @Success      200  {array}  dto.DebtResponse
// @Router       /api/debts [get]
func (h *DebtHandler) List(c *fiber.Ctx) error {
	actor, ok := GetActor(c)
	if !ok {
		return unauthorized(c)
	}
	var in dto.DebtListRequest
	if err := c.QueryParser(&in); err != nil {
		return badQuery(c)
	}
	list, err := h.uc.ListDebts(c.Context(), actor, in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.FromDebts(list))
}

// Get godoc
// @Summary      Obtener deuda
// @Tags         debts
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID de la deuda"
// @Success      200  {object}  dto.DebtResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/debts/{id} [get]
func (h *DebtHandler) Get(c *fiber.Ctx) error {
	actor, ok := GetActor(c)
	if !ok {
		return unauthorized(c)
	}
	d, err := h.uc.GetDebt(c.Context(), actor, c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.FromDebt(d))
}

// ListPayments godoc
// @Summary      Abonos de una deuda
// @Tags         debts
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID de la deuda"
// @Success      200  {array}  dto.PaymentResponse
// @Router       /api/debts/{id}/payments [get]
func (h *DebtHandler) ListPayments(c *fiber.Ctx) error {
	actor, ok := GetActor(c)
	if !ok {
		return unauthorized(c)
	}
	list, err := h.uc.ListPayments(c.Context(), actor, c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	out := make([]*dto.PaymentResponse, 0, len(list))
	for _, p := range list {
		out = append(out, dto.FromPayment(p))
	}
	return c.JSON(out)
}

// RecordPayment godoc
// @Summary      Registrar abono
// @Description  El número de recibo es único en todo el sistema; el monto no puede superar el saldo.
// @Tags         debts
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                    true  "ID de la deuda"
// @Param        body  body  dto.RecordPaymentRequest  true  "amount, receipt_number"
// @Success      201   {object}  dto.RecordPaymentResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/debts/{id}/payments [post]
func (h *DebtHandler) RecordPayment(c *fiber.Ctx) error {
	actor, ok := GetActor(c)
	if !ok {
		return unauthorized(c)
	}
	var in dto.RecordPaymentRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	in.DebtID = c.Params("id")
	res, err := h.uc.RecordPayment(c.Context(), actor, in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.RecordPaymentResponse{
		Debt:    dto.FromDebt(res.Debt),
		Payment: dto.FromPayment(res.Payment),
	})
}
