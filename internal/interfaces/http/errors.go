package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Mantenimiento-api/internal/application/dto"
	"github.com/jhoicas/Mantenimiento-api/internal/domain"
)

var statusByKind = map[domain.Kind]int{
	domain.KindValidation:        fiber.StatusBadRequest,
	domain.KindNotFound:          fiber.StatusNotFound,
	domain.KindForbidden:         fiber.StatusForbidden,
	domain.KindInvalidTransition: fiber.StatusConflict,
	domain.KindInsufficientStock: fiber.StatusConflict,
	domain.KindDuplicateReceipt:  fiber.StatusConflict,
	domain.KindConflict:          fiber.StatusConflict,
	domain.KindInfrastructure:    fiber.StatusInternalServerError,
}

// writeError traduce un error de dominio a status + ErrorResponse. Los errores de
// infraestructura no exponen el detalle interno.
func writeError(c *fiber.Ctx, err error) error {
	kind := domain.KindOf(err)
	status, ok := statusByKind[kind]
	if !ok {
		status = fiber.StatusInternalServerError
	}
	resp := dto.ErrorResponse{Code: domain.CodeOf(err), Kind: string(kind), Message: "error interno"}
	var de *domain.Error
	if kind != domain.KindInfrastructure && errors.As(err, &de) {
		resp.Message = de.Message
	}
	if status == fiber.StatusInternalServerError {
		c.Locals(localError, err)
	}
	return c.Status(status).JSON(resp)
}

func badBody(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
		Code: "INVALID_BODY", Kind: string(domain.KindValidation), Message: "cuerpo inválido",
	})
}

func badQuery(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
		Code: "INVALID_QUERY", Kind: string(domain.KindValidation), Message: "parámetros de consulta inválidos",
	})
}

func unauthorized(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
}
