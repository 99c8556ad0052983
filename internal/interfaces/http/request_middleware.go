package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Mantenimiento-api/internal/infrastructure/metrics"
	"github.com/jhoicas/Mantenimiento-api/pkg/logger"
)

// localError error interno que writeError deja para el log de la petición.
const localError = "request_error"

// RequestLogger registra una línea por petición con status, latencia y actor.
// También alimenta las métricas HTTP; m puede ser nil.
func RequestLogger(log *logger.Logger, m *metrics.Metrics) fiber.Handler {
	log = log.Component("http")
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		if err != nil {
			// deja que el ErrorHandler de fiber fije el status antes de medir
			if herr := c.App().ErrorHandler(c, err); herr != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}
		elapsed := time.Since(start)
		status := c.Response().StatusCode()
		path := c.Route().Path

		m.RecordHTTPRequest(c.Method(), path, status, elapsed)

		ev := log.Info()
		if status >= fiber.StatusInternalServerError {
			ev = log.Error()
			if cause, ok := c.Locals(localError).(error); ok {
				ev = ev.Err(cause)
			} else if err != nil {
				ev = ev.Err(err)
			}
		}
		ev = ev.Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", status).
			Dur("latency", elapsed)
		if actor, ok := GetActor(c); ok {
			ev = ev.Str("user", actor.UserID).Str("branch", actor.BranchID)
		}
		ev.Msg("http")
		return nil
	}
}
