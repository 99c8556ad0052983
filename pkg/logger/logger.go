package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Config opciones para el logger.
type Config struct {
	Env     string // development -> consola legible; otro -> JSON
	Level   string // trace, debug, info, warn, error, fatal, disabled
	Service string // se agrega como campo "service" si no está vacío
}

// Logger wrapper sobre zerolog para inyección y consistencia.
// Un *Logger nil es válido y descarta todo.
type Logger struct {
	zl zerolog.Logger
}

// New crea un logger estructurado y lo instala como logger global de zerolog.
func New(cfg Config) *Logger {
	var w io.Writer = os.Stdout
	if cfg.Env == "development" {
		w = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.TimeOnly}
	}

	ctx := zerolog.New(w).Level(parseLevel(cfg.Level)).With().Timestamp()
	if cfg.Service != "" {
		ctx = ctx.Str("service", cfg.Service)
	}
	zl := ctx.Logger()

	// Redirigir el logger global de zerolog para librerías que lo usen
	log.Logger = zl

	return &Logger{zl: zl}
}

func parseLevel(s string) zerolog.Level {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(s)))
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lvl
}

// Nop devuelve un logger que descarta todo (tests y dependencias opcionales).
func Nop() *Logger {
	return &Logger{zl: zerolog.Nop()}
}

// Component sublogger con el campo "component"; sobre nil devuelve Nop.
func (l *Logger) Component(name string) *Logger {
	if l == nil {
		return Nop()
	}
	return &Logger{zl: l.zl.With().Str("component", name).Logger()}
}

func (l *Logger) get() *zerolog.Logger {
	if l == nil {
		nop := zerolog.Nop()
		return &nop
	}
	return &l.zl
}

func (l *Logger) Trace() *zerolog.Event { return l.get().Trace() }
func (l *Logger) Debug() *zerolog.Event { return l.get().Debug() }
func (l *Logger) Info() *zerolog.Event  { return l.get().Info() }
func (l *Logger) Warn() *zerolog.Event  { return l.get().Warn() }
func (l *Logger) Error() *zerolog.Event { return l.get().Error() }
func (l *Logger) Fatal() *zerolog.Event { return l.get().Fatal() }
