package logger_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Mantenimiento-api/pkg/logger"
)

func TestLoggerNil_DescartaSinPanico(t *testing.T) {
	var l *logger.Logger
	assert.NotPanics(t, func() {
		l.Info().Str("serial", "SN-1").Msg("descartado")
		l.Error().Msg("descartado")
	})

	c := l.Component("debt")
	require.NotNil(t, c)
	assert.NotPanics(t, func() { c.Warn().Msg("descartado") })
}

func TestComponent_SobreNop(t *testing.T) {
	c := logger.Nop().Component("transfer")
	require.NotNil(t, c)
	assert.NotPanics(t, func() { c.Debug().Int("items", 2).Msg("descartado") })
}
