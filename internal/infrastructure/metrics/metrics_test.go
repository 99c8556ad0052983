package metrics_test

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/Mantenimiento-api/internal/infrastructure/metrics"
)

func TestRecord_NilSafe(t *testing.T) {
	var m *metrics.Metrics
	assert.NotPanics(t, func() {
		m.RecordTransition("REPAIR", nil)
		m.RecordPayment()
		m.RecordDebtPosted(decimal.NewFromInt(10))
		m.RecordRollback()
	})
}

func TestRecord_Contadores(t *testing.T) {
	m := metrics.New("test")
	m.RecordTransition("REPAIR", nil)
	m.RecordTransition("REPAIR", errors.New("x"))
	m.RecordTransition("REPAIR", nil)
	m.RecordDebtPosted(decimal.RequireFromString("300.5"))
	m.RecordTransfer("RETURN", "received")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.MachineTransitions.WithLabelValues("REPAIR", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.MachineTransitions.WithLabelValues("REPAIR", "error")))
	assert.Equal(t, 300.5, testutil.ToFloat64(m.DebtAmountPosted))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.TransferOrders.WithLabelValues("RETURN", "received")))
}
