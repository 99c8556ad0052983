// Package metrics expone los contadores Prometheus del servicio de mantenimiento.
// Todos los métodos Record* aceptan un receptor nil para que los casos de uso
// funcionen sin métricas (tests, herramientas).
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"
)

// Metrics agrupa los colectores del servicio sobre un registry propio.
type Metrics struct {
	registry *prometheus.Registry

	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	MachineTransitions *prometheus.CounterVec
	ApprovalResponses  *prometheus.CounterVec
	StockMovements     *prometheus.CounterVec
	Settlements        *prometheus.CounterVec
	DebtsPosted        prometheus.Counter
	DebtAmountPosted   prometheus.Counter
	PaymentsRecorded   prometheus.Counter
	TransferOrders     *prometheus.CounterVec
	TxRollbacks        prometheus.Counter
}

// New crea el registry con los colectores estándar de Go y de proceso.
func New(namespace string) *Metrics {
	if namespace == "" {
		namespace = "mantenimiento"
	}
	registry := prometheus.NewRegistry()
	registry.MustRegister(prometheus.NewGoCollector())
	registry.MustRegister(prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}))

	m := &Metrics{registry: registry}

	m.HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)
	m.HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
		[]string{"method", "path"},
	)
	m.MachineTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "machine_transitions_total",
			Help:      "Machine state transitions by action and outcome",
		},
		[]string{"action", "outcome"},
	)
	m.ApprovalResponses = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "approval_responses_total",
			Help:      "Approval requests answered by status",
		},
		[]string{"status"},
	)
	m.StockMovements = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stock_movements_total",
			Help:      "Spare part stock movements by type",
		},
		[]string{"type"},
	)
	m.Settlements = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "settlements_total",
			Help:      "Repair settlements by outcome",
		},
		[]string{"outcome"},
	)
	m.DebtsPosted = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "debts_posted_total",
		Help:      "Inter-branch debts created or increased",
	})
	m.DebtAmountPosted = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "debt_amount_posted_total",
		Help:      "Sum of amounts posted to inter-branch debts",
	})
	m.PaymentsRecorded = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "debt_payments_total",
		Help:      "Debt payments recorded",
	})
	m.TransferOrders = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transfer_orders_total",
			Help:      "Transfer order lifecycle events by type and event",
		},
		[]string{"type", "event"},
	)
	m.TxRollbacks = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "tx_rollbacks_total",
		Help:      "Business transactions rolled back",
	})

	registry.MustRegister(
		m.HTTPRequestsTotal, m.HTTPRequestDuration, m.MachineTransitions, m.ApprovalResponses,
		m.StockMovements, m.Settlements, m.DebtsPosted, m.DebtAmountPosted, m.PaymentsRecorded,
		m.TransferOrders, m.TxRollbacks,
	)
	return m
}

// Handler devuelve el handler HTTP de /metrics.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{EnableOpenMetrics: true})
}

// Registry devuelve el registry (tests).
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// RecordHTTPRequest registra una petición HTTP.
func (m *Metrics) RecordHTTPRequest(method, path string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(d.Seconds())
}

// RecordTransition registra una transición de máquina.
func (m *Metrics) RecordTransition(action string, err error) {
	if m == nil {
		return
	}
	m.MachineTransitions.WithLabelValues(action, outcome(err)).Inc()
}

// RecordApprovalResponse registra la respuesta a una aprobación.
func (m *Metrics) RecordApprovalResponse(status string) {
	if m == nil {
		return
	}
	m.ApprovalResponses.WithLabelValues(status).Inc()
}

// RecordStockMovement registra un movimiento de stock.
func (m *Metrics) RecordStockMovement(movementType string) {
	if m == nil {
		return
	}
	m.StockMovements.WithLabelValues(movementType).Inc()
}

// RecordSettlement registra el resultado de una liquidación.
func (m *Metrics) RecordSettlement(err error) {
	if m == nil {
		return
	}
	m.Settlements.WithLabelValues(outcome(err)).Inc()
}

// RecordDebtPosted registra una deuda creada o incrementada.
func (m *Metrics) RecordDebtPosted(amount decimal.Decimal) {
	if m == nil {
		return
	}
	m.DebtsPosted.Inc()
	m.DebtAmountPosted.Add(amount.InexactFloat64())
}

// RecordPayment registra un abono.
func (m *Metrics) RecordPayment() {
	if m == nil {
		return
	}
	m.PaymentsRecorded.Inc()
}

// RecordTransfer registra un evento de orden de traslado (created, received, cancelled).
func (m *Metrics) RecordTransfer(orderType, event string) {
	if m == nil {
		return
	}
	m.TransferOrders.WithLabelValues(orderType, event).Inc()
}

// RecordRollback registra una transacción abortada.
func (m *Metrics) RecordRollback() {
	if m == nil {
		return
	}
	m.TxRollbacks.Inc()
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
