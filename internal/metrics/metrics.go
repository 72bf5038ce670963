package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns a private registry so tests and several terminals in one process never collide.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	Registry *prometheus.Registry

	eventsReceived  *prometheus.CounterVec
	eventsDropped   *prometheus.CounterVec
	connected       prometheus.Gauge
	reconnects      prometheus.Counter
	betOutcomes     *prometheus.CounterVec
	printJobs       *prometheus.CounterVec
	printQueueLen   prometheus.Gauge
	restLatency     *prometheus.HistogramVec
	loopQueueLength prometheus.Gauge
}

func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		eventsReceived: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "terminal_events_received_total",
			Help: "Inbound transport events by name.",
		}, []string{"event"}),
		eventsDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "terminal_events_dropped_total",
			Help: "Inbound events discarded by the reconciler, by reason.",
		}, []string{"reason"}),
		connected: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "terminal_transport_connected",
			Help: "1 while the game server connection is up.",
		}),
		reconnects: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "terminal_transport_reconnects_total",
			Help: "Reconnect attempts after a dropped or failed connection.",
		}),
		betOutcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "terminal_bet_placements_total",
			Help: "Bet placement exchanges by outcome.",
		}, []string{"outcome"}),
		printJobs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "terminal_print_jobs_total",
			Help: "Print agent jobs by outcome.",
		}, []string{"outcome"}),
		printQueueLen: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "terminal_print_queue_len",
			Help: "Jobs waiting for a print worker.",
		}),
		restLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "terminal_rest_request_seconds",
			Help:    "Game server REST latency by operation and status class.",
			Buckets: prometheus.DefBuckets,
		}, []string{"op", "status"}),
		loopQueueLength: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "terminal_inbox_len",
			Help: "Messages waiting for the reconciler loop.",
		}),
	}
	m.Registry.MustRegister(
		m.eventsReceived, m.eventsDropped, m.connected, m.reconnects,
		m.betOutcomes, m.printJobs, m.printQueueLen, m.restLatency, m.loopQueueLength,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}

func (m *Metrics) EventReceived(name string) {
	if m == nil {
		return
	}
	m.eventsReceived.WithLabelValues(name).Inc()
}

func (m *Metrics) EventDropped(reason string) {
	if m == nil {
		return
	}
	m.eventsDropped.WithLabelValues(reason).Inc()
}

func (m *Metrics) SetConnected(up bool) {
	if m == nil {
		return
	}
	if up {
		m.connected.Set(1)
		return
	}
	m.connected.Set(0)
}

func (m *Metrics) Reconnect() {
	if m == nil {
		return
	}
	m.reconnects.Inc()
}

func (m *Metrics) BetOutcome(outcome string) {
	if m == nil {
		return
	}
	m.betOutcomes.WithLabelValues(outcome).Inc()
}

func (m *Metrics) PrintJob(outcome string) {
	if m == nil {
		return
	}
	m.printJobs.WithLabelValues(outcome).Inc()
}

func (m *Metrics) PrintQueue(n int) {
	if m == nil {
		return
	}
	m.printQueueLen.Set(float64(n))
}

func (m *Metrics) InboxLen(n int) {
	if m == nil {
		return
	}
	m.loopQueueLength.Set(float64(n))
}

func (m *Metrics) ObserveREST(op string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.restLatency.WithLabelValues(op, statusClass(status)).Observe(d.Seconds())
}

func statusClass(status int) string {
	switch {
	case status == 0:
		return "error"
	case status < 300:
		return "2xx"
	case status < 400:
		return "3xx"
	case status < 500:
		return "4xx"
	default:
		return "5xx"
	}
}
