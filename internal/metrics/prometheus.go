package metrics

import (
	"fmt"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/hamed0406/cronbeat/heartbeat"
)

// Prometheus implements heartbeat.Metrics.
type Prometheus struct {
	requests *prometheus.CounterVec
	latency  *prometheus.HistogramVec
	outcomes *prometheus.CounterVec
	lastRun  prometheus.Gauge
	now      func() time.Time
}

var _ heartbeat.Metrics = (*Prometheus)(nil)

// NewPrometheus registers the collectors on reg (prometheus.DefaultRegisterer
// if nil). namespace defaults to "cronbeat".
func NewPrometheus(reg prometheus.Registerer, namespace string) (*Prometheus, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	if namespace == "" {
		namespace = "cronbeat"
	}

	p := &Prometheus{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_total",
			Help:      "Outbound monitoring requests by call and HTTP status (0 = no answer).",
		}, []string{"call", "code"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "request_duration_seconds",
			Help:      "Outbound monitoring request latency by call.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"call"}),
		outcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "outcomes_total",
			Help:      "Monitor runs by outcome.",
		}, []string{"outcome"}),
		lastRun: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time of the last Monitor run.",
		}),
		now: time.Now,
	}

	for _, c := range []prometheus.Collector{p.requests, p.latency, p.outcomes, p.lastRun} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("register metrics: %w", err)
		}
	}
	return p, nil
}

func (p *Prometheus) ObserveRequest(call string, statusCode int, elapsed time.Duration) {
	p.requests.WithLabelValues(call, strconv.Itoa(statusCode)).Inc()
	p.latency.WithLabelValues(call).Observe(elapsed.Seconds())
}

func (p *Prometheus) ObserveOutcome(outcome heartbeat.Outcome) {
	p.outcomes.WithLabelValues(string(outcome)).Inc()
	p.lastRun.Set(float64(p.now().Unix()))
}

// WriteTextfile writes g in the node_exporter textfile collector format.
func WriteTextfile(path string, g prometheus.Gatherer) error {
	if err := prometheus.WriteToTextfile(path, g); err != nil {
		return fmt.Errorf("write metrics textfile %s: %w", path, err)
	}
	return nil
}
