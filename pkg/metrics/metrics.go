package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var HistogramBuckets = []float64{
	// --- Fast responses (0 - 500ms) ---
	5, 10, 25, 50, 75, 100, 150, 200, 300, 400, 500,

	// --- Medium responses (500ms - 2s) ---
	750, 1000, 1500, 2000,

	// --- Slow responses (2s - 30s) ---
	3000, 5000, 10000, 30000,
}

// Metric is a definition for the name, description, type, ID, and
// prometheus.Collector type (i.e. CounterVec, Summary, etc) of each metric
type Metric struct {
	MetricCollector prometheus.Collector
	ID              string
	Name            string
	Description     string
	Type            string
	Args            []string
}

// NewMetric associates prometheus.Collector based on Metric.Type
func NewMetric(m *Metric, subsystem string) prometheus.Collector {
	var metric prometheus.Collector
	switch m.Type {
	case "counter_vec":
		metric = prometheus.NewCounterVec(
			prometheus.CounterOpts{Subsystem: subsystem, Name: m.Name, Help: m.Description},
			m.Args,
		)
	case "counter":
		metric = prometheus.NewCounter(
			prometheus.CounterOpts{Subsystem: subsystem, Name: m.Name, Help: m.Description},
		)
	case "gauge_vec":
		metric = prometheus.NewGaugeVec(
			prometheus.GaugeOpts{Subsystem: subsystem, Name: m.Name, Help: m.Description},
			m.Args,
		)
	case "gauge":
		metric = prometheus.NewGauge(
			prometheus.GaugeOpts{Subsystem: subsystem, Name: m.Name, Help: m.Description},
		)
	case "histogram_vec":
		metric = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{Subsystem: subsystem, Name: m.Name, Help: m.Description, Buckets: HistogramBuckets},
			m.Args,
		)
	case "histogram":
		metric = prometheus.NewHistogram(
			prometheus.HistogramOpts{Subsystem: subsystem, Name: m.Name, Help: m.Description, Buckets: HistogramBuckets},
		)
	case "summary_vec":
		metric = prometheus.NewSummaryVec(
			prometheus.SummaryOpts{Subsystem: subsystem, Name: m.Name, Help: m.Description},
			m.Args,
		)
	case "summary":
		metric = prometheus.NewSummary(
			prometheus.SummaryOpts{Subsystem: subsystem, Name: m.Name, Help: m.Description},
		)
	}
	return metric
}

const businessSubsystem = "perito"

var MetricsBusinessProcess = &Metric{
	ID:          "bpDur",
	Name:        "bp_dur",
	Description: "process latency in milliseconds",
	Type:        "histogram_vec",
	Args:        []string{"type", "subtype"},
}

var MetricsRateLimitDecision = &Metric{
	ID:          "rlDecision",
	Name:        "rate_limit_decisions_total",
	Description: "Rate limiter decisions, partitioned by store and result.",
	Type:        "counter_vec",
	Args:        []string{"store", "result"},
}

var MetricsStateChangeRecorded = &Metric{
	ID:          "scRecorded",
	Name:        "state_changes_recorded_total",
	Description: "Inspection state change rows written, partitioned by change type.",
	Type:        "counter_vec",
	Args:        []string{"change_type"},
}

var businessMetrics = []*Metric{
	MetricsBusinessProcess,
	MetricsRateLimitDecision,
	MetricsStateChangeRecorded,
}

var (
	bpDur            = NewMetric(MetricsBusinessProcess, businessSubsystem).(*prometheus.HistogramVec)
	rlDecisions      = NewMetric(MetricsRateLimitDecision, businessSubsystem).(*prometheus.CounterVec)
	scRecorded       = NewMetric(MetricsStateChangeRecorded, businessSubsystem).(*prometheus.CounterVec)
	businessByMetric = map[*Metric]prometheus.Collector{
		MetricsBusinessProcess:     bpDur,
		MetricsRateLimitDecision:   rlDecisions,
		MetricsStateChangeRecorded: scRecorded,
	}
)

var registerOnce sync.Once

// RegisterBusinessMetrics registers the business collectors with the default
// registry. Safe to call more than once.
func RegisterBusinessMetrics(logger Logger) {
	registerOnce.Do(func() {
		for _, m := range businessMetrics {
			c := businessByMetric[m]
			if err := prometheus.Register(c); err != nil && logger != nil {
				logger.Errorf("%s could not be registered in Prometheus, err=%v", m.Name, err)
			}
			m.MetricCollector = c
		}
	})
}

// ObserveBusinessProcess records the latency of a business step started at start.
func ObserveBusinessProcess(typ, subtype string, start time.Time) {
	bpDur.WithLabelValues(typ, subtype).Observe(MillisecondsSince(start))
}

func IncRateLimitDecision(store string, allowed bool) {
	result := "allowed"
	if !allowed {
		result = "rejected"
	}
	rlDecisions.WithLabelValues(store, result).Inc()
}

func IncStateChangeRecorded(changeType string) {
	scRecorded.WithLabelValues(changeType).Inc()
}
