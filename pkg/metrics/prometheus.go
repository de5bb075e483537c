package metrics

/* adapted from https://github.com/zsais/go-gin-prometheus
edits:
- logger interface satisfied by *zap.SugaredLogger
- no push gateway, no basic auth variant
- "source" label is the authenticated integration source instead of the referer
- dedicated listener is an http.Server that can be shut down
*/

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var reqCnt = &Metric{
	ID:          "reqCnt",
	Name:        "req_total",
	Description: "How many HTTP requests processed, partitioned by status code and HTTP method.",
	Type:        "counter_vec",
	Args:        []string{"code", "method", "url", "source"}}

var reqDur = &Metric{
	ID:          "reqDur",
	Name:        "req_dur_ms",
	Description: "The HTTP request latencies in milliseconds.",
	Type:        "histogram_vec",
	Args:        []string{"code", "method", "url", "source"},
}

var resSz = &Metric{
	ID:          "resSz",
	Name:        "resp_sz_bytes",
	Description: "The HTTP response sizes in bytes.",
	Type:        "summary_vec",
	Args:        []string{"code", "method", "url", "source"},
}

var reqSz = &Metric{
	ID:          "reqSz",
	Name:        "req_sz_bytes",
	Description: "The HTTP request sizes in bytes.",
	Type:        "summary_vec",
	Args:        []string{"code", "method", "url", "source"},
}

var defaultMetricPath = "/metrics"

type Logger interface {
	Error(v ...interface{})
	Errorf(format string, v ...interface{})
}

// RequestCounterURLLabelMappingFn controls the cardinality of the "url" label,
// e.g. mapping /state_changes/42 to its route template.
type RequestCounterURLLabelMappingFn func(c *gin.Context) string

// Prometheus contains the metrics gathered by the instance and its path
type Prometheus struct {
	reqCnt        *prometheus.CounterVec
	reqDur        *prometheus.HistogramVec
	reqSz, resSz  *prometheus.SummaryVec
	router        *gin.Engine
	listenAddress string
	srv           *http.Server

	MetricsList []*Metric
	MetricsPath string

	ReqCntURLLabelMappingFn RequestCounterURLLabelMappingFn
	// SourceLabelFn names the caller; requests that never passed the token
	// gate are reported as AnonymousSource.
	SourceLabelFn func(c *gin.Context) string

	logger Logger
}

const AnonymousSource = "anonymous"

type NewPrometheusOptions struct {
	Subsystem               string
	MetricsPath             string
	ReqCntURLLabelMappingFn func(c *gin.Context) string
	SourceLabelFn           func(c *gin.Context) string
	Logger                  Logger
}

// NewPrometheus generates the standard HTTP metrics under the given subsystem.
func NewPrometheus(options NewPrometheusOptions) *Prometheus {
	p := &Prometheus{
		MetricsList: []*Metric{reqCnt, reqDur, resSz, reqSz},
		MetricsPath: defaultMetricPath,
		logger:      options.Logger,
	}
	if options.MetricsPath != "" {
		p.MetricsPath = options.MetricsPath
	}
	if options.ReqCntURLLabelMappingFn != nil {
		p.ReqCntURLLabelMappingFn = options.ReqCntURLLabelMappingFn
	} else {
		p.ReqCntURLLabelMappingFn = func(c *gin.Context) string {
			return c.Request.URL.Path
		}
	}
	p.SourceLabelFn = options.SourceLabelFn
	if p.SourceLabelFn == nil {
		p.SourceLabelFn = func(*gin.Context) string { return AnonymousSource }
	}
	p.registerMetrics(options.Subsystem)
	return p
}

// SetListenAddress exposes metrics on a dedicated address. If not set, they are
// exposed on the engine passed to Use.
func (p *Prometheus) SetListenAddress(address string) {
	p.listenAddress = address
	if p.listenAddress != "" {
		p.router = gin.New()
	}
}

func (p *Prometheus) setMetricsPath(e *gin.Engine) {
	if p.listenAddress != "" {
		p.router.GET(p.MetricsPath, prometheusHandler())
		p.runServer()
		return
	}
	e.GET(p.MetricsPath, prometheusHandler())
}

func (p *Prometheus) runServer() {
	p.srv = &http.Server{Addr: p.listenAddress, Handler: p.router, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := p.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) && p.logger != nil {
			p.logger.Errorf("metrics server stopped: %v", err)
		}
	}()
}

// Shutdown stops the dedicated metrics listener, if one was started.
func (p *Prometheus) Shutdown(ctx context.Context) error {
	if p.srv == nil {
		return nil
	}
	return p.srv.Shutdown(ctx)
}

func (p *Prometheus) registerMetrics(subsystem string) {
	for _, metricDef := range p.MetricsList {
		metric := NewMetric(metricDef, subsystem)
		if err := prometheus.Register(metric); err != nil {
			var are prometheus.AlreadyRegisteredError
			if errors.As(err, &are) {
				metric = are.ExistingCollector
			} else if p.logger != nil {
				p.logger.Errorf("%s could not be registered in Prometheus, err=%v", metricDef.Name, err)
			}
		}
		switch metricDef {
		case reqCnt:
			p.reqCnt = metric.(*prometheus.CounterVec)
		case reqDur:
			p.reqDur = metric.(*prometheus.HistogramVec)
		case resSz:
			p.resSz = metric.(*prometheus.SummaryVec)
		case reqSz:
			p.reqSz = metric.(*prometheus.SummaryVec)
		}
		metricDef.MetricCollector = metric
	}
}

// Use adds the middleware to a gin engine.
func (p *Prometheus) Use(e *gin.Engine) {
	e.Use(p.HandlerFunc())
	p.setMetricsPath(e)
}

// HandlerFunc defines handler function for middleware
func (p *Prometheus) HandlerFunc() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.URL.Path == p.MetricsPath {
			c.Next()
			return
		}

		start := time.Now()
		reqSz := computeApproximateRequestSize(c.Request)

		c.Next()

		status := strconv.Itoa(c.Writer.Status())
		elapsed := MillisecondsSince(start)
		resSz := float64(c.Writer.Size())
		url := p.ReqCntURLLabelMappingFn(c)
		source := p.SourceLabelFn(c)
		if source == "" {
			source = AnonymousSource
		}

		p.reqDur.WithLabelValues(status, c.Request.Method, url, source).Observe(elapsed)
		p.reqCnt.WithLabelValues(status, c.Request.Method, url, source).Inc()
		p.reqSz.WithLabelValues(status, c.Request.Method, url, source).Observe(float64(reqSz))
		p.resSz.WithLabelValues(status, c.Request.Method, url, source).Observe(resSz)
	}
}

func prometheusHandler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}

// MillisecondsSince returns the elapsed time since start in fractional milliseconds.
func MillisecondsSince(start time.Time) float64 {
	return float64(time.Since(start)) / float64(time.Millisecond)
}

// computeApproximateRequestSize sums method, URL, proto, headers, host and body length.
func computeApproximateRequestSize(r *http.Request) int {
	s := 0
	if r.URL != nil {
		s = len(r.URL.Path)
	}
	s += len(r.Method)
	s += len(r.Proto)
	for name, values := range r.Header {
		s += len(name)
		for _, value := range values {
			s += len(value)
		}
	}
	s += len(r.Host)
	if r.ContentLength != -1 {
		s += int(r.ContentLength)
	}
	return s
}
