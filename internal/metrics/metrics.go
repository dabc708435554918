package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/nikitakharat907-ai/emotiondetector/internal/emotion"
)

const namespace = "emotion"

// Collector owns a private registry so tests can create as many as they like.
type Collector struct {
	registry *prometheus.Registry

	Classifications   *prometheus.CounterVec
	ClassifyDuration  prometheus.Histogram
	SpellingFallbacks prometheus.Counter
	HTTPRequests      *prometheus.CounterVec
	HTTPDuration      *prometheus.HistogramVec
	LiveClients       prometheus.Gauge
}

func NewCollector() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		Classifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "classifications_total",
			Help:      "Classified texts by resulting emotion.",
		}, []string{"emotion"}),
		ClassifyDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "classify_duration_seconds",
			Help:      "Time spent normalizing and scoring one text.",
			Buckets:   []float64{.0001, .0005, .001, .005, .01, .05, .1, .5},
		}),
		SpellingFallbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "spelling_fallbacks_total",
			Help:      "Spelling corrections abandoned in favour of the original text.",
		}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		LiveClients: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "live_clients",
			Help:      "Connected websocket clients.",
		}),
	}

	c.registry.MustRegister(
		c.Classifications,
		c.ClassifyDuration,
		c.SpellingFallbacks,
		c.HTTPRequests,
		c.HTTPDuration,
		c.LiveClients,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return c
}

func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// SpellingFallback matches emotion.Normalizer.Fallback.
func (c *Collector) SpellingFallback(error) {
	c.SpellingFallbacks.Inc()
}

// Middleware records request counts and latency keyed by chi route pattern.
func (c *Collector) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				route = p
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		c.HTTPRequests.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		c.HTTPDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

type classifier interface {
	Classify(text string) emotion.Result
	Chart(r emotion.Result) emotion.ChartData
	Table() *emotion.Table
}

// InstrumentedClassifier counts results and timing of an inner classifier.
type InstrumentedClassifier struct {
	next classifier
	c    *Collector
}

func (c *Collector) Instrument(next classifier) *InstrumentedClassifier {
	return &InstrumentedClassifier{next: next, c: c}
}

func (ic *InstrumentedClassifier) Classify(text string) emotion.Result {
	start := time.Now()
	res := ic.next.Classify(text)
	ic.c.ClassifyDuration.Observe(time.Since(start).Seconds())
	ic.c.Classifications.WithLabelValues(res.Emotion).Inc()
	return res
}

func (ic *InstrumentedClassifier) Chart(r emotion.Result) emotion.ChartData {
	return ic.next.Chart(r)
}

func (ic *InstrumentedClassifier) Table() *emotion.Table {
	return ic.next.Table()
}
