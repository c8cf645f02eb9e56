package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// metrics owns a private registry so several servers can coexist in one
// process, as they do in tests.
type metrics struct {
	registry       *prometheus.Registry
	requests       *prometheus.CounterVec
	extractSeconds *prometheus.HistogramVec
	sections       prometheus.Histogram
}

func newMetrics() *metrics {
	m := &metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "goinsight_requests_total",
			Help: "HTTP requests by route pattern and status code.",
		}, []string{"route", "method", "status"}),
		extractSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "goinsight_extract_duration_seconds",
			Help:    "Time spent parsing and extracting one report.",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 12),
		}, []string{"category"}),
		sections: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "goinsight_sections_parsed",
			Help:    "Sections found per parsed report.",
			Buckets: []float64{0, 1, 2, 4, 6, 8, 12, 16, 24},
		}),
	}
	m.registry.MustRegister(
		m.requests,
		m.extractSeconds,
		m.sections,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *metrics) handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// instrument counts requests by their matched chi route pattern.
func (m *metrics) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		route := "unmatched"
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		m.requests.WithLabelValues(route, r.Method, strconv.Itoa(status)).Inc()
	})
}

func (m *metrics) observeExtract(category string, start time.Time, sections int) {
	m.extractSeconds.WithLabelValues(category).Observe(time.Since(start).Seconds())
	m.sections.Observe(float64(sections))
}
