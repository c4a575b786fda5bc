// Package metrics defines the Prometheus collectors for the assistant and
// exposes an HTTP handler for scraping. A nil *Metrics is valid and records
// nothing.
package metrics

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels.
const (
	OutcomeOK      = "ok"
	OutcomeFailed  = "failed"
	OutcomeSkipped = "skipped"
)

// Metrics holds all Prometheus collectors.
type Metrics struct {
	registry        *prometheus.Registry
	CrawlPagesTotal *prometheus.CounterVec
	RefreshTotal    *prometheus.CounterVec
	AnswersTotal    *prometheus.CounterVec
	ModelCallsTotal *prometheus.CounterVec
	StoreDocuments  *prometheus.GaugeVec
	AnswerLatency   prometheus.Histogram
}

// New creates the collectors on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		CrawlPagesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "schoolbot_crawl_pages_total",
			Help: "Pages attempted by the crawler, by outcome.",
		}, []string{"outcome"}),
		RefreshTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "schoolbot_refresh_total",
			Help: "Knowledge base refresh cycles, by outcome.",
		}, []string{"outcome"}),
		AnswersTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "schoolbot_answers_total",
			Help: "Answers produced, by intent.",
		}, []string{"intent"}),
		ModelCallsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "schoolbot_model_calls_total",
			Help: "Language model calls, by result status.",
		}, []string{"status"}),
		StoreDocuments: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "schoolbot_store_documents",
			Help: "Documents currently held in the knowledge store, by origin.",
		}, []string{"origin"}),
		AnswerLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "schoolbot_answer_duration_seconds",
			Help:    "Time to produce an answer.",
			Buckets: prometheus.DefBuckets,
		}),
	}
	reg.MustRegister(
		m.CrawlPagesTotal,
		m.RefreshTotal,
		m.AnswersTotal,
		m.ModelCallsTotal,
		m.StoreDocuments,
		m.AnswerLatency,
	)
	return m
}

func (m *Metrics) CrawlPage(outcome string) {
	if m == nil {
		return
	}
	m.CrawlPagesTotal.WithLabelValues(outcome).Inc()
}

func (m *Metrics) Refresh(outcome string) {
	if m == nil {
		return
	}
	m.RefreshTotal.WithLabelValues(outcome).Inc()
}

func (m *Metrics) Answer(intent string, took time.Duration) {
	if m == nil {
		return
	}
	m.AnswersTotal.WithLabelValues(intent).Inc()
	m.AnswerLatency.Observe(took.Seconds())
}

func (m *Metrics) ModelCall(status string) {
	if m == nil {
		return
	}
	m.ModelCallsTotal.WithLabelValues(status).Inc()
}

func (m *Metrics) SetDocuments(origin string, n int) {
	if m == nil {
		return
	}
	m.StoreDocuments.WithLabelValues(origin).Set(float64(n))
}

// Handler returns the scrape handler for this registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Serve exposes /metrics on addr until ctx is cancelled.
func (m *Metrics) Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("Metrics server shutdown error", "error", err)
		}
	}()

	slog.Info("Metrics server listening", "addr", addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
