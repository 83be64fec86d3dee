// Package metrics exposes scanner counters over a Prometheus endpoint.
package metrics

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dkelsey/arbscan/internal/domain"
)

// Metrics holds every collector the scanner reports to.
type Metrics struct {
	registry *prometheus.Registry

	ScansTotal       prometheus.Counter
	ScanFailures     prometheus.Counter
	ScanDuration     prometheus.Histogram
	Opportunities    *prometheus.CounterVec
	SnapshotsFetched *prometheus.GaugeVec
	RecordsDropped   *prometheus.GaugeVec
}

// New creates and registers all scanner collectors on a private registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		registry: reg,
		ScansTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "arbscan_scans_total",
			Help: "Completed scan cycles.",
		}),
		ScanFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "arbscan_scan_failures_total",
			Help: "Scan cycles that failed before producing a record.",
		}),
		ScanDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "arbscan_scan_duration_seconds",
			Help:    "Wall time of one scan cycle, fetch included.",
			Buckets: prometheus.ExponentialBuckets(0.25, 2, 10),
		}),
		Opportunities: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "arbscan_opportunities_total",
			Help: "Opportunities surfaced, by kind.",
		}, []string{"kind"}),
		SnapshotsFetched: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "arbscan_snapshots_fetched",
			Help: "Snapshots fetched in the last cycle, by venue.",
		}, []string{"venue"}),
		RecordsDropped: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "arbscan_records_dropped",
			Help: "Raw venue records dropped during normalization in the last cycle, by venue.",
		}, []string{"venue"}),
	}

	reg.MustRegister(
		m.ScansTotal, m.ScanFailures, m.ScanDuration,
		m.Opportunities, m.SnapshotsFetched, m.RecordsDropped,
	)
	return m
}

// ObserveScan records one completed scan cycle.
func (m *Metrics) ObserveScan(rec *domain.ScanRecord) {
	m.ScansTotal.Inc()
	m.ScanDuration.Observe(rec.FinishedAt.Sub(rec.StartedAt).Seconds())
	for _, opp := range rec.Opportunities {
		m.Opportunities.WithLabelValues(string(opp.Kind)).Inc()
	}
	for venue, dropped := range rec.RecordsDropped {
		m.RecordsDropped.WithLabelValues(string(venue)).Set(float64(dropped))
	}
}

// Handler returns the /metrics HTTP handler for this registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Serve runs a metrics HTTP server on addr until ctx is cancelled.
func (m *Metrics) Serve(ctx context.Context, addr string, logger *slog.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info("metrics server listening", slog.String("addr", addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
