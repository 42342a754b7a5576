// Package metrics exposes per-run Prometheus metrics. A sync run is a batch
// job with no scrape endpoint, so the collected values are pushed to a
// Pushgateway at the end of the run when one is configured.
package metrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"

	"github.com/agentstation/assetsync/pkg/constants"
	"github.com/agentstation/assetsync/pkg/errors"
	"github.com/agentstation/assetsync/pkg/sync"
)

// Outcome label values.
const (
	OutcomeApplied = "applied"
	OutcomeFailed  = "failed"
)

// Metrics holds the collectors for one process.
type Metrics struct {
	registry *prometheus.Registry

	mutations       *prometheus.CounterVec
	sourceRecords   *prometheus.GaugeVec
	registryRecords *prometheus.GaugeVec
	runDuration     *prometheus.GaugeVec
	lastSuccess     *prometheus.GaugeVec
}

// New creates the collectors on a private registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		mutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: constants.MetricsNamespace,
			Name:      "mutations_total",
			Help:      "Registry mutations attempted, by feed, action, and outcome.",
		}, []string{"feed", "action", "outcome"}),
		sourceRecords: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: constants.MetricsNamespace,
			Name:      "source_records",
			Help:      "Device records read from the feed in the last run.",
		}, []string{"feed"}),
		registryRecords: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: constants.MetricsNamespace,
			Name:      "registry_records",
			Help:      "Registry records tagged with the feed in the last run.",
		}, []string{"feed"}),
		runDuration: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: constants.MetricsNamespace,
			Name:      "run_duration_seconds",
			Help:      "Wall time of the last run.",
		}, []string{"feed"}),
		lastSuccess: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: constants.MetricsNamespace,
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time of the last run that finished without a top-level error.",
		}, []string{"feed"}),
	}
	m.registry.MustRegister(m.mutations, m.sourceRecords, m.registryRecords, m.runDuration, m.lastSuccess)
	return m
}

// Gatherer returns the registry the collectors live on.
func (m *Metrics) Gatherer() prometheus.Gatherer { return m.registry }

// ObserveMutation counts one mutation attempt.
func (m *Metrics) ObserveMutation(feed, action string, err error) {
	outcome := OutcomeApplied
	if err != nil {
		outcome = OutcomeFailed
	}
	m.mutations.WithLabelValues(feed, action, outcome).Inc()
}

// ObserveRun records the snapshot sizes and duration of a finished run.
// The success timestamp only moves when runErr is nil.
func (m *Metrics) ObserveRun(res *sync.Result, runErr error, finished time.Time) {
	if res == nil {
		return
	}
	feed := res.Feed.String()
	m.sourceRecords.WithLabelValues(feed).Set(float64(res.SourceRecords))
	m.registryRecords.WithLabelValues(feed).Set(float64(res.RegistryRecords))
	m.runDuration.WithLabelValues(feed).Set(res.Duration.Seconds())
	if runErr == nil {
		m.lastSuccess.WithLabelValues(feed).Set(float64(finished.Unix()))
	}
}

// Push sends every collected metric to the Pushgateway at url under job.
func (m *Metrics) Push(ctx context.Context, url, job string) error {
	if url == "" {
		return nil
	}
	if job == "" {
		job = constants.AppName
	}

	ctx, cancel := context.WithTimeout(ctx, constants.MetricsPushTimeout)
	defer cancel()

	if err := push.New(url, job).Gatherer(m.registry).PushContext(ctx); err != nil {
		return errors.WrapAPI("pushgateway", 0, err)
	}
	return nil
}
