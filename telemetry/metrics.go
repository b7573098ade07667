// Package telemetry counts exports and imports with Prometheus collectors.
package telemetry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"slidedeck/export"
	"slidedeck/importer"
)

const namespace = "slidedeck"

// Metrics implements export.Observer.
type Metrics struct {
	exports     *prometheus.CounterVec
	imports     *prometheus.CounterVec
	diagnostics *prometheus.CounterVec
	duration    *prometheus.HistogramVec
}

var _ export.Observer = (*Metrics)(nil)

// NewMetrics creates the collectors and registers them on reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		exports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "exports_total",
			Help:      "Finished exports by format and result.",
		}, []string{"format", "result"}),
		imports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "imports_total",
			Help:      "Finished imports by importer kind and result.",
		}, []string{"kind", "result"}),
		diagnostics: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "export_diagnostics_total",
			Help:      "Elements that an export skipped or approximated.",
		}, []string{"format"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "export_duration_seconds",
			Help:      "Time spent encoding a presentation.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 4, 8),
		}, []string{"format"}),
	}
	for _, c := range []prometheus.Collector{m.exports, m.imports, m.diagnostics, m.duration} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// ExportFinished implements export.Observer.
func (m *Metrics) ExportFinished(format export.Format, elapsed time.Duration, diagnostics []export.Diagnostic, err error) {
	f := string(format)
	m.exports.WithLabelValues(f, result(err)).Inc()
	m.duration.WithLabelValues(f).Observe(elapsed.Seconds())
	if len(diagnostics) > 0 {
		m.diagnostics.WithLabelValues(f).Add(float64(len(diagnostics)))
	}
}

// ImportFinished records one import. An unknown kind is counted as
// "unsupported".
func (m *Metrics) ImportFinished(kind importer.Kind, err error) {
	k := string(kind)
	if k == "" {
		k = "unsupported"
	}
	m.imports.WithLabelValues(k, result(err)).Inc()
}

// WriteTextfile writes everything gathered by g in the text exposition
// format, for node exporter's textfile collector.
func WriteTextfile(path string, g prometheus.Gatherer) error {
	return prometheus.WriteToTextfile(path, g)
}
