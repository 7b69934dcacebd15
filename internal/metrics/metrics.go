// Package metrics records decode outcomes as Prometheus collectors and
// exports them in the node exporter textfile format.
package metrics

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	aztecgo "github.com/ericlevine/aztecgo"
)

// OutcomeOK labels a successful decode. Failures are labeled with their
// pipeline stage.
const OutcomeOK = "ok"

// Metrics holds the aztecscan collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	decodes         *prometheus.CounterVec
	decodeDuration  *prometheus.HistogramVec
	symbols         *prometheus.CounterVec
	errorsCorrected prometheus.Counter
	files           *prometheus.CounterVec
}

// New creates the collectors and registers them on a new registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &Metrics{
		registry: reg,
		decodes: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "aztecscan_decodes_total",
				Help: "Total number of symbol decodes by outcome",
			},
			[]string{"outcome"}, // ok, locate, orient, mode, data, text, other
		),
		decodeDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "aztecscan_decode_duration_seconds",
				Help:    "Single symbol decode duration in seconds",
				Buckets: []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25, .5, 1},
			},
			[]string{"outcome"},
		),
		symbols: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "aztecscan_symbols_total",
				Help: "Total number of decoded symbols by class",
			},
			[]string{"class"},
		),
		errorsCorrected: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "aztecscan_errors_corrected_total",
				Help: "Total number of codewords repaired by Reed-Solomon correction",
			},
		),
		files: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "aztecscan_files_total",
				Help: "Total number of input files by status",
			},
			[]string{"status"}, // ok, failed
		),
	}
}

// Outcome returns the label recorded for a decode that ended with err.
func Outcome(err error) string {
	if err == nil {
		return OutcomeOK
	}
	if stage := aztecgo.StageOf(err); stage != "" {
		return string(stage)
	}
	if errors.Is(err, aztecgo.ErrNoSymbolFound) {
		return "none"
	}
	return "other"
}

// Observe records one decode. Its signature matches multi.Finder.Observe.
func (m *Metrics) Observe(res *aztecgo.Result, err error, elapsed time.Duration) {
	outcome := Outcome(err)
	m.decodes.WithLabelValues(outcome).Inc()
	m.decodeDuration.WithLabelValues(outcome).Observe(elapsed.Seconds())
	if err != nil || res == nil {
		return
	}
	m.symbols.WithLabelValues(res.Metadata.Class.String()).Inc()
	m.errorsCorrected.Add(float64(res.Metadata.ErrorsCorrected))
}

// ObserveFile records whether an input file produced at least one symbol.
func (m *Metrics) ObserveFile(err error) {
	status := "ok"
	if err != nil {
		status = "failed"
	}
	m.files.WithLabelValues(status).Inc()
}

// Registry returns the registry holding the collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// WriteToTextfile writes every collector to path, replacing it atomically.
func (m *Metrics) WriteToTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}
