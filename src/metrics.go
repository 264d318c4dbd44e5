package pulsedemod

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// PromTelemetry records pipeline diagnostics as Prometheus metrics in
// its own registry, so a batch run can dump them with WriteTextfile.
type PromTelemetry struct {
	Registry *prometheus.Registry

	stageSeconds *prometheus.HistogramVec
	trials       *prometheus.CounterVec
	divisor      prometheus.Gauge
	agreement    prometheus.Gauge
	decodes      *prometheus.CounterVec
	bits         prometheus.Counter
}

func NewPromTelemetry() *PromTelemetry {
	var reg = prometheus.NewRegistry()
	var factory = promauto.With(reg)

	return &PromTelemetry{
		Registry: reg,
		stageSeconds: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "pulsedemod_stage_duration_seconds",
				Help:    "Time spent in each pipeline stage",
				Buckets: prometheus.ExponentialBuckets(0.0001, 4, 10),
			},
			[]string{"stage"},
		),
		trials: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pulsedemod_calibration_trials_total",
				Help: "Calibration trials by outcome",
			},
			[]string{"outcome"},
		),
		divisor: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "pulsedemod_calibrated_divisor",
				Help: "Divisor chosen by the most recent calibration",
			},
		),
		agreement: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "pulsedemod_calibration_agreement",
				Help: "Number of candidates agreeing with the most recent calibration",
			},
		),
		decodes: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pulsedemod_decodes_total",
				Help: "Decoded sources by outcome",
			},
			[]string{"outcome"},
		),
		bits: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "pulsedemod_bits_total",
				Help: "Data bits recovered across all sources",
			},
		),
	}
}

func (p *PromTelemetry) StageDone(stage Stage, elapsed time.Duration) {
	p.stageSeconds.WithLabelValues(string(stage)).Observe(elapsed.Seconds())
}

func (p *PromTelemetry) Trial(t Trial) {
	p.trials.WithLabelValues(outcome(t.Err)).Inc()
}

func (p *PromTelemetry) Calibrated(c *Calibration) {
	p.divisor.Set(float64(c.Divisor))
	p.agreement.Set(float64(c.Agreement))
}

func (p *PromTelemetry) Decoded(_ string, r *Result, err error) {
	p.decodes.WithLabelValues(outcome(err)).Inc()
	if err == nil {
		p.bits.Add(float64(len(r.Bits.Values)))
	}
}

// WriteTextfile dumps the registry in the text exposition format.
func (p *PromTelemetry) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, p.Registry)
}

// outcome is a low cardinality label for an error.
func outcome(err error) string {
	var kinds = []struct {
		err   error
		label string
	}{
		{ErrInvalidInput, "invalid_input"},
		{ErrInvalidParameter, "invalid_parameter"},
		{ErrAsymmetricEdges, "asymmetric_edges"},
		{ErrNoEdgesDetected, "no_edges"},
		{ErrInsufficientConsensus, "insufficient_consensus"},
		{ErrMalformedSequence, "malformed_sequence"},
		{ErrNoData, "no_data"},
		{ErrAmbiguousPulse, "ambiguous_pulse"},
		{ErrReferenceBandNotFound, "reference_band_not_found"},
	}

	if err == nil {
		return "ok"
	}
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.label
		}
	}
	return "error"
}
