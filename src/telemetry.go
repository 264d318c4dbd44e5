package pulsedemod

/*------------------------------------------------------------------
 *
 * Purpose:	Diagnostics from the pipeline, without deciding where
 *		they end up.
 *
 * Description:	The Decoder calls a Telemetry at the end of each stage,
 *		for each calibration trial, once calibration settles,
 *		and once per decoded source.  Calls are made from the
 *		decoding goroutine only, in a fixed order.
 *
 *------------------------------------------------------------------*/

import (
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
)

type Telemetry interface {
	StageDone(stage Stage, elapsed time.Duration)
	Trial(t Trial)
	Calibrated(c *Calibration)
	Decoded(source string, r *Result, err error)
}

// NopTelemetry discards everything.
type NopTelemetry struct{}

func (NopTelemetry) StageDone(Stage, time.Duration) {}
func (NopTelemetry) Trial(Trial)                    {}
func (NopTelemetry) Calibrated(*Calibration)        {}
func (NopTelemetry) Decoded(string, *Result, error) {}

// MultiTelemetry fans out to every member.
type MultiTelemetry []Telemetry

func (m MultiTelemetry) StageDone(stage Stage, elapsed time.Duration) {
	for _, t := range m {
		t.StageDone(stage, elapsed)
	}
}

func (m MultiTelemetry) Trial(tr Trial) {
	for _, t := range m {
		t.Trial(tr)
	}
}

func (m MultiTelemetry) Calibrated(c *Calibration) {
	for _, t := range m {
		t.Calibrated(c)
	}
}

func (m MultiTelemetry) Decoded(source string, r *Result, err error) {
	for _, t := range m {
		t.Decoded(source, r, err)
	}
}

// NewLogger returns the logger used by the command line tools.
func NewLogger(w io.Writer, level log.Level) *log.Logger {
	if w == nil {
		w = os.Stderr
	}
	return log.NewWithOptions(w, log.Options{
		Level:           level,
		Prefix:          "pulsedemod",
		ReportTimestamp: true,
		TimeFormat:      time.TimeOnly,
	})
}

// LogTelemetry writes diagnostics to a charmbracelet logger.  Stage
// timings and trials are Debug, results are Info, failures are Error.
type LogTelemetry struct {
	Logger *log.Logger
}

func (l LogTelemetry) StageDone(stage Stage, elapsed time.Duration) {
	l.Logger.Debug("stage done", "stage", stage, "elapsed", elapsed)
}

func (l LogTelemetry) Trial(t Trial) {
	if t.Err != nil {
		l.Logger.Debug("trial", "divisor", t.Divisor, "err", t.Err)
		return
	}
	l.Logger.Debug("trial", "divisor", t.Divisor, "pulses", t.Score)
}

func (l LogTelemetry) Calibrated(c *Calibration) {
	l.Logger.Info("calibrated",
		"divisor", c.Divisor,
		"pulses", c.Mode,
		"agreement", c.Agreement,
		"of", len(c.Trials),
		"histogram", c.Histogram.String())
}

func (l LogTelemetry) Decoded(source string, r *Result, err error) {
	if err != nil {
		l.Logger.Error("decode failed", "source", source, "err", err)
		return
	}
	l.Logger.Info("decoded",
		"source", source,
		"bits", len(r.Bits.Values),
		"avg_width", r.Bits.AvgWidth,
		"duty_cycle", r.DutyCycle)
}
