package pulsedemod

/*------------------------------------------------------------------
 *
 * Purpose:	Error kinds reported by the demodulation stages.
 *
 * Description:	Every data quality failure comes back as a *StageError
 *		which unwraps to one of the sentinels below, so callers
 *		can use errors.Is for the kind and errors.As for the
 *		diagnostic detail (sample index, histogram, ...).
 *
 *		Programming errors (impossible enum values, nil images,
 *		unvalidated configuration) panic instead.
 *
 *------------------------------------------------------------------*/

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrInvalidParameter      = errors.New("invalid parameter")
	ErrAsymmetricEdges       = errors.New("asymmetric edges")
	ErrNoEdgesDetected       = errors.New("no edges detected")
	ErrInsufficientConsensus = errors.New("insufficient consensus")
	ErrMalformedSequence     = errors.New("malformed transition sequence")
	ErrNoData                = errors.New("no measurable pulses")
	ErrAmbiguousPulse        = errors.New("ambiguous pulse")
	ErrReferenceBandNotFound = errors.New("reference band not found")
)

// Stage names a step of the pipeline.
type Stage string

const (
	StageIngest    Stage = "ingest"
	StageGate      Stage = "gate"
	StagePixelGate Stage = "pixelgate"
	StageEdges     Stage = "edges"
	StageCalibrate Stage = "calibrate"
	StageClassify  Stage = "classify"
)

// StageError carries the failing stage and whatever diagnostic data was
// at hand when it failed. Sample and Value are -1 when not applicable.
type StageError struct {
	Stage     Stage
	Kind      error
	Sample    int
	Value     int
	Histogram Histogram
	Msg       string
}

func (e *StageError) Error() string {
	var s = fmt.Sprintf("%s: %s", e.Stage, e.Kind)
	if e.Msg != "" {
		s += ": " + e.Msg
	}
	if e.Sample >= 0 {
		s += fmt.Sprintf(" (sample %d)", e.Sample)
	}
	if len(e.Histogram) > 0 {
		s += " histogram " + e.Histogram.String()
	}
	return s
}

func (e *StageError) Unwrap() error {
	return e.Kind
}

func stageErr(stage Stage, kind error, format string, args ...any) *StageError {
	return &StageError{
		Stage:  stage,
		Kind:   kind,
		Sample: -1,
		Value:  -1,
		Msg:    fmt.Sprintf(format, args...),
	}
}
