package pulsedemod

/*------------------------------------------------------------------
 *
 * Purpose:	The complete demodulation pipeline.
 *
 * Description:	samples --Gate--> binary --CalibrateDivisor--> divisor
 *		binary + divisor --ExtractEdges--> transitions
 *		transitions --ClassifyBits--> bits + text
 *
 *		Screenshots go through PixelGate in place of Gate.
 *		Each stage hands its output to the next and keeps no
 *		state, so a Decoder may be shared between goroutines
 *		as long as its Telemetry can be.
 *
 *------------------------------------------------------------------*/

import (
	"context"
	"fmt"
	"image"
	"time"
)

// Result is everything learned while decoding one capture.
type Result struct {
	Source      string
	Samples     int
	Levels      *GateLevels // nil for screenshots
	Highs       int
	DutyCycle   int
	Calibration *Calibration // nil when the divisor was fixed
	Edges       *Edges
	Bits        *Bits
	Stats       PulseStats
}

func (r *Result) BitValues() []bool {
	return r.Bits.Values
}

func (r *Result) BitText() string {
	return r.Bits.Text
}

func (r *Result) Divisor() int {
	return r.Edges.Divisor
}

type Decoder struct {
	Config    Config
	Telemetry Telemetry
}

// NewDecoder returns a Decoder, using NopTelemetry when tel is nil.
func NewDecoder(cfg Config, tel Telemetry) *Decoder {
	if tel == nil {
		tel = NopTelemetry{}
	}
	return &Decoder{Config: cfg, Telemetry: tel}
}

// Decode runs the whole pipeline over samples with the default
// configuration.
func Decode(samples []int) ([]bool, string, error) {
	var r, err = NewDecoder(DefaultConfig(), nil).DecodeSamples(context.Background(), samples)
	if err != nil {
		return nil, "", err
	}
	return r.BitValues(), r.BitText(), nil
}

func (d *Decoder) telemetry() Telemetry {
	if d.Telemetry == nil {
		return NopTelemetry{}
	}
	return d.Telemetry
}

func (d *Decoder) timed(stage Stage, start time.Time) {
	d.telemetry().StageDone(stage, time.Since(start))
}

// DecodeSamples decodes raw amplitude samples.
func (d *Decoder) DecodeSamples(ctx context.Context, samples []int) (*Result, error) {
	var r, err = d.decodeSamples(ctx, samples)
	return d.report("", r, err)
}

// DecodeBinary decodes an already gated sequence.
func (d *Decoder) DecodeBinary(ctx context.Context, bin Binary) (*Result, error) {
	var r, err = d.decodeBinary(ctx, bin, &Result{Samples: len(bin)})
	return d.report("", r, err)
}

// DecodeImage decodes a screenshot of the waveform.
func (d *Decoder) DecodeImage(ctx context.Context, img image.Image) (*Result, error) {
	var r, err = d.decodeImage(ctx, img)
	return d.report("", r, err)
}

// DecodeFile reads a capture or a screenshot, chosen by extension.
func (d *Decoder) DecodeFile(ctx context.Context, path string) (*Result, error) {
	var r, err = d.decodeFile(ctx, path)
	if r != nil {
		r.Source = path
	}
	return d.report(path, r, err)
}

func (d *Decoder) report(source string, r *Result, err error) (*Result, error) {
	d.telemetry().Decoded(source, r, err)
	if err != nil {
		return nil, err
	}
	return r, nil
}

func (d *Decoder) decodeFile(ctx context.Context, path string) (*Result, error) {
	var start = time.Now()

	switch {
	case IsSampleFile(path):
		var samples, err = ReadSampleFile(path)
		d.timed(StageIngest, start)
		if err != nil {
			return nil, err
		}
		return d.decodeSamples(ctx, samples)

	case IsImageFile(path):
		var img, err = LoadImage(path)
		d.timed(StageIngest, start)
		if err != nil {
			return nil, err
		}
		return d.decodeImage(ctx, img)
	}

	return nil, stageErr(StageIngest, ErrInvalidInput, "don't know how to read %s", path)
}

func (d *Decoder) decodeSamples(ctx context.Context, samples []int) (*Result, error) {
	var start = time.Now()
	var bin, levels, err = Gate(samples)
	d.timed(StageGate, start)
	if err != nil {
		return nil, err
	}

	return d.decodeBinary(ctx, bin, &Result{Samples: len(samples), Levels: &levels})
}

func (d *Decoder) decodeImage(ctx context.Context, img image.Image) (*Result, error) {
	var start = time.Now()
	var bin, err = PixelGate(img, d.Config.Pixel)
	d.timed(StagePixelGate, start)
	if err != nil {
		return nil, err
	}

	return d.decodeBinary(ctx, bin, &Result{Samples: len(bin)})
}

func (d *Decoder) decodeBinary(ctx context.Context, bin Binary, r *Result) (*Result, error) {
	r.Highs = bin.CountHigh()
	r.DutyCycle = bin.DutyCycle()

	var divisor = d.Config.Divisor
	if divisor == 0 {
		var start = time.Now()
		var cal, err = CalibrateDivisor(ctx, bin, d.Config.Calibration)
		d.timed(StageCalibrate, start)
		if cal != nil {
			for _, t := range cal.Trials {
				d.telemetry().Trial(t)
			}
		}
		if err != nil {
			return nil, err
		}
		d.telemetry().Calibrated(cal)
		r.Calibration = cal
		divisor = cal.Divisor
	}

	var start = time.Now()
	var edges, err = ExtractEdges(bin, divisor)
	d.timed(StageEdges, start)
	if err != nil {
		return nil, fmt.Errorf("final pass: %w", err)
	}
	r.Edges = edges

	start = time.Now()
	var bits, cerr = ClassifyBits(edges.Transitions, d.Config.Classifier.TolerancePercent)
	d.timed(StageClassify, start)
	if cerr != nil {
		return nil, cerr
	}
	r.Bits = bits
	r.Stats = SummarisePulses(bits.Pulses)

	return r, nil
}
