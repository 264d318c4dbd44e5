package pulsedemod

/*------------------------------------------------------------------
 *
 * Purpose:	Turn the confirmed edges into bits.
 *
 * Description:	Only the low gaps carry data: each gap is measured from
 *		a falling edge to the next rising edge.  The first
 *		rising edge (the sync pulse) has no gap in front of it.
 *
 *		Every gap is compared with the mean gap:
 *
 *			delta = floor((width - mean) / mean * 100)
 *
 *		More than +tolerance is a 1, less than -tolerance is a
 *		0.  The first gap is the sync marker and is never a
 *		data bit, whatever its width.  Any later gap inside the
 *		tolerance band cannot be decided and is fatal.
 *
 *------------------------------------------------------------------*/

import (
	"fmt"
	"math"
	"strings"
)

// Symbol is how one gap was read.
type Symbol byte

const (
	SymbolSync Symbol = 's'
	SymbolZero Symbol = '0'
	SymbolOne  Symbol = '1'
)

// Pulse is one measured low gap.
type Pulse struct {
	Fall   int // sample of the falling edge that opened the gap
	Rise   int // sample of the rising edge that closed it
	Width  int
	Delta  int // percent deviation from the mean width
	Symbol Symbol
}

// Bits is the classifier output.
type Bits struct {
	Values   []bool
	Text     string
	Pulses   []Pulse
	AvgWidth int
}

// DefaultTolerancePercent is the dead band either side of the mean.
const DefaultTolerancePercent = 10

// ClassifyBits measures and classifies the low gaps in transitions.
// tolerance is the dead band in percent.
func ClassifyBits(transitions []Transition, tolerance int) (*Bits, error) {
	if tolerance < 0 {
		return nil, stageErr(StageClassify, ErrInvalidParameter, "tolerance must not be negative, got %d", tolerance)
	}

	var pulses []Pulse
	var lowStarted = false
	var fall = 0

	for _, t := range transitions {
		switch t.Kind {
		case RisingEdge:
			if lowStarted {
				pulses = append(pulses, Pulse{Fall: fall, Rise: t.Sample, Width: t.Sample - fall})
				lowStarted = false
			}
			// Otherwise this is the sync pulse, or a repeated rise which carries no gap.
		case FallingEdge:
			if lowStarted {
				var err = stageErr(StageClassify, ErrMalformedSequence, "two falling edges without a rise, at %d and %d", fall, t.Sample)
				err.Sample = t.Sample
				return nil, err
			}
			lowStarted = true
			fall = t.Sample
		default:
			panic(fmt.Sprintf("pulsedemod: unexpected edge kind %d", int(t.Kind)))
		}
	}

	if len(pulses) == 0 {
		return nil, stageErr(StageClassify, ErrNoData, "no complete low gaps in %d transitions", len(transitions))
	}

	var total = 0
	for _, p := range pulses {
		total += p.Width
	}
	var avg = total / len(pulses)
	if avg <= 0 {
		return nil, stageErr(StageClassify, ErrNoData, "mean gap width is %d", avg)
	}

	var bits = &Bits{
		Pulses:   pulses,
		AvgWidth: avg,
	}
	var text strings.Builder

	for i := range bits.Pulses {
		var p = &bits.Pulses[i]
		var deviation = float64(p.Width-avg) / float64(avg)
		p.Delta = int(math.Floor(deviation * 100))

		switch {
		case i == 0:
			p.Symbol = SymbolSync
		case p.Delta > tolerance:
			p.Symbol = SymbolOne
			bits.Values = append(bits.Values, true)
		case p.Delta < -tolerance:
			p.Symbol = SymbolZero
			bits.Values = append(bits.Values, false)
		default:
			var err = stageErr(StageClassify, ErrAmbiguousPulse,
				"gap %d width %d is %+d%% from mean %d", i, p.Width, p.Delta, avg)
			err.Sample = p.Fall
			err.Value = p.Width
			return nil, err
		}

		text.WriteByte(byte(p.Symbol))
	}

	bits.Text = text.String()

	return bits, nil
}
