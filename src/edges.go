package pulsedemod

/*------------------------------------------------------------------
 *
 * Purpose:	Debounced edge detection on a gated sample sequence.
 *
 * Description:	The minimum run width is len(samples) / divisor.  A
 *		change of state is only accepted once more than that
 *		many samples of the new level have been counted since
 *		the last confirmed edge, so short glitches never
 *		produce an edge on their own.
 *
 *		The counters are only reset when an edge is confirmed.
 *		Separate spikes (or dropouts) therefore add up: enough
 *		of them inside one run will flip the state early.
 *
 *		Edge positions are 1-based sample counts at the point
 *		the change was confirmed, i.e. min width + 1 samples
 *		after the raw change.  Because both edges of a pulse
 *		are delayed by the same amount, differences between
 *		edge positions are the true run lengths.
 *
 *------------------------------------------------------------------*/

import "fmt"

type EdgeKind int

const (
	RisingEdge EdgeKind = iota + 1
	FallingEdge
)

func (k EdgeKind) String() string {
	switch k {
	case RisingEdge:
		return "L-H"
	case FallingEdge:
		return "H-L"
	}
	panic(fmt.Sprintf("bad EdgeKind %d", int(k)))
}

// Transition is one confirmed edge.
type Transition struct {
	Kind   EdgeKind
	Sample int
}

// Edges is the outcome of one extraction pass.
type Edges struct {
	Transitions []Transition
	Rises       int
	Falls       int
	Divisor     int
	MinWidth    int
}

// Partial reports a trailing rising edge with no matching fall.
func (e *Edges) Partial() bool {
	return e.Rises == e.Falls+1
}

// ExtractEdges runs the debounced edge detector over bin.
//
// Equal rise and fall counts are well formed.  One extra rising edge
// is accepted as a trailing partial pulse.  A capture with no edges at
// all is ErrNoEdgesDetected, and any other mismatch is
// ErrAsymmetricEdges.
func ExtractEdges(bin Binary, divisor int) (*Edges, error) {
	if divisor <= 0 {
		var err = stageErr(StageEdges, ErrInvalidParameter, "divisor must be positive, got %d", divisor)
		err.Value = divisor
		return nil, err
	}

	var minWidth = len(bin) / divisor
	if minWidth < 1 {
		var err = stageErr(StageEdges, ErrInvalidParameter, "divisor %d leaves no minimum width for %d samples", divisor, len(bin))
		err.Value = divisor
		return nil, err
	}

	var e = &Edges{
		Divisor:  divisor,
		MinWidth: minWidth,
	}

	var runningHigh, runningLow = 0, 0
	var high = false

	for i, v := range bin {
		var n = i + 1

		if v {
			runningHigh++
			if !high && runningHigh > minWidth {
				high = true
				runningLow = 0
				e.Rises++
				e.Transitions = append(e.Transitions, Transition{Kind: RisingEdge, Sample: n})
			}
		} else {
			runningLow++
			if high && runningLow > minWidth {
				high = false
				runningHigh = 0
				e.Falls++
				e.Transitions = append(e.Transitions, Transition{Kind: FallingEdge, Sample: n})
			}
		}
	}

	if err := e.check(); err != nil {
		return e, err
	}

	return e, nil
}

// check applies the rise/fall count policy.  The detector above always
// alternates starting from low, so it can only produce 0 or 1 extra
// rise; the asymmetric case guards Edges built any other way.
func (e *Edges) check() error {
	if e.Rises == 0 && e.Falls == 0 {
		var err = stageErr(StageEdges, ErrNoEdgesDetected, "divisor %d: nothing longer than %d samples", e.Divisor, e.MinWidth)
		err.Value = e.Divisor
		return err
	}

	var diff = e.Rises - e.Falls
	if diff < -1 || diff > 1 || e.Rises == 0 {
		var err = stageErr(StageEdges, ErrAsymmetricEdges, "divisor %d: %d rising, %d falling", e.Divisor, e.Rises, e.Falls)
		err.Value = e.Divisor
		return err
	}

	return nil
}
