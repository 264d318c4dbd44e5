package pulsedemod

/*------------------------------------------------------------------
 *
 * Purpose:	Turn raw amplitude samples into a high / low sequence.
 *
 * Description:	The levels come from the capture itself.  With
 *		range = max - min, a sample is "high" when it sits more
 *		than range/4 away from the midpoint of the range.
 *
 *		For I/Q captures the carrier-off samples sit around
 *		mid scale while the carrier-on samples swing out to
 *		both extremes, so distance from the middle, not
 *		absolute level, is what marks the signal as present.
 *
 *------------------------------------------------------------------*/

// Binary is one gated value per sample, true = signal high.
type Binary []bool

// CountHigh returns the number of high samples.
func (b Binary) CountHigh() int {
	var n = 0
	for _, v := range b {
		if v {
			n++
		}
	}
	return n
}

// DutyCycle is the whole-number percentage of high samples.
func (b Binary) DutyCycle() int {
	if len(b) == 0 {
		return 0
	}
	return b.CountHigh() * 100 / len(b)
}

// GateLevels records what the gate derived from the data.
type GateLevels struct {
	Min       int
	Max       int
	Mid       int // relative to Min
	Threshold int
}

// Level maps a sample to the value a plot of the gated waveform shows:
// Mid+Threshold when high, Mid when low.
func (g GateLevels) Level(high bool) int {
	if high {
		return g.Mid + g.Threshold
	}
	return g.Mid
}

// Gate converts samples to a Binary. Empty input and input with no
// spread at all (range 0) are rejected with ErrInvalidInput.
func Gate(samples []int) (Binary, GateLevels, error) {
	if len(samples) < 2 {
		return nil, GateLevels{}, stageErr(StageGate, ErrInvalidInput, "need at least 2 samples, got %d", len(samples))
	}

	var lo, hi = samples[0], samples[0]
	for _, s := range samples[1:] {
		lo = min(lo, s)
		hi = max(hi, s)
	}

	var spread = hi - lo
	if spread == 0 {
		var err = stageErr(StageGate, ErrInvalidInput, "all %d samples equal %d", len(samples), lo)
		err.Value = lo
		return nil, GateLevels{}, err
	}

	var levels = GateLevels{
		Min:       lo,
		Max:       hi,
		Mid:       spread / 2,
		Threshold: spread / 4,
	}

	var out = make(Binary, len(samples))
	for i, s := range samples {
		var d = s - lo - levels.Mid
		if d < 0 {
			d = -d
		}
		out[i] = d > levels.Threshold
	}

	return out, levels, nil
}
