package pulsedemod

/*------------------------------------------------------------------
 *
 * Purpose:	Pick the edge detector divisor without knowing the
 *		symbol rate.
 *
 * Description:	Each candidate divisor in the sweep is tried and
 *		scored by the number of confirmed pulses (falling
 *		edges).  The score seen most often wins and the
 *		calibrated divisor is the mean of the candidates that
 *		produced it.
 *
 *		Candidates whose extraction fails (no edges, no
 *		minimum width left, ...) are kept in the trial list
 *		but take no part in the vote.
 *
 *		When two scores are equally frequent the lower score
 *		wins.
 *
 *------------------------------------------------------------------*/

import (
	"context"
	"fmt"
	"maps"
	"runtime"
	"slices"
	"strings"

	"golang.org/x/sync/errgroup"
)

// Histogram maps a score (pulse count) to the number of candidates
// that produced it.
type Histogram map[int]int

// String renders the histogram in score order, e.g. "{39:14 40:2}".
func (h Histogram) String() string {
	var sb strings.Builder
	sb.WriteByte('{')
	for i, score := range slices.Sorted(maps.Keys(h)) {
		if i > 0 {
			sb.WriteByte(' ')
		}
		fmt.Fprintf(&sb, "%d:%d", score, h[score])
	}
	sb.WriteByte('}')
	return sb.String()
}

// Mode returns the most frequent score and its frequency. Ties go to
// the lowest score. ok is false for an empty histogram.
func (h Histogram) Mode() (score int, freq int, ok bool) {
	for _, s := range slices.Sorted(maps.Keys(h)) {
		if h[s] > freq {
			score, freq, ok = s, h[s], true
		}
	}
	return score, freq, ok
}

// Trial is the outcome of one candidate divisor.
type Trial struct {
	Divisor int
	Score   int // falling edge count, valid when Err is nil
	Err     error
}

// Calibration is the result of a sweep.
type Calibration struct {
	Divisor   int
	Mode      int
	Agreement int
	Histogram Histogram
	Trials    []Trial
}

// SweepConfig describes the candidate divisors and the vote threshold.
type SweepConfig struct {
	First        int `yaml:"first"`
	Last         int `yaml:"last"`
	Step         int `yaml:"step"`
	MinAgreement int `yaml:"min_agreement"`
	Workers      int `yaml:"workers"`
}

// DefaultSweep is 100 to 1200 in steps of 50, needing 4 of the 23 to agree.
func DefaultSweep() SweepConfig {
	return SweepConfig{
		First:        100,
		Last:         1200,
		Step:         50,
		MinAgreement: 4,
	}
}

func (c SweepConfig) Validate() error {
	if c.First <= 0 || c.Step <= 0 || c.Last < c.First {
		return fmt.Errorf("calibration sweep %d..%d step %d: %w", c.First, c.Last, c.Step, ErrInvalidParameter)
	}
	if c.MinAgreement < 1 {
		return fmt.Errorf("calibration min_agreement %d: %w", c.MinAgreement, ErrInvalidParameter)
	}
	if c.Workers < 0 {
		return fmt.Errorf("calibration workers %d: %w", c.Workers, ErrInvalidParameter)
	}
	return nil
}

// Candidates lists the divisors the sweep will try.
func (c SweepConfig) Candidates() []int {
	if c.Step <= 0 {
		panic("pulsedemod: sweep step must be positive")
	}
	var out []int
	for d := c.First; d <= c.Last; d += c.Step {
		out = append(out, d)
	}
	return out
}

// CalibrateDivisor sweeps cfg's candidates over bin. The trials run in
// parallel; the result does not depend on the order they finish in.
func CalibrateDivisor(ctx context.Context, bin Binary, cfg SweepConfig) (*Calibration, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var candidates = cfg.Candidates()
	var trials = make([]Trial, len(candidates))

	var workers = cfg.Workers
	if workers == 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	var g, gctx = errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, d := range candidates {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			var t = Trial{Divisor: d}
			var e, err = ExtractEdges(bin, d)
			if err != nil {
				t.Err = err
			} else {
				t.Score = e.Falls
			}
			trials[i] = t
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	var hist = make(Histogram)
	for _, t := range trials {
		if t.Err == nil {
			hist[t.Score]++
		}
	}

	var cal = &Calibration{
		Histogram: hist,
		Trials:    trials,
	}

	var mode, freq, ok = hist.Mode()
	if !ok || freq < cfg.MinAgreement {
		var err = stageErr(StageCalibrate, ErrInsufficientConsensus,
			"best agreement %d of %d candidates, need %d", freq, len(candidates), cfg.MinAgreement)
		err.Histogram = hist
		err.Value = freq
		return cal, err
	}

	var sum = 0
	for _, t := range trials {
		if t.Err == nil && t.Score == mode {
			sum += t.Divisor
		}
	}

	cal.Mode = mode
	cal.Agreement = freq
	cal.Divisor = sum / freq

	return cal, nil
}
