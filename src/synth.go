package pulsedemod

/*------------------------------------------------------------------
 *
 * Purpose:	Generate captures for testing the decoder.
 *
 * Description:	The message is framed as
 *
 *			lead-in  SYNC  g0 P  g1 P ... gn P  tail
 *
 *		where every P (and SYNC) is a carrier-on pulse of fixed
 *		width and each gap g is carrier off.  The gap after the
 *		sync pulse is the sync gap (2 units), then a 0 bit is a
 *		1 unit gap and a 1 bit is a 3 unit gap.
 *
 *		Carrier off sits at mid scale with a little noise.
 *		Carrier on alternates between the two extremes, which
 *		is roughly what an I/Q capture of an OOK burst looks
 *		like once the carrier is close to the sample rate.
 *
 *------------------------------------------------------------------*/

import (
	"fmt"
	"math/rand/v2"
	"strings"
)

type SynthConfig struct {
	Unit      int // samples in a 0 gap
	HighWidth int // samples in each carrier-on pulse
	LeadIn    int
	Tail      int
	Center    int
	Amplitude int
	Noise     int
	Jitter    int // each run length varies by up to +/- this much
	Seed      uint64
}

func DefaultSynth() SynthConfig {
	return SynthConfig{
		Unit:      40,
		HighWidth: 20,
		LeadIn:    100,
		Tail:      100,
		Center:    0x8000,
		Amplitude: 20000,
		Noise:     1500,
	}
}

// ParseBits reads a string of '0' and '1'.  Spaces and underscores are
// ignored so long messages can be grouped.
func ParseBits(s string) ([]bool, error) {
	var out []bool
	for i, c := range s {
		switch c {
		case '0':
			out = append(out, false)
		case '1':
			out = append(out, true)
		case ' ', '_':
		default:
			return nil, fmt.Errorf("bit %d: %q is not 0 or 1: %w", i, c, ErrInvalidParameter)
		}
	}
	return out, nil
}

// FormatBits is the inverse of ParseBits.
func FormatBits(bits []bool) string {
	var sb strings.Builder
	for _, b := range bits {
		if b {
			sb.WriteByte('1')
		} else {
			sb.WriteByte('0')
		}
	}
	return sb.String()
}

type run struct {
	high bool
	n    int
}

func (c SynthConfig) runs(bits []bool) []run {
	var rng = rand.New(rand.NewPCG(c.Seed, c.Seed^0x9e3779b97f4a7c15))
	var jitter = func(n int) int {
		if c.Jitter > 0 {
			n += rng.IntN(2*c.Jitter+1) - c.Jitter
		}
		return max(1, n)
	}

	var out = []run{
		{false, c.LeadIn},
		{true, jitter(c.HighWidth)},
		{false, jitter(2 * c.Unit)},
		{true, jitter(c.HighWidth)},
	}
	for _, b := range bits {
		var gap = c.Unit
		if b {
			gap = 3 * c.Unit
		}
		out = append(out, run{false, jitter(gap)}, run{true, jitter(c.HighWidth)})
	}
	out = append(out, run{false, c.Tail})

	return out
}

// SynthesizeBinary returns the noiseless gated form of the message.
func SynthesizeBinary(bits []bool, cfg SynthConfig) Binary {
	var out Binary
	for _, r := range cfg.runs(bits) {
		for range r.n {
			out = append(out, r.high)
		}
	}
	return out
}

// Synthesize returns raw samples for the message.
func Synthesize(bits []bool, cfg SynthConfig) []int {
	var rng = rand.New(rand.NewPCG(cfg.Seed+1, cfg.Seed))
	var noise = func() int {
		if cfg.Noise <= 0 {
			return 0
		}
		return rng.IntN(2*cfg.Noise+1) - cfg.Noise
	}

	var out []int
	var phase = false
	for _, r := range cfg.runs(bits) {
		for range r.n {
			var s = cfg.Center
			if r.high {
				if phase {
					s += cfg.Amplitude
				} else {
					s -= cfg.Amplitude
				}
				phase = !phase
			}
			out = append(out, s+noise())
		}
	}
	return out
}
