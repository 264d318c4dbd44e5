package pulsedemod

import (
	"context"
)

// Outcome is the decode of one source in a batch.  Exactly one of
// Result and Err is set.
type Outcome struct {
	Source string
	Result *Result
	Err    error
}

// DecodeAll decodes every source in turn.  A failure is recorded in
// that source's Outcome and the batch carries on; only cancelling ctx
// stops it early, leaving the remaining outcomes with ctx's error.
func DecodeAll(ctx context.Context, d *Decoder, sources []string) []Outcome {
	var out = make([]Outcome, len(sources))

	for i, src := range sources {
		out[i].Source = src
		if err := ctx.Err(); err != nil {
			out[i].Err = err
			continue
		}
		out[i].Result, out[i].Err = d.DecodeFile(ctx, src)
	}

	return out
}

// Agreement is how a batch compares.
type Agreement struct {
	Decoded int
	Failed  int
	// Texts maps each distinct bit text to the sources that produced it.
	Texts map[string][]string
}

// Agree is true when at least one source decoded and all decoded
// sources produced the same bit text.
func (a Agreement) Agree() bool {
	return a.Decoded > 0 && len(a.Texts) == 1
}

// Compare summarises a batch.
func Compare(outcomes []Outcome) Agreement {
	var a = Agreement{Texts: make(map[string][]string)}
	for _, o := range outcomes {
		if o.Err != nil {
			a.Failed++
			continue
		}
		a.Decoded++
		var text = o.Result.BitText()
		a.Texts[text] = append(a.Texts[text], o.Source)
	}
	return a
}
