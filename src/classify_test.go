package pulsedemod

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

// gapTransitions builds the edge list for a train of 20 sample pulses
// separated by the given low gaps, ending on a falling edge.
func gapTransitions(gaps []int) []Transition {
	var n = 10
	var out = []Transition{{Kind: RisingEdge, Sample: n}}
	for _, g := range gaps {
		n += 20
		out = append(out, Transition{Kind: FallingEdge, Sample: n})
		n += g
		out = append(out, Transition{Kind: RisingEdge, Sample: n})
	}
	n += 20
	return append(out, Transition{Kind: FallingEdge, Sample: n})
}

func Test_ClassifyBits(t *testing.T) {
	var bits, err = ClassifyBits(gapTransitions([]int{100, 205, 95, 208}), DefaultTolerancePercent)

	require.NoError(t, err)
	assert.Equal(t, 152, bits.AvgWidth)
	assert.Equal(t, "s101", bits.Text)
	assert.Equal(t, []bool{true, false, true}, bits.Values)

	var deltas []int
	for _, p := range bits.Pulses {
		deltas = append(deltas, p.Delta)
	}
	assert.Equal(t, []int{-35, 34, -38, 36}, deltas)
	assert.Equal(t, Pulse{Fall: 30, Rise: 130, Width: 100, Delta: -35, Symbol: SymbolSync}, bits.Pulses[0])
}

func Test_ClassifyBits_SyncIsNeverData(t *testing.T) {
	// The first gap is well inside the dead band and is still only sync.
	var bits, err = ClassifyBits(gapTransitions([]int{80, 40, 120}), DefaultTolerancePercent)

	require.NoError(t, err)
	assert.Equal(t, "s01", bits.Text)
	assert.Equal(t, []bool{false, true}, bits.Values)
}

func Test_ClassifyBits_Ambiguous(t *testing.T) {
	var tr = gapTransitions([]int{100, 100, 50, 150})
	var _, err = ClassifyBits(tr, DefaultTolerancePercent)

	require.ErrorIs(t, err, ErrAmbiguousPulse)

	var se *StageError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, StageClassify, se.Stage)
	assert.Equal(t, tr[3].Sample, se.Sample)
	assert.Equal(t, 100, se.Value)
}

func Test_ClassifyBits_Tolerance(t *testing.T) {
	// Mean 90: the 112 gap is +24%.
	var tr = gapTransitions([]int{98, 112, 60})

	var bits, err = ClassifyBits(tr, 10)
	require.NoError(t, err)
	assert.Equal(t, "s10", bits.Text)

	_, err = ClassifyBits(tr, 30)
	assert.ErrorIs(t, err, ErrAmbiguousPulse)

	_, err = ClassifyBits(tr, -1)
	assert.ErrorIs(t, err, ErrInvalidParameter)
}

func Test_ClassifyBits_Malformed(t *testing.T) {
	var _, err = ClassifyBits([]Transition{
		{Kind: RisingEdge, Sample: 10},
		{Kind: FallingEdge, Sample: 30},
		{Kind: FallingEdge, Sample: 90},
	}, DefaultTolerancePercent)

	require.ErrorIs(t, err, ErrMalformedSequence)

	var se *StageError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, 90, se.Sample)
}

func Test_ClassifyBits_NoData(t *testing.T) {
	var _, err = ClassifyBits(nil, DefaultTolerancePercent)
	assert.ErrorIs(t, err, ErrNoData)

	_, err = ClassifyBits([]Transition{
		{Kind: RisingEdge, Sample: 10},
		{Kind: FallingEdge, Sample: 30},
	}, DefaultTolerancePercent)
	assert.ErrorIs(t, err, ErrNoData)
}

func Test_ClassifyBits_RepeatedRise(t *testing.T) {
	var bits, err = ClassifyBits([]Transition{
		{Kind: RisingEdge, Sample: 10},
		{Kind: RisingEdge, Sample: 20},
		{Kind: FallingEdge, Sample: 30},
		{Kind: RisingEdge, Sample: 110},
		{Kind: FallingEdge, Sample: 130},
		{Kind: RisingEdge, Sample: 170},
	}, DefaultTolerancePercent)

	require.NoError(t, err)
	assert.Equal(t, "s0", bits.Text)
}

func Test_ClassifyBits_Property(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		var gaps = rapid.SliceOfN(rapid.IntRange(1, 1000), 1, 60).Draw(t, "gaps")
		var tolerance = rapid.IntRange(0, 50).Draw(t, "tolerance")

		var bits, err = ClassifyBits(gapTransitions(gaps), tolerance)
		if err != nil {
			require.ErrorIs(t, err, ErrAmbiguousPulse)
			return
		}

		require.Len(t, bits.Pulses, len(gaps))
		assert.Len(t, bits.Values, len(gaps)-1)
		assert.Len(t, bits.Text, len(gaps))
		assert.Equal(t, byte(SymbolSync), bits.Text[0])

		for i, p := range bits.Pulses {
			assert.Equal(t, gaps[i], p.Width)
			if i == 0 {
				continue
			}
			assert.Equal(t, p.Width > bits.AvgWidth, bits.Values[i-1])
			assert.Greater(t, max(p.Delta, -p.Delta), tolerance)
		}
	})
}
