package pulsedemod

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

// pulseAt returns n low samples with a high run of width w starting at
// index start.
func pulseAt(n, start, w int) Binary {
	var b = make(Binary, n)
	for i := start; i < start+w; i++ {
		b[i] = true
	}
	return b
}

func Test_ExtractEdges_SinglePulse(t *testing.T) {
	// 1000 samples / 100 = min width 10, so each edge is confirmed 11
	// samples after the raw change.
	var e, err = ExtractEdges(pulseAt(1000, 300, 50), 100)

	require.NoError(t, err)
	assert.Equal(t, 10, e.MinWidth)
	assert.Equal(t, []Transition{
		{Kind: RisingEdge, Sample: 311},
		{Kind: FallingEdge, Sample: 361},
	}, e.Transitions)
	assert.Equal(t, 1, e.Rises)
	assert.Equal(t, 1, e.Falls)
	assert.False(t, e.Partial())
}

func Test_ExtractEdges_SinglePulseProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		var n = rapid.IntRange(200, 2000).Draw(t, "n")
		var divisor = rapid.IntRange(4, 50).Draw(t, "divisor")
		var minWidth = n / divisor
		var w = rapid.IntRange(minWidth+1, n/3).Draw(t, "width")
		var start = rapid.IntRange(0, n-w-minWidth-1).Draw(t, "start")

		var e, err = ExtractEdges(pulseAt(n, start, w), divisor)

		require.NoError(t, err)
		require.Len(t, e.Transitions, 2)
		assert.Equal(t, Transition{Kind: RisingEdge, Sample: start + minWidth + 1}, e.Transitions[0])
		assert.Equal(t, Transition{Kind: FallingEdge, Sample: start + w + minWidth + 1}, e.Transitions[1])
		assert.Equal(t, w, e.Transitions[1].Sample-e.Transitions[0].Sample)
	})
}

func Test_ExtractEdges_Glitches(t *testing.T) {
	var bin = pulseAt(1000, 300, 50)

	// A short spike in the quiet part...
	for i := 100; i < 105; i++ {
		bin[i] = true
	}
	// ...and a short dropout in the middle of the pulse.
	for i := 320; i < 330; i++ {
		bin[i] = false
	}

	var e, err = ExtractEdges(bin, 100)

	require.NoError(t, err)
	// Neither glitch makes an edge, but the spike's 5 samples still count
	// toward the rise and the dropout's 10 toward the fall.
	assert.Equal(t, []Transition{
		{Kind: RisingEdge, Sample: 306},
		{Kind: FallingEdge, Sample: 351},
	}, e.Transitions)
}

func Test_ExtractEdges_DropoutsAddUp(t *testing.T) {
	// 200 samples / 20 = min width 10.  The pulse has 12 single sample
	// dropouts; the 11th confirms a fall even though none is long.
	var bin = pulseAt(200, 20, 60)
	for k := range 12 {
		bin[33+4*k] = false
	}

	var e, err = ExtractEdges(bin, 20)

	require.NoError(t, err)
	assert.Equal(t, []Transition{
		{Kind: RisingEdge, Sample: 31},
		{Kind: FallingEdge, Sample: 74},
	}, e.Transitions)
}

func Test_ExtractEdges_TrailingPartial(t *testing.T) {
	var bin = pulseAt(1000, 200, 50)
	for i := 900; i < 1000; i++ {
		bin[i] = true
	}

	var e, err = ExtractEdges(bin, 100)

	require.NoError(t, err)
	assert.Equal(t, 2, e.Rises)
	assert.Equal(t, 1, e.Falls)
	assert.True(t, e.Partial())
	assert.Equal(t, Transition{Kind: RisingEdge, Sample: 911}, e.Transitions[2])
}

func Test_ExtractEdges_NoEdges(t *testing.T) {
	var e, err = ExtractEdges(make(Binary, 500), 100)

	require.ErrorIs(t, err, ErrNoEdgesDetected)
	require.NotNil(t, e)
	assert.Empty(t, e.Transitions)

	// Only glitches, none longer than the minimum width.
	e, err = ExtractEdges(pulseAt(500, 250, 5), 100)
	assert.ErrorIs(t, err, ErrNoEdgesDetected)
}

func Test_ExtractEdges_BadDivisor(t *testing.T) {
	var bin = pulseAt(100, 10, 50)

	for _, d := range []int{0, -5, 101, 1000} {
		var e, err = ExtractEdges(bin, d)
		assert.Nil(t, e)
		require.ErrorIs(t, err, ErrInvalidParameter, "divisor %d", d)

		var se *StageError
		require.ErrorAs(t, err, &se)
		assert.Equal(t, StageEdges, se.Stage)
		assert.Equal(t, d, se.Value)
	}
}

func Test_Edges_CountPolicy(t *testing.T) {
	var cases = []struct {
		rises, falls int
		want         error
	}{
		{0, 0, ErrNoEdgesDetected},
		{3, 3, nil},
		{4, 3, nil},
		{5, 3, ErrAsymmetricEdges},
		{3, 4, ErrAsymmetricEdges},
		{0, 1, ErrAsymmetricEdges},
	}

	for _, c := range cases {
		var e = &Edges{Rises: c.rises, Falls: c.falls, Divisor: 100, MinWidth: 10}
		var err = e.check()
		if c.want == nil {
			assert.NoError(t, err, "%d/%d", c.rises, c.falls)
			continue
		}
		require.ErrorIs(t, err, c.want, "%d/%d", c.rises, c.falls)

		var se *StageError
		require.ErrorAs(t, err, &se)
		assert.Equal(t, 100, se.Value)
	}
}

func Test_EdgeKind_String(t *testing.T) {
	assert.Equal(t, "L-H", RisingEdge.String())
	assert.Equal(t, "H-L", FallingEdge.String())
	assert.Panics(t, func() { _ = EdgeKind(0).String() })
}
