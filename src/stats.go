package pulsedemod

import (
	"gonum.org/v1/gonum/stat"
)

// WidthStats summarises the gap widths read as one symbol.
type WidthStats struct {
	Count  int
	Mean   float64
	StdDev float64
}

// PulseStats describes how cleanly the two symbol classes separate.
type PulseStats struct {
	Zero WidthStats
	One  WidthStats
	// Margin is the distance between the widest 0 and the narrowest 1,
	// in samples.  Small or negative margins mean a marginal capture.
	Margin int
}

func widthStats(widths []float64) WidthStats {
	var ws = WidthStats{Count: len(widths)}
	switch len(widths) {
	case 0:
	case 1:
		ws.Mean = widths[0]
	default:
		ws.Mean, ws.StdDev = stat.MeanStdDev(widths, nil)
	}
	return ws
}

// SummarisePulses computes per-symbol statistics for classified pulses.
// The sync gap is left out.
func SummarisePulses(pulses []Pulse) PulseStats {
	var zeros, ones []float64
	var widestZero, narrowestOne = -1, -1

	for _, p := range pulses {
		switch p.Symbol {
		case SymbolZero:
			zeros = append(zeros, float64(p.Width))
			widestZero = max(widestZero, p.Width)
		case SymbolOne:
			ones = append(ones, float64(p.Width))
			if narrowestOne < 0 || p.Width < narrowestOne {
				narrowestOne = p.Width
			}
		}
	}

	var ps = PulseStats{
		Zero: widthStats(zeros),
		One:  widthStats(ones),
	}
	if widestZero >= 0 && narrowestOne >= 0 {
		ps.Margin = narrowestOne - widestZero
	}
	return ps
}
