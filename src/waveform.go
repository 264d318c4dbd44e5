package pulsedemod

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
)

// WriteWaveformCSV writes one "index,scaled,gated" row per sample, the
// sample less the capture minimum next to the level the gate put out.
// Feed it to any plotting tool to see what the gate did.
func WriteWaveformCSV(w io.Writer, samples []int, levels GateLevels, bin Binary) error {
	if len(samples) != len(bin) {
		return fmt.Errorf("waveform: %d samples but %d gated values: %w", len(samples), len(bin), ErrInvalidParameter)
	}

	var cw = csv.NewWriter(w)
	if err := cw.Write([]string{"index", "scaled", "gated"}); err != nil {
		return err
	}

	for i, s := range samples {
		var err = cw.Write([]string{
			strconv.Itoa(i + 1),
			strconv.Itoa(s - levels.Min),
			strconv.Itoa(levels.Level(bin[i])),
		})
		if err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}
