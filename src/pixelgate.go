package pulsedemod

/*------------------------------------------------------------------
 *
 * Purpose:	Gate a screenshot of a waveform viewer instead of raw
 *		samples.
 *
 * Description:	The viewer draws the trace band in a known colour.
 *		Walk down the probe column to the first row painted in
 *		one of the reference colours, then read that row left
 *		to right.  A pixel whose R+G+B is under the noise floor
 *		(i.e. the dark signal trace crossing the band) is high.
 *
 *------------------------------------------------------------------*/

import (
	"fmt"
	"image"
	"image/color"
)

// RGB is an 8 bit per channel colour as it appears in the config file.
type RGB [3]uint8

func (c RGB) String() string {
	return fmt.Sprintf("(%d,%d,%d)", c[0], c[1], c[2])
}

// PixelConfig configures PixelGate.
type PixelConfig struct {
	ProbeColumn     int   `yaml:"probe_column"`
	NoiseFloor      int   `yaml:"noise_floor"`
	ReferenceColors []RGB `yaml:"reference_colors"`
}

// DefaultPixel matches the trace colours of Universal Radio Hacker.
func DefaultPixel() PixelConfig {
	return PixelConfig{
		ProbeColumn: 1,
		NoiseFloor:  30,
		ReferenceColors: []RGB{
			{244, 172, 172},
			{245, 161, 161},
		},
	}
}

func rgb8(c color.Color) RGB {
	var r, g, b, _ = c.RGBA()
	return RGB{uint8(r >> 8), uint8(g >> 8), uint8(b >> 8)}
}

// FindReferenceRow returns the first row, scanning the probe column from
// the top, whose pixel matches a reference colour.
func FindReferenceRow(img image.Image, cfg PixelConfig) (int, error) {
	if img == nil {
		panic("pulsedemod: nil image")
	}

	var bounds = img.Bounds()
	var x = bounds.Min.X + cfg.ProbeColumn
	if x >= bounds.Max.X || cfg.ProbeColumn < 0 {
		var err = stageErr(StagePixelGate, ErrInvalidParameter, "probe column %d outside image width %d", cfg.ProbeColumn, bounds.Dx())
		err.Value = cfg.ProbeColumn
		return 0, err
	}

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		var px = rgb8(img.At(x, y))
		for _, ref := range cfg.ReferenceColors {
			if px == ref {
				return y - bounds.Min.Y, nil
			}
		}
	}

	return 0, stageErr(StagePixelGate, ErrReferenceBandNotFound, "no pixel in column %d matches %v", cfg.ProbeColumn, cfg.ReferenceColors)
}

// RowBrightness returns the R+G+B sum of each pixel along row y.
func RowBrightness(img image.Image, y int) []int {
	var bounds = img.Bounds()
	var out = make([]int, bounds.Dx())
	for i := range out {
		var px = rgb8(img.At(bounds.Min.X+i, bounds.Min.Y+y))
		out[i] = int(px[0]) + int(px[1]) + int(px[2])
	}
	return out
}

// PixelGate produces a Binary, one value per image column, directly
// usable in place of Gate's output.
func PixelGate(img image.Image, cfg PixelConfig) (Binary, error) {
	var row, err = FindReferenceRow(img, cfg)
	if err != nil {
		return nil, err
	}

	var sums = RowBrightness(img, row)
	var out = make(Binary, len(sums))
	for i, s := range sums {
		out[i] = s < cfg.NoiseFloor
	}

	return out, nil
}
