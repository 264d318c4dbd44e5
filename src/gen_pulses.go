package pulsedemod

/*------------------------------------------------------------------
 *
 * Name:	gen_pulses
 *
 * Purpose:	Test program for generating pulse width captures.
 *
 * Description:	The given bits are framed with a sync pulse and
 *		written as a raw capture that pulsedemod can read.
 *		The output file name picks the format, and a .gz or
 *		.zst suffix compresses it.
 *
 * Examples:	Default message:
 *
 *			gen_pulses -o z1.complex16u
 *			pulsedemod z1.complex16u
 *
 *		User-defined content:
 *
 *			gen_pulses -o z.complex16u.zst 1011 0010
 *			pulsedemod z.complex16u.zst
 *
 *		Timing jitter, different on every capture:
 *
 *			gen_pulses -j 4 -s 1 -o a.complex16u
 *			gen_pulses -j 4 -s 2 -o b.complex16u
 *			pulsedemod --compare a.complex16u b.complex16u
 *
 *------------------------------------------------------------------*/

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/pflag"
)

// A 40 bit message, the same length as the captures this was first
// written for.
const defaultMessage = "1011001110001011110000101101001110100101"

func GenPulsesMain() {
	var code = runGenPulses(os.Stdout, os.Stderr)
	if code != 0 {
		os.Exit(code)
	}
}

func runGenPulses(stdout, stderr io.Writer) int {
	var defaults = DefaultSynth()

	var outputFile = pflag.StringP("output-file", "o", "", "Write capture to this file (.complex16u or .complex16s, optionally .gz or .zst).")
	var unit = pflag.IntP("unit", "u", defaults.Unit, "Samples in the gap for a 0 bit.  A 1 bit is three times this.")
	var highWidth = pflag.IntP("high-width", "W", defaults.HighWidth, "Samples in each carrier-on pulse.")
	var leadIn = pflag.IntP("lead-in", "l", defaults.LeadIn, "Carrier-off samples before the sync pulse.")
	var tail = pflag.IntP("tail", "z", defaults.Tail, "Carrier-off samples after the last pulse.")
	var amplitude = pflag.IntP("amplitude", "a", defaults.Amplitude, "Carrier-on swing either side of mid scale.")
	var noise = pflag.IntP("noise", "n", defaults.Noise, "Peak noise added to every sample.")
	var jitter = pflag.IntP("jitter", "j", 0, "Vary every pulse and gap width by up to this many samples.")
	var seed = pflag.Uint64P("seed", "s", 0, "Random seed for noise and jitter.")
	var help = pflag.BoolP("help", "h", false, "Display help text.")

	pflag.Usage = func() {
		fmt.Fprintf(stderr, "%s - Generate a pulse width capture.\n", os.Args[0])
		fmt.Fprintf(stderr, "\n")
		fmt.Fprintf(stderr, "Usage: %s [options] [bits]...\n", os.Args[0])
		pflag.PrintDefaults()
		fmt.Fprintf(stderr, "\n")
		fmt.Fprintf(stderr, "Bits are given as 0 and 1; several arguments are joined.\n")
		fmt.Fprintf(stderr, "Without any, a built-in 40 bit message is used.\n")
		fmt.Fprintf(stderr, "\n")
		fmt.Fprintf(stderr, "Example:  gen_pulses -o x.complex16u 1011\n")
	}

	// !!! PARSE !!!
	pflag.Parse()

	if *help {
		pflag.Usage()
		return 1
	}

	if *outputFile == "" {
		fmt.Fprintf(stderr, "Output file must be specified with -o.\n\n")
		pflag.Usage()
		return 1
	}

	if *unit < 1 || *highWidth < 1 || *leadIn < 0 || *tail < 0 || *jitter < 0 {
		fmt.Fprintf(stderr, "Widths must be positive and jitter must not be negative.\n")
		return 1
	}

	if *jitter >= *unit || *jitter >= *highWidth {
		fmt.Fprintf(stderr, "Jitter %d is too large for unit %d and pulse width %d.\n", *jitter, *unit, *highWidth)
		return 1
	}

	var message = strings.Join(pflag.Args(), "")
	if message == "" {
		message = defaultMessage
	}

	var bits, err = ParseBits(message)
	if err != nil {
		fmt.Fprintf(stderr, "%s\n", err)
		return 1
	}
	if len(bits) == 0 {
		fmt.Fprintf(stderr, "No bits to send.\n")
		return 1
	}

	var cfg = SynthConfig{
		Unit:      *unit,
		HighWidth: *highWidth,
		LeadIn:    *leadIn,
		Tail:      *tail,
		Center:    defaults.Center,
		Amplitude: *amplitude,
		Noise:     *noise,
		Jitter:    *jitter,
		Seed:      *seed,
	}
	if format, _ := splitExt(*outputFile); format == FormatS16BE {
		cfg.Center = 0
	}

	var samples = Synthesize(bits, cfg)
	if err := WriteSampleFile(*outputFile, samples); err != nil {
		fmt.Fprintf(stderr, "Can't write %s: %s\n", *outputFile, err)
		return 1
	}

	fmt.Fprintf(stdout, "Wrote %d samples encoding %d bits to %s.\n", len(samples), len(bits), *outputFile)
	return 0
}
