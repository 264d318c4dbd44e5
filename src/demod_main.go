package pulsedemod

/*-------------------------------------------------------------------
 *
 * Name:	pulsedemod
 *
 * Purpose:	Recover the bits from pulse width modulated captures.
 *
 * Inputs:	Raw .complex16u / .complex16s captures (optionally
 *		.gz or .zst compressed) or screenshots of the signal
 *		taken in the waveform viewer.
 *
 * Description:	Each file is decoded on its own; one bad capture does
 *		not stop the others.  With more than one file the bit
 *		texts are compared at the end, which is the quickest
 *		way to see whether calibration holds up across
 *		several recordings of the same transmission.
 *
 *		For example
 *
 *			gen_pulses -o a.complex16u -j 3 -s 1 1011
 *			gen_pulses -o b.complex16u -j 3 -s 2 1011
 *			pulsedemod --compare a.complex16u b.complex16u
 *
 *--------------------------------------------------------------------*/

import (
	"context"
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"slices"
	"time"

	"github.com/charmbracelet/log"
	"github.com/lestrrat-go/strftime"
	"github.com/spf13/pflag"
)

func PulseDemodMain() {
	var code = runPulseDemod(os.Stdout, os.Stderr)
	if code != 0 {
		os.Exit(code)
	}
}

func runPulseDemod(stdout, stderr io.Writer) int {
	var configFile = pflag.StringP("config", "c", "", "YAML configuration file.")
	var divisor = pflag.IntP("divisor", "D", 0, "Use this sample divisor instead of calibrating. 0 = calibrate.")
	var tolerance = pflag.IntP("tolerance", "t", -1, "Dead band either side of the mean gap width, in percent. -1 = from config.")
	var verbose = pflag.CountP("verbose", "v", "More logging (repeat for debug).")
	var quiet = pflag.BoolP("quiet", "q", false, "Only log errors.")
	var showPulses = pflag.BoolP("show-pulses", "x", false, "Print every measured gap.")
	var timestampFormat = pflag.StringP("timestamp-format", "T", "", "Precede results with 'strftime' format time stamp.")
	var logFile = pflag.StringP("log-file", "L", "", "Append results to this CSV file.")
	var metricsFile = pflag.StringP("metrics-file", "m", "", "Write Prometheus metrics to this file when done.")
	var waveformFile = pflag.StringP("waveform", "w", "", "Write the scaled and gated waveform of a single sample file as CSV.")
	var compare = pflag.Bool("compare", false, "Fail unless all captures decode to the same bits.")
	var version = pflag.Bool("version", false, "Print version and exit.")
	var help = pflag.BoolP("help", "h", false, "Display help text.")

	pflag.Usage = func() {
		fmt.Fprintf(stderr, "%s recovers the bits from pulse width modulated captures.\n", os.Args[0])
		fmt.Fprintf(stderr, "\n")
		fmt.Fprintf(stderr, "Usage: %s [OPTION]... FILE...\n", os.Args[0])
		pflag.PrintDefaults()
		fmt.Fprintf(stderr, "\n")
		fmt.Fprintf(stderr, "FILE is a .complex16u or .complex16s capture (optionally .gz or .zst)\n")
		fmt.Fprintf(stderr, "or a .png/.bmp/.tiff/... screenshot from the waveform viewer.\n")
		fmt.Fprintf(stderr, "\n")
		fmt.Fprintf(stderr, "Examples:\n")
		fmt.Fprintf(stderr, "\n")
		fmt.Fprintf(stderr, "$ gen_pulses -o test1.complex16u 1011\n")
		fmt.Fprintf(stderr, "$ %s test1.complex16u\n", os.Args[0])
		fmt.Fprintf(stderr, "\n")
		fmt.Fprintf(stderr, "$ %s --compare sample_01.complex16u sample_02.complex16u sample_03.png\n", os.Args[0])
	}

	// !!! PARSE !!!
	pflag.Parse()

	if *help {
		pflag.Usage()
		return 1
	}

	if *version {
		printVersion(stdout)
		return 0
	}

	var level = log.WarnLevel
	switch {
	case *quiet:
		level = log.ErrorLevel
	case *verbose == 1:
		level = log.InfoLevel
	case *verbose > 1:
		level = log.DebugLevel
	}
	var logger = NewLogger(stderr, level)

	var cfg = DefaultConfig()
	if *configFile != "" {
		var loaded, err = LoadConfig(*configFile)
		if err != nil {
			logger.Error("can't load config", "err", err)
			return 1
		}
		cfg = loaded
	}
	if *divisor != 0 {
		cfg.Divisor = *divisor
	}
	if *tolerance >= 0 {
		cfg.Classifier.TolerancePercent = *tolerance
	}
	if err := cfg.Validate(); err != nil {
		logger.Error("bad configuration", "err", err)
		return 1
	}

	if len(pflag.Args()) == 0 {
		fmt.Fprintf(stderr, "Specify capture file name on command line.\n\n")
		pflag.Usage()
		return 1
	}

	var stamp = func() string { return "" }
	if *timestampFormat != "" {
		var f, err = strftime.New(*timestampFormat)
		if err != nil {
			logger.Error("bad timestamp format", "format", *timestampFormat, "err", err)
			return 1
		}
		stamp = func() string { return f.FormatString(time.Now()) + " " }
	}

	var telemetry = MultiTelemetry{LogTelemetry{Logger: logger}}
	var prom *PromTelemetry
	if *metricsFile != "" {
		prom = NewPromTelemetry()
		telemetry = append(telemetry, prom)
	}

	var resultLog *ResultLog
	if *logFile != "" {
		var err error
		resultLog, err = OpenResultLog(*logFile)
		if err != nil {
			logger.Error("can't open log file", "file", *logFile, "err", err)
			return 1
		}
		defer resultLog.Close()
	}

	if *waveformFile != "" {
		if err := dumpWaveform(*waveformFile, pflag.Args()); err != nil {
			logger.Error("can't write waveform", "file", *waveformFile, "err", err)
			return 1
		}
	}

	var decoder = NewDecoder(cfg, telemetry)
	var outcomes = DecodeAll(context.Background(), decoder, pflag.Args())

	for _, o := range outcomes {
		printOutcome(stdout, stamp(), o, *showPulses)
		if resultLog != nil {
			if err := resultLog.Write(o.Source, o.Result, o.Err, time.Now()); err != nil {
				logger.Error("can't write log file", "file", *logFile, "err", err)
			}
		}
	}

	var agreement = Compare(outcomes)
	if len(outcomes) > 1 {
		printAgreement(stdout, agreement)
	}

	if prom != nil {
		if err := prom.WriteTextfile(*metricsFile); err != nil {
			logger.Error("can't write metrics", "file", *metricsFile, "err", err)
			return 1
		}
	}

	if agreement.Failed > 0 {
		return 1
	}
	if *compare && !agreement.Agree() {
		return 1
	}
	return 0
}

func printOutcome(w io.Writer, prefix string, o Outcome, showPulses bool) {
	if o.Err != nil {
		fmt.Fprintf(w, "%s%s: FAILED: %s\n", prefix, o.Source, o.Err)
		var se *StageError
		if errors.As(o.Err, &se) && len(se.Histogram) > 0 {
			fmt.Fprintf(w, "    pulse count histogram %s\n", se.Histogram)
		}
		return
	}

	var r = o.Result
	fmt.Fprintf(w, "%s%s: Data has %d highs in %d samples (~ %d %%)\n", prefix, o.Source, r.Highs, r.Samples, r.DutyCycle)
	if r.Calibration != nil {
		fmt.Fprintf(w, "    Will use a sample divisor of %d (%d of %d match)\n", r.Divisor(), r.Calibration.Agreement, len(r.Calibration.Trials))
	} else {
		fmt.Fprintf(w, "    Using fixed sample divisor of %d\n", r.Divisor())
	}
	fmt.Fprintf(w, "    Average width: %d\n", r.Bits.AvgWidth)

	if showPulses {
		for i, p := range r.Bits.Pulses {
			fmt.Fprintf(w, "    Count: %02d  Value: %c   Width %d  Delta: %d\n", i, p.Symbol, p.Width, p.Delta)
		}
		fmt.Fprintf(w, "    0 width %.1f +/- %.1f, 1 width %.1f +/- %.1f, margin %d\n",
			r.Stats.Zero.Mean, r.Stats.Zero.StdDev, r.Stats.One.Mean, r.Stats.One.StdDev, r.Stats.Margin)
	}

	fmt.Fprintf(w, "    Bit values (%d):\n", len(r.BitValues()))
	fmt.Fprintf(w, "    %s\n", r.BitText())
}

func printAgreement(w io.Writer, a Agreement) {
	switch {
	case a.Decoded == 0:
		fmt.Fprintf(w, "No captures decoded.\n")
	case a.Agree():
		for text := range a.Texts {
			fmt.Fprintf(w, "All %d decoded captures agree: %s\n", a.Decoded, text)
		}
	default:
		fmt.Fprintf(w, "Captures disagree:\n")
		for _, text := range slices.Sorted(maps.Keys(a.Texts)) {
			fmt.Fprintf(w, "    %s  %v\n", text, a.Texts[text])
		}
	}
	if a.Failed > 0 {
		fmt.Fprintf(w, "%d capture(s) failed.\n", a.Failed)
	}
}

// dumpWaveform gates the single sample file in args and writes it out
// for plotting.
func dumpWaveform(path string, args []string) error {
	if len(args) != 1 || !IsSampleFile(args[0]) {
		return fmt.Errorf("waveform needs exactly one sample file: %w", ErrInvalidParameter)
	}

	var samples, err = ReadSampleFile(args[0])
	if err != nil {
		return err
	}

	var bin, levels, gerr = Gate(samples)
	if gerr != nil {
		return gerr
	}

	var f, cerr = os.Create(path)
	if cerr != nil {
		return cerr
	}

	if err := WriteWaveformCSV(f, samples, levels, bin); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
