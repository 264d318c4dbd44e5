package pulsedemod

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pflag (not unreasonably) assumes it only ever gets called once. But lots of
// test infrastructure was built around "call this command then this command".
// Running it in Go tests (for coverage analysis and convenience etc.) means
// doing some slight bodges.
func setupPflag(args []string) {
	os.Args = args
	pflag.CommandLine = pflag.NewFlagSet(os.Args[0], pflag.ExitOnError)
}

// demod runs pulsedemod with args, returning the exit code and output.
func demod(args ...string) (int, string, string) {
	setupPflag(append([]string{"pulsedemod"}, args...))

	var stdout, stderr bytes.Buffer
	var code = runPulseDemod(&stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func genPulses(t *testing.T, args ...string) {
	t.Helper()

	setupPflag(append([]string{"gen_pulses"}, args...))

	var stdout, stderr bytes.Buffer
	require.Equal(t, 0, runGenPulses(&stdout, &stderr), stderr.String())
}

func Test_GenPulsesDefault(t *testing.T) {
	var file = filepath.Join(t.TempDir(), "z1.complex16u")

	setupPflag([]string{"gen_pulses", "-o", file})
	AssertOutputContains(t, GenPulsesMain, "encoding 40 bits to "+file)

	setupPflag([]string{"pulsedemod", file})
	AssertOutputContains(t, PulseDemodMain,
		"Data has",
		"Will use a sample divisor of 725 (20 of 23 match)",
		"Bit values (40):",
		"s"+defaultMessage,
	)
}

func Test_GenPulsesUserMessage(t *testing.T) {
	var file = filepath.Join(t.TempDir(), "z.complex16u.zst")
	genPulses(t, "-o", file, "-z", "300", "1011")

	var code, out, _ = demod("-x", "-T", "[%Y]", file)

	assert.Equal(t, 0, code)
	assert.Contains(t, out, file+": Data has 120 highs in 1000 samples (~ 12 %)")
	assert.Contains(t, out, "Will use a sample divisor of 550 (19 of 23 match)")
	assert.Contains(t, out, "Average width: 96")
	assert.Contains(t, out, "Count: 02  Value: 0   Width 40  Delta: -59")
	assert.Contains(t, out, "margin 80")
	assert.Contains(t, out, "Bit values (4):\n    s1011\n")
	assert.True(t, strings.HasPrefix(out, "["), out)
}

func Test_PulseDemodCompare(t *testing.T) {
	var dir = t.TempDir()
	var files []string
	for i, name := range []string{"a.complex16u", "b.complex16s.gz", "c.complex16u"} {
		var file = filepath.Join(dir, name)
		genPulses(t, "-j", "4", "-s", string(rune('1'+i)), "-o", file)
		files = append(files, file)
	}

	var code, out, _ = demod(append([]string{"--compare"}, files...)...)

	assert.Equal(t, 0, code)
	assert.Contains(t, out, "All 3 decoded captures agree: s"+defaultMessage)

	// A capture of something else breaks the agreement.
	var odd = filepath.Join(dir, "d.complex16u")
	genPulses(t, "-o", odd, "-z", "300", "1011")

	code, out, _ = demod(append([]string{"--compare"}, append(files, odd)...)...)
	assert.Equal(t, 1, code)
	assert.Contains(t, out, "Captures disagree:")
	assert.Contains(t, out, "s1011  ["+odd+"]")
}

func Test_PulseDemodFailure(t *testing.T) {
	var dir = t.TempDir()
	var good = filepath.Join(dir, "good.complex16u")
	var flat = filepath.Join(dir, "flat.complex16u")
	genPulses(t, "-o", good)
	require.NoError(t, WriteSampleFile(flat, make([]int, 100)))

	var code, out, errOut = demod(good, flat)

	assert.Equal(t, 1, code)
	assert.Contains(t, out, "s"+defaultMessage)
	assert.Contains(t, out, flat+": FAILED: gate: invalid input")
	assert.Contains(t, out, "All 1 decoded captures agree")
	assert.Contains(t, out, "1 capture(s) failed.")
	assert.Contains(t, errOut, "decode failed")
}

func Test_PulseDemodFixedDivisorAndConfig(t *testing.T) {
	var dir = t.TempDir()
	var file = filepath.Join(dir, "x.complex16u")
	genPulses(t, "-o", file, "-z", "300", "1011")

	var code, out, _ = demod("-D", "550", file)
	assert.Equal(t, 0, code)
	assert.Contains(t, out, "Using fixed sample divisor of 550")
	assert.Contains(t, out, "s1011")

	var config = filepath.Join(dir, "pulsedemod.yaml")
	require.NoError(t, os.WriteFile(config, []byte("classifier:\n  tolerance_percent: 70\n"), 0o600))

	code, out, _ = demod("-c", config, file)
	assert.Equal(t, 1, code)
	assert.Contains(t, out, "FAILED: classify: ambiguous pulse")

	code, _, _ = demod("-c", config, "-t", "10", file)
	assert.Equal(t, 0, code)

	code, _, errOut := demod("-c", filepath.Join(dir, "missing.yaml"), file)
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "can't load config")
}

func Test_PulseDemodOutputs(t *testing.T) {
	var dir = t.TempDir()
	var file = filepath.Join(dir, "x.complex16u")
	var logFile = filepath.Join(dir, "results.csv")
	var metricsFile = filepath.Join(dir, "pulsedemod.prom")
	var waveformFile = filepath.Join(dir, "waveform.csv")
	genPulses(t, "-o", file, "-z", "300", "1011")

	var code, _, _ = demod("-L", logFile, "-m", metricsFile, "-w", waveformFile, file)
	require.Equal(t, 0, code)

	var rows = readCSV(t, logFile)
	require.Len(t, rows, 2)
	assert.Equal(t, file, rows[1][3])
	assert.Equal(t, "s1011", rows[1][11])

	var metrics, merr = os.ReadFile(metricsFile)
	require.NoError(t, merr)
	assert.Contains(t, string(metrics), `pulsedemod_decodes_total{outcome="ok"} 1`)

	var waveform = readCSV(t, waveformFile)
	assert.Len(t, waveform, 1001)
	assert.Equal(t, []string{"index", "scaled", "gated"}, waveform[0])
}

func Test_PulseDemodUsage(t *testing.T) {
	var code, _, errOut = demod()
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "Specify capture file name")

	code, _, _ = demod("-h")
	assert.Equal(t, 1, code)

	code, out, _ := demod("--version")
	assert.Equal(t, 0, code)
	assert.Contains(t, out, "pulsedemod - Version")

	code, _, errOut = demod("-w", filepath.Join(t.TempDir(), "w.csv"), "a.png")
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "can't write waveform")
}

func Test_GenPulsesErrors(t *testing.T) {
	for _, args := range [][]string{
		{},
		{"-o", "x.complex16u", "10a1"},
		{"-o", "x.complex16u", "-j", "40"},
		{"-o", "x.complex16u", "-u", "0"},
		{"-o", filepath.Join(t.TempDir(), "x.wav"), "1"},
	} {
		setupPflag(append([]string{"gen_pulses"}, args...))

		var stdout, stderr bytes.Buffer
		assert.Equal(t, 1, runGenPulses(&stdout, &stderr), "%v", args)
		assert.Empty(t, stdout.String())
	}
}
