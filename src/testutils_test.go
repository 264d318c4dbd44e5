package pulsedemod

import (
	"io"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// captureStdout runs command with os.Stdout redirected and returns what it
// printed.  The *Main functions pick up os.Stdout when they start, so this
// works for them as well as for anything using fmt.Print.
func captureStdout(t *testing.T, command func()) string {
	t.Helper()

	var oldStdout = os.Stdout
	defer func() {
		os.Stdout = oldStdout
	}()

	var r, w, err = os.Pipe()
	require.NoError(t, err)
	os.Stdout = w

	var done = make(chan []byte)
	go func() {
		var b, _ = io.ReadAll(r)
		done <- b
	}()

	command()

	w.Close() //nolint:gosec
	os.Stdout = oldStdout

	return string(<-done)
}

func AssertOutputContains(t *testing.T, command func(), expectedOutputContains ...string) {
	t.Helper()

	var output = captureStdout(t, command)
	for _, expected := range expectedOutputContains {
		assert.Contains(t, output, expected)
	}
}
