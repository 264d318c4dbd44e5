package pulsedemod

/*------------------------------------------------------------------
 *
 * Purpose:	Save decode results to a log file.
 *
 * Description:	One CSV row per capture, easy to pull into a
 *		spreadsheet to compare runs:
 *
 *		run,utime,isotime,source,samples,duty,divisor,pulses,
 *		agreement,avg_width,margin,bits,error
 *
 *		The header is only written when the file is new, so
 *		repeated runs append to the same log.
 *
 *------------------------------------------------------------------*/

import (
	"encoding/csv"
	"errors"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/google/uuid"
)

var resultLogHeader = []string{
	"run", "utime", "isotime", "source", "samples", "duty", "divisor", "pulses",
	"agreement", "avg_width", "margin", "bits", "error",
}

// ResultLog appends decode results to a CSV file.
type ResultLog struct {
	RunID uuid.UUID

	f *os.File
	w *csv.Writer
}

// OpenResultLog opens path for append, creating it (with a header) if
// needed.  Every row written through it carries the same run id.
func OpenResultLog(path string) (*ResultLog, error) {
	var _, statErr = os.Stat(path)
	var alreadyThere = statErr == nil
	if statErr != nil && !errors.Is(statErr, fs.ErrNotExist) {
		return nil, statErr
	}

	var f, err = os.OpenFile(path, os.O_RDWR|os.O_APPEND|os.O_CREATE, 0o644)
	if err != nil {
		return nil, err
	}

	var l = &ResultLog{
		RunID: uuid.New(),
		f:     f,
		w:     csv.NewWriter(f),
	}

	if !alreadyThere {
		if err := l.w.Write(resultLogHeader); err != nil {
			f.Close()
			return nil, err
		}
		l.w.Flush()
	}

	return l, nil
}

// Write adds a row for one capture.  r may be nil when err is set.
func (l *ResultLog) Write(source string, r *Result, decodeErr error, now time.Time) error {
	now = now.UTC()

	var row = []string{
		l.RunID.String(),
		strconv.FormatInt(now.Unix(), 10),
		now.Format("2006-01-02T15:04:05Z"),
		source,
		"", "", "", "", "", "", "", "", "",
	}

	if r != nil {
		row[4] = strconv.Itoa(r.Samples)
		row[5] = strconv.Itoa(r.DutyCycle)
		row[6] = strconv.Itoa(r.Divisor())
		row[7] = strconv.Itoa(r.Edges.Falls)
		if r.Calibration != nil {
			row[8] = strconv.Itoa(r.Calibration.Agreement)
		}
		row[9] = strconv.Itoa(r.Bits.AvgWidth)
		row[10] = strconv.Itoa(r.Stats.Margin)
		row[11] = r.BitText()
	}
	if decodeErr != nil {
		row[12] = decodeErr.Error()
	}

	if err := l.w.Write(row); err != nil {
		return err
	}
	l.w.Flush()
	return l.w.Error()
}

func (l *ResultLog) Close() error {
	l.w.Flush()
	var err = l.w.Error()
	if cerr := l.f.Close(); err == nil {
		err = cerr
	}
	return err
}
