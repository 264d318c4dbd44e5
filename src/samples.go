package pulsedemod

/*------------------------------------------------------------------
 *
 * Purpose:	Read and write headerless sample captures.
 *
 * Description:	A capture is nothing but 16 bit big endian values, one
 *		per sample.  The extension says how to read them:
 *
 *			.complex16u	unsigned
 *			.complex16s	signed
 *
 *		Either may be wrapped in .gz or .zst, which is removed
 *		before looking at the inner extension.
 *
 *------------------------------------------------------------------*/

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

type SampleFormat int

const (
	FormatUnknown SampleFormat = iota
	FormatU16BE
	FormatS16BE
)

func (f SampleFormat) String() string {
	switch f {
	case FormatU16BE:
		return "complex16u"
	case FormatS16BE:
		return "complex16s"
	}
	return "unknown"
}

type compression int

const (
	compressNone compression = iota
	compressGzip
	compressZstd
)

// splitExt works out the sample format and compression wrapper from a
// file name, e.g. "x.complex16u.zst".
func splitExt(name string) (SampleFormat, compression) {
	var lower = strings.ToLower(name)
	var comp = compressNone

	switch filepath.Ext(lower) {
	case ".gz":
		comp = compressGzip
		lower = strings.TrimSuffix(lower, ".gz")
	case ".zst":
		comp = compressZstd
		lower = strings.TrimSuffix(lower, ".zst")
	}

	switch filepath.Ext(lower) {
	case ".complex16u":
		return FormatU16BE, comp
	case ".complex16s":
		return FormatS16BE, comp
	}

	return FormatUnknown, comp
}

// IsSampleFile reports whether name looks like a capture we can read.
func IsSampleFile(name string) bool {
	var f, _ = splitExt(name)
	return f != FormatUnknown
}

// ReadSamples decodes every sample in r.
func ReadSamples(r io.Reader, format SampleFormat) ([]int, error) {
	if format != FormatU16BE && format != FormatS16BE {
		return nil, stageErr(StageIngest, ErrInvalidParameter, "unsupported sample format %s", format)
	}

	var br = bufio.NewReader(r)
	var buf [2]byte
	var out []int

	for {
		var n, err = io.ReadFull(br, buf[:])
		if err == io.EOF {
			break
		}
		if err == io.ErrUnexpectedEOF {
			var serr = stageErr(StageIngest, ErrInvalidInput, "trailing %d byte after %d samples", n, len(out))
			serr.Sample = len(out)
			return nil, serr
		}
		if err != nil {
			return nil, fmt.Errorf("reading sample %d: %w", len(out), err)
		}

		var v = binary.BigEndian.Uint16(buf[:])
		if format == FormatS16BE {
			out = append(out, int(int16(v)))
		} else {
			out = append(out, int(v))
		}
	}

	return out, nil
}

// WriteSamples is the inverse of ReadSamples.  Values outside the range
// of the format are clamped.
func WriteSamples(w io.Writer, samples []int, format SampleFormat) error {
	var lo, hi int
	switch format {
	case FormatU16BE:
		lo, hi = 0, 0xffff
	case FormatS16BE:
		lo, hi = -0x8000, 0x7fff
	default:
		return stageErr(StageIngest, ErrInvalidParameter, "unsupported sample format %s", format)
	}

	var bw = bufio.NewWriter(w)
	var buf [2]byte
	for _, s := range samples {
		s = max(lo, min(hi, s))
		binary.BigEndian.PutUint16(buf[:], uint16(s))
		if _, err := bw.Write(buf[:]); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// ReadSampleFile reads a capture, choosing format and decompression
// from the file name.
func ReadSampleFile(path string) ([]int, error) {
	var format, comp = splitExt(path)
	if format == FormatUnknown {
		return nil, stageErr(StageIngest, ErrInvalidInput, "unexpected sample file type: %s", filepath.Base(path))
	}

	var f, err = os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var r io.Reader = f
	switch comp {
	case compressGzip:
		var zr, zerr = gzip.NewReader(f)
		if zerr != nil {
			return nil, fmt.Errorf("%s: %w", path, zerr)
		}
		defer zr.Close()
		r = zr
	case compressZstd:
		var zr, zerr = zstd.NewReader(f)
		if zerr != nil {
			return nil, fmt.Errorf("%s: %w", path, zerr)
		}
		defer zr.Close()
		r = zr
	}

	var samples, rerr = ReadSamples(r, format)
	if rerr != nil {
		return nil, fmt.Errorf("%s: %w", path, rerr)
	}
	return samples, nil
}

// WriteSampleFile writes a capture, compressing if the name asks for it.
func WriteSampleFile(path string, samples []int) (err error) {
	var format, comp = splitExt(path)
	if format == FormatUnknown {
		return stageErr(StageIngest, ErrInvalidParameter, "unexpected sample file type: %s", filepath.Base(path))
	}

	var f, cerr = os.Create(path)
	if cerr != nil {
		return cerr
	}
	defer func() {
		if closeErr := f.Close(); err == nil {
			err = closeErr
		}
	}()

	switch comp {
	case compressGzip:
		var zw = gzip.NewWriter(f)
		if err = WriteSamples(zw, samples, format); err != nil {
			return err
		}
		return zw.Close()
	case compressZstd:
		var zw, zerr = zstd.NewWriter(f)
		if zerr != nil {
			return zerr
		}
		if err = WriteSamples(zw, samples, format); err != nil {
			zw.Close()
			return err
		}
		return zw.Close()
	}

	return WriteSamples(f, samples, format)
}
