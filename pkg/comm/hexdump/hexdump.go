// Package hexdump writes and reads packets as timestamped hex lines:
//
//	1234567890.000123 14 00 EF BE 80 ...
package hexdump

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/robotalks/bitlog.go/pkg/comm"
)

// FormatTime formats t as seconds.microseconds.
func FormatTime(t time.Time) string {
	return fmt.Sprintf("%d.%06d", t.Unix(), t.Nanosecond()/1000)
}

// ParseTime parses seconds.fraction.
func ParseTime(s string) (time.Time, error) {
	secStr, fracStr := s, ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		secStr, fracStr = s[:i], s[i+1:]
	}
	sec, err := strconv.ParseInt(secStr, 10, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timestamp %q", s)
	}
	var nsec int64
	if fracStr != "" {
		if len(fracStr) > 9 {
			fracStr = fracStr[:9]
		}
		fracStr += strings.Repeat("0", 9-len(fracStr))
		if nsec, err = strconv.ParseInt(fracStr, 10, 64); err != nil {
			return time.Time{}, fmt.Errorf("invalid timestamp %q", s)
		}
	}
	return time.Unix(sec, nsec), nil
}

// Writer dumps each packet as a line.
type Writer struct {
	Out       io.Writer
	Lowercase bool
	Now       func() time.Time

	lock sync.Mutex
}

// NewWriter creates a Writer.
func NewWriter(out io.Writer) *Writer {
	return &Writer{Out: out, Now: time.Now}
}

// Stderr creates a Writer to os.Stderr.
func Stderr() *Writer {
	return NewWriter(os.Stderr)
}

// FormatLine formats a packet line without the trailing newline.
func FormatLine(t time.Time, pkt []byte, lowercase bool) string {
	var sb strings.Builder
	sb.WriteString(FormatTime(t))
	format := " %02X"
	if lowercase {
		format = " %02x"
	}
	for _, b := range pkt {
		fmt.Fprintf(&sb, format, b)
	}
	return sb.String()
}

// WritePacket implements PacketWriter.
func (w *Writer) WritePacket(pkt []byte) error {
	now := time.Now
	if w.Now != nil {
		now = w.Now
	}
	line := FormatLine(now(), pkt, w.Lowercase) + "\n"
	w.lock.Lock()
	defer w.lock.Unlock()
	_, err := io.WriteString(w.Out, line)
	return err
}

// Reader parses lines produced by Writer or the serial listener.
// The timestamp is optional and detected by a '.' in the first field.
type Reader struct {
	in      io.Reader
	scanner *bufio.Scanner
	line    int
}

// NewReader creates a Reader.
func NewReader(r io.Reader) *Reader {
	return &Reader{in: r, scanner: bufio.NewScanner(r)}
}

// Close closes the underlying reader if it is an io.Closer.
func (r *Reader) Close() error {
	if closer, ok := r.in.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

// LineError reports a malformed line.
type LineError struct {
	Line int
	Err  error
}

// Error implements error.
func (e *LineError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

// ParseLine parses a single line.
func ParseLine(line string) (rec comm.Record, err error) {
	fields := strings.Fields(line)
	if len(fields) > 0 && strings.Contains(fields[0], ".") {
		if rec.Time, err = ParseTime(fields[0]); err != nil {
			return
		}
		fields = fields[1:]
	}
	rec.Raw = make([]byte, len(fields))
	for i, f := range fields {
		v, e := strconv.ParseUint(f, 16, 8)
		if e != nil {
			err = fmt.Errorf("invalid hex byte %q", f)
			return
		}
		rec.Raw[i] = byte(v)
	}
	return
}

// ReadRecord implements comm.TimedPacketReader. Blank lines are skipped.
func (r *Reader) ReadRecord() (comm.Record, error) {
	for r.scanner.Scan() {
		r.line++
		line := strings.TrimSpace(r.scanner.Text())
		if line == "" {
			continue
		}
		rec, err := ParseLine(line)
		if err != nil {
			return rec, &LineError{Line: r.line, Err: err}
		}
		if rec.Time.IsZero() {
			rec.Time = time.Now()
		}
		return rec, nil
	}
	if err := r.scanner.Err(); err != nil {
		return comm.Record{}, err
	}
	return comm.Record{}, io.EOF
}

// ReadPacket implements PacketReader.
func (r *Reader) ReadPacket() ([]byte, error) {
	rec, err := r.ReadRecord()
	return rec.Raw, err
}
