package csv

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

const (
	// maxLineBytes caps a single physical line, terminator excluded.
	maxLineBytes = 1 << 20
	// tooLongRawBytes is how much of an oversized line is kept in Raw.
	tooLongRawBytes = 256
)

// ErrLineTooLong is the ParseError cause for a line over maxLineBytes. The
// rest of that line is discarded and reading resumes at the next one.
var ErrLineTooLong = errors.New("line exceeds 1 MiB")

// Record is one parsed, non-blank line.
type Record struct {
	Line   int // 1-based physical line number
	Raw    string
	Fields []string
}

// ParseError reports a line that could not be split. Callers treat it as a
// soft failure and keep reading.
type ParseError struct {
	Line int
	Raw  string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Reader yields records from a line-oriented stream. Blank lines are skipped
// and a UTF-8 BOM on the first line is removed.
type Reader struct {
	br   *bufio.Reader
	line int
}

// NewReader wraps r. The caller keeps ownership of r.
func NewReader(r io.Reader) *Reader {
	return &Reader{br: bufio.NewReaderSize(r, 64*1024)}
}

// Read returns the next record. It returns a *ParseError for a malformed or
// oversized line (the Reader stays usable), io.EOF at end of input, and any
// other error when the underlying stream fails.
func (r *Reader) Read() (Record, error) {
	for {
		b, tooLong, err := r.readLine()
		if err == io.EOF {
			return Record{}, io.EOF
		}
		if err != nil {
			return Record{}, fmt.Errorf("read line %d: %w", r.line+1, err)
		}
		r.line++
		raw := string(b)
		if r.line == 1 {
			raw = StripBOM(raw)
		}
		if tooLong {
			return Record{Line: r.line, Raw: raw}, &ParseError{Line: r.line, Raw: raw, Err: ErrLineTooLong}
		}
		if strings.TrimSpace(raw) == "" {
			continue
		}
		fields, err := ParseLine(raw)
		if err != nil {
			return Record{Line: r.line, Raw: raw}, &ParseError{Line: r.line, Raw: raw, Err: err}
		}
		return Record{Line: r.line, Raw: raw, Fields: fields}, nil
	}
}

// readLine returns the next physical line without its "\n" or "\r\n". A line
// longer than maxLineBytes is consumed through its terminator and only its
// first tooLongRawBytes are returned, flagged as too long. A final line without
// a terminator is returned as is; io.EOF follows it.
func (r *Reader) readLine() ([]byte, bool, error) {
	var buf []byte
	tooLong := false
	for {
		frag, err := r.br.ReadSlice('\n')
		if !tooLong {
			buf = append(buf, frag...)
			if len(trimEOL(buf)) > maxLineBytes {
				tooLong = true
				buf = buf[:tooLongRawBytes:tooLongRawBytes]
			}
		}
		switch {
		case err == bufio.ErrBufferFull:
			continue
		case err == io.EOF:
			if len(buf) == 0 && !tooLong {
				return nil, false, io.EOF
			}
			return trimEOL(buf), tooLong, nil
		case err != nil:
			return nil, false, err
		}
		if tooLong {
			return buf, true, nil
		}
		return trimEOL(buf), false, nil
	}
}

func trimEOL(b []byte) []byte {
	if n := len(b); n > 0 && b[n-1] == '\n' {
		b = b[:n-1]
	}
	if n := len(b); n > 0 && b[n-1] == '\r' {
		b = b[:n-1]
	}
	return b
}

// Line reports the number of physical lines consumed so far.
func (r *Reader) Line() int { return r.line }

// Writer emits escaped, newline-terminated lines.
type Writer struct {
	w *bufio.Writer
}

// NewWriter wraps w with a buffered line writer. Call Flush when done.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: bufio.NewWriterSize(w, 64*1024)}
}

// Write formats fields as one line followed by '\n'.
func (w *Writer) Write(fields []string) error {
	if _, err := w.w.WriteString(FormatLine(fields)); err != nil {
		return err
	}
	return w.w.WriteByte('\n')
}

// Flush writes any buffered data to the underlying writer.
func (w *Writer) Flush() error { return w.w.Flush() }
