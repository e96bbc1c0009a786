// Package sink persists the results table: as a CSV file (header plus one
// escaped line per row) and, optionally, into a database table through a
// storage.Repository.
package sink

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/zeebo/xxh3"

	"meshjoin/internal/meshjoin"
	"meshjoin/internal/model"
	"meshjoin/internal/parser/csv"
)

// Report describes what a sink wrote. Checksum is the xxh3 of every byte
// written, header included, so two runs over the same input can be compared
// without diffing files.
type Report struct {
	Rows     int
	Bytes    int64
	Checksum uint64
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}

// WriteCSV writes the header and rows to w. Failures wrap
// meshjoin.ErrSinkWrite.
func WriteCSV(w io.Writer, rows []model.Result) (Report, error) {
	h := xxh3.New()
	cw := &countingWriter{w: io.MultiWriter(w, h)}
	out := csv.NewWriter(cw)

	if err := out.Write(model.OutputHeader); err != nil {
		return Report{}, fmt.Errorf("%w: header: %v", meshjoin.ErrSinkWrite, err)
	}
	for i, r := range rows {
		if err := out.Write(r.Fields()); err != nil {
			return Report{Rows: i}, fmt.Errorf("%w: order %d: %v", meshjoin.ErrSinkWrite, r.OrderID, err)
		}
	}
	if err := out.Flush(); err != nil {
		return Report{Rows: len(rows), Bytes: cw.n}, fmt.Errorf("%w: flush: %v", meshjoin.ErrSinkWrite, err)
	}
	return Report{Rows: len(rows), Bytes: cw.n, Checksum: h.Sum64()}, nil
}

// WriteFile creates path (and its parent directories) and writes the CSV.
// The outcome is logged either way; the caller decides whether an error is
// fatal.
func WriteFile(path string, rows []model.Result) (Report, error) {
	rep, err := writeFile(path, rows)
	if err != nil {
		log.Printf("sink: %v", err)
		return rep, err
	}
	log.Printf("sink: wrote path=%s rows=%d bytes=%d xxh3=%016x", path, rep.Rows, rep.Bytes, rep.Checksum)
	return rep, nil
}

func writeFile(path string, rows []model.Result) (Report, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return Report{}, fmt.Errorf("%w: create dir %s: %v", meshjoin.ErrSinkWrite, dir, err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return Report{}, fmt.Errorf("%w: %v", meshjoin.ErrSinkWrite, err)
	}
	rep, err := WriteCSV(f, rows)
	if cerr := f.Close(); err == nil && cerr != nil {
		err = fmt.Errorf("%w: close %s: %v", meshjoin.ErrSinkWrite, path, cerr)
	}
	return rep, err
}
