// Package skiplog records rejected stream lines to a CSV file with the
// columns reason, line_number, raw_line, and counts them per reason.
package skiplog

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"sync"

	"meshjoin/internal/parser/csv"
)

// Header is the first line of every reject log.
var Header = []string{"reason", "line_number", "raw_line"}

type Log struct {
	mu      sync.Mutex
	reasons map[string]int
	f       *os.File
	w       *csv.Writer
	err     error
}

// Open creates path (and its parent directories) and writes the header.
func Open(path string) (*Log, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create dir %s: %w", filepath.Dir(path), err)
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	w := csv.NewWriter(f)
	if err := w.Write(Header); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("write header: %w", err)
	}
	return &Log{reasons: make(map[string]int), f: f, w: w}, nil
}

// Add records one rejected line. Write errors are kept and returned by
// Close; counting continues regardless.
func (l *Log) Add(reason string, line int, raw string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.reasons[reason]++
	if l.err == nil {
		l.err = l.w.Write([]string{reason, strconv.Itoa(line), raw})
	}
}

// Counts returns a copy of the per-reason totals.
func (l *Log) Counts() map[string]int {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make(map[string]int, len(l.reasons))
	for k, v := range l.reasons {
		out[k] = v
	}
	return out
}

// Summary renders the counts as "reason=n" pairs sorted by reason.
func (l *Log) Summary() string {
	counts := l.Counts()
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	s := ""
	for i, k := range keys {
		if i > 0 {
			s += " "
		}
		s += fmt.Sprintf("%s=%d", k, counts[k])
	}
	return s
}

// Close flushes and closes the file, returning the first error seen.
func (l *Log) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	err := l.err
	if ferr := l.w.Flush(); err == nil {
		err = ferr
	}
	if cerr := l.f.Close(); err == nil {
		err = cerr
	}
	return err
}
