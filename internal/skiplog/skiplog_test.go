package skiplog

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

// TestOpen_CreatesDirAndHeader verifies nested directories are created and
// the header is written even when nothing is rejected.
func TestOpen_CreatesDirAndHeader(t *testing.T) {
	t.Parallel()

	target := filepath.Join(t.TempDir(), "rejects", "stream.csv")
	l, err := Open(target)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := l.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	b, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(b) != "reason,line_number,raw_line\n" {
		t.Fatalf("content = %q", b)
	}
}

// TestAdd_WritesEscapedRowsAndCounts verifies rows are escaped with the
// stream's CSV grammar and reasons are tallied.
func TestAdd_WritesEscapedRowsAndCounts(t *testing.T) {
	t.Parallel()

	target := filepath.Join(t.TempDir(), "rejects.csv")
	l, err := Open(target)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	l.Add("malformed record", 3, `x,"unterminated`)
	l.Add("malformed record", 7, "abc,2023-01-01,10,1,1")
	l.Add("short row", 9, "1,2")

	if got, want := l.Counts(), map[string]int{"malformed record": 2, "short row": 1}; !reflect.DeepEqual(got, want) {
		t.Fatalf("Counts = %v, want %v", got, want)
	}
	if got := l.Summary(); got != "malformed record=2 short row=1" {
		t.Fatalf("Summary = %q", got)
	}
	if err := l.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	b, _ := os.ReadFile(target)
	want := "reason,line_number,raw_line\n" +
		"malformed record,3,\"x,\"\"unterminated\"\n" +
		"malformed record,7,\"abc,2023-01-01,10,1,1\"\n" +
		"short row,9,\"1,2\"\n"
	if string(b) != want {
		t.Fatalf("content =\n%s\nwant\n%s", b, want)
	}
}

func TestOpen_Unwritable(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	if err := os.WriteFile(blocker, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Open(filepath.Join(blocker, "sub", "r.csv")); err == nil {
		t.Fatal("expected error when parent is a file")
	}
}
