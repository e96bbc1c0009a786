// Package file implements a local filesystem datasource.
package file

import (
	"context"
	"fmt"
	"io"
	"os"
)

// Local opens one path from the local disk.
type Local struct{ path string }

func NewLocal(path string) *Local { return &Local{path: path} }

// Path returns the configured path.
func (l *Local) Path() string { return l.path }

// Open returns the file for reading. A canceled ctx fails before the
// filesystem is touched; open errors keep os.ErrNotExist and friends
// reachable through errors.Is. Readahead is hinted for sequential access.
func (l *Local) Open(ctx context.Context) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(l.path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", l.path, err)
	}
	adviseSequential(f)
	return f, nil
}
