package render

import (
	"fmt"
	"io"
	"os"
)

// nopWriteCloser wraps the stdout stream so callers can close outputs
// uniformly.
type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }

// OpenOutput opens the named file for writing, truncating it. The names
// `-` and the empty string select the given stdout stream instead, which
// is not closed by the returned closer.
func OpenOutput(name string, stdout io.Writer) (io.WriteCloser, error) {
	if name == "" || name == "-" {
		return nopWriteCloser{stdout}, nil
	}

	f, err := os.OpenFile(name, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open output %q: %w", name, err)
	}

	return f, nil
}
