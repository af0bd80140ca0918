package helm

import (
	"io"
)

// InlineCloser wraps a close function in an [io.Closer].
type InlineCloser struct {
	closeFn func() error
}

func (c *InlineCloser) Close() error {
	return c.closeFn()
}

func newInlineCloser(closeFn func() error) *InlineCloser {
	return &InlineCloser{closeFn: closeFn}
}

// NopCloser is an [io.Closer] that does nothing.
type NopCloser struct{}

func (NopCloser) Close() error {
	return nil
}

// NewNopCloser creates a new [NopCloser].
func NewNopCloser() io.Closer {
	return &NopCloser{}
}
