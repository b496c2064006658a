// Package flushio provides the flushable writers that native procedures
// write program output through.
package flushio

import (
	"bufio"
	"bytes"
	"io"
	"strings"
)

// WriteFlusher is an io.Writer that may hold output until Flush.
type WriteFlusher interface {
	io.Writer
	Flush() error
}

// Discard is a WriteFlusher that drops all output.
var Discard WriteFlusher = unbuffered{io.Discard}

// NewWriteFlusher returns w if it is already a WriteFlusher. In memory
// buffers are returned with a no-op Flush, and any other writer gets a
// bufio.Writer. A nil writer discards.
func NewWriteFlusher(w io.Writer) WriteFlusher {
	switch impl := w.(type) {
	case nil:
		return Discard
	case WriteFlusher:
		return impl
	case *bytes.Buffer, *strings.Builder:
		return unbuffered{w}
	}
	if w == io.Discard {
		return Discard
	}
	return bufio.NewWriter(w)
}

type unbuffered struct{ io.Writer }

func (unbuffered) Flush() error { return nil }

// Tee sends everything written to Out on to each of Copies as well.
type Tee struct {
	Out    WriteFlusher
	Copies []WriteFlusher
}

// Add copies all further output to w.
func (tee *Tee) Add(w io.Writer) {
	if wf := NewWriteFlusher(w); wf != Discard {
		tee.Copies = append(tee.Copies, wf)
	}
}

// Write writes p to Out and every copy, even after one of them fails; the
// first error is returned.
func (tee *Tee) Write(p []byte) (int, error) {
	n, err := tee.Out.Write(p)
	if err == nil && n < len(p) {
		err = io.ErrShortWrite
	}
	for _, wf := range tee.Copies {
		m, werr := wf.Write(p)
		if werr == nil && m < len(p) {
			werr = io.ErrShortWrite
		}
		if err == nil {
			err = werr
		}
	}
	return n, err
}

// Flush flushes Out and every copy, returning the first error.
func (tee *Tee) Flush() error {
	err := tee.Out.Flush()
	for _, wf := range tee.Copies {
		if ferr := wf.Flush(); err == nil {
			err = ferr
		}
	}
	return err
}
