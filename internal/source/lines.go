// Package source supplies lines of text to the analyzers.
//
// The caller owns the lifetime of the underlying resource: open it, range
// over Lines, check Err, and close it on every path.
package source

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"iter"
	"os"
)

// ErrUnavailable indicates the input could not be opened or read.
var ErrUnavailable = errors.New("input unavailable")

// maxLineSize bounds a single line; longer lines fail the read.
const maxLineSize = 1024 * 1024

// Reader yields the lines of an io.Reader lazily.
type Reader struct {
	name string
	r    io.Reader
	err  error
	used bool
}

// NewReader wraps r. The name is only used in error messages.
func NewReader(name string, r io.Reader) *Reader {
	return &Reader{name: name, r: r}
}

// Name returns the name given at construction.
func (r *Reader) Name() string {
	return r.name
}

// Lines returns a single-use sequence of lines without their terminators.
// Iteration stops early on a read error, which is then reported by Err.
func (r *Reader) Lines() iter.Seq[string] {
	return func(yield func(string) bool) {
		if r.used {
			return
		}
		r.used = true

		scanner := bufio.NewScanner(r.r)
		scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
		for scanner.Scan() {
			if !yield(scanner.Text()) {
				return
			}
		}
		if err := scanner.Err(); err != nil {
			r.err = fmt.Errorf("%w: failed to read %s: %v", ErrUnavailable, r.name, err)
		}
	}
}

// Err returns the first read error seen by Lines.
func (r *Reader) Err() error {
	return r.err
}

// File is a Reader backed by an open file.
type File struct {
	*Reader
	f *os.File
}

// Open opens path for line reading. Failures wrap ErrUnavailable.
func Open(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if info.IsDir() {
		f.Close()
		return nil, fmt.Errorf("%w: %s is a directory", ErrUnavailable, path)
	}
	return &File{Reader: NewReader(path, f), f: f}, nil
}

// Close closes the underlying file.
func (f *File) Close() error {
	return f.f.Close()
}
