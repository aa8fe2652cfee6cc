// Package scanner reads decoded code strings from a wedge scanner device.
//
// Handheld scan terminals expose their decoder as a character device (or
// FIFO) that emits one decoded string per line. Reader owns the device
// for the lifetime of the scanning screen and hands decoded lines to a
// channel; the screen's teardown closes the device deterministically,
// regardless of any in-flight read.
package scanner

import (
	"bufio"
	"errors"
	"io"
	"os"
	"sync"
)

// DefaultDevice is where most terminals expose the decoder.
const DefaultDevice = "/dev/scanner0"

// ErrClosed is returned by Open on an already-released reader.
var ErrClosed = errors.New("scanner: closed")

// Reader streams decoded lines from the scanner device.
type Reader struct {
	mu     sync.Mutex
	src    io.ReadCloser
	lines  chan string
	done   chan struct{}
	paused bool
	closed bool
}

// Open acquires the scanner device at path and starts the decode stream.
// The caller must Close the reader when the scanning screen is torn down.
func Open(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	return newReader(f), nil
}

// newReader wraps any line source. Split out for tests, which feed pipes
// instead of device files.
func newReader(src io.ReadCloser) *Reader {
	r := &Reader{
		src:   src,
		lines: make(chan string),
		done:  make(chan struct{}),
	}
	go r.loop()
	return r
}

// Lines returns the decode stream. The channel closes when the device is
// released or the stream ends.
func (r *Reader) Lines() <-chan string { return r.lines }

// Pause drops decoded lines instead of delivering them. The classifier
// engine pauses the stream during cool-down; anything decoded in the
// window never reaches the session.
func (r *Reader) Pause() {
	r.mu.Lock()
	r.paused = true
	r.mu.Unlock()
}

// Resume re-enables delivery.
func (r *Reader) Resume() {
	r.mu.Lock()
	r.paused = false
	r.mu.Unlock()
}

// Close releases the device. Safe to call more than once; an in-flight
// read is interrupted by the underlying close.
func (r *Reader) Close() error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	close(r.done)
	r.mu.Unlock()

	return r.src.Close()
}

func (r *Reader) loop() {
	defer close(r.lines)

	sc := bufio.NewScanner(r.src)
	for sc.Scan() {
		line := sc.Text()
		if line == "" {
			continue
		}

		r.mu.Lock()
		drop := r.paused || r.closed
		r.mu.Unlock()
		if drop {
			continue
		}

		select {
		case r.lines <- line:
		case <-r.done:
			return
		}
	}
}
