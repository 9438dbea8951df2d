// SPDX-License-Identifier: MIT
//
// Copyright © 2018 Kent Gibson <warthog618@gmail.com>.

// Package trace provides a decorator for io.ReadWriter that logs the traffic
// between a host and its modem.
package trace

import (
	"io"
	"log"
	"os"
)

// Trace is a trace log on an io.ReadWriter.
//
// Each read and write is logged as a single entry, tagged with the direction
// of the transfer. Data is quoted by default, so the CR and LF that frame AT
// lines are visible. Transfer errors, including the end of the stream, are
// logged too.
type Trace struct {
	rw    io.ReadWriter
	log   Logger
	rx    string
	tx    string
	quote bool
}

// Logger defines the interface used to log trace messages.
type Logger interface {
	Printf(format string, v ...interface{})
}

// Option modifies a Trace object created by New.
type Option func(*Trace)

// New creates a new trace on the io.ReadWriter.
func New(rw io.ReadWriter, options ...Option) *Trace {
	t := &Trace{
		rw:    rw,
		rx:    "r",
		tx:    "w",
		quote: true,
	}
	for _, option := range options {
		option(t)
	}
	if t.log == nil {
		t.log = log.New(os.Stderr, "", log.LstdFlags)
	}
	return t
}

// WithLabels sets the tags identifying data read from, and written to, the
// modem.
//
// The defaults are "r" and "w".
func WithLabels(rx, tx string) Option {
	return func(t *Trace) {
		t.rx = rx
		t.tx = tx
	}
}

// WithRaw logs data as is, rather than quoted.
func WithRaw() Option {
	return func(t *Trace) {
		t.quote = false
	}
}

// WithLogger specifies the logger to be used to log trace messages.
//
// By default traces are logged to Stderr.
func WithLogger(l Logger) Option {
	return func(t *Trace) {
		t.log = l
	}
}

func (t *Trace) Read(p []byte) (n int, err error) {
	n, err = t.rw.Read(p)
	t.record(t.rx, p[:n], err)
	return n, err
}

func (t *Trace) Write(p []byte) (n int, err error) {
	n, err = t.rw.Write(p)
	t.record(t.tx, p[:n], err)
	return n, err
}

// Close closes the underlying ReadWriter, if it is an io.Closer.
func (t *Trace) Close() error {
	if c, ok := t.rw.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

func (t *Trace) record(label string, data []byte, err error) {
	if len(data) > 0 {
		if t.quote {
			t.log.Printf("%s: %q", label, data)
		} else {
			t.log.Printf("%s: %s", label, data)
		}
	}
	if err != nil {
		t.log.Printf("%s error: %v", label, err)
	}
}
