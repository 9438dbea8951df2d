// SPDX-License-Identifier: MIT
//
// Copyright © 2018 Kent Gibson <warthog618@gmail.com>.

// Package at provides a low level driver for AT modems.
//
// The driver presents the modem as a synchronous stream. A command is sent
// with Send, the response is then consumed by Wait, which scans for one of a
// set of terminators, and by the field extractors Skip, ReadString and
// ReadInt.
package at

import (
	"io"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// Stream represents a modem that can be managed using AT commands.
//
// A Stream has a single owner. Only one exchange, a Send followed by the
// reads and waits that consume its response, may be in progress at a time,
// and the Stream must not be shared between goroutines without external
// serialisation.
//
// The Stream closes the closed channel when the connection to the underlying
// modem is broken (Read returns an error). Once closed all reads and waits
// fail and the Stream must be recreated.
type Stream struct {
	// the underlying modem
	modem io.ReadWriter

	// chunks read from the modem
	rx chan []byte

	// closed when the modem read fails
	closed chan struct{}

	// bytes received but not yet consumed
	pending []byte

	// the line being scanned by the matcher.
	// Reset at the start of each wait and at the end of each line.
	line []byte

	// the default timeout for waits and reads
	timeout time.Duration

	clock Clock

	// indications mapped by prefix
	inds map[string]indication

	// the modem error detail from the last wait
	err error

	log Logger
}

// Logger defines the interface used to log stream events.
//
// *log.Logger satisfies this interface.
type Logger interface {
	Printf(format string, v ...interface{})
}

// Option is a construction option for a Stream.
type Option func(*Stream)

// New creates a new Stream on the modem.
//
// A goroutine is started that reads from the modem until the modem returns
// an error.
func New(modem io.ReadWriter, options ...Option) *Stream {
	s := &Stream{
		modem:   modem,
		rx:      make(chan []byte, 16),
		closed:  make(chan struct{}),
		timeout: time.Second,
		clock:   systemClock{},
		inds:    make(map[string]indication),
	}
	for _, option := range options {
		option(s)
	}
	go s.reader()
	return s
}

// WithTimeout sets the default timeout for Wait and the field extractors.
//
// The default timeout is 1 second.
func WithTimeout(d time.Duration) Option {
	return func(s *Stream) {
		s.timeout = d
	}
}

// WithClock sets the time source used to bound waits and reads.
func WithClock(c Clock) Option {
	return func(s *Stream) {
		s.clock = c
	}
}

// WithLogger sets the logger used to report unhandled lines and modem errors.
//
// By default nothing is logged.
func WithLogger(l Logger) Option {
	return func(s *Stream) {
		s.log = l
	}
}

// WithIndication adds an indication during construction.
func WithIndication(prefix string, handler InfoHandler, options ...IndicationOption) Option {
	ind := newIndication(prefix, handler, options...)
	return func(s *Stream) {
		s.inds[prefix] = ind
	}
}

// Closed returns a channel which will block while the modem is not closed.
func (s *Stream) Closed() <-chan struct{} {
	return s.closed
}

// Timeout returns the default timeout of the stream.
func (s *Stream) Timeout() time.Duration {
	return s.timeout
}

// Clock returns the time source of the stream.
func (s *Stream) Clock() Clock {
	return s.clock
}

// Send writes the command line to the modem.
//
// The command should NOT include the AT prefix, nor <CR><LF> suffix which is
// automatically added. If args are provided they are appended after an '=',
// separated by commas. Use Quote for string arguments.
//
// Any input already received is discarded before the command is written, so
// a late response to an earlier command cannot be read as the response to
// this one. Complete lines in that input are still passed to indications.
func (s *Stream) Send(cmd string, args ...string) error {
	s.drain()
	var b strings.Builder
	b.WriteString("AT")
	b.WriteString(cmd)
	if len(args) > 0 {
		b.WriteByte('=')
		b.WriteString(strings.Join(args, ","))
	}
	b.WriteString("\r\n")
	_, err := io.WriteString(s.modem, b.String())
	return err
}

// Quote returns s wrapped in double quotes, as required for string arguments.
func Quote(s string) string {
	return `"` + s + `"`
}

// reader takes chunks from the modem and redirects them to rx.
//
// reader exits when the modem read fails.
func (s *Stream) reader() {
	defer close(s.closed)
	defer close(s.rx)
	for {
		buf := make([]byte, 256)
		n, err := s.modem.Read(buf)
		if n > 0 {
			s.rx <- buf[:n]
		}
		if err != nil {
			return
		}
	}
}

// fill appends the next chunk from the modem to pending, waiting no later
// than the deadline.
func (s *Stream) fill(deadline time.Time) error {
	select {
	case chunk, ok := <-s.rx:
		return s.accept(chunk, ok)
	default:
	}
	d := deadline.Sub(s.clock.Now())
	if d <= 0 {
		return ErrTimeout
	}
	select {
	case chunk, ok := <-s.rx:
		return s.accept(chunk, ok)
	case <-s.clock.After(d):
		// late arrivals win over the deadline
		select {
		case chunk, ok := <-s.rx:
			return s.accept(chunk, ok)
		default:
		}
		return ErrTimeout
	}
}

// drain consumes the input received so far, without waiting for more.
func (s *Stream) drain() {
	for more := true; more; {
		select {
		case chunk, ok := <-s.rx:
			more = ok
			s.accept(chunk, ok)
		default:
			more = false
		}
	}
	s.line = s.line[:0]
	for len(s.pending) > 0 {
		b := s.pending[0]
		s.pending = s.pending[1:]
		s.line = append(s.line, b)
		if b == '\n' {
			s.endLine()
		}
	}
	if len(s.line) > 0 {
		s.logf("stale: %q", s.line)
		s.line = s.line[:0]
	}
}

func (s *Stream) accept(chunk []byte, ok bool) error {
	if !ok {
		return ErrClosed
	}
	s.pending = append(s.pending, chunk...)
	return nil
}

// readByte returns the next byte from the modem.
func (s *Stream) readByte(deadline time.Time) (byte, error) {
	for len(s.pending) == 0 {
		if err := s.fill(deadline); err != nil {
			return 0, err
		}
	}
	b := s.pending[0]
	s.pending = s.pending[1:]
	if len(s.pending) == 0 {
		s.pending = nil
	}
	return b, nil
}

func (s *Stream) deadline(d time.Duration) time.Time {
	return s.clock.Now().Add(d)
}

func (s *Stream) logf(format string, v ...interface{}) {
	if s.log != nil {
		s.log.Printf(format, v...)
	}
}

// CMEError indicates a CME Error was returned by the modem.
//
// The value is the error value, in string form, which may be the numeric or
// textual, depending on the modem configuration.
type CMEError string

// CMSError indicates a CMS Error was returned by the modem.
type CMSError string

// ParseError indicates a numeric field in a response could not be parsed.
//
// The value is the text that failed to parse.
type ParseError string

func (e CMEError) Error() string {
	return string("CME Error: " + e)
}

func (e CMSError) Error() string {
	return string("CMS Error: " + e)
}

func (e ParseError) Error() string {
	return "parse error: " + string(e)
}

var (
	// ErrClosed indicates an operation cannot be performed as the modem has
	// been closed.
	ErrClosed = errors.New("closed")

	// ErrTimeout indicates the modem did not provide the expected data within
	// the timeout.
	ErrTimeout = errors.New("timeout")

	// ErrIndicationExists indicates there is already a indication registered
	// for a prefix.
	ErrIndicationExists = errors.New("indication exists")
)
