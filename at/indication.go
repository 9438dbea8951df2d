// SPDX-License-Identifier: MIT
//
// Copyright © 2018 Kent Gibson <warthog618@gmail.com>.

package at

import "strings"

// InfoHandler receives indication info.
type InfoHandler func([]string)

// indication represents an unsolicited result code (URC) from the modem, such
// as a received SMS message or a network registration change.
//
// Indications are lines prefixed with a particular pattern, and may include a
// number of trailing lines. The matching lines are bundled into a slice and
// passed to the handler.
type indication struct {
	prefix  string
	lines   int
	handler InfoHandler
}

// IndicationOption alters the behavior of the indication.
type IndicationOption func(*indication)

// WithTrailingLines indicates the indication includes a number of lines after
// the line containing the indication.
//
// A negative count is treated as zero.
func WithTrailingLines(l int) IndicationOption {
	if l < 0 {
		l = 0
	}
	return func(ind *indication) {
		ind.lines = l + 1
	}
}

// WithTrailingLine indicates the indication includes one line after the line
// containing the indication.
var WithTrailingLine = WithTrailingLines(1)

func newIndication(prefix string, handler InfoHandler, options ...IndicationOption) indication {
	ind := indication{
		prefix:  prefix,
		handler: handler,
		lines:   1,
	}
	for _, option := range options {
		option(&ind)
	}
	return ind
}

// AddIndication adds a handler for a set of lines beginning with the prefixed
// line and the following trailing lines.
//
// Handlers are called from within Wait, in the goroutine driving the stream,
// when a line that matches none of the terminators begins with the prefix.
func (s *Stream) AddIndication(prefix string, handler InfoHandler, options ...IndicationOption) error {
	if _, ok := s.inds[prefix]; ok {
		return ErrIndicationExists
	}
	s.inds[prefix] = newIndication(prefix, handler, options...)
	return nil
}

// CancelIndication removes any indication corresponding to the prefix.
func (s *Stream) CancelIndication(prefix string) {
	delete(s.inds, prefix)
}

// indication returns the indication with the longest prefix matching the line.
func (s *Stream) indication(line string) (indication, bool) {
	var found indication
	ok := false
	for prefix, ind := range s.inds {
		if strings.HasPrefix(line, prefix) && len(prefix) >= len(found.prefix) {
			found, ok = ind, true
		}
	}
	return found, ok
}
