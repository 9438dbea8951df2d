// SPDX-License-Identifier: MIT
//
// Copyright © 2018 Kent Gibson <warthog618@gmail.com>.

package at

import (
	"bytes"
	"strings"
	"time"
)

// NoMatch is the result of a wait that saw none of its terminators before the
// timeout expired or the modem closed.
const NoMatch = 0

// The default terminators, used when a wait is given none.
const (
	OK    = "OK\r\n"
	Error = "ERROR\r\n"
)

var (
	defaultTerms = []string{OK, Error}
	cmeError     = []byte("+CME ERROR:")
	cmsError     = []byte("+CMS ERROR:")
)

// Wait consumes the response from the modem until one of the terminators is
// seen, and returns the 1-based index of that terminator. If no terminators
// are provided then OK and Error are used.
//
// The wait is bounded by the default stream timeout. NoMatch is returned if
// no terminator is seen within that time.
func (s *Stream) Wait(terms ...string) int {
	return s.WaitTimeout(s.timeout, terms...)
}

// WaitTimeout is Wait with an explicit timeout.
//
// Terminators are matched against the tail of the line being received, after
// each byte, so a terminator may end mid-line. The first terminator to
// complete wins. If several complete on the same byte the longest wins, and
// ties are resolved by the order of terms.
//
// If Error is one of the terms then a +CME ERROR or +CMS ERROR line also
// matches the Error index. The detail from that line is available from Err.
//
// The stream is left positioned immediately after the terminator. Completed
// lines that match no terminator are passed to any matching indication, and
// are otherwise discarded.
func (s *Stream) WaitTimeout(timeout time.Duration, terms ...string) int {
	if len(terms) == 0 {
		terms = defaultTerms
	}
	errIdx := indexOf(terms, Error)
	s.err = nil
	s.line = s.line[:0]
	deadline := s.deadline(timeout)
	for {
		b, err := s.readByte(deadline)
		if err != nil {
			if len(s.line) > 0 {
				s.logf("partial: %q", s.line)
				s.line = s.line[:0]
			}
			return NoMatch
		}
		s.line = append(s.line, b)
		if idx := match(s.line, terms); idx != NoMatch {
			s.line = s.line[:0]
			return idx
		}
		if errIdx != NoMatch {
			if bytes.HasSuffix(s.line, cmeError) {
				s.err = CMEError(s.errorDetail(deadline))
				return errIdx
			}
			if bytes.HasSuffix(s.line, cmsError) {
				s.err = CMSError(s.errorDetail(deadline))
				return errIdx
			}
		}
		if b == '\n' {
			s.endLine()
		}
	}
}

// Err returns the modem error reported during the most recent wait, if the
// wait matched on a +CME ERROR or +CMS ERROR line.
func (s *Stream) Err() error {
	return s.err
}

// match returns the 1-based index of the longest term that ends the line.
func match(line []byte, terms []string) int {
	idx, l := NoMatch, 0
	for i, t := range terms {
		if len(t) > l && bytes.HasSuffix(line, []byte(t)) {
			idx, l = i+1, len(t)
		}
	}
	return idx
}

func indexOf(terms []string, term string) int {
	for i, t := range terms {
		if t == term {
			return i + 1
		}
	}
	return NoMatch
}

// errorDetail consumes the remainder of an error line and returns it.
func (s *Stream) errorDetail(deadline time.Time) string {
	detail, _ := s.readString('\n', deadline)
	detail = strings.TrimSpace(detail)
	s.logf("%s %s", bytes.TrimSpace(s.line), detail)
	s.line = s.line[:0]
	return detail
}

// endLine disposes of a completed line that matched no terminator.
func (s *Stream) endLine() {
	l := strings.TrimSpace(string(s.line))
	s.line = s.line[:0]
	if l == "" {
		return
	}
	if ind, ok := s.indication(l); ok {
		lines := make([]string, ind.lines)
		lines[0] = l
		deadline := s.deadline(s.timeout)
		for i := 1; i < ind.lines; i++ {
			t, err := s.readString('\n', deadline)
			if err != nil {
				s.logf("indication %s truncated: %v", ind.prefix, err)
				return
			}
			lines[i] = strings.TrimSpace(t)
		}
		ind.handler(lines)
		return
	}
	s.logf("unhandled: %q", l)
}
