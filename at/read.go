// SPDX-License-Identifier: MIT
//
// Copyright © 2018 Kent Gibson <warthog618@gmail.com>.

package at

import (
	"strconv"
	"strings"
	"time"
)

// Skip discards bytes from the modem up to and including the delimiter.
//
// Returns false if the delimiter is not seen within the default timeout.
func (s *Stream) Skip(delim byte) bool {
	deadline := s.deadline(s.timeout)
	for {
		b, err := s.readByte(deadline)
		if err != nil {
			return false
		}
		if b == delim {
			return true
		}
	}
}

// ReadString reads bytes from the modem up to the delimiter, and returns them
// as a string. The delimiter is consumed but not included in the result.
//
// If the delimiter is not seen within the default timeout, then the bytes
// read so far are returned along with ErrTimeout, or ErrClosed if the modem
// closed.
func (s *Stream) ReadString(delim byte) (string, error) {
	return s.readString(delim, s.deadline(s.timeout))
}

// ReadInt reads bytes up to the delimiter and parses them as a signed
// decimal integer. Surrounding whitespace is ignored.
//
// A ParseError is returned if the text is empty or not a number.
func (s *Stream) ReadInt(delim byte) (int, error) {
	str, err := s.ReadString(delim)
	if err != nil {
		return 0, err
	}
	str = strings.TrimSpace(str)
	n, err := strconv.Atoi(str)
	if err != nil {
		return 0, ParseError(str)
	}
	return n, nil
}

func (s *Stream) readString(delim byte, deadline time.Time) (string, error) {
	var b strings.Builder
	for {
		c, err := s.readByte(deadline)
		if err != nil {
			return b.String(), err
		}
		if c == delim {
			return b.String(), nil
		}
		b.WriteByte(c)
	}
}
