// SPDX-License-Identifier: MIT
//
// Copyright © 2018 Kent Gibson <warthog618@gmail.com>.

// Package info provides utility functions for manipulating the fields
// returned by the modem in response to AT commands.
package info

import (
	"encoding/hex"
	"strings"

	"github.com/pkg/errors"
	"github.com/warthog618/sms/encoding/ucs2"
)

// HasPrefix returns true if the line begins with the info prefix for the command.
func HasPrefix(line, cmd string) bool {
	return strings.HasPrefix(line, cmd+":")
}

// TrimPrefix removes the command prefix, if any, and any intervening space
// from the info line.
func TrimPrefix(line, cmd string) string {
	return strings.TrimLeft(strings.TrimPrefix(line, cmd+":"), " ")
}

// Fields splits a comma separated info value into its fields.
//
// Commas within double quotes do not split, and the quotes surrounding a
// field are removed. Whitespace around each field is trimmed.
//
//	1,"IP","internet.example",0  ->  [1 IP internet.example 0]
func Fields(value string) []string {
	var fields []string
	var f strings.Builder
	quoted := false
	for _, r := range value {
		switch {
		case r == '"':
			quoted = !quoted
			f.WriteRune(r)
		case r == ',' && !quoted:
			fields = append(fields, Unquote(f.String()))
			f.Reset()
		default:
			f.WriteRune(r)
		}
	}
	return append(fields, Unquote(f.String()))
}

// Unquote trims whitespace from the field, and removes surrounding double
// quotes, if present.
func Unquote(field string) string {
	field = strings.TrimSpace(field)
	if len(field) >= 2 && field[0] == '"' && field[len(field)-1] == '"' {
		return field[1 : len(field)-1]
	}
	return field
}

// DecodeUCS2Hex decodes a string reported by a modem using the UCS2 character
// set, i.e. as hex coded UCS2 characters.
//
//	0054006500730074  ->  Test
func DecodeUCS2Hex(s string) (string, error) {
	if len(s)%4 != 0 {
		return "", errors.Errorf("ucs2: odd length %d", len(s))
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return "", errors.Wrap(err, "ucs2")
	}
	r, err := ucs2.Decode(b)
	if err != nil {
		return "", errors.Wrap(err, "ucs2")
	}
	return string(r), nil
}
