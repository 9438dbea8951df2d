// SPDX-License-Identifier: MIT
//
// Copyright © 2018 Kent Gibson <warthog618@gmail.com>.

package info_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/warthog618/cellular/info"
)

func TestHasPrefix(t *testing.T) {
	l := "+CGPADDR: 1,\"10.1.2.3\""
	assert.True(t, info.HasPrefix(l, "+CGPADDR"))
	assert.False(t, info.HasPrefix(l, "+CGPADDR:"))
	assert.False(t, info.HasPrefix(l, "+CGATT"))
}

func TestTrimPrefix(t *testing.T) {
	patterns := []struct {
		name string
		line string
		out  string
	}{
		{"no prefix", "info line", "info line"},
		{"prefix", "cmd:info line", "info line"},
		{"prefix and space", "cmd: info line", "info line"},
	}
	for _, p := range patterns {
		f := func(t *testing.T) {
			assert.Equal(t, p.out, info.TrimPrefix(p.line, "cmd"))
		}
		t.Run(p.name, f)
	}
}

func TestFields(t *testing.T) {
	patterns := []struct {
		name   string
		value  string
		fields []string
	}{
		{"empty", "", []string{""}},
		{"single", "1", []string{"1"}},
		{"address", ` 1,"10.1.2.3"`, []string{"1", "10.1.2.3"}},
		{"operator", `0,0,"Test Carrier",7`, []string{"0", "0", "Test Carrier", "7"}},
		{"quoted comma", `1,"a,b",2`, []string{"1", "a,b", "2"}},
		{"empty field", `0,,2`, []string{"0", "", "2"}},
		{"unterminated", `1,"abc`, []string{"1", `"abc`}},
	}
	for _, p := range patterns {
		f := func(t *testing.T) {
			assert.Equal(t, p.fields, info.Fields(p.value))
		}
		t.Run(p.name, f)
	}
}

func TestUnquote(t *testing.T) {
	assert.Equal(t, "abc", info.Unquote(` "abc" `))
	assert.Equal(t, "abc", info.Unquote("abc"))
	assert.Equal(t, `"`, info.Unquote(`"`))
	assert.Equal(t, "", info.Unquote(`""`))
}

func TestDecodeUCS2Hex(t *testing.T) {
	patterns := []struct {
		name string
		in   string
		out  string
		err  bool
	}{
		{"empty", "", "", false},
		{"ascii", "0054006500730074", "Test", false},
		{"cyrillic", "041C04220421", "МТС", false},
		{"odd length", "005", "", true},
		{"not hex", "00ZZ", "", true},
	}
	for _, p := range patterns {
		f := func(t *testing.T) {
			out, err := info.DecodeUCS2Hex(p.in)
			if p.err {
				assert.NotNil(t, err)
				return
			}
			assert.Nil(t, err)
			assert.Equal(t, p.out, out)
		}
		t.Run(p.name, f)
	}
}
