// SPDX-License-Identifier: MIT
//
// Copyright © 2018 Kent Gibson <warthog618@gmail.com>.

// Package gsm provides the SIM, identity and packet data operations of a
// cellular modem, built on an AT command stream.
//
// Negative outcomes, such as a locked SIM, no network or a modem that does
// not respond, are reported in the return values (false, empty strings or
// SimError) rather than as errors.
package gsm

import (
	"net"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/warthog618/cellular/at"
	"github.com/warthog618/cellular/info"
)

// Variant provides the modem specific parts of the packet data operations.
type Variant interface {
	// GPRSConnect activates a packet data context on the APN.
	GPRSConnect(apn, user, pwd string) error

	// GPRSDisconnect deactivates the packet data context.
	GPRSDisconnect() error

	// LocalIP returns the address currently assigned to the modem, or nil if
	// there is none.
	LocalIP() net.IP
}

// GSM modem decorates the AT stream with GSM specific functionality.
type GSM struct {
	*at.Stream
	variant     Variant
	ccidCmd     string
	ucs2        bool
	simInterval time.Duration
}

// Option is a construction option for a GSM.
type Option func(*GSM)

// New creates a new GSM modem.
//
// The variant provides the packet data operations, and is typically driving
// the same stream.
func New(s *at.Stream, v Variant, options ...Option) *GSM {
	g := &GSM{
		Stream:      s,
		variant:     v,
		ccidCmd:     "+CCID",
		simInterval: time.Second,
	}
	for _, option := range options {
		option(g)
	}
	return g
}

// WithCCIDCommand overrides the command used to read the SIM CCID.
//
// The default is +CCID. Some modems use +ICCID or +QCCID.
func WithCCIDCommand(cmd string) Option {
	return func(g *GSM) {
		g.ccidCmd = cmd
	}
}

// WithUCS2 indicates the modem is configured to report strings using the UCS2
// character set (AT+CSCS="UCS2").
func WithUCS2() Option {
	return func(g *GSM) {
		g.ucs2 = true
	}
}

// WithSimPollInterval sets the period between SIM status queries while
// waiting for the SIM to respond.
//
// The default is 1 second.
func WithSimPollInterval(d time.Duration) Option {
	return func(g *GSM) {
		g.simInterval = d
	}
}

// Init initialises the modem by confirming it is responsive, disabling
// command echo, enabling verbose errors and unlocking the SIM, if required.
//
// The pin is only used if the SIM is locked.
func (g *GSM) Init(pin string) error {
	if !g.TestAT(10 * time.Second) {
		return ErrNotResponding
	}
	for _, cmd := range []string{
		"E0",      // no echo
		"+CMEE=2", // textual errors
	} {
		if g.Send(cmd) != nil || g.Wait() != 1 {
			return errors.Errorf("AT%s failed", cmd)
		}
	}
	switch g.SimStatus(0) {
	case SimReady:
		return nil
	case SimLocked, SimAntitheftLocked:
		if pin == "" {
			return ErrSimLocked
		}
		if !g.SimUnlock(pin) {
			return errors.Wrap(ErrSimLocked, "unlock rejected")
		}
		if g.SimStatus(0) != SimReady {
			return errors.Wrap(ErrSimNotReady, "after unlock")
		}
		return nil
	default:
		return ErrSimNotReady
	}
}

// TestAT polls the modem with bare AT commands until it responds with OK, or
// the timeout expires.
func (g *GSM) TestAT(timeout time.Duration) bool {
	c := g.Clock()
	deadline := c.Now().Add(timeout)
	for c.Now().Before(deadline) {
		if g.Send("") == nil && g.WaitTimeout(200*time.Millisecond) == 1 {
			return true
		}
		c.Sleep(100 * time.Millisecond)
	}
	return false
}

// ModemInfo returns the identification reported by ATI, with lines joined
// by spaces.
func (g *GSM) ModemInfo() string {
	if g.Send("I") != nil {
		return ""
	}
	var lines []string
	for {
		l, err := g.ReadString('\n')
		if err != nil {
			return ""
		}
		l = strings.TrimSpace(l)
		switch {
		case l == "OK":
			return strings.Join(lines, " ")
		case l == "ERROR":
			return ""
		case l != "":
			lines = append(lines, l)
		}
	}
}

// SimUnlock unlocks the SIM using the pin.
//
// An empty pin is a no-op and reports success without contacting the modem.
func (g *GSM) SimUnlock(pin string) bool {
	if pin == "" {
		return true
	}
	if g.Send("+CPIN", at.Quote(pin)) != nil {
		return false
	}
	return g.Wait() == 1
}

// SimCCID returns the integrated circuit card identifier of the SIM, or an
// empty string if it cannot be read.
func (g *GSM) SimCCID() string {
	if g.Send(g.ccidCmd) != nil {
		return ""
	}
	if g.Wait(g.ccidCmd+":") != 1 {
		return ""
	}
	res, _ := g.ReadString('\n')
	g.Wait()
	return strings.TrimSpace(res)
}

// IMEI returns the IMEI of the modem, or an empty string if it cannot be
// read.
func (g *GSM) IMEI() string {
	return g.readLine("+GSN")
}

// IMSI returns the IMSI of the SIM, or an empty string if it cannot be read.
func (g *GSM) IMSI() string {
	return g.readLine("+CIMI")
}

// readLine returns the single line response to a command which returns its
// value without an info prefix.
func (g *GSM) readLine(cmd string) string {
	if g.Send(cmd) != nil {
		return ""
	}
	if !g.Skip('\n') {
		return ""
	}
	res, _ := g.ReadString('\n')
	res = strings.TrimSpace(res)
	if res == "ERROR" || strings.HasPrefix(res, "+CME ERROR:") {
		return ""
	}
	g.Wait()
	return res
}

// GPRSConnect activates packet data on the APN.
func (g *GSM) GPRSConnect(apn, user, pwd string) error {
	return g.variant.GPRSConnect(apn, user, pwd)
}

// GPRSDisconnect deactivates packet data.
func (g *GSM) GPRSDisconnect() error {
	return g.variant.GPRSDisconnect()
}

// LocalIP returns the address assigned to the modem, as tracked by the
// variant.
func (g *GSM) LocalIP() net.IP {
	return g.variant.LocalIP()
}

// IsGPRSConnected returns true if the modem is attached to packet data and
// has been assigned an address.
//
// A malformed attach state is treated as detached.
func (g *GSM) IsGPRSConnected() bool {
	if g.Send("+CGATT?") != nil {
		return false
	}
	if g.Wait("+CGATT:") != 1 {
		return false
	}
	attached, err := g.ReadInt('\n')
	g.Wait()
	if err != nil || attached != 1 {
		return false
	}
	ip := g.variant.LocalIP()
	return ip != nil && !ip.IsUnspecified()
}

// Operator returns the name of the network operator, or an empty string if
// the modem does not report one.
func (g *GSM) Operator() string {
	if g.Send("+COPS?") != nil {
		return ""
	}
	if g.Wait("+COPS:") != 1 {
		return ""
	}
	if !g.Skip('"') {
		// registered without a name, or not registered
		return ""
	}
	res, _ := g.ReadString('"')
	g.Wait()
	if g.ucs2 {
		if name, err := info.DecodeUCS2Hex(res); err == nil {
			return name
		}
	}
	return res
}

var (
	// ErrNotResponding indicates the modem did not respond to AT.
	ErrNotResponding = errors.New("modem is not responding")

	// ErrSimLocked indicates the SIM requires a PIN or PUK.
	ErrSimLocked = errors.New("SIM is locked")

	// ErrSimNotReady indicates the SIM is absent, not ready or in error.
	ErrSimNotReady = errors.New("SIM is not ready")
)
