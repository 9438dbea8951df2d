// SPDX-License-Identifier: MIT
//
// Copyright © 2020 Kent Gibson <warthog618@gmail.com>.

// Package gprs provides packet data control for modems supporting the
// standard 3GPP TS 27.007 PDP context commands.
package gprs

import (
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/warthog618/cellular/at"
	"github.com/warthog618/cellular/info"
)

// Generic controls packet data using +CGDCONT, +CGAUTH, +CGACT and +CGPADDR.
//
// Generic tracks the address assigned on connect, and so satisfies
// gsm.Variant.
type Generic struct {
	s              *at.Stream
	cid            string
	connectTimeout time.Duration
	ip             net.IP
}

// Option is a construction option for a Generic.
type Option func(*Generic)

// New creates a Generic variant driving the stream.
func New(s *at.Stream, options ...Option) *Generic {
	g := &Generic{
		s:              s,
		cid:            "1",
		connectTimeout: 60 * time.Second,
	}
	for _, option := range options {
		option(g)
	}
	return g
}

// WithContextID sets the PDP context used for packet data.
//
// The default is context 1.
func WithContextID(cid int) Option {
	return func(g *Generic) {
		g.cid = strconv.Itoa(cid)
	}
}

// WithConnectTimeout sets the time allowed for the network to activate the
// PDP context.
//
// The default is 60 seconds. Deactivation is allowed two thirds of this.
func WithConnectTimeout(d time.Duration) Option {
	return func(g *Generic) {
		g.connectTimeout = d
	}
}

// GPRSConnect defines the PDP context for the APN, activates it, and reads
// back the assigned address.
//
// Credentials are only sent if user is not empty.
func (g *Generic) GPRSConnect(apn, user, pwd string) error {
	g.ip = nil
	if err := g.command(g.s.Timeout(), "+CGDCONT", g.cid, at.Quote("IP"), at.Quote(apn)); err != nil {
		return err
	}
	if user != "" {
		if err := g.command(g.s.Timeout(), "+CGAUTH", g.cid, "1", at.Quote(user), at.Quote(pwd)); err != nil {
			return err
		}
	}
	if err := g.command(g.connectTimeout, "+CGACT", "1", g.cid); err != nil {
		return err
	}
	ip, err := g.address()
	if err != nil {
		return err
	}
	g.ip = ip
	return nil
}

// GPRSDisconnect deactivates the PDP context.
//
// The tracked address is cleared even if the modem rejects the command.
func (g *Generic) GPRSDisconnect() error {
	g.ip = nil
	return g.command(g.connectTimeout*2/3, "+CGACT", "0", g.cid)
}

// LocalIP returns the address assigned by the most recent successful
// GPRSConnect, or nil if disconnected.
func (g *Generic) LocalIP() net.IP {
	return g.ip
}

func (g *Generic) command(timeout time.Duration, cmd string, args ...string) error {
	if err := g.s.Send(cmd, args...); err != nil {
		return errors.Wrapf(err, "AT%s", cmd)
	}
	if g.s.WaitTimeout(timeout) != 1 {
		if err := g.s.Err(); err != nil {
			return errors.Wrapf(err, "AT%s", cmd)
		}
		return errors.Wrapf(ErrRejected, "AT%s", cmd)
	}
	return nil
}

// address reads the address assigned to the context.
func (g *Generic) address() (net.IP, error) {
	if err := g.s.Send("+CGPADDR", g.cid); err != nil {
		return nil, errors.Wrap(err, "AT+CGPADDR")
	}
	if g.s.Wait("+CGPADDR:") != 1 {
		return nil, errors.Wrap(ErrRejected, "AT+CGPADDR")
	}
	line, _ := g.s.ReadString('\n')
	g.s.Wait()
	fields := info.Fields(strings.TrimSpace(line))
	if len(fields) < 2 {
		return nil, errors.Wrapf(ErrNoAddress, "%q", line)
	}
	ip := net.ParseIP(fields[1])
	if ip == nil || ip.IsUnspecified() {
		return nil, errors.Wrapf(ErrNoAddress, "%q", line)
	}
	return ip, nil
}

var (
	// ErrRejected indicates the modem returned an error or did not respond
	// to a command.
	ErrRejected = errors.New("command rejected")

	// ErrNoAddress indicates the context was activated but no address was
	// assigned.
	ErrNoAddress = errors.New("no address assigned")
)
