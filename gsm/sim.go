// SPDX-License-Identifier: MIT
//
// Copyright © 2018 Kent Gibson <warthog618@gmail.com>.

package gsm

import "time"

// SimStatus is the state of the SIM as reported by +CPIN.
type SimStatus int

const (
	// SimError indicates the SIM is absent, not ready, or did not respond.
	SimError SimStatus = iota

	// SimReady indicates the SIM is unlocked and ready.
	SimReady

	// SimLocked indicates the SIM is waiting for a PIN or PUK.
	SimLocked

	// SimAntitheftLocked indicates the modem is locked to a different SIM.
	SimAntitheftLocked
)

func (s SimStatus) String() string {
	switch s {
	case SimReady:
		return "ready"
	case SimLocked:
		return "locked"
	case SimAntitheftLocked:
		return "antitheft locked"
	default:
		return "error"
	}
}

// DefaultSimTimeout is the period SimStatus waits for the SIM when called
// with a zero timeout.
const DefaultSimTimeout = 10 * time.Second

// SimStatus queries the SIM state, repeating the query until the modem
// responds or the timeout expires.
//
// The query is repeated at the SIM poll interval. A zero timeout uses the
// DefaultSimTimeout. Waits within the loop are clipped to the timeout, so a
// modem that never responds returns SimError once the timeout has elapsed.
func (g *GSM) SimStatus(timeout time.Duration) SimStatus {
	if timeout <= 0 {
		timeout = DefaultSimTimeout
	}
	c := g.Clock()
	deadline := c.Now().Add(timeout)
	for {
		remaining := deadline.Sub(c.Now())
		if remaining <= 0 {
			return SimError
		}
		if g.Send("+CPIN?") == nil &&
			g.WaitTimeout(minDuration(g.Timeout(), remaining), "+CPIN:") == 1 {
			break
		}
		remaining = deadline.Sub(c.Now())
		if remaining <= 0 {
			return SimError
		}
		c.Sleep(minDuration(g.simInterval, remaining))
	}
	status := g.Wait("READY", "SIM PIN", "SIM PUK", "NOT INSERTED", "NOT READY")
	g.Wait()
	switch status {
	case 1:
		return SimReady
	case 2, 3:
		return SimLocked
	default:
		return SimError
	}
}

func minDuration(a, b time.Duration) time.Duration {
	if a < b {
		return a
	}
	return b
}
