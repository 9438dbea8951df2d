// SPDX-License-Identifier: MIT
//
// Copyright © 2020 Kent Gibson <warthog618@gmail.com>.

// Package serial provides the serial port connection to a modem.
package serial

import (
	"time"

	"github.com/pkg/errors"
	"github.com/tarm/serial"
	enum "go.bug.st/serial"
)

// Config defines the configuration of the serial port.
type Config struct {
	port        string
	baud        int
	readTimeout time.Duration
}

// Option modifies the default Config.
type Option func(*Config)

// New creates a serial port connection to the modem.
//
// This is currently a simple wrapper around tarm serial. The port is opened
// in blocking mode unless a read timeout is provided.
func New(options ...Option) (*serial.Port, error) {
	cfg := defaultConfig
	for _, option := range options {
		option(&cfg)
	}
	config := &serial.Config{
		Name:        cfg.port,
		Baud:        cfg.baud,
		ReadTimeout: cfg.readTimeout,
	}
	p, err := serial.OpenPort(config)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", cfg.port)
	}
	return p, nil
}

// WithBaud sets the baud rate for the serial port.
func WithBaud(b int) Option {
	return func(c *Config) {
		c.baud = b
	}
}

// WithPort specifies the port for the serial port.
func WithPort(p string) Option {
	return func(c *Config) {
		c.port = p
	}
}

// WithReadTimeout sets the read timeout of the port.
//
// A read that times out returns no data, which the at package treats as the
// modem closing, so this should be left zero when the port feeds an
// at.Stream.
func WithReadTimeout(d time.Duration) Option {
	return func(c *Config) {
		c.readTimeout = d
	}
}

// DefaultPort returns the port used when none is specified.
func DefaultPort() string {
	return defaultConfig.port
}

// DefaultBaud returns the baud rate used when none is specified.
func DefaultBaud() int {
	return defaultConfig.baud
}

// List returns the names of the serial ports available on the host.
func List() ([]string, error) {
	ports, err := enum.GetPortsList()
	if err != nil {
		return nil, errors.Wrap(err, "list ports")
	}
	return ports, nil
}
