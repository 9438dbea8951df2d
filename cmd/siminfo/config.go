// SPDX-License-Identifier: MIT
//
// Copyright © 2018 Kent Gibson <warthog618@gmail.com>.

package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"os"
	"time"

	"github.com/hjson/hjson-go"
	"github.com/pkg/errors"
	"github.com/warthog618/cellular/serial"
)

// config is the combination of the config file and the command line.
type config struct {
	Device      string `json:"device"`
	Baud        int    `json:"baud"`
	Timeout     string `json:"timeout"`
	Verbose     bool   `json:"verbose"`
	PIN         string `json:"pin"`
	CCIDCommand string `json:"ccid_command"`
	UCS2        bool   `json:"ucs2"`
	APN         string `json:"apn"`
	User        string `json:"user"`
	Password    string `json:"password"`
	ContextID   int    `json:"cid"`
}

func defaultConfig() config {
	return config{
		Device:      serial.DefaultPort(),
		Baud:        serial.DefaultBaud(),
		Timeout:     "400ms",
		CCIDCommand: "+CCID",
		ContextID:   1,
	}
}

// loadConfig overlays the HJSON file at path onto cfg.
//
// Keys missing from the file keep their value in cfg. Unknown keys are an
// error.
func loadConfig(path string, cfg *config) error {
	input, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return parseConfig(input, cfg)
}

func parseConfig(input []byte, cfg *config) error {
	var raw map[string]interface{}
	if err := hjson.Unmarshal(input, &raw); err != nil {
		return errors.Wrap(err, "config")
	}
	// hjson decodes to generic values, so reencode for the struct tags.
	buf, err := json.Marshal(raw)
	if err != nil {
		return errors.Wrap(err, "config")
	}
	dec := json.NewDecoder(bytes.NewReader(buf))
	dec.DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		return errors.Wrap(err, "config")
	}
	if _, err := cfg.timeout(); err != nil {
		return err
	}
	return nil
}

func (c config) timeout() (time.Duration, error) {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 0, errors.Wrapf(err, "timeout %q", c.Timeout)
	}
	if d <= 0 {
		return 0, errors.Errorf("timeout %q must be positive", c.Timeout)
	}
	return d, nil
}

// applyFlags overrides cfg with the flags set on the command line.
func applyFlags(fs *flag.FlagSet, cfg *config) {
	fs.Visit(func(f *flag.Flag) {
		g, ok := f.Value.(flag.Getter)
		if !ok {
			return
		}
		switch v := g.Get().(type) {
		case string:
			switch f.Name {
			case "d":
				cfg.Device = v
			case "pin":
				cfg.PIN = v
			case "ccid":
				cfg.CCIDCommand = v
			case "apn":
				cfg.APN = v
			case "user":
				cfg.User = v
			case "pass":
				cfg.Password = v
			}
		case int:
			switch f.Name {
			case "b":
				cfg.Baud = v
			case "cid":
				cfg.ContextID = v
			}
		case bool:
			switch f.Name {
			case "v":
				cfg.Verbose = v
			case "ucs2":
				cfg.UCS2 = v
			}
		case time.Duration:
			if f.Name == "t" {
				cfg.Timeout = v.String()
			}
		}
	})
}
