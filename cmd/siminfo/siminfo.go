// SPDX-License-Identifier: MIT
//
// Copyright © 2018 Kent Gibson <warthog618@gmail.com>.

// siminfo reports the identity of a cellular modem and its SIM, the SIM and
// network state, and optionally brings up packet data on an APN.
//
// This serves as an example of how to drive a modem with the gsm package, as
// well as providing information which may be useful when commissioning a
// modem.
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/warthog618/cellular/at"
	"github.com/warthog618/cellular/gprs"
	"github.com/warthog618/cellular/gsm"
	"github.com/warthog618/cellular/serial"
	"github.com/warthog618/cellular/trace"
)

var version = "undefined"

func main() {
	fs := flag.NewFlagSet(os.Args[0], flag.ExitOnError)
	cfgFile := fs.String("c", "", "path to HJSON config file")
	fs.String("d", serial.DefaultPort(), "path to modem device")
	fs.Int("b", serial.DefaultBaud(), "baud rate")
	fs.Duration("t", 400*time.Millisecond, "command timeout period")
	fs.Bool("v", false, "log modem interactions")
	fs.String("pin", "", "SIM PIN, used only if the SIM is locked")
	fs.String("ccid", "+CCID", "command used to read the SIM CCID")
	fs.Bool("ucs2", false, "modem reports strings in UCS2")
	fs.String("apn", "", "APN to connect to, if any")
	fs.String("user", "", "APN user name")
	fs.String("pass", "", "APN password")
	fs.Int("cid", 1, "PDP context id")
	list := fs.Bool("l", false, "list serial ports and exit")
	vsn := fs.Bool("version", false, "report version and exit")
	fs.Parse(os.Args[1:])
	if *vsn {
		fmt.Printf("%s %s\n", os.Args[0], version)
		os.Exit(0)
	}
	if *list {
		ports, err := serial.List()
		if err != nil {
			log.Fatal(err)
		}
		for _, p := range ports {
			fmt.Println(p)
		}
		os.Exit(0)
	}
	cfg := defaultConfig()
	if *cfgFile != "" {
		if err := loadConfig(*cfgFile, &cfg); err != nil {
			log.Fatal(err)
		}
	}
	applyFlags(fs, &cfg)
	timeout, err := cfg.timeout()
	if err != nil {
		log.Fatal(err)
	}

	m, err := serial.New(serial.WithPort(cfg.Device), serial.WithBaud(cfg.Baud))
	if err != nil {
		log.Fatal(err)
	}
	defer m.Close()
	var mio io.ReadWriter = m
	aopts := []at.Option{at.WithTimeout(timeout)}
	if cfg.Verbose {
		l := log.New(os.Stderr, "", log.LstdFlags)
		mio = trace.New(m, trace.WithLogger(l))
		aopts = append(aopts, at.WithLogger(l))
	}
	s := at.New(mio, aopts...)
	gopts := []gsm.Option{gsm.WithCCIDCommand(cfg.CCIDCommand)}
	if cfg.UCS2 {
		gopts = append(gopts, gsm.WithUCS2())
	}
	g := gsm.New(s, gprs.New(s, gprs.WithContextID(cfg.ContextID)), gopts...)
	if err := g.Init(cfg.PIN); err != nil {
		log.Println(err)
		return
	}
	report(g)
	if cfg.APN == "" {
		return
	}
	if err := g.GPRSConnect(cfg.APN, cfg.User, cfg.Password); err != nil {
		log.Println(err)
		return
	}
	fmt.Printf("%-10s %s\n", "address", g.LocalIP())
	fmt.Printf("%-10s %t\n", "connected", g.IsGPRSConnected())
	if err := g.GPRSDisconnect(); err != nil {
		log.Println(err)
	}
}

func report(g *gsm.GSM) {
	fields := []struct {
		name  string
		value func() string
	}{
		{"modem", g.ModemInfo},
		{"imei", g.IMEI},
		{"imsi", g.IMSI},
		{"ccid", g.SimCCID},
		{"sim", func() string { return g.SimStatus(0).String() }},
		{"operator", g.Operator},
		{"attached", func() string { return fmt.Sprint(g.IsGPRSConnected()) }},
	}
	for _, f := range fields {
		fmt.Printf("%-10s %s\n", f.name, f.value())
	}
}
