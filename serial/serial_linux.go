// SPDX-License-Identifier: MIT
//
// Copyright © 2020 Kent Gibson <warthog618@gmail.com>.

//go:build linux

package serial

// Most USB modems expose the AT port as the third interface.
var defaultConfig = Config{
	port: "/dev/ttyUSB2",
	baud: 115200,
}
