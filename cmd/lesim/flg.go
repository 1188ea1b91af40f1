package main

import (
	"time"

	"github.com/urfave/cli"
)

var (
	flgTransport = cli.StringFlag{Name: "transport", Value: "fake", Usage: "fake, hci, uart or tcp"}
	flgDevice    = cli.StringFlag{Name: "device", Value: "-1", Usage: "HCI device id, UART path or TCP address"}
	flgPreset    = cli.StringFlag{Name: "preset", Value: "legacy", Usage: "simulated controller: legacy, le or dual"}
	flgPeers     = cli.StringFlag{Name: "peers", Usage: "JSON file with the peers of the simulated controller"}
	flgJSON      = cli.BoolFlag{Name: "json", Usage: "print results as JSON"}
	flgVerbose   = cli.BoolFlag{Name: "verbose, v", Usage: "log everything"}

	flgDuration    = cli.DurationFlag{Name: "duration, d", Value: time.Second * 5, Usage: "duration"}
	flgTimeout     = cli.DurationFlag{Name: "tmo, t", Value: time.Second * 10, Usage: "Timeout for the command"}
	flgActive      = cli.BoolFlag{Name: "active", Usage: "send scan requests"}
	flgAllowDup    = cli.BoolFlag{Name: "dup", Usage: "Allow duplicate in scanning result"}
	flgAddr        = cli.StringFlag{Name: "addr, a", Usage: "Address of remote device"}
	flgRandom      = cli.BoolFlag{Name: "random", Usage: "the address is a random address"}
	flgName        = cli.StringFlag{Name: "name, n", Value: "Gopher", Usage: "Device Name"}
	flgConnectable = cli.BoolFlag{Name: "connectable", Usage: "accept connections"}
	flgScannable   = cli.BoolFlag{Name: "scannable", Usage: "answer scan requests"}
	flgRSSI        = cli.IntFlag{Name: "rssi", Value: -50, Usage: "reported RSSI"}
)
