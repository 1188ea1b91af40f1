// Command lesim drives the LE host stack against a controller: a local HCI
// device, an H4 UART or TCP link, or the simulated controller seeded from a
// peers file.
package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli"
)

func main() {
	app := cli.NewApp()

	app.Name = "lesim"
	app.Usage = "Exercise the LE host core against a real or simulated controller"
	app.Version = "0.1.0"
	app.Action = cli.ShowAppHelp
	app.Flags = []cli.Flag{flgTransport, flgDevice, flgPreset, flgPeers, flgJSON, flgVerbose}

	app.Commands = []cli.Command{
		{
			Name:    "info",
			Aliases: []string{"i"},
			Usage:   "Initialize the controller and print what it reports",
			Action:  withStack(info),
		},
		{
			Name:    "scan",
			Aliases: []string{"s"},
			Usage:   "Scan for advertisers",
			Action:  withStack(scan),
			Flags:   []cli.Flag{flgDuration, flgActive, flgAllowDup},
		},
		{
			Name:    "connect",
			Aliases: []string{"c"},
			Usage:   "Connect to a peer, then disconnect",
			Action:  withStack(connect),
			Flags:   []cli.Flag{flgAddr, flgRandom, flgTimeout},
		},
		{
			Name:    "adv",
			Aliases: []string{"a"},
			Usage:   "Advertise a name",
			Action:  withStack(advertise),
			Flags:   []cli.Flag{flgDuration, flgName, flgConnectable},
		},
		{
			Name:  "peer",
			Usage: "Manage the peers of the simulated controller",
			Subcommands: []cli.Command{
				{
					Name:   "add",
					Usage:  "Add or replace a peer",
					Action: peerAdd,
					Flags:  []cli.Flag{flgAddr, flgRandom, flgName, flgConnectable, flgScannable, flgRSSI},
				},
				{
					Name:   "list",
					Usage:  "List the stored peers",
					Action: peerList,
				},
				{
					Name:   "clear",
					Usage:  "Remove every stored peer",
					Action: peerClear,
				},
			},
		},
	}

	app.Before = setup
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}
