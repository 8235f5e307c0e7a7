// Package cli contains the waypointsim command line tool.
package cli

import (
	"io"

	"github.com/urfave/cli/v2"
)

const (
	// Flags.
	generalFlagConfig = "config"
	generalFlagDebug  = "debug"

	runFlagMaxTicks = "max-ticks"
	runFlagRealtime = "realtime"
	runFlagEvents   = "events"

	defaultMaxTicks = 10000
)

var configFlag = &cli.StringFlag{
	Name:     generalFlagConfig,
	Aliases:  []string{"c"},
	Required: true,
	Usage:    "load configuration from `FILE`",
}

// NewApp returns the waypointsim app writing output to out and logs to errOut.
func NewApp(out, errOut io.Writer) *cli.App {
	return &cli.App{
		Name:            "waypointsim",
		Usage:           "drive a simulated base through a waypoint plan",
		HideHelpCommand: true,
		Writer:          out,
		ErrWriter:       errOut,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    generalFlagDebug,
				Aliases: []string{"vvv"},
				Usage:   "enable debug logging",
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "validate",
				Usage:  "validate a config file and print its plan",
				Flags:  []cli.Flag{configFlag},
				Action: ValidateAction,
			},
			{
				Name:  "run",
				Usage: "run a plan to completion against a simulated base",
				Flags: []cli.Flag{
					configFlag,
					&cli.IntFlag{
						Name:  runFlagMaxTicks,
						Value: defaultMaxTicks,
						Usage: "fail if the plan is not done after this many control periods",
					},
					&cli.BoolFlag{
						Name:  runFlagRealtime,
						Usage: "step in the background at the configured frequency instead of as fast as possible",
					},
					&cli.BoolFlag{
						Name:  runFlagEvents,
						Usage: "print every waypoint event once the plan is done",
					},
				},
				Action: RunAction,
			},
		},
	}
}
