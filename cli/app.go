// Package cli contains the speckle command line tool.
package cli

import (
	"fmt"
	"io"

	"github.com/urfave/cli/v2"
)

const (
	// Flags.
	generalFlagConfig = "config"
	generalFlagDebug  = "debug"

	filterFlagNewVal         = "new-val"
	filterFlagMaxSpeckleSize = "max-speckle-size"
	filterFlagMaxDiff        = "max-diff"
	filterFlagWorkers        = "workers"
	filterFlagFillHoles      = "fill-holes"
	filterFlagSuffix         = "suffix"
	filterFlagOutDir         = "out-dir"
)

var app = &cli.App{
	Name:            "speckle",
	Usage:           "remove speckle noise from depth images",
	HideHelpCommand: true,
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:    generalFlagConfig,
			Aliases: []string{"c"},
			Usage:   "load configuration from `FILE`",
		},
		&cli.BoolFlag{
			Name:  generalFlagDebug,
			Usage: "enable debug logging",
		},
	},
	Commands: []*cli.Command{
		{
			Name:      "filter",
			Usage:     "erase speckles from depth files",
			ArgsUsage: "FILE...",
			UsageText: "speckle filter [flags] FILE...",
			Flags: []cli.Flag{
				&cli.IntFlag{
					Name:  filterFlagNewVal,
					Usage: "value written over erased pixels",
				},
				&cli.IntFlag{
					Name:  filterFlagMaxSpeckleSize,
					Usage: "largest region, in pixels, that counts as a speckle",
				},
				&cli.IntFlag{
					Name:  filterFlagMaxDiff,
					Usage: "largest difference between neighbors of the same region",
				},
				&cli.IntFlag{
					Name:  filterFlagFillHoles,
					Usage: "hole filling passes to run after speckle removal, 0 to disable",
				},
				&cli.IntFlag{
					Name:  filterFlagWorkers,
					Usage: "number of files filtered at once, 0 for one per CPU",
				},
				&cli.StringFlag{
					Name:  filterFlagSuffix,
					Usage: "suffix added to the name of every output file",
				},
				&cli.StringFlag{
					Name:  filterFlagOutDir,
					Usage: "write outputs to `DIR` instead of beside the inputs",
				},
			},
			Action: FilterAction,
		},
		{
			Name:      "inspect",
			Usage:     "print the format and depth range of depth files",
			ArgsUsage: "FILE...",
			UsageText: "speckle inspect FILE...",
			Action:    InspectAction,
		},
	},
}

// NewApp returns a new app with the CLI API, Writer set to out, and ErrWriter
// set to errOut.
func NewApp(out, errOut io.Writer) *cli.App {
	app.Writer = out
	app.ErrWriter = errOut
	return app
}

func printf(w io.Writer, format string, a ...interface{}) {
	//nolint:errcheck
	_, _ = fmt.Fprintf(w, format+"\n", a...)
}
