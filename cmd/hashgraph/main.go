// hashgraph is a development tool around the consensus engine: it builds
// gossip graphs, reports their consensus state and exercises sync job
// generation and event persistence.
package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

// Git SHA1 commit hash of the release (set via linker flags)
var gitCommit = ""

var app = &cli.App{
	Name:    "hashgraph",
	Usage:   "hashgraph consensus engine development tool",
	Version: gitCommit,
	Commands: []*cli.Command{
		commandSimulate,
	},
	Before: func(ctx *cli.Context) error {
		if ctx.Bool(verboseFlag.Name) {
			logrus.SetLevel(logrus.DebugLevel)
		}
		return nil
	},
	Flags: []cli.Flag{verboseFlag},
}

var verboseFlag = &cli.BoolFlag{
	Name:  "verbose",
	Usage: "enable debug logging",
}

func main() {
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
