package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli"
)

func main() {
	cli.VersionFlag = cli.BoolFlag{
		Name:  "version",
		Usage: "print only the version",
	}

	app := cli.NewApp()
	app.Name = "render-bridge"
	app.Usage = "render with Vulkan and show the output in toolkit windows"
	app.Version = "0.1.0"
	app.Flags = []cli.Flag{
		cli.BoolFlag{
			Name:  "v",
			Usage: "enable verbose logging",
		},
		cli.BoolFlag{
			Name:  "vv",
			Usage: "enable even more verbose logging",
		},
		cli.StringFlag{
			Name:  "config, c",
			Usage: "load settings from `FILE`",
		},
	}
	app.Action = Run
	app.Commands = []cli.Command{
		{
			Name:  "run",
			Usage: "open the configured windows and relay rendered frames to them",
			Description: `
Open every window from the config file, export a Vulkan render target for each
of them and hand the targets to the UI thread as dma-bufs. Runs until the
configured exit condition is met or the process is interrupted.`,
			Action: Run,
		},
		{
			Name:   "list-devices",
			Usage:  "list Vulkan devices and whether they can export render targets",
			Action: ListDevices,
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
