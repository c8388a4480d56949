package main

import (
	"github.com/urfave/cli"

	"render-bridge/log"
)

var logger = log.New("cmd")

// setupLogging applies the verbosity flags. It reports whether a flag was
// given so the config file level does not override it.
func setupLogging(ctx *cli.Context) bool {
	if ctx.GlobalBool("vv") {
		log.SetLevel(log.Debug)
		return true
	}
	if ctx.GlobalBool("v") {
		log.SetLevel(log.Info)
		return true
	}
	return false
}
