package cmd

import (
	"github.com/DominikPott/nvidiaDenoiser/log"
	"github.com/urfave/cli"
)

var logger = log.New("denoiser")

// Apply the configured log level; the -v and -vv flags take precedence.
func setupLogging(ctx *cli.Context, configLevel string) error {
	level, err := log.ParseLevel(configLevel)
	if err != nil {
		return err
	}

	if ctx.GlobalBool("v") {
		level = log.Info
	}

	if ctx.GlobalBool("vv") {
		level = log.Debug
	}

	log.SetLevel(level)
	return nil
}
