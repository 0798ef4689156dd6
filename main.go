package main

import (
	"os"

	"github.com/DominikPott/nvidiaDenoiser/cmd"
)

func main() {
	err := cmd.Run(cmd.NewApp(), os.Args)
	os.Exit(cmd.ExitCode(err))
}
