package cmd

import "github.com/urfave/cli"

// Create the denoiser command line application.
func NewApp() *cli.App {
	// The default version flag claims -v which is the verbose flag here
	cli.VersionFlag = cli.BoolFlag{
		Name:  "version",
		Usage: "print only the version",
	}

	app := cli.NewApp()
	app.Name = "denoiser"
	app.Usage = "denoise rendered images using albedo and normal guides"
	app.Version = "0.0.1"
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "input, i",
			Usage: "beauty (noisy color) image; required",
		},
		cli.StringFlag{
			Name:  "albedo, a",
			Usage: "albedo guide image",
		},
		cli.StringFlag{
			Name:  "normal, n",
			Usage: "normal guide image; only used together with an albedo guide",
		},
		cli.StringFlag{
			Name:  "output, o",
			Usage: "image filename for the denoised result; required",
		},
		cli.Float64Flag{
			Name:  "blend",
			Usage: "blend the denoised result with the noisy input (0 = fully denoised, 1 = input)",
		},
		cli.StringFlag{
			Name:  "backend",
			Value: BackendOpenCL,
			Usage: "denoiser backend: opencl or host",
		},
		cli.StringFlag{
			Name:  "device, d",
			Usage: "use the first opencl device whose name contains this value",
		},
		cli.StringSliceFlag{
			Name:  "blacklist, b",
			Value: &cli.StringSlice{},
			Usage: "blacklist opencl device whose names contain this value",
		},
		cli.StringFlag{
			Name:  "kernel-path",
			Usage: "override the CL program used by the opencl backend",
		},
		cli.StringFlag{
			Name:  "config, c",
			Usage: "load defaults from a yaml, json or toml file",
		},
		cli.BoolFlag{
			Name:  "v",
			Usage: "enable verbose logging",
		},
		cli.BoolFlag{
			Name:  "vv",
			Usage: "enable even more verbose logging",
		},
	}
	app.Action = Denoise
	app.Commands = []cli.Command{
		{
			Name:   "list-devices",
			Usage:  "list available opencl devices",
			Action: ListDevices,
		},
	}

	return app
}

// Run the application with the given command line, ignoring unrecognized flags.
func Run(app *cli.App, args []string) error {
	args, err := SanitizeArgs(args, app.Flags, app.Commands)
	if err == nil {
		err = app.Run(args)
	}

	if err != nil {
		logger.Error(err)
	}
	return err
}
