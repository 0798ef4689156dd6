package cmd

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/DominikPott/nvidiaDenoiser/denoise"
	"github.com/DominikPott/nvidiaDenoiser/denoise/host"
	"github.com/DominikPott/nvidiaDenoiser/denoise/opencl"
	"github.com/DominikPott/nvidiaDenoiser/pipeline"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"
)

// Denoise the images passed via the -i, -a, -n and -o flags.
func Denoise(ctx *cli.Context) error {
	cfg, err := LoadConfig(ctx.GlobalString("config"))
	if err != nil {
		return err
	}
	cfg.ApplyFlags(ctx)
	if err = cfg.Validate(); err != nil {
		return err
	}
	if err = setupLogging(ctx, cfg.LogLevel); err != nil {
		return err
	}

	logger.Notice("Launching Denoiser.")

	opts := pipeline.Options{
		ColorPath:  ctx.String("input"),
		AlbedoPath: ctx.String("albedo"),
		NormalPath: ctx.String("normal"),
		OutputPath: ctx.String("output"),
		Blend:      cfg.Blend,
	}
	echoPath(ctx, ">> Beauty Image: ", opts.ColorPath)
	echoPath(ctx, ">> Albedo Image: ", opts.AlbedoPath)
	echoPath(ctx, ">> Normal Image: ", opts.NormalPath)
	echoPath(ctx, "<< Output Image: ", opts.OutputPath)

	// Fail before touching any device
	if err = opts.Validate(); err != nil {
		return err
	}

	session, err := openSession(cfg)
	if err != nil {
		return err
	}
	defer session.Close()

	p := pipeline.New(session)
	if err = p.Run(opts); err != nil {
		return err
	}
	logger.Noticef("Write result: %s", opts.OutputPath)

	displayRunStats(p.Stats())
	return nil
}

func echoPath(ctx *cli.Context, prefix, path string) {
	if path != "" {
		fmt.Fprintf(ctx.App.Writer, "%s%s\n", prefix, path)
	}
}

// Create a session for the configured backend.
func openSession(cfg *Config) (denoise.Session, error) {
	if cfg.Backend == BackendHost {
		logger.Info("using host backend")
		return host.NewSession(), nil
	}

	dev, err := opencl.SelectDevice(cfg.Device, cfg.Blacklist)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", pipeline.ErrDeviceAllocationFailed, err)
	}
	logger.Infof("using opencl device %q", dev.Name)

	session, err := opencl.NewSession(dev, cfg.KernelPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", pipeline.ErrDeviceAllocationFailed, err)
	}
	return session, nil
}

func displayRunStats(stats pipeline.RunStats) {
	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Step", "Time"})
	for _, stat := range stats.Steps {
		table.Append([]string{
			stat.Step,
			stat.Time.String(),
		})
	}
	table.SetFooter([]string{"TOTAL", stats.TotalTime.String()})

	table.Render()

	guides := "none"
	if len(stats.Guides) != 0 {
		guides = strings.Join(stats.Guides, ", ")
	}
	logger.Infof(
		"run statistics\nsession: %s\nimage:   %s\nguides:  %s\nstage:   %s\n%s",
		stats.Session, stats.Resolution, guides, stats.StageTime, buf.String(),
	)
}
