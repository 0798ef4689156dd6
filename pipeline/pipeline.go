// Package pipeline loads the input images, runs a denoiser stage on a device
// session and writes the result. Runs are linear and synchronous; the
// session is the only device state and is passed in explicitly.
package pipeline

import (
	"fmt"
	"time"

	"github.com/DominikPott/nvidiaDenoiser/asset/imagebuf"
	"github.com/DominikPott/nvidiaDenoiser/denoise"
	"github.com/DominikPott/nvidiaDenoiser/log"
)

var logger = log.New("pipeline")

type Pipeline struct {
	session denoise.Session

	load  func(path string) (*imagebuf.Image, error)
	write func(img *imagebuf.Image, path string) error

	stats RunStats
}

// Create a pipeline that runs on the given session. The caller retains
// ownership of the session.
func New(session denoise.Session) *Pipeline {
	return &Pipeline{
		session: session,
		load:    imagebuf.Load,
		write:   (*imagebuf.Image).Write,
	}
}

// Get the stats for the last run.
func (p *Pipeline) Stats() RunStats {
	return p.stats
}

// Denoise the images described by opts. Every device buffer allocated by Run
// is released before it returns.
func (p *Pipeline) Run(opts Options) error {
	p.stats = RunStats{Session: p.session.Name()}
	start := time.Now()
	defer func() { p.stats.TotalTime = time.Since(start) }()

	if err := opts.Validate(); err != nil {
		return err
	}
	if opts.Stage == "" {
		opts.Stage = denoise.DLDenoiser
	}

	// Load images and check guide resolutions
	tick := time.Now()
	color, albedo, normal, err := p.loadImages(opts)
	if err != nil {
		return err
	}
	p.step(StepLoad, tick)
	p.stats.Resolution = color.String()
	logger.Infof("beauty image %s", color)

	// Allocate device buffers
	tick = time.Now()
	inputBuf, err := p.allocate("input", color)
	if err != nil {
		return err
	}
	defer inputBuf.Release()

	outputBuf, err := p.allocate("output", color)
	if err != nil {
		return err
	}
	defer outputBuf.Release()

	var albedoBuf, normalBuf denoise.Buffer
	if albedo != nil {
		if albedoBuf, err = p.allocate("albedo", color); err != nil {
			return err
		}
		defer albedoBuf.Release()
	}
	if normal != nil {
		if normalBuf, err = p.allocate("normal", color); err != nil {
			return err
		}
		defer normalBuf.Release()
	}
	p.step(StepAllocate, tick)

	// Upload
	tick = time.Now()
	uploads := []struct {
		buf denoise.Buffer
		img *imagebuf.Image
	}{
		{inputBuf, color},
		{albedoBuf, albedo},
		{normalBuf, normal},
	}
	for _, u := range uploads {
		if u.buf == nil {
			continue
		}
		if err = u.buf.Write(u.img.RGBA()); err != nil {
			return fmt.Errorf("%w: upload to %s: %w", ErrDeviceAllocationFailed, u.buf.Name(), err)
		}
	}
	p.step(StepUpload, tick)

	// Setup and run the denoiser
	tick = time.Now()
	p.stats.StageTime, err = p.denoise(opts, color, inputBuf, outputBuf, albedoBuf, normalBuf)
	if err != nil {
		return err
	}
	p.step(StepDenoise, tick)

	// Download the result, collapsing to the beauty channel count
	tick = time.Now()
	result := make([]float32, color.NumPixels()*4)
	if err = outputBuf.Read(result); err != nil {
		return fmt.Errorf("%w: download from %s: %w", ErrDenoiseExecutionFailed, outputBuf.Name(), err)
	}
	outImg := imagebuf.New(color.Width, color.Height, color.Channels)
	if err = outImg.SetRGBA(result); err != nil {
		return fmt.Errorf("%w: %w", ErrDenoiseExecutionFailed, err)
	}
	p.step(StepDownload, tick)

	tick = time.Now()
	if err = p.write(outImg, opts.OutputPath); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrOutputWriteFailed, opts.OutputPath, err)
	}
	p.step(StepWrite, tick)

	return nil
}

func (p *Pipeline) loadImages(opts Options) (color, albedo, normal *imagebuf.Image, err error) {
	color, err = p.loadImage(opts.ColorPath)
	if err != nil {
		return nil, nil, nil, err
	}

	if opts.AlbedoPath != "" {
		if albedo, err = p.loadGuide(opts.AlbedoPath, "albedo", color); err != nil {
			return nil, nil, nil, err
		}
	}

	if opts.NormalPath != "" {
		if albedo == nil {
			logger.Warningf("ignoring normal image %s; a normal guide requires an albedo guide", opts.NormalPath)
		} else if normal, err = p.loadGuide(opts.NormalPath, "normal", color); err != nil {
			return nil, nil, nil, err
		}
	}

	return color, albedo, normal, nil
}

func (p *Pipeline) loadImage(path string) (*imagebuf.Image, error) {
	img, err := p.load(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrImageLoadFailed, path, err)
	}
	return img, nil
}

func (p *Pipeline) loadGuide(path, kind string, color *imagebuf.Image) (*imagebuf.Image, error) {
	img, err := p.loadImage(path)
	if err != nil {
		return nil, err
	}
	if !img.SameResolution(color) {
		return nil, fmt.Errorf(
			"%w: %s image %s is %dx%d; beauty image is %dx%d",
			ErrInvalidGuideResolution, kind, path,
			img.Width, img.Height, color.Width, color.Height,
		)
	}
	p.stats.Guides = append(p.stats.Guides, kind)
	return img, nil
}

func (p *Pipeline) allocate(name string, color *imagebuf.Image) (denoise.Buffer, error) {
	buf, err := p.session.CreateBuffer(name, color.Width, color.Height)
	if err != nil {
		return nil, fmt.Errorf("%w: %s (%dx%d): %w", ErrDeviceAllocationFailed, name, color.Width, color.Height, err)
	}
	return buf, nil
}

func (p *Pipeline) denoise(opts Options, color *imagebuf.Image, input, output, albedo, normal denoise.Buffer) (time.Duration, error) {
	stage, err := p.session.CreateStage(opts.Stage)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrDenoiseExecutionFailed, err)
	}
	defer stage.Release()

	bindings := []struct {
		variable string
		value    interface{}
	}{
		{denoise.VarInputBuffer, input},
		{denoise.VarOutputBuffer, output},
		{denoise.VarBlend, opts.Blend},
		{denoise.VarAlbedoBuffer, albedo},
		{denoise.VarNormalBuffer, normal},
	}
	for _, b := range bindings {
		// Unused guides stay unbound
		if b.value == nil {
			continue
		}
		if err = stage.Set(b.variable, b.value); err != nil {
			return 0, fmt.Errorf("%w: %w", ErrDenoiseExecutionFailed, err)
		}
	}

	cmdList := denoise.NewCommandList()
	if err = cmdList.AppendPostprocessingStage(stage, color.Width, color.Height); err != nil {
		return 0, fmt.Errorf("%w: %w", ErrDenoiseExecutionFailed, err)
	}
	if err = cmdList.Finalize(); err != nil {
		return 0, fmt.Errorf("%w: %w", ErrDenoiseExecutionFailed, err)
	}

	logger.Notice("Denoising...")
	elapsed, err := cmdList.Execute()
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrDenoiseExecutionFailed, err)
	}
	logger.Notice("Denoising completed")

	return elapsed, nil
}

func (p *Pipeline) step(name string, tick time.Time) {
	p.stats.Steps = append(p.stats.Steps, StepStat{Step: name, Time: time.Since(tick)})
}
