package pipeline

import "fmt"

type Options struct {
	// Beauty image; required.
	ColorPath string

	// Optional guide images. A normal guide is only used together with an
	// albedo guide.
	AlbedoPath string
	NormalPath string

	// Destination for the denoised image; required. The format is inferred
	// from the file extension.
	OutputPath string

	// Blend factor between the denoised (0) and the noisy (1) image.
	Blend float32

	// Name of the post-processing stage to run. Defaults to DLDenoiser.
	Stage string
}

// Check that the required paths are set.
func (opts Options) Validate() error {
	if opts.ColorPath == "" {
		return fmt.Errorf("%w: beauty image (-i)", ErrMissingRequiredInput)
	}
	if opts.OutputPath == "" {
		return fmt.Errorf("%w: output image (-o)", ErrMissingRequiredInput)
	}
	return nil
}
