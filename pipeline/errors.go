package pipeline

import "errors"

var (
	ErrMissingRequiredInput   = errors.New("pipeline: missing required input")
	ErrImageLoadFailed        = errors.New("pipeline: could not load image")
	ErrInvalidGuideResolution = errors.New("pipeline: guide image resolution does not match the beauty image")
	ErrDeviceAllocationFailed = errors.New("pipeline: could not allocate device buffer")
	ErrDenoiseExecutionFailed = errors.New("pipeline: denoiser execution failed")
	ErrOutputWriteFailed      = errors.New("pipeline: could not write output image")
)
