package cmd

import (
	"errors"

	"github.com/DominikPott/nvidiaDenoiser/pipeline"
)

// Process exit codes.
const (
	ExitOK = iota
	ExitFailure
	ExitMissingRequiredInput
	ExitImageLoadFailed
	ExitInvalidGuideResolution
	ExitDeviceAllocationFailed
	ExitDenoiseExecutionFailed
	ExitOutputWriteFailed
)

var ErrInvalidConfig = errors.New("config: invalid configuration")

// Map an error returned by Run to a process exit code.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, pipeline.ErrMissingRequiredInput):
		return ExitMissingRequiredInput
	case errors.Is(err, pipeline.ErrImageLoadFailed):
		return ExitImageLoadFailed
	case errors.Is(err, pipeline.ErrInvalidGuideResolution):
		return ExitInvalidGuideResolution
	case errors.Is(err, pipeline.ErrDeviceAllocationFailed):
		return ExitDeviceAllocationFailed
	case errors.Is(err, pipeline.ErrDenoiseExecutionFailed):
		return ExitDenoiseExecutionFailed
	case errors.Is(err, pipeline.ErrOutputWriteFailed):
		return ExitOutputWriteFailed
	}
	return ExitFailure
}
