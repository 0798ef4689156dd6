package denoise

import (
	"fmt"
	"time"
)

type launch struct {
	stage  Stage
	width  uint32
	height uint32
}

// An ordered list of stage launches. Finalize validates every appended stage;
// Execute then runs them synchronously.
type CommandList struct {
	launches  []launch
	finalized bool
}

// Create an empty command list.
func NewCommandList() *CommandList {
	return &CommandList{}
}

// Append a post-processing stage that will run over a width x height domain.
func (cl *CommandList) AppendPostprocessingStage(stage Stage, width, height uint32) error {
	if cl.finalized {
		return ErrAlreadyFinalized
	}
	if width == 0 || height == 0 {
		return fmt.Errorf("%w: stage %s got %dx%d", ErrInvalidLaunchShape, stage.Name(), width, height)
	}

	cl.launches = append(cl.launches, launch{stage: stage, width: width, height: height})
	return nil
}

// Validate all appended stages and freeze the list.
func (cl *CommandList) Finalize() error {
	if cl.finalized {
		return ErrAlreadyFinalized
	}
	if len(cl.launches) == 0 {
		return ErrEmptyCommandList
	}

	for _, l := range cl.launches {
		if err := l.stage.Validate(); err != nil {
			return err
		}
	}

	cl.finalized = true
	return nil
}

// Run all stages in order and return the total time spent on the device.
// Execution stops at the first failing stage.
func (cl *CommandList) Execute() (time.Duration, error) {
	if !cl.finalized {
		return 0, ErrNotFinalized
	}

	var total time.Duration
	for _, l := range cl.launches {
		elapsed, err := l.stage.Launch(l.width, l.height)
		total += elapsed
		if err != nil {
			return total, fmt.Errorf("denoise: stage %s failed: %w", l.stage.Name(), err)
		}
	}

	return total, nil
}
