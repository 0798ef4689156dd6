package denoise

import "errors"

var (
	ErrUnknownStage       = errors.New("denoise: unknown post-processing stage")
	ErrUnknownVariable    = errors.New("denoise: unknown stage variable")
	ErrInvalidValue       = errors.New("denoise: invalid variable value")
	ErrMissingVariable    = errors.New("denoise: required stage variable not set")
	ErrDimensionMismatch  = errors.New("denoise: buffer dimensions do not match")
	ErrBufferOverflow     = errors.New("denoise: data does not fit in buffer")
	ErrAlreadyFinalized   = errors.New("denoise: command list already finalized")
	ErrNotFinalized       = errors.New("denoise: command list not finalized")
	ErrEmptyCommandList   = errors.New("denoise: command list is empty")
	ErrBufferReleased     = errors.New("denoise: buffer has been released")
	ErrForeignBuffer      = errors.New("denoise: buffer belongs to a different session")
	ErrInvalidLaunchShape = errors.New("denoise: launch dimensions must be non-zero")
)
