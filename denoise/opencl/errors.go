package opencl

import "errors"

var (
	ErrNoDevice      = errors.New("opencl session: no matching opencl device found")
	ErrInvalidDevice = errors.New("opencl session: invalid device handle")
)
