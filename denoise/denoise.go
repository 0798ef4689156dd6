// Package denoise defines the device-side contract used to run a denoising
// post-processing stage.
//
// A Session owns every device resource created through it. Buffers hold
// width*height float4 pixels. Stages are named built-in post-processing
// programs whose inputs are bound as named variables; they are appended to a
// CommandList which validates them and executes them synchronously.
package denoise

import "time"

// Names of the built-in post-processing stages.
const (
	// Edge-aware denoiser that can be guided by albedo and normal buffers.
	DLDenoiser = "DLDenoiser"

	// Copies the input buffer to the output buffer untouched.
	Passthrough = "passthrough"
)

// Variables understood by the built-in stages.
const (
	VarInputBuffer  = "input_buffer"
	VarOutputBuffer = "output_buffer"
	VarBlend        = "blend"
	VarAlbedoBuffer = "input_albedo_buffer"
	VarNormalBuffer = "input_normal_buffer"
)

// Size of a buffer element in bytes (float4).
const SizeofPixel = 16

// Number of float32 samples held by a width x height buffer.
func BufferSamples(width, height uint32) int {
	return int(width) * int(height) * 4
}

// A device-resident float4 image buffer.
type Buffer interface {
	// Buffer name used in diagnostics.
	Name() string

	// Buffer dimensions in pixels.
	Width() uint32
	Height() uint32

	// Upload interleaved rgba samples. The slice may not hold more than
	// Width()*Height()*4 samples.
	Write(data []float32) error

	// Download interleaved rgba samples into data which must be able to
	// hold Width()*Height()*4 samples.
	Read(data []float32) error

	// Free the device memory. Calling Release more than once is a no-op.
	Release()
}

// A post-processing stage.
type Stage interface {
	// The stage name.
	Name() string

	// Declare a variable and set its value. Buffer values must be created
	// by the same session that created the stage.
	Set(variable string, value interface{}) error

	// Ensure that all required variables are set and consistent.
	Validate() error

	// Run the stage synchronously over a width x height domain.
	Launch(width, height uint32) (time.Duration, error)

	// Release any device resources held by the stage.
	Release()
}

// An active device session.
type Session interface {
	// Session name; typically the backing device name.
	Name() string

	// Allocate a float4 buffer with the given dimensions.
	CreateBuffer(name string, width, height uint32) (Buffer, error)

	// Create one of the built-in post-processing stages.
	CreateStage(name string) (Stage, error)

	// Release the session.
	Close()
}
