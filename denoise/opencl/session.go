// Package opencl runs the built-in post-processing stages on an opencl
// device. Each session wraps a single device with its own context, command
// queue and compiled program.
package opencl

import (
	"fmt"
	"path"
	"runtime"
	"time"

	"github.com/DominikPott/nvidiaDenoiser/denoise"
	"github.com/DominikPott/nvidiaDenoiser/denoise/opencl/device"
	"github.com/achilleasa/gopencl/v1.2/cl"
)

const (
	relativePathToMainKernel = "CL/denoise.cl"
)

// Path to the CL program that ships with this package.
func DefaultProgramPath() string {
	_, thisFile, _, _ := runtime.Caller(0)
	return path.Join(path.Dir(thisFile), relativePathToMainKernel)
}

// Pick the first device whose name contains match and is not blacklisted.
// GPU devices are preferred over CPU devices.
func SelectDevice(match string, blacklist []string) (*device.Device, error) {
	devList, err := device.FilterDevices(device.AllDevices, match, blacklist)
	if err != nil {
		return nil, err
	}
	if len(devList) == 0 {
		if match != "" {
			return nil, fmt.Errorf("%w (name: %q, blacklist: %v)", ErrNoDevice, match, blacklist)
		}
		return nil, ErrNoDevice
	}
	return devList[0], nil
}

// An opencl session.
type Session struct {
	// The associated device.
	device *device.Device

	params denoise.FilterParams

	// The stage kernels.
	kernels []*device.Kernel

	// Number of buffers that have been allocated but not released.
	live int
}

// Initialize dev using the CL program at programFile and load the stage
// kernels. If programFile is empty the bundled program is used.
func NewSession(dev *device.Device, programFile string) (*Session, error) {
	return NewSessionWithParams(dev, programFile, denoise.DefaultFilterParams)
}

// Create a session with custom filter parameters.
func NewSessionWithParams(dev *device.Device, programFile string, params denoise.FilterParams) (*Session, error) {
	var err error

	if dev == nil {
		return nil, ErrInvalidDevice
	}

	if programFile == "" {
		programFile = DefaultProgramPath()
	}

	s := &Session{
		device: dev,
		params: params,
	}

	// Initialize device
	err = dev.Init(programFile)
	if err != nil {
		s.Close()
		return nil, err
	}

	// Load all stage kernels
	s.kernels = make([]*device.Kernel, numKernels)

	var kType kernelType
	for kType = 0; kType < numKernels; kType++ {
		s.kernels[kType], err = dev.Kernel(kType.String())
		if err != nil {
			s.Close()
			return nil, err
		}
	}

	return s, nil
}

// Session name; this is the device name.
func (s *Session) Name() string {
	return s.device.Name
}

// Number of buffers allocated by this session that are still alive.
func (s *Session) LiveBuffers() int {
	return s.live
}

func (s *Session) CreateBuffer(name string, width, height uint32) (denoise.Buffer, error) {
	buf := &buffer{
		Buffer:  s.device.Buffer(name),
		session: s,
		width:   width,
		height:  height,
	}

	err := buf.Allocate(int(width)*int(height)*denoise.SizeofPixel, cl.MEM_READ_WRITE)
	if err != nil {
		return nil, err
	}

	s.live++
	return buf, nil
}

func (s *Session) CreateStage(name string) (denoise.Stage, error) {
	if !denoise.IsBuiltinStage(name) {
		return nil, fmt.Errorf("%w %q", denoise.ErrUnknownStage, name)
	}

	return &stage{
		Bindings: denoise.NewBindings(name),
		session:  s,
		name:     name,
	}, nil
}

// Release the stage kernels and shut down the device.
func (s *Session) Close() {
	if s.kernels != nil {
		for _, kernel := range s.kernels {
			if kernel != nil {
				kernel.Release()
			}
		}
		s.kernels = nil
	}

	// Shutdown device
	if s.device != nil {
		s.device.Close()
	}
}

// A float4 device buffer.
type buffer struct {
	*device.Buffer
	session *Session
	width   uint32
	height  uint32
}

func (b *buffer) Width() uint32  { return b.width }
func (b *buffer) Height() uint32 { return b.height }

func (b *buffer) Write(data []float32) error {
	if !b.Allocated() {
		return fmt.Errorf("%w: %s", denoise.ErrBufferReleased, b.Name())
	}
	if len(data)*4 > b.Size() {
		return fmt.Errorf("%w: %d samples into %s with capacity %d", denoise.ErrBufferOverflow, len(data), b.Name(), b.Size()/4)
	}
	return b.WriteData(data, 0)
}

func (b *buffer) Read(data []float32) error {
	if !b.Allocated() {
		return fmt.Errorf("%w: %s", denoise.ErrBufferReleased, b.Name())
	}
	return b.ReadData(0, 0, 0, data)
}

func (b *buffer) Release() {
	if b.Allocated() {
		b.Buffer.Release()
		b.session.live--
	}
}

type stage struct {
	*denoise.Bindings
	session *Session
	name    string
}

func (st *stage) Name() string {
	return st.name
}

func (st *stage) Release() {}

// Resolve a bound buffer variable to its device buffer.
func (st *stage) deviceBuffer(variable string) (*buffer, error) {
	bound := st.Buffer(variable)
	if bound == nil {
		return nil, nil
	}
	buf, ok := bound.(*buffer)
	if !ok || buf.session != st.session {
		return nil, fmt.Errorf("%w: %q (%s)", denoise.ErrForeignBuffer, variable, bound.Name())
	}
	if !buf.Allocated() {
		return nil, fmt.Errorf("%w: %q (%s)", denoise.ErrBufferReleased, variable, buf.Name())
	}
	return buf, nil
}

func (st *stage) Launch(width, height uint32) (time.Duration, error) {
	if err := st.Validate(); err != nil {
		return 0, err
	}

	input := st.Buffer(denoise.VarInputBuffer)
	if input.Width() != width || input.Height() != height {
		return 0, fmt.Errorf("%w: launch %dx%d over %s (%dx%d)", denoise.ErrDimensionMismatch, width, height, input.Name(), input.Width(), input.Height())
	}

	var bufs [4]*buffer
	for i, variable := range []string{denoise.VarInputBuffer, denoise.VarOutputBuffer, denoise.VarAlbedoBuffer, denoise.VarNormalBuffer} {
		buf, err := st.deviceBuffer(variable)
		if err != nil {
			return 0, err
		}
		bufs[i] = buf
	}
	in, out, albedo, normal := bufs[0], bufs[1], bufs[2], bufs[3]

	if st.name == denoise.Passthrough {
		return st.session.runCopy(in, out, width, height)
	}

	// Filtering in place would read already filtered taps
	dst := out
	if in == out {
		scratch, err := st.session.CreateBuffer("scratch", width, height)
		if err != nil {
			return 0, err
		}
		defer scratch.Release()
		dst = scratch.(*buffer)
	}

	elapsed, err := st.session.runFilter(in, albedo, normal, dst, width, height, st.Blend())
	if err != nil || dst == out {
		return elapsed, err
	}

	copyTime, err := st.session.runCopy(dst, out, width, height)
	return elapsed + copyTime, err
}

func (s *Session) runCopy(in, out *buffer, width, height uint32) (time.Duration, error) {
	kernel := s.kernels[copyBuffer]

	err := kernel.SetArgs(
		in.Buffer,
		out.Buffer,
		width,
		height,
	)
	if err != nil {
		return 0, err
	}

	return kernel.Exec2D(0, 0, int(width), int(height), 0, 0)
}

func (s *Session) runFilter(in, albedo, normal, out *buffer, width, height uint32, blend float32) (time.Duration, error) {
	kernel := s.kernels[jointBilateral]

	// Unbound guides are replaced by the input buffer and disabled via their flag
	var hasAlbedo, hasNormal int32
	albedoBuf, normalBuf := in.Buffer, in.Buffer
	if albedo != nil {
		albedoBuf, hasAlbedo = albedo.Buffer, 1
	}
	if normal != nil {
		normalBuf, hasNormal = normal.Buffer, 1
	}

	invSpatial, invColor, invAlbedo, invNormal := s.params.Falloffs()
	err := kernel.SetArgs(
		in.Buffer,
		albedoBuf,
		normalBuf,
		out.Buffer,
		width,
		height,
		hasAlbedo,
		hasNormal,
		blend,
		int32(s.params.Radius),
		invSpatial,
		invColor,
		invAlbedo,
		invNormal,
	)
	if err != nil {
		return 0, err
	}

	return kernel.Exec2D(0, 0, int(width), int(height), 0, 0)
}
