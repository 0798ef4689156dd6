// Package host runs the built-in post-processing stages on the CPU. Buffers
// live in host memory so the session needs no device drivers. It is selected
// explicitly with the host backend and serves as the reference the opencl
// kernels are tested against.
package host

import (
	"fmt"
	"time"

	"github.com/DominikPott/nvidiaDenoiser/denoise"
)

// A host-memory session.
type Session struct {
	params denoise.FilterParams

	// Number of buffers that have been allocated but not released.
	live int
}

// Create a host session using the default filter parameters.
func NewSession() *Session {
	return NewSessionWithParams(denoise.DefaultFilterParams)
}

// Create a host session with custom filter parameters.
func NewSessionWithParams(params denoise.FilterParams) *Session {
	return &Session{params: params}
}

func (s *Session) Name() string {
	return "host"
}

// Number of buffers allocated by this session that are still alive.
func (s *Session) LiveBuffers() int {
	return s.live
}

func (s *Session) CreateBuffer(name string, width, height uint32) (denoise.Buffer, error) {
	if width == 0 || height == 0 {
		return nil, fmt.Errorf("host session: could not allocate buffer %s with dimensions %dx%d", name, width, height)
	}

	s.live++
	return &buffer{
		session: s,
		name:    name,
		width:   width,
		height:  height,
		data:    make([]float32, denoise.BufferSamples(width, height)),
	}, nil
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

// Close is a no-op; buffers are released individually.
func (s *Session) Close() {}

type buffer struct {
	session *Session
	name    string
	width   uint32
	height  uint32
	data    []float32
}

func (b *buffer) Name() string   { return b.name }
func (b *buffer) Width() uint32  { return b.width }
func (b *buffer) Height() uint32 { return b.height }

func (b *buffer) Write(data []float32) error {
	if b.data == nil {
		return fmt.Errorf("%w: %s", denoise.ErrBufferReleased, b.name)
	}
	if len(data) > len(b.data) {
		return fmt.Errorf("%w: %d samples into %s with capacity %d", denoise.ErrBufferOverflow, len(data), b.name, len(b.data))
	}
	copy(b.data, data)
	return nil
}

func (b *buffer) Read(data []float32) error {
	if b.data == nil {
		return fmt.Errorf("%w: %s", denoise.ErrBufferReleased, b.name)
	}
	if len(data) < len(b.data) {
		return fmt.Errorf("host session: host slice of %d samples cannot hold buffer %s (%d samples)", len(data), b.name, len(b.data))
	}
	copy(data, b.data)
	return nil
}

func (b *buffer) Release() {
	if b.data != nil {
		b.data = nil
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

// Resolve a bound buffer variable to its host storage.
func (st *stage) hostData(variable string) ([]float32, error) {
	bound := st.Buffer(variable)
	if bound == nil {
		return nil, nil
	}
	buf, ok := bound.(*buffer)
	if !ok || buf.session != st.session {
		return nil, fmt.Errorf("%w: %q (%s)", denoise.ErrForeignBuffer, variable, bound.Name())
	}
	if buf.data == nil {
		return nil, fmt.Errorf("%w: %q (%s)", denoise.ErrBufferReleased, variable, buf.name)
	}
	return buf.data, nil
}

func (st *stage) Launch(width, height uint32) (time.Duration, error) {
	if err := st.Validate(); err != nil {
		return 0, err
	}

	input := st.Buffer(denoise.VarInputBuffer)
	if input.Width() != width || input.Height() != height {
		return 0, fmt.Errorf("%w: launch %dx%d over %s (%dx%d)", denoise.ErrDimensionMismatch, width, height, input.Name(), input.Width(), input.Height())
	}

	var bufs [4][]float32
	for i, variable := range []string{denoise.VarInputBuffer, denoise.VarOutputBuffer, denoise.VarAlbedoBuffer, denoise.VarNormalBuffer} {
		data, err := st.hostData(variable)
		if err != nil {
			return 0, err
		}
		bufs[i] = data
	}

	start := time.Now()
	switch st.name {
	case denoise.Passthrough:
		copy(bufs[1], bufs[0])
	case denoise.DLDenoiser:
		// Filtering in place would read already filtered taps
		if input == st.Buffer(denoise.VarOutputBuffer) {
			dst := make([]float32, len(bufs[1]))
			jointBilateral(dst, bufs[0], bufs[2], bufs[3], int(width), int(height), st.Blend(), st.session.params)
			copy(bufs[1], dst)
			break
		}
		jointBilateral(bufs[1], bufs[0], bufs[2], bufs[3], int(width), int(height), st.Blend(), st.session.params)
	}

	return time.Since(start), nil
}
