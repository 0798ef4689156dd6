package device

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"unsafe"

	"github.com/achilleasa/gopencl/v1.2/cl"
)

// Upper bound for the program build log.
const buildLogSize = 120000

type DeviceType uint8

// Supported device types.
const (
	CpuDevice   DeviceType = 1 << iota
	GpuDevice              = 1 << iota
	OtherDevice            = 1 << iota
	AllDevices             = 0xFF
)

var (
	indentRegex = regexp.MustCompile("(?m)^")

	deviceTypeNames = map[DeviceType]string{
		CpuDevice:   "CPU",
		GpuDevice:   "GPU",
		OtherDevice: "Other",
	}
)

func (dt DeviceType) String() string {
	if name, ok := deviceTypeNames[dt]; ok {
		return name
	}
	return fmt.Sprintf("DeviceType(%d)", uint8(dt))
}

// An opencl device. Once initialized it owns the context, command queue and
// program that every buffer and kernel of a denoise session is created from.
type Device struct {
	Name string
	Id   cl.DeviceId
	Type DeviceType

	compUnits  uint32
	clockSpeed uint32

	// Speed estimate in GFlops.
	Speed uint32

	ctx      *cl.Context
	cmdQueue cl.CommandQueue
	program  cl.Program
}

func (d Device) String() string {
	return fmt.Sprintf(
		"Name: %s\nType: %s\nSpecs: %d compute units @ %d Mhz, ~%d GFlops",
		d.Name,
		d.Type,
		d.compUnits,
		d.clockSpeed,
		d.Speed,
	)
}

// Returns true if Init has completed successfully and Close has not been called.
func (d *Device) Initialized() bool {
	return d.program != nil
}

// Create a context and command queue for the device and build the CL program
// stored in programFile. The program's folder is added to the include path.
// On failure every handle created so far is released.
func (d *Device) Init(programFile string) (err error) {
	if d.ctx != nil {
		return nil
	}

	defer func() {
		if err != nil {
			d.Close()
		}
	}()

	progPath, err := filepath.Abs(programFile)
	if err != nil {
		return err
	}
	source, err := os.ReadFile(progPath)
	if err != nil {
		return fmt.Errorf("opencl device (%s): could not load program: %w", d.Name, err)
	}

	var errCode cl.ErrorCode
	d.ctx = cl.CreateContext(nil, 1, &d.Id, nil, nil, (*int32)(&errCode))
	if errCode != cl.SUCCESS {
		return callError(d.Name, errCode, "could not create context")
	}

	d.cmdQueue = cl.CreateCommandQueue(*d.ctx, d.Id, 0, (*int32)(&errCode))
	if errCode != cl.SUCCESS {
		return callError(d.Name, errCode, "could not create command queue")
	}

	return d.buildProgram(string(source), filepath.Dir(progPath))
}

func (d *Device) buildProgram(source, includeDir string) error {
	var errCode cl.ErrorCode

	src := cl.Str(source + "\x00")
	d.program = cl.CreateProgramWithSource(*d.ctx, 1, &src, nil, (*int32)(&errCode))
	if errCode != cl.SUCCESS {
		return callError(d.Name, errCode, "could not create program")
	}

	opts := cl.Str(fmt.Sprintf("-I %s\x00", includeDir))
	errCode = cl.BuildProgram(d.program, 1, &d.Id, opts, nil, nil)
	if errCode == cl.SUCCESS {
		return nil
	}

	var logLen uint64
	buildLog := make([]byte, buildLogSize)
	cl.GetProgramBuildInfo(d.program, d.Id, cl.PROGRAM_BUILD_LOG, uint64(len(buildLog)), unsafe.Pointer(&buildLog[0]), &logLen)
	return fmt.Errorf("%w:\n%s", callError(d.Name, errCode, "could not build program"), trimInfo(buildLog, logLen))
}

// Release the program, command queue and context.
func (d *Device) Close() {
	if d.program != nil {
		cl.ReleaseProgram(d.program)
		d.program = nil
	}
	if d.cmdQueue != nil {
		cl.ReleaseCommandQueue(d.cmdQueue)
		d.cmdQueue = nil
	}
	if d.ctx != nil {
		cl.ReleaseContext(d.ctx)
		d.ctx = nil
	}
}

// Look up a kernel of the built program.
func (d *Device) Kernel(name string) (*Kernel, error) {
	var errCode cl.ErrorCode
	handle := cl.CreateKernel(d.program, cl.Str(name+"\x00"), (*int32)(&errCode))
	if errCode != cl.SUCCESS {
		return nil, callError(d.Name, errCode, "could not load kernel %s", name)
	}

	return &Kernel{device: d, kernelHandle: handle, name: name}, nil
}

// Create an unallocated buffer.
func (d *Device) Buffer(name string) *Buffer {
	return &Buffer{device: d, name: name}
}

// Estimate device speed as compute units * clock speed, assuming 2 ops/cycle.
func (d *Device) detectSpeed() error {
	errCode := cl.GetDeviceInfo(d.Id, cl.DEVICE_MAX_COMPUTE_UNITS, 4, unsafe.Pointer(&d.compUnits), nil)
	if errCode != cl.SUCCESS {
		return callError(d.Name, errCode, "could not query MAX_COMPUTE_UNITS")
	}
	errCode = cl.GetDeviceInfo(d.Id, cl.DEVICE_MAX_CLOCK_FREQUENCY, 4, unsafe.Pointer(&d.clockSpeed), nil)
	if errCode != cl.SUCCESS {
		return callError(d.Name, errCode, "could not query MAX_CLOCK_FREQUENCY")
	}

	d.Speed = d.compUnits * d.clockSpeed / 1000
	return nil
}
