package device

import (
	"fmt"
	"time"
	"unsafe"

	"github.com/achilleasa/gopencl/v1.2/cl"
)

// A kernel of a device program.
type Kernel struct {
	device       *Device
	kernelHandle cl.Kernel
	name         string

	// Launch geometry handed to the runtime by pointer.
	offsets         [2]uint64
	globalWorkSizes [2]uint64
	localWorkSizes  [2]uint64
}

func (k *Kernel) Name() string {
	return k.name
}

// Release the kernel handle.
func (k *Kernel) Release() {
	if k.kernelHandle != nil {
		cl.ReleaseKernel(k.kernelHandle)
		k.kernelHandle = nil
	}
}

// Bind args to the kernel parameters in order. Supported arg types are
// *Buffer, int32, uint32 and float32.
func (k *Kernel) SetArgs(args ...interface{}) error {
	for argIndex, arg := range args {
		var errCode cl.ErrorCode
		index := uint32(argIndex)

		switch v := arg.(type) {
		case *Buffer:
			handle := v.Handle()
			errCode = cl.SetKernelArg(k.kernelHandle, index, 8, unsafe.Pointer(&handle))
		case int32:
			errCode = cl.SetKernelArg(k.kernelHandle, index, 4, unsafe.Pointer(&v))
		case uint32:
			errCode = cl.SetKernelArg(k.kernelHandle, index, 4, unsafe.Pointer(&v))
		case float32:
			errCode = cl.SetKernelArg(k.kernelHandle, index, 4, unsafe.Pointer(&v))
		default:
			return fmt.Errorf("opencl device (%s): unsupported type %T for arg %d of kernel %s", k.device.Name, arg, argIndex, k.name)
		}

		if errCode != cl.SUCCESS {
			return callError(k.device.Name, errCode, "could not set arg %d for kernel %s", argIndex, k.name)
		}
	}

	return nil
}

// Run the kernel over a 2D range and block until it completes. A zero local
// work size lets the runtime pick the work group split.
func (k *Kernel) Exec2D(offsetX, offsetY, globalWorkSizeX, globalWorkSizeY, localWorkSizeX, localWorkSizeY int) (time.Duration, error) {
	var offsetPtr, localSizePtr *uint64

	if offsetX > 0 || offsetY > 0 {
		k.offsets = [2]uint64{uint64(offsetX), uint64(offsetY)}
		offsetPtr = &k.offsets[0]
	}
	k.globalWorkSizes = [2]uint64{uint64(globalWorkSizeX), uint64(globalWorkSizeY)}
	if localWorkSizeX != 0 && localWorkSizeY != 0 {
		k.localWorkSizes = [2]uint64{uint64(localWorkSizeX), uint64(localWorkSizeY)}
		localSizePtr = &k.localWorkSizes[0]
	}

	start := time.Now()
	errCode := cl.EnqueueNDRangeKernel(k.device.cmdQueue, k.kernelHandle, 2, offsetPtr, &k.globalWorkSizes[0], localSizePtr, 0, nil, nil)
	if errCode != cl.SUCCESS {
		return 0, callError(k.device.Name, errCode, "unable to execute kernel %s", k.name)
	}

	if errCode = cl.Finish(k.device.cmdQueue); errCode != cl.SUCCESS {
		return 0, callError(k.device.Name, errCode, "kernel %s did not complete successfully", k.name)
	}

	return time.Since(start), nil
}
