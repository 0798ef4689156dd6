package device

import (
	"errors"
	"fmt"
	"reflect"
	"unsafe"

	"github.com/achilleasa/gopencl/v1.2/cl"
)

var errEmptySlice = errors.New("opencl: host slice is empty")

// A named block of device memory.
type Buffer struct {
	bufHandle cl.Mem
	device    *Device
	name      string

	// Allocated size in bytes.
	size int
}

func (b *Buffer) Name() string {
	return b.name
}

// Allocated size in bytes; 0 if the buffer holds no device memory.
func (b *Buffer) Size() int {
	return b.size
}

// Allocate size bytes of device memory, releasing any previous allocation.
func (b *Buffer) Allocate(size int, flags cl.MemFlags) error {
	b.Release()
	if size <= 0 {
		return fmt.Errorf("opencl device (%s): invalid size %d for buffer %s", b.device.Name, size, b.name)
	}

	var errCode cl.ErrorCode
	handle := cl.CreateBuffer(*b.device.ctx, flags, cl.MemFlags(size), nil, (*int32)(&errCode))
	if errCode != cl.SUCCESS {
		return callError(b.device.Name, errCode, "could not allocate buffer %s of size %d", b.name, size)
	}

	b.bufHandle, b.size = handle, size
	return nil
}

// Copy the contents of a host slice into the buffer, skipping the first
// offset bytes of data. The call blocks until the copy completes.
func (b *Buffer) WriteData(data interface{}, offset int) error {
	dataPtr, dataLen, err := getSliceData(data)
	if err != nil {
		return err
	}
	if dataLen > b.size {
		return fmt.Errorf("opencl device (%s): %d bytes do not fit in buffer %s of size %d", b.device.Name, dataLen, b.name, b.size)
	}

	errCode := cl.EnqueueWriteBuffer(b.device.cmdQueue, b.bufHandle, cl.TRUE, uint64(offset), uint64(dataLen-offset), dataPtr, 0, nil, nil)
	if errCode != cl.SUCCESS {
		return callError(b.device.Name, errCode, "error copying host data to device buffer %s", b.name)
	}
	return nil
}

// Copy size bytes starting at srcOffset into hostBuffer at dstOffset. A size
// <= 0 copies the whole buffer. The call blocks until the copy completes.
func (b *Buffer) ReadData(srcOffset, dstOffset, size int, hostBuffer interface{}) error {
	if size <= 0 {
		size = b.size
	}

	dataPtr, dataLen, err := getSliceData(hostBuffer)
	if err != nil {
		return err
	}
	if dstOffset+size > dataLen {
		return fmt.Errorf("opencl device (%s): host slice of %d bytes cannot hold %d bytes from %s", b.device.Name, dataLen, size, b.name)
	}

	dst := unsafe.Pointer(uintptr(dataPtr) + uintptr(dstOffset))
	errCode := cl.EnqueueReadBuffer(b.device.cmdQueue, b.bufHandle, cl.TRUE, uint64(srcOffset), uint64(size), dst, 0, nil, nil)
	if errCode != cl.SUCCESS {
		return callError(b.device.Name, errCode, "error copying device data from %s to host buffer", b.name)
	}
	return nil
}

// Release the device memory. The buffer may be allocated again afterwards.
func (b *Buffer) Release() {
	if b.bufHandle == nil {
		return
	}
	cl.ReleaseMemObject(b.bufHandle)
	b.bufHandle, b.size = nil, 0
}

func (b *Buffer) Allocated() bool {
	return b.bufHandle != nil
}

func (b *Buffer) Handle() cl.Mem {
	return b.bufHandle
}

// Return a pointer to the backing array of a slice and its length in bytes.
func getSliceData(data interface{}) (unsafe.Pointer, int, error) {
	v := reflect.ValueOf(data)
	if v.Kind() != reflect.Slice {
		return nil, 0, fmt.Errorf("opencl: expected a slice; got %T", data)
	}
	if v.Len() == 0 {
		return nil, 0, errEmptySlice
	}

	return unsafe.Pointer(v.Pointer()), v.Len() * int(v.Type().Elem().Size()), nil
}
