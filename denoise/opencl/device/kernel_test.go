package device

import (
	"testing"
	"unsafe"

	"github.com/achilleasa/gopencl/v1.2/cl"
)

func TestKernelExec2D(t *testing.T) {
	specs := []struct {
		localX, localY int
	}{
		{0, 0},
		{1, 1},
	}

	dev := createCpuTestDevice(t)
	defer dev.Close()

	for specIndex, spec := range specs {
		kernel, err := dev.Kernel("mapBlock")
		if err != nil {
			t.Fatal(err)
		}

		dataWidth := 8
		dataHeight := 8

		dataIn := make([]int32, dataWidth*dataHeight)
		dataOut := make([]int32, dataWidth*dataHeight)
		for i := 0; i < dataWidth*dataHeight; i++ {
			dataIn[i] = int32(i)
		}

		bufIn := dev.Buffer("in")
		bufOut := dev.Buffer("out")
		if err = bufIn.Allocate(len(dataIn)*4, cl.MEM_READ_WRITE); err != nil {
			t.Fatal(err)
		}
		if err = bufIn.WriteData(dataIn, 0); err != nil {
			t.Fatal(err)
		}
		if err = bufOut.Allocate(len(dataOut)*4, cl.MEM_READ_WRITE); err != nil {
			t.Fatal(err)
		}

		err = kernel.SetArgs(
			bufIn,
			bufOut,
			uint32(dataWidth*dataHeight),
		)
		if err != nil {
			t.Fatal(err)
		}

		_, err = kernel.Exec2D(0, 0, dataWidth, dataHeight, spec.localX, spec.localY)
		if err != nil {
			t.Fatal(err)
		}

		// Fetch and validate output
		if err = bufOut.ReadData(0, 0, 0, dataOut); err != nil {
			t.Fatal(err)
		}
		for i := 0; i < dataWidth*dataHeight; i++ {
			if dataOut[i] != dataIn[i] {
				t.Fatalf("[spec %d] [item %d] expected mapped value to be %d; got %d", specIndex, i, dataIn[i], dataOut[i])
			}
		}

		bufIn.Release()
		bufOut.Release()
		kernel.Release()
	}
}

func TestKernelScalarArgs(t *testing.T) {
	dev := createCpuTestDevice(t)
	defer dev.Close()

	kernel, err := dev.Kernel("scale")
	if err != nil {
		t.Fatal(err)
	}
	defer kernel.Release()

	data := []float32{1, 2, 3, 4}
	buf := dev.Buffer("data")
	defer buf.Release()
	if err = buf.Allocate(len(data)*int(unsafe.Sizeof(data[0])), cl.MEM_READ_WRITE); err != nil {
		t.Fatal(err)
	}
	if err = buf.WriteData(data, 0); err != nil {
		t.Fatal(err)
	}

	if err = kernel.SetArgs(buf, float32(0.5), int32(len(data))); err != nil {
		t.Fatal(err)
	}
	if _, err = kernel.Exec2D(0, 0, 2, 2, 0, 0); err != nil {
		t.Fatal(err)
	}

	dataOut := make([]float32, len(data))
	if err = buf.ReadData(0, 0, 0, dataOut); err != nil {
		t.Fatal(err)
	}
	for i := range data {
		if exp := data[i] * 0.5; dataOut[i] != exp {
			t.Fatalf("[item %d] expected scaled value %f; got %f", i, exp, dataOut[i])
		}
	}
}

func TestKernelUnsupportedArg(t *testing.T) {
	dev := createCpuTestDevice(t)
	defer dev.Close()

	kernel, err := dev.Kernel("scale")
	if err != nil {
		t.Fatal(err)
	}
	defer kernel.Release()

	if err = kernel.SetArgs("foo"); err == nil {
		t.Fatal("expected an error binding an unsupported argument type")
	}
}
