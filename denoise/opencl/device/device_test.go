package device

import (
	"strings"
	"testing"

	"github.com/achilleasa/gopencl/v1.2/cl"
)

func TestDeviceInit(t *testing.T) {
	dev := createCpuTestDevice(t)
	defer dev.Close()

	if !dev.Initialized() {
		t.Fatal("expected device to be initialized")
	}

	if dev.Type.String() != "CPU" {
		t.Fatalf("expected device type to be CpuDevice; got %s", dev.Type.String())
	}

	dev.Close()
	if dev.Initialized() {
		t.Fatal("expected device to be closed")
	}
}

func TestDeviceInitWithMissingProgram(t *testing.T) {
	devList, err := SelectDevices(CpuDevice, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(devList) == 0 {
		t.Skip("no CPU opencl device available; check that openCL drivers are installed")
	}

	dev := devList[0]
	err = dev.Init("missing.cl")
	if err == nil {
		dev.Close()
		t.Fatal("expected an error while loading a missing program")
	}
	if dev.Initialized() {
		t.Fatal("expected a failed Init to release the device handles")
	}
}

func TestKernelErrors(t *testing.T) {
	dev := createCpuTestDevice(t)
	defer dev.Close()

	_, err := dev.Kernel("foo")
	if err == nil {
		t.Fatal("expected to get an error while trying to load an unknown kernel")
	}
}

func TestBlacklist(t *testing.T) {
	specs := []struct {
		name      string
		blacklist []string
		exp       bool
	}{
		{"Intel(R) Core(TM) i7 CPU", nil, false},
		{"Intel(R) Core(TM) i7 CPU", []string{"CPU"}, true},
		{"GeForce GTX 1080", []string{"Intel", "Iris"}, false},
		{"Intel(R) Iris Pro", []string{"Intel", "Iris"}, true},
		{"GeForce GTX 1080", []string{""}, false},
	}

	for specIndex, spec := range specs {
		if got := blacklisted(spec.name, spec.blacklist); got != spec.exp {
			t.Errorf("[spec %d] expected blacklisted(%q, %v) to be %t; got %t", specIndex, spec.name, spec.blacklist, spec.exp, got)
		}
	}
}

func TestErrorName(t *testing.T) {
	if name := ErrorName(cl.ErrorCode(-4)); name != "MEM_OBJECT_ALLOCATION_FAILURE" {
		t.Fatalf("expected MEM_OBJECT_ALLOCATION_FAILURE; got %s", name)
	}
	if name := ErrorName(cl.ErrorCode(-9999)); !strings.Contains(name, "-9999") {
		t.Fatalf("expected unknown error name to include the code; got %s", name)
	}
}

func TestCallError(t *testing.T) {
	err := callError("Iris Pro", cl.ErrorCode(-4), "could not allocate buffer %s of size %d", "pixels", 64)
	exp := "opencl device (Iris Pro): could not allocate buffer pixels of size 64 (error: MEM_OBJECT_ALLOCATION_FAILURE; code -4)"
	if err.Error() != exp {
		t.Fatalf("expected error %q; got %q", exp, err.Error())
	}
}

func TestDeviceTypeNames(t *testing.T) {
	specs := []struct {
		dt  DeviceType
		exp string
	}{
		{CpuDevice, "CPU"},
		{GpuDevice, "GPU"},
		{OtherDevice, "Other"},
		{DeviceType(0), "DeviceType(0)"},
	}

	for specIndex, spec := range specs {
		if got := spec.dt.String(); got != spec.exp {
			t.Errorf("[spec %d] expected %q; got %q", specIndex, spec.exp, got)
		}
	}
}

func TestTrimInfo(t *testing.T) {
	data := []byte(" Intel(R) OpenCL \x00garbage")

	specs := []struct {
		dataLen uint64
		exp     string
	}{
		{0, ""},
		{18, "Intel(R) OpenCL"},
		{1 << 20, "Intel(R) OpenCL \x00garbag"},
	}

	for specIndex, spec := range specs {
		if got := trimInfo(data, spec.dataLen); got != spec.exp {
			t.Errorf("[spec %d] expected %q; got %q", specIndex, spec.exp, got)
		}
	}
}

func createCpuTestDevice(t *testing.T) *Device {
	t.Helper()

	devList, err := SelectDevices(CpuDevice, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(devList) == 0 {
		t.Skip("no CPU opencl device available; check that openCL drivers are installed")
	}

	dev := devList[0]
	err = dev.Init("test.cl")
	if err != nil {
		t.Fatalf("error initializing device '%s': %v", dev.Name, err)
	}
	return dev
}
