package device

import (
	"bytes"
	"fmt"
	"strings"
	"unsafe"

	"github.com/achilleasa/gopencl/v1.2/cl"
)

const (
	platformBufferSize = 100
	deviceBufferSize   = 100
	dataBufferSize     = 1024
)

// Information about a system's opencl platform and supported devices.
type PlatformInfo struct {
	Profile    string
	Version    string
	Name       string
	Vendor     string
	Extensions string
	Devices    []*Device
}

func (pl PlatformInfo) String() string {
	var buf bytes.Buffer

	buf.WriteString(
		fmt.Sprintf(
			"Version:    %s\nName:       %s\nVendor:     %s\nDevices:\n",
			pl.Version,
			pl.Name,
			pl.Vendor,
		),
	)

	for dIdx, d := range pl.Devices {
		buf.WriteString(fmt.Sprintf("  Device %02d:\n", dIdx))
		buf.WriteString(indentRegex.ReplaceAllString(d.String(), "    "))
		buf.WriteString("\n\n")
	}

	return buf.String()
}

// Enumerate the opencl platforms of the system and their GPU and CPU devices.
// GPU devices are listed before CPU devices within each platform.
func GetPlatformInfo() ([]PlatformInfo, error) {
	pids := make([]cl.PlatformID, platformBufferSize)
	deviceIds := make([]cl.DeviceId, deviceBufferSize)
	data := make([]byte, dataBufferSize)
	var dataLen uint64

	// A loader without installed platforms reports an error; treat it as none.
	var pidCount uint32
	cl.GetPlatformIDs(uint32(len(pids)), &pids[0], &pidCount)
	if pidCount > platformBufferSize {
		pidCount = platformBufferSize
	}

	infoList := make([]PlatformInfo, pidCount)
	for pIdx := range infoList {
		pid := pids[pIdx]
		info := &infoList[pIdx]

		cl.GetPlatformInfo(pid, cl.PLATFORM_PROFILE, dataBufferSize, unsafe.Pointer(&data[0]), &dataLen)
		info.Profile = trimInfo(data, dataLen)
		cl.GetPlatformInfo(pid, cl.PLATFORM_VERSION, dataBufferSize, unsafe.Pointer(&data[0]), &dataLen)
		info.Version = trimInfo(data, dataLen)
		cl.GetPlatformInfo(pid, cl.PLATFORM_NAME, dataBufferSize, unsafe.Pointer(&data[0]), &dataLen)
		info.Name = trimInfo(data, dataLen)
		cl.GetPlatformInfo(pid, cl.PLATFORM_VENDOR, dataBufferSize, unsafe.Pointer(&data[0]), &dataLen)
		info.Vendor = trimInfo(data, dataLen)
		cl.GetPlatformInfo(pid, cl.PLATFORM_EXTENSIONS, dataBufferSize, unsafe.Pointer(&data[0]), &dataLen)
		info.Extensions = trimInfo(data, dataLen)

		for _, devType := range []DeviceType{GpuDevice, CpuDevice} {
			var count uint32
			if devType == GpuDevice {
				cl.GetDeviceIDs(pid, cl.DEVICE_TYPE_GPU, deviceBufferSize, &deviceIds[0], &count)
			} else {
				cl.GetDeviceIDs(pid, cl.DEVICE_TYPE_CPU, deviceBufferSize, &deviceIds[0], &count)
			}
			if count > deviceBufferSize {
				count = deviceBufferSize
			}

			for _, id := range deviceIds[:count] {
				dataLen = 0
				cl.GetDeviceInfo(id, cl.DEVICE_NAME, dataBufferSize, unsafe.Pointer(&data[0]), &dataLen)
				dev := &Device{Name: trimInfo(data, dataLen), Id: id, Type: devType}
				if err := dev.detectSpeed(); err != nil {
					return nil, err
				}
				info.Devices = append(info.Devices, dev)
			}
		}
	}

	return infoList, nil
}

// Convert a NUL-terminated info string returned by the opencl runtime.
// Lengths beyond the size of data are truncated.
func trimInfo(data []byte, dataLen uint64) string {
	if dataLen == 0 {
		return ""
	}
	if dataLen > uint64(len(data)) {
		dataLen = uint64(len(data))
	}
	return strings.TrimSpace(string(data[0 : dataLen-1]))
}

// Scan all available opencl platforms and select devices that match the given query.
func SelectDevices(typeMask DeviceType, matchName string) ([]*Device, error) {
	return FilterDevices(typeMask, matchName, nil)
}

// Scan all available opencl platforms and select devices that match the
// given type mask and name, skipping any device whose name contains one
// of the blacklisted strings. GPU devices are listed before anything else.
func FilterDevices(typeMask DeviceType, matchName string, blacklist []string) ([]*Device, error) {
	platforms, err := GetPlatformInfo()
	if err != nil {
		return nil, err
	}

	gpus := make([]*Device, 0)
	others := make([]*Device, 0)
	for _, p := range platforms {
		for _, d := range p.Devices {
			// Match type
			if d.Type&typeMask != d.Type {
				continue
			}

			// Match name
			if matchName != "" && !strings.Contains(d.Name, matchName) {
				continue
			}

			if blacklisted(d.Name, blacklist) {
				continue
			}

			if d.Type == GpuDevice {
				gpus = append(gpus, d)
			} else {
				others = append(others, d)
			}
		}
	}
	return append(gpus, others...), nil
}

func blacklisted(name string, blacklist []string) bool {
	for _, text := range blacklist {
		if text != "" && strings.Contains(name, text) {
			return true
		}
	}
	return false
}
