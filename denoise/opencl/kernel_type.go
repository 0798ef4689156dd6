package opencl

type kernelType uint8

// The list of kernels that implement the built-in stages.
const (
	jointBilateral kernelType = iota
	copyBuffer
	//
	numKernels
)

// Implements Stringer; map kernel type to the kernel name as defined in the CL source files.
func (kt kernelType) String() string {
	switch kt {
	case jointBilateral:
		return "jointBilateral"
	case copyBuffer:
		return "copyBuffer"
	}

	panic("unsupported kernel type")
}
