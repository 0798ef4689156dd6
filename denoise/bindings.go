package denoise

import "fmt"

// The variables that the built-in stages understand and whether they hold a buffer.
var knownVariables = map[string]bool{
	VarInputBuffer:  true,
	VarOutputBuffer: true,
	VarBlend:        false,
	VarAlbedoBuffer: true,
	VarNormalBuffer: true,
}

// Bindings tracks the variables declared on a stage. Backends embed it in
// their stage implementations so that variable checking behaves the same
// regardless of the device that runs the stage.
type Bindings struct {
	stage  string
	values map[string]interface{}
}

// Create an empty binding set for the named stage.
func NewBindings(stage string) *Bindings {
	return &Bindings{
		stage:  stage,
		values: make(map[string]interface{}),
	}
}

// Returns true if name refers to a built-in stage.
func IsBuiltinStage(name string) bool {
	return name == DLDenoiser || name == Passthrough
}

// Set a variable. Buffer variables accept a Buffer; the blend factor
// accepts a float32 or float64 in the [0, 1] range.
func (b *Bindings) Set(variable string, value interface{}) error {
	isBuffer, known := knownVariables[variable]
	if !known {
		return fmt.Errorf("%w %q for stage %s", ErrUnknownVariable, variable, b.stage)
	}

	if isBuffer {
		buf, ok := value.(Buffer)
		if !ok || buf == nil {
			return fmt.Errorf("%w: stage %s expects a buffer for %q; got %T", ErrInvalidValue, b.stage, variable, value)
		}
		b.values[variable] = buf
		return nil
	}

	var f float32
	switch v := value.(type) {
	case float32:
		f = v
	case float64:
		f = float32(v)
	default:
		return fmt.Errorf("%w: stage %s expects a float for %q; got %T", ErrInvalidValue, b.stage, variable, value)
	}
	if f < 0 || f > 1 {
		return fmt.Errorf("%w: %q must be in the [0, 1] range; got %f", ErrInvalidValue, variable, f)
	}
	b.values[variable] = f
	return nil
}

// Get a bound buffer or nil if the variable has not been set.
func (b *Bindings) Buffer(variable string) Buffer {
	if buf, ok := b.values[variable].(Buffer); ok {
		return buf
	}
	return nil
}

// Get the blend factor; an unset blend factor means fully denoised output.
func (b *Bindings) Blend() float32 {
	if f, ok := b.values[VarBlend].(float32); ok {
		return f
	}
	return 0
}

// Returns true if the variable has been set.
func (b *Bindings) IsSet(variable string) bool {
	_, ok := b.values[variable]
	return ok
}

// Check that the input and output buffers are bound and that every bound
// buffer matches the input resolution.
func (b *Bindings) Validate() error {
	input := b.Buffer(VarInputBuffer)
	if input == nil {
		return fmt.Errorf("%w: stage %s has no %q", ErrMissingVariable, b.stage, VarInputBuffer)
	}
	if b.Buffer(VarOutputBuffer) == nil {
		return fmt.Errorf("%w: stage %s has no %q", ErrMissingVariable, b.stage, VarOutputBuffer)
	}

	for _, variable := range []string{VarOutputBuffer, VarAlbedoBuffer, VarNormalBuffer} {
		buf := b.Buffer(variable)
		if buf == nil {
			continue
		}
		if buf.Width() != input.Width() || buf.Height() != input.Height() {
			return fmt.Errorf(
				"%w: stage %s %q is %dx%d but %q is %dx%d",
				ErrDimensionMismatch, b.stage,
				variable, buf.Width(), buf.Height(),
				VarInputBuffer, input.Width(), input.Height(),
			)
		}
	}

	if b.stage == DLDenoiser && b.IsSet(VarNormalBuffer) && !b.IsSet(VarAlbedoBuffer) {
		return fmt.Errorf("%w: stage %s requires %q when %q is set", ErrMissingVariable, b.stage, VarAlbedoBuffer, VarNormalBuffer)
	}

	return nil
}
