package denoise

// Parameters for the edge-aware filter behind the DLDenoiser stage. Every
// backend implements the same filter so results only differ by floating
// point rounding.
type FilterParams struct {
	// Filter footprint is (2*Radius+1)^2 pixels.
	Radius int

	// Gaussian falloff for pixel distance.
	SigmaSpatial float32

	// Gaussian falloff for color, albedo and normal differences.
	SigmaColor  float32
	SigmaAlbedo float32
	SigmaNormal float32
}

var DefaultFilterParams = FilterParams{
	Radius:       3,
	SigmaSpatial: 2.0,
	SigmaColor:   0.3,
	SigmaAlbedo:  0.1,
	SigmaNormal:  0.25,
}

// Return the 1/(2*sigma^2) gaussian exponent scales for the spatial, color,
// albedo and normal terms.
func (p FilterParams) Falloffs() (spatial, color, albedo, normal float32) {
	return invTwoSigmaSq(p.SigmaSpatial),
		invTwoSigmaSq(p.SigmaColor),
		invTwoSigmaSq(p.SigmaAlbedo),
		invTwoSigmaSq(p.SigmaNormal)
}

func invTwoSigmaSq(sigma float32) float32 {
	return 1.0 / (2.0 * sigma * sigma)
}
