// Package imagebuf loads and stores images as flat float32 sample buffers.
//
// Decoding and encoding are delegated to OpenImageIO so any format it supports
// (exr, hdr, tiff, png, jpeg, ...) can be used; the output format is inferred
// from the file extension.
package imagebuf

import (
	"errors"
	"fmt"

	"github.com/DominikPott/nvidiaDenoiser/asset"
	"github.com/achilleasa/openimageigo"
)

var (
	ErrUnsupportedChannels = errors.New("imagebuf: unsupported channel count")
	ErrUnsupportedDepth    = errors.New("imagebuf: unsupported image depth")
	ErrSizeMismatch        = errors.New("imagebuf: pixel data does not match image dimensions")
)

// An image held in host memory. Pixels stores Width*Height*Channels samples in
// row-major, channel-interleaved order.
type Image struct {
	Width    uint32
	Height   uint32
	Channels uint32

	Pixels []float32
}

// Allocate a zero-filled image.
func New(width, height, channels uint32) *Image {
	img := &Image{
		Width:    width,
		Height:   height,
		Channels: channels,
	}
	img.Pixels = make([]float32, img.NumSamples())
	return img
}

// Load an image from a local path or an http/https URL.
func Load(path string) (*Image, error) {
	res, err := asset.NewResource(path)
	if err != nil {
		return nil, err
	}
	defer res.Close()

	return Decode(res)
}

// Decode the image data behind a Resource.
func Decode(res *asset.Resource) (*Image, error) {
	pathToFile, cleanup, err := res.LocalFile()
	if err != nil {
		return nil, err
	}
	defer cleanup()

	input, err := oiio.OpenImageInput(pathToFile)
	if err != nil {
		return nil, err
	}
	defer input.Close()

	spec := input.Spec()
	if !supportedChannels(uint32(spec.NumChannels())) {
		return nil, fmt.Errorf("%w %d while loading %s", ErrUnsupportedChannels, spec.NumChannels(), res.Path())
	}
	if spec.Depth() != 1 {
		return nil, fmt.Errorf("%w %d while loading %s", ErrUnsupportedDepth, spec.Depth(), res.Path())
	}

	imgData, err := input.ReadImageFormat(oiio.TypeFloat, nil)
	if err != nil {
		return nil, fmt.Errorf("imagebuf: could not read data from %s: %s", res.Path(), err.Error())
	}

	pixels, ok := imgData.([]float32)
	if !ok {
		return nil, fmt.Errorf("imagebuf: unexpected sample type %T while loading %s", imgData, res.Path())
	}

	img := &Image{
		Width:    uint32(spec.Width()),
		Height:   uint32(spec.Height()),
		Channels: uint32(spec.NumChannels()),
		Pixels:   pixels,
	}
	if len(img.Pixels) != img.NumSamples() {
		return nil, fmt.Errorf("%w: %s reports %s but holds %d samples", ErrSizeMismatch, res.Path(), img, len(img.Pixels))
	}

	return img, nil
}

// Write the image to path.
func (img *Image) Write(path string) error {
	if len(img.Pixels) != img.NumSamples() {
		return fmt.Errorf("%w: %s with %d samples", ErrSizeMismatch, img, len(img.Pixels))
	}

	output, err := oiio.CreateImageOutput(path, "")
	if err != nil {
		return err
	}

	spec := oiio.NewImageSpecSize(int(img.Width), int(img.Height), int(img.Channels), oiio.TypeFloat)
	err = output.Open(path, spec, oiio.OpenModeCreate)
	if err != nil {
		return fmt.Errorf("imagebuf: could not open %s for writing: %s", path, err.Error())
	}

	err = output.WriteImage(img.Pixels)
	if err != nil {
		output.Close()
		return fmt.Errorf("imagebuf: could not write %s: %s", path, err.Error())
	}

	return output.Close()
}

// Number of pixels.
func (img *Image) NumPixels() int {
	return int(img.Width) * int(img.Height)
}

// Number of float samples (pixels * channels).
func (img *Image) NumSamples() int {
	return img.NumPixels() * int(img.Channels)
}

// Returns true if both images share the same width and height.
func (img *Image) SameResolution(other *Image) bool {
	return img.Width == other.Width && img.Height == other.Height
}

// Implements Stringer.
func (img *Image) String() string {
	return fmt.Sprintf("%dx%d (%d channels)", img.Width, img.Height, img.Channels)
}

// Return a copy of the pixel data expanded to 4 interleaved channels. Gray
// samples are replicated into RGB and a missing alpha channel is set to 1.
func (img *Image) RGBA() []float32 {
	numPixels := img.NumPixels()
	if img.Channels == 4 {
		out := make([]float32, len(img.Pixels))
		copy(out, img.Pixels)
		return out
	}

	out := make([]float32, numPixels*4)
	wOffset := 0
	for rOffset := 0; rOffset < len(img.Pixels); {
		switch img.Channels {
		case 1:
			out[wOffset] = img.Pixels[rOffset]
			out[wOffset+1] = img.Pixels[rOffset]
			out[wOffset+2] = img.Pixels[rOffset]
		case 3:
			out[wOffset] = img.Pixels[rOffset]
			out[wOffset+1] = img.Pixels[rOffset+1]
			out[wOffset+2] = img.Pixels[rOffset+2]
		}
		out[wOffset+3] = 1.0

		rOffset += int(img.Channels)
		wOffset += 4
	}

	return out
}

// Replace the pixel data with 4 channel interleaved samples, collapsing them
// to the image's own channel count.
func (img *Image) SetRGBA(data []float32) error {
	if len(data) != img.NumPixels()*4 {
		return fmt.Errorf("%w: expected %d rgba samples for %s; got %d", ErrSizeMismatch, img.NumPixels()*4, img, len(data))
	}

	if img.Channels == 4 {
		copy(img.Pixels, data)
		return nil
	}

	wOffset := 0
	for rOffset := 0; rOffset < len(data); rOffset += 4 {
		switch img.Channels {
		case 1:
			img.Pixels[wOffset] = data[rOffset]
		case 3:
			img.Pixels[wOffset] = data[rOffset]
			img.Pixels[wOffset+1] = data[rOffset+1]
			img.Pixels[wOffset+2] = data[rOffset+2]
		}
		wOffset += int(img.Channels)
	}

	return nil
}

func supportedChannels(n uint32) bool {
	return n == 1 || n == 3 || n == 4
}
