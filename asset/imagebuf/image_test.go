package imagebuf

import (
	"errors"
	"image"
	"image/color"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"testing"
)

func TestLoadRgba8(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	src.SetNRGBA(0, 0, color.NRGBA{R: 255, G: 0, B: 51, A: 255})
	// Black keeps the sample stable whether or not the reader associates alpha
	src.SetNRGBA(1, 0, color.NRGBA{R: 0, G: 0, B: 0, A: 128})
	imgFile := mockImage(t, "rgba.png", src)

	img, err := Load(imgFile)
	if err != nil {
		t.Fatal(err)
	}

	if img.Width != 2 || img.Height != 1 {
		t.Fatalf("expected image dims to be 2x1; got %dx%d", img.Width, img.Height)
	}
	if img.Channels != 4 {
		t.Fatalf("expected 4 channels; got %d", img.Channels)
	}

	exp := []float32{1, 0, 0.2, 1, 0, 0, 0, 128.0 / 255.0}
	assertSamples(t, exp, img.Pixels, 1e-3)
}

func TestLoadGray(t *testing.T) {
	src := image.NewGray(image.Rect(0, 0, 3, 2))
	for i := range src.Pix {
		src.Pix[i] = uint8(i * 40)
	}
	imgFile := mockImage(t, "gray.png", src)

	img, err := Load(imgFile)
	if err != nil {
		t.Fatal(err)
	}

	if img.Channels != 1 {
		t.Fatalf("expected 1 channel; got %d", img.Channels)
	}
	if len(img.Pixels) != 6 {
		t.Fatalf("expected 6 samples; got %d", len(img.Pixels))
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.exr"))
	if err == nil {
		t.Fatal("expected an error loading a missing file")
	}
}

func TestWriteAndReload(t *testing.T) {
	img := New(4, 3, 3)
	for i := range img.Pixels {
		img.Pixels[i] = float32(i%5) / 4.0
	}

	outFile := filepath.Join(t.TempDir(), "out.png")
	if err := img.Write(outFile); err != nil {
		t.Fatal(err)
	}

	reloaded, err := Load(outFile)
	if err != nil {
		t.Fatal(err)
	}

	if !reloaded.SameResolution(img) || reloaded.Channels != img.Channels {
		t.Fatalf("expected reloaded image to be %s; got %s", img, reloaded)
	}
	assertSamples(t, img.Pixels, reloaded.Pixels, 1.0/255.0)
}

func TestWriteSizeMismatch(t *testing.T) {
	img := &Image{Width: 2, Height: 2, Channels: 3, Pixels: make([]float32, 3)}
	err := img.Write(filepath.Join(t.TempDir(), "out.png"))
	if !errors.Is(err, ErrSizeMismatch) {
		t.Fatalf("expected ErrSizeMismatch; got %v", err)
	}
}

func TestLoadUnsupportedChannels(t *testing.T) {
	specs := []uint32{2, 5}

	for index, channels := range specs {
		imgFile := filepath.Join(t.TempDir(), "guide.tif")
		if err := New(4, 4, channels).Write(imgFile); err != nil {
			t.Fatalf("[spec %d] %v", index, err)
		}

		_, err := Load(imgFile)
		if !errors.Is(err, ErrUnsupportedChannels) {
			t.Fatalf("[spec %d] expected ErrUnsupportedChannels loading a %d channel image; got %v", index, channels, err)
		}
	}
}

func TestNumSamplesDoNotWrap(t *testing.T) {
	if strconv.IntSize < 64 {
		t.Skip("requires 64-bit ints")
	}

	img := &Image{Width: 1 << 16, Height: 1 << 16, Channels: 4}
	if got := int64(img.NumSamples()); got != 1<<34 {
		t.Fatalf("expected %d samples; got %d", int64(1)<<34, got)
	}

	if got := len(New(5, 3, 3).Pixels); got != 45 {
		t.Fatalf("expected 45 samples; got %d", got)
	}
}

func TestRGBAConversion(t *testing.T) {
	type spec struct {
		channels uint32
		pixels   []float32
		expRGBA  []float32
	}
	specs := []spec{
		{1, []float32{0.5, 0.25}, []float32{0.5, 0.5, 0.5, 1, 0.25, 0.25, 0.25, 1}},
		{3, []float32{1, 2, 3, 4, 5, 6}, []float32{1, 2, 3, 1, 4, 5, 6, 1}},
		{4, []float32{1, 2, 3, 0.5, 4, 5, 6, 0.25}, []float32{1, 2, 3, 0.5, 4, 5, 6, 0.25}},
	}

	for index, s := range specs {
		img := &Image{Width: 2, Height: 1, Channels: s.channels, Pixels: s.pixels}

		rgba := img.RGBA()
		assertSamples(t, s.expRGBA, rgba, 0)

		// Expansion must not alias the source buffer
		rgba[0] = 42
		if img.Pixels[0] == 42 {
			t.Fatalf("[spec %d] RGBA() returned a slice aliasing the image pixels", index)
		}
		rgba[0] = s.expRGBA[0]

		out := New(2, 1, s.channels)
		if err := out.SetRGBA(rgba); err != nil {
			t.Fatalf("[spec %d] %v", index, err)
		}
		assertSamples(t, s.pixels, out.Pixels, 0)
	}
}

func TestSetRGBASizeMismatch(t *testing.T) {
	img := New(2, 2, 3)
	err := img.SetRGBA(make([]float32, 4))
	if !errors.Is(err, ErrSizeMismatch) {
		t.Fatalf("expected ErrSizeMismatch; got %v", err)
	}
}

func mockImage(t *testing.T, name string, img image.Image) string {
	imgFile := filepath.Join(t.TempDir(), name)
	f, err := os.Create(imgFile)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	if err = png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
	return imgFile
}

func assertSamples(t *testing.T, exp, got []float32, tolerance float64) {
	t.Helper()
	if len(exp) != len(got) {
		t.Fatalf("expected %d samples; got %d", len(exp), len(got))
	}
	for i := range exp {
		if math.Abs(float64(exp[i]-got[i])) > tolerance {
			t.Fatalf("[sample %d] expected %f; got %f", i, exp[i], got[i])
		}
	}
}
