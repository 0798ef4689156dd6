package cmd

import (
	"errors"
	"reflect"
	"testing"

	"github.com/DominikPott/nvidiaDenoiser/pipeline"
)

func TestSanitizeArgs(t *testing.T) {
	app := NewApp()

	specs := []struct {
		in  []string
		exp []string
	}{
		{
			[]string{"denoiser", "-i", "in.exr", "-o", "out.exr"},
			[]string{"denoiser", "-i", "in.exr", "-o", "out.exr"},
		},
		{
			[]string{"denoiser", "-x", "-i", "in.exr", "--foo", "bar", "-o", "out.exr"},
			[]string{"denoiser", "-i", "in.exr", "-o", "out.exr"},
		},
		{
			[]string{"denoiser", "-v", "-i", "in.exr", "-a", "albedo.exr", "-n", "normal.exr", "-o", "out.exr"},
			[]string{"denoiser", "-v", "-i", "in.exr", "-a", "albedo.exr", "-n", "normal.exr", "-o", "out.exr"},
		},
		{
			[]string{"denoiser", "--blend=0.5", "--input", "in.exr", "stray", "-b", "Intel", "-b", "Iris"},
			[]string{"denoiser", "--blend=0.5", "--input", "in.exr", "-b", "Intel", "-b", "Iris"},
		},
		{
			[]string{"denoiser", "-vv", "list-devices", "-whatever"},
			[]string{"denoiser", "-vv", "list-devices", "-whatever"},
		},
		{
			[]string{"denoiser", "-o", "-i"},
			[]string{"denoiser", "-o", "-i"},
		},
		{
			[]string{"denoiser"},
			[]string{"denoiser"},
		},
	}

	for specIndex, spec := range specs {
		got, err := SanitizeArgs(spec.in, app.Flags, app.Commands)
		if err != nil {
			t.Errorf("[spec %d] unexpected error: %v", specIndex, err)
			continue
		}
		if !reflect.DeepEqual(got, spec.exp) {
			t.Errorf("[spec %d] expected %v; got %v", specIndex, spec.exp, got)
		}
	}
}

func TestSanitizeArgsFlagWithoutValue(t *testing.T) {
	app := NewApp()

	specs := [][]string{
		{"denoiser", "-i"},
		{"denoiser", "-i", "in.exr", "-o"},
		{"denoiser", "-i", "in.exr", "-x", "-a"},
	}

	for specIndex, args := range specs {
		_, err := SanitizeArgs(args, app.Flags, app.Commands)
		if !errors.Is(err, pipeline.ErrMissingRequiredInput) {
			t.Errorf("[spec %d] expected ErrMissingRequiredInput; got %v", specIndex, err)
		}
	}
}
