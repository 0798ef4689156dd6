package cmd

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatal(err)
	}

	exp := DefaultConfig()
	if cfg.Blend != exp.Blend || cfg.Backend != exp.Backend || cfg.Device != "" || cfg.KernelPath != "" || cfg.LogLevel != exp.LogLevel {
		t.Fatalf("expected default config %+v; got %+v", exp, cfg)
	}
	if len(cfg.Blacklist) != 0 {
		t.Fatalf("expected an empty blacklist; got %v", cfg.Blacklist)
	}
	if err = cfg.Validate(); err != nil {
		t.Fatal(err)
	}
}

func TestLoadConfigFile(t *testing.T) {
	cfgFile := filepath.Join(t.TempDir(), "denoiser.yaml")
	data := []byte("blend: 0.25\nbackend: host\nblacklist:\n  - Intel\n  - Iris\nlog_level: debug\n")
	if err := os.WriteFile(cfgFile, data, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(cfgFile)
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Blend != 0.25 {
		t.Fatalf("expected blend 0.25; got %f", cfg.Blend)
	}
	if cfg.Backend != BackendHost {
		t.Fatalf("expected backend %s; got %s", BackendHost, cfg.Backend)
	}
	if !reflect.DeepEqual(cfg.Blacklist, []string{"Intel", "Iris"}) {
		t.Fatalf("expected blacklist [Intel Iris]; got %v", cfg.Blacklist)
	}
	if cfg.LogLevel != "debug" {
		t.Fatalf("expected log level debug; got %s", cfg.LogLevel)
	}
}

func TestLoadConfigEnv(t *testing.T) {
	t.Setenv("DENOISER_BACKEND", "host")
	t.Setenv("DENOISER_DEVICE", "GeForce")

	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Backend != BackendHost || cfg.Device != "GeForce" {
		t.Fatalf("expected env overrides to apply; got %+v", cfg)
	}
}

func TestLoadMissingConfigFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	if !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig; got %v", err)
	}
}

func TestConfigValidate(t *testing.T) {
	specs := []struct {
		mutate func(*Config)
		valid  bool
	}{
		{func(c *Config) {}, true},
		{func(c *Config) { c.Blend = 1 }, true},
		{func(c *Config) { c.Blend = -0.1 }, false},
		{func(c *Config) { c.Blend = 1.5 }, false},
		{func(c *Config) { c.Backend = "cuda" }, false},
		{func(c *Config) { c.LogLevel = "verbose" }, false},
	}

	for specIndex, spec := range specs {
		cfg := DefaultConfig()
		spec.mutate(cfg)
		err := cfg.Validate()
		if spec.valid && err != nil {
			t.Errorf("[spec %d] unexpected error: %v", specIndex, err)
		}
		if !spec.valid && !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("[spec %d] expected ErrInvalidConfig; got %v", specIndex, err)
		}
	}
}
