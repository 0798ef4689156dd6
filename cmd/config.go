package cmd

import (
	"fmt"

	"github.com/DominikPott/nvidiaDenoiser/log"
	"github.com/spf13/viper"
	"github.com/urfave/cli"
)

// Supported denoiser backends.
const (
	BackendOpenCL = "opencl"
	BackendHost   = "host"
)

// Settings that can be provided by a config file or DENOISER_* environment
// variables. Flags set on the command line override them.
type Config struct {
	Blend      float32  `mapstructure:"blend"`
	Backend    string   `mapstructure:"backend"`
	Device     string   `mapstructure:"device"`
	Blacklist  []string `mapstructure:"blacklist"`
	KernelPath string   `mapstructure:"kernel_path"`
	LogLevel   string   `mapstructure:"log_level"`
}

// DefaultConfig returns configuration with default values
func DefaultConfig() *Config {
	return &Config{
		Blend:     0,
		Backend:   BackendOpenCL,
		Blacklist: []string{},
		LogLevel:  "notice",
	}
}

// Load configuration from cfgFile (if not empty), the environment and defaults.
func LoadConfig(cfgFile string) (*Config, error) {
	v := viper.New()

	cfg := DefaultConfig()
	v.SetDefault("blend", cfg.Blend)
	v.SetDefault("backend", cfg.Backend)
	v.SetDefault("device", cfg.Device)
	v.SetDefault("blacklist", cfg.Blacklist)
	v.SetDefault("kernel_path", cfg.KernelPath)
	v.SetDefault("log_level", cfg.LogLevel)

	v.SetEnvPrefix("DENOISER")
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("%w: reading %s: %w", ErrInvalidConfig, cfgFile, err)
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	return cfg, nil
}

// Override config values with the flags that were explicitly set.
func (c *Config) ApplyFlags(ctx *cli.Context) {
	if ctx.IsSet("blend") {
		c.Blend = float32(ctx.Float64("blend"))
	}
	if ctx.IsSet("backend") {
		c.Backend = ctx.String("backend")
	}
	if ctx.IsSet("device") {
		c.Device = ctx.String("device")
	}
	if ctx.IsSet("blacklist") {
		c.Blacklist = ctx.StringSlice("blacklist")
	}
	if ctx.IsSet("kernel-path") {
		c.KernelPath = ctx.String("kernel-path")
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Blend < 0 || c.Blend > 1 {
		return fmt.Errorf("%w: blend must be between 0.0 and 1.0; got %f", ErrInvalidConfig, c.Blend)
	}

	if c.Backend != BackendOpenCL && c.Backend != BackendHost {
		return fmt.Errorf("%w: backend must be one of: %v", ErrInvalidConfig, []string{BackendOpenCL, BackendHost})
	}

	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	return nil
}
