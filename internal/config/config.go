package config

import (
	"encoding/hex"
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/pkg/errors"
)

// Config holds search and output settings.
type Config struct {
	// Search
	Target    string `json:"target"`
	TargetHex string `json:"target_hex"`
	Workers   int    `json:"workers"`
	Limit     int    `json:"limit"`
	Timeout   string `json:"timeout"`

	// Output
	OutputDir  string `json:"output_dir"`
	PreviewLen int    `json:"preview_len"`
	Visualize  bool   `json:"visualize"`
	ImageWidth int    `json:"image_width"`
}

// Load reads a JSON config file and returns Config.
// Fields not set in the file keep their zero values.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrapf(err, "config: read %s", path)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, errors.Wrapf(err, "config: parse %s", path)
	}

	return cfg, nil
}

// Flags holds CLI flag values that override config file settings.
type Flags struct {
	Target    string
	TargetHex string
	Workers   int
	Limit     int
	Timeout   string
	OutputDir string
	Visualize bool
}

// Resolve applies flags over the file settings and fills defaults.
// CLI flags take priority when non-zero/non-empty.
func (c *Config) Resolve(flags Flags) {
	if flags.Target != "" || flags.TargetHex != "" {
		c.Target = flags.Target
		c.TargetHex = flags.TargetHex
	}
	if flags.Workers > 0 {
		c.Workers = flags.Workers
	}
	if flags.Limit > 0 {
		c.Limit = flags.Limit
	}
	if flags.Timeout != "" {
		c.Timeout = flags.Timeout
	}
	if flags.OutputDir != "" {
		c.OutputDir = flags.OutputDir
	}
	if flags.Visualize {
		c.Visualize = true
	}

	if c.OutputDir != "" && !filepath.IsAbs(c.OutputDir) {
		if abs, err := filepath.Abs(c.OutputDir); err == nil {
			c.OutputDir = abs
		}
	}

	// Defaults
	if c.Workers <= 0 {
		c.Workers = runtime.NumCPU()
	}
	if c.PreviewLen <= 0 {
		c.PreviewLen = 64
	}
	if c.ImageWidth <= 0 {
		c.ImageWidth = 256
	}
}

// Pattern returns the search target, decoding TargetHex when Target is empty.
func (c *Config) Pattern() ([]byte, error) {
	switch {
	case c.Target != "" && c.TargetHex != "":
		return nil, errors.New("config: target and target_hex are mutually exclusive")
	case c.Target != "":
		return []byte(c.Target), nil
	case c.TargetHex != "":
		b, err := hex.DecodeString(c.TargetHex)
		if err != nil {
			return nil, errors.Wrap(err, "config: target_hex")
		}
		return b, nil
	default:
		return nil, errors.New("config: no search target")
	}
}

// SearchTimeout parses Timeout. Zero means no timeout.
func (c *Config) SearchTimeout() (time.Duration, error) {
	if c.Timeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 0, errors.Wrap(err, "config: timeout")
	}
	if d < 0 {
		return 0, errors.Errorf("config: negative timeout %s", c.Timeout)
	}
	return d, nil
}
