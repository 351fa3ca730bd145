// Package config loads tilde.yaml and builds the runtime pieces that depend on
// it: the logger and the sandbox options handed to the native library.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/agenthands/tilde/pkg/stdlib"
)

// DefaultPath is looked up in the working directory when no -config flag is given.
const DefaultPath = "tilde.yaml"

const defaultMaxFileSize = 5 << 20

var (
	ErrInvalidColor  = errors.New("config: color must be auto, always or never")
	ErrInvalidFormat = errors.New("config: log format must be console or json")
)

type Config struct {
	Log     LogConfig     `yaml:"log"`
	Run     RunConfig     `yaml:"run"`
	Sandbox SandboxConfig `yaml:"sandbox"`
	Modules ModulesConfig `yaml:"modules"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type RunConfig struct {
	// Gas is the step budget; zero or less runs without a limit.
	Gas      int    `yaml:"gas"`
	Color    string `yaml:"color"`
	Debugger bool   `yaml:"debugger"`
}

type SandboxConfig struct {
	Root           string   `yaml:"root"`
	MaxFileSize    int64    `yaml:"max_file_size"`
	AllowedHosts   []string `yaml:"allowed_hosts"`
	AllowLocalhost bool     `yaml:"allow_localhost"`
}

type ModulesConfig struct {
	Disabled []string `yaml:"disabled"`
}

func Default() Config {
	return Config{
		Log: LogConfig{Level: "warn", Format: "console"},
		Run: RunConfig{Color: "auto", Debugger: true},
		Sandbox: SandboxConfig{
			Root:        ".",
			MaxFileSize: defaultMaxFileSize,
		},
	}
}

// Load reads path over the defaults. An empty path means DefaultPath, which
// may be absent; an explicit path must exist.
func Load(path string) (Config, error) {
	cfg := Default()
	explicit := path != ""
	if !explicit {
		path = DefaultPath
	}

	file, err := os.Open(path)
	if err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("config: %w", err)
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		if errors.Is(err, io.EOF) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	switch c.Log.Format {
	case "console", "json":
	default:
		return fmt.Errorf("%w, got %q", ErrInvalidFormat, c.Log.Format)
	}
	if _, err := parseLevel(c.Log.Level); err != nil {
		return err
	}
	switch c.Run.Color {
	case "auto", "always", "never":
	default:
		return fmt.Errorf("%w, got %q", ErrInvalidColor, c.Run.Color)
	}
	if c.Sandbox.MaxFileSize < 0 {
		return fmt.Errorf("config: max_file_size must not be negative")
	}
	known := make(map[string]bool)
	for _, name := range stdlib.Modules() {
		known[name] = true
	}
	for _, name := range c.Modules.Disabled {
		if !known[name] {
			return fmt.Errorf("config: unknown module %q in modules.disabled", name)
		}
	}
	return nil
}

// Color reports whether diagnostics should be coloured given whether the
// destination is a terminal.
func (c Config) Color(terminal bool) bool {
	switch c.Run.Color {
	case "always":
		return true
	case "never":
		return false
	}
	return terminal
}

// StdlibOptions builds the native library options. The file module is rooted
// at Sandbox.Root (resolved to an absolute path); the http module is only
// enabled when hosts are allowed.
func (c Config) StdlibOptions() (stdlib.Options, error) {
	root, err := filepath.Abs(c.Sandbox.Root)
	if err != nil {
		return stdlib.Options{}, fmt.Errorf("config: sandbox root: %w", err)
	}
	size := c.Sandbox.MaxFileSize
	if size == 0 {
		size = defaultMaxFileSize
	}

	opts := stdlib.Options{
		FS:       stdlib.NewFSSandbox(root, size),
		Disabled: c.Modules.Disabled,
	}
	if len(c.Sandbox.AllowedHosts) > 0 {
		opts.HTTP = stdlib.NewHTTPSandbox(c.Sandbox.AllowedHosts)
		opts.HTTP.AllowLocalhost = c.Sandbox.AllowLocalhost
	}
	return opts, nil
}
