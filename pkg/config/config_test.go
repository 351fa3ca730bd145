package config_test

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/agenthands/tilde/pkg/config"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tilde.yaml")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeFile(t, `
log:
  level: debug
  format: json
run:
  gas: 500
  color: never
  debugger: false
sandbox:
  allowed_hosts: [example.com]
modules:
  disabled: [http, file]
`)
	cfg, err := config.Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Log.Level != "debug" || cfg.Log.Format != "json" {
		t.Errorf("log = %+v", cfg.Log)
	}
	if cfg.Run.Gas != 500 || cfg.Run.Debugger || cfg.Run.Color != "never" {
		t.Errorf("run = %+v", cfg.Run)
	}
	// untouched keys keep their defaults
	if cfg.Sandbox.Root != "." || cfg.Sandbox.MaxFileSize != 5<<20 {
		t.Errorf("sandbox = %+v", cfg.Sandbox)
	}
	if len(cfg.Modules.Disabled) != 2 {
		t.Errorf("disabled = %v", cfg.Modules.Disabled)
	}
}

func TestLoadEmptyFile(t *testing.T) {
	cfg, err := config.Load(writeFile(t, ""))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Log.Level != config.Default().Log.Level {
		t.Errorf("expected defaults, got %+v", cfg)
	}
}

func TestLoadMissing(t *testing.T) {
	if _, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing explicit path")
	}

	wd, _ := os.Getwd()
	defer os.Chdir(wd)
	if err := os.Chdir(t.TempDir()); err != nil {
		t.Fatal(err)
	}
	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("missing default file should give defaults, got %v", err)
	}
	if !cfg.Run.Debugger {
		t.Error("debugger should default to on")
	}
}

func TestLoadRejects(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"unknown key", "run:\n  gass: 1\n", "field gass not found"},
		{"bad color", "run:\n  color: pink\n", "color must be"},
		{"bad format", "log:\n  format: xml\n", "log format"},
		{"bad level", "log:\n  level: loud\n", "log level"},
		{"bad module", "modules:\n  disabled: [nosuch]\n", `unknown module "nosuch"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := config.Load(writeFile(t, tt.body))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("got %v, want error containing %q", err, tt.want)
			}
		})
	}

	bad := config.Default()
	bad.Run.Color = "pink"
	if err := bad.Validate(); !errors.Is(err, config.ErrInvalidColor) {
		t.Errorf("expected ErrInvalidColor, got %v", err)
	}
}

func TestColor(t *testing.T) {
	cfg := config.Default()
	if !cfg.Color(true) || cfg.Color(false) {
		t.Error("auto should follow the terminal")
	}
	cfg.Run.Color = "always"
	if !cfg.Color(false) {
		t.Error("always should colour")
	}
	cfg.Run.Color = "never"
	if cfg.Color(true) {
		t.Error("never should not colour")
	}
}

func TestStdlibOptions(t *testing.T) {
	cfg := config.Default()
	cfg.Sandbox.Root = t.TempDir()
	opts, err := cfg.StdlibOptions()
	if err != nil {
		t.Fatal(err)
	}
	if opts.FS == nil || opts.FS.Root != cfg.Sandbox.Root || opts.FS.MaxFileSize != cfg.Sandbox.MaxFileSize {
		t.Errorf("fs sandbox = %+v", opts.FS)
	}
	if opts.HTTP != nil {
		t.Error("http should stay disabled without allowed hosts")
	}

	cfg.Sandbox.MaxFileSize = 0
	if opts, _ = cfg.StdlibOptions(); opts.FS.MaxFileSize != 5<<20 {
		t.Errorf("zero max_file_size should fall back to the default, got %d", opts.FS.MaxFileSize)
	}

	cfg.Sandbox.AllowedHosts = []string{"example.com"}
	cfg.Sandbox.AllowLocalhost = true
	opts, err = cfg.StdlibOptions()
	if err != nil {
		t.Fatal(err)
	}
	if opts.HTTP == nil || !opts.HTTP.AllowLocalhost || opts.HTTP.AllowedDomains[0] != "example.com" {
		t.Errorf("http sandbox = %+v", opts.HTTP)
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger, err := config.NewLogger(config.LogConfig{Level: "info", Format: "json"}, &buf)
	if err != nil {
		t.Fatal(err)
	}
	logger.Debug().Msg("hidden")
	logger.Info().Str("file", "main.tl").Msg("loaded")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("debug line leaked: %s", out)
	}
	if !strings.Contains(out, `"file":"main.tl"`) || !strings.Contains(out, `"message":"loaded"`) {
		t.Errorf("unexpected output: %s", out)
	}

	buf.Reset()
	logger, err = config.NewLogger(config.LogConfig{Level: "warn", Format: "console"}, &buf)
	if err != nil {
		t.Fatal(err)
	}
	logger.Warn().Msg("careful")
	if !strings.Contains(buf.String(), "careful") || strings.Contains(buf.String(), "{") {
		t.Errorf("unexpected console output: %s", buf.String())
	}

	if _, err := config.NewLogger(config.LogConfig{Level: "loud"}, &buf); err == nil {
		t.Error("expected error for unknown level")
	}
}

func TestNewLoggerTrace(t *testing.T) {
	prev := zerolog.GlobalLevel()
	defer zerolog.SetGlobalLevel(prev)
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	var buf bytes.Buffer
	logger, err := config.NewLogger(config.LogConfig{Level: "trace", Format: "json"}, &buf)
	if err != nil {
		t.Fatal(err)
	}
	logger.Trace().Int("pc", 3).Msg("step")
	if !strings.Contains(buf.String(), `"pc":3`) {
		t.Errorf("trace line filtered: %q", buf.String())
	}
}
