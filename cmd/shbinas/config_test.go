package main

import (
	"bytes"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ConfigFileName)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
[log]
level = "debug"
format = "json"

[assembler]
max_errors = 5
`)
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Log.Level != "debug" || cfg.Log.Format != "json" {
		t.Errorf("log = %+v", cfg.Log)
	}
	if cfg.Log.Color != "auto" {
		t.Errorf("color = %q, want default auto", cfg.Log.Color)
	}
	if cfg.Assembler.MaxErrors != 5 {
		t.Errorf("max_errors = %d, want 5", cfg.Assembler.MaxErrors)
	}
}

func TestLoadConfigErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"syntax", "[log\n", "failed to parse"},
		{"unknown key", "[log]\nlevl = \"info\"\n", "failed to parse"},
		{"bad level", "[log]\nlevel = \"chatty\"\n", "log.level"},
		{"bad format", "[log]\nformat = \"xml\"\n", "log.format"},
		{"bad color", "[log]\ncolor = \"yes\"\n", "log.color"},
		{"negative limit", "[assembler]\nmax_errors = -1\n", "assembler.max_errors"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, tt.body))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %v, want containing %q", err, tt.want)
			}
		})
	}
}

func TestResolveConfig(t *testing.T) {
	if _, err := ResolveConfig(filepath.Join(t.TempDir(), "missing.toml")); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("explicit missing file: error = %v, want fs.ErrNotExist", err)
	}

	cfg, err := ResolveConfig("")
	if err != nil {
		t.Fatalf("ResolveConfig(\"\") failed: %v", err)
	}
	if *cfg != *DefaultConfig() {
		t.Errorf("config = %+v, want defaults", cfg)
	}
}

func TestNewLoggerJSON(t *testing.T) {
	var buf bytes.Buffer
	logger, err := newLogger(LogConfig{Level: "info", Format: "json", Color: "never"}, &buf)
	if err != nil {
		t.Fatal(err)
	}
	logger.Debug("hidden")
	logger.Info("shown")
	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("debug message logged at info level: %s", out)
	}
	if !strings.Contains(out, `"msg":"shown"`) {
		t.Errorf("json output = %s", out)
	}
}

func TestUseColor(t *testing.T) {
	var buf bytes.Buffer
	tests := []struct {
		mode string
		want bool
	}{
		{"always", true},
		{"never", false},
		{"auto", false},
	}
	for _, tt := range tests {
		if got := useColor(tt.mode, &buf); got != tt.want {
			t.Errorf("useColor(%q, buffer) = %v, want %v", tt.mode, got, tt.want)
		}
	}
}
