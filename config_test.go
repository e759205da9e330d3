package pyzantine

import (
	"bytes"
	"errors"
	"path/filepath"
	"testing"
)

func validConfig() Config {
	cfg := DefaultConfig()
	cfg.TargetPath = "target.jpg"
	cfg.OutputPath = "mosaic.jpg"
	return cfg
}

func TestConfigValidate(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	tests := []struct {
		name   string
		modify func(c *Config)
		field  string
	}{
		{"zero edge", func(c *Config) { c.Edge = 0 }, "edge"},
		{"negative edge", func(c *Config) { c.Edge = -50 }, "edge"},
		{"no index", func(c *Config) { c.IndexPath = "" }, "index"},
		{"no target", func(c *Config) { c.TargetPath = "" }, "target"},
		{"no output", func(c *Config) { c.OutputPath = "" }, "output"},
		{"gif output", func(c *Config) { c.OutputPath = "mosaic.gif" }, "output"},
		{"quality", func(c *Config) { c.JPGQuality = 0 }, "jpeg-quality"},
		{"cache", func(c *Config) { c.CacheSize = -1 }, "cache"},
		{"metric", func(c *Config) { c.Metric = "" }, "metric"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.modify(&cfg)
			err := cfg.Validate()
			var configErr *ConfigError
			if !errors.As(err, &configErr) {
				t.Fatalf("expected ConfigError, got %v", err)
			}
			if configErr.Field != tt.field {
				t.Errorf("expected field %s, got %s", tt.field, configErr.Field)
			}
		})
	}
}

func TestConfigResolvePaths(t *testing.T) {
	wd := t.TempDir()
	abs := filepath.Join(t.TempDir(), "out.png")
	cfg := validConfig()
	cfg.OutputPath = abs
	cfg.TargetPath = filepath.Join("images", "..", "target.jpg")
	resolved, err := cfg.ResolvePaths(wd)
	if err != nil {
		t.Fatal(err)
	}
	if resolved.TargetPath != filepath.Join(wd, "target.jpg") {
		t.Errorf("unexpected target path %s", resolved.TargetPath)
	}
	if resolved.IndexPath != filepath.Join(wd, DefaultIndexFileName) {
		t.Errorf("unexpected index path %s", resolved.IndexPath)
	}
	if resolved.OutputPath != abs {
		t.Errorf("absolute path changed to %s", resolved.OutputPath)
	}
	if resolved.TileRoot != "" {
		t.Errorf("empty paths must stay empty, got %s", resolved.TileRoot)
	}
	if cfg.TargetPath == resolved.TargetPath {
		t.Error("original config modified")
	}
}

func TestStdProgressFunc(t *testing.T) {
	var buf bytes.Buffer
	progress := StdProgressFunc(&buf, "Test", 10, 5)
	for i := 1; i <= 10; i++ {
		progress(i)
	}
	want := "Test: 5 of 10 (50.0%)\nTest: 10 of 10 (100.0%)\n"
	if buf.String() != want {
		t.Errorf("expected %q, got %q", want, buf.String())
	}
}

func TestProgressStep(t *testing.T) {
	tests := []struct{ total, want int }{
		{0, 1},
		{5, 1},
		{100, 10},
		{5000, 100},
	}
	for _, tt := range tests {
		if got := ProgressStep(tt.total); got != tt.want {
			t.Errorf("ProgressStep(%d) = %d, want %d", tt.total, got, tt.want)
		}
	}
}
