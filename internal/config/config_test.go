package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"fairmatch/internal/engine"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Engine.Mode != engine.ModeUnrestricted || cfg.Engine.TeamSize != 2 {
		t.Errorf("engine defaults = %+v", cfg.Engine)
	}
	if cfg.Dashboard.Theme != "auto" {
		t.Errorf("theme = %q, want auto", cfg.Dashboard.Theme)
	}
	if d, err := cfg.HTTPTimeout(); err != nil || d != 10*time.Second {
		t.Errorf("HTTPTimeout = %v, %v", d, err)
	}
	if d, err := cfg.TickInterval(); err != nil || d != 400*time.Millisecond {
		t.Errorf("TickInterval = %v, %v", d, err)
	}
}

func TestSaveLoadRoundtrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf", "config.yaml")

	cfg := DefaultConfig()
	cfg.Engine.TeamSize = 3
	cfg.Engine.Mode = engine.ModeTimeSensitive
	cfg.Dashboard.TickInterval = "250ms"
	cfg.Source.HTTPTimeout = "3s"
	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Engine.TeamSize != 3 || loaded.Engine.Mode != engine.ModeTimeSensitive {
		t.Errorf("engine = %+v", loaded.Engine)
	}
	if d, _ := loaded.TickInterval(); d != 250*time.Millisecond {
		t.Errorf("TickInterval = %v, want 250ms", d)
	}
	if d, _ := loaded.HTTPTimeout(); d != 3*time.Second {
		t.Errorf("HTTPTimeout = %v, want 3s", d)
	}
}

func TestLoadPartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "dashboard:\n  theme: dark\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Dashboard.Theme != "dark" {
		t.Errorf("theme = %q, want dark", cfg.Dashboard.Theme)
	}
	// Untouched sections keep their defaults.
	if cfg.Engine.TeamSize != 2 {
		t.Errorf("team size = %d, want default 2", cfg.Engine.TeamSize)
	}
	if cfg.Dashboard.TickInterval != "400ms" {
		t.Errorf("tick interval = %q, want default", cfg.Dashboard.TickInterval)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("FAIRMATCH_DB", "/tmp/override.db")
	t.Setenv("FAIRMATCH_THEME", "light")
	t.Setenv("FAIRMATCH_VERBOSE", "true")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Store.DatabasePath != "/tmp/override.db" {
		t.Errorf("db path = %q", cfg.Store.DatabasePath)
	}
	if cfg.Dashboard.Theme != "light" {
		t.Errorf("theme = %q", cfg.Dashboard.Theme)
	}
	if !cfg.Logging.Verbose {
		t.Error("verbose override not applied")
	}
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"bad_yaml", ":\n  - ["},
		{"bad_engine", "engine:\n  mode: unrestricted\n  team_size: 0\n"},
		{"bad_duration", "source:\n  http_timeout: soon\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			if err := os.WriteFile(path, []byte(tt.content), 0o644); err != nil {
				t.Fatal(err)
			}
			if _, err := Load(path); err == nil {
				t.Error("Load succeeded, want error")
			}
		})
	}
}
