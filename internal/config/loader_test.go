package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if !cfg.Editor.Autoformat {
		t.Error("autoformat should be enabled by default")
	}
	if cfg.Editor.SelectionToolbarDelay != 200*time.Millisecond {
		t.Errorf("got selection delay %v, want 200ms", cfg.Editor.SelectionToolbarDelay)
	}
	if cfg.Editor.TableToolbarDelay != 100*time.Millisecond {
		t.Errorf("got table delay %v, want 100ms", cfg.Editor.TableToolbarDelay)
	}
	if cfg.Upload.Enabled {
		t.Error("upload should be disabled until a backend is configured")
	}
}

func TestLoadFrom_NonExistent(t *testing.T) {
	cfg, err := LoadFrom("/nonexistent/path/config.json")
	if err != nil {
		t.Errorf("should not error on missing file: %v", err)
	}
	if cfg == nil {
		t.Error("should return default config")
	}
}

func TestLoadFrom_ValidJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")

	content := []byte(`{
		"editor": {
			"autoformat": false,
			"selectionToolbarDelay": "350ms"
		},
		"upload": {
			"enabled": true,
			"endpoint": "minio.local:9000",
			"bucket": "media"
		},
		"ui": {
			"showStatusBar": false
		}
	}`)

	if err := os.WriteFile(path, content, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom failed: %v", err)
	}

	if cfg.Editor.Autoformat {
		t.Error("autoformat should be disabled")
	}
	if cfg.Editor.SelectionToolbarDelay != 350*time.Millisecond {
		t.Errorf("got selection delay %v, want 350ms", cfg.Editor.SelectionToolbarDelay)
	}
	if !cfg.Upload.Enabled || cfg.Upload.Endpoint != "minio.local:9000" {
		t.Errorf("upload config not merged: %+v", cfg.Upload)
	}
	if cfg.UI.ShowStatusBar {
		t.Error("showStatusBar should be false")
	}
	// Default values should still be present
	if !cfg.Editor.DragHandles {
		t.Error("drag handles should still be enabled (default)")
	}
	if cfg.Upload.ErrorTTL != 3*time.Second {
		t.Errorf("got error TTL %v, want the 3s default", cfg.Upload.ErrorTTL)
	}
}

func TestLoadFrom_InvalidJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")

	if err := os.WriteFile(path, []byte(`{invalid`), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := LoadFrom(path)
	if err == nil {
		t.Error("should error on invalid JSON")
	}
}

func TestLoadFrom_ExpandsDBPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")

	content := []byte(`{"storage": {"dbPath": "~/notes/documents.db"}}`)
	if err := os.WriteFile(path, content, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom failed: %v", err)
	}

	home, _ := os.UserHomeDir()
	want := filepath.Join(home, "notes/documents.db")
	if cfg.Storage.DBPath != want {
		t.Errorf("got db path %q, want %q", cfg.Storage.DBPath, want)
	}
}

func TestExpandPath(t *testing.T) {
	home, _ := os.UserHomeDir()

	tests := []struct {
		input  string
		expect string
	}{
		{"~/.local/share/scribe", filepath.Join(home, ".local/share/scribe")},
		{"/absolute/path", "/absolute/path"},
		{"relative/path", "relative/path"},
	}

	for _, tc := range tests {
		got := ExpandPath(tc.input)
		if got != tc.expect {
			t.Errorf("ExpandPath(%q) = %q, want %q", tc.input, got, tc.expect)
		}
	}
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.Editor.AutosaveInterval = -1
	cfg.Editor.SelectionToolbarDelay = 0

	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate failed: %v", err)
	}

	// Out-of-range values should be corrected
	if cfg.Editor.AutosaveInterval != 5*time.Second {
		t.Errorf("got %v, want 5s after validation", cfg.Editor.AutosaveInterval)
	}
	if cfg.Editor.SelectionToolbarDelay != 200*time.Millisecond {
		t.Errorf("got %v, want 200ms after validation", cfg.Editor.SelectionToolbarDelay)
	}
}

func TestLoadFrom_KeymapOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")

	content := []byte(`{"keymap": {"overrides": {"save": "ctrl+w"}}}`)
	if err := os.WriteFile(path, content, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom failed: %v", err)
	}
	if cfg.Keymap.Overrides["save"] != "ctrl+w" {
		t.Errorf("got overrides %v, want save -> ctrl+w", cfg.Keymap.Overrides)
	}
}
