package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	configDir  = ".config/scribe"
	configFile = "config.json"
)

// rawConfig is the JSON-unmarshaling intermediary. Optional booleans are
// pointers so an absent key keeps the default, and durations come in as
// strings like "200ms".
type rawConfig struct {
	Editor    rawEditorConfig `json:"editor"`
	Upload    rawUploadConfig `json:"upload"`
	Highlight HighlightConfig `json:"highlight"`
	Storage   StorageConfig   `json:"storage"`
	Keymap    KeymapConfig    `json:"keymap"`
	UI        rawUIConfig     `json:"ui"`
}

type rawEditorConfig struct {
	Autoformat            *bool  `json:"autoformat"`
	DragHandles           *bool  `json:"dragHandles"`
	MarkReveal            *bool  `json:"markReveal"`
	AutosaveInterval      string `json:"autosaveInterval"`
	SelectionToolbarDelay string `json:"selectionToolbarDelay"`
	TableToolbarDelay     string `json:"tableToolbarDelay"`
}

type rawUploadConfig struct {
	Enabled   *bool  `json:"enabled"`
	Endpoint  string `json:"endpoint"`
	AccessKey string `json:"accessKey"`
	SecretKey string `json:"secretKey"`
	Bucket    string `json:"bucket"`
	UseSSL    *bool  `json:"useSSL"`
	PublicURL string `json:"publicUrl"`
	ErrorTTL  string `json:"errorTtl"`
}

type rawUIConfig struct {
	ShowStatusBar *bool  `json:"showStatusBar"`
	Theme         string `json:"theme"`
}

// Load loads configuration from the default location.
func Load() (*Config, error) {
	return LoadFrom("")
}

// LoadFrom loads configuration from a specific path.
// If path is empty, uses ~/.config/scribe/config.json
func LoadFrom(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return cfg, nil // Return defaults on error
		}
		path = filepath.Join(home, configDir, configFile)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil // Return defaults if no config file
		}
		return nil, err
	}

	var raw rawConfig
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	// Merge raw config into defaults
	mergeConfig(cfg, &raw)

	// Expand paths
	cfg.Storage.DBPath = ExpandPath(cfg.Storage.DBPath)

	// Validate
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// mergeConfig merges raw config values into the config.
func mergeConfig(cfg *Config, raw *rawConfig) {
	// Editor
	if raw.Editor.Autoformat != nil {
		cfg.Editor.Autoformat = *raw.Editor.Autoformat
	}
	if raw.Editor.DragHandles != nil {
		cfg.Editor.DragHandles = *raw.Editor.DragHandles
	}
	if raw.Editor.MarkReveal != nil {
		cfg.Editor.MarkReveal = *raw.Editor.MarkReveal
	}
	if raw.Editor.AutosaveInterval != "" {
		if d, err := time.ParseDuration(raw.Editor.AutosaveInterval); err == nil {
			cfg.Editor.AutosaveInterval = d
		}
	}
	if raw.Editor.SelectionToolbarDelay != "" {
		if d, err := time.ParseDuration(raw.Editor.SelectionToolbarDelay); err == nil {
			cfg.Editor.SelectionToolbarDelay = d
		}
	}
	if raw.Editor.TableToolbarDelay != "" {
		if d, err := time.ParseDuration(raw.Editor.TableToolbarDelay); err == nil {
			cfg.Editor.TableToolbarDelay = d
		}
	}

	// Upload
	if raw.Upload.Enabled != nil {
		cfg.Upload.Enabled = *raw.Upload.Enabled
	}
	if raw.Upload.Endpoint != "" {
		cfg.Upload.Endpoint = raw.Upload.Endpoint
	}
	if raw.Upload.AccessKey != "" {
		cfg.Upload.AccessKey = raw.Upload.AccessKey
	}
	if raw.Upload.SecretKey != "" {
		cfg.Upload.SecretKey = raw.Upload.SecretKey
	}
	if raw.Upload.Bucket != "" {
		cfg.Upload.Bucket = raw.Upload.Bucket
	}
	if raw.Upload.UseSSL != nil {
		cfg.Upload.UseSSL = *raw.Upload.UseSSL
	}
	if raw.Upload.PublicURL != "" {
		cfg.Upload.PublicURL = raw.Upload.PublicURL
	}
	if raw.Upload.ErrorTTL != "" {
		if d, err := time.ParseDuration(raw.Upload.ErrorTTL); err == nil {
			cfg.Upload.ErrorTTL = d
		}
	}

	// Highlight
	if raw.Highlight.Style != "" {
		cfg.Highlight.Style = raw.Highlight.Style
	}

	// Storage
	if raw.Storage.DBPath != "" {
		cfg.Storage.DBPath = raw.Storage.DBPath
	}

	// Keymap
	if raw.Keymap.Overrides != nil {
		for k, v := range raw.Keymap.Overrides {
			cfg.Keymap.Overrides[k] = v
		}
	}

	// UI
	if raw.UI.ShowStatusBar != nil {
		cfg.UI.ShowStatusBar = *raw.UI.ShowStatusBar
	}
	if raw.UI.Theme != "" {
		cfg.UI.Theme = raw.UI.Theme
	}
}

// ExpandPath expands ~ to home directory.
func ExpandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}

// ConfigPath returns the path to the config file.
func ConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, configDir, configFile)
}
