package config

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// saveConfig is the JSON-marshaling intermediary that uses string durations.
type saveConfig struct {
	Editor    saveEditorConfig `json:"editor"`
	Upload    saveUploadConfig `json:"upload"`
	Highlight HighlightConfig  `json:"highlight"`
	Storage   StorageConfig    `json:"storage"`
	Keymap    KeymapConfig     `json:"keymap"`
	UI        UIConfig         `json:"ui"`
}

type saveEditorConfig struct {
	Autoformat            *bool  `json:"autoformat,omitempty"`
	DragHandles           *bool  `json:"dragHandles,omitempty"`
	MarkReveal            *bool  `json:"markReveal,omitempty"`
	AutosaveInterval      string `json:"autosaveInterval,omitempty"`
	SelectionToolbarDelay string `json:"selectionToolbarDelay,omitempty"`
	TableToolbarDelay     string `json:"tableToolbarDelay,omitempty"`
}

type saveUploadConfig struct {
	Enabled   *bool  `json:"enabled,omitempty"`
	Endpoint  string `json:"endpoint,omitempty"`
	AccessKey string `json:"accessKey,omitempty"`
	SecretKey string `json:"secretKey,omitempty"`
	Bucket    string `json:"bucket,omitempty"`
	UseSSL    *bool  `json:"useSSL,omitempty"`
	PublicURL string `json:"publicUrl,omitempty"`
	ErrorTTL  string `json:"errorTtl,omitempty"`
}

// toSaveConfig converts Config to the JSON-serializable format.
func toSaveConfig(cfg *Config) saveConfig {
	return saveConfig{
		Editor: saveEditorConfig{
			Autoformat:            &cfg.Editor.Autoformat,
			DragHandles:           &cfg.Editor.DragHandles,
			MarkReveal:            &cfg.Editor.MarkReveal,
			AutosaveInterval:      cfg.Editor.AutosaveInterval.String(),
			SelectionToolbarDelay: cfg.Editor.SelectionToolbarDelay.String(),
			TableToolbarDelay:     cfg.Editor.TableToolbarDelay.String(),
		},
		Upload: saveUploadConfig{
			Enabled:   &cfg.Upload.Enabled,
			Endpoint:  cfg.Upload.Endpoint,
			AccessKey: cfg.Upload.AccessKey,
			SecretKey: cfg.Upload.SecretKey,
			Bucket:    cfg.Upload.Bucket,
			UseSSL:    &cfg.Upload.UseSSL,
			PublicURL: cfg.Upload.PublicURL,
			ErrorTTL:  cfg.Upload.ErrorTTL.String(),
		},
		Highlight: cfg.Highlight,
		Storage:   cfg.Storage,
		Keymap:    cfg.Keymap,
		UI:        cfg.UI,
	}
}

// Save writes the config to ~/.config/scribe/config.json
func Save(cfg *Config) error {
	return SaveTo(cfg, ConfigPath())
}

// SaveTo writes the config to a specific path. Keys in the existing file
// that this package does not manage are preserved.
func SaveTo(cfg *Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	merged := make(map[string]json.RawMessage)
	if existing, err := os.ReadFile(path); err == nil {
		// A corrupt existing file is replaced rather than failing the save.
		_ = json.Unmarshal(existing, &merged)
	}

	sc := toSaveConfig(cfg)
	managed, err := json.Marshal(sc)
	if err != nil {
		return err
	}
	var managedKeys map[string]json.RawMessage
	if err := json.Unmarshal(managed, &managedKeys); err != nil {
		return err
	}
	for k, v := range managedKeys {
		merged[k] = v
	}

	data, err := json.MarshalIndent(merged, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// SaveTheme updates only the theme name in config and saves.
func SaveTheme(themeName string) error {
	cfg, err := Load()
	if err != nil {
		return err
	}
	cfg.UI.Theme = themeName
	return Save(cfg)
}
