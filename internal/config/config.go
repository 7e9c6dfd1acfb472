package config

import "time"

// Config is the root configuration structure.
type Config struct {
	Editor    EditorConfig    `json:"editor"`
	Upload    UploadConfig    `json:"upload"`
	Highlight HighlightConfig `json:"highlight"`
	Storage   StorageConfig   `json:"storage"`
	Keymap    KeymapConfig    `json:"keymap"`
	UI        UIConfig        `json:"ui"`
}

// EditorConfig configures editing behavior.
type EditorConfig struct {
	// Autoformat rewrites markdown shorthand (**bold**, `code`, ...) as you type.
	Autoformat bool `json:"autoformat"`
	// DragHandles shows the block reorder gutter.
	DragHandles bool `json:"dragHandles"`
	// MarkReveal shows mark delimiters around the cursor's formatted run.
	MarkReveal bool `json:"markReveal"`
	// AutosaveInterval is how often an edited document is written back. Zero
	// disables autosave.
	AutosaveInterval time.Duration `json:"autosaveInterval"`
	// SelectionToolbarDelay is the quiet period before the selection toolbar
	// appears.
	SelectionToolbarDelay time.Duration `json:"selectionToolbarDelay"`
	// TableToolbarDelay is the quiet period before the table toolbar appears.
	TableToolbarDelay time.Duration `json:"tableToolbarDelay"`
}

// UploadConfig configures the media upload backend.
type UploadConfig struct {
	Enabled   bool   `json:"enabled"`
	Endpoint  string `json:"endpoint"`
	AccessKey string `json:"accessKey"`
	SecretKey string `json:"secretKey"`
	Bucket    string `json:"bucket"`
	UseSSL    bool   `json:"useSSL"`
	// PublicURL overrides the endpoint when building stored media URLs, for
	// buckets served through a CDN.
	PublicURL string `json:"publicUrl,omitempty"`
	// ErrorTTL is how long a failed upload placeholder stays visible.
	ErrorTTL time.Duration `json:"errorTtl"`
}

// HighlightConfig configures code block highlighting.
type HighlightConfig struct {
	Style string `json:"style"`
}

// StorageConfig configures the document database.
type StorageConfig struct {
	// DBPath is the SQLite file holding documents (supports ~ expansion).
	DBPath string `json:"dbPath"`
}

// KeymapConfig holds key binding overrides.
type KeymapConfig struct {
	Overrides map[string]string `json:"overrides"`
}

// UIConfig configures UI appearance.
type UIConfig struct {
	ShowStatusBar bool   `json:"showStatusBar"`
	Theme         string `json:"theme"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Editor: EditorConfig{
			Autoformat:            true,
			DragHandles:           true,
			MarkReveal:            true,
			AutosaveInterval:      5 * time.Second,
			SelectionToolbarDelay: 200 * time.Millisecond,
			TableToolbarDelay:     100 * time.Millisecond,
		},
		Upload: UploadConfig{
			Enabled:  false,
			UseSSL:   true,
			ErrorTTL: 3 * time.Second,
		},
		Highlight: HighlightConfig{
			Style: "monokai",
		},
		Storage: StorageConfig{
			DBPath: "~/.local/share/scribe/documents.db",
		},
		Keymap: KeymapConfig{
			Overrides: make(map[string]string),
		},
		UI: UIConfig{
			ShowStatusBar: true,
			Theme:         "default",
		},
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Editor.AutosaveInterval < 0 {
		c.Editor.AutosaveInterval = 5 * time.Second
	}
	if c.Editor.SelectionToolbarDelay <= 0 {
		c.Editor.SelectionToolbarDelay = 200 * time.Millisecond
	}
	if c.Editor.TableToolbarDelay <= 0 {
		c.Editor.TableToolbarDelay = 100 * time.Millisecond
	}
	if c.Upload.ErrorTTL <= 0 {
		c.Upload.ErrorTTL = 3 * time.Second
	}
	return nil
}
