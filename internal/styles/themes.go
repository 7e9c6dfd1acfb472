package styles

import (
	"sort"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

// themeMu protects the theme registry
var themeMu sync.RWMutex

// ColorPalette holds all theme colors
type ColorPalette struct {
	Primary   string `json:"primary"`
	Secondary string `json:"secondary"`
	Accent    string `json:"accent"`

	Success string `json:"success"`
	Warning string `json:"warning"`
	Error   string `json:"error"`

	TextPrimary   string `json:"textPrimary"`
	TextSecondary string `json:"textSecondary"`
	TextMuted     string `json:"textMuted"`

	BgPrimary   string `json:"bgPrimary"`
	BgSecondary string `json:"bgSecondary"`
	BgTertiary  string `json:"bgTertiary"`

	BorderNormal string `json:"borderNormal"`
	BorderActive string `json:"borderActive"`

	// Chroma style name for code blocks
	SyntaxTheme string `json:"syntaxTheme"`
}

// Theme represents a complete theme configuration
type Theme struct {
	Name        string       `json:"name"`
	DisplayName string       `json:"displayName"`
	Colors      ColorPalette `json:"colors"`
}

// Built-in themes
var (
	DefaultTheme = Theme{
		Name:        "default",
		DisplayName: "Default Dark",
		Colors: ColorPalette{
			Primary:   "#7C3AED",
			Secondary: "#3B82F6",
			Accent:    "#F59E0B",

			Success: "#10B981",
			Warning: "#F59E0B",
			Error:   "#EF4444",

			TextPrimary:   "#F9FAFB",
			TextSecondary: "#9CA3AF",
			TextMuted:     "#6B7280",

			BgPrimary:   "#111827",
			BgSecondary: "#1F2937",
			BgTertiary:  "#374151",

			BorderNormal: "#374151",
			BorderActive: "#7C3AED",

			SyntaxTheme: "monokai",
		},
	}

	LightTheme = Theme{
		Name:        "light",
		DisplayName: "Light",
		Colors: ColorPalette{
			Primary:   "#6D28D9",
			Secondary: "#2563EB",
			Accent:    "#D97706",

			Success: "#059669",
			Warning: "#D97706",
			Error:   "#DC2626",

			TextPrimary:   "#111827",
			TextSecondary: "#4B5563",
			TextMuted:     "#9CA3AF",

			BgPrimary:   "#FFFFFF",
			BgSecondary: "#F3F4F6",
			BgTertiary:  "#E5E7EB",

			BorderNormal: "#D1D5DB",
			BorderActive: "#6D28D9",

			SyntaxTheme: "github",
		},
	}
)

var themeRegistry = map[string]Theme{
	"default": DefaultTheme,
	"light":   LightTheme,
}

// GetTheme returns a registered theme by name.
func GetTheme(name string) (Theme, bool) {
	themeMu.RLock()
	defer themeMu.RUnlock()
	t, ok := themeRegistry[name]
	return t, ok
}

// ThemeNames returns all registered theme names, sorted.
func ThemeNames() []string {
	themeMu.RLock()
	defer themeMu.RUnlock()
	names := make([]string, 0, len(themeRegistry))
	for name := range themeRegistry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ApplyTheme installs a theme by name and rebuilds the style set. An unknown
// name applies the default theme.
func ApplyTheme(name string) {
	t, ok := GetTheme(name)
	if !ok {
		t = DefaultTheme
	}
	applyPalette(t.Colors)
}

func applyPalette(p ColorPalette) {
	themeMu.Lock()
	defer themeMu.Unlock()

	Primary = lipgloss.Color(p.Primary)
	Secondary = lipgloss.Color(p.Secondary)
	Accent = lipgloss.Color(p.Accent)
	Success = lipgloss.Color(p.Success)
	Warning = lipgloss.Color(p.Warning)
	Error = lipgloss.Color(p.Error)
	TextPrimary = lipgloss.Color(p.TextPrimary)
	TextSecondary = lipgloss.Color(p.TextSecondary)
	TextMuted = lipgloss.Color(p.TextMuted)
	BgPrimary = lipgloss.Color(p.BgPrimary)
	BgSecondary = lipgloss.Color(p.BgSecondary)
	BgTertiary = lipgloss.Color(p.BgTertiary)
	BorderNormal = lipgloss.Color(p.BorderNormal)
	BorderActive = lipgloss.Color(p.BorderActive)

	rebuildStyles()
}

// rebuildStyles regenerates the derived styles after a palette change.
func rebuildStyles() {
	Title = lipgloss.NewStyle().Bold(true).Foreground(TextPrimary)
	Body = lipgloss.NewStyle().Foreground(TextPrimary)
	Muted = lipgloss.NewStyle().Foreground(TextMuted)
	KeyHint = lipgloss.NewStyle().Foreground(TextMuted).Background(BgTertiary).Padding(0, 1)

	MarkCode = lipgloss.NewStyle().Foreground(Accent).Background(BgSecondary)
	MarkLink = lipgloss.NewStyle().Foreground(Secondary).Underline(true)
	Mention = lipgloss.NewStyle().Foreground(Primary).Background(BgSecondary).Bold(true)
	Delimiter = lipgloss.NewStyle().Foreground(TextMuted)

	Toolbar = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(BorderActive).Background(BgSecondary).Padding(0, 1)
	Popup = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(BorderNormal).Background(BgSecondary).Padding(0, 1)
	PopupSelected = lipgloss.NewStyle().Foreground(TextPrimary).Background(BgTertiary).Bold(true)
	PopupItem = lipgloss.NewStyle().Foreground(TextSecondary)

	Placeholder = lipgloss.NewStyle().Foreground(TextMuted).Italic(true)
	PlaceholderError = lipgloss.NewStyle().Foreground(Error).Italic(true)

	GutterHandle = lipgloss.NewStyle().Foreground(TextMuted)
	GutterActive = lipgloss.NewStyle().Foreground(Primary).Bold(true)
	DropIndicator = lipgloss.NewStyle().Foreground(Primary)

	TriggerQuery = lipgloss.NewStyle().Foreground(Primary).Underline(true)
	Selection = lipgloss.NewStyle().Background(BgTertiary)
	StatusBar = lipgloss.NewStyle().Foreground(TextSecondary).Background(BgSecondary).Padding(0, 1)
}

// SyntaxTheme returns the chroma style name for the named theme.
func SyntaxTheme(name string) string {
	t, ok := GetTheme(name)
	if !ok {
		t = DefaultTheme
	}
	return t.Colors.SyntaxTheme
}
