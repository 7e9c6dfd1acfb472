package styles

import "github.com/charmbracelet/lipgloss"

// Color palette - default dark theme
var (
	// Primary colors
	Primary   = lipgloss.Color("#7C3AED") // Purple
	Secondary = lipgloss.Color("#3B82F6") // Blue
	Accent    = lipgloss.Color("#F59E0B") // Amber

	// Status colors
	Success = lipgloss.Color("#10B981") // Green
	Warning = lipgloss.Color("#F59E0B") // Amber
	Error   = lipgloss.Color("#EF4444") // Red

	// Text colors
	TextPrimary   = lipgloss.Color("#F9FAFB")
	TextSecondary = lipgloss.Color("#9CA3AF")
	TextMuted     = lipgloss.Color("#6B7280")

	// Background colors
	BgPrimary   = lipgloss.Color("#111827")
	BgSecondary = lipgloss.Color("#1F2937")
	BgTertiary  = lipgloss.Color("#374151")

	// Border colors
	BorderNormal = lipgloss.Color("#374151")
	BorderActive = lipgloss.Color("#7C3AED")
)

// Text styles
var (
	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(TextPrimary)

	Body = lipgloss.NewStyle().
		Foreground(TextPrimary)

	Muted = lipgloss.NewStyle().
		Foreground(TextMuted)

	KeyHint = lipgloss.NewStyle().
		Foreground(TextMuted).
		Background(BgTertiary).
		Padding(0, 1)
)

// Inline mark styles
var (
	MarkBold = lipgloss.NewStyle().
			Bold(true)

	MarkItalic = lipgloss.NewStyle().
			Italic(true)

	MarkCode = lipgloss.NewStyle().
			Foreground(Accent).
			Background(BgSecondary)

	MarkStrike = lipgloss.NewStyle().
			Strikethrough(true)

	MarkLink = lipgloss.NewStyle().
			Foreground(Secondary).
			Underline(true)

	// Mention atoms render as a pill.
	Mention = lipgloss.NewStyle().
		Foreground(Primary).
		Background(BgSecondary).
		Bold(true)

	// Delimiter text shown around the formatted run under the cursor.
	Delimiter = lipgloss.NewStyle().
			Foreground(TextMuted)
)

// Overlay styles
var (
	// Floating toolbar above a selection or table.
	Toolbar = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(BorderActive).
		Background(BgSecondary).
		Padding(0, 1)

	// Mention picker and slash menu share the popup look.
	Popup = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(BorderNormal).
		Background(BgSecondary).
		Padding(0, 1)

	PopupSelected = lipgloss.NewStyle().
			Foreground(TextPrimary).
			Background(BgTertiary).
			Bold(true)

	PopupItem = lipgloss.NewStyle().
			Foreground(TextSecondary)

	// Upload placeholder line.
	Placeholder = lipgloss.NewStyle().
			Foreground(TextMuted).
			Italic(true)

	PlaceholderError = lipgloss.NewStyle().
				Foreground(Error).
				Italic(true)

	// Drag gutter handle and drop indicator.
	GutterHandle = lipgloss.NewStyle().
			Foreground(TextMuted)

	GutterActive = lipgloss.NewStyle().
			Foreground(Primary).
			Bold(true)

	DropIndicator = lipgloss.NewStyle().
			Foreground(Primary)

	// Trigger query highlight while a picker is open.
	TriggerQuery = lipgloss.NewStyle().
			Foreground(Primary).
			Underline(true)

	// Selected document text.
	Selection = lipgloss.NewStyle().
			Background(BgTertiary)

	StatusBar = lipgloss.NewStyle().
			Foreground(TextSecondary).
			Background(BgSecondary).
			Padding(0, 1)
)
