// Package msg defines the Bubble Tea messages the editor host and its plugin
// callbacks exchange. Plugin callbacks run on the dispatch path, never on the
// UI goroutine, so everything they want the view to know travels as one of
// these messages.
package msg

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// ToastMsg displays a temporary message.
type ToastMsg struct {
	Message  string
	Duration time.Duration
	IsError  bool // true for error toasts (red), false for success (green)
}

// ShowToast returns a command to show a toast message.
func ShowToast(message string, duration time.Duration) tea.Cmd {
	return func() tea.Msg {
		return ToastMsg{
			Message:  message,
			Duration: duration,
		}
	}
}

// PickerOpenedMsg reports that a trigger session opened: the mention picker
// ("mention") or the slash menu ("slash-menu").
type PickerOpenedMsg struct {
	ID    string
	X, Y  int
	Query string
}

// PickerQueryMsg carries a live query update for an open picker.
type PickerQueryMsg struct {
	ID    string
	Query string
}

// PickerClosedMsg reports that a trigger session ended.
type PickerClosedMsg struct {
	ID string
}

// ToolbarShownMsg reports a debounced toolbar anchor.
type ToolbarShownMsg struct {
	ID   string
	X, Y int
}

// ToolbarHiddenMsg reports that a toolbar's target disappeared.
type ToolbarHiddenMsg struct {
	ID string
}

// ConfigReloadedMsg reports that the config file changed on disk.
type ConfigReloadedMsg struct{}

// DocSavedMsg reports the outcome of a document save.
type DocSavedMsg struct {
	Err error
}

// RepaintMsg asks the view to re-render without any other state change, for
// example after an upload placeholder advanced.
type RepaintMsg struct{}
