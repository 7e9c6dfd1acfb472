package keymap

// DefaultBindings returns the default key bindings.
func DefaultBindings() []Binding {
	return []Binding{
		// Global bindings
		{Key: "ctrl+c", Command: "quit", Context: "global"},
		{Key: "ctrl+q", Command: "quit", Context: "global"},
		{Key: "ctrl+s", Command: "save", Context: "global"},
		{Key: "ctrl+o", Command: "open-doc", Context: "global"},

		// Editor context
		{Key: "enter", Command: "split-block", Context: "editor"},
		{Key: "backspace", Command: "delete-backward", Context: "editor"},
		{Key: "delete", Command: "delete-forward", Context: "editor"},
		{Key: "left", Command: "cursor-left", Context: "editor"},
		{Key: "right", Command: "cursor-right", Context: "editor"},
		{Key: "up", Command: "cursor-up", Context: "editor"},
		{Key: "down", Command: "cursor-down", Context: "editor"},
		{Key: "shift+left", Command: "extend-left", Context: "editor"},
		{Key: "shift+right", Command: "extend-right", Context: "editor"},
		{Key: "home", Command: "cursor-line-start", Context: "editor"},
		{Key: "end", Command: "cursor-line-end", Context: "editor"},
		{Key: "ctrl+a", Command: "select-all", Context: "editor"},
		{Key: "ctrl+b", Command: "toggle-bold", Context: "editor"},
		{Key: "ctrl+e", Command: "toggle-italic", Context: "editor"},
		{Key: "ctrl+k", Command: "toggle-code", Context: "editor"},
		{Key: "ctrl+x", Command: "toggle-strike", Context: "editor"},
		{Key: "ctrl+v", Command: "paste", Context: "editor"},
		{Key: "ctrl+g", Command: "toggle-gutter", Context: "editor"},
		{Key: "alt+up", Command: "move-block-up", Context: "editor"},
		{Key: "alt+down", Command: "move-block-down", Context: "editor"},
		{Key: "esc", Command: "dismiss", Context: "editor"},

		// Mention picker context
		{Key: "esc", Command: "cancel", Context: "picker"},
		{Key: "enter", Command: "select", Context: "picker"},
		{Key: "tab", Command: "select", Context: "picker"},
		{Key: "up", Command: "cursor-up", Context: "picker"},
		{Key: "down", Command: "cursor-down", Context: "picker"},
		{Key: "ctrl+p", Command: "cursor-up", Context: "picker"},
		{Key: "ctrl+n", Command: "cursor-down", Context: "picker"},

		// Slash menu context
		{Key: "esc", Command: "cancel", Context: "menu"},
		{Key: "enter", Command: "execute", Context: "menu"},
		{Key: "tab", Command: "execute", Context: "menu"},
		{Key: "up", Command: "cursor-up", Context: "menu"},
		{Key: "down", Command: "cursor-down", Context: "menu"},
		{Key: "ctrl+p", Command: "cursor-up", Context: "menu"},
		{Key: "ctrl+n", Command: "cursor-down", Context: "menu"},

		// Document switcher context
		{Key: "esc", Command: "cancel", Context: "switcher"},
		{Key: "enter", Command: "select", Context: "switcher"},
		{Key: "up", Command: "cursor-up", Context: "switcher"},
		{Key: "down", Command: "cursor-down", Context: "switcher"},
		{Key: "ctrl+p", Command: "cursor-up", Context: "switcher"},
		{Key: "ctrl+n", Command: "cursor-down", Context: "switcher"},
	}
}

// RegisterDefaults registers all default bindings with the registry.
func RegisterDefaults(r *Registry) {
	for _, b := range DefaultBindings() {
		r.RegisterBinding(b)
	}
}
