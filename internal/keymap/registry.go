// Package keymap maps key presses to named commands, scoped by input
// context. The editor, the mention picker, and the slash menu each get their
// own context, with "global" as the fallback.
package keymap

// Binding associates a key with a command in a context.
type Binding struct {
	Key     string
	Command string
	Context string
}

// Registry resolves keys to commands.
type Registry struct {
	// context -> key -> command
	bindings map[string]map[string]string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{bindings: make(map[string]map[string]string)}
}

// RegisterBinding adds a binding, replacing any existing one for the same
// key and context.
func (r *Registry) RegisterBinding(b Binding) {
	ctx := b.Context
	if ctx == "" {
		ctx = "global"
	}
	if r.bindings[ctx] == nil {
		r.bindings[ctx] = make(map[string]string)
	}
	r.bindings[ctx][b.Key] = b.Command
}

// Lookup resolves a key in a context, falling back to global bindings.
func (r *Registry) Lookup(context, key string) (string, bool) {
	if cmds, ok := r.bindings[context]; ok {
		if cmd, ok := cmds[key]; ok {
			return cmd, true
		}
	}
	if cmd, ok := r.bindings["global"][key]; ok {
		return cmd, true
	}
	return "", false
}

// KeyFor returns the key bound to a command in a context, for footer hints.
func (r *Registry) KeyFor(context, command string) (string, bool) {
	for _, ctx := range []string{context, "global"} {
		for key, cmd := range r.bindings[ctx] {
			if cmd == command {
				return key, true
			}
		}
	}
	return "", false
}

// ApplyOverrides rebinds commands from the config's keymap overrides. Keys
// are "context/command", values are the new key. An unknown command adds a
// fresh binding in that context.
func (r *Registry) ApplyOverrides(overrides map[string]string) {
	for target, newKey := range overrides {
		ctx, cmd := splitTarget(target)
		// Drop the old key for this command first.
		if cmds, ok := r.bindings[ctx]; ok {
			for key, c := range cmds {
				if c == cmd {
					delete(cmds, key)
				}
			}
		}
		r.RegisterBinding(Binding{Key: newKey, Command: cmd, Context: ctx})
	}
}

func splitTarget(target string) (context, command string) {
	for i := 0; i < len(target); i++ {
		if target[i] == '/' {
			return target[:i], target[i+1:]
		}
	}
	return "global", target
}
