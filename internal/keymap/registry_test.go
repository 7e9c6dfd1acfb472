package keymap

import "testing"

func TestLookupFallsBackToGlobal(t *testing.T) {
	r := NewRegistry()
	RegisterDefaults(r)

	cmd, ok := r.Lookup("editor", "ctrl+b")
	if !ok || cmd != "toggle-bold" {
		t.Errorf("editor ctrl+b = %q, %v", cmd, ok)
	}
	// ctrl+s is only bound globally.
	cmd, ok = r.Lookup("editor", "ctrl+s")
	if !ok || cmd != "save" {
		t.Errorf("editor ctrl+s = %q, %v, want global save", cmd, ok)
	}
	if _, ok := r.Lookup("editor", "ctrl+z"); ok {
		t.Error("unbound key should not resolve")
	}
}

func TestContextShadowsGlobal(t *testing.T) {
	r := NewRegistry()
	RegisterDefaults(r)

	// esc cancels in the picker, dismisses in the editor.
	if cmd, _ := r.Lookup("picker", "esc"); cmd != "cancel" {
		t.Errorf("picker esc = %q, want cancel", cmd)
	}
	if cmd, _ := r.Lookup("editor", "esc"); cmd != "dismiss" {
		t.Errorf("editor esc = %q, want dismiss", cmd)
	}
}

func TestApplyOverridesRebinds(t *testing.T) {
	r := NewRegistry()
	RegisterDefaults(r)

	r.ApplyOverrides(map[string]string{
		"editor/toggle-bold": "ctrl+w",
		"save":               "ctrl+o",
	})

	if cmd, _ := r.Lookup("editor", "ctrl+w"); cmd != "toggle-bold" {
		t.Errorf("ctrl+w = %q, want toggle-bold", cmd)
	}
	if _, ok := r.Lookup("editor", "ctrl+b"); ok {
		t.Error("old key should be unbound after an override")
	}
	if cmd, _ := r.Lookup("global", "ctrl+o"); cmd != "save" {
		t.Errorf("bare override should land in the global context, got %q", cmd)
	}
}

func TestKeyFor(t *testing.T) {
	r := NewRegistry()
	RegisterDefaults(r)

	if key, ok := r.KeyFor("editor", "toggle-italic"); !ok || key != "ctrl+e" {
		t.Errorf("KeyFor toggle-italic = %q, %v", key, ok)
	}
	if _, ok := r.KeyFor("editor", "no-such-command"); ok {
		t.Error("unknown command should not resolve")
	}
}
