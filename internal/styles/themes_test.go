package styles

import "testing"

func TestGetTheme(t *testing.T) {
	tests := []struct {
		name  string
		found bool
	}{
		{"default", true},
		{"light", true},
		{"solarized", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := GetTheme(tt.name)
			if ok != tt.found {
				t.Errorf("GetTheme(%q) found = %v, want %v", tt.name, ok, tt.found)
			}
		})
	}
}

func TestThemeNamesSorted(t *testing.T) {
	names := ThemeNames()
	if len(names) < 2 {
		t.Fatalf("got %d themes, want at least 2", len(names))
	}
	for i := 1; i < len(names); i++ {
		if names[i-1] >= names[i] {
			t.Errorf("names not sorted: %v", names)
		}
	}
}

func TestApplyThemeSwapsPalette(t *testing.T) {
	defer ApplyTheme("default")

	ApplyTheme("light")
	if BgPrimary != "#FFFFFF" {
		t.Errorf("light BgPrimary = %v, want #FFFFFF", BgPrimary)
	}

	// Unknown names fall back to the default palette.
	ApplyTheme("no-such-theme")
	if BgPrimary != "#111827" {
		t.Errorf("fallback BgPrimary = %v, want #111827", BgPrimary)
	}
}

func TestSyntaxThemeFollowsTheme(t *testing.T) {
	if got := SyntaxTheme("light"); got != "github" {
		t.Errorf("light syntax theme = %q, want github", got)
	}
	if got := SyntaxTheme("unknown"); got != "monokai" {
		t.Errorf("fallback syntax theme = %q, want monokai", got)
	}
}
