package markreveal

import (
	"testing"

	"github.com/virtues-os/scribe/internal/decoration"
	"github.com/virtues-os/scribe/internal/engine"
	"github.com/virtues-os/scribe/internal/plugin"
	"github.com/virtues-os/scribe/internal/runtime"
)

var (
	bold   = engine.Mark{Type: engine.MarkBold}
	italic = engine.Mark{Type: engine.MarkItalic}
)

func setup(t *testing.T, doc *engine.Node) (*runtime.Editor, *Plugin) {
	t.Helper()
	p := New()
	return runtime.New(doc, []plugin.Plugin{p}, runtime.Options{}), p
}

func moveTo(t *testing.T, ed *runtime.Editor, pos int) {
	t.Helper()
	if err := ed.Dispatch(ed.State().Tr().SetSelection(engine.Collapsed(pos))); err != nil {
		t.Fatalf("move to %d: %v", pos, err)
	}
}

func delimiterAt(set decoration.Set, pos int, side decoration.Side) (string, bool) {
	for _, d := range set.All() {
		if d.Widget && d.From == pos && d.Side == side {
			return d.Spec.Attrs["text"].(string), true
		}
	}
	return "", false
}

func TestRevealsBoldAroundCursor(t *testing.T) {
	// "ab" plain, "cd" bold, "ef" plain: bold spans [3, 5).
	doc := engine.NewDoc(engine.NewNode(engine.TypeParagraph, nil,
		engine.NewText("ab"),
		engine.NewText("cd", bold),
		engine.NewText("ef"),
	))
	ed, p := setup(t, doc)
	moveTo(t, ed, 4)

	set := p.Decorations()
	if set.Len() != 2 {
		t.Fatalf("decorations = %d, want a delimiter pair", set.Len())
	}
	if text, ok := delimiterAt(set, 3, decoration.Before); !ok || text != "**" {
		t.Errorf("opening delimiter at 3 = (%q, %v), want (**, true)", text, ok)
	}
	if text, ok := delimiterAt(set, 5, decoration.After); !ok || text != "**" {
		t.Errorf("closing delimiter at 5 = (%q, %v), want (**, true)", text, ok)
	}
}

func TestRevealsRunsCursorDoesNotTouch(t *testing.T) {
	// Cursor in the plain run still reveals the bold run in the same block.
	doc := engine.NewDoc(engine.NewNode(engine.TypeParagraph, nil,
		engine.NewText("ab"),
		engine.NewText("cd", bold),
		engine.NewText("ef"),
	))
	ed, p := setup(t, doc)
	moveTo(t, ed, 1)

	set := p.Decorations()
	if set.Len() != 2 {
		t.Fatalf("decorations = %d, want a delimiter pair", set.Len())
	}
	if text, ok := delimiterAt(set, 3, decoration.Before); !ok || text != "**" {
		t.Errorf("opening delimiter at 3 = (%q, %v), want (**, true)", text, ok)
	}
	if text, ok := delimiterAt(set, 5, decoration.After); !ok || text != "**" {
		t.Errorf("closing delimiter at 5 = (%q, %v), want (**, true)", text, ok)
	}
}

func TestHidesWhenCursorLeavesBlock(t *testing.T) {
	// First paragraph [0, 4) is bold; second paragraph starts at 4.
	doc := engine.NewDoc(
		engine.NewNode(engine.TypeParagraph, nil, engine.NewText("cd", bold)),
		engine.NewNode(engine.TypeParagraph, nil, engine.NewText("ef")),
	)
	ed, p := setup(t, doc)
	moveTo(t, ed, 2)
	if p.Decorations().Len() == 0 {
		t.Fatal("expected reveal inside the bold paragraph")
	}
	moveTo(t, ed, 6)
	if got := p.Decorations().Len(); got != 0 {
		t.Errorf("decorations after leaving the block = %d, want 0", got)
	}
}

func TestAtomBreaksContiguity(t *testing.T) {
	// Two bold runs split by a hard break: two separate delimiter pairs.
	doc := engine.NewDoc(engine.NewNode(engine.TypeParagraph, nil,
		engine.NewText("ab", bold),
		engine.NewNode(engine.TypeHardBreak, nil),
		engine.NewText("cd", bold),
	))
	ed, p := setup(t, doc)
	moveTo(t, ed, 1)

	set := p.Decorations()
	if set.Len() != 4 {
		t.Fatalf("decorations = %d, want two delimiter pairs", set.Len())
	}
	if _, ok := delimiterAt(set, 3, decoration.After); !ok {
		t.Error("first bold range should close before the hard break")
	}
	if _, ok := delimiterAt(set, 4, decoration.Before); !ok {
		t.Error("second bold range should open after the hard break")
	}
}

func TestNoRevealForRangeSelection(t *testing.T) {
	doc := engine.NewDoc(engine.NewNode(engine.TypeParagraph, nil, engine.NewText("cd", bold)))
	ed, p := setup(t, doc)
	if err := ed.Dispatch(ed.State().Tr().SetSelection(engine.Selection{Anchor: 1, Head: 3})); err != nil {
		t.Fatalf("select: %v", err)
	}
	if got := p.Decorations().Len(); got != 0 {
		t.Errorf("decorations = %d, want 0 for a range selection", got)
	}
}

func TestOverlappingMarksRevealBoth(t *testing.T) {
	// "a" bold, "b" bold+italic, "c" italic.
	doc := engine.NewDoc(engine.NewNode(engine.TypeParagraph, nil,
		engine.NewText("a", bold),
		engine.NewText("b", bold, italic),
		engine.NewText("c", italic),
	))
	ed, p := setup(t, doc)
	// Cursor just past "b", the run carrying both marks.
	moveTo(t, ed, 3)

	set := p.Decorations()
	if set.Len() != 4 {
		t.Fatalf("decorations = %d, want two delimiter pairs", set.Len())
	}
	// Bold covers runs "a"+"b": [1, 3). Italic covers "b"+"c": [2, 4).
	if text, ok := delimiterAt(set, 1, decoration.Before); !ok || text != "**" {
		t.Errorf("bold opener = (%q, %v), want (**, true)", text, ok)
	}
	if text, ok := delimiterAt(set, 3, decoration.After); !ok || text != "**" {
		t.Errorf("bold closer = (%q, %v), want (**, true)", text, ok)
	}
	if text, ok := delimiterAt(set, 2, decoration.Before); !ok || text != "*" {
		t.Errorf("italic opener = (%q, %v), want (*, true)", text, ok)
	}
	if text, ok := delimiterAt(set, 4, decoration.After); !ok || text != "*" {
		t.Errorf("italic closer = (%q, %v), want (*, true)", text, ok)
	}
}

func TestLinkMarkNotRevealed(t *testing.T) {
	link := engine.Mark{Type: engine.MarkLink, Attrs: map[string]any{"href": "https://example.com"}}
	doc := engine.NewDoc(engine.NewNode(engine.TypeParagraph, nil, engine.NewText("site", link)))
	ed, p := setup(t, doc)
	moveTo(t, ed, 3)
	if got := p.Decorations().Len(); got != 0 {
		t.Errorf("decorations = %d, want 0 for link marks", got)
	}
}

func TestCodeBlockSuppressed(t *testing.T) {
	doc := engine.NewDoc(engine.NewNode(engine.TypeCodeBlock, nil, engine.NewText("x", bold)))
	ed, p := setup(t, doc)
	moveTo(t, ed, 1)
	if got := p.Decorations().Len(); got != 0 {
		t.Errorf("decorations = %d, want 0 inside a code block", got)
	}
}
