package mention

import (
	"testing"

	"github.com/virtues-os/scribe/internal/engine"
	"github.com/virtues-os/scribe/internal/plugin"
	"github.com/virtues-os/scribe/internal/plugins/trigger"
	"github.com/virtues-os/scribe/internal/runtime"
)

func setup(t *testing.T) (*runtime.Editor, *Plugin, *int) {
	t.Helper()
	closes := 0
	p := New(trigger.Callbacks{OnClose: func() { closes++ }})
	doc := engine.NewDoc(engine.NewNode(engine.TypeParagraph, nil))
	ed := runtime.New(doc, []plugin.Plugin{p}, runtime.Options{})
	if err := ed.Dispatch(ed.State().Tr().SetSelection(engine.Collapsed(1))); err != nil {
		t.Fatalf("set cursor: %v", err)
	}
	return ed, p, &closes
}

func typeText(t *testing.T, ed *runtime.Editor, text string) {
	t.Helper()
	for _, r := range text {
		st := ed.State()
		pos := st.Sel.Head
		tr := st.Tr().InsertText(pos, string(r)).SetSelection(engine.Collapsed(pos + 1))
		if err := ed.Dispatch(tr); err != nil {
			t.Fatalf("type %q: %v", r, err)
		}
	}
}

func TestInsertReplacesTriggerRange(t *testing.T) {
	ed, p, closes := setup(t)
	typeText(t, ed, "@sar")
	if !p.Insert(Item{ID: "u1", Label: "sarah"}) {
		t.Fatal("Insert with active session should succeed")
	}

	st := ed.State()
	block := st.Doc.Child(0)
	if block.ChildCount() != 2 {
		t.Fatalf("block children = %d, want mention + space", block.ChildCount())
	}
	atom := block.Child(0)
	if atom.Type != engine.TypeMention {
		t.Fatalf("first child = %s, want mention", atom.Type)
	}
	if atom.Attrs["id"] != "u1" || atom.Attrs["label"] != "sarah" {
		t.Errorf("attrs = %v, want id u1 label sarah", atom.Attrs)
	}
	if block.Child(1).Text != " " {
		t.Errorf("trailing text = %q, want a single space", block.Child(1).Text)
	}
	// Cursor lands after the space: mention (1) + space (1) past the start.
	if st.Sel.Head != 3 {
		t.Errorf("cursor = %d, want 3", st.Sel.Head)
	}
	if p.Session().Active {
		t.Error("session should close after commit")
	}
	if *closes != 1 {
		t.Errorf("closes = %d, want exactly 1", *closes)
	}
}

func TestInsertWithoutSessionIsNoOp(t *testing.T) {
	ed, p, _ := setup(t)
	before := ed.State().Doc
	if p.Insert(Item{ID: "u1", Label: "sarah"}) {
		t.Fatal("Insert without a session should report false")
	}
	if ed.State().Doc != before {
		t.Error("document should be untouched")
	}
}

func TestInsertMidText(t *testing.T) {
	ed, p, _ := setup(t)
	typeText(t, ed, "hi ")
	typeText(t, ed, "@a")
	if !p.Insert(Item{ID: "u2", Label: "ana"}) {
		t.Fatal("Insert failed")
	}
	st := ed.State()
	// "hi " + mention + " "
	if got := st.Doc.TextBetween(1, 4, ""); got != "hi " {
		t.Errorf("prefix = %q, want %q", got, "hi ")
	}
	if st.Doc.Child(0).Child(1).Type != engine.TypeMention {
		t.Error("mention atom missing after prefix")
	}
	if st.Sel.Head != 6 {
		t.Errorf("cursor = %d, want 6", st.Sel.Head)
	}
}
