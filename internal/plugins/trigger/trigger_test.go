package trigger

import (
	"testing"

	"github.com/virtues-os/scribe/internal/engine"
	"github.com/virtues-os/scribe/internal/plugin"
	"github.com/virtues-os/scribe/internal/runtime"
)

type recorder struct {
	opens   []string
	queries []string
	closes  int
}

func (r *recorder) callbacks() Callbacks {
	return Callbacks{
		OnOpen:        func(_ engine.Rect, q string) { r.opens = append(r.opens, q) },
		OnQueryChange: func(q string) { r.queries = append(r.queries, q) },
		OnClose:       func() { r.closes++ },
	}
}

func setup(t *testing.T, doc *engine.Node, cursor int) (*runtime.Editor, *Detector, *recorder) {
	t.Helper()
	rec := &recorder{}
	d := New("test-trigger", Config{Char: '@', Callbacks: rec.callbacks()})
	ed := runtime.New(doc, []plugin.Plugin{d}, runtime.Options{})
	if err := ed.Dispatch(ed.State().Tr().SetSelection(engine.Collapsed(cursor))); err != nil {
		t.Fatalf("set cursor: %v", err)
	}
	return ed, d, rec
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

func emptyPara() *engine.Node {
	return engine.NewDoc(engine.NewNode(engine.TypeParagraph, nil))
}

func TestOpensAtBlockStart(t *testing.T) {
	ed, d, rec := setup(t, emptyPara(), 1)
	typeText(t, ed, "@")
	if sess := d.Session(); !sess.Active || sess.From != 1 || sess.Query != "" {
		t.Fatalf("session = %+v, want active at 1 with empty query", sess)
	}
	if len(rec.opens) != 1 || rec.opens[0] != "" {
		t.Errorf("opens = %v, want one open with empty query", rec.opens)
	}
}

func TestTracksQuery(t *testing.T) {
	ed, d, rec := setup(t, emptyPara(), 1)
	typeText(t, ed, "@al")
	if sess := d.Session(); sess.Query != "al" {
		t.Fatalf("query = %q, want al", sess.Query)
	}
	want := []string{"a", "al"}
	if len(rec.queries) != len(want) {
		t.Fatalf("query changes = %v, want %v", rec.queries, want)
	}
	for i, q := range want {
		if rec.queries[i] != q {
			t.Errorf("query change %d = %q, want %q", i, rec.queries[i], q)
		}
	}
}

func TestClosesOnWhitespace(t *testing.T) {
	ed, d, rec := setup(t, emptyPara(), 1)
	typeText(t, ed, "@a ")
	if d.Session().Active {
		t.Error("session should close when the query gains whitespace")
	}
	if rec.closes != 1 {
		t.Errorf("closes = %d, want exactly 1", rec.closes)
	}
}

func TestRequiresValidPosition(t *testing.T) {
	doc := engine.NewDoc(engine.NewNode(engine.TypeParagraph, nil, engine.NewText("hi")))
	ed, d, rec := setup(t, doc, 3)
	typeText(t, ed, "@")
	if d.Session().Active {
		t.Error("trigger after a letter should not open a session")
	}
	if len(rec.opens) != 0 {
		t.Errorf("opens = %v, want none", rec.opens)
	}
}

func TestOpensAfterSpace(t *testing.T) {
	doc := engine.NewDoc(engine.NewNode(engine.TypeParagraph, nil, engine.NewText("hi ")))
	ed, d, _ := setup(t, doc, 4)
	typeText(t, ed, "@")
	if sess := d.Session(); !sess.Active || sess.From != 4 {
		t.Fatalf("session = %+v, want active at 4", sess)
	}
}

func TestClosesWhenCursorLeavesRange(t *testing.T) {
	ed, d, rec := setup(t, emptyPara(), 1)
	typeText(t, ed, "@ab")
	if err := ed.Dispatch(ed.State().Tr().SetSelection(engine.Collapsed(1))); err != nil {
		t.Fatalf("move cursor: %v", err)
	}
	if d.Session().Active {
		t.Error("session should close when the cursor moves before the trigger")
	}
	if rec.closes != 1 {
		t.Errorf("closes = %d, want 1", rec.closes)
	}
}

func TestClosesWhenTriggerDeleted(t *testing.T) {
	ed, d, rec := setup(t, emptyPara(), 1)
	typeText(t, ed, "@a")
	if err := ed.Dispatch(ed.State().Tr().Delete(1, 2)); err != nil {
		t.Fatalf("delete trigger: %v", err)
	}
	if d.Session().Active {
		t.Error("session should close when the trigger character is deleted")
	}
	if rec.closes != 1 {
		t.Errorf("closes = %d, want 1", rec.closes)
	}
}

func TestFromRemapsThroughEarlierInsert(t *testing.T) {
	doc := engine.NewDoc(
		engine.NewNode(engine.TypeParagraph, nil, engine.NewText("ab")),
		engine.NewNode(engine.TypeParagraph, nil),
	)
	ed, d, rec := setup(t, doc, 5)
	typeText(t, ed, "@q")
	if sess := d.Session(); sess.From != 5 || sess.Query != "q" {
		t.Fatalf("session = %+v, want from 5 query q", sess)
	}
	if err := ed.Dispatch(ed.State().Tr().InsertText(1, "ZZ")); err != nil {
		t.Fatalf("insert before trigger: %v", err)
	}
	sess := d.Session()
	if !sess.Active || sess.From != 7 || sess.Query != "q" {
		t.Fatalf("session = %+v, want active at 7 with query q", sess)
	}
	if rec.closes != 0 {
		t.Errorf("closes = %d, want 0", rec.closes)
	}
}

func TestCloseCommand(t *testing.T) {
	ed, d, rec := setup(t, emptyPara(), 1)
	typeText(t, ed, "@")
	if !d.Close() {
		t.Fatal("Close on an active session should report true")
	}
	if rec.closes != 1 {
		t.Errorf("closes = %d, want 1", rec.closes)
	}
	if d.Close() {
		t.Error("Close on an inactive session should report false")
	}
	if rec.closes != 1 {
		t.Errorf("closes after no-op = %d, want 1", rec.closes)
	}
}

func TestEscapeCloses(t *testing.T) {
	ed, d, rec := setup(t, emptyPara(), 1)
	typeText(t, ed, "@")
	if !ed.HandleKey("esc") {
		t.Fatal("escape should be consumed while a session is active")
	}
	if d.Session().Active || rec.closes != 1 {
		t.Errorf("session = %+v closes = %d, want closed once", d.Session(), rec.closes)
	}
	if ed.HandleKey("esc") {
		t.Error("escape with no session should not be consumed")
	}
}

func TestDecorationsCoverSession(t *testing.T) {
	ed, d, _ := setup(t, emptyPara(), 1)
	typeText(t, ed, "@ab")
	set := d.Decorations()
	if set.Len() != 1 {
		t.Fatalf("decorations = %d, want 1", set.Len())
	}
	deco := set.All()[0]
	if deco.From != 1 || deco.To != 4 {
		t.Errorf("decoration range = [%d, %d), want [1, 4)", deco.From, deco.To)
	}
	_ = ed
}
