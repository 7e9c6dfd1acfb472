package autoformat

import (
	"testing"

	"github.com/virtues-os/scribe/internal/engine"
	"github.com/virtues-os/scribe/internal/plugin"
	"github.com/virtues-os/scribe/internal/runtime"
)

func setup(t *testing.T, doc *engine.Node, cursor int) *runtime.Editor {
	t.Helper()
	ed := runtime.New(doc, []plugin.Plugin{New()}, runtime.Options{})
	if err := ed.Dispatch(ed.State().Tr().SetSelection(engine.Collapsed(cursor))); err != nil {
		t.Fatalf("set cursor: %v", err)
	}
	return ed
}

// typeText simulates direct input: one transaction per rune, flagged with the
// input meta so autoformat considers it.
func typeText(t *testing.T, ed *runtime.Editor, text string) {
	t.Helper()
	for _, r := range text {
		st := ed.State()
		pos := st.Sel.Head
		tr := st.Tr().
			InsertText(pos, string(r), st.TypingMarks()...).
			SetSelection(engine.Collapsed(pos+1)).
			SetMeta(plugin.MetaInputType, "insertText")
		if err := ed.Dispatch(tr); err != nil {
			t.Fatalf("type %q: %v", r, err)
		}
	}
}

func emptyPara() *engine.Node {
	return engine.NewDoc(engine.NewNode(engine.TypeParagraph, nil))
}

func onlyRun(t *testing.T, ed *runtime.Editor) *engine.Node {
	t.Helper()
	block := ed.State().Doc.Child(0)
	if block.ChildCount() != 1 {
		t.Fatalf("runs = %d, want 1", block.ChildCount())
	}
	return block.Child(0)
}

func TestBoldShorthand(t *testing.T) {
	ed := setup(t, emptyPara(), 1)
	typeText(t, ed, "**bold**")

	run := onlyRun(t, ed)
	if run.Text != "bold" {
		t.Fatalf("text = %q, want bold", run.Text)
	}
	if !engine.ContainsMark(run.Marks, engine.Mark{Type: engine.MarkBold}) {
		t.Error("run should carry the bold mark")
	}
	if got := ed.State().Sel.Head; got != 5 {
		t.Errorf("cursor = %d, want 5", got)
	}
	if marks := ed.State().TypingMarks(); len(marks) != 0 {
		t.Errorf("typing marks = %d, want 0 after formatting", len(marks))
	}
}

func TestItalicShorthand(t *testing.T) {
	ed := setup(t, emptyPara(), 1)
	typeText(t, ed, "*i*")
	run := onlyRun(t, ed)
	if run.Text != "i" || !engine.ContainsMark(run.Marks, engine.Mark{Type: engine.MarkItalic}) {
		t.Errorf("run = %q marks %v, want italic i", run.Text, run.Marks)
	}
}

func TestCodeShorthand(t *testing.T) {
	ed := setup(t, emptyPara(), 1)
	typeText(t, ed, "a `x`")
	block := ed.State().Doc.Child(0)
	if block.ChildCount() != 2 {
		t.Fatalf("runs = %d, want 2", block.ChildCount())
	}
	if block.Child(0).Text != "a " {
		t.Errorf("prefix = %q, want %q", block.Child(0).Text, "a ")
	}
	code := block.Child(1)
	if code.Text != "x" || !engine.ContainsMark(code.Marks, engine.Mark{Type: engine.MarkCode}) {
		t.Errorf("run = %q marks %v, want code x", code.Text, code.Marks)
	}
}

func TestStrikeShorthand(t *testing.T) {
	ed := setup(t, emptyPara(), 1)
	typeText(t, ed, "~~s~~")
	run := onlyRun(t, ed)
	if run.Text != "s" || !engine.ContainsMark(run.Marks, engine.Mark{Type: engine.MarkStrike}) {
		t.Errorf("run = %q marks %v, want struck s", run.Text, run.Marks)
	}
}

func TestIncompleteBoldNotItalic(t *testing.T) {
	ed := setup(t, emptyPara(), 1)
	typeText(t, ed, "**b*")
	// The lookbehind must keep *b* from formatting while ** is still open.
	if got := ed.State().Doc.Child(0).TextContent(); got != "**b*" {
		t.Errorf("text = %q, want raw %q", got, "**b*")
	}
}

func TestProgrammaticInsertIgnored(t *testing.T) {
	ed := setup(t, emptyPara(), 1)
	tr := ed.State().Tr().InsertText(1, "**bold**").SetSelection(engine.Collapsed(9))
	if err := ed.Dispatch(tr); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if got := ed.State().Doc.Child(0).TextContent(); got != "**bold**" {
		t.Errorf("text = %q, want untouched shorthand", got)
	}
}

func TestCodeBlockIgnored(t *testing.T) {
	doc := engine.NewDoc(engine.NewNode(engine.TypeCodeBlock, nil))
	ed := setup(t, doc, 1)
	typeText(t, ed, "**x**")
	if got := ed.State().Doc.Child(0).TextContent(); got != "**x**" {
		t.Errorf("text = %q, want raw shorthand in code block", got)
	}
}

func TestShorthandAfterMarkedRunIgnored(t *testing.T) {
	bold := engine.Mark{Type: engine.MarkBold}
	doc := engine.NewDoc(engine.NewNode(engine.TypeParagraph, nil, engine.NewText("*a", bold)))
	ed := setup(t, doc, 3)
	// The closing * must not pair with the * inside the bold run.
	typeText(t, ed, "b*")
	block := ed.State().Doc.Child(0)
	if block.TextContent() != "*ab*" {
		t.Errorf("text = %q, want %q", block.TextContent(), "*ab*")
	}
	for i := 0; i < block.ChildCount(); i++ {
		if engine.ContainsMark(block.Child(i).Marks, engine.Mark{Type: engine.MarkItalic}) {
			t.Error("no run should have gained the italic mark")
		}
	}
}
