package slashmenu

import (
	"testing"

	"github.com/virtues-os/scribe/internal/engine"
	"github.com/virtues-os/scribe/internal/plugin"
	"github.com/virtues-os/scribe/internal/plugins/trigger"
	"github.com/virtues-os/scribe/internal/runtime"
)

func setup(t *testing.T, doc *engine.Node, cursor int) (*runtime.Editor, *Plugin, *int) {
	t.Helper()
	closes := 0
	p := New(NewRegistry(), trigger.Callbacks{OnClose: func() { closes++ }})
	ed := runtime.New(doc, []plugin.Plugin{p}, runtime.Options{})
	if err := ed.Dispatch(ed.State().Tr().SetSelection(engine.Collapsed(cursor))); err != nil {
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

func docWithText(text string) *engine.Node {
	var content []*engine.Node
	if text != "" {
		content = append(content, engine.NewText(text))
	}
	return engine.NewDoc(engine.NewNode(engine.TypeParagraph, nil, content...))
}

func find(t *testing.T, r *Registry, id string) Command {
	t.Helper()
	for _, c := range r.All() {
		if c.ID == id {
			return c
		}
	}
	t.Fatalf("command %q not registered", id)
	return Command{}
}

func TestFilter(t *testing.T) {
	r := NewRegistry()
	tests := []struct {
		query string
		want  []string
	}{
		{"", []string{"heading1", "heading2", "heading3", "bulletList", "blockquote", "codeBlock", "divider", "table"}},
		{"head", []string{"heading1", "heading2", "heading3"}},
		{"h2", []string{"heading2"}},
		{"QUOTE", []string{"blockquote"}},
		{"zzz", nil},
	}
	for _, tt := range tests {
		t.Run("query "+tt.query, func(t *testing.T) {
			got := r.Filter(tt.query)
			if len(got) != len(tt.want) {
				t.Fatalf("Filter(%q) returned %d commands, want %d", tt.query, len(got), len(tt.want))
			}
			for i, id := range tt.want {
				if got[i].ID != id {
					t.Errorf("match %d = %q, want %q", i, got[i].ID, id)
				}
			}
		})
	}
}

func TestExecuteHeading(t *testing.T) {
	ed, p, closes := setup(t, docWithText("hello"), 6)
	typeText(t, ed, " /h2")
	if got := p.Session().Query; got != "h2" {
		t.Fatalf("query = %q, want h2", got)
	}
	if !p.Execute(find(t, p.Registry(), "heading2")) {
		t.Fatal("Execute failed")
	}
	st := ed.State()
	block := st.Doc.Child(0)
	if block.Type != engine.TypeHeading {
		t.Fatalf("block = %s, want heading", block.Type)
	}
	if block.Attrs["level"] != 2 {
		t.Errorf("level = %v, want 2", block.Attrs["level"])
	}
	if got := block.TextContent(); got != "hello " {
		t.Errorf("text = %q, want %q", got, "hello ")
	}
	if p.Session().Active {
		t.Error("session should close after execute")
	}
	if *closes != 1 {
		t.Errorf("closes = %d, want exactly 1", *closes)
	}
}

func TestExecuteDivider(t *testing.T) {
	ed, p, _ := setup(t, docWithText("hi"), 3)
	typeText(t, ed, " /")
	if !p.Execute(find(t, p.Registry(), "divider")) {
		t.Fatal("Execute failed")
	}
	doc := ed.State().Doc
	if doc.ChildCount() != 3 {
		t.Fatalf("blocks = %d, want paragraph + divider + paragraph", doc.ChildCount())
	}
	if doc.Child(1).Type != engine.TypeDivider {
		t.Errorf("middle block = %s, want divider", doc.Child(1).Type)
	}
	if doc.Child(2).Type != engine.TypeParagraph {
		t.Errorf("last block = %s, want paragraph", doc.Child(2).Type)
	}
	// Cursor inside the trailing paragraph.
	if got, want := ed.State().Sel.Head, doc.Child(0).NodeSize()+2; got != want {
		t.Errorf("cursor = %d, want %d", got, want)
	}
}

func TestExecuteTable(t *testing.T) {
	ed, p, _ := setup(t, docWithText(""), 1)
	typeText(t, ed, "/tab")
	if !p.Execute(find(t, p.Registry(), "table")) {
		t.Fatal("Execute failed")
	}
	doc := ed.State().Doc
	if doc.ChildCount() != 2 {
		t.Fatalf("blocks = %d, want paragraph + table", doc.ChildCount())
	}
	table := doc.Child(1)
	if table.Type != engine.TypeTable || table.ChildCount() != 2 || table.Child(0).ChildCount() != 2 {
		t.Fatalf("table shape wrong: %s with %d rows", table.Type, table.ChildCount())
	}
	// Cursor inside the first cell's paragraph.
	rp, err := doc.Resolve(ed.State().Sel.Head)
	if err != nil {
		t.Fatalf("resolve cursor: %v", err)
	}
	if !rp.HasAncestor(engine.TypeTable) {
		t.Error("cursor should sit inside the table")
	}
}

func TestExecuteBulletList(t *testing.T) {
	ed, p, _ := setup(t, docWithText("item"), 5)
	typeText(t, ed, " /list")
	if !p.Execute(find(t, p.Registry(), "bulletList")) {
		t.Fatal("Execute failed")
	}
	doc := ed.State().Doc
	list := doc.Child(0)
	if list.Type != engine.TypeBulletList {
		t.Fatalf("block = %s, want bulletList", list.Type)
	}
	para := list.Child(0).Child(0)
	if para.Type != engine.TypeParagraph || para.TextContent() != "item " {
		t.Errorf("list paragraph = %s %q", para.Type, para.TextContent())
	}
}

func TestExecuteCodeBlockDropsMarks(t *testing.T) {
	doc := engine.NewDoc(engine.NewNode(engine.TypeParagraph, nil,
		engine.NewText("bold", engine.Mark{Type: engine.MarkBold})))
	ed, p, _ := setup(t, doc, 5)
	typeText(t, ed, " /code")
	if !p.Execute(find(t, p.Registry(), "codeBlock")) {
		t.Fatal("Execute failed")
	}
	block := ed.State().Doc.Child(0)
	if block.Type != engine.TypeCodeBlock {
		t.Fatalf("block = %s, want codeBlock", block.Type)
	}
	if block.TextContent() != "bold " {
		t.Errorf("text = %q, want %q", block.TextContent(), "bold ")
	}
	if len(block.Child(0).Marks) != 0 {
		t.Error("code block text should carry no marks")
	}
}

func TestExecuteWithoutSession(t *testing.T) {
	ed, p, _ := setup(t, docWithText("x"), 2)
	before := ed.State().Doc
	if p.Execute(find(t, p.Registry(), "divider")) {
		t.Fatal("Execute without a session should report false")
	}
	if ed.State().Doc != before {
		t.Error("document should be untouched")
	}
}
