package engine

import "testing"

func para(text string) *Node {
	return NewNode(TypeParagraph, nil, NewText(text))
}

// doc: paragraph("hello") paragraph("world")
// positions: p1 content spans 1..6, p2 content spans 8..13.
func twoParas() *Node {
	return NewDoc(para("hello"), para("world"))
}

func TestNodeSize(t *testing.T) {
	tests := []struct {
		name string
		node *Node
		want int
	}{
		{"text", NewText("abc"), 3},
		{"unicode text", NewText("héllo"), 5},
		{"empty paragraph", NewNode(TypeParagraph, nil), 2},
		{"paragraph", para("hello"), 7},
		{"divider", NewNode(TypeDivider, nil), 1},
		{"mention", NewNode(TypeMention, map[string]any{"id": "u1"}), 1},
		{"doc", twoParas(), 14},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.node.NodeSize(); got != tt.want {
				t.Errorf("NodeSize() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestResolveDepths(t *testing.T) {
	doc := twoParas()

	r, err := doc.Resolve(3)
	if err != nil {
		t.Fatalf("Resolve(3): %v", err)
	}
	if r.Depth() != 1 {
		t.Fatalf("depth = %d, want 1", r.Depth())
	}
	if r.Parent().Type != TypeParagraph {
		t.Errorf("parent = %s, want paragraph", r.Parent().Type)
	}
	if r.ParentOffset != 2 {
		t.Errorf("parentOffset = %d, want 2", r.ParentOffset)
	}
	if from, to, ok := r.BlockRange(); !ok || from != 1 || to != 6 {
		t.Errorf("BlockRange() = (%d, %d, %v), want (1, 6, true)", from, to, ok)
	}

	// Position 7 is the boundary between the two paragraphs.
	r, err = doc.Resolve(7)
	if err != nil {
		t.Fatalf("Resolve(7): %v", err)
	}
	if r.Depth() != 0 {
		t.Errorf("boundary depth = %d, want 0", r.Depth())
	}
	if r.Index(0) != 1 {
		t.Errorf("boundary index = %d, want 1", r.Index(0))
	}

	if _, err := doc.Resolve(15); err == nil {
		t.Error("expected out-of-range error")
	}
}

func TestResolveTableAncestry(t *testing.T) {
	cell := NewNode(TypeTableCell, nil, para("x"))
	table := NewNode(TypeTable, nil, NewNode(TypeTableRow, nil, cell))
	doc := NewDoc(para("a"), table)

	// Cursor inside the cell paragraph: doc > table > row > cell > paragraph.
	// table starts at 3, row content at 5, cell content at 6, para content at 7.
	r, err := doc.Resolve(8)
	if err != nil {
		t.Fatalf("Resolve(8): %v", err)
	}
	if !r.HasAncestor(TypeTable) {
		t.Error("expected table in depth chain")
	}
	d := r.AncestorOfType(TypeTable)
	if d < 0 {
		t.Fatal("AncestorOfType(table) = -1")
	}
	if got := r.Before(d); got != 3 {
		t.Errorf("table Before() = %d, want 3", got)
	}

	r, err = doc.Resolve(2)
	if err != nil {
		t.Fatalf("Resolve(2): %v", err)
	}
	if r.HasAncestor(TypeTable) {
		t.Error("paragraph cursor should have no table ancestor")
	}
}

func TestTextBetween(t *testing.T) {
	doc := twoParas()
	tests := []struct {
		name     string
		from, to int
		want     string
	}{
		{"inside one block", 2, 5, "ell"},
		{"full first block", 1, 6, "hello"},
		{"across blocks", 4, 11, "lo\nwor"},
		{"empty", 3, 3, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := doc.TextBetween(tt.from, tt.to, "\n"); got != tt.want {
				t.Errorf("TextBetween(%d, %d) = %q, want %q", tt.from, tt.to, got, tt.want)
			}
		})
	}
}

func TestTextBetweenSkipsAtoms(t *testing.T) {
	p := NewNode(TypeParagraph, nil,
		NewText("hi "),
		NewNode(TypeMention, map[string]any{"id": "u1", "label": "sarah"}),
		NewText(" there"),
	)
	doc := NewDoc(p)
	// mention occupies position 4; it contributes no text.
	if got := doc.TextBetween(1, 11, "\n"); got != "hi  there" {
		t.Errorf("TextBetween = %q, want %q", got, "hi  there")
	}
}

func TestCharBefore(t *testing.T) {
	doc := twoParas()
	if c, ok := doc.CharBefore(3); !ok || c != 'e' {
		t.Errorf("CharBefore(3) = (%q, %v), want ('e', true)", c, ok)
	}
	// Block start has no preceding character.
	if _, ok := doc.CharBefore(1); ok {
		t.Error("CharBefore at block start should report false")
	}
}

func TestReplaceInlineInsert(t *testing.T) {
	st := NewState(twoParas())
	tr := st.Tr().InsertText(3, "XY")
	if tr.Err() != nil {
		t.Fatalf("InsertText: %v", tr.Err())
	}
	next := st.Apply(tr)
	if got := next.Doc.Child(0).TextContent(); got != "heXYllo" {
		t.Errorf("text = %q, want heXYllo", got)
	}
	if got := next.Doc.ContentSize(); got != 16 {
		t.Errorf("doc size = %d, want 16", got)
	}
}

func TestReplaceInlineDelete(t *testing.T) {
	st := NewState(twoParas())
	tr := st.Tr().Delete(2, 5)
	if tr.Err() != nil {
		t.Fatalf("Delete: %v", tr.Err())
	}
	if got := tr.Doc().Child(0).TextContent(); got != "ho" {
		t.Errorf("text = %q, want ho", got)
	}
}

func TestReplaceMergesAdjacentRuns(t *testing.T) {
	bold := Mark{Type: MarkBold}
	p := NewNode(TypeParagraph, nil, NewText("ab", bold), NewText("cd", bold))
	st := NewState(NewDoc(p))
	tr := st.Tr().Delete(2, 3) // remove "b"; "a" and "cd" share marks
	if tr.Err() != nil {
		t.Fatalf("Delete: %v", tr.Err())
	}
	block := tr.Doc().Child(0)
	if block.ChildCount() != 1 {
		t.Fatalf("runs = %d, want 1 merged run", block.ChildCount())
	}
	if block.Child(0).Text != "acd" {
		t.Errorf("text = %q, want acd", block.Child(0).Text)
	}
}

func TestBlockSplice(t *testing.T) {
	a, b, c := para("A"), para("B"), para("C")
	st := NewState(NewDoc(a, b, c))
	// Move A after B: delete [0,3), insert at 3 (shifted left by nodeSize 3 → 3).
	tr := st.Tr().Delete(0, 3).ReplaceWith(3, 3, a)
	if tr.Err() != nil {
		t.Fatalf("block splice: %v", tr.Err())
	}
	doc := tr.Doc()
	want := []string{"B", "A", "C"}
	for i, w := range want {
		if got := doc.Child(i).TextContent(); got != w {
			t.Errorf("block %d = %q, want %q", i, got, w)
		}
	}
}

func TestAddRemoveMark(t *testing.T) {
	st := NewState(twoParas())
	bold := Mark{Type: MarkBold}
	tr := st.Tr().AddMark(2, 5, bold)
	if tr.Err() != nil {
		t.Fatalf("AddMark: %v", tr.Err())
	}
	block := tr.Doc().Child(0)
	if block.ChildCount() != 3 {
		t.Fatalf("runs = %d, want 3", block.ChildCount())
	}
	if !ContainsMark(block.Child(1).Marks, bold) {
		t.Error("middle run should be bold")
	}

	next := NewState(tr.Doc())
	tr2 := next.Tr().RemoveMark(2, 5, MarkBold)
	if tr2.Err() != nil {
		t.Fatalf("RemoveMark: %v", tr2.Err())
	}
	if got := tr2.Doc().Child(0).ChildCount(); got != 1 {
		t.Errorf("runs after unmark = %d, want 1", got)
	}
}

func TestMapping(t *testing.T) {
	tests := []struct {
		name  string
		sm    StepMap
		pos   int
		assoc int
		want  int
	}{
		{"before change", StepMap{Start: 5, OldSize: 2, NewSize: 4}, 3, -1, 3},
		{"after change", StepMap{Start: 5, OldSize: 2, NewSize: 4}, 9, -1, 11},
		{"inside deleted, left bias", StepMap{Start: 5, OldSize: 2, NewSize: 0}, 6, -1, 5},
		{"at insertion, left bias", StepMap{Start: 5, OldSize: 0, NewSize: 3}, 5, -1, 5},
		{"at insertion, right bias", StepMap{Start: 5, OldSize: 0, NewSize: 3}, 5, 1, 8},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.sm.Map(tt.pos, tt.assoc); got != tt.want {
				t.Errorf("Map(%d, %d) = %d, want %d", tt.pos, tt.assoc, got, tt.want)
			}
		})
	}
}

func TestSelectionMapsThroughTransaction(t *testing.T) {
	st := NewState(twoParas())
	st.Sel = Collapsed(10)
	tr := st.Tr().InsertText(3, "abc")
	next := st.Apply(tr)
	if next.Sel.Head != 13 {
		t.Errorf("selection = %d, want 13", next.Sel.Head)
	}
}

func TestStoredMarks(t *testing.T) {
	st := NewState(twoParas())
	st.StoredMarks = []Mark{{Type: MarkBold}}

	// Doc change without explicit stored marks clears them.
	next := st.Apply(st.Tr().InsertText(3, "x"))
	if next.StoredMarks != nil {
		t.Error("stored marks should clear on doc change")
	}

	// Explicit empty set means "no marks", and TypingMarks honors it.
	bolded := NewDoc(NewNode(TypeParagraph, nil, NewText("bold", Mark{Type: MarkBold})))
	st2 := NewState(bolded)
	st2.Sel = Collapsed(5)
	if marks := st2.TypingMarks(); len(marks) != 1 {
		t.Fatalf("TypingMarks = %d marks, want 1 (inherited bold)", len(marks))
	}
	next2 := st2.Apply(st2.Tr().SetStoredMarks([]Mark{}))
	if marks := next2.TypingMarks(); len(marks) != 0 {
		t.Errorf("TypingMarks after clear = %d marks, want 0", len(marks))
	}
}

func TestJSONRoundTrip(t *testing.T) {
	doc := NewDoc(
		NewNode(TypeHeading, map[string]any{"level": float64(2)}, NewText("title")),
		NewNode(TypeParagraph, nil, NewText("plain "), NewText("bold", Mark{Type: MarkBold})),
		NewNode(TypeDivider, nil),
	)
	data, err := doc.MarshalJSON()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var back Node
	if err := back.UnmarshalJSON(data); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back.ContentSize() != doc.ContentSize() {
		t.Errorf("size = %d, want %d", back.ContentSize(), doc.ContentSize())
	}
	if got := back.Child(1).Child(1).Marks[0].Type; got != MarkBold {
		t.Errorf("mark = %q, want bold", got)
	}
}
