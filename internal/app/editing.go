package app

import (
	"strings"
	"unicode/utf8"

	"github.com/virtues-os/scribe/internal/engine"
	"github.com/virtues-os/scribe/internal/plugin"
)

// dispatch runs a transaction and tracks document dirtiness.
func (m *Model) dispatch(tr *engine.Transaction) {
	changed := tr.DocChanged()
	if err := m.ed.Dispatch(tr); err != nil {
		m.log.Warn("dispatch rejected", "error", err)
		return
	}
	if changed {
		m.dirty = true
	}
}

// insertText types text at the selection, carrying the stored marks and
// tagging the transaction as direct input so autoformat sees it.
func (m *Model) insertText(text string) {
	st := m.ed.State()
	from, to := st.Sel.From(), st.Sel.To()
	tr := st.Tr()
	if from != to {
		tr.Delete(from, to)
	}
	tr.InsertText(from, text, st.TypingMarks()...).
		SetSelection(engine.Collapsed(from + utf8.RuneCountInString(text))).
		SetMeta(plugin.MetaInputType, "insertText")
	m.dispatch(tr)
}

// insertPastedText inserts clipboard text, turning line breaks into hard
// breaks within the current block.
func (m *Model) insertPastedText(text string) {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	lines := strings.Split(text, "\n")

	st := m.ed.State()
	from, to := st.Sel.From(), st.Sel.To()
	marks := st.TypingMarks()

	var nodes []*engine.Node
	size := 0
	for i, line := range lines {
		if i > 0 {
			nodes = append(nodes, engine.NewNode(engine.TypeHardBreak, nil))
			size++
		}
		if line != "" {
			nodes = append(nodes, engine.NewText(line, marks...))
			size += utf8.RuneCountInString(line)
		}
	}
	if len(nodes) == 0 {
		return
	}
	tr := st.Tr().
		ReplaceWith(from, to, nodes...).
		SetSelection(engine.Collapsed(from + size))
	m.dispatch(tr)
}

// deleteBackward removes the selection, or the token before a collapsed
// cursor. At a block start it merges the block into a preceding textblock.
func (m *Model) deleteBackward() {
	st := m.ed.State()
	from, to := st.Sel.From(), st.Sel.To()
	if from != to {
		m.dispatch(st.Tr().Delete(from, to).SetSelection(engine.Collapsed(from)))
		return
	}
	head := st.Sel.Head
	rp, err := st.Doc.Resolve(head)
	if err != nil {
		return
	}
	d := rp.Depth()
	if d >= 1 && head > rp.Start(d) {
		m.dispatch(st.Tr().Delete(head-1, head).SetSelection(engine.Collapsed(head - 1)))
		return
	}
	if d == 1 && head == rp.Start(1) {
		m.mergeWithPrevious(rp)
	}
}

// mergeWithPrevious joins the cursor's top-level textblock into the block
// before it, or deletes a preceding atom block.
func (m *Model) mergeWithPrevious(rp *engine.ResolvedPos) {
	st := m.ed.State()
	idx := rp.Index(0)
	if idx == 0 {
		return
	}
	cur := rp.Node(1)
	prev := st.Doc.Child(idx - 1)
	before := rp.Before(1)
	prevStart := before - prev.NodeSize()

	if prev.IsAtom() {
		// Backspacing into a divider or media block removes it.
		m.dispatch(st.Tr().Delete(prevStart, before).SetSelection(engine.Collapsed(rp.Start(1) - prev.NodeSize())))
		return
	}
	if !prev.IsTextblock() || !cur.IsTextblock() {
		return
	}
	merged := prev.WithContent(append(append([]*engine.Node{}, prev.Content...), cur.Content...))
	cursor := prevStart + 1 + prev.ContentSize()
	m.dispatch(st.Tr().
		ReplaceWith(prevStart, rp.After(1), merged).
		SetSelection(engine.Collapsed(cursor)))
}

// deleteForward removes the selection or the token after the cursor.
func (m *Model) deleteForward() {
	st := m.ed.State()
	from, to := st.Sel.From(), st.Sel.To()
	if from != to {
		m.dispatch(st.Tr().Delete(from, to).SetSelection(engine.Collapsed(from)))
		return
	}
	head := st.Sel.Head
	rp, err := st.Doc.Resolve(head)
	if err != nil {
		return
	}
	d := rp.Depth()
	if d >= 1 && head < rp.End(d) {
		m.dispatch(st.Tr().Delete(head, head+1).SetSelection(engine.Collapsed(head)))
	}
}

// splitBlock breaks the textblock at the cursor into two. Inside a code
// block it inserts a literal newline instead.
func (m *Model) splitBlock() {
	st := m.ed.State()
	head := st.Sel.Head
	rp, err := st.Doc.Resolve(head)
	if err != nil {
		return
	}
	d := rp.Depth()
	if d < 1 || !rp.Node(d).IsTextblock() {
		return
	}
	block := rp.Node(d)
	if block.Type == engine.TypeCodeBlock {
		m.dispatch(st.Tr().
			InsertText(head, "\n").
			SetSelection(engine.Collapsed(head + 1)))
		return
	}

	offset := head - rp.Start(d)
	left, right := splitInline(block.Content, offset)
	first := block.WithContent(left)
	// The second half is always a paragraph, so pressing enter at the end of
	// a heading starts body text.
	second := engine.NewNode(engine.TypeParagraph, nil, right...)
	before, after := rp.Before(d), rp.After(d)
	m.dispatch(st.Tr().
		ReplaceWith(before, after, first, second).
		SetSelection(engine.Collapsed(before + first.NodeSize() + 1)))
}

// splitInline cuts inline content at a token offset, preserving marks.
func splitInline(content []*engine.Node, offset int) (left, right []*engine.Node) {
	pos := 0
	for _, child := range content {
		size := child.NodeSize()
		switch {
		case pos+size <= offset:
			left = append(left, child)
		case pos >= offset:
			right = append(right, child)
		default:
			// The cut lands inside this text run.
			runes := []rune(child.Text)
			at := offset - pos
			if at > 0 {
				left = append(left, engine.NewText(string(runes[:at]), child.Marks...))
			}
			if at < len(runes) {
				right = append(right, engine.NewText(string(runes[at:]), child.Marks...))
			}
		}
		pos += size
	}
	return left, right
}

// toggleMark flips a mark on the selection, or on the stored marks when the
// selection is collapsed.
func (m *Model) toggleMark(markType string) {
	st := m.ed.State()
	mark := engine.Mark{Type: markType}
	if st.Sel.Empty() {
		marks := st.TypingMarks()
		if engine.ContainsMark(marks, mark) {
			marks = engine.RemoveMark(marks, markType)
		} else {
			marks = engine.AddMark(marks, mark)
		}
		if marks == nil {
			marks = []engine.Mark{}
		}
		m.dispatch(st.Tr().SetStoredMarks(marks))
		return
	}
	from, to := st.Sel.From(), st.Sel.To()
	if rangeHasMark(st.Doc, from, to, markType) {
		m.dispatch(st.Tr().RemoveMark(from, to, markType))
	} else {
		m.dispatch(st.Tr().AddMark(from, to, mark))
	}
}

// rangeHasMark reports whether every text run overlapping [from, to) carries
// the mark type.
func rangeHasMark(doc *engine.Node, from, to int, markType string) bool {
	found := false
	all := true
	var walk func(n *engine.Node, pos int) int
	walk = func(n *engine.Node, pos int) int {
		for _, child := range n.Content {
			switch {
			case child.IsText():
				size := utf8.RuneCountInString(child.Text)
				if pos < to && pos+size > from {
					found = true
					has := false
					for _, mk := range child.Marks {
						if mk.Type == markType {
							has = true
						}
					}
					if !has {
						all = false
					}
				}
				pos += size
			case child.IsAtom():
				pos++
			default:
				pos = walk(child, pos+1) + 1
			}
		}
		return pos
	}
	walk(doc, 0)
	return found && all
}

// moveCursor shifts the head one token, optionally extending the selection.
func (m *Model) moveCursor(delta int, extend bool) {
	st := m.ed.State()
	head := st.Sel.Head + delta
	if head < 0 {
		head = 0
	}
	if max := st.Doc.ContentSize(); head > max {
		head = max
	}
	sel := engine.Collapsed(head)
	if extend {
		sel = engine.Selection{Anchor: st.Sel.Anchor, Head: head}
	}
	m.dispatch(st.Tr().SetSelection(sel))
}

// moveCursorVertical moves the cursor to the nearest position one rendered
// line up or down.
func (m *Model) moveCursorVertical(dy int) {
	st := m.ed.State()
	layout := m.geom.current()
	rect, err := layout.CoordsAtPos(st.Sel.Head)
	if err != nil {
		return
	}
	pos := layout.PosAt(int(rect.Left), int(rect.Top)+dy)
	m.setCursor(pos)
}

// moveToLineEdge jumps to the start or end of the rendered line.
func (m *Model) moveToLineEdge(start bool) {
	st := m.ed.State()
	layout := m.geom.current()
	y := layout.LineOf(st.Sel.Head)
	if y < 0 {
		return
	}
	line := layout.Lines()[y]
	if start {
		m.setCursor(line.Start)
	} else {
		m.setCursor(line.End)
	}
}

func (m *Model) selectAll() {
	st := m.ed.State()
	m.dispatch(st.Tr().SetSelection(engine.Selection{Anchor: 0, Head: st.Doc.ContentSize()}))
}

func (m *Model) setCursor(pos int) {
	st := m.ed.State()
	if pos < 0 {
		pos = 0
	}
	if max := st.Doc.ContentSize(); pos > max {
		pos = max
	}
	m.dispatch(st.Tr().SetSelection(engine.Collapsed(pos)))
}

// dismiss collapses the selection, which also lets the selection toolbar
// reducer hide itself.
func (m *Model) dismiss() {
	st := m.ed.State()
	if st.Sel.Empty() {
		return
	}
	m.dispatch(st.Tr().SetSelection(engine.Collapsed(st.Sel.Head)))
}

// deriveTitle takes the first textblock's content as the document title.
func deriveTitle(doc *engine.Node, fallback string) string {
	for i := 0; i < doc.ChildCount(); i++ {
		child := doc.Child(i)
		if child.IsTextblock() {
			if title := strings.TrimSpace(child.TextContent()); title != "" {
				return title
			}
		}
	}
	return fallback
}
