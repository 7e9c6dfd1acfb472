package engine

import (
	"errors"
	"fmt"
)

// Step is a single primitive document mutation.
type Step interface {
	Apply(doc *Node) (*Node, StepMap, error)
}

// StepMap describes how one step moves positions around.
type StepMap struct {
	Start   int
	OldSize int
	NewSize int
}

// Map remaps a position through the step. assoc controls which side a
// position at a mutation boundary sticks to: negative keeps it before
// inserted content, non-negative moves it after.
func (m StepMap) Map(pos, assoc int) int {
	switch {
	case pos < m.Start:
		return pos
	case pos == m.Start:
		if assoc < 0 {
			return pos
		}
		return m.Start + m.NewSize
	case pos >= m.Start+m.OldSize:
		return pos + m.NewSize - m.OldSize
	default:
		if assoc < 0 {
			return m.Start
		}
		return m.Start + m.NewSize
	}
}

// Mapping is the composed position remapping of a transaction's steps.
type Mapping struct {
	maps []StepMap
}

// Map remaps pos through every step in order.
func (m *Mapping) Map(pos, assoc int) int {
	for _, sm := range m.maps {
		pos = sm.Map(pos, assoc)
	}
	return pos
}

// ReplaceStep replaces [From, To) with the given content. Two forms are
// supported: an inline splice where both ends sit in the same textblock and
// the content is inline, and a block splice where both ends sit at top-level
// block boundaries and the content is blocks.
type ReplaceStep struct {
	From    int
	To      int
	Content []*Node
}

func contentSize(nodes []*Node) int {
	size := 0
	for _, n := range nodes {
		size += n.NodeSize()
	}
	return size
}

func allInline(nodes []*Node) bool {
	for _, n := range nodes {
		if !n.IsText() && n.Type != TypeMention && n.Type != TypeHardBreak {
			return false
		}
	}
	return true
}

func allBlocks(nodes []*Node) bool {
	for _, n := range nodes {
		if n.IsText() || !n.IsBlock() {
			return false
		}
	}
	return true
}

// Apply implements Step.
func (s ReplaceStep) Apply(doc *Node) (*Node, StepMap, error) {
	if s.From > s.To {
		return nil, StepMap{}, fmt.Errorf("replace range inverted: %d > %d", s.From, s.To)
	}
	rf, err := doc.Resolve(s.From)
	if err != nil {
		return nil, StepMap{}, err
	}
	rt, err := doc.Resolve(s.To)
	if err != nil {
		return nil, StepMap{}, err
	}
	sm := StepMap{Start: s.From, OldSize: s.To - s.From, NewSize: contentSize(s.Content)}

	// Inline splice inside one textblock.
	df, dt := rf.Depth(), rt.Depth()
	if df == dt && rf.Start(df) == rt.Start(dt) && rf.Parent().IsTextblock() && allInline(s.Content) {
		next, err := replaceInline(doc, rf, rt, s.Content)
		if err != nil {
			return nil, StepMap{}, err
		}
		return next, sm, nil
	}

	// Block splice at the top level.
	if df == 0 && dt == 0 && allBlocks(s.Content) {
		from, to := rf.Index(0), rt.Index(0)
		content := make([]*Node, 0, len(doc.Content)-(to-from)+len(s.Content))
		content = append(content, doc.Content[:from]...)
		content = append(content, s.Content...)
		content = append(content, doc.Content[to:]...)
		return doc.WithContent(content), sm, nil
	}

	return nil, StepMap{}, errors.New("replace range does not fit the document structure")
}

// replaceInline rebuilds the textblock both resolved positions share.
func replaceInline(doc *Node, rf, rt *ResolvedPos, content []*Node) (*Node, error) {
	block := rf.Parent()
	fromOff, toOff := rf.ParentOffset, rt.ParentOffset

	var before, after []*Node
	offset := 0
	for _, c := range block.Content {
		size := c.NodeSize()
		end := offset + size
		if end <= fromOff {
			before = append(before, c)
		} else if offset < fromOff && c.IsText() {
			if pre := c.cutText(0, fromOff-offset); pre != nil {
				before = append(before, pre)
			}
		}
		if offset >= toOff {
			after = append(after, c)
		} else if end > toOff && c.IsText() {
			if post := c.cutText(toOff-offset, size); post != nil {
				after = append(after, post)
			}
		}
		offset = end
	}
	rebuilt := make([]*Node, 0, len(before)+len(content)+len(after))
	rebuilt = append(rebuilt, before...)
	rebuilt = append(rebuilt, content...)
	rebuilt = append(rebuilt, after...)
	return rebuildPath(doc, rf, block.WithContent(mergeInline(rebuilt))), nil
}

// rebuildPath replaces the innermost node of the resolved path with repl,
// copying ancestors up to the document root.
func rebuildPath(doc *Node, rp *ResolvedPos, repl *Node) *Node {
	node := repl
	for depth := rp.Depth(); depth > 0; depth-- {
		parent := rp.Node(depth - 1)
		content := make([]*Node, len(parent.Content))
		copy(content, parent.Content)
		content[rp.Index(depth-1)] = node
		node = parent.WithContent(content)
	}
	return node
}

// AddMarkStep adds a mark to the inline content in [From, To). Both ends must
// sit in the same textblock.
type AddMarkStep struct {
	From int
	To   int
	Mark Mark
}

// Apply implements Step.
func (s AddMarkStep) Apply(doc *Node) (*Node, StepMap, error) {
	return applyMark(doc, s.From, s.To, func(marks []Mark) []Mark {
		return AddMark(marks, s.Mark)
	})
}

// RemoveMarkStep removes marks of the given type from [From, To).
type RemoveMarkStep struct {
	From     int
	To       int
	MarkType string
}

// Apply implements Step.
func (s RemoveMarkStep) Apply(doc *Node) (*Node, StepMap, error) {
	return applyMark(doc, s.From, s.To, func(marks []Mark) []Mark {
		return RemoveMark(marks, s.MarkType)
	})
}

func applyMark(doc *Node, from, to int, transform func([]Mark) []Mark) (*Node, StepMap, error) {
	rf, err := doc.Resolve(from)
	if err != nil {
		return nil, StepMap{}, err
	}
	rt, err := doc.Resolve(to)
	if err != nil {
		return nil, StepMap{}, err
	}
	if rf.Depth() != rt.Depth() || rf.Start(rf.Depth()) != rt.Start(rt.Depth()) || !rf.Parent().IsTextblock() {
		return nil, StepMap{}, errors.New("mark range must stay inside one textblock")
	}
	block := rf.Parent()
	fromOff, toOff := rf.ParentOffset, rt.ParentOffset

	var rebuilt []*Node
	offset := 0
	for _, c := range block.Content {
		size := c.NodeSize()
		end := offset + size
		if !c.IsText() || end <= fromOff || offset >= toOff {
			rebuilt = append(rebuilt, c)
		} else {
			lo, hi := 0, size
			if fromOff > offset {
				lo = fromOff - offset
			}
			if toOff < end {
				hi = toOff - offset
			}
			if pre := c.cutText(0, lo); pre != nil {
				rebuilt = append(rebuilt, pre)
			}
			if mid := c.cutText(lo, hi); mid != nil {
				rebuilt = append(rebuilt, mid.WithMarks(transform(c.Marks)))
			}
			if post := c.cutText(hi, size); post != nil {
				rebuilt = append(rebuilt, post)
			}
		}
		offset = end
	}
	next := rebuildPath(doc, rf, block.WithContent(mergeInline(rebuilt)))
	return next, StepMap{Start: from, OldSize: 0, NewSize: 0}, nil
}

// Transaction is an atomic, ordered document mutation plus metadata, and the
// only way state may change. Steps apply eagerly so later steps address the
// already-mutated document.
type Transaction struct {
	startDoc    *Node
	doc         *Node
	steps       []Step
	mapping     Mapping
	sel         *Selection
	storedMarks []Mark
	storedSet   bool
	meta        map[string]any
	err         error
}

// Tr starts a transaction from the state's current document.
func (s *State) Tr() *Transaction {
	return &Transaction{startDoc: s.Doc, doc: s.Doc}
}

// Doc returns the document with all steps so far applied.
func (t *Transaction) Doc() *Node { return t.doc }

// StartDoc returns the document the transaction started from.
func (t *Transaction) StartDoc() *Node { return t.startDoc }

// DocChanged reports whether any step mutated the document.
func (t *Transaction) DocChanged() bool { return len(t.steps) > 0 }

// Mapping returns the composed position mapping of the steps so far.
func (t *Transaction) Mapping() *Mapping { return &t.mapping }

// Err returns the first step error, if any. A transaction with an error is
// rejected at dispatch.
func (t *Transaction) Err() error { return t.err }

// Step applies a step, recording its position map.
func (t *Transaction) Step(s Step) *Transaction {
	if t.err != nil {
		return t
	}
	next, sm, err := s.Apply(t.doc)
	if err != nil {
		t.err = err
		return t
	}
	t.doc = next
	t.steps = append(t.steps, s)
	t.mapping.maps = append(t.mapping.maps, sm)
	return t
}

// Delete removes [from, to).
func (t *Transaction) Delete(from, to int) *Transaction {
	if from == to {
		return t
	}
	return t.Step(ReplaceStep{From: from, To: to})
}

// InsertText inserts text at pos carrying the given marks.
func (t *Transaction) InsertText(pos int, text string, marks ...Mark) *Transaction {
	if text == "" {
		return t
	}
	return t.Step(ReplaceStep{From: pos, To: pos, Content: []*Node{NewText(text, marks...)}})
}

// ReplaceWith replaces [from, to) with the given nodes.
func (t *Transaction) ReplaceWith(from, to int, nodes ...*Node) *Transaction {
	return t.Step(ReplaceStep{From: from, To: to, Content: nodes})
}

// AddMark adds a mark across [from, to).
func (t *Transaction) AddMark(from, to int, mark Mark) *Transaction {
	return t.Step(AddMarkStep{From: from, To: to, Mark: mark})
}

// RemoveMark removes marks of markType across [from, to).
func (t *Transaction) RemoveMark(from, to int, markType string) *Transaction {
	return t.Step(RemoveMarkStep{From: from, To: to, MarkType: markType})
}

// SetSelection sets an explicit selection for the resulting state.
func (t *Transaction) SetSelection(sel Selection) *Transaction {
	t.sel = &sel
	return t
}

// SetStoredMarks sets the marks applied to the next typed character. An empty
// non-nil slice means "no marks".
func (t *Transaction) SetStoredMarks(marks []Mark) *Transaction {
	t.storedMarks = marks
	t.storedSet = true
	return t
}

// SetMeta attaches metadata to the transaction.
func (t *Transaction) SetMeta(key string, value any) *Transaction {
	if t.meta == nil {
		t.meta = map[string]any{}
	}
	t.meta[key] = value
	return t
}

// GetMeta returns the metadata stored under key, or nil.
func (t *Transaction) GetMeta(key string) any {
	if t.meta == nil {
		return nil
	}
	return t.meta[key]
}
