package engine

// State is an immutable snapshot of the document plus selection. StoredMarks
// is the mark set applied to the next typed character; nil means "derive from
// the text before the cursor", an empty non-nil slice means "no marks".
type State struct {
	Doc         *Node
	Sel         Selection
	StoredMarks []Mark
}

// NewState builds a state with a collapsed selection at the document start.
func NewState(doc *Node) *State {
	return &State{Doc: doc, Sel: Collapsed(0)}
}

// Apply produces the next state from a transaction. The selection is the
// transaction's explicit selection if set, otherwise the old selection mapped
// through the transaction's steps. Stored marks are cleared by any
// document-changing transaction that does not set them.
func (s *State) Apply(tr *Transaction) *State {
	next := &State{Doc: tr.doc}
	switch {
	case tr.sel != nil:
		next.Sel = tr.sel.clamp(next.Doc)
	default:
		next.Sel = s.Sel.Map(tr.Mapping()).clamp(next.Doc)
	}
	switch {
	case tr.storedSet:
		next.StoredMarks = tr.storedMarks
	case !tr.DocChanged():
		next.StoredMarks = s.StoredMarks
	}
	return next
}

// TypingMarks returns the marks text typed at the current cursor should
// carry.
func (s *State) TypingMarks() []Mark {
	if s.StoredMarks != nil {
		return s.StoredMarks
	}
	return s.Doc.MarksAt(s.Sel.Head)
}

// Rect is a screen-coordinate rectangle.
type Rect struct {
	Left   float64
	Top    float64
	Right  float64
	Bottom float64
}

// Width returns the rect width.
func (r Rect) Width() float64 { return r.Right - r.Left }

// Geometry maps document positions to screen coordinates. It is provided by
// the rendering host; implementations must return an error rather than a
// zero rect when a position cannot be resolved.
type Geometry interface {
	// CoordsAtPos returns the caret rectangle at a position.
	CoordsAtPos(pos int) (Rect, error)
	// NodeRect returns the bounding box of the node starting at pos.
	NodeRect(pos int) (Rect, error)
}
