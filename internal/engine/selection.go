package engine

// Selection is a text selection between two positions. Anchor is the fixed
// side, Head the moving side; a collapsed selection has Anchor == Head.
type Selection struct {
	Anchor int
	Head   int
}

// Collapsed returns a cursor selection at pos.
func Collapsed(pos int) Selection { return Selection{Anchor: pos, Head: pos} }

// From returns the lower bound of the selection.
func (s Selection) From() int {
	if s.Anchor < s.Head {
		return s.Anchor
	}
	return s.Head
}

// To returns the upper bound of the selection.
func (s Selection) To() int {
	if s.Anchor > s.Head {
		return s.Anchor
	}
	return s.Head
}

// Empty reports whether the selection is collapsed.
func (s Selection) Empty() bool { return s.Anchor == s.Head }

// Map returns the selection remapped through m.
func (s Selection) Map(m *Mapping) Selection {
	return Selection{Anchor: m.Map(s.Anchor, -1), Head: m.Map(s.Head, -1)}
}

// clamp keeps the selection inside the document bounds.
func (s Selection) clamp(doc *Node) Selection {
	max := doc.ContentSize()
	if s.Anchor > max {
		s.Anchor = max
	}
	if s.Head > max {
		s.Head = max
	}
	if s.Anchor < 0 {
		s.Anchor = 0
	}
	if s.Head < 0 {
		s.Head = 0
	}
	return s
}
