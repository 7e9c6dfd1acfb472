package engine

import (
	"fmt"
	"strings"
)

// pathEntry records one level of a resolved position: the ancestor node, the
// child index the position points into (or before), and the absolute position
// where the ancestor's content begins.
type pathEntry struct {
	node  *Node
	index int
	start int
}

// ResolvedPos describes where a position sits inside the document tree.
type ResolvedPos struct {
	Pos  int
	path []pathEntry
	// ParentOffset is the offset of Pos into the innermost parent's content.
	ParentOffset int
}

// Resolve maps an absolute position to its place in the tree. Positions run
// from 0 to doc.ContentSize() inclusive.
func (doc *Node) Resolve(pos int) (*ResolvedPos, error) {
	if pos < 0 || pos > doc.ContentSize() {
		return nil, fmt.Errorf("position %d out of range [0, %d]", pos, doc.ContentSize())
	}
	rp := &ResolvedPos{Pos: pos}
	node, start := doc, 0
	for {
		offset := pos - start
		index, childStart := 0, 0
		var child *Node
		for i, c := range node.Content {
			size := c.NodeSize()
			if childStart+size > offset {
				child = c
				index = i
				break
			}
			childStart += size
			index = i + 1
		}
		rp.path = append(rp.path, pathEntry{node: node, index: index, start: start})
		if child == nil || child.IsText() || child.IsAtom() || offset == childStart {
			rp.ParentOffset = offset
			return rp, nil
		}
		node = child
		start = start + childStart + 1
	}
}

// Depth returns the resolved depth; 0 is the document itself.
func (r *ResolvedPos) Depth() int { return len(r.path) - 1 }

// Node returns the ancestor node at the given depth.
func (r *ResolvedPos) Node(depth int) *Node { return r.path[depth].node }

// Parent returns the innermost node containing the position.
func (r *ResolvedPos) Parent() *Node { return r.path[len(r.path)-1].node }

// Index returns the child index the position points into at the given depth.
func (r *ResolvedPos) Index(depth int) int { return r.path[depth].index }

// Start returns the absolute position where the content of the ancestor at
// the given depth begins.
func (r *ResolvedPos) Start(depth int) int { return r.path[depth].start }

// End returns the absolute position where the content of the ancestor at the
// given depth ends.
func (r *ResolvedPos) End(depth int) int {
	return r.path[depth].start + r.path[depth].node.ContentSize()
}

// Before returns the position immediately before the ancestor at the given
// depth. Depth 0 (the document) has no before position.
func (r *ResolvedPos) Before(depth int) int { return r.path[depth].start - 1 }

// After returns the position immediately after the ancestor at the given depth.
func (r *ResolvedPos) After(depth int) int {
	return r.path[depth].start + r.path[depth].node.ContentSize() + 1
}

// HasAncestor reports whether any node on the depth chain has the given type.
func (r *ResolvedPos) HasAncestor(typ string) bool {
	for _, e := range r.path {
		if e.node.Type == typ {
			return true
		}
	}
	return false
}

// AncestorOfType returns the depth of the outermost ancestor with the given
// type, or -1 when the chain has none.
func (r *ResolvedPos) AncestorOfType(typ string) int {
	for d, e := range r.path {
		if e.node.Type == typ {
			return d
		}
	}
	return -1
}

// BlockRange returns the absolute content range of the innermost textblock
// containing the position, and false when the position is not inside one.
func (r *ResolvedPos) BlockRange() (from, to int, ok bool) {
	d := len(r.path) - 1
	if !r.path[d].node.IsTextblock() {
		return 0, 0, false
	}
	return r.Start(d), r.End(d), true
}

// TextBetween returns the document text in [from, to). Block boundaries are
// rendered as blockSep; leaf atoms contribute nothing.
func (doc *Node) TextBetween(from, to int, blockSep string) string {
	var b strings.Builder
	firstBlock := true
	var walk func(n *Node, start int)
	walk = func(n *Node, start int) {
		offset := start
		for _, c := range n.Content {
			size := c.NodeSize()
			end := offset + size
			if end > from && offset < to {
				switch {
				case c.IsText():
					lo, hi := 0, size
					if from > offset {
						lo = from - offset
					}
					if to < end {
						hi = to - offset
					}
					runes := []rune(c.Text)
					b.WriteString(string(runes[lo:hi]))
				case c.IsAtom():
					// atoms are invisible to text extraction
				default:
					if c.IsTextblock() || c.Type == TypeTableCell {
						if !firstBlock && from < offset+1 {
							b.WriteString(blockSep)
						}
						firstBlock = false
					}
					walk(c, offset+1)
				}
			}
			offset = end
		}
	}
	walk(doc, 0)
	return b.String()
}

// CharBefore returns the rune immediately before pos within the innermost
// textblock, and false when pos is at the block start or not preceded by
// plain text.
func (doc *Node) CharBefore(pos int) (rune, bool) {
	rp, err := doc.Resolve(pos)
	if err != nil {
		return 0, false
	}
	from, _, ok := rp.BlockRange()
	if !ok || pos <= from {
		return 0, false
	}
	s := doc.TextBetween(pos-1, pos, "")
	runes := []rune(s)
	if len(runes) != 1 {
		return 0, false
	}
	return runes[0], true
}

// MarksAt returns the marks of the text run immediately before pos, which is
// the conventional mark set for text typed at pos.
func (doc *Node) MarksAt(pos int) []Mark {
	rp, err := doc.Resolve(pos)
	if err != nil {
		return nil
	}
	parent := rp.Parent()
	if !parent.IsTextblock() {
		return nil
	}
	offset := 0
	for _, c := range parent.Content {
		size := c.NodeSize()
		if offset < rp.ParentOffset && rp.ParentOffset <= offset+size && c.IsText() {
			return c.Marks
		}
		offset += size
	}
	return nil
}
