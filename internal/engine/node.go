// Package engine is the structured-document engine the editing plugins are
// hosted on: a tree of nodes and text runs carrying marks, integer positions
// addressing the gaps between tokens, and transactions as the only way the
// document may change.
//
// Positions follow the token scheme: entering or leaving a non-leaf node
// costs one token each, a leaf atom costs one token, and a text node costs
// one token per rune. The document node itself contributes no tokens, so
// position 0 is the gap before the first block.
package engine

import "strings"

// Node types understood by the reference schema.
const (
	TypeDoc        = "doc"
	TypeParagraph  = "paragraph"
	TypeHeading    = "heading"
	TypeCodeBlock  = "codeBlock"
	TypeBlockquote = "blockquote"
	TypeBulletList = "bulletList"
	TypeListItem   = "listItem"
	TypeTable      = "table"
	TypeTableRow   = "tableRow"
	TypeTableCell  = "tableCell"
	TypeDivider    = "divider"
	TypeHardBreak  = "hardBreak"
	TypeImage      = "image"
	TypeVideo      = "video"
	TypeAudio      = "audio"
	TypeMention    = "mention"
	TypeText       = "text"
)

// Mark types.
const (
	MarkBold   = "bold"
	MarkItalic = "italic"
	MarkCode   = "code"
	MarkStrike = "strike"
	MarkLink   = "link"
)

// Mark is an inline formatting attribute applied to a run of text.
type Mark struct {
	Type  string
	Attrs map[string]any
}

// Eq reports whether two marks have the same type and attributes.
func (m Mark) Eq(other Mark) bool {
	if m.Type != other.Type || len(m.Attrs) != len(other.Attrs) {
		return false
	}
	for k, v := range m.Attrs {
		if other.Attrs[k] != v {
			return false
		}
	}
	return true
}

// MarksEq reports whether two mark sets are equal, ignoring order.
func MarksEq(a, b []Mark) bool {
	if len(a) != len(b) {
		return false
	}
	for _, m := range a {
		if !ContainsMark(b, m) {
			return false
		}
	}
	return true
}

// ContainsMark reports whether set contains a mark equal to m.
func ContainsMark(set []Mark, m Mark) bool {
	for _, o := range set {
		if o.Eq(m) {
			return true
		}
	}
	return false
}

// AddMark returns set with m added, unless an equal mark is already present.
func AddMark(set []Mark, m Mark) []Mark {
	if ContainsMark(set, m) {
		return set
	}
	out := make([]Mark, len(set), len(set)+1)
	copy(out, set)
	return append(out, m)
}

// RemoveMark returns set with any mark of m's type removed.
func RemoveMark(set []Mark, markType string) []Mark {
	var out []Mark
	for _, o := range set {
		if o.Type != markType {
			out = append(out, o)
		}
	}
	return out
}

// Node is a document node. Text nodes carry Text and Marks; leaf atoms carry
// only Attrs; everything else carries Content.
type Node struct {
	Type    string
	Attrs   map[string]any
	Marks   []Mark
	Text    string
	Content []*Node
}

// leafAtoms are non-text nodes of size 1 with no content.
var leafAtoms = map[string]bool{
	TypeDivider:   true,
	TypeHardBreak: true,
	TypeImage:     true,
	TypeVideo:     true,
	TypeAudio:     true,
	TypeMention:   true,
}

// textblocks are nodes whose content is inline (text runs and inline atoms).
var textblocks = map[string]bool{
	TypeParagraph: true,
	TypeHeading:   true,
	TypeCodeBlock: true,
}

// Text builds a text node carrying the given marks.
func NewText(text string, marks ...Mark) *Node {
	return &Node{Type: TypeText, Text: text, Marks: marks}
}

// NewNode builds a non-text node.
func NewNode(typ string, attrs map[string]any, content ...*Node) *Node {
	return &Node{Type: typ, Attrs: attrs, Content: content}
}

// NewDoc builds a document node from top-level blocks.
func NewDoc(blocks ...*Node) *Node {
	return &Node{Type: TypeDoc, Content: blocks}
}

// IsText reports whether n is a text node.
func (n *Node) IsText() bool { return n.Type == TypeText }

// IsAtom reports whether n is a leaf atom (size 1, no content).
func (n *Node) IsAtom() bool { return leafAtoms[n.Type] }

// IsTextblock reports whether n holds inline content directly.
func (n *Node) IsTextblock() bool { return textblocks[n.Type] }

// IsBlock reports whether n is a block-level node.
func (n *Node) IsBlock() bool {
	return !n.IsText() && n.Type != TypeMention && n.Type != TypeHardBreak
}

// NodeSize returns the token count this node occupies in its parent.
func (n *Node) NodeSize() int {
	if n.IsText() {
		return len([]rune(n.Text))
	}
	if n.IsAtom() {
		return 1
	}
	if n.Type == TypeDoc {
		return n.ContentSize()
	}
	return 2 + n.ContentSize()
}

// ContentSize returns the combined size of the node's children.
func (n *Node) ContentSize() int {
	size := 0
	for _, c := range n.Content {
		size += c.NodeSize()
	}
	return size
}

// ChildCount returns the number of children.
func (n *Node) ChildCount() int { return len(n.Content) }

// Child returns the i'th child, or nil if out of range.
func (n *Node) Child(i int) *Node {
	if i < 0 || i >= len(n.Content) {
		return nil
	}
	return n.Content[i]
}

// TextContent returns the concatenated text of the subtree.
func (n *Node) TextContent() string {
	if n.IsText() {
		return n.Text
	}
	var b strings.Builder
	for _, c := range n.Content {
		b.WriteString(c.TextContent())
	}
	return b.String()
}

// Copy returns a shallow copy of the node with a fresh content slice.
func (n *Node) Copy() *Node {
	out := *n
	out.Content = make([]*Node, len(n.Content))
	copy(out.Content, n.Content)
	return &out
}

// WithContent returns a copy of the node carrying the given children.
func (n *Node) WithContent(content []*Node) *Node {
	out := *n
	out.Content = content
	return &out
}

// WithMarks returns a copy of a text node carrying the given marks.
func (n *Node) WithMarks(marks []Mark) *Node {
	out := *n
	out.Marks = marks
	return &out
}

// cutText returns the [from, to) rune slice of a text node as a new node,
// or nil when the slice is empty.
func (n *Node) cutText(from, to int) *Node {
	runes := []rune(n.Text)
	if from < 0 {
		from = 0
	}
	if to > len(runes) {
		to = len(runes)
	}
	if from >= to {
		return nil
	}
	return NewText(string(runes[from:to]), n.Marks...)
}

// mergeInline joins adjacent text nodes with equal mark sets and drops empty
// text nodes.
func mergeInline(nodes []*Node) []*Node {
	var out []*Node
	for _, n := range nodes {
		if n == nil || (n.IsText() && n.Text == "") {
			continue
		}
		if len(out) > 0 {
			last := out[len(out)-1]
			if last.IsText() && n.IsText() && MarksEq(last.Marks, n.Marks) {
				out[len(out)-1] = NewText(last.Text+n.Text, last.Marks...)
				continue
			}
		}
		out = append(out, n)
	}
	return out
}
