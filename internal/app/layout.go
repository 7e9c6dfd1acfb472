package app

import (
	"fmt"
	"sync"

	"github.com/mattn/go-runewidth"

	"github.com/virtues-os/scribe/internal/engine"
)

// StyleKey encodes the rendering attributes of a cell: the inline marks in
// the low bits plus the block kind above them.
type StyleKey uint16

const (
	StyleBold StyleKey = 1 << iota
	StyleItalic
	StyleCode
	StyleStrike
	StyleLink
	StyleMention
	StyleDeco // prefix glyphs and other non-content cells
)

const (
	BlockText StyleKey = iota << 8
	BlockHeading
	BlockCode
	blockKindMask StyleKey = 0xFF00
)

// BlockKind extracts the block kind bits.
func (k StyleKey) BlockKind() StyleKey { return k & blockKindMask }

func markBits(marks []engine.Mark) StyleKey {
	var k StyleKey
	for _, m := range marks {
		switch m.Type {
		case engine.MarkBold:
			k |= StyleBold
		case engine.MarkItalic:
			k |= StyleItalic
		case engine.MarkCode:
			k |= StyleCode
		case engine.MarkStrike:
			k |= StyleStrike
		case engine.MarkLink:
			k |= StyleLink
		}
	}
	return k
}

// Cell is one rendered terminal cell. Pos is the document position of the
// token the cell displays; prefix cells carry the position of the content
// they introduce.
type Cell struct {
	R     rune
	Pos   int
	Style StyleKey
}

// Line is one visual row of the rendered document.
type Line struct {
	Cells []Cell
	// Start is the smallest document position on the line, End the largest
	// plus one. Lines with no content positions have Start == End.
	Start, End int
}

// Layout is a monospaced projection of a document: every document position
// maps to a terminal cell. It is pure data derived from one document value
// and is rebuilt whenever the document changes.
type Layout struct {
	lines  []Line
	coords map[int]cellAt
	rects  map[int]engine.Rect
}

type cellAt struct{ x, y int }

// NewLayout renders a document into lines and position tables.
func NewLayout(doc *engine.Node) *Layout {
	l := &Layout{
		coords: make(map[int]cellAt),
		rects:  make(map[int]engine.Rect),
	}
	pos := 0
	for i := 0; i < doc.ChildCount(); i++ {
		child := doc.Child(i)
		l.layoutBlock(child, pos, 0, "")
		pos += child.NodeSize()
	}
	if len(l.lines) == 0 {
		l.newLine(0)
	}
	// The gap after the last block resolves to the end of the last line.
	if _, ok := l.coords[pos]; !ok {
		y := len(l.lines) - 1
		l.coords[pos] = cellAt{x: l.lineWidth(y), y: y}
	}
	return l
}

// Lines returns the rendered rows.
func (l *Layout) Lines() []Line { return l.lines }

func (l *Layout) newLine(startPos int) *Line {
	l.lines = append(l.lines, Line{Start: startPos, End: startPos})
	return &l.lines[len(l.lines)-1]
}

func (l *Layout) cur() *Line { return &l.lines[len(l.lines)-1] }

func (l *Layout) lineWidth(y int) int {
	w := 0
	for _, c := range l.lines[y].Cells {
		w += runewidth.RuneWidth(c.R)
	}
	return w
}

// emit appends a cell to the current line and records its position.
func (l *Layout) emit(r rune, pos int, style StyleKey) {
	y := len(l.lines) - 1
	line := l.cur()
	if style&StyleDeco == 0 {
		if _, ok := l.coords[pos]; !ok {
			l.coords[pos] = cellAt{x: l.lineWidth(y), y: y}
		}
		if line.End == line.Start {
			line.Start, line.End = pos, pos+1
		} else {
			if pos < line.Start {
				line.Start = pos
			}
			if pos+1 > line.End {
				line.End = pos + 1
			}
		}
	}
	line.Cells = append(line.Cells, Cell{R: r, Pos: pos, Style: style})
}

func (l *Layout) emitString(s string, pos int, style StyleKey) {
	for _, r := range s {
		l.emit(r, pos, style)
	}
}

// layoutBlock renders one block node whose opening token sits at pos.
func (l *Layout) layoutBlock(n *engine.Node, pos, indent int, prefix string) {
	startY := len(l.lines)
	switch n.Type {
	case engine.TypeParagraph:
		l.startBlockLine(pos+1, indent, prefix, StyleDeco)
		l.layoutInline(n, pos+1, indent, BlockText)
	case engine.TypeHeading:
		level, _ := n.Attrs["level"].(int)
		if level < 1 {
			level = 1
		}
		hashes := ""
		for i := 0; i < level; i++ {
			hashes += "#"
		}
		l.startBlockLine(pos+1, indent, prefix+hashes+" ", StyleDeco)
		l.layoutInline(n, pos+1, indent, BlockHeading)
	case engine.TypeCodeBlock:
		l.startBlockLine(pos+1, indent, prefix, StyleDeco)
		l.layoutInline(n, pos+1, indent, BlockCode)
	case engine.TypeDivider:
		l.startBlockLine(pos, indent, prefix, StyleDeco)
		l.emitString("────────", pos, StyleDeco)
		l.coords[pos] = cellAt{x: indent, y: len(l.lines) - 1}
	case engine.TypeImage, engine.TypeVideo, engine.TypeAudio:
		l.startBlockLine(pos, indent, prefix, StyleDeco)
		alt, _ := n.Attrs["alt"].(string)
		l.emitString("["+n.Type+": "+alt+"]", pos, StyleDeco|StyleLink)
		l.coords[pos] = cellAt{x: indent, y: len(l.lines) - 1}
	case engine.TypeBlockquote:
		inner := pos + 1
		for i := 0; i < n.ChildCount(); i++ {
			child := n.Child(i)
			l.layoutBlock(child, inner, indent+2, "▎ ")
			inner += child.NodeSize()
		}
	case engine.TypeBulletList:
		inner := pos + 1
		for i := 0; i < n.ChildCount(); i++ {
			item := n.Child(i)
			l.layoutListItem(item, inner, indent+2)
			inner += item.NodeSize()
		}
	case engine.TypeTable:
		inner := pos + 1
		for i := 0; i < n.ChildCount(); i++ {
			row := n.Child(i)
			l.layoutTableRow(row, inner, indent)
			inner += row.NodeSize()
		}
	default:
		// Unknown blocks render their text so nothing silently disappears.
		l.startBlockLine(pos+1, indent, prefix, StyleDeco)
		l.emitString(n.TextContent(), pos+1, 0)
	}
	l.recordRect(pos, indent, startY)
}

// startBlockLine opens a new visual line with indentation and a prefix.
func (l *Layout) startBlockLine(contentPos, indent int, prefix string, prefixStyle StyleKey) {
	l.newLine(contentPos)
	for i := 0; i < indent; i++ {
		l.emit(' ', contentPos, StyleDeco)
	}
	for _, r := range prefix {
		l.emit(r, contentPos, prefixStyle)
	}
}

// layoutInline renders a textblock's inline content starting at pos.
func (l *Layout) layoutInline(n *engine.Node, pos, indent int, kind StyleKey) {
	for i := 0; i < n.ChildCount(); i++ {
		child := n.Child(i)
		switch {
		case child.IsText():
			bits := markBits(child.Marks) | kind
			for _, r := range child.Text {
				if r == '\n' {
					// Code block text keeps its own line breaks.
					l.coords[pos] = cellAt{x: l.lineWidth(len(l.lines) - 1), y: len(l.lines) - 1}
					l.cur().End = pos + 1
					l.startBlockLine(pos+1, indent, "", StyleDeco)
					pos++
					continue
				}
				l.emit(r, pos, bits)
				pos++
			}
		case child.Type == engine.TypeMention:
			label, _ := child.Attrs["label"].(string)
			l.emitAtom("@"+label, pos, StyleMention|kind)
			pos++
		case child.Type == engine.TypeHardBreak:
			l.coords[pos] = cellAt{x: l.lineWidth(len(l.lines) - 1), y: len(l.lines) - 1}
			l.cur().End = pos + 1
			l.startBlockLine(pos+1, indent, "", StyleDeco)
			pos++
		default:
			l.emitAtom("["+child.Type+"]", pos, StyleDeco|kind)
			pos++
		}
	}
	// Position after the last inline token.
	y := len(l.lines) - 1
	if _, ok := l.coords[pos]; !ok {
		l.coords[pos] = cellAt{x: l.lineWidth(y), y: y}
	}
	if pos >= l.cur().End {
		l.cur().End = pos
	}
}

// emitAtom renders a one-token inline atom; every cell maps to the atom's
// single position.
func (l *Layout) emitAtom(label string, pos int, style StyleKey) {
	first := true
	for _, r := range label {
		s := style
		if !first {
			s |= StyleDeco
		}
		l.emit(r, pos, s)
		first = false
	}
}

func (l *Layout) layoutListItem(item *engine.Node, pos, indent int) {
	startY := len(l.lines)
	inner := pos + 1
	for i := 0; i < item.ChildCount(); i++ {
		child := item.Child(i)
		prefix := "  "
		if i == 0 {
			prefix = "• "
		}
		l.layoutBlock(child, inner, indent, prefix)
		inner += child.NodeSize()
	}
	l.recordRect(pos, indent, startY)
}

func (l *Layout) layoutTableRow(row *engine.Node, pos, indent int) {
	startY := len(l.lines)
	inner := pos + 1
	for i := 0; i < row.ChildCount(); i++ {
		cell := row.Child(i)
		if i == 0 {
			l.startBlockLine(inner+2, indent, "│ ", StyleDeco)
		} else {
			l.emitString(" │ ", inner+2, StyleDeco)
		}
		// A cell holds one textblock in this layout.
		cellInner := inner + 1
		for j := 0; j < cell.ChildCount(); j++ {
			block := cell.Child(j)
			if block.IsTextblock() {
				l.layoutInline(block, cellInner+1, indent, BlockText)
			}
			cellInner += block.NodeSize()
		}
		inner += cell.NodeSize()
	}
	l.emitString(" │", inner, StyleDeco)
	l.recordRect(pos, indent, startY)
}

// recordRect stores the bounding box of the node that starts at pos.
func (l *Layout) recordRect(pos, indent, startY int) {
	endY := len(l.lines) - 1
	if endY < startY {
		endY = startY
	}
	maxW := indent
	for y := startY; y <= endY && y < len(l.lines); y++ {
		if w := l.lineWidth(y); w > maxW {
			maxW = w
		}
	}
	l.rects[pos] = engine.Rect{
		Left:   float64(indent),
		Top:    float64(startY),
		Right:  float64(maxW),
		Bottom: float64(endY + 1),
	}
}

// CoordsAtPos implements engine.Geometry over the rendered grid. The rect is
// the one-cell caret box at the position.
func (l *Layout) CoordsAtPos(pos int) (engine.Rect, error) {
	c, ok := l.coords[pos]
	if !ok {
		return engine.Rect{}, fmt.Errorf("no cell for position %d", pos)
	}
	return engine.Rect{
		Left:   float64(c.x),
		Top:    float64(c.y),
		Right:  float64(c.x + 1),
		Bottom: float64(c.y + 1),
	}, nil
}

// NodeRect implements engine.Geometry for nodes that start at pos.
func (l *Layout) NodeRect(pos int) (engine.Rect, error) {
	r, ok := l.rects[pos]
	if !ok {
		return engine.Rect{}, fmt.Errorf("no node at position %d", pos)
	}
	return r, nil
}

// PosAt returns the document position closest to terminal cell (x, y), for
// vertical cursor motion and mouse clicks.
func (l *Layout) PosAt(x, y int) int {
	if len(l.lines) == 0 {
		return 0
	}
	if y < 0 {
		y = 0
	}
	if y >= len(l.lines) {
		y = len(l.lines) - 1
	}
	line := l.lines[y]
	best := line.Start
	bestDist := 1 << 30
	for pos := line.Start; pos <= line.End; pos++ {
		c, ok := l.coords[pos]
		if !ok || c.y != y {
			continue
		}
		d := c.x - x
		if d < 0 {
			d = -d
		}
		if d < bestDist {
			bestDist = d
			best = pos
		}
	}
	return best
}

// LineOf returns the row a position renders on, or -1.
func (l *Layout) LineOf(pos int) int {
	if c, ok := l.coords[pos]; ok {
		return c.y
	}
	return -1
}

// geometry adapts the layout cache to engine.Geometry. The layout is rebuilt
// lazily whenever the document pointer changes.
type geometry struct {
	mu     sync.Mutex
	state  func() *engine.State
	doc    *engine.Node
	layout *Layout
}

func newGeometry(state func() *engine.State) *geometry {
	return &geometry{state: state}
}

func (g *geometry) current() *Layout {
	g.mu.Lock()
	defer g.mu.Unlock()
	doc := g.state().Doc
	if g.layout == nil || g.doc != doc {
		g.doc = doc
		g.layout = NewLayout(doc)
	}
	return g.layout
}

func (g *geometry) CoordsAtPos(pos int) (engine.Rect, error) { return g.current().CoordsAtPos(pos) }
func (g *geometry) NodeRect(pos int) (engine.Rect, error)    { return g.current().NodeRect(pos) }
