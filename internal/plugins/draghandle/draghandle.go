// Package draghandle implements block reordering: a gutter of drag handles
// next to every top-level block, a drop target computed from the pointer's
// vertical position, and a single atomic move transaction on drop. The
// reducer tracks block layout; an adapter reconciles the gutter markers after
// every dispatch.
package draghandle

import (
	"github.com/virtues-os/scribe/internal/decoration"
	"github.com/virtues-os/scribe/internal/engine"
	"github.com/virtues-os/scribe/internal/plugin"
)

// Block describes one top-level block. Pos is the position immediately
// before the block; Handle is false for blocks that get no drag handle.
type Block struct {
	Index  int
	Pos    int
	Size   int
	Handle bool
}

// drag is the in-flight drag state. slot is the insertion index into the
// block list, len(blocks) meaning "after the last block".
type drag struct {
	source Block
	slot   int
}

// Plugin tracks the block layout and the current drag.
type Plugin struct {
	host    plugin.Host
	enabled bool
	blocks  []Block
	drag    *drag
	adapter plugin.ViewAdapter
}

// New builds the drag handle plugin, enabled by default. The adapter, when
// non-nil, is reconciled by the runtime after every dispatch and on drag
// state changes.
func New(adapter plugin.ViewAdapter) *Plugin {
	return &Plugin{enabled: true, adapter: adapter}
}

// ID implements plugin.Plugin.
func (p *Plugin) ID() string { return "drag-handle" }

// Adapter implements plugin.AdapterProvider.
func (p *Plugin) Adapter() plugin.ViewAdapter { return p.adapter }

// Init implements plugin.Plugin.
func (p *Plugin) Init(host plugin.Host) {
	p.host = host
	p.drag = nil
	p.blocks = scanBlocks(host.State().Doc)
}

// Stop implements plugin.Plugin.
func (p *Plugin) Stop() {}

// Apply implements plugin.Plugin. Any document change invalidates both the
// block layout and an in-flight drag.
func (p *Plugin) Apply(tr *engine.Transaction, old, next *engine.State) plugin.Effect {
	if !tr.DocChanged() {
		return nil
	}
	p.blocks = scanBlocks(next.Doc)
	p.drag = nil
	return nil
}

// scanBlocks walks the top-level blocks. Dividers are valid drop slots but
// get no handle.
func scanBlocks(doc *engine.Node) []Block {
	blocks := make([]Block, 0, doc.ChildCount())
	pos := 0
	for i := 0; i < doc.ChildCount(); i++ {
		child := doc.Child(i)
		size := child.NodeSize()
		blocks = append(blocks, Block{
			Index:  i,
			Pos:    pos,
			Size:   size,
			Handle: child.Type != engine.TypeDivider,
		})
		pos += size
	}
	return blocks
}

// Enabled reports whether the gutter is active.
func (p *Plugin) Enabled() bool { return p.enabled }

// SetEnabled toggles the gutter. Disabling cancels any in-flight drag and
// removes every handle.
func (p *Plugin) SetEnabled(enabled bool) {
	if p.enabled == enabled {
		return
	}
	p.enabled = enabled
	p.drag = nil
	p.sync()
}

// Blocks returns the current block layout; empty while disabled.
func (p *Plugin) Blocks() []Block {
	if !p.enabled {
		return nil
	}
	out := make([]Block, len(p.blocks))
	copy(out, p.blocks)
	return out
}

// Dragging reports whether a drag is in flight.
func (p *Plugin) Dragging() bool { return p.drag != nil }

// DragStart begins dragging the block that starts at pos. Reports false when
// disabled, mid-drag, or pos is not a handle-bearing block start.
func (p *Plugin) DragStart(pos int) bool {
	if !p.enabled || p.drag != nil {
		return false
	}
	for _, b := range p.blocks {
		if b.Pos == pos && b.Handle {
			p.drag = &drag{source: b, slot: b.Index}
			p.sync()
			return true
		}
	}
	return false
}

// DragMove updates the drop slot from the pointer's vertical position: the
// pointer above a block's midpoint targets the slot before it, below the
// last midpoint targets the end. No-op without an active drag or geometry.
func (p *Plugin) DragMove(y float64) {
	if p.drag == nil {
		return
	}
	geom := p.host.Geometry()
	if geom == nil {
		return
	}
	slot := len(p.blocks)
	for i, b := range p.blocks {
		rect, err := geom.NodeRect(b.Pos)
		if err != nil {
			continue
		}
		if y < (rect.Top+rect.Bottom)/2 {
			slot = i
			break
		}
	}
	if slot != p.drag.slot {
		p.drag.slot = slot
		p.sync()
	}
}

// Drop commits the drag as one transaction that deletes the source block and
// reinserts it at the target slot. Dropping a block onto its own position is
// a no-op. The drag always ends, even when the dispatch fails.
func (p *Plugin) Drop() bool {
	d := p.drag
	if d == nil {
		return false
	}
	defer p.DragEnd()

	st := p.host.State()
	insertPos := st.Doc.ContentSize()
	if d.slot < len(p.blocks) {
		insertPos = p.blocks[d.slot].Pos
	}
	src := d.source
	if insertPos >= src.Pos && insertPos <= src.Pos+src.Size {
		return true // dropped onto itself
	}
	node := st.Doc.Child(src.Index)
	adjusted := insertPos
	if insertPos > src.Pos {
		// Deleting the source shifts everything after it left.
		adjusted -= src.Size
	}
	tr := st.Tr().
		Delete(src.Pos, src.Pos+src.Size).
		ReplaceWith(adjusted, adjusted, node)
	if err := p.host.Dispatch(tr); err != nil {
		p.host.Logger().Warn("block move failed", "from", src.Pos, "to", insertPos, "error", err)
		return false
	}
	return true
}

// DragEnd cancels the drag unconditionally.
func (p *Plugin) DragEnd() {
	if p.drag == nil {
		return
	}
	p.drag = nil
	p.sync()
}

func (p *Plugin) sync() {
	if p.adapter != nil {
		p.adapter.Sync()
	}
}

// Decorations marks the current drop slot while dragging. Runs under the
// editor lock, so it must not call back into the host; the end-of-document
// slot comes from the cached block layout instead.
func (p *Plugin) Decorations() decoration.Set {
	if !p.enabled || p.drag == nil {
		return decoration.Empty
	}
	pos := 0
	if n := len(p.blocks); n > 0 {
		last := p.blocks[n-1]
		pos = last.Pos + last.Size
	}
	if p.drag.slot < len(p.blocks) {
		pos = p.blocks[p.drag.slot].Pos
	}
	return decoration.NewSet(decoration.Widget(pos, decoration.Before, decoration.Spec{
		Kind: "drop-indicator",
	}))
}
