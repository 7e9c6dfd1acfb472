// Package markreveal shows the markdown delimiters of inline marks in the
// block under a collapsed cursor. While the cursor sits in a paragraph with a
// bold run, for example, the run is bracketed with ** widgets so the user can
// see and edit the syntax; moving the cursor to another block removes them.
package markreveal

import (
	"github.com/virtues-os/scribe/internal/decoration"
	"github.com/virtues-os/scribe/internal/engine"
	"github.com/virtues-os/scribe/internal/plugin"
)

// delimiters maps mark types to their markdown syntax.
var delimiters = map[string]string{
	engine.MarkBold:   "**",
	engine.MarkItalic: "*",
	engine.MarkCode:   "`",
	engine.MarkStrike: "~~",
}

// trackable fixes the scan order so reveals come out stable.
var trackable = []string{engine.MarkBold, engine.MarkItalic, engine.MarkCode, engine.MarkStrike}

// reveal is one delimiter pair around the contiguous range carrying a mark.
type reveal struct {
	markType string
	from, to int
}

// Plugin computes delimiter reveals from the cursor position.
type Plugin struct {
	host    plugin.Host
	reveals []reveal
}

// New builds the mark reveal plugin.
func New() *Plugin { return &Plugin{} }

// ID implements plugin.Plugin.
func (p *Plugin) ID() string { return "mark-reveal" }

// Init implements plugin.Plugin.
func (p *Plugin) Init(host plugin.Host) {
	p.host = host
	p.reveals = nil
}

// Stop implements plugin.Plugin.
func (p *Plugin) Stop() {}

// Apply implements plugin.Plugin.
func (p *Plugin) Apply(tr *engine.Transaction, old, next *engine.State) plugin.Effect {
	p.reveals = computeReveals(next)
	return nil
}

// computeReveals scans the text runs of the cursor's block in order, tracking
// where each trackable mark type opened, and closes a range whenever a run
// drops the mark. Atoms between runs break contiguity. The result is every
// maximal contiguous range per mark type in the block.
func computeReveals(st *engine.State) []reveal {
	if !st.Sel.Empty() {
		return nil
	}
	rp, err := st.Doc.Resolve(st.Sel.Head)
	if err != nil {
		return nil
	}
	block := rp.Parent()
	if !block.IsTextblock() || block.Type == engine.TypeCodeBlock {
		return nil
	}

	pos := rp.Start(rp.Depth())
	open := make(map[string]int)
	var reveals []reveal
	for i := 0; i < block.ChildCount(); i++ {
		child := block.Child(i)
		for _, markType := range trackable {
			has := hasMarkType(child, markType)
			from, isOpen := open[markType]
			switch {
			case has && !isOpen:
				open[markType] = pos
			case !has && isOpen:
				reveals = append(reveals, reveal{markType: markType, from: from, to: pos})
				delete(open, markType)
			}
		}
		pos += child.NodeSize()
	}
	for _, markType := range trackable {
		if from, ok := open[markType]; ok {
			reveals = append(reveals, reveal{markType: markType, from: from, to: pos})
		}
	}
	return reveals
}

func hasMarkType(n *engine.Node, markType string) bool {
	if !n.IsText() {
		return false
	}
	for _, m := range n.Marks {
		if m.Type == markType {
			return true
		}
	}
	return false
}

// Decorations implements plugin.Plugin: a Before and After widget pair per
// revealed mark.
func (p *Plugin) Decorations() decoration.Set {
	if len(p.reveals) == 0 {
		return decoration.Empty
	}
	decos := make([]decoration.Decoration, 0, len(p.reveals)*2)
	for _, r := range p.reveals {
		spec := decoration.Spec{Kind: "delimiter", Attrs: map[string]any{
			"text": delimiters[r.markType],
			"mark": r.markType,
		}}
		decos = append(decos,
			decoration.Widget(r.from, decoration.Before, spec),
			decoration.Widget(r.to, decoration.After, spec),
		)
	}
	return decoration.NewSet(decos...)
}
