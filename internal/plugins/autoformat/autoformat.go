// Package autoformat converts markdown shorthand into marks as the user
// types: closing **bold**, *italic*, `code`, or ~~strike~~ replaces the
// delimited text with a marked run and drops the delimiters. Only
// transactions flagged as direct input are considered, so programmatic edits
// and collaborative changes never trigger formatting.
package autoformat

import (
	"github.com/dlclark/regexp2"

	"github.com/virtues-os/scribe/internal/decoration"
	"github.com/virtues-os/scribe/internal/engine"
	"github.com/virtues-os/scribe/internal/plugin"
)

// rule matches shorthand ending at the cursor. Group 1 captures the text to
// keep. Bold runs before italic so ** is never read as an empty italic pair;
// the italic pattern additionally refuses a * immediately before the match.
type rule struct {
	markType string
	re       *regexp2.Regexp
}

var rules = []rule{
	{engine.MarkBold, regexp2.MustCompile(`\*\*([^*]+)\*\*$`, 0)},
	{engine.MarkItalic, regexp2.MustCompile(`(?<!\*)\*([^*]+)\*$`, 0)},
	{engine.MarkCode, regexp2.MustCompile("`([^`]+)`$", 0)},
	{engine.MarkStrike, regexp2.MustCompile(`~~([^~]+)~~$`, 0)},
}

// Plugin watches typing transactions for completed shorthand.
type Plugin struct {
	host plugin.Host
}

// New builds the autoformat plugin.
func New() *Plugin { return &Plugin{} }

// ID implements plugin.Plugin.
func (p *Plugin) ID() string { return "autoformat" }

// Init implements plugin.Plugin.
func (p *Plugin) Init(host plugin.Host) { p.host = host }

// Stop implements plugin.Plugin.
func (p *Plugin) Stop() {}

// Decorations implements plugin.Plugin.
func (p *Plugin) Decorations() decoration.Set { return decoration.Empty }

// match is a detected shorthand occurrence.
type match struct {
	from, to int
	content  string
	markType string
}

// Apply implements plugin.Plugin. Detection is synchronous; the rewrite is
// dispatched as a follow-up transaction from the effect, and skipped if the
// document moved on in the meantime.
func (p *Plugin) Apply(tr *engine.Transaction, old, next *engine.State) plugin.Effect {
	if tr.GetMeta(plugin.MetaInputType) == nil || !tr.DocChanged() || !next.Sel.Empty() {
		return nil
	}
	m, ok := detect(next.Doc, next.Sel.Head)
	if !ok {
		return nil
	}
	doc := next.Doc
	return func() {
		st := p.host.State()
		if st.Doc != doc {
			return
		}
		run := engine.NewText(m.content, engine.Mark{Type: m.markType})
		cursor := m.from + len([]rune(m.content))
		ftr := st.Tr().
			ReplaceWith(m.from, m.to, run).
			SetSelection(engine.Collapsed(cursor)).
			// The next typed character must not inherit the new mark.
			SetStoredMarks([]engine.Mark{})
		if err := p.host.Dispatch(ftr); err != nil {
			p.host.Logger().Warn("autoformat rewrite failed", "mark", m.markType, "error", err)
		}
	}
}

// detect scans the contiguous plain-text segment ending at cursor for a
// shorthand match. The segment stops at the nearest atom or marked run so
// rune offsets in the pattern map one-to-one onto document positions.
func detect(doc *engine.Node, cursor int) (match, bool) {
	rp, err := doc.Resolve(cursor)
	if err != nil {
		return match{}, false
	}
	block := rp.Parent()
	if !block.IsTextblock() || block.Type == engine.TypeCodeBlock {
		return match{}, false
	}

	segStart := rp.Start(rp.Depth())
	var seg []rune
	pos := segStart
	for i := 0; i < block.ChildCount() && pos < cursor; i++ {
		child := block.Child(i)
		end := pos + child.NodeSize()
		if !child.IsText() || len(child.Marks) > 0 {
			if end > cursor {
				break
			}
			seg = seg[:0]
			segStart = end
			pos = end
			continue
		}
		runes := []rune(child.Text)
		if end > cursor {
			runes = runes[:cursor-pos]
		}
		seg = append(seg, runes...)
		pos = end
	}
	if len(seg) == 0 {
		return match{}, false
	}

	text := string(seg)
	for _, r := range rules {
		m, err := r.re.FindStringMatch(text)
		if err != nil || m == nil {
			continue
		}
		// Anchored at $, so the match ends at the cursor.
		group := m.GroupByNumber(1)
		return match{
			from:     segStart + m.Index,
			to:       segStart + m.Index + m.Length,
			content:  group.String(),
			markType: r.markType,
		}, true
	}
	return match{}, false
}
