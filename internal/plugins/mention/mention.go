// Package mention wires the inline trigger detector to the @ character and
// commits picked items as atomic mention nodes.
package mention

import (
	"github.com/virtues-os/scribe/internal/engine"
	"github.com/virtues-os/scribe/internal/plugin"
	"github.com/virtues-os/scribe/internal/plugins/trigger"
)

// Item is a committable mention target.
type Item struct {
	ID    string
	Label string
}

// Plugin tracks an @ session and inserts mention atoms.
type Plugin struct {
	*trigger.Detector
	host plugin.Host
}

// New builds the mention plugin. Callbacks drive the picker UI.
func New(cb trigger.Callbacks) *Plugin {
	return &Plugin{Detector: trigger.New("mention", trigger.Config{
		Char:      '@',
		Callbacks: cb,
	})}
}

// Init implements plugin.Plugin.
func (p *Plugin) Init(host plugin.Host) {
	p.host = host
	p.Detector.Init(host)
}

// Insert commits item for the active session: it replaces the trigger range
// with a mention atom followed by a space and puts the cursor after the
// space. The session close falls out of the reducer seeing the trigger
// character disappear, so the picker is told to close exactly once. Reports
// false when no session is active.
func (p *Plugin) Insert(item Item) bool {
	from, to, ok := p.Range()
	if !ok {
		return false
	}
	node := engine.NewNode(engine.TypeMention, map[string]any{
		"id":    item.ID,
		"label": item.Label,
	})
	tr := p.host.State().Tr().
		ReplaceWith(from, to, node, engine.NewText(" ")).
		SetSelection(engine.Collapsed(from + 2))
	if err := p.host.Dispatch(tr); err != nil {
		p.host.Logger().Warn("mention insert failed", "id", item.ID, "error", err)
		return false
	}
	return true
}
