// Package slashmenu wires the inline trigger detector to the / character and
// executes block commands from a filterable registry.
package slashmenu

import (
	"github.com/virtues-os/scribe/internal/plugin"
	"github.com/virtues-os/scribe/internal/plugins/trigger"
)

// Plugin tracks a / session and runs registry commands against the document.
type Plugin struct {
	*trigger.Detector
	host     plugin.Host
	registry *Registry
}

// New builds the slash menu plugin. Callbacks drive the menu UI.
func New(reg *Registry, cb trigger.Callbacks) *Plugin {
	return &Plugin{
		Detector: trigger.New("slash-menu", trigger.Config{
			Char:      '/',
			Callbacks: cb,
		}),
		registry: reg,
	}
}

// Init implements plugin.Plugin.
func (p *Plugin) Init(host plugin.Host) {
	p.host = host
	p.Detector.Init(host)
}

// Registry returns the command registry backing the menu.
func (p *Plugin) Registry() *Registry { return p.registry }

// Matches filters the registry with the active session's query. Without a
// session it returns every command.
func (p *Plugin) Matches() []Command {
	return p.registry.Filter(p.Session().Query)
}

// Execute removes the trigger range and applies cmd in the same transaction,
// so the command lands as one undoable edit. The session close falls out of
// the reducer seeing the trigger character disappear. Reports false when no
// session is active or the command fails.
func (p *Plugin) Execute(cmd Command) bool {
	from, to, ok := p.Range()
	if !ok {
		return false
	}
	tr := p.host.State().Tr().Delete(from, to)
	if cmd.Run != nil {
		if err := cmd.Run(tr, from); err != nil {
			p.host.Logger().Warn("slash command failed", "command", cmd.ID, "error", err)
			return false
		}
	}
	if err := p.host.Dispatch(tr); err != nil {
		p.host.Logger().Warn("slash command dispatch failed", "command", cmd.ID, "error", err)
		return false
	}
	return true
}
