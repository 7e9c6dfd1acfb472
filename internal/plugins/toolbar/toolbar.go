// Package toolbar implements debounced floating toolbars anchored to the
// current selection or the enclosing table. The reducer only tracks whether a
// target exists; showing is deferred behind a debounce timer so the toolbar
// does not flicker while the selection is still moving, and hiding fires
// exactly once per shown toolbar.
package toolbar

import (
	"errors"
	"sync"
	"time"

	"github.com/virtues-os/scribe/internal/decoration"
	"github.com/virtues-os/scribe/internal/engine"
	"github.com/virtues-os/scribe/internal/plugin"
)

const (
	selectionDebounce = 200 * time.Millisecond
	tableDebounce     = 100 * time.Millisecond
)

// Anchor is the screen point a toolbar attaches to.
type Anchor struct {
	X float64
	Y float64
}

// Callbacks drive the host's toolbar overlay.
type Callbacks struct {
	OnShow func(Anchor)
	OnHide func()
}

// target identifies what a toolbar is anchored to; a change restarts the
// debounce.
type target struct {
	a, b int
}

// Config parameterises a toolbar instance.
type Config struct {
	ID       string
	Debounce time.Duration
	// Detect reports whether the state has a toolbar target and a key
	// identifying it.
	Detect func(st *engine.State) (target, bool)
	// Anchor computes the screen anchor for the current target. An error
	// keeps the toolbar hidden.
	Anchor    func(st *engine.State, geom engine.Geometry) (Anchor, error)
	Callbacks Callbacks
}

// Plugin is a single debounced toolbar.
type Plugin struct {
	cfg  Config
	host plugin.Host

	mu      sync.Mutex
	gen     int
	timer   *time.Timer
	active  bool
	key     target
	visible bool
}

// New builds a toolbar from an explicit config.
func New(cfg Config) *Plugin { return &Plugin{cfg: cfg} }

// NewSelection builds the text-selection toolbar: visible after a pause on a
// non-empty selection outside code blocks, anchored between the selection
// endpoints.
func NewSelection(cb Callbacks) *Plugin {
	return New(Config{
		ID:        "selection-toolbar",
		Debounce:  selectionDebounce,
		Detect:    detectSelection,
		Anchor:    anchorSelection,
		Callbacks: cb,
	})
}

// NewTable builds the table toolbar: visible after a short pause whenever the
// cursor sits inside a table, anchored to the table's top edge.
func NewTable(cb Callbacks) *Plugin {
	return New(Config{
		ID:        "table-toolbar",
		Debounce:  tableDebounce,
		Detect:    detectTable,
		Anchor:    anchorTable,
		Callbacks: cb,
	})
}

func detectSelection(st *engine.State) (target, bool) {
	if st.Sel.Empty() {
		return target{}, false
	}
	from, to := st.Sel.From(), st.Sel.To()
	rp, err := st.Doc.Resolve(from)
	if err != nil || rp.HasAncestor(engine.TypeCodeBlock) {
		return target{}, false
	}
	return target{from, to}, true
}

func anchorSelection(st *engine.State, geom engine.Geometry) (Anchor, error) {
	start, err := geom.CoordsAtPos(st.Sel.From())
	if err != nil {
		return Anchor{}, err
	}
	end, err := geom.CoordsAtPos(st.Sel.To())
	if err != nil {
		return Anchor{}, err
	}
	top := start.Top
	if end.Top < top {
		top = end.Top
	}
	return Anchor{X: (start.Left + end.Left) / 2, Y: top}, nil
}

func detectTable(st *engine.State) (target, bool) {
	rp, err := st.Doc.Resolve(st.Sel.Head)
	if err != nil {
		return target{}, false
	}
	d := rp.AncestorOfType(engine.TypeTable)
	if d < 0 {
		return target{}, false
	}
	return target{rp.Before(d), 0}, true
}

func anchorTable(st *engine.State, geom engine.Geometry) (Anchor, error) {
	rp, err := st.Doc.Resolve(st.Sel.Head)
	if err != nil {
		return Anchor{}, err
	}
	d := rp.AncestorOfType(engine.TypeTable)
	if d < 0 {
		return Anchor{}, errTargetGone
	}
	rect, err := geom.NodeRect(rp.Before(d))
	if err != nil {
		return Anchor{}, err
	}
	return Anchor{X: (rect.Left + rect.Right) / 2, Y: rect.Top}, nil
}

var errTargetGone = errors.New("toolbar target vanished")

// ID implements plugin.Plugin.
func (p *Plugin) ID() string { return p.cfg.ID }

// Init implements plugin.Plugin.
func (p *Plugin) Init(host plugin.Host) {
	p.host = host
	p.mu.Lock()
	p.gen++
	p.stopTimerLocked()
	p.active, p.visible = false, false
	p.mu.Unlock()
}

// SetDebounce overrides the debounce interval. Must be called before any
// dispatch reaches the plugin.
func (p *Plugin) SetDebounce(d time.Duration) { p.cfg.Debounce = d }

// Visible reports whether the toolbar is currently shown.
func (p *Plugin) Visible() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.visible
}

// Apply implements plugin.Plugin.
func (p *Plugin) Apply(tr *engine.Transaction, old, next *engine.State) plugin.Effect {
	key, ok := p.cfg.Detect(next)

	p.mu.Lock()
	defer p.mu.Unlock()

	if !ok {
		if !p.active && !p.visible {
			return nil
		}
		p.active = false
		p.gen++
		p.stopTimerLocked()
		if !p.visible {
			return nil
		}
		p.visible = false
		hide := p.cfg.Callbacks.OnHide
		if hide == nil {
			return nil
		}
		return func() { hide() }
	}

	if p.active && key == p.key {
		return nil
	}
	p.active = true
	p.key = key
	p.gen++
	gen := p.gen
	p.stopTimerLocked()
	p.timer = time.AfterFunc(p.cfg.Debounce, func() {
		p.host.Post(func() { p.fire(gen) })
	})
	return nil
}

// fire runs when the debounce elapses; it recomputes the anchor from the
// live state so stale coordinates are never shown.
func (p *Plugin) fire(gen int) {
	p.mu.Lock()
	if gen != p.gen || !p.active {
		p.mu.Unlock()
		return
	}
	p.mu.Unlock()

	geom := p.host.Geometry()
	if geom == nil {
		return
	}
	st := p.host.State()
	if _, ok := p.cfg.Detect(st); !ok {
		return
	}
	anchor, err := p.cfg.Anchor(st, geom)
	if err != nil {
		p.host.Logger().Debug("toolbar anchor unavailable", "toolbar", p.cfg.ID, "error", err)
		return
	}

	p.mu.Lock()
	if gen != p.gen {
		p.mu.Unlock()
		return
	}
	p.visible = true
	show := p.cfg.Callbacks.OnShow
	p.mu.Unlock()
	if show != nil {
		show(anchor)
	}
}

// Decorations implements plugin.Plugin; toolbars are host overlays, not
// document decorations.
func (p *Plugin) Decorations() decoration.Set { return decoration.Empty }

// Stop implements plugin.Plugin.
func (p *Plugin) Stop() {
	p.mu.Lock()
	p.gen++
	p.stopTimerLocked()
	p.mu.Unlock()
}

func (p *Plugin) stopTimerLocked() {
	if p.timer != nil {
		p.timer.Stop()
		p.timer = nil
	}
}
