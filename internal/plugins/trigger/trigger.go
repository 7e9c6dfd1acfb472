// Package trigger implements the generic inline trigger detector: it watches
// document-changing transactions for a trigger character typed at a valid
// position, tracks the query the user types after it, and closes the session
// on any invalidating edit. The mention picker and the slash command menu are
// both thin instantiations of this detector.
package trigger

import (
	"strings"
	"unicode"

	"github.com/virtues-os/scribe/internal/decoration"
	"github.com/virtues-os/scribe/internal/engine"
	"github.com/virtues-os/scribe/internal/plugin"
)

// Session is the detector's reducer state. While active, From addresses the
// trigger character itself and Query is the text between From+1 and the
// cursor.
type Session struct {
	Active bool
	From   int
	Query  string
}

// Callbacks are emitted to the UI shell as deferred effects, never from
// inside the reducer.
type Callbacks struct {
	// OnOpen receives the trigger character's caret coordinates (zero when
	// no geometry is attached) and the initial query.
	OnOpen func(coords engine.Rect, query string)
	OnQueryChange func(query string)
	OnClose       func()
}

// Config parameterises a detector instance.
type Config struct {
	// Char is the trigger character.
	Char rune
	// ValidPosition decides whether a trigger typed at pos may open a
	// session. The default requires block start or a preceding whitespace.
	ValidPosition func(doc *engine.Node, pos int) bool
	// ValidQuery decides whether the tracked query keeps the session alive.
	// The default rejects any whitespace.
	ValidQuery func(query string) bool
	Callbacks Callbacks
}

// Detector is the plugin wrapper around the pure session reducer.
type Detector struct {
	id      string
	cfg     Config
	host    plugin.Host
	session Session
}

// New builds a detector with defaults filled in.
func New(id string, cfg Config) *Detector {
	if cfg.ValidPosition == nil {
		cfg.ValidPosition = ValidTriggerPosition
	}
	if cfg.ValidQuery == nil {
		cfg.ValidQuery = validQuery
	}
	return &Detector{id: id, cfg: cfg}
}

// ValidTriggerPosition is the default position predicate: the trigger must
// sit at the start of its textblock or immediately after whitespace.
func ValidTriggerPosition(doc *engine.Node, pos int) bool {
	rp, err := doc.Resolve(pos)
	if err != nil {
		return false
	}
	from, _, ok := rp.BlockRange()
	if !ok {
		return false
	}
	if pos == from {
		return true
	}
	prev := doc.TextBetween(pos-1, pos, "")
	runes := []rune(prev)
	if len(runes) != 1 {
		return false // atom before the trigger
	}
	return unicode.IsSpace(runes[0])
}

func validQuery(query string) bool {
	return strings.IndexFunc(query, unicode.IsSpace) < 0
}

// ID implements plugin.Plugin.
func (d *Detector) ID() string { return d.id }

// Init implements plugin.Plugin.
func (d *Detector) Init(host plugin.Host) {
	d.host = host
	d.session = Session{}
}

// Stop implements plugin.Plugin.
func (d *Detector) Stop() {}

// Session returns the current session state.
func (d *Detector) Session() Session { return d.session }

// Range returns the document range [from, cursor) the session covers, and
// false when no session is active.
func (d *Detector) Range() (from, to int, ok bool) {
	if !d.session.Active || d.host == nil {
		return 0, 0, false
	}
	return d.session.From, d.host.State().Sel.Head, true
}

type event int

const (
	evNone event = iota
	evOpen
	evQuery
	evClose
)

// reduce is the pure session transition. It never touches the host.
func reduce(cfg Config, tr *engine.Transaction, prev Session, next *engine.State) (Session, event) {
	doc := next.Doc
	if !prev.Active {
		if !tr.DocChanged() || !next.Sel.Empty() {
			return prev, evNone
		}
		pos := next.Sel.Head
		c, ok := doc.CharBefore(pos)
		if !ok || c != cfg.Char {
			return prev, evNone
		}
		if !cfg.ValidPosition(doc, pos-1) {
			return prev, evNone
		}
		return Session{Active: true, From: pos - 1}, evOpen
	}

	from := prev.From
	if tr.DocChanged() {
		from = tr.Mapping().Map(from, -1)
	}
	if !next.Sel.Empty() {
		return Session{}, evClose
	}
	cursor := next.Sel.Head
	if cursor <= from || from+1 > doc.ContentSize() {
		return Session{}, evClose
	}
	if doc.TextBetween(from, from+1, "") != string(cfg.Char) {
		return Session{}, evClose
	}
	query := doc.TextBetween(from+1, cursor, "\n")
	if len([]rune(query)) != cursor-from-1 {
		return Session{}, evClose // non-text content crept into the range
	}
	if !cfg.ValidQuery(query) {
		return Session{}, evClose
	}
	sess := Session{Active: true, From: from, Query: query}
	if query == prev.Query {
		return sess, evNone // position remap alone is not a query change
	}
	return sess, evQuery
}

// Apply implements plugin.Plugin.
func (d *Detector) Apply(tr *engine.Transaction, old, next *engine.State) plugin.Effect {
	sess, ev := reduce(d.cfg, tr, d.session, next)
	d.session = sess
	cb := d.cfg.Callbacks
	switch ev {
	case evOpen:
		from := sess.From
		return func() {
			var coords engine.Rect
			if geom := d.host.Geometry(); geom != nil {
				if r, err := geom.CoordsAtPos(from); err == nil {
					coords = r
				}
			}
			if cb.OnOpen != nil {
				cb.OnOpen(coords, sess.Query)
			}
		}
	case evQuery:
		if cb.OnQueryChange == nil {
			return nil
		}
		query := sess.Query
		return func() { cb.OnQueryChange(query) }
	case evClose:
		if cb.OnClose == nil {
			return nil
		}
		return func() { cb.OnClose() }
	}
	return nil
}

// Close cancels the session. It reports false when no session was active,
// and never errors.
func (d *Detector) Close() bool {
	if !d.session.Active {
		return false
	}
	d.session = Session{}
	if d.cfg.Callbacks.OnClose != nil {
		d.cfg.Callbacks.OnClose()
	}
	return true
}

// HandleKey intercepts Escape to close an active session.
func (d *Detector) HandleKey(key string) bool {
	if key == "esc" && d.session.Active {
		return d.Close()
	}
	return false
}

// Decorations highlights the active trigger range.
func (d *Detector) Decorations() decoration.Set {
	if !d.session.Active {
		return decoration.Empty
	}
	to := d.session.From + 1 + len([]rune(d.session.Query))
	return decoration.NewSet(decoration.Inline(d.session.From, to, decoration.Spec{
		Kind:  "trigger",
		Attrs: map[string]any{"char": string(d.cfg.Char)},
	}))
}
