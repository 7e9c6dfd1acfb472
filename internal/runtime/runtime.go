// Package runtime hosts the plugin set on top of a document state. It owns
// the single dispatch path: every transaction flows through Dispatch, which
// applies it to the document, runs every plugin reducer, reconciles view
// adapters, and only then flushes the deferred effects the reducers
// scheduled. There is exactly one linear history; plugins cannot produce
// conflicting concurrent edits.
package runtime

import (
	"errors"
	"log/slog"
	"sync"

	"github.com/virtues-os/scribe/internal/decoration"
	"github.com/virtues-os/scribe/internal/engine"
	"github.com/virtues-os/scribe/internal/plugin"
)

// ErrClosed is returned by Dispatch after the editor is closed.
var ErrClosed = errors.New("editor closed")

// ErrStale is returned when a transaction was built against an outdated
// document.
var ErrStale = errors.New("transaction built against stale document")

// Options configures an editor.
type Options struct {
	Geometry engine.Geometry
	Logger   *slog.Logger
}

// Editor couples a document state with a plugin set.
type Editor struct {
	mu       sync.Mutex
	state    *engine.State
	geom     engine.Geometry
	logger   *slog.Logger
	plugins  []plugin.Plugin
	adapters []plugin.ViewAdapter
	closed   bool
}

// New builds an editor, initialises every plugin against it, and performs an
// initial adapter sync.
func New(doc *engine.Node, plugins []plugin.Plugin, opts Options) *Editor {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	e := &Editor{
		state:   engine.NewState(doc),
		geom:    opts.Geometry,
		logger:  logger,
		plugins: plugins,
	}
	for _, p := range plugins {
		p.Init(e)
		if ap, ok := p.(plugin.AdapterProvider); ok {
			if a := ap.Adapter(); a != nil {
				e.adapters = append(e.adapters, a)
			}
		}
	}
	for _, a := range e.adapters {
		a.Sync()
	}
	return e
}

// State returns the current document state.
func (e *Editor) State() *engine.State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Geometry returns the host geometry, which may be nil when headless.
func (e *Editor) Geometry() engine.Geometry { return e.geom }

// Logger returns the editor logger.
func (e *Editor) Logger() *slog.Logger { return e.logger }

// Dispatch applies a transaction: document first, then every reducer in
// registration order, then adapter reconciliation, and finally the deferred
// effects. Effects may dispatch follow-up transactions.
func (e *Editor) Dispatch(tr *engine.Transaction) error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return ErrClosed
	}
	if err := tr.Err(); err != nil {
		e.mu.Unlock()
		e.logger.Warn("rejecting invalid transaction", "error", err)
		return err
	}
	if tr.StartDoc() != e.state.Doc {
		e.mu.Unlock()
		return ErrStale
	}
	old := e.state
	next := old.Apply(tr)
	e.state = next

	var effects []plugin.Effect
	for _, p := range e.plugins {
		if eff := p.Apply(tr, old, next); eff != nil {
			effects = append(effects, eff)
		}
	}
	for _, a := range e.adapters {
		a.Sync()
	}
	e.mu.Unlock()

	for _, eff := range effects {
		eff()
	}
	return nil
}

// Decorations returns the union of every plugin's decoration set.
func (e *Editor) Decorations() decoration.Set {
	e.mu.Lock()
	defer e.mu.Unlock()
	sets := make([]decoration.Set, 0, len(e.plugins))
	for _, p := range e.plugins {
		sets = append(sets, p.Decorations())
	}
	return decoration.Union(sets...)
}

// Post runs fn unless the editor is closed. Timer and upload callbacks
// re-enter the editor through Post so nothing fires against a destroyed view.
func (e *Editor) Post(fn func()) {
	e.mu.Lock()
	closed := e.closed
	e.mu.Unlock()
	if !closed {
		fn()
	}
}

// HandleKey offers a raw key to plugins in order; the first one that handles
// it wins.
func (e *Editor) HandleKey(key string) bool {
	for _, p := range e.plugins {
		if kh, ok := p.(plugin.KeyHandler); ok && kh.HandleKey(key) {
			return true
		}
	}
	return false
}

// HandlePaste offers pasted files to plugins in order.
func (e *Editor) HandlePaste(files []plugin.File) bool {
	for _, p := range e.plugins {
		if ph, ok := p.(plugin.PasteHandler); ok && ph.HandlePaste(files) {
			return true
		}
	}
	return false
}

// HandleDrop offers dropped files at a position to plugins in order.
func (e *Editor) HandleDrop(files []plugin.File, pos int) bool {
	for _, p := range e.plugins {
		if dh, ok := p.(plugin.DropHandler); ok && dh.HandleDrop(files, pos) {
			return true
		}
	}
	return false
}

// Close tears the editor down: plugins stop their timers and adapters are
// destroyed exactly once, synchronously, before the state is abandoned.
// Subsequent dispatches fail with ErrClosed.
func (e *Editor) Close() {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.closed = true
	plugins := e.plugins
	adapters := e.adapters
	e.adapters = nil
	e.mu.Unlock()

	for _, p := range plugins {
		p.Stop()
	}
	for _, a := range adapters {
		a.Destroy()
	}
}
