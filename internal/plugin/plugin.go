// Package plugin defines the contract between the editing runtime and its
// extensions. Every plugin is a state machine driven by a reducer over
// "transaction → old state → new state"; side effects are never run inside
// the reducer, only scheduled as deferred effects the runtime flushes after
// every reducer has seen the transaction.
package plugin

import (
	"log/slog"

	"github.com/virtues-os/scribe/internal/decoration"
	"github.com/virtues-os/scribe/internal/engine"
)

// MetaInputType is the transaction meta key hosts set on transactions that
// originate from direct text input. Plugins that react to typing, such as
// markdown autoformat, key off it to ignore programmatic edits.
const MetaInputType = "inputType"

// Effect is a deferred side effect. Effects run after the dispatch that
// produced them has fully settled, so they may dispatch follow-up
// transactions without re-entering a running reducer.
type Effect func()

// Host is the runtime surface plugins are given at Init. Geometry may be nil
// when running headless (tests, serialization tools).
type Host interface {
	State() *engine.State
	Dispatch(tr *engine.Transaction) error
	Geometry() engine.Geometry
	// Post runs fn on the dispatch path unless the editor is closed. Timer
	// and network callbacks must re-enter through Post.
	Post(fn func())
	Logger() *slog.Logger
}

// Plugin is the interface every editing extension implements.
type Plugin interface {
	ID() string
	// Init binds the plugin to its host and resets its state.
	Init(host Host)
	// Apply advances the plugin's state for one transaction. The returned
	// effect, if any, is flushed by the runtime after all reducers ran.
	Apply(tr *engine.Transaction, old, next *engine.State) Effect
	// Decorations projects the current state to render instructions.
	Decorations() decoration.Set
	// Stop releases timers and other resources. Idempotent.
	Stop()
}

// KeyHandler is implemented by plugins that intercept raw key input before
// the host translates it into transactions.
type KeyHandler interface {
	HandleKey(key string) bool
}

// File is a pasted or dropped file offered to media-handling plugins.
type File struct {
	Name    string
	MIME    string
	Content []byte
}

// PasteHandler is implemented by plugins that intercept pasted files.
type PasteHandler interface {
	HandlePaste(files []File) bool
}

// DropHandler is implemented by plugins that intercept dropped files at a
// document position.
type DropHandler interface {
	HandleDrop(files []File, pos int) bool
}

// ViewAdapter is the imperative counterpart of a pure reducer: it owns
// host-visible resources (gutter markers, ghost elements) and reconciles them
// from the latest reducer state after every dispatch. Sync must be
// idempotent; Destroy releases everything and is called exactly once.
type ViewAdapter interface {
	Sync()
	Destroy()
}

// AdapterProvider is implemented by plugins that carry a view adapter.
type AdapterProvider interface {
	Adapter() ViewAdapter
}
