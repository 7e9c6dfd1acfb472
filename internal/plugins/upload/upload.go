// Package upload implements the media upload pipeline: pasted or dropped
// files get a placeholder anchored to a document position, upload in the
// background with live progress, and are replaced by the stored media node on
// success. Placeholder positions ride along with document edits, so text
// typed above an uploading image never detaches it. All placeholder state
// changes travel through transaction meta on the single dispatch path.
package upload

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/virtues-os/scribe/internal/decoration"
	"github.com/virtues-os/scribe/internal/engine"
	"github.com/virtues-os/scribe/internal/plugin"
	"github.com/virtues-os/scribe/internal/uploader"
)

const (
	metaKey = "upload"
	// Failed placeholders linger long enough to read the error, then remove
	// themselves.
	defaultErrorTTL = 3 * time.Second
)

const (
	actionAdd = iota
	actionProgress
	actionFail
	actionRemove
)

// action is the meta payload that advances placeholder state.
type action struct {
	kind     int
	id       string
	pos      int
	name     string
	progress float64
	err      string
}

// Info is the public placeholder state.
type Info struct {
	Pos      int
	Progress float64
	Err      string
	Name     string
}

// Plugin runs uploads and tracks their placeholders.
type Plugin struct {
	host     plugin.Host
	up       uploader.Uploader
	errorTTL time.Duration

	mu      sync.Mutex
	pending map[string]Info
	timers  map[string]*time.Timer
	ctx     context.Context
	cancel  context.CancelFunc
}

// New builds the upload plugin around an uploader.
func New(up uploader.Uploader) *Plugin {
	return &Plugin{up: up, errorTTL: defaultErrorTTL}
}

// SetErrorTTL overrides how long failed placeholders linger.
func (p *Plugin) SetErrorTTL(d time.Duration) { p.errorTTL = d }

// ID implements plugin.Plugin.
func (p *Plugin) ID() string { return "upload" }

// Init implements plugin.Plugin.
func (p *Plugin) Init(host plugin.Host) {
	p.host = host
	p.mu.Lock()
	p.pending = make(map[string]Info)
	p.timers = make(map[string]*time.Timer)
	p.ctx, p.cancel = context.WithCancel(context.Background())
	p.mu.Unlock()
}

// Stop implements plugin.Plugin: in-flight uploads are cancelled and error
// timers released.
func (p *Plugin) Stop() {
	p.mu.Lock()
	if p.cancel != nil {
		p.cancel()
	}
	for id, t := range p.timers {
		t.Stop()
		delete(p.timers, id)
	}
	p.mu.Unlock()
}

// Pending returns a snapshot of the placeholder map.
func (p *Plugin) Pending() map[string]Info {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make(map[string]Info, len(p.pending))
	for id, info := range p.pending {
		out[id] = info
	}
	return out
}

// Apply implements plugin.Plugin. Every placeholder position is remapped
// through the transaction first; then the transaction's upload action, if
// any, advances the map.
func (p *Plugin) Apply(tr *engine.Transaction, old, next *engine.State) plugin.Effect {
	p.mu.Lock()
	defer p.mu.Unlock()

	if tr.DocChanged() {
		for id, info := range p.pending {
			info.Pos = tr.Mapping().Map(info.Pos, -1)
			p.pending[id] = info
		}
	}

	a, ok := tr.GetMeta(metaKey).(action)
	if !ok {
		return nil
	}
	switch a.kind {
	case actionAdd:
		p.pending[a.id] = Info{Pos: a.pos, Name: a.name}
	case actionProgress:
		info, ok := p.pending[a.id]
		// Progress never moves backwards, whatever order callbacks land in.
		if ok && a.progress > info.Progress {
			info.Progress = a.progress
			p.pending[a.id] = info
		}
	case actionFail:
		info, ok := p.pending[a.id]
		if !ok {
			return nil
		}
		info.Err = a.err
		p.pending[a.id] = info
		id := a.id
		return func() { p.scheduleRemoval(id) }
	case actionRemove:
		delete(p.pending, a.id)
		if t, ok := p.timers[a.id]; ok {
			t.Stop()
			delete(p.timers, a.id)
		}
	}
	return nil
}

func (p *Plugin) scheduleRemoval(id string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.timers[id]; ok {
		return
	}
	p.timers[id] = time.AfterFunc(p.errorTTL, func() {
		p.host.Post(func() {
			tr := p.host.State().Tr().SetMeta(metaKey, action{kind: actionRemove, id: id})
			if err := p.host.Dispatch(tr); err != nil {
				p.host.Logger().Warn("placeholder removal failed", "id", id, "error", err)
			}
		})
	})
}

// HandlePaste implements plugin.PasteHandler: pasted images upload at the
// cursor's block.
func (p *Plugin) HandlePaste(files []plugin.File) bool {
	pos := p.host.State().Sel.Head
	handled := false
	for _, f := range files {
		if strings.HasPrefix(f.MIME, "image/") {
			p.enqueue(f, pos)
			handled = true
		}
	}
	return handled
}

// HandleDrop implements plugin.DropHandler: dropped media uploads at the
// drop position.
func (p *Plugin) HandleDrop(files []plugin.File, pos int) bool {
	handled := false
	for _, f := range files {
		if mediaType(f.MIME) != "" {
			p.enqueue(f, pos)
			handled = true
		}
	}
	return handled
}

func mediaType(mime string) string {
	switch {
	case strings.HasPrefix(mime, "image/"):
		return engine.TypeImage
	case strings.HasPrefix(mime, "video/"):
		return engine.TypeVideo
	case strings.HasPrefix(mime, "audio/"):
		return engine.TypeAudio
	}
	return ""
}

// enqueue registers a placeholder and starts the background upload.
func (p *Plugin) enqueue(file plugin.File, pos int) {
	st := p.host.State()
	id := uuid.NewString()
	tr := st.Tr().SetMeta(metaKey, action{
		kind: actionAdd,
		id:   id,
		pos:  blockBoundary(st.Doc, pos),
		name: file.Name,
	})
	if err := p.host.Dispatch(tr); err != nil {
		p.host.Logger().Warn("upload placeholder rejected", "name", file.Name, "error", err)
		return
	}

	p.mu.Lock()
	ctx := p.ctx
	p.mu.Unlock()
	go p.run(ctx, id, file)
}

// blockBoundary normalizes pos to the nearest following top-level boundary,
// where media blocks may be inserted.
func blockBoundary(doc *engine.Node, pos int) int {
	rp, err := doc.Resolve(pos)
	if err != nil {
		return doc.ContentSize()
	}
	if rp.Depth() == 0 {
		return pos
	}
	return rp.After(1)
}

func (p *Plugin) run(ctx context.Context, id string, file plugin.File) {
	res, err := p.up.Upload(ctx, file, func(frac float64) {
		p.host.Post(func() {
			tr := p.host.State().Tr().SetMeta(metaKey, action{kind: actionProgress, id: id, progress: frac})
			_ = p.host.Dispatch(tr)
		})
	})
	if err != nil {
		p.host.Post(func() {
			tr := p.host.State().Tr().SetMeta(metaKey, action{kind: actionFail, id: id, err: err.Error()})
			if derr := p.host.Dispatch(tr); derr != nil {
				p.host.Logger().Warn("upload failure not recorded", "id", id, "error", derr)
			}
		})
		return
	}
	p.host.Post(func() { p.finish(id, file, res) })
}

// finish inserts the media node at the placeholder's current position and
// removes the placeholder, as one transaction.
func (p *Plugin) finish(id string, file plugin.File, res uploader.Result) {
	p.mu.Lock()
	info, ok := p.pending[id]
	p.mu.Unlock()
	if !ok {
		return
	}
	node := engine.NewNode(mediaType(file.MIME), map[string]any{
		"src": res.URL,
		"alt": res.Filename,
	})
	tr := p.host.State().Tr().
		ReplaceWith(info.Pos, info.Pos, node).
		SetMeta(metaKey, action{kind: actionRemove, id: id})
	if err := p.host.Dispatch(tr); err != nil {
		p.host.Logger().Warn("media insert failed", "id", id, "error", err)
	}
}

// Decorations renders one placeholder widget per pending upload.
func (p *Plugin) Decorations() decoration.Set {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.pending) == 0 {
		return decoration.Empty
	}
	decos := make([]decoration.Decoration, 0, len(p.pending))
	for id, info := range p.pending {
		attrs := map[string]any{
			"id":       id,
			"name":     info.Name,
			"progress": info.Progress,
		}
		if info.Err != "" {
			attrs["error"] = info.Err
		}
		decos = append(decos, decoration.Widget(info.Pos, decoration.Before, decoration.Spec{
			Kind:  "upload-placeholder",
			Attrs: attrs,
		}))
	}
	return decoration.NewSet(decos...)
}
