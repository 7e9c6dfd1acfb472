// Package app is the terminal host for the editing runtime: a Bubble Tea
// model that renders the document grid, feeds key input into transactions,
// and projects plugin state (pickers, toolbars, placeholders, the drag
// gutter) as overlays.
package app

import (
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/virtues-os/scribe/internal/config"
	"github.com/virtues-os/scribe/internal/engine"
	"github.com/virtues-os/scribe/internal/highlight"
	"github.com/virtues-os/scribe/internal/keymap"
	"github.com/virtues-os/scribe/internal/msg"
	"github.com/virtues-os/scribe/internal/plugin"
	"github.com/virtues-os/scribe/internal/plugins/autoformat"
	"github.com/virtues-os/scribe/internal/plugins/draghandle"
	"github.com/virtues-os/scribe/internal/plugins/markreveal"
	"github.com/virtues-os/scribe/internal/plugins/mention"
	"github.com/virtues-os/scribe/internal/plugins/slashmenu"
	"github.com/virtues-os/scribe/internal/plugins/toolbar"
	"github.com/virtues-os/scribe/internal/plugins/trigger"
	"github.com/virtues-os/scribe/internal/plugins/upload"
	"github.com/virtues-os/scribe/internal/runtime"
	"github.com/virtues-os/scribe/internal/state"
	"github.com/virtues-os/scribe/internal/store"
	"github.com/virtues-os/scribe/internal/uploader"
)

// pickerState tracks the open mention picker or slash menu overlay.
type pickerState struct {
	id     string
	x, y   int
	query  string
	cursor int
}

// toolbarState tracks one visible floating toolbar.
type toolbarState struct {
	x, y int
}

// switcherState is the ctrl+o document switcher overlay.
type switcherState struct {
	input  textinput.Model
	cursor int
}

// Model is the root Bubble Tea model for the scribe application.
type Model struct {
	cfg *config.Config
	km  *keymap.Registry
	log *slog.Logger

	// Document
	st       *store.Store
	docID    string
	docTitle string
	dirty    bool
	lastSave time.Time

	// Editing runtime
	ed         *runtime.Editor
	geom       *geometry
	mention    *mention.Plugin
	slash      *slashmenu.Plugin
	selToolbar *toolbar.Plugin
	tblToolbar *toolbar.Plugin
	drag       *draghandle.Plugin
	uploads    *upload.Plugin

	highlighter *highlight.Highlighter

	// Plugin callbacks deliver through this channel; Update consumes it.
	events chan tea.Msg

	// Overlay state, owned by Update.
	picker   *pickerState
	toolbars map[string]toolbarState
	switcher *switcherState

	// UI state
	width, height int
	scroll        int
	ready         bool

	statusMsg     string
	statusExpiry  time.Time
	statusIsError bool

	quitting bool
}

// repaintAdapter is the drag gutter's view adapter in a terminal: the gutter
// is drawn from plugin state at render time, so reconciling it just means
// requesting a repaint.
type repaintAdapter struct {
	send func(tea.Msg)
}

func (a *repaintAdapter) Sync()    { a.send(msg.RepaintMsg{}) }
func (a *repaintAdapter) Destroy() {}

// New assembles the editor runtime and its plugin set around a stored
// document.
func New(cfg *config.Config, st *store.Store, doc *store.Document, km *keymap.Registry, log *slog.Logger) *Model {
	m := &Model{
		cfg:         cfg,
		km:          km,
		log:         log,
		st:          st,
		docID:       doc.ID,
		docTitle:    doc.Title,
		events:      make(chan tea.Msg, 64),
		toolbars:    make(map[string]toolbarState),
		highlighter: highlight.New(cfg.Highlight.Style),
	}
	send := m.send

	m.mention = mention.New(trigger.Callbacks{
		OnOpen: func(anchor engine.Rect, query string) {
			send(msg.PickerOpenedMsg{ID: "mention", X: int(anchor.Left), Y: int(anchor.Top), Query: query})
		},
		OnQueryChange: func(query string) {
			send(msg.PickerQueryMsg{ID: "mention", Query: query})
		},
		OnClose: func() { send(msg.PickerClosedMsg{ID: "mention"}) },
	})
	m.slash = slashmenu.New(slashmenu.NewRegistry(), trigger.Callbacks{
		OnOpen: func(anchor engine.Rect, query string) {
			send(msg.PickerOpenedMsg{ID: "slash-menu", X: int(anchor.Left), Y: int(anchor.Top), Query: query})
		},
		OnQueryChange: func(query string) {
			send(msg.PickerQueryMsg{ID: "slash-menu", Query: query})
		},
		OnClose: func() { send(msg.PickerClosedMsg{ID: "slash-menu"}) },
	})
	m.selToolbar = toolbar.NewSelection(toolbar.Callbacks{
		OnShow: func(a toolbar.Anchor) {
			send(msg.ToolbarShownMsg{ID: "selection-toolbar", X: int(a.X), Y: int(a.Y)})
		},
		OnHide: func() { send(msg.ToolbarHiddenMsg{ID: "selection-toolbar"}) },
	})
	m.selToolbar.SetDebounce(cfg.Editor.SelectionToolbarDelay)
	m.tblToolbar = toolbar.NewTable(toolbar.Callbacks{
		OnShow: func(a toolbar.Anchor) {
			send(msg.ToolbarShownMsg{ID: "table-toolbar", X: int(a.X), Y: int(a.Y)})
		},
		OnHide: func() { send(msg.ToolbarHiddenMsg{ID: "table-toolbar"}) },
	})
	m.tblToolbar.SetDebounce(cfg.Editor.TableToolbarDelay)
	m.drag = draghandle.New(&repaintAdapter{send: send})

	plugins := []plugin.Plugin{
		m.mention,
		m.slash,
		m.selToolbar,
		m.tblToolbar,
		m.drag,
	}
	if cfg.Editor.Autoformat {
		plugins = append(plugins, autoformat.New())
	}
	if cfg.Editor.MarkReveal {
		plugins = append(plugins, markreveal.New())
	}
	if cfg.Upload.Enabled {
		up := uploader.NewLazy(func() (uploader.Uploader, error) {
			return uploader.NewMinio(uploader.Config{
				Endpoint:  cfg.Upload.Endpoint,
				AccessKey: cfg.Upload.AccessKey,
				SecretKey: cfg.Upload.SecretKey,
				Bucket:    cfg.Upload.Bucket,
				UseSSL:    cfg.Upload.UseSSL,
				PublicURL: cfg.Upload.PublicURL,
			})
		})
		m.uploads = upload.New(up)
		m.uploads.SetErrorTTL(cfg.Upload.ErrorTTL)
		plugins = append(plugins, m.uploads)
	}

	m.geom = newGeometry(func() *engine.State { return m.ed.State() })
	m.ed = runtime.New(doc.Body, plugins, runtime.Options{
		Geometry: m.geom,
		Logger:   log,
	})
	if !cfg.Editor.DragHandles || !state.GetGutterVisible() {
		m.drag.SetEnabled(false)
	}
	m.scroll = state.GetScrollPosition(doc.ID)
	return m
}

// send delivers a message from a plugin callback to the Update loop without
// blocking the dispatch path.
func (m *Model) send(message tea.Msg) {
	select {
	case m.events <- message:
	default:
		m.log.Warn("event channel full, dropping message")
	}
}

// Editor exposes the runtime, mainly for tests.
func (m *Model) Editor() *runtime.Editor { return m.ed }

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		m.waitForEvent(),
		tickCmd(),
	}
	if path := config.ConfigPath(); path != "" {
		cmds = append(cmds, watchConfig(path, m.send, m.log))
	}
	return tea.Batch(cmds...)
}

// waitForEvent pumps one plugin callback message into the Update loop.
func (m *Model) waitForEvent() tea.Cmd {
	return func() tea.Msg {
		return <-m.events
	}
}

type tickMsg time.Time

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// context returns the active keymap context.
func (m *Model) context() string {
	if m.switcher != nil {
		return "switcher"
	}
	if m.picker != nil {
		if m.picker.id == "mention" {
			return "picker"
		}
		return "menu"
	}
	return "editor"
}

// mentionItems lists mentionable documents matching the query.
func (m *Model) mentionItems(query string) []mention.Item {
	docs, err := m.st.List()
	if err != nil {
		m.log.Warn("listing documents for mention picker", "error", err)
		return nil
	}
	q := strings.ToLower(query)
	items := make([]mention.Item, 0, len(docs))
	for _, d := range docs {
		if d.ID == m.docID {
			continue
		}
		if q != "" && !strings.Contains(strings.ToLower(d.Title), q) {
			continue
		}
		items = append(items, mention.Item{ID: d.ID, Label: d.Title})
	}
	return items
}

// switcherItems lists documents matching the switcher query, most recently
// edited first.
func (m *Model) switcherItems() []store.Document {
	docs, err := m.st.List()
	if err != nil {
		m.log.Warn("listing documents for switcher", "error", err)
		return nil
	}
	q := strings.ToLower(m.switcher.input.Value())
	if q == "" {
		return docs
	}
	matched := make([]store.Document, 0, len(docs))
	for _, d := range docs {
		if strings.Contains(strings.ToLower(d.Title), q) {
			matched = append(matched, d)
		}
	}
	return matched
}

// setStatus shows a transient status bar message.
func (m *Model) setStatus(text string, isError bool) {
	m.statusMsg = text
	m.statusIsError = isError
	m.statusExpiry = time.Now().Add(3 * time.Second)
}
