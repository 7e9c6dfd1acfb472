package app

import (
	"mime"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/virtues-os/scribe/internal/config"
	"github.com/virtues-os/scribe/internal/keymap"
	"github.com/virtues-os/scribe/internal/msg"
	"github.com/virtues-os/scribe/internal/plugin"
	"github.com/virtues-os/scribe/internal/state"
	"github.com/virtues-os/scribe/internal/styles"
)

// Update implements tea.Model.
func (m *Model) Update(message tea.Msg) (tea.Model, tea.Cmd) {
	switch message := message.(type) {
	case tea.WindowSizeMsg:
		m.width = message.Width
		m.height = message.Height
		m.ready = true
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(message)

	case tea.MouseMsg:
		return m.handleMouse(message)

	case tickMsg:
		if m.statusMsg != "" && time.Now().After(m.statusExpiry) {
			m.statusMsg = ""
		}
		m.maybeAutosave()
		return m, tickCmd()

	case msg.PickerOpenedMsg:
		m.picker = &pickerState{id: message.ID, x: message.X, y: message.Y, query: message.Query}
		return m, m.waitForEvent()

	case msg.PickerQueryMsg:
		if m.picker != nil && m.picker.id == message.ID {
			m.picker.query = message.Query
			m.picker.cursor = 0
		}
		return m, m.waitForEvent()

	case msg.PickerClosedMsg:
		if m.picker != nil && m.picker.id == message.ID {
			m.picker = nil
		}
		return m, m.waitForEvent()

	case msg.ToolbarShownMsg:
		m.toolbars[message.ID] = toolbarState{x: message.X, y: message.Y}
		return m, m.waitForEvent()

	case msg.ToolbarHiddenMsg:
		delete(m.toolbars, message.ID)
		return m, m.waitForEvent()

	case msg.RepaintMsg:
		return m, m.waitForEvent()

	case msg.ConfigReloadedMsg:
		m.reloadConfig()
		return m, m.waitForEvent()

	case msg.ToastMsg:
		m.setStatus(message.Message, message.IsError)
		return m, m.waitForEvent()

	case msg.DocSavedMsg:
		if message.Err != nil {
			m.setStatus("save failed: "+message.Err.Error(), true)
		} else {
			m.setStatus("saved", false)
		}
		return m, m.waitForEvent()
	}
	return m, nil
}

// handleKey routes a key press: keymap commands for the active context
// first, then plain text input.
func (m *Model) handleKey(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	ks := key.String()

	if cmd, ok := m.km.Lookup(m.context(), ks); ok {
		if model, teaCmd, handled := m.runCommand(cmd); handled {
			return model, teaCmd
		}
	}

	// While the switcher is open, typing edits its filter.
	if m.switcher != nil {
		var cmd tea.Cmd
		m.switcher.input, cmd = m.switcher.input.Update(key)
		m.switcher.cursor = 0
		return m, cmd
	}

	// Anything that prints inserts itself.
	if key.Type == tea.KeyRunes {
		m.insertText(string(key.Runes))
		return m, nil
	}
	if key.Type == tea.KeySpace {
		m.insertText(" ")
		return m, nil
	}
	return m, nil
}

// runCommand executes a named keymap command. The third result is false when
// the command does not apply, letting the key fall through to text input.
func (m *Model) runCommand(cmd string) (tea.Model, tea.Cmd, bool) {
	switch cmd {
	case "quit":
		m.quitting = true
		m.shutdown()
		return m, tea.Quit, true
	case "save":
		m.save()
		return m, nil, true
	case "open-doc":
		m.openSwitcher()
		return m, nil, true

	// Overlay commands
	case "cancel":
		if m.switcher != nil {
			m.switcher = nil
			return m, nil, true
		}
		m.cancelPicker()
		return m, nil, true
	case "select":
		if m.switcher != nil {
			model, cmd := m.openSelectedDocument()
			return model, cmd, true
		}
		m.selectMention()
		return m, nil, true
	case "execute":
		m.executeSlashCommand()
		return m, nil, true
	case "cursor-up":
		if m.switcher != nil {
			if m.switcher.cursor > 0 {
				m.switcher.cursor--
			}
			return m, nil, true
		}
		if m.picker != nil {
			if m.picker.cursor > 0 {
				m.picker.cursor--
			}
			return m, nil, true
		}
		m.moveCursorVertical(-1)
		return m, nil, true
	case "cursor-down":
		if m.switcher != nil {
			if m.switcher.cursor < len(m.switcherItems())-1 {
				m.switcher.cursor++
			}
			return m, nil, true
		}
		if m.picker != nil {
			if m.picker.cursor < m.pickerItemCount()-1 {
				m.picker.cursor++
			}
			return m, nil, true
		}
		m.moveCursorVertical(1)
		return m, nil, true

	// Editor commands
	case "split-block":
		m.splitBlock()
		return m, nil, true
	case "delete-backward":
		m.deleteBackward()
		return m, nil, true
	case "delete-forward":
		m.deleteForward()
		return m, nil, true
	case "cursor-left":
		m.moveCursor(-1, false)
		return m, nil, true
	case "cursor-right":
		m.moveCursor(1, false)
		return m, nil, true
	case "extend-left":
		m.moveCursor(-1, true)
		return m, nil, true
	case "extend-right":
		m.moveCursor(1, true)
		return m, nil, true
	case "cursor-line-start":
		m.moveToLineEdge(true)
		return m, nil, true
	case "cursor-line-end":
		m.moveToLineEdge(false)
		return m, nil, true
	case "select-all":
		m.selectAll()
		return m, nil, true
	case "toggle-bold":
		m.toggleMark("bold")
		return m, nil, true
	case "toggle-italic":
		m.toggleMark("italic")
		return m, nil, true
	case "toggle-code":
		m.toggleMark("code")
		return m, nil, true
	case "toggle-strike":
		m.toggleMark("strike")
		return m, nil, true
	case "paste":
		m.paste()
		return m, nil, true
	case "toggle-gutter":
		m.drag.SetEnabled(!m.drag.Enabled())
		if err := state.SetGutterVisible(m.drag.Enabled()); err != nil {
			m.log.Warn("saving gutter state", "error", err)
		}
		return m, nil, true
	case "move-block-up":
		m.moveBlock(-1)
		return m, nil, true
	case "move-block-down":
		m.moveBlock(1)
		return m, nil, true
	case "dismiss":
		m.dismiss()
		return m, nil, true
	}
	return m, nil, false
}

func (m *Model) handleMouse(mouse tea.MouseMsg) (tea.Model, tea.Cmd) {
	if mouse.Action == tea.MouseActionPress {
		switch mouse.Button {
		case tea.MouseButtonLeft:
			layout := m.geom.current()
			pos := layout.PosAt(mouse.X-gutterWidth, mouse.Y+m.scroll)
			m.setCursor(pos)
		case tea.MouseButtonWheelUp:
			if m.scroll > 0 {
				m.scroll--
			}
		case tea.MouseButtonWheelDown:
			m.scroll++
		}
	}
	return m, nil
}

// openSwitcher shows the document switcher overlay.
func (m *Model) openSwitcher() {
	ti := textinput.New()
	ti.Placeholder = "search documents"
	ti.Prompt = "> "
	ti.CharLimit = 64
	ti.Focus()
	m.switcher = &switcherState{input: ti}
}

// openSelectedDocument swaps the editor over to the chosen document. The new
// model shares the event channel, so the config watcher and the event pump
// keep working across the swap.
func (m *Model) openSelectedDocument() (tea.Model, tea.Cmd) {
	items := m.switcherItems()
	if m.switcher.cursor >= len(items) {
		return m, nil
	}
	id := items[m.switcher.cursor].ID
	m.switcher = nil
	if id == m.docID {
		return m, nil
	}
	doc, err := m.st.Get(id)
	if err != nil || doc == nil {
		m.setStatus("opening document failed", true)
		return m, nil
	}
	if m.dirty {
		m.save()
	}
	if err := state.SetScrollPosition(m.docID, m.scroll); err != nil {
		m.log.Warn("saving scroll position", "error", err)
	}
	m.ed.Close()

	next := New(m.cfg, m.st, doc, m.km, m.log)
	next.events = m.events
	next.width, next.height, next.ready = m.width, m.height, m.ready
	_ = state.SetLastDocumentID(doc.ID)
	return next, nil
}

// cancelPicker closes whichever trigger session is open.
func (m *Model) cancelPicker() {
	if m.picker == nil {
		return
	}
	if m.picker.id == "mention" {
		m.mention.Close()
	} else {
		m.slash.Close()
	}
}

func (m *Model) pickerItemCount() int {
	if m.picker == nil {
		return 0
	}
	if m.picker.id == "mention" {
		return len(m.mentionItems(m.picker.query))
	}
	return len(m.slash.Matches())
}

func (m *Model) selectMention() {
	if m.picker == nil || m.picker.id != "mention" {
		return
	}
	items := m.mentionItems(m.picker.query)
	if m.picker.cursor >= len(items) {
		return
	}
	if !m.mention.Insert(items[m.picker.cursor]) {
		m.setStatus("mention insert failed", true)
	}
	m.dirty = true
}

func (m *Model) executeSlashCommand() {
	if m.picker == nil || m.picker.id != "slash-menu" {
		return
	}
	cmds := m.slash.Matches()
	if m.picker.cursor >= len(cmds) {
		return
	}
	if !m.slash.Execute(cmds[m.picker.cursor]) {
		m.setStatus("command failed", true)
	}
	m.dirty = true
}

// paste inserts clipboard text at the cursor. A clipboard holding the path
// of a local media file goes through the upload pipeline instead.
func (m *Model) paste() {
	text, err := clipboard.ReadAll()
	if err != nil {
		m.setStatus("clipboard unavailable", true)
		return
	}
	if text == "" {
		return
	}
	if file, ok := readLocalMedia(strings.TrimSpace(text)); ok {
		if m.ed.HandlePaste([]plugin.File{file}) {
			m.dirty = true
			return
		}
	}
	m.insertPastedText(text)
}

// readLocalMedia loads the file a pasted absolute path points at, when its
// extension marks it as image, video, or audio.
func readLocalMedia(path string) (plugin.File, bool) {
	if path == "" || strings.ContainsRune(path, '\n') || !filepath.IsAbs(path) {
		return plugin.File{}, false
	}
	mimeType := mime.TypeByExtension(filepath.Ext(path))
	switch {
	case strings.HasPrefix(mimeType, "image/"),
		strings.HasPrefix(mimeType, "video/"),
		strings.HasPrefix(mimeType, "audio/"):
	default:
		return plugin.File{}, false
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return plugin.File{}, false
	}
	return plugin.File{Name: filepath.Base(path), MIME: mimeType, Content: data}, true
}

// moveBlock shifts the block under the cursor one slot up or down through
// the drag pipeline, so keyboard moves and pointer drags share one code path.
func (m *Model) moveBlock(dir int) {
	if !m.drag.Enabled() {
		return
	}
	blocks := m.drag.Blocks()
	head := m.ed.State().Sel.Head
	idx := -1
	for i, b := range blocks {
		if head >= b.Pos && head <= b.Pos+b.Size {
			idx = i
			break
		}
	}
	if idx < 0 || !blocks[idx].Handle {
		return
	}
	target := idx + dir
	if target < 0 || target >= len(blocks) {
		return
	}
	rect, err := m.geom.NodeRect(blocks[target].Pos)
	if err != nil {
		return
	}
	if !m.drag.DragStart(blocks[idx].Pos) {
		return
	}
	if dir < 0 {
		// Above the previous block's midpoint targets the slot before it.
		m.drag.DragMove(rect.Top)
	} else {
		// Below the next block's midpoint targets the slot after it.
		m.drag.DragMove(rect.Bottom)
	}
	if m.drag.Drop() {
		m.dirty = true
	}
}

// reloadConfig re-reads the config file and applies the settings that can
// change at runtime: theme, drag handles, toolbar delays, keymap.
func (m *Model) reloadConfig() {
	cfg, err := config.Load()
	if err != nil {
		m.setStatus("config reload failed: "+err.Error(), true)
		return
	}
	m.cfg = cfg
	styles.ApplyTheme(cfg.UI.Theme)
	m.drag.SetEnabled(cfg.Editor.DragHandles)
	m.selToolbar.SetDebounce(cfg.Editor.SelectionToolbarDelay)
	m.tblToolbar.SetDebounce(cfg.Editor.TableToolbarDelay)
	m.km = keymap.NewRegistry()
	keymap.RegisterDefaults(m.km)
	m.km.ApplyOverrides(cfg.Keymap.Overrides)
	m.setStatus("config reloaded", false)
}

// maybeAutosave saves a dirty document once the configured interval passed.
func (m *Model) maybeAutosave() {
	interval := m.cfg.Editor.AutosaveInterval
	if interval <= 0 || !m.dirty {
		return
	}
	if time.Since(m.lastSave) < interval {
		return
	}
	m.save()
}

// save writes the document back to the store.
func (m *Model) save() {
	st := m.ed.State()
	title := deriveTitle(st.Doc, m.docTitle)
	if err := m.st.Save(m.docID, title, st.Doc); err != nil {
		m.setStatus("save failed: "+err.Error(), true)
		return
	}
	m.docTitle = title
	m.dirty = false
	m.lastSave = time.Now()
	m.setStatus("saved", false)
}

// shutdown flushes and closes everything before quit.
func (m *Model) shutdown() {
	if m.dirty {
		m.save()
	}
	if err := state.SetScrollPosition(m.docID, m.scroll); err != nil {
		m.log.Warn("saving scroll position", "error", err)
	}
	m.ed.Close()
}
