package app

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/virtues-os/scribe/internal/decoration"
	"github.com/virtues-os/scribe/internal/engine"
	"github.com/virtues-os/scribe/internal/styles"
	"github.com/virtues-os/scribe/internal/ui"
)

// gutterWidth is the column budget for drag handles left of the text.
const gutterWidth = 2

// View implements tea.Model.
func (m *Model) View() string {
	if m.quitting {
		return ""
	}
	if !m.ready {
		return "loading..."
	}

	st := m.ed.State()
	layout := m.geom.current()
	decos := m.ed.Decorations()

	docLines := m.renderDocument(st, layout, decos)

	viewHeight := m.height
	if m.cfg.UI.ShowStatusBar {
		viewHeight--
	}
	if viewHeight < 1 {
		viewHeight = 1
	}

	scroll := m.scroll
	if max := len(docLines) - viewHeight; scroll > max {
		scroll = max
	}
	if scroll < 0 {
		scroll = 0
	}
	end := scroll + viewHeight
	if end > len(docLines) {
		end = len(docLines)
	}
	view := strings.Join(docLines[scroll:end], "\n")

	if m.picker != nil {
		// The popup opens on the row below its anchor.
		view = ui.OverlayAt(view, m.renderPicker(),
			m.picker.x+gutterWidth, m.picker.y-scroll+1, m.width, viewHeight)
	}
	for id, tb := range m.toolbars {
		box := m.renderToolbar(id)
		// Toolbars float above their anchor.
		y := tb.y - scroll - lipgloss.Height(box)
		view = ui.OverlayAt(view, box, tb.x+gutterWidth, y, m.width, viewHeight)
	}

	if m.switcher != nil {
		box := m.renderSwitcher()
		x := (m.width - lipgloss.Width(box)) / 2
		if x < 0 {
			x = 0
		}
		view = ui.OverlayAt(view, box, x, 1, m.width, viewHeight)
	}

	if m.cfg.UI.ShowStatusBar {
		view += "\n" + m.statusBar()
	}
	return view
}

// renderDocument turns the layout into styled terminal rows, splicing in
// widget decorations and the drag gutter.
func (m *Model) renderDocument(st *engine.State, layout *Layout, decos decoration.Set) []string {
	var inline []decoration.Decoration
	delimsByLine := map[int][]decoration.Decoration{}
	blockWidgetsByLine := map[int][]string{}
	for _, d := range decos.All() {
		if !d.Widget {
			inline = append(inline, d)
			continue
		}
		switch d.Spec.Kind {
		case "delimiter":
			y := layout.LineOf(d.From)
			if y >= 0 {
				delimsByLine[y] = append(delimsByLine[y], d)
			}
		case "upload-placeholder":
			y := layout.LineOf(d.From)
			if y < 0 {
				y = 0
			}
			blockWidgetsByLine[y] = append(blockWidgetsByLine[y], renderPlaceholder(d))
		case "drop-indicator":
			y := layout.LineOf(d.From)
			if y < 0 {
				y = len(layout.Lines())
			}
			blockWidgetsByLine[y] = append(blockWidgetsByLine[y], m.renderDropIndicator())
		}
	}

	handles := m.gutterHandles(layout)

	lines := layout.Lines()
	rows := make([]string, 0, len(lines))
	for y, line := range lines {
		for _, w := range blockWidgetsByLine[y] {
			rows = append(rows, strings.Repeat(" ", gutterWidth)+w)
		}
		rows = append(rows, handles[y]+m.renderLine(st, layout, line, y, inline, delimsByLine[y]))
	}
	for _, w := range blockWidgetsByLine[len(lines)] {
		rows = append(rows, strings.Repeat(" ", gutterWidth)+w)
	}
	return rows
}

// gutterHandles maps each row to its two-column gutter prefix.
func (m *Model) gutterHandles(layout *Layout) map[int]string {
	handles := make(map[int]string, len(layout.Lines()))
	blank := strings.Repeat(" ", gutterWidth)
	for y := range layout.Lines() {
		handles[y] = blank
	}
	if !m.drag.Enabled() {
		return handles
	}
	style := styles.GutterHandle
	if m.drag.Dragging() {
		style = styles.GutterActive
	}
	for _, b := range m.drag.Blocks() {
		if !b.Handle {
			continue
		}
		rect, err := layout.NodeRect(b.Pos)
		if err != nil {
			continue
		}
		handles[int(rect.Top)] = style.Render("⠿") + " "
	}
	return handles
}

// renderLine styles one layout row: marks, selection, cursor, trigger
// highlights, and delimiter widgets.
func (m *Model) renderLine(st *engine.State, layout *Layout, line Line, y int, inline []decoration.Decoration, delims []decoration.Decoration) string {
	cursor := st.Sel.Head
	selFrom, selTo := st.Sel.From(), st.Sel.To()
	hasSel := !st.Sel.Empty()
	cursorHere := layout.LineOf(cursor) == y
	selHere := hasSel && selFrom < line.End && selTo > line.Start

	if s, ok := m.highlightedCodeLine(st, line, cursorHere || selHere || len(delims) > 0); ok {
		return s
	}

	var b strings.Builder
	di := 0
	cursorDrawn := false
	for _, cell := range line.Cells {
		isDeco := cell.Style&StyleDeco != 0
		if !isDeco {
			for di < len(delims) && delims[di].From <= cell.Pos {
				b.WriteString(styles.Delimiter.Render(delimiterText(delims[di])))
				di++
			}
		}
		style := cellStyle(cell.Style)
		if !isDeco {
			if hasSel && cell.Pos >= selFrom && cell.Pos < selTo {
				style = style.Background(styles.BgTertiary)
			}
			for _, d := range inline {
				if cell.Pos >= d.From && cell.Pos < d.To {
					style = styles.TriggerQuery
				}
			}
			if cell.Pos == cursor && !cursorDrawn {
				style = style.Reverse(true)
				cursorDrawn = true
			}
		}
		b.WriteString(style.Render(string(cell.R)))
	}
	for di < len(delims) {
		b.WriteString(styles.Delimiter.Render(delimiterText(delims[di])))
		di++
	}
	if cursorHere && !cursorDrawn {
		b.WriteString(styles.Body.Reverse(true).Render(" "))
	}
	return b.String()
}

// highlightedCodeLine runs a pure code row through the syntax highlighter.
// Rows the cursor, selection, or a widget touches fall back to plain styling
// so overlays stay visible.
func (m *Model) highlightedCodeLine(st *engine.State, line Line, busy bool) (string, bool) {
	if busy || len(line.Cells) == 0 {
		return "", false
	}
	indent := 0
	var text strings.Builder
	for _, cell := range line.Cells {
		if cell.Style&StyleDeco != 0 {
			if text.Len() == 0 {
				indent++
			}
			continue
		}
		if cell.Style.BlockKind() != BlockCode {
			return "", false
		}
		text.WriteRune(cell.R)
	}
	if text.Len() == 0 {
		return "", false
	}
	lang := codeLanguage(st.Doc, line.Start)
	out := strings.TrimRight(m.highlighter.Highlight(lang, text.String()), "\n")
	return strings.Repeat(" ", indent) + out, true
}

// codeLanguage finds the language attribute of the code block containing pos.
func codeLanguage(doc *engine.Node, pos int) string {
	rp, err := doc.Resolve(pos)
	if err != nil {
		return ""
	}
	for d := rp.Depth(); d >= 1; d-- {
		if n := rp.Node(d); n.Type == engine.TypeCodeBlock {
			lang, _ := n.Attrs["language"].(string)
			return lang
		}
	}
	return ""
}

// cellStyle maps a layout style key to its lipgloss style.
func cellStyle(k StyleKey) lipgloss.Style {
	if k&StyleMention != 0 {
		return styles.Mention
	}
	if k&StyleDeco != 0 {
		s := styles.Muted
		if k&StyleLink != 0 {
			s = s.Foreground(styles.Secondary)
		}
		return s
	}
	var s lipgloss.Style
	switch k.BlockKind() {
	case BlockHeading:
		s = styles.Title
	case BlockCode:
		s = styles.MarkCode
	default:
		s = styles.Body
	}
	if k&StyleBold != 0 {
		s = s.Bold(true)
	}
	if k&StyleItalic != 0 {
		s = s.Italic(true)
	}
	if k&StyleCode != 0 {
		s = s.Foreground(styles.Accent)
	}
	if k&StyleStrike != 0 {
		s = s.Strikethrough(true)
	}
	if k&StyleLink != 0 {
		s = s.Foreground(styles.Secondary).Underline(true)
	}
	return s
}

func delimiterText(d decoration.Decoration) string {
	text, _ := d.Spec.Attrs["text"].(string)
	return text
}

// renderPlaceholder draws one pending upload as a status line.
func renderPlaceholder(d decoration.Decoration) string {
	name, _ := d.Spec.Attrs["name"].(string)
	if errText, ok := d.Spec.Attrs["error"].(string); ok {
		return styles.PlaceholderError.Render("⚠ " + name + ": " + errText)
	}
	progress, _ := d.Spec.Attrs["progress"].(float64)
	return styles.Placeholder.Render(fmt.Sprintf("⧗ uploading %s… %d%%", name, int(progress*100)))
}

func (m *Model) renderDropIndicator() string {
	width := m.width - gutterWidth
	if width < 8 {
		width = 8
	}
	return styles.DropIndicator.Render(strings.Repeat("─", width))
}

// renderPicker draws the mention picker or slash menu popup.
func (m *Model) renderPicker() string {
	var rows []string
	if m.picker.id == "mention" {
		items := m.mentionItems(m.picker.query)
		if len(items) == 0 {
			rows = append(rows, styles.Muted.Render("no matching documents"))
		}
		for i, it := range items {
			style := styles.PopupItem
			if i == m.picker.cursor {
				style = styles.PopupSelected
			}
			rows = append(rows, style.Render("@ "+it.Label))
		}
	} else {
		cmds := m.slash.Matches()
		if len(cmds) == 0 {
			rows = append(rows, styles.Muted.Render("no matching commands"))
		}
		for i, c := range cmds {
			style := styles.PopupItem
			if i == m.picker.cursor {
				style = styles.PopupSelected
			}
			rows = append(rows, style.Render(c.Title))
		}
	}
	return styles.Popup.Render(strings.Join(rows, "\n"))
}

// renderSwitcher draws the document switcher: a filter input over the
// matching documents.
func (m *Model) renderSwitcher() string {
	rows := []string{m.switcher.input.View()}
	items := m.switcherItems()
	if len(items) == 0 {
		rows = append(rows, styles.Muted.Render("no matching documents"))
	}
	for i, d := range items {
		if i >= 8 {
			rows = append(rows, styles.Muted.Render(fmt.Sprintf("… %d more", len(items)-i)))
			break
		}
		title := d.Title
		if title == "" {
			title = "(untitled)"
		}
		if d.ID == m.docID {
			title += " (current)"
		}
		style := styles.PopupItem
		if i == m.switcher.cursor {
			style = styles.PopupSelected
		}
		rows = append(rows, style.Render(title))
	}
	return styles.Popup.Render(strings.Join(rows, "\n"))
}

// renderToolbar draws a floating toolbar with its key hints.
func (m *Model) renderToolbar(id string) string {
	var label string
	if id == "selection-toolbar" {
		label = fmt.Sprintf("bold %s  italic %s  code %s  strike %s",
			m.keyHint("toggle-bold"), m.keyHint("toggle-italic"),
			m.keyHint("toggle-code"), m.keyHint("toggle-strike"))
	} else {
		label = fmt.Sprintf("table  %s/%s move row",
			m.keyHint("move-block-up"), m.keyHint("move-block-down"))
	}
	return styles.Toolbar.Render(label)
}

func (m *Model) keyHint(command string) string {
	if key, ok := m.km.KeyFor("editor", command); ok {
		return key
	}
	return "?"
}

// statusBar renders the bottom row: title, dirty marker, transient status.
func (m *Model) statusBar() string {
	title := m.docTitle
	if title == "" {
		title = "untitled"
	}
	if m.dirty {
		title += " •"
	}
	left := title
	if m.statusMsg != "" {
		status := m.statusMsg
		if m.statusIsError {
			status = lipgloss.NewStyle().Foreground(styles.Error).Render(status)
		}
		left += "  " + status
	}
	return styles.StatusBar.Width(m.width).Render(left)
}
