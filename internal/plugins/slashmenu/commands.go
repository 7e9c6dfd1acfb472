package slashmenu

import (
	"fmt"
	"strings"

	"github.com/virtues-os/scribe/internal/engine"
)

// Command is one slash menu entry. Run extends the transaction that already
// carries the trigger-range deletion; pos is the cursor after that deletion.
type Command struct {
	ID       string
	Title    string
	Keywords []string
	Run      func(tr *engine.Transaction, pos int) error
}

// Registry holds the command list in menu order.
type Registry struct {
	commands []Command
}

// NewRegistry returns a registry preloaded with the built-in block commands.
func NewRegistry() *Registry {
	r := &Registry{}
	r.Register(
		Command{ID: "heading1", Title: "Heading 1", Keywords: []string{"h1", "title"}, Run: setHeading(1)},
		Command{ID: "heading2", Title: "Heading 2", Keywords: []string{"h2"}, Run: setHeading(2)},
		Command{ID: "heading3", Title: "Heading 3", Keywords: []string{"h3"}, Run: setHeading(3)},
		Command{ID: "bulletList", Title: "Bullet List", Keywords: []string{"ul", "list"}, Run: wrapInBulletList},
		Command{ID: "blockquote", Title: "Quote", Keywords: []string{"quote", "bq"}, Run: wrapInBlockquote},
		Command{ID: "codeBlock", Title: "Code Block", Keywords: []string{"code", "pre"}, Run: toCodeBlock},
		Command{ID: "divider", Title: "Divider", Keywords: []string{"hr", "rule"}, Run: insertDivider},
		Command{ID: "table", Title: "Table", Keywords: []string{"grid"}, Run: insertTable},
	)
	return r
}

// Register appends commands to the menu.
func (r *Registry) Register(cmds ...Command) {
	r.commands = append(r.commands, cmds...)
}

// All returns every command in menu order.
func (r *Registry) All() []Command {
	out := make([]Command, len(r.commands))
	copy(out, r.commands)
	return out
}

// Filter returns the commands matching query, case-insensitively, against
// title, id, and keywords. An empty query matches everything.
func (r *Registry) Filter(query string) []Command {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return r.All()
	}
	var out []Command
	for _, c := range r.commands {
		if c.matches(q) {
			out = append(out, c)
		}
	}
	return out
}

func (c Command) matches(q string) bool {
	if strings.Contains(strings.ToLower(c.Title), q) || strings.Contains(strings.ToLower(c.ID), q) {
		return true
	}
	for _, k := range c.Keywords {
		if strings.HasPrefix(strings.ToLower(k), q) {
			return true
		}
	}
	return false
}

// blockAt locates the top-level block containing pos in the transaction's
// current document.
func blockAt(tr *engine.Transaction, pos int) (block *engine.Node, before, after int, err error) {
	rp, err := tr.Doc().Resolve(pos)
	if err != nil {
		return nil, 0, 0, err
	}
	if rp.Depth() < 1 {
		return nil, 0, 0, fmt.Errorf("position %d is not inside a block", pos)
	}
	return rp.Node(1), rp.Before(1), rp.After(1), nil
}

func setHeading(level int) func(tr *engine.Transaction, pos int) error {
	return func(tr *engine.Transaction, pos int) error {
		block, before, after, err := blockAt(tr, pos)
		if err != nil {
			return err
		}
		if !block.IsTextblock() {
			return fmt.Errorf("cannot turn %s into a heading", block.Type)
		}
		heading := engine.NewNode(engine.TypeHeading, map[string]any{"level": level}, block.Content...)
		tr.ReplaceWith(before, after, heading).SetSelection(engine.Collapsed(pos))
		return tr.Err()
	}
}

func wrapInBulletList(tr *engine.Transaction, pos int) error {
	block, before, after, err := blockAt(tr, pos)
	if err != nil {
		return err
	}
	if !block.IsTextblock() {
		return fmt.Errorf("cannot wrap %s in a list", block.Type)
	}
	item := engine.NewNode(engine.TypeListItem, nil,
		engine.NewNode(engine.TypeParagraph, nil, block.Content...))
	list := engine.NewNode(engine.TypeBulletList, nil, item)
	// The paragraph gains two wrapping levels, so the cursor shifts by two.
	tr.ReplaceWith(before, after, list).SetSelection(engine.Collapsed(pos + 2))
	return tr.Err()
}

func wrapInBlockquote(tr *engine.Transaction, pos int) error {
	block, before, after, err := blockAt(tr, pos)
	if err != nil {
		return err
	}
	if !block.IsTextblock() {
		return fmt.Errorf("cannot wrap %s in a quote", block.Type)
	}
	quote := engine.NewNode(engine.TypeBlockquote, nil,
		engine.NewNode(engine.TypeParagraph, nil, block.Content...))
	tr.ReplaceWith(before, after, quote).SetSelection(engine.Collapsed(pos + 1))
	return tr.Err()
}

func toCodeBlock(tr *engine.Transaction, pos int) error {
	block, before, after, err := blockAt(tr, pos)
	if err != nil {
		return err
	}
	if !block.IsTextblock() {
		return fmt.Errorf("cannot turn %s into a code block", block.Type)
	}
	// Code blocks hold plain text; marks and atoms are dropped.
	text := block.TextContent()
	var content []*engine.Node
	if text != "" {
		content = append(content, engine.NewText(text))
	}
	code := engine.NewNode(engine.TypeCodeBlock, map[string]any{"language": ""}, content...)
	cursor := before + 1 + len([]rune(text))
	tr.ReplaceWith(before, after, code).SetSelection(engine.Collapsed(cursor))
	return tr.Err()
}

func insertDivider(tr *engine.Transaction, pos int) error {
	_, _, after, err := blockAt(tr, pos)
	if err != nil {
		return err
	}
	divider := engine.NewNode(engine.TypeDivider, nil)
	next := engine.NewNode(engine.TypeParagraph, nil)
	// Divider is an atom of size 1; the cursor lands in the fresh paragraph.
	tr.ReplaceWith(after, after, divider, next).SetSelection(engine.Collapsed(after + 2))
	return tr.Err()
}

func insertTable(tr *engine.Transaction, pos int) error {
	_, _, after, err := blockAt(tr, pos)
	if err != nil {
		return err
	}
	cell := func() *engine.Node {
		return engine.NewNode(engine.TypeTableCell, nil, engine.NewNode(engine.TypeParagraph, nil))
	}
	row := func() *engine.Node {
		return engine.NewNode(engine.TypeTableRow, nil, cell(), cell())
	}
	table := engine.NewNode(engine.TypeTable, nil, row(), row())
	// table > row > cell > paragraph puts the first cell's content 4 deep.
	tr.ReplaceWith(after, after, table).SetSelection(engine.Collapsed(after + 4))
	return tr.Err()
}
