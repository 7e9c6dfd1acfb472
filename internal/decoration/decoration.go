// Package decoration models non-document render instructions: inline ranges
// and point widgets anchored to document positions. Decorations are plain
// data, a position plus a render descriptor, so the rendering host owns all
// drawing; plugins never touch the screen directly.
package decoration

import (
	"fmt"
	"sort"

	"github.com/cespare/xxhash/v2"
)

// Side places a widget relative to the content at its position.
type Side int

const (
	// Before renders the widget before the content at the position.
	Before Side = -1
	// After renders the widget after the content at the position.
	After Side = 1
)

// Spec is the render descriptor a host renderer keys off. Kind selects the
// renderer; Attrs carries its parameters.
type Spec struct {
	Kind  string
	Attrs map[string]any
}

// Decoration is a single render instruction. Widgets have From == To.
type Decoration struct {
	From   int
	To     int
	Widget bool
	Side   Side
	Spec   Spec
}

// Widget builds a point widget decoration at pos.
func Widget(pos int, side Side, spec Spec) Decoration {
	return Decoration{From: pos, To: pos, Widget: true, Side: side, Spec: spec}
}

// Inline builds a range decoration across [from, to).
func Inline(from, to int, spec Spec) Decoration {
	return Decoration{From: from, To: to, Spec: spec}
}

// Set is an ordered collection of decorations.
type Set struct {
	decos []Decoration
}

// NewSet builds a set sorted by position (widgets with Side Before first).
func NewSet(decos ...Decoration) Set {
	sorted := make([]Decoration, len(decos))
	copy(sorted, decos)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].From != sorted[j].From {
			return sorted[i].From < sorted[j].From
		}
		return sorted[i].Side < sorted[j].Side
	})
	return Set{decos: sorted}
}

// Empty is the zero-decoration set.
var Empty = Set{}

// Len returns the number of decorations.
func (s Set) Len() int { return len(s.decos) }

// All returns the decorations in render order.
func (s Set) All() []Decoration { return s.decos }

// Union merges sets preserving render order.
func Union(sets ...Set) Set {
	var all []Decoration
	for _, s := range sets {
		all = append(all, s.decos...)
	}
	return NewSet(all...)
}

// Fingerprint returns a stable hash of the set, used by hosts to skip
// redraws when nothing changed.
func (s Set) Fingerprint() uint64 {
	h := xxhash.New()
	for _, d := range s.decos {
		fmt.Fprintf(h, "%d:%d:%v:%d:%s|", d.From, d.To, d.Widget, d.Side, d.Spec.Kind)
		keys := make([]string, 0, len(d.Spec.Attrs))
		for k := range d.Spec.Attrs {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(h, "%s=%v;", k, d.Spec.Attrs[k])
		}
	}
	return h.Sum64()
}

// Eq reports whether two sets render identically.
func (s Set) Eq(other Set) bool {
	if len(s.decos) != len(other.decos) {
		return false
	}
	return s.Fingerprint() == other.Fingerprint()
}
