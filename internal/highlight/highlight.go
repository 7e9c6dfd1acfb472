// Package highlight renders code block contents as ANSI-colored terminal
// text. Tokenizing is the slow part, so results are cached by content hash
// and concurrent requests for the same block are collapsed into one.
package highlight

import (
	"bytes"
	"strconv"
	"time"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/cespare/xxhash/v2"
	"github.com/patrickmn/go-cache"
	"golang.org/x/sync/singleflight"
)

// DefaultStyle is used when the configured style name is unknown.
const DefaultStyle = "monokai"

// Highlighter tokenizes source text with chroma and formats it for a 256
// color terminal.
type Highlighter struct {
	style *chroma.Style
	cache *cache.Cache
	group singleflight.Group
}

// New builds a highlighter with the named chroma style.
func New(styleName string) *Highlighter {
	style := styles.Get(styleName)
	if style == nil || style == styles.Fallback {
		style = styles.Get(DefaultStyle)
	}
	if style == nil {
		style = styles.Fallback
	}
	return &Highlighter{
		style: style,
		// Rendered blocks expire after 10 minutes, purged every minute.
		cache: cache.New(10*time.Minute, time.Minute),
	}
}

// Highlight returns code with ANSI color sequences applied. An unknown
// language falls back to the plain text lexer, so the text always comes back
// intact.
func (h *Highlighter) Highlight(lang, code string) string {
	key := cacheKey(lang, code)
	if v, found := h.cache.Get(key); found {
		return v.(string)
	}
	v, _, _ := h.group.Do(key, func() (any, error) {
		out := h.render(lang, code)
		h.cache.Set(key, out, cache.DefaultExpiration)
		return out, nil
	})
	return v.(string)
}

// CachedBlocks reports how many rendered blocks the cache currently holds.
func (h *Highlighter) CachedBlocks() int { return h.cache.ItemCount() }

func (h *Highlighter) render(lang, code string) string {
	lexer := lexers.Get(lang)
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	it, err := lexer.Tokenise(nil, code)
	if err != nil {
		return code
	}
	var buf bytes.Buffer
	if err := formatters.TTY256.Format(&buf, h.style, it); err != nil {
		return code
	}
	return buf.String()
}

func cacheKey(lang, code string) string {
	d := xxhash.New()
	d.WriteString(lang)
	d.Write([]byte{0})
	d.WriteString(code)
	return strconv.FormatUint(d.Sum64(), 16)
}
