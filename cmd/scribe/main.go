package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime/debug"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/virtues-os/scribe/internal/app"
	"github.com/virtues-os/scribe/internal/config"
	"github.com/virtues-os/scribe/internal/engine"
	"github.com/virtues-os/scribe/internal/keymap"
	"github.com/virtues-os/scribe/internal/state"
	"github.com/virtues-os/scribe/internal/store"
	"github.com/virtues-os/scribe/internal/styles"
)

// Version is set at build time via ldflags
var Version = ""

var (
	configPath   = flag.String("config", "", "path to config file")
	docFlag      = flag.String("doc", "", "document ID to open")
	listFlag     = flag.Bool("list", false, "list documents and exit")
	debugFlag    = flag.Bool("debug", false, "enable debug logging")
	versionFlag  = flag.Bool("version", false, "print version and exit")
	shortVersion = flag.Bool("v", false, "print version and exit (short)")
)

func main() {
	flag.Parse()

	if *versionFlag || *shortVersion {
		fmt.Printf("scribe version %s\n", effectiveVersion(Version))
		os.Exit(0)
	}

	logLevel := slog.LevelInfo
	if *debugFlag {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	}))

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	styles.ApplyTheme(cfg.UI.Theme)

	// Load persistent state (ignore errors - state is optional)
	_ = state.Init()

	if err := os.MkdirAll(filepath.Dir(cfg.Storage.DBPath), 0755); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create data directory: %v\n", err)
		os.Exit(1)
	}
	st, err := store.Open(cfg.Storage.DBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open document store: %v\n", err)
		os.Exit(1)
	}
	defer st.Close()

	if *listFlag {
		listDocuments(st)
		return
	}

	doc, err := resolveDocument(st, *docFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open document: %v\n", err)
		os.Exit(1)
	}
	_ = state.SetLastDocumentID(doc.ID)

	km := keymap.NewRegistry()
	keymap.RegisterDefaults(km)
	km.ApplyOverrides(cfg.Keymap.Overrides)

	model := app.New(cfg, st, doc, km, logger)
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseCellMotion())

	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running application: %v\n", err)
		os.Exit(1)
	}
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFrom(path)
	}
	return config.Load()
}

// resolveDocument opens the named document, falls back to the one from the
// previous session, and creates a fresh document when neither exists.
func resolveDocument(st *store.Store, id string) (*store.Document, error) {
	if id != "" {
		doc, err := st.Get(id)
		if err != nil {
			return nil, err
		}
		if doc == nil {
			return nil, fmt.Errorf("no document with ID %s", id)
		}
		return doc, nil
	}
	if last := state.GetLastDocumentID(); last != "" {
		doc, err := st.Get(last)
		if err != nil {
			return nil, err
		}
		if doc != nil {
			return doc, nil
		}
	}
	return st.Create("", engine.NewDoc(engine.NewNode(engine.TypeParagraph, nil)))
}

func listDocuments(st *store.Store) {
	docs, err := st.List()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to list documents: %v\n", err)
		os.Exit(1)
	}
	if len(docs) == 0 {
		fmt.Println("no documents")
		return
	}
	for _, d := range docs {
		title := d.Title
		if title == "" {
			title = "(untitled)"
		}
		fmt.Printf("%-14s %-19s %s\n", d.ID, d.UpdatedAt.Format("2006-01-02 15:04:05"), title)
	}
}

// effectiveVersion returns the version string, with fallback to build info.
func effectiveVersion(v string) string {
	if v != "" {
		return v
	}

	// Try to get version from Go build info
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return "unknown"
	}

	// Check module version
	if info.Main.Version != "" && info.Main.Version != "(devel)" {
		return info.Main.Version
	}

	// Fall back to VCS info
	var revision string
	var dirty bool

	for _, setting := range info.Settings {
		switch setting.Key {
		case "vcs.revision":
			revision = setting.Value
		case "vcs.modified":
			dirty = setting.Value == "true"
		}
	}

	if revision != "" {
		ver := "devel+" + revision
		if len(ver) > 20 {
			ver = ver[:20]
		}
		if dirty {
			ver += "+dirty"
		}
		return ver
	}

	return "devel"
}

func init() {
	// Customize usage output
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: scribe [options]\n\n")
		fmt.Fprintf(os.Stderr, "A block-structured document editor for the terminal.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
	}
}
