// Package state persists lightweight session preferences between runs:
// which document was open, whether the drag gutter is visible, and per
// document scroll offsets. Heavier data lives in the document store.
package state

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
)

// State holds persistent session preferences.
type State struct {
	// LastDocumentID is the document reopened when none is named.
	LastDocumentID string `json:"lastDocumentId,omitempty"`

	// GutterVisible mirrors the drag gutter toggle.
	GutterVisible *bool `json:"gutterVisible,omitempty"`

	// ScrollPositions remembers the viewport offset per document ID.
	ScrollPositions map[string]int `json:"scrollPositions,omitempty"`
}

var (
	current *State
	mu      sync.RWMutex
	path    string
)

// Init loads state from the default location.
func Init() error {
	home, err := os.UserHomeDir()
	if err != nil {
		return err
	}
	return InitWithDir(filepath.Join(home, ".config", "scribe"))
}

// InitWithDir loads state from a specified directory.
// This is primarily for testing to avoid reading real user state.
func InitWithDir(dir string) error {
	path = filepath.Join(dir, "state.json")
	return Load()
}

// Load reads state from disk.
func Load() error {
	mu.Lock()
	defer mu.Unlock()

	current = &State{}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil // no state file yet, use defaults
	}
	if err != nil {
		return err
	}

	return json.Unmarshal(data, current)
}

// Save writes state to disk.
func Save() error {
	mu.RLock()
	defer mu.RUnlock()

	if current == nil {
		return nil
	}

	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(current, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// GetLastDocumentID returns the document opened in the previous session.
func GetLastDocumentID() string {
	mu.RLock()
	defer mu.RUnlock()
	if current == nil {
		return ""
	}
	return current.LastDocumentID
}

// SetLastDocumentID saves the open document for the next session.
func SetLastDocumentID(id string) error {
	mu.Lock()
	if current == nil {
		current = &State{}
	}
	current.LastDocumentID = id
	mu.Unlock()
	return Save()
}

// GetGutterVisible returns the saved drag gutter toggle. Defaults to true
// when nothing was saved yet.
func GetGutterVisible() bool {
	mu.RLock()
	defer mu.RUnlock()
	if current == nil || current.GutterVisible == nil {
		return true
	}
	return *current.GutterVisible
}

// SetGutterVisible saves the drag gutter toggle.
func SetGutterVisible(visible bool) error {
	mu.Lock()
	if current == nil {
		current = &State{}
	}
	current.GutterVisible = &visible
	mu.Unlock()
	return Save()
}

// GetScrollPosition returns the saved viewport offset for a document.
// Returns 0 when no offset is saved.
func GetScrollPosition(docID string) int {
	mu.RLock()
	defer mu.RUnlock()
	if current == nil || current.ScrollPositions == nil {
		return 0
	}
	return current.ScrollPositions[docID]
}

// SetScrollPosition saves the viewport offset for a document.
func SetScrollPosition(docID string, offset int) error {
	mu.Lock()
	if current == nil {
		current = &State{}
	}
	if current.ScrollPositions == nil {
		current.ScrollPositions = map[string]int{}
	}
	if offset == 0 {
		delete(current.ScrollPositions, docID)
	} else {
		current.ScrollPositions[docID] = offset
	}
	mu.Unlock()
	return Save()
}
