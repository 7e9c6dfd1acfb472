package app

import (
	"log/slog"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fsnotify/fsnotify"

	"github.com/virtues-os/scribe/internal/msg"
)

// watchConfig reports config file changes to the Update loop so settings
// apply without a restart. Editors usually replace the file on save, so the
// watch covers the directory and filters by name.
func watchConfig(path string, send func(tea.Msg), log *slog.Logger) tea.Cmd {
	return func() tea.Msg {
		watcher, err := fsnotify.NewWatcher()
		if err != nil {
			log.Warn("config watcher unavailable", "error", err)
			return nil
		}
		dir := filepath.Dir(path)
		if err := watcher.Add(dir); err != nil {
			watcher.Close()
			log.Warn("config watch failed", "dir", dir, "error", err)
			return nil
		}
		name := filepath.Base(path)
		go func() {
			defer watcher.Close()
			var last time.Time
			for {
				select {
				case ev, ok := <-watcher.Events:
					if !ok {
						return
					}
					if filepath.Base(ev.Name) != name {
						continue
					}
					if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
						continue
					}
					// Saves often land as several events in a burst.
					if time.Since(last) < 100*time.Millisecond {
						continue
					}
					last = time.Now()
					send(msg.ConfigReloadedMsg{})
				case err, ok := <-watcher.Errors:
					if !ok {
						return
					}
					log.Warn("config watcher", "error", err)
				}
			}
		}()
		return nil
	}
}
