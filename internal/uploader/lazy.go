package uploader

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/virtues-os/scribe/internal/plugin"
)

// Lazy defers constructing the real uploader until the first upload, and
// collapses concurrent first uploads into one initialization. This keeps
// editor startup off the network when the user never touches media.
type Lazy struct {
	factory func() (Uploader, error)

	group singleflight.Group
	mu    sync.Mutex
	inner Uploader
}

// NewLazy wraps a factory.
func NewLazy(factory func() (Uploader, error)) *Lazy {
	return &Lazy{factory: factory}
}

// Upload implements Uploader.
func (l *Lazy) Upload(ctx context.Context, file plugin.File, onProgress Progress) (Result, error) {
	up, err := l.get()
	if err != nil {
		return Result{}, err
	}
	return up.Upload(ctx, file, onProgress)
}

func (l *Lazy) get() (Uploader, error) {
	l.mu.Lock()
	if l.inner != nil {
		defer l.mu.Unlock()
		return l.inner, nil
	}
	l.mu.Unlock()

	v, err, _ := l.group.Do("init", func() (any, error) {
		up, err := l.factory()
		if err != nil {
			return nil, err
		}
		l.mu.Lock()
		l.inner = up
		l.mu.Unlock()
		return up, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(Uploader), nil
}
