package datasource

import (
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"airbnb-analytics/utils"
)

// Monitor watches the source file and fires a handler when it changes.
// The containing directory is watched rather than the file itself, so
// editors that replace the file (write temp, rename over) are caught.
type Monitor struct {
	path    string
	watcher *fsnotify.Watcher
	logger  *utils.Logger

	mu      sync.Mutex
	lastMod time.Time
}

// NewMonitor creates a Monitor for the file at path.
func NewMonitor(path string, logger *utils.Logger) (*Monitor, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	if err := watcher.Add(filepath.Dir(path)); err != nil {
		watcher.Close()
		return nil, err
	}

	return &Monitor{
		path:    filepath.Clean(path),
		watcher: watcher,
		logger:  logger,
	}, nil
}

// Watch blocks, invoking handler once per observed change of the
// watched file. It returns when the watcher is closed or fails.
func (m *Monitor) Watch(handler func()) error {
	for {
		select {
		case event, ok := <-m.watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != m.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			info, err := os.Stat(m.path)
			if err != nil {
				continue
			}

			m.mu.Lock()
			if info.ModTime().After(m.lastMod) {
				m.lastMod = info.ModTime()
				m.logger.Info("[monitor] Source file changed: %s", m.path)
				handler()
			}
			m.mu.Unlock()
		case err, ok := <-m.watcher.Errors:
			if !ok {
				return nil
			}
			return err
		}
	}
}

// Close stops the underlying watcher.
func (m *Monitor) Close() error {
	return m.watcher.Close()
}
