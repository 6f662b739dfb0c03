package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// watch republishes a user's subscriptions whenever that user's document
// changes on disk. Our own writes show up here too; the hub drops those
// because the reloaded snapshot equals the one already delivered.
func (s *Disk) watch(ctx context.Context) (chan struct{}, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("store: create watcher: %w", err)
	}
	var closeOnce sync.Once
	closeWatcher := func() {
		closeOnce.Do(func() {
			if err := watcher.Close(); err != nil {
				s.opts.log.Warn(ctx, "store: watcher close", "err", err)
			}
		})
	}

	dirs, err := collectDirs(s.basePath)
	if err != nil {
		closeWatcher()
		return nil, fmt.Errorf("store: enumerate directories: %w", err)
	}
	watched := make(map[string]struct{}, len(dirs))
	for _, dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			closeWatcher()
			return nil, fmt.Errorf("store: watch %s: %w", dir, err)
		}
		watched[dir] = struct{}{}
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		defer closeWatcher()

		throttle := newEventThrottle(100 * time.Millisecond)
		defer throttle.Stop()
		publish := func(userID string) {
			if userID == "" {
				s.hub.publishAll(ctx)
				return
			}
			s.hub.publish(ctx, userID)
		}

		for {
			select {
			case <-ctx.Done():
				return
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				// We cannot tell what changed, so refresh everyone.
				s.opts.log.Warn(ctx, "store: watcher error", "err", err)
				throttle.Enqueue("", publish)
			case evt, ok := <-watcher.Events:
				if !ok {
					return
				}
				if evt.Op&fsnotify.Create == fsnotify.Create {
					if info, err := os.Stat(evt.Name); err == nil && info.IsDir() {
						dir := filepath.Clean(evt.Name)
						if _, found := watched[dir]; !found && filepath.Base(dir) != tempDir {
							if err := watcher.Add(dir); err != nil {
								s.opts.log.Warn(ctx, "store: watch directory", "dir", dir, "err", err)
							} else {
								watched[dir] = struct{}{}
							}
						}
						continue
					}
				}
				if userID, ok := s.userForPath(evt.Name); ok {
					throttle.Enqueue(userID, publish)
				}
			}
		}
	}()
	return done, nil
}

func collectDirs(base string) ([]string, error) {
	dirs := []string{filepath.Clean(base)}
	err := filepath.WalkDir(base, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		if d.IsDir() && path != base {
			if d.Name() == tempDir {
				return filepath.SkipDir
			}
			dirs = append(dirs, filepath.Clean(path))
		}
		return nil
	})
	return dirs, err
}

// userForPath maps {base}/{namespace}/users/{uid}/entries to uid.
func (s *Disk) userForPath(path string) (string, bool) {
	rel, err := filepath.Rel(s.basePath, path)
	if err != nil {
		return "", false
	}
	parts := strings.Split(rel, string(os.PathSeparator))
	if len(parts) != 4 {
		return "", false
	}
	if parts[0] != s.opts.namespace || parts[1] != usersDir || parts[3] != entriesDocument {
		return "", false
	}
	return parts[2], true
}

// eventThrottle coalesces bursts of filesystem events so each user is
// refreshed once per burst.
type eventThrottle struct {
	mu      sync.Mutex
	timer   *time.Timer
	pending map[string]struct{}
	delay   time.Duration
}

func newEventThrottle(delay time.Duration) *eventThrottle {
	return &eventThrottle{
		delay:   delay,
		pending: make(map[string]struct{}),
	}
}

func (t *eventThrottle) Enqueue(userID string, send func(string)) {
	t.mu.Lock()
	t.pending[userID] = struct{}{}
	if t.timer == nil {
		t.timer = time.AfterFunc(t.delay, func() {
			t.flush(send)
		})
	}
	t.mu.Unlock()
}

func (t *eventThrottle) flush(send func(string)) {
	t.mu.Lock()
	pending := t.pending
	t.pending = make(map[string]struct{})
	t.timer = nil
	t.mu.Unlock()

	if _, all := pending[""]; all {
		send("")
		return
	}
	for userID := range pending {
		send(userID)
	}
}

func (t *eventThrottle) Stop() {
	t.mu.Lock()
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
	t.mu.Unlock()
}
