package acquire

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/checkam/scanverifier/constants"
)

// DropConfig configures the drop-zone directory watcher.
type DropConfig struct {
	Root        string        // directory acting as the drop zone (recursive)
	InitialScan bool          // if true, walk the root and emit existing images
	Debounce    time.Duration // coalesce rapid write/rename bursts
}

// WatchDrops watches a directory and emits paths of image files dropped into
// it. Non-image files never appear on the channel; dropping one is a no-op.
// All sends happen on a single goroutine; a slow consumer backpressures the
// watcher instead of losing drops, and cancelling ctx unblocks it.
func WatchDrops(ctx context.Context, cfg DropConfig) (<-chan string, <-chan error, error) {
	if cfg.Root == "" {
		slog.Error("drop watcher start failed: no root provided")
		return nil, nil, errors.New("no root provided")
	}
	evCh := make(chan string, 64)
	errCh := make(chan error, 1)

	w, err := fsnotify.NewWatcher()
	if err != nil {
		slog.Error("failed to create fsnotify watcher", "error", err)
		return nil, nil, err
	}

	var initial []string
	addErr := filepath.WalkDir(cfg.Root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			return w.Add(path)
		}
		if cfg.InitialScan && constants.IsImageExt(filepath.Ext(path)) {
			initial = append(initial, path)
		}
		return nil
	})
	if addErr != nil {
		slog.Error("failed to add drop root", "root", cfg.Root, "error", addErr)
		_ = w.Close()
		return nil, nil, addErr
	}

	go func() {
		defer close(evCh)
		defer close(errCh)
		defer func() { _ = w.Close() }()

		emit := func(p string) bool {
			select {
			case evCh <- p:
				return true
			case <-ctx.Done():
				return false
			}
		}

		for _, p := range initial {
			if !emit(p) {
				return
			}
		}

		var timer *time.Timer
		var timerC <-chan time.Time
		defer func() {
			if timer != nil {
				timer.Stop()
			}
		}()
		pending := map[string]struct{}{}

		flush := func() bool {
			for p := range pending {
				if !emit(p) {
					return false
				}
				delete(pending, p)
			}
			return true
		}

		for {
			select {
			case <-ctx.Done():
				return
			case <-timerC:
				timerC = nil
				if !flush() {
					return
				}
			case e, ok := <-w.Events:
				if !ok {
					return
				}
				if e.Op&fsnotify.Create == fsnotify.Create {
					// A new subdirectory also becomes part of the drop zone.
					tryAddDir(w, e.Name)
				}
				if constants.IsImageExt(filepath.Ext(e.Name)) && e.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) != 0 {
					pending[e.Name] = struct{}{}
					if cfg.Debounce > 0 {
						if timer == nil {
							timer = time.NewTimer(cfg.Debounce)
						} else {
							if !timer.Stop() {
								select {
								case <-timer.C:
								default:
								}
							}
							timer.Reset(cfg.Debounce)
						}
						timerC = timer.C
					} else if !flush() {
						return
					}
				}
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				slog.Error("drop watcher error", "error", err)
				select {
				case errCh <- err:
				default:
				}
			}
		}
	}()

	return evCh, errCh, nil
}

func tryAddDir(w *fsnotify.Watcher, path string) {
	// Best-effort: adding a plain file fails; that is fine.
	if err := w.Add(path); err != nil {
		slog.Debug("drop watcher add skipped", "path", path, "error", err)
	}
}
