package editor

import (
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

const debounceDelay = 200 * time.Millisecond

// fileWatcher reports external writes to a single file. It watches the
// parent directory so atomic rename-based saves are seen as well.
type fileWatcher struct {
	fsw     *fsnotify.Watcher
	logger  *slog.Logger
	changes chan string

	mu     sync.Mutex
	target string
	dir    string

	done chan struct{}
	once sync.Once
}

func newFileWatcher(logger *slog.Logger) (*fileWatcher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	w := &fileWatcher{
		fsw:     fsw,
		logger:  logger,
		changes: make(chan string, 1),
		done:    make(chan struct{}),
	}
	go w.run()
	return w, nil
}

// Watch switches the watched file to abs.
func (w *fileWatcher) Watch(abs string) error {
	dir := filepath.Dir(abs)

	w.mu.Lock()
	defer w.mu.Unlock()
	if dir != w.dir {
		if w.dir != "" {
			_ = w.fsw.Remove(w.dir)
		}
		if err := w.fsw.Add(dir); err != nil {
			return err
		}
		w.dir = dir
	}
	w.target = abs
	return nil
}

// Changes delivers the path of the watched file after it settles.
func (w *fileWatcher) Changes() <-chan string { return w.changes }

// Close stops the watcher. Changes is closed once the loop exits.
func (w *fileWatcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.done)
		err = w.fsw.Close()
	})
	return err
}

func (w *fileWatcher) current() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.target
}

func (w *fileWatcher) run() {
	defer close(w.changes)

	var timer *time.Timer
	var fire <-chan time.Time
	var pending string

	for {
		select {
		case <-w.done:
			if timer != nil {
				timer.Stop()
			}
			return

		case <-fire:
			fire = nil
			select {
			case w.changes <- pending:
			default:
			}

		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			target := w.current()
			if filepath.Clean(ev.Name) != target {
				continue
			}
			pending = target
			if timer == nil {
				timer = time.NewTimer(debounceDelay)
			} else {
				timer.Reset(debounceDelay)
			}
			fire = timer.C

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watcher: error", slog.String("error", err.Error()))
		}
	}
}
