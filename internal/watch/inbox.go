package watch

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Inbox watches a folder and submits files created in it, the desktop
// analogue of dropping a file on the web client's upload zone.
type Inbox struct {
	dir      string
	submit   func(path string)
	debounce time.Duration

	watcher *fsnotify.Watcher
	ctx     context.Context
	cancel  context.CancelFunc

	mu      sync.Mutex
	pending map[string]*time.Timer
	running bool
}

// NewInbox creates a watcher for dir. Submit is called once per settled
// file; writes are debounced per path so partially-copied files wait.
func NewInbox(dir string, submit func(path string)) (*Inbox, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Inbox{
		dir:      dir,
		submit:   submit,
		debounce: 500 * time.Millisecond,
		watcher:  fsw,
		ctx:      ctx,
		cancel:   cancel,
		pending:  map[string]*time.Timer{},
	}, nil
}

// Start begins watching the inbox directory.
func (i *Inbox) Start() error {
	i.mu.Lock()
	if i.running {
		i.mu.Unlock()
		return nil
	}
	i.running = true
	i.mu.Unlock()

	if err := i.watcher.Add(i.dir); err != nil {
		return err
	}

	go i.watchLoop()
	return nil
}

// Stop halts the watcher and drops pending submissions. Idempotent.
func (i *Inbox) Stop() error {
	i.mu.Lock()
	defer i.mu.Unlock()

	if !i.running {
		return nil
	}
	i.running = false
	i.cancel()
	for path, timer := range i.pending {
		timer.Stop()
		delete(i.pending, path)
	}
	return i.watcher.Close()
}

// watchLoop handles create/write events until the context is cancelled.
func (i *Inbox) watchLoop() {
	for {
		select {
		case <-i.ctx.Done():
			return

		case event, ok := <-i.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			if !eligible(event.Name) {
				continue
			}
			i.schedule(event.Name)

		case _, ok := <-i.watcher.Errors:
			if !ok {
				return
			}
		}
	}
}

// schedule arms (or re-arms) the per-path debounce timer.
func (i *Inbox) schedule(path string) {
	i.mu.Lock()
	defer i.mu.Unlock()

	if !i.running {
		return
	}
	if timer, exists := i.pending[path]; exists {
		timer.Reset(i.debounce)
		return
	}
	i.pending[path] = time.AfterFunc(i.debounce, func() { i.fire(path) })
}

// fire hands a settled file to the submit callback.
func (i *Inbox) fire(path string) {
	i.mu.Lock()
	delete(i.pending, path)
	running := i.running
	i.mu.Unlock()

	if !running {
		return
	}

	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return
	}
	i.submit(path)
}

// eligible skips dotfiles and temp artifacts left by copy tools.
func eligible(path string) bool {
	name := filepath.Base(path)
	if strings.HasPrefix(name, ".") || strings.HasSuffix(name, "~") {
		return false
	}
	return true
}
