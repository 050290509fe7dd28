package channels

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// Cable is the directory of channel prototypes. It keeps an in-memory
// index by channel name and can watch the directory so the remote
// control list stays fresh while tv runs.
type Cable struct {
	mutex   sync.RWMutex
	dir     string
	byName  map[string]*Prototype
	watcher *fsnotify.Watcher
}

// NewCable scans the given directory. A missing directory yields an
// empty cable, not an error; channels can still come from the CLI.
func NewCable(dir string) (*Cable, error) {
	c := &Cable{
		dir:    dir,
		byName: make(map[string]*Prototype),
	}
	if err := c.Rescan(); err != nil {
		return nil, err
	}
	return c, nil
}

// Dir returns the cable directory path.
func (c *Cable) Dir() string {
	return c.dir
}

// Rescan re-reads every prototype file in the cable directory. Files
// that fail to parse are logged and skipped; one broken channel must not
// take down the rest of the cable.
func (c *Cable) Rescan() error {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return errors.Wrap(err, "failed to read cable directory")
	}

	byName := make(map[string]*Prototype)
	for _, de := range entries {
		if de.IsDir() {
			continue
		}
		ext := filepath.Ext(de.Name())
		if ext != ".yaml" && ext != ".yml" {
			continue
		}

		path := filepath.Join(c.dir, de.Name())
		b, err := os.ReadFile(path)
		if err != nil {
			log.WithField("file", path).WithError(err).Warn("skipping unreadable channel file")
			continue
		}
		p, err := Parse(b)
		if err != nil {
			log.WithField("file", path).WithError(err).Warn("skipping malformed channel file")
			continue
		}
		byName[p.Metadata.Name] = p
	}

	c.mutex.Lock()
	c.byName = byName
	c.mutex.Unlock()
	return nil
}

// Get returns the prototype for a channel name.
func (c *Cable) Get(name string) (*Prototype, bool) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	p, ok := c.byName[name]
	return p, ok
}

// Names returns all channel names, sorted.
func (c *Cable) Names() []string {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	names := make([]string, 0, len(c.byName))
	for n := range c.byName {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Descriptions returns "name\tdescription" lines for the remote control
// source, sorted by name.
func (c *Cable) Descriptions() []string {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	out := make([]string, 0, len(c.byName))
	for n, p := range c.byName {
		desc := strings.ReplaceAll(p.Metadata.Description, "\n", " ")
		out = append(out, n+"\t"+desc)
	}
	sort.Strings(out)
	return out
}

// Watch re-scans the cable directory when prototype files change and
// invokes onChange after each successful rescan. Stops when the watcher
// is closed via StopWatch.
func (c *Cable) Watch(onChange func()) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "failed to create cable watcher")
	}
	if err := w.Add(c.dir); err != nil {
		w.Close()
		return errors.Wrap(err, "failed to watch cable directory")
	}

	c.mutex.Lock()
	c.watcher = w
	c.mutex.Unlock()

	go func() {
		for {
			select {
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
					continue
				}
				if err := c.Rescan(); err != nil {
					log.WithError(err).Warn("cable rescan failed")
					continue
				}
				if onChange != nil {
					onChange()
				}
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				log.WithError(err).Warn("cable watcher error")
			}
		}
	}()
	return nil
}

// StopWatch closes the directory watcher, if any.
func (c *Cable) StopWatch() {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	if c.watcher != nil {
		_ = c.watcher.Close()
		c.watcher = nil
	}
}

// WritePrototype saves a prototype into the cable directory, used by
// update-channels. The file name is the channel name.
func (c *Cable) WritePrototype(p *Prototype, force bool) error {
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return errors.Wrap(err, "failed to create cable directory")
	}
	path := filepath.Join(c.dir, p.Metadata.Name+".yaml")
	if !force {
		if _, err := os.Stat(path); err == nil {
			return errors.Errorf("channel file %s already exists (use --force)", path)
		}
	}
	b, err := p.Emit()
	if err != nil {
		return err
	}
	return errors.Wrap(os.WriteFile(path, b, 0o644), "failed to write channel file")
}
