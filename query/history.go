package query

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/pkg/errors"
)

// DefaultHistoryLimit bounds the number of entries kept per ring.
const DefaultHistoryLimit = 100

// History is a ring of past query strings with a navigation cursor.
// One ring per channel, or a single global ring with --global-history.
type History struct {
	mutex   sync.Mutex
	entries []string
	cursor  int // index into entries; len(entries) means "past the end"
	limit   int
	stash   string // in-progress query saved when navigation begins
}

func NewHistory(limit int) *History {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	return &History{limit: limit, cursor: 0}
}

// Push appends a query to the ring, dropping consecutive duplicates and
// empties, and resets the cursor past the end.
func (h *History) Push(q string) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	q = strings.TrimSpace(q)
	if q == "" {
		h.cursor = len(h.entries)
		return
	}
	if n := len(h.entries); n > 0 && h.entries[n-1] == q {
		h.cursor = len(h.entries)
		return
	}
	h.entries = append(h.entries, q)
	if len(h.entries) > h.limit {
		h.entries = h.entries[len(h.entries)-h.limit:]
	}
	h.cursor = len(h.entries)
}

// Prev moves the cursor back and returns the entry there. The current
// input is stashed on first navigation so Next can restore it.
func (h *History) Prev(current string) (string, bool) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	if len(h.entries) == 0 || h.cursor == 0 {
		return "", false
	}
	if h.cursor == len(h.entries) {
		h.stash = current
	}
	h.cursor--
	return h.entries[h.cursor], true
}

// Next moves the cursor forward; past the end it restores the stash.
func (h *History) Next() (string, bool) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	if h.cursor >= len(h.entries) {
		return "", false
	}
	h.cursor++
	if h.cursor == len(h.entries) {
		return h.stash, true
	}
	return h.entries[h.cursor], true
}

// Len returns the number of stored entries.
func (h *History) Len() int {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	return len(h.entries)
}

// LoadHistory reads a history ring from the given file. A missing file is
// not an error; it yields an empty ring.
func LoadHistory(path string, limit int) (*History, error) {
	h := NewHistory(limit)

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return h, nil
		}
		return nil, errors.Wrap(err, "failed to open history file")
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		h.Push(scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to read history file")
	}
	return h, nil
}

// Save writes the ring to the given file, creating parent directories.
func (h *History) Save(path string) error {
	h.mutex.Lock()
	entries := make([]string, len(h.entries))
	copy(entries, h.entries)
	h.mutex.Unlock()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrap(err, "failed to create history directory")
	}

	f, err := os.CreateTemp(filepath.Dir(path), ".history-*")
	if err != nil {
		return errors.Wrap(err, "failed to create history temp file")
	}
	for _, e := range entries {
		if _, err := f.WriteString(e + "\n"); err != nil {
			f.Close()
			os.Remove(f.Name())
			return errors.Wrap(err, "failed to write history")
		}
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return errors.Wrap(err, "failed to close history temp file")
	}
	return errors.Wrap(os.Rename(f.Name(), path), "failed to replace history file")
}
