// Package frecency keeps per-channel usage counts so frequently and
// recently confirmed entries rank above near-ties. The store is a YAML
// file in the data directory, guarded by a file lock so concurrent tv
// processes do not clobber each other's writes.
package frecency

import (
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/gofrs/flock"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// maxEntriesPerChannel bounds the store; the least recently used outputs
// are dropped on save.
const maxEntriesPerChannel = 512

// halfLife is the age at which a use counts half.
const halfLife = 7 * 24 * time.Hour

// Record is the stored usage data for one entry output.
type Record struct {
	Count    int   `yaml:"count"`
	LastUsed int64 `yaml:"last_used"` // unix seconds
}

type storeFile struct {
	Channels map[string]map[string]Record `yaml:"channels"`
}

// Store is the in-memory frecency state for one channel.
type Store struct {
	mutex   sync.RWMutex
	path    string
	channel string
	records map[string]Record
	now     func() time.Time
}

// Load reads the store file and scopes it to one channel. A missing file
// yields an empty store.
func Load(path, channel string) (*Store, error) {
	s := &Store{
		path:    path,
		channel: channel,
		records: make(map[string]Record),
		now:     time.Now,
	}

	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, errors.Wrap(err, "failed to read frecency store")
	}

	var f storeFile
	if err := yaml.Unmarshal(b, &f); err != nil {
		// A corrupt store is not worth dying over; start fresh
		log.WithError(err).Warn("frecency store is corrupt, starting over")
		return s, nil
	}
	if recs, ok := f.Channels[channel]; ok {
		s.records = recs
	}
	return s, nil
}

// Bump records one confirmed use of an output.
func (s *Store) Bump(output string) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	r := s.records[output]
	r.Count++
	r.LastUsed = s.now().Unix()
	s.records[output] = r
}

// Score implements matcher.Bias: recent, frequent outputs get a small
// positive score. The decay halves per halfLife so stale habits fade.
func (s *Store) Score(output string) int {
	s.mutex.RLock()
	r, ok := s.records[output]
	s.mutex.RUnlock()
	if !ok {
		return 0
	}

	age := s.now().Sub(time.Unix(r.LastUsed, 0))
	if age < 0 {
		age = 0
	}
	// Integer decay: count halved once per elapsed half-life
	score := r.Count
	for age >= halfLife && score > 0 {
		score /= 2
		age -= halfLife
	}
	return score
}

// Len returns the number of tracked outputs.
func (s *Store) Len() int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return len(s.records)
}

// Save merges this channel's records back into the store file under a
// file lock, preserving other channels' data written meanwhile.
func (s *Store) Save() error {
	s.mutex.RLock()
	records := make(map[string]Record, len(s.records))
	for k, v := range s.records {
		records[k] = v
	}
	s.mutex.RUnlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return errors.Wrap(err, "failed to create data directory")
	}

	lock := flock.New(s.path + ".lock")
	if err := lock.Lock(); err != nil {
		return errors.Wrap(err, "failed to lock frecency store")
	}
	defer func() { _ = lock.Unlock() }()

	var f storeFile
	if b, err := os.ReadFile(s.path); err == nil {
		_ = yaml.Unmarshal(b, &f)
	}
	if f.Channels == nil {
		f.Channels = make(map[string]map[string]Record)
	}
	f.Channels[s.channel] = trim(records)

	b, err := yaml.Marshal(&f)
	if err != nil {
		return errors.Wrap(err, "failed to encode frecency store")
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".frecency-*")
	if err != nil {
		return errors.Wrap(err, "failed to create frecency temp file")
	}
	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return errors.Wrap(err, "failed to write frecency store")
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return errors.Wrap(err, "failed to close frecency temp file")
	}
	return errors.Wrap(os.Rename(tmp.Name(), s.path), "failed to replace frecency store")
}

// trim drops the least recently used records past the per-channel bound.
func trim(records map[string]Record) map[string]Record {
	if len(records) <= maxEntriesPerChannel {
		return records
	}

	type kv struct {
		key string
		rec Record
	}
	all := make([]kv, 0, len(records))
	for k, v := range records {
		all = append(all, kv{k, v})
	}
	sort.Slice(all, func(i, j int) bool {
		return all[i].rec.LastUsed < all[j].rec.LastUsed
	})

	out := make(map[string]Record, maxEntriesPerChannel)
	for _, e := range all[len(all)-maxEntriesPerChannel:] {
		out[e.key] = e.rec
	}
	return out
}
