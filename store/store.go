// Package store keeps named presentation documents in a pebble database.
// Values are native JSON documents; the store does not interpret them.
package store

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/cockroachdb/pebble"
)

const (
	deckPrefix = "deck/"
	metaPrefix = "meta/"
)

var (
	ErrNotFound    = errors.New("deck not found")
	ErrInvalidName = errors.New("invalid deck name")
	ErrClosed      = errors.New("store is closed")
)

// Entry describes a stored deck.
type Entry struct {
	Name    string    `json:"name"`
	Size    int       `json:"size"`
	SavedAt time.Time `json:"savedAt"`
}

// Store is a pebble backed deck store, safe for concurrent use.
type Store struct {
	mu     sync.RWMutex
	db     *pebble.DB
	logger func(string)
	now    func() time.Time
}

// Options configure Open.
type Options struct {
	// DisableWAL trades durability for write speed.
	DisableWAL bool
	Logger     func(string)
	// Pebble overrides the database options, e.g. to use an in-memory FS.
	Pebble *pebble.Options
}

// Open opens or creates the database at path.
func Open(path string, opts Options) (*Store, error) {
	po := opts.Pebble
	if po == nil {
		po = &pebble.Options{}
	}
	po.DisableWAL = opts.DisableWAL
	db, err := pebble.Open(path, po)
	if err != nil {
		return nil, fmt.Errorf("open deck store: %w", err)
	}
	return &Store{db: db, logger: opts.Logger, now: time.Now}, nil
}

func (s *Store) log(format string, args ...any) {
	if s.logger != nil {
		s.logger(fmt.Sprintf("[STORE] "+format, args...))
	}
}

// Close releases the database. Further calls fail with ErrClosed.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

func validName(name string) error {
	if strings.TrimSpace(name) == "" || strings.ContainsAny(name, "/\x00") {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}

// Save stores data under name, replacing any previous value. Document and
// listing entry are written in one synced batch.
func (s *Store) Save(name string, data []byte) error {
	if err := validName(name); err != nil {
		return err
	}
	meta, err := json.Marshal(Entry{Name: name, Size: len(data), SavedAt: s.now().UTC()})
	if err != nil {
		return err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.db == nil {
		return ErrClosed
	}
	batch := s.db.NewBatch()
	defer batch.Close()
	if err := batch.Set([]byte(deckPrefix+name), data, nil); err != nil {
		return err
	}
	if err := batch.Set([]byte(metaPrefix+name), meta, nil); err != nil {
		return err
	}
	if err := s.db.Apply(batch, pebble.Sync); err != nil {
		s.log("save %q failed: %v", name, err)
		return fmt.Errorf("save deck %q: %w", name, err)
	}
	s.log("saved %q (%d bytes)", name, len(data))
	return nil
}

// Load returns the document stored under name.
func (s *Store) Load(name string) ([]byte, error) {
	if err := validName(name); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.db == nil {
		return nil, ErrClosed
	}
	v, closer, err := s.db.Get([]byte(deckPrefix + name))
	if errors.Is(err, pebble.ErrNotFound) {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("load deck %q: %w", name, err)
	}
	defer closer.Close()
	return bytes.Clone(v), nil
}

// Delete removes name. Deleting a missing deck returns ErrNotFound.
func (s *Store) Delete(name string) error {
	if err := validName(name); err != nil {
		return err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.db == nil {
		return ErrClosed
	}
	_, closer, err := s.db.Get([]byte(deckPrefix + name))
	if errors.Is(err, pebble.ErrNotFound) {
		return fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	if err != nil {
		return err
	}
	closer.Close()

	batch := s.db.NewBatch()
	defer batch.Close()
	if err := batch.Delete([]byte(deckPrefix+name), nil); err != nil {
		return err
	}
	if err := batch.Delete([]byte(metaPrefix+name), nil); err != nil {
		return err
	}
	if err := s.db.Apply(batch, pebble.Sync); err != nil {
		return fmt.Errorf("delete deck %q: %w", name, err)
	}
	s.log("deleted %q", name)
	return nil
}

// List returns every stored deck, most recently saved first.
func (s *Store) List() ([]Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.db == nil {
		return nil, ErrClosed
	}
	iter, err := s.db.NewIter(&pebble.IterOptions{
		LowerBound: []byte(metaPrefix),
		UpperBound: upperBound(metaPrefix),
	})
	if err != nil {
		return nil, err
	}
	defer iter.Close()

	var out []Entry
	for iter.First(); iter.Valid(); iter.Next() {
		var e Entry
		if err := json.Unmarshal(iter.Value(), &e); err != nil {
			s.log("skipping unreadable entry %q: %v", iter.Key(), err)
			continue
		}
		out = append(out, e)
	}
	if err := iter.Error(); err != nil {
		return nil, err
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].SavedAt.Equal(out[j].SavedAt) {
			return out[i].SavedAt.After(out[j].SavedAt)
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

// upperBound returns the smallest key greater than every key with prefix.
func upperBound(prefix string) []byte {
	b := []byte(prefix)
	b[len(b)-1]++
	return b
}
