// Named sets of strings (such as word lists), for membership checks by classifiers.
package setstore

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"sync"
)

type SetStore interface {
	InSet(ctx context.Context, name, val string) (bool, error)
}

// In-memory store. Safe for concurrent use; sets may be replaced at runtime (eg, on a word list reload).
type MemSetStore struct {
	// Applied to every value when added, if set. Lookups are not normalized: callers pass values normalized the same way.
	Normalize func(string) string

	mu   sync.RWMutex
	sets map[string]map[string]bool
}

var _ SetStore = (*MemSetStore)(nil)

func NewMemSetStore() *MemSetStore {
	return &MemSetStore{
		sets: make(map[string]map[string]bool),
	}
}

func (s *MemSetStore) InSet(ctx context.Context, name, val string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	set, ok := s.sets[name]
	if !ok {
		// NOTE: currently returns false when entire set isn't found
		return false, nil
	}
	return set[val], nil
}

// Adds values to the named set, creating it if needed.
func (s *MemSetStore) Add(name string, vals ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	set, ok := s.sets[name]
	if !ok {
		set = make(map[string]bool, len(vals))
		s.sets[name] = set
	}
	for _, v := range vals {
		if s.Normalize != nil {
			v = s.Normalize(v)
		}
		if v != "" {
			set[v] = true
		}
	}
}

// Replaces the named set entirely.
func (s *MemSetStore) Replace(name string, vals []string) {
	s.mu.Lock()
	delete(s.sets, name)
	s.mu.Unlock()
	s.Add(name, vals...)
}

func (s *MemSetStore) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.sets))
	for name := range s.sets {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func (s *MemSetStore) Len(name string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sets[name])
}

// Loads sets from a JSON file: an object mapping set names to arrays of strings. Sets present in the file replace existing sets of the same name.
func (s *MemSetStore) LoadFromFileJSON(p string) error {
	f, err := os.Open(p)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	raw, err := io.ReadAll(f)
	if err != nil {
		return err
	}

	var sets map[string][]string
	if err := json.Unmarshal(raw, &sets); err != nil {
		return fmt.Errorf("parsing set file %s: %w", p, err)
	}

	for name, l := range sets {
		s.Replace(name, l)
	}
	return nil
}
