// Package store holds the server node's in-memory index: the hosted-files
// set and the remaining free-space counter. It is owned exclusively by the
// server reactor; mutation happens only inside dispatch handlers.
package store

import "strings"

// Store tracks one server's shared-folder index.
type Store struct {
	freeSpace int64
	// names preserves directory-enumeration / insertion order, since
	// MY_LIST chunking must preserve that order (SPEC_FULL.md open
	// question #3).
	names []string
	index map[string]int64 // filename -> size, for Release
}

// New creates a store with maxSpace bytes of capacity, already reduced by
// the sizes of the files named in initial (as if they were hosted from
// startup). Reports false if the initial files would overdraw maxSpace.
func New(maxSpace int64, initial map[string]int64, order []string) (*Store, bool) {
	s := &Store{
		freeSpace: maxSpace,
		index:     make(map[string]int64, len(initial)),
	}
	for _, name := range order {
		size, ok := initial[name]
		if !ok {
			continue
		}
		s.freeSpace -= size
		s.index[name] = size
		s.names = append(s.names, name)
	}
	return s, s.freeSpace >= 0
}

// FreeSpace returns the current free-space counter.
func (s *Store) FreeSpace() int64 {
	return s.freeSpace
}

// Contains reports whether name is currently hosted.
func (s *Store) Contains(name string) bool {
	_, ok := s.index[name]
	return ok
}

// Reserve debits size from free space and inserts name into the hosted
// set, in insertion order. Callers must have already validated
// size <= FreeSpace() and that name is not already hosted.
func (s *Store) Reserve(name string, size int64) {
	s.freeSpace -= size
	s.index[name] = size
	s.names = append(s.names, name)
}

// Release credits back the stored size for name and removes it from the
// hosted set. No-op if name is not hosted.
func (s *Store) Release(name string) {
	size, ok := s.index[name]
	if !ok {
		return
	}
	s.freeSpace += size
	delete(s.index, name)
	for i, n := range s.names {
		if n == name {
			s.names = append(s.names[:i], s.names[i+1:]...)
			break
		}
	}
}

// Search returns, in insertion order, every hosted filename containing
// substr (SPEC_FULL open question #2: strings.Contains, case-sensitive).
// An empty substr matches every hosted file.
func (s *Store) Search(substr string) []string {
	if substr == "" {
		out := make([]string, len(s.names))
		copy(out, s.names)
		return out
	}
	var out []string
	for _, name := range s.names {
		if strings.Contains(name, substr) {
			out = append(out, name)
		}
	}
	return out
}
