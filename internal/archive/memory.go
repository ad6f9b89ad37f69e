package archive

import (
	"fmt"
	"os"
	"sync"

	"logtidy/internal/logtidy"
)

// MemoryStore is an in-memory implementation of the ArchiveStore interface.
// Entry contents are read from disk when added. It is intended for tests and
// can be told to fail when a given entry name is added.
// This implementation is safe for concurrent use.
type MemoryStore struct {
	archives map[string][]memoryEntry // archive path -> entries in stored order
	failOn   string
	mu       sync.RWMutex
}

type memoryEntry struct {
	name string
	data []byte
}

// NewMemoryStore creates an empty in-memory archive store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{archives: make(map[string][]memoryEntry)}
}

// FailOn makes every later attempt to store an entry called name fail.
func (m *MemoryStore) FailOn(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failOn = name
}

// Put seeds an archive at path with empty entries of the given names.
func (m *MemoryStore) Put(path string, names ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entries := m.archives[path]
	for _, name := range names {
		entries = append(entries, memoryEntry{name: name})
	}
	m.archives[path] = entries
}

// Content returns the data stored for an entry.
func (m *MemoryStore) Content(path, name string) ([]byte, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, e := range m.archives[path] {
		if e.name == name {
			return e.data, true
		}
	}
	return nil, false
}

func (m *MemoryStore) Exists(path string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.archives[path]
	return ok, nil
}

func (m *MemoryStore) Create(path string, entries []logtidy.ArchiveEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.archives[path]; ok {
		return fmt.Errorf("archive already exists: %s", path)
	}

	seen := make(logtidy.NameSet, len(entries))
	stored := make([]memoryEntry, 0, len(entries))
	for _, e := range entries {
		if seen.Has(e.Name) {
			return fmt.Errorf("duplicate entry name: %s", e.Name)
		}
		me, err := m.read(e)
		if err != nil {
			return err
		}
		stored = append(stored, me)
		seen.Add(e.Name)
	}

	m.archives[path] = stored
	return nil
}

func (m *MemoryStore) Open(path string) (logtidy.ArchiveWriter, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	existing, ok := m.archives[path]
	if !ok {
		return nil, fmt.Errorf("archive not found: %s", path)
	}

	u := &memoryUpdate{store: m, path: path}
	u.entries = append(u.entries, existing...)
	return u, nil
}

// IsTemp always reports false: nothing is written to disk.
func (m *MemoryStore) IsTemp(string) bool { return false }

func (m *MemoryStore) List(path string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	entries, ok := m.archives[path]
	if !ok {
		return nil, fmt.Errorf("archive not found: %s", path)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.name)
	}
	return names, nil
}

// read loads an entry's source file. Callers hold the lock.
func (m *MemoryStore) read(e logtidy.ArchiveEntry) (memoryEntry, error) {
	if m.failOn != "" && e.Name == m.failOn {
		return memoryEntry{}, fmt.Errorf("injected failure storing %s", e.Name)
	}
	data, err := os.ReadFile(e.Source)
	if err != nil {
		return memoryEntry{}, fmt.Errorf("reading %s: %w", e.Source, err)
	}
	return memoryEntry{name: e.Name, data: data}, nil
}

type memoryUpdate struct {
	store   *MemoryStore
	path    string
	entries []memoryEntry
	done    bool
}

func (u *memoryUpdate) Names() []string {
	names := make([]string, 0, len(u.entries))
	for _, e := range u.entries {
		names = append(names, e.name)
	}
	return names
}

func (u *memoryUpdate) Add(e logtidy.ArchiveEntry) error {
	if u.done {
		return fmt.Errorf("archive update already finished: %s", u.path)
	}
	for _, existing := range u.entries {
		if existing.name == e.Name {
			return fmt.Errorf("entry already exists: %s", e.Name)
		}
	}

	u.store.mu.RLock()
	me, err := u.store.read(e)
	u.store.mu.RUnlock()
	if err != nil {
		return err
	}
	u.entries = append(u.entries, me)
	return nil
}

func (u *memoryUpdate) Commit() error {
	if u.done {
		return fmt.Errorf("archive update already finished: %s", u.path)
	}
	u.done = true

	u.store.mu.Lock()
	defer u.store.mu.Unlock()
	u.store.archives[u.path] = u.entries
	return nil
}

func (u *memoryUpdate) Abort() error {
	u.done = true
	return nil
}

// Compile-time check that MemoryStore implements logtidy.ArchiveStore interface
var _ logtidy.ArchiveStore = (*MemoryStore)(nil)
