package engine

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/egoavara/plugin-convert/internal/core"
	"github.com/egoavara/plugin-convert/internal/fsutil"
)

var (
	stores   = make(map[string]*StateStore)
	storesMu sync.Mutex
)

// StateStore reads and writes the sync-state sidecar of one output directory
type StateStore struct {
	mu   sync.RWMutex
	path string
}

// StoreFor returns the shared store for an output directory
func StoreFor(outputDir string) *StateStore {
	path := filepath.Join(filepath.Clean(outputDir), core.SyncStateFile)

	storesMu.Lock()
	defer storesMu.Unlock()

	if s, ok := stores[path]; ok {
		return s
	}
	s := &StateStore{path: path}
	stores[path] = s
	return s
}

// Path returns the sidecar file path
func (s *StateStore) Path() string {
	return s.path
}

// Load reads the sync state. It returns nil without error when none has been recorded.
func (s *StateStore) Load() (*core.SyncState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var state core.SyncState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", core.SyncStateFile, err)
	}
	if state.ComponentHashes == nil {
		state.ComponentHashes = make(map[string]string)
	}
	return &state, nil
}

// Save writes the sync state
func (s *StateStore) Save(state *core.SyncState) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return fsutil.WriteJSON(s.path, state)
}
