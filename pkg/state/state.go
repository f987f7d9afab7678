package state

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"

	"mail2slack/pkg/fileutil"
	"mail2slack/pkg/logger"
)

// FileStore is a JSON-file key-value store. Every write is flushed with an
// atomic rename, so a crash never leaves a truncated file behind. The file is
// re-read on every operation, so processes sharing it (the server and the
// CLI) see each other's writes.
type FileStore struct {
	log      *logger.Logger
	filePath string
	data     map[string]string
	mu       sync.Mutex
}

// NewFileStore opens (or creates) the state file at path.
func NewFileStore(log *logger.Logger, path string) (*FileStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("creating state directory: %w", err)
	}

	s := &FileStore{
		log:      log,
		filePath: path,
		data:     make(map[string]string),
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.loadLocked(); err != nil {
		return nil, fmt.Errorf("loading state: %w", err)
	}

	return s, nil
}

// Get retrieves a value from the store.
func (s *FileStore) Get(ctx context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.loadLocked(); err != nil {
		return "", false, err
	}
	value, exists := s.data[key]
	return value, exists, nil
}

// Set stores a value and persists the file.
func (s *FileStore) Set(ctx context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.loadLocked(); err != nil {
		return err
	}
	s.data[key] = value
	return s.saveLocked()
}

// Delete removes a value and persists the file.
func (s *FileStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.loadLocked(); err != nil {
		return err
	}
	if _, ok := s.data[key]; !ok {
		return nil
	}
	delete(s.data, key)
	return s.saveLocked()
}

// Keys returns the sorted keys that start with prefix.
func (s *FileStore) Keys(ctx context.Context, prefix string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.loadLocked(); err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(s.data))
	for k := range s.data {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

// Close is a no-op; writes are never buffered.
func (s *FileStore) Close() error {
	return nil
}

// loadLocked replaces the in-memory map with the file contents. A missing
// file is an empty store. Caller must hold the lock.
func (s *FileStore) loadLocked() error {
	data, err := os.ReadFile(s.filePath)
	if os.IsNotExist(err) {
		s.data = make(map[string]string)
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading state file: %w", err)
	}

	fresh := make(map[string]string)
	if err := json.Unmarshal(data, &fresh); err != nil {
		return fmt.Errorf("unmarshaling state: %w", err)
	}
	s.data = fresh
	return nil
}

// saveLocked persists state to disk. Caller must hold the lock.
func (s *FileStore) saveLocked() error {
	data, err := json.MarshalIndent(s.data, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling state: %w", err)
	}

	// Tokens live here; keep the file private to the service user.
	if err := fileutil.WriteFileAtomic(s.filePath, data, 0600); err != nil {
		return fmt.Errorf("writing state file: %w", err)
	}

	s.log.Debug("Saved state", zap.String("file", s.filePath), zap.Int("keys", len(s.data)))
	return nil
}
