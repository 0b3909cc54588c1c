package session

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/harun/chronicle/internal/observability"
	"github.com/rs/zerolog/log"
)

const (
	logSuffix  = ".jsonl"
	metaSuffix = ".meta.json"
)

// Store persists session message logs and metadata records under a single
// catalog root directory. Each session id owns two files: <id>.jsonl for the
// append-only message log and <id>.meta.json for the metadata record.
type Store struct {
	root       string
	writeLocks map[string]*sync.Mutex
	locksMu    sync.RWMutex
}

// Open creates a Store rooted at dir, creating the directory if needed.
func Open(dir string) (*Store, error) {
	observability.EnsureRegistered()

	if dir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		dir = filepath.Join(homeDir, ".chronicle", "sessions")
	}

	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create catalog root: %w", err)
	}

	s := &Store{
		root:       dir,
		writeLocks: make(map[string]*sync.Mutex),
	}

	log.Info().Str("dir", dir).Msg("Session store opened")
	s.updateActiveSessionsMetric()

	return s, nil
}

// Root returns the catalog root directory.
func (s *Store) Root() string {
	return s.root
}

// ValidateID checks that a session id is non-empty and path-safe.
func ValidateID(id string) error {
	if id == "" {
		return fmt.Errorf("%w: id is empty", ErrInvalidSessionID)
	}
	if strings.Contains(id, "..") {
		return fmt.Errorf("%w: id contains '..'", ErrInvalidSessionID)
	}
	if strings.ContainsAny(id, "/\\") {
		return fmt.Errorf("%w: id contains path separators", ErrInvalidSessionID)
	}
	if strings.Contains(id, "\x00") {
		return fmt.Errorf("%w: id contains null bytes", ErrInvalidSessionID)
	}
	return nil
}

// logPath returns the message log path for a session. The mapping is
// deterministic and injective for every valid id.
func (s *Store) logPath(id string) string {
	return filepath.Join(s.root, id+logSuffix)
}

// metaPath returns the metadata record path for a session.
func (s *Store) metaPath(id string) string {
	return filepath.Join(s.root, id+metaSuffix)
}

// exists reports whether a session has been materialized. A session exists
// iff its message log file exists.
func (s *Store) exists(id string) (bool, error) {
	_, err := os.Stat(s.logPath(id))
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, fmt.Errorf("failed to stat session log: %w: %v", ErrStorage, err)
}

// getWriteLock gets or creates the write lock for a session. Locks are keyed
// by id so operations on distinct sessions never contend.
func (s *Store) getWriteLock(id string) *sync.Mutex {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()

	if lock, exists := s.writeLocks[id]; exists {
		return lock
	}

	lock := &sync.Mutex{}
	s.writeLocks[id] = lock
	return lock
}

func (s *Store) updateActiveSessionsMetric() {
	ids, err := s.sessionIDs()
	if err != nil {
		return
	}
	observability.SetActiveSessions(len(ids))
}

// Close releases the store's in-memory state.
func (s *Store) Close() error {
	s.locksMu.Lock()
	s.writeLocks = make(map[string]*sync.Mutex)
	s.locksMu.Unlock()

	log.Info().Msg("Session store closed")

	return nil
}
