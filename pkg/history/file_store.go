package history

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// lock acquisition retry cadence. Concurrent CLI invocations contend for
// milliseconds, so a short poll with a hard deadline is enough.
const (
	lockRetryInterval = 20 * time.Millisecond
	lockTimeout       = 5 * time.Second
	// lockStaleAfter guards against lock files orphaned by a killed process.
	lockStaleAfter = 30 * time.Second
)

// FileStore is the JSON file ledger. Appends are read-modify-write under an
// exclusive lock file, with the new document written to a temporary path and
// renamed into place so a crash mid-append never leaves a torn file.
type FileStore struct {
	path  string
	clock func() time.Time
}

// NewFileStore creates a ledger backed by the JSON document at path.
func NewFileStore(path string) *FileStore {
	return NewFileStoreWithClock(path, time.Now)
}

// NewFileStoreWithClock creates a FileStore with an injectable clock.
func NewFileStoreWithClock(path string, clock func() time.Time) *FileStore {
	return &FileStore{path: path, clock: clock}
}

// Load reads the full history. A missing file is an empty history, not an
// error.
func (s *FileStore) Load(ctx context.Context) (History, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return History{}, nil
	}
	if err != nil {
		return History{}, fmt.Errorf("history: read %s: %w", s.path, err)
	}

	var h History
	if err := json.Unmarshal(data, &h); err != nil {
		return History{}, fmt.Errorf("history: parse %s: %w", s.path, err)
	}
	return h, nil
}

// Append adds entry to the ledger. The read-modify-write cycle runs under
// the lock file so concurrent invocations from separate processes cannot
// lose each other's entries.
func (s *FileStore) Append(ctx context.Context, entry Entry) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("history: create directory: %w", err)
	}

	unlock, err := s.acquireLock(ctx)
	if err != nil {
		return err
	}
	defer unlock()

	h, err := s.Load(ctx)
	if err != nil {
		return err
	}
	h.Entries = append(h.Entries, entry)

	data, err := json.MarshalIndent(h, "", "  ")
	if err != nil {
		return fmt.Errorf("history: encode: %w", err)
	}

	// Write-then-rename keeps the ledger intact if we die mid-write.
	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".trust-history-*.tmp")
	if err != nil {
		return fmt.Errorf("history: create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("history: write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("history: close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("history: rename into place: %w", err)
	}
	return nil
}

// acquireLock takes the ledger lock file with O_CREATE|O_EXCL semantics,
// polling until the context deadline or lockTimeout. Lock files older than
// lockStaleAfter are reclaimed as orphans: the stale file is renamed aside
// first, so when several writers spot the same orphan only the one whose
// rename succeeds clears it and the rest keep polling.
func (s *FileStore) acquireLock(ctx context.Context) (func(), error) {
	lockPath := s.path + ".lock"
	deadline := s.clock().Add(lockTimeout)

	for {
		f, err := os.OpenFile(lockPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
		if err == nil {
			f.Close()
			return func() { os.Remove(lockPath) }, nil
		}
		if !os.IsExist(err) {
			return nil, fmt.Errorf("history: create lock file: %w", err)
		}

		if info, statErr := os.Stat(lockPath); statErr == nil {
			if s.clock().Sub(info.ModTime()) > lockStaleAfter {
				reclaimed := fmt.Sprintf("%s.stale.%d", lockPath, os.Getpid())
				if os.Rename(lockPath, reclaimed) == nil {
					os.Remove(reclaimed)
				}
				continue
			}
		}

		if s.clock().After(deadline) {
			return nil, ErrLockTimeout
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(lockRetryInterval):
		}
	}
}
