// Package storage provides the on-disk telemetry buffer backing an
// exporter. Blobs are written under the resolved storage path and swept
// periodically: entries older than the retention period are dropped, and
// the oldest entries go first when the buffer exceeds its size cap.
package storage

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/goinsight/insight"
)

const blobSuffix = ".blob"

// Store is a size- and age-bounded directory of telemetry blobs. It is
// safe for concurrent use.
type Store struct {
	path      string
	maxSize   int64
	retention time.Duration
	logger    *slog.Logger

	cron *cron.Cron
	mu   sync.Mutex
	seq  int64
}

// New creates the buffer directory for the given options and schedules
// maintenance at the configured period.
func New(opts *insight.Options, logger *slog.Logger) (*Store, error) {
	if opts == nil {
		return nil, insight.NewError("storage.new", "options are required", insight.ErrStorage)
	}
	if logger == nil {
		logger = slog.Default()
	}

	if err := os.MkdirAll(opts.StoragePath, 0o700); err != nil {
		return nil, insight.WrapError("storage.new", err, insight.ErrStorage)
	}

	s := &Store{
		path:      opts.StoragePath,
		maxSize:   opts.StorageMaxSize,
		retention: opts.StorageRetention,
		logger:    logger.With("component", "insight/storage"),
		cron:      cron.New(),
	}

	spec := fmt.Sprintf("@every %s", opts.StorageMaintenancePeriod)
	if _, err := s.cron.AddFunc(spec, s.maintain); err != nil {
		return nil, insight.WrapError("storage.new", err, insight.ErrStorage)
	}
	s.cron.Start()

	return s, nil
}

// Put writes a telemetry blob and returns its name.
func (s *Store) Put(data []byte) (string, error) {
	s.mu.Lock()
	s.seq++
	name := fmt.Sprintf("%d-%d%s", time.Now().UnixNano(), s.seq, blobSuffix)
	s.mu.Unlock()

	tmp := filepath.Join(s.path, name+".tmp")
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return "", insight.WrapError("storage.put", err, insight.ErrStorage)
	}
	if err := os.Rename(tmp, filepath.Join(s.path, name)); err != nil {
		os.Remove(tmp)
		return "", insight.WrapError("storage.put", err, insight.ErrStorage)
	}
	return name, nil
}

// Get reads a blob by name.
func (s *Store) Get(name string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(s.path, name))
	if err != nil {
		return nil, insight.WrapError("storage.get", err, insight.ErrStorage)
	}
	return data, nil
}

// Remove deletes a blob by name.
func (s *Store) Remove(name string) error {
	if err := os.Remove(filepath.Join(s.path, name)); err != nil {
		return insight.WrapError("storage.remove", err, insight.ErrStorage)
	}
	return nil
}

// List returns blob names, oldest first.
func (s *Store) List() ([]string, error) {
	entries, err := os.ReadDir(s.path)
	if err != nil {
		return nil, insight.WrapError("storage.list", err, insight.ErrStorage)
	}

	var names []string
	for _, entry := range entries {
		if !entry.IsDir() && filepath.Ext(entry.Name()) == blobSuffix {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// Maintain sweeps the buffer once: expired blobs are removed, then the
// oldest blobs until the buffer fits its size cap again.
func (s *Store) Maintain() error {
	entries, err := os.ReadDir(s.path)
	if err != nil {
		return insight.WrapError("storage.maintain", err, insight.ErrStorage)
	}

	type blob struct {
		name    string
		size    int64
		modTime time.Time
	}

	var (
		blobs []blob
		total int64
	)
	cutoff := time.Now().Add(-s.retention)

	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != blobSuffix {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			os.Remove(filepath.Join(s.path, entry.Name()))
			continue
		}
		blobs = append(blobs, blob{entry.Name(), info.Size(), info.ModTime()})
		total += info.Size()
	}

	sort.Slice(blobs, func(i, j int) bool {
		return blobs[i].modTime.Before(blobs[j].modTime)
	})

	for _, b := range blobs {
		if total <= s.maxSize {
			break
		}
		if err := os.Remove(filepath.Join(s.path, b.name)); err == nil {
			total -= b.size
		}
	}

	return nil
}

// maintain is the cron-driven sweep; failures are logged, never raised.
func (s *Store) maintain() {
	if err := s.Maintain(); err != nil {
		s.logger.Warn("storage maintenance failed", "error", err)
	}
}

// Path returns the buffer directory.
func (s *Store) Path() string {
	return s.path
}

// Close stops scheduled maintenance. Buffered blobs stay on disk.
func (s *Store) Close() error {
	ctx := s.cron.Stop()
	<-ctx.Done()
	return nil
}
