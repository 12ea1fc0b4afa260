package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
)

// Keys under which the catalog collections are persisted.
const (
	SubjectsKey  = "studyhub_subjects"
	DocumentsKey = "studyhub_documents"
)

// ErrNotFound is returned by a Backend when a key has never been written.
var ErrNotFound = errors.New("store: key not found")

// Backend is a raw key-value medium.
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	Close() error
}

// LoadStatus tags the outcome of a Load.
type LoadStatus int

const (
	Loaded LoadStatus = iota
	Absent
	Corrupt
)

func (s LoadStatus) String() string {
	switch s {
	case Loaded:
		return "loaded"
	case Absent:
		return "absent"
	case Corrupt:
		return "corrupt"
	default:
		return fmt.Sprintf("LoadStatus(%d)", int(s))
	}
}

// LoadResult reports what Load found. Err is set for Corrupt results and for
// backend read failures, which are reported as Absent.
type LoadResult struct {
	Status LoadStatus
	Err    error
}

// OK reports whether dest was populated.
func (r LoadResult) OK() bool {
	return r.Status == Loaded
}

// Store serializes collections to JSON over a Backend.
type Store struct {
	backend Backend
	log     *logrus.Entry
}

// New wraps backend. A nil logger falls back to the logrus standard logger.
func New(backend Backend, logger *logrus.Logger) *Store {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Store{
		backend: backend,
		log:     logger.WithField("component", "store"),
	}
}

// Save overwrites key with the JSON encoding of value.
func (s *Store) Save(ctx context.Context, key string, value any) error {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := s.backend.Put(ctx, key, data); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}

// Load decodes key into dest. It never fails hard: missing keys come back
// Absent and undecodable payloads come back Corrupt so the caller can pick a
// default.
func (s *Store) Load(ctx context.Context, key string, dest any) LoadResult {
	data, err := s.backend.Get(ctx, key)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return LoadResult{Status: Absent}
		}
		s.log.WithError(err).WithField("key", key).Warn("read failed; treating as absent")
		return LoadResult{Status: Absent, Err: err}
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return LoadResult{Status: Absent}
	}
	if err := json.Unmarshal(data, dest); err != nil {
		s.log.WithError(err).WithField("key", key).Warn("stored value is malformed")
		return LoadResult{Status: Corrupt, Err: err}
	}
	return LoadResult{Status: Loaded}
}

// Close releases the backend.
func (s *Store) Close() error {
	return s.backend.Close()
}

// Open builds the backend named by kind rooted at dir.
func Open(kind, dir string) (Backend, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "", "file", "json":
		return NewFileBackend(dir), nil
	case "sqlite":
		backend, err := OpenSQLite(dir)
		if err != nil {
			return nil, err
		}
		return backend, nil
	case "memory":
		return NewMemoryBackend(), nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", kind)
	}
}
