// Package cycles persists evaluated advisory cycles in a write-ahead
// log so the web dashboard can replay history across restarts.
package cycles

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/vadiminshakov/gowal"

	"github.com/busandev/firecro/internal/domain"
)

const (
	DefaultDir   = "./wal/cycles"
	segmentLimit = 500
	maxSegments  = 20

	cycleKeyPrefix = "cycle_"
)

// WALStore persists cycle outputs in a WAL.
type WALStore struct {
	wal *gowal.Wal
	mu  sync.RWMutex
}

// NewWALStore initializes a WAL-backed cycle store.
func NewWALStore(dir string) (*WALStore, error) {
	if dir == "" {
		dir = DefaultDir
	}

	cfg := gowal.Config{
		Dir:              dir,
		Prefix:           "cycle_",
		SegmentThreshold: segmentLimit,
		MaxSegments:      maxSegments,
		IsInSyncDiskMode: true,
	}

	wal, err := gowal.NewWAL(cfg)
	if err != nil {
		return nil, errors.Wrap(err, "init cycle WAL")
	}

	return &WALStore{wal: wal}, nil
}

// Save appends the cycle output to the WAL.
func (s *WALStore) Save(out domain.CycleOutput) error {
	if s == nil || s.wal == nil {
		return errors.New("cycle store is not initialized")
	}

	payload, err := json.Marshal(out)
	if err != nil {
		return errors.Wrap(err, "marshal cycle output")
	}

	key := fmt.Sprintf("%s%s", cycleKeyPrefix, out.EvaluatedAt.UTC().Format(time.RFC3339Nano))

	s.mu.Lock()
	defer s.mu.Unlock()

	nextIndex := s.wal.CurrentIndex() + 1
	return s.wal.Write(nextIndex, key, payload)
}

// RecordsAfter returns cycle records written after the provided WAL index.
func (s *WALStore) RecordsAfter(index uint64) ([]domain.CycleRecord, error) {
	if s == nil || s.wal == nil {
		return nil, errors.New("cycle store is not initialized")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	current := s.wal.CurrentIndex()
	if current <= index {
		return nil, nil
	}

	records := make([]domain.CycleRecord, 0, current-index)
	for idx := index + 1; idx <= current; idx++ {
		_, payload, err := s.wal.Get(idx)
		if err != nil {
			continue
		}

		var out domain.CycleOutput
		if err := json.Unmarshal(payload, &out); err != nil {
			return nil, errors.Wrap(err, "decode cycle output")
		}
		records = append(records, domain.CycleRecord{Index: idx, Output: out})
	}

	return records, nil
}

// CurrentIndex returns the latest WAL index stored.
func (s *WALStore) CurrentIndex() uint64 {
	if s == nil || s.wal == nil {
		return 0
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.wal.CurrentIndex()
}

// Close closes the underlying WAL.
func (s *WALStore) Close() error {
	if s == nil || s.wal == nil {
		return errors.New("cycle store is not initialized")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.wal.Close()
}
