package store

import (
	"sync"

	"github.com/handiism/imagegrid/internal/model"
)

// ImageStore holds the ordered image collection.
//
// Records are kept in insertion order, which is the order their fetches
// settled in, not the order they were requested in. The collection only
// grows, or is emptied all at once by Clear.
//
// All mutation is exclusive; Snapshot, Len and Counts may run concurrently
// with each other. The store keeps its own copies of records, so nothing a
// caller does with a snapshot can affect it.
type ImageStore struct {
	mu      sync.RWMutex
	records []model.ImageRecord
}

// New creates an empty ImageStore.
func New() *ImageStore {
	return &ImageStore{}
}

// Snapshot returns a copy of the collection in insertion order.
func (s *ImageStore) Snapshot() []model.ImageRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.ImageRecord, len(s.records))
	copy(out, s.records)
	return out
}

// Append adds rec at the end of the collection.
func (s *ImageStore) Append(rec model.ImageRecord) {
	s.mu.Lock()
	s.records = append(s.records, rec)
	s.mu.Unlock()
}

// Clear empties the collection and returns how many records it dropped.
//
// Clear does not coordinate with fetches still in flight: anything they
// append afterwards lands in the emptied collection.
func (s *ImageStore) Clear() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := len(s.records)
	// Drop the backing array so old images can be collected.
	s.records = nil
	return n
}

// Len returns the number of records.
func (s *ImageStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// Counts returns the number of records per status.
func (s *ImageStore) Counts() map[model.LoadStatus]int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := make(map[model.LoadStatus]int, 3)
	for _, rec := range s.records {
		counts[rec.Status]++
	}
	return counts
}
