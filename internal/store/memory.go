package store

import (
	"errors"
	"sync"
	"time"

	"github.com/i474232898/weather-image/internal/report"
	"github.com/i474232898/weather-image/internal/weather"
)

var (
	// ErrNotFound is returned when nothing is stored for a key.
	ErrNotFound = errors.New("not found")
)

// MemoryStore is a concurrency-safe in-memory store of the latest report per
// location. Only the newest report is kept; there is no history.
type MemoryStore struct {
	mu sync.RWMutex

	// key: normalized location query
	data map[string]report.Report

	// maxAge is the age after which a report is treated as missing (0 = unlimited).
	maxAge time.Duration
	now    func() time.Time
}

// NewMemoryStore creates a new MemoryStore.
func NewMemoryStore(maxAge time.Duration) *MemoryStore {
	return &MemoryStore{
		data:   make(map[string]report.Report),
		maxAge: maxAge,
		now:    time.Now,
	}
}

// SaveReport replaces the stored report for its query and drops expired entries.
func (s *MemoryStore) SaveReport(r report.Report) {
	key := weather.NormalizeQuery(r.Query)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.data[key] = r

	if s.maxAge > 0 {
		for k, v := range s.data {
			if s.expired(v) {
				delete(s.data, k)
			}
		}
	}
}

// GetLatest returns the stored report for a location query.
func (s *MemoryStore) GetLatest(location string) (report.Report, error) {
	key := weather.NormalizeQuery(location)

	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.data[key]
	if !ok || s.expired(r) {
		return report.Report{}, ErrNotFound
	}
	return r, nil
}

// Locations returns the queries that currently have a report.
func (s *MemoryStore) Locations() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]string, 0, len(s.data))
	for _, r := range s.data {
		if !s.expired(r) {
			out = append(out, r.Query)
		}
	}
	return out
}

func (s *MemoryStore) expired(r report.Report) bool {
	if s.maxAge <= 0 {
		return false
	}
	return s.now().Sub(r.GeneratedAt) > s.maxAge
}
