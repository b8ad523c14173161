package store

import (
	"context"
	"sync"

	"github.com/slickwilli/neoview/models"
	"github.com/slickwilli/neoview/pkg/glucose"
)

// MemoryStore holds readings in insertion order.
type MemoryStore struct {
	mu       sync.RWMutex
	readings []models.Reading
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Insert(_ context.Context, r models.Reading) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.readings = append(s.readings, r)
	return nil
}

func (s *MemoryStore) Latest(_ context.Context) (*models.Reading, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.readings) == 0 {
		return nil, nil
	}
	r := s.readings[len(s.readings)-1]
	return &r, nil
}

// History returns up to limit readings, newest first.
func (s *MemoryStore) History(_ context.Context, limit int) ([]models.Reading, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if limit > len(s.readings) {
		limit = len(s.readings)
	}
	if limit < 0 {
		limit = 0
	}
	out := make([]models.Reading, 0, limit)
	for i := len(s.readings) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, s.readings[i])
	}
	return out, nil
}

func (s *MemoryStore) Stats(_ context.Context) (models.Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return glucose.Aggregate(s.readings), nil
}

func (s *MemoryStore) Clear(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := len(s.readings)
	s.readings = nil
	return n, nil
}
