// Package memstore is a process-local reputation store used for tests,
// the CLI and deployments without a database.
package memstore

import (
	"context"
	"sync"
	"time"

	"github.com/jonesrussell/north-cloud/credibility/internal/domain"
)

// Store keeps reputation records in a map guarded by a mutex.
type Store struct {
	mu      sync.Mutex
	records map[string]*domain.SourceReputation
	now     func() time.Time
}

// New creates an empty Store.
func New() *Store {
	return &Store{
		records: make(map[string]*domain.SourceReputation),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// FindByDomain returns a copy of the stored record.
func (s *Store) FindByDomain(_ context.Context, domainName string) (*domain.SourceReputation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[domainName]
	if !ok {
		return nil, domain.ErrReputationNotFound
	}
	cp := *rec
	return &cp, nil
}

// InsertIfAbsent stores a copy of rec unless its domain exists.
func (s *Store) InsertIfAbsent(_ context.Context, rec *domain.SourceReputation) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[rec.Domain]; ok {
		return false, nil
	}
	cp := *rec
	s.records[rec.Domain] = &cp
	return true, nil
}

// UpsertVote applies vote under the store lock.
func (s *Store) UpsertVote(_ context.Context, domainName string, vote domain.Vote) (*domain.SourceReputation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	rec, ok := s.records[domainName]
	if !ok {
		rec = domain.NewSourceReputation(domainName, domain.CategoryFromFeedback, now)
		s.records[domainName] = rec
	}
	rec.ApplyVote(vote, now)

	cp := *rec
	return &cp, nil
}

// List returns a filtered page of copies.
func (s *Store) List(_ context.Context, filter domain.ReputationFilter) ([]*domain.SourceReputation, int, error) {
	s.mu.Lock()
	all := make([]*domain.SourceReputation, 0, len(s.records))
	for _, rec := range s.records {
		cp := *rec
		all = append(all, &cp)
	}
	s.mu.Unlock()

	page, total := domain.ApplyFilter(all, filter)
	return page, total, nil
}

// Len returns the number of stored records.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}
