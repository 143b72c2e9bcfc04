// Package memory is an in-process Store used for local runs and tests.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/mamadbah2/fishledger/internal/domain/models"
)

// Store keeps every collection in maps guarded by one lock. Records are
// copied on the way in and out so callers never share line slices.
type Store struct {
	mu        sync.RWMutex
	loadings  map[string]models.LoadingRecord
	order     []string
	payments  []models.Payment
	varieties map[string]models.Variety
	snapshots []models.LedgerSnapshot
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{
		loadings:  make(map[string]models.LoadingRecord),
		varieties: make(map[string]models.Variety),
	}
}

func cloneRecord(r models.LoadingRecord) models.LoadingRecord {
	r.Lines = append([]models.LineItem(nil), r.Lines...)
	return r
}

// InsertLoading stores a new record, enforcing bill number uniqueness per category.
func (s *Store) InsertLoading(_ context.Context, record *models.LoadingRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.loadings[record.ID]; exists {
		return fmt.Errorf("insert loading %s: id already exists", record.ID)
	}
	for _, existing := range s.loadings {
		if existing.Category == record.Category && existing.BillNo == record.BillNo {
			return models.ErrDuplicateBillNo
		}
	}

	s.loadings[record.ID] = cloneRecord(*record)
	s.order = append(s.order, record.ID)
	return nil
}

// UpdateLoading replaces a record when the stored version matches.
func (s *Store) UpdateLoading(_ context.Context, record *models.LoadingRecord, expectedVersion int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.loadings[record.ID]
	if !ok {
		return models.ErrNotFound
	}
	if current.Version != expectedVersion {
		return models.ErrVersionConflict
	}
	for id, existing := range s.loadings {
		if id != record.ID && existing.Category == record.Category && existing.BillNo == record.BillNo {
			return models.ErrDuplicateBillNo
		}
	}

	record.Version = expectedVersion + 1
	s.loadings[record.ID] = cloneRecord(*record)
	return nil
}

// DeleteLoading removes a record when the stored version matches.
func (s *Store) DeleteLoading(_ context.Context, id string, expectedVersion int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.loadings[id]
	if !ok {
		return models.ErrNotFound
	}
	if current.Version != expectedVersion {
		return models.ErrVersionConflict
	}

	delete(s.loadings, id)
	for i, existing := range s.order {
		if existing == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

// GetLoading returns a copy of the record with the given id.
func (s *Store) GetLoading(_ context.Context, id string) (*models.LoadingRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.loadings[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	clone := cloneRecord(record)
	return &clone, nil
}

// ListLoadings returns matching records in insertion order.
func (s *Store) ListLoadings(_ context.Context, filter models.LoadingFilter) ([]models.LoadingRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.LoadingRecord
	for _, id := range s.order {
		record := s.loadings[id]
		if filter.Matches(&record) {
			out = append(out, cloneRecord(record))
		}
	}
	return out, nil
}

// InsertPayment appends a payment.
func (s *Store) InsertPayment(_ context.Context, payment *models.Payment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.payments = append(s.payments, *payment)
	return nil
}

// ListPayments returns matching payments in insertion order.
func (s *Store) ListPayments(_ context.Context, filter models.PaymentFilter) ([]models.Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.Payment
	for i := range s.payments {
		if filter.Matches(&s.payments[i]) {
			out = append(out, s.payments[i])
		}
	}
	return out, nil
}

// InsertVariety adds a variety; codes are unique.
func (s *Store) InsertVariety(_ context.Context, variety models.Variety) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.varieties[variety.Code]; exists {
		return models.ErrDuplicateVariety
	}
	s.varieties[variety.Code] = variety
	return nil
}

// GetVariety looks a variety up by code.
func (s *Store) GetVariety(_ context.Context, code string) (models.Variety, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	variety, ok := s.varieties[code]
	if !ok {
		return models.Variety{}, models.ErrNotFound
	}
	return variety, nil
}

// ListVarieties returns all varieties ordered by code.
func (s *Store) ListVarieties(_ context.Context) ([]models.Variety, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Variety, 0, len(s.varieties))
	for _, v := range s.varieties {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

// SaveSnapshot keeps the snapshot in memory.
func (s *Store) SaveSnapshot(_ context.Context, snapshot models.LedgerSnapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.snapshots = append(s.snapshots, snapshot)
	return nil
}

// Snapshots returns the saved snapshots.
func (s *Store) Snapshots() []models.LedgerSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return append([]models.LedgerSnapshot(nil), s.snapshots...)
}

// Close is a no-op.
func (s *Store) Close(context.Context) error { return nil }
