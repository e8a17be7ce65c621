package training

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"trainlog/internal/stream"
)

// ErrNotFound is returned when an update targets an unknown record id.
var ErrNotFound = errors.New("training record not found")

// Store holds the training records for the current session, newest first.
// It owns the collection exclusively: callers get copies, never the backing
// slice, so snapshots stay valid across later mutations.
type Store struct {
	mu      sync.Mutex
	records []Record
	feed    *stream.Feed
	now     func() time.Time
}

// NewStore creates an empty store. feed may be nil when no consumer cares
// about change events.
func NewStore(feed *stream.Feed) *Store {
	return &Store{feed: feed, now: time.Now}
}

// Add constructs a record from validated input, assigns id and timestamps,
// and inserts it at the head of the collection.
func (s *Store) Add(userID string, in FormInput) Record {
	s.mu.Lock()
	now := s.now().UTC()
	rec := Record{
		ID:          uuid.NewString(),
		UserID:      userID,
		Name:        in.Name,
		Institution: in.Institution,
		Category:    in.Category,
		Type:        in.Type,
		StartDate:   in.StartDate,
		EndDate:     in.EndDate,
		Hours:       in.Hours,
		IsPaid:      in.IsPaid,
		Fee:         in.Fee,
		Certificate: in.Certificate,
		Status:      in.Status,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if rec.Status == "" {
		rec.Status = statusFor(rec.StartDate, rec.EndDate, now)
	}
	normalizeFee(&rec)
	s.records = append([]Record{rec}, s.records...)
	s.mu.Unlock()

	s.feed.Publish(stream.Event{Op: stream.OpAdd, RecordID: rec.ID})
	return rec
}

// Update merges the supplied fields into an existing record. ID and
// CreatedAt are immutable; UpdatedAt is refreshed.
func (s *Store) Update(id string, in FormInput) (Record, error) {
	s.mu.Lock()
	idx := s.indexOf(id)
	if idx < 0 {
		s.mu.Unlock()
		return Record{}, ErrNotFound
	}
	rec := s.records[idx]
	rec.Name = in.Name
	rec.Institution = in.Institution
	rec.Category = in.Category
	rec.Type = in.Type
	rec.StartDate = in.StartDate
	rec.EndDate = in.EndDate
	rec.Hours = in.Hours
	rec.IsPaid = in.IsPaid
	rec.Fee = in.Fee
	if in.Certificate != nil {
		rec.Certificate = in.Certificate
	}
	if in.Status != "" {
		rec.Status = in.Status
	}
	rec.UpdatedAt = s.now().UTC()
	normalizeFee(&rec)
	s.records[idx] = rec
	s.mu.Unlock()

	s.feed.Publish(stream.Event{Op: stream.OpUpdate, RecordID: rec.ID})
	return rec, nil
}

// Delete removes the record with the given id. Deleting an absent id is a
// no-op.
func (s *Store) Delete(id string) {
	s.mu.Lock()
	idx := s.indexOf(id)
	if idx < 0 {
		s.mu.Unlock()
		return
	}
	s.records = append(s.records[:idx], s.records[idx+1:]...)
	s.mu.Unlock()

	s.feed.Publish(stream.Event{Op: stream.OpDelete, RecordID: id})
}

// Get returns the record with the given id, if present.
func (s *Store) Get(id string) (Record, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if idx := s.indexOf(id); idx >= 0 {
		return s.records[idx], true
	}
	return Record{}, false
}

// List returns a snapshot of all records, newest first.
func (s *Store) List() []Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Record, len(s.records))
	copy(out, s.records)
	return out
}

// Len returns the number of stored records.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

// TotalHours returns the sum of hours across all records.
func (s *Store) TotalHours() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	var sum float64
	for _, rec := range s.records {
		sum += rec.Hours
	}
	return sum
}

func (s *Store) indexOf(id string) int {
	for i, rec := range s.records {
		if rec.ID == id {
			return i
		}
	}
	return -1
}

// normalizeFee enforces the pricing invariant: fee is present iff the record
// is paid. Free records have their fee cleared rather than rejected.
func normalizeFee(rec *Record) {
	if !rec.IsPaid {
		rec.Fee = nil
	}
}
