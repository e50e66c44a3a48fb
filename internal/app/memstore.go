package app

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"printer-scheduler/internal/schedule"
)

// MemoryStore keeps reservations in process. It backs local runs without DATABASE_URL
// and the handler tests. Rows go through reservationRecord like the postgres store.
type MemoryStore struct {
	mu      sync.RWMutex
	rows    map[string]reservationRecord
	subs    map[chan struct{}]struct{}
	nowFunc func() time.Time
}

func NewMemoryStore(now func() time.Time) *MemoryStore {
	if now == nil {
		now = time.Now
	}
	return &MemoryStore{
		rows:    make(map[string]reservationRecord),
		subs:    make(map[chan struct{}]struct{}),
		nowFunc: now,
	}
}

// Seed stores r as-is, keeping its ID, CreatedAt and OwnerID. Used for fixtures and
// legacy rows that predate ownership.
func (s *MemoryStore) Seed(r schedule.Reservation) {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	s.mu.Lock()
	s.rows[r.ID] = toRecord(r)
	s.mu.Unlock()
	s.notify()
}

func (s *MemoryStore) ListReservations(ctx context.Context) ([]schedule.Reservation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	recs := make([]reservationRecord, 0, len(s.rows))
	for _, rec := range s.rows {
		recs = append(recs, rec)
	}
	s.mu.RUnlock()

	sort.Slice(recs, func(i, j int) bool {
		if recs[i].Date != recs[j].Date {
			return recs[i].Date < recs[j].Date
		}
		if recs[i].StartTime != recs[j].StartTime {
			return recs[i].StartTime < recs[j].StartTime
		}
		return recs[i].ID < recs[j].ID
	})

	out := make([]schedule.Reservation, 0, len(recs))
	for _, rec := range recs {
		r, err := rec.reservation()
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

func (s *MemoryStore) GetReservation(ctx context.Context, id string) (*schedule.Reservation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	rec, ok := s.rows[id]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	r, err := rec.reservation()
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func (s *MemoryStore) InsertReservation(ctx context.Context, r *schedule.Reservation) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	created := s.nowFunc().UTC()
	r.ID = uuid.NewString()
	r.CreatedAt = &created

	s.mu.Lock()
	s.rows[r.ID] = toRecord(*r)
	s.mu.Unlock()
	s.notify()
	return nil
}

func (s *MemoryStore) UpdateReservation(ctx context.Context, r *schedule.Reservation, ownerID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	rec, ok := s.rows[r.ID]
	if !ok {
		s.mu.Unlock()
		return ErrNotFound
	}
	if rec.UserID == nil || *rec.UserID != ownerID {
		s.mu.Unlock()
		return ErrForbidden
	}
	next := toRecord(*r)
	next.CreatedAt = rec.CreatedAt
	next.UserID = rec.UserID
	s.rows[r.ID] = next
	s.mu.Unlock()

	r.CreatedAt = rec.CreatedAt
	r.OwnerID = rec.UserID
	s.notify()
	return nil
}

func (s *MemoryStore) DeleteReservation(ctx context.Context, id, ownerID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	rec, ok := s.rows[id]
	if !ok {
		s.mu.Unlock()
		return ErrNotFound
	}
	if rec.UserID == nil || *rec.UserID != ownerID {
		s.mu.Unlock()
		return ErrForbidden
	}
	delete(s.rows, id)
	s.mu.Unlock()
	s.notify()
	return nil
}

func (s *MemoryStore) Changes(ctx context.Context) (<-chan struct{}, error) {
	ch := make(chan struct{}, 1)
	s.mu.Lock()
	s.subs[ch] = struct{}{}
	s.mu.Unlock()

	go func() {
		<-ctx.Done()
		s.mu.Lock()
		delete(s.subs, ch)
		s.mu.Unlock()
		close(ch)
	}()
	return ch, nil
}

func (s *MemoryStore) Ping(ctx context.Context) error {
	return ctx.Err()
}

// notify never blocks; a pending signal already means "refetch".
func (s *MemoryStore) notify() {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for ch := range s.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}
