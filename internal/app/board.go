package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"

	"printer-scheduler/internal/schedule"
)

// Status is what the UI shows next to the reservation list.
type Status struct {
	Connected bool       `json:"connected"`
	LastSync  *time.Time `json:"lastSync,omitempty"`
	Count     int        `json:"count"`
}

// Board caches the reservation list and tracks whether the store is reachable. Writes
// go to the store first; the snapshot only changes after a successful refetch.
type Board struct {
	store Store
	now   func() time.Time

	mu       sync.RWMutex
	snapshot []schedule.Reservation
	lastSync time.Time
	loaded   bool

	connected atomic.Bool
}

func NewBoard(store Store, now func() time.Time) *Board {
	if now == nil {
		now = time.Now
	}
	b := &Board{store: store, now: now}
	b.connected.Store(true)
	return b
}

// observe flips the connected flag on the outcome of a store call and passes err through.
func (b *Board) observe(err error) error {
	switch {
	// a cancelled request says nothing about the store
	case errors.Is(err, context.Canceled):
	case err == nil:
		b.connected.Store(true)
	case isStoreFailure(err):
		if b.connected.Swap(false) {
			log.Printf("store unreachable: %v", err)
		}
	default:
		// ownership and lookup errors mean the store answered
		b.connected.Store(true)
	}
	return err
}

func isStoreFailure(err error) bool {
	return statusFor(err) == http.StatusServiceUnavailable
}

// Refresh refetches the full list from the store.
func (b *Board) Refresh(ctx context.Context) error {
	list, err := b.store.ListReservations(ctx)
	if err := b.observe(err); err != nil {
		return fmt.Errorf("refresh reservations: %w", err)
	}

	b.mu.Lock()
	b.snapshot = list
	b.lastSync = b.now()
	b.loaded = true
	b.mu.Unlock()
	return nil
}

// Snapshot returns the cached list, fetching it on first use.
func (b *Board) Snapshot(ctx context.Context) ([]schedule.Reservation, error) {
	b.mu.RLock()
	loaded := b.loaded
	list := b.snapshot
	b.mu.RUnlock()

	if !loaded {
		if err := b.Refresh(ctx); err != nil {
			return nil, err
		}
		b.mu.RLock()
		list = b.snapshot
		b.mu.RUnlock()
	}
	out := make([]schedule.Reservation, len(list))
	copy(out, list)
	return out, nil
}

func (b *Board) Status() Status {
	b.mu.RLock()
	defer b.mu.RUnlock()

	st := Status{Connected: b.connected.Load(), Count: len(b.snapshot)}
	if b.loaded {
		last := b.lastSync
		st.LastSync = &last
	}
	return st
}

// Ping checks that the store answers and updates the connected flag.
func (b *Board) Ping(ctx context.Context) error {
	return b.observe(b.store.Ping(ctx))
}

func (b *Board) Now() time.Time {
	return b.now()
}

// Get looks a reservation up in the store, not the snapshot.
func (b *Board) Get(ctx context.Context, id string) (*schedule.Reservation, error) {
	r, err := b.store.GetReservation(ctx, id)
	return r, b.observe(err)
}

// Owned returns the reservation when principalID may change it. Rows without an owner
// are never editable.
func (b *Board) Owned(ctx context.Context, id, principalID string) (*schedule.Reservation, error) {
	r, err := b.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !r.OwnedBy(principalID) {
		return nil, ErrForbidden
	}
	return r, nil
}

func (b *Board) Create(ctx context.Context, r *schedule.Reservation) error {
	if err := b.observe(b.store.InsertReservation(ctx, r)); err != nil {
		return err
	}
	b.refreshAfterWrite(ctx)
	return nil
}

func (b *Board) Update(ctx context.Context, r *schedule.Reservation, ownerID string) error {
	if err := b.observe(b.store.UpdateReservation(ctx, r, ownerID)); err != nil {
		return err
	}
	b.refreshAfterWrite(ctx)
	return nil
}

func (b *Board) Delete(ctx context.Context, id, ownerID string) error {
	if err := b.observe(b.store.DeleteReservation(ctx, id, ownerID)); err != nil {
		return err
	}
	b.refreshAfterWrite(ctx)
	return nil
}

// refreshAfterWrite makes the caller see its own write even before the change
// notification arrives. The write already succeeded, so a failed refetch is only logged.
func (b *Board) refreshAfterWrite(ctx context.Context) {
	if err := b.Refresh(ctx); err != nil {
		log.Printf("%v", err)
	}
}

// Run keeps the snapshot current until ctx is cancelled: it refetches on every store
// change signal and on the cron schedule as a fallback.
func (b *Board) Run(ctx context.Context, resync string) error {
	// subscribe before the initial load so no change falls in between
	changes, err := b.store.Changes(ctx)
	if err != nil {
		return fmt.Errorf("subscribe to changes: %w", err)
	}
	if err := b.Refresh(ctx); err != nil {
		log.Printf("initial load: %v", err)
	}

	c := cron.New()
	if resync != "" {
		if _, err := c.AddFunc(resync, func() {
			if err := b.Refresh(ctx); err != nil {
				log.Printf("resync: %v", err)
			}
		}); err != nil {
			return fmt.Errorf("resync schedule %q: %w", resync, err)
		}
	}
	c.Start()
	defer c.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case _, ok := <-changes:
			if !ok {
				return nil
			}
			if err := b.Refresh(ctx); err != nil {
				log.Printf("change notification: %v", err)
			}
		}
	}
}
