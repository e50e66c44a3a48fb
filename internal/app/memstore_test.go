package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"printer-scheduler/internal/schedule"
)

func TestMemoryStoreOrdersByDateThenStart(t *testing.T) {
	s := NewMemoryStore(nil)
	s.Seed(schedule.Reservation{ID: "c", Date: "2025-06-06", StartTime: schedule.MustClock("08:00"), DurationHours: 1})
	s.Seed(schedule.Reservation{ID: "b", Date: "2025-06-05", StartTime: schedule.MustClock("12:00"), DurationHours: 1})
	s.Seed(schedule.Reservation{ID: "a", Date: "2025-06-05", StartTime: schedule.MustClock("09:15"), DurationHours: 1})

	list := mustList(t, s)
	var got []string
	for _, r := range list {
		got = append(got, r.ID)
	}
	if len(got) != 3 || got[0] != "a" || got[1] != "b" || got[2] != "c" {
		t.Errorf("order = %v, want [a b c]", got)
	}
}

func TestMemoryStoreOwnership(t *testing.T) {
	ctx := context.Background()
	created := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)
	s := NewMemoryStore(func() time.Time { return created })

	owner := "alice"
	r := &schedule.Reservation{OwnerName: "Alice", Date: "2025-06-05", StartTime: schedule.MustClock("10:00"), DurationHours: 1, OwnerID: &owner}
	if err := s.InsertReservation(ctx, r); err != nil {
		t.Fatal(err)
	}
	if r.ID == "" || r.CreatedAt == nil || !r.CreatedAt.Equal(created) {
		t.Fatalf("insert did not assign id/createdAt: %+v", r)
	}

	edit := *r
	edit.DurationHours = 2
	edit.CreatedAt = nil
	edit.OwnerID = nil
	if err := s.UpdateReservation(ctx, &edit, "bob"); !errors.Is(err, ErrForbidden) {
		t.Errorf("update by bob: err = %v, want ErrForbidden", err)
	}
	if err := s.UpdateReservation(ctx, &edit, "alice"); err != nil {
		t.Fatalf("update by alice: %v", err)
	}
	got, err := s.GetReservation(ctx, r.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.DurationHours != 2 || got.CreatedAt == nil || got.OwnerID == nil || *got.OwnerID != "alice" {
		t.Errorf("after update = %+v", got)
	}

	if err := s.DeleteReservation(ctx, r.ID, "bob"); !errors.Is(err, ErrForbidden) {
		t.Errorf("delete by bob: err = %v, want ErrForbidden", err)
	}
	if err := s.DeleteReservation(ctx, r.ID, "alice"); err != nil {
		t.Fatalf("delete by alice: %v", err)
	}
	if _, err := s.GetReservation(ctx, r.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("get after delete: err = %v, want ErrNotFound", err)
	}
	if err := s.DeleteReservation(ctx, r.ID, "alice"); !errors.Is(err, ErrNotFound) {
		t.Errorf("second delete: err = %v, want ErrNotFound", err)
	}
}

func TestMemoryStoreChanges(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s := NewMemoryStore(nil)
	changes, err := s.Changes(ctx)
	if err != nil {
		t.Fatal(err)
	}

	s.Seed(schedule.Reservation{Date: "2025-06-05", StartTime: schedule.MustClock("10:00"), DurationHours: 1})
	s.Seed(schedule.Reservation{Date: "2025-06-05", StartTime: schedule.MustClock("11:00"), DurationHours: 1})

	select {
	case <-changes:
	case <-time.After(time.Second):
		t.Fatal("no change signal after seed")
	}

	cancel()
	for range changes {
		// drain until closed
	}
}
