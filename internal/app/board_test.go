package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"printer-scheduler/internal/schedule"
)

func TestBoardSnapshotIsACopy(t *testing.T) {
	store := NewMemoryStore(nil)
	store.Seed(schedule.Reservation{ID: "a", OwnerName: "A", Date: "2025-06-05", StartTime: schedule.MustClock("10:00"), DurationHours: 1})
	b := NewBoard(store, nil)

	first, err := b.Snapshot(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	first[0].OwnerName = "mutated"

	second, err := b.Snapshot(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if second[0].OwnerName != "A" {
		t.Errorf("snapshot shared with caller: %q", second[0].OwnerName)
	}
}

func TestBoardFailedRefreshKeepsSnapshot(t *testing.T) {
	ctx := context.Background()
	store := &flakyStore{Store: NewMemoryStore(nil)}
	store.Store.(*MemoryStore).Seed(schedule.Reservation{ID: "a", Date: "2025-06-05", StartTime: schedule.MustClock("10:00"), DurationHours: 1})
	b := NewBoard(store, nil)
	if err := b.Refresh(ctx); err != nil {
		t.Fatal(err)
	}

	store.down.Store(true)
	err := b.Refresh(ctx)
	if !errors.Is(err, errStoreDown) {
		t.Fatalf("Refresh err = %v, want errStoreDown", err)
	}
	if st := b.Status(); st.Connected || st.Count != 1 {
		t.Errorf("status after failure = %+v", st)
	}

	store.down.Store(false)
	if err := b.Refresh(ctx); err != nil {
		t.Fatal(err)
	}
	if !b.Status().Connected {
		t.Error("connected not restored after success")
	}
}

func TestBoardForbiddenKeepsConnected(t *testing.T) {
	store := NewMemoryStore(nil)
	store.Seed(schedule.Reservation{ID: "legacy", Date: "2025-06-05", StartTime: schedule.MustClock("10:00"), DurationHours: 1})
	b := NewBoard(store, nil)

	if _, err := b.Owned(context.Background(), "legacy", "alice"); !errors.Is(err, ErrForbidden) {
		t.Errorf("Owned(legacy) err = %v, want ErrForbidden", err)
	}
	if err := b.Delete(context.Background(), "missing", "alice"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Delete(missing) err = %v, want ErrNotFound", err)
	}
	if !b.Status().Connected {
		t.Error("lookup errors must not mark the store disconnected")
	}
}

func TestBoardRunFollowsChanges(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	store := NewMemoryStore(nil)
	b := NewBoard(store, nil)

	done := make(chan error, 1)
	go func() { done <- b.Run(ctx, "") }()

	// another instance writes directly to the store
	store.Seed(schedule.Reservation{ID: "x", Date: "2025-06-05", StartTime: schedule.MustClock("10:00"), DurationHours: 1})

	deadline := time.Now().Add(2 * time.Second)
	for b.Status().Count != 1 {
		if time.Now().After(deadline) {
			t.Fatal("board never picked up the change")
		}
		time.Sleep(10 * time.Millisecond)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run = %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop on cancel")
	}
}

func TestBoardRunRejectsBadSchedule(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	b := NewBoard(NewMemoryStore(nil), nil)
	if err := b.Run(ctx, "every now and then"); err == nil {
		t.Error("Run accepted an invalid resync schedule")
	}
}
