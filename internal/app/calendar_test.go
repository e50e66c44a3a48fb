package app

import (
	"context"
	"net/http"
	"testing"
	"time"

	"golang.org/x/oauth2"
	"google.golang.org/api/calendar/v3"

	"printer-scheduler/internal/schedule"
)

func timedEvent(id, summary, start, end string) *calendar.Event {
	return &calendar.Event{
		Id:      id,
		Summary: summary,
		Status:  "confirmed",
		Created: "2025-05-30T12:00:00Z",
		Start:   &calendar.EventDateTime{DateTime: start},
		End:     &calendar.EventDateTime{DateTime: end},
	}
}

func TestEventToBlock(t *testing.T) {
	b, ok := eventToBlock(timedEvent("e1", "Lab course", "2025-06-05T10:00:00Z", "2025-06-05T11:30:00Z"), time.UTC)
	if !ok {
		t.Fatal("timed event skipped")
	}
	if b.ID != "gcal:e1" || b.OwnerName != "Lab course" || b.Date != "2025-06-05" {
		t.Errorf("block = %+v", b)
	}
	if b.StartTime.String() != "10:00" || b.EndTime().String() != "11:30" {
		t.Errorf("block times = %s-%s", b.StartTime, b.EndTime())
	}
	if b.CreatedAt == nil || !b.CreatedAt.Equal(time.Date(2025, 5, 30, 12, 0, 0, 0, time.UTC)) {
		t.Errorf("createdAt = %v", b.CreatedAt)
	}

	// wall clock follows the location
	warsaw := time.FixedZone("CEST", 2*60*60)
	if b, _ := eventToBlock(timedEvent("e2", "x", "2025-06-05T08:00:00Z", "2025-06-05T09:00:00Z"), warsaw); b.StartTime.String() != "10:00" {
		t.Errorf("start in +02:00 = %s, want 10:00", b.StartTime)
	}

	noSummary := timedEvent("e3", "", "2025-06-05T10:00:00Z", "2025-06-05T11:00:00Z")
	noSummary.Creator = &calendar.EventCreator{Email: "lab@example.com"}
	if b, _ := eventToBlock(noSummary, time.UTC); b.OwnerName != "lab@example.com" {
		t.Errorf("owner = %q, want creator email", b.OwnerName)
	}
}

func TestEventToBlockSkips(t *testing.T) {
	allDay := &calendar.Event{Id: "d", Start: &calendar.EventDateTime{Date: "2025-06-05"}, End: &calendar.EventDateTime{Date: "2025-06-06"}}
	cancelled := timedEvent("c", "gone", "2025-06-05T10:00:00Z", "2025-06-05T11:00:00Z")
	cancelled.Status = "cancelled"
	backwards := timedEvent("b", "odd", "2025-06-05T11:00:00Z", "2025-06-05T10:00:00Z")

	for name, ev := range map[string]*calendar.Event{"all-day": allDay, "cancelled": cancelled, "backwards": backwards, "nil": nil} {
		if _, ok := eventToBlock(ev, time.UTC); ok {
			t.Errorf("%s event converted", name)
		}
	}
}

func TestCalendarBlocksHandler(t *testing.T) {
	env := newTestEnv(t)
	env.store.Seed(schedule.Reservation{ID: "r1", OwnerName: "Alice", Date: "2025-06-05", StartTime: schedule.MustClock("10:30"), DurationHours: 1})

	ci := NewCalendarImport("id", "secret", "http://localhost/oauth2callback", "")
	ci.loc = time.UTC
	ci.listEvents = func(ctx context.Context, timeMin, timeMax string) ([]*calendar.Event, error) {
		if timeMin != "2025-06-05T00:00:00Z" || timeMax != "2025-06-06T00:00:00Z" {
			t.Errorf("range = %s..%s", timeMin, timeMax)
		}
		return []*calendar.Event{
			timedEvent("e1", "Lab course", "2025-06-05T10:00:00Z", "2025-06-05T11:00:00Z"),
			timedEvent("e2", "Evening", "2025-06-05T18:00:00Z", "2025-06-05T19:00:00Z"),
		}, nil
	}
	env.app.Calendar = ci

	if w := env.do(t, http.MethodGet, "/api/calendar/blocks?date=2025-06-05", "", nil); w.Code != http.StatusConflict {
		t.Errorf("before consent: status = %d, want 409", w.Code)
	}

	ci.token = &oauth2.Token{AccessToken: "test"}
	w := env.do(t, http.MethodGet, "/api/calendar/blocks?date=2025-06-05", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body)
	}
	got := decode[struct {
		Blocks []blockView `json:"blocks"`
		Count  int         `json:"count"`
	}](t, w)
	if got.Count != 2 {
		t.Fatalf("count = %d, want 2", got.Count)
	}
	if len(got.Blocks[0].Conflicts) != 1 || got.Blocks[0].Conflicts[0].ID != "r1" {
		t.Errorf("lab course conflicts = %+v", got.Blocks[0].Conflicts)
	}
	if len(got.Blocks[1].Conflicts) != 0 {
		t.Errorf("evening conflicts = %+v", got.Blocks[1].Conflicts)
	}

	if w := env.do(t, http.MethodGet, "/api/calendar/blocks?date=tomorrow", "", nil); w.Code != http.StatusBadRequest {
		t.Errorf("bad date: status = %d, want 400", w.Code)
	}
}

func TestCalendarExchangeChecksState(t *testing.T) {
	ci := NewCalendarImport("id", "secret", "http://localhost/oauth2callback", "")
	if err := ci.Exchange(context.Background(), "guess", "code"); err != errCalendarState {
		t.Errorf("Exchange before AuthURL = %v, want errCalendarState", err)
	}
	ci.AuthURL()
	if err := ci.Exchange(context.Background(), "guess", "code"); err != errCalendarState {
		t.Errorf("Exchange with wrong state = %v, want errCalendarState", err)
	}
}

func TestCalendarNotConfigured(t *testing.T) {
	if NewCalendarImport("", "secret", "http://localhost", "") != nil {
		t.Error("NewCalendarImport without client id should be nil")
	}
	env := newTestEnv(t)
	if w := env.do(t, http.MethodGet, "/api/calendar/auth", "", nil); w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", w.Code)
	}
}
