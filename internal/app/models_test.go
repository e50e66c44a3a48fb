package app

import (
	"testing"
	"time"

	"printer-scheduler/internal/schedule"
)

func TestRecordTranslation(t *testing.T) {
	created := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)
	owner := "u1"
	r := schedule.Reservation{
		ID:            "id-1",
		OwnerName:     "Ada",
		Date:          "2025-06-05",
		StartTime:     schedule.MustClock("09:05"),
		DurationHours: 1.25,
		CreatedAt:     &created,
		OwnerID:       &owner,
	}

	rec := toRecord(r)
	if rec.StartTime != "09:05" || rec.Project != nil || rec.Notes != nil || rec.UserID == nil || *rec.UserID != "u1" {
		t.Errorf("toRecord = %+v", rec)
	}

	back, err := rec.reservation()
	if err != nil {
		t.Fatal(err)
	}
	if back.StartTime != r.StartTime || back.Project != "" || back.OwnerID == nil || *back.OwnerID != owner {
		t.Errorf("reservation() = %+v", back)
	}
}

func TestRecordAcceptsSeconds(t *testing.T) {
	rec := reservationRecord{ID: "x", Date: "2025-06-05", StartTime: "14:30:00", DurationHours: 1}
	r, err := rec.reservation()
	if err != nil {
		t.Fatal(err)
	}
	if r.StartTime.String() != "14:30" || r.OwnerID != nil || r.CreatedAt != nil {
		t.Errorf("reservation() = %+v", r)
	}

	rec.StartTime = "later"
	if _, err := rec.reservation(); err == nil {
		t.Error("reservation() accepted a malformed start time")
	}
}
