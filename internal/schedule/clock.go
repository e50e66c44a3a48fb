package schedule

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"
)

const minutesPerDay = 24 * 60

// ClockTime is a wall-clock time of day without a date or zone.
type ClockTime struct {
	Hour   int
	Minute int
}

// ParseClock accepts exactly "HH:MM" or "HH:MM:SS" (how TIME columns come back from
// postgres). Seconds are dropped. Anything after the clock is rejected.
func ParseClock(s string) (ClockTime, error) {
	s = strings.TrimSpace(s)
	var layout string
	switch len(s) {
	case len("15:04"):
		layout = "15:04"
	case len("15:04:05"):
		layout = "15:04:05"
	default:
		return ClockTime{}, fmt.Errorf("invalid time string: %q", s)
	}
	t, err := time.Parse(layout, s)
	if err != nil {
		return ClockTime{}, fmt.Errorf("invalid time string: %q", s)
	}
	return ClockTime{Hour: t.Hour(), Minute: t.Minute()}, nil
}

// MustClock is ParseClock for constants and tests.
func MustClock(s string) ClockTime {
	c, err := ParseClock(s)
	if err != nil {
		panic(err)
	}
	return c
}

func clockFromMinutes(total int) ClockTime {
	total %= minutesPerDay
	if total < 0 {
		total += minutesPerDay
	}
	return ClockTime{Hour: total / 60, Minute: total % 60}
}

// Minutes since midnight.
func (c ClockTime) Minutes() int {
	return c.Hour*60 + c.Minute
}

func (c ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute)
}

func (c ClockTime) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

func (c *ClockTime) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := ParseClock(s)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// durationMinutes splits the duration into whole hours first and only then converts the
// fractional remainder, so X.0 never picks up a rounding artifact.
func durationMinutes(durationHours float64) int {
	whole := math.Floor(durationHours)
	frac := math.Round((durationHours - whole) * 60)
	return int(whole)*60 + int(frac)
}

// endMinutes is the unwrapped end, which may be >= 1440 for bookings running past midnight.
func endMinutes(start ClockTime, durationHours float64) int {
	return start.Minutes() + durationMinutes(durationHours)
}

// EndTime returns the wall-clock end of a booking. It wraps past midnight and carries no
// day-rollover flag. Callers must validate durationHours first; NaN is not guarded here.
func EndTime(start ClockTime, durationHours float64) ClockTime {
	return clockFromMinutes(endMinutes(start, durationHours))
}

// FormatDuration renders a duration the way the booking list shows it:
// "45 min", "2 h", "1 h 30 min".
func FormatDuration(durationHours float64) string {
	hours := int(math.Floor(durationHours))
	minutes := int(math.Round((durationHours - float64(hours)) * 60))
	switch {
	case hours == 0:
		return fmt.Sprintf("%d min", minutes)
	case minutes == 0:
		return fmt.Sprintf("%d h", hours)
	default:
		return fmt.Sprintf("%d h %d min", hours, minutes)
	}
}
