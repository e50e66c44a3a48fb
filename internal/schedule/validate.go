package schedule

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
)

// MaxDurationHours is the longest single booking.
const MaxDurationHours = 12

// DefaultOperatingEnd is the closing time of the reference deployment.
var DefaultOperatingEnd = ClockTime{Hour: 17}

// ValidationError is a rejected submission. Nothing is written when it is returned.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func invalid(format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// IsValidationError reports whether err is, or wraps, a *ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// Draft is a submission as typed by the user, before it becomes a Reservation.
type Draft struct {
	OwnerName     string   `json:"ownerName"`
	Project       string   `json:"project"`
	Date          string   `json:"date"`
	StartTime     string   `json:"startTime"`
	DurationHours *float64 `json:"durationHours"`
	Notes         string   `json:"notes"`
}

// Rules are the deployment's business rules.
type Rules struct {
	OperatingEnd ClockTime
}

// DefaultRules closes at 17:00.
func DefaultRules() Rules {
	return Rules{OperatingEnd: DefaultOperatingEnd}
}

// Validate turns a draft into a Reservation or rejects it with a *ValidationError.
// The returned reservation has no ID, CreatedAt or OwnerID; the store assigns those.
func (rules Rules) Validate(d Draft) (Reservation, error) {
	var missing []string
	if strings.TrimSpace(d.OwnerName) == "" {
		missing = append(missing, "ownerName")
	}
	if strings.TrimSpace(d.Date) == "" {
		missing = append(missing, "date")
	}
	if strings.TrimSpace(d.StartTime) == "" {
		missing = append(missing, "startTime")
	}
	if d.DurationHours == nil {
		missing = append(missing, "durationHours")
	}
	if len(missing) > 0 {
		return Reservation{}, invalid("missing required fields: %s", strings.Join(missing, ", "))
	}

	if _, err := time.Parse(DateLayout, d.Date); err != nil {
		return Reservation{}, invalid("date must be YYYY-MM-DD, got %q", d.Date)
	}
	start, err := ParseClock(d.StartTime)
	if err != nil {
		return Reservation{}, invalid("startTime must be HH:MM, got %q", d.StartTime)
	}
	if err := checkDuration(*d.DurationHours); err != nil {
		return Reservation{}, err
	}

	if end := endMinutes(start, *d.DurationHours); end > rules.OperatingEnd.Minutes() {
		return Reservation{}, invalid("reservation would end at %s, after closing time %s",
			EndTime(start, *d.DurationHours), rules.OperatingEnd)
	}

	return Reservation{
		OwnerName:     strings.TrimSpace(d.OwnerName),
		Project:       strings.TrimSpace(d.Project),
		Date:          d.Date,
		StartTime:     start,
		DurationHours: *d.DurationHours,
		Notes:         strings.TrimSpace(d.Notes),
	}, nil
}

func checkDuration(h float64) error {
	if math.IsNaN(h) || math.IsInf(h, 0) || h <= 0 {
		return invalid("durationHours must be a positive number")
	}
	if h > MaxDurationHours {
		return invalid("durationHours must not exceed %d", MaxDurationHours)
	}
	if q := h * 4; q != math.Trunc(q) {
		return invalid("durationHours must be a multiple of 0.25")
	}
	return nil
}

// Submission is the outcome of the conflict soft-gate.
type Submission struct {
	Conflicts         []Reservation
	NeedsConfirmation bool
	Prompt            string
}

// Proceed reports whether the write may go ahead.
func (s Submission) Proceed() bool {
	return !s.NeedsConfirmation
}

// Review runs the conflict soft-gate for a validated candidate. Conflicts never reject;
// without confirmed the submission is held and Prompt names the conflicting owners.
func Review(candidate Reservation, snapshot []Reservation, excludeID string, confirmed bool) Submission {
	conflicts := FindConflicts(candidate, snapshot, excludeID)
	if len(conflicts) == 0 {
		return Submission{Conflicts: conflicts}
	}
	return Submission{
		Conflicts:         conflicts,
		NeedsConfirmation: !confirmed,
		Prompt: fmt.Sprintf("This reservation conflicts with a reservation by: %s. Do you want to continue?",
			strings.Join(ConflictOwners(conflicts), ", ")),
	}
}
