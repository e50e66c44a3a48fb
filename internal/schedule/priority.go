package schedule

// Earlier reports whether a was created strictly before b. A missing CreatedAt counts as the
// earliest possible instant, so it beats any present timestamp. Two missing timestamps, or
// equal ones, are a tie and neither is earlier.
func Earlier(a, b Reservation) bool {
	switch {
	case a.CreatedAt == nil && b.CreatedAt == nil:
		return false
	case a.CreatedAt == nil:
		return true
	case b.CreatedAt == nil:
		return false
	default:
		return a.CreatedAt.Before(*b.CreatedAt)
	}
}

// HasPriority is true when r has at least one conflict and is earlier than all of them.
func HasPriority(r Reservation, conflicts []Reservation) bool {
	if len(conflicts) == 0 {
		return false
	}
	for _, c := range conflicts {
		if !Earlier(r, c) {
			return false
		}
	}
	return true
}

// IsSecondary is true when r has at least one conflict that is earlier than r.
func IsSecondary(r Reservation, conflicts []Reservation) bool {
	for _, c := range conflicts {
		if Earlier(c, r) {
			return true
		}
	}
	return false
}

// Assessment is what the booking list shows next to a reservation.
type Assessment struct {
	Conflicts   []Reservation
	HasPriority bool
	Secondary   bool
}

// Assess finds r's conflicts within all (excluding r itself) and resolves its standing.
// Each reservation is judged only against its own conflict set.
func Assess(r Reservation, all []Reservation) Assessment {
	conflicts := FindConflicts(r, all, r.ID)
	return Assessment{
		Conflicts:   conflicts,
		HasPriority: HasPriority(r, conflicts),
		Secondary:   IsSecondary(r, conflicts),
	}
}
