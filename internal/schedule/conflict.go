package schedule

// FindConflicts returns every reservation in all that shares candidate's date and whose
// interval overlaps candidate's. The reservation with excludeID is skipped so an edit never
// conflicts with itself; pass "" to exclude nothing. Reservations with an unparseable date
// are ignored. The result is never nil and all is not modified.
func FindConflicts(candidate Reservation, all []Reservation, excludeID string) []Reservation {
	conflicts := []Reservation{}
	cand, err := candidate.Interval()
	if err != nil {
		return conflicts
	}
	for _, other := range all {
		if excludeID != "" && other.ID == excludeID {
			continue
		}
		// literal same calendar day only, no normalisation
		if other.Date != candidate.Date {
			continue
		}
		iv, err := other.Interval()
		if err != nil {
			continue
		}
		if cand.Overlaps(iv) {
			conflicts = append(conflicts, other)
		}
	}
	return conflicts
}

// ConflictOwners lists the owner names of conflicts in order, for prompts and warnings.
func ConflictOwners(conflicts []Reservation) []string {
	names := make([]string, 0, len(conflicts))
	for _, c := range conflicts {
		names = append(names, c.OwnerName)
	}
	return names
}
