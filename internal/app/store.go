package app

import (
	"context"

	"printer-scheduler/internal/schedule"
)

// Store persists reservations and reports when they change.
type Store interface {
	// ListReservations returns every reservation ordered by date, then start time.
	ListReservations(ctx context.Context) ([]schedule.Reservation, error)
	// GetReservation returns ErrNotFound for unknown ids.
	GetReservation(ctx context.Context, id string) (*schedule.Reservation, error)
	// InsertReservation assigns ID and CreatedAt on r.
	InsertReservation(ctx context.Context, r *schedule.Reservation) error
	// UpdateReservation overwrites the editable fields of r.ID when ownerID owns it.
	UpdateReservation(ctx context.Context, r *schedule.Reservation, ownerID string) error
	// DeleteReservation permanently removes id when ownerID owns it.
	DeleteReservation(ctx context.Context, id, ownerID string) error
	// Changes signals "something changed, refetch" until ctx is done. No diff is delivered.
	Changes(ctx context.Context) (<-chan struct{}, error)
	Ping(ctx context.Context) error
}
