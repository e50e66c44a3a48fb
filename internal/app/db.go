package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"printer-scheduler/internal/schedule"
)

// changesChannel is raised by the reservations trigger installed in the migrations.
const changesChannel = "reservations_changed"

var listenRetryDelay = 5 * time.Second

const selectReservations = `SELECT id::text AS id, owner_name, project,
       to_char(date, 'YYYY-MM-DD') AS date,
       to_char(start_time, 'HH24:MI') AS start_time,
       duration_hours::float8 AS duration_hours,
       notes, created_at, user_id
  FROM reservations`

// PGStore is the postgres-backed Store.
type PGStore struct {
	DB *pgxpool.Pool
}

func NewPGStore(db *pgxpool.Pool) *PGStore {
	return &PGStore{DB: db}
}

func (s *PGStore) ListReservations(ctx context.Context) ([]schedule.Reservation, error) {
	rows, err := s.DB.Query(ctx, selectReservations+` ORDER BY date, start_time, id`)
	if err != nil {
		return nil, err
	}
	recs, err := pgx.CollectRows(rows, pgx.RowToStructByName[reservationRecord])
	if err != nil {
		return nil, err
	}

	out := make([]schedule.Reservation, 0, len(recs))
	for _, rec := range recs {
		r, err := rec.reservation()
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

func (s *PGStore) GetReservation(ctx context.Context, id string) (*schedule.Reservation, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound
	}
	rows, err := s.DB.Query(ctx, selectReservations+` WHERE id = $1::text::uuid`, id)
	if err != nil {
		return nil, err
	}
	rec, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[reservationRecord])
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	r, err := rec.reservation()
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func (s *PGStore) InsertReservation(ctx context.Context, r *schedule.Reservation) error {
	rec := toRecord(*r)
	q := `INSERT INTO reservations
          (owner_name, project, date, start_time, duration_hours, notes, created_at, user_id)
          VALUES ($1, $2, $3::text::date, $4::text::time, $5, $6, now(), $7)
          RETURNING id::text, created_at`

	var created time.Time
	err := s.DB.QueryRow(ctx, q,
		rec.OwnerName, rec.Project, rec.Date, rec.StartTime, rec.DurationHours, rec.Notes, rec.UserID,
	).Scan(&r.ID, &created)
	if err != nil {
		return err
	}
	r.CreatedAt = &created
	return nil
}

func (s *PGStore) UpdateReservation(ctx context.Context, r *schedule.Reservation, ownerID string) error {
	if _, err := uuid.Parse(r.ID); err != nil {
		return ErrNotFound
	}
	rec := toRecord(*r)
	q := `UPDATE reservations
             SET owner_name=$1, project=$2, date=$3::text::date, start_time=$4::text::time,
                 duration_hours=$5, notes=$6
           WHERE id=$7::text::uuid AND user_id=$8
       RETURNING created_at, user_id`

	err := s.DB.QueryRow(ctx, q,
		rec.OwnerName, rec.Project, rec.Date, rec.StartTime, rec.DurationHours, rec.Notes, r.ID, ownerID,
	).Scan(&r.CreatedAt, &r.OwnerID)
	if errors.Is(err, pgx.ErrNoRows) {
		return s.missOrForbidden(ctx, r.ID)
	}
	return err
}

func (s *PGStore) DeleteReservation(ctx context.Context, id, ownerID string) error {
	if _, err := uuid.Parse(id); err != nil {
		return ErrNotFound
	}
	tag, err := s.DB.Exec(ctx, `DELETE FROM reservations WHERE id=$1::text::uuid AND user_id=$2`, id, ownerID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return s.missOrForbidden(ctx, id)
	}
	return nil
}

// missOrForbidden explains why an owner-scoped write matched no row.
func (s *PGStore) missOrForbidden(ctx context.Context, id string) error {
	var exists bool
	err := s.DB.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM reservations WHERE id=$1::text::uuid)`, id).Scan(&exists)
	if err != nil {
		return err
	}
	if !exists {
		return ErrNotFound
	}
	return ErrForbidden
}

// Changes holds one pooled connection in LISTEN and reconnects after failures.
func (s *PGStore) Changes(ctx context.Context) (<-chan struct{}, error) {
	ch := make(chan struct{}, 1)
	go func() {
		defer close(ch)
		for {
			err := s.listen(ctx, ch)
			if ctx.Err() != nil {
				return
			}
			log.Printf("listen %s: %v, retrying in %s", changesChannel, err, listenRetryDelay)
			select {
			case <-ctx.Done():
				return
			case <-time.After(listenRetryDelay):
			}
		}
	}()
	return ch, nil
}

func (s *PGStore) listen(ctx context.Context, ch chan<- struct{}) error {
	conn, err := s.DB.Acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, "LISTEN "+changesChannel); err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	// a reconnect may have missed notifications
	select {
	case ch <- struct{}{}:
	default:
	}
	for {
		if _, err := conn.Conn().WaitForNotification(ctx); err != nil {
			return err
		}
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

func (s *PGStore) Ping(ctx context.Context) error {
	return s.DB.Ping(ctx)
}
