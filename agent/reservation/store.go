package reservation

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect"
)

const DefaultListLimit = 200

// CapacityLookup resolves a restaurant's seating capacity.
type CapacityLookup interface {
	Capacity(restaurantID int) (int, bool)
}

// StoreOption customizes Store.
type StoreOption func(*Store)

// WithLocation sets the location timestamps are returned in.
func WithLocation(loc *time.Location) StoreOption {
	return func(s *Store) {
		if loc != nil {
			s.loc = loc
		}
	}
}

// Store persists reservations through bun. Timestamps are written in UTC.
type Store struct {
	db       *bun.DB
	capacity CapacityLookup
	loc      *time.Location
	locks    keyedMutex
}

func NewStore(db *bun.DB, capacity CapacityLookup, opts ...StoreOption) (*Store, error) {
	if db == nil {
		return nil, errors.New("database is required")
	}
	if capacity == nil {
		return nil, errors.New("capacity lookup is required")
	}

	s := &Store{
		db:       db,
		capacity: capacity,
		loc:      time.Local,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s, nil
}

// Migrate creates the reservations table and its lookup index if absent.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.db.NewCreateTable().
		Model((*Reservation)(nil)).
		IfNotExists().
		Exec(ctx); err != nil {
		return fmt.Errorf("create reservations table: %w", err)
	}

	if _, err := s.db.NewCreateIndex().
		Model((*Reservation)(nil)).
		Index("reservations_restaurant_datetime_idx").
		Column("restaurant_id", "datetime").
		IfNotExists().
		Exec(ctx); err != nil {
		return fmt.Errorf("create reservations index: %w", err)
	}
	return nil
}

// CheckAvailability reports whether seats more people fit in the two-hour
// window starting at when's hour in the store's location. Unknown
// restaurants are unavailable.
func (s *Store) CheckAvailability(ctx context.Context, restaurantID int, when time.Time, seats int) (bool, error) {
	capacity, ok := s.capacity.Capacity(restaurantID)
	if !ok {
		return false, nil
	}

	booked, err := bookedSeats(ctx, s.db, restaurantID, when.In(s.loc))
	if err != nil {
		return false, err
	}
	return booked+seats <= capacity, nil
}

// Create re-checks availability and inserts a confirmed reservation as one
// unit: creates for the same restaurant are serialized by an in-process
// lock and, on PostgreSQL, by a transaction-scoped advisory lock.
func (s *Store) Create(ctx context.Context, in NewReservation) (*Reservation, error) {
	if in.Seats <= 0 {
		return nil, ErrInvalidSeats
	}
	capacity, ok := s.capacity.Capacity(in.RestaurantID)
	if !ok {
		return nil, fmt.Errorf("%w: id=%d", ErrUnknownRestaurant, in.RestaurantID)
	}

	unlock := s.locks.lock(in.RestaurantID)
	defer unlock()

	row := &Reservation{
		RestaurantID: in.RestaurantID,
		DateTime:     in.When.Truncate(time.Second).UTC(),
		Seats:        in.Seats,
		Name:         in.Name,
		Phone:        in.Phone,
		Email:        in.Email,
		Status:       StatusConfirmed,
	}

	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if s.db.Dialect().Name() == dialect.PG {
			if _, err := tx.ExecContext(ctx, "SELECT pg_advisory_xact_lock(?)", in.RestaurantID); err != nil {
				return fmt.Errorf("acquire restaurant lock: %w", err)
			}
		}

		booked, err := bookedSeats(ctx, tx, in.RestaurantID, in.When.In(s.loc))
		if err != nil {
			return err
		}
		if booked+in.Seats > capacity {
			return ErrUnavailable
		}

		if _, err := tx.NewInsert().Model(row).Returning("id").Exec(ctx); err != nil {
			return fmt.Errorf("insert reservation: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	row.DateTime = row.DateTime.In(s.loc)
	return row, nil
}

// Cancel marks the reservation cancelled. It reports false when no such
// reservation exists; cancelling twice still reports true.
func (s *Store) Cancel(ctx context.Context, reservationID int64) (bool, error) {
	res, err := s.db.NewUpdate().
		Model((*Reservation)(nil)).
		Set("status = ?", StatusCancelled).
		Where("id = ?", reservationID).
		Exec(ctx)
	if err != nil {
		return false, fmt.Errorf("cancel reservation id=%d: %w", reservationID, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("cancel reservation id=%d: %w", reservationID, err)
	}
	return n > 0, nil
}

// List returns up to limit reservations, newest id first.
func (s *Store) List(ctx context.Context, limit int) ([]Reservation, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}

	var rows []Reservation
	if err := s.db.NewSelect().
		Model(&rows).
		OrderExpr("r.id DESC").
		Limit(limit).
		Scan(ctx); err != nil {
		return nil, fmt.Errorf("list reservations: %w", err)
	}

	for i := range rows {
		rows[i].DateTime = rows[i].DateTime.In(s.loc)
	}
	return rows, nil
}

func (s *Store) Get(ctx context.Context, reservationID int64) (*Reservation, error) {
	row := new(Reservation)
	err := s.db.NewSelect().
		Model(row).
		Where("r.id = ?", reservationID).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: id=%d", ErrNotFound, reservationID)
	}
	if err != nil {
		return nil, fmt.Errorf("get reservation id=%d: %w", reservationID, err)
	}

	row.DateTime = row.DateTime.In(s.loc)
	return row, nil
}

func bookedSeats(ctx context.Context, db bun.IDB, restaurantID int, when time.Time) (int, error) {
	start, end := Window(when)

	var booked int
	err := db.NewSelect().
		Model((*Reservation)(nil)).
		ColumnExpr("COALESCE(SUM(r.seats), 0)").
		Where("r.restaurant_id = ?", restaurantID).
		Where("r.status = ?", StatusConfirmed).
		Where("r.datetime >= ?", start.UTC()).
		Where("r.datetime < ?", end.UTC()).
		Scan(ctx, &booked)
	if err != nil {
		return 0, fmt.Errorf("sum booked seats: %w", err)
	}
	return booked, nil
}

type keyedMutex struct {
	mu    sync.Mutex
	locks map[int]*sync.Mutex
}

func (k *keyedMutex) lock(key int) func() {
	k.mu.Lock()
	if k.locks == nil {
		k.locks = make(map[int]*sync.Mutex)
	}
	m, ok := k.locks[key]
	if !ok {
		m = &sync.Mutex{}
		k.locks[key] = m
	}
	k.mu.Unlock()

	m.Lock()
	return m.Unlock
}
