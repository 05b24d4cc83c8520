package reservation

import (
	"errors"
	"time"

	"github.com/uptrace/bun"
)

var (
	ErrUnavailable       = errors.New("requested seats exceed remaining capacity")
	ErrUnknownRestaurant = errors.New("restaurant is not in the catalog")
	ErrNotFound          = errors.New("reservation not found")
	ErrInvalidSeats      = errors.New("seats must be positive")
)

type Status string

const (
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
)

// Reservation is one row of the reservations table. Rows are never
// deleted; Status only moves from confirmed to cancelled.
type Reservation struct {
	bun.BaseModel `bun:"table:reservations,alias:r"`

	ID           int64     `bun:"id,pk,autoincrement" json:"id"`
	RestaurantID int       `bun:"restaurant_id,notnull" json:"restaurant_id"`
	DateTime     time.Time `bun:"datetime,notnull" json:"datetime"`
	Seats        int       `bun:"seats,notnull" json:"seats"`
	Name         string    `bun:"name,notnull" json:"name"`
	Phone        string    `bun:"phone,nullzero" json:"phone,omitempty"`
	Email        string    `bun:"email,nullzero" json:"email,omitempty"`
	Status       Status    `bun:"status,notnull" json:"status"`
}

func (r Reservation) IsConfirmed() bool {
	return r.Status == StatusConfirmed
}

type NewReservation struct {
	RestaurantID int
	When         time.Time
	Seats        int
	Name         string
	Phone        string
	Email        string
}

const windowLength = 2 * time.Hour

// Window returns the half-open occupancy window [start, end) for when:
// start is when floored to the hour in its own location.
func Window(when time.Time) (time.Time, time.Time) {
	start := time.Date(when.Year(), when.Month(), when.Day(), when.Hour(), 0, 0, 0, when.Location())
	return start, start.Add(windowLength)
}
