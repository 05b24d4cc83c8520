package contract

import (
	"context"
	"time"

	catalogx "github.com/tanpawarit/goodfoods-agent/agent/catalog"
	reservationx "github.com/tanpawarit/goodfoods-agent/agent/reservation"
)

// ModelCaller is the language-model boundary: it returns raw text that
// should, but need not, be a single JSON object.
type ModelCaller interface {
	Call(ctx context.Context, systemPrompt string, userText string) (string, error)
}

type Catalog interface {
	Lookup(id int) (catalogx.Restaurant, bool)
	Search(filter catalogx.Filter) []catalogx.Restaurant
	All() []catalogx.Restaurant
}

type ReservationStore interface {
	CheckAvailability(ctx context.Context, restaurantID int, when time.Time, seats int) (bool, error)
	Create(ctx context.Context, in reservationx.NewReservation) (*reservationx.Reservation, error)
	Cancel(ctx context.Context, reservationID int64) (bool, error)
	List(ctx context.Context, limit int) ([]reservationx.Reservation, error)
}

// IntentNormalizer turns raw model output into an IntentRequest and never
// fails.
type IntentNormalizer interface {
	Normalize(raw string) IntentRequest
}

type IntentDispatcher interface {
	Dispatch(ctx context.Context, req IntentRequest, utterance string) (string, error)
}
