package contract

type IntentName string

const (
	IntentSearchRestaurants IntentName = "search_restaurants"
	IntentCreateReservation IntentName = "create_reservation"
	IntentCancelReservation IntentName = "cancel_reservation"
	IntentListReservations  IntentName = "list_reservations"
	IntentClarify           IntentName = "clarify"
)

// IntentRequest is the normalized model answer. Params keeps the decoded
// object verbatim; exactly one typed payload is set for registered intents
// that carry parameters.
type IntentRequest struct {
	Intent IntentName     `json:"intent"`
	Params map[string]any `json:"params"`

	Search  *SearchParams  `json:"-"`
	Create  *CreateParams  `json:"-"`
	Cancel  *CancelParams  `json:"-"`
	Clarify *ClarifyParams `json:"-"`
}

type SearchParams struct {
	Cuisine  string
	Seats    int // 0 when absent
	Features []string
}

type CreateParams struct {
	RestaurantID *int
	Cuisine      string
	Seats        int // 0 when absent or unparseable
	Datetime     string
	Name         string
	Phone        string
	Email        string
}

type CancelParams struct {
	// Code is the restaurant code as supplied; it may not be numeric.
	Code string
}

type ClarifyParams struct {
	Question string
}

// ClarifyRequest builds a synthetic clarify intent.
func ClarifyRequest(question string) IntentRequest {
	return IntentRequest{
		Intent:  IntentClarify,
		Params:  map[string]any{"question": question},
		Clarify: &ClarifyParams{Question: question},
	}
}
