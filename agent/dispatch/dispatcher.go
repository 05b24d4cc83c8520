package dispatch

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	catalogx "github.com/tanpawarit/goodfoods-agent/agent/catalog"
	contractx "github.com/tanpawarit/goodfoods-agent/agent/contract"
	"github.com/tanpawarit/goodfoods-agent/agent/datetime"
	"github.com/tanpawarit/goodfoods-agent/agent/extract"
	reservationx "github.com/tanpawarit/goodfoods-agent/agent/reservation"
	logx "github.com/tanpawarit/goodfoods-agent/pkg/logger"
	"github.com/tanpawarit/goodfoods-agent/pkg/metrics"
)

const (
	defaultSeats       = 2
	defaultGuestName   = "Guest"
	maxSearchResults   = 10
	confirmationLayout = "Monday, 02 January 2006 at 03:04 PM"
	listLayout         = "2006-01-02T15:04:05"
)

const (
	MsgNoSearchResults = "No restaurants match your filters. Try removing constraints or asking for general suggestions."
	MsgNoCandidate     = "No restaurant found that can handle your seating request."
	MsgFullyBooked     = "That time is fully booked. Would you like alternate times or restaurants?"
	MsgNothingToCancel = "You don't have any active reservations to cancel."
	MsgInvalidCode     = "❌ Invalid code. Please say something like: cancel reservation 16"
	MsgNoReservations  = "No reservations yet."
	MsgDefaultClarify  = "Could you clarify your request?"
	MsgUnknownIntent   = "I couldn't match your request to a known action. Please try again with a clearer request."
)

const msgUnknownRestaurant = "I couldn't find a restaurant with code %d."

type Option func(*Dispatcher)

func WithResolver(r datetime.Resolver) Option {
	return func(d *Dispatcher) {
		d.resolver = r
	}
}

// WithListLimit caps how many reservations list and cancel look at.
func WithListLimit(n int) Option {
	return func(d *Dispatcher) {
		if n > 0 {
			d.listLimit = n
		}
	}
}

// Dispatcher executes a normalized intent against the catalog and the
// reservation store and renders the reply text.
type Dispatcher struct {
	catalog   contractx.Catalog
	store     contractx.ReservationStore
	resolver  datetime.Resolver
	listLimit int
}

func New(catalog contractx.Catalog, store contractx.ReservationStore, opts ...Option) (*Dispatcher, error) {
	if catalog == nil {
		return nil, errors.New("catalog is required")
	}
	if store == nil {
		return nil, errors.New("reservation store is required")
	}

	d := &Dispatcher{
		catalog:   catalog,
		store:     store,
		resolver:  datetime.NewResolver(),
		listLimit: reservationx.DefaultListLimit,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(d)
		}
	}
	return d, nil
}

// Dispatch returns an error only for store failures; every user-level
// outcome is a reply.
func (d *Dispatcher) Dispatch(ctx context.Context, req contractx.IntentRequest, utterance string) (string, error) {
	logx.Ctx(ctx).Debug().
		Str("intent", string(req.Intent)).
		Interface("params", req.Params).
		Msg("dispatch_intent")

	switch req.Intent {
	case contractx.IntentSearchRestaurants:
		return d.search(req.Search), nil
	case contractx.IntentCreateReservation:
		return d.create(ctx, req.Create, utterance)
	case contractx.IntentCancelReservation:
		return d.cancel(ctx, req.Cancel, utterance)
	case contractx.IntentListReservations:
		return d.list(ctx)
	case contractx.IntentClarify:
		if req.Clarify != nil && strings.TrimSpace(req.Clarify.Question) != "" {
			return req.Clarify.Question, nil
		}
		return MsgDefaultClarify, nil
	default:
		return MsgUnknownIntent, nil
	}
}

func (d *Dispatcher) search(p *contractx.SearchParams) string {
	if p == nil {
		p = &contractx.SearchParams{}
	}

	results := d.catalog.Search(catalogx.Filter{
		Cuisine:  p.Cuisine,
		MinSeats: p.Seats,
		Features: p.Features,
	})
	if len(results) == 0 {
		return MsgNoSearchResults
	}
	if len(results) > maxSearchResults {
		results = results[:maxSearchResults]
	}

	lines := make([]string, 0, len(results))
	for _, r := range results {
		features := "none"
		if len(r.Features) > 0 {
			features = strings.Join(r.Features, ", ")
		}
		lines = append(lines, fmt.Sprintf("%d: %s — %s — capacity %d — features: %s",
			r.ID, r.Name, r.Cuisine, r.Capacity, features))
	}
	return "Here are some options:\n" + strings.Join(lines, "\n")
}

func (d *Dispatcher) create(ctx context.Context, p *contractx.CreateParams, utterance string) (string, error) {
	if p == nil {
		p = &contractx.CreateParams{}
	}

	seats := p.Seats
	if seats <= 0 {
		seats = defaultSeats
	}

	restaurant, reply := d.pickRestaurant(p, seats, utterance)
	if reply != "" {
		return reply, nil
	}

	when := d.resolver.Resolve(utterance, p.Datetime)
	logger := logx.Ctx(ctx)

	ok, err := d.store.CheckAvailability(ctx, restaurant.ID, when, seats)
	if err != nil {
		return "", fmt.Errorf("check availability restaurant=%d: %w", restaurant.ID, err)
	}
	if !ok {
		metrics.ReservationsRejected.WithLabelValues("unavailable").Inc()
		logger.Info().Int("restaurant_id", restaurant.ID).Time("when", when).Int("seats", seats).Msg("reservation_unavailable")
		return MsgFullyBooked, nil
	}

	name := strings.TrimSpace(p.Name)
	if name == "" {
		name = defaultGuestName
	}
	created, err := d.store.Create(ctx, reservationx.NewReservation{
		RestaurantID: restaurant.ID,
		When:         when,
		Seats:        seats,
		Name:         name,
		Phone:        p.Phone,
		Email:        p.Email,
	})
	if errors.Is(err, reservationx.ErrUnavailable) {
		metrics.ReservationsRejected.WithLabelValues("unavailable").Inc()
		logger.Info().Int("restaurant_id", restaurant.ID).Time("when", when).Int("seats", seats).Msg("reservation_lost_race")
		return MsgFullyBooked, nil
	}
	if err != nil {
		return "", fmt.Errorf("create reservation restaurant=%d: %w", restaurant.ID, err)
	}

	metrics.ReservationsCreated.Inc()
	logger.Info().Int64("reservation_id", created.ID).Int("restaurant_id", restaurant.ID).Msg("reservation_created")

	return confirmation(restaurant, when, seats), nil
}

// pickRestaurant prefers a catalog name mentioned in the utterance, then an
// explicit id, then the smallest restaurant that fits the party.
func (d *Dispatcher) pickRestaurant(p *contractx.CreateParams, seats int, utterance string) (catalogx.Restaurant, string) {
	lowered := strings.ToLower(utterance)
	for _, r := range d.catalog.All() {
		if name := strings.ToLower(r.Name); name != "" && strings.Contains(lowered, name) {
			return r, ""
		}
	}

	if p.RestaurantID != nil {
		r, ok := d.catalog.Lookup(*p.RestaurantID)
		if !ok {
			metrics.ReservationsRejected.WithLabelValues("unknown_restaurant").Inc()
			return catalogx.Restaurant{}, fmt.Sprintf(msgUnknownRestaurant, *p.RestaurantID)
		}
		return r, ""
	}

	candidates := d.catalog.Search(catalogx.Filter{Cuisine: p.Cuisine, MinSeats: seats})
	if len(candidates) == 0 {
		metrics.ReservationsRejected.WithLabelValues("no_candidate").Inc()
		return catalogx.Restaurant{}, MsgNoCandidate
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Capacity < candidates[j].Capacity
	})
	return candidates[0], ""
}

func confirmation(r catalogx.Restaurant, when time.Time, seats int) string {
	var b strings.Builder
	b.WriteString("🎉 **Reservation Confirmed!**\n\n")
	fmt.Fprintf(&b, "**Restaurant ID (Code):** %d\n\n", r.ID)
	fmt.Fprintf(&b, "**Restaurant:** %s (%s)\n\n", r.Name, r.Cuisine)
	fmt.Fprintf(&b, "**Address:** %s\n\n", r.Address)
	fmt.Fprintf(&b, "**Date & Time:** %s\n\n", when.Format(confirmationLayout))
	fmt.Fprintf(&b, "**Seats Reserved:** %d\n\n", seats)
	b.WriteString("🍽 Thank you for choosing **GoodFoods**!")
	return b.String()
}

func (d *Dispatcher) cancel(ctx context.Context, p *contractx.CancelParams, utterance string) (string, error) {
	code := ""
	if p != nil {
		code = strings.TrimSpace(p.Code)
	}
	if code == "" {
		if found, ok := extract.RestaurantCode(utterance); ok {
			code = found
		}
	}

	rows, err := d.store.List(ctx, d.listLimit)
	if err != nil {
		return "", fmt.Errorf("list reservations: %w", err)
	}

	if code == "" {
		return pendingCancellations(rows), nil
	}

	restaurantID, err := strconv.Atoi(code)
	if err != nil {
		return MsgInvalidCode, nil
	}

	// rows are newest first, so the first match is the latest booking.
	var target *reservationx.Reservation
	for i := range rows {
		if rows[i].RestaurantID == restaurantID && rows[i].IsConfirmed() {
			target = &rows[i]
			break
		}
	}
	if target == nil {
		return fmt.Sprintf("❌ No active reservations found for Restaurant Code %d. Please check and try again.", restaurantID), nil
	}

	ok, err := d.store.Cancel(ctx, target.ID)
	if err != nil {
		return "", fmt.Errorf("cancel reservation id=%d: %w", target.ID, err)
	}
	if !ok {
		return fmt.Sprintf("❌ Could not cancel reservation for restaurant code %d. Please try again.", restaurantID), nil
	}

	metrics.ReservationsCancelled.Inc()
	logx.Ctx(ctx).Info().Int64("reservation_id", target.ID).Int("restaurant_id", restaurantID).Msg("reservation_cancelled")

	return fmt.Sprintf("🗑 Successfully cancelled reservation at restaurant code %d.\n(Reservation ID #%d)", restaurantID, target.ID), nil
}

func pendingCancellations(rows []reservationx.Reservation) string {
	lines := make([]string, 0, len(rows))
	for _, r := range rows {
		if !r.IsConfirmed() {
			continue
		}
		lines = append(lines, fmt.Sprintf("- Restaurant Code: %d | Reservation ID: %d | %s | %d seats | %s",
			r.RestaurantID, r.ID, r.DateTime.Format(listLayout), r.Seats, r.Status))
	}
	if len(lines) == 0 {
		return MsgNothingToCancel
	}
	return "Please provide a Restaurant Code to cancel.\n\nYour current reservations:\n" + strings.Join(lines, "\n")
}

func (d *Dispatcher) list(ctx context.Context) (string, error) {
	rows, err := d.store.List(ctx, d.listLimit)
	if err != nil {
		return "", fmt.Errorf("list reservations: %w", err)
	}
	if len(rows) == 0 {
		return MsgNoReservations, nil
	}

	lines := make([]string, 0, len(rows))
	for _, r := range rows {
		lines = append(lines, fmt.Sprintf("#%d | Rest %d | %s | %d seats | %s | %s",
			r.ID, r.RestaurantID, r.DateTime.Format(listLayout), r.Seats, r.Name, r.Status))
	}
	return strings.Join(lines, "\n"), nil
}
