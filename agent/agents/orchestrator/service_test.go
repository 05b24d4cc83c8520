package orchestrator

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	catalogx "github.com/tanpawarit/goodfoods-agent/agent/catalog"
	contractx "github.com/tanpawarit/goodfoods-agent/agent/contract"
	"github.com/tanpawarit/goodfoods-agent/agent/datetime"
	"github.com/tanpawarit/goodfoods-agent/agent/dispatch"
	"github.com/tanpawarit/goodfoods-agent/agent/intent"
	reservationx "github.com/tanpawarit/goodfoods-agent/agent/reservation"
	"github.com/tanpawarit/goodfoods-agent/pkg/database"
)

type fakeCaller struct {
	out     string
	err     error
	panics  bool
	prompts []string
	texts   []string
}

func (f *fakeCaller) Call(ctx context.Context, systemPrompt string, userText string) (string, error) {
	if f.panics {
		panic("model exploded")
	}
	f.prompts = append(f.prompts, systemPrompt)
	f.texts = append(f.texts, userText)
	return f.out, f.err
}

type fakeDispatcher struct {
	reply string
	err   error
	reqs  []contractx.IntentRequest
}

func (f *fakeDispatcher) Dispatch(ctx context.Context, req contractx.IntentRequest, utterance string) (string, error) {
	f.reqs = append(f.reqs, req)
	return f.reply, f.err
}

func newTestOrchestrator(t *testing.T, caller contractx.ModelCaller, dispatcher contractx.IntentDispatcher) *Orchestrator {
	t.Helper()

	o, err := New(caller, intent.Default(), dispatcher, WithRequestID(func() string { return "req-1" }))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return o
}

func TestNewRequiresDependencies(t *testing.T) {
	t.Parallel()

	if _, err := New(nil, nil, &fakeDispatcher{}); err == nil {
		t.Fatal("expected error for nil caller")
	}
	if _, err := New(&fakeCaller{}, nil, nil); err == nil {
		t.Fatal("expected error for nil dispatcher")
	}
}

func TestHandleMessageBlankInput(t *testing.T) {
	t.Parallel()

	caller := &fakeCaller{}
	dispatcher := &fakeDispatcher{}
	o := newTestOrchestrator(t, caller, dispatcher)

	if got := o.HandleMessage(context.Background(), "   "); got != UsageHint {
		t.Fatalf("HandleMessage() = %q, want usage hint", got)
	}
	if len(caller.texts) != 0 || len(dispatcher.reqs) != 0 {
		t.Fatal("blank input must not reach the model or the dispatcher")
	}
}

func TestHandleMessagePipeline(t *testing.T) {
	t.Parallel()

	caller := &fakeCaller{out: "Here you go: {\"intent\":\"search_restaurants\",\"params\":{\"cuisine\":\"Thai\"}}"}
	dispatcher := &fakeDispatcher{reply: "  Here are some options:\n4: GoodFoods Iyer  "}
	o := newTestOrchestrator(t, caller, dispatcher)

	got := o.HandleMessage(context.Background(), "  find thai food ")
	if got != "Here are some options:\n4: GoodFoods Iyer" {
		t.Fatalf("HandleMessage() = %q", got)
	}

	if len(caller.prompts) != 1 || caller.prompts[0] != o.SystemPrompt() {
		t.Fatal("model should receive the registry system prompt")
	}
	if !strings.Contains(o.SystemPrompt(), "- Tool name: cancel_reservation") {
		t.Fatal("system prompt should list the intents")
	}
	if caller.texts[0] != "find thai food" {
		t.Fatalf("model text = %q", caller.texts[0])
	}

	if len(dispatcher.reqs) != 1 {
		t.Fatalf("dispatcher calls = %d, want 1", len(dispatcher.reqs))
	}
	req := dispatcher.reqs[0]
	if req.Intent != contractx.IntentSearchRestaurants || req.Search == nil || req.Search.Cuisine != "Thai" {
		t.Fatalf("unexpected request: %+v", req)
	}
}

func TestHandleMessageModelFailureUsesHeuristic(t *testing.T) {
	t.Parallel()

	dispatcher := &fakeDispatcher{reply: "ok"}
	o := newTestOrchestrator(t, &fakeCaller{err: errors.New("connection refused")}, dispatcher)

	if got := o.HandleMessage(context.Background(), "cancel 12"); got != "ok" {
		t.Fatalf("HandleMessage() = %q", got)
	}
	req := dispatcher.reqs[0]
	if req.Intent != contractx.IntentCancelReservation || req.Cancel == nil || req.Cancel.Code != "12" {
		t.Fatalf("heuristic request = %+v", req)
	}
}

func TestHandleMessageGarbageBecomesClarify(t *testing.T) {
	t.Parallel()

	dispatcher := &fakeDispatcher{reply: "rephrase please"}
	o := newTestOrchestrator(t, &fakeCaller{out: "{not json at all}"}, dispatcher)

	o.HandleMessage(context.Background(), "blah")
	req := dispatcher.reqs[0]
	if req.Intent != contractx.IntentClarify || req.Clarify.Question != intent.RephraseQuestion {
		t.Fatalf("unexpected request: %+v", req)
	}
}

func TestHandleMessageErrorsBecomeReplies(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("dispatcher error", func(t *testing.T) {
		o := newTestOrchestrator(t,
			&fakeCaller{out: `{"intent":"list_reservations","params":{}}`},
			&fakeDispatcher{err: errors.New("database is locked")},
		)
		if got := o.HandleMessage(ctx, "list"); got != "Error handling message: database is locked" {
			t.Fatalf("HandleMessage() = %q", got)
		}
	})

	t.Run("empty reply", func(t *testing.T) {
		o := newTestOrchestrator(t,
			&fakeCaller{out: `{"intent":"list_reservations","params":{}}`},
			&fakeDispatcher{reply: "  "},
		)
		got := o.HandleMessage(ctx, "list")
		if !strings.HasPrefix(got, "Error handling message: ") || strings.Contains(got, "[NodeRunError]") {
			t.Fatalf("HandleMessage() = %q", got)
		}
	})

	panicking := map[string]struct {
		caller     contractx.ModelCaller
		dispatcher contractx.IntentDispatcher
	}{
		"caller panic":     {caller: &fakeCaller{panics: true}, dispatcher: &fakeDispatcher{reply: "ok"}},
		"dispatcher panic": {caller: &fakeCaller{out: `{"intent":"list_reservations","params":{}}`}, dispatcher: nilMapDispatcher{}},
	}
	for name, tt := range panicking {
		t.Run(name, func(t *testing.T) {
			o := newTestOrchestrator(t, tt.caller, tt.dispatcher)
			got := o.HandleMessage(ctx, "book a table")
			if got != "Error handling message: internal error" {
				t.Fatalf("HandleMessage() = %q", got)
			}
			for _, leak := range []string{"stack:", "goroutine", "[NodeRunError]", "node path"} {
				if strings.Contains(got, leak) {
					t.Fatalf("reply leaks %q: %q", leak, got)
				}
			}
		})
	}
}

type nilMapDispatcher struct{}

func (nilMapDispatcher) Dispatch(ctx context.Context, req contractx.IntentRequest, utterance string) (string, error) {
	var seen map[string]int
	seen[utterance]++
	return "unreachable", nil
}

func TestHandleMessageKeepsContextLogger(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := zerolog.New(&buf).With().Str("http_request_id", "http-42").Logger()
	ctx := logger.WithContext(context.Background())

	o := newTestOrchestrator(t, &fakeCaller{out: `{"intent":"list_reservations","params":{}}`}, &fakeDispatcher{reply: "ok"})
	if got := o.HandleMessage(ctx, "list"); got != "ok" {
		t.Fatalf("HandleMessage() = %q", got)
	}

	var correlated bool
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if strings.Contains(line, `"http_request_id":"http-42"`) && strings.Contains(line, `"request_id":"req-1"`) {
			correlated = true
		}
	}
	if !correlated {
		t.Fatalf("log lines do not carry both ids: %s", buf.String())
	}
}

func TestHandleMessageEndToEnd(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	catalog, err := catalogx.New([]catalogx.Restaurant{
		{ID: 1, Name: "Olive Bistro", Address: "4 Church Street", Capacity: 20, Cuisine: "Italian"},
		{ID: 3, Name: "Bistro Rome", Address: "9 Brigade Road", Capacity: 40, Cuisine: "Italian"},
	})
	if err != nil {
		t.Fatalf("catalog.New() error = %v", err)
	}

	db, err := database.Open(database.Config{
		Driver: database.DriverSQLite,
		DSN:    "file:orchestrator_end_to_end?mode=memory&cache=shared",
	})
	if err != nil {
		t.Fatalf("database.Open() error = %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	store, err := reservationx.NewStore(db, catalog, reservationx.WithLocation(time.UTC))
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}
	if err := store.Migrate(ctx); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}

	now := time.Date(2026, time.October, 16, 10, 0, 0, 0, time.UTC)
	dispatcher, err := dispatch.New(catalog, store,
		dispatch.WithResolver(datetime.Resolver{Now: func() time.Time { return now }, Location: time.UTC}))
	if err != nil {
		t.Fatalf("dispatch.New() error = %v", err)
	}

	caller := &fakeCaller{out: `{"intent":"create_reservation","params":{"seats":4,"datetime":"2026-10-17T19:00:00","name":"Asha"}}`}
	o := newTestOrchestrator(t, caller, dispatcher)

	reply := o.HandleMessage(ctx, "Book at Bistro Rome for 4 tomorrow at 7:30pm")
	if !strings.Contains(reply, "**Restaurant ID (Code):** 3") {
		t.Fatalf("create reply = %q", reply)
	}

	caller.out = `{"intent":"list_reservations","params":{}}`
	reply = o.HandleMessage(ctx, "show reservations")
	if reply != "#1 | Rest 3 | 2026-10-17T19:30:00 | 4 seats | Asha | confirmed" {
		t.Fatalf("list reply = %q", reply)
	}

	caller.out = `{"intent":"cancel_reservation","params":{"restaurant_code":7}}`
	reply = o.HandleMessage(ctx, "cancel reservation 7")
	if !strings.Contains(reply, "No active reservations found for Restaurant Code 7") {
		t.Fatalf("cancel reply = %q", reply)
	}

	caller.out = `{"intent":"cancel_reservation","params":{"restaurant_code":3}}`
	reply = o.HandleMessage(ctx, "cancel reservation 3")
	if reply != "🗑 Successfully cancelled reservation at restaurant code 3.\n(Reservation ID #1)" {
		t.Fatalf("cancel reply = %q", reply)
	}

	rows, err := store.List(ctx, 0)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(rows) != 1 || rows[0].Status != reservationx.StatusCancelled {
		t.Fatalf("rows = %+v", rows)
	}
}
