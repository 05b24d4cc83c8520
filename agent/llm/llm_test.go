package llm

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/tidwall/gjson"

	contractx "github.com/tanpawarit/goodfoods-agent/agent/contract"
	openrouterx "github.com/tanpawarit/goodfoods-agent/pkg/openrouter"
)

type fakeToolCallingModel struct {
	responses []*schema.Message
	err       error
	idx       int
	inputs    [][]*schema.Message
	tools     []*schema.ToolInfo
}

func (f *fakeToolCallingModel) Generate(ctx context.Context, input []*schema.Message, opts ...einomodel.Option) (*schema.Message, error) {
	f.inputs = append(f.inputs, input)
	if f.err != nil {
		return nil, f.err
	}
	if f.idx >= len(f.responses) {
		return nil, errors.New("no fake response left")
	}
	msg := f.responses[f.idx]
	f.idx++
	return msg, nil
}

func (f *fakeToolCallingModel) Stream(ctx context.Context, input []*schema.Message, opts ...einomodel.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, errors.New("stream not implemented in fake model")
}

func (f *fakeToolCallingModel) WithTools(tools []*schema.ToolInfo) (einomodel.ToolCallingChatModel, error) {
	f.tools = tools
	return f, nil
}

type fakeCaller struct {
	out   string
	err   error
	calls int
}

func (f *fakeCaller) Call(ctx context.Context, systemPrompt string, userText string) (string, error) {
	f.calls++
	return f.out, f.err
}

func TestEinoCallerReturnsContent(t *testing.T) {
	t.Parallel()

	fake := &fakeToolCallingModel{
		responses: []*schema.Message{{Role: schema.Assistant, Content: "  {\"intent\":\"list_reservations\"}\n"}},
	}
	tools := []*schema.ToolInfo{{Name: "list_reservations", Desc: "List reservations."}}

	caller, err := NewEinoCaller(context.Background(), fake, tools)
	if err != nil {
		t.Fatalf("NewEinoCaller() error = %v", err)
	}
	if len(fake.tools) != 1 {
		t.Fatalf("expected tools to be bound, got %d", len(fake.tools))
	}

	out, err := caller.Call(context.Background(), `schema {"type":"object"}`, "show my bookings")
	if err != nil {
		t.Fatalf("Call() error = %v", err)
	}
	if out != `{"intent":"list_reservations"}` {
		t.Fatalf("Call() = %q", out)
	}

	sent := fake.inputs[0]
	if len(sent) != 2 || sent[0].Role != schema.System || sent[1].Role != schema.User {
		t.Fatalf("unexpected messages: %+v", sent)
	}
	if sent[0].Content != `schema {"type":"object"}` || sent[1].Content != "show my bookings" {
		t.Fatalf("prompt was altered: %+v", sent)
	}
}

func TestEinoCallerRendersToolCall(t *testing.T) {
	t.Parallel()

	fake := &fakeToolCallingModel{
		responses: []*schema.Message{
			{
				Role: schema.Assistant,
				ToolCalls: []schema.ToolCall{
					{ID: "call_1", Function: schema.FunctionCall{Name: "search_restaurants", Arguments: `{"cuisine":"Thai","seats":4}`}},
				},
			},
			{
				Role: schema.Assistant,
				ToolCalls: []schema.ToolCall{
					{ID: "call_2", Function: schema.FunctionCall{Name: "list_reservations", Arguments: ``}},
				},
			},
		},
	}

	caller, err := NewEinoCaller(context.Background(), fake, nil)
	if err != nil {
		t.Fatalf("NewEinoCaller() error = %v", err)
	}

	out, err := caller.Call(context.Background(), "prompt", "thai for 4")
	if err != nil {
		t.Fatalf("Call() error = %v", err)
	}
	if gjson.Get(out, "intent").String() != "search_restaurants" || gjson.Get(out, "params.seats").Int() != 4 {
		t.Fatalf("Call() = %q", out)
	}

	out, err = caller.Call(context.Background(), "prompt", "list")
	if err != nil {
		t.Fatalf("Call() error = %v", err)
	}
	if out != `{"intent":"list_reservations","params":{}}` {
		t.Fatalf("Call() = %q", out)
	}
}

func TestEinoCallerWrapsModelError(t *testing.T) {
	t.Parallel()

	caller, err := NewEinoCaller(context.Background(), &fakeToolCallingModel{err: errors.New("rate limited")}, nil)
	if err != nil {
		t.Fatalf("NewEinoCaller() error = %v", err)
	}
	if _, err := caller.Call(context.Background(), "prompt", "hi"); !errors.Is(err, contractx.ErrModelInvoke) {
		t.Fatalf("expected ErrModelInvoke, got %v", err)
	}
}

func TestHeuristic(t *testing.T) {
	t.Parallel()

	h := &Heuristic{Now: func() time.Time {
		return time.Date(2026, time.October, 16, 10, 0, 0, 0, time.UTC)
	}}

	tests := []struct {
		text   string
		intent string
		check  func(t *testing.T, out string)
	}{
		{
			text:   "Book a table for 4 tomorrow",
			intent: "create_reservation",
			check: func(t *testing.T, out string) {
				if gjson.Get(out, "params.seats").Int() != 4 || gjson.Get(out, "params.datetime").String() != "2026-10-17T10:00:00" {
					t.Fatalf("unexpected params: %s", out)
				}
			},
		},
		{
			text:   "reserve please",
			intent: "create_reservation",
			check: func(t *testing.T, out string) {
				if gjson.Get(out, "params.seats").Int() != 2 {
					t.Fatalf("default seats missing: %s", out)
				}
			},
		},
		{
			text:   "cancel 16",
			intent: "cancel_reservation",
			check: func(t *testing.T, out string) {
				if gjson.Get(out, "params.restaurant_code").Int() != 16 {
					t.Fatalf("unexpected params: %s", out)
				}
			},
		},
		{text: "cancel it", intent: "clarify"},
		{
			text:   "find italian for 6",
			intent: "search_restaurants",
			check: func(t *testing.T, out string) {
				if gjson.Get(out, "params.cuisine").String() != "italian" || gjson.Get(out, "params.seats").Int() != 6 {
					t.Fatalf("unexpected params: %s", out)
				}
			},
		},
		{text: "hello there", intent: "clarify"},
	}

	for _, tt := range tests {
		out, err := h.Call(context.Background(), "", tt.text)
		if err != nil {
			t.Fatalf("Call(%q) error = %v", tt.text, err)
		}
		if got := gjson.Get(out, "intent").String(); got != tt.intent {
			t.Fatalf("Call(%q) intent = %q, want %q", tt.text, got, tt.intent)
		}
		if tt.check != nil {
			tt.check(t, out)
		}
	}
}

func TestFallbackCaller(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	tests := []struct {
		name         string
		primary      *fakeCaller
		want         string
		wantFallback bool
	}{
		{name: "primary answer", primary: &fakeCaller{out: `{"intent":"clarify"}`}, want: `{"intent":"clarify"}`},
		{name: "primary error", primary: &fakeCaller{err: errors.New("timeout")}, want: "fallback", wantFallback: true},
		{name: "empty answer", primary: &fakeCaller{out: "  "}, want: "fallback", wantFallback: true},
		{name: "prose answer", primary: &fakeCaller{out: "Sure, booking now!"}, want: "fallback", wantFallback: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fallback := &fakeCaller{out: "fallback"}
			got, err := WithFallback(tt.primary, fallback).Call(ctx, "prompt", "text")
			if err != nil {
				t.Fatalf("Call() error = %v", err)
			}
			if got != tt.want {
				t.Fatalf("Call() = %q, want %q", got, tt.want)
			}
			if (fallback.calls == 1) != tt.wantFallback {
				t.Fatalf("fallback calls = %d", fallback.calls)
			}
		})
	}
}

func TestNewCaller(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	caller, err := NewCaller(ctx, Config{Backend: BackendEino, Config: openrouterx.Config{Model: "m"}}, nil)
	if err != nil {
		t.Fatalf("NewCaller() error = %v", err)
	}
	if _, ok := caller.(*Heuristic); !ok {
		t.Fatalf("missing api key should select the heuristic, got %T", caller)
	}

	caller, err = NewCaller(ctx, Config{Backend: BackendOpenAI, Config: openrouterx.Config{
		APIKey:  "sk-test",
		BaseURL: "http://127.0.0.1:0",
		Model:   "m",
		Timeout: time.Second,
	}}, nil)
	if err != nil {
		t.Fatalf("NewCaller(openai) error = %v", err)
	}
	if _, ok := caller.(*FallbackCaller); !ok {
		t.Fatalf("remote backend should be wrapped with a fallback, got %T", caller)
	}

	if _, err := NewCaller(ctx, Config{Backend: "llama"}, nil); !errors.Is(err, contractx.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	if !strings.Contains(Config{Backend: "llama"}.Validate().Error(), "llama") {
		t.Fatal("validation error should name the backend")
	}
}
