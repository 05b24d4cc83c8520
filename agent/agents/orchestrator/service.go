package orchestrator

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/cloudwego/eino/compose"
	"github.com/google/uuid"

	contractx "github.com/tanpawarit/goodfoods-agent/agent/contract"
	"github.com/tanpawarit/goodfoods-agent/agent/intent"
	"github.com/tanpawarit/goodfoods-agent/agent/llm"
	nodex "github.com/tanpawarit/goodfoods-agent/agent/nodes/orchestrator"
	"github.com/tanpawarit/goodfoods-agent/agent/prompt"
	logx "github.com/tanpawarit/goodfoods-agent/pkg/logger"
	"github.com/tanpawarit/goodfoods-agent/pkg/metrics"
)

const UsageHint = "Please type a request, for example: 'Find Italian restaurants for 4 people' " +
	"or 'Book a table for 2 at 7pm tomorrow'."

type Option func(*Orchestrator)

// WithRequestID overrides the request id generator.
func WithRequestID(fn func() string) Option {
	return func(o *Orchestrator) {
		if fn != nil {
			o.newRequestID = fn
		}
	}
}

// WithSystemPrompt replaces the prompt built from the intent registry.
func WithSystemPrompt(p string) Option {
	return func(o *Orchestrator) {
		if strings.TrimSpace(p) != "" {
			o.systemPrompt = p
		}
	}
}

// Orchestrator is the single entry point: one utterance in, one reply out.
type Orchestrator struct {
	caller     contractx.ModelCaller
	intents    *intent.Registry
	normalizer contractx.IntentNormalizer
	dispatcher contractx.IntentDispatcher

	systemPrompt string
	graphRunner  compose.Runnable[nodex.GraphInput, nodex.GraphOutput]

	newRequestID func() string
}

// New wires the pipeline. Callers that do not already fall back to the
// heuristic classifier are wrapped so a failed model call still yields an
// intent.
func New(
	caller contractx.ModelCaller,
	intents *intent.Registry,
	dispatcher contractx.IntentDispatcher,
	opts ...Option,
) (*Orchestrator, error) {
	if caller == nil {
		return nil, errors.New("model caller is required")
	}
	if dispatcher == nil {
		return nil, errors.New("dispatcher is required")
	}
	if intents == nil {
		intents = intent.Default()
	}

	switch caller.(type) {
	case *llm.FallbackCaller, *llm.Heuristic:
	default:
		caller = llm.WithFallback(caller, llm.NewHeuristic())
	}

	o := &Orchestrator{
		caller:       caller,
		intents:      intents,
		normalizer:   intents,
		dispatcher:   dispatcher,
		systemPrompt: prompt.BuildSystemPrompt(intents),
		newRequestID: uuid.NewString,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}

	graphRunner, err := o.compileHandleMessageGraph(context.Background())
	if err != nil {
		return nil, err
	}
	o.graphRunner = graphRunner

	return o, nil
}

// SystemPrompt is the prompt sent with every model call.
func (o *Orchestrator) SystemPrompt() string {
	return o.systemPrompt
}

// HandleMessage never fails: blank input gets a usage hint and any error or
// panic becomes an "Error handling message" reply.
func (o *Orchestrator) HandleMessage(ctx context.Context, text string) (reply string) {
	start := time.Now()
	if ctx == nil {
		ctx = context.Background()
	}
	logger := logx.Ctx(ctx).With().Str("request_id", o.newRequestID()).Logger()

	defer func() {
		metrics.HandleDuration.Observe(time.Since(start).Seconds())
	}()
	defer func() {
		if rec := recover(); rec != nil {
			logger.Error().Interface("panic", rec).Msg("handle_message_panic")
			metrics.MessagesFailed.Inc()
			reply = errorReplyPrefix + internalErrorText
		}
	}()

	ctx = logger.WithContext(ctx)

	if strings.TrimSpace(text) == "" {
		return UsageHint
	}

	logger.Info().Str("text", text).Msg("handle_message")
	out, err := o.graphRunner.Invoke(ctx, nodex.GraphInput{Text: text})
	if err != nil {
		logger.Error().Err(err).Msg("handle_message_failed")
		metrics.MessagesFailed.Inc()
		return errorReplyPrefix + describeError(err)
	}

	metrics.MessagesHandled.WithLabelValues(o.intentLabel(out.Intent)).Inc()
	return out.Reply
}

const (
	errorReplyPrefix  = "Error handling message: "
	internalErrorText = "internal error"
)

// describeError strips the graph's node framing and hides recovered panics,
// which carry a goroutine stack.
func describeError(err error) string {
	cause := err
	for isGraphFrame(cause) {
		next := errors.Unwrap(cause)
		if next == nil {
			break
		}
		cause = next
	}

	msg := cause.Error()
	if isGraphFrame(cause) || strings.HasPrefix(msg, "panic error:") || strings.Contains(msg, "\nstack: ") {
		return internalErrorText
	}
	return msg
}

func isGraphFrame(err error) bool {
	msg := err.Error()
	return strings.HasPrefix(msg, "[NodeRunError]") || strings.HasPrefix(msg, "[GraphRunError]")
}

func (o *Orchestrator) intentLabel(name contractx.IntentName) string {
	if _, ok := o.intents.Lookup(name); ok {
		return string(name)
	}
	return "unknown"
}
