package llm

import (
	"context"
	"strings"

	contractx "github.com/tanpawarit/goodfoods-agent/agent/contract"
	logx "github.com/tanpawarit/goodfoods-agent/pkg/logger"
	"github.com/tanpawarit/goodfoods-agent/pkg/metrics"
)

// FallbackCaller answers with the fallback whenever the primary call fails,
// comes back empty or contains no JSON object at all.
type FallbackCaller struct {
	primary  contractx.ModelCaller
	fallback contractx.ModelCaller
}

func WithFallback(primary, fallback contractx.ModelCaller) *FallbackCaller {
	return &FallbackCaller{primary: primary, fallback: fallback}
}

func (c *FallbackCaller) Call(ctx context.Context, systemPrompt string, userText string) (string, error) {
	if c.primary == nil {
		return c.useFallback(ctx, systemPrompt, userText, "no_primary")
	}

	out, err := c.primary.Call(ctx, systemPrompt, userText)
	switch {
	case err != nil:
		logx.Ctx(ctx).Warn().Err(err).Msg("model_call_failed")
		return c.useFallback(ctx, systemPrompt, userText, "error")
	case strings.TrimSpace(out) == "":
		return c.useFallback(ctx, systemPrompt, userText, "empty")
	case !strings.Contains(out, "{"):
		logx.Ctx(ctx).Debug().Str("answer", out).Msg("model_answer_not_json")
		return c.useFallback(ctx, systemPrompt, userText, "not_json")
	default:
		return out, nil
	}
}

func (c *FallbackCaller) useFallback(ctx context.Context, systemPrompt, userText, reason string) (string, error) {
	metrics.ModelFallbacks.WithLabelValues(reason).Inc()
	if c.fallback == nil {
		return "", nil
	}
	return c.fallback.Call(ctx, systemPrompt, userText)
}
