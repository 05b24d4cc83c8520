package orchestratornode

import (
	"context"
	"fmt"

	contractx "github.com/tanpawarit/goodfoods-agent/agent/contract"
	logx "github.com/tanpawarit/goodfoods-agent/pkg/logger"
)

// Classify makes the single model call for the utterance.
func Classify(
	ctx context.Context,
	in *GraphState,
	caller contractx.ModelCaller,
	systemPrompt string,
) (*GraphState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}
	if systemPrompt == "" {
		return nil, contractx.ErrPromptMissing
	}

	raw, err := caller.Call(ctx, systemPrompt, in.Text)
	if err != nil {
		return nil, err
	}

	logx.Ctx(ctx).Debug().Str("raw_answer", raw).Msg("model_answer")
	in.RawAnswer = raw
	return in, nil
}
