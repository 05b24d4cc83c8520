package orchestratornode

import (
	"context"
	"fmt"

	contractx "github.com/tanpawarit/goodfoods-agent/agent/contract"
	logx "github.com/tanpawarit/goodfoods-agent/pkg/logger"
)

func DispatchIntent(
	ctx context.Context,
	in *GraphState,
	dispatcher contractx.IntentDispatcher,
) (*GraphState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}

	logger := logx.Ctx(ctx).With().Str("intent", string(in.Request.Intent)).Logger()
	ctx = logger.WithContext(ctx)
	logger.Info().Msg("intent_selected")

	reply, err := dispatcher.Dispatch(ctx, in.Request, in.Text)
	if err != nil {
		return nil, err
	}

	in.Reply = reply
	return in, nil
}
