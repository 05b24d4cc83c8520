package orchestratornode

import (
	"fmt"

	contractx "github.com/tanpawarit/goodfoods-agent/agent/contract"
)

func NormalizeIntent(in *GraphState, normalizer contractx.IntentNormalizer) (*GraphState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}
	in.Request = normalizer.Normalize(in.RawAnswer)
	return in, nil
}
