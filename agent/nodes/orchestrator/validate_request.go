package orchestratornode

import (
	"fmt"
	"strings"

	contractx "github.com/tanpawarit/goodfoods-agent/agent/contract"
)

type GraphInput struct {
	Text string
}

type GraphOutput struct {
	Reply  string
	Intent contractx.IntentName
}

type GraphState struct {
	Text string

	RawAnswer string
	Request   contractx.IntentRequest

	Reply string
}

func ValidateRequest(in GraphInput) (*GraphState, error) {
	text := strings.TrimSpace(in.Text)
	if text == "" {
		return nil, fmt.Errorf("%w: user text is blank", contractx.ErrInvalidMessage)
	}
	return &GraphState{Text: text}, nil
}
