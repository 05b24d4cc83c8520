package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
	json "github.com/goccy/go-json"
	"github.com/tidwall/gjson"

	contractx "github.com/tanpawarit/goodfoods-agent/agent/contract"
)

type callInput struct {
	SystemPrompt string
	UserText     string
}

// EinoCaller sends one system and one user message through an eino chat
// model with the intents bound as tools.
type EinoCaller struct {
	runner compose.Runnable[callInput, string]
}

func NewEinoCaller(ctx context.Context, chatModel einomodel.ToolCallingChatModel, tools []*schema.ToolInfo) (*EinoCaller, error) {
	if chatModel == nil {
		return nil, errors.New("chat model is required")
	}

	bound := chatModel
	if len(tools) > 0 {
		m, err := chatModel.WithTools(tools)
		if err != nil {
			return nil, fmt.Errorf("%w: bind intent tools: %v", contractx.ErrModelInvoke, err)
		}
		bound = m
	}

	runner, err := compileCallGraph(ctx, bound)
	if err != nil {
		return nil, fmt.Errorf("%w: compile model call graph: %v", contractx.ErrModelInvoke, err)
	}
	return &EinoCaller{runner: runner}, nil
}

func (c *EinoCaller) Call(ctx context.Context, systemPrompt string, userText string) (string, error) {
	out, err := c.runner.Invoke(ctx, callInput{SystemPrompt: systemPrompt, UserText: userText})
	if err != nil {
		return "", fmt.Errorf("%w: %v", contractx.ErrModelInvoke, err)
	}
	return out, nil
}

// The prompt contains JSON schemas, so messages are built directly rather
// than through an FString chat template.
func compileCallGraph(ctx context.Context, chatModel einomodel.BaseChatModel) (compose.Runnable[callInput, string], error) {
	graph := compose.NewGraph[callInput, string]()

	if err := graph.AddLambdaNode("messages",
		compose.InvokableLambda(func(ctx context.Context, in callInput) ([]*schema.Message, error) {
			return []*schema.Message{
				schema.SystemMessage(in.SystemPrompt),
				schema.UserMessage(in.UserText),
			}, nil
		}),
	); err != nil {
		return nil, fmt.Errorf("add node messages: %w", err)
	}

	if err := graph.AddChatModelNode("model", chatModel); err != nil {
		return nil, fmt.Errorf("add node model: %w", err)
	}

	if err := graph.AddLambdaNode("render",
		compose.InvokableLambda(func(ctx context.Context, msg *schema.Message) (string, error) {
			return renderAnswer(msg)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node render: %w", err)
	}

	edges := [][2]string{
		{compose.START, "messages"},
		{"messages", "model"},
		{"model", "render"},
		{"render", compose.END},
	}
	for _, edge := range edges {
		if err := graph.AddEdge(edge[0], edge[1]); err != nil {
			return nil, fmt.Errorf("add edge %s->%s: %w", edge[0], edge[1], err)
		}
	}

	runner, err := graph.Compile(ctx, compose.WithGraphName("llm.model_call"))
	if err != nil {
		return nil, fmt.Errorf("compile model call graph: %w", err)
	}
	return runner, nil
}

type toolAnswer struct {
	Intent string          `json:"intent"`
	Params json.RawMessage `json:"params"`
}

// renderAnswer turns the first tool call into {"intent","params"} text and
// otherwise returns the message content.
func renderAnswer(msg *schema.Message) (string, error) {
	if msg == nil {
		return "", nil
	}
	if len(msg.ToolCalls) == 0 {
		return strings.TrimSpace(msg.Content), nil
	}

	call := msg.ToolCalls[0]
	name := strings.TrimSpace(call.Function.Name)
	if name == "" {
		return "", fmt.Errorf("%w: tool call name is empty", contractx.ErrSchemaViolation)
	}

	params := json.RawMessage("{}")
	args := strings.TrimSpace(call.Function.Arguments)
	if args != "" && gjson.Valid(args) && gjson.Parse(args).IsObject() {
		params = json.RawMessage(args)
	}

	raw, err := json.Marshal(toolAnswer{Intent: name, Params: params})
	if err != nil {
		return "", fmt.Errorf("%w: render tool call: %v", contractx.ErrSchemaViolation, err)
	}
	return string(raw), nil
}
