package llm

import (
	"context"
	"fmt"
	"strings"

	openaisdk "github.com/openai/openai-go"

	contractx "github.com/tanpawarit/goodfoods-agent/agent/contract"
	openrouterx "github.com/tanpawarit/goodfoods-agent/pkg/openrouter"
)

// SDKCaller calls the chat completions endpoint with the OpenAI SDK and
// returns the first choice's content.
type SDKCaller struct {
	client      *openaisdk.Client
	model       string
	maxTokens   int
	temperature float32
}

func NewSDKCaller(client *openaisdk.Client, cfg openrouterx.Config) *SDKCaller {
	return &SDKCaller{
		client:      client,
		model:       strings.TrimSpace(cfg.Model),
		maxTokens:   cfg.MaxCompletionToken,
		temperature: cfg.Temperature,
	}
}

func (c *SDKCaller) Call(ctx context.Context, systemPrompt string, userText string) (string, error) {
	if c.client == nil {
		return "", fmt.Errorf("%w: openai client is not configured", contractx.ErrModelInvoke)
	}

	params := openaisdk.ChatCompletionNewParams{
		Model: openaisdk.ChatModel(c.model),
		Messages: []openaisdk.ChatCompletionMessageParamUnion{
			openaisdk.SystemMessage(systemPrompt),
			openaisdk.UserMessage(userText),
		},
		Temperature: openaisdk.Float(float64(c.temperature)),
	}
	if c.maxTokens > 0 {
		params.MaxCompletionTokens = openaisdk.Int(int64(c.maxTokens))
	}

	resp, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("%w: chat completion: %v", contractx.ErrModelInvoke, err)
	}
	if resp == nil || len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: chat completion returned no choices", contractx.ErrModelInvoke)
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
