package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/schema"
	contractx "github.com/tanpawarit/goodfoods-agent/agent/contract"
	openrouterx "github.com/tanpawarit/goodfoods-agent/pkg/openrouter"
)

const (
	BackendEino      = "eino"
	BackendOpenAI    = "openai"
	BackendHeuristic = "heuristic"
)

// Config is read with the OPENROUTER prefix; the embedded client settings
// share it.
type Config struct {
	Backend string `envconfig:"BACKEND" split_words:"true" default:"eino"`

	openrouterx.Config
}

func (c Config) Validate() error {
	switch c.backend() {
	case BackendEino, BackendOpenAI, BackendHeuristic:
	default:
		return fmt.Errorf("%w: unknown model backend %q", contractx.ErrValidation, c.Backend)
	}
	if c.backend() != BackendHeuristic && strings.TrimSpace(c.Model) == "" {
		return fmt.Errorf("%w: model name is required", contractx.ErrValidation)
	}
	return nil
}

func (c Config) backend() string {
	b := strings.ToLower(strings.TrimSpace(c.Backend))
	if b == "" {
		return BackendEino
	}
	return b
}

// OpenRouter returns the trimmed client settings.
func (c Config) OpenRouter() openrouterx.Config {
	out := c.Config
	out.BaseURL = strings.TrimSpace(out.BaseURL)
	out.APIKey = strings.TrimSpace(out.APIKey)
	out.Model = strings.TrimSpace(out.Model)
	out.SiteURL = strings.TrimSpace(out.SiteURL)
	out.SiteName = strings.TrimSpace(out.SiteName)
	return out
}

// NewCaller builds the configured model caller. Remote backends are
// wrapped so a failed call falls back to the heuristic classifier; without
// an API key the heuristic is used directly.
func NewCaller(ctx context.Context, cfg Config, tools []*schema.ToolInfo) (contractx.ModelCaller, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	heuristic := NewHeuristic()
	orCfg := cfg.OpenRouter()
	if cfg.backend() == BackendHeuristic || !orCfg.HasAPIKey() {
		return heuristic, nil
	}

	var primary contractx.ModelCaller
	switch cfg.backend() {
	case BackendOpenAI:
		primary = NewSDKCaller(openrouterx.NewClient(orCfg), orCfg)
	default:
		chatModel, err := orCfg.New(ctx)
		if err != nil {
			return nil, fmt.Errorf("%w: build chat model: %v", contractx.ErrModelInvoke, err)
		}
		caller, err := NewEinoCaller(ctx, chatModel, tools)
		if err != nil {
			return nil, err
		}
		primary = caller
	}

	return WithFallback(primary, heuristic), nil
}
