package providers

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/webpilot-ai/webpilot/internal/config"
	"github.com/webpilot-ai/webpilot/internal/planner"
	"github.com/webpilot-ai/webpilot/pkg/models"
)

// planMaxTokens bounds a single plan completion. A plan is one small JSON
// object, so this is generous.
const planMaxTokens = 1024

// AnthropicPlanner implements planner.Planner on the Anthropic Messages API.
//
// Safe for concurrent use; each Plan call is an independent request.
type AnthropicPlanner struct {
	client anthropic.Client
	model  string
	policy config.SafetyPolicy
	retry  retrier
}

// AnthropicConfig configures an AnthropicPlanner.
type AnthropicConfig struct {
	// APIKey authenticates against the Anthropic API (required).
	APIKey string

	// Model is the model identifier. Default: "claude-sonnet-4-20250514".
	Model string

	// Policy is rendered into the prompt's safety boundaries.
	Policy config.SafetyPolicy

	// MaxRetries bounds retry attempts for transient failures. Default: 3.
	MaxRetries int

	// RetryDelay is the base backoff delay. Default: 1s.
	RetryDelay time.Duration
}

// NewAnthropicPlanner creates a planner backed by Anthropic.
func NewAnthropicPlanner(cfg AnthropicConfig) (*AnthropicPlanner, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("anthropic: API key is required")
	}
	if cfg.Model == "" {
		cfg.Model = "claude-sonnet-4-20250514"
	}

	return &AnthropicPlanner{
		client: anthropic.NewClient(option.WithAPIKey(cfg.APIKey)),
		model:  cfg.Model,
		policy: cfg.Policy,
		retry:  newRetrier(cfg.MaxRetries, cfg.RetryDelay),
	}, nil
}

// Name returns "anthropic".
func (p *AnthropicPlanner) Name() string {
	return "anthropic"
}

// Plan renders the prompt, runs a message completion, and parses the response.
func (p *AnthropicPlanner) Plan(ctx context.Context, req *planner.PlanRequest) (*models.PlanOutput, error) {
	prompt := planner.BuildPrompt(req, p.policy)

	var text string
	err := p.retry.do(ctx, func() error {
		msg, err := p.client.Messages.New(ctx, anthropic.MessageNewParams{
			Model:     anthropic.Model(p.model),
			MaxTokens: planMaxTokens,
			System: []anthropic.TextBlockParam{
				{Type: "text", Text: prompt.System},
			},
			Messages: []anthropic.MessageParam{
				anthropic.NewUserMessage(anthropic.NewTextBlock(prompt.User)),
			},
		})
		if err != nil {
			return err
		}

		var b strings.Builder
		for _, block := range msg.Content {
			if block.Type == "text" {
				b.WriteString(block.Text)
			}
		}
		if b.Len() == 0 {
			return errors.New("anthropic: empty response")
		}
		text = b.String()
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("anthropic: completion failed: %w", err)
	}

	return planner.ParsePlanOutput(text)
}
