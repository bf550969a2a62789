package providers

import (
	"context"
	"errors"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/webpilot-ai/webpilot/internal/config"
	"github.com/webpilot-ai/webpilot/internal/planner"
	"github.com/webpilot-ai/webpilot/pkg/models"
)

// OpenAIPlanner implements planner.Planner on the OpenAI chat completion API.
//
// Safe for concurrent use; each Plan call is an independent request.
type OpenAIPlanner struct {
	client *openai.Client
	model  string
	policy config.SafetyPolicy
	retry  retrier
}

// OpenAIConfig configures an OpenAIPlanner.
type OpenAIConfig struct {
	// APIKey authenticates against the OpenAI API (required).
	APIKey string

	// Model is the model identifier. Default: "gpt-4o".
	Model string

	// Policy is rendered into the prompt's safety boundaries.
	Policy config.SafetyPolicy

	// MaxRetries bounds retry attempts for transient failures. Default: 3.
	MaxRetries int

	// RetryDelay is the base backoff delay. Default: 1s.
	RetryDelay time.Duration
}

// NewOpenAIPlanner creates a planner backed by OpenAI.
func NewOpenAIPlanner(cfg OpenAIConfig) (*OpenAIPlanner, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("openai: API key is required")
	}
	if cfg.Model == "" {
		cfg.Model = "gpt-4o"
	}

	return &OpenAIPlanner{
		client: openai.NewClient(cfg.APIKey),
		model:  cfg.Model,
		policy: cfg.Policy,
		retry:  newRetrier(cfg.MaxRetries, cfg.RetryDelay),
	}, nil
}

// Name returns "openai".
func (p *OpenAIPlanner) Name() string {
	return "openai"
}

// Plan renders the prompt, runs a chat completion, and parses the response.
func (p *OpenAIPlanner) Plan(ctx context.Context, req *planner.PlanRequest) (*models.PlanOutput, error) {
	prompt := planner.BuildPrompt(req, p.policy)

	var text string
	err := p.retry.do(ctx, func() error {
		resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
			Model: p.model,
			Messages: []openai.ChatCompletionMessage{
				{Role: openai.ChatMessageRoleSystem, Content: prompt.System},
				{Role: openai.ChatMessageRoleUser, Content: prompt.User},
			},
			ResponseFormat: &openai.ChatCompletionResponseFormat{
				Type: openai.ChatCompletionResponseFormatTypeJSONObject,
			},
		})
		if err != nil {
			return err
		}
		if len(resp.Choices) == 0 {
			return errors.New("openai: empty response")
		}
		text = resp.Choices[0].Message.Content
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("openai: completion failed: %w", err)
	}

	return planner.ParsePlanOutput(text)
}
