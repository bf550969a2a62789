package providers

import (
	"context"
	"errors"
	"fmt"
	"time"

	"google.golang.org/genai"

	"github.com/webpilot-ai/webpilot/internal/config"
	"github.com/webpilot-ai/webpilot/internal/planner"
	"github.com/webpilot-ai/webpilot/pkg/models"
)

// GooglePlanner implements planner.Planner on the Google Gemini API.
//
// Safe for concurrent use; each Plan call is an independent request.
type GooglePlanner struct {
	client *genai.Client
	model  string
	policy config.SafetyPolicy
	retry  retrier
}

// GoogleConfig configures a GooglePlanner.
type GoogleConfig struct {
	// APIKey authenticates against the Gemini API (required).
	APIKey string

	// Model is the model identifier. Default: "gemini-2.0-flash".
	Model string

	// Policy is rendered into the prompt's safety boundaries.
	Policy config.SafetyPolicy

	// MaxRetries bounds retry attempts for transient failures. Default: 3.
	MaxRetries int

	// RetryDelay is the base backoff delay. Default: 1s.
	RetryDelay time.Duration
}

// NewGooglePlanner creates a planner backed by Gemini.
func NewGooglePlanner(ctx context.Context, cfg GoogleConfig) (*GooglePlanner, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("google: API key is required")
	}
	if cfg.Model == "" {
		cfg.Model = "gemini-2.0-flash"
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("google: failed to create client: %w", err)
	}

	return &GooglePlanner{
		client: client,
		model:  cfg.Model,
		policy: cfg.Policy,
		retry:  newRetrier(cfg.MaxRetries, cfg.RetryDelay),
	}, nil
}

// Name returns "gemini".
func (p *GooglePlanner) Name() string {
	return "gemini"
}

// Plan renders the prompt, runs a content generation, and parses the response.
func (p *GooglePlanner) Plan(ctx context.Context, req *planner.PlanRequest) (*models.PlanOutput, error) {
	prompt := planner.BuildPrompt(req, p.policy)

	genCfg := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: prompt.System}},
		},
	}
	contents := []*genai.Content{
		{Role: genai.RoleUser, Parts: []*genai.Part{{Text: prompt.User}}},
	}

	var text string
	err := p.retry.do(ctx, func() error {
		resp, err := p.client.Models.GenerateContent(ctx, p.model, contents, genCfg)
		if err != nil {
			return err
		}
		text = resp.Text()
		if text == "" {
			return errors.New("google: empty response")
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("google: completion failed: %w", err)
	}

	return planner.ParsePlanOutput(text)
}
