package planner

import (
	"fmt"
	"strings"
	"time"

	"github.com/webpilot-ai/webpilot/internal/config"
	"github.com/webpilot-ai/webpilot/pkg/models"
)

const (
	// maxContextHTML bounds the page HTML excerpt included in the prompt.
	maxContextHTML = 1500

	// promptMemoryWindow is the number of memory entries rendered into the
	// prompt, taken from the tail of PlanRequest.RecentMemory.
	promptMemoryWindow = 12
)

// Prompt is the rendered input for a planning call.
type Prompt struct {
	// System is the instruction block: role, tool catalog, output schema,
	// and safety boundaries.
	System string

	// User is the per-iteration block: goal, page context, and memory.
	User string
}

// BuildPrompt renders a PlanRequest into provider-agnostic prompt text.
func BuildPrompt(req *PlanRequest, policy config.SafetyPolicy) Prompt {
	return Prompt{
		System: buildSystemPrompt(req.Tools, policy),
		User:   buildUserPrompt(req),
	}
}

func buildSystemPrompt(tools []models.ToolDefinition, policy config.SafetyPolicy) string {
	var b strings.Builder

	b.WriteString("You are a browser automation agent. You control a web browser to accomplish the user's goal, one action per turn.\n\n")

	b.WriteString("Available tools:\n")
	for _, tool := range tools {
		b.WriteString(fmt.Sprintf("- %s: %s", tool.Name, tool.Description))
		if required := tool.RequiredParams(); len(required) > 0 {
			b.WriteString(fmt.Sprintf(" Required params: %s.", strings.Join(required, ", ")))
		}
		if optional := tool.OptionalParams(); len(optional) > 0 {
			b.WriteString(fmt.Sprintf(" Optional params: %s.", strings.Join(optional, ", ")))
		}
		for _, note := range tool.SafetyNotes {
			b.WriteString(" Note: " + note)
		}
		b.WriteString("\n")
	}

	b.WriteString("\nRespond with a single JSON object and nothing else:\n")
	b.WriteString(`{"thought": "<your reasoning>", "action": {"type": "<tool>", "params": {...}}}` + "\n")
	b.WriteString("When the goal is achieved or cannot be achieved, respond instead with:\n")
	b.WriteString(`{"thought": "<your reasoning>", "finish": {"status": "success" | "failed", "summary": "<outcome>"}}` + "\n")
	b.WriteString(`You may include an optional "caution" field with a safety concern.` + "\n")

	b.WriteString("\nSafety boundaries:\n")
	if len(policy.BlockedOrigins) > 0 {
		b.WriteString("- Never navigate to URLs starting with: " + strings.Join(policy.BlockedOrigins, ", ") + "\n")
	}
	if len(policy.RestrictedSelectors) > 0 {
		b.WriteString("- Never click or type into these selectors: " + strings.Join(policy.RestrictedSelectors, ", ") + "\n")
	}
	b.WriteString(fmt.Sprintf("- You have a budget of %d steps. Finish before it runs out.\n", policy.MaxSteps))

	return b.String()
}

func buildUserPrompt(req *PlanRequest) string {
	var b strings.Builder

	b.WriteString("Goal: " + req.Task.Goal + "\n")

	if ctx := req.Task.Context; ctx != nil {
		b.WriteString("\nCurrent page:\n")
		if ctx.URL != "" {
			b.WriteString("URL: " + ctx.URL + "\n")
		}
		if ctx.Title != "" {
			b.WriteString("Title: " + ctx.Title + "\n")
		}
		if ctx.Description != "" {
			b.WriteString("Description: " + ctx.Description + "\n")
		}
		if ctx.HTML != "" {
			html := ctx.HTML
			if len(html) > maxContextHTML {
				html = html[:maxContextHTML]
			}
			b.WriteString("HTML excerpt:\n" + html + "\n")
		}
	}

	entries := req.RecentMemory
	if len(entries) > promptMemoryWindow {
		entries = entries[len(entries)-promptMemoryWindow:]
	}
	if len(entries) > 0 {
		b.WriteString("\nHistory:\n")
		for _, entry := range entries {
			b.WriteString(fmt.Sprintf("[%s] %s: %s\n",
				entry.Timestamp.UTC().Format(time.RFC3339),
				strings.ToUpper(string(entry.Type)),
				entry.Content))
		}
	}

	b.WriteString(fmt.Sprintf("\nSteps taken so far: %d\n", req.StepCount))
	b.WriteString("Decide the next action or finish. Respond with the JSON object only.\n")

	return b.String()
}
