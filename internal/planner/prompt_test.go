package planner

import (
	"strings"
	"testing"
	"time"

	"github.com/webpilot-ai/webpilot/internal/config"
	"github.com/webpilot-ai/webpilot/pkg/models"
)

func TestBuildPromptContents(t *testing.T) {
	policy := config.DefaultSafetyPolicy()
	req := &PlanRequest{
		Task: &models.Task{
			ID:   "task-1",
			Goal: "Find the pricing page",
			Context: &models.TaskContext{
				URL:   "https://example.com",
				Title: "Example",
				HTML:  "<html>" + strings.Repeat("x", 2000),
			},
		},
		RecentMemory: []models.MemoryEntry{
			{Type: models.MemoryThought, Content: "open the site", Timestamp: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)},
			{Type: models.MemoryObservation, Content: "SUCCESS: Navigated"},
		},
		Tools: []models.ToolDefinition{
			{
				Name:        "navigate",
				Description: "Open a URL.",
				Schema: map[string]models.ParamSpec{
					"url":   {Required: true},
					"tabId": {},
				},
				SafetyNotes: []string{"Blocked origins are refused."},
			},
		},
		StepCount: 2,
	}

	p := BuildPrompt(req, policy)

	if !strings.Contains(p.System, "navigate: Open a URL.") {
		t.Error("system prompt missing tool catalog entry")
	}
	if !strings.Contains(p.System, "Required params: url") {
		t.Error("system prompt missing required params")
	}
	if !strings.Contains(p.System, "Blocked origins are refused.") {
		t.Error("system prompt missing safety note")
	}
	if !strings.Contains(p.System, "chrome://") {
		t.Error("system prompt missing blocked origins")
	}
	if !strings.Contains(p.System, `input[type="password"]`) {
		t.Error("system prompt missing restricted selectors")
	}
	if !strings.Contains(p.System, `"thought"`) || !strings.Contains(p.System, `"finish"`) {
		t.Error("system prompt missing output schema")
	}

	if !strings.Contains(p.User, "Goal: Find the pricing page") {
		t.Error("user prompt missing goal")
	}
	if !strings.Contains(p.User, "URL: https://example.com") {
		t.Error("user prompt missing page URL")
	}
	if !strings.Contains(p.User, "2026-01-02T03:04:05Z] THOUGHT: open the site") {
		t.Errorf("user prompt missing formatted memory entry:\n%s", p.User)
	}
	if !strings.Contains(p.User, "Steps taken so far: 2") {
		t.Error("user prompt missing step count")
	}
}

func TestBuildPromptTruncatesHTML(t *testing.T) {
	req := &PlanRequest{
		Task: &models.Task{
			Goal:    "g",
			Context: &models.TaskContext{HTML: strings.Repeat("a", 5000)},
		},
	}

	p := BuildPrompt(req, config.DefaultSafetyPolicy())
	if strings.Count(p.User, "a") > maxContextHTML {
		t.Errorf("HTML excerpt not truncated to %d chars", maxContextHTML)
	}
}

func TestBuildPromptMemoryWindow(t *testing.T) {
	var entries []models.MemoryEntry
	for i := 0; i < 20; i++ {
		entries = append(entries, models.MemoryEntry{
			Type:    models.MemoryThought,
			Content: "entry",
		})
	}
	req := &PlanRequest{
		Task:         &models.Task{Goal: "g"},
		RecentMemory: entries,
	}

	p := BuildPrompt(req, config.DefaultSafetyPolicy())
	if got := strings.Count(p.User, "THOUGHT: entry"); got != promptMemoryWindow {
		t.Errorf("rendered %d memory entries, want %d", got, promptMemoryWindow)
	}
}
