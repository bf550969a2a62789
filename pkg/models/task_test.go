package models

import (
	"testing"
	"time"
)

func TestTaskIsTerminal(t *testing.T) {
	cases := []struct {
		status TaskStatus
		want   bool
	}{
		{TaskStatusPending, false},
		{TaskStatusRunning, false},
		{TaskStatusSucceeded, true},
		{TaskStatusFailed, true},
	}
	for _, tc := range cases {
		task := &Task{Status: tc.status}
		if got := task.IsTerminal(); got != tc.want {
			t.Errorf("IsTerminal() with status %q = %v, want %v", tc.status, got, tc.want)
		}
	}
}

func TestTaskCloneIsIndependent(t *testing.T) {
	now := time.Now()
	task := &Task{
		ID:      "t1",
		Goal:    "open example.com",
		Status:  TaskStatusRunning,
		Context: &TaskContext{URL: "https://example.com"},
		Steps: []*Step{
			{
				ID:     "s1",
				Index:  0,
				Status: StepStatusSucceeded,
				Action: Action{Type: "navigate", Params: map[string]any{"url": "https://example.com"}},
				Observation: &Observation{
					Result:  ObservationSuccess,
					Message: "Navigated",
					Data:    map[string]any{"url": "https://example.com"},
				},
				CreatedAt: now,
			},
		},
		CreatedAt: now,
	}

	clone := task.Clone()

	clone.Status = TaskStatusFailed
	clone.Context.URL = "https://other.example"
	clone.Steps[0].Status = StepStatusFailed
	clone.Steps[0].Action.Params["url"] = "mutated"
	clone.Steps[0].Observation.Data["url"] = "mutated"

	if task.Status != TaskStatusRunning {
		t.Error("clone mutation leaked into original status")
	}
	if task.Context.URL != "https://example.com" {
		t.Error("clone mutation leaked into original context")
	}
	if task.Steps[0].Status != StepStatusSucceeded {
		t.Error("clone mutation leaked into original step status")
	}
	if task.Steps[0].Action.Params["url"] != "https://example.com" {
		t.Error("clone mutation leaked into original action params")
	}
	if task.Steps[0].Observation.Data["url"] != "https://example.com" {
		t.Error("clone mutation leaked into original observation data")
	}
}

func TestTaskContextMerge(t *testing.T) {
	ctx := &TaskContext{URL: "https://a.example", Title: "A"}
	ctx.Merge(&TaskContext{Title: "B", Description: "desc"})

	if ctx.URL != "https://a.example" {
		t.Errorf("URL = %q, want unchanged", ctx.URL)
	}
	if ctx.Title != "B" {
		t.Errorf("Title = %q, want %q", ctx.Title, "B")
	}
	if ctx.Description != "desc" {
		t.Errorf("Description = %q, want %q", ctx.Description, "desc")
	}

	ctx.Merge(nil)
	if ctx.Title != "B" {
		t.Error("Merge(nil) should be a no-op")
	}
}

func TestToolDefinitionRequiredParams(t *testing.T) {
	def := ToolDefinition{
		Name: "type",
		Schema: map[string]ParamSpec{
			"text":     {Required: true},
			"selector": {Required: true},
			"tabId":    {},
			"clear":    {},
		},
	}

	required := def.RequiredParams()
	if len(required) != 2 || required[0] != "selector" || required[1] != "text" {
		t.Errorf("RequiredParams() = %v, want [selector text]", required)
	}
	optional := def.OptionalParams()
	if len(optional) != 2 || optional[0] != "clear" || optional[1] != "tabId" {
		t.Errorf("OptionalParams() = %v, want [clear tabId]", optional)
	}
}
