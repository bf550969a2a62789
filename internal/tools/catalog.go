package tools

import "github.com/webpilot-ai/webpilot/pkg/models"

// catalog returns the fixed tool set in canonical order.
func catalog() []models.ToolDefinition {
	return []models.ToolDefinition{
		{
			Name:        "navigate",
			Description: "Open a URL in the browser tab.",
			Schema: map[string]models.ParamSpec{
				"url":     {Description: "Absolute URL to open.", Required: true},
				"tabId":   {Description: "Target tab; defaults to the active tab."},
				"waitFor": {Description: "CSS selector to wait for after navigation."},
			},
			Execution:   models.ExecutionProfile{InvokesExecutor: true, ExpectedLatencyMs: 3000},
			SafetyNotes: []string{"URLs starting with a blocked origin prefix are refused."},
		},
		{
			Name:        "click",
			Description: "Click an element identified by a CSS selector.",
			Schema: map[string]models.ParamSpec{
				"selector":          {Description: "CSS selector of the element to click.", Required: true},
				"tabId":             {Description: "Target tab; defaults to the active tab."},
				"button":            {Description: "Mouse button: left, right, or middle. Defaults to left."},
				"waitForNavigation": {Description: "Wait for a navigation triggered by the click."},
			},
			Execution:   models.ExecutionProfile{InvokesExecutor: true, ExpectedLatencyMs: 1500},
			SafetyNotes: []string{"Restricted selectors (credential and payment fields) are refused."},
		},
		{
			Name:        "type",
			Description: "Type text into an input identified by a CSS selector.",
			Schema: map[string]models.ParamSpec{
				"selector": {Description: "CSS selector of the input.", Required: true},
				"text":     {Description: "Text to type.", Required: true},
				"tabId":    {Description: "Target tab; defaults to the active tab."},
				"clear":    {Description: "Clear the input before typing."},
				"submit":   {Description: "Press Enter after typing."},
			},
			Execution:   models.ExecutionProfile{InvokesExecutor: true, ExpectedLatencyMs: 1500},
			SafetyNotes: []string{"Restricted selectors (credential and payment fields) are refused."},
		},
		{
			Name:        "wait",
			Description: "Wait for a fixed time or until a selector appears.",
			Schema: map[string]models.ParamSpec{
				"ms":        {Description: "Milliseconds to sleep. Clamped to the policy ceiling."},
				"until":     {Description: "CSS selector to wait for. Preferred when both are given."},
				"tabId":     {Description: "Target tab; defaults to the active tab."},
				"timeoutMs": {Description: "Timeout for selector waits. Clamped to the policy ceiling."},
			},
			Execution:   models.ExecutionProfile{InvokesExecutor: true, ExpectedLatencyMs: 1000},
			SafetyNotes: []string{"At least one of ms or until must be provided."},
		},
		{
			Name:        "scroll",
			Description: "Scroll the page or a specific element.",
			Schema: map[string]models.ParamSpec{
				"direction": {Description: "One of up, down, top, or bottom.", Required: true},
				"tabId":     {Description: "Target tab; defaults to the active tab."},
				"amount":    {Description: "Pixels, or a 0-1 viewport fraction. Defaults to 0.6."},
				"selector":  {Description: "Scroll the first matching element into view first."},
			},
			Execution: models.ExecutionProfile{InvokesExecutor: true, ExpectedLatencyMs: 800},
		},
		{
			Name:        "extract",
			Description: "Extract attribute values from matching elements.",
			Schema: map[string]models.ParamSpec{
				"attribute": {Description: "textContent, innerHTML, or any DOM attribute.", Required: true},
				"tabId":     {Description: "Target tab; defaults to the active tab."},
				"selector":  {Description: "CSS selector to match. Defaults to *."},
				"purpose":   {Description: "Why the data is needed; recorded with the observation."},
			},
			Execution:   models.ExecutionProfile{InvokesExecutor: true, ExpectedLatencyMs: 1200},
			SafetyNotes: []string{"Output is capped at 10 non-empty values."},
		},
		{
			Name:        "finish",
			Description: "End the task with a final status and summary.",
			Schema: map[string]models.ParamSpec{
				"status":  {Description: "success or failed.", Required: true},
				"summary": {Description: "Final outcome description.", Required: true},
			},
			Execution: models.ExecutionProfile{InvokesExecutor: true, ExpectedLatencyMs: 100},
		},
	}
}
