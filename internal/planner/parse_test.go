package planner

import (
	"errors"
	"testing"
)

func TestParsePlanOutputDirect(t *testing.T) {
	out, err := ParsePlanOutput(`{"thought":"I will open the site","action":{"type":"navigate","params":{"url":"https://example.com"}}}`)
	if err != nil {
		t.Fatalf("ParsePlanOutput: %v", err)
	}
	if out.Thought != "I will open the site" {
		t.Errorf("Thought = %q", out.Thought)
	}
	if out.Action == nil || out.Action.Type != "navigate" {
		t.Fatalf("Action = %+v, want navigate", out.Action)
	}
	if out.Action.Params["url"] != "https://example.com" {
		t.Errorf("url param = %v", out.Action.Params["url"])
	}
	if out.Finish != nil {
		t.Errorf("Finish should be nil, got %+v", out.Finish)
	}
}

func TestParsePlanOutputProseWrapped(t *testing.T) {
	variants := []string{
		`{"thought":"Done","finish":{"status":"success","summary":"Opened example.com"}}`,
		"Sure, here is my plan: {\"thought\":\"Done\",\"finish\":{\"status\":\"success\",\"summary\":\"Opened example.com\"}} Let me know!",
		"```json\n{\"thought\":\"Done\",\"finish\":{\"status\":\"success\",\"summary\":\"Opened example.com\"}}\n```",
	}

	for _, text := range variants {
		out, err := ParsePlanOutput(text)
		if err != nil {
			t.Fatalf("ParsePlanOutput(%q): %v", text, err)
		}
		if out.Finish == nil || out.Finish.Summary != "Opened example.com" {
			t.Errorf("ParsePlanOutput(%q) finish = %+v", text, out.Finish)
		}
	}
}

func TestParsePlanOutputCaution(t *testing.T) {
	out, err := ParsePlanOutput(`{"thought":"t","action":{"type":"click","params":{"selector":"#a"}},"caution":"login form ahead"}`)
	if err != nil {
		t.Fatalf("ParsePlanOutput: %v", err)
	}
	if out.Caution != "login form ahead" {
		t.Errorf("Caution = %q", out.Caution)
	}
}

func TestParsePlanOutputUnparsable(t *testing.T) {
	for _, text := range []string{
		"",
		"I cannot help with that.",
		"{broken json",
		"no braces at all }{",
	} {
		if _, err := ParsePlanOutput(text); !errors.Is(err, ErrUnparsable) {
			t.Errorf("ParsePlanOutput(%q) err = %v, want ErrUnparsable", text, err)
		}
	}
}
