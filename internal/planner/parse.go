package planner

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/webpilot-ai/webpilot/pkg/models"
)

// ErrUnparsable indicates the planner's text contained no parsable JSON
// object even after bracket extraction.
var ErrUnparsable = errors.New("planner output is not a JSON object")

// ParsePlanOutput decodes a planner response into a PlanOutput.
//
// Models wrap JSON in prose or markdown fences, so a failed direct parse is
// retried on the substring between the first '{' and the last '}'. Only the
// shape is checked here; the action/finish contract is the orchestrator's to
// enforce.
func ParsePlanOutput(text string) (*models.PlanOutput, error) {
	trimmed := strings.TrimSpace(text)

	var out models.PlanOutput
	if err := json.Unmarshal([]byte(trimmed), &out); err == nil {
		return &out, nil
	}

	start := strings.Index(trimmed, "{")
	end := strings.LastIndex(trimmed, "}")
	if start < 0 || end <= start {
		return nil, fmt.Errorf("%w: %s", ErrUnparsable, truncateForError(trimmed))
	}

	if err := json.Unmarshal([]byte(trimmed[start:end+1]), &out); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrUnparsable, truncateForError(trimmed))
	}
	return &out, nil
}

func truncateForError(text string) string {
	const limit = 200
	if len(text) > limit {
		return text[:limit] + "..."
	}
	return text
}
