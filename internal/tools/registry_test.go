package tools

import (
	"strings"
	"testing"

	"github.com/webpilot-ai/webpilot/pkg/models"
)

func TestRegistryCatalog(t *testing.T) {
	r := NewRegistry()

	want := []string{"navigate", "click", "type", "wait", "scroll", "extract", "finish"}
	defs := r.List()
	if len(defs) != len(want) {
		t.Fatalf("List() returned %d tools, want %d", len(defs), len(want))
	}
	for i, name := range want {
		if defs[i].Name != name {
			t.Errorf("List()[%d].Name = %q, want %q", i, defs[i].Name, name)
		}
	}

	if _, ok := r.Get("navigate"); !ok {
		t.Error("Get(navigate) not found")
	}
	if _, ok := r.Get("teleport"); ok {
		t.Error("Get(teleport) should not be found")
	}
}

func TestValidateUnknownType(t *testing.T) {
	r := NewRegistry()

	res := r.Validate(models.Action{Type: "teleport", Params: map[string]any{}})
	if res.OK {
		t.Fatal("unknown action type should fail validation")
	}
	if len(res.Issues) != 1 || !strings.Contains(res.Issues[0], `"teleport"`) {
		t.Errorf("Issues = %v, want unknown-type issue naming the type", res.Issues)
	}
}

func TestValidateRequiredParams(t *testing.T) {
	r := NewRegistry()

	cases := []struct {
		name    string
		action  models.Action
		ok      bool
		missing string
	}{
		{
			name:   "navigate with url",
			action: models.Action{Type: "navigate", Params: map[string]any{"url": "https://example.com"}},
			ok:     true,
		},
		{
			name:    "navigate without url",
			action:  models.Action{Type: "navigate", Params: map[string]any{}},
			missing: "url",
		},
		{
			name:    "navigate with null url",
			action:  models.Action{Type: "navigate", Params: map[string]any{"url": nil}},
			missing: "url",
		},
		{
			name:    "click without selector",
			action:  models.Action{Type: "click", Params: map[string]any{}},
			missing: "selector",
		},
		{
			name:    "type without text",
			action:  models.Action{Type: "type", Params: map[string]any{"selector": "#q"}},
			missing: "text",
		},
		{
			name:   "type complete",
			action: models.Action{Type: "type", Params: map[string]any{"selector": "#q", "text": "hi"}},
			ok:     true,
		},
		{
			name:    "scroll without direction",
			action:  models.Action{Type: "scroll", Params: map[string]any{"amount": 0.5}},
			missing: "direction",
		},
		{
			name:    "finish without summary",
			action:  models.Action{Type: "finish", Params: map[string]any{"status": "success"}},
			missing: "summary",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res := r.Validate(tc.action)
			if res.OK != tc.ok {
				t.Fatalf("Validate() OK = %v, want %v (issues: %v)", res.OK, tc.ok, res.Issues)
			}
			if tc.ok {
				return
			}
			found := false
			for _, issue := range res.Issues {
				if strings.Contains(issue, `"`+tc.missing+`"`) {
					found = true
				}
			}
			if !found {
				t.Errorf("Issues = %v, want an issue citing %q", res.Issues, tc.missing)
			}
		})
	}
}

func TestValidateToleratesExtraParams(t *testing.T) {
	r := NewRegistry()

	res := r.Validate(models.Action{Type: "navigate", Params: map[string]any{
		"url":        "https://example.com",
		"newFangled": true,
	}})
	if !res.OK {
		t.Errorf("extra parameters should be tolerated, got issues: %v", res.Issues)
	}
}

func TestValidateWaitRequiresMsOrUntil(t *testing.T) {
	r := NewRegistry()

	if res := r.Validate(models.Action{Type: "wait", Params: map[string]any{}}); res.OK {
		t.Error("wait with neither ms nor until should fail")
	} else if len(res.Issues) == 0 || !strings.Contains(res.Issues[0], `"ms"`) {
		t.Errorf("Issues = %v, want the ms|until rule cited", res.Issues)
	}

	if res := r.Validate(models.Action{Type: "wait", Params: map[string]any{"ms": 500}}); !res.OK {
		t.Errorf("wait with ms should pass, got %v", res.Issues)
	}
	if res := r.Validate(models.Action{Type: "wait", Params: map[string]any{"until": "#done"}}); !res.OK {
		t.Errorf("wait with until should pass, got %v", res.Issues)
	}
	if res := r.Validate(models.Action{Type: "wait", Params: map[string]any{"ms": nil, "until": nil}}); res.OK {
		t.Error("wait with null ms and until should fail")
	}
}

func TestValidateNilParamsMap(t *testing.T) {
	r := NewRegistry()

	res := r.Validate(models.Action{Type: "navigate"})
	if res.OK {
		t.Fatal("navigate with nil params should fail")
	}
	if !strings.Contains(res.Issues[0], `"url"`) {
		t.Errorf("Issues = %v, want url cited", res.Issues)
	}
}
