// Package tools provides the canonical catalog of browser actions and the
// schema-backed validator the orchestrator runs every planned action through.
package tools

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/webpilot-ai/webpilot/pkg/models"
)

// Registry is the immutable catalog of recognized action kinds.
//
// Each kind declares a parameter schema. Validation checks only the shape the
// planner is responsible for: the action type must be known and every
// required parameter must be present and non-null. Extra parameters are
// tolerated for forward compatibility; type correctness beyond presence is
// delegated to the executor.
type Registry struct {
	defs    []models.ToolDefinition
	byName  map[string]models.ToolDefinition
	schemas map[string]*jsonschema.Schema
}

// ValidationResult is the outcome of validating an action.
type ValidationResult struct {
	// OK is true when the action passed validation.
	OK bool

	// Issues lists the problems found, empty when OK.
	Issues []string
}

// NewRegistry builds the registry with the fixed tool catalog.
func NewRegistry() *Registry {
	defs := catalog()

	r := &Registry{
		defs:    defs,
		byName:  make(map[string]models.ToolDefinition, len(defs)),
		schemas: make(map[string]*jsonschema.Schema, len(defs)),
	}
	for _, def := range defs {
		r.byName[def.Name] = def
		r.schemas[def.Name] = mustCompileSchema(def)
	}
	return r
}

// List returns the catalog in its canonical order.
func (r *Registry) List() []models.ToolDefinition {
	out := make([]models.ToolDefinition, len(r.defs))
	copy(out, r.defs)
	return out
}

// Get returns a tool definition by name.
func (r *Registry) Get(name string) (models.ToolDefinition, bool) {
	def, ok := r.byName[name]
	return def, ok
}

// Validate checks an action against the catalog.
func (r *Registry) Validate(action models.Action) ValidationResult {
	def, ok := r.byName[action.Type]
	if !ok {
		return ValidationResult{Issues: []string{fmt.Sprintf("Unknown action type %q", action.Type)}}
	}

	params := action.Params
	if params == nil {
		params = map[string]any{}
	}

	schema := r.schemas[action.Type]
	if err := schema.Validate(toJSONValue(params)); err == nil {
		return ValidationResult{OK: true}
	}

	// The schema only constrains presence, so the issue list can be derived
	// deterministically from the definition.
	return ValidationResult{Issues: presenceIssues(def, params)}
}

// presenceIssues lists missing required parameters, plus the ms|until rule
// for wait.
func presenceIssues(def models.ToolDefinition, params map[string]any) []string {
	var issues []string
	for _, name := range def.RequiredParams() {
		if v, ok := params[name]; !ok || v == nil {
			issues = append(issues, fmt.Sprintf("Missing required parameter %q", name))
		}
	}
	if def.Name == "wait" {
		ms, hasMS := params["ms"]
		until, hasUntil := params["until"]
		if (!hasMS || ms == nil) && (!hasUntil || until == nil) {
			issues = append(issues, `At least one of "ms" or "until" is required`)
		}
	}
	if len(issues) == 0 {
		issues = append(issues, fmt.Sprintf("Invalid parameters for %q", def.Name))
	}
	return issues
}

// mustCompileSchema builds the JSON Schema for a tool's params object.
// Required parameters are both listed in "required" and constrained non-null;
// additional properties are allowed.
func mustCompileSchema(def models.ToolDefinition) *jsonschema.Schema {
	properties := map[string]any{}
	var required []string
	for name, spec := range def.Schema {
		if spec.Required {
			required = append(required, name)
			properties[name] = map[string]any{"not": map[string]any{"type": "null"}}
		}
	}
	sort.Strings(required)

	doc := map[string]any{
		"type":                 "object",
		"properties":           properties,
		"additionalProperties": true,
	}
	if len(required) > 0 {
		doc["required"] = required
	}
	if def.Name == "wait" {
		doc["anyOf"] = []any{
			map[string]any{"required": []string{"ms"}, "properties": map[string]any{"ms": map[string]any{"not": map[string]any{"type": "null"}}}},
			map[string]any{"required": []string{"until"}, "properties": map[string]any{"until": map[string]any{"not": map[string]any{"type": "null"}}}},
		}
	}

	raw, err := json.Marshal(doc)
	if err != nil {
		panic(fmt.Sprintf("marshal schema for %s: %v", def.Name, err))
	}

	compiler := jsonschema.NewCompiler()
	url := "webpilot://tools/" + def.Name
	if err := compiler.AddResource(url, strings.NewReader(string(raw))); err != nil {
		panic(fmt.Sprintf("add schema resource for %s: %v", def.Name, err))
	}
	schema, err := compiler.Compile(url)
	if err != nil {
		panic(fmt.Sprintf("compile schema for %s: %v", def.Name, err))
	}
	return schema
}

// toJSONValue normalizes params into the value space jsonschema validates,
// i.e. what encoding/json would produce.
func toJSONValue(params map[string]any) any {
	raw, err := json.Marshal(params)
	if err != nil {
		return params
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return params
	}
	return v
}
