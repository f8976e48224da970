package detectors

import (
	"encoding/json"
	"fmt"

	"github.com/reviewkitio/reviewkit/pkg/review"
)

// manifestRequiredFields are the keys every integration manifest must
// declare, in reporting order.
var manifestRequiredFields = []string{
	"domain",
	"name",
	"version",
	"codeowners",
	"documentation",
	"iot_class",
	"integration_type",
}

// manifestSchema validates manifest.json: well-formed JSON, required
// fields present, config flow enabled.
type manifestSchema struct{}

func (manifestSchema) Name() string              { return "manifest-schema" }
func (manifestSchema) Category() review.Category { return review.CategoryQuality }
func (manifestSchema) NeedsTree() bool           { return false }

func (d manifestSchema) Check(f *SourceFile) []review.Finding {
	if f.Base() != "manifest.json" {
		return nil
	}
	var manifest map[string]any
	if err := json.Unmarshal([]byte(f.Content), &manifest); err != nil {
		return []review.Finding{{
			Severity:    review.SeverityBlocking,
			Category:    d.Category(),
			File:        f.Path,
			Title:       "Invalid JSON",
			Description: fmt.Sprintf("manifest.json is not valid JSON: %v", err),
		}}
	}
	var out []review.Finding
	for _, field := range manifestRequiredFields {
		if _, ok := manifest[field]; ok {
			continue
		}
		out = append(out, review.Finding{
			Severity:    review.SeverityBlocking,
			Category:    d.Category(),
			File:        f.Path,
			Title:       "Missing manifest field",
			Description: fmt.Sprintf("manifest.json must declare %q", field),
		})
	}
	if enabled, _ := manifest["config_flow"].(bool); !enabled {
		out = append(out, review.Finding{
			Severity:    review.SeverityWarning,
			Category:    d.Category(),
			File:        f.Path,
			Title:       "Config flow not enabled",
			Description: "Integrations should be configurable from the UI via a config flow",
			Suggestion:  `Set "config_flow": true and implement config_flow.py`,
		})
	}
	return out
}

// stringsValid checks that strings.json parses.
type stringsValid struct{}

func (stringsValid) Name() string              { return "strings-valid" }
func (stringsValid) Category() review.Category { return review.CategoryQuality }
func (stringsValid) NeedsTree() bool           { return false }

func (d stringsValid) Check(f *SourceFile) []review.Finding {
	if f.Base() != "strings.json" {
		return nil
	}
	var v any
	if err := json.Unmarshal([]byte(f.Content), &v); err != nil {
		return []review.Finding{{
			Severity:    review.SeverityBlocking,
			Category:    d.Category(),
			File:        f.Path,
			Title:       "Invalid JSON",
			Description: fmt.Sprintf("strings.json is not valid JSON: %v", err),
		}}
	}
	return nil
}
