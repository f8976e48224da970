package render

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/reviewkitio/reviewkit/pkg/review"
)

func fp(v float64) *float64 { return &v }

func sampleReport() *review.Report {
	r := review.NewReport()
	r.FilesChecked = 2
	r.ChecksPerformed = 26
	r.CoveragePercentage = fp(72.5)
	r.Add(
		review.Finding{
			Severity:    review.SeverityBlocking,
			Category:    review.CategorySecurity,
			File:        "custom_components/demo/api.py",
			Line:        review.LineAt(3),
			Title:       "Hardcoded credential",
			Description: "Hardcoded API key, password, or secret detected",
			Suggestion:  "Store credentials in the config entry data, never in source",
			Example:     `api_key = entry.data[CONF_API_KEY]`,
		},
		review.Finding{
			Severity:    review.SeverityBlocking,
			Category:    review.CategoryQuality,
			File:        "custom_components/demo/manifest.json",
			Title:       "Missing manifest field",
			Description: `manifest.json must declare "version"`,
		},
		review.Finding{
			Severity:    review.SeverityWarning,
			Category:    review.CategoryTesting,
			File:        "tests/",
			Title:       "Test coverage below target",
			Description: "Coverage is 72.5%, target is 80%",
			Suggestion:  "Add tests for uncovered code paths",
		},
		review.Finding{
			Severity:    review.SeverityNitpick,
			Category:    review.CategoryDocumentation,
			File:        "custom_components/demo/__init__.py",
			Title:       "Missing module docstring",
			Description: "Module has no top-level docstring describing its purpose",
			Suggestion:  "Open the module with a one-line docstring",
		},
	)
	r.AddNote("skipped missing or unreadable file: gone.py")
	r.Finalize()
	return r
}

func TestTextRender(t *testing.T) {
	var buf bytes.Buffer
	if err := NewText().Render(&buf, sampleReport()); err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"AUTOMATED CODE REVIEW",
		"Overall: CHANGES REQUESTED",
		"Quality tier: unrated",
		"Coverage: 72.5%",
		"Files checked: 2",
		"Checks performed: 26",
		"BLOCKING ISSUES (2)",
		"RECOMMENDED CHANGES (1)",
		"NITPICKS (1)",
		"Line: 3",
		"Line: -",
		"Category: security",
		"Category: documentation",
		"File: custom_components/demo/__init__.py",
		"Module has no top-level docstring describing its purpose",
		"Suggestion: Open the module with a one-line docstring",
		"Suggestion: Store credentials in the config entry data, never in source",
		"api_key = entry.data[CONF_API_KEY]",
		"skipped missing or unreadable file: gone.py",
		"Total issues: 4",
		"blocking: 2",
		"security: 1",
		"REVIEW FAILED - blocking issues must be resolved",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("text output missing %q:\n%s", want, out)
		}
	}
}

func TestTextRenderCleanRun(t *testing.T) {
	r := review.NewReport()
	r.FilesChecked = 1
	r.ChecksPerformed = 13
	r.Finalize()

	var buf bytes.Buffer
	if err := NewText().Render(&buf, r); err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"Overall: APPROVED",
		"Coverage: unknown",
		"REVIEW PASSED",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("text output missing %q:\n%s", want, out)
		}
	}
	for _, reject := range []string{"BLOCKING ISSUES", "NITPICKS", "NOTES"} {
		if strings.Contains(out, reject) {
			t.Errorf("clean run output should not contain %q:\n%s", reject, out)
		}
	}
}

func TestTextRenderWarningsOnly(t *testing.T) {
	r := review.NewReport()
	r.FilesChecked = 1
	r.ChecksPerformed = 13
	r.Add(review.Finding{
		Severity:    review.SeverityWarning,
		Category:    review.CategoryQuality,
		File:        "a.py",
		Line:        review.LineAt(1),
		Title:       "Missing type annotation",
		Description: "x",
	})
	r.Finalize()

	var buf bytes.Buffer
	if err := NewText().Render(&buf, r); err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "Overall: COMMENTS") {
		t.Errorf("output missing COMMENTS verdict:\n%s", out)
	}
	if !strings.Contains(out, "REVIEW PASSED WITH WARNINGS") {
		t.Errorf("output missing warning footer:\n%s", out)
	}
}

func TestJSONRenderRoundTrip(t *testing.T) {
	report := sampleReport()

	var buf bytes.Buffer
	if err := NewJSON().Render(&buf, report); err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	if !bytes.HasSuffix(buf.Bytes(), []byte("\n")) {
		t.Error("JSON output should end with a newline")
	}

	var decoded review.Report
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded.Verdict != report.Verdict {
		t.Errorf("Verdict = %s, want %s", decoded.Verdict, report.Verdict)
	}
	if len(decoded.Findings) != len(report.Findings) {
		t.Errorf("got %d findings, want %d", len(decoded.Findings), len(report.Findings))
	}
	if decoded.CoveragePercentage == nil || *decoded.CoveragePercentage != 72.5 {
		t.Errorf("CoveragePercentage = %v", decoded.CoveragePercentage)
	}
	if decoded.CountsBySeverity[review.SeverityBlocking] != 2 {
		t.Errorf("blocking count = %d, want 2", decoded.CountsBySeverity[review.SeverityBlocking])
	}
}

func TestRenderersDeterministic(t *testing.T) {
	for _, tt := range []struct {
		name string
		r    Renderer
	}{
		{"text", NewText()},
		{"json", NewJSON()},
	} {
		t.Run(tt.name, func(t *testing.T) {
			var first, second bytes.Buffer
			if err := tt.r.Render(&first, sampleReport()); err != nil {
				t.Fatalf("Render() error: %v", err)
			}
			if err := tt.r.Render(&second, sampleReport()); err != nil {
				t.Fatalf("Render() error: %v", err)
			}
			if !bytes.Equal(first.Bytes(), second.Bytes()) {
				t.Error("identical reports rendered differently")
			}
		})
	}
}
