package render

import (
	"fmt"
	"io"
	"strings"

	rkerrors "github.com/reviewkitio/reviewkit/pkg/errors"
	"github.com/reviewkitio/reviewkit/pkg/review"
)

const rule = 80

// Text renders the report as a sectioned human-readable summary: header,
// overall verdict, findings grouped by severity (highest first), notes,
// and per-severity / per-category totals.
type Text struct{}

// NewText returns a text renderer.
func NewText() *Text {
	return &Text{}
}

// Render writes the text report.
func (Text) Render(w io.Writer, r *review.Report) error {
	var b strings.Builder

	line := func(format string, args ...any) {
		fmt.Fprintf(&b, format+"\n", args...)
	}
	hr := func(c string) {
		b.WriteString(strings.Repeat(c, rule) + "\n")
	}

	hr("=")
	line("AUTOMATED CODE REVIEW")
	hr("=")
	line("")

	switch {
	case r.Verdict == review.VerdictBlocking:
		line("Overall: CHANGES REQUESTED")
	case r.CountsBySeverity[review.SeverityWarning] > 0:
		line("Overall: COMMENTS")
	default:
		line("Overall: APPROVED")
	}
	line("Quality tier: %s", r.QualityTier)
	if r.CoveragePercentage != nil {
		line("Coverage: %.1f%%", *r.CoveragePercentage)
	} else {
		line("Coverage: unknown")
	}
	line("Files checked: %d", r.FilesChecked)
	line("Checks performed: %d", r.ChecksPerformed)
	line("")

	if n := r.CountsBySeverity[review.SeverityBlocking]; n > 0 {
		line("BLOCKING ISSUES (%d)", n)
		hr("-")
		writeDetailed(&b, r.BySeverity(review.SeverityBlocking))
		line("")
	}
	if n := r.CountsBySeverity[review.SeverityWarning]; n > 0 {
		line("RECOMMENDED CHANGES (%d)", n)
		hr("-")
		writeDetailed(&b, r.BySeverity(review.SeverityWarning))
		line("")
	}
	if n := r.CountsBySeverity[review.SeverityNitpick]; n > 0 {
		line("NITPICKS (%d)", n)
		hr("-")
		writeDetailed(&b, r.BySeverity(review.SeverityNitpick))
		line("")
	}

	if len(r.Notes) > 0 {
		line("NOTES")
		hr("-")
		for _, note := range r.Notes {
			line("  %s", note)
		}
		line("")
	}

	hr("=")
	line("SUMMARY")
	hr("=")
	line("Total issues: %d", r.TotalFindings())
	for _, s := range review.AllSeverities() {
		line("  %s: %d", s, r.CountsBySeverity[s])
	}
	line("By category:")
	for _, c := range review.AllCategories() {
		line("  %s: %d", c, r.CountsByCategory[c])
	}
	line("")

	switch {
	case r.Verdict == review.VerdictBlocking:
		line("REVIEW FAILED - blocking issues must be resolved")
	case r.CountsBySeverity[review.SeverityWarning] > 0:
		line("REVIEW PASSED WITH WARNINGS")
	default:
		line("REVIEW PASSED")
	}

	if _, err := io.WriteString(w, b.String()); err != nil {
		return rkerrors.Render("render.Text", "write report", err)
	}
	return nil
}

func writeDetailed(b *strings.Builder, findings []review.Finding) {
	for i, f := range findings {
		fmt.Fprintf(b, "\n%d. %s\n", i+1, f.Title)
		fmt.Fprintf(b, "   File: %s\n", f.File)
		if f.Line != nil {
			fmt.Fprintf(b, "   Line: %d\n", *f.Line)
		} else {
			fmt.Fprintf(b, "   Line: -\n")
		}
		fmt.Fprintf(b, "   Category: %s\n", f.Category)
		fmt.Fprintf(b, "   %s\n", f.Description)
		if f.Suggestion != "" {
			fmt.Fprintf(b, "   Suggestion: %s\n", f.Suggestion)
		}
		if f.Example != "" {
			fmt.Fprintf(b, "   Example:\n")
			for _, l := range strings.Split(f.Example, "\n") {
				fmt.Fprintf(b, "   %s\n", l)
			}
		}
	}
}
