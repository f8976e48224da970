package review

import (
	"bytes"
	"encoding/json"
	"testing"
)

func TestNewReportZeroedCounts(t *testing.T) {
	r := NewReport()
	if len(r.CountsBySeverity) != 3 {
		t.Errorf("expected 3 severity keys, got %d", len(r.CountsBySeverity))
	}
	if len(r.CountsByCategory) != 4 {
		t.Errorf("expected 4 category keys, got %d", len(r.CountsByCategory))
	}
	for s, n := range r.CountsBySeverity {
		if n != 0 {
			t.Errorf("severity %s count = %d, want 0", s, n)
		}
	}
}

func TestReportAddUpdatesCounts(t *testing.T) {
	r := NewReport()
	r.Add(
		Finding{Severity: SeverityBlocking, Category: CategorySecurity, File: "a.py", Title: "x"},
		Finding{Severity: SeverityWarning, Category: CategoryQuality, File: "a.py", Title: "y"},
		Finding{Severity: SeverityWarning, Category: CategoryQuality, File: "b.py", Title: "y"},
	)

	if got := r.TotalFindings(); got != 3 {
		t.Errorf("TotalFindings() = %d, want 3", got)
	}
	if got := r.CountsBySeverity[SeverityWarning]; got != 2 {
		t.Errorf("warning count = %d, want 2", got)
	}
	if got := r.CountsByCategory[CategoryQuality]; got != 2 {
		t.Errorf("quality count = %d, want 2", got)
	}
	if !r.HasBlocking() {
		t.Error("HasBlocking() = false, want true")
	}
	if got := len(r.BySeverity(SeverityWarning)); got != 2 {
		t.Errorf("BySeverity(warning) returned %d findings, want 2", got)
	}
}

func TestFinalizeVerdict(t *testing.T) {
	tests := []struct {
		name     string
		findings []Finding
		want     Verdict
	}{
		{"empty run accepted", nil, VerdictAccepted},
		{"warnings only accepted", []Finding{
			{Severity: SeverityWarning, Category: CategoryQuality},
		}, VerdictAccepted},
		{"blocking blocks", []Finding{
			{Severity: SeverityNitpick, Category: CategoryDocumentation},
			{Severity: SeverityBlocking, Category: CategorySecurity},
		}, VerdictBlocking},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewReport()
			r.Add(tt.findings...)
			r.Finalize()
			if r.Verdict != tt.want {
				t.Errorf("Verdict = %s, want %s", r.Verdict, tt.want)
			}
		})
	}
}

func TestFinalizeTier(t *testing.T) {
	r := NewReport()
	r.FilesChecked = 4
	r.CoveragePercentage = fp(92)
	r.Finalize()
	if r.QualityTier != TierPlatinum {
		t.Errorf("QualityTier = %s, want %s", r.QualityTier, TierPlatinum)
	}
}

func TestAddAfterFinalizePanics(t *testing.T) {
	r := NewReport()
	r.Finalize()
	defer func() {
		if recover() == nil {
			t.Error("Add after Finalize did not panic")
		}
	}()
	r.Add(Finding{Severity: SeverityNitpick, Category: CategoryQuality})
}

func TestFinalizeIdempotent(t *testing.T) {
	r := NewReport()
	r.Add(Finding{Severity: SeverityBlocking, Category: CategorySecurity})
	r.Finalize()
	r.Finalize()
	if r.Verdict != VerdictBlocking {
		t.Errorf("Verdict = %s after double Finalize", r.Verdict)
	}
}

func TestReportJSONDeterministic(t *testing.T) {
	build := func() []byte {
		r := NewReport()
		r.FilesChecked = 2
		r.ChecksPerformed = 26
		r.Add(
			Finding{Severity: SeverityBlocking, Category: CategorySecurity, File: "a.py", Line: LineAt(3), Title: "Hardcoded credential"},
			Finding{Severity: SeverityNitpick, Category: CategoryDocumentation, File: "b.py", Title: "Missing module docstring"},
		)
		r.Finalize()
		out, err := json.Marshal(r)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		return out
	}

	first := build()
	second := build()
	if !bytes.Equal(first, second) {
		t.Errorf("identical reports serialized differently:\n%s\n%s", first, second)
	}
}

func TestFindingLineNullWhenFileLevel(t *testing.T) {
	out, err := json.Marshal(Finding{
		Severity: SeverityBlocking,
		Category: CategoryQuality,
		File:     "manifest.json",
		Title:    "Missing manifest field",
	})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !bytes.Contains(out, []byte(`"line":null`)) {
		t.Errorf("file-level finding should serialize line as null: %s", out)
	}
}
