package review

// Report is the aggregate result of one run. It is built incrementally by
// the engine's aggregator and becomes read-only once Finalize has run.
//
// The report deliberately carries no timestamps, IDs, or durations: two
// runs over identical inputs must serialize to byte-identical JSON. Run
// metadata with identity lives in the history store instead.
type Report struct {
	// Verdict is derived in Finalize: blocking if any blocking finding.
	Verdict Verdict `json:"verdict"`

	// QualityTier is derived in Finalize from the table in Classify.
	QualityTier Tier `json:"quality_tier"`

	// CoveragePercentage is supplied externally (a test-running
	// collaborator) and attached verbatim. Nil when unknown.
	CoveragePercentage *float64 `json:"coverage_percentage"`

	// FilesChecked counts files actually opened and scanned.
	FilesChecked int `json:"files_checked"`

	// ChecksPerformed counts detector invocations: always
	// files_checked x registered detectors, independent of finding count.
	ChecksPerformed int `json:"checks_performed"`

	// CountsBySeverity and CountsByCategory always carry every key of
	// their closed sets, including zeroes, so consumers never need to
	// probe for presence.
	CountsBySeverity map[Severity]int `json:"counts_by_severity"`
	CountsByCategory map[Category]int `json:"counts_by_category"`

	// Findings in detection order: file order x detector registration
	// order, stable across runs.
	Findings []Finding `json:"findings"`

	// Notes are selector-level non-fatal remarks, e.g. an explicit file
	// that did not exist. Never silently dropped.
	Notes []string `json:"notes,omitempty"`

	finalized bool
}

// NewReport returns an empty report with zeroed count maps.
func NewReport() *Report {
	r := &Report{
		CountsBySeverity: make(map[Severity]int, 3),
		CountsByCategory: make(map[Category]int, 4),
		Findings:         []Finding{},
	}
	for _, s := range AllSeverities() {
		r.CountsBySeverity[s] = 0
	}
	for _, c := range AllCategories() {
		r.CountsByCategory[c] = 0
	}
	return r
}

// Add appends findings in detection order and updates the count maps.
// It panics if called after Finalize; the aggregator is the only writer.
func (r *Report) Add(findings ...Finding) {
	if r.finalized {
		panic("review: Add after Finalize")
	}
	for _, f := range findings {
		r.Findings = append(r.Findings, f)
		r.CountsBySeverity[f.Severity]++
		r.CountsByCategory[f.Category]++
	}
}

// AddNote records a non-fatal report-level note.
func (r *Report) AddNote(note string) {
	if r.finalized {
		panic("review: AddNote after Finalize")
	}
	r.Notes = append(r.Notes, note)
}

// HasBlocking reports whether any blocking finding is present.
func (r *Report) HasBlocking() bool {
	return r.CountsBySeverity[SeverityBlocking] > 0
}

// TotalFindings returns the number of findings across all severities.
func (r *Report) TotalFindings() int {
	return len(r.Findings)
}

// BySeverity returns the findings of the given severity, in detection order.
func (r *Report) BySeverity(s Severity) []Finding {
	var out []Finding
	for _, f := range r.Findings {
		if f.Severity == s {
			out = append(out, f)
		}
	}
	return out
}

// Finalize derives the verdict and quality tier. After Finalize the report
// is read-only; calling it twice is a no-op.
func (r *Report) Finalize() {
	if r.finalized {
		return
	}
	if r.HasBlocking() {
		r.Verdict = VerdictBlocking
	} else {
		r.Verdict = VerdictAccepted
	}
	r.QualityTier = Classify(
		r.CountsBySeverity[SeverityBlocking],
		r.CountsBySeverity[SeverityWarning],
		r.CoveragePercentage,
		r.FilesChecked,
	)
	r.finalized = true
}
