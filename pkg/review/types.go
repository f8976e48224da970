// Package review defines the data model for a code review run: findings,
// severities, categories, the aggregate report, and the quality tier.
//
// IMPORTANT: The JSON field names in this package are the wire contract
// consumed by external orchestrators (CI workflows, PR commenters). Any
// change must be backward compatible.
package review

// Severity classifies how serious a finding is.
type Severity string

const (
	// SeverityBlocking - must be fixed before merge. Any blocking finding
	// forces the report verdict to VerdictBlocking.
	SeverityBlocking Severity = "blocking"

	// SeverityWarning - should be fixed, does not block the run.
	SeverityWarning Severity = "warning"

	// SeverityNitpick - optional improvement.
	SeverityNitpick Severity = "nitpick"
)

// AllSeverities returns all severities in order of importance (highest first).
// This is also the grouping order used by the renderers.
func AllSeverities() []Severity {
	return []Severity{SeverityBlocking, SeverityWarning, SeverityNitpick}
}

// Priority returns the numeric priority of the severity.
// Higher numbers = more important. Unknown values return 0.
func (s Severity) Priority() int {
	switch s {
	case SeverityBlocking:
		return 3
	case SeverityWarning:
		return 2
	case SeverityNitpick:
		return 1
	default:
		return 0
	}
}

// Valid reports whether s is one of the defined severities.
func (s Severity) Valid() bool {
	return s.Priority() > 0
}

// String returns the string representation of the severity.
func (s Severity) String() string {
	return string(s)
}

// Category is the closed set of finding categories. Keeping this a closed
// type (rather than free-form strings) prevents a typo from silently
// creating a new category.
type Category string

const (
	CategorySecurity      Category = "security"
	CategoryQuality       Category = "quality"
	CategoryTesting       Category = "testing"
	CategoryDocumentation Category = "documentation"
)

// AllCategories returns all categories in rendering order.
func AllCategories() []Category {
	return []Category{CategorySecurity, CategoryQuality, CategoryTesting, CategoryDocumentation}
}

// Valid reports whether c is one of the defined categories.
func (c Category) Valid() bool {
	switch c {
	case CategorySecurity, CategoryQuality, CategoryTesting, CategoryDocumentation:
		return true
	}
	return false
}

// String returns the string representation of the category.
func (c Category) String() string {
	return string(c)
}

// Verdict is the overall outcome of a run.
type Verdict string

const (
	// VerdictAccepted - no blocking findings.
	VerdictAccepted Verdict = "accepted"

	// VerdictBlocking - at least one blocking finding; the caller should
	// exit non-zero.
	VerdictBlocking Verdict = "blocking"
)

// Tier is the aggregate quality classification derived from severity
// counts and coverage. See Classify for the threshold table.
type Tier string

const (
	TierPlatinum Tier = "platinum"
	TierGold     Tier = "gold"
	TierSilver   Tier = "silver"
	TierBronze   Tier = "bronze"

	// TierUnrated is a valid classification, not a failure: blocking
	// findings are present, or there is no signal to rate on at all.
	TierUnrated Tier = "unrated"
)

// Finding is one detected issue. Findings are immutable values with no
// identity beyond their fields; independent detectors may emit duplicates
// and the aggregator never collapses them.
type Finding struct {
	Severity Severity `json:"severity"`
	Category Category `json:"category"`

	// File is the path relative to the analysis root.
	File string `json:"file"`

	// Line is 1-based. Nil for file-level findings (e.g. a missing
	// manifest field); rendered as an explicit null, never 0.
	Line *int `json:"line"`

	// Title is a short stable label (e.g. "Hardcoded credential").
	Title       string `json:"title"`
	Description string `json:"description"`

	// Optional remediation text and corrected-code snippet.
	Suggestion string `json:"suggestion,omitempty"`
	Example    string `json:"example,omitempty"`
}

// LineAt is a convenience for building the optional line pointer.
func LineAt(n int) *int {
	return &n
}
