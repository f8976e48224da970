package review

// Coverage thresholds for the tier table. All comparisons are inclusive.
const (
	coveragePlatinum = 90.0
	coverageGold     = 80.0
	coverageSilver   = 60.0
)

// Classify maps aggregate metrics to a quality tier. This table is the
// single source of truth; no other component recomputes it.
//
//	platinum: zero blocking, zero warnings, coverage >= 90
//	gold:     zero blocking, coverage >= 80
//	silver:   zero blocking, coverage >= 60
//	bronze:   zero blocking (any coverage, including unknown)
//	unrated:  blocking findings present, or coverage unknown with zero
//	          files checked (no signal to rate on)
func Classify(blocking, warnings int, coverage *float64, filesChecked int) Tier {
	if blocking > 0 {
		return TierUnrated
	}
	if coverage == nil {
		if filesChecked == 0 {
			return TierUnrated
		}
		return TierBronze
	}
	cov := *coverage
	switch {
	case warnings == 0 && cov >= coveragePlatinum:
		return TierPlatinum
	case cov >= coverageGold:
		return TierGold
	case cov >= coverageSilver:
		return TierSilver
	default:
		return TierBronze
	}
}
