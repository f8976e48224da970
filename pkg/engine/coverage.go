package engine

import (
	"encoding/json"
	"fmt"
	"os"

	rkerrors "github.com/reviewkitio/reviewkit/pkg/errors"
)

// LoadCoverage reads a pytest-cov style coverage.json and returns the
// totals.percent_covered value.
func LoadCoverage(path string) (*float64, error) {
	const op = "engine.LoadCoverage"

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, rkerrors.Configuration(op, "reading coverage file", err)
	}
	var doc struct {
		Totals struct {
			PercentCovered *float64 `json:"percent_covered"`
		} `json:"totals"`
	}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, rkerrors.Configuration(op, "parsing coverage file", err)
	}
	pct := doc.Totals.PercentCovered
	if pct == nil {
		return nil, rkerrors.Configuration(op, "coverage file has no totals.percent_covered", nil)
	}
	if *pct < 0 || *pct > 100 {
		return nil, rkerrors.Configuration(op,
			fmt.Sprintf("coverage percentage out of range: %g", *pct), nil)
	}
	return pct, nil
}
