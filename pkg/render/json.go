package render

import (
	"encoding/json"
	"io"

	rkerrors "github.com/reviewkitio/reviewkit/pkg/errors"
	"github.com/reviewkitio/reviewkit/pkg/review"
)

// JSON renders the report as indented JSON. Output over identical input is
// byte-identical across runs: map keys are sorted by encoding/json and the
// report carries no timestamps or IDs.
type JSON struct{}

// NewJSON returns a JSON renderer.
func NewJSON() *JSON {
	return &JSON{}
}

// Render writes the report as indented JSON with a trailing newline.
func (JSON) Render(w io.Writer, r *review.Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return rkerrors.Render("render.JSON", "encode report", err)
	}
	return nil
}
