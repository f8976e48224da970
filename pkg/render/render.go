// Package render turns a finalized report into its output formats. Both
// renderers present the same information; only the shape differs.
package render

import (
	"io"

	"github.com/reviewkitio/reviewkit/pkg/review"
)

// Renderer writes a finalized report to w.
type Renderer interface {
	Render(w io.Writer, r *review.Report) error
}
