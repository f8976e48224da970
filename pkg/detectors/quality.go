package detectors

import (
	"fmt"
	"strings"

	"github.com/reviewkitio/reviewkit/pkg/review"
)

// missingTypeAnnotation flags public functions whose signature is not
// fully typed: no return annotation, or unannotated parameters.
type missingTypeAnnotation struct{}

func (missingTypeAnnotation) Name() string              { return "missing-type-annotation" }
func (missingTypeAnnotation) Category() review.Category { return review.CategoryQuality }
func (missingTypeAnnotation) NeedsTree() bool           { return true }

func (d missingTypeAnnotation) Check(f *SourceFile) []review.Finding {
	if f.Tree == nil {
		return nil
	}
	var out []review.Finding
	for _, fn := range f.Tree.Functions {
		if strings.HasPrefix(fn.Name, "_") {
			continue
		}
		var missing []string
		if !fn.HasReturnAnnotation {
			missing = append(missing, "a return type")
		}
		for _, p := range fn.Params {
			if !p.Annotated {
				missing = append(missing, "parameter types")
				break
			}
		}
		if len(missing) == 0 {
			continue
		}
		out = append(out, review.Finding{
			Severity:    review.SeverityWarning,
			Category:    d.Category(),
			File:        f.Path,
			Line:        review.LineAt(fn.Line),
			Title:       "Missing type annotation",
			Description: fmt.Sprintf("Function %q is missing %s", fn.Name, strings.Join(missing, " and ")),
			Suggestion:  "Annotate all public function signatures",
		})
	}
	return out
}

// broadException flags handlers that catch everything without re-raising.
type broadException struct{}

func (broadException) Name() string              { return "broad-exception" }
func (broadException) Category() review.Category { return review.CategoryQuality }
func (broadException) NeedsTree() bool           { return true }

func (d broadException) Check(f *SourceFile) []review.Finding {
	if f.Tree == nil {
		return nil
	}
	var out []review.Finding
	for _, ex := range f.Tree.Excepts {
		if !ex.Broad() || ex.Reraises(f.Tree.Lines) {
			continue
		}
		out = append(out, review.Finding{
			Severity:    review.SeverityWarning,
			Category:    d.Category(),
			File:        f.Path,
			Line:        review.LineAt(ex.Line),
			Title:       "Overly broad exception handling",
			Description: "Catching Exception (or everything) hides real failures",
			Suggestion:  "Catch the specific exceptions you expect, or re-raise",
		})
	}
	return out
}

// entityUniqueID flags entity classes with no stable identifier. An entity
// without a unique_id cannot be tracked across restarts or renames.
type entityUniqueID struct{}

func (entityUniqueID) Name() string              { return "entity-unique-id" }
func (entityUniqueID) Category() review.Category { return review.CategoryQuality }
func (entityUniqueID) NeedsTree() bool           { return true }

func (d entityUniqueID) Check(f *SourceFile) []review.Finding {
	if f.Tree == nil {
		return nil
	}
	var out []review.Finding
	for _, cls := range f.Tree.Classes {
		if !derivesFromEntity(cls.Bases) {
			continue
		}
		if classBodyContains(f.Tree.Lines, cls.Line, cls.End, "unique_id") {
			continue
		}
		out = append(out, review.Finding{
			Severity:    review.SeverityBlocking,
			Category:    d.Category(),
			File:        f.Path,
			Line:        review.LineAt(cls.Line),
			Title:       "Entity without unique ID",
			Description: fmt.Sprintf("Class %q defines an entity with no unique_id declaration", cls.Name),
			Suggestion:  "Set _attr_unique_id in __init__ so the entity keeps its identity",
			Example:     `self._attr_unique_id = f"{entry.entry_id}_{description.key}"`,
		})
	}
	return out
}

func derivesFromEntity(bases []string) bool {
	for _, b := range bases {
		if strings.Contains(b, "Entity") {
			return true
		}
	}
	return false
}

func classBodyContains(lines []string, start, end int, needle string) bool {
	for i := start; i < end && i < len(lines); i++ {
		if strings.Contains(lines[i], needle) {
			return true
		}
	}
	return false
}

// moduleDocstring flags Python modules without a top-level docstring.
type moduleDocstring struct{}

func (moduleDocstring) Name() string              { return "module-docstring" }
func (moduleDocstring) Category() review.Category { return review.CategoryDocumentation }
func (moduleDocstring) NeedsTree() bool           { return true }

func (d moduleDocstring) Check(f *SourceFile) []review.Finding {
	if f.Tree == nil || f.Tree.HasDocstring {
		return nil
	}
	if strings.TrimSpace(f.Content) == "" {
		// Empty modules (e.g. __init__.py placeholders) are fine.
		return nil
	}
	return []review.Finding{{
		Severity:    review.SeverityNitpick,
		Category:    d.Category(),
		File:        f.Path,
		Line:        nil,
		Title:       "Missing module docstring",
		Description: "Module has no top-level docstring describing its purpose",
		Suggestion:  "Open the module with a one-line docstring",
	}}
}
