// Package detectors provides the review check catalog: a registry of
// independent detectors, each consuming one file and producing zero or
// more findings.
//
// Detectors are pure with respect to the run: no cross-file memory, no
// side effects, read-only input. Adding or removing a detector never
// touches the orchestrator; it only changes what is registered.
package detectors

import (
	"strings"
	"sync"

	"github.com/reviewkitio/reviewkit/pkg/pysrc"
	"github.com/reviewkitio/reviewkit/pkg/review"
)

// SourceFile is the read-only input handed to every detector.
type SourceFile struct {
	// Path is relative to the analysis root, slash-separated.
	Path string

	// Content is the full file text. Empty when the engine refused to
	// read the file (size guard); detectors then simply find nothing.
	Content string

	// Lines is Content split on newlines, prepared once per file.
	Lines []string

	// Tree is the structural model for Python files. Nil for non-Python
	// files and for parse failures; tree detectors must tolerate nil.
	Tree *pysrc.Module
}

// IsPython reports whether the file is a Python source.
func (f *SourceFile) IsPython() bool {
	return strings.HasSuffix(f.Path, ".py")
}

// IsTest reports whether the path looks like test code. Some security
// detectors stay quiet in tests, where fixture credentials are routine.
func (f *SourceFile) IsTest() bool {
	return strings.Contains(strings.ToLower(f.Path), "test")
}

// Base returns the file name portion of the path.
func (f *SourceFile) Base() string {
	if i := strings.LastIndexByte(f.Path, '/'); i >= 0 {
		return f.Path[i+1:]
	}
	return f.Path
}

// Detector is one independent check.
type Detector interface {
	// Name is the stable registry key (e.g. "hardcoded-credential").
	Name() string

	// Category is the finding category this detector reports under.
	Category() review.Category

	// NeedsTree reports whether the detector requires the parsed
	// structural model rather than raw text.
	NeedsTree() bool

	// Check inspects one file. It must not panic on malformed input;
	// the engine additionally recovers and downgrades if it does.
	Check(f *SourceFile) []review.Finding
}

// =============================================================================
// Registry
// =============================================================================

// Registry holds detectors in registration order. Iteration order is
// stable, which keeps report output reproducible.
type Registry struct {
	mu    sync.RWMutex
	order []Detector
	byKey map[string]Detector
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{byKey: make(map[string]Detector)}
}

// Register adds a detector. Registering the same name twice replaces the
// earlier entry in place, keeping its position.
func (r *Registry) Register(d Detector) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byKey[d.Name()]; ok {
		for i, existing := range r.order {
			if existing.Name() == d.Name() {
				r.order[i] = d
				break
			}
		}
	} else {
		r.order = append(r.order, d)
	}
	r.byKey[d.Name()] = d
}

// Unregister removes a detector by name. Unknown names are a no-op.
func (r *Registry) Unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byKey[name]; !ok {
		return
	}
	delete(r.byKey, name)
	for i, d := range r.order {
		if d.Name() == name {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
}

// Lookup returns a detector by name, or nil.
func (r *Registry) Lookup(name string) Detector {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.byKey[name]
}

// All returns the detectors in registration order.
func (r *Registry) All() []Detector {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Detector, len(r.order))
	copy(out, r.order)
	return out
}

// Len returns the number of registered detectors.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}

// Names returns the registered detector names in order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, len(r.order))
	for i, d := range r.order {
		names[i] = d.Name()
	}
	return names
}

// Default returns a registry with the built-in catalog.
func Default() *Registry {
	r := NewRegistry()
	for _, d := range builtins() {
		r.Register(d)
	}
	return r
}

func builtins() []Detector {
	return []Detector{
		// Pattern detectors (raw text, line-scoped).
		&hardcodedCredential{},
		&sqlInjection{},
		&commandInjection{},
		&unsafeEval{},
		&unsafePickle{},
		// Structural detectors.
		&blockingIOInAsync{},
		&blockingSleepInAsync{},
		&missingTypeAnnotation{},
		&broadException{},
		&entityUniqueID{},
		&moduleDocstring{},
		// Integration metadata files.
		&manifestSchema{},
		&stringsValid{},
	}
}

// isComment reports whether the stripped line is a comment.
func isComment(line string) bool {
	return strings.HasPrefix(strings.TrimSpace(line), "#")
}
