// Package target resolves the working set of files for a review run.
package target

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	rkerrors "github.com/reviewkitio/reviewkit/pkg/errors"
)

// DefaultComponentDir is the narrower default scanned when it exists under
// the root and no explicit files or full-tree flag are given.
const DefaultComponentDir = "custom_components"

// Directory names never descended into.
var excludedDirs = map[string]bool{
	".git":          true,
	"__pycache__":   true,
	".venv":         true,
	"venv":          true,
	"node_modules":  true,
	".mypy_cache":   true,
	".ruff_cache":   true,
	".pytest_cache": true,
	".tox":          true,
	"deps":          true,
}

// Options configures selection.
type Options struct {
	// Root is the analysis root. Must exist.
	Root string

	// ExplicitFiles, when non-empty, bypasses tree walking. Entries may
	// be absolute or relative to Root; missing ones are skipped with a
	// note, never silently dropped.
	ExplicitFiles []string

	// FullTree forces walking Root itself even when the narrower
	// custom_components default would apply.
	FullTree bool
}

// Selection is the resolved working set.
type Selection struct {
	// Root is the cleaned absolute analysis root.
	Root string

	// Files are paths relative to Root, deduplicated and sorted.
	Files []string

	// Notes records non-fatal selection problems (missing explicit
	// files) for the report.
	Notes []string
}

// Recognized reports whether the file name is part of the review surface:
// Python sources plus the integration metadata files.
func Recognized(name string) bool {
	if strings.HasSuffix(name, ".py") {
		return true
	}
	base := filepath.Base(name)
	return base == "manifest.json" || base == "strings.json"
}

// Select resolves the file set per Options. A nonexistent root is a
// configuration error; everything else degrades to notes.
func Select(opts Options) (*Selection, error) {
	const op = "target.Select"

	root := opts.Root
	if root == "" {
		root = "."
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, rkerrors.Configuration(op, "cannot resolve root path", err)
	}
	info, err := os.Stat(absRoot)
	if err != nil {
		return nil, rkerrors.Configuration(op, "analysis root does not exist: "+root, err)
	}
	if !info.IsDir() {
		return nil, rkerrors.Configuration(op, "analysis root is not a directory: "+root, nil)
	}

	sel := &Selection{Root: absRoot}
	if len(opts.ExplicitFiles) > 0 {
		sel.selectExplicit(opts.ExplicitFiles)
		return sel, nil
	}

	walkRoot := absRoot
	if !opts.FullTree {
		narrow := filepath.Join(absRoot, DefaultComponentDir)
		if fi, err := os.Stat(narrow); err == nil && fi.IsDir() {
			walkRoot = narrow
		}
	}
	if err := sel.walk(walkRoot); err != nil {
		return nil, rkerrors.Configuration(op, "walking analysis root", err)
	}
	sel.sortFiles()
	return sel, nil
}

func (s *Selection) selectExplicit(files []string) {
	seen := make(map[string]bool, len(files))
	for _, f := range files {
		path := f
		if !filepath.IsAbs(path) {
			path = filepath.Join(s.Root, path)
		}
		info, err := os.Stat(path)
		if err != nil || info.IsDir() {
			s.Notes = append(s.Notes, "skipped missing or unreadable file: "+f)
			continue
		}
		rel, err := filepath.Rel(s.Root, path)
		if err != nil {
			rel = path
		}
		rel = filepath.ToSlash(rel)
		if seen[rel] {
			continue
		}
		seen[rel] = true
		s.Files = append(s.Files, rel)
	}
	// Keep caller order for explicit lists, minus duplicates.
}

func (s *Selection) walk(walkRoot string) error {
	return filepath.WalkDir(walkRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// Unreadable subtree: note and keep going.
			s.Notes = append(s.Notes, "skipped unreadable path: "+path)
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			if path != walkRoot && excludedDirs[d.Name()] {
				return fs.SkipDir
			}
			return nil
		}
		if !Recognized(d.Name()) {
			return nil
		}
		rel, rerr := filepath.Rel(s.Root, path)
		if rerr != nil {
			rel = path
		}
		s.Files = append(s.Files, filepath.ToSlash(rel))
		return nil
	})
}

// sortFiles keeps tree-walk output deterministic across platforms.
func (s *Selection) sortFiles() {
	sort.Strings(s.Files)
}
