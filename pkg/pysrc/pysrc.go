// Package pysrc builds a best-effort structural model of a single Python
// source file: functions (including async state and annotations), classes
// with their bases, exception handler clauses, and the module docstring.
//
// This is deliberately not a compiler frontend. Blocks are scoped by
// indentation, nothing is resolved across files, and string handling is
// approximate. Detectors built on this model accept false positives and
// negatives as the price of speed; on genuinely malformed input Parse
// returns an error so the caller can degrade to a single diagnostic
// finding instead of aborting the run.
package pysrc

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Module is the parsed representation of one file.
type Module struct {
	// Lines holds the raw source split on newlines, 0-indexed.
	Lines []string

	// HasDocstring reports whether the first statement is a string literal.
	HasDocstring bool

	// Functions in source order, methods included.
	Functions []Function

	// Classes in source order.
	Classes []Class

	// Excepts lists exception handler clauses in source order.
	Excepts []ExceptClause
}

// Function is one def/async def declaration.
type Function struct {
	Name string

	// Line is the 1-based line of the def keyword; End is the 1-based
	// last line of the body, inclusive.
	Line int
	End  int

	Async  bool
	Indent int

	// Params excludes self/cls and starred parameters.
	Params []Param

	// HasReturnAnnotation reports whether the signature declares "->".
	HasReturnAnnotation bool
}

// Param is one declared parameter.
type Param struct {
	Name      string
	Annotated bool
}

// Class is one class declaration.
type Class struct {
	Name  string
	Line  int
	End   int
	Bases []string
}

// ExceptClause is one except handler. Types is empty for a bare except.
type ExceptClause struct {
	Line  int
	End   int
	Types []string
}

// Broad reports whether the clause catches everything: bare, Exception,
// or BaseException.
func (e ExceptClause) Broad() bool {
	if len(e.Types) == 0 {
		return true
	}
	for _, t := range e.Types {
		if t == "Exception" || t == "BaseException" {
			return true
		}
	}
	return false
}

// Reraises reports whether the handler body contains a raise statement.
func (e ExceptClause) Reraises(lines []string) bool {
	for i := e.Line; i < e.End && i < len(lines); i++ {
		if raiseRe.MatchString(lines[i]) {
			return true
		}
	}
	return false
}

// BodyLines returns the 1-based line numbers and text of the function body
// (the def line itself excluded).
func (f Function) BodyLines(lines []string) []BodyLine {
	var out []BodyLine
	for i := f.Line; i < f.End && i < len(lines); i++ {
		out = append(out, BodyLine{Number: i + 1, Text: lines[i]})
	}
	return out
}

// BodyLine pairs a 1-based line number with its text.
type BodyLine struct {
	Number int
	Text   string
}

// Compiled once at startup and immutable thereafter.
var (
	defRe    = regexp.MustCompile(`^(\s*)(async\s+)?def\s+([A-Za-z_]\w*)\s*\(`)
	classRe  = regexp.MustCompile(`^(\s*)class\s+([A-Za-z_]\w*)\s*(?:\(([^)]*)\))?\s*:`)
	exceptRe = regexp.MustCompile(`^(\s*)except\s*(?::|([^:]+):)`)
	raiseRe  = regexp.MustCompile(`^\s*raise\b`)
	tripleRe = regexp.MustCompile("\"\"\"|'''")
	strPfxRe = regexp.MustCompile("^[rbufRBUF]{0,2}(\"\"\"|'''|\"|')")
)

// Parse builds the structural model for content. The returned error is a
// parse failure, not an engine failure: callers should convert it into a
// diagnostic finding and continue with other files.
func Parse(content string) (*Module, error) {
	if !utf8.ValidString(content) {
		return nil, fmt.Errorf("content is not valid UTF-8")
	}
	lines := strings.Split(content, "\n")
	m := &Module{Lines: lines}

	m.HasDocstring = hasModuleDocstring(lines)

	inTriple := false
	var tripleDelim string
	for i := 0; i < len(lines); i++ {
		line := lines[i]

		if inTriple {
			if idx := strings.Index(line, tripleDelim); idx >= 0 {
				inTriple = false
				line = line[idx+3:]
			} else {
				continue
			}
		}

		if mdef := defRe.FindStringSubmatch(line); mdef != nil {
			fn, last, err := parseFunction(lines, i, mdef)
			if err != nil {
				return nil, err
			}
			m.Functions = append(m.Functions, fn)
			i = last // skip the rest of a multi-line signature
			continue
		}

		if mcls := classRe.FindStringSubmatch(line); mcls != nil {
			indent := indentWidth(mcls[1])
			c := Class{
				Name:  mcls[2],
				Line:  i + 1,
				End:   blockEnd(lines, i, indent),
				Bases: splitBases(mcls[3]),
			}
			m.Classes = append(m.Classes, c)
			continue
		}

		if mex := exceptRe.FindStringSubmatch(line); mex != nil {
			indent := indentWidth(mex[1])
			m.Excepts = append(m.Excepts, ExceptClause{
				Line:  i + 1,
				End:   blockEnd(lines, i, indent),
				Types: splitExceptTypes(mex[2]),
			})
			continue
		}

		inTriple, tripleDelim = trackTriple(line)
	}
	if inTriple {
		return nil, fmt.Errorf("unterminated triple-quoted string")
	}
	return m, nil
}

// parseFunction consumes a (possibly multi-line) signature starting at
// lines[start]. Returns the function, the index of the signature's last
// physical line, or an error when the signature never closes.
func parseFunction(lines []string, start int, match []string) (Function, int, error) {
	indent := indentWidth(match[1])
	fn := Function{
		Name:   match[3],
		Line:   start + 1,
		Async:  match[2] != "",
		Indent: indent,
	}

	// Join lines until the parameter parentheses balance.
	open := strings.Index(lines[start], "(")
	sig := lines[start][open:]
	last := start
	for depth(sig) > 0 {
		last++
		if last >= len(lines) {
			return fn, last, fmt.Errorf("line %d: unterminated signature for %q", start+1, fn.Name)
		}
		sig += " " + strings.TrimSpace(lines[last])
	}

	closeIdx := matchingParen(sig)
	if closeIdx < 0 {
		return fn, last, fmt.Errorf("line %d: unbalanced parentheses in signature for %q", start+1, fn.Name)
	}
	tail := sig[closeIdx+1:]
	if !strings.Contains(tail, ":") {
		return fn, last, fmt.Errorf("line %d: missing ':' after signature for %q", start+1, fn.Name)
	}
	fn.HasReturnAnnotation = strings.Contains(tail, "->")
	fn.Params = parseParams(sig[1:closeIdx])
	fn.End = blockEnd(lines, last, indent)
	return fn, last, nil
}

// depth returns the net parenthesis depth of s, ignoring brackets inside
// quoted strings on a best-effort basis.
func depth(s string) int {
	d := 0
	inStr := byte(0)
	for i := 0; i < len(s); i++ {
		c := s[i]
		if inStr != 0 {
			if c == inStr && (i == 0 || s[i-1] != '\\') {
				inStr = 0
			}
			continue
		}
		switch c {
		case '\'', '"':
			inStr = c
		case '(', '[', '{':
			d++
		case ')', ']', '}':
			d--
		case '#':
			return d
		}
	}
	return d
}

// matchingParen returns the index of the parenthesis closing s[0].
func matchingParen(s string) int {
	d := 0
	inStr := byte(0)
	for i := 0; i < len(s); i++ {
		c := s[i]
		if inStr != 0 {
			if c == inStr && s[i-1] != '\\' {
				inStr = 0
			}
			continue
		}
		switch c {
		case '\'', '"':
			inStr = c
		case '(', '[', '{':
			d++
		case ')', ']', '}':
			d--
			if d == 0 {
				return i
			}
		}
	}
	return -1
}

// parseParams splits a parameter list at top-level commas. self, cls and
// starred parameters are dropped; a parameter is annotated when a colon
// appears before any default value.
func parseParams(s string) []Param {
	var out []Param
	d := 0
	inStr := byte(0)
	begin := 0
	flush := func(end int) {
		raw := strings.TrimSpace(s[begin:end])
		begin = end + 1
		if raw == "" || raw == "/" || raw == "*" || strings.HasPrefix(raw, "*") {
			return
		}
		name := raw
		anno := false
		for i := 0; i < len(raw); i++ {
			if raw[i] == ':' {
				name = strings.TrimSpace(raw[:i])
				anno = true
				break
			}
			if raw[i] == '=' {
				name = strings.TrimSpace(raw[:i])
				break
			}
		}
		if name == "self" || name == "cls" {
			return
		}
		out = append(out, Param{Name: name, Annotated: anno})
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if inStr != 0 {
			if c == inStr && s[i-1] != '\\' {
				inStr = 0
			}
			continue
		}
		switch c {
		case '\'', '"':
			inStr = c
		case '(', '[', '{':
			d++
		case ')', ']', '}':
			d--
		case ',':
			if d == 0 {
				flush(i)
			}
		}
	}
	flush(len(s))
	return out
}

// blockEnd returns the 1-based last line of the block whose header sits at
// lines[header] with the given indent.
func blockEnd(lines []string, header, indent int) int {
	end := header + 1
	for i := header + 1; i < len(lines); i++ {
		trimmed := strings.TrimSpace(lines[i])
		if trimmed == "" {
			continue
		}
		if indentWidth(lines[i]) <= indent {
			break
		}
		end = i + 1
	}
	if end <= header+1 {
		return header + 1
	}
	return end
}

// indentWidth counts leading whitespace, a tab weighing 8 columns.
func indentWidth(s string) int {
	w := 0
	for _, r := range s {
		switch r {
		case ' ':
			w++
		case '\t':
			w += 8
		default:
			return w
		}
	}
	return w
}

func splitBases(s string) []string {
	var out []string
	for _, b := range strings.Split(s, ",") {
		b = strings.TrimSpace(b)
		if b == "" || strings.Contains(b, "=") { // metaclass=... keywords
			continue
		}
		out = append(out, b)
	}
	return out
}

func splitExceptTypes(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	// "except (A, B) as err:" -> A, B
	if idx := strings.Index(s, " as "); idx >= 0 {
		s = s[:idx]
	}
	s = strings.Trim(strings.TrimSpace(s), "()")
	var out []string
	for _, t := range strings.Split(s, ",") {
		t = strings.TrimSpace(t)
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}

// trackTriple reports whether line opens a triple-quoted string that does
// not close on the same line, and with which delimiter.
func trackTriple(line string) (bool, string) {
	rest := line
	for {
		loc := tripleRe.FindStringIndex(rest)
		if loc == nil {
			return false, ""
		}
		delim := rest[loc[0]:loc[1]]
		rest = rest[loc[1]:]
		end := strings.Index(rest, delim)
		if end < 0 {
			return true, delim
		}
		rest = rest[end+3:]
	}
}

// hasModuleDocstring checks whether the first statement in the file is a
// string literal.
func hasModuleDocstring(lines []string) bool {
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		return strPfxRe.MatchString(trimmed)
	}
	return false
}
