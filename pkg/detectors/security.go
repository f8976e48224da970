package detectors

import (
	"regexp"

	"github.com/reviewkitio/reviewkit/pkg/review"
)

// Security patterns, compiled once at startup and immutable thereafter.
var (
	credentialRe = regexp.MustCompile(`(?i)(?:api[_-]?key|password|secret|token)\s*=\s*["'][\w\-]{8,}["']`)

	// Query text built by interpolation rather than placeholders.
	sqlFStringRe = regexp.MustCompile(`(?i)\b(?:execute|executemany|query)\s*\(\s*f["'].*\{`)
	sqlPercentRe = regexp.MustCompile(`(?i)\b(?:execute|executemany|query)\s*\(\s*["'][^"']*["']\s*%`)
	sqlFormatRe  = regexp.MustCompile(`(?i)\b(?:execute|executemany|query)\s*\(\s*["'][^"']*["']\s*\.\s*format\s*\(`)

	subprocessRe    = regexp.MustCompile(`\bsubprocess\s*\.\s*(?:call|run|Popen)\s*\(`)
	shellTrueRe     = regexp.MustCompile(`\bshell\s*=\s*True\b`)
	interpolationRe = regexp.MustCompile(`f["']|%\s*\(|\.\s*format\s*\(|["']\s*\+|\+\s*["']`)

	evalRe        = regexp.MustCompile(`\beval\s*\(`)
	evalLiteralRe = regexp.MustCompile(`\beval\s*\(\s*["'][^"']*["']\s*\)`)

	pickleRe = regexp.MustCompile(`\bpickle\s*\.\s*loads?\b`)

	requestsCallRe = regexp.MustCompile(`\b(?:requests\s*\.\s*(?:get|post|put|delete|patch|head|request)\s*\(|urllib\s*\.\s*request\s*\.)`)
	timeSleepRe    = regexp.MustCompile(`\btime\s*\.\s*sleep\s*\(`)
)

// hardcodedCredential flags credential-like identifiers assigned string
// literals. Test fixtures and comments are exempt.
type hardcodedCredential struct{}

func (hardcodedCredential) Name() string              { return "hardcoded-credential" }
func (hardcodedCredential) Category() review.Category { return review.CategorySecurity }
func (hardcodedCredential) NeedsTree() bool           { return false }

func (d hardcodedCredential) Check(f *SourceFile) []review.Finding {
	if !f.IsPython() || f.IsTest() {
		return nil
	}
	var out []review.Finding
	for i, line := range f.Lines {
		if isComment(line) || !credentialRe.MatchString(line) {
			continue
		}
		out = append(out, review.Finding{
			Severity:    review.SeverityBlocking,
			Category:    d.Category(),
			File:        f.Path,
			Line:        review.LineAt(i + 1),
			Title:       "Hardcoded credential",
			Description: "Hardcoded API key, password, or secret detected",
			Suggestion:  "Store credentials in the config entry data, never in source",
			Example:     `api_key = entry.data[CONF_API_KEY]`,
		})
	}
	return out
}

// sqlInjection flags execute-like calls whose query text is built by
// string interpolation. Parameterized placeholders do not trigger.
type sqlInjection struct{}

func (sqlInjection) Name() string              { return "sql-injection" }
func (sqlInjection) Category() review.Category { return review.CategorySecurity }
func (sqlInjection) NeedsTree() bool           { return false }

func (d sqlInjection) Check(f *SourceFile) []review.Finding {
	if !f.IsPython() {
		return nil
	}
	var out []review.Finding
	for i, line := range f.Lines {
		if isComment(line) {
			continue
		}
		if !sqlFStringRe.MatchString(line) && !sqlPercentRe.MatchString(line) && !sqlFormatRe.MatchString(line) {
			continue
		}
		out = append(out, review.Finding{
			Severity:    review.SeverityBlocking,
			Category:    d.Category(),
			File:        f.Path,
			Line:        review.LineAt(i + 1),
			Title:       "Potential SQL injection",
			Description: "SQL query built with string formatting instead of parameters",
			Suggestion:  "Use parameterized queries",
			Example:     `cursor.execute("SELECT * FROM t WHERE id = ?", (id,))`,
		})
	}
	return out
}

// commandInjection flags subprocess calls that enable shell interpretation
// on an interpolated command line.
type commandInjection struct{}

func (commandInjection) Name() string              { return "command-injection" }
func (commandInjection) Category() review.Category { return review.CategorySecurity }
func (commandInjection) NeedsTree() bool           { return false }

func (d commandInjection) Check(f *SourceFile) []review.Finding {
	if !f.IsPython() {
		return nil
	}
	var out []review.Finding
	for i, line := range f.Lines {
		if isComment(line) {
			continue
		}
		if !subprocessRe.MatchString(line) || !shellTrueRe.MatchString(line) || !interpolationRe.MatchString(line) {
			continue
		}
		out = append(out, review.Finding{
			Severity:    review.SeverityBlocking,
			Category:    d.Category(),
			File:        f.Path,
			Line:        review.LineAt(i + 1),
			Title:       "Shell injection risk",
			Description: "subprocess call with shell=True and an interpolated command",
			Suggestion:  "Use shell=False and pass the command as a list",
			Example:     `subprocess.run(["ls", "-la"], shell=False)`,
		})
	}
	return out
}

// unsafeEval flags eval() on anything that is not a plain string literal.
type unsafeEval struct{}

func (unsafeEval) Name() string              { return "unsafe-eval" }
func (unsafeEval) Category() review.Category { return review.CategorySecurity }
func (unsafeEval) NeedsTree() bool           { return false }

func (d unsafeEval) Check(f *SourceFile) []review.Finding {
	if !f.IsPython() {
		return nil
	}
	var out []review.Finding
	for i, line := range f.Lines {
		if isComment(line) {
			continue
		}
		if !evalRe.MatchString(line) || evalLiteralRe.MatchString(line) {
			continue
		}
		out = append(out, review.Finding{
			Severity:    review.SeverityBlocking,
			Category:    d.Category(),
			File:        f.Path,
			Line:        review.LineAt(i + 1),
			Title:       "Unsafe eval() usage",
			Description: "eval() on a non-literal value allows arbitrary code execution",
			Suggestion:  "Use ast.literal_eval() or json.loads() instead",
		})
	}
	return out
}

// unsafePickle flags pickle deserialization, which executes arbitrary
// code when fed untrusted data.
type unsafePickle struct{}

func (unsafePickle) Name() string              { return "unsafe-pickle" }
func (unsafePickle) Category() review.Category { return review.CategorySecurity }
func (unsafePickle) NeedsTree() bool           { return false }

func (d unsafePickle) Check(f *SourceFile) []review.Finding {
	if !f.IsPython() {
		return nil
	}
	var out []review.Finding
	for i, line := range f.Lines {
		if isComment(line) || !pickleRe.MatchString(line) {
			continue
		}
		out = append(out, review.Finding{
			Severity:    review.SeverityWarning,
			Category:    d.Category(),
			File:        f.Path,
			Line:        review.LineAt(i + 1),
			Title:       "Unsafe pickle deserialization",
			Description: "pickle deserialization executes arbitrary code on untrusted input",
			Suggestion:  "Use json for data interchange",
		})
	}
	return out
}

// blockingIOInAsync flags synchronous network calls inside async bodies.
type blockingIOInAsync struct{}

func (blockingIOInAsync) Name() string              { return "blocking-io-in-async" }
func (blockingIOInAsync) Category() review.Category { return review.CategorySecurity }
func (blockingIOInAsync) NeedsTree() bool           { return true }

func (d blockingIOInAsync) Check(f *SourceFile) []review.Finding {
	if f.Tree == nil {
		return nil
	}
	var out []review.Finding
	for _, fn := range f.Tree.Functions {
		if !fn.Async {
			continue
		}
		for _, bl := range fn.BodyLines(f.Tree.Lines) {
			if isComment(bl.Text) || !requestsCallRe.MatchString(bl.Text) {
				continue
			}
			out = append(out, review.Finding{
				Severity:    review.SeverityBlocking,
				Category:    d.Category(),
				File:        f.Path,
				Line:        review.LineAt(bl.Number),
				Title:       "Blocking I/O in async function",
				Description: "Synchronous HTTP call inside an async function blocks the event loop",
				Suggestion:  "Use aiohttp for async HTTP requests",
				Example: `async with aiohttp.ClientSession() as session:
    async with session.get(url) as response:
        return await response.json()`,
			})
		}
	}
	return out
}

// blockingSleepInAsync flags time.sleep inside async bodies.
type blockingSleepInAsync struct{}

func (blockingSleepInAsync) Name() string              { return "blocking-sleep-in-async" }
func (blockingSleepInAsync) Category() review.Category { return review.CategorySecurity }
func (blockingSleepInAsync) NeedsTree() bool           { return true }

func (d blockingSleepInAsync) Check(f *SourceFile) []review.Finding {
	if f.Tree == nil {
		return nil
	}
	var out []review.Finding
	for _, fn := range f.Tree.Functions {
		if !fn.Async {
			continue
		}
		for _, bl := range fn.BodyLines(f.Tree.Lines) {
			if isComment(bl.Text) || !timeSleepRe.MatchString(bl.Text) {
				continue
			}
			out = append(out, review.Finding{
				Severity:    review.SeverityBlocking,
				Category:    d.Category(),
				File:        f.Path,
				Line:        review.LineAt(bl.Number),
				Title:       "Blocking sleep in async function",
				Description: "time.sleep() inside an async function blocks the event loop",
				Suggestion:  "Use asyncio.sleep() instead",
				Example:     `await asyncio.sleep(seconds)`,
			})
		}
	}
	return out
}
