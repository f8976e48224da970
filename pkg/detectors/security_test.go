package detectors

import (
	"strings"
	"testing"

	"github.com/reviewkitio/reviewkit/pkg/pysrc"
	"github.com/reviewkitio/reviewkit/pkg/review"
)

// source builds a SourceFile, parsing the tree for Python paths.
func source(t *testing.T, path, content string) *SourceFile {
	t.Helper()
	f := &SourceFile{
		Path:    path,
		Content: content,
		Lines:   strings.Split(content, "\n"),
	}
	if f.IsPython() && content != "" {
		tree, err := pysrc.Parse(content)
		if err != nil {
			t.Fatalf("parse %s: %v", path, err)
		}
		f.Tree = tree
	}
	return f
}

func TestHardcodedCredential(t *testing.T) {
	d := hardcodedCredential{}

	t.Run("flags assignment with exact line", func(t *testing.T) {
		f := source(t, "custom_components/demo/api.py", "import os\n\napi_key = \"sk-1234567890abcdef\"\n")
		got := d.Check(f)
		if len(got) != 1 {
			t.Fatalf("got %d findings, want 1", len(got))
		}
		fd := got[0]
		if fd.Severity != review.SeverityBlocking || fd.Category != review.CategorySecurity {
			t.Errorf("severity/category = %s/%s", fd.Severity, fd.Category)
		}
		if fd.Title != "Hardcoded credential" {
			t.Errorf("title = %q", fd.Title)
		}
		if fd.Line == nil || *fd.Line != 3 {
			t.Errorf("line = %v, want 3", fd.Line)
		}
	})

	tests := []struct {
		name    string
		path    string
		content string
		want    int
	}{
		{"password literal", "demo/auth.py", `password = "hunter2hunter2"` + "\n", 1},
		{"token with dashes", "demo/auth.py", `TOKEN = "abc-def-ghi-jkl"` + "\n", 1},
		{"short value ignored", "demo/auth.py", `api_key = "short"` + "\n", 0},
		{"lookup not flagged", "demo/auth.py", "api_key = entry.data[CONF_API_KEY]\n", 0},
		{"comment ignored", "demo/auth.py", `# api_key = "sk-1234567890abcdef"` + "\n", 0},
		{"test file exempt", "tests/test_auth.py", `api_key = "sk-1234567890abcdef"` + "\n", 0},
		{"non python ignored", "demo/manifest.json", `{"api_key": "sk-1234567890abcdef"}`, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := d.Check(source(t, tt.path, tt.content))
			if len(got) != tt.want {
				t.Errorf("got %d findings, want %d", len(got), tt.want)
			}
		})
	}
}

func TestSQLInjection(t *testing.T) {
	d := sqlInjection{}

	tests := []struct {
		name    string
		content string
		want    int
	}{
		{"f-string query", "cursor.execute(f\"SELECT * FROM t WHERE id = '{x}'\")\n", 1},
		{"percent formatting", `cursor.execute("SELECT * FROM t WHERE id = %s" % x)` + "\n", 1},
		{"format call", `cursor.execute("SELECT * FROM t WHERE id = {}".format(x))` + "\n", 1},
		{"parameterized safe", `cursor.execute("SELECT * FROM t WHERE id = ?", (id,))` + "\n", 0},
		{"comment ignored", "# cursor.execute(f\"SELECT {x}\")\n", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := d.Check(source(t, "demo/db.py", tt.content))
			if len(got) != tt.want {
				t.Fatalf("got %d findings, want %d", len(got), tt.want)
			}
			if tt.want == 1 && got[0].Title != "Potential SQL injection" {
				t.Errorf("title = %q", got[0].Title)
			}
		})
	}
}

func TestCommandInjection(t *testing.T) {
	d := commandInjection{}

	tests := []struct {
		name    string
		content string
		want    int
	}{
		{"shell true with f-string", `subprocess.run(f"ls {path}", shell=True)` + "\n", 1},
		{"shell true with concat", `subprocess.call("ls " + path, shell=True)` + "\n", 1},
		{"shell false safe", `subprocess.run(["ls", path], shell=False)` + "\n", 0},
		{"static shell command", `subprocess.run("ls -la", shell=True)` + "\n", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := d.Check(source(t, "demo/shell.py", tt.content))
			if len(got) != tt.want {
				t.Errorf("got %d findings, want %d", len(got), tt.want)
			}
		})
	}
}

func TestUnsafeEval(t *testing.T) {
	d := unsafeEval{}

	tests := []struct {
		name    string
		content string
		want    int
	}{
		{"eval on variable", "value = eval(user_input)\n", 1},
		{"eval on literal allowed", `value = eval("1 + 1")` + "\n", 0},
		{"literal_eval not flagged", "value = ast.literal_eval(user_input)\n", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := d.Check(source(t, "demo/calc.py", tt.content))
			if len(got) != tt.want {
				t.Errorf("got %d findings, want %d", len(got), tt.want)
			}
		})
	}
}

func TestUnsafePickle(t *testing.T) {
	d := unsafePickle{}

	got := d.Check(source(t, "demo/cache.py", "data = pickle.loads(blob)\n"))
	if len(got) != 1 {
		t.Fatalf("got %d findings, want 1", len(got))
	}
	if got[0].Severity != review.SeverityWarning {
		t.Errorf("severity = %s, want warning", got[0].Severity)
	}

	if got := d.Check(source(t, "demo/cache.py", "data = json.loads(blob)\n")); len(got) != 0 {
		t.Errorf("json.loads flagged: %+v", got)
	}
}

func TestBlockingIOInAsync(t *testing.T) {
	d := blockingIOInAsync{}

	t.Run("requests inside async", func(t *testing.T) {
		src := `async def async_update(self):
    data = requests.get(self.url)
    return data
`
		got := d.Check(source(t, "demo/sensor.py", src))
		if len(got) != 1 {
			t.Fatalf("got %d findings, want 1", len(got))
		}
		if got[0].Line == nil || *got[0].Line != 2 {
			t.Errorf("line = %v, want 2", got[0].Line)
		}
	})

	t.Run("requests in sync function ignored", func(t *testing.T) {
		src := `def update(self):
    return requests.get(self.url)
`
		if got := d.Check(source(t, "demo/sensor.py", src)); len(got) != 0 {
			t.Errorf("sync function flagged: %+v", got)
		}
	})

	t.Run("nil tree ignored", func(t *testing.T) {
		f := &SourceFile{Path: "demo/sensor.py", Content: "x", Lines: []string{"x"}}
		if got := d.Check(f); got != nil {
			t.Errorf("nil tree produced findings: %+v", got)
		}
	})
}

func TestBlockingSleepInAsync(t *testing.T) {
	d := blockingSleepInAsync{}

	src := `import time

async def async_poll():
    time.sleep(5)

def poll():
    time.sleep(5)
`
	got := d.Check(source(t, "demo/coordinator.py", src))
	if len(got) != 1 {
		t.Fatalf("got %d findings, want 1", len(got))
	}
	if got[0].Line == nil || *got[0].Line != 4 {
		t.Errorf("line = %v, want 4", got[0].Line)
	}
	if got[0].Suggestion == "" {
		t.Error("finding should carry a suggestion")
	}
}
