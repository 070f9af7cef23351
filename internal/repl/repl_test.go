package repl

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"pyrt/internal/config"
	"pyrt/internal/interp"
)

func run(t *testing.T, r *interp.Runner, input string) string {
	t.Helper()
	if r == nil {
		var err error
		if r, err = interp.New(nil); err != nil {
			t.Fatalf("interp.New: %v", err)
		}
	}
	var out bytes.Buffer
	if err := Start(strings.NewReader(input), &out, r); err != nil {
		t.Fatalf("Start: %v", err)
	}
	return out.String()
}

func TestCommands(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"import importlib.machinery\n", "<module 'importlib'>\n"},
		{"from sys import version\n", "version = '3.11.0 (pyrt)'\n"},
		{"mro KeyError\n", "KeyError -> LookupError -> Exception -> BaseException -> object\n"},
		{"mro importlib.machinery.ModuleSpec\n", "importlib.machinery.ModuleSpec -> object\n"},
		{"type True\n", "bool\n"},
		{"int\n", "<class 'int'>\n"},
		{"where sys\nimport sys\nwhere sys\n", "sys: not loaded; no data paths configured\n<module 'sys'>\nsys: loaded (native)\n"},
		{"\n# comment\nquit\nint\n", ""},
	}
	for i, tt := range tests {
		if got := run(t, nil, tt.input); got != tt.want {
			t.Fatalf("tests[%d]: expected %q, got %q", i, tt.want, got)
		}
	}
}

func TestErrorsArePrinted(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"nowhere\n", "NameError: name 'nowhere' is not defined\n"},
		{"import nowhere\n", "ModuleNotFoundError: No module named 'nowhere'\n"},
		{"from sys import nope\n", "ImportError: cannot import name 'nope' from 'sys'\n"},
		{"mro len\n", "TypeError: 'function' object is not a class\n"},
		{"mro\n", "usage: mro <class>\n"},
		{"from sys\n", "usage: from <module> import <name>[, <name>...]\n"},
	}
	for i, tt := range tests {
		if got := run(t, nil, tt.input); got != tt.want {
			t.Fatalf("tests[%d]: expected %q, got %q", i, tt.want, got)
		}
	}
}

func TestDirAndModules(t *testing.T) {
	out := run(t, nil, "import types\ndir\n")
	if !strings.Contains(out, "__builtins__") || !strings.Contains(out, "types") {
		t.Fatalf("expected __main__ names, got %q", out)
	}
	out = run(t, nil, "modules\n")
	for _, name := range []string{"__main__", "builtins"} {
		if !strings.Contains(out, name) {
			t.Fatalf("expected %s in modules, got %q", name, out)
		}
	}
	out = run(t, nil, "help\n")
	if !strings.Contains(out, "mro <class>") {
		t.Fatalf("expected usage lines, got %q", out)
	}
}

func TestWhereDataModule(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "levels.yaml"), []byte("first: 1\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	m := config.Default()
	m.DataPaths = []string{dir}
	r, err := interp.New(m)
	if err != nil {
		t.Fatalf("interp.New: %v", err)
	}
	path := filepath.Join(dir, "levels.yaml")
	out := run(t, r, "where levels\nfrom levels import first\nwhere levels\n")
	want := "levels: " + path + "\nfirst = 1\nlevels: loaded from " + path + "\n"
	if out != want {
		t.Fatalf("expected %q, got %q", want, out)
	}
}
