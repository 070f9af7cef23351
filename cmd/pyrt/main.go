package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"pyrt/internal/config"
	"pyrt/internal/interp"
	"pyrt/internal/object"
	"pyrt/internal/repl"
	"pyrt/internal/stdlib"

	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout))
}

func run(args []string, stdin io.Reader, stdout io.Writer) int {
	if len(args) > 0 && args[0] == "init" {
		return runInit(args[1:], stdout)
	}

	fs := flag.NewFlagSet("pyrt", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	manifestPath := fs.String("config", config.DefaultFile, "runtime manifest")
	verbosity := fs.Int("v", -2, "log verbosity (overrides the manifest)")
	if err := fs.Parse(args); err != nil {
		fmt.Fprintln(stdout, "usage: pyrt [-config <file>] [-v <level>] [inspect|mro|modules|repl] [args]")
		return 2
	}

	man, err := config.LoadOrDefault(*manifestPath)
	if err != nil {
		fmt.Fprintln(stdout, "config error:", err)
		return 1
	}
	if *verbosity != -2 {
		man.Verbosity = *verbosity
	}
	configureLogging(man)

	rest := fs.Args()
	cmd := "repl"
	if len(rest) > 0 {
		cmd, rest = rest[0], rest[1:]
	}

	r, err := interp.New(man, interp.WithStdout(stdout))
	if err != nil {
		fmt.Fprintln(stdout, "start error:", err)
		return 1
	}

	switch cmd {
	case "repl":
		if len(rest) != 0 {
			fmt.Fprintln(stdout, "usage: pyrt repl")
			return 2
		}
		if err := repl.Start(stdin, stdout, r); err != nil {
			fmt.Fprintln(stdout, "repl error:", err)
			return 1
		}
	case "inspect":
		if len(rest) == 0 {
			fmt.Fprintln(stdout, "usage: pyrt inspect <dotted.name>...")
			return 2
		}
		return inspect(r, rest, stdout)
	case "mro":
		if len(rest) != 1 {
			fmt.Fprintln(stdout, "usage: pyrt mro <class>")
			return 2
		}
		return printMRO(r, rest[0], stdout)
	case "modules":
		printModules(r, stdout)
	default:
		fmt.Fprintln(stdout, "unknown command:", cmd)
		return 2
	}
	return 0
}

func configureLogging(man *config.Manifest) {
	var path *string
	if man.LogFile != "" {
		path = &man.LogFile
	}
	commonlog.Configure(man.Verbosity, path)
}

func inspect(r *interp.Runner, names []string, out io.Writer) int {
	status := 0
	for _, name := range names {
		v, err := r.Resolve(name)
		if err != nil {
			fmt.Fprintln(out, err)
			status = 1
			continue
		}
		repr, err := object.Repr(v)
		if err != nil {
			fmt.Fprintln(out, err)
			status = 1
			continue
		}
		fmt.Fprintf(out, "%s: %s\n", name, repr)
		attrs := object.Dir(v)
		if len(attrs) > 0 {
			fmt.Fprintf(out, "  %s\n", strings.Join(attrs, " "))
		}
	}
	return status
}

func printMRO(r *interp.Runner, name string, out io.Writer) int {
	v, err := r.Resolve(name)
	if err != nil {
		fmt.Fprintln(out, err)
		return 1
	}
	if !v.IsClass() {
		fmt.Fprintf(out, "%s is not a class\n", name)
		return 1
	}
	for i, c := range v.MRO() {
		fmt.Fprintf(out, "%d %s\n", i, c.Name())
	}
	return 0
}

func printModules(r *interp.Runner, out io.Writer) {
	loaded := map[string]bool{}
	for _, name := range r.Importer().Modules() {
		loaded[name] = true
	}
	names := stdlib.Names()
	for name := range loaded {
		if !contains(names, name) {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	for _, name := range names {
		state := "available"
		switch {
		case loaded[name]:
			state = "loaded"
		case r.Manifest().Disabled(name):
			state = "disabled"
		}
		fmt.Fprintf(out, "%-22s %s\n", name, state)
	}
}

func contains(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}

func runInit(args []string, out io.Writer) int {
	fs := flag.NewFlagSet("init", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	name := fs.String("name", "", "runtime name")
	data := fs.String("data", "", "data module directory")
	force := fs.Bool("force", false, "overwrite an existing manifest")
	if err := fs.Parse(args); err != nil || fs.NArg() != 0 {
		fmt.Fprintln(out, "usage: pyrt init [--name <name>] [--data <dir>] [--force]")
		return 1
	}

	cwd, err := os.Getwd()
	if err != nil {
		cwd = "."
	}
	manifestPath := filepath.Join(cwd, config.DefaultFile)
	exists, err := pathExists(manifestPath)
	if err != nil {
		fmt.Fprintln(out, "init error:", err)
		return 1
	}
	if exists && !*force {
		fmt.Fprintf(out, "init error: %s already exists (use --force to overwrite)\n", config.DefaultFile)
		return 1
	}

	man := config.Default()
	if strings.TrimSpace(*name) != "" {
		man.Name = *name
	} else {
		man.Name = filepath.Base(cwd)
	}
	if *data != "" {
		man.DataPaths = []string{*data}
		if err := os.MkdirAll(filepath.Join(cwd, *data), 0o755); err != nil {
			fmt.Fprintln(out, "init error:", err)
			return 1
		}
	}
	b, err := man.Marshal()
	if err != nil {
		fmt.Fprintln(out, "init error:", err)
		return 1
	}
	if err := writeFileAtomic(manifestPath, b); err != nil {
		fmt.Fprintln(out, "init error:", err)
		return 1
	}
	fmt.Fprintf(out, "wrote %s\n", manifestPath)
	return 0
}

func writeFileAtomic(path string, data []byte) error {
	perm := os.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		perm = info.Mode().Perm()
	} else if !errors.Is(err, os.ErrNotExist) {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".pyrt-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, perm); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}

func pathExists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}
