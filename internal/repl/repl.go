package repl

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"pyrt/internal/interp"
	"pyrt/internal/object"
	"pyrt/internal/runtimeio"
)

const prompt = "pyrt> "

type command struct {
	usage string
	run   func(s *session, arg string) error
}

var commands map[string]command

func init() {
	commands = map[string]command{
		"import":  {"import <dotted.name>", (*session).importCmd},
		"from":    {"from <module> import <name>[, <name>...]", (*session).fromCmd},
		"dir":     {"dir <name>", (*session).dirCmd},
		"mro":     {"mro <class>", (*session).mroCmd},
		"type":    {"type <name>", (*session).typeCmd},
		"where":   {"where <module>", (*session).whereCmd},
		"modules": {"modules", (*session).modulesCmd},
		"finders": {"finders", (*session).findersCmd},
		"help":    {"help", (*session).helpCmd},
	}
}

type session struct {
	r     *interp.Runner
	out   io.Writer
	width int
}

var errQuit = errors.New("quit")

// Start reads commands from in until it is exhausted or the user quits.
// A line that is not a command is resolved as a dotted name and its repr
// printed.
func Start(in io.Reader, out io.Writer, r *interp.Runner) error {
	interactive := runtimeio.IsInteractive(in)
	s := &session{r: r, out: out, width: runtimeio.Width(out)}
	if interactive {
		fmt.Fprint(out, "pyrt inspector (Ctrl+D to exit, help for commands)\n")
	}
	reader := bufio.NewReader(in)
	for {
		if interactive {
			fmt.Fprint(out, prompt)
		}
		line, err := runtimeio.ReadLine(reader)
		if errors.Is(err, runtimeio.ErrInputClosed) {
			if interactive {
				fmt.Fprint(out, "\n")
			}
			return nil
		}
		if err != nil {
			return err
		}
		if err := s.exec(line); err != nil {
			if errors.Is(err, errQuit) {
				return nil
			}
			fmt.Fprintln(out, err)
		}
	}
}

// exec runs one line against the session.
func (s *session) exec(line string) error {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return nil
	}
	if line == "exit" || line == "quit" {
		return errQuit
	}
	name, arg, _ := strings.Cut(line, " ")
	if cmd, ok := commands[name]; ok {
		return cmd.run(s, strings.TrimSpace(arg))
	}
	v, err := s.r.Resolve(line)
	if err != nil {
		return err
	}
	return s.printRepr(v)
}

func (s *session) printRepr(v *object.Value) error {
	r, err := object.Repr(v)
	if err != nil {
		return err
	}
	fmt.Fprintln(s.out, r)
	return nil
}

func usage(name string) error {
	return fmt.Errorf("usage: %s", commands[name].usage)
}

func (s *session) importCmd(arg string) error {
	if arg == "" {
		return usage("import")
	}
	mod, err := s.r.Import(arg)
	if err != nil {
		return err
	}
	return s.printRepr(mod)
}

func (s *session) fromCmd(arg string) error {
	modName, rest, ok := strings.Cut(arg, " import ")
	if !ok || strings.TrimSpace(modName) == "" {
		return usage("from")
	}
	var names []string
	for _, n := range strings.Split(rest, ",") {
		if n = strings.TrimSpace(n); n != "" {
			names = append(names, n)
		}
	}
	if len(names) == 0 {
		return usage("from")
	}
	if len(names) == 1 && names[0] == "*" {
		bound, err := s.r.Importer().ImportStar(s.r.Main(), strings.TrimSpace(modName))
		if err != nil {
			return err
		}
		fmt.Fprint(s.out, runtimeio.Columns(bound, s.width))
		return nil
	}
	vals, err := s.r.ImportFrom(strings.TrimSpace(modName), names...)
	if err != nil {
		return err
	}
	for i, v := range vals {
		r, err := object.Repr(v)
		if err != nil {
			return err
		}
		fmt.Fprintf(s.out, "%s = %s\n", names[i], r)
	}
	return nil
}

func (s *session) dirCmd(arg string) error {
	var names []string
	if arg == "" {
		names = s.r.Main().Attrs().Keys()
		sort.Strings(names)
	} else {
		v, err := s.r.Resolve(arg)
		if err != nil {
			return err
		}
		names = object.Dir(v)
	}
	fmt.Fprint(s.out, runtimeio.Columns(names, s.width))
	return nil
}

func (s *session) mroCmd(arg string) error {
	if arg == "" {
		return usage("mro")
	}
	v, err := s.r.Resolve(arg)
	if err != nil {
		return err
	}
	if !v.IsClass() {
		return object.Raisef(object.TypeErrorType, "'%s' object is not a class", object.TypeName(v))
	}
	mro := v.MRO()
	names := make([]string, len(mro))
	for i, c := range mro {
		names[i] = qualified(c)
	}
	fmt.Fprintln(s.out, strings.Join(names, " -> "))
	return nil
}

func qualified(cls *object.Value) string {
	mod, ok := object.AsString(cls.Attrs().Get("__module__"))
	if !ok || mod == "builtins" {
		return cls.Name()
	}
	return mod + "." + cls.Name()
}

func (s *session) typeCmd(arg string) error {
	if arg == "" {
		return usage("type")
	}
	v, err := s.r.Resolve(arg)
	if err != nil {
		return err
	}
	fmt.Fprintln(s.out, qualified(v.Class()))
	return nil
}

func (s *session) whereCmd(arg string) error {
	if arg == "" {
		return usage("where")
	}
	if mod, ok := s.r.Importer().Lookup(arg); ok {
		if origin, ok := object.AsString(mod.Attrs().Get("__file__")); ok {
			fmt.Fprintf(s.out, "%s: loaded from %s\n", arg, origin)
			return nil
		}
		fmt.Fprintf(s.out, "%s: loaded (native)\n", arg)
		return nil
	}
	data := s.r.Data()
	if data == nil {
		fmt.Fprintf(s.out, "%s: not loaded; no data paths configured\n", arg)
		return nil
	}
	fmt.Fprintln(s.out, data.Describe(arg))
	return nil
}

func (s *session) modulesCmd(string) error {
	names := s.r.Importer().Modules()
	sort.Strings(names)
	fmt.Fprint(s.out, runtimeio.Columns(names, s.width))
	return nil
}

func (s *session) findersCmd(string) error {
	return s.printRepr(s.r.Importer().MetaPathValue())
}

func (s *session) helpCmd(string) error {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(s.out, "  %s\n", commands[name].usage)
	}
	fmt.Fprintln(s.out, "  <dotted.name>  print the repr of a value")
	return nil
}
