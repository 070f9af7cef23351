package interp

import (
	"fmt"
	"io"
	"os"
	"strings"

	"pyrt/internal/config"
	"pyrt/internal/control"
	"pyrt/internal/limits"
	"pyrt/internal/module"
	"pyrt/internal/object"
	"pyrt/internal/stdlib"

	"github.com/tliron/commonlog"
)

var log = commonlog.GetLogger("pyrt.interp")

// MainModule is the name of the module host code binds imports into.
const MainModule = "__main__"

// Runner owns one importer with the native modules installed and a
// __main__ namespace.
type Runner struct {
	manifest *config.Manifest
	imp      *module.Importer
	data     *module.DataFinder
	main     *object.Value
	stdout   io.Writer
}

type Option func(*Runner)

// WithStdout redirects builtins.print.
func WithStdout(w io.Writer) Option {
	return func(r *Runner) { r.stdout = w }
}

// New builds a runner from m, or from the defaults when m is nil, and
// imports every preload module into __main__.
func New(m *config.Manifest, opts ...Option) (*Runner, error) {
	if m == nil {
		m = config.Default()
	}
	r := &Runner{manifest: m, imp: module.NewImporter(), stdout: os.Stdout}
	for _, opt := range opts {
		opt(r)
	}

	paths := m.ResolveDataPaths()
	stdlib.Install(r.imp, stdlib.Options{
		Disabled: m.Disabled,
		Stdout:   r.stdout,
		Path:     paths,
	})
	if len(paths) > 0 {
		r.data = module.NewDataFinder(paths)
		r.imp.AddFinder(r.data)
	}

	r.main = module.CreateModule(MainModule)
	r.imp.Register(MainModule, r.main)
	if !m.Disabled("builtins") {
		builtins, err := r.imp.ImportAs("builtins")
		if err != nil {
			return nil, fmt.Errorf("interp: builtins: %w", err)
		}
		if err := object.SetAttr(r.main, "__builtins__", builtins); err != nil {
			return nil, fmt.Errorf("interp: builtins: %w", err)
		}
	}
	for _, name := range m.Preload {
		if _, err := r.imp.Import(r.main, name); err != nil {
			return nil, fmt.Errorf("interp: preload %s: %w", name, err)
		}
		log.Debugf("preloaded %s", name)
	}
	log.Infof("runner %s ready with %d modules", m.Name, len(r.imp.Modules()))
	return r, nil
}

func (r *Runner) Manifest() *config.Manifest { return r.manifest }

func (r *Runner) Importer() *module.Importer { return r.imp }

// Main returns the __main__ module.
func (r *Runner) Main() *object.Value { return r.main }

// Data returns the YAML module finder, or nil when no data paths are
// configured.
func (r *Runner) Data() *module.DataFinder { return r.data }

// Import binds the top-level module of dotted in __main__.
func (r *Runner) Import(dotted string) (*object.Value, error) {
	return r.imp.Import(r.main, dotted)
}

// ImportFrom binds each name from modName in __main__.
func (r *Runner) ImportFrom(modName string, names ...string) ([]*object.Value, error) {
	return r.imp.ImportFromInto(r.main, modName, names...)
}

// Generator starts a generator bounded by generator.max_steps.
func (r *Runner) Generator() *control.Builder {
	return control.NewGenerator().WithBudget(limits.NewBudget(r.manifest.Generator.MaxSteps))
}

// Resolve looks up a dotted path. The first component is searched in
// __main__ and builtins; otherwise the longest importable module prefix
// is imported and the rest is read as attributes.
func (r *Runner) Resolve(path string) (*object.Value, error) {
	parts := strings.Split(path, ".")
	for _, p := range parts {
		if p == "" {
			return nil, object.Raisef(object.ValueErrorType, "invalid name '%s'", path)
		}
	}
	if v, ok, err := r.global(parts[0]); err != nil {
		return nil, err
	} else if ok {
		return walk(v, parts[1:])
	}
	for i := len(parts); i > 0; i-- {
		mod, err := r.imp.ImportAs(strings.Join(parts[:i], "."))
		if err == nil {
			return walk(mod, parts[i:])
		}
		if !object.IsRaised(err, object.ModuleNotFoundErrorType) {
			return nil, err
		}
	}
	return nil, object.Raisef(object.NameErrorType, "name '%s' is not defined", parts[0])
}

func (r *Runner) global(name string) (*object.Value, bool, error) {
	if v := r.main.Attrs().Get(name); v != nil {
		return v, true, nil
	}
	builtins := r.main.Attrs().Get("__builtins__")
	if builtins == nil {
		return nil, false, nil
	}
	if v := builtins.Attrs().Get(name); v != nil {
		return v, true, nil
	}
	return nil, false, nil
}

func walk(v *object.Value, attrs []string) (*object.Value, error) {
	for _, name := range attrs {
		next, err := object.GetAttr(v, name)
		if err != nil {
			return nil, err
		}
		v = next
	}
	return v, nil
}
