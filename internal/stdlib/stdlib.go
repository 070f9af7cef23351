package stdlib

import (
	"io"
	"os"

	"pyrt/internal/module"
	"pyrt/internal/object"

	"github.com/tliron/commonlog"
)

var log = commonlog.GetLogger("pyrt.stdlib")

// Version is reported as sys.version.
const Version = "3.11.0 (pyrt)"

// Options tune the installed modules.
type Options struct {
	// Disabled reports native modules that must not be installed.
	Disabled func(name string) bool
	// Stdout receives print output without an explicit file.
	Stdout io.Writer
	// Path is exposed as sys.path.
	Path []string
}

type native struct {
	name string
	pkg  bool
	exec func(imp *module.Importer, opts *Options) module.Exec
}

var natives = []native{
	{name: "builtins", exec: execBuiltins},
	{name: "sys", exec: execSys},
	{name: "types", exec: execTypes},
	{name: "importlib", pkg: true, exec: execImportlib},
	{name: "importlib.machinery", exec: execMachinery},
	{name: "io", exec: execIO},
	{name: "operator", exec: execOperator},
	{name: "unicodedata", exec: execUnicodedata},
}

// Names lists the modules Install can provide.
func Names() []string {
	names := make([]string, len(natives))
	for i, n := range natives {
		names[i] = n.name
	}
	return names
}

// Install registers the native modules with imp. They load on first
// import.
func Install(imp *module.Importer, opts Options) {
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	for _, n := range natives {
		if opts.Disabled != nil && opts.Disabled(n.name) {
			log.Infof("native module %s disabled", n.name)
			continue
		}
		exec := n.exec(imp, &opts)
		if n.pkg {
			imp.RegisterPackage(n.name, exec)
		} else {
			imp.RegisterModule(n.name, exec)
		}
	}
}

// populate runs defs against mod, stopping at the first error.
func populate(mod *object.Value, defs ...func(*object.Value) error) error {
	for _, def := range defs {
		if err := def(mod); err != nil {
			return err
		}
	}
	return nil
}

func set(name string, v *object.Value) func(*object.Value) error {
	return func(mod *object.Value) error { return object.SetAttr(mod, name, v) }
}

func fn(name string, handler any, params ...object.Param) func(*object.Value) error {
	return func(mod *object.Value) error {
		_, err := object.DefineFunction(mod, name, handler, params...)
		return err
	}
}
