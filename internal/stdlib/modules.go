package stdlib

import (
	"pyrt/internal/control"
	"pyrt/internal/module"
	"pyrt/internal/object"
)

func execSys(imp *module.Importer, opts *Options) module.Exec {
	return func(mod *object.Value) error {
		path := make([]*object.Value, len(opts.Path))
		for i, p := range opts.Path {
			path[i] = object.Str(p)
		}
		return populate(mod,
			set("modules", imp.ModulesValue()),
			set("meta_path", imp.MetaPathValue()),
			set("path", object.List(path...)),
			set("version", object.Str(Version)),
		)
	}
}

func execTypes(imp *module.Importer, opts *Options) module.Exec {
	return func(mod *object.Value) error {
		return populate(mod,
			set("ModuleType", object.ModuleType),
			set("FunctionType", object.FunctionType),
			set("BuiltinFunctionType", object.FunctionType),
			set("MethodType", object.MethodType),
			set("NoneType", object.NoneType),
			set("GeneratorType", control.GeneratorType),
		)
	}
}

func execImportlib(imp *module.Importer, opts *Options) module.Exec {
	return func(mod *object.Value) error {
		return populate(mod,
			fn("import_module", func(name *object.Value) (*object.Value, error) {
				s, ok := object.AsString(name)
				if !ok {
					return nil, object.Raisef(object.TypeErrorType, "import_module() argument must be str, not %s", object.TypeName(name))
				}
				return imp.ImportAs(s)
			}, object.Arg("name")),
		)
	}
}

func execMachinery(imp *module.Importer, opts *Options) module.Exec {
	return func(mod *object.Value) error {
		return populate(mod,
			set("ModuleSpec", module.ModuleSpecType),
			set("NativeLoader", module.NativeLoaderType),
			set("NativeFinder", module.NativeFinderType),
		)
	}
}
