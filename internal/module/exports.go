package module

import (
	"strings"

	"pyrt/internal/object"
)

// Exports lists the names a star import of mod binds: __all__ when the
// module defines it, otherwise every own attribute not starting with "_".
func Exports(mod *object.Value) ([]string, error) {
	all, err := object.GetAttrDefault(mod, "__all__", nil)
	if err != nil {
		return nil, err
	}
	if all == nil {
		var names []string
		for _, k := range mod.Attrs().Keys() {
			if !strings.HasPrefix(k, "_") {
				names = append(names, k)
			}
		}
		return names, nil
	}
	return CheckDuplicateExports(all, object.ModuleName(mod))
}

// CheckDuplicateExports converts an __all__ sequence to names, rejecting
// non-string entries and names listed twice.
func CheckDuplicateExports(all *object.Value, modName string) ([]string, error) {
	items, err := object.ToSlice(all)
	if err != nil {
		return nil, err
	}
	seen := map[string]int{}
	names := make([]string, 0, len(items))
	for i, item := range items {
		name, ok := object.AsString(item)
		if !ok {
			return nil, object.Raisef(object.TypeErrorType,
				"Item in %s.__all__ must be str, not %s", modName, object.TypeName(item))
		}
		if prev, exists := seen[name]; exists {
			return nil, object.Raisef(object.ValueErrorType,
				"duplicate export %q in %s.__all__ at %d (previous at %d)", name, modName, i, prev)
		}
		seen[name] = i
		names = append(names, name)
	}
	return names, nil
}

// ImportStar binds every exported name of modName on target.
func (imp *Importer) ImportStar(target *object.Value, modName string) ([]string, error) {
	mod, err := imp.ImportAs(modName)
	if err != nil {
		return nil, err
	}
	names, err := Exports(mod)
	if err != nil {
		return nil, err
	}
	for _, name := range names {
		v, err := imp.fromModule(mod, modName, name)
		if err != nil {
			return nil, err
		}
		if err := object.SetAttr(target, name, v); err != nil {
			return nil, err
		}
	}
	return names, nil
}
