package module

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"pyrt/internal/object"

	"gopkg.in/yaml.v3"
)

const (
	dataExt      = ".yaml"
	dataInitFile = "__init__" + dataExt
)

// DataFinder imports YAML documents as data modules. a.b resolves to
// <root>/a/b.yaml, or to the package <root>/a/b/__init__.yaml. The top
// level of a document must be a mapping; its keys become module attributes.
type DataFinder struct {
	Roots []string
}

func NewDataFinder(roots []string) *DataFinder {
	return &DataFinder{Roots: roots}
}

// Resolve returns the file backing name and whether it is a package.
func (r *DataFinder) Resolve(name string) (string, bool, error) {
	rel := filepath.Join(strings.Split(name, ".")...)
	for _, root := range r.Roots {
		pkg := filepath.Join(root, rel, dataInitFile)
		if ok, err := exists(pkg); err != nil {
			return "", false, err
		} else if ok {
			p, _ := filepath.Abs(pkg)
			return p, true, nil
		}
		file := filepath.Join(root, rel+dataExt)
		if ok, err := exists(file); err != nil {
			return "", false, err
		} else if ok {
			p, _ := filepath.Abs(file)
			return p, false, nil
		}
	}
	return "", false, nil
}

func (r *DataFinder) FindSpec(_ *Importer, name string) (*Spec, error) {
	path, isPkg, err := r.Resolve(name)
	if err != nil || path == "" {
		return nil, err
	}
	return &Spec{Name: name, Loader: &dataLoader{path: path, pkg: isPkg}, Origin: path}, nil
}

func exists(p string) (bool, error) {
	_, err := os.Stat(p)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}

type dataLoader struct {
	path string
	pkg  bool
}

func (l *dataLoader) Load(imp *Importer, name string) (*object.Value, error) {
	src, err := os.ReadFile(l.path)
	if err != nil {
		return nil, object.Raisef(object.ImportErrorType, "%v", err)
	}
	var doc yaml.Node
	if err := yaml.Unmarshal(src, &doc); err != nil {
		return nil, object.Raisef(object.ImportErrorType, "parse error in %s: %v", l.path, err)
	}

	var mod *object.Value
	if l.pkg {
		mod = CreatePackage(name)
	} else {
		mod = CreateModule(name)
	}
	mustSet(mod, "__file__", object.Str(l.path))
	imp.Register(name, mod)

	if err := populate(mod, &doc, l.path); err != nil {
		imp.Remove(name)
		return nil, err
	}
	return mod, nil
}

func populate(mod *object.Value, doc *yaml.Node, path string) error {
	if doc.Kind == 0 {
		return nil
	}
	root := doc
	if root.Kind == yaml.DocumentNode {
		if len(root.Content) == 0 {
			return nil
		}
		root = root.Content[0]
	}
	if root.Kind != yaml.MappingNode {
		return object.Raisef(object.ImportErrorType, "%s:%d: top level must be a mapping", path, root.Line)
	}
	d := newDecoder(path)
	d.active[root] = true
	for i := 0; i+1 < len(root.Content); i += 2 {
		k, v := root.Content[i], root.Content[i+1]
		val, err := d.value(v)
		if err != nil {
			return err
		}
		if err := object.SetAttr(mod, k.Value, val); err != nil {
			return err
		}
	}
	return nil
}

// maxAliasExpansions caps the nodes reached through aliases in one
// document.
const maxAliasExpansions = 10000

// decoder converts YAML nodes to values. Floats have no value kind and are
// rejected.
type decoder struct {
	path     string
	active   map[*yaml.Node]bool
	expanded int
}

func newDecoder(path string) *decoder {
	return &decoder{path: path, active: map[*yaml.Node]bool{}}
}

func (d *decoder) value(n *yaml.Node) (*object.Value, error) {
	switch n.Kind {
	case yaml.AliasNode:
		if d.active[n.Alias] {
			return nil, object.Raisef(object.ImportErrorType, "%s:%d: recursive alias", d.path, n.Line)
		}
		d.expanded++
		if d.expanded > maxAliasExpansions {
			return nil, object.Raisef(object.ImportErrorType, "%s:%d: too many alias expansions", d.path, n.Line)
		}
		return d.value(n.Alias)
	case yaml.SequenceNode:
		d.active[n] = true
		defer delete(d.active, n)
		elems := make([]*object.Value, len(n.Content))
		for i, c := range n.Content {
			v, err := d.value(c)
			if err != nil {
				return nil, err
			}
			elems[i] = v
		}
		return object.List(elems...), nil
	case yaml.MappingNode:
		d.active[n] = true
		defer delete(d.active, n)
		m := object.NewDict()
		dict, _ := object.AsDict(m)
		for i := 0; i+1 < len(n.Content); i += 2 {
			k, err := d.value(n.Content[i])
			if err != nil {
				return nil, err
			}
			v, err := d.value(n.Content[i+1])
			if err != nil {
				return nil, err
			}
			if err := dict.Set(k, v); err != nil {
				return nil, err
			}
		}
		return m, nil
	case yaml.ScalarNode:
		return scalarValue(n, d.path)
	}
	return nil, object.Raisef(object.ImportErrorType, "%s:%d: unsupported node", d.path, n.Line)
}

func scalarValue(n *yaml.Node, path string) (*object.Value, error) {
	switch n.ShortTag() {
	case "!!null":
		return object.None, nil
	case "!!bool":
		var b bool
		if err := n.Decode(&b); err != nil {
			return nil, object.Raisef(object.ImportErrorType, "%s:%d: %v", path, n.Line, err)
		}
		return object.Bool(b), nil
	case "!!int":
		var i int64
		if err := n.Decode(&i); err != nil {
			return nil, object.Raisef(object.ImportErrorType, "%s:%d: %v", path, n.Line, err)
		}
		return object.Int(i), nil
	case "!!str":
		return object.Str(n.Value), nil
	}
	return nil, object.Raisef(object.ImportErrorType, "%s:%d: unsupported value %s (%s)", path, n.Line, strconv.Quote(n.Value), n.ShortTag())
}

// Describe names where a data module comes from, for diagnostics.
func (r *DataFinder) Describe(name string) string {
	path, isPkg, err := r.Resolve(name)
	switch {
	case err != nil:
		return fmt.Sprintf("%s: %v", name, err)
	case path == "":
		return fmt.Sprintf("%s: not found in %s", name, strings.Join(r.Roots, string(os.PathListSeparator)))
	case isPkg:
		return fmt.Sprintf("%s: package %s", name, path)
	}
	return fmt.Sprintf("%s: %s", name, path)
}
