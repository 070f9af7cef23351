package stdlib

import (
	"pyrt/internal/module"
	"pyrt/internal/object"

	"golang.org/x/text/unicode/norm"
)

var normForms = map[string]norm.Form{
	"NFC":  norm.NFC,
	"NFD":  norm.NFD,
	"NFKC": norm.NFKC,
	"NFKD": norm.NFKD,
}

func normArgs(fname string, form, s *object.Value) (norm.Form, string, error) {
	name, ok := object.AsString(form)
	if !ok {
		return 0, "", object.Raisef(object.TypeErrorType, "%s() argument 1 must be str, not %s", fname, object.TypeName(form))
	}
	f, ok := normForms[name]
	if !ok {
		return 0, "", object.Raisef(object.ValueErrorType, "invalid normalization form")
	}
	text, ok := object.AsString(s)
	if !ok {
		return 0, "", object.Raisef(object.TypeErrorType, "%s() argument 2 must be str, not %s", fname, object.TypeName(s))
	}
	return f, text, nil
}

func execUnicodedata(imp *module.Importer, opts *Options) module.Exec {
	return func(mod *object.Value) error {
		return populate(mod,
			set("unidata_version", object.Str(norm.Version)),
			fn("normalize", func(form, s *object.Value) (*object.Value, error) {
				f, text, err := normArgs("normalize", form, s)
				if err != nil {
					return nil, err
				}
				return object.Str(f.String(text)), nil
			}, object.Names("form", "unistr")...),
			fn("is_normalized", func(form, s *object.Value) (*object.Value, error) {
				f, text, err := normArgs("is_normalized", form, s)
				if err != nil {
					return nil, err
				}
				return object.Bool(f.IsNormalString(text)), nil
			}, object.Names("form", "unistr")...),
		)
	}
}
