package control

import (
	"pyrt/internal/object"
)

// With runs body inside the context manager mgr. body receives the value
// of mgr.__enter__(). mgr.__exit__ always runs: with (None, None, None)
// after success or a host error, and with the exception's class and value
// after a modeled exception, which a true result suppresses. An error from
// __exit__ replaces the result.
func With(mgr *object.Value, body func(v *object.Value) error) error {
	for _, name := range []string{"__enter__", "__exit__"} {
		ok, err := object.HasAttr(mgr, name)
		if err != nil {
			return err
		}
		if !ok {
			return object.Raisef(object.TypeErrorType, "'%s' object does not support the context manager protocol", object.TypeName(mgr))
		}
	}
	v, err := object.CallMethod(mgr, "__enter__")
	if err != nil {
		return err
	}
	err = body(v)
	exc, modeled := object.ExceptionOf(err)
	if !modeled {
		if _, xerr := object.CallMethod(mgr, "__exit__", object.None, object.None, object.None); xerr != nil {
			return xerr
		}
		return err
	}
	res, xerr := object.CallMethod(mgr, "__exit__", exc.Class(), exc, object.None)
	if xerr != nil {
		return xerr
	}
	suppress, xerr := object.Truth(res)
	if xerr != nil {
		return xerr
	}
	if suppress {
		log.Debugf("%s suppressed by %s.__exit__", object.TypeName(exc), object.TypeName(mgr))
		return nil
	}
	return err
}
