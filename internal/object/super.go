package object

import "fmt"

type superData struct {
	start   *Value
	obj     *Value
	objType *Value
}

// NewSuper builds super(start, obj).
func NewSuper(start, obj *Value) (*Value, error) {
	return CallPos(SuperType, start, obj)
}

func setupSuper() {
	defStatic(SuperType, "__new__", func(cls, start, obj *Value) (*Value, error) {
		if !start.IsClass() {
			return nil, Raisef(TypeErrorType, "super() argument 1 must be a type, not %s", TypeName(start))
		}
		var objType *Value
		switch {
		case IsInstance(obj, start):
			objType = obj.Class()
		case obj.IsClass() && IsSubclass(obj, start):
			objType = obj
		default:
			return nil, Raisef(TypeErrorType, "super(type, obj): obj must be an instance or subtype of type")
		}
		return NewInstance(cls, &superData{start: start, obj: obj, objType: objType}), nil
	}, "cls", "type", "obj")

	def(SuperType, "__getattribute__", func(self, name *Value) (*Value, error) {
		s, err := attrName(name)
		if err != nil {
			return nil, err
		}
		sd := self.payload.(*superData)
		if s != "__class__" {
			raw, err := searchAfter(sd.start, sd.objType, s)
			if err != nil {
				return nil, err
			}
			if raw != nil {
				if sd.obj == sd.objType {
					return unwrapForClass(raw, sd.obj), nil
				}
				return sd.obj.attrs.convert(raw, sd.objType)
			}
		}
		return genericGetAttr(self, s)
	}, "self", "name")

	def(SuperType, "__repr__", func(self *Value) (*Value, error) {
		sd := self.payload.(*superData)
		return Str(fmt.Sprintf("<super: <class '%s'>, <%s object>>", sd.start.Name(), TypeName(sd.obj))), nil
	}, "self")
}
