package rthumb

import (
	"fmt"
	"reflect"
)

// MapOwner is the simplest [Owner]: field names are map keys.
type MapOwner map[string]string

func (o MapOwner) GetField(name string) (string, error) {
	v, ok := o[name]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownField, name)
	}
	return v, nil
}

// StructOwner exposes string fields of a struct. A field can be referenced either by its Go
// name or by the value of the "rthumb" tag:
//
//	type User struct {
//		Avatar string `rthumb:"avatar"`
//	}
type StructOwner struct {
	v any
}

// NewStructOwner returns a new [StructOwner]. v must be a struct or a pointer to a struct.
func NewStructOwner(v any) (StructOwner, error) {
	rv := reflect.Indirect(reflect.ValueOf(v))
	if rv.Kind() != reflect.Struct {
		return StructOwner{}, fmt.Errorf("owner must be a struct, got %T", v)
	}
	return StructOwner{v: v}, nil
}

func (o StructOwner) GetField(name string) (string, error) {
	rv := reflect.Indirect(reflect.ValueOf(o.v))
	rt := rv.Type()

	for i := range rt.NumField() {
		field := rt.Field(i)
		if !field.IsExported() {
			continue
		}
		if field.Name != name && field.Tag.Get("rthumb") != name {
			continue
		}

		fv := rv.Field(i)
		if fv.Kind() == reflect.Pointer {
			if fv.IsNil() {
				return "", nil
			}
			fv = fv.Elem()
		}
		if fv.Kind() != reflect.String {
			return "", fmt.Errorf("field %q has type %s, string expected", name, field.Type)
		}
		return fv.String(), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownField, name)
}
