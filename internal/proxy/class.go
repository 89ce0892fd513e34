package proxy

import (
	"reflect"

	"github.com/google/uuid"
)

// classSpace is the namespace of class ids derived from Go type names.
var classSpace = uuid.MustParse("6f1c3e2a-9d4b-5a7e-8c21-0b9e4d7f3a15")

// Class describes an action implementation type of a module: the unit that
// discovery turns into a proxy and that cached proxies resolve by name.
type Class struct {
	// Name is the full class name used in cache records.
	Name string

	// ID is the stable class id. The same class maps to the same id
	// across reloads.
	ID uuid.UUID

	// New creates an instance of the class.
	New func() any

	// Attribute is the declared attribute: one of CommandAttribute,
	// EditorAttribute, FilerAttribute or ToolAttribute. Nil if undeclared.
	Attribute any
}

// ClassOf describes the type of prototype as a class. The name is the Go
// type name with its package path; New returns a new zero value of the same
// type (a new pointee for pointer prototypes). The id is derived from the
// name.
func ClassOf(prototype any, attribute any) *Class {
	t := reflect.TypeOf(prototype)
	name := TypeName(t)

	return &Class{
		Name:      name,
		ID:        uuid.NewSHA1(classSpace, []byte(name)),
		New:       newFunc(t),
		Attribute: attribute,
	}
}

// WithID returns a copy of c with the given id.
func (c *Class) WithID(id uuid.UUID) *Class {
	cp := *c
	cp.ID = id
	return &cp
}

// TypeName returns the full name of a Go type, e.g. "example.com/mod/pkg.Echo".
// Pointer types are named after their element type.
func TypeName(t reflect.Type) string {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.PkgPath() == "" {
		return t.String()
	}
	return t.PkgPath() + "." + t.Name()
}

func newFunc(t reflect.Type) func() any {
	if t.Kind() == reflect.Pointer {
		elem := t.Elem()
		return func() any { return reflect.New(elem).Interface() }
	}
	return func() any { return reflect.New(t).Elem().Interface() }
}
