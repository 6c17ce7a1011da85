// Package lir defines the low-level intermediate representation produced by
// lowering. LIR is a three-address, CFG-based form: every computation targets
// a named local, loads and stores are explicit, and each function body is a
// map of labeled basic blocks ending in a single terminator.
package lir

import (
	"fmt"
	"strings"
)

// Type is the interface for all LIR types.
type Type interface {
	implType()
	// Equals reports structural equality. Nil is equal to any Nil, Ptr, or
	// Array type, and Ptr/Array each admit Nil as an equal counterpart.
	Equals(other Type) bool
	String() string
}

// IntType is the integer type.
type IntType struct{}

// NilType is the type of the null literal.
type NilType struct{}

// StructType is a nominal reference to a struct definition.
type StructType struct {
	Name string
}

// PtrType is a pointer to a single value.
type PtrType struct {
	Elem Type
}

// ArrayType is a pointer to a contiguous run of values.
type ArrayType struct {
	Elem Type
}

// FnType is a function type.
type FnType struct {
	Params []Type
	Ret    Type
}

func (IntType) implType()    {}
func (NilType) implType()    {}
func (StructType) implType() {}
func (PtrType) implType()    {}
func (ArrayType) implType()  {}
func (FnType) implType()     {}

func (IntType) Equals(other Type) bool {
	_, ok := other.(IntType)
	return ok
}

func (NilType) Equals(other Type) bool {
	switch other.(type) {
	case NilType, PtrType, ArrayType:
		return true
	}
	return false
}

func (t StructType) Equals(other Type) bool {
	o, ok := other.(StructType)
	return ok && o.Name == t.Name
}

func (t PtrType) Equals(other Type) bool {
	if _, ok := other.(NilType); ok {
		return true
	}
	o, ok := other.(PtrType)
	return ok && t.Elem.Equals(o.Elem)
}

func (t ArrayType) Equals(other Type) bool {
	if _, ok := other.(NilType); ok {
		return true
	}
	o, ok := other.(ArrayType)
	return ok && t.Elem.Equals(o.Elem)
}

func (t FnType) Equals(other Type) bool {
	o, ok := other.(FnType)
	if !ok || len(t.Params) != len(o.Params) || !t.Ret.Equals(o.Ret) {
		return false
	}
	for i := range t.Params {
		if !t.Params[i].Equals(o.Params[i]) {
			return false
		}
	}
	return true
}

func (IntType) String() string      { return "int" }
func (NilType) String() string      { return "nil" }
func (t StructType) String() string { return "struct " + t.Name }
func (t PtrType) String() string    { return "&" + t.Elem.String() }
func (t ArrayType) String() string  { return "[" + t.Elem.String() + "]" }

func (t FnType) String() string {
	parts := make([]string, len(t.Params))
	for i, p := range t.Params {
		parts[i] = p.String()
	}
	return fmt.Sprintf("fn (%s) -> %s", strings.Join(parts, ", "), t.Ret.String())
}
