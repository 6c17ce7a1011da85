// Place lowering. A place translates to a variable holding a pointer to the
// addressed location; interior pointers (field and element addresses) land
// in _inner temporaries.
package lirgen

import (
	"tlog.app/go/errors"

	"github.com/cflat-lang/cflatc/pkg/ast"
	"github.com/cflat-lang/cflatc/pkg/lir"
)

func (l *lowerer) lowerPlace(place ast.Place) (string, error) {
	switch p := place.(type) {
	case ast.Id:
		// A bare name is assigned with Copy and read directly; it never
		// reaches place lowering.
		return "", errors.New("identifier %v lowered as an address", p.Name)

	case ast.Deref:
		return l.lowerExp(p.Exp)

	case ast.ArrayAccess:
		src, err := l.lowerExp(p.Array)
		if err != nil {
			return "", err
		}
		idx, err := l.lowerExp(p.Index)
		if err != nil {
			return "", err
		}
		srcTyp, err := l.typeOf(src)
		if err != nil {
			return "", err
		}
		arr, ok := srcTyp.(lir.ArrayType)
		if !ok {
			return "", errors.Wrap(ErrTypeShapeMismatch, "array access on %v: %v", src, srcTyp)
		}
		lhs := l.freshInner(lir.PtrType{Elem: arr.Elem})
		l.emitInst(lir.Gep{Lhs: lhs, Src: src, Idx: idx, Checked: true})
		l.release(src, idx)
		return lhs, nil

	case ast.FieldAccess:
		src, err := l.lowerExp(p.Ptr)
		if err != nil {
			return "", err
		}
		srcTyp, err := l.typeOf(src)
		if err != nil {
			return "", err
		}
		ptr, ok := srcTyp.(lir.PtrType)
		if !ok {
			return "", errors.Wrap(ErrTypeShapeMismatch, "field access on non-pointer %v: %v", src, srcTyp)
		}
		st, ok := ptr.Elem.(lir.StructType)
		if !ok {
			return "", errors.Wrap(ErrTypeShapeMismatch, "field access on non-struct pointer %v: %v", src, srcTyp)
		}
		def, ok := l.prog.Structs[st.Name]
		if !ok {
			return "", errors.Wrap(ErrUnknownIdentifier, "struct %v", st.Name)
		}
		fieldTyp, ok := def.Fields[p.Field]
		if !ok {
			return "", errors.Wrap(ErrUnknownIdentifier, "field %v.%v", st.Name, p.Field)
		}
		lhs := l.freshInner(lir.PtrType{Elem: fieldTyp})
		l.emitInst(lir.Gfp{Lhs: lhs, Src: src, Struct: st.Name, Field: p.Field})
		l.release(src)
		return lhs, nil

	default:
		return "", errors.New("unknown place %T", place)
	}
}
