package lirgen

import (
	"tlog.app/go/errors"

	"github.com/cflat-lang/cflatc/pkg/ast"
	"github.com/cflat-lang/cflatc/pkg/lir"
)

// ConvertType maps a Cflat type to its LIR counterpart. The mapping is
// structural and total over the known variants.
func ConvertType(t ast.Type) (lir.Type, error) {
	switch typ := t.(type) {
	case ast.IntType:
		return lir.IntType{}, nil
	case ast.NilType:
		return lir.NilType{}, nil
	case ast.StructType:
		return lir.StructType{Name: typ.Name}, nil
	case ast.PtrType:
		elem, err := ConvertType(typ.Elem)
		if err != nil {
			return nil, err
		}
		return lir.PtrType{Elem: elem}, nil
	case ast.ArrayType:
		elem, err := ConvertType(typ.Elem)
		if err != nil {
			return nil, err
		}
		return lir.ArrayType{Elem: elem}, nil
	case ast.FnType:
		fn := lir.FnType{}
		for _, p := range typ.Params {
			cp, err := ConvertType(p)
			if err != nil {
				return nil, err
			}
			fn.Params = append(fn.Params, cp)
		}
		ret, err := ConvertType(typ.Ret)
		if err != nil {
			return nil, err
		}
		fn.Ret = ret
		return fn, nil
	default:
		return nil, errors.Wrap(ErrUnsupportedType, "%T", t)
	}
}
