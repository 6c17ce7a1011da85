// Expression lowering. Each translator returns the variable id holding the
// result; recursion threads results through return values rather than a
// shared field.
package lirgen

import (
	"tlog.app/go/errors"

	"github.com/cflat-lang/cflatc/pkg/ast"
	"github.com/cflat-lang/cflatc/pkg/lir"
)

func (l *lowerer) lowerExp(exp ast.Exp) (string, error) {
	switch e := exp.(type) {
	case ast.Val:
		if id, ok := e.Place.(ast.Id); ok {
			return id.Name, nil
		}
		return l.lowerLoad(e.Place)

	case ast.Num:
		return l.constVar(e.Value), nil

	case ast.Nil:
		return lir.NullName, nil

	case ast.Select:
		return l.lowerSelect(e.Guard, e.TT, e.FF, "if_true", "if_false", "if_end")

	case ast.UnOp:
		return l.lowerUnOp(e)

	case ast.BinOp:
		return l.lowerBinOp(e)

	case ast.NewSingle:
		typ, err := ConvertType(e.Typ)
		if err != nil {
			return "", err
		}
		lhs := l.freshNonInner(lir.PtrType{Elem: typ})
		l.emitInst(lir.AllocSingle{Lhs: lhs, Typ: typ})
		return lhs, nil

	case ast.NewArray:
		typ, err := ConvertType(e.Typ)
		if err != nil {
			return "", err
		}
		lhs := l.freshNonInner(lir.ArrayType{Elem: typ})
		amt, err := l.lowerExp(e.Amt)
		if err != nil {
			return "", err
		}
		l.emitInst(lir.AllocArray{Lhs: lhs, Amt: amt, Typ: typ})
		l.release(amt)
		return lhs, nil

	case ast.CallExp:
		return l.lowerFunCall(e.Call, true)

	default:
		return "", errors.New("unknown expression %T", exp)
	}
}

// lowerLoad reads a non-identifier place: compute the address, then load the
// pointee.
func (l *lowerer) lowerLoad(place ast.Place) (string, error) {
	src, err := l.lowerPlace(place)
	if err != nil {
		return "", err
	}
	srcTyp, err := l.typeOf(src)
	if err != nil {
		return "", err
	}
	ptr, ok := srcTyp.(lir.PtrType)
	if !ok {
		return "", errors.Wrap(ErrTypeShapeMismatch, "load through non-pointer %v: %v", src, srcTyp)
	}
	lhs := l.freshNonInner(ptr.Elem)
	l.emitInst(lir.Load{Lhs: lhs, Src: src})
	l.release(src)
	return lhs, nil
}

func (l *lowerer) lowerUnOp(e ast.UnOp) (string, error) {
	switch e.Op {
	case ast.Neg:
		// Negation of a literal folds into the constant pool.
		if num, ok := e.Exp.(ast.Num); ok {
			return l.constVar(-num.Value), nil
		}
		lhs := l.freshNonInner(lir.IntType{})
		zero := l.constVar(0)
		x, err := l.lowerExp(e.Exp)
		if err != nil {
			return "", err
		}
		l.emitInst(lir.Arith{Lhs: lhs, Op: lir.Sub, Left: zero, Right: x})
		l.release(x)
		return lhs, nil

	case ast.Not:
		return l.lowerExp(ast.BinOp{Op: ast.Eq, Left: e.Exp, Right: ast.Num{Value: 0}})

	default:
		return "", errors.New("unknown unary operator %v", e.Op)
	}
}

var arithOps = map[ast.BinaryOp]lir.ArithOp{
	ast.Add: lir.Add,
	ast.Sub: lir.Sub,
	ast.Mul: lir.Mul,
	ast.Div: lir.Div,
}

var relOps = map[ast.BinaryOp]lir.RelOp{
	ast.Eq:    lir.Eq,
	ast.NotEq: lir.NotEq,
	ast.Lt:    lir.Lt,
	ast.Lte:   lir.Lte,
	ast.Gt:    lir.Gt,
	ast.Gte:   lir.Gte,
}

func (l *lowerer) lowerBinOp(e ast.BinOp) (string, error) {
	if op, ok := arithOps[e.Op]; ok {
		left, err := l.lowerExp(e.Left)
		if err != nil {
			return "", err
		}
		right, err := l.lowerExp(e.Right)
		if err != nil {
			return "", err
		}
		lhs := l.freshNonInner(lir.IntType{})
		l.emitInst(lir.Arith{Lhs: lhs, Op: op, Left: left, Right: right})
		l.release(left, right)
		return lhs, nil
	}

	if op, ok := relOps[e.Op]; ok {
		left, err := l.lowerExp(e.Left)
		if err != nil {
			return "", err
		}
		right, err := l.lowerExp(e.Right)
		if err != nil {
			return "", err
		}
		lhs := l.freshNonInner(lir.IntType{})
		l.emitInst(lir.Cmp{Lhs: lhs, Op: op, Left: left, Right: right})
		l.release(left, right)
		return lhs, nil
	}

	switch e.Op {
	case ast.And:
		// a and b == a ? b : 0, short-circuiting to 0 on a false left
		// operand.
		return l.lowerSelect(e.Left, e.Right, ast.Num{Value: 0}, "and_true", "and_false", "and_end")
	case ast.Or:
		return l.lowerOr(e)
	default:
		return "", errors.New("unknown binary operator %v", e.Op)
	}
}

// lowerSelect lowers the conditional expression. The result starts out as
// __NULL and is allocated lazily, typed by whichever branch first produces a
// non-null value: a fresh temporary of type nil would be unusable in a
// context demanding a concrete pointer type, while leaving the result as
// __NULL on an all-nil branch matches the default value of pointer locals.
func (l *lowerer) lowerSelect(guard, tt, ff ast.Exp, ttPrefix, ffPrefix, endPrefix string) (string, error) {
	ttLabel := l.newLabel(ttPrefix)
	ffLabel := l.newLabel(ffPrefix)
	endLabel := l.newLabel(endPrefix)

	x := lir.NullName

	y, err := l.lowerExp(guard)
	if err != nil {
		return "", err
	}
	l.emitTerm(lir.Branch{Guard: y, TT: ttLabel, FF: ffLabel})
	l.emitLabel(ttLabel)
	l.release(y)

	z, err := l.lowerExp(tt)
	if err != nil {
		return "", err
	}
	if z != lir.NullName {
		zTyp, err := l.typeOf(z)
		if err != nil {
			return "", err
		}
		x = l.freshNonInner(zTyp)
		l.emitInst(lir.Copy{Lhs: x, Src: z})
	}
	l.release(z)
	l.emitTerm(lir.Jump{Target: endLabel})
	l.emitLabel(ffLabel)

	w, err := l.lowerExp(ff)
	if err != nil {
		return "", err
	}
	if w != lir.NullName {
		if x == lir.NullName {
			wTyp, err := l.typeOf(w)
			if err != nil {
				return "", err
			}
			x = l.freshNonInner(wTyp)
		}
		l.emitInst(lir.Copy{Lhs: x, Src: w})
	}
	l.release(w)
	l.emitTerm(lir.Jump{Target: endLabel})
	l.emitLabel(endLabel)

	return x, nil
}

// lowerOr short-circuits: the left value is copied into the result and
// branches straight to the end when truthy; only when it is falsy is the
// right operand evaluated and copied into the same result.
func (l *lowerer) lowerOr(e ast.BinOp) (string, error) {
	ffLabel := l.newLabel("or_false")
	endLabel := l.newLabel("or_end")

	x, err := l.lowerExp(e.Left)
	if err != nil {
		return "", err
	}
	y := l.freshNonInner(lir.IntType{})
	l.emitInst(lir.Copy{Lhs: y, Src: x})
	l.emitTerm(lir.Branch{Guard: y, TT: endLabel, FF: ffLabel})
	l.emitLabel(ffLabel)
	l.release(x)

	z, err := l.lowerExp(e.Right)
	if err != nil {
		return "", err
	}
	l.emitInst(lir.Copy{Lhs: y, Src: z})
	l.release(z)
	l.emitTerm(lir.Jump{Target: endLabel})
	l.emitLabel(endLabel)

	return y, nil
}

// lowerFunCall lowers a call in statement or expression position. Arguments
// are evaluated right-to-left but passed to the call in source order.
func (l *lowerer) lowerFunCall(call *ast.FunCall, wantResult bool) (string, error) {
	args := make([]string, len(call.Args))
	for i := len(call.Args) - 1; i >= 0; i-- {
		x, err := l.lowerExp(call.Args[i])
		if err != nil {
			return "", err
		}
		args[i] = x
	}

	callee, err := l.lowerExp(call.Callee)
	if err != nil {
		return "", err
	}

	lhs := ""
	if wantResult {
		calleeTyp, err := l.typeOf(callee)
		if err != nil {
			return "", err
		}
		ret, err := returnTypeOf(calleeTyp)
		if err != nil {
			return "", errors.Wrap(err, "callee %v", callee)
		}
		lhs = l.freshNonInner(ret)
	}

	l.emitInst(lir.Call{Lhs: lhs, Callee: callee, Args: args})
	l.release(append(args, callee)...)
	return lhs, nil
}

// returnTypeOf unwraps Fn(_, R) or Ptr(Fn(_, R)) to R.
func returnTypeOf(typ lir.Type) (lir.Type, error) {
	switch t := typ.(type) {
	case lir.FnType:
		return t.Ret, nil
	case lir.PtrType:
		if fn, ok := t.Elem.(lir.FnType); ok {
			return fn.Ret, nil
		}
	}
	return nil, errors.Wrap(ErrTypeShapeMismatch, "call through non-function type %v", typ)
}
