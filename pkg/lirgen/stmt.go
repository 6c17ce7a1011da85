// Statement lowering. Each statement form appends labels, instructions, and
// terminators to the translation vector; control flow is expressed with
// fresh labels and the loop-label stacks.
package lirgen

import (
	"tlog.app/go/errors"

	"github.com/cflat-lang/cflatc/pkg/ast"
	"github.com/cflat-lang/cflatc/pkg/lir"
)

func (l *lowerer) lowerStmt(stmt ast.Stmt) error {
	switch s := stmt.(type) {
	case ast.Stmts:
		for _, inner := range s.List {
			if err := l.lowerStmt(inner); err != nil {
				return err
			}
		}
		return nil

	case ast.Assign:
		return l.lowerAssign(s)

	case ast.CallStmt:
		_, err := l.lowerFunCall(s.Call, false)
		return err

	case ast.If:
		return l.lowerIf(s)

	case ast.While:
		return l.lowerWhile(s)

	case ast.Break:
		if len(l.loopEndStack) == 0 {
			return ErrBreakOutsideLoop
		}
		l.emitTerm(lir.Jump{Target: l.loopEndStack[len(l.loopEndStack)-1]})
		return nil

	case ast.Continue:
		if len(l.loopHdrStack) == 0 {
			return ErrContinueOutsideLoop
		}
		l.emitTerm(lir.Jump{Target: l.loopHdrStack[len(l.loopHdrStack)-1]})
		return nil

	case ast.Return:
		if s.Exp == nil {
			l.emitTerm(lir.Ret{})
			return nil
		}
		x, err := l.lowerExp(s.Exp)
		if err != nil {
			return err
		}
		l.emitTerm(lir.Ret{Val: x})
		l.release(x)
		return nil

	default:
		return errors.New("unknown statement %T", stmt)
	}
}

// lowerAssign writes through a name with Copy, through any other place with
// Store.
func (l *lowerer) lowerAssign(s ast.Assign) error {
	if id, ok := s.Place.(ast.Id); ok {
		x, err := l.lowerExp(s.Exp)
		if err != nil {
			return err
		}
		l.emitInst(lir.Copy{Lhs: id.Name, Src: x})
		l.release(x)
		return nil
	}

	p, err := l.lowerPlace(s.Place)
	if err != nil {
		return err
	}
	x, err := l.lowerExp(s.Exp)
	if err != nil {
		return err
	}
	l.emitInst(lir.Store{Dst: p, Src: x})
	l.release(p, x)
	return nil
}

// lowerIf emits both arms with an unconditional jump to the join label after
// each. The jump after the then-arm is emitted even if the arm already
// returned; the resulting dead block is pruned during CFG construction.
func (l *lowerer) lowerIf(s ast.If) error {
	tt := l.newLabel("if_true")
	ff := l.newLabel("if_false")
	end := l.newLabel("if_end")

	guard, err := l.lowerExp(s.Guard)
	if err != nil {
		return err
	}
	l.emitTerm(lir.Branch{Guard: guard, TT: tt, FF: ff})
	l.emitLabel(tt)
	l.release(guard)

	for _, inner := range s.Then {
		if err := l.lowerStmt(inner); err != nil {
			return err
		}
	}
	l.emitTerm(lir.Jump{Target: end})
	l.emitLabel(ff)

	for _, inner := range s.Else {
		if err := l.lowerStmt(inner); err != nil {
			return err
		}
	}
	l.emitTerm(lir.Jump{Target: end})
	l.emitLabel(end)
	return nil
}

func (l *lowerer) lowerWhile(s ast.While) error {
	hdr := l.newLabel("loop_hdr")
	body := l.newLabel("loop_body")
	end := l.newLabel("loop_end")

	l.loopHdrStack = append(l.loopHdrStack, hdr)
	l.loopEndStack = append(l.loopEndStack, end)

	l.emitTerm(lir.Jump{Target: hdr})
	l.emitLabel(hdr)

	guard, err := l.lowerExp(s.Guard)
	if err != nil {
		return err
	}
	l.emitTerm(lir.Branch{Guard: guard, TT: body, FF: end})
	l.release(guard)
	l.emitLabel(body)

	for _, inner := range s.Body {
		if err := l.lowerStmt(inner); err != nil {
			return err
		}
	}
	l.emitTerm(lir.Jump{Target: hdr})
	l.emitLabel(end)

	l.loopHdrStack = l.loopHdrStack[:len(l.loopHdrStack)-1]
	l.loopEndStack = l.loopEndStack[:len(l.loopEndStack)-1]
	return nil
}
