// Package lirgen lowers a type-checked Cflat AST into LIR.
// Lowering is two-phase: a program shell is built first (structs, externs,
// funptrs, function signatures with pre-populated locals), then each function
// body is translated into a linear vector of labels, instructions, and
// terminators and sliced into a CFG of basic blocks.
package lirgen

import (
	"tlog.app/go/errors"

	"github.com/cflat-lang/cflatc/pkg/ast"
	"github.com/cflat-lang/cflatc/pkg/lir"
)

// TranslateProgram lowers a complete program.
func TranslateProgram(prog *ast.Program) (*lir.Program, error) {
	out, err := buildShell(prog)
	if err != nil {
		return nil, err
	}

	for _, fn := range prog.Functions {
		l := newLowerer(out, out.Functions[fn.Name])
		if err := l.lowerFunction(fn); err != nil {
			return nil, errors.Wrap(err, "function %v", fn.Name)
		}
	}

	return out, nil
}

// buildShell constructs the LIR program skeleton with empty function bodies.
// Every non-main function gets a funptr entry so that indirect calls through
// its name can be typed.
func buildShell(prog *ast.Program) (*lir.Program, error) {
	out := lir.NewProgram()

	for _, s := range prog.Structs {
		if _, ok := out.Structs[s.Name]; ok {
			return nil, errors.Wrap(ErrDuplicateName, "struct %v", s.Name)
		}
		ls := &lir.Struct{Name: s.Name, Fields: make(map[string]lir.Type)}
		for _, f := range s.Fields {
			ft, err := ConvertType(f.Typ)
			if err != nil {
				return nil, errors.Wrap(err, "struct %v field %v", s.Name, f.Name)
			}
			ls.Fields[f.Name] = ft
		}
		out.Structs[s.Name] = ls
	}

	for _, e := range prog.Externs {
		if _, ok := out.Externs[e.Name]; ok {
			return nil, errors.Wrap(ErrDuplicateName, "extern %v", e.Name)
		}
		fn := lir.FnType{}
		for _, p := range e.Params {
			pt, err := ConvertType(p)
			if err != nil {
				return nil, errors.Wrap(err, "extern %v", e.Name)
			}
			fn.Params = append(fn.Params, pt)
		}
		ret, err := ConvertType(e.Ret)
		if err != nil {
			return nil, errors.Wrap(err, "extern %v", e.Name)
		}
		fn.Ret = ret
		out.Externs[e.Name] = fn
	}

	for _, fn := range prog.Functions {
		if _, ok := out.Functions[fn.Name]; ok {
			return nil, errors.Wrap(ErrDuplicateName, "function %v", fn.Name)
		}

		lf := &lir.Function{
			Name:   fn.Name,
			Locals: make(map[string]lir.Type),
			Body:   make(map[string]*lir.BasicBlock),
		}

		sig := lir.FnType{}
		for _, p := range fn.Params {
			pt, err := ConvertType(p.Typ)
			if err != nil {
				return nil, errors.Wrap(err, "function %v param %v", fn.Name, p.Name)
			}
			lf.Params = append(lf.Params, lir.Param{Name: p.Name, Typ: pt})
			lf.Locals[p.Name] = pt
			sig.Params = append(sig.Params, pt)
		}

		ret, err := ConvertType(fn.Ret)
		if err != nil {
			return nil, errors.Wrap(err, "function %v", fn.Name)
		}
		lf.RetTyp = ret
		sig.Ret = ret

		for _, l := range fn.Locals {
			lt, err := ConvertType(l.Typ)
			if err != nil {
				return nil, errors.Wrap(err, "function %v local %v", fn.Name, l.Name)
			}
			lf.Locals[l.Name] = lt
		}

		if fn.Name != "main" {
			out.Funptrs[fn.Name] = lir.PtrType{Elem: sig}
		}

		out.Functions[fn.Name] = lf
	}

	return out, nil
}
