package lir

import (
	"tlog.app/go/errors"
)

// NullName is the reserved identifier for the null pointer/array value. It
// may be referenced by lowered code but is defined downstream by code
// generation, so it never appears in a function's locals.
const NullName = "__NULL"

// Validate checks the structural well-formedness of a lowered function:
// every block has a terminator, every label referenced by a terminator names
// a block in the body, and every variable operand of an instruction or
// terminator is declared in locals (or is __NULL). A call's callee is not
// checked, since it may name an extern or funptr rather than a local.
func (f *Function) Validate() error {
	for label, bb := range f.Body {
		if bb.Term == nil {
			return errors.New("block %v has no terminator", label)
		}
		switch t := bb.Term.(type) {
		case Jump:
			if _, ok := f.Body[t.Target]; !ok {
				return errors.New("block %v jumps to unknown label %v", label, t.Target)
			}
		case Branch:
			if _, ok := f.Body[t.TT]; !ok {
				return errors.New("block %v branches to unknown label %v", label, t.TT)
			}
			if _, ok := f.Body[t.FF]; !ok {
				return errors.New("block %v branches to unknown label %v", label, t.FF)
			}
			if err := f.checkVar(t.Guard); err != nil {
				return errors.Wrap(err, "block %v", label)
			}
		case Ret:
			if t.Val != "" {
				if err := f.checkVar(t.Val); err != nil {
					return errors.Wrap(err, "block %v", label)
				}
			}
		}
		for _, inst := range bb.Insts {
			if err := f.checkInst(inst); err != nil {
				return errors.Wrap(err, "block %v", label)
			}
		}
	}
	return nil
}

func (f *Function) checkInst(inst Inst) error {
	var vars []string
	switch i := inst.(type) {
	case Const:
		vars = []string{i.Lhs}
	case Copy:
		vars = []string{i.Lhs, i.Src}
	case Arith:
		vars = []string{i.Lhs, i.Left, i.Right}
	case Cmp:
		vars = []string{i.Lhs, i.Left, i.Right}
	case Load:
		vars = []string{i.Lhs, i.Src}
	case Store:
		vars = []string{i.Dst, i.Src}
	case Gfp:
		vars = []string{i.Lhs, i.Src}
	case Gep:
		vars = []string{i.Lhs, i.Src, i.Idx}
	case AllocSingle:
		vars = []string{i.Lhs}
	case AllocArray:
		vars = []string{i.Lhs, i.Amt}
	case Call:
		if i.Lhs != "" {
			vars = append(vars, i.Lhs)
		}
		vars = append(vars, i.Args...)
	}
	for _, v := range vars {
		if err := f.checkVar(v); err != nil {
			return err
		}
	}
	return nil
}

func (f *Function) checkVar(v string) error {
	if v == NullName {
		return nil
	}
	if _, ok := f.Locals[v]; !ok {
		return errors.New("variable %v not declared in locals", v)
	}
	return nil
}
