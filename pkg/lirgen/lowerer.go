package lirgen

import (
	"fmt"
	"strconv"

	"tlog.app/go/errors"

	"github.com/cflat-lang/cflatc/pkg/ast"
	"github.com/cflat-lang/cflatc/pkg/lir"
)

// A translation item is a label, an instruction, or a terminator. The
// lowerer first produces a flat vector of these, then slices it into basic
// blocks.
type tvItem interface {
	implTvItem()
}

type tvLabel struct {
	Name string
}

type tvInst struct {
	Inst lir.Inst
}

type tvTerm struct {
	Term lir.Term
}

func (tvLabel) implTvItem() {}
func (tvInst) implTvItem()  {}
func (tvTerm) implTvItem()  {}

// lowerer holds the per-function translation state.
type lowerer struct {
	prog *lir.Program
	fun  *lir.Function

	tv []tvItem

	labelCounter int
	tmpCounter   int

	// Index in tv at which the next on-demand Const is inserted. Starts just
	// after the entry label so constants cluster at the top of the entry
	// block in first-use order.
	constInsertPos int

	loopHdrStack []string
	loopEndStack []string
}

func newLowerer(prog *lir.Program, fun *lir.Function) *lowerer {
	return &lowerer{
		prog:           prog,
		fun:            fun,
		constInsertPos: 1,
	}
}

// lowerFunction translates one function body: entry label, statements,
// implicit return if the tail lacks one, then CFG construction.
func (l *lowerer) lowerFunction(fn *ast.FunctionDef) error {
	l.emitLabel(l.fun.EntryLabel())

	for _, s := range fn.Stmts {
		if err := l.lowerStmt(s); err != nil {
			return err
		}
	}

	if !l.endsWithRet() {
		l.emitTerm(lir.Ret{})
	}

	return l.buildCFG()
}

// endsWithRet reports whether the translation vector, ignoring trailing
// labels, ends with a Ret terminator.
func (l *lowerer) endsWithRet() bool {
	for i := len(l.tv) - 1; i >= 0; i-- {
		switch item := l.tv[i].(type) {
		case tvLabel:
			continue
		case tvTerm:
			_, ok := item.Term.(lir.Ret)
			return ok
		default:
			return false
		}
	}
	return false
}

func (l *lowerer) emitLabel(name string) {
	l.tv = append(l.tv, tvLabel{Name: name})
}

func (l *lowerer) emitInst(inst lir.Inst) {
	l.tv = append(l.tv, tvInst{Inst: inst})
}

func (l *lowerer) emitTerm(term lir.Term) {
	l.tv = append(l.tv, tvTerm{Term: term})
}

// newLabel mints a fresh label from a shared per-function counter, so label
// numbers reflect overall creation order (if_true0, if_false1, if_end2, ...).
func (l *lowerer) newLabel(prefix string) string {
	name := prefix + strconv.Itoa(l.labelCounter)
	l.labelCounter++
	return name
}

// freshNonInner mints a _tmp<N> local of the given type.
func (l *lowerer) freshNonInner(typ lir.Type) string {
	name := "_tmp" + strconv.Itoa(l.tmpCounter)
	l.tmpCounter++
	l.fun.Locals[name] = typ
	return name
}

// freshInner mints an _inner<N> local for interior pointers (gfp/gep
// results). Both families share one counter.
func (l *lowerer) freshInner(typ lir.Type) string {
	name := "_inner" + strconv.Itoa(l.tmpCounter)
	l.tmpCounter++
	l.fun.Locals[name] = typ
	return name
}

// constVar returns the dedicated local for an integer literal, materializing
// it on first use with a Const instruction spliced in at constInsertPos.
func (l *lowerer) constVar(n int64) string {
	name := constName(n)
	if _, ok := l.fun.Locals[name]; ok {
		return name
	}
	l.fun.Locals[name] = lir.IntType{}

	item := tvInst{Inst: lir.Const{Lhs: name, Val: n}}
	l.tv = append(l.tv, nil)
	copy(l.tv[l.constInsertPos+1:], l.tv[l.constInsertPos:])
	l.tv[l.constInsertPos] = item
	l.constInsertPos++

	return name
}

func constName(n int64) string {
	if n < 0 {
		return fmt.Sprintf("_const_n%d", -n)
	}
	return fmt.Sprintf("_const_%d", n)
}

// release hints that the given variables are no longer live. Reusing
// released temporaries is a permitted optimization we do not take: fresh
// names stay monotonic, matching the reference output.
func (l *lowerer) release(vars ...string) {
	_ = vars
}

// typeOf resolves a variable's type: function locals first, then the
// program's funptrs, then externs. __NULL types as nil.
func (l *lowerer) typeOf(v string) (lir.Type, error) {
	if t, ok := l.fun.Locals[v]; ok {
		return t, nil
	}
	if t, ok := l.prog.Funptrs[v]; ok {
		return t, nil
	}
	if t, ok := l.prog.Externs[v]; ok {
		return t, nil
	}
	if v == lir.NullName {
		return lir.NilType{}, nil
	}
	return nil, errors.Wrap(ErrUnknownIdentifier, "%v", v)
}
