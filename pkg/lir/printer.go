// Package lir provides textual emission of LIR programs.
// The output order is deterministic: structs, externs, funptrs, then
// functions, each section lexicographic by name.
package lir

import (
	"fmt"
	"io"
	"sort"
)

// Printer outputs an LIR program in its textual form.
type Printer struct {
	w io.Writer
}

// NewPrinter creates a new LIR printer.
func NewPrinter(w io.Writer) *Printer {
	return &Printer{w: w}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// PrintProgram prints a complete LIR program.
func (p *Printer) PrintProgram(prog *Program) {
	for _, name := range sortedKeys(prog.Structs) {
		s := prog.Structs[name]
		fmt.Fprintf(p.w, "struct %s {\n", name)
		for _, fname := range sortedKeys(s.Fields) {
			fmt.Fprintf(p.w, "  %s: %s;\n", fname, s.Fields[fname])
		}
		fmt.Fprint(p.w, "}\n\n")
	}

	for _, name := range sortedKeys(prog.Externs) {
		fmt.Fprintf(p.w, "extern %s : %s\n", name, prog.Externs[name])
	}
	if len(prog.Externs) > 0 {
		fmt.Fprintln(p.w)
	}

	for _, name := range sortedKeys(prog.Funptrs) {
		fmt.Fprintf(p.w, "funptr %s : %s\n", name, prog.Funptrs[name])
	}
	if len(prog.Funptrs) > 0 {
		fmt.Fprintln(p.w)
	}

	for _, name := range sortedKeys(prog.Functions) {
		p.PrintFunction(prog.Functions[name])
	}
}

// PrintFunction prints a single function: header, let line with all locals,
// then the entry block followed by the remaining blocks lexicographically.
func (p *Printer) PrintFunction(fn *Function) {
	fmt.Fprintf(p.w, "fn %s(", fn.Name)
	for i, param := range fn.Params {
		if i > 0 {
			fmt.Fprint(p.w, ", ")
		}
		fmt.Fprintf(p.w, "%s: %s", param.Name, param.Typ)
	}
	fmt.Fprintf(p.w, ") -> %s {\n", fn.RetTyp)

	if len(fn.Locals) > 0 {
		fmt.Fprint(p.w, "let ")
		for i, name := range sortedKeys(fn.Locals) {
			if i > 0 {
				fmt.Fprint(p.w, ", ")
			}
			fmt.Fprintf(p.w, "%s:%s", name, fn.Locals[name])
		}
		fmt.Fprintln(p.w)
	}

	entry := fn.EntryLabel()
	labels := make([]string, 0, len(fn.Body))
	for label := range fn.Body {
		if label != entry {
			labels = append(labels, label)
		}
	}
	sort.Strings(labels)
	if _, ok := fn.Body[entry]; ok {
		labels = append([]string{entry}, labels...)
	}

	for _, label := range labels {
		bb := fn.Body[label]
		fmt.Fprintf(p.w, "\n%s:\n", label)
		for _, inst := range bb.Insts {
			p.printInst(inst)
		}
		p.printTerm(bb.Term)
	}
	fmt.Fprint(p.w, "}\n\n")
}

func (p *Printer) printInst(inst Inst) {
	fmt.Fprint(p.w, "  ")
	switch i := inst.(type) {
	case Const:
		fmt.Fprintf(p.w, "%s = $const %d", i.Lhs, i.Val)
	case Copy:
		fmt.Fprintf(p.w, "%s = $copy %s", i.Lhs, i.Src)
	case Arith:
		fmt.Fprintf(p.w, "%s = $arith %s %s %s", i.Lhs, i.Op, i.Left, i.Right)
	case Cmp:
		fmt.Fprintf(p.w, "%s = $cmp %s %s %s", i.Lhs, i.Op, i.Left, i.Right)
	case Load:
		fmt.Fprintf(p.w, "%s = $load %s", i.Lhs, i.Src)
	case Store:
		fmt.Fprintf(p.w, "$store %s %s", i.Dst, i.Src)
	case Gfp:
		fmt.Fprintf(p.w, "%s = $gfp %s, %s, %s", i.Lhs, i.Src, i.Struct, i.Field)
	case Gep:
		fmt.Fprintf(p.w, "%s = $gep %s %s [%t]", i.Lhs, i.Src, i.Idx, i.Checked)
	case AllocSingle:
		fmt.Fprintf(p.w, "%s = $alloc_single %s", i.Lhs, i.Typ)
	case AllocArray:
		fmt.Fprintf(p.w, "%s = $alloc_array %s %s", i.Lhs, i.Amt, i.Typ)
	case Call:
		if i.Lhs != "" {
			fmt.Fprintf(p.w, "%s = ", i.Lhs)
		}
		fmt.Fprintf(p.w, "$call %s", i.Callee)
		for _, a := range i.Args {
			fmt.Fprintf(p.w, ", %s", a)
		}
	default:
		fmt.Fprintf(p.w, "??? %T", inst)
	}
	fmt.Fprintln(p.w)
}

func (p *Printer) printTerm(term Term) {
	fmt.Fprint(p.w, "  ")
	switch t := term.(type) {
	case Jump:
		fmt.Fprintf(p.w, "$jump %s", t.Target)
	case Branch:
		fmt.Fprintf(p.w, "$branch %s %s %s", t.Guard, t.TT, t.FF)
	case Ret:
		fmt.Fprint(p.w, "$ret")
		if t.Val != "" {
			fmt.Fprintf(p.w, " %s", t.Val)
		}
	default:
		fmt.Fprintf(p.w, "??? %T", term)
	}
	fmt.Fprintln(p.w)
}
