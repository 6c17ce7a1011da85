// CFG construction: a single linear scan slices the translation vector into
// labeled basic blocks, then blocks unreachable from the entry block are
// pruned.
package lirgen

import (
	"tlog.app/go/errors"

	"github.com/cflat-lang/cflatc/pkg/lir"
)

func (l *lowerer) buildCFG() error {
	var current *lir.BasicBlock

	for _, item := range l.tv {
		switch it := item.(type) {
		case tvLabel:
			bb, ok := l.fun.Body[it.Name]
			if !ok {
				bb = &lir.BasicBlock{Label: it.Name}
				l.fun.Body[it.Name] = bb
			}
			current = bb

		case tvInst:
			if current == nil {
				// Constants spliced in ahead of the first label land in the
				// entry block.
				current = l.fun.Body[l.fun.EntryLabel()]
				if current == nil {
					return errors.Wrap(ErrMalformedBlock, "instruction before entry label")
				}
			}
			current.Insts = append(current.Insts, it.Inst)

		case tvTerm:
			if current == nil {
				// Straight-line code after a break/continue/return emits a
				// trailing jump with no open block; it is dead and dropped.
				continue
			}
			current.Term = it.Term
			current = nil
		}
	}

	l.pruneUnreachable()

	for label, bb := range l.fun.Body {
		if bb.Term == nil {
			return errors.Wrap(ErrMalformedBlock, "block %v has no terminator", label)
		}
	}
	return nil
}

// pruneUnreachable removes blocks not reachable from the entry block by
// following jump and branch targets.
func (l *lowerer) pruneUnreachable() {
	entry := l.fun.EntryLabel()
	reachable := map[string]bool{}

	work := []string{entry}
	for len(work) > 0 {
		label := work[0]
		work = work[1:]
		if reachable[label] {
			continue
		}
		bb, ok := l.fun.Body[label]
		if !ok {
			continue
		}
		reachable[label] = true
		switch t := bb.Term.(type) {
		case lir.Jump:
			work = append(work, t.Target)
		case lir.Branch:
			work = append(work, t.TT, t.FF)
		}
	}

	for label := range l.fun.Body {
		if !reachable[label] {
			delete(l.fun.Body, label)
		}
	}
}
