// Package cfgbuild holds Mirage's two interchangeable Cfg producers: an SSA
// walker (the primary IR producer, used whenever go/packages was able to
// build SSA for a function) and a go/ast leader-based fallback (used for
// syntax Mirage could parse but not type-check into SSA). Both emit the same
// cfgmodel.BlockList shape, per spec.md §4.1.
package cfgbuild

import (
	"golang.org/x/tools/go/ssa"

	"mirage/internal/cfgmodel"
)

// FromSSA builds a BlockList from a built SSA function, one cfgmodel block
// per SSA basic block. ssa.BasicBlock.Index is already the dense, zero-based
// id BlockList requires, and fn.Blocks is already in that index order, so
// this is a straight walk — mirroring the teacher's ExtractCFGAndDFG, which
// addresses blocks the same way via BlockID(funcID, i).
func FromSSA(fn *ssa.Function) cfgmodel.BlockList {
	if fn == nil || len(fn.Blocks) == 0 {
		return nil
	}
	list := make(cfgmodel.BlockList, 0, len(fn.Blocks))
	for _, b := range fn.Blocks {
		list = append(list, blockFromSSA(fn, b))
	}
	return list
}

func blockFromSSA(fn *ssa.Function, b *ssa.BasicBlock) cfgmodel.BlockListEntry {
	stmts := make([]string, 0, len(b.Instrs))
	for _, instr := range b.Instrs {
		stmts = append(stmts, instr.String())
	}

	file, line := "", 0
	if len(b.Instrs) > 0 && fn.Prog != nil {
		if pos := b.Instrs[0].Pos(); pos.IsValid() {
			p := fn.Prog.Fset.Position(pos)
			file, line = p.Filename, p.Line
		}
	}

	return cfgmodel.BlockListEntry{
		ID:         cfgmodel.BlockID(b.Index),
		Statements: stmts,
		Terminator: terminatorFromSSA(b),
		SourceFile: file,
		SourceLine: line,
	}
}

// terminatorFromSSA classifies a block's terminator from its last
// instruction, per SPEC_FULL.md §4.1: *ssa.If becomes a two-arm SwitchInt
// (true successor first, the IfElse convention also honored by the
// go/ast fallback); *ssa.Return becomes Return; *ssa.Panic becomes Abort; a
// block ending in an unconditional *ssa.Jump becomes Goto; a block whose
// last instruction is a call with no successors (the callee is statically
// known never to return, or SSA construction simply never added a
// fallthrough) becomes Call with no modeled successors; an empty block with
// no successors is Unreachable.
func terminatorFromSSA(b *ssa.BasicBlock) cfgmodel.Terminator {
	if len(b.Instrs) == 0 {
		return cfgmodel.Terminator{Kind: cfgmodel.TermUnreachable}
	}
	last := b.Instrs[len(b.Instrs)-1]

	switch last.(type) {
	case *ssa.If:
		if len(b.Succs) == 2 {
			trueID := cfgmodel.BlockID(b.Succs[0].Index)
			falseID := cfgmodel.BlockID(b.Succs[1].Index)
			return cfgmodel.Terminator{
				Kind: cfgmodel.TermSwitchInt,
				Targets: []cfgmodel.SwitchTarget{
					{Label: "1", Block: trueID},
					{Label: "otherwise", Block: falseID},
				},
			}
		}
	case *ssa.Return:
		return cfgmodel.Terminator{Kind: cfgmodel.TermReturn}
	case *ssa.Panic:
		return cfgmodel.Terminator{Kind: cfgmodel.TermAbort}
	case *ssa.Jump:
		if len(b.Succs) == 1 {
			return cfgmodel.Terminator{Kind: cfgmodel.TermGoto, GotoTarget: cfgmodel.BlockID(b.Succs[0].Index)}
		}
	}

	if len(b.Succs) == 0 {
		if _, ok := last.(ssa.CallInstruction); ok {
			return cfgmodel.Terminator{Kind: cfgmodel.TermCall}
		}
		return cfgmodel.Terminator{Kind: cfgmodel.TermUnreachable}
	}
	if len(b.Succs) == 1 {
		return cfgmodel.Terminator{Kind: cfgmodel.TermGoto, GotoTarget: cfgmodel.BlockID(b.Succs[0].Index)}
	}
	return cfgmodel.Terminator{Kind: cfgmodel.TermUnreachable}
}
