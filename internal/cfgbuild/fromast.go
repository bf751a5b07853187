package cfgbuild

import (
	"bytes"
	"go/ast"
	"go/printer"
	"go/token"
	"strconv"

	"mirage/internal/cfgmodel"
)

// noBlock is the sentinel "no open block" marker used while lowering a
// statement list whose preceding branch was exhaustive (every arm already
// terminated).
const noBlock = cfgmodel.BlockID(-1)

// astBuilder accumulates BlockListEntry values while lowering one
// function's statement tree. Blocks are appended in creation order, so a
// block's index in b.blocks is its BlockID.
type astBuilder struct {
	fset *token.FileSet
	file string
	blks []cfgmodel.BlockListEntry
}

func (b *astBuilder) newBlock(pos token.Pos) cfgmodel.BlockID {
	id := cfgmodel.BlockID(len(b.blks))
	line := 0
	if b.fset != nil && pos.IsValid() {
		line = b.fset.Position(pos).Line
	}
	b.blks = append(b.blks, cfgmodel.BlockListEntry{ID: id, SourceFile: b.file, SourceLine: line})
	return id
}

func (b *astBuilder) emit(id cfgmodel.BlockID, text string) {
	b.blks[id].Statements = append(b.blks[id].Statements, text)
}

func (b *astBuilder) setTerm(id cfgmodel.BlockID, t cfgmodel.Terminator) {
	b.blks[id].Terminator = t
}

func (b *astBuilder) source(n ast.Node) string {
	if n == nil {
		return ""
	}
	var buf bytes.Buffer
	if err := printer.Fprint(&buf, b.fset, n); err != nil {
		return ""
	}
	return buf.String()
}

// FromAST builds a BlockList for decl by lowering its body's statement
// sequence into basic blocks, per the leader algorithm of spec.md §4.1: a
// new block starts at the entry of every branch/loop consequent and at the
// point immediately following one, and the same second-pass wiring rules
// spec.md §4.1 specifies (if: condition→then TrueBranch, condition→else
// FalseBranch, then/else→after Fallthrough or Exit; loop: header→body
// TrueBranch, body→header LoopBack, header→after LoopExit) connect the
// resulting blocks. Used when a function has no SSA counterpart.
func FromAST(decl *ast.FuncDecl, fset *token.FileSet) cfgmodel.BlockList {
	if decl == nil || decl.Body == nil {
		return nil
	}
	file := ""
	if fset != nil {
		file = fset.Position(decl.Pos()).Filename
	}
	b := &astBuilder{fset: fset, file: file}

	entry := b.newBlock(decl.Body.Pos())
	open := b.lowerStmtList(entry, decl.Body.List)
	for _, id := range open {
		b.setTerm(id, cfgmodel.Terminator{Kind: cfgmodel.TermReturn})
	}
	return cfgmodel.BlockList(b.blks)
}

// lowerStmtList lowers stmts starting at cur, merging any blocks left open
// by one statement before lowering the next, and returns the blocks left
// open (no terminator yet) after the last statement — nil if the list ends
// in an exhaustive branch, meaning nothing after it is reachable.
func (b *astBuilder) lowerStmtList(cur cfgmodel.BlockID, stmts []ast.Stmt) []cfgmodel.BlockID {
	open := []cfgmodel.BlockID{cur}
	for _, stmt := range stmts {
		merged := b.mergeOpen(open, stmt.Pos())
		if merged == noBlock {
			return nil
		}
		open = b.lowerStmt(merged, stmt)
	}
	return open
}

// mergeOpen collapses more than one open exit (left by a prior if/switch
// with multiple surviving arms) into a single block wired to all of them by
// Fallthrough edges, so the next statement has exactly one place to append
// to. A single open exit is returned unchanged; zero means the preceding
// branch was exhaustive.
func (b *astBuilder) mergeOpen(open []cfgmodel.BlockID, pos token.Pos) cfgmodel.BlockID {
	switch len(open) {
	case 0:
		return noBlock
	case 1:
		return open[0]
	default:
		merge := b.newBlock(pos)
		for _, id := range open {
			b.setTerm(id, cfgmodel.Terminator{Kind: cfgmodel.TermGoto, GotoTarget: merge})
		}
		return merge
	}
}

func (b *astBuilder) lowerStmt(cur cfgmodel.BlockID, stmt ast.Stmt) []cfgmodel.BlockID {
	switch s := stmt.(type) {
	case *ast.IfStmt:
		return b.lowerIf(cur, s)
	case *ast.ForStmt:
		return b.lowerFor(cur, s)
	case *ast.RangeStmt:
		return b.lowerRange(cur, s)
	case *ast.SwitchStmt:
		return b.lowerSwitch(cur, s)
	case *ast.TypeSwitchStmt:
		return b.lowerTypeSwitch(cur, s)
	case *ast.ReturnStmt:
		b.emit(cur, b.source(s))
		b.setTerm(cur, cfgmodel.Terminator{Kind: cfgmodel.TermReturn})
		return nil
	case *ast.BranchStmt:
		// return/break/continue all classify as Exit+Return per spec.md
		// §4.1 — the fallback producer does not track loop/switch exit
		// targets for break/continue, only the primary SSA producer does.
		b.emit(cur, b.source(s))
		b.setTerm(cur, cfgmodel.Terminator{Kind: cfgmodel.TermReturn})
		return nil
	case *ast.BlockStmt:
		return b.lowerStmtList(cur, s.List)
	case *ast.ExprStmt:
		if isPanicCall(s.X) {
			b.emit(cur, b.source(s))
			b.setTerm(cur, cfgmodel.Terminator{Kind: cfgmodel.TermAbort})
			return nil
		}
		b.emit(cur, b.source(s))
		return []cfgmodel.BlockID{cur}
	default:
		b.emit(cur, b.source(s))
		return []cfgmodel.BlockID{cur}
	}
}

func isPanicCall(x ast.Expr) bool {
	call, ok := x.(*ast.CallExpr)
	if !ok {
		return false
	}
	id, ok := call.Fun.(*ast.Ident)
	return ok && id.Name == "panic"
}

// lowerIf lowers an if/else(-if) chain. cur becomes the condition block,
// carrying a two-arm SwitchInt: the explicit then-target (TrueBranch) and
// an else-target (FalseBranch) that is always materialized, even when
// stmt.Else is nil, so the no-else fallthrough path is never left
// disconnected from the rest of the function.
func (b *astBuilder) lowerIf(cur cfgmodel.BlockID, stmt *ast.IfStmt) []cfgmodel.BlockID {
	b.emit(cur, "if "+b.source(stmt.Cond))

	thenEntry := b.newBlock(stmt.Body.Pos())
	thenExits := b.lowerStmtList(thenEntry, stmt.Body.List)

	var elseExits []cfgmodel.BlockID
	elseEntry := b.newBlock(stmt.Pos())
	switch e := stmt.Else.(type) {
	case nil:
		elseExits = []cfgmodel.BlockID{elseEntry}
	case *ast.BlockStmt:
		elseExits = b.lowerStmtList(elseEntry, e.List)
	case *ast.IfStmt:
		elseExits = b.lowerIf(elseEntry, e)
	default:
		elseExits = []cfgmodel.BlockID{elseEntry}
	}

	b.setTerm(cur, cfgmodel.Terminator{
		Kind: cfgmodel.TermSwitchInt,
		Targets: []cfgmodel.SwitchTarget{
			{Label: "1", Block: thenEntry},
			{Label: "otherwise", Block: elseEntry},
		},
	})

	return append(thenExits, elseExits...)
}

// lowerFor lowers a classic for loop. Init (if present) runs once in cur,
// which then falls through to a dedicated header block so the loop body's
// back-edge re-enters the header, not cur, keeping Init from re-executing
// on each iteration.
func (b *astBuilder) lowerFor(cur cfgmodel.BlockID, stmt *ast.ForStmt) []cfgmodel.BlockID {
	if stmt.Init != nil {
		b.emit(cur, b.source(stmt.Init))
	}
	header := b.newBlock(stmt.Pos())
	b.setTerm(cur, cfgmodel.Terminator{Kind: cfgmodel.TermGoto, GotoTarget: header})

	if stmt.Cond != nil {
		b.emit(header, "for "+b.source(stmt.Cond))
	} else {
		b.emit(header, "for {}")
	}

	bodyEntry := b.newBlock(stmt.Body.Pos())
	bodyExits := b.lowerStmtList(bodyEntry, stmt.Body.List)

	loopBack := header
	if stmt.Post != nil {
		post := b.newBlock(stmt.Post.Pos())
		b.emit(post, b.source(stmt.Post))
		b.setTerm(post, cfgmodel.Terminator{Kind: cfgmodel.TermGoto, GotoTarget: header})
		loopBack = post
	}
	for _, id := range bodyExits {
		b.setTerm(id, cfgmodel.Terminator{Kind: cfgmodel.TermGoto, GotoTarget: loopBack})
	}

	if stmt.Cond == nil {
		// an unconditional `for {}` has no structural exit; whatever the Go
		// source writes after it is unreachable in this model (break is
		// approximated as Return, per lowerStmt's *ast.BranchStmt case).
		return nil
	}

	after := b.newBlock(stmt.End())
	b.setTerm(header, cfgmodel.Terminator{
		Kind: cfgmodel.TermSwitchInt,
		Targets: []cfgmodel.SwitchTarget{
			{Label: "1", Block: bodyEntry},
			{Label: "otherwise", Block: after},
		},
	})
	return []cfgmodel.BlockID{after}
}

// lowerRange lowers a range loop; cur doubles as the header, since a range
// clause needs no separate once-only init block.
func (b *astBuilder) lowerRange(cur cfgmodel.BlockID, stmt *ast.RangeStmt) []cfgmodel.BlockID {
	b.emit(cur, "range "+b.source(stmt.X))

	bodyEntry := b.newBlock(stmt.Body.Pos())
	bodyExits := b.lowerStmtList(bodyEntry, stmt.Body.List)
	for _, id := range bodyExits {
		b.setTerm(id, cfgmodel.Terminator{Kind: cfgmodel.TermGoto, GotoTarget: cur})
	}

	after := b.newBlock(stmt.End())
	b.setTerm(cur, cfgmodel.Terminator{
		Kind: cfgmodel.TermSwitchInt,
		Targets: []cfgmodel.SwitchTarget{
			{Label: "1", Block: bodyEntry},
			{Label: "otherwise", Block: after},
		},
	})
	return []cfgmodel.BlockID{after}
}

// lowerSwitch lowers an expression switch into a multi-way SwitchInt: one
// target per case (labelled with the clause's index as a decimal string, or
// "otherwise" for a default or absent-default fallback), classified as a
// Match pattern by cfganalysis.ClassifyBranch whenever three or more arms
// result.
func (b *astBuilder) lowerSwitch(cur cfgmodel.BlockID, stmt *ast.SwitchStmt) []cfgmodel.BlockID {
	if stmt.Init != nil {
		b.emit(cur, b.source(stmt.Init))
	}
	if stmt.Tag != nil {
		b.emit(cur, "switch "+b.source(stmt.Tag))
	} else {
		b.emit(cur, "switch")
	}

	targets, exits, hasDefault := b.lowerCaseClauses(stmt.Body.List)
	if !hasDefault {
		after := b.newBlock(stmt.End())
		targets = append(targets, cfgmodel.SwitchTarget{Label: "otherwise", Block: after})
		exits = append(exits, after)
	}
	b.setTerm(cur, cfgmodel.Terminator{Kind: cfgmodel.TermSwitchInt, Targets: targets})
	return exits
}

func (b *astBuilder) lowerTypeSwitch(cur cfgmodel.BlockID, stmt *ast.TypeSwitchStmt) []cfgmodel.BlockID {
	if stmt.Init != nil {
		b.emit(cur, b.source(stmt.Init))
	}
	b.emit(cur, "switch "+b.source(stmt.Assign))

	targets, exits, hasDefault := b.lowerCaseClauses(stmt.Body.List)
	if !hasDefault {
		after := b.newBlock(stmt.End())
		targets = append(targets, cfgmodel.SwitchTarget{Label: "otherwise", Block: after})
		exits = append(exits, after)
	}
	b.setTerm(cur, cfgmodel.Terminator{Kind: cfgmodel.TermSwitchInt, Targets: targets})
	return exits
}

func (b *astBuilder) lowerCaseClauses(clauses []ast.Stmt) ([]cfgmodel.SwitchTarget, []cfgmodel.BlockID, bool) {
	var targets []cfgmodel.SwitchTarget
	var exits []cfgmodel.BlockID
	hasDefault := false

	for i, clause := range clauses {
		cc, ok := clause.(*ast.CaseClause)
		if !ok {
			continue
		}
		label := "otherwise"
		if len(cc.List) > 0 {
			label = strconv.Itoa(i)
		} else {
			hasDefault = true
		}
		entry := b.newBlock(cc.Pos())
		caseExits := b.lowerStmtList(entry, cc.Body)
		targets = append(targets, cfgmodel.SwitchTarget{Label: label, Block: entry})
		exits = append(exits, caseExits...)
	}
	return targets, exits, hasDefault
}
