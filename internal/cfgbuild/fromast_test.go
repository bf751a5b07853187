package cfgbuild

import (
	"go/ast"
	"go/parser"
	"go/token"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mirage/internal/cfgmodel"
)

func parseFunc(t *testing.T, src string) (*ast.FuncDecl, *token.FileSet) {
	t.Helper()
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, "src.go", "package p\n"+src, 0)
	require.NoError(t, err)
	for _, d := range file.Decls {
		if fn, ok := d.(*ast.FuncDecl); ok {
			return fn, fset
		}
	}
	t.Fatal("no func decl found")
	return nil, nil
}

func TestFromAST_StraightLine(t *testing.T) {
	decl, fset := parseFunc(t, `func f() { x := 1; _ = x; return }`)
	list := FromAST(decl, fset)
	cfg := Build(decl.Name.Name, list)

	require.Equal(t, 1, cfg.NumBlocks())
	assert.Equal(t, cfgmodel.TermReturn, cfg.Block(0).Terminator.Kind)
}

func TestFromAST_IfElse(t *testing.T) {
	decl, fset := parseFunc(t, `
func f(b bool) int {
	if b {
		return 1
	} else {
		return 2
	}
}`)
	list := FromAST(decl, fset)
	cfg := Build(decl.Name.Name, list)

	assert.Equal(t, cfgmodel.TermSwitchInt, cfg.Block(cfg.Entry()).Terminator.Kind)
	succs := cfg.Successors(cfg.Entry())
	require.Len(t, succs, 2)
	for _, s := range succs {
		assert.Equal(t, cfgmodel.TermReturn, cfg.Block(s).Terminator.Kind)
	}
}

func TestFromAST_IfNoElseRejoins(t *testing.T) {
	decl, fset := parseFunc(t, `
func f(b bool) {
	if b {
		doSomething()
	}
	doOther()
}`)
	list := FromAST(decl, fset)
	cfg := Build(decl.Name.Name, list)

	// both the then-arm and the implicit else must reach a shared block
	// that runs doOther().
	assert.True(t, cfg.IsMergePoint(findBlockWithStatement(cfg, "doOther()")))
}

func TestFromAST_ForLoop(t *testing.T) {
	decl, fset := parseFunc(t, `
func f() {
	for i := 0; i < 10; i++ {
		work(i)
	}
	done()
}`)
	list := FromAST(decl, fset)
	cfg := Build(decl.Name.Name, list)

	loopBack := findBlockWithStatement(cfg, "i++")
	require.NotEqual(t, cfgmodel.BlockID(-1), loopBack)

	headerFound := false
	for _, id := range cfg.Blocks() {
		for _, s := range cfg.Successors(id) {
			if et, ok := cfg.EdgeKind(id, s); ok && et == cfgmodel.EdgeLoopBack {
				headerFound = true
			}
		}
	}
	assert.True(t, headerFound, "the for loop must produce a LoopBack edge")
}

func TestFromAST_PanicIsAbort(t *testing.T) {
	decl, fset := parseFunc(t, `func f() { panic("boom") }`)
	list := FromAST(decl, fset)
	cfg := Build(decl.Name.Name, list)
	assert.Equal(t, cfgmodel.TermAbort, cfg.Block(cfg.Entry()).Terminator.Kind)
}

// findBlockWithStatement returns the id of the first block whose statement
// text contains substr, or -1 if none match.
func findBlockWithStatement(cfg *cfgmodel.Cfg, substr string) cfgmodel.BlockID {
	for _, id := range cfg.Blocks() {
		for _, s := range cfg.Block(id).Statements {
			if strings.Contains(s, substr) {
				return id
			}
		}
	}
	return cfgmodel.BlockID(-1)
}
