// Package acquire loads a Go module via golang.org/x/tools/go/packages,
// builds its SSA form, and turns each function into a persisted Cfg —
// Mirage's IR producer, adapted from the teacher's loader.go and
// ssa_cfg.go. Multi-module workspace stitching (CreateTempGoWork,
// findSubModules, ModuleSet) is trimmed to single-module loading: a single
// `go.mod` rooted at Dir is the common case for the repositories Mirage
// targets, and go/packages' own "./..." pattern already walks every
// package under that root without needing a synthetic go.work file.
package acquire

import (
	"fmt"
	"go/token"
	"os"
	"sort"

	"golang.org/x/tools/go/packages"
	"golang.org/x/tools/go/ssa"
	"golang.org/x/tools/go/ssa/ssautil"

	"mirage/internal/progress"
)

// Program holds everything downstream indexing needs: the loaded packages,
// their SSA form, and the complete function universe (ssautil.AllFunctions
// includes synthetic wrappers and functions pulled in from dependencies;
// callers filter with Known before indexing).
type Program struct {
	Dir      string
	Fset     *token.FileSet
	Packages []*packages.Package
	SSA      *ssa.Program
	AllFuncs map[*ssa.Function]bool
}

// Load reads the module rooted at dir, type-checks it, and builds SSA for
// every package reached from "./...", mirroring the teacher's
// LoadPackages+BuildSSA pipeline against a single module directory.
func Load(dir string, prog *progress.Progress) (*Program, error) {
	prog.Log("Loading packages from %s...", dir)

	fset := token.NewFileSet()
	cfg := &packages.Config{
		Mode: packages.NeedName |
			packages.NeedFiles |
			packages.NeedCompiledGoFiles |
			packages.NeedImports |
			packages.NeedDeps |
			packages.NeedTypes |
			packages.NeedSyntax |
			packages.NeedTypesInfo |
			packages.NeedTypesSizes,
		Dir:   dir,
		Fset:  fset,
		Tests: false,
		Env:   os.Environ(),
	}

	pkgs, err := packages.Load(cfg, "./...")
	if err != nil {
		return nil, fmt.Errorf("acquire: packages.Load: %w", err)
	}

	var errCount, fileCount, loc int
	for _, pkg := range pkgs {
		if len(pkg.Errors) > 0 {
			errCount++
			prog.Verbose("  warning: %s has %d errors: %v", pkg.PkgPath, len(pkg.Errors), pkg.Errors[0])
		}
		for i, f := range pkg.CompiledGoFiles {
			fileCount++
			_ = f
			if i < len(pkg.Syntax) {
				loc += fset.Position(pkg.Syntax[i].End()).Line
			}
		}
	}
	prog.Log("Loaded %d packages (%d files, ~%dk LOC)", len(pkgs), fileCount, loc/1000)
	if errCount > 0 {
		prog.Log("  %d packages had type-check errors (continuing)", errCount)
	}

	prog.Log("Building SSA...")
	ssaProg, ssaPkgs := ssautil.AllPackages(pkgs, ssa.InstantiateGenerics)
	var ssaFailed int
	for i, sp := range ssaPkgs {
		if sp == nil && i < len(pkgs) {
			prog.Verbose("SSA build skipped package: %s", pkgs[i].PkgPath)
			ssaFailed++
		}
	}
	if ssaFailed > 0 {
		prog.Log("Warning: %d packages failed SSA construction", ssaFailed)
	}
	ssaProg.Build()

	allFuncs := ssautil.AllFunctions(ssaProg)
	prog.Log("Built SSA for %d functions total", len(allFuncs))

	return &Program{Dir: dir, Fset: fset, Packages: pkgs, SSA: ssaProg, AllFuncs: allFuncs}, nil
}

// Known reports whether fn belongs to one of the loaded packages (as
// opposed to a dependency pulled in only for type information), matching
// the teacher's ModuleSet.IsKnownPkg check against the package import path
// set actually requested.
func (p *Program) Known(fn *ssa.Function) bool {
	if fn.Pkg == nil || fn.Synthetic != "" {
		return false
	}
	path := fn.Pkg.Pkg.Path()
	for _, pkg := range p.Packages {
		if pkg.PkgPath == path {
			return true
		}
	}
	return false
}

// KnownFunctions returns every known, non-empty function in fn.String()
// order — the same deterministic ordering callgraph.NewVTAOracle uses to
// assign dense ids, so a fresh Indexer pass and a fresh Oracle always agree
// on which function is which id.
func (p *Program) KnownFunctions() []*ssa.Function {
	var out []*ssa.Function
	for fn := range p.AllFuncs {
		if p.Known(fn) && len(fn.Blocks) > 0 {
			out = append(out, fn)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	return out
}
