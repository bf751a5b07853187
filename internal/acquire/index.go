package acquire

import (
	"context"
	"runtime"
	"strconv"
	"sync"

	"golang.org/x/sync/errgroup"
	"golang.org/x/tools/go/ssa"

	"mirage/internal/callgraph"
	"mirage/internal/cfgbuild"
	"mirage/internal/progress"
	"mirage/internal/storage"
)

// Indexer builds and persists one Cfg per known function, id-keyed the same
// way a callgraph.VTAOracle built over the same Program assigns ids, so the
// CALLS oracle and the storage trait agree on what function_id N means.
type Indexer struct {
	store  storage.Store
	oracle *callgraph.VTAOracle
	prog   *progress.Progress
}

// NewIndexer builds the VTA call graph over prog (the same Oracle a later
// `mirage paths`/`blast-zone` query reuses) and wraps it with the storage
// backend every indexed function is written to.
func NewIndexer(prog *Program, store storage.Store, progressLog *progress.Progress) *Indexer {
	oracle := callgraph.NewVTAOracle(prog.Fset, prog.AllFuncs, prog.Known)
	return &Indexer{store: store, oracle: oracle, prog: progressLog}
}

// Oracle exposes the call graph built during indexing, so a single `index`
// invocation can also answer ICFG queries without rebuilding VTA.
func (ix *Indexer) Oracle() *callgraph.VTAOracle { return ix.oracle }

// builtFunction is the CPU-bound half of indexing one function, computed
// off the store-writing goroutine so shards never block each other on I/O.
type builtFunction struct {
	id     int64
	blocks []storage.CfgBlockData
	entity storage.Entity
}

// IndexAll builds and stores a Cfg for every known function in prog,
// returning the number of functions indexed. Per SPEC_FULL.md §5, Mirage's
// core analyses never spawn threads themselves; the CLI layer partitions
// functions across goroutines with golang.org/x/sync/errgroup (one shard
// per CPU) and serializes the actual storage writes through a mutex, since
// the storage trait's write path is specified as single-writer-per-
// function-id, not lock-free for concurrent callers sharing one backend
// handle.
func (ix *Indexer) IndexAll(prog *Program) (int, error) {
	funcs := prog.KnownFunctions()
	if len(funcs) == 0 {
		return 0, nil
	}

	shards := runtime.GOMAXPROCS(0)
	if shards > len(funcs) {
		shards = len(funcs)
	}
	if shards < 1 {
		shards = 1
	}

	var writeMu sync.Mutex
	var count int
	var countMu sync.Mutex

	g, _ := errgroup.WithContext(context.Background())
	for shard := 0; shard < shards; shard++ {
		shard := shard
		g.Go(func() error {
			for i := shard; i < len(funcs); i += shards {
				fn := funcs[i]
				built, ok, err := ix.buildOne(prog, fn)
				if err != nil {
					ix.prog.Error("building %s: %v", fn.String(), err)
					continue
				}
				if !ok {
					continue
				}

				writeMu.Lock()
				err = ix.store.PutCfgBlocks(built.id, built.blocks)
				if err == nil {
					err = ix.store.PutEntity(built.entity)
				}
				writeMu.Unlock()
				if err != nil {
					ix.prog.Error("storing %s: %v", fn.String(), err)
					continue
				}

				countMu.Lock()
				count++
				n := count
				countMu.Unlock()
				if n%200 == 0 {
					ix.prog.Verbose("indexed %d/%d functions", n, len(funcs))
				}
			}
			return nil
		})
	}
	_ = g.Wait()

	ix.prog.Log("Indexed %d functions", count)
	return count, nil
}

func (ix *Indexer) buildOne(prog *Program, fn *ssa.Function) (builtFunction, bool, error) {
	id, ok := ix.oracle.FunctionID(fn)
	if !ok {
		return builtFunction{}, false, nil
	}

	list := cfgbuild.FromSSA(fn)
	cfg := cfgbuild.Build(fn.String(), list)
	blocks := cfgbuild.ToStorageBlocks(id, cfg)

	file, line := "", 0
	if pos := fn.Pos(); pos.IsValid() {
		p := prog.Fset.Position(pos)
		file, line = p.Filename, p.Line
	}
	entity := storage.Entity{
		ID:       id,
		Kind:     "function",
		Name:     fn.String(),
		FilePath: file,
		Data:     map[string]string{"line": strconv.Itoa(line), "package": pkgPath(fn)},
	}
	return builtFunction{id: id, blocks: blocks, entity: entity}, true, nil
}

func pkgPath(fn *ssa.Function) string {
	if fn.Pkg == nil {
		return ""
	}
	return fn.Pkg.Pkg.Path()
}
