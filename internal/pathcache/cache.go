package pathcache

import (
	"mirage/internal/cfgmodel"
	"mirage/internal/pathenum"
	"mirage/internal/storage"
)

// Cache mediates between fresh enumeration (internal/pathenum) and a
// storage.Store, implementing the "cached enumerate" entry point described
// in SPEC_FULL.md §4.4: check the store for a hit against the function's
// current body hash, and only pay for a fresh DFS enumeration on a miss.
type Cache struct {
	store storage.Store
}

// New wraps store in a path cache.
func New(store storage.Store) *Cache {
	return &Cache{store: store}
}

// EnumerateCached returns functionID's paths, either from the store (if its
// recorded function hash still matches cfg's current content) or freshly
// enumerated and written back. The returned bool is true iff the result
// came from the cache.
func (c *Cache) EnumerateCached(functionID int64, cfg *cfgmodel.Cfg, limits pathenum.PathLimits) ([]pathenum.Path, bool, error) {
	hash := FunctionHash(cfg)

	cached, hit, err := c.store.GetCachedPaths(functionID, hash)
	if err != nil {
		return nil, false, err
	}
	if hit {
		return fromPersisted(cached), true, nil
	}

	ctx := pathenum.NewEnumerationContext(cfg)
	result := pathenum.Enumerate(ctx, limits)

	if _, err := c.store.UpdateFunctionPathsIfChanged(functionID, hash, toPersisted(functionID, result.Paths)); err != nil {
		return nil, false, err
	}
	return result.Paths, false, nil
}

// Invalidate drops any cached paths for functionID regardless of hash —
// used when a caller knows the function body is about to be reanalyzed
// from scratch.
func (c *Cache) Invalidate(functionID int64) error {
	return c.store.InvalidateFunctionPaths(functionID)
}

func toPersisted(functionID int64, paths []pathenum.Path) []storage.PersistedPath {
	out := make([]storage.PersistedPath, len(paths))
	for i, p := range paths {
		blocks := make([]int64, len(p.Blocks))
		for j, b := range p.Blocks {
			blocks[j] = int64(b)
		}
		out[i] = storage.PersistedPath{
			PathID:     p.PathID,
			FunctionID: functionID,
			Kind:       p.Kind.String(),
			Blocks:     blocks,
		}
	}
	return out
}

func fromPersisted(persisted []storage.PersistedPath) []pathenum.Path {
	out := make([]pathenum.Path, len(persisted))
	for i, p := range persisted {
		blocks := make([]cfgmodel.BlockID, len(p.Blocks))
		for j, b := range p.Blocks {
			blocks[j] = cfgmodel.BlockID(b)
		}
		out[i] = pathenum.Path{
			PathID: p.PathID,
			Blocks: blocks,
			Kind:   parseKind(p.Kind),
			Entry:  blocks[0],
			Exit:   blocks[len(blocks)-1],
		}
	}
	return out
}

func parseKind(s string) pathenum.PathKind {
	switch s {
	case "error":
		return pathenum.PathError
	case "degenerate":
		return pathenum.PathDegenerate
	case "unreachable":
		return pathenum.PathUnreachable
	default:
		return pathenum.PathNormal
	}
}
