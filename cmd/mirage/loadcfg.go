package main

import (
	"errors"
	"strconv"

	"mirage/internal/cfgbuild"
	"mirage/internal/cfgmodel"
	"mirage/internal/storage"
)

// openStore opens the resolved --db/MIRAGE_DB path, mapping any failure to
// exit code 3 (db), per SPEC_FULL.md §6.
func openStore() (storage.Store, error) {
	path, err := resolveDBPath()
	if err != nil {
		return nil, err
	}
	store, err := storage.Open(path)
	if err != nil {
		return nil, exitErrorf(exitDB, "opening %s: %v", path, err)
	}
	return store, nil
}

// resolveFunctionID accepts a numeric entity id, checks that the store has
// an entity under it, and returns it. A function name is not looked up: any
// non-numeric argument is rejected with a usage error (the Store interface
// has only id-keyed lookups).
func resolveFunctionID(store storage.Store, arg string) (int64, error) {
	if id, err := strconv.ParseInt(arg, 10, 64); err == nil {
		if _, err := store.GetEntity(id); err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return 0, exitErrorf(exitNotFound, "no function with id %d", id)
			}
			return 0, exitErrorf(exitDB, "looking up function %d: %v", id, err)
		}
		return id, nil
	}
	return 0, exitErrorf(exitUsage, "function %q must be a numeric id (run `mirage status` or the indexer log for ids)", arg)
}

// loadCfg resolves functionArg to an id and loads its Cfg from store.
func loadCfg(store storage.Store, functionArg string) (int64, *cfgmodel.Cfg, error) {
	id, err := resolveFunctionID(store, functionArg)
	if err != nil {
		return 0, nil, err
	}
	rows, err := store.GetCfgBlocks(id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return id, nil, exitErrorf(exitNotFound, "function %d has no recorded CFG", id)
		}
		return id, nil, exitErrorf(exitDB, "loading CFG for function %d: %v", id, err)
	}
	return id, cfgbuild.FromStorageBlocks(strconv.FormatInt(id, 10), rows), nil
}

func functionDisplayName(store storage.Store, id int64) string {
	e, err := store.GetEntity(id)
	if err != nil {
		return strconv.FormatInt(id, 10)
	}
	return e.Name
}
