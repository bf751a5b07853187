// Package pathcache implements Mirage's content-addressed path cache: the
// four-operation contract of SPEC_FULL.md §4.4 (itself unimplemented
// scaffolding in the reference — original_source/storage/paths.rs's
// functions are stubs), built here against internal/storage.Store.
package pathcache

import (
	"encoding/binary"
	"encoding/hex"

	"lukechampine.com/blake3"

	"mirage/internal/cfgmodel"
)

// FunctionHash hashes a function's body (every block's kind, terminator,
// and statement text, in block-id order) so path-cache entries can be
// invalidated whenever the function actually changes. Per SPEC_FULL.md §4.4,
// the cache is indifferent to which hash algorithm produced this value —
// BLAKE3 is used here purely because it's already in the dependency graph
// for Path.PathID (see pathenum.HashBlocks).
func FunctionHash(cfg *cfgmodel.Cfg) string {
	h := blake3.New(32, nil)
	var word [8]byte
	writeUint := func(v uint64) {
		binary.LittleEndian.PutUint64(word[:], v)
		h.Write(word[:])
	}
	ids := cfg.Blocks()
	writeUint(uint64(len(ids)))
	for _, id := range ids {
		b := cfg.Block(id)
		writeUint(uint64(b.Kind))
		writeUint(uint64(b.Terminator.Kind))
		succs := cfg.Successors(id)
		writeUint(uint64(len(succs)))
		for _, s := range succs {
			writeUint(uint64(s))
		}
		writeUint(uint64(len(b.Statements)))
		for _, stmt := range b.Statements {
			h.Write([]byte(stmt))
			h.Write([]byte{0})
		}
	}
	return hex.EncodeToString(h.Sum(nil))
}
