package pathenum

import (
	"encoding/binary"
	"encoding/hex"

	"lukechampine.com/blake3"
)

// HashBlocks computes a path's content-addressed identity: BLAKE3 over the
// block count followed by each block id, all little-endian 8-byte words,
// hex-encoded. This is the exact byte layout of original_source's
// hash_path, used here as Path.PathID. (pathcache.FunctionHash uses the
// same little-endian word encoding over a different input.)
func HashBlocks(blocks []BlockID) string {
	h := blake3.New(32, nil)
	var word [8]byte
	binary.LittleEndian.PutUint64(word[:], uint64(len(blocks)))
	h.Write(word[:])
	for _, b := range blocks {
		binary.LittleEndian.PutUint64(word[:], uint64(b))
		h.Write(word[:])
	}
	return hex.EncodeToString(h.Sum(nil))
}
