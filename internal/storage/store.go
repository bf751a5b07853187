// Package storage implements Mirage's persistence trait and its two
// conforming backends (relational, via zombiezen.com/go/sqlite, and
// key-value, via go.etcd.io/bbolt), selected transparently by filename
// probe so the rest of Mirage never branches on backend kind.
package storage

import (
	"errors"
	"fmt"
)

// Sentinel errors for the four-kind taxonomy of SPEC_FULL.md §7. Truncated
// is not an error value — callers compare result length against the
// requested limit instead.
var (
	ErrNotFound       = errors.New("mirage: not found")
	ErrStorageFailure = errors.New("mirage: storage failure")
	ErrSchemaMismatch = errors.New("mirage: schema mismatch")
)

// NotFoundf wraps ErrNotFound with context.
func NotFoundf(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, ErrNotFound)...)
}

// StorageFailuref wraps ErrStorageFailure with context.
func StorageFailuref(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, ErrStorageFailure)...)
}

// SchemaMismatchf wraps ErrSchemaMismatch with context.
func SchemaMismatchf(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, ErrSchemaMismatch)...)
}

// CfgBlockData is the persisted shape of a single basic block, independent
// of cfgmodel so storage has no compile-time dependency on the in-memory
// graph representation (callers convert at the boundary). TerminatorTargets
// and TerminatorLabels fully describe the block's outgoing edges, so
// GetCfgBlocks alone is sufficient to reconstruct a function's Cfg (no
// separate edge-retrieval operation is part of the trait): for "goto",
// one target with label "goto"; for "switch_int", one target per arm with
// its arm label ("otherwise" for the fallback arm); for "call", up to two
// targets labeled "call" and "unwind"; "return"/"unreachable"/"abort" carry
// no targets.
type CfgBlockData struct {
	FunctionID        int64
	BlockID           int64
	Kind              string // "normal" | "entry" | "exit"
	Statements        []string
	TerminatorKind    string
	TerminatorTargets []int64
	TerminatorLabels  []string
	SourceFile        string
	SourceLine        int
}

// PersistedPath is the persisted shape of one cached path (cfg_paths +
// cfg_path_elements in the relational backend, or one KV record).
type PersistedPath struct {
	PathID     string
	FunctionID int64
	Kind       string
	Blocks     []int64
}

// Entity is a generic lookup result for ad-hoc queries (e.g. the call-graph
// oracle resolving a function name to an id, or the HTTP surface resolving
// an opaque identifier); it mirrors the reference's KvStorage::get_entity,
// per spec.md §6's {id, kind, name, file_path, data} shape.
type Entity struct {
	ID       int64
	Kind     string
	Name     string
	FilePath string
	Data     map[string]string
}

// Store is Mirage's storage trait: the operations every backend must
// provide, per SPEC_FULL.md §6.
type Store interface {
	// GetCfgBlocks returns every block of functionID in ascending block-id
	// order. Returns ErrNotFound if the function has never been indexed.
	GetCfgBlocks(functionID int64) ([]CfgBlockData, error)

	// GetEntity resolves an opaque entity id to its (kind, name).
	GetEntity(id int64) (Entity, error)

	// GetCachedPaths returns the cached paths for functionID if the stored
	// function hash still matches currentHash; returns (nil, false, nil) on
	// a cache miss (stale hash or never cached) without that being an
	// error.
	GetCachedPaths(functionID int64, currentHash string) ([]PersistedPath, bool, error)

	// StorePaths persists paths for functionID under the given function
	// hash, replacing whatever was previously stored for that function.
	StorePaths(functionID int64, functionHash string, paths []PersistedPath) error

	// InvalidateFunctionPaths removes any cached paths for functionID
	// regardless of hash.
	InvalidateFunctionPaths(functionID int64) error

	// UpdateFunctionPathsIfChanged stores paths only if currentHash differs
	// from what's on record (or nothing is on record yet); it is a no-op
	// returning (false, nil) when the hash already matches, avoiding a
	// redundant rewrite of an unchanged function's path cache.
	UpdateFunctionPathsIfChanged(functionID int64, currentHash string, paths []PersistedPath) (changed bool, err error)

	// PutCfgBlocks stores a function's blocks, overwriting any prior record
	// for that function id.
	PutCfgBlocks(functionID int64, blocks []CfgBlockData) error

	// PutEntity upserts an id -> (kind, name) record.
	PutEntity(e Entity) error

	Close() error
}
