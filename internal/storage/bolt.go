package storage

import (
	"encoding/binary"
	"encoding/json"

	"go.etcd.io/bbolt"
)

var (
	bucketBlocks = []byte("cfg_blocks")  // function_id -> []CfgBlockData (JSON)
	bucketPaths  = []byte("cfg_paths")   // function_id -> boltPathRecord (JSON)
	bucketEntity = []byte("entities")    // id -> Entity (JSON)
	bucketMeta   = []byte("mirage_meta") // "schema_version" -> version
)

// boltPathRecord is the JSON value stored per function in bucketPaths: the
// reference's storage/paths.rs contract reduced to one record per function
// id, since bbolt has no secondary-index support.
type boltPathRecord struct {
	FunctionHash string          `json:"function_hash"`
	Paths        []PersistedPath `json:"paths"`
}

// BoltStore is the key-value Store backend, a complete implementation of
// the storage trait (the reference's KvStorage leaves get_cfg_blocks and
// get_cached_paths as TODO stubs — see DESIGN.md).
type BoltStore struct {
	db *bbolt.DB
}

// OpenBolt opens (creating if necessary) a key-value store at path.
func OpenBolt(path string) (*BoltStore, error) {
	db, err := bbolt.Open(path, 0o644, nil)
	if err != nil {
		return nil, StorageFailuref("open bbolt %q: %v", path, err)
	}
	err = db.Update(func(tx *bbolt.Tx) error {
		for _, b := range [][]byte{bucketBlocks, bucketPaths, bucketEntity, bucketMeta} {
			if _, err := tx.CreateBucketIfNotExists(b); err != nil {
				return err
			}
		}
		meta := tx.Bucket(bucketMeta)
		if have := meta.Get([]byte("schema_version")); have == nil {
			return meta.Put([]byte("schema_version"), itob(schemaVersion))
		} else if int64(binary.BigEndian.Uint64(have)) != schemaVersion {
			return SchemaMismatchf("mirage_meta.schema_version is %d, want %d", binary.BigEndian.Uint64(have), schemaVersion)
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return &BoltStore{db: db}, nil
}

func (s *BoltStore) Close() error { return s.db.Close() }

func itob(v int64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, uint64(v))
	return b
}

func (s *BoltStore) GetCfgBlocks(functionID int64) ([]CfgBlockData, error) {
	var blocks []CfgBlockData
	err := s.db.View(func(tx *bbolt.Tx) error {
		raw := tx.Bucket(bucketBlocks).Get(itob(functionID))
		if raw == nil {
			return nil
		}
		return json.Unmarshal(raw, &blocks)
	})
	if err != nil {
		return nil, StorageFailuref("get cfg blocks for %d: %v", functionID, err)
	}
	if len(blocks) == 0 {
		return nil, NotFoundf("function %d has no cfg blocks", functionID)
	}
	return blocks, nil
}

func (s *BoltStore) PutCfgBlocks(functionID int64, blocks []CfgBlockData) error {
	blocksJSON, err := json.Marshal(blocks)
	if err != nil {
		return StorageFailuref("marshal blocks: %v", err)
	}
	err = s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketBlocks).Put(itob(functionID), blocksJSON)
	})
	if err != nil {
		return StorageFailuref("put cfg blocks for %d: %v", functionID, err)
	}
	return nil
}

func (s *BoltStore) GetEntity(id int64) (Entity, error) {
	var e Entity
	found := false
	err := s.db.View(func(tx *bbolt.Tx) error {
		raw := tx.Bucket(bucketEntity).Get(itob(id))
		if raw == nil {
			return nil
		}
		found = true
		return json.Unmarshal(raw, &e)
	})
	if err != nil {
		return Entity{}, StorageFailuref("get entity %d: %v", id, err)
	}
	if !found {
		return Entity{}, NotFoundf("entity %d", id)
	}
	return e, nil
}

func (s *BoltStore) PutEntity(e Entity) error {
	raw, err := json.Marshal(e)
	if err != nil {
		return StorageFailuref("marshal entity: %v", err)
	}
	err = s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketEntity).Put(itob(e.ID), raw)
	})
	if err != nil {
		return StorageFailuref("put entity %d: %v", e.ID, err)
	}
	return nil
}

func (s *BoltStore) GetCachedPaths(functionID int64, currentHash string) ([]PersistedPath, bool, error) {
	var rec boltPathRecord
	found := false
	err := s.db.View(func(tx *bbolt.Tx) error {
		raw := tx.Bucket(bucketPaths).Get(itob(functionID))
		if raw == nil {
			return nil
		}
		found = true
		return json.Unmarshal(raw, &rec)
	})
	if err != nil {
		return nil, false, StorageFailuref("get cached paths for %d: %v", functionID, err)
	}
	if !found || rec.FunctionHash != currentHash {
		return nil, false, nil
	}
	return rec.Paths, true, nil
}

func (s *BoltStore) StorePaths(functionID int64, functionHash string, paths []PersistedPath) error {
	rec := boltPathRecord{FunctionHash: functionHash, Paths: paths}
	raw, err := json.Marshal(rec)
	if err != nil {
		return StorageFailuref("marshal path record: %v", err)
	}
	err = s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketPaths).Put(itob(functionID), raw)
	})
	if err != nil {
		return StorageFailuref("store paths for %d: %v", functionID, err)
	}
	return nil
}

func (s *BoltStore) InvalidateFunctionPaths(functionID int64) error {
	err := s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketPaths).Delete(itob(functionID))
	})
	if err != nil {
		return StorageFailuref("invalidate paths for %d: %v", functionID, err)
	}
	return nil
}

func (s *BoltStore) UpdateFunctionPathsIfChanged(functionID int64, currentHash string, paths []PersistedPath) (bool, error) {
	_, ok, err := s.GetCachedPaths(functionID, currentHash)
	if err != nil {
		return false, err
	}
	if ok {
		return false, nil
	}
	if err := s.StorePaths(functionID, currentHash, paths); err != nil {
		return false, err
	}
	return true, nil
}
