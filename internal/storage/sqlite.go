package storage

import (
	"strconv"
	"strings"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"
)

const schemaVersion = 1

// fieldSep joins repeated text fields within a single SQLite TEXT column
// (statements, terminator labels); 0x1f (unit separator) is chosen the way
// the teacher's db.go joins multi-valued columns, since none of these
// opaque strings can themselves contain a control byte.
const fieldSep = "\x1f"

func splitField(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, fieldSep)
}

func joinInt64Field(ids []int64) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatInt(id, 10)
	}
	return strings.Join(parts, fieldSep)
}

func splitInt64Field(s string) []int64 {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, fieldSep)
	out := make([]int64, 0, len(parts))
	for _, p := range parts {
		v, err := strconv.ParseInt(p, 10, 64)
		if err != nil {
			continue
		}
		out = append(out, v)
	}
	return out
}

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS mirage_meta (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS cfg_blocks (
	function_id        INTEGER NOT NULL,
	block_id            INTEGER NOT NULL,
	kind                TEXT NOT NULL,
	statements          TEXT NOT NULL,
	terminator_kind      TEXT NOT NULL,
	terminator_targets   TEXT NOT NULL,
	terminator_labels    TEXT NOT NULL,
	source_file          TEXT,
	source_line          INTEGER,
	PRIMARY KEY (function_id, block_id)
);
CREATE TABLE IF NOT EXISTS cfg_paths (
	path_id       TEXT PRIMARY KEY,
	function_id   INTEGER NOT NULL,
	function_hash TEXT NOT NULL,
	kind          TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS cfg_path_elements (
	path_id    TEXT NOT NULL,
	position   INTEGER NOT NULL,
	block_id   INTEGER NOT NULL,
	PRIMARY KEY (path_id, position)
);
CREATE TABLE IF NOT EXISTS entities (
	id   INTEGER PRIMARY KEY,
	kind TEXT NOT NULL,
	name TEXT NOT NULL,
	file_path TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_cfg_paths_function ON cfg_paths(function_id);
`

// SQLiteStore is the relational Store backend, grounded in the teacher's
// db.go (OpenConn flags, ExecuteTransient for pragmas, ExecuteScript for DDL, prepared
// statement Bind/Step/Reset).
type SQLiteStore struct {
	conn *sqlite.Conn
}

// OpenSQLite opens (creating if necessary) a relational store at path.
func OpenSQLite(path string) (*SQLiteStore, error) {
	conn, err := sqlite.OpenConn(path, sqlite.OpenCreate, sqlite.OpenReadWrite, sqlite.OpenWAL)
	if err != nil {
		return nil, StorageFailuref("open sqlite %q: %v", path, err)
	}
	if err := sqlitex.ExecuteTransient(conn, "PRAGMA journal_mode = WAL", nil); err != nil {
		_ = conn.Close()
		return nil, StorageFailuref("set wal: %v", err)
	}
	if err := sqlitex.ExecuteTransient(conn, "PRAGMA synchronous = NORMAL", nil); err != nil {
		_ = conn.Close()
		return nil, StorageFailuref("set synchronous: %v", err)
	}
	if err := sqlitex.ExecuteScript(conn, sqliteSchema); err != nil {
		_ = conn.Close()
		return nil, StorageFailuref("create schema: %v", err)
	}
	if err := ensureSchemaVersion(conn); err != nil {
		_ = conn.Close()
		return nil, err
	}
	return &SQLiteStore{conn: conn}, nil
}

func ensureSchemaVersion(conn *sqlite.Conn) error {
	var have string
	err := sqlitex.ExecuteTransient(conn, "SELECT value FROM mirage_meta WHERE key = 'schema_version'", &sqlitex.ExecOptions{
		ResultFunc: func(stmt *sqlite.Stmt) error {
			have = stmt.ColumnText(0)
			return nil
		},
	})
	if err != nil {
		return StorageFailuref("read schema version: %v", err)
	}
	if have == "" {
		return sqlitex.Execute(conn, "INSERT INTO mirage_meta (key, value) VALUES ('schema_version', ?)", &sqlitex.ExecOptions{
			Args: []any{strconv.Itoa(schemaVersion)},
		})
	}
	if have != strconv.Itoa(schemaVersion) {
		return SchemaMismatchf("mirage_meta.schema_version is %q, want %d", have, schemaVersion)
	}
	return nil
}

func (s *SQLiteStore) Close() error { return s.conn.Close() }

func (s *SQLiteStore) GetCfgBlocks(functionID int64) ([]CfgBlockData, error) {
	var blocks []CfgBlockData
	err := sqlitex.Execute(s.conn,
		`SELECT block_id, kind, statements, terminator_kind, terminator_targets, terminator_labels, source_file, source_line
		 FROM cfg_blocks WHERE function_id = ? ORDER BY block_id`,
		&sqlitex.ExecOptions{
			Args: []any{functionID},
			ResultFunc: func(stmt *sqlite.Stmt) error {
				blocks = append(blocks, CfgBlockData{
					FunctionID:        functionID,
					BlockID:           stmt.ColumnInt64(0),
					Kind:              stmt.ColumnText(1),
					Statements:        splitField(stmt.ColumnText(2)),
					TerminatorKind:    stmt.ColumnText(3),
					TerminatorTargets: splitInt64Field(stmt.ColumnText(4)),
					TerminatorLabels:  splitField(stmt.ColumnText(5)),
					SourceFile:        stmt.ColumnText(6),
					SourceLine:        stmt.ColumnInt(7),
				})
				return nil
			},
		})
	if err != nil {
		return nil, StorageFailuref("get cfg blocks for %d: %v", functionID, err)
	}
	if len(blocks) == 0 {
		return nil, NotFoundf("function %d has no cfg blocks", functionID)
	}
	return blocks, nil
}

func (s *SQLiteStore) GetEntity(id int64) (Entity, error) {
	var e Entity
	found := false
	err := sqlitex.Execute(s.conn, "SELECT kind, name, file_path FROM entities WHERE id = ?", &sqlitex.ExecOptions{
		Args: []any{id},
		ResultFunc: func(stmt *sqlite.Stmt) error {
			e = Entity{ID: id, Kind: stmt.ColumnText(0), Name: stmt.ColumnText(1), FilePath: stmt.ColumnText(2)}
			found = true
			return nil
		},
	})
	if err != nil {
		return Entity{}, StorageFailuref("get entity %d: %v", id, err)
	}
	if !found {
		return Entity{}, NotFoundf("entity %d", id)
	}
	return e, nil
}

func (s *SQLiteStore) PutEntity(e Entity) error {
	return sqlitex.Execute(s.conn,
		`INSERT INTO entities (id, kind, name, file_path) VALUES (?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET kind=excluded.kind, name=excluded.name, file_path=excluded.file_path`,
		&sqlitex.ExecOptions{Args: []any{e.ID, e.Kind, e.Name, e.FilePath}})
}

func (s *SQLiteStore) PutCfgBlocks(functionID int64, blocks []CfgBlockData) error {
	endFn, err := sqlitex.ImmediateTransaction(s.conn)
	if err != nil {
		return StorageFailuref("begin tx: %v", err)
	}
	defer endFn(&err)

	if err = sqlitex.Execute(s.conn, "DELETE FROM cfg_blocks WHERE function_id = ?", &sqlitex.ExecOptions{Args: []any{functionID}}); err != nil {
		return StorageFailuref("clear blocks: %v", err)
	}

	blockStmt, err := s.conn.Prepare(`INSERT INTO cfg_blocks
		(function_id, block_id, kind, statements, terminator_kind, terminator_targets, terminator_labels, source_file, source_line)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return StorageFailuref("prepare block insert: %v", err)
	}
	defer func() { _ = blockStmt.Finalize() }()
	for _, b := range blocks {
		blockStmt.BindInt64(1, functionID)
		blockStmt.BindInt64(2, b.BlockID)
		blockStmt.BindText(3, b.Kind)
		blockStmt.BindText(4, strings.Join(b.Statements, fieldSep))
		blockStmt.BindText(5, b.TerminatorKind)
		blockStmt.BindText(6, joinInt64Field(b.TerminatorTargets))
		blockStmt.BindText(7, strings.Join(b.TerminatorLabels, fieldSep))
		blockStmt.BindText(8, b.SourceFile)
		blockStmt.BindInt64(9, int64(b.SourceLine))
		if _, err = blockStmt.Step(); err != nil {
			return StorageFailuref("insert block %d/%d: %v", functionID, b.BlockID, err)
		}
		_ = blockStmt.Reset()
	}
	return nil
}

func (s *SQLiteStore) GetCachedPaths(functionID int64, currentHash string) ([]PersistedPath, bool, error) {
	var have string
	err := sqlitex.Execute(s.conn, "SELECT DISTINCT function_hash FROM cfg_paths WHERE function_id = ?", &sqlitex.ExecOptions{
		Args: []any{functionID},
		ResultFunc: func(stmt *sqlite.Stmt) error {
			have = stmt.ColumnText(0)
			return nil
		},
	})
	if err != nil {
		return nil, false, StorageFailuref("read function hash for %d: %v", functionID, err)
	}
	if have == "" || have != currentHash {
		return nil, false, nil
	}

	paths := make(map[string]*PersistedPath)
	var order []string
	err = sqlitex.Execute(s.conn, "SELECT path_id, kind FROM cfg_paths WHERE function_id = ?", &sqlitex.ExecOptions{
		Args: []any{functionID},
		ResultFunc: func(stmt *sqlite.Stmt) error {
			id := stmt.ColumnText(0)
			paths[id] = &PersistedPath{PathID: id, FunctionID: functionID, Kind: stmt.ColumnText(1)}
			order = append(order, id)
			return nil
		},
	})
	if err != nil {
		return nil, false, StorageFailuref("read paths for %d: %v", functionID, err)
	}

	for _, id := range order {
		p := paths[id]
		err = sqlitex.Execute(s.conn, "SELECT block_id FROM cfg_path_elements WHERE path_id = ? ORDER BY position", &sqlitex.ExecOptions{
			Args: []any{id},
			ResultFunc: func(stmt *sqlite.Stmt) error {
				p.Blocks = append(p.Blocks, stmt.ColumnInt64(0))
				return nil
			},
		})
		if err != nil {
			return nil, false, StorageFailuref("read path elements for %s: %v", id, err)
		}
	}

	out := make([]PersistedPath, 0, len(order))
	for _, id := range order {
		out = append(out, *paths[id])
	}
	return out, true, nil
}

func (s *SQLiteStore) StorePaths(functionID int64, functionHash string, paths []PersistedPath) error {
	endFn, err := sqlitex.ImmediateTransaction(s.conn)
	if err != nil {
		return StorageFailuref("begin tx: %v", err)
	}
	defer endFn(&err)

	if err = s.invalidateLocked(functionID); err != nil {
		return err
	}

	pathStmt, err := s.conn.Prepare(`INSERT INTO cfg_paths (path_id, function_id, function_hash, kind) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return StorageFailuref("prepare path insert: %v", err)
	}
	defer func() { _ = pathStmt.Finalize() }()

	elemStmt, err := s.conn.Prepare(`INSERT INTO cfg_path_elements (path_id, position, block_id) VALUES (?, ?, ?)`)
	if err != nil {
		return StorageFailuref("prepare path element insert: %v", err)
	}
	defer func() { _ = elemStmt.Finalize() }()

	for _, p := range paths {
		pathStmt.BindText(1, p.PathID)
		pathStmt.BindInt64(2, functionID)
		pathStmt.BindText(3, functionHash)
		pathStmt.BindText(4, p.Kind)
		if _, err = pathStmt.Step(); err != nil {
			return StorageFailuref("insert path %s: %v", p.PathID, err)
		}
		_ = pathStmt.Reset()

		for i, b := range p.Blocks {
			elemStmt.BindText(1, p.PathID)
			elemStmt.BindInt64(2, int64(i))
			elemStmt.BindInt64(3, b)
			if _, err = elemStmt.Step(); err != nil {
				return StorageFailuref("insert path element %s[%d]: %v", p.PathID, i, err)
			}
			_ = elemStmt.Reset()
		}
	}
	return nil
}

func (s *SQLiteStore) InvalidateFunctionPaths(functionID int64) error {
	endFn, err := sqlitex.ImmediateTransaction(s.conn)
	if err != nil {
		return StorageFailuref("begin tx: %v", err)
	}
	defer endFn(&err)
	err = s.invalidateLocked(functionID)
	return err
}

func (s *SQLiteStore) invalidateLocked(functionID int64) error {
	var ids []string
	if err := sqlitex.Execute(s.conn, "SELECT path_id FROM cfg_paths WHERE function_id = ?", &sqlitex.ExecOptions{
		Args: []any{functionID},
		ResultFunc: func(stmt *sqlite.Stmt) error {
			ids = append(ids, stmt.ColumnText(0))
			return nil
		},
	}); err != nil {
		return StorageFailuref("list paths for invalidation: %v", err)
	}
	for _, id := range ids {
		if err := sqlitex.Execute(s.conn, "DELETE FROM cfg_path_elements WHERE path_id = ?", &sqlitex.ExecOptions{Args: []any{id}}); err != nil {
			return StorageFailuref("delete path elements %s: %v", id, err)
		}
	}
	if err := sqlitex.Execute(s.conn, "DELETE FROM cfg_paths WHERE function_id = ?", &sqlitex.ExecOptions{Args: []any{functionID}}); err != nil {
		return StorageFailuref("delete paths for %d: %v", functionID, err)
	}
	return nil
}

func (s *SQLiteStore) UpdateFunctionPathsIfChanged(functionID int64, currentHash string, paths []PersistedPath) (bool, error) {
	var have string
	err := sqlitex.Execute(s.conn, "SELECT DISTINCT function_hash FROM cfg_paths WHERE function_id = ?", &sqlitex.ExecOptions{
		Args: []any{functionID},
		ResultFunc: func(stmt *sqlite.Stmt) error {
			have = stmt.ColumnText(0)
			return nil
		},
	})
	if err != nil {
		return false, StorageFailuref("read function hash for %d: %v", functionID, err)
	}
	if have == currentHash && have != "" {
		return false, nil
	}
	if err := s.StorePaths(functionID, currentHash, paths); err != nil {
		return false, err
	}
	return true, nil
}
