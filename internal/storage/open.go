package storage

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Open selects and opens a backend by filename extension, invisible to
// every caller above this package: ".db"/".sqlite"/".sqlite3" open the
// relational backend, ".bolt"/".kv" open the key-value backend. Any other
// extension is an error — Mirage never guesses.
func Open(path string) (Store, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".db", ".sqlite", ".sqlite3":
		return OpenSQLite(path)
	case ".bolt", ".kv":
		return OpenBolt(path)
	default:
		return nil, fmt.Errorf("mirage: unrecognized store extension %q (want .db/.sqlite/.sqlite3 or .bolt/.kv)", ext)
	}
}
