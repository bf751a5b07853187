package main

import "os"

// dbPathFromEnv reads MIRAGE_DB, the env fallback for --db per SPEC_FULL.md
// §6, mirroring the teacher's companion server's DB_PATH/PORT env-fallback
// pattern (server/main.go).
func dbPathFromEnv() string {
	return os.Getenv("MIRAGE_DB")
}
