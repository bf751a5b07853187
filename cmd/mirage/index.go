package main

import (
	"os"

	"github.com/spf13/cobra"

	"mirage/internal/acquire"
	"mirage/internal/storage"
)

var indexCmd = &cobra.Command{
	Use:   "index <dir>",
	Short: "Load a Go module, build SSA, and persist CFGs for every function",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := args[0]
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			return exitErrorf(exitFileNotFound, "no such directory: %s", dir)
		}

		path, err := resolveDBPath()
		if err != nil {
			return err
		}
		store, err := storage.Open(path)
		if err != nil {
			return exitErrorf(exitDB, "opening %s: %v", path, err)
		}
		defer store.Close()

		prog := progressLogger()
		program, err := acquire.Load(dir, prog)
		if err != nil {
			return exitErrorf(exitGeneric, "loading %s: %v", dir, err)
		}

		indexer := acquire.NewIndexer(program, store, prog)
		count, err := indexer.IndexAll(program)
		if err != nil {
			return exitErrorf(exitGeneric, "indexing: %v", err)
		}

		cmd.Printf("indexed %d functions into %s\n", count, path)
		return nil
	},
}
