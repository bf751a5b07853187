package main

import (
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"mirage/internal/acquire"
	"mirage/internal/callgraph"
	"mirage/internal/httpapi"
)

var (
	serveAddr string
	serveSrc  string
)

// serveCmd starts the read-only HTTP query surface of internal/httpapi,
// per SPEC_FULL.md §6. --src is optional: without it /api/icfg/{id}
// returns 501, since the CALLS oracle only exists once source has been
// (re-)loaded.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve CFG/path/ICFG queries over HTTP",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		defer func() { _ = store.Close() }()

		var oracle callgraph.Oracle
		if serveSrc != "" {
			if info, err := os.Stat(serveSrc); err != nil || !info.IsDir() {
				return exitErrorf(exitFileNotFound, "no such directory: %s", serveSrc)
			}
			prog := progressLogger()
			program, err := acquire.Load(serveSrc, prog)
			if err != nil {
				return exitErrorf(exitGeneric, "loading %s: %v", serveSrc, err)
			}
			oracle = acquire.NewIndexer(program, store, prog).Oracle()
		}

		app := httpapi.NewApp(store, oracle, pathLimitsForCommand())
		cmd.Printf("listening on %s\n", serveAddr)
		if err := http.ListenAndServe(serveAddr, app.Handler()); err != nil {
			return exitErrorf(exitGeneric, "serve: %v", err)
		}
		return nil
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8723", "address to listen on")
	serveCmd.Flags().StringVar(&serveSrc, "src", "", "source directory to rebuild the call graph from (enables /api/icfg)")
}
