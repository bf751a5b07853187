package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"mirage/internal/exportfmt"
	"mirage/internal/pathcache"
	"mirage/internal/pathenum"
)

var pathsTopN int

var pathsCmd = &cobra.Command{
	Use:   "paths <function-id>",
	Short: "Enumerate and rank a function's execution paths",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		defer func() { _ = store.Close() }()

		id, cfg, err := loadCfg(store, args[0])
		if err != nil {
			return err
		}
		if cfg.NumBlocks() == 0 {
			cmd.Println("(empty CFG, no paths)")
			return nil
		}

		cache := pathcache.New(store)
		paths, cacheHit, err := cache.EnumerateCached(id, cfg, pathLimitsForCommand())
		if err != nil {
			return exitErrorf(exitDB, "enumerating paths for %d: %v", id, err)
		}

		ctx := pathenum.NewEnumerationContext(cfg)
		hot := pathenum.ComputeHotPaths(ctx, paths, pathenum.HotpathsOptions{TopN: pathsTopN, IncludeRationale: outputFormat != "json"})

		if outputFormat == "json" {
			cmd.Print("[")
			for i, h := range hot {
				if i > 0 {
					cmd.Print(",")
				}
				cmd.Printf("{\"path_id\":%q,\"score\":%g,\"blocks\":%d}", h.PathID, h.HotnessScore, len(h.Blocks))
			}
			cmd.Println("]")
			return nil
		}

		byID := make(map[string]pathenum.Path, len(paths))
		for _, p := range paths {
			byID[p.PathID] = p
		}
		if cacheHit {
			cmd.Println("(from cache)")
		}
		cmd.Printf("%d paths total, top %d by hot-path score:\n", len(paths), len(hot))
		for i, h := range hot {
			p := byID[h.PathID]
			score := fmt.Sprintf("%.2f", h.HotnessScore)
			if i == 0 {
				score = bold(score)
			}
			cmd.Printf("  %s  %s\n", score, exportfmt.SummarizePath(cfg, p))
		}
		return nil
	},
}

func init() {
	pathsCmd.Flags().IntVar(&pathsTopN, "top", 10, "number of hot paths to print")
}
