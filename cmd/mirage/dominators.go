package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"mirage/internal/cfganalysis"
)

var dominatorsCmd = &cobra.Command{
	Use:   "dominators <function-id>",
	Short: "Print each block's immediate dominator",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		defer func() { _ = store.Close() }()

		_, cfg, err := loadCfg(store, args[0])
		if err != nil {
			return err
		}
		if cfg.NumBlocks() == 0 {
			cmd.Println("(empty CFG)")
			return nil
		}

		tree := cfganalysis.BuildDominatorTree(cfg)
		for _, n := range tree.AllNodes() {
			if n == tree.Root() {
				cmd.Printf("b%d: <root>\n", n)
				continue
			}
			idom, ok := tree.ImmediateDominator(n)
			if !ok {
				continue
			}
			if outputFormat == "json" {
				cmd.Printf("{\"block\":%d,\"idom\":%d,\"depth\":%d}\n", n, idom, tree.Depth(n))
			} else {
				cmd.Printf("b%d: idom=b%d depth=%d\n", n, idom, tree.Depth(n))
			}
		}

		if pdTree, ok := cfganalysis.BuildPostDominatorTree(cfg); ok {
			cmd.Println(fmt.Sprintf("post-dominator root (primary exit): b%d", pdTree.Root()))
		}
		return nil
	},
}
