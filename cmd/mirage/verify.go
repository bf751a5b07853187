package main

import (
	"strconv"

	"github.com/spf13/cobra"

	"mirage/internal/cfganalysis"
	"mirage/internal/cfgmodel"
)

var verifyCmd = &cobra.Command{
	Use:   "verify <function-id>",
	Short: "Check a function's structural invariants (dominance, natural loops, reachability)",
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
			cmd.Println("OK (empty CFG)")
			return nil
		}

		var violations []string
		tree := cfganalysis.BuildDominatorTree(cfg)
		reachable := cfganalysis.Reachable(cfg)
		for _, n := range cfg.Blocks() {
			if !tree.Dominates(n, n) {
				violations = append(violations, "dominates is not reflexive at b"+itoaBlock(n))
			}
			if !reachable[n] {
				continue
			}
			if !tree.Dominates(cfg.Entry(), n) {
				violations = append(violations, "entry does not dominate reachable block b"+itoaBlock(n))
			}
		}

		loops := cfganalysis.DetectNaturalLoops(cfg, tree)
		for _, l := range loops {
			if !tree.Dominates(l.Header, l.BackEdge[0]) {
				violations = append(violations, "loop header b"+itoaBlock(l.Header)+" does not dominate its back-edge tail")
			}
			if !l.Contains(l.Header) || !l.Contains(l.BackEdge[0]) {
				violations = append(violations, "loop body at b"+itoaBlock(l.Header)+" missing header or tail")
			}
		}

		for _, n := range cfganalysis.Unreachable(cfg) {
			if reachable[n] {
				violations = append(violations, "b"+itoaBlock(n)+" counted both reachable and unreachable")
			}
		}

		if len(violations) > 0 {
			for _, v := range violations {
				cmd.Println("FAIL: " + v)
			}
			return exitErrorf(exitValidation, "%d invariant violation(s)", len(violations))
		}
		cmd.Println("OK")
		return nil
	},
}

func itoaBlock(id cfgmodel.BlockID) string {
	return strconv.FormatInt(int64(id), 10)
}
