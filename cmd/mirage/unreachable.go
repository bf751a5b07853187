package main

import (
	"github.com/spf13/cobra"

	"mirage/internal/cfganalysis"
)

var unreachableCmd = &cobra.Command{
	Use:   "unreachable <function-id>",
	Short: "List blocks unreachable from entry",
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

		unreachable := cfganalysis.Unreachable(cfg)
		if outputFormat == "json" {
			cmd.Print("[")
			for i, id := range unreachable {
				if i > 0 {
					cmd.Print(",")
				}
				cmd.Printf("%d", id)
			}
			cmd.Println("]")
			return nil
		}
		if len(unreachable) == 0 {
			cmd.Println("no unreachable blocks")
			return nil
		}
		for _, id := range unreachable {
			cmd.Printf("b%d\n", id)
		}
		return nil
	},
}
