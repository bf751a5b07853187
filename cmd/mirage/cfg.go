package main

import (
	"github.com/spf13/cobra"

	"mirage/internal/exportfmt"
)

var cfgFormat string

var cfgCmd = &cobra.Command{
	Use:   "cfg <function-id>",
	Short: "Print a function's control-flow graph as DOT or JSON",
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

		switch cfgFormat {
		case "json":
			out, err := exportfmt.MarshalCfgJSON(functionDisplayName(store, id), cfg)
			if err != nil {
				return exitErrorf(exitGeneric, "marshaling cfg: %v", err)
			}
			cmd.Println(string(out))
		default:
			cmd.Print(exportfmt.CfgDOT(cfg))
		}
		return nil
	},
}

func init() {
	cfgCmd.Flags().StringVar(&cfgFormat, "format", "dot", "output format: dot|json")
}
