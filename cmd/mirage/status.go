package main

import (
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Report whether the database opens cleanly and its size on disk",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := resolveDBPath()
		if err != nil {
			return err
		}
		store, err := openStore()
		if err != nil {
			return err
		}
		defer func() { _ = store.Close() }()

		info, statErr := os.Stat(path)
		switch outputFormat {
		case "json":
			size := int64(0)
			if statErr == nil {
				size = info.Size()
			}
			cmd.Printf("{\"db\":%q,\"ok\":true,\"bytes\":%d}\n", path, size)
		default:
			if statErr != nil {
				cmd.Printf("%s: opens OK (size unknown: %v)\n", path, statErr)
				return nil
			}
			cmd.Printf("%s: opens OK, %s\n", path, humanize.Bytes(uint64(info.Size())))
		}
		return nil
	},
}
