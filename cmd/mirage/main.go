// Command mirage is Mirage's CLI: index a Go module into a path-cache
// database, then query its CFGs, dominators, paths, and blast radius
// without re-running analysis, per SPEC_FULL.md §6.
package main

import (
	"errors"
	"fmt"
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			if exitErr.Err != nil && exitErr.Err.Error() != "" {
				fmt.Fprintf(os.Stderr, "error: %v\n", exitErr.Err)
			}
			os.Exit(exitErr.Code)
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(exitGeneric)
	}
}
