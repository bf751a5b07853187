package main

import (
	"github.com/spf13/cobra"

	"mirage/internal/pathenum"
	"mirage/internal/progress"
)

var (
	dbPath       string
	outputFormat string
	verbose      bool
)

// rootCmd is the base command when mirage is called without a subcommand,
// following the pack's cobra-shaped repos (txpull-abi-helper's cmd/root.go,
// shivasurya-code-pathfinder's cmd/root.go) rather than the teacher's
// flag-based single-pipeline main.go, per SPEC_FULL.md §6.
var rootCmd = &cobra.Command{
	Use:   "mirage",
	Short: "Path-aware code-intelligence engine for Go",
	Long: `Mirage indexes a Go module's control-flow structure — basic blocks,
dominators, natural loops, and bounded execution paths — into a database,
then answers structural queries against it without re-running analysis.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "path to the Mirage database (env MIRAGE_DB)")
	rootCmd.PersistentFlags().StringVar(&outputFormat, "output", "human", "output format: human|json|pretty")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "print detailed progress")

	rootCmd.AddCommand(indexCmd, statusCmd, pathsCmd, cfgCmd, dominatorsCmd, unreachableCmd, verifyCmd, blastZoneCmd, serveCmd)
}

func progressLogger() *progress.Progress { return progress.New(verbose) }

func resolveDBPath() (string, error) {
	if dbPath != "" {
		return dbPath, nil
	}
	if env := dbPathFromEnv(); env != "" {
		return env, nil
	}
	return "", exitErrorf(exitUsage, "no database path given (use --db or MIRAGE_DB)")
}

// pathLimitsForCommand resolves the PathLimits preset a query command uses;
// all CLI queries run the Default preset (spec.md §3's "moderate" tier),
// matching the reference CLI's behavior of never defaulting to Thorough
// implicitly since that tier can allocate up to 100k paths per function.
func pathLimitsForCommand() pathenum.PathLimits {
	return pathenum.DefaultLimits
}
