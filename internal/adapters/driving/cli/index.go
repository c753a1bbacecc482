package cli

import (
	"github.com/spf13/cobra"
)

var indexForce bool

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Run one indexing pass over the data folder",
	Long: `Scans the data folder, indexes new and changed files and persists
the index artifacts. With --force the existing index is discarded and
every file is reprocessed.`,
	RunE: runIndex,
}

func init() {
	indexCmd.Flags().BoolVar(&indexForce, "force", false, "discard the index and reprocess everything")
	rootCmd.AddCommand(indexCmd)
}

func runIndex(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	a, err := bootstrap(ctx, false)
	if err != nil {
		return err
	}
	defer a.Close()

	if indexForce {
		count, err := a.indexer.ForceReindexAll(ctx)
		if err != nil {
			return err
		}
		cmd.Printf("Reindexed %d chunks from %s\n", count, a.cfg.DataDir)
		return nil
	}

	report, err := a.indexer.RunIncremental(ctx)
	if err != nil {
		return err
	}
	printReport(cmd, report)
	return nil
}
