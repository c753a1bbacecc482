package cli

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/ragchat-cli/internal/watcher"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch the data folder and reindex on changes",
	Long: `Runs an initial incremental pass, then watches the data folder and
triggers a new pass whenever files are created, changed or removed.
Runs until interrupted.`,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := bootstrap(ctx, false)
	if err != nil {
		return err
	}
	defer a.Close()

	report, err := a.indexer.RunIncremental(ctx)
	if err != nil {
		return err
	}
	printReport(cmd, report)
	cmd.Printf("Watching %s (ctrl-c to stop)\n", a.cfg.DataDir)

	w := watcher.New(a.indexer, a.cfg.DataDir, a.log)
	return ignoreCancel(w.Run(ctx))
}
