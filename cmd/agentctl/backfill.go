// cmd/agentctl/backfill.go
package main

import (
	"errors"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"insurance-agent/internal/store/knowledge"
)

var (
	backfillBatch    int
	backfillInterval time.Duration
)

var backfillCmd = &cobra.Command{
	Use:   "backfill-embeddings",
	Short: "Embed knowledge chunks that have no vector yet",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := buildApp(cmd.Context())
		if err != nil {
			return err
		}
		defer app.Close()

		if app.Model == nil {
			return errors.New("no model provider available; check model settings")
		}

		limiter := rate.NewLimiter(rate.Every(backfillInterval), 1)
		stats, err := knowledge.Backfill(cmd.Context(), app.Knowledge, app.Model, limiter, backfillBatch, newLogger())
		cmd.Printf("embedded: %d\nfailed:   %d\n", stats.Embedded, stats.Failed)
		return err
	},
}

func init() {
	backfillCmd.Flags().IntVar(&backfillBatch, "batch", 50, "chunks fetched per round")
	backfillCmd.Flags().DurationVar(&backfillInterval, "interval", knowledge.DefaultBackfillInterval, "minimum spacing between embedding requests")
	rootCmd.AddCommand(backfillCmd)
}
