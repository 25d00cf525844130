package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"serptrack/internal/tracker"
)

var (
	refreshIDs    []int64
	refreshDomain string
)

var refreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Run one refresh batch and exit",
	Long: `Refresh scrapes the current position of tracked keywords once,
merges the outcomes into each keyword's history and applies the
retry-queue policy. Without flags the whole keyword set is refreshed.`,
	RunE: runRefresh,
}

var retryCmd = &cobra.Command{
	Use:   "retry",
	Short: "Replay the retry queue once and exit",
	Long: `Retry reads the full retry-queue membership and refreshes exactly
those keywords. Keywords that succeed are removed from the queue;
keywords that fail again stay queued for the next replay.`,
	RunE: runRetry,
}

func init() {
	refreshCmd.Flags().Int64SliceVar(&refreshIDs, "ids", nil, "Refresh only these keyword IDs")
	refreshCmd.Flags().StringVar(&refreshDomain, "domain", "", "Refresh only keywords for this domain")

	rootCmd.AddCommand(refreshCmd)
	rootCmd.AddCommand(retryCmd)
}

func runRefresh(cmd *cobra.Command, args []string) error {
	settings, err := loadSettings()
	if err != nil {
		return err
	}

	store, err := openStorage(settings)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer func() { _ = store.Close() }()

	ctx := cmd.Context()

	var keywords []tracker.Keyword
	if len(refreshIDs) > 0 {
		keywords, err = store.GetKeywords(ctx, refreshIDs)
	} else {
		keywords, err = store.ListKeywords(ctx, refreshDomain)
	}
	if err != nil {
		return fmt.Errorf("failed to load keywords: %w", err)
	}
	if len(keywords) == 0 {
		fmt.Println("No keywords to refresh.")
		return nil
	}

	orchestrator := newOrchestrator(store, settings)
	_, stats := orchestrator.Refresh(ctx, keywords, settings)

	fmt.Printf("Refreshed %d keywords (%d failed) in %v\n", stats.Keywords, stats.Failed, stats.Duration)
	return nil
}

func runRetry(cmd *cobra.Command, args []string) error {
	settings, err := loadSettings()
	if err != nil {
		return err
	}

	store, err := openStorage(settings)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer func() { _ = store.Close() }()

	orchestrator := newOrchestrator(store, settings)
	_, stats := orchestrator.ReplayRetryQueue(cmd.Context(), settings)

	if stats.Keywords == 0 {
		fmt.Println("Retry queue is empty.")
		return nil
	}
	fmt.Printf("Replayed %d queued keywords (%d failed again) in %v\n", stats.Keywords, stats.Failed, stats.Duration)
	return nil
}
