package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"serptrack/internal/tracker"
)

var (
	addDomain  string
	addDevice  string
	addCountry string
	addCity    string
	addTags    string
	listDomain string
)

var addCmd = &cobra.Command{
	Use:   "add [keywords...]",
	Short: "Start tracking one or more keywords",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runAdd,
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List tracked keywords and their current positions",
	RunE:  runList,
}

func init() {
	addCmd.Flags().StringVar(&addDomain, "domain", "", "Domain whose rank is tracked (required)")
	addCmd.Flags().StringVar(&addDevice, "device", tracker.DeviceDesktop, "Device: desktop or mobile")
	addCmd.Flags().StringVar(&addCountry, "country", "US", "ISO country code")
	addCmd.Flags().StringVar(&addCity, "city", "", "Optional city for city-capable backends")
	addCmd.Flags().StringVar(&addTags, "tags", "", "Comma-separated tags")
	_ = addCmd.MarkFlagRequired("domain")

	listCmd.Flags().StringVar(&listDomain, "domain", "", "Only list keywords for this domain")

	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(listCmd)
}

func runAdd(cmd *cobra.Command, args []string) error {
	if addDevice != tracker.DeviceDesktop && addDevice != tracker.DeviceMobile {
		return fmt.Errorf("device must be %q or %q", tracker.DeviceDesktop, tracker.DeviceMobile)
	}

	settings, err := loadSettings()
	if err != nil {
		return err
	}

	store, err := openStorage(settings)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer func() { _ = store.Close() }()

	var tags []string
	for _, tag := range strings.Split(addTags, ",") {
		if tag = strings.TrimSpace(tag); tag != "" {
			tags = append(tags, tag)
		}
	}

	keywords := make([]tracker.Keyword, 0, len(args))
	for _, term := range args {
		keywords = append(keywords, tracker.Keyword{
			Keyword: term,
			Device:  addDevice,
			Country: addCountry,
			City:    addCity,
			Domain:  addDomain,
			Tags:    tags,
		})
	}

	ctx := cmd.Context()
	added, err := store.AddKeywords(ctx, keywords)
	if err != nil {
		return fmt.Errorf("failed to add keywords: %w", err)
	}
	fmt.Printf("Tracking %d new keywords for %s\n", len(added), addDomain)

	// New keywords get an immediate first scrape when a backend is
	// configured, so they don't sit rankless until the next schedule.
	if settings.ScraperType != "" && settings.ScraperType != tracker.ScraperNone {
		orchestrator := newOrchestrator(store, settings)
		_, stats := orchestrator.Refresh(ctx, added, settings)
		fmt.Printf("Initial scrape: %d keywords, %d failed\n", stats.Keywords, stats.Failed)
	}

	return nil
}

func runList(cmd *cobra.Command, args []string) error {
	settings, err := loadSettings()
	if err != nil {
		return err
	}

	store, err := openStorage(settings)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer func() { _ = store.Close() }()

	keywords, err := store.ListKeywords(cmd.Context(), listDomain)
	if err != nil {
		return fmt.Errorf("failed to list keywords: %w", err)
	}
	if len(keywords) == 0 {
		fmt.Println("No keywords tracked.")
		return nil
	}

	for _, kw := range keywords {
		status := "ok"
		if kw.LastError != nil {
			status = "error: " + kw.LastError.Message
		} else if kw.LastUpdated.IsZero() {
			status = "pending"
		}
		fmt.Printf("%6d  pos %3d  [%s/%s]  %-30s  %s  (%s)\n",
			kw.ID, kw.Position, kw.Device, kw.Country, kw.Keyword, kw.Domain, status)
	}
	return nil
}
