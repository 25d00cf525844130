// Package cmd provides the command-line interface for SerpTrack.
// It handles command parsing, configuration loading, and wiring the
// tracking engine to its storage and scheduler.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"serptrack/internal/config"
	"serptrack/internal/logging"
	"serptrack/internal/metrics"
	"serptrack/internal/scheduler"
	"serptrack/internal/scrapers"
	"serptrack/internal/storage"
	"serptrack/internal/tracker"
)

var (
	cfgFile   string
	version   string
	buildTime string
)

// rootCmd represents the base command when called without any subcommands.
// Running it starts the scheduler daemon.
var rootCmd = &cobra.Command{
	Use:   "serptrack",
	Short: "A search-engine rank tracker",
	Long: `SerpTrack tracks search-engine ranking positions for a set of
keywords across domains on a recurring schedule, recording a per-day
position history and replaying transient scrape failures from a
persistent retry queue.`,
	PersistentPreRunE: setupLogging,
	RunE:              runDaemon,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

// SetVersionInfo sets version information for the CLI
func SetVersionInfo(v, bt string) {
	version = v
	buildTime = bt
	rootCmd.Version = fmt.Sprintf("%s (built %s)", version, buildTime)
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./serptrack.yml)")

	rootCmd.PersistentFlags().StringP("database", "d", "./serptrack.db", "Path to SQLite database file")
	rootCmd.PersistentFlags().StringP("scraper", "s", "none", "Scraper backend identifier")
	rootCmd.PersistentFlags().Int("delay", 0, "Delay between scrape requests in seconds (0=no delay)")
	rootCmd.PersistentFlags().Bool("retry", false, "Queue failed scrapes for hourly retry")
	rootCmd.PersistentFlags().DurationP("timeout", "t", 60*time.Second, "Per-keyword scrape timeout")
	rootCmd.PersistentFlags().StringP("user-agent", "u", "SerpTrack/1.0", "HTTP User-Agent header")
	rootCmd.PersistentFlags().String("api-key", "", "Scraper backend API key")
	rootCmd.PersistentFlags().String("api-url", "", "Base URL for proxy-style scraper backends")
	rootCmd.PersistentFlags().String("scrape-interval", "daily", "Refresh schedule: never, hourly, daily, other_day, weekly, monthly")
	rootCmd.PersistentFlags().String("metrics-addr", "", "Address for the Prometheus /metrics listener (empty=disabled)")
	rootCmd.PersistentFlags().String("log-level", "info", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().String("log-file", "", "Log file path (empty=console only)")

	rootCmd.Flags().Bool("show-config", false, "Display current configuration in YAML format and exit")

	bindFlags := []struct {
		viperKey string
		flagName string
	}{
		{"database_path", "database"},
		{"scraper_type", "scraper"},
		{"scrape_delay_seconds", "delay"},
		{"scrape_retry", "retry"},
		{"scrape_timeout", "timeout"},
		{"user_agent", "user-agent"},
		{"scraper_api_key", "api-key"},
		{"scraper_api_url", "api-url"},
		{"scrape_interval", "scrape-interval"},
		{"metrics_addr", "metrics-addr"},
		{"log_level", "log-level"},
		{"log_file", "log-file"},
	}

	for _, bind := range bindFlags {
		if err := viper.BindPFlag(bind.viperKey, rootCmd.PersistentFlags().Lookup(bind.flagName)); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to bind flag %s: %v\n", bind.flagName, err)
		}
	}
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName("serptrack")
	}

	viper.AutomaticEnv()
	viper.SetEnvPrefix("ST")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

// loadSettings builds the explicit Settings value threaded through every
// core call.
func loadSettings() (config.Settings, error) {
	settings := config.DefaultSettings()
	if err := viper.Unmarshal(&settings); err != nil {
		return settings, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := settings.Validate(); err != nil {
		return settings, fmt.Errorf("invalid configuration: %w", err)
	}
	return settings, nil
}

func setupLogging(cmd *cobra.Command, args []string) error {
	logConfig := logging.DefaultConfig()
	logConfig.Level = logging.ParseLevel(viper.GetString("log_level"))
	logConfig.FilePath = viper.GetString("log_file")
	return logging.SetDefault(logConfig)
}

// openStorage creates the database directory if needed and opens the store.
func openStorage(settings config.Settings) (*storage.SQLiteStorage, error) {
	if dir := filepath.Dir(settings.DatabasePath); dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	return storage.NewSQLiteStorage(settings.DatabasePath)
}

// newOrchestrator wires store, queue and registry into the refresh engine.
func newOrchestrator(store *storage.SQLiteStorage, settings config.Settings) *tracker.Orchestrator {
	registry := scrapers.DefaultRegistry(settings.UserAgent)
	return tracker.NewOrchestrator(store, store, registry)
}

func showCurrentConfig(settings config.Settings) error {
	yamlData, err := yaml.Marshal(settings)
	if err != nil {
		return fmt.Errorf("failed to marshal configuration to YAML: %w", err)
	}

	fmt.Printf("# Current SerpTrack Configuration\n")
	fmt.Printf("# Generated at: %s\n", time.Now().Format(time.RFC3339))
	fmt.Printf("# Configuration file search paths: ./serptrack.yml\n")
	fmt.Printf("# Environment variables prefix: ST_\n\n")
	fmt.Print(string(yamlData))

	return nil
}

// runDaemon starts the scheduler loops and, when configured, the
// Prometheus metrics listener. It blocks until interrupted.
func runDaemon(cmd *cobra.Command, args []string) error {
	showConfig, _ := cmd.Flags().GetBool("show-config")

	settings, err := loadSettings()
	if err != nil {
		return err
	}

	if showConfig {
		return showCurrentConfig(settings)
	}

	store, err := openStorage(settings)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer func() { _ = store.Close() }()

	metrics.RegisterStoreCollector(store)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if settings.MetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		server := &http.Server{Addr: settings.MetricsAddr, Handler: mux}

		go func() {
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				fmt.Fprintf(os.Stderr, "metrics listener failed: %v\n", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = server.Shutdown(shutdownCtx)
		}()
	}

	orchestrator := newOrchestrator(store, settings)
	scheduler.New(orchestrator, store, settings).Run(ctx)
	return nil
}
