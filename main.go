package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"gmapscrape/internal/config"
	"gmapscrape/internal/logger"
	_ "gmapscrape/internal/sites/maps"
)

var version = "dev"

// app is the state shared by every command once flags are parsed.
type app struct {
	cfg      *config.Config
	log      *zap.Logger
	closeLog func()
}

var (
	state      app
	configFile string
	envFile    string
)

// Flags every command understands, keyed by config key.
var globalKeys = map[string]string{
	"browser.headless":   "headless",
	"browser.proxy":      "proxy",
	"browser.bin":        "browser-bin",
	"browser.download":   "download",
	"browser.user_agent": "user-agent",
	"browser.images":     "images",
	"browser.timeout":    "timeout",
	"log.level":          "log-level",
	"log.file":           "log-file",
}

// Per-command flags bound to config keys.
var commandKeys = map[string]map[string]string{}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd := newRootCmd()
	err := rootCmd.ExecuteContext(ctx)
	if state.closeLog != nil {
		state.closeLog()
	}
	if err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "gmapscrape",
		Short:   "Collect business listings from Google Maps",
		Version: version,
		Long: `gmapscrape drives a real Chrome browser through Google Maps searches,
scrolls the results list to the end, opens every listing and exports the
extracted businesses as CSV, JSON, XLSX or SQLite.`,
		Example: `  # Scrape every coffee shop in Austin into CSV and JSON
  gmapscrape search "coffee shops" -L "Austin, TX"

  # Several queries in one browser session, headless, only well rated places
  gmapscrape search dentist orthodontist -L Denver --headless --min-rating 4.5 -f csv,xlsx

  # Full place page with reviews and menu
  gmapscrape place --reviews --max-reviews 20 --menu "https://www.google.com/maps/place/..."

  # Summarize an earlier export
  gmapscrape report coffee_shops_Austin_TX_1700000000.json

  # Check that a browser can be found and launched
  gmapscrape doctor`,
		SilenceUsage:      true,
		PersistentPreRunE: setup,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&configFile, "config", "c", "", "Config file (default ./gmapscrape.yaml or $HOME/.config/gmapscrape/gmapscrape.yaml)")
	pf.StringVar(&envFile, "env-file", ".env", "Dotenv file loaded before reading the environment")
	pf.Bool("headless", false, "Run the browser without a window")
	pf.StringP("proxy", "p", "", "Proxy URL (e.g. http://127.0.0.1:7890)")
	pf.String("browser-bin", "", "Chrome or Chromium binary to use")
	pf.Bool("download", true, "Download a managed Chromium when no binary is given")
	pf.String("user-agent", "", "User agent override (default: random desktop Chrome)")
	pf.Bool("images", true, "Load images")
	pf.DurationP("timeout", "t", config.DefaultTimeout, "Timeout for page loads and element waits")
	pf.String("log-level", "info", "Log level (debug, info, warn, error)")
	pf.String("log-file", "scraper.log", "Log file, JSON lines (empty disables)")

	rootCmd.AddCommand(newSearchCmd(), newPlaceCmd(), newReportCmd(), newDoctorCmd())
	return rootCmd
}

// setup loads the configuration for the running command and builds the logger.
func setup(cmd *cobra.Command, _ []string) error {
	keys := make(map[string]string, len(globalKeys))
	for k, v := range globalKeys {
		keys[k] = v
	}
	for k, v := range commandKeys[cmd.Name()] {
		keys[k] = v
	}

	cfg, err := config.Load(config.Options{
		File:     configFile,
		Flags:    cmd.Flags(),
		FlagKeys: keys,
		EnvFile:  envFile,
	})
	if err != nil {
		return err
	}

	log, closeLog, err := logger.New(logger.Config{Level: cfg.Log.Level, File: cfg.Log.File})
	if err != nil {
		return err
	}
	state = app{cfg: cfg, log: log, closeLog: closeLog}
	log.Debug("configuration loaded", zap.String("command", cmd.Name()), zap.Any("config", cfg))
	return nil
}

func printf(cmd *cobra.Command, format string, args ...any) {
	fmt.Fprintf(cmd.OutOrStdout(), format, args...)
}
