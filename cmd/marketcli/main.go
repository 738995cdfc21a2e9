package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/studiowebux/marketcli/internal/cli"
	"github.com/studiowebux/marketcli/internal/config"
	"github.com/studiowebux/marketcli/internal/history"
	"github.com/studiowebux/marketcli/internal/keybinds"
	"github.com/studiowebux/marketcli/internal/logging"
	"github.com/studiowebux/marketcli/internal/output"
	"github.com/studiowebux/marketcli/internal/tui"
	"github.com/studiowebux/marketcli/internal/version"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()

	if err != nil {
		// The failure message was already printed with the result
		if !errors.Is(err, cli.ErrCallFailed) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "marketcli",
	Short: "Crypto market-data API explorer",
	Long: `marketcli explores a crypto exchange's public market-data API.

Run without arguments to start the interactive TUI: pick an endpoint, edit its
parameters, call it and inspect the response. The subcommands cover the same
catalog from scripts.

Settings are read from ~/.marketcli/config.yaml (or --config), overridden by
MARKETCLI_* environment variables and .env files in the working directory.

Examples:
  marketcli                                     # Start interactive TUI
  marketcli list --market spot                  # Browse the catalog
  marketcli call "Spot Depth" -s limit=5        # Call one endpoint
  marketcli call "Spot Depth" -q "bids[:3]"     # Filter with JMESPath
  marketcli sweep                               # Call every endpoint once
  marketcli mock --port 8080                    # Serve canned responses
  marketcli --base-url http://localhost:8080/api/crypto`,
	Version:       version.Current,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTUI(cmd.Context())
	},
}

// Flags shared by every command
var (
	flagConfig    string
	flagBaseURL   string
	flagLogLevel  string
	flagNoHistory bool
)

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Settings file (default ~/.marketcli/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&flagBaseURL, "base-url", "", "Override the API base URL")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Log level (debug/info/warn/error/off)")
	rootCmd.PersistentFlags().BoolVar(&flagNoHistory, "no-history", false, "Do not record calls")

	addCommands(rootCmd)
}

// loadSettings resolves settings and applies the persistent flags over them
func loadSettings() (*config.Settings, error) {
	if err := config.Initialize(); err != nil {
		return nil, fmt.Errorf("failed to initialize config: %w", err)
	}
	config.LoadEnvFiles()

	settings, err := config.Load(flagConfig)
	if err != nil {
		return nil, err
	}
	if err := applyFlags(settings); err != nil {
		return nil, err
	}
	return settings, nil
}

// applyFlags puts the persistent flags over resolved settings
func applyFlags(settings *config.Settings) error {
	if flagBaseURL != "" {
		settings.BaseURL = strings.TrimRight(flagBaseURL, "/")
	}
	if flagLogLevel != "" {
		settings.LogLevel = flagLogLevel
	}
	if flagNoHistory {
		settings.History = false
	}
	return settings.Validate()
}

// openHistory opens the call log database
func openHistory(log zerolog.Logger) (*history.Manager, error) {
	mgr, err := history.NewManager(config.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open history: %w", err)
	}
	log.Debug().Str("path", config.DatabasePath).Msg("history opened")
	return mgr, nil
}

// newEnv prepares what a subcommand runs against. The returned func closes
// the call log.
func newEnv(withHistory bool) (*cli.Env, func(), error) {
	settings, err := loadSettings()
	if err != nil {
		return nil, nil, err
	}
	log := logging.ForCLI(settings.LogLevel)

	env := &cli.Env{
		Out:      os.Stdout,
		Err:      os.Stderr,
		Settings: settings,
		Log:      log,
		Color:    output.IsTerminal(os.Stdout),
	}
	if !withHistory || !settings.History {
		return env, func() {}, nil
	}

	mgr, err := openHistory(log)
	if err != nil {
		return nil, nil, err
	}
	env.History = mgr
	return env, func() { mgr.Close() }, nil
}

// runTUI starts the interactive TUI, logging to the log file since the
// terminal belongs to the UI
func runTUI(ctx context.Context) error {
	settings, err := loadSettings()
	if err != nil {
		return err
	}

	log, closer, err := logging.ForTUI(config.LogFile, settings.LogLevel)
	if err != nil {
		return err
	}
	defer closer.Close()

	keys, err := keybinds.LoadOrDefault(filepath.Join(config.ConfigDir, keybinds.FileName))
	if err != nil {
		return err
	}

	// Opened even when recording is off so a settings reload can turn it on
	mgr, err := openHistory(log)
	if err != nil {
		return err
	}
	defer mgr.Close()

	return tui.Run(ctx, tui.Options{
		Settings:  settings,
		Log:       log,
		History:   mgr,
		Keys:      keys,
		Overrides: applyFlags,
	})
}
