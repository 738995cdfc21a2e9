package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/studiowebux/marketcli/internal/cli"
	"github.com/studiowebux/marketcli/internal/config"
	"github.com/studiowebux/marketcli/internal/converter"
	"github.com/studiowebux/marketcli/internal/keybinds"
	"github.com/studiowebux/marketcli/internal/version"
)

// Flags for list/show/curl
var (
	listSearch string
	listMarket string
	listOutput string
	showOutput string
	curlSets   []string
)

// Flags for call
var (
	callSets   []string
	callQuery  string
	callOutput string
	callSave   string
)

// Flags for sweep
var (
	sweepMarket      string
	sweepConcurrency int
	sweepOutput      string
)

// Flags for history/stats
var (
	historyEndpoint string
	historyLimit    int
	historyOutput   string
	statsEndpoint   string
	statsOutput     string
)

// Flags for mock
var (
	mockConfig string
	mockHost   string
	mockPort   int
	mockInit   string
)

// Flags for export
var (
	exportDir        string
	exportFormat     string
	exportOrganizeBy string
	exportTemplated  bool
)

var (
	keybindsForce bool
	versionCheck  bool
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the endpoint catalog",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		env, done, err := newEnv(false)
		if err != nil {
			return err
		}
		defer done()
		return cli.List(env, cli.ListOptions{Search: listSearch, Market: listMarket, Output: listOutput})
	},
}

var showCmd = &cobra.Command{
	Use:   "show <endpoint>",
	Short: "Show an endpoint, its parameters and its default request",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, done, err := newEnv(false)
		if err != nil {
			return err
		}
		defer done()
		return cli.Show(env, args[0], showOutput)
	},
}

var curlCmd = &cobra.Command{
	Use:   "curl <endpoint>",
	Short: "Print the curl command for an endpoint",
	Long: `Print the curl command equivalent to calling an endpoint with its
default values, overridden by --set.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, done, err := newEnv(false)
		if err != nil {
			return err
		}
		defer done()
		return cli.Curl(env, args[0], curlSets)
	},
}

var callCmd = &cobra.Command{
	Use:   "call [endpoint]",
	Short: "Call one endpoint and print the response",
	Long: `Call one endpoint with its default values, overridden by --set.

Without an endpoint an interactive picker is shown. The exit status is 1 when
the call fails.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var name string
		if len(args) > 0 {
			name = args[0]
		} else {
			picked, err := cli.PickEndpoint()
			if err != nil {
				return err
			}
			name = picked
		}

		env, done, err := newEnv(true)
		if err != nil {
			return err
		}
		defer done()
		return cli.Call(cmd.Context(), env, cli.CallOptions{
			Endpoint: name,
			Set:      callSets,
			Query:    callQuery,
			Output:   callOutput,
			SavePath: callSave,
		})
	},
}

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Call every endpoint once with its default values",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		env, done, err := newEnv(true)
		if err != nil {
			return err
		}
		defer done()
		return cli.Sweep(cmd.Context(), env, cli.SweepOptions{
			Market:      sweepMarket,
			Concurrency: sweepConcurrency,
			Output:      sweepOutput,
		})
	},
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent calls",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		env, done, err := newEnv(true)
		if err != nil {
			return err
		}
		defer done()
		return cli.History(cmd.Context(), env, cli.HistoryOptions{
			Endpoint: historyEndpoint,
			Limit:    historyLimit,
			Output:   historyOutput,
		})
	},
}

var historyShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one recorded call (an ID prefix is enough)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, done, err := newEnv(true)
		if err != nil {
			return err
		}
		defer done()
		return cli.HistoryShow(cmd.Context(), env, args[0], historyOutput)
	},
}

var historyDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete one recorded call (an ID prefix is enough)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, done, err := newEnv(true)
		if err != nil {
			return err
		}
		defer done()
		return cli.HistoryDelete(cmd.Context(), env, args[0])
	},
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete every recorded call",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		env, done, err := newEnv(true)
		if err != nil {
			return err
		}
		defer done()
		return cli.HistoryClear(cmd.Context(), env)
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show per-endpoint call statistics",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		env, done, err := newEnv(true)
		if err != nil {
			return err
		}
		defer done()
		return cli.Stats(cmd.Context(), env, cli.StatsOptions{Endpoint: statsEndpoint, Output: statsOutput})
	},
}

var mockCmd = &cobra.Command{
	Use:   "mock",
	Short: "Serve canned market-data responses for every endpoint",
	Long: `Serve plausible responses for every catalog endpoint until interrupted.

Routes in --config (yaml or json) override the generated responses, e.g. to
simulate errors or latency. --init writes a sample override file and exits.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		env, done, err := newEnv(false)
		if err != nil {
			return err
		}
		defer done()
		if mockInit != "" {
			return cli.MockInit(env, mockInit)
		}
		return cli.Mock(cmd.Context(), env, cli.MockOptions{ConfigPath: mockConfig, Host: mockHost, Port: mockPort})
	},
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the catalog as .http, json or yaml files",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		env, done, err := newEnv(false)
		if err != nil {
			return err
		}
		defer done()
		dir := exportDir
		if dir == "" {
			dir = config.ExportDir
		}
		return cli.Export(env, converter.ExportOptions{
			OutputDir:  dir,
			Format:     exportFormat,
			OrganizeBy: exportOrganizeBy,
			Templated:  exportTemplated,
		})
	},
}

var keybindsCmd = &cobra.Command{
	Use:   "keybinds",
	Short: "Check the TUI key bindings file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.Initialize(); err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}
		path := filepath.Join(config.ConfigDir, keybinds.FileName)
		if _, err := os.Stat(path); os.IsNotExist(err) {
			fmt.Fprintf(cmd.OutOrStdout(), "No %s, using default key bindings\n", path)
			return nil
		}

		registry, err := keybinds.LoadOrDefault(path)
		if err != nil {
			return err
		}
		result := keybinds.NewValidator().ValidateRegistry(registry)
		if result.HasWarnings() {
			fmt.Fprintln(cmd.OutOrStdout(), result.String())
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s is valid\n", path)
		return nil
	},
}

var keybindsInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the default key bindings to keybinds.json for editing",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.Initialize(); err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}
		path := filepath.Join(config.ConfigDir, keybinds.FileName)
		if _, err := os.Stat(path); err == nil && !keybindsForce {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		}
		if err := keybinds.SaveConfig(keybinds.ExportDefaults(), path); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "marketcli %s\n", version.Current)
		if !versionCheck {
			return nil
		}

		update, err := version.NewChecker().Check(cmd.Context(), version.Current)
		if err != nil {
			return fmt.Errorf("version check failed: %w", err)
		}
		if update.Available {
			fmt.Fprintf(out, "A newer version is available: %s\n%s\n", update.Latest, update.URL)
		} else {
			fmt.Fprintln(out, "You are running the latest version")
		}
		return nil
	},
}

func addCommands(root *cobra.Command) {
	listCmd.Flags().StringVarP(&listSearch, "search", "s", "", "Fuzzy filter on endpoint names")
	listCmd.Flags().StringVarP(&listMarket, "market", "m", "", "Market (spot/futures)")
	listCmd.Flags().StringVarP(&listOutput, "output", "o", "", "Output format (table/json/yaml)")

	showCmd.Flags().StringVarP(&showOutput, "output", "o", "", "Output format (table/json/yaml)")

	curlCmd.Flags().StringArrayVarP(&curlSets, "set", "s", nil, "Set a parameter (name=value), can be repeated")

	callCmd.Flags().StringArrayVarP(&callSets, "set", "s", nil, "Set a parameter (name=value), can be repeated")
	callCmd.Flags().StringVarP(&callQuery, "query", "q", "", "JMESPath expression applied to a successful response")
	callCmd.Flags().StringVarP(&callOutput, "output", "o", "", "Output format (text/body/json/yaml)")
	callCmd.Flags().StringVar(&callSave, "save", "", "Save the response body to a file")

	sweepCmd.Flags().StringVarP(&sweepMarket, "market", "m", "", "Market (spot/futures)")
	sweepCmd.Flags().IntVarP(&sweepConcurrency, "concurrency", "c", 0, "Concurrent calls (default from settings)")
	sweepCmd.Flags().StringVarP(&sweepOutput, "output", "o", "", "Output format (table/json/yaml)")

	historyCmd.PersistentFlags().StringVarP(&historyOutput, "output", "o", "", "Output format (table/json/yaml)")
	historyCmd.Flags().StringVarP(&historyEndpoint, "endpoint", "e", "", "Only calls to this endpoint")
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 0, "Maximum entries (default 100)")
	historyCmd.AddCommand(historyShowCmd, historyDeleteCmd, historyClearCmd)

	statsCmd.Flags().StringVarP(&statsEndpoint, "endpoint", "e", "", "Only this endpoint")
	statsCmd.Flags().StringVarP(&statsOutput, "output", "o", "", "Output format (table/json/yaml)")

	mockCmd.Flags().StringVarP(&mockConfig, "config", "c", "", "Route overrides (yaml/json)")
	mockCmd.Flags().StringVar(&mockHost, "host", "", "Listen host (default localhost)")
	mockCmd.Flags().IntVarP(&mockPort, "port", "p", 0, "Listen port (default 8080)")
	mockCmd.Flags().StringVar(&mockInit, "init", "", "Write a sample --config file here and exit")

	exportCmd.Flags().StringVarP(&exportDir, "output", "o", "", "Output directory (default ~/.marketcli/export)")
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "http", "Output format (http/json/yaml)")
	exportCmd.Flags().StringVar(&exportOrganizeBy, "organize-by", "market", "Organization strategy (market/flat), .http only")
	exportCmd.Flags().BoolVar(&exportTemplated, "templated", false, "Emit {{name}} placeholders instead of default values")

	keybindsInitCmd.Flags().BoolVarP(&keybindsForce, "force", "f", false, "Overwrite an existing file")
	keybindsCmd.AddCommand(keybindsInitCmd)

	versionCmd.Flags().BoolVar(&versionCheck, "check", false, "Check GitHub for a newer release")

	root.AddCommand(listCmd, showCmd, curlCmd, callCmd, sweepCmd, historyCmd, statsCmd,
		mockCmd, exportCmd, keybindsCmd, versionCmd)
}
