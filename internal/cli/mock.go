package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/studiowebux/marketcli/internal/mock"
)

// MockOptions contains options for running the offline mock server
type MockOptions struct {
	ConfigPath string // yaml or json route overrides
	Host       string
	Port       int
}

// Mock serves the canned catalog until ctx is cancelled
func Mock(ctx context.Context, env *Env, opts MockOptions) error {
	cfg := &mock.Config{Logging: true}
	if opts.ConfigPath != "" {
		loaded, err := mock.LoadConfig(opts.ConfigPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	if opts.Host != "" {
		cfg.Host = opts.Host
	}
	if opts.Port != 0 {
		cfg.Port = opts.Port
	}

	workdir, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get working directory: %w", err)
	}

	server := mock.NewServer(cfg, workdir, env.Log)
	if err := server.Start(); err != nil {
		return err
	}

	fmt.Fprintf(env.Out, "Mock market-data API listening on %s\n", server.BaseURL())
	fmt.Fprintf(env.Out, "Point the client at it with: MARKETCLI_BASE_URL=%s marketcli\n", server.BaseURL())

	<-ctx.Done()
	env.Log.Info().Int("requests", len(server.Logs())).Msg("mock server stopping")
	return server.Stop()
}

// sampleMockConfig is written by MockInit as a starting point for overrides
func sampleMockConfig() *mock.Config {
	return &mock.Config{
		Host:    "localhost",
		Port:    8080,
		Prefix:  mock.DefaultPrefix,
		Symbols: []string{"BTCUSDT", "ETHUSDT"},
		Logging: true,
		Routes: []mock.Route{
			{
				Name:        "Depth outage",
				Path:        "/depth",
				Status:      503,
				Headers:     map[string]string{"Content-Type": "application/json"},
				Body:        `{"code":-1003,"msg":"service unavailable"}`,
				Description: "Every depth call fails",
			},
			{
				Name:        "Slow funding rates",
				Path:        "/futures/fundingRate",
				Status:      200,
				Headers:     map[string]string{"Content-Type": "application/json"},
				Body:        `[]`,
				Delay:       1500,
				Description: "Empty funding history after a delay",
			},
		},
	}
}

// MockInit writes a sample route override file for mock --config. An
// existing file is left alone.
func MockInit(env *Env, path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists", path)
	} else if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to check %s: %w", path, err)
	}
	if err := mock.SaveConfig(sampleMockConfig(), path); err != nil {
		return err
	}
	fmt.Fprintf(env.Out, "Wrote sample mock config to %s\n", path)
	fmt.Fprintf(env.Out, "Serve it with: marketcli mock --config %s\n", path)
	return nil
}
