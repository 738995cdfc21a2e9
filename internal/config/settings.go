package config

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"github.com/tidwall/jsonc"

	"github.com/studiowebux/marketcli/internal/catalog"
)

// EnvPrefix namespaces environment overrides (MARKETCLI_BASE_URL, ...)
const EnvPrefix = "MARKETCLI"

// Settings is the resolved runtime configuration
type Settings struct {
	BaseURL          string        `mapstructure:"base_url" yaml:"base_url" json:"base_url"`
	Timeout          time.Duration `mapstructure:"timeout" yaml:"timeout" json:"timeout"`
	History          bool          `mapstructure:"history" yaml:"history" json:"history"`
	LogLevel         string        `mapstructure:"log_level" yaml:"log_level" json:"log_level"`
	Theme            string        `mapstructure:"theme" yaml:"theme" json:"theme"`
	SweepConcurrency int           `mapstructure:"sweep_concurrency" yaml:"sweep_concurrency" json:"sweep_concurrency"`

	// File is the settings file that was read, empty when none was found
	File string `mapstructure:"-" yaml:"-" json:"-"`
}

// Defaults returns the settings used when nothing overrides them
func Defaults() Settings {
	return Settings{
		BaseURL:          catalog.DefaultBaseURL,
		Timeout:          0,
		History:          true,
		LogLevel:         "info",
		Theme:            "monokai",
		SweepConcurrency: 4,
	}
}

// LoadEnvFiles loads .env files from the working directory.
// Variables already present in the environment win.
func LoadEnvFiles() {
	for _, envFile := range []string{".env", ".env.local"} {
		_ = godotenv.Load(envFile)
	}
}

// Load resolves settings from, in order of precedence, environment variables,
// the settings file and defaults. An empty path falls back to SettingsFile; a
// missing default file is not an error, a missing explicit one is.
func Load(path string) (*Settings, error) {
	explicit := path != ""
	if !explicit {
		path = SettingsFile
	}

	v := newViper()

	if path != "" {
		if _, err := os.Stat(path); err != nil {
			if explicit || !os.IsNotExist(err) {
				return nil, fmt.Errorf("failed to read settings file %s: %w", path, err)
			}
			path = ""
		}
	}

	if path != "" {
		if err := readInto(v, path); err != nil {
			return nil, err
		}
	}

	s := Defaults()
	if err := v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("failed to decode settings: %w", err)
	}
	s.BaseURL = strings.TrimRight(strings.TrimSpace(s.BaseURL), "/")
	s.LogLevel = strings.ToLower(strings.TrimSpace(s.LogLevel))
	s.File = path

	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

func newViper() *viper.Viper {
	v := viper.New()
	d := Defaults()
	v.SetDefault("base_url", d.BaseURL)
	v.SetDefault("timeout", d.Timeout)
	v.SetDefault("history", d.History)
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("theme", d.Theme)
	v.SetDefault("sweep_concurrency", d.SweepConcurrency)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	return v
}

// readInto reads a settings file into v. JSON with comments is stripped with
// jsonc before viper sees it; other formats go through viper by extension.
func readInto(v *viper.Viper, path string) error {
	if strings.EqualFold(filepath.Ext(path), ".jsonc") {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read settings file %s: %w", path, err)
		}
		v.SetConfigType("json")
		if err := v.ReadConfig(bytes.NewReader(jsonc.ToJSON(data))); err != nil {
			return fmt.Errorf("failed to parse settings file %s: %w", path, err)
		}
		return nil
	}

	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to parse settings file %s: %w", path, err)
	}
	return nil
}

// Validate checks values that cannot be used as-is
func (s *Settings) Validate() error {
	var errs []error

	u, err := url.Parse(s.BaseURL)
	switch {
	case s.BaseURL == "":
		errs = append(errs, errors.New("base_url must not be empty"))
	case err != nil:
		errs = append(errs, fmt.Errorf("base_url is not a valid URL: %w", err))
	case u.Scheme != "http" && u.Scheme != "https":
		errs = append(errs, fmt.Errorf("base_url must use http or https, got %q", s.BaseURL))
	case u.Host == "":
		errs = append(errs, fmt.Errorf("base_url has no host: %q", s.BaseURL))
	}

	if s.Timeout < 0 {
		errs = append(errs, fmt.Errorf("timeout must not be negative, got %s", s.Timeout))
	}
	if s.SweepConcurrency < 1 {
		errs = append(errs, fmt.Errorf("sweep_concurrency must be at least 1, got %d", s.SweepConcurrency))
	}

	return errors.Join(errs...)
}

// Watch reloads the settings file whenever it changes and hands the result to
// onChange until ctx is done. The parent directory is watched so editors that
// replace the file on save are still seen.
func Watch(ctx context.Context, path string, onChange func(*Settings, error)) error {
	if path == "" {
		return errors.New("no settings file to watch")
	}
	path = filepath.Clean(path)

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := w.Add(filepath.Dir(path)); err != nil {
		w.Close()
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(path), err)
	}

	go func() {
		defer w.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != path {
					continue
				}
				if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
					continue
				}
				if _, err := os.Stat(path); err != nil {
					// renamed away; the Create of the replacement follows
					continue
				}
				onChange(Load(path))
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				onChange(nil, fmt.Errorf("watch error: %w", err))
			}
		}
	}()

	return nil
}
