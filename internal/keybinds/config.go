package keybinds

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/tidwall/jsonc"
)

// FileName is the keybinding override file looked up in the config dir
const FileName = "keybinds.json"

// Config is the user's keybinding overrides: context -> action -> keys.
// Keys are comma separated ("up,k"). An empty string unbinds the action.
type Config struct {
	Version  string                       `json:"version,omitempty"`
	Bindings map[Context]map[Action]string `json:"-"`
}

// UnmarshalJSON reads the flat {"version": ..., "<context>": {...}} layout
func (c *Config) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	c.Bindings = make(map[Context]map[Action]string)
	for name, value := range raw {
		if name == "version" {
			if err := json.Unmarshal(value, &c.Version); err != nil {
				return fmt.Errorf("version: %w", err)
			}
			continue
		}
		var section map[Action]string
		if err := json.Unmarshal(value, &section); err != nil {
			return fmt.Errorf("context %q: %w", name, err)
		}
		c.Bindings[Context(name)] = section
	}
	return nil
}

// MarshalJSON writes the flat layout read by UnmarshalJSON
func (c Config) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(c.Bindings)+1)
	if c.Version != "" {
		out["version"] = c.Version
	}
	for ctx, section := range c.Bindings {
		out[string(ctx)] = section
	}
	return json.Marshal(out)
}

// LoadConfig loads keybinding overrides from a JSON file. Comments and
// trailing commas are accepted.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var config Config
	if err := json.Unmarshal(jsonc.ToJSON(data), &config); err != nil {
		return nil, fmt.Errorf("invalid %s format: %w", FileName, err)
	}

	return &config, nil
}

// SaveConfig saves keybinding configuration to a JSON file
func SaveConfig(config *Config, path string) error {
	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ApplyConfig applies user configuration to a registry. Each listed action
// loses its default keys in that context and takes the configured ones.
func ApplyConfig(registry *Registry, config *Config) error {
	for ctx, section := range config.Bindings {
		if !knownContext(ctx) {
			return fmt.Errorf("unknown context %q", ctx)
		}
		for action, keys := range section {
			if err := ValidateAction(string(action)); err != nil {
				return fmt.Errorf("context %q: %w", ctx, err)
			}
			registry.Unbind(ctx, action)
			for _, key := range splitKeys(keys) {
				if err := ValidateKey(key); err != nil {
					return fmt.Errorf("context %q, action %q: %w", ctx, action, err)
				}
				registry.Register(ctx, key, action)
			}
		}
	}
	return nil
}

// LoadOrDefault loads user config if it exists, otherwise returns the default
// registry. Configs with errors are rejected as a whole.
func LoadOrDefault(configPath string) (*Registry, error) {
	registry := NewDefaultRegistry()

	if configPath == "" {
		return registry, nil
	}
	if _, err := os.Stat(configPath); err != nil {
		return registry, nil
	}

	config, err := LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", FileName, err)
	}

	if err := ApplyConfig(registry, config); err != nil {
		return nil, fmt.Errorf("failed to apply keybinds config: %w", err)
	}

	if result := NewValidator().ValidateRegistry(registry); result.HasErrors() {
		return nil, fmt.Errorf("invalid keybinds config:\n%s", result.String())
	}

	return registry, nil
}

// ExportDefaults exports the default registry in config file form
func ExportDefaults() *Config {
	r := NewDefaultRegistry()
	config := &Config{Version: "1.0", Bindings: make(map[Context]map[Action]string)}

	for _, ctx := range Contexts() {
		keysByAction := make(map[Action][]string)
		for _, b := range r.ListBindings(ctx) {
			keysByAction[b.Action] = append(keysByAction[b.Action], b.Key)
		}
		if len(keysByAction) == 0 {
			continue
		}
		section := make(map[Action]string, len(keysByAction))
		for action, keys := range keysByAction {
			sort.Strings(keys)
			section[action] = strings.Join(keys, ",")
		}
		config.Bindings[ctx] = section
	}

	return config
}

func splitKeys(keys string) []string {
	var out []string
	for _, k := range strings.Split(keys, ",") {
		if k = strings.TrimSpace(k); k != "" {
			out = append(out, k)
		}
	}
	return out
}

func knownContext(ctx Context) bool {
	for _, c := range Contexts() {
		if c == ctx {
			return true
		}
	}
	return false
}
