package keybinds

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_Match(t *testing.T) {
	r := NewDefaultRegistry()

	tests := []struct {
		name    string
		context Context
		key     string
		want    Action
		found   bool
	}{
		{"context binding", ContextList, "q", ActionQuit, true},
		{"global fallback", ContextForm, "ctrl+r", ActionExecute, true},
		{"modal binding", ContextHistory, "enter", ActionHistoryReplay, true},
		{"printable key free in form", ContextForm, "q", "", false},
		{"force quit everywhere", ContextHelp, "ctrl+c", ActionQuitForce, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := r.Match(tt.context, tt.key)
			assert.Equal(t, tt.found, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRegistry_MatchMultiKey(t *testing.T) {
	r := NewDefaultRegistry()

	_, complete, partial := r.MatchMultiKey(ContextList, "g")
	assert.False(t, complete)
	assert.True(t, partial)

	action, complete, partial := r.MatchMultiKey(ContextList, "g")
	assert.True(t, complete)
	assert.False(t, partial)
	assert.Equal(t, ActionGoToTop, action)

	// a broken sequence matches nothing and resets
	r.MatchMultiKey(ContextList, "g")
	_, complete, _ = r.MatchMultiKey(ContextList, "x")
	assert.False(t, complete)

	action, complete, _ = r.MatchMultiKey(ContextList, "x")
	assert.True(t, complete)
	assert.Equal(t, ActionExecute, action)
}

func TestRegistry_GetBindingString(t *testing.T) {
	r := NewDefaultRegistry()

	assert.Equal(t, "k/up", r.GetBindingString(ContextList, ActionNavigateUp))
	assert.Equal(t, "enter", r.GetBindingString(ContextForm, ActionExecute))
	assert.Equal(t, "ctrl+r", r.GetBindingString(ContextSearch, ActionExecute))
	assert.Equal(t, "unbound", r.GetBindingString(ContextHelp, ActionHistoryClear))
}

func TestRegistry_UnbindAndClone(t *testing.T) {
	r := NewDefaultRegistry()
	clone := r.Clone()

	r.Unbind(ContextList, ActionQuit)
	assert.False(t, r.HasBinding(ContextList, "q"))
	assert.True(t, clone.HasBinding(ContextList, "q"))
}

func TestApplyConfig(t *testing.T) {
	r := NewDefaultRegistry()
	cfg := &Config{Bindings: map[Context]map[Action]string{
		ContextList: {ActionNavigateUp: "ctrl+p, up", ActionQuit: ""},
	}}

	require.NoError(t, ApplyConfig(r, cfg))

	action, ok := r.Match(ContextList, "ctrl+p")
	assert.True(t, ok)
	assert.Equal(t, ActionNavigateUp, action)
	assert.False(t, r.HasBinding(ContextList, "k"), "default keys are replaced")
	assert.False(t, r.HasBinding(ContextList, "q"), "empty keys unbind")
}

func TestApplyConfig_Invalid(t *testing.T) {
	tests := []struct {
		name string
		cfg  *Config
	}{
		{"unknown context", &Config{Bindings: map[Context]map[Action]string{"nope": {ActionQuit: "q"}}}},
		{"unknown action", &Config{Bindings: map[Context]map[Action]string{ContextList: {"fly": "f"}}}},
		{"bare modifier", &Config{Bindings: map[Context]map[Action]string{ContextList: {ActionQuit: "ctrl+"}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, ApplyConfig(NewDefaultRegistry(), tt.cfg))
		})
	}
}

func TestValidator_Defaults(t *testing.T) {
	result := NewValidator().ValidateRegistry(NewDefaultRegistry())
	assert.False(t, result.HasErrors(), result.String())
}

func TestValidator_ReservedKey(t *testing.T) {
	cfg := &Config{Bindings: map[Context]map[Action]string{
		ContextList: {ActionQuit: "ctrl+c"},
	}}

	result := NewValidator().ValidateConfig(cfg)
	require.True(t, result.HasErrors())
	assert.Equal(t, "conflict", result.Errors[0].Type)
	assert.Equal(t, "ctrl+c", result.Errors[0].Key)
}

func TestValidator_Shadowing(t *testing.T) {
	cfg := &Config{Bindings: map[Context]map[Action]string{
		ContextForm: {ActionClear: "esc,ctrl+r"},
	}}

	result := NewValidator().ValidateConfig(cfg)
	assert.False(t, result.HasErrors())
	require.True(t, result.HasWarnings())
	assert.Contains(t, result.Warnings[0].Message, "shadows global binding")
}

func TestValidationError_Error(t *testing.T) {
	err := ValidationError{Type: "conflict", Context: ContextList, Key: "q", Message: "key bound 2 times"}
	assert.Equal(t, "[conflict] q in context 'list': key bound 2 times", err.Error())
}

func TestLoadOrDefault(t *testing.T) {
	dir := t.TempDir()

	r, err := LoadOrDefault(filepath.Join(dir, FileName))
	require.NoError(t, err)
	assert.True(t, r.HasBinding(ContextList, "q"), "missing file keeps defaults")

	path := filepath.Join(dir, FileName)
	content := `{
  "version": "1.0",
  // comments are fine
  "history": {
    "history_clear": "D",
  },
}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	r, err = LoadOrDefault(path)
	require.NoError(t, err)
	action, ok := r.Match(ContextHistory, "D")
	assert.True(t, ok)
	assert.Equal(t, ActionHistoryClear, action)
	assert.False(t, r.HasBinding(ContextHistory, "C"))

	require.NoError(t, os.WriteFile(path, []byte(`{"global": {"quit": "ctrl+c"}}`), 0644))
	_, err = LoadOrDefault(path)
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "reserved key"))
}

func TestExportDefaults_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, SaveConfig(ExportDefaults(), path))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "1.0", cfg.Version)
	assert.Equal(t, "k,up", cfg.Bindings[ContextList][ActionNavigateUp])

	r := NewRegistry()
	require.NoError(t, ApplyConfig(r, cfg))
	for _, ctx := range Contexts() {
		assert.ElementsMatch(t, NewDefaultRegistry().ListBindings(ctx), r.ListBindings(ctx), string(ctx))
	}
}
