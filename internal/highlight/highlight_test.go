package highlight

import (
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

var ansi = regexp.MustCompile(`\x1b\[[0-9;]*m`)

func TestJSON(t *testing.T) {
	src := "{\n  \"symbol\": \"BTCUSDT\",\n  \"price\": 64000.5\n}"
	out := JSON(src, "monokai")

	assert.Contains(t, out, "\x1b[")
	assert.Equal(t, src, strings.TrimRight(ansi.ReplaceAllString(out, ""), "\n"))
}

func TestCommand(t *testing.T) {
	src := `curl -X GET "http://localhost:8080/api/crypto/ping"`
	out := Command(src, "dracula")

	assert.Equal(t, src, strings.TrimRight(ansi.ReplaceAllString(out, ""), "\n"))
}

func TestEmpty(t *testing.T) {
	assert.Equal(t, "", JSON("", "monokai"))
}

func TestTheme(t *testing.T) {
	assert.Equal(t, "dracula", Theme("dracula"))
	assert.Equal(t, DefaultTheme, Theme(""))
	assert.Equal(t, DefaultTheme, Theme("no-such-style"))
	assert.Contains(t, Themes(), "monokai")
}
