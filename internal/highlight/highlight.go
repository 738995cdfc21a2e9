// Package highlight colours JSON payloads and curl commands for terminal output.
package highlight

import (
	"bytes"
	"strings"

	"github.com/alecthomas/chroma/v2/quick"
	"github.com/alecthomas/chroma/v2/styles"
)

// DefaultTheme is used when the configured theme is unknown
const DefaultTheme = "monokai"

const formatter = "terminal256"

// JSON highlights a JSON document. Input is returned unchanged when
// highlighting fails.
func JSON(src, theme string) string {
	return highlight(src, "json", theme)
}

// Command highlights a shell command line
func Command(src, theme string) string {
	return highlight(src, "bash", theme)
}

// Theme resolves a chroma style name, falling back to DefaultTheme
func Theme(name string) string {
	if name == "" {
		return DefaultTheme
	}
	if _, ok := styles.Registry[name]; ok {
		return name
	}
	return DefaultTheme
}

// Themes lists the available style names
func Themes() []string {
	return styles.Names()
}

func highlight(src, lexer, theme string) string {
	if src == "" {
		return src
	}
	var buf bytes.Buffer
	if err := quick.Highlight(&buf, src, lexer, formatter, Theme(theme)); err != nil {
		return src
	}
	out := buf.String()
	if !strings.HasSuffix(src, "\n") {
		out = strings.TrimSuffix(out, "\n")
	}
	return out
}
