// Package highlight applies ANSI terminal syntax highlighting to query
// text for display in the TUI watcher.
package highlight

import (
	"bytes"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
)

var (
	formatter chroma.Formatter
	style     *chroma.Style
)

func init() {
	formatter = formatters.Get("terminal256")
	style = styles.Get("monokai")
}

// lexerFor resolves a chroma lexer by query kind ("sql", "python",
// "executable"). Unknown kinds fall back to plain-text, which chroma
// renders unhighlighted but still escapes safely.
func lexerFor(kind string) chroma.Lexer {
	switch kind {
	case "python":
		return lexers.Get("python")
	case "sql":
		return lexers.Get("sql")
	default:
		return lexers.Fallback
	}
}

// Text returns s with ANSI terminal syntax highlighting applied for
// the given query kind. On error or empty input, the original string
// is returned unchanged.
func Text(kind, s string) string {
	if s == "" {
		return s
	}

	lexer := lexerFor(kind)
	iterator, err := lexer.Tokenise(nil, s)
	if err != nil {
		return s
	}

	var buf bytes.Buffer
	if err := formatter.Format(&buf, style, iterator); err != nil {
		return s
	}

	return strings.TrimRight(buf.String(), "\n")
}

// SQL is a convenience wrapper over Text for the common "sql" kind.
func SQL(s string) string {
	return Text("sql", s)
}
