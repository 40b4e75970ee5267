// Package querytext renders query parameters as short, stable strings
// for display in activity logs, the TUI preview pane, and CLI output.
package querytext

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// FormatParams renders a params object as "key=value, key2=value2",
// sorted by key so the output is stable across runs. Returns "" for
// an empty or nil map.
func FormatParams(params map[string]any) string {
	if len(params) == 0 {
		return ""
	}

	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + "=" + formatValue(params[k])
	}
	return strings.Join(parts, ", ")
}

func formatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return "null"
	case string:
		return quote(val)
	case bool:
		return strconv.FormatBool(val)
	case float64:
		return strconv.FormatFloat(val, 'g', -1, 64)
	case []any:
		items := make([]string, len(val))
		for i, e := range val {
			items[i] = formatValue(e)
		}
		return "[" + strings.Join(items, ", ") + "]"
	case map[string]any:
		return "{" + FormatParams(val) + "}"
	default:
		return fmt.Sprint(val)
	}
}

// quote wraps a string value in single quotes, escaping internal quotes.
func quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
