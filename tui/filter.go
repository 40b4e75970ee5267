package tui

import (
	"regexp"
	"strings"
	"time"
)

type filterKind int

const (
	filterText     filterKind = iota // plain text substring match
	filterDuration                   // d>100ms, d<10ms
	filterError                      // "error" keyword
	filterKindTag                    // kind:sql, kind:python, kind:executable
)

type durationOp int

const (
	durGT durationOp = iota // >
	durLT                   // <
)

type filterCondition struct {
	kind filterKind

	// filterText
	text string

	// filterDuration
	durOp    durationOp
	durValue time.Duration

	// filterKindTag
	kindPattern string
}

var reDuration = regexp.MustCompile(`^d([><])(\d+(?:\.\d+)?)(us|µs|ms|s|m)$`)

func parseFilter(input string) []filterCondition {
	tokens := strings.Fields(input)
	conds := make([]filterCondition, 0, len(tokens))

	for _, tok := range tokens {
		if c, ok := parseDuration(tok); ok {
			conds = append(conds, c)
			continue
		}
		if strings.ToLower(tok) == "error" {
			conds = append(conds, filterCondition{kind: filterError})
			continue
		}
		if c, ok := parseKindTag(tok); ok {
			conds = append(conds, c)
			continue
		}
		// Fallback: plain text match.
		conds = append(conds, filterCondition{
			kind: filterText,
			text: strings.ToLower(tok),
		})
	}
	return conds
}

func parseDuration(tok string) (filterCondition, bool) {
	m := reDuration.FindStringSubmatch(tok)
	if m == nil {
		return filterCondition{}, false
	}
	op := durGT
	if m[1] == "<" {
		op = durLT
	}
	unit := m[3]
	raw := m[2] + unitSuffix(unit)
	d, err := time.ParseDuration(raw)
	if err != nil {
		return filterCondition{}, false
	}
	return filterCondition{
		kind:     filterDuration,
		durOp:    op,
		durValue: d,
	}, true
}

func unitSuffix(unit string) string {
	switch unit {
	case "us", "µs":
		return "us"
	case "ms":
		return "ms"
	case "s":
		return "s"
	case "m":
		return "m"
	}
	return "ms"
}

func parseKindTag(tok string) (filterCondition, bool) {
	lower := strings.ToLower(tok)
	if !strings.HasPrefix(lower, "kind:") {
		return filterCondition{}, false
	}
	pattern := lower[len("kind:"):]
	if pattern == "" {
		return filterCondition{}, false
	}
	return filterCondition{
		kind:        filterKindTag,
		kindPattern: pattern,
	}, true
}

func (c filterCondition) matches(a Activity) bool {
	switch c.kind {
	case filterText:
		return strings.Contains(strings.ToLower(a.Query), c.text)
	case filterDuration:
		dur := a.duration()
		switch c.durOp {
		case durGT:
			return dur > c.durValue
		case durLT:
			return dur < c.durValue
		}
	case filterError:
		return a.Error != ""
	case filterKindTag:
		return strings.EqualFold(a.Kind, c.kindPattern)
	}
	return false
}

func matchAllConditions(a Activity, conds []filterCondition) bool {
	for _, c := range conds {
		if !c.matches(a) {
			return false
		}
	}
	return true
}

func describeFilter(input string) string {
	conds := parseFilter(input)
	if len(conds) == 0 {
		return input
	}
	var parts []string
	for _, c := range conds {
		switch c.kind {
		case filterText:
			parts = append(parts, "text:"+c.text)
		case filterDuration:
			op := ">"
			if c.durOp == durLT {
				op = "<"
			}
			parts = append(parts, "d"+op+c.durValue.String())
		case filterError:
			parts = append(parts, "error")
		case filterKindTag:
			parts = append(parts, "kind:"+c.kindPattern)
		}
	}
	return strings.Join(parts, " ")
}

// wrapFooterItems arranges items into lines that fit within the given width.
// Each line starts with "  " and items are separated by "  ".
func wrapFooterItems(items []string, width int) string {
	if width <= 0 {
		return "  " + strings.Join(items, "  ")
	}

	const prefix = "  "
	const sep = "  "

	var lines []string
	line := prefix

	for _, item := range items {
		switch {
		case line == prefix:
			line += item
		case len(line)+len(sep)+len(item) <= width:
			line += sep + item
		default:
			lines = append(lines, line)
			line = prefix + item
		}
	}
	if line != prefix {
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}
