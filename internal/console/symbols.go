package console

import (
	"fmt"
	"strings"
)

type Symbol string

const (
	Loading   Symbol = "loading"
	Success   Symbol = "success"
	Failure   Symbol = "error"
	Warning   Symbol = "warning"
	Info      Symbol = "info"
	Empty     Symbol = "empty"
	Catalog   Symbol = "catalog"
	Namespace Symbol = "namespace"
	Table     Symbol = "table"
)

const DefaultStyle = "professional"

var symbolSets = map[string]map[Symbol]string{
	"professional": {
		Loading:   "→",
		Success:   "✓",
		Failure:   "✗",
		Warning:   "!",
		Info:      "·",
		Empty:     "○",
		Catalog:   "◆",
		Namespace: "▫",
		Table:     "▪",
	},
	"geometric": {
		Loading:   "◐",
		Success:   "●",
		Failure:   "●",
		Warning:   "◯",
		Info:      "◆",
		Empty:     "○",
		Catalog:   "◆",
		Namespace: "◇",
		Table:     "▪",
	},
	"minimal": {
		Loading:   "·",
		Success:   "✓",
		Failure:   "✗",
		Warning:   "!",
		Info:      "·",
		Empty:     "∅",
		Catalog:   "·",
		Namespace: "·",
		Table:     "·",
	},
	"colorful": {
		Loading:   "🔄",
		Success:   "✅",
		Failure:   "❌",
		Warning:   "⚠️",
		Info:      "ℹ️",
		Empty:     "📭",
		Catalog:   "📚",
		Namespace: "📁",
		Table:     "📊",
	},
}

var Styles = []string{"professional", "geometric", "minimal", "colorful"}

func symbolSet(style string) (map[Symbol]string, error) {
	if style == "" {
		style = DefaultStyle
	}
	set, ok := symbolSets[strings.ToLower(style)]
	if !ok {
		return nil, fmt.Errorf("unknown emoji style %q, expected one of %s", style, strings.Join(Styles, ", "))
	}
	return set, nil
}
