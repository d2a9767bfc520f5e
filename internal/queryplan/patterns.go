package queryplan

import (
	"regexp"
	"strings"

	"github.com/blocksearch/blocksearch/internal/searchtypes"
)

// BuildPatterns turns a QueryPlan's terms into the Structured Pattern Set
// described in §3: one regex source per distinct pattern, each carrying the
// set of term indices it can satisfy (several terms collapse onto one
// pattern when they share a stem).
//
// Non-exact terms match on their Porter2 stem: since the stem is normally a
// prefix of the inflected forms, "connect" matches "Connecting" and
// "Connection" alike via `\bconnect\w*`. Exact terms match their literal
// surface form only.
func BuildPatterns(plan *searchtypes.QueryPlan) []searchtypes.StructuredPattern {
	bySource := make(map[string]map[int]bool)
	var order []string

	for _, term := range plan.Terms {
		var source string
		if plan.Exact {
			source = `\b` + regexp.QuoteMeta(term.Surface) + `\b`
			if strings.ContainsAny(term.Surface, " \t") {
				source = regexp.QuoteMeta(term.Surface)
			}
		} else {
			source = `\b` + regexp.QuoteMeta(term.Stem) + `\w*`
		}

		if _, ok := bySource[source]; !ok {
			bySource[source] = make(map[int]bool)
			order = append(order, source)
		}
		bySource[source][term.Index] = true
	}

	patterns := make([]searchtypes.StructuredPattern, 0, len(order))
	for _, src := range order {
		patterns = append(patterns, searchtypes.StructuredPattern{Source: src, Terms: bySource[src]})
	}
	return patterns
}
