package queryplan

import (
	"strings"

	"github.com/blocksearch/blocksearch/internal/searchtypes"
	"github.com/surgebase/porter2"
)

// stopwords is the fixed small stopword set named in §4.2: common English
// plus a few programming keywords recognized as noise.
var stopwords = map[string]bool{
	"the": true, "and": true, "for": true, "if": true, "a": true, "an": true,
	"of": true, "in": true, "on": true, "to": true, "is": true, "are": true,
	"was": true, "were": true, "be": true, "been": true, "it": true,
	"this": true, "that": true, "with": true, "as": true, "by": true,
	"else": true, "then": true, "do": true, "does": true, "has": true,
	"have": true, "had": true, "at": true, "or": true, "not": true,
}

// planBuilder accumulates discovered terms in order of first appearance and
// assigns stable 0-based indices, de-duplicating surface forms and stems
// that normalize to the same plan entry.
type planBuilder struct {
	exact       bool
	terms       []searchtypes.Term
	index       map[string]int // normalized key -> term index
	excludedIdx map[int]bool
}

func newPlanBuilder(exact bool) *planBuilder {
	return &planBuilder{
		exact:       exact,
		index:       make(map[string]int),
		excludedIdx: make(map[int]bool),
	}
}

// termIndex normalizes raw (the token's literal text) and returns its term
// index, creating a new plan entry on first sight. quoted atoms always keep
// their literal (whitespace-preserving) form, bypassing stopword removal and
// stemming regardless of the exact flag.
// termIndex returns (-1, true) for stopwords: they are dropped from the term
// set and the caller must emit a no-op AST node instead of a TermNode.
func (pb *planBuilder) termIndex(raw string, excluded, quoted bool) (int, bool) {
	var key, surface, stem string

	if pb.exact || quoted {
		surface = raw
		stem = raw
		key = raw
	} else {
		folded := strings.ToLower(stripPunctuation(raw))
		if IsStopword(folded) {
			return -1, true
		}
		surface = folded
		stem = porter2.Stem(folded)
		key = stem
	}

	if idx, ok := pb.index[key]; ok {
		if excluded {
			pb.terms[idx].Excluded = true
			pb.excludedIdx[idx] = true
		}
		return idx, false
	}

	idx := len(pb.terms)
	pb.terms = append(pb.terms, searchtypes.Term{
		Surface:  surface,
		Stem:     stem,
		Index:    idx,
		Excluded: excluded,
	})
	pb.index[key] = idx
	if excluded {
		pb.excludedIdx[idx] = true
	}
	return idx, false
}

func stripPunctuation(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if isWordRune(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func isWordRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	case r == '_':
		return true
	}
	return false
}

// IsStopword reports whether word (already lowercased) is in the fixed
// stopword set.
func IsStopword(word string) bool {
	return stopwords[word]
}
