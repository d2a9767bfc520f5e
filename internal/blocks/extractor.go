// Package blocks turns a file's matched lines into ranked candidate blocks
// by mapping each hit line onto its smallest enclosing structural region.
package blocks

import (
	"os"
	"sort"
	"strings"

	errs "github.com/blocksearch/blocksearch/internal/errors"
	"github.com/blocksearch/blocksearch/internal/searchtypes"
	"github.com/blocksearch/blocksearch/internal/structure"
)

// Extractor resolves hit lines to blocks using a shared language registry.
type Extractor struct {
	registry *structure.Registry
}

// New builds an Extractor over registry.
func New(registry *structure.Registry) *Extractor {
	return &Extractor{registry: registry}
}

// FileExtraction is one file's candidate blocks plus the file-level term
// statistics the ranker needs to assign file_match_rank across all files.
type FileExtraction struct {
	Blocks           []searchtypes.Block
	FileUniqueTerms  int
	FileTotalMatches int
}

// ExtractFile implements §4.6. filenameMatchedTerms is non-empty when the
// file's name itself matched one or more query terms: that match is a
// property of the file, not of any line, so it always contributes one
// whole-file block in addition to (not mixed into) whatever content-hit
// blocks the AST evaluation produces below.
func (e *Extractor) ExtractFile(file string, hits *searchtypes.FileHits, plan *searchtypes.QueryPlan, filenameMatchedTerms map[int]bool) (*FileExtraction, error) {
	content, err := os.ReadFile(file)
	if err != nil {
		return nil, errs.NewIoError(file, err)
	}
	lines := strings.Split(string(content), "\n")

	blockRanges, lang, parseErr := e.registry.ParseBlocks(file, content)
	_ = lang
	if parseErr != nil {
		// LanguageParseError: the registry's heuristic fallback ranges are
		// discarded, so every hit below gets a synthetic single-line block.
		blockRanges = nil
	}
	sort.Slice(blockRanges, func(i, j int) bool {
		return (blockRanges[i].EndLine - blockRanges[i].StartLine) < (blockRanges[j].EndLine - blockRanges[j].StartLine)
	})

	type group struct {
		start, end int
		kind       string
		terms      map[int]bool
		lineCount  map[int]int // term -> occurrence count within this block
	}
	groups := make(map[string]*group)
	var order []string

	addHit := func(line, termIdx int) {
		start, end, kind := enclosingBlock(blockRanges, line, len(lines))
		id := searchtypes.NewBlockID(file, start, end)
		g, ok := groups[id]
		if !ok {
			g = &group{start: start, end: end, kind: kind, terms: make(map[int]bool), lineCount: make(map[int]int)}
			groups[id] = g
			order = append(order, id)
		}
		g.terms[termIdx] = true
		g.lineCount[termIdx]++
	}

	for termIdx, lineSet := range hits.Terms {
		for line := range lineSet {
			addHit(line, termIdx)
		}
	}

	var result []searchtypes.Block

	for _, id := range order {
		g := groups[id]
		matchedSet := g.terms
		if !plan.AST.Evaluate(matchedSet) {
			continue
		}

		code := strings.Join(lines[g.start-1:g.end], "\n")
		total := 0
		for _, c := range g.lineCount {
			total += c
		}
		result = append(result, searchtypes.Block{
			ID:                id,
			File:              file,
			StartLine:         g.start,
			EndLine:           g.end,
			NodeType:          g.kind,
			Code:              code,
			ParentFile:        file,
			MatchedByFilename: false,
			BlockUniqueTerms:  len(g.terms),
			BlockTotalMatches: total,
			MatchedKeywords:   surfaceForms(g.terms, plan),
			TokenizedContent:  structure.Tokenize(code),
		})
	}

	// A purely filename-matched file (or one where the filename match
	// contributes a term no content block alone can satisfy) always gets
	// one whole-file block: the filename match is a property of the file,
	// not of any single line, so it is never distributed across per-line
	// groups the way content hits are.
	if len(filenameMatchedTerms) > 0 {
		realLineCount := len(lines)
		if realLineCount > 0 && lines[realLineCount-1] == "" {
			realLineCount--
		}
		code := strings.Join(lines[:realLineCount], "\n")
		result = append(result, searchtypes.Block{
			ID:                searchtypes.NewBlockID(file, 1, realLineCount),
			File:              file,
			StartLine:         1,
			EndLine:           realLineCount,
			NodeType:          "file",
			Code:              code,
			ParentFile:        file,
			MatchedByFilename: true,
			BlockUniqueTerms:  len(filenameMatchedTerms),
			BlockTotalMatches: len(filenameMatchedTerms),
			MatchedKeywords:   surfaceForms(filenameMatchedTerms, plan),
			TokenizedContent:  structure.Tokenize(code),
		})
	}

	fileUnique := hits.MatchedTerms()
	fileTotal := 0
	for _, lineSet := range hits.Terms {
		fileTotal += len(lineSet)
	}

	return &FileExtraction{
		Blocks:           result,
		FileUniqueTerms:  len(fileUnique),
		FileTotalMatches: fileTotal,
	}, nil
}

// enclosingBlock returns the smallest range in ranges containing line, or a
// synthetic single-line block when none does.
func enclosingBlock(ranges []structure.BlockRange, line, totalLines int) (start, end int, kind string) {
	for _, r := range ranges {
		if line >= r.StartLine && line <= r.EndLine {
			return r.StartLine, r.EndLine, r.Kind
		}
	}
	if line < 1 {
		line = 1
	}
	if line > totalLines {
		line = totalLines
	}
	return line, line, "line"
}

func surfaceForms(terms map[int]bool, plan *searchtypes.QueryPlan) []string {
	out := make([]string, 0, len(terms))
	for idx := range terms {
		if t, ok := plan.TermByIndex(idx); ok {
			out = append(out, t.Surface)
		}
	}
	sort.Strings(out)
	return out
}
