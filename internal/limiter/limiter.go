// Package limiter applies the final result-count/size ceilings and merges
// adjacent blocks from the same file before results reach the caller (§4.9).
package limiter

import (
	"sort"
	"unicode"

	"github.com/blocksearch/blocksearch/internal/searchtypes"
)

// DefaultMergeThreshold is the maximum line gap between two blocks in the
// same file for them to be merged into one.
const DefaultMergeThreshold = 5


// ApplyLimits truncates results to the first maxResults results (by rank),
// stopping earlier if the running byte or estimated-token budget would be
// exceeded, per §4.9. A zero limit means "unbounded" for that dimension.
func ApplyLimits(results []searchtypes.Result, maxResults, maxBytes, maxTokens int) searchtypes.SearchOutput {
	sort.SliceStable(results, func(i, j int) bool { return results[i].Rank < results[j].Rank })

	limits := &searchtypes.Limits{MaxResults: maxResults, MaxBytes: maxBytes, MaxTokens: maxTokens}
	if !limits.Applied() {
		return searchtypes.SearchOutput{Results: results}
	}

	kept := make([]searchtypes.Result, 0, len(results))
	var skippedFiles []string
	seenSkipped := make(map[string]bool)

	bytesUsed := 0
	tokensUsed := 0
	stopped := false

	for _, r := range results {
		if stopped || (maxResults > 0 && len(kept) >= maxResults) {
			markSkipped(&skippedFiles, seenSkipped, r.File)
			continue
		}

		size := len(r.Code)
		tokens := countTokens(r.Code)

		if (maxBytes > 0 && bytesUsed+size > maxBytes) || (maxTokens > 0 && tokensUsed+tokens > maxTokens) {
			stopped = true
			markSkipped(&skippedFiles, seenSkipped, r.File)
			continue
		}

		kept = append(kept, r)
		bytesUsed += size
		tokensUsed += tokens
	}

	return searchtypes.SearchOutput{
		Results:       kept,
		SkippedFiles:  skippedFiles,
		LimitsApplied: limits,
	}
}

func markSkipped(list *[]string, seen map[string]bool, file string) {
	if seen[file] {
		return
	}
	seen[file] = true
	*list = append(*list, file)
}

// countTokens approximates a model tokenizer deterministically: a run of
// word runes is one token, and each punctuation/symbol rune is its own
// token, mirroring how most BPE tokenizers split on word boundaries. No
// pack library ships a tokenizer for an arbitrary downstream model, so this
// stays a stdlib-only estimate rather than pulling in one tied to a
// specific model family.
func countTokens(s string) int {
	count := 0
	inWord := false
	for _, r := range s {
		switch {
		case unicode.IsSpace(r):
			inWord = false
		case unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_':
			if !inWord {
				count++
				inWord = true
			}
		default:
			count++
			inWord = false
		}
	}
	return count
}

// MergeRankedBlocks merges blocks from the same file whose line ranges are
// within threshold lines of each other, repeating to a fixed point since a
// merge can bring a third block within range. The merged block's rank and
// score are the best (lowest rank / highest score) of its constituents, and
// its code is re-sliced from source so the union range reads as continuous
// text rather than two concatenated fragments.
func MergeRankedBlocks(results []searchtypes.Result, threshold int, readFile func(path string) ([]string, error)) ([]searchtypes.Result, error) {
	if threshold < 0 {
		threshold = DefaultMergeThreshold
	}

	byFile := make(map[string][]searchtypes.Result)
	var fileOrder []string
	for _, r := range results {
		if _, ok := byFile[r.File]; !ok {
			fileOrder = append(fileOrder, r.File)
		}
		byFile[r.File] = append(byFile[r.File], r)
	}

	var merged []searchtypes.Result
	for _, file := range fileOrder {
		group := byFile[file]
		sort.Slice(group, func(i, j int) bool { return group[i].StartLine < group[j].StartLine })

		for {
			progressed := false
			out := group[:0:0]
			i := 0
			for i < len(group) {
				cur := group[i]
				j := i + 1
				for j < len(group) {
					gap := group[j].StartLine - cur.EndLine - 1
					if gap > threshold {
						break
					}
					cur = combine(cur, group[j])
					progressed = true
					j++
				}
				out = append(out, cur)
				i = j
			}
			group = out
			if !progressed {
				break
			}
		}

		if readFile != nil {
			for i := range group {
				lines, err := readFile(group[i].File)
				if err != nil {
					continue
				}
				start, end := group[i].StartLine, group[i].EndLine
				if start < 1 {
					start = 1
				}
				if end > len(lines) {
					end = len(lines)
				}
				if start <= end {
					group[i].Code = joinLines(lines[start-1 : end])
				}
			}
		}

		merged = append(merged, group...)
	}

	return merged, nil
}

func combine(a, b searchtypes.Result) searchtypes.Result {
	out := a
	if b.StartLine < out.StartLine {
		out.StartLine = b.StartLine
	}
	if b.EndLine > out.EndLine {
		out.EndLine = b.EndLine
	}
	if b.Rank < out.Rank {
		out.Rank = b.Rank
	}
	if b.Score > out.Score {
		out.Score = b.Score
	}
	out.BlockTotalMatches += b.BlockTotalMatches
	out.BlockUniqueTerms += mergeUniqueTerms(out.MatchedKeywords, b.MatchedKeywords)
	out.MatchedKeywords = mergeKeywords(out.MatchedKeywords, b.MatchedKeywords)
	out.ID = searchtypes.NewBlockID(out.File, out.StartLine, out.EndLine)
	return out
}

func mergeKeywords(a, b []string) []string {
	seen := make(map[string]bool, len(a))
	out := make([]string, 0, len(a)+len(b))
	for _, k := range a {
		if !seen[k] {
			seen[k] = true
			out = append(out, k)
		}
	}
	for _, k := range b {
		if !seen[k] {
			seen[k] = true
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}

// mergeUniqueTerms returns how many terms in b are not already in a, so the
// caller can add it to a's existing BlockUniqueTerms count.
func mergeUniqueTerms(a, b []string) int {
	existing := make(map[string]bool, len(a))
	for _, k := range a {
		existing[k] = true
	}
	added := 0
	for _, k := range b {
		if !existing[k] {
			existing[k] = true
			added++
		}
	}
	return added
}

func joinLines(lines []string) string {
	out := ""
	for i, l := range lines {
		if i > 0 {
			out += "\n"
		}
		out += l
	}
	return out
}
