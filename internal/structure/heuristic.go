package structure

import "strings"

// heuristicAdapter is the fallback used when no tree-sitter grammar is
// registered for a language, or when a grammar is registered but a
// particular file fails to parse (§7 LanguageParseError policy: fall back
// to synthetic single-line blocks for hit lines). It recovers brace-delimited
// blocks by counting braces line by line; anything it can't confidently
// bound is left for the extractor's synthetic single-line fallback.
type heuristicAdapter struct{}

func (heuristicAdapter) ParseBlocks(content []byte) ([]BlockRange, error) {
	lines := strings.Split(string(content), "\n")
	var blocks []BlockRange
	var openStack []int // line numbers (1-based) where a '{' was seen without its match yet

	for i, line := range lines {
		lineNum := i + 1
		for _, r := range line {
			switch r {
			case '{':
				openStack = append(openStack, lineNum)
			case '}':
				if len(openStack) > 0 {
					start := openStack[len(openStack)-1]
					openStack = openStack[:len(openStack)-1]
					if lineNum > start {
						blocks = append(blocks, BlockRange{StartLine: start, EndLine: lineNum, Kind: "block"})
					}
				}
			}
		}
	}

	return blocks, nil
}

func (heuristicAdapter) Tokenize(text string) []string {
	return Tokenize(text)
}
