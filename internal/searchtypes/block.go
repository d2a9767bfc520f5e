package searchtypes

import "fmt"

// Block is the intrinsic identity of a structural region: it never carries
// ranking data. Per the separation design note, ranking is attached later
// via a Ranking record joined by ID, so the wire shape never needs ~20
// optional numeric fields hanging off one struct.
type Block struct {
	ID          string // stable within one scan: "<file>:<start>-<end>"
	File        string // absolute path
	StartLine   int    // 1-based, inclusive
	EndLine     int    // 1-based, inclusive
	NodeType    string // "function", "class", "block", "file", ...
	Code        string // literal source text for [StartLine, EndLine]
	ParentFile  string // same as File; kept distinct per the data model's parent_file_id field

	MatchedByFilename bool // true when the owning file was selected purely by filename

	BlockUniqueTerms  int
	BlockTotalMatches int
	MatchedKeywords   []string
	TokenizedContent  []string
}

// NewBlockID builds the stable block identifier described in §3.
func NewBlockID(file string, start, end int) string {
	return fmt.Sprintf("%s:%d-%d", file, start, end)
}

// Ranking is the scoring annotation attached to a Block by the ranker. It is
// a separate record, looked up by BlockID, so extending it never forces
// every Block field to become nullable.
type Ranking struct {
	BlockID string

	Rank  int // 1-based, final order
	Score float64

	TFIDFScore float64
	TFIDFRank  int
	BM25Score  float64
	BM25Rank   int
	NewScore   float64 // combined/selected reranker's score, pre-normalization

	FileUniqueTerms  int
	FileTotalMatches int
	FileMatchRank    int
}

// Result is the wire-facing join of a Block and its Ranking, matching the
// consumer-facing result shape in §6.
type Result struct {
	Block
	Ranking
}

// FileStats carries the file-level term statistics the Block Extractor
// computes per file, used by the ranker to derive file_match_rank.
type FileStats struct {
	UniqueTerms  int
	TotalMatches int
}

// SessionCacheEntry identifies a previously-returned region. Identity is all
// four fields together.
type SessionCacheEntry struct {
	SessionID string
	File      string
	StartLine int
	EndLine   int
}

// Overlaps reports whether [start,end] overlaps this entry's range in the same file.
func (e SessionCacheEntry) Overlaps(file string, start, end int) bool {
	if e.File != file {
		return false
	}
	return start <= e.EndLine && end >= e.StartLine
}
