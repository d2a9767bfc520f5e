package searchtypes

import "sort"

// FileHits is the per-file entry of a Hit Map: term index -> set of
// matched 1-based line numbers.
type FileHits struct {
	Terms map[int]map[int]bool
}

// NewFileHits returns an empty FileHits.
func NewFileHits() *FileHits {
	return &FileHits{Terms: make(map[int]map[int]bool)}
}

// Add records that termIdx matched on line (1-based).
func (fh *FileHits) Add(termIdx, line int) {
	lines, ok := fh.Terms[termIdx]
	if !ok {
		lines = make(map[int]bool)
		fh.Terms[termIdx] = lines
	}
	lines[line] = true
}

// MatchedTerms returns the set of term indices with at least one hit line.
func (fh *FileHits) MatchedTerms() map[int]bool {
	out := make(map[int]bool, len(fh.Terms))
	for idx, lines := range fh.Terms {
		if len(lines) > 0 {
			out[idx] = true
		}
	}
	return out
}

// Empty reports whether every term's line set is empty.
func (fh *FileHits) Empty() bool {
	for _, lines := range fh.Terms {
		if len(lines) > 0 {
			return false
		}
	}
	return true
}

// AllLines returns every distinct matched line across all terms, sorted ascending.
func (fh *FileHits) AllLines() []int {
	set := make(map[int]bool)
	for _, lines := range fh.Terms {
		for l := range lines {
			set[l] = true
		}
	}
	out := make([]int, 0, len(set))
	for l := range set {
		out = append(out, l)
	}
	sort.Ints(out)
	return out
}

// RemoveLine deletes line from every term's set; prunes terms and, if the
// caller checks Empty afterward, the file entry itself.
func (fh *FileHits) RemoveLine(line int) {
	for idx, lines := range fh.Terms {
		delete(lines, line)
		if len(lines) == 0 {
			delete(fh.Terms, idx)
		}
	}
}

// HitMap maps an absolute file path to its FileHits.
type HitMap map[string]*FileHits

// NewHitMap returns an empty HitMap.
func NewHitMap() HitMap {
	return make(HitMap)
}

// SortedFiles returns the map's keys in lexicographic order, for deterministic iteration.
func (hm HitMap) SortedFiles() []string {
	out := make([]string, 0, len(hm))
	for f := range hm {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}
